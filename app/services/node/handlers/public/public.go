// Package public maintains the group of handlers for public access.
package public

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/ardanlabs/powledger/business/sys/validate"
	"github.com/ardanlabs/powledger/business/web/errs"
	"github.com/ardanlabs/powledger/foundation/blockchain/database"
	"github.com/ardanlabs/powledger/foundation/blockchain/state"
	"github.com/ardanlabs/powledger/foundation/events"
	"github.com/ardanlabs/powledger/foundation/web"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

// Handlers manages the set of node endpoints.
type Handlers struct {
	Log   *zap.SugaredLogger
	State *state.State
	WS    websocket.Upgrader
	Evts  *events.Events
}

// Events handles a web socket to provide events to a client. The optional
// kind query parameter, like ?kind=ledger,worker, limits the events sent.
func (h Handlers) Events(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	v, err := web.GetValues(ctx)
	if err != nil {
		return web.NewShutdownError("web value missing from context")
	}

	h.WS.CheckOrigin = func(r *http.Request) bool { return true }

	c, err := h.WS.Upgrade(w, r, nil)
	if err != nil {
		return err
	}
	defer c.Close()

	ch := h.Evts.Acquire(v.TraceID, events.ParseKinds(r.URL.Query().Get("kind"))...)
	defer h.Evts.Release(v.TraceID)

	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()

	for {
		select {
		case msg, wd := <-ch:
			if !wd {
				return nil
			}

			if err := c.WriteMessage(websocket.TextMessage, []byte(msg)); err != nil {
				return nil
			}

		case <-ticker.C:
			if err := c.WriteMessage(websocket.PingMessage, []byte("ping")); err != nil {
				return nil
			}
		}
	}
}

// MineBlock mines a new block with every pending transaction.
func (h Handlers) MineBlock(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	block, duration, err := h.State.MineNewBlock(ctx)
	if err != nil {
		if errors.Is(err, database.ErrChainChanged) {
			return errs.NewTrusted(err, http.StatusConflict)
		}
		return fmt.Errorf("mining block: %w", err)
	}

	h.Log.Infow("mine block", "traceid", web.GetTraceID(ctx), "index", block.Index, "duration", duration)

	resp := minedBlock{
		Message:      "Congratulations, you just mined a block!",
		Index:        block.Index,
		TimeStamp:    block.TimeStamp,
		Proof:        block.Proof,
		PreviousHash: block.PreviousHash,
		Transactions: block.Transactions,
	}

	return web.Respond(ctx, w, resp, http.StatusOK)
}

// Chain returns the full chain and its length.
func (h Handlers) Chain(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	return web.Respond(ctx, w, database.NewChainData(h.State.RetrieveChain()), http.StatusOK)
}

// ChainValidity reports if the local chain is valid.
func (h Handlers) ChainValidity(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	if err := h.State.IsChainValid(); err != nil {
		resp := validity{
			Valid:   false,
			Message: "Your chain is not valid",
			Error:   err.Error(),
		}
		return web.Respond(ctx, w, resp, http.StatusBadRequest)
	}

	resp := validity{
		Valid:   true,
		Message: "Your chain is valid",
	}

	return web.Respond(ctx, w, resp, http.StatusOK)
}

// SubmitTransaction adds a new transaction to the pending pool.
func (h Handlers) SubmitTransaction(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	var ntx NewTx
	if err := web.Decode(r, &ntx); err != nil {
		if validate.IsFieldErrors(err) {
			return err
		}
		return errs.NewTrusted(err, http.StatusBadRequest)
	}

	tx := ntx.toTx()

	h.Log.Infow("add tran", "traceid", web.GetTraceID(ctx), "tx", tx)

	index, err := h.State.SubmitTransaction(tx)
	if err != nil {
		return fmt.Errorf("submitting transaction: %w", err)
	}

	resp := txAdded{
		Index:   index,
		Message: fmt.Sprintf("This transaction will be added to block %d", index),
	}

	return web.Respond(ctx, w, resp, http.StatusOK)
}

// Mempool returns the set of pending transactions.
func (h Handlers) Mempool(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	return web.Respond(ctx, w, h.State.RetrieveMempool(), http.StatusOK)
}

// Peers returns the set of known peers.
func (h Handlers) Peers(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	return web.Respond(ctx, w, h.State.RetrieveKnownPeers(), http.StatusOK)
}

// ConnectPeers registers new peer nodes.
func (h Handlers) ConnectPeers(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	var np NewPeers
	if err := web.Decode(r, &np); err != nil {
		if validate.IsFieldErrors(err) {
			return err
		}
		return errs.NewTrusted(err, http.StatusBadRequest)
	}

	if err := h.State.AddKnownPeers(np.Nodes); err != nil {
		return errs.NewTrusted(err, http.StatusBadRequest)
	}

	peers := h.State.RetrieveKnownPeers()
	nodes := make([]string, len(peers))
	for i, pr := range peers {
		nodes[i] = pr.Host
	}

	resp := peersAdded{
		Message: "All the nodes are now connected",
		Nodes:   nodes,
	}

	return web.Respond(ctx, w, resp, http.StatusOK)
}

// Consensus replaces the local chain with the longest valid chain known
// to the peers.
func (h Handlers) Consensus(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	replaced, err := h.State.Resolve(ctx)
	if err != nil {
		return fmt.Errorf("resolving chain: %w", err)
	}

	resp := consensus{
		Replaced: replaced,
		Message:  "The local chain is the longest chain",
		Chain:    h.State.RetrieveChain(),
	}
	if replaced {
		resp.Message = "The local chain was replaced by the longest chain"
	}

	return web.Respond(ctx, w, resp, http.StatusOK)
}
