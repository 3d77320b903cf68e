package state

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/ardanlabs/powledger/foundation/blockchain/database"
	"github.com/ardanlabs/powledger/foundation/blockchain/peer"
)

// PeerFetcher represents the behavior required to retrieve the chain
// reported by a peer.
type PeerFetcher interface {
	Fetch(ctx context.Context, pr peer.Peer) (database.ChainData, error)
}

// FetchError is returned when a peer can't be reached or responds with
// something other than a chain.
type FetchError struct {
	Peer   peer.Peer
	Status int
	Err    error
}

// Error implements the error interface.
func (fe *FetchError) Error() string {
	if fe.Status != 0 {
		return fmt.Sprintf("fetch %s: status %d: %s", fe.Peer, fe.Status, fe.Err)
	}
	return fmt.Sprintf("fetch %s: %s", fe.Peer, fe.Err)
}

// Unwrap returns the underlying error.
func (fe *FetchError) Unwrap() error {
	return fe.Err
}

// =============================================================================

// baseURL is the root of the node API on a peer.
const baseURL = "http://%s/v1"

// maxErrorBody caps how much of a failed response is kept as the error.
const maxErrorBody = 1 << 20

// HTTPFetcher retrieves peer chains from the fetch-chain endpoint. Every
// request is bounded by the timeout and an expired request is a fetch error.
type HTTPFetcher struct {
	client  *http.Client
	timeout time.Duration
	baseURL string
}

// NewHTTPFetcher constructs a fetcher with the specified per peer timeout.
func NewHTTPFetcher(timeout time.Duration) *HTTPFetcher {
	return &HTTPFetcher{
		client:  &http.Client{},
		timeout: timeout,
		baseURL: baseURL,
	}
}

// Fetch implements the PeerFetcher interface.
func (f *HTTPFetcher) Fetch(ctx context.Context, pr peer.Peer) (database.ChainData, error) {
	if f.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, f.timeout)
		defer cancel()
	}

	url := fmt.Sprintf("%s/chain", fmt.Sprintf(f.baseURL, pr.Host))

	var data database.ChainData
	if err := f.send(ctx, http.MethodGet, url, &data); err != nil {
		var fe *FetchError
		if errors.As(err, &fe) {
			fe.Peer = pr
			return database.ChainData{}, fe
		}
		return database.ChainData{}, &FetchError{Peer: pr, Err: err}
	}

	return data, nil
}

// send is a helper function to send an HTTP request to a node.
func (f *HTTPFetcher) send(ctx context.Context, method string, url string, dataRecv any) error {
	req, err := http.NewRequestWithContext(ctx, method, url, nil)
	if err != nil {
		return err
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		msg, err := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		if err != nil {
			return err
		}
		return &FetchError{Status: resp.StatusCode, Err: errors.New(string(msg))}
	}

	if dataRecv != nil {
		if err := json.NewDecoder(resp.Body).Decode(dataRecv); err != nil {
			return fmt.Errorf("decoding chain: %w", err)
		}
	}

	return nil
}
