// Package events allows for the registering and receiving of ledger events.
// An event is a line of text that starts with the component that raised it,
// for example "ledger: block mined: ...", and receivers can ask for only the
// components they care about.
package events

import (
	"fmt"
	"strings"
	"sync"
)

// Kind names the component that raised an event.
type Kind string

// Set of kinds raised by the node.
const (
	KindLedger   Kind = "ledger"
	KindState    Kind = "state"
	KindDatabase Kind = "database"
	KindWorker   Kind = "worker"
)

// KindOf returns the kind of the event, the text before the first colon.
func KindOf(event string) Kind {
	kind, _, found := strings.Cut(event, ":")
	if !found {
		return ""
	}
	return Kind(strings.TrimSpace(kind))
}

// ParseKinds converts a comma separated list like "ledger,worker" into
// kinds. Empty entries are ignored.
func ParseKinds(list string) []Kind {
	var kinds []Kind
	for field := range strings.SplitSeq(list, ",") {
		if field = strings.TrimSpace(field); field != "" {
			kinds = append(kinds, Kind(field))
		}
	}
	return kinds
}

// =============================================================================

// messageBuffer is the number of events a receiver can fall behind before
// new events are dropped for it. A websocket send could take long.
const messageBuffer = 100

// receiver is a registered channel and the kinds it accepts. An empty
// filter accepts every kind.
type receiver struct {
	ch    chan string
	kinds map[Kind]bool
}

func (r receiver) accepts(kind Kind) bool {
	return len(r.kinds) == 0 || r.kinds[kind]
}

// Events maintains a mapping of unique id and receivers so goroutines
// can register and receive events.
type Events struct {
	m  map[string]receiver
	mu sync.RWMutex
}

// New constructs an events for registering and receiving events.
func New() *Events {
	return &Events{
		m: make(map[string]receiver),
	}
}

// Shutdown closes and removes all channels that were provided by
// the call to Acquire.
func (evt *Events) Shutdown() {
	evt.mu.Lock()
	defer evt.mu.Unlock()

	for id, r := range evt.m {
		delete(evt.m, id)
		close(r.ch)
	}
}

// Acquire takes a unique id and returns a channel that receives the events
// of the specified kinds, or every event when no kind is specified. Acquiring
// an id that is already registered returns its channel unchanged.
func (evt *Events) Acquire(id string, kinds ...Kind) chan string {
	evt.mu.Lock()
	defer evt.mu.Unlock()

	if r, exists := evt.m[id]; exists {
		return r.ch
	}

	r := receiver{
		ch:    make(chan string, messageBuffer),
		kinds: make(map[Kind]bool, len(kinds)),
	}
	for _, kind := range kinds {
		r.kinds[kind] = true
	}

	evt.m[id] = r
	return r.ch
}

// Release closes and removes the channel that was provided by
// the call to Acquire.
func (evt *Events) Release(id string) error {
	evt.mu.Lock()
	defer evt.mu.Unlock()

	r, exists := evt.m[id]
	if !exists {
		return fmt.Errorf("id %q does not exist", id)
	}

	delete(evt.m, id)
	close(r.ch)
	return nil
}

// Count returns the number of registered receivers.
func (evt *Events) Count() int {
	evt.mu.RLock()
	defer evt.mu.RUnlock()

	return len(evt.m)
}

// Send signals an event to every receiver that accepts its kind. Send will
// not block waiting for a receiver on any given channel.
func (evt *Events) Send(event string) {
	kind := KindOf(event)

	evt.mu.RLock()
	defer evt.mu.RUnlock()

	for _, r := range evt.m {
		if !r.accepts(kind) {
			continue
		}

		select {
		case r.ch <- event:
		default:
		}
	}
}
