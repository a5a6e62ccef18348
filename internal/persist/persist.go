// Package persist defines the storage contract for annotation data. The
// engine never invents identity: create operations return the canonical
// record with backend-assigned IDs, pin numbers, and timestamps, and the
// scene store is updated only from those records.
package persist

import (
	"errors"
	"sync"

	"proofmark/internal/attach"
	"proofmark/internal/scene"
)

// ErrNotFound is returned when an operation targets a record that does not
// exist.
var ErrNotFound = errors.New("record not found")

// Adapter is the storage backend for a review session. Implementations are
// safe for concurrent use. Subscribe delivers a coalesced change tick after
// every committed write; consumers refetch the collections wholesale.
type Adapter interface {
	CreatePin(p scene.Pin) (scene.Pin, error)
	SetPinResolved(id string, resolved bool) error
	AddReply(pinID string, r scene.Reply) (scene.Reply, error)
	DeletePin(id string) error

	CreateMarkup(m scene.Markup) (scene.Markup, error)
	DeleteMarkup(id string) error
	ClearLayerMarkups(layer scene.LayerKey) error

	ListPins() ([]scene.Pin, error)
	ListMarkups() ([]scene.Markup, error)

	// ReplaceScene wholesale replaces both collections with records that
	// already carry identity, keeping IDs, pin numbers, and timestamps as
	// given. Undo and redo reconcile the backend through this so a later
	// refetch cannot resurrect reverted state. The pin number sequence is
	// never rewound.
	ReplaceScene(pins []scene.Pin, markups []scene.Markup) error

	CreateVoiceNote(v attach.VoiceNote) (attach.VoiceNote, error)
	ListVoiceNotes() ([]attach.VoiceNote, error)
	CreateWalkthrough(w attach.Walkthrough) (attach.Walkthrough, error)
	ListWalkthroughs() ([]attach.Walkthrough, error)

	Subscribe() <-chan struct{}
	Close() error
}

// Notifier fans a coalesced change signal out to subscribers. Channels are
// buffered with depth one; a pending tick absorbs further notifications
// until the consumer drains it.
type Notifier struct {
	mu     sync.Mutex
	subs   []chan struct{}
	closed bool
}

// Subscribe returns a new change channel.
func (n *Notifier) Subscribe() <-chan struct{} {
	n.mu.Lock()
	defer n.mu.Unlock()
	ch := make(chan struct{}, 1)
	if !n.closed {
		n.subs = append(n.subs, ch)
	} else {
		close(ch)
	}
	return ch
}

// Notify sends a non-blocking tick to every subscriber.
func (n *Notifier) Notify() {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.closed {
		return
	}
	for _, ch := range n.subs {
		select {
		case ch <- struct{}{}:
		default:
		}
	}
}

// Close closes all subscriber channels.
func (n *Notifier) Close() {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.closed {
		return
	}
	n.closed = true
	for _, ch := range n.subs {
		close(ch)
	}
	n.subs = nil
}
