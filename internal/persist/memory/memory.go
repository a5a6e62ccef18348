// Package memory provides a map-backed persistence adapter for tests and
// offline review sessions.
package memory

import (
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"proofmark/internal/attach"
	"proofmark/internal/persist"
	"proofmark/internal/scene"
)

// Adapter stores all records in process memory. It satisfies
// persist.Adapter and assigns IDs, pin numbers, and timestamps the same way
// the sqlite backend does.
type Adapter struct {
	mu           sync.Mutex
	pins         []scene.Pin
	markups      []scene.Markup
	voiceNotes   []attach.VoiceNote
	walkthroughs []attach.Walkthrough
	nextPin      int

	notifier persist.Notifier
}

// New creates an empty in-memory adapter.
func New() *Adapter {
	return &Adapter{nextPin: 1}
}

// CreatePin assigns identity and stores the pin.
func (a *Adapter) CreatePin(p scene.Pin) (scene.Pin, error) {
	a.mu.Lock()
	p.ID = uuid.NewString()
	p.PinNumber = a.nextPin
	a.nextPin++
	p.CreatedAt = time.Now()
	a.pins = append(a.pins, p)
	a.mu.Unlock()

	a.notifier.Notify()
	return p, nil
}

// SetPinResolved updates the resolved flag.
func (a *Adapter) SetPinResolved(id string, resolved bool) error {
	a.mu.Lock()
	found := false
	for i := range a.pins {
		if a.pins[i].ID == id {
			a.pins[i].Resolved = resolved
			found = true
			break
		}
	}
	a.mu.Unlock()

	if !found {
		return fmt.Errorf("resolve pin %s: %w", id, persist.ErrNotFound)
	}
	a.notifier.Notify()
	return nil
}

// AddReply appends a reply to the pin thread.
func (a *Adapter) AddReply(pinID string, r scene.Reply) (scene.Reply, error) {
	a.mu.Lock()
	found := false
	for i := range a.pins {
		if a.pins[i].ID == pinID {
			r.ID = uuid.NewString()
			r.CreatedAt = time.Now()
			a.pins[i].Replies = append(a.pins[i].Replies, r)
			found = true
			break
		}
	}
	a.mu.Unlock()

	if !found {
		return scene.Reply{}, fmt.Errorf("reply to pin %s: %w", pinID, persist.ErrNotFound)
	}
	a.notifier.Notify()
	return r, nil
}

// DeletePin removes a pin and its thread. The pin number is not reused.
func (a *Adapter) DeletePin(id string) error {
	a.mu.Lock()
	found := false
	for i, p := range a.pins {
		if p.ID == id {
			a.pins = append(a.pins[:i], a.pins[i+1:]...)
			found = true
			break
		}
	}
	a.mu.Unlock()

	if !found {
		return fmt.Errorf("delete pin %s: %w", id, persist.ErrNotFound)
	}
	a.notifier.Notify()
	return nil
}

// CreateMarkup assigns identity and stores the markup.
func (a *Adapter) CreateMarkup(m scene.Markup) (scene.Markup, error) {
	a.mu.Lock()
	m.ID = uuid.NewString()
	m.CreatedAt = time.Now()
	a.markups = append(a.markups, m)
	a.mu.Unlock()

	a.notifier.Notify()
	return m, nil
}

// DeleteMarkup removes a markup.
func (a *Adapter) DeleteMarkup(id string) error {
	a.mu.Lock()
	found := false
	for i, m := range a.markups {
		if m.ID == id {
			a.markups = append(a.markups[:i], a.markups[i+1:]...)
			found = true
			break
		}
	}
	a.mu.Unlock()

	if !found {
		return fmt.Errorf("delete markup %s: %w", id, persist.ErrNotFound)
	}
	a.notifier.Notify()
	return nil
}

// ClearLayerMarkups removes every markup on the layer.
func (a *Adapter) ClearLayerMarkups(layer scene.LayerKey) error {
	a.mu.Lock()
	kept := a.markups[:0]
	for _, m := range a.markups {
		if m.Layer != layer {
			kept = append(kept, m)
		}
	}
	a.markups = kept
	a.mu.Unlock()

	a.notifier.Notify()
	return nil
}

// ReplaceScene wholesale replaces both collections, keeping the IDs, pin
// numbers, and timestamps the records carry. The pin number sequence is not
// rewound.
func (a *Adapter) ReplaceScene(pins []scene.Pin, markups []scene.Markup) error {
	a.mu.Lock()
	a.pins = append([]scene.Pin(nil), pins...)
	a.markups = append([]scene.Markup(nil), markups...)
	a.mu.Unlock()

	a.notifier.Notify()
	return nil
}

// ListPins returns all pins in creation order.
func (a *Adapter) ListPins() ([]scene.Pin, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	out := make([]scene.Pin, len(a.pins))
	copy(out, a.pins)
	return out, nil
}

// ListMarkups returns all markups in creation order.
func (a *Adapter) ListMarkups() ([]scene.Markup, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	out := make([]scene.Markup, len(a.markups))
	copy(out, a.markups)
	return out, nil
}

// CreateVoiceNote stores a voice note record.
func (a *Adapter) CreateVoiceNote(v attach.VoiceNote) (attach.VoiceNote, error) {
	a.mu.Lock()
	v.ID = uuid.NewString()
	v.CreatedAt = time.Now()
	a.voiceNotes = append(a.voiceNotes, v)
	a.mu.Unlock()

	a.notifier.Notify()
	return v, nil
}

// ListVoiceNotes returns all voice notes in creation order.
func (a *Adapter) ListVoiceNotes() ([]attach.VoiceNote, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	out := make([]attach.VoiceNote, len(a.voiceNotes))
	copy(out, a.voiceNotes)
	return out, nil
}

// CreateWalkthrough stores a walkthrough record.
func (a *Adapter) CreateWalkthrough(w attach.Walkthrough) (attach.Walkthrough, error) {
	a.mu.Lock()
	w.ID = uuid.NewString()
	w.CreatedAt = time.Now()
	a.walkthroughs = append(a.walkthroughs, w)
	a.mu.Unlock()

	a.notifier.Notify()
	return w, nil
}

// ListWalkthroughs returns all walkthroughs in creation order.
func (a *Adapter) ListWalkthroughs() ([]attach.Walkthrough, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	out := make([]attach.Walkthrough, len(a.walkthroughs))
	copy(out, a.walkthroughs)
	return out, nil
}

// Subscribe returns a coalesced change channel.
func (a *Adapter) Subscribe() <-chan struct{} {
	return a.notifier.Subscribe()
}

// Close shuts down change notification.
func (a *Adapter) Close() error {
	a.notifier.Close()
	return nil
}
