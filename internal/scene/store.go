package scene

import (
	"encoding/json"
	"fmt"
	"sync"
)

// EventType identifies store change events.
type EventType int

const (
	EventPinsChanged EventType = iota
	EventMarkupsChanged
	EventLayersChanged
)

// EventListener is called when a store event occurs.
type EventListener func(data interface{})

// layerState is the local display state of a review layer. It is never
// persisted; every participant controls their own view.
type layerState struct {
	Visible bool
	Opacity int
}

// Store holds the annotation scene. All access is mutex-guarded; the store
// performs no rendering or network side effects.
type Store struct {
	mu sync.RWMutex

	pins    []Pin
	markups []Markup

	layers      map[LayerKey]*layerState
	activeLayer LayerKey

	listeners map[EventType][]EventListener
}

// NewStore creates a store with all layers visible at full opacity and the
// customer layer active.
func NewStore() *Store {
	s := &Store{
		layers:      make(map[LayerKey]*layerState, len(Layers)),
		activeLayer: LayerCustomer,
		listeners:   make(map[EventType][]EventListener),
	}
	for _, l := range Layers {
		s.layers[l.Key] = &layerState{Visible: true, Opacity: 100}
	}
	return s
}

// On registers an event listener for the specified event type.
func (s *Store) On(event EventType, listener EventListener) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.listeners[event] = append(s.listeners[event], listener)
}

// Emit triggers all listeners for the specified event type.
func (s *Store) Emit(event EventType, data interface{}) {
	s.mu.RLock()
	listeners := s.listeners[event]
	s.mu.RUnlock()

	for _, listener := range listeners {
		listener(data)
	}
}

// AddPin appends a pin to the scene.
func (s *Store) AddPin(p Pin) {
	s.mu.Lock()
	s.pins = append(s.pins, p)
	s.mu.Unlock()
	s.Emit(EventPinsChanged, nil)
}

// RemovePin deletes the pin with the given ID. Unknown IDs are ignored.
func (s *Store) RemovePin(id string) {
	s.mu.Lock()
	for i, p := range s.pins {
		if p.ID == id {
			s.pins = append(s.pins[:i], s.pins[i+1:]...)
			break
		}
	}
	s.mu.Unlock()
	s.Emit(EventPinsChanged, nil)
}

// SetPinResolved toggles the resolved flag on a pin.
func (s *Store) SetPinResolved(id string, resolved bool) {
	s.mu.Lock()
	for i := range s.pins {
		if s.pins[i].ID == id {
			s.pins[i].Resolved = resolved
			break
		}
	}
	s.mu.Unlock()
	s.Emit(EventPinsChanged, nil)
}

// AppendReply adds a reply to the pin's thread.
func (s *Store) AppendReply(pinID string, r Reply) {
	s.mu.Lock()
	for i := range s.pins {
		if s.pins[i].ID == pinID {
			s.pins[i].Replies = append(s.pins[i].Replies, r)
			break
		}
	}
	s.mu.Unlock()
	s.Emit(EventPinsChanged, nil)
}

// Pins returns a copy of all pins in insertion order.
func (s *Store) Pins() []Pin {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Pin, len(s.pins))
	copy(out, s.pins)
	return out
}

// VisiblePins returns pins on visible layers, insertion order preserved.
func (s *Store) VisiblePins() []Pin {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []Pin
	for _, p := range s.pins {
		if ls, ok := s.layers[p.Layer]; ok && ls.Visible {
			out = append(out, p)
		}
	}
	return out
}

// PinByID returns the pin with the given ID.
func (s *Store) PinByID(id string) (Pin, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, p := range s.pins {
		if p.ID == id {
			return p, true
		}
	}
	return Pin{}, false
}

// AddMarkup appends a markup to the scene.
func (s *Store) AddMarkup(m Markup) {
	s.mu.Lock()
	s.markups = append(s.markups, m)
	s.mu.Unlock()
	s.Emit(EventMarkupsChanged, nil)
}

// RemoveMarkup deletes the markup with the given ID. Unknown IDs are ignored.
func (s *Store) RemoveMarkup(id string) {
	s.mu.Lock()
	for i, m := range s.markups {
		if m.ID == id {
			s.markups = append(s.markups[:i], s.markups[i+1:]...)
			break
		}
	}
	s.mu.Unlock()
	s.Emit(EventMarkupsChanged, nil)
}

// ClearLayer removes every markup on the given layer. Pins are untouched.
func (s *Store) ClearLayer(layer LayerKey) {
	s.mu.Lock()
	kept := s.markups[:0]
	for _, m := range s.markups {
		if m.Layer != layer {
			kept = append(kept, m)
		}
	}
	s.markups = kept
	s.mu.Unlock()
	s.Emit(EventMarkupsChanged, nil)
}

// Markups returns a copy of all markups in insertion order.
func (s *Store) Markups() []Markup {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Markup, len(s.markups))
	copy(out, s.markups)
	return out
}

// VisibleMarkups returns markups on visible layers, insertion order
// preserved. The render pipeline iterates this.
func (s *Store) VisibleMarkups() []Markup {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []Markup
	for _, m := range s.markups {
		if ls, ok := s.layers[m.Layer]; ok && ls.Visible {
			out = append(out, m)
		}
	}
	return out
}

// MarkupsOnLayer returns the layer's markups in insertion order. Erase hit
// tests walk this so that the oldest matching markup wins.
func (s *Store) MarkupsOnLayer(layer LayerKey) []Markup {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []Markup
	for _, m := range s.markups {
		if m.Layer == layer {
			out = append(out, m)
		}
	}
	return out
}

// UpdateMarkup replaces the stored markup with the same ID. Used by the
// measurement refresh to update derived polygon areas.
func (s *Store) UpdateMarkup(m Markup) {
	s.mu.Lock()
	for i := range s.markups {
		if s.markups[i].ID == m.ID {
			s.markups[i] = m
			break
		}
	}
	s.mu.Unlock()
	s.Emit(EventMarkupsChanged, nil)
}

// ReplacePins swaps the full pin collection. Used by the sync relay after a
// wholesale refetch.
func (s *Store) ReplacePins(pins []Pin) {
	s.mu.Lock()
	s.pins = make([]Pin, len(pins))
	copy(s.pins, pins)
	s.mu.Unlock()
	s.Emit(EventPinsChanged, nil)
}

// ReplaceMarkups swaps the full markup collection.
func (s *Store) ReplaceMarkups(markups []Markup) {
	s.mu.Lock()
	s.markups = make([]Markup, len(markups))
	copy(s.markups, markups)
	s.mu.Unlock()
	s.Emit(EventMarkupsChanged, nil)
}

// SetLayerVisible toggles a layer's visibility. Display state only.
func (s *Store) SetLayerVisible(layer LayerKey, visible bool) {
	s.mu.Lock()
	if ls, ok := s.layers[layer]; ok {
		ls.Visible = visible
	}
	s.mu.Unlock()
	s.Emit(EventLayersChanged, layer)
}

// LayerVisible reports whether a layer is visible.
func (s *Store) LayerVisible(layer LayerKey) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	ls, ok := s.layers[layer]
	return ok && ls.Visible
}

// SetLayerOpacity sets a layer's opacity, clamped to 0-100.
func (s *Store) SetLayerOpacity(layer LayerKey, opacity int) {
	if opacity < 0 {
		opacity = 0
	} else if opacity > 100 {
		opacity = 100
	}
	s.mu.Lock()
	if ls, ok := s.layers[layer]; ok {
		ls.Opacity = opacity
	}
	s.mu.Unlock()
	s.Emit(EventLayersChanged, layer)
}

// LayerOpacity returns a layer's opacity in the range 0-100.
func (s *Store) LayerOpacity(layer LayerKey) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if ls, ok := s.layers[layer]; ok {
		return ls.Opacity
	}
	return 100
}

// SetActiveLayer switches the layer new annotations target. Unknown keys
// are ignored.
func (s *Store) SetActiveLayer(layer LayerKey) {
	if _, ok := LayerByKey(layer); !ok {
		return
	}
	s.mu.Lock()
	s.activeLayer = layer
	s.mu.Unlock()
	s.Emit(EventLayersChanged, layer)
}

// ActiveLayer returns the layer new annotations target.
func (s *Store) ActiveLayer() LayerKey {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.activeLayer
}

// sceneFile is the JSON structure of an undo snapshot.
type sceneFile struct {
	Pins    []Pin    `json:"pins"`
	Markups []Markup `json:"markups"`
}

// Snapshot serializes the editable scene (pins and markups) to JSON. Layer
// display state and the active layer are deliberately excluded.
func (s *Store) Snapshot() ([]byte, error) {
	s.mu.RLock()
	file := sceneFile{Pins: s.pins, Markups: s.markups}
	data, err := json.Marshal(file)
	s.mu.RUnlock()
	if err != nil {
		return nil, fmt.Errorf("snapshot scene: %w", err)
	}
	return data, nil
}

// DecodeSnapshot parses a snapshot back into its collections without
// touching any store. History reconciliation uses this to push a restored
// scene to the persistence backend.
func DecodeSnapshot(data []byte) ([]Pin, []Markup, error) {
	var file sceneFile
	if err := json.Unmarshal(data, &file); err != nil {
		return nil, nil, fmt.Errorf("decode snapshot: %w", err)
	}
	return file.Pins, file.Markups, nil
}

// Restore replaces the editable scene from a snapshot produced by Snapshot.
func (s *Store) Restore(data []byte) error {
	var file sceneFile
	if err := json.Unmarshal(data, &file); err != nil {
		return fmt.Errorf("restore scene: %w", err)
	}
	s.mu.Lock()
	s.pins = file.Pins
	s.markups = file.Markups
	s.mu.Unlock()
	s.Emit(EventPinsChanged, nil)
	s.Emit(EventMarkupsChanged, nil)
	return nil
}
