// Package history implements bounded undo/redo over whole-scene snapshots.
package history

// DefaultDepth is the number of undo steps kept when no override is
// configured.
const DefaultDepth = 20

// History keeps two bounded stacks of scene snapshots. A snapshot is an
// opaque byte slice; the caller owns serialization.
type History struct {
	depth int
	undo  [][]byte
	redo  [][]byte
}

// New creates a History with the given depth. Non-positive depths fall back
// to DefaultDepth.
func New(depth int) *History {
	if depth <= 0 {
		depth = DefaultDepth
	}
	return &History{depth: depth}
}

// Push records the pre-mutation snapshot and clears the redo stack. When
// the undo stack is full the oldest snapshot is discarded.
func (h *History) Push(snapshot []byte) {
	if len(h.undo) >= h.depth {
		h.undo = h.undo[len(h.undo)-h.depth+1:]
	}
	h.undo = append(h.undo, snapshot)
	h.redo = nil
}

// Undo pops the most recent snapshot, pushing current onto the redo stack.
// Returns false when there is nothing to undo; current is not consumed in
// that case.
func (h *History) Undo(current []byte) ([]byte, bool) {
	if len(h.undo) == 0 {
		return nil, false
	}
	top := h.undo[len(h.undo)-1]
	h.undo = h.undo[:len(h.undo)-1]
	h.redo = append(h.redo, current)
	return top, true
}

// Redo pops the most recently undone snapshot, pushing current onto the
// undo stack. Returns false when there is nothing to redo.
func (h *History) Redo(current []byte) ([]byte, bool) {
	if len(h.redo) == 0 {
		return nil, false
	}
	top := h.redo[len(h.redo)-1]
	h.redo = h.redo[:len(h.redo)-1]
	h.undo = append(h.undo, current)
	return top, true
}

// CanUndo reports whether an undo step is available.
func (h *History) CanUndo() bool { return len(h.undo) > 0 }

// CanRedo reports whether a redo step is available.
func (h *History) CanRedo() bool { return len(h.redo) > 0 }

// Clear drops both stacks.
func (h *History) Clear() {
	h.undo = nil
	h.redo = nil
}
