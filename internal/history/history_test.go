package history

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUndoRedoRoundTrip(t *testing.T) {
	h := New(10)

	h.Push([]byte("state-0"))
	current := []byte("state-1")

	snap, ok := h.Undo(current)
	require.True(t, ok)
	assert.Equal(t, "state-0", string(snap))

	snap, ok = h.Redo(snap)
	require.True(t, ok)
	assert.Equal(t, "state-1", string(snap))

	// Undo again returns the original state, so undo+redo is idempotent
	snap, ok = h.Undo(snap)
	require.True(t, ok)
	assert.Equal(t, "state-0", string(snap))
}

func TestUndoEmpty(t *testing.T) {
	h := New(5)

	_, ok := h.Undo([]byte("current"))
	assert.False(t, ok)
	_, ok = h.Redo([]byte("current"))
	assert.False(t, ok)
	assert.False(t, h.CanUndo())
	assert.False(t, h.CanRedo())
}

func TestPushClearsRedo(t *testing.T) {
	h := New(5)

	h.Push([]byte("a"))
	_, ok := h.Undo([]byte("b"))
	require.True(t, ok)
	require.True(t, h.CanRedo())

	h.Push([]byte("c"))
	assert.False(t, h.CanRedo())
	_, ok = h.Redo([]byte("d"))
	assert.False(t, ok)
}

func TestBoundedDepthDiscardsOldest(t *testing.T) {
	h := New(3)

	for i := 0; i < 5; i++ {
		h.Push([]byte(fmt.Sprintf("s%d", i)))
	}

	// Only the newest 3 survive: s4, s3, s2
	want := []string{"s4", "s3", "s2"}
	current := []byte("top")
	for _, w := range want {
		snap, ok := h.Undo(current)
		require.True(t, ok)
		assert.Equal(t, w, string(snap))
		current = snap
	}
	_, ok := h.Undo(current)
	assert.False(t, ok)
}

func TestDefaultDepth(t *testing.T) {
	h := New(0)

	for i := 0; i < DefaultDepth+7; i++ {
		h.Push([]byte(fmt.Sprintf("s%d", i)))
	}

	count := 0
	current := []byte("top")
	for {
		snap, ok := h.Undo(current)
		if !ok {
			break
		}
		current = snap
		count++
	}
	assert.Equal(t, DefaultDepth, count)
}

func TestClear(t *testing.T) {
	h := New(5)
	h.Push([]byte("a"))
	_, _ = h.Undo([]byte("b"))

	h.Clear()
	assert.False(t, h.CanUndo())
	assert.False(t, h.CanRedo())
}
