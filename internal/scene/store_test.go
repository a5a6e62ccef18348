package scene

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"proofmark/pkg/geometry"
)

func testMarkup(id string, layer LayerKey) Markup {
	return Markup{
		ID:    id,
		Layer: layer,
		Kind:  KindDraw,
		Path: &PathData{Points: []geometry.Point2D{
			{X: 10, Y: 10}, {X: 20, Y: 20},
		}},
		StrokeWidth: 3,
		CreatedAt:   time.Now(),
	}
}

func TestStoreDefaults(t *testing.T) {
	s := NewStore()

	assert.Equal(t, LayerCustomer, s.ActiveLayer())
	for _, l := range Layers {
		assert.True(t, s.LayerVisible(l.Key))
		assert.Equal(t, 100, s.LayerOpacity(l.Key))
	}
}

func TestStorePinLifecycle(t *testing.T) {
	s := NewStore()

	s.AddPin(Pin{ID: "p1", Layer: LayerCustomer, X: 50, Y: 50, PinNumber: 1})
	s.AddPin(Pin{ID: "p2", Layer: LayerDesigner, X: 10, Y: 10, PinNumber: 2})

	pins := s.Pins()
	require.Len(t, pins, 2)
	assert.Equal(t, "p1", pins[0].ID)

	s.SetPinResolved("p1", true)
	p, ok := s.PinByID("p1")
	require.True(t, ok)
	assert.True(t, p.Resolved)

	s.AppendReply("p1", Reply{ID: "r1", Content: "agreed"})
	p, _ = s.PinByID("p1")
	require.Len(t, p.Replies, 1)
	assert.Equal(t, "agreed", p.Replies[0].Content)

	s.RemovePin("p1")
	_, ok = s.PinByID("p1")
	assert.False(t, ok)
	assert.Len(t, s.Pins(), 1)

	// Removing an unknown pin is a no-op
	s.RemovePin("missing")
	assert.Len(t, s.Pins(), 1)
}

func TestStoreVisibilityFiltering(t *testing.T) {
	s := NewStore()
	s.AddPin(Pin{ID: "p1", Layer: LayerCustomer})
	s.AddPin(Pin{ID: "p2", Layer: LayerDesigner})
	s.AddMarkup(testMarkup("m1", LayerCustomer))
	s.AddMarkup(testMarkup("m2", LayerDesigner))

	s.SetLayerVisible(LayerDesigner, false)

	pins := s.VisiblePins()
	require.Len(t, pins, 1)
	assert.Equal(t, "p1", pins[0].ID)

	markups := s.VisibleMarkups()
	require.Len(t, markups, 1)
	assert.Equal(t, "m1", markups[0].ID)

	s.SetLayerVisible(LayerDesigner, true)
	assert.Len(t, s.VisiblePins(), 2)
}

func TestStoreOpacityIsolatedPerLayer(t *testing.T) {
	s := NewStore()

	s.SetLayerOpacity(LayerCustomer, 40)
	assert.Equal(t, 40, s.LayerOpacity(LayerCustomer))
	assert.Equal(t, 100, s.LayerOpacity(LayerDesigner))
	assert.Equal(t, 100, s.LayerOpacity(LayerManager))

	// Clamped at both ends
	s.SetLayerOpacity(LayerManager, -5)
	assert.Equal(t, 0, s.LayerOpacity(LayerManager))
	s.SetLayerOpacity(LayerManager, 250)
	assert.Equal(t, 100, s.LayerOpacity(LayerManager))
}

func TestStoreMarkupOrderAndClear(t *testing.T) {
	s := NewStore()
	s.AddMarkup(testMarkup("m1", LayerCustomer))
	s.AddMarkup(testMarkup("m2", LayerDesigner))
	s.AddMarkup(testMarkup("m3", LayerCustomer))

	onLayer := s.MarkupsOnLayer(LayerCustomer)
	require.Len(t, onLayer, 2)
	assert.Equal(t, "m1", onLayer[0].ID)
	assert.Equal(t, "m3", onLayer[1].ID)

	s.ClearLayer(LayerCustomer)
	assert.Empty(t, s.MarkupsOnLayer(LayerCustomer))
	require.Len(t, s.Markups(), 1)
	assert.Equal(t, "m2", s.Markups()[0].ID)
}

func TestStoreActiveLayer(t *testing.T) {
	s := NewStore()
	s.SetActiveLayer(LayerManager)
	assert.Equal(t, LayerManager, s.ActiveLayer())

	// Unknown keys are rejected
	s.SetActiveLayer(LayerKey("qa"))
	assert.Equal(t, LayerManager, s.ActiveLayer())
}

func TestStoreSnapshotRestore(t *testing.T) {
	s := NewStore()
	s.AddPin(Pin{ID: "p1", Layer: LayerCustomer, X: 5, Y: 5, PinNumber: 1})
	s.AddMarkup(testMarkup("m1", LayerDesigner))

	snap, err := s.Snapshot()
	require.NoError(t, err)

	s.RemovePin("p1")
	s.RemoveMarkup("m1")
	assert.Empty(t, s.Pins())
	assert.Empty(t, s.Markups())

	require.NoError(t, s.Restore(snap))
	require.Len(t, s.Pins(), 1)
	require.Len(t, s.Markups(), 1)
	assert.Equal(t, "p1", s.Pins()[0].ID)
	assert.Equal(t, KindDraw, s.Markups()[0].Kind)

	assert.Error(t, s.Restore([]byte("not json")))
}

func TestStoreReplaceCollections(t *testing.T) {
	s := NewStore()
	s.AddPin(Pin{ID: "old"})

	s.ReplacePins([]Pin{{ID: "a"}, {ID: "b"}})
	require.Len(t, s.Pins(), 2)
	assert.Equal(t, "a", s.Pins()[0].ID)

	s.ReplaceMarkups([]Markup{testMarkup("m9", LayerManager)})
	require.Len(t, s.Markups(), 1)
	assert.Equal(t, "m9", s.Markups()[0].ID)
}

func TestStoreEvents(t *testing.T) {
	s := NewStore()

	var pinEvents, markupEvents int
	s.On(EventPinsChanged, func(interface{}) { pinEvents++ })
	s.On(EventMarkupsChanged, func(interface{}) { markupEvents++ })

	s.AddPin(Pin{ID: "p1"})
	s.AddMarkup(testMarkup("m1", LayerCustomer))
	s.RemoveMarkup("m1")

	assert.Equal(t, 1, pinEvents)
	assert.Equal(t, 2, markupEvents)
}
