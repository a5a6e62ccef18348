package measure

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"proofmark/internal/scene"
	"proofmark/pkg/geometry"
)

func TestSquareInches(t *testing.T) {
	s := NewScale(10) // 10 px per inch

	// 100x100 px square = 10x10 in = 100 sq in
	assert.InDelta(t, 100, s.SquareInches(10000), 1e-9)
	assert.InDelta(t, 1, s.SquareInches(100), 1e-9)
}

func TestSquareInchesUncalibrated(t *testing.T) {
	assert.Zero(t, NewScale(0).SquareInches(10000))
	assert.Zero(t, NewScale(-3).SquareInches(10000))
}

func TestSquareFeet(t *testing.T) {
	assert.InDelta(t, 1, SquareFeet(144), 1e-9)
	assert.InDelta(t, 0.5, SquareFeet(72), 1e-9)
}

func TestSetFactor(t *testing.T) {
	s := NewScale(10)
	s.Set(20)
	assert.InDelta(t, 20, s.Factor(), 1e-9)
	// Doubling the factor quarters the physical area
	assert.InDelta(t, 25, s.SquareInches(10000), 1e-9)
}

func TestPolygonAreaSqIn(t *testing.T) {
	s := NewScale(10)
	size := geometry.NewSize(1000, 1000)

	// 10% x 10% of a 1000px container = 100x100 px = 100 sq in
	square := []geometry.Point2D{
		{X: 0, Y: 0}, {X: 10, Y: 0}, {X: 10, Y: 10}, {X: 0, Y: 10},
	}
	assert.InDelta(t, 100, s.PolygonAreaSqIn(square, size), 1e-9)

	assert.Zero(t, s.PolygonAreaSqIn(square, geometry.Size{}))
	assert.Zero(t, s.PolygonAreaSqIn(square[:2], size))
}

func TestPolylineLengthIn(t *testing.T) {
	s := NewScale(10)
	size := geometry.NewSize(1000, 1000)

	// 10% to 50% horizontally on a 1000px container = 400 px = 40 in
	stroke := []geometry.Point2D{{X: 10, Y: 50}, {X: 50, Y: 50}}
	assert.InDelta(t, 40, s.PolylineLengthIn(stroke, size), 1e-9)

	assert.Zero(t, s.PolylineLengthIn(stroke, geometry.Size{}))
	assert.Zero(t, s.PolylineLengthIn(stroke[:1], size))
	assert.Zero(t, NewScale(0).PolylineLengthIn(stroke, size))
}

func TestRecompute(t *testing.T) {
	store := scene.NewStore()
	size := geometry.NewSize(1000, 1000)
	s := NewScale(10)

	square := []geometry.Point2D{
		{X: 0, Y: 0}, {X: 10, Y: 0}, {X: 10, Y: 10}, {X: 0, Y: 10},
	}
	store.AddMarkup(scene.Markup{
		ID:      "poly",
		Layer:   scene.LayerCustomer,
		Kind:    scene.KindPolygon,
		Polygon: &scene.PolygonData{Points: square, AreaSqIn: 100},
	})
	store.AddMarkup(scene.Markup{
		ID:    "line",
		Layer: scene.LayerCustomer,
		Kind:  scene.KindDraw,
		Path:  &scene.PathData{Points: square[:2]},
	})

	s.Set(20)
	s.Recompute(store, size)

	markups := store.Markups()
	require.Len(t, markups, 2)
	require.NotNil(t, markups[0].Polygon)
	assert.InDelta(t, 25, markups[0].Polygon.AreaSqIn, 1e-9)
	// Vertices are untouched
	assert.Equal(t, square, markups[0].Polygon.Points)
	// Non-polygon markups are untouched
	assert.Nil(t, markups[1].Polygon)
}
