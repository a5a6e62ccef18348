package render

import (
	"image"
	"image/color"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"proofmark/internal/measure"
	"proofmark/internal/scene"
	"proofmark/pkg/geometry"
)

func newFrame(w, h int) *image.RGBA {
	return image.NewRGBA(image.Rect(0, 0, w, h))
}

// paintedPixels counts pixels with any alpha in the frame.
func paintedPixels(img *image.RGBA) int {
	count := 0
	b := img.Bounds()
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			if img.RGBAAt(x, y).A > 0 {
				count++
			}
		}
	}
	return count
}

func TestParseHexColor(t *testing.T) {
	c, ok := parseHexColor("#4f7fff")
	require.True(t, ok)
	assert.Equal(t, color.NRGBA{R: 0x4f, G: 0x7f, B: 0xff, A: 0xff}, c)

	_, ok = parseHexColor("")
	assert.False(t, ok)
	_, ok = parseHexColor("4f7fff")
	assert.False(t, ok)
	_, ok = parseHexColor("#zzzzzz")
	assert.False(t, ok)
}

func TestFormatArea(t *testing.T) {
	assert.Equal(t, "144.0 sq in / 1.00 sq ft", FormatArea(144))
	assert.Equal(t, "0.0 sq in / 0.00 sq ft", FormatArea(0))
}

func TestRenderRectMarkup(t *testing.T) {
	store := scene.NewStore()
	store.AddMarkup(scene.Markup{
		ID:          "r1",
		Layer:       scene.LayerCustomer,
		Kind:        scene.KindRect,
		Rect:        &scene.RectData{X: 10, Y: 10, Width: 50, Height: 50},
		StrokeWidth: 3,
	})

	frame := newFrame(200, 200)
	New(store, measure.NewScale(10)).Render(frame)

	assert.Greater(t, paintedPixels(frame), 0)
	// Top-left corner of the rectangle lands at 10% of 200px
	assert.NotZero(t, frame.RGBAAt(20, 20).A)
	// Center stays empty, the rect is outlined not filled
	assert.Zero(t, frame.RGBAAt(70, 70).A)
}

func TestRenderSkipsHiddenLayer(t *testing.T) {
	store := scene.NewStore()
	store.AddMarkup(scene.Markup{
		ID:    "r1",
		Layer: scene.LayerDesigner,
		Kind:  scene.KindRect,
		Rect:  &scene.RectData{X: 10, Y: 10, Width: 50, Height: 50},
	})
	store.SetLayerVisible(scene.LayerDesigner, false)

	frame := newFrame(200, 200)
	New(store, measure.NewScale(10)).Render(frame)

	assert.Zero(t, paintedPixels(frame))
}

func TestRenderLayerOpacity(t *testing.T) {
	store := scene.NewStore()
	store.AddMarkup(scene.Markup{
		ID:    "r1",
		Layer: scene.LayerCustomer,
		Kind:  scene.KindRect,
		Rect:  &scene.RectData{X: 0, Y: 0, Width: 100, Height: 100},
	})

	full := newFrame(100, 100)
	New(store, measure.NewScale(10)).Render(full)
	fullAlpha := full.RGBAAt(50, 0).A
	require.NotZero(t, fullAlpha)

	store.SetLayerOpacity(scene.LayerCustomer, 30)
	dimmed := newFrame(100, 100)
	New(store, measure.NewScale(10)).Render(dimmed)
	dimmedAlpha := dimmed.RGBAAt(50, 0).A

	assert.Less(t, dimmedAlpha, fullAlpha)
}

func TestRenderAlphaDoesNotLeakAcrossMarkups(t *testing.T) {
	store := scene.NewStore()
	store.AddMarkup(scene.Markup{
		ID:    "dim",
		Layer: scene.LayerCustomer,
		Kind:  scene.KindRect,
		Rect:  &scene.RectData{X: 0, Y: 0, Width: 20, Height: 20},
	})
	store.AddMarkup(scene.Markup{
		ID:    "bright",
		Layer: scene.LayerDesigner,
		Kind:  scene.KindRect,
		Rect:  &scene.RectData{X: 60, Y: 60, Width: 20, Height: 20},
	})
	store.SetLayerOpacity(scene.LayerCustomer, 20)

	frame := newFrame(100, 100)
	New(store, measure.NewScale(10)).Render(frame)

	// The designer-layer rect keeps full opacity
	assert.Greater(t, frame.RGBAAt(70, 60).A, frame.RGBAAt(10, 0).A)
}

func TestRenderPinMarker(t *testing.T) {
	store := scene.NewStore()
	store.AddPin(scene.Pin{ID: "p1", Layer: scene.LayerManager, X: 50, Y: 50, PinNumber: 3})

	frame := newFrame(100, 100)
	New(store, measure.NewScale(10)).Render(frame)

	// Disc interior carries the manager accent color; sample left of the
	// number glyph
	got := frame.RGBAAt(42, 50)
	assert.NotZero(t, got.A)
	assert.Greater(t, got.R, got.B)
}

func TestRenderResolvedPinDimmed(t *testing.T) {
	store := scene.NewStore()
	store.AddPin(scene.Pin{ID: "p1", Layer: scene.LayerManager, X: 20, Y: 20, PinNumber: 1})
	store.AddPin(scene.Pin{ID: "p2", Layer: scene.LayerManager, X: 70, Y: 70, PinNumber: 2, Resolved: true})

	frame := newFrame(100, 100)
	New(store, measure.NewScale(10)).Render(frame)

	open := frame.RGBAAt(16, 20).A
	resolved := frame.RGBAAt(66, 70).A
	assert.Less(t, resolved, open)
}

func TestRenderZeroFrame(t *testing.T) {
	store := scene.NewStore()
	store.AddMarkup(scene.Markup{
		ID: "r1", Layer: scene.LayerCustomer, Kind: scene.KindRect,
		Rect: &scene.RectData{Width: 10, Height: 10},
	})

	// Must not panic
	New(store, measure.NewScale(10)).Render(newFrame(0, 0))
}

func TestDrawOverlayTrace(t *testing.T) {
	frame := newFrame(200, 200)
	ov := &Overlay{
		Trace: []geometry.Point2D{
			{X: 20, Y: 20}, {X: 120, Y: 20}, {X: 70, Y: 120},
		},
		TraceSqIn:   12,
		Color:       color.NRGBA{R: 255, A: 255},
		StrokeWidth: 2,
	}
	DrawOverlay(frame, ov)

	assert.Greater(t, paintedPixels(frame), 0)
	// Vertex markers land on the placed points
	assert.NotZero(t, frame.RGBAAt(20, 20).A)
	assert.NotZero(t, frame.RGBAAt(120, 20).A)
}

func TestDrawOverlayFreehandLengthReadout(t *testing.T) {
	bare := newFrame(200, 200)
	path := []geometry.Point2D{{X: 20, Y: 100}, {X: 180, Y: 100}}
	col := color.NRGBA{B: 255, A: 255}
	DrawOverlay(bare, &Overlay{Path: path, Color: col, StrokeWidth: 2})

	withLen := newFrame(200, 200)
	DrawOverlay(withLen, &Overlay{Path: path, PathLenIn: 16, Color: col, StrokeWidth: 2})

	// The length pill adds paint beyond the stroke itself
	assert.Greater(t, paintedPixels(withLen), paintedPixels(bare))
}

func TestFormatLength(t *testing.T) {
	assert.Equal(t, "16.0 in", FormatLength(16))
	assert.Equal(t, "2.5 in", FormatLength(2.5))
}

func TestDrawOverlayNil(t *testing.T) {
	frame := newFrame(10, 10)
	DrawOverlay(frame, nil)
	assert.Zero(t, paintedPixels(frame))
}

func TestDrawOverlayArrowPreview(t *testing.T) {
	frame := newFrame(100, 100)
	ov := NewArrowOverlay(
		geometry.NewPoint2D(10, 10),
		geometry.NewPoint2D(80, 80),
		color.NRGBA{G: 255, A: 255},
		3,
	)
	DrawOverlay(frame, ov)

	assert.NotZero(t, frame.RGBAAt(45, 45).A)
	assert.NotZero(t, frame.RGBAAt(80, 80).A)
}
