// Package measure converts raw polygon areas to physical units via a
// user-supplied scale factor.
package measure

import (
	"sync"

	"proofmark/internal/scene"
	"proofmark/pkg/geometry"
)

// SquareInchesPerFoot converts between the two reported units.
const SquareInchesPerFoot = 144.0

// Scale holds the pixels-per-inch calibration for the current proof. It can
// change mid-session when the user recalibrates.
type Scale struct {
	mu        sync.RWMutex
	pxPerInch float64
}

// NewScale creates a scale with the given pixels-per-inch factor.
func NewScale(pxPerInch float64) *Scale {
	return &Scale{pxPerInch: pxPerInch}
}

// Set updates the pixels-per-inch factor.
func (s *Scale) Set(pxPerInch float64) {
	s.mu.Lock()
	s.pxPerInch = pxPerInch
	s.mu.Unlock()
}

// Factor returns the current pixels-per-inch factor.
func (s *Scale) Factor() float64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.pxPerInch
}

// SquareInches converts a raw pixel-space area to square inches. A zero or
// negative scale means the proof is uncalibrated and yields 0.
func (s *Scale) SquareInches(rawArea float64) float64 {
	f := s.Factor()
	if f <= 0 {
		return 0
	}
	return rawArea / (f * f)
}

// SquareFeet converts square inches to square feet.
func SquareFeet(sqIn float64) float64 {
	return sqIn / SquareInchesPerFoot
}

// PolygonAreaSqIn computes the physical area of a percentage-space polygon
// rendered into the given container size.
func (s *Scale) PolygonAreaSqIn(points []geometry.Point2D, size geometry.Size) float64 {
	if size.IsZero() || len(points) < 3 {
		return 0
	}
	px := make([]geometry.Point2D, len(points))
	for i, p := range points {
		px[i] = geometry.ToPixels(p, size)
	}
	return s.SquareInches(geometry.PolygonArea(px))
}

// PolylineLengthIn computes the physical length of a percentage-space
// stroke rendered into the given container size. An uncalibrated scale or
// zero-size container yields 0.
func (s *Scale) PolylineLengthIn(points []geometry.Point2D, size geometry.Size) float64 {
	if size.IsZero() || len(points) < 2 {
		return 0
	}
	f := s.Factor()
	if f <= 0 {
		return 0
	}
	px := make([]geometry.Point2D, len(points))
	for i, p := range points {
		px[i] = geometry.ToPixels(p, size)
	}
	return geometry.PolylineLength(px) / f
}

// Recompute refreshes the derived area on every polygon markup in the
// store. Vertices are left untouched; only the cached physical area
// changes. Called after the scale factor is recalibrated.
func (s *Scale) Recompute(store *scene.Store, size geometry.Size) {
	for _, m := range store.Markups() {
		if m.Kind != scene.KindPolygon || m.Polygon == nil {
			continue
		}
		area := s.PolygonAreaSqIn(m.Polygon.Points, size)
		if area == m.Polygon.AreaSqIn {
			continue
		}
		updated := m
		updated.Polygon = &scene.PolygonData{
			Points:   m.Polygon.Points,
			AreaSqIn: area,
		}
		store.UpdateMarkup(updated)
	}
}
