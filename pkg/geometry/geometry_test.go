package geometry

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestToPixelsRoundTrip(t *testing.T) {
	size := NewSize(800, 600)
	original := NewPoint2D(25, 75)

	px := ToPixels(original, size)
	assert.InDelta(t, 200, px.X, 1e-9)
	assert.InDelta(t, 450, px.Y, 1e-9)

	back := ToPercent(px, size)
	assert.InDelta(t, original.X, back.X, 1e-9)
	assert.InDelta(t, original.Y, back.Y, 1e-9)
}

func TestToPercentZeroSize(t *testing.T) {
	assert.Equal(t, Point2D{}, ToPercent(NewPoint2D(100, 100), Size{}))
	assert.True(t, Size{Width: 0, Height: 100}.IsZero())
	assert.True(t, Size{Width: 100, Height: -1}.IsZero())
	assert.False(t, NewSize(1, 1).IsZero())
}

func TestPolygonAreaUnitSquare(t *testing.T) {
	square := []Point2D{
		{0, 0}, {1, 0}, {1, 1}, {0, 1},
	}
	assert.InDelta(t, 1.0, PolygonArea(square), 1e-9)
}

func TestPolygonAreaOrderInvariant(t *testing.T) {
	poly := []Point2D{
		{0, 0}, {4, 0}, {4, 3}, {2, 5}, {0, 3},
	}
	want := PolygonArea(poly)
	assert.Greater(t, want, 0.0)

	// Reversed winding
	reversed := make([]Point2D, len(poly))
	for i, p := range poly {
		reversed[len(poly)-1-i] = p
	}
	assert.InDelta(t, want, PolygonArea(reversed), 1e-9)

	// Rotated start vertex
	for shift := 1; shift < len(poly); shift++ {
		rotated := append(append([]Point2D{}, poly[shift:]...), poly[:shift]...)
		assert.InDelta(t, want, PolygonArea(rotated), 1e-9)
	}
}

func TestPolygonAreaDegenerate(t *testing.T) {
	assert.Zero(t, PolygonArea(nil))
	assert.Zero(t, PolygonArea([]Point2D{{1, 1}}))
	assert.Zero(t, PolygonArea([]Point2D{{1, 1}, {5, 5}}))
	// Collinear triangle collapses to zero area
	assert.InDelta(t, 0, PolygonArea([]Point2D{{0, 0}, {1, 1}, {2, 2}}), 1e-9)
}

func TestDistanceToSegment(t *testing.T) {
	a := NewPoint2D(0, 0)
	b := NewPoint2D(10, 0)

	tests := []struct {
		name string
		p    Point2D
		want float64
	}{
		{"above midpoint", NewPoint2D(5, 3), 3},
		{"beyond end clamps to endpoint", NewPoint2D(14, 3), 5},
		{"before start clamps to endpoint", NewPoint2D(-4, 3), 5},
		{"on segment", NewPoint2D(7, 0), 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, DistanceToSegment(tt.p, a, b), 1e-9)
			// Segment direction must not matter
			assert.InDelta(t, tt.want, DistanceToSegment(tt.p, b, a), 1e-9)
		})
	}
}

func TestDistanceToSegmentZeroLength(t *testing.T) {
	a := NewPoint2D(3, 4)
	assert.InDelta(t, 5, DistanceToSegment(NewPoint2D(0, 0), a, a), 1e-9)
}

func TestRectContainsWithMargin(t *testing.T) {
	r := NewRect(10, 10, 20, 10)

	assert.True(t, r.Contains(NewPoint2D(15, 15)))
	assert.False(t, r.Contains(NewPoint2D(9, 15)))

	assert.True(t, r.ContainsWithMargin(NewPoint2D(9, 15), 2))
	assert.True(t, r.ContainsWithMargin(NewPoint2D(31, 21), 2))
	assert.False(t, r.ContainsWithMargin(NewPoint2D(7, 15), 2))
}

func TestRectNormalized(t *testing.T) {
	r := Rect{X: 10, Y: 10, Width: -4, Height: -6}.Normalized()
	assert.Equal(t, NewRect(6, 4, 4, 6), r)

	// Already normal rect is unchanged
	assert.Equal(t, NewRect(1, 2, 3, 4), NewRect(1, 2, 3, 4).Normalized())
}

func TestCentroid(t *testing.T) {
	square := []Point2D{{0, 0}, {2, 0}, {2, 2}, {0, 2}}
	c := Centroid(square)
	assert.InDelta(t, 1, c.X, 1e-9)
	assert.InDelta(t, 1, c.Y, 1e-9)

	assert.Equal(t, Point2D{}, Centroid(nil))
}

func TestBoundingBox(t *testing.T) {
	pts := []Point2D{{3, 7}, {-1, 2}, {5, 4}}
	box := BoundingBox(pts)
	assert.Equal(t, NewRect(-1, 2, 6, 5), box)

	assert.Equal(t, Rect{}, BoundingBox(nil))
}

func TestPointInPolygon(t *testing.T) {
	triangle := []Point2D{{0, 0}, {10, 0}, {5, 10}}

	assert.True(t, PointInPolygon(NewPoint2D(5, 3), triangle))
	assert.False(t, PointInPolygon(NewPoint2D(0, 8), triangle))
	assert.False(t, PointInPolygon(NewPoint2D(5, 3), triangle[:2]))
}

func TestPolylineLength(t *testing.T) {
	pts := []Point2D{{0, 0}, {3, 4}, {3, 14}}
	assert.InDelta(t, 15, PolylineLength(pts), 1e-9)
	assert.Zero(t, PolylineLength(pts[:1]))
}

func TestPointHelpers(t *testing.T) {
	p := NewPoint2D(1, 2)
	q := NewPoint2D(3, 5)

	assert.Equal(t, NewPoint2D(4, 7), p.Add(q))
	assert.Equal(t, NewPoint2D(2, 3), q.Sub(p))
	assert.Equal(t, NewPoint2D(2, 4), p.Scale(2))
	assert.InDelta(t, math.Sqrt(13), p.Distance(q), 1e-9)
}
