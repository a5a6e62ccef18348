package geometry

import (
	"math"

	"gonum.org/v1/gonum/floats"
)

// PolygonArea computes the area of a simple polygon using the shoelace
// formula. Vertex order does not matter; reversed and rotated vertex lists
// yield the same area. Fewer than 3 vertices has zero area.
func PolygonArea(polygon []Point2D) float64 {
	n := len(polygon)
	if n < 3 {
		return 0
	}

	sum := 0.0
	for i := 0; i < n; i++ {
		j := (i + 1) % n
		sum += polygon[i].X*polygon[j].Y - polygon[j].X*polygon[i].Y
	}

	return math.Abs(sum) / 2
}

// Centroid returns the arithmetic mean of the polygon vertices. It is used
// to place area labels, not as the true center of mass.
func Centroid(polygon []Point2D) Point2D {
	n := len(polygon)
	if n == 0 {
		return Point2D{}
	}

	xs := make([]float64, n)
	ys := make([]float64, n)
	for i, p := range polygon {
		xs[i] = p.X
		ys[i] = p.Y
	}

	return Point2D{
		X: floats.Sum(xs) / float64(n),
		Y: floats.Sum(ys) / float64(n),
	}
}

// BoundingBox returns the axis-aligned bounding rectangle of the points.
// An empty slice yields the zero rectangle.
func BoundingBox(points []Point2D) Rect {
	if len(points) == 0 {
		return Rect{}
	}

	xs := make([]float64, len(points))
	ys := make([]float64, len(points))
	for i, p := range points {
		xs[i] = p.X
		ys[i] = p.Y
	}

	minX, maxX := floats.Min(xs), floats.Max(xs)
	minY, maxY := floats.Min(ys), floats.Max(ys)

	return Rect{X: minX, Y: minY, Width: maxX - minX, Height: maxY - minY}
}

// PointInPolygon tests if a point is inside a polygon using ray casting.
func PointInPolygon(p Point2D, polygon []Point2D) bool {
	if len(polygon) < 3 {
		return false
	}

	inside := false
	n := len(polygon)

	for i := 0; i < n; i++ {
		j := (i + 1) % n
		pi, pj := polygon[i], polygon[j]

		// Check if ray from p going right intersects edge pi-pj
		if ((pi.Y > p.Y) != (pj.Y > p.Y)) &&
			(p.X < (pj.X-pi.X)*(p.Y-pi.Y)/(pj.Y-pi.Y)+pi.X) {
			inside = !inside
		}
	}

	return inside
}

// PolylineLength returns the total length of an open polyline.
func PolylineLength(points []Point2D) float64 {
	total := 0.0
	for i := 1; i < len(points); i++ {
		total += points[i-1].Distance(points[i])
	}
	return total
}
