// Package geometry provides the geometric types and primitives shared by the
// annotation engine: percentage-space points, pixel conversion, hit tests,
// and polygon math.
package geometry

import (
	"math"
)

// Point2D represents a 2D point with floating-point coordinates.
// Annotation geometry stores points in percentage space (0-100 of the
// container on each axis); conversion to pixels happens at render and
// hit-test time via ToPixels.
type Point2D struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// NewPoint2D creates a new Point2D.
func NewPoint2D(x, y float64) Point2D {
	return Point2D{X: x, Y: y}
}

// Distance returns the Euclidean distance to another point.
func (p Point2D) Distance(other Point2D) float64 {
	dx := p.X - other.X
	dy := p.Y - other.Y
	return math.Sqrt(dx*dx + dy*dy)
}

// Add returns the sum of two points.
func (p Point2D) Add(other Point2D) Point2D {
	return Point2D{X: p.X + other.X, Y: p.Y + other.Y}
}

// Sub returns the difference of two points.
func (p Point2D) Sub(other Point2D) Point2D {
	return Point2D{X: p.X - other.X, Y: p.Y - other.Y}
}

// Scale returns the point scaled by a factor.
func (p Point2D) Scale(factor float64) Point2D {
	return Point2D{X: p.X * factor, Y: p.Y * factor}
}

// Size represents a 2D container size in pixels.
type Size struct {
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// NewSize creates a new Size.
func NewSize(width, height float64) Size {
	return Size{Width: width, Height: height}
}

// IsZero reports whether either axis is non-positive. Rendering and event
// handling must short-circuit while the container has no usable size.
func (s Size) IsZero() bool {
	return s.Width <= 0 || s.Height <= 0
}

// ToPixels converts a percentage-space point (0-100 on each axis) to pixel
// coordinates within the given container size.
func ToPixels(p Point2D, size Size) Point2D {
	return Point2D{
		X: p.X / 100 * size.Width,
		Y: p.Y / 100 * size.Height,
	}
}

// ToPercent converts a pixel-space point to percentage space (0-100 on each
// axis) within the given container size. A zero-size container yields the
// zero point; callers are expected to skip work entirely in that case.
func ToPercent(p Point2D, size Size) Point2D {
	if size.IsZero() {
		return Point2D{}
	}
	return Point2D{
		X: p.X / size.Width * 100,
		Y: p.Y / size.Height * 100,
	}
}

// Rect represents a rectangle with floating-point coordinates.
type Rect struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// NewRect creates a new Rect.
func NewRect(x, y, width, height float64) Rect {
	return Rect{X: x, Y: y, Width: width, Height: height}
}

// Contains returns true if the point is inside the rectangle.
func (r Rect) Contains(p Point2D) bool {
	return p.X >= r.X && p.X <= r.X+r.Width &&
		p.Y >= r.Y && p.Y <= r.Y+r.Height
}

// ContainsWithMargin returns true if the point is inside the rectangle
// expanded by margin on all four sides. Hit tests use this so thin borders
// remain clickable.
func (r Rect) ContainsWithMargin(p Point2D, margin float64) bool {
	expanded := Rect{
		X:      r.X - margin,
		Y:      r.Y - margin,
		Width:  r.Width + 2*margin,
		Height: r.Height + 2*margin,
	}
	return expanded.Contains(p)
}

// Center returns the center point of the rectangle.
func (r Rect) Center() Point2D {
	return Point2D{X: r.X + r.Width/2, Y: r.Y + r.Height/2}
}

// Normalized returns an equivalent rectangle with non-negative width and
// height, regardless of which corner the caller started the drag from.
func (r Rect) Normalized() Rect {
	if r.Width < 0 {
		r.X += r.Width
		r.Width = -r.Width
	}
	if r.Height < 0 {
		r.Y += r.Height
		r.Height = -r.Height
	}
	return r
}

// DistanceToSegment returns the distance from p to the line segment a-b.
// A zero-length segment degrades to the point distance to a.
func DistanceToSegment(p, a, b Point2D) float64 {
	seg := b.Sub(a)
	lenSq := seg.X*seg.X + seg.Y*seg.Y
	if lenSq == 0 {
		return p.Distance(a)
	}
	rel := p.Sub(a)
	t := (rel.X*seg.X + rel.Y*seg.Y) / lenSq
	t = math.Max(0, math.Min(1, t))
	return p.Distance(a.Add(seg.Scale(t)))
}
