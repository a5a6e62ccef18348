// Package render draws the committed scene and ephemeral editing overlays
// into an RGBA frame. All painting is direct raster work; the UI widget
// hands the frame to its raster canvas unchanged.
package render

import (
	"image"
	"image/color"

	"proofmark/pkg/geometry"
)

// painter draws primitives into a frame with a fixed alpha. The alpha comes
// from the markup's layer opacity and applies uniformly to everything the
// painter touches.
type painter struct {
	dst   *image.RGBA
	alpha float64
}

func newPainter(dst *image.RGBA, alpha float64) painter {
	if alpha < 0 {
		alpha = 0
	} else if alpha > 1 {
		alpha = 1
	}
	return painter{dst: dst, alpha: alpha}
}

// set blends a single pixel over the existing frame content.
func (pt painter) set(x, y int, col color.NRGBA) {
	bounds := pt.dst.Bounds()
	if x < bounds.Min.X || x >= bounds.Max.X || y < bounds.Min.Y || y >= bounds.Max.Y {
		return
	}
	a := pt.alpha * float64(col.A) / 255
	if a <= 0 {
		return
	}
	existing := pt.dst.RGBAAt(x, y)
	inv := 1 - a
	pt.dst.SetRGBA(x, y, color.RGBA{
		R: uint8(float64(col.R)*a + float64(existing.R)*inv),
		G: uint8(float64(col.G)*a + float64(existing.G)*inv),
		B: uint8(float64(col.B)*a + float64(existing.B)*inv),
		A: uint8(255*a + float64(existing.A)*inv),
	})
}

// line draws a thick line between two points using Bresenham's algorithm.
func (pt painter) line(x1, y1, x2, y2 int, col color.NRGBA, thickness int) {
	if thickness < 1 {
		thickness = 1
	}

	dx := x2 - x1
	dy := y2 - y1
	if dx < 0 {
		dx = -dx
	}
	if dy < 0 {
		dy = -dy
	}

	sx := 1
	if x1 > x2 {
		sx = -1
	}
	sy := 1
	if y1 > y2 {
		sy = -1
	}

	err := dx - dy

	for {
		for t := -thickness / 2; t <= thickness/2; t++ {
			for s := -thickness / 2; s <= thickness/2; s++ {
				pt.set(x1+s, y1+t, col)
			}
		}

		if x1 == x2 && y1 == y2 {
			break
		}

		e2 := 2 * err
		if e2 > -dy {
			err -= dy
			x1 += sx
		}
		if e2 < dx {
			err += dx
			y1 += sy
		}
	}
}

// dashedLine draws a line in alternating on/off runs. Used for the live
// trace polygon outline.
func (pt painter) dashedLine(a, b geometry.Point2D, col color.NRGBA, thickness int) {
	const dash = 6.0
	length := a.Distance(b)
	if length == 0 {
		return
	}
	steps := int(length / dash)
	for i := 0; i <= steps; i += 2 {
		t1 := float64(i) * dash / length
		t2 := float64(i+1) * dash / length
		if t1 > 1 {
			break
		}
		if t2 > 1 {
			t2 = 1
		}
		p1 := geometry.Point2D{X: a.X + (b.X-a.X)*t1, Y: a.Y + (b.Y-a.Y)*t1}
		p2 := geometry.Point2D{X: a.X + (b.X-a.X)*t2, Y: a.Y + (b.Y-a.Y)*t2}
		pt.line(int(p1.X), int(p1.Y), int(p2.X), int(p2.Y), col, thickness)
	}
}

// polyline strokes consecutive segments through the points.
func (pt painter) polyline(points []geometry.Point2D, col color.NRGBA, thickness int) {
	for i := 1; i < len(points); i++ {
		pt.line(
			int(points[i-1].X), int(points[i-1].Y),
			int(points[i].X), int(points[i].Y),
			col, thickness,
		)
	}
}

// rectOutline strokes an axis-aligned rectangle.
func (pt painter) rectOutline(r geometry.Rect, col color.NRGBA, thickness int) {
	x1, y1 := int(r.X), int(r.Y)
	x2, y2 := int(r.X+r.Width), int(r.Y+r.Height)
	pt.line(x1, y1, x2, y1, col, thickness)
	pt.line(x2, y1, x2, y2, col, thickness)
	pt.line(x2, y2, x1, y2, col, thickness)
	pt.line(x1, y2, x1, y1, col, thickness)
}

// fillRect fills an axis-aligned rectangle.
func (pt painter) fillRect(r geometry.Rect, col color.NRGBA) {
	x1, y1 := int(r.X), int(r.Y)
	x2, y2 := int(r.X+r.Width), int(r.Y+r.Height)
	for y := y1; y <= y2; y++ {
		for x := x1; x <= x2; x++ {
			pt.set(x, y, col)
		}
	}
}

// circle draws a filled disc or a 2px ring centered at (cx, cy).
func (pt painter) circle(cx, cy, r float64, col color.NRGBA, filled bool) {
	minX := int(cx - r - 1)
	maxX := int(cx + r + 1)
	minY := int(cy - r - 1)
	maxY := int(cy + r + 1)

	r2 := r * r
	innerR2 := (r - 2) * (r - 2)

	for y := minY; y <= maxY; y++ {
		for x := minX; x <= maxX; x++ {
			dx := float64(x) - cx
			dy := float64(y) - cy
			dist2 := dx*dx + dy*dy

			if filled {
				if dist2 <= r2 {
					pt.set(x, y, col)
				}
			} else if dist2 <= r2 && dist2 >= innerR2 {
				pt.set(x, y, col)
			}
		}
	}
}

// fillPolygon fills a polygon using a scanline sweep.
func (pt painter) fillPolygon(points []geometry.Point2D, col color.NRGBA) {
	if len(points) < 3 {
		return
	}

	box := geometry.BoundingBox(points)
	minY := int(box.Y)
	maxY := int(box.Y + box.Height)

	n := len(points)
	for y := minY; y <= maxY; y++ {
		var xIntersections []float64
		fy := float64(y)
		for i := 0; i < n; i++ {
			p1 := points[i]
			p2 := points[(i+1)%n]

			if (p1.Y <= fy && p2.Y > fy) || (p2.Y <= fy && p1.Y > fy) {
				t := (fy - p1.Y) / (p2.Y - p1.Y)
				xIntersections = append(xIntersections, p1.X+t*(p2.X-p1.X))
			}
		}

		for i := 0; i < len(xIntersections)-1; i++ {
			for j := i + 1; j < len(xIntersections); j++ {
				if xIntersections[j] < xIntersections[i] {
					xIntersections[i], xIntersections[j] = xIntersections[j], xIntersections[i]
				}
			}
		}

		for i := 0; i+1 < len(xIntersections); i += 2 {
			for x := int(xIntersections[i]); x <= int(xIntersections[i+1]); x++ {
				pt.set(x, y, col)
			}
		}
	}
}

// squareMarker draws a small filled square centered at p. Trace vertices
// use these.
func (pt painter) squareMarker(p geometry.Point2D, half int, col color.NRGBA) {
	for dy := -half; dy <= half; dy++ {
		for dx := -half; dx <= half; dx++ {
			pt.set(int(p.X)+dx, int(p.Y)+dy, col)
		}
	}
}
