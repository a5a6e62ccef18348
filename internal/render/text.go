package render

import (
	"image"
	"image/color"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"

	"proofmark/pkg/geometry"
)

// labelFace is the fixed-size face used for all canvas text.
var labelFace = basicfont.Face7x13

// pillBackground is the dark backing behind text labels and area captions.
var pillBackground = color.NRGBA{R: 13, G: 15, B: 20, A: 204}

// measureText returns the pixel width of s in the label face.
func measureText(s string) int {
	return font.MeasureString(labelFace, s).Ceil()
}

// drawText renders s with its baseline at (x, y), blended at the painter's
// alpha.
func (pt painter) drawText(x, y int, s string, col color.NRGBA) {
	src := color.NRGBA{
		R: col.R,
		G: col.G,
		B: col.B,
		A: uint8(float64(col.A) * pt.alpha),
	}
	d := font.Drawer{
		Dst:  pt.dst,
		Src:  image.NewUniform(src),
		Face: labelFace,
		Dot:  fixed.P(x, y),
	}
	d.DrawString(s)
}

// textPill draws s over a filled pill anchored at the text baseline point.
// The pill extends 4px left and right of the text and spans the line height
// above the baseline.
func (pt painter) textPill(x, y int, s string, col color.NRGBA) {
	w := measureText(s)
	const pad = 4
	const height = 22

	body := geometry.NewRect(float64(x-pad), float64(y-16), float64(w+2*pad), float64(height))
	pt.fillRect(body, pillBackground)
	r := float64(height) / 2
	pt.circle(body.X, body.Y+r, r, pillBackground, true)
	pt.circle(body.X+body.Width, body.Y+r, r, pillBackground, true)

	pt.drawText(x, y, s, col)
}

// centeredText renders s horizontally centered on cx with baseline y.
func (pt painter) centeredText(cx, y int, s string, col color.NRGBA) {
	pt.drawText(cx-measureText(s)/2, y, s, col)
}
