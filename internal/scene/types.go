package scene

import (
	"time"

	"proofmark/pkg/geometry"
)

// Reply is a threaded response attached to a pin.
type Reply struct {
	ID         string    `json:"id"`
	AuthorID   string    `json:"author_id"`
	AuthorName string    `json:"author_name"`
	Content    string    `json:"content"`
	CreatedAt  time.Time `json:"created_at"`
}

// Pin is a positioned comment thread. X and Y are percentage-space
// coordinates (0-100 of the container). PinNumber is assigned by the
// persistence backend, monotonic per project, and never reused.
type Pin struct {
	ID         string    `json:"id"`
	Layer      LayerKey  `json:"layer"`
	X          float64   `json:"x"`
	Y          float64   `json:"y"`
	AuthorID   string    `json:"author_id"`
	AuthorName string    `json:"author_name"`
	Content    string    `json:"content"`
	PinNumber  int       `json:"pin_number"`
	Resolved   bool      `json:"resolved"`
	CreatedAt  time.Time `json:"created_at"`
	Replies    []Reply   `json:"replies,omitempty"`
}

// Kind discriminates the markup payload variants.
type Kind string

const (
	KindDraw    Kind = "draw"
	KindArrow   Kind = "arrow"
	KindRect    Kind = "rect"
	KindText    Kind = "text"
	KindPolygon Kind = "polygon"
)

// PathData is a freehand stroke, points in percentage space.
type PathData struct {
	Points []geometry.Point2D `json:"points"`
}

// ArrowData is a directed segment from (X1,Y1) to (X2,Y2), percentage space.
type ArrowData struct {
	X1 float64 `json:"x1"`
	Y1 float64 `json:"y1"`
	X2 float64 `json:"x2"`
	Y2 float64 `json:"y2"`
}

// RectData is an axis-aligned rectangle, percentage space, normalized to
// non-negative width and height before commit.
type RectData struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// TextData is a text label anchored at (X,Y), percentage space.
type TextData struct {
	X    float64 `json:"x"`
	Y    float64 `json:"y"`
	Text string  `json:"text"`
}

// PolygonData is a closed traced region. AreaSqIn is derived from the
// vertices and the active scale factor; it is refreshed when the scale
// changes but the vertices themselves never move after commit.
type PolygonData struct {
	Points   []geometry.Point2D `json:"points"`
	AreaSqIn float64            `json:"area_sq_in"`
}

// Markup is a committed vector annotation. Exactly one payload field is
// populated, matching Kind. Geometry is immutable after commit; correcting
// a markup means deleting it and drawing a new one.
type Markup struct {
	ID          string       `json:"id"`
	Layer       LayerKey     `json:"layer"`
	Kind        Kind         `json:"kind"`
	Path        *PathData    `json:"path,omitempty"`
	Arrow       *ArrowData   `json:"arrow,omitempty"`
	Rect        *RectData    `json:"rect,omitempty"`
	Text        *TextData    `json:"text,omitempty"`
	Polygon     *PolygonData `json:"polygon,omitempty"`
	Color       string       `json:"color,omitempty"`
	StrokeWidth float64      `json:"stroke_width"`
	CreatedBy   string       `json:"created_by"`
	CreatedAt   time.Time    `json:"created_at"`
}
