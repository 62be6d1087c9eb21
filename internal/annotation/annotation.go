package annotation

import "github.com/google/uuid"

// Kind identifies what an annotation's payload describes.
type Kind string

const (
	KindDrawing   Kind = "drawing"
	KindHighlight Kind = "highlight"
	KindNote      Kind = "note"
	KindText      Kind = "text"
	KindShape     Kind = "shape"
)

// ShapeType narrows KindShape payloads.
type ShapeType string

const (
	ShapeRectangle ShapeType = "rectangle"
	ShapeLine      ShapeType = "line"
	ShapeArrow     ShapeType = "arrow"
)

// Payload carries the kind-specific data of an annotation. All geometry
// is in page-fraction coordinates. Unused fields stay zero and are
// omitted on the wire.
type Payload struct {
	Paths     [][]Point `json:"paths,omitempty"`
	Rect      *Rect     `json:"rect,omitempty"`
	Anchor    *Point    `json:"anchor,omitempty"`
	Start     *Point    `json:"start,omitempty"`
	End       *Point    `json:"end,omitempty"`
	Text      string    `json:"text,omitempty"`
	Color     string    `json:"color,omitempty"`
	Thickness float64   `json:"thickness,omitempty"`
	FontSize  float64   `json:"fontSize,omitempty"`
	Shape     ShapeType `json:"shapeType,omitempty"`
}

// Annotation is a single mark on a single page of a single document.
//
// LocalID is generated client-side and is stable for the record's
// in-memory lifetime; it is the reconciliation key until the server
// assigns an id. ServerID is zero for records that have never been
// created remotely. Persisted is true once the record exists server-side
// and matches local state.
type Annotation struct {
	ServerID  int64   `json:"id,omitempty"`
	LocalID   string  `json:"-"`
	Page      int     `json:"page"`
	Kind      Kind    `json:"kind"`
	Payload   Payload `json:"payload"`
	Persisted bool    `json:"-"`
}

// NewDrawing builds an unsaved freehand annotation from stroke paths.
func NewDrawing(page int, paths [][]Point, color string, thickness float64) Annotation {
	return Annotation{
		LocalID: uuid.NewString(),
		Page:    page,
		Kind:    KindDrawing,
		Payload: Payload{Paths: paths, Color: color, Thickness: thickness},
	}
}

// NewHighlight builds an unsaved highlight rectangle.
func NewHighlight(page int, r Rect, color string) Annotation {
	return Annotation{
		LocalID: uuid.NewString(),
		Page:    page,
		Kind:    KindHighlight,
		Payload: Payload{Rect: &r, Color: color},
	}
}

// NewNote builds an unsaved sticky note anchored at a point.
func NewNote(page int, at Point, text, color string) Annotation {
	return Annotation{
		LocalID: uuid.NewString(),
		Page:    page,
		Kind:    KindNote,
		Payload: Payload{Anchor: &at, Text: text, Color: color},
	}
}

// NewText builds an unsaved typed-text annotation.
func NewText(page int, at Point, text, color string, fontSize float64) Annotation {
	return Annotation{
		LocalID: uuid.NewString(),
		Page:    page,
		Kind:    KindText,
		Payload: Payload{Anchor: &at, Text: text, Color: color, FontSize: fontSize},
	}
}

// NewRectangleShape builds an unsaved rectangle outline.
func NewRectangleShape(page int, r Rect, color string, thickness float64) Annotation {
	return Annotation{
		LocalID: uuid.NewString(),
		Page:    page,
		Kind:    KindShape,
		Payload: Payload{Shape: ShapeRectangle, Rect: &r, Color: color, Thickness: thickness},
	}
}

// NewLineShape builds an unsaved line or arrow between two points.
func NewLineShape(page int, shape ShapeType, start, end Point, color string, thickness float64) Annotation {
	return Annotation{
		LocalID: uuid.NewString(),
		Page:    page,
		Kind:    KindShape,
		Payload: Payload{Shape: shape, Start: &start, End: &end, Color: color, Thickness: thickness},
	}
}
