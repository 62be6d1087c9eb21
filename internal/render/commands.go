// Package render turns page state into draw commands and applies them
// to a raster surface. Building commands is pure, so the annotation
// math stays testable without any drawing backend.
package render

import (
	"math"

	"github.com/avern/pagemark/internal/annotation"
)

// Arrowhead geometry: fixed pixel length, wings at a fixed angle off
// the shaft.
const (
	arrowheadLength = 12.0
	arrowheadAngle  = math.Pi / 6
)

// Size of the sticky-note marker square in pixels.
const noteMarkerSize = 10.0

// CommandKind discriminates draw commands.
type CommandKind int

const (
	CmdPolyline CommandKind = iota
	CmdFillRect
	CmdStrokeRect
	CmdLine
	CmdMarker
	CmdText
)

// Pixel is a point in page pixel coordinates at the current scale.
type Pixel struct {
	X float64
	Y float64
}

// PixelRect is a rectangle in page pixel coordinates.
type PixelRect struct {
	X float64
	Y float64
	W float64
	H float64
}

// Command is one drawing instruction. Fields are populated per kind:
// polylines use Points, rect commands use Rect, lines use From/To,
// markers and text use From plus Text.
type Command struct {
	Kind      CommandKind
	Points    []Pixel
	Rect      PixelRect
	From      Pixel
	To        Pixel
	Text      string
	Color     string
	Thickness float64
	FontSize  float64
}

// BuildCommands converts a page's annotation slice into draw commands.
// pageW/pageH are the page's pixel dimensions at the current scale;
// fractional coordinates convert to pixels here and nowhere else, so
// stored geometry never depends on zoom.
func BuildCommands(annots []annotation.Annotation, pageW, pageH, scale float64) []Command {
	var cmds []Command
	px := func(p annotation.Point) Pixel {
		return Pixel{X: p.X * pageW, Y: p.Y * pageH}
	}
	rect := func(r annotation.Rect) PixelRect {
		return PixelRect{X: r.X * pageW, Y: r.Y * pageH, W: r.W * pageW, H: r.H * pageH}
	}

	for _, a := range annots {
		switch a.Kind {
		case annotation.KindDrawing:
			for _, path := range a.Payload.Paths {
				if len(path) < 2 {
					continue
				}
				points := make([]Pixel, len(path))
				for i, p := range path {
					points[i] = px(p)
				}
				cmds = append(cmds, Command{
					Kind:      CmdPolyline,
					Points:    points,
					Color:     a.Payload.Color,
					Thickness: a.Payload.Thickness * scale,
				})
			}
		case annotation.KindHighlight:
			if a.Payload.Rect == nil {
				continue
			}
			cmds = append(cmds, Command{
				Kind:  CmdFillRect,
				Rect:  rect(*a.Payload.Rect),
				Color: a.Payload.Color,
			})
		case annotation.KindNote:
			if a.Payload.Anchor == nil {
				continue
			}
			cmds = append(cmds, Command{
				Kind:  CmdMarker,
				From:  px(*a.Payload.Anchor),
				Text:  a.Payload.Text,
				Color: a.Payload.Color,
			})
		case annotation.KindText:
			if a.Payload.Anchor == nil {
				continue
			}
			cmds = append(cmds, Command{
				Kind:     CmdText,
				From:     px(*a.Payload.Anchor),
				Text:     a.Payload.Text,
				Color:    a.Payload.Color,
				FontSize: a.Payload.FontSize * scale,
			})
		case annotation.KindShape:
			cmds = append(cmds, shapeCommands(a, px, rect, scale)...)
		}
	}
	return cmds
}

func shapeCommands(a annotation.Annotation, px func(annotation.Point) Pixel, rect func(annotation.Rect) PixelRect, scale float64) []Command {
	thickness := a.Payload.Thickness * scale
	switch a.Payload.Shape {
	case annotation.ShapeRectangle:
		if a.Payload.Rect == nil {
			return nil
		}
		return []Command{{
			Kind:      CmdStrokeRect,
			Rect:      rect(*a.Payload.Rect),
			Color:     a.Payload.Color,
			Thickness: thickness,
		}}
	case annotation.ShapeLine:
		if a.Payload.Start == nil || a.Payload.End == nil {
			return nil
		}
		return []Command{{
			Kind:      CmdLine,
			From:      px(*a.Payload.Start),
			To:        px(*a.Payload.End),
			Color:     a.Payload.Color,
			Thickness: thickness,
		}}
	case annotation.ShapeArrow:
		if a.Payload.Start == nil || a.Payload.End == nil {
			return nil
		}
		from, to := px(*a.Payload.Start), px(*a.Payload.End)
		cmds := []Command{{
			Kind:      CmdLine,
			From:      from,
			To:        to,
			Color:     a.Payload.Color,
			Thickness: thickness,
		}}
		cmds = append(cmds, arrowhead(from, to, a.Payload.Color, thickness)...)
		return cmds
	default:
		return nil
	}
}

// arrowhead computes the two wing segments at the terminal point from
// the shaft's angle.
func arrowhead(from, to Pixel, color string, thickness float64) []Command {
	angle := math.Atan2(to.Y-from.Y, to.X-from.X)
	wings := make([]Command, 0, 2)
	for _, offset := range []float64{arrowheadAngle, -arrowheadAngle} {
		back := angle + math.Pi + offset
		wing := Pixel{
			X: to.X + arrowheadLength*math.Cos(back),
			Y: to.Y + arrowheadLength*math.Sin(back),
		}
		wings = append(wings, Command{
			Kind:      CmdLine,
			From:      to,
			To:        wing,
			Color:     color,
			Thickness: thickness,
		})
	}
	return wings
}
