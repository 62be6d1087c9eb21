package render

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"io"
	"math"

	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/math/fixed"
	"golang.org/x/image/vector"
)

// Highlight fills are translucent so the page shows through.
const highlightAlpha = 0x66

// Surface is a raster target for draw commands: an RGBA image plus a
// font for text commands. Create one per rendered page; it is not safe
// for concurrent use.
type Surface struct {
	img  *image.RGBA
	font *opentype.Font
}

// NewSurface allocates a width x height surface.
func NewSurface(width, height int) (*Surface, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("invalid surface size %dx%d", width, height)
	}
	parsed, err := opentype.Parse(goregular.TTF)
	if err != nil {
		return nil, fmt.Errorf("parse embedded font: %w", err)
	}
	return &Surface{
		img:  image.NewRGBA(image.Rect(0, 0, width, height)),
		font: parsed,
	}, nil
}

// Image exposes the underlying raster.
func (s *Surface) Image() *image.RGBA { return s.img }

// Fill floods the whole surface with a color.
func (s *Surface) Fill(c color.Color) {
	draw.Draw(s.img, s.img.Bounds(), image.NewUniform(c), image.Point{}, draw.Src)
}

// Apply draws every command onto the surface. The annotation layer is
// always cleared and redrawn in full by the caller, never patched, so
// Apply only ever appends pixels.
func (s *Surface) Apply(cmds []Command) error {
	for _, cmd := range cmds {
		col := parseHexColor(cmd.Color)
		switch cmd.Kind {
		case CmdPolyline:
			s.strokePolyline(cmd.Points, col, cmd.Thickness)
		case CmdFillRect:
			s.fillRect(cmd.Rect, withAlpha(col, highlightAlpha))
		case CmdStrokeRect:
			s.strokeRect(cmd.Rect, col, cmd.Thickness)
		case CmdLine:
			s.strokeSegment(cmd.From, cmd.To, col, cmd.Thickness)
		case CmdMarker:
			s.fillRect(PixelRect{
				X: cmd.From.X - noteMarkerSize/2,
				Y: cmd.From.Y - noteMarkerSize/2,
				W: noteMarkerSize,
				H: noteMarkerSize,
			}, col)
		case CmdText:
			if err := s.drawText(cmd.Text, cmd.From, col, cmd.FontSize); err != nil {
				return err
			}
		}
	}
	return nil
}

// EncodePNG writes the surface as PNG.
func (s *Surface) EncodePNG(w io.Writer) error {
	return png.Encode(w, s.img)
}

// StrokePreview draws one live preview segment onto an existing raster
// during a draw gesture. The committed annotation is redrawn in full on
// pointer-up, so the preview never needs to be erased precisely.
func StrokePreview(img *image.RGBA, from, to Pixel, colorHex string, thickness float64) {
	s := &Surface{img: img}
	s.strokeSegment(from, to, parseHexColor(colorHex), thickness)
}

// DrawText renders a text run at a pixel baseline position. Exposed for
// the page renderer's text layer.
func (s *Surface) DrawText(text string, at Pixel, c color.Color, size float64) error {
	return s.drawText(text, at, c, size)
}

func (s *Surface) strokePolyline(points []Pixel, c color.Color, thickness float64) {
	for i := 1; i < len(points); i++ {
		s.strokeSegment(points[i-1], points[i], c, thickness)
	}
}

// strokeSegment fills the quad that a thick line segment covers, using
// the coverage rasterizer for anti-aliased edges.
func (s *Surface) strokeSegment(from, to Pixel, c color.Color, thickness float64) {
	if thickness < 1 {
		thickness = 1
	}
	dx, dy := to.X-from.X, to.Y-from.Y
	length := math.Hypot(dx, dy)
	if length == 0 {
		return
	}
	// Perpendicular half-thickness offset.
	ox := -dy / length * thickness / 2
	oy := dx / length * thickness / 2

	bounds := s.img.Bounds()
	r := vector.NewRasterizer(bounds.Dx(), bounds.Dy())
	r.MoveTo(float32(from.X+ox), float32(from.Y+oy))
	r.LineTo(float32(to.X+ox), float32(to.Y+oy))
	r.LineTo(float32(to.X-ox), float32(to.Y-oy))
	r.LineTo(float32(from.X-ox), float32(from.Y-oy))
	r.ClosePath()
	r.Draw(s.img, bounds, image.NewUniform(c), image.Point{})
}

func (s *Surface) fillRect(r PixelRect, c color.Color) {
	rect := clipRect(r, s.img.Bounds())
	if rect.Empty() {
		return
	}
	draw.Draw(s.img, rect, image.NewUniform(c), image.Point{}, draw.Over)
}

func (s *Surface) strokeRect(r PixelRect, c color.Color, thickness float64) {
	corners := []Pixel{
		{X: r.X, Y: r.Y},
		{X: r.X + r.W, Y: r.Y},
		{X: r.X + r.W, Y: r.Y + r.H},
		{X: r.X, Y: r.Y + r.H},
		{X: r.X, Y: r.Y},
	}
	s.strokePolyline(corners, c, thickness)
}

func (s *Surface) drawText(text string, at Pixel, c color.Color, size float64) error {
	if text == "" {
		return nil
	}
	if size <= 0 {
		size = 12
	}
	face, err := opentype.NewFace(s.font, &opentype.FaceOptions{
		Size:    size,
		DPI:     72,
		Hinting: font.HintingFull,
	})
	if err != nil {
		return fmt.Errorf("build font face: %w", err)
	}
	defer face.Close()
	drawer := font.Drawer{
		Dst:  s.img,
		Src:  image.NewUniform(c),
		Face: face,
		Dot:  fixed.Point26_6{X: fixed.Int26_6(at.X * 64), Y: fixed.Int26_6(at.Y * 64)},
	}
	drawer.DrawString(text)
	return nil
}

func clipRect(r PixelRect, bounds image.Rectangle) image.Rectangle {
	rect := image.Rect(
		int(math.Floor(r.X)),
		int(math.Floor(r.Y)),
		int(math.Ceil(r.X+r.W)),
		int(math.Ceil(r.Y+r.H)),
	)
	return rect.Intersect(bounds)
}

func withAlpha(c color.NRGBA, alpha uint8) color.NRGBA {
	c.A = alpha
	return c
}

// parseHexColor accepts #rgb and #rrggbb; anything else falls back to
// opaque black.
func parseHexColor(value string) color.NRGBA {
	c := color.NRGBA{A: 0xff}
	hex := value
	if len(hex) > 0 && hex[0] == '#' {
		hex = hex[1:]
	}
	nibble := func(b byte) (uint8, bool) {
		switch {
		case b >= '0' && b <= '9':
			return b - '0', true
		case b >= 'a' && b <= 'f':
			return b - 'a' + 10, true
		case b >= 'A' && b <= 'F':
			return b - 'A' + 10, true
		default:
			return 0, false
		}
	}
	byteAt := func(i int) (uint8, bool) {
		hi, ok1 := nibble(hex[i])
		lo, ok2 := nibble(hex[i+1])
		return hi<<4 | lo, ok1 && ok2
	}
	switch len(hex) {
	case 6:
		r, ok1 := byteAt(0)
		g, ok2 := byteAt(2)
		b, ok3 := byteAt(4)
		if ok1 && ok2 && ok3 {
			c.R, c.G, c.B = r, g, b
		}
	case 3:
		if r, ok := nibble(hex[0]); ok {
			c.R = r<<4 | r
		}
		if g, ok := nibble(hex[1]); ok {
			c.G = g<<4 | g
		}
		if b, ok := nibble(hex[2]); ok {
			c.B = b<<4 | b
		}
	}
	return c
}
