package render

import (
	"fmt"
	"image"
	"image/color"
	"io"
	"math"

	"github.com/avern/pagemark/internal/annotation"
	"github.com/avern/pagemark/internal/document"
)

var (
	pageBackground = color.NRGBA{R: 0xff, G: 0xff, B: 0xff, A: 0xff}
	glyphColor     = color.NRGBA{R: 0x20, G: 0x20, B: 0x20, A: 0xff}
	matchColor     = color.NRGBA{R: 0xff, G: 0xe0, B: 0x66, A: 0x99}
)

// PageState is everything needed to render one page: intrinsic metrics,
// the current scale, the store's slice for the page (read at draw time,
// never a captured snapshot), the text runs, and the active search
// query.
type PageState struct {
	Metrics     document.PageMetrics
	Scale       float64
	Annotations []annotation.Annotation
	Runs        []document.TextRun
	Query       string
}

// RenderPage rasterizes a page at the current scale: background, text
// layer with search highlights, then the annotation layer rebuilt in
// full from the page slice. A failure renders nothing and leaves the
// caller's placeholder standing; other pages are unaffected.
func RenderPage(state PageState) (*image.RGBA, error) {
	width := int(math.Ceil(state.Metrics.Width * state.Scale))
	height := int(math.Ceil(state.Metrics.Height * state.Scale))
	surface, err := NewSurface(width, height)
	if err != nil {
		return nil, fmt.Errorf("render page %d: %w", state.Metrics.Number, err)
	}
	surface.Fill(pageBackground)

	overlay := BuildOverlay(state.Runs, state.Metrics.Height, state.Scale, state.Query)
	for _, run := range overlay {
		if run.Match {
			surface.fillRect(PixelRect{
				X: run.X,
				Y: run.Y - run.FontSize,
				W: run.W,
				H: run.FontSize * 1.2,
			}, matchColor)
		}
		if err := surface.DrawText(run.Text, Pixel{X: run.X, Y: run.Y}, glyphColor, run.FontSize); err != nil {
			return nil, fmt.Errorf("render page %d: %w", state.Metrics.Number, err)
		}
	}

	cmds := BuildCommands(state.Annotations, float64(width), float64(height), state.Scale)
	if err := surface.Apply(cmds); err != nil {
		return nil, fmt.Errorf("render page %d: %w", state.Metrics.Number, err)
	}
	return surface.Image(), nil
}

// ExportPNG renders a page and writes it as PNG.
func ExportPNG(w io.Writer, state PageState) error {
	img, err := RenderPage(state)
	if err != nil {
		return err
	}
	surface := &Surface{img: img}
	return surface.EncodePNG(w)
}
