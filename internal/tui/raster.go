package tui

import (
	"fmt"
	"image"
	"image/color"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// pageRaster is a rendered page converted to terminal cells. Each cell
// covers one pixel horizontally and two vertically, drawn as a
// half-block with independent top and bottom colors. The conversion
// happens once in the render job so View only slices precomputed rows.
type pageRaster struct {
	img   *image.RGBA
	rows  []string
	cellW int
	cellH int
}

func newPageRaster(img *image.RGBA) pageRaster {
	bounds := img.Bounds()
	width := bounds.Dx()
	height := bounds.Dy()
	cellH := (height + 1) / 2

	rows := make([]string, 0, cellH)
	var b strings.Builder
	for cy := 0; cy < cellH; cy++ {
		b.Reset()
		y := bounds.Min.Y + cy*2
		run := cellRun{}
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			top := hexOf(img.At(x, y))
			bottom := "#ffffff"
			if y+1 < bounds.Max.Y {
				bottom = hexOf(img.At(x, y+1))
			}
			run.add(&b, top, bottom)
		}
		run.flush(&b)
		rows = append(rows, b.String())
	}
	return pageRaster{img: img, rows: rows, cellW: width, cellH: cellH}
}

func (r pageRaster) empty() bool { return r.cellW == 0 || r.cellH == 0 }

// window returns the visible slice of rows starting at a cell offset.
func (r pageRaster) window(offset, height int) []string {
	if offset < 0 {
		offset = 0
	}
	if offset >= len(r.rows) {
		return nil
	}
	end := offset + height
	if end > len(r.rows) {
		end = len(r.rows)
	}
	return r.rows[offset:end]
}

// cellRun batches adjacent cells with identical colors into one styled
// segment, which keeps the escape-sequence volume manageable.
type cellRun struct {
	top    string
	bottom string
	count  int
}

func (c *cellRun) add(b *strings.Builder, top, bottom string) {
	if c.count > 0 && c.top == top && c.bottom == bottom {
		c.count++
		return
	}
	c.flush(b)
	c.top, c.bottom, c.count = top, bottom, 1
}

func (c *cellRun) flush(b *strings.Builder) {
	if c.count == 0 {
		return
	}
	style := lipgloss.NewStyle().
		Foreground(lipgloss.Color(c.top)).
		Background(lipgloss.Color(c.bottom))
	b.WriteString(style.Render(strings.Repeat("▀", c.count)))
	c.count = 0
}

func hexOf(c color.Color) string {
	r, g, b, _ := c.RGBA()
	return fmt.Sprintf("#%02x%02x%02x", uint8(r>>8), uint8(g>>8), uint8(b>>8))
}
