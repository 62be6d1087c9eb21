package render

import (
	"strings"

	"github.com/avern/pagemark/internal/document"
)

// OverlayRun is one positioned text run of the selectable text layer,
// converted to pixel coordinates with a top-left origin. Y is the
// baseline. Match marks runs containing the active search string.
type OverlayRun struct {
	Text     string
	X        float64
	Y        float64
	W        float64
	FontSize float64
	Match    bool
}

// BuildOverlay positions a page's text runs at the current scale so the
// overlay lines up with the rasterized glyphs. PDF text coordinates use
// a bottom-left origin; the raster uses top-left, so Y flips against
// the intrinsic page height. query, when non-empty, marks matching runs
// by case-insensitive substring.
func BuildOverlay(runs []document.TextRun, intrinsicHeight, scale float64, query string) []OverlayRun {
	lowered := strings.ToLower(query)
	overlay := make([]OverlayRun, 0, len(runs))
	for _, run := range runs {
		overlay = append(overlay, OverlayRun{
			Text:     run.Text,
			X:        run.X * scale,
			Y:        (intrinsicHeight - run.Y) * scale,
			W:        run.Width * scale,
			FontSize: run.FontSize * scale,
			Match:    lowered != "" && strings.Contains(strings.ToLower(run.Text), lowered),
		})
	}
	return overlay
}

// MatchCount reports how many runs carry the match flag.
func MatchCount(runs []OverlayRun) int {
	count := 0
	for _, run := range runs {
		if run.Match {
			count++
		}
	}
	return count
}
