package view

import "sort"

// hysteresisSpan keeps a page in the rendered set while it sits within
// a ±2 page-number window around a page that still intersects the
// viewport. Prevents add/remove thrash during fast scrolling.
const hysteresisSpan = 2

// PlaceholderSize is the last known pixel size of a page, used to keep
// total scroll height stable while the page itself is not rendered.
type PlaceholderSize struct {
	Width  int
	Height int
}

// Tracker maintains the set of pages that should be rendered. Pages
// enter the set when they intersect the viewport (plus a configurable
// look-ahead margin); they leave only once they neither intersect nor
// sit within the hysteresis span of an intersecting page.
type Tracker struct {
	pageCount    int
	lookahead    int
	active       map[int]bool
	placeholders map[int]PlaceholderSize
	defaultSize  PlaceholderSize
}

// NewTracker creates a tracker for a document with pageCount pages.
// lookahead is the number of just-off-screen pages to pre-render on each
// side of the intersecting span.
func NewTracker(pageCount, lookahead int) *Tracker {
	if lookahead < 0 {
		lookahead = 0
	}
	return &Tracker{
		pageCount:    pageCount,
		lookahead:    lookahead,
		active:       map[int]bool{},
		placeholders: map[int]PlaceholderSize{},
		defaultSize:  PlaceholderSize{Width: 612, Height: 792},
	}
}

// Observe updates the rendered set from the pages currently
// intersecting the scroll viewport.
func (t *Tracker) Observe(intersecting []int) {
	next := map[int]bool{}
	lo, hi := 0, 0
	for _, page := range intersecting {
		if page < 1 || page > t.pageCount {
			continue
		}
		next[page] = true
		if lo == 0 || page < lo {
			lo = page
		}
		if page > hi {
			hi = page
		}
	}
	if lo != 0 {
		// Fill the intersecting span and extend by the look-ahead margin
		// in both scroll directions.
		for page := lo - t.lookahead; page <= hi+t.lookahead; page++ {
			if page >= 1 && page <= t.pageCount {
				next[page] = true
			}
		}
		// Hysteresis: retain members that are still near a visible page.
		for page := range t.active {
			if next[page] {
				continue
			}
			for _, visible := range intersecting {
				if abs(page-visible) <= hysteresisSpan {
					next[page] = true
					break
				}
			}
		}
	}
	t.active = next
}

// Active returns the rendered page set in ascending order.
func (t *Tracker) Active() []int {
	pages := make([]int, 0, len(t.active))
	for page := range t.active {
		pages = append(pages, page)
	}
	sort.Ints(pages)
	return pages
}

// IsActive reports whether a page is in the rendered set.
func (t *Tracker) IsActive(page int) bool {
	return t.active[page]
}

// RecordSize remembers a page's rendered pixel size for placeholder use.
func (t *Tracker) RecordSize(page int, size PlaceholderSize) {
	t.placeholders[page] = size
}

// Placeholder returns the size a non-rendered page should occupy: its
// last known dimensions, or a default.
func (t *Tracker) Placeholder(page int) PlaceholderSize {
	if size, ok := t.placeholders[page]; ok {
		return size
	}
	return t.defaultSize
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
