package annotation

// Point is a position in page-fraction coordinates: both components are
// proportions of the page's own width/height in [0,1], never pixels.
// Storing fractions keeps annotation geometry independent of the zoom
// level; converting to pixels is a multiplication at draw time.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Rect is an axis-aligned rectangle in page-fraction coordinates.
type Rect struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	W float64 `json:"w"`
	H float64 `json:"h"`
}

// Clamp returns the point limited to the unit square.
func (p Point) Clamp() Point {
	return Point{X: clamp01(p.X), Y: clamp01(p.Y)}
}

// Contains reports whether q lies inside the rectangle, edges included.
func (r Rect) Contains(q Point) bool {
	return q.X >= r.X && q.X <= r.X+r.W && q.Y >= r.Y && q.Y <= r.Y+r.H
}

// RectFromCorners builds a normalized rectangle from two opposite
// corners in either drag direction.
func RectFromCorners(a, b Point) Rect {
	x, w := span(a.X, b.X)
	y, h := span(a.Y, b.Y)
	return Rect{X: x, Y: y, W: w, H: h}
}

func span(a, b float64) (origin, extent float64) {
	if b < a {
		a, b = b, a
	}
	return a, b - a
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
