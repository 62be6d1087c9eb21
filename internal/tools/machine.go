// Package tools interprets pointer gestures into annotation mutations.
package tools

import (
	"math"

	"github.com/avern/pagemark/internal/annotation"
)

// Tool is the active tool of the state machine. Select is the idle
// state: it interprets no gestures and leaves pointer events to native
// text selection.
type Tool int

const (
	ToolSelect Tool = iota
	ToolDraw
	ToolHighlight
	ToolNote
	ToolText
	ToolRectangle
	ToolArrow
	ToolLine
	ToolEraser
)

func (t Tool) String() string {
	switch t {
	case ToolSelect:
		return "select"
	case ToolDraw:
		return "draw"
	case ToolHighlight:
		return "highlight"
	case ToolNote:
		return "note"
	case ToolText:
		return "text"
	case ToolRectangle:
		return "rectangle"
	case ToolArrow:
		return "arrow"
	case ToolLine:
		return "line"
	case ToolEraser:
		return "eraser"
	default:
		return "unknown"
	}
}

// Tolerances are the eraser hit-test windows and the minimum gesture
// extent, all in fractional units. The defaults are empirically tuned;
// they are parameters precisely so callers need not trust them.
type Tolerances struct {
	// NoteRadius is the point-in-radius window around note/text anchors.
	NoteRadius float64
	// PathRadius is the per-point window along drawing paths.
	PathRadius float64
	// MinExtent filters accidental taps: shape gestures below this
	// fractional extent are discarded, not committed.
	MinExtent float64
}

// DefaultTolerances mirrors the tuned production values.
func DefaultTolerances() Tolerances {
	return Tolerances{NoteRadius: 0.02, PathRadius: 0.015, MinExtent: 0.01}
}

type gesturePhase int

const (
	phaseIdle gesturePhase = iota
	phaseDrawing
	phaseShaping
	phaseAwaitingText
)

// Segment is a live preview stroke between two consecutive draw points.
// It is a lightweight overlay hint, not a store mutation; the committed
// annotation is redrawn in full on pointer-up.
type Segment struct {
	Page     int
	From, To annotation.Point
}

// Result describes what a gesture event did. At most one of Committed
// and Removed is set. WantText means the machine is holding an anchor
// and waits for CommitText. Discarded marks a sub-threshold gesture;
// it is not an error.
type Result struct {
	Committed *annotation.Annotation
	Removed   *annotation.Annotation
	Preview   *Segment
	WantText  bool
	Discarded bool
}

// Machine tracks the active tool, color and thickness, and turns
// pointer events into store mutations. Every committed add/remove goes
// through the history manager in the same call, so mutation and history
// push cannot interleave.
type Machine struct {
	store   *annotation.Store
	history *annotation.History
	tol     Tolerances

	active    Tool
	color     string
	thickness float64
	fontSize  float64

	phase  gesturePhase
	page   int
	anchor annotation.Point
	path   []annotation.Point
}

// NewMachine starts in the select state.
func NewMachine(store *annotation.Store, history *annotation.History, tol Tolerances) *Machine {
	return &Machine{
		store:     store,
		history:   history,
		tol:       tol,
		active:    ToolSelect,
		color:     "#e53935",
		thickness: 2,
		fontSize:  14,
	}
}

// SetTool switches tools and abandons any gesture in flight.
func (m *Machine) SetTool(tool Tool) {
	m.active = tool
	m.phase = phaseIdle
	m.path = nil
}

// Tool returns the active tool.
func (m *Machine) Tool() Tool { return m.active }

// SetColor sets the color applied to newly committed annotations.
func (m *Machine) SetColor(color string) { m.color = color }

// Color returns the current color.
func (m *Machine) Color() string { return m.color }

// SetThickness sets the stroke thickness for draw and shape tools.
func (m *Machine) SetThickness(thickness float64) {
	if thickness > 0 {
		m.thickness = thickness
	}
}

// Thickness returns the current stroke thickness.
func (m *Machine) Thickness() float64 { return m.thickness }

// PointerDown starts or performs a gesture at a fractional point on the
// given 1-based page.
func (m *Machine) PointerDown(page int, at annotation.Point) Result {
	at = at.Clamp()
	switch m.active {
	case ToolDraw:
		m.phase = phaseDrawing
		m.page = page
		m.path = []annotation.Point{at}
		return Result{}
	case ToolHighlight, ToolRectangle, ToolArrow, ToolLine:
		m.phase = phaseShaping
		m.page = page
		m.anchor = at
		return Result{}
	case ToolNote, ToolText:
		// No drag phase: the commit happens once text arrives.
		m.phase = phaseAwaitingText
		m.page = page
		m.anchor = at
		return Result{WantText: true}
	case ToolEraser:
		return m.erase(page, at)
	default:
		return Result{}
	}
}

// PointerMove extends an active gesture. Only draw produces a preview
// segment; shape tools preview nothing before commit.
func (m *Machine) PointerMove(at annotation.Point) Result {
	if m.phase != phaseDrawing {
		return Result{}
	}
	at = at.Clamp()
	prev := m.path[len(m.path)-1]
	m.path = append(m.path, at)
	return Result{Preview: &Segment{Page: m.page, From: prev, To: at}}
}

// PointerUp finishes an active gesture, committing the annotation when
// it clears the accidental-tap thresholds.
func (m *Machine) PointerUp(at annotation.Point) Result {
	at = at.Clamp()
	switch m.phase {
	case phaseDrawing:
		m.phase = phaseIdle
		path := m.path
		m.path = nil
		if len(path) < 2 {
			return Result{Discarded: true}
		}
		a := annotation.NewDrawing(m.page, [][]annotation.Point{path}, m.color, m.thickness)
		m.commitAdd(a)
		return Result{Committed: &a}
	case phaseShaping:
		m.phase = phaseIdle
		return m.commitShape(at)
	default:
		return Result{}
	}
}

// CommitText finishes a pending note/text gesture. Empty text cancels.
func (m *Machine) CommitText(text string) Result {
	if m.phase != phaseAwaitingText {
		return Result{}
	}
	m.phase = phaseIdle
	if text == "" {
		return Result{Discarded: true}
	}
	var a annotation.Annotation
	switch m.active {
	case ToolNote:
		a = annotation.NewNote(m.page, m.anchor, text, m.color)
	case ToolText:
		a = annotation.NewText(m.page, m.anchor, text, m.color, m.fontSize)
	default:
		return Result{}
	}
	m.commitAdd(a)
	return Result{Committed: &a}
}

func (m *Machine) commitShape(at annotation.Point) Result {
	width := math.Abs(at.X - m.anchor.X)
	height := math.Abs(at.Y - m.anchor.Y)
	switch m.active {
	case ToolHighlight:
		if width <= m.tol.MinExtent {
			return Result{Discarded: true}
		}
		a := annotation.NewHighlight(m.page, annotation.RectFromCorners(m.anchor, at), m.color)
		m.commitAdd(a)
		return Result{Committed: &a}
	case ToolRectangle:
		if width <= m.tol.MinExtent {
			return Result{Discarded: true}
		}
		a := annotation.NewRectangleShape(m.page, annotation.RectFromCorners(m.anchor, at), m.color, m.thickness)
		m.commitAdd(a)
		return Result{Committed: &a}
	case ToolArrow, ToolLine:
		if width <= m.tol.MinExtent && height <= m.tol.MinExtent {
			return Result{Discarded: true}
		}
		shape := annotation.ShapeLine
		if m.active == ToolArrow {
			shape = annotation.ShapeArrow
		}
		a := annotation.NewLineShape(m.page, shape, m.anchor, at, m.color, m.thickness)
		m.commitAdd(a)
		return Result{Committed: &a}
	default:
		return Result{}
	}
}

// erase removes the first annotation on the page whose tolerance window
// contains the click point. At most one record is removed per click.
func (m *Machine) erase(page int, at annotation.Point) Result {
	for _, a := range m.store.Page(page) {
		if !m.hits(a, at) {
			continue
		}
		removed, ok := m.store.Remove(a.LocalID)
		if !ok {
			continue
		}
		m.history.RecordRemove(removed)
		return Result{Removed: &removed}
	}
	return Result{}
}

func (m *Machine) hits(a annotation.Annotation, at annotation.Point) bool {
	switch a.Kind {
	case annotation.KindNote, annotation.KindText:
		return a.Payload.Anchor != nil && distance(*a.Payload.Anchor, at) <= m.tol.NoteRadius
	case annotation.KindDrawing:
		for _, path := range a.Payload.Paths {
			for _, p := range path {
				if distance(p, at) <= m.tol.PathRadius {
					return true
				}
			}
		}
		return false
	case annotation.KindHighlight:
		return a.Payload.Rect != nil && a.Payload.Rect.Contains(at)
	case annotation.KindShape:
		if a.Payload.Rect != nil {
			return a.Payload.Rect.Contains(at)
		}
		if a.Payload.Start != nil && a.Payload.End != nil {
			return segmentDistance(*a.Payload.Start, *a.Payload.End, at) <= m.tol.PathRadius
		}
		return false
	default:
		return false
	}
}

func (m *Machine) commitAdd(a annotation.Annotation) {
	m.store.Add(a)
	m.history.RecordAdd(a)
}

func distance(a, b annotation.Point) float64 {
	return math.Hypot(a.X-b.X, a.Y-b.Y)
}

// segmentDistance is the distance from p to the nearest point on the
// segment ab.
func segmentDistance(a, b, p annotation.Point) float64 {
	dx, dy := b.X-a.X, b.Y-a.Y
	lenSq := dx*dx + dy*dy
	if lenSq == 0 {
		return distance(a, p)
	}
	t := ((p.X-a.X)*dx + (p.Y-a.Y)*dy) / lenSq
	t = math.Max(0, math.Min(1, t))
	return distance(annotation.Point{X: a.X + t*dx, Y: a.Y + t*dy}, p)
}
