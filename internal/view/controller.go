// Package view owns zoom/fit state and the virtualized page set.
package view

// FitMode selects how the page scale is derived.
type FitMode int

const (
	FitWidth FitMode = iota
	FitPage
	FitCustom
)

// ViewMode selects single pages or a two-page spread.
type ViewMode int

const (
	ViewSingle ViewMode = iota
	ViewDouble
)

// Zoom clamp and fixed layout chrome, in pixels at scale 1.0.
const (
	MinScale  = 0.25
	MaxScale  = 5.0
	pagePad   = 16.0
	spreadGap = 12.0
)

// Controller recomputes the page scale from the container size and the
// first page's intrinsic dimensions. Recomputation happens on resize,
// fit-mode change, or view-mode change, never on scroll.
type Controller struct {
	scale      float64
	fitMode    FitMode
	viewMode   ViewMode
	containerW float64
	containerH float64
	pageW      float64
	pageH      float64
}

// NewController starts at fit-width, single view, scale 1.
func NewController() *Controller {
	return &Controller{scale: 1, fitMode: FitWidth, viewMode: ViewSingle}
}

// SetContainer records the available drawing area and recomputes.
func (c *Controller) SetContainer(width, height float64) {
	c.containerW, c.containerH = width, height
	c.recompute()
}

// SetPageSize records the first page's intrinsic size and recomputes.
func (c *Controller) SetPageSize(width, height float64) {
	c.pageW, c.pageH = width, height
	c.recompute()
}

// SetFitMode switches to fit-width or fit-page and recomputes.
func (c *Controller) SetFitMode(mode FitMode) {
	if mode == FitCustom {
		return
	}
	c.fitMode = mode
	c.recompute()
}

// SetViewMode switches between single and double spread and recomputes.
func (c *Controller) SetViewMode(mode ViewMode) {
	c.viewMode = mode
	c.recompute()
}

// Zoom applies a multiplicative zoom step, clamped to [MinScale,
// MaxScale]. Explicit zoom overrides auto-fit, so the fit mode becomes
// custom.
func (c *Controller) Zoom(factor float64) {
	if factor <= 0 {
		return
	}
	c.fitMode = FitCustom
	c.scale = clampScale(c.scale * factor)
}

// Scale returns the current pixel scale.
func (c *Controller) Scale() float64 { return c.scale }

// FitMode returns the active fit mode.
func (c *Controller) FitMode() FitMode { return c.fitMode }

// ViewMode returns the active view mode.
func (c *Controller) ViewMode() ViewMode { return c.viewMode }

func (c *Controller) recompute() {
	if c.fitMode == FitCustom || c.pageW <= 0 || c.pageH <= 0 {
		return
	}
	availableW := c.containerW - 2*pagePad
	if c.viewMode == ViewDouble {
		availableW = (availableW - spreadGap) / 2
	}
	if availableW <= 0 {
		return
	}
	widthScale := availableW / c.pageW
	switch c.fitMode {
	case FitWidth:
		c.scale = clampScale(widthScale)
	case FitPage:
		availableH := c.containerH - 2*pagePad
		if availableH <= 0 {
			return
		}
		heightScale := availableH / c.pageH
		if heightScale < widthScale {
			c.scale = clampScale(heightScale)
		} else {
			c.scale = clampScale(widthScale)
		}
	}
}

func clampScale(s float64) float64 {
	if s < MinScale {
		return MinScale
	}
	if s > MaxScale {
		return MaxScale
	}
	return s
}
