package tui

import (
	"fmt"
	"math"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/avern/pagemark/internal/annotation"
	"github.com/avern/pagemark/internal/api"
	"github.com/avern/pagemark/internal/document"
	"github.com/avern/pagemark/internal/reconcile"
	"github.com/avern/pagemark/internal/render"
	"github.com/avern/pagemark/internal/tools"
	"github.com/avern/pagemark/internal/view"
)

// Config wires runtime options into the TUI program.
type Config struct {
	Loader     *document.Loader
	Client     *api.Client
	DocumentID string
	ExportDir  string
}

// New returns a tea.Model ready to be mounted into a Program.
func New(config Config) tea.Model {
	composer := textinput.New()
	composer.Placeholder = composerDocumentPlaceholder
	composer.CharLimit = 200
	composer.Width = 60
	composer.Focus()

	spin := spinner.New()
	spin.Spinner = spinner.Dot

	m := &model{
		config:       config,
		stage:        stageInput,
		composerMode: composerModeDocument,
		composer:     composer,
		spinner:      spin,
		bus:          newJobBus(),
		jobs:         map[string]jobSnapshot{},
		rasters:      map[int]pageRaster{},
		gen:          map[int]int{},
		have:         map[int]int{},
		inflight:     map[int]int{},
		matches:      map[int]int{},
		width:        100,
		height:       34,
		infoMessage:  "Enter a document id to begin.",
	}
	if config.DocumentID != "" {
		m.composer.SetValue(config.DocumentID)
	}
	return m
}

type model struct {
	config Config
	stage  stage

	composer     textinput.Model
	composerMode composerMode
	spinner      spinner.Model
	bus          *jobBus
	jobs         map[string]jobSnapshot

	doc     *document.Document
	store   *annotation.Store
	history *annotation.History
	machine *tools.Machine
	viewCtl *view.Controller
	tracker *view.Tracker
	engine  *reconcile.Engine

	page      int
	rasters   map[int]pageRaster
	gen       map[int]int
	have      map[int]int
	inflight  map[int]int
	matches   map[int]int
	scrollRow int

	searchQuery  string
	dragPage     int
	colorIdx     int
	thicknessIdx int

	width        int
	height       int
	infoMessage  string
	errorMessage string
	helpVisible  bool
}

func (m *model) Init() tea.Cmd {
	return textinput.Blink
}

func (m *model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case spinner.TickMsg:
		if m.stage == stageLoading || m.jobRunning() {
			var cmd tea.Cmd
			m.spinner, cmd = m.spinner.Update(msg)
			return m, cmd
		}
		return m, nil
	case jobSignalMsg:
		m.jobs[msg.Snapshot.ID] = msg.Snapshot
		return m, m.spinner.Tick
	case jobResultEnvelope:
		delete(m.jobs, msg.Snapshot.ID)
		return m.handlePayload(msg.Payload)
	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyCtrlC:
			return m, tea.Quit
		case tea.KeyEsc:
			return m.handleEsc()
		}
		return m.handleKey(msg)
	case tea.MouseMsg:
		return m.handleMouse(msg)
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.applyContainer()
		return m, m.refreshActive()
	}
	return m, nil
}

func (m *model) handlePayload(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case documentOpenedMsg:
		return m.handleDocumentOpened(msg)
	case pageRenderedMsg:
		return m.handlePageRendered(msg)
	case saveResultMsg:
		if msg.err != nil {
			m.errorMessage = msg.err.Error()
			m.infoMessage = "Saving failed. Retry with s."
			return m, nil
		}
		m.engine.Commit(msg.report)
		m.errorMessage = ""
		if msg.report.Failed > 0 {
			m.infoMessage = fmt.Sprintf("Saved with %d failure(s): %d created, %d deleted. Press s to retry the rest.",
				msg.report.Failed, msg.report.Created, msg.report.Deleted)
		} else {
			m.infoMessage = fmt.Sprintf("Saved: %d created, %d deleted.", msg.report.Created, msg.report.Deleted)
		}
		return m, nil
	case exportResultMsg:
		if msg.err != nil {
			m.errorMessage = msg.err.Error()
			return m, nil
		}
		m.errorMessage = ""
		m.infoMessage = fmt.Sprintf("Exported %s", msg.path)
		return m, nil
	}
	return m, nil
}

func (m *model) handleDocumentOpened(msg documentOpenedMsg) (tea.Model, tea.Cmd) {
	if msg.err != nil {
		m.stage = stageInput
		m.composerMode = composerModeDocument
		m.composer.Placeholder = composerDocumentPlaceholder
		m.composer.Focus()
		m.errorMessage = msg.err.Error()
		m.infoMessage = "Try another document id."
		return m, nil
	}
	if m.doc != nil {
		m.doc.Close()
	}
	m.doc = msg.doc
	m.store = msg.store
	m.history = annotation.NewHistory()
	m.machine = tools.NewMachine(m.store, m.history, tools.DefaultTolerances())
	m.viewCtl = view.NewController()
	m.tracker = view.NewTracker(m.doc.PageCount, renderLookahead)
	m.engine = reconcile.NewEngine(m.config.Client, m.store, m.doc.ID)
	m.page = 1
	m.scrollRow = 0
	m.rasters = map[int]pageRaster{}
	m.gen = map[int]int{}
	m.have = map[int]int{}
	m.inflight = map[int]int{}
	m.matches = map[int]int{}
	m.searchQuery = ""
	m.colorIdx = 0
	m.thicknessIdx = 1
	m.machine.SetColor(colorPalette[m.colorIdx])
	m.machine.SetThickness(thicknessSteps[m.thicknessIdx])

	if metrics, ok := m.doc.Page(1); ok {
		m.viewCtl.SetPageSize(metrics.Width, metrics.Height)
	}
	m.applyContainer()

	m.stage = stageDisplay
	m.composerMode = composerModeIdle
	m.composer.Blur()
	m.composer.SetValue("")
	m.errorMessage = ""
	m.infoMessage = fmt.Sprintf("Opened %s (%d pages, %d annotation(s)). Keys 1-9 pick a tool, ? shows help.",
		m.doc.ID, m.doc.PageCount, m.store.Len())
	return m, m.refreshActive()
}

func (m *model) handlePageRendered(msg pageRenderedMsg) (tea.Model, tea.Cmd) {
	if m.inflight[msg.page] == msg.gen {
		delete(m.inflight, msg.page)
	}
	if msg.err != nil {
		// The placeholder stays up; other pages are unaffected.
		m.errorMessage = msg.err.Error()
		return m, nil
	}
	if msg.gen != m.gen[msg.page] {
		// Stale result from before the last invalidation.
		return m, m.scheduleRenders()
	}
	m.rasters[msg.page] = msg.img
	m.have[msg.page] = msg.gen
	m.matches[msg.page] = msg.matches
	if m.tracker != nil && !msg.img.empty() {
		m.tracker.RecordSize(msg.page, view.PlaceholderSize{
			Width:  msg.img.img.Bounds().Dx(),
			Height: msg.img.img.Bounds().Dy(),
		})
	}
	return m, nil
}

func (m *model) handleEsc() (tea.Model, tea.Cmd) {
	if m.composer.Focused() && m.stage == stageDisplay {
		m.cancelComposer()
		return m, nil
	}
	if m.stage == stageDisplay && m.searchQuery != "" {
		m.searchQuery = ""
		m.infoMessage = "Search cleared."
		return m, m.invalidateActive()
	}
	return m, tea.Quit
}

func (m *model) handleKey(key tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.composer.Focused() {
		return m.processComposerKey(key)
	}
	if m.stage != stageDisplay {
		return m, nil
	}
	return m.handleDisplayKey(key)
}

func (m *model) processComposerKey(key tea.KeyMsg) (tea.Model, tea.Cmd) {
	if key.Type == tea.KeyEnter {
		return m.submitComposer()
	}
	var cmd tea.Cmd
	m.composer, cmd = m.composer.Update(key)
	return m, cmd
}

func (m *model) submitComposer() (tea.Model, tea.Cmd) {
	value := strings.TrimSpace(m.composer.Value())
	switch m.composerMode {
	case composerModeDocument:
		if value == "" {
			return m, nil
		}
		m.stage = stageLoading
		m.errorMessage = ""
		m.infoMessage = fmt.Sprintf("Opening %s…", value)
		m.composer.SetValue("")
		return m, tea.Batch(
			m.bus.Start(jobKindOpen, openDocumentJob(m.config.Loader, value)),
			m.spinner.Tick,
		)
	case composerModeText:
		m.composer.Blur()
		m.composer.SetValue("")
		m.composerMode = composerModeIdle
		result := m.machine.CommitText(value)
		return m, m.applyResult(result)
	case composerModeSearch:
		m.composer.Blur()
		m.composer.SetValue("")
		m.composerMode = composerModeIdle
		m.searchQuery = value
		if value == "" {
			m.infoMessage = "Search cleared."
		} else {
			m.infoMessage = fmt.Sprintf("Searching for %q. n/N jumps between matching pages.", value)
		}
		return m, m.invalidateActive()
	}
	return m, nil
}

func (m *model) cancelComposer() {
	if m.composerMode == composerModeText {
		m.machine.CommitText("")
		m.infoMessage = "Annotation canceled."
	}
	m.composer.Blur()
	m.composer.SetValue("")
	m.composerMode = composerModeIdle
}

func (m *model) handleDisplayKey(key tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch key.String() {
	case "1", "2", "3", "4", "5", "6", "7", "8", "9":
		tool := toolForKey(key.String())
		m.machine.SetTool(tool)
		m.infoMessage = fmt.Sprintf("Tool: %s.", tool)
		return m, nil
	case "c":
		m.colorIdx = (m.colorIdx + 1) % len(colorPalette)
		m.machine.SetColor(colorPalette[m.colorIdx])
		m.infoMessage = fmt.Sprintf("Color %s.", colorPalette[m.colorIdx])
		return m, nil
	case "b":
		m.thicknessIdx = (m.thicknessIdx + 1) % len(thicknessSteps)
		m.machine.SetThickness(thicknessSteps[m.thicknessIdx])
		m.infoMessage = fmt.Sprintf("Thickness %.0f.", thicknessSteps[m.thicknessIdx])
		return m, nil
	case "+", "=":
		m.viewCtl.Zoom(1.25)
		return m, m.invalidateActive()
	case "-", "_":
		m.viewCtl.Zoom(0.8)
		return m, m.invalidateActive()
	case "w":
		m.viewCtl.SetFitMode(view.FitWidth)
		m.infoMessage = "Fit to width."
		return m, m.invalidateActive()
	case "f":
		m.viewCtl.SetFitMode(view.FitPage)
		m.infoMessage = "Fit whole page."
		return m, m.invalidateActive()
	case "v":
		if m.viewCtl.ViewMode() == view.ViewSingle {
			m.viewCtl.SetViewMode(view.ViewDouble)
			m.infoMessage = "Two-page spread."
		} else {
			m.viewCtl.SetViewMode(view.ViewSingle)
			m.infoMessage = "Single page."
		}
		m.applyContainer()
		return m, m.invalidateActive()
	case "left", "[":
		return m, m.turnPage(-m.pageStep())
	case "right", "]":
		return m, m.turnPage(m.pageStep())
	case "up", "k":
		m.scrollBy(-3)
		return m, nil
	case "down", "j":
		m.scrollBy(3)
		return m, nil
	case "pgup":
		m.scrollBy(-m.pageAreaHeight())
		return m, nil
	case "pgdown":
		m.scrollBy(m.pageAreaHeight())
		return m, nil
	case "g":
		m.scrollRow = 0
		return m, nil
	case "G":
		m.scrollBy(1 << 20)
		return m, nil
	case "u":
		if m.history.Undo(m.store) {
			m.infoMessage = "Undone."
			return m, m.invalidateActive()
		}
		m.infoMessage = "Nothing to undo."
		return m, nil
	case "r":
		if m.history.Redo(m.store) {
			m.infoMessage = "Redone."
			return m, m.invalidateActive()
		}
		m.infoMessage = "Nothing to redo."
		return m, nil
	case "/":
		m.composerMode = composerModeSearch
		m.composer.Placeholder = composerSearchPlaceholder
		m.composer.SetValue(m.searchQuery)
		m.composer.Focus()
		return m, textinput.Blink
	case "n":
		return m, m.jumpMatch(1)
	case "N":
		return m, m.jumpMatch(-1)
	case "s":
		if m.engine.Saving() {
			m.infoMessage = "A save is already running."
			return m, nil
		}
		m.infoMessage = "Saving annotations…"
		return m, tea.Batch(
			m.bus.Start(jobKindSave, saveJob(m.engine, m.engine.Snapshot())),
			m.spinner.Tick,
		)
	case "e":
		return m, m.exportCurrentPage()
	case "?":
		m.helpVisible = !m.helpVisible
		return m, nil
	}
	return m, nil
}

func toolForKey(key string) tools.Tool {
	switch key {
	case "2":
		return tools.ToolDraw
	case "3":
		return tools.ToolHighlight
	case "4":
		return tools.ToolNote
	case "5":
		return tools.ToolText
	case "6":
		return tools.ToolRectangle
	case "7":
		return tools.ToolLine
	case "8":
		return tools.ToolArrow
	case "9":
		return tools.ToolEraser
	default:
		return tools.ToolSelect
	}
}

func (m *model) handleMouse(msg tea.MouseMsg) (tea.Model, tea.Cmd) {
	if m.stage != stageDisplay {
		return m, nil
	}
	switch msg.Type {
	case tea.MouseWheelUp:
		m.scrollBy(-3)
		return m, nil
	case tea.MouseWheelDown:
		m.scrollBy(3)
		return m, nil
	case tea.MouseLeft:
		if m.machine.Tool() == tools.ToolSelect {
			return m, nil
		}
		page, pt, ok := m.pageAt(msg.X, msg.Y)
		if !ok {
			return m, nil
		}
		m.dragPage = page
		return m, m.applyResult(m.machine.PointerDown(page, pt))
	case tea.MouseMotion:
		if m.dragPage == 0 {
			return m, nil
		}
		pt, ok := m.pointOnPage(m.dragPage, msg.X, msg.Y)
		if !ok {
			return m, nil
		}
		if res := m.machine.PointerMove(pt); res.Preview != nil {
			m.paintPreview(*res.Preview)
		}
		return m, nil
	case tea.MouseRelease:
		if m.dragPage == 0 {
			return m, nil
		}
		page := m.dragPage
		m.dragPage = 0
		pt, _ := m.pointOnPage(page, msg.X, msg.Y)
		return m, m.applyResult(m.machine.PointerUp(pt))
	}
	return m, nil
}

func (m *model) applyResult(result tools.Result) tea.Cmd {
	switch {
	case result.WantText:
		m.composerMode = composerModeText
		m.composer.Placeholder = composerTextPlaceholder
		m.composer.SetValue("")
		m.composer.Focus()
		m.infoMessage = "Type the annotation text and press Enter."
		return textinput.Blink
	case result.Committed != nil:
		m.infoMessage = fmt.Sprintf("Added %s on page %d.", result.Committed.Kind, result.Committed.Page)
		return m.invalidate(result.Committed.Page)
	case result.Removed != nil:
		m.infoMessage = fmt.Sprintf("Erased %s on page %d.", result.Removed.Kind, result.Removed.Page)
		return m.invalidate(result.Removed.Page)
	case result.Discarded:
		m.infoMessage = "Gesture too small; nothing added."
		return nil
	}
	return nil
}

// paintPreview strokes a live draw segment straight onto the installed
// raster. Pointer-up invalidates the page, so the committed annotation
// replaces the preview on the next full render.
func (m *model) paintPreview(seg tools.Segment) {
	raster, ok := m.rasters[seg.Page]
	if !ok {
		return
	}
	bounds := raster.img.Bounds()
	w, h := float64(bounds.Dx()), float64(bounds.Dy())
	render.StrokePreview(raster.img,
		render.Pixel{X: seg.From.X * w, Y: seg.From.Y * h},
		render.Pixel{X: seg.To.X * w, Y: seg.To.Y * h},
		m.machine.Color(), m.machine.Thickness()*m.viewCtl.Scale())
	m.rasters[seg.Page] = newPageRaster(raster.img)
}

// refreshActive re-observes the visible pages and fills in any missing
// renders without invalidating rasters that are still current.
func (m *model) refreshActive() tea.Cmd {
	if m.doc == nil {
		return nil
	}
	m.tracker.Observe(m.visiblePages())
	for page := range m.rasters {
		if !m.tracker.IsActive(page) {
			delete(m.rasters, page)
			delete(m.have, page)
			delete(m.matches, page)
		}
	}
	return m.scheduleRenders()
}

// invalidate bumps the named pages' generations so their rasters are
// rebuilt, then schedules renders.
func (m *model) invalidate(pages ...int) tea.Cmd {
	for _, page := range pages {
		m.bumpGen(page)
	}
	return m.refreshActive()
}

// invalidateActive rebuilds everything in the rendered set, for changes
// that affect all pages at once (zoom, fit, search query).
func (m *model) invalidateActive() tea.Cmd {
	if m.doc == nil {
		return nil
	}
	for _, page := range m.tracker.Active() {
		m.bumpGen(page)
	}
	return m.refreshActive()
}

func (m *model) bumpGen(page int) {
	m.gen[page]++
}

func (m *model) scheduleRenders() tea.Cmd {
	if m.doc == nil {
		return nil
	}
	var cmds []tea.Cmd
	scale := m.viewCtl.Scale()
	for _, page := range m.tracker.Active() {
		want := m.gen[page]
		if want == 0 {
			want = 1
			m.gen[page] = 1
		}
		if m.have[page] == want || m.inflight[page] == want {
			continue
		}
		metrics, ok := m.doc.Page(page)
		if !ok {
			continue
		}
		runs, err := m.doc.Text(page)
		if err != nil {
			// Text extraction failure degrades to an annotation-only page.
			runs = nil
		}
		state := render.PageState{
			Metrics:     metrics,
			Scale:       scale,
			Annotations: m.store.Page(page),
			Runs:        runs,
			Query:       m.searchQuery,
		}
		m.inflight[page] = want
		cmds = append(cmds, m.bus.Start(jobKindRender, renderPageJob(page, want, state)))
	}
	if len(cmds) == 0 {
		return nil
	}
	cmds = append(cmds, m.spinner.Tick)
	return tea.Batch(cmds...)
}

func (m *model) turnPage(delta int) tea.Cmd {
	if m.doc == nil || delta == 0 {
		return nil
	}
	next := m.page + delta
	if next < 1 {
		next = 1
	}
	if next > m.doc.PageCount {
		next = m.doc.PageCount
	}
	if next == m.page {
		return nil
	}
	m.page = next
	m.scrollRow = 0
	return m.refreshActive()
}

func (m *model) pageStep() int {
	if m.viewCtl != nil && m.viewCtl.ViewMode() == view.ViewDouble {
		return 2
	}
	return 1
}

// jumpMatch moves to the next/previous page whose text contains the
// active query, wrapping around the document.
func (m *model) jumpMatch(direction int) tea.Cmd {
	if m.doc == nil || m.searchQuery == "" {
		m.infoMessage = "No active search. Press / first."
		return nil
	}
	query := strings.ToLower(m.searchQuery)
	for step := 1; step <= m.doc.PageCount; step++ {
		page := m.page + step*direction
		for page < 1 {
			page += m.doc.PageCount
		}
		for page > m.doc.PageCount {
			page -= m.doc.PageCount
		}
		runs, err := m.doc.Text(page)
		if err != nil {
			continue
		}
		for _, run := range runs {
			if strings.Contains(strings.ToLower(run.Text), query) {
				m.page = page
				m.scrollRow = 0
				m.infoMessage = fmt.Sprintf("Match on page %d.", page)
				return m.refreshActive()
			}
		}
	}
	m.infoMessage = fmt.Sprintf("No matches for %q.", m.searchQuery)
	return nil
}

func (m *model) exportCurrentPage() tea.Cmd {
	if m.doc == nil {
		return nil
	}
	metrics, ok := m.doc.Page(m.page)
	if !ok {
		return nil
	}
	runs, err := m.doc.Text(m.page)
	if err != nil {
		runs = nil
	}
	state := render.PageState{
		Metrics:     metrics,
		Scale:       m.viewCtl.Scale(),
		Annotations: m.store.Page(m.page),
		Runs:        runs,
		Query:       "",
	}
	m.infoMessage = fmt.Sprintf("Exporting page %d…", m.page)
	return tea.Batch(
		m.bus.Start(jobKindExport, exportPageJob(m.config.ExportDir, m.doc.ID, m.page, state)),
		m.spinner.Tick,
	)
}

func (m *model) visiblePages() []int {
	if m.doc == nil {
		return nil
	}
	if m.viewCtl.ViewMode() == view.ViewDouble && m.page+1 <= m.doc.PageCount {
		return []int{m.page, m.page + 1}
	}
	return []int{m.page}
}

func (m *model) applyContainer() {
	if m.viewCtl == nil {
		return
	}
	w := m.width
	if w < minPageAreaWidth {
		w = minPageAreaWidth
	}
	h := m.pageAreaHeight()
	// Terminal cells are one pixel wide and two pixels tall here.
	m.viewCtl.SetContainer(float64(w), float64(h*2))
}

func (m *model) pageAreaHeight() int {
	h := m.height - chromeRows
	if h < 10 {
		h = 10
	}
	return h
}

func (m *model) scrollBy(delta int) {
	m.scrollRow += delta
	max := m.maxScroll()
	if m.scrollRow > max {
		m.scrollRow = max
	}
	if m.scrollRow < 0 {
		m.scrollRow = 0
	}
}

func (m *model) maxScroll() int {
	tallest := 0
	for _, page := range m.visiblePages() {
		if raster, ok := m.rasters[page]; ok && raster.cellH > tallest {
			tallest = raster.cellH
		}
	}
	max := tallest - m.pageAreaHeight()
	if max < 0 {
		max = 0
	}
	return max
}

type cellRect struct {
	x, y, w, h int
}

// pageRects lays the visible rasters out the same way View draws them:
// centered horizontally, starting under the status bar.
func (m *model) pageRects() map[int]cellRect {
	rects := map[int]cellRect{}
	pages := m.visiblePages()
	if len(pages) == 0 {
		return rects
	}
	total := 0
	widths := make([]int, len(pages))
	for i, page := range pages {
		widths[i] = m.cellWidthOf(page)
		total += widths[i]
	}
	total += spreadGapCells * (len(pages) - 1)
	left := (m.width - total) / 2
	if left < 0 {
		left = 0
	}
	x := left
	for i, page := range pages {
		rects[page] = cellRect{x: x, y: pageAreaTopRow, w: widths[i], h: m.pageAreaHeight()}
		x += widths[i] + spreadGapCells
	}
	return rects
}

func (m *model) cellWidthOf(page int) int {
	if raster, ok := m.rasters[page]; ok {
		return raster.cellW
	}
	if metrics, ok := m.doc.Page(page); ok {
		return int(math.Ceil(metrics.Width * m.viewCtl.Scale()))
	}
	return m.tracker.Placeholder(page).Width
}

// placeholderCellHeight is how many rows a not-yet-rendered page keeps
// occupied so the layout does not jump when the raster arrives.
func (m *model) placeholderCellHeight(page int) int {
	size := m.tracker.Placeholder(page)
	h := (size.Height + 1) / 2
	if metrics, ok := m.doc.Page(page); ok {
		h = int(math.Ceil(metrics.Height*m.viewCtl.Scale())+1) / 2
	}
	if area := m.pageAreaHeight(); h > area {
		h = area
	}
	if h < 3 {
		h = 3
	}
	return h
}

// pageAt maps a terminal cell to a page and a fractional point on it.
func (m *model) pageAt(x, y int) (int, annotation.Point, bool) {
	for page, rect := range m.pageRects() {
		if x < rect.x || x >= rect.x+rect.w || y < rect.y || y >= rect.y+rect.h {
			continue
		}
		pt, ok := m.pointOnPage(page, x, y)
		if !ok {
			return 0, annotation.Point{}, false
		}
		return page, pt, true
	}
	return 0, annotation.Point{}, false
}

// pointOnPage converts a cell position to page fractions against a
// specific page's raster, clamping gracefully during drags that wander
// off the page.
func (m *model) pointOnPage(page, x, y int) (annotation.Point, bool) {
	raster, ok := m.rasters[page]
	if !ok || raster.empty() {
		return annotation.Point{}, false
	}
	rect, ok := m.pageRects()[page]
	if !ok {
		return annotation.Point{}, false
	}
	pixelW := float64(raster.img.Bounds().Dx())
	pixelH := float64(raster.img.Bounds().Dy())
	fx := (float64(x-rect.x) + 0.5) / pixelW
	fy := (float64((y-rect.y+m.scrollRow)*2) + 1) / pixelH
	return annotation.Point{X: fx, Y: fy}.Clamp(), true
}

func (m *model) jobRunning() bool {
	return len(m.jobs) > 0
}

func (m *model) runningKinds() []string {
	seen := map[jobKind]bool{}
	var kinds []string
	for _, snap := range m.jobs {
		if snap.Status != jobStatusRunning || seen[snap.Kind] {
			continue
		}
		seen[snap.Kind] = true
		kinds = append(kinds, string(snap.Kind))
	}
	return kinds
}

var (
	sectionHeaderStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("81"))
	errorStyle         = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
	helperStyle        = lipgloss.NewStyle().Foreground(lipgloss.Color("244"))

	heroAccentColor = lipgloss.Color("#1e88e5")
	heroTextColor   = lipgloss.Color("#e3f2fd")

	heroTitleStyle     = lipgloss.NewStyle().Bold(true).Foreground(heroAccentColor)
	taglineStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color("#90caf9")).Italic(true)
	statusBarStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("#0f0f0f")).Background(lipgloss.Color("#8ecae6")).Padding(0, 1)
	swatchStyle        = lipgloss.NewStyle().Bold(true)
	keyStyle           = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#0f0f0f")).Background(lipgloss.Color("#ffd166")).Padding(0, 1)
	keyDescStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color("#e0def4"))
	legendBoxStyle     = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(lipgloss.Color("#56526e")).Padding(1, 2)
	placeholderStyle   = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(lipgloss.Color("#56526e")).Foreground(lipgloss.Color("244")).Align(lipgloss.Center, lipgloss.Center)
	logoFaceStyle      = lipgloss.NewStyle().Bold(true).Foreground(heroTextColor)
	logoContainerStyle = lipgloss.NewStyle().Padding(0, 1)
	logoArtLines       = []string{
		"█▀█ █▀█ █▀▀ █▀▀ █▀▄▀█ █▀█ █▀█ █▄▀",
		"█▀▀ █▀█ █▄█ ██▄ █ ▀ █ █▀█ █▀▄ █ █",
	}
)
