package tui

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/avern/pagemark/internal/api"
	"github.com/avern/pagemark/internal/document"
	"github.com/avern/pagemark/internal/render"
	"github.com/avern/pagemark/internal/tools"
)

func fixturePDF() []byte {
	var buf bytes.Buffer
	buf.WriteString("%PDF-1.4\n")

	offsets := make([]int, 5)
	writeObj := func(num int, body string) {
		offsets[num] = buf.Len()
		fmt.Fprintf(&buf, "%d 0 obj\n%s\nendobj\n", num, body)
	}
	writeObj(1, "<</Type/Catalog/Pages 2 0 R>>")
	writeObj(2, "<</Type/Pages/Kids[3 0 R 4 0 R]/Count 2>>")
	writeObj(3, "<</Type/Page/MediaBox[0 0 612 792]/Parent 2 0 R/Resources<<>>>>")
	writeObj(4, "<</Type/Page/MediaBox[0 0 595 842]/Parent 2 0 R/Resources<<>>>>")

	xref := buf.Len()
	buf.WriteString("xref\n0 5\n")
	fmt.Fprintf(&buf, "%010d %05d f \r\n", 0, 65535)
	for num := 1; num <= 4; num++ {
		fmt.Fprintf(&buf, "%010d %05d n \r\n", offsets[num], 0)
	}
	fmt.Fprintf(&buf, "trailer\n<</Size 5/Root 1 0 R>>\nstartxref\n%d\n%%%%EOF", xref)
	return buf.Bytes()
}

func newTestModel(t *testing.T) *model {
	t.Helper()
	pdfBytes := fixturePDF()
	mux := http.NewServeMux()
	mux.HandleFunc("/documents/doc-1/file", func(w http.ResponseWriter, r *http.Request) {
		w.Write(pdfBytes)
	})
	mux.HandleFunc("/documents/doc-1/annotations", func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodPost:
			json.NewEncoder(w).Encode(map[string]int64{"id": 1})
		default:
			json.NewEncoder(w).Encode([]map[string]any{})
		}
	})
	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)

	client := api.New(server.URL, "session", "", nil)
	cache, err := document.NewCache(t.TempDir(), client.DocumentStream)
	if err != nil {
		t.Fatalf("NewCache() error = %v", err)
	}
	m := New(Config{
		Loader:    document.NewLoader(client, cache),
		Client:    client,
		ExportDir: t.TempDir(),
	}).(*model)
	m.width = 100
	m.height = 40
	return m
}

// openFixture drives the open job synchronously and feeds its result
// back through the model.
func openFixture(t *testing.T, m *model) {
	t.Helper()
	msg, err := openDocumentJob(m.config.Loader, "doc-1")(context.Background())
	if err != nil {
		t.Fatalf("open job failed: %v", err)
	}
	m.handleDocumentOpened(msg.(documentOpenedMsg))
	if m.stage != stageDisplay {
		t.Fatalf("stage = %v after open, want display", m.stage)
	}
	t.Cleanup(func() { m.doc.Close() })
}

// renderPageNow produces page 1's raster in-process so mouse mapping
// has real geometry to work against.
func renderPageNow(t *testing.T, m *model, page int) {
	t.Helper()
	metrics, ok := m.doc.Page(page)
	if !ok {
		t.Fatalf("page %d missing", page)
	}
	img, err := render.RenderPage(render.PageState{
		Metrics:     metrics,
		Scale:       m.viewCtl.Scale(),
		Annotations: m.store.Page(page),
	})
	if err != nil {
		t.Fatalf("render page %d: %v", page, err)
	}
	if m.gen[page] == 0 {
		m.gen[page] = 1
	}
	m.rasters[page] = newPageRaster(img)
	m.have[page] = m.gen[page]
}

func TestComposerEnterStartsOpenJob(t *testing.T) {
	m := newTestModel(t)
	if !m.composer.Focused() {
		t.Fatal("composer should start focused for document entry")
	}
	m.composer.SetValue("doc-1")

	_, cmd := m.submitComposer()
	if cmd == nil {
		t.Fatal("submit should return the open job command")
	}
	if m.stage != stageLoading {
		t.Fatalf("stage = %v, want loading", m.stage)
	}
	if got := strings.TrimSpace(m.composer.Value()); got != "" {
		t.Fatalf("composer should clear after submission, got %q", got)
	}
}

func TestDocumentOpenedEntersDisplay(t *testing.T) {
	m := newTestModel(t)
	openFixture(t, m)

	if m.machine == nil || m.engine == nil || m.tracker == nil {
		t.Fatal("open should wire the gesture machine, sync engine and tracker")
	}
	if m.page != 1 {
		t.Fatalf("page = %d, want 1", m.page)
	}
	if m.composer.Focused() {
		t.Fatal("composer should blur once the document is open")
	}
	bar := m.statusBarView()
	if !strings.Contains(bar, "Page 1/2") {
		t.Fatalf("status bar missing page indicator: %q", bar)
	}
}

func TestOpenFailureReturnsToInput(t *testing.T) {
	m := newTestModel(t)
	m.stage = stageLoading
	m.handleDocumentOpened(documentOpenedMsg{err: fmt.Errorf("no such document")})

	if m.stage != stageInput {
		t.Fatalf("stage = %v, want input", m.stage)
	}
	if m.errorMessage == "" {
		t.Fatal("open failure should surface an error message")
	}
	if !m.composer.Focused() {
		t.Fatal("composer should refocus for another id")
	}
}

func TestHighlightDragCommitsThroughMouse(t *testing.T) {
	m := newTestModel(t)
	openFixture(t, m)
	renderPageNow(t, m, 1)

	m.handleDisplayKey(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("3")})
	if m.machine.Tool() != tools.ToolHighlight {
		t.Fatalf("tool = %v, want highlight", m.machine.Tool())
	}

	rect := m.pageRects()[1]
	press := tea.MouseMsg{Type: tea.MouseLeft, X: rect.x + rect.w/4, Y: rect.y + 2}
	release := tea.MouseMsg{Type: tea.MouseRelease, X: rect.x + rect.w/2, Y: rect.y + 4}
	m.handleMouse(press)
	if m.dragPage != 1 {
		t.Fatalf("dragPage = %d, want 1", m.dragPage)
	}
	m.handleMouse(release)

	if m.store.Len() != 1 {
		t.Fatalf("store has %d records after drag, want 1", m.store.Len())
	}
	got := m.store.All()[0]
	if got.Kind != "highlight" || got.Page != 1 {
		t.Fatalf("committed record = %+v", got)
	}
	r := got.Payload.Rect
	if r == nil || r.X < 0 || r.X > 1 || r.W <= 0 || r.W > 1 {
		t.Fatalf("rect not in fractional coordinates: %+v", r)
	}
}

func TestDrawDragPaintsLivePreview(t *testing.T) {
	m := newTestModel(t)
	openFixture(t, m)
	renderPageNow(t, m, 1)

	m.handleDisplayKey(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("2")})
	if m.machine.Tool() != tools.ToolDraw {
		t.Fatalf("tool = %v, want draw", m.machine.Tool())
	}

	rect := m.pageRects()[1]
	m.handleMouse(tea.MouseMsg{Type: tea.MouseLeft, X: rect.x + 5, Y: rect.y + 2})
	m.handleMouse(tea.MouseMsg{Type: tea.MouseMotion, X: rect.x + 15, Y: rect.y + 2})

	if m.store.Len() != 0 {
		t.Fatalf("preview committed %d record(s) before pointer-up", m.store.Len())
	}
	// Cell row 2 maps to pixel row 5; the segment crosses column 10.
	c := m.rasters[1].img.RGBAAt(10, 5)
	if c.R <= c.B {
		t.Fatalf("no preview stroke at segment midpoint, pixel = %+v", c)
	}

	m.handleMouse(tea.MouseMsg{Type: tea.MouseRelease, X: rect.x + 15, Y: rect.y + 2})
	if m.store.Len() != 1 {
		t.Fatalf("store has %d records after drag, want 1", m.store.Len())
	}
}

func TestSelectToolIgnoresMouse(t *testing.T) {
	m := newTestModel(t)
	openFixture(t, m)
	renderPageNow(t, m, 1)

	rect := m.pageRects()[1]
	m.handleMouse(tea.MouseMsg{Type: tea.MouseLeft, X: rect.x + 5, Y: rect.y + 2})
	m.handleMouse(tea.MouseMsg{Type: tea.MouseRelease, X: rect.x + 10, Y: rect.y + 4})

	if m.store.Len() != 0 {
		t.Fatalf("select tool committed %d record(s)", m.store.Len())
	}
}

func TestNoteToolPromptsForTextThenCommits(t *testing.T) {
	m := newTestModel(t)
	openFixture(t, m)
	renderPageNow(t, m, 1)

	m.handleDisplayKey(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("4")})
	rect := m.pageRects()[1]
	m.handleMouse(tea.MouseMsg{Type: tea.MouseLeft, X: rect.x + rect.w/2, Y: rect.y + 3})

	if m.composerMode != composerModeText || !m.composer.Focused() {
		t.Fatal("note tool should open the text composer")
	}
	m.composer.SetValue("remember this")
	m.submitComposer()

	if m.store.Len() != 1 {
		t.Fatalf("store has %d records, want 1", m.store.Len())
	}
	if got := m.store.All()[0]; got.Payload.Text != "remember this" {
		t.Fatalf("note text = %q", got.Payload.Text)
	}
}

func TestComposerEscCancelsPendingText(t *testing.T) {
	m := newTestModel(t)
	openFixture(t, m)
	renderPageNow(t, m, 1)

	m.handleDisplayKey(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("4")})
	rect := m.pageRects()[1]
	m.handleMouse(tea.MouseMsg{Type: tea.MouseLeft, X: rect.x + 3, Y: rect.y + 3})
	m.handleEsc()

	if m.composer.Focused() {
		t.Fatal("composer should blur after cancel")
	}
	if m.store.Len() != 0 {
		t.Fatal("canceled note must not reach the store")
	}
}

func TestEscClearsSearchBeforeQuitting(t *testing.T) {
	m := newTestModel(t)
	openFixture(t, m)
	m.searchQuery = "viewport"

	_, cmd := m.handleEsc()
	if m.searchQuery != "" {
		t.Fatal("search query not cleared")
	}
	if cmd != nil {
		if _, quit := cmd().(tea.QuitMsg); quit {
			t.Fatal("first esc should not quit while a search is active")
		}
	}

	_, cmd = m.handleEsc()
	if cmd == nil {
		t.Fatal("second esc should quit")
	}
	if _, quit := cmd().(tea.QuitMsg); !quit {
		t.Fatal("second esc should return tea.Quit")
	}
}

func TestStaleRenderResultIsDropped(t *testing.T) {
	m := newTestModel(t)
	openFixture(t, m)

	m.gen[1] = 3
	m.inflight[1] = 2
	metrics, _ := m.doc.Page(1)
	img, err := render.RenderPage(render.PageState{Metrics: metrics, Scale: 0.1})
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	m.handlePageRendered(pageRenderedMsg{page: 1, gen: 2, img: newPageRaster(img)})

	if _, ok := m.rasters[1]; ok {
		t.Fatal("stale raster must not be installed")
	}
	if m.inflight[1] == 2 {
		t.Fatal("stale generation should not stay marked in flight")
	}
}

func TestUndoKeyRemovesLastAnnotation(t *testing.T) {
	m := newTestModel(t)
	openFixture(t, m)
	renderPageNow(t, m, 1)

	m.handleDisplayKey(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("3")})
	rect := m.pageRects()[1]
	m.handleMouse(tea.MouseMsg{Type: tea.MouseLeft, X: rect.x + 5, Y: rect.y + 2})
	m.handleMouse(tea.MouseMsg{Type: tea.MouseRelease, X: rect.x + rect.w/2, Y: rect.y + 6})
	if m.store.Len() != 1 {
		t.Fatalf("setup: store has %d records", m.store.Len())
	}

	m.handleDisplayKey(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("u")})
	if m.store.Len() != 0 {
		t.Fatal("undo key did not remove the annotation")
	}
	m.handleDisplayKey(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("r")})
	if m.store.Len() != 1 {
		t.Fatal("redo key did not restore the annotation")
	}
}

func TestZoomKeysInvalidateRenderedPages(t *testing.T) {
	m := newTestModel(t)
	openFixture(t, m)
	renderPageNow(t, m, 1)
	before := m.gen[1]

	_, cmd := m.handleDisplayKey(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("+")})
	if m.gen[1] <= before {
		t.Fatalf("gen = %d, want bump past %d", m.gen[1], before)
	}
	if cmd == nil {
		t.Fatal("zoom should schedule a re-render")
	}
}

func TestInvalidationAdvancesGenerationByOne(t *testing.T) {
	m := newTestModel(t)
	openFixture(t, m)

	m.invalidate(2)
	if m.gen[2] != 1 {
		t.Fatalf("first invalidation gen = %d, want 1", m.gen[2])
	}
	m.invalidate(2)
	if m.gen[2] != 2 {
		t.Fatalf("second invalidation gen = %d, want 2", m.gen[2])
	}
}

func TestSaveKeyStartsSaveJob(t *testing.T) {
	m := newTestModel(t)
	openFixture(t, m)

	_, cmd := m.handleDisplayKey(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("s")})
	if cmd == nil {
		t.Fatal("save key should start the save job")
	}
}
