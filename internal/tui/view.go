package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/reflow/wordwrap"

	"github.com/avern/pagemark/internal/view"
)

func (m *model) View() string {
	switch m.stage {
	case stageInput, stageLoading:
		return m.viewInput()
	case stageDisplay:
		return m.viewDisplay()
	default:
		return ""
	}
}

func (m *model) viewInput() string {
	parts := []string{m.heroView()}
	if m.errorMessage != "" {
		parts = append(parts, errorStyle.Render(m.errorMessage))
	}
	message := m.infoMessage
	if m.stage == stageLoading {
		message = fmt.Sprintf("%s %s", m.spinner.View(), message)
	}
	parts = append(parts, helperStyle.Render(message))
	parts = append(parts, m.composerPanel())
	return joinNonEmpty(parts)
}

func (m *model) viewDisplay() string {
	parts := []string{m.statusBarView(), m.pageAreaView()}
	if m.errorMessage != "" {
		parts = append(parts, errorStyle.Render(wordwrap.String(m.errorMessage, m.wrapWidth())))
	}
	if m.infoMessage != "" {
		message := m.infoMessage
		if m.jobRunning() {
			message = fmt.Sprintf("%s %s", m.spinner.View(), message)
		}
		parts = append(parts, helperStyle.Render(wordwrap.String(message, m.wrapWidth())))
	}
	if m.composer.Focused() {
		parts = append(parts, m.composerPanel())
	}
	if m.helpVisible {
		parts = append(parts, m.keyLegendView())
	}
	return strings.Join(parts, "\n")
}

func (m *model) pageAreaView() string {
	rects := m.pageRects()
	pages := m.visiblePages()
	if len(pages) == 0 {
		return ""
	}
	blocks := make([]string, 0, len(pages))
	for _, page := range pages {
		blocks = append(blocks, m.pageBlock(page))
	}
	joined := blocks[0]
	if len(blocks) > 1 {
		gap := strings.Repeat(" ", spreadGapCells)
		joined = lipgloss.JoinHorizontal(lipgloss.Top, blocks[0], gap, blocks[1])
	}
	leftPad := 0
	if rect, ok := rects[pages[0]]; ok {
		leftPad = rect.x
	}
	return indentBlock(joined, leftPad)
}

func (m *model) pageBlock(page int) string {
	raster, ok := m.rasters[page]
	if !ok || raster.empty() {
		return placeholderStyle.
			Width(m.cellWidthOf(page)).
			Height(m.placeholderCellHeight(page)).
			Render(fmt.Sprintf("page %d\nrendering…", page))
	}
	rows := raster.window(m.scrollRow, m.pageAreaHeight())
	return strings.Join(rows, "\n")
}

func (m *model) statusBarView() string {
	if m.doc == nil {
		return ""
	}
	pageLabel := fmt.Sprintf("Page %d/%d", m.page, m.doc.PageCount)
	if m.viewCtl.ViewMode() == view.ViewDouble && m.page+1 <= m.doc.PageCount {
		pageLabel = fmt.Sprintf("Pages %d-%d/%d", m.page, m.page+1, m.doc.PageCount)
	}
	stats := []string{
		fmt.Sprintf("Tool %s", m.machine.Tool()),
		swatchStyle.Foreground(lipgloss.Color(m.machine.Color())).Render("███"),
		fmt.Sprintf("%.0fpx", m.machine.Thickness()),
		fmt.Sprintf("Zoom %.0f%%", m.viewCtl.Scale()*100),
		pageLabel,
	}
	if unsaved := m.store.UnsavedCount(); unsaved > 0 {
		stats = append(stats, fmt.Sprintf("Unsaved %d", unsaved))
	}
	if m.searchQuery != "" {
		stats = append(stats, fmt.Sprintf("/%s (%d on page)", m.searchQuery, m.matches[m.page]))
	}
	if kinds := m.runningKinds(); len(kinds) > 0 {
		stats = append(stats, strings.Join(kinds, "+")+"…")
	}
	return statusBarStyle.Render(strings.Join(stats, "  •  "))
}

func (m *model) composerPanel() string {
	var header string
	switch m.composerMode {
	case composerModeDocument:
		header = "Open Document"
	case composerModeText:
		header = "Annotation Text"
	case composerModeSearch:
		header = "Search"
	default:
		return ""
	}
	return joinNonEmpty([]string{
		sectionHeaderStyle.Render(header),
		m.composer.View(),
		helperStyle.Render("Enter to confirm, Esc to cancel."),
	})
}

func (m *model) heroView() string {
	logo := logoContainerStyle.Render(logoFaceStyle.Render(strings.Join(logoArtLines, "\n")))
	return lipgloss.JoinVertical(
		lipgloss.Left,
		logo,
		heroTitleStyle.Render("PageMark"),
		taglineStyle.Render(heroTagline),
	)
}

type keyHint struct {
	Key         string
	Description string
}

func (m *model) keyLegendView() string {
	hints := []keyHint{
		{"1-9", "Tools: select draw highlight note text rect line arrow eraser"},
		{"c/b", "Cycle color / thickness"},
		{"+/-", "Zoom"},
		{"w f v", "Fit width, fit page, spread"},
		{"[/]", "Turn page"},
		{"u/r", "Undo / redo"},
		{"/ n N", "Search and jump matches"},
		{"s", "Save annotations"},
		{"e", "Export page as PNG"},
	}
	rows := []string{sectionHeaderStyle.Render("Keys")}
	for _, hint := range hints {
		key := keyStyle.Render(hint.Key)
		desc := keyDescStyle.Render(" " + hint.Description)
		rows = append(rows, lipgloss.JoinHorizontal(lipgloss.Top, key, desc))
	}
	return legendBoxStyle.Render(strings.Join(rows, "\n"))
}

func (m *model) wrapWidth() int {
	width := m.width - 4
	if width < 20 {
		width = 20
	}
	return width
}

func joinNonEmpty(parts []string) string {
	filtered := make([]string, 0, len(parts))
	for _, part := range parts {
		if strings.TrimSpace(part) == "" {
			continue
		}
		filtered = append(filtered, part)
	}
	return strings.Join(filtered, "\n\n")
}

func indentBlock(block string, pad int) string {
	if pad <= 0 {
		return block
	}
	prefix := strings.Repeat(" ", pad)
	lines := strings.Split(block, "\n")
	for i, line := range lines {
		lines[i] = prefix + line
	}
	return strings.Join(lines, "\n")
}
