package tui

type stage int

const (
	stageInput stage = iota
	stageLoading
	stageDisplay
)

type composerMode int

const (
	composerModeIdle composerMode = iota
	composerModeDocument
	composerModeText
	composerModeSearch
)

const (
	composerDocumentPlaceholder = "Document id, Enter to open…"
	composerTextPlaceholder     = "Annotation text, Enter to place, Esc to cancel."
	composerSearchPlaceholder   = "Search the document…"
)

const heroTagline = "Read and mark up documents without leaving the terminal."

const (
	minPageAreaWidth = 40
	chromeRows       = 7
	pageAreaTopRow   = 2
	spreadGapCells   = 2
	renderLookahead  = 1
)

var colorPalette = []string{
	"#e53935",
	"#fb8c00",
	"#fdd835",
	"#43a047",
	"#1e88e5",
	"#8e24aa",
}

var thicknessSteps = []float64{1, 2, 3, 5}
