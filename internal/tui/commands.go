package tui

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/avern/pagemark/internal/annotation"
	"github.com/avern/pagemark/internal/document"
	"github.com/avern/pagemark/internal/reconcile"
	"github.com/avern/pagemark/internal/render"
)

type documentOpenedMsg struct {
	doc   *document.Document
	store *annotation.Store
	err   error
}

type pageRenderedMsg struct {
	page    int
	gen     int
	img     pageRaster
	matches int
	err     error
}

type saveResultMsg struct {
	report reconcile.Report
	err    error
}

type exportResultMsg struct {
	path string
	err  error
}

func openDocumentJob(loader *document.Loader, docID string) jobRunner {
	return func(parent context.Context) (tea.Msg, error) {
		ctx, cancel := context.WithTimeout(parent, 60*time.Second)
		defer cancel()
		doc, store, err := loader.Open(ctx, docID)
		if err != nil {
			return documentOpenedMsg{err: err}, err
		}
		return documentOpenedMsg{doc: doc, store: store}, nil
	}
}

func renderPageJob(page, gen int, state render.PageState) jobRunner {
	return func(context.Context) (tea.Msg, error) {
		img, err := render.RenderPage(state)
		if err != nil {
			return pageRenderedMsg{page: page, gen: gen, err: err}, err
		}
		overlay := render.BuildOverlay(state.Runs, state.Metrics.Height, state.Scale, state.Query)
		return pageRenderedMsg{
			page:    page,
			gen:     gen,
			img:     newPageRaster(img),
			matches: render.MatchCount(overlay),
		}, nil
	}
}

// saveJob runs a save pass over a snapshot taken on the update loop.
// The engine never reads the store from this goroutine; the assigned
// ids come back in the result and are committed by the update loop.
func saveJob(engine *reconcile.Engine, snap reconcile.Snapshot) jobRunner {
	return func(parent context.Context) (tea.Msg, error) {
		ctx, cancel := context.WithTimeout(parent, 35*time.Second)
		defer cancel()
		report, err := engine.Save(ctx, snap)
		if err != nil {
			return saveResultMsg{err: err}, err
		}
		return saveResultMsg{report: report}, nil
	}
}

func exportPageJob(dir, docID string, page int, state render.PageState) jobRunner {
	return func(context.Context) (tea.Msg, error) {
		if dir == "" {
			dir = "."
		}
		path := filepath.Join(dir, fmt.Sprintf("%s-page-%d.png", docID, page))
		f, err := os.Create(path)
		if err != nil {
			return exportResultMsg{err: err}, err
		}
		defer f.Close()
		if err := render.ExportPNG(f, state); err != nil {
			return exportResultMsg{err: err}, err
		}
		return exportResultMsg{path: path}, nil
	}
}
