// Package document loads a remote PDF through a disk cache and exposes
// page metrics and text runs to the renderer.
package document

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/google/uuid"
	"github.com/ledongthuc/pdf"

	"github.com/avern/pagemark/internal/annotation"
	"github.com/avern/pagemark/internal/api"
)

// ErrMalformed indicates the fetched bytes could not be parsed as a PDF.
var ErrMalformed = errors.New("malformed pdf")

// Default page size (US Letter in PDF points) for pages whose media box
// cannot be resolved.
const (
	defaultPageWidth  = 612.0
	defaultPageHeight = 792.0
)

// PageMetrics is a page's intrinsic size at scale 1.0, in PDF points.
type PageMetrics struct {
	Number int
	Width  float64
	Height float64
}

// TextRun is one positioned run of glyphs on a page, in PDF points with
// the origin at the bottom-left corner of the page.
type TextRun struct {
	Text     string
	X        float64
	Y        float64
	Width    float64
	FontSize float64
}

// Document is an open multi-page PDF. It owns the underlying file
// handle; Close releases it. A Document belongs to exactly one viewer
// session and is replaced wholesale when a new document loads.
type Document struct {
	ID        string
	PageCount int
	metrics   []PageMetrics
	file      *os.File
	reader    *pdf.Reader
}

// Page returns the intrinsic metrics for a 1-based page number.
func (d *Document) Page(number int) (PageMetrics, bool) {
	if number < 1 || number > len(d.metrics) {
		return PageMetrics{}, false
	}
	return d.metrics[number-1], true
}

// Text extracts the positioned text runs for a 1-based page number.
// Extraction is per page and recovers from parser panics so one corrupt
// page cannot take down the rest of the document.
func (d *Document) Text(number int) (runs []TextRun, err error) {
	if number < 1 || number > d.PageCount {
		return nil, fmt.Errorf("page %d out of range", number)
	}
	defer func() {
		if r := recover(); r != nil {
			runs = nil
			err = fmt.Errorf("extract text for page %d: %v", number, r)
		}
	}()
	page := d.reader.Page(number)
	if page.V.IsNull() {
		return nil, fmt.Errorf("page %d missing", number)
	}
	content := page.Content()
	runs = make([]TextRun, 0, len(content.Text))
	for _, text := range content.Text {
		if text.S == "" {
			continue
		}
		runs = append(runs, TextRun{
			Text:     text.S,
			X:        text.X,
			Y:        text.Y,
			Width:    text.W,
			FontSize: text.FontSize,
		})
	}
	return runs, nil
}

// Close releases the underlying file handle.
func (d *Document) Close() error {
	if d.file == nil {
		return nil
	}
	err := d.file.Close()
	d.file = nil
	return err
}

// Loader opens documents by id: download through the injected cache,
// parse, then fetch and seed the persisted annotation list.
type Loader struct {
	client *api.Client
	cache  *Cache
}

// NewLoader wires the loader to its API client and cache.
func NewLoader(client *api.Client, cache *Cache) *Loader {
	return &Loader{client: client, cache: cache}
}

// Open loads a document and its persisted annotations. Any failure here
// is fatal to the viewer; partial resources are released before return.
func (l *Loader) Open(ctx context.Context, docID string) (*Document, *annotation.Store, error) {
	path, err := l.cache.Fetch(ctx, docID)
	if err != nil {
		return nil, nil, fmt.Errorf("open document %s: %w", docID, err)
	}

	file, reader, err := pdf.Open(path)
	if err != nil {
		return nil, nil, fmt.Errorf("open document %s: %w: %v", docID, ErrMalformed, err)
	}
	doc := &Document{
		ID:        docID,
		PageCount: reader.NumPage(),
		file:      file,
		reader:    reader,
	}
	doc.metrics = readMetrics(reader, doc.PageCount)

	records, err := l.client.ListAnnotations(ctx, docID)
	if err != nil {
		doc.Close()
		return nil, nil, fmt.Errorf("open document %s: %w", docID, err)
	}
	store := annotation.NewStore()
	for i := range records {
		records[i].LocalID = uuid.NewString()
	}
	store.Seed(records)
	return doc, store, nil
}

func readMetrics(reader *pdf.Reader, pageCount int) []PageMetrics {
	metrics := make([]PageMetrics, pageCount)
	for i := 1; i <= pageCount; i++ {
		width, height := pageSize(reader, i)
		metrics[i-1] = PageMetrics{Number: i, Width: width, Height: height}
	}
	return metrics
}

// pageSize resolves the media box, walking up the page tree because the
// box may be inherited from an ancestor Pages node.
func pageSize(reader *pdf.Reader, number int) (width, height float64) {
	defer func() {
		if r := recover(); r != nil {
			width, height = defaultPageWidth, defaultPageHeight
		}
	}()
	node := reader.Page(number).V
	for !node.IsNull() {
		box := node.Key("MediaBox")
		if !box.IsNull() && box.Len() == 4 {
			w := box.Index(2).Float64() - box.Index(0).Float64()
			h := box.Index(3).Float64() - box.Index(1).Float64()
			if w > 0 && h > 0 {
				return w, h
			}
		}
		node = node.Key("Parent")
	}
	return defaultPageWidth, defaultPageHeight
}
