package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/avern/pagemark/internal/api"
	"github.com/avern/pagemark/internal/document"
	"github.com/avern/pagemark/internal/tui"
)

func main() {
	defaultCache := filepath.Join(os.TempDir(), "pagemark-cache")
	baseURL := flag.String("base-url", "http://localhost:8080/api", "document store base URL")
	docID := flag.String("doc", "", "document id to open on startup")
	cookieName := flag.String("cookie-name", "session", "session cookie name")
	cookieValue := flag.String("cookie-value", os.Getenv("PAGEMARK_SESSION"), "session cookie value (defaults to $PAGEMARK_SESSION)")
	cacheDir := flag.String("cache-dir", defaultCache, "directory for downloaded documents")
	cacheTTL := flag.Duration("cache-ttl", 14*24*time.Hour, "age after which cached documents are pruned")
	exportDir := flag.String("export-dir", ".", "directory for exported PNG pages")
	noAltScreen := flag.Bool("no-alt-screen", false, "disable the alternate screen buffer")
	flag.Parse()

	client := api.New(*baseURL, *cookieName, *cookieValue, nil)
	cache, err := document.NewCache(*cacheDir, client.DocumentStream)
	if err != nil {
		fmt.Println("failed to prepare cache directory:", err)
		os.Exit(1)
	}
	if err := cache.Prune(*cacheTTL); err != nil {
		log.Printf("[cache] prune: %v", err)
	}

	opts := []tea.ProgramOption{tea.WithMouseCellMotion()}
	if !*noAltScreen {
		opts = append(opts, tea.WithAltScreen())
	}
	program := tea.NewProgram(
		tui.New(tui.Config{
			Loader:     document.NewLoader(client, cache),
			Client:     client,
			DocumentID: *docID,
			ExportDir:  *exportDir,
		}),
		opts...,
	)

	if _, err := program.Run(); err != nil {
		fmt.Println("program error:", err)
		os.Exit(1)
	}
}
