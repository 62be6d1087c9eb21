package document

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"
)

func TestFetchDownloadsOnceWithinTTL(t *testing.T) {
	t.Parallel()

	var hits int64
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt64(&hits, 1)
		w.Header().Set("Etag", `"v1"`)
		w.Write([]byte("%PDF-1.4 fake"))
	}))
	defer server.Close()

	cache, err := NewCache(t.TempDir(), streamVia(server))
	if err != nil {
		t.Fatalf("NewCache() error = %v", err)
	}

	first, err := cache.Fetch(context.Background(), "doc-1")
	if err != nil {
		t.Fatalf("first Fetch() error = %v", err)
	}
	second, err := cache.Fetch(context.Background(), "doc-1")
	if err != nil {
		t.Fatalf("second Fetch() error = %v", err)
	}
	if first != second {
		t.Fatalf("paths differ: %q vs %q", first, second)
	}
	if got := atomic.LoadInt64(&hits); got != 1 {
		t.Fatalf("server hit %d times, want 1", got)
	}
	data, err := os.ReadFile(first)
	if err != nil || string(data) != "%PDF-1.4 fake" {
		t.Fatalf("cached bytes = %q err = %v", data, err)
	}
}

func TestFetchRevalidatesWithETag(t *testing.T) {
	t.Parallel()

	var conditional int64
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("If-None-Match") == `"v1"` {
			atomic.AddInt64(&conditional, 1)
			w.WriteHeader(http.StatusNotModified)
			return
		}
		w.Header().Set("Etag", `"v1"`)
		w.Write([]byte("payload"))
	}))
	defer server.Close()

	cache, err := NewCache(t.TempDir(), streamVia(server))
	if err != nil {
		t.Fatalf("NewCache() error = %v", err)
	}
	path, err := cache.Fetch(context.Background(), "doc-1")
	if err != nil {
		t.Fatalf("Fetch() error = %v", err)
	}

	// Age the file past the TTL so the next fetch revalidates.
	old := time.Now().Add(-2 * cacheTTL)
	if err := os.Chtimes(path, old, old); err != nil {
		t.Fatalf("Chtimes() error = %v", err)
	}

	if _, err := cache.Fetch(context.Background(), "doc-1"); err != nil {
		t.Fatalf("revalidating Fetch() error = %v", err)
	}
	if atomic.LoadInt64(&conditional) != 1 {
		t.Fatal("expected a conditional request after TTL expiry")
	}
}

func TestFetchServesStaleCopyWhenOffline(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("payload"))
	}))

	cache, err := NewCache(t.TempDir(), streamVia(server))
	if err != nil {
		t.Fatalf("NewCache() error = %v", err)
	}
	path, err := cache.Fetch(context.Background(), "doc-1")
	if err != nil {
		t.Fatalf("Fetch() error = %v", err)
	}
	old := time.Now().Add(-2 * cacheTTL)
	os.Chtimes(path, old, old)

	server.Close()
	got, err := cache.Fetch(context.Background(), "doc-1")
	if err != nil {
		t.Fatalf("offline Fetch() error = %v", err)
	}
	if got != path {
		t.Fatalf("offline Fetch() = %q, want stale %q", got, path)
	}
}

func TestPruneRemovesExpiredEntries(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	cache, err := NewCache(dir, nil)
	if err != nil {
		t.Fatalf("NewCache() error = %v", err)
	}
	stale := filepath.Join(dir, "stale.pdf")
	os.WriteFile(stale, []byte("x"), 0o644)
	old := time.Now().Add(-48 * time.Hour)
	os.Chtimes(stale, old, old)
	fresh := filepath.Join(dir, "fresh.pdf")
	os.WriteFile(fresh, []byte("x"), 0o644)

	if err := cache.Prune(24 * time.Hour); err != nil {
		t.Fatalf("Prune() error = %v", err)
	}
	if _, err := os.Stat(stale); !os.IsNotExist(err) {
		t.Fatal("stale entry survived prune")
	}
	if _, err := os.Stat(fresh); err != nil {
		t.Fatal("fresh entry removed by prune")
	}
}

// streamVia adapts a test server into the cache's StreamFunc.
func streamVia(server *httptest.Server) StreamFunc {
	return func(ctx context.Context, docID string, extra http.Header) (*http.Response, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, server.URL+"/"+docID, nil)
		if err != nil {
			return nil, err
		}
		for key, values := range extra {
			for _, v := range values {
				req.Header.Add(key, v)
			}
		}
		return server.Client().Do(req)
	}
}
