// Package reconcile pushes the local annotation store to the server:
// one save pass deletes remote records the user removed locally, then
// creates everything not yet persisted.
package reconcile

import (
	"context"
	"errors"
	"log"
	"sync"
	"sync/atomic"

	"golang.org/x/sync/errgroup"

	"github.com/avern/pagemark/internal/annotation"
	"github.com/avern/pagemark/internal/api"
)

// ErrSaveInFlight is returned when a save is requested while a previous
// one is still running. The request is a no-op; the caller retries after
// the running save reports back.
var ErrSaveInFlight = errors.New("save already in flight")

// Parallel create/delete calls per save pass.
const saveConcurrency = 4

// Snapshot is the store state one save pass works from: the server-id
// set and copies of the unpersisted records. Taking it on the goroutine
// that owns the store is what keeps Save free to run on a worker.
type Snapshot struct {
	known   map[int64]string
	pending []annotation.Annotation
}

// Report summarizes one save pass. Assigned carries the server ids the
// pass obtained, keyed by local id; Commit writes them into the store.
type Report struct {
	Created  int
	Deleted  int
	Failed   int
	Assigned map[string]int64
}

// Clean reports whether every reconciliation call succeeded.
func (r Report) Clean() bool { return r.Failed == 0 }

// Engine reconciles a store against the server's annotation collection
// for one document. Save itself never touches the store: Snapshot and
// Commit bracket it on the store-owning goroutine, so the UI loop can
// keep mutating the store while a save pass runs on a worker.
type Engine struct {
	client *api.Client
	store  *annotation.Store
	docID  string
	busy   atomic.Bool
}

// NewEngine returns an engine bound to one document and its store.
func NewEngine(client *api.Client, store *annotation.Store, docID string) *Engine {
	return &Engine{client: client, store: store, docID: docID}
}

// Saving reports whether a save pass is currently running.
func (e *Engine) Saving() bool { return e.busy.Load() }

// Snapshot copies the save-relevant store state. Call it on the
// goroutine that owns the store, before handing the pass to a worker.
func (e *Engine) Snapshot() Snapshot {
	return Snapshot{known: e.store.ServerIDs(), pending: e.store.Unpersisted()}
}

// Commit writes the server ids assigned during a save pass back into
// the store. Like Snapshot, it runs on the store-owning goroutine.
func (e *Engine) Commit(report Report) {
	for localID, serverID := range report.Assigned {
		if err := e.store.MarkPersisted(localID, serverID); err != nil {
			// The record was removed mid-save; the orphan is cleaned up
			// on the next pass.
			log.Printf("[sync] created %d has no local record: %v", serverID, err)
		}
	}
}

// Save runs one reconciliation pass over a snapshot.
//
// The server's id list is the baseline: remote ids missing from the
// snapshot are deleted, then every pending record is created and its
// assigned id collected into the report. Listing failure aborts the
// pass; individual create or delete failures are logged, counted, and
// do not stop the rest. A second call while a pass is running returns
// ErrSaveInFlight without touching anything.
func (e *Engine) Save(ctx context.Context, snap Snapshot) (Report, error) {
	if !e.busy.CompareAndSwap(false, true) {
		return Report{}, ErrSaveInFlight
	}
	defer e.busy.Store(false)

	remote, err := e.client.ListAnnotations(ctx, e.docID)
	if err != nil {
		return Report{}, err
	}

	var orphans []int64
	for _, a := range remote {
		if a.ServerID == 0 {
			continue
		}
		if _, ok := snap.known[a.ServerID]; !ok {
			orphans = append(orphans, a.ServerID)
		}
	}
	log.Printf("[sync] save: %d to create, %d to delete", len(snap.pending), len(orphans))

	var (
		failed   atomic.Int64
		deleted  atomic.Int64
		mu       sync.Mutex
		assigned = map[string]int64{}
	)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(saveConcurrency)
	for _, id := range orphans {
		id := id
		g.Go(func() error {
			if err := e.client.DeleteAnnotation(gctx, e.docID, id); err != nil {
				log.Printf("[sync] delete %d failed: %v", id, err)
				failed.Add(1)
				return nil
			}
			deleted.Add(1)
			return nil
		})
	}
	for _, a := range snap.pending {
		a := a
		g.Go(func() error {
			serverID, err := e.client.CreateAnnotation(gctx, e.docID, a)
			if err != nil {
				log.Printf("[sync] create %s on page %d failed: %v", a.Kind, a.Page, err)
				failed.Add(1)
				return nil
			}
			mu.Lock()
			assigned[a.LocalID] = serverID
			mu.Unlock()
			return nil
		})
	}
	g.Wait()

	report := Report{
		Created:  len(assigned),
		Deleted:  int(deleted.Load()),
		Failed:   int(failed.Load()),
		Assigned: assigned,
	}
	log.Printf("[sync] save done: %d created, %d deleted, %d failed",
		report.Created, report.Deleted, report.Failed)
	return report, nil
}
