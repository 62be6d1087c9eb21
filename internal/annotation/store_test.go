package annotation

import (
	"math"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
)

// storeContent compares stores by record content, ignoring iteration
// order, which is not semantically significant.
func storeContent(t *testing.T, got, want *Store) {
	t.Helper()
	sorted := cmpopts.SortSlices(func(a, b Annotation) bool { return a.LocalID < b.LocalID })
	if diff := cmp.Diff(want.All(), got.All(), sorted); diff != "" {
		t.Fatalf("store content mismatch (-want +got):\n%s", diff)
	}
}

func TestRectFromCornersNormalizesDragDirection(t *testing.T) {
	t.Parallel()

	got := RectFromCorners(Point{X: 0.6, Y: 0.5}, Point{X: 0.2, Y: 0.1})
	want := Rect{X: 0.2, Y: 0.1, W: 0.4, H: 0.4}
	if math.Abs(got.X-want.X) > 1e-9 || math.Abs(got.Y-want.Y) > 1e-9 ||
		math.Abs(got.W-want.W) > 1e-9 || math.Abs(got.H-want.H) > 1e-9 {
		t.Fatalf("RectFromCorners() = %+v, want %+v", got, want)
	}
}

func TestFractionalPixelRoundTrip(t *testing.T) {
	t.Parallel()

	points := []Point{{X: 0.1, Y: 0.9}, {X: 0.333, Y: 0.667}, {X: 0, Y: 1}}
	for _, scale := range []float64{0.25, 1, 1.5, 5} {
		pageW, pageH := 612.0*scale, 792.0*scale
		for _, p := range points {
			px, py := p.X*pageW, p.Y*pageH
			back := Point{X: px / pageW, Y: py / pageH}
			if math.Abs(back.X-p.X) > 1e-12 || math.Abs(back.Y-p.Y) > 1e-12 {
				t.Fatalf("round trip at scale %v: %+v -> %+v", scale, p, back)
			}
		}
	}
}

func TestStorePageViewsAreDerived(t *testing.T) {
	t.Parallel()

	s := NewStore()
	s.Add(NewNote(1, Point{X: 0.5, Y: 0.5}, "first", "#ffcc00"))
	s.Add(NewHighlight(2, Rect{X: 0.1, Y: 0.1, W: 0.2, H: 0.1}, "#ffff00"))
	s.Add(NewNote(2, Point{X: 0.2, Y: 0.8}, "second", "#ffcc00"))

	if got := len(s.Page(1)); got != 1 {
		t.Fatalf("page 1 slice length = %d, want 1", got)
	}
	if got := len(s.Page(2)); got != 2 {
		t.Fatalf("page 2 slice length = %d, want 2", got)
	}
	if got := len(s.Page(3)); got != 0 {
		t.Fatalf("page 3 slice length = %d, want 0", got)
	}
	if s.Len() != 3 {
		t.Fatalf("store length = %d, want 3", s.Len())
	}
}

func TestSeedMarksPersistedAndTracksServerIDs(t *testing.T) {
	t.Parallel()

	s := NewStore()
	a := NewNote(1, Point{X: 0.5, Y: 0.5}, "from server", "#ffcc00")
	a.ServerID = 42
	s.Seed([]Annotation{a})

	got, ok := s.Get(a.LocalID)
	if !ok || !got.Persisted {
		t.Fatalf("seeded record not persisted: %+v ok=%v", got, ok)
	}
	ids := s.ServerIDs()
	if ids[42] != a.LocalID {
		t.Fatalf("ServerIDs() = %v, want 42 -> %s", ids, a.LocalID)
	}
	if s.UnsavedCount() != 0 {
		t.Fatalf("UnsavedCount() = %d after seed, want 0", s.UnsavedCount())
	}
}

func TestMarkPersistedAssignsServerID(t *testing.T) {
	t.Parallel()

	s := NewStore()
	a := NewHighlight(3, Rect{X: 0.1, Y: 0.2, W: 0.3, H: 0.05}, "#ffff00")
	s.Add(a)
	if s.UnsavedCount() != 1 {
		t.Fatalf("UnsavedCount() = %d, want 1", s.UnsavedCount())
	}

	if err := s.MarkPersisted(a.LocalID, 7); err != nil {
		t.Fatalf("MarkPersisted() error = %v", err)
	}
	got, _ := s.Get(a.LocalID)
	if got.ServerID != 7 || !got.Persisted {
		t.Fatalf("record after MarkPersisted: %+v", got)
	}
	if err := s.MarkPersisted("missing", 8); err == nil {
		t.Fatal("MarkPersisted() with unknown localId should fail")
	}
}
