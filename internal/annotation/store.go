package annotation

import "errors"

// ErrUnknownAnnotation is returned when a localId has no record.
var ErrUnknownAnnotation = errors.New("unknown annotation")

// Store is the in-memory annotation collection for one open document:
// a flat ordered set keyed by localId and the single source of truth for
// the UI. Page-scoped views are derived by filtering, never held as a
// second owned structure.
type Store struct {
	order   []string
	byLocal map[string]*Annotation
}

// NewStore returns an empty store.
func NewStore() *Store {
	return &Store{byLocal: map[string]*Annotation{}}
}

// Seed installs records fetched from the server at document-open time.
// Seeded records are marked persisted and produce no history entries.
func (s *Store) Seed(list []Annotation) {
	for _, a := range list {
		a.Persisted = true
		s.Add(a)
	}
}

// Add inserts a record at the tail of the iteration order. An existing
// record with the same localId is replaced in place.
func (s *Store) Add(a Annotation) {
	if _, ok := s.byLocal[a.LocalID]; !ok {
		s.order = append(s.order, a.LocalID)
	}
	copied := a
	s.byLocal[a.LocalID] = &copied
}

// Remove deletes the record with the given localId and returns it.
func (s *Store) Remove(localID string) (Annotation, bool) {
	a, ok := s.byLocal[localID]
	if !ok {
		return Annotation{}, false
	}
	delete(s.byLocal, localID)
	for i, id := range s.order {
		if id == localID {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
	return *a, true
}

// Get returns a copy of the record with the given localId.
func (s *Store) Get(localID string) (Annotation, bool) {
	a, ok := s.byLocal[localID]
	if !ok {
		return Annotation{}, false
	}
	return *a, true
}

// All returns copies of every record in iteration order.
func (s *Store) All() []Annotation {
	result := make([]Annotation, 0, len(s.order))
	for _, id := range s.order {
		result = append(result, *s.byLocal[id])
	}
	return result
}

// Page returns copies of the records on the given 1-based page, in
// iteration order.
func (s *Store) Page(page int) []Annotation {
	result := []Annotation{}
	for _, id := range s.order {
		if a := s.byLocal[id]; a.Page == page {
			result = append(result, *a)
		}
	}
	return result
}

// Len reports the number of records.
func (s *Store) Len() int {
	return len(s.order)
}

// ServerIDs maps every known server id to its localId.
func (s *Store) ServerIDs() map[int64]string {
	ids := map[int64]string{}
	for _, a := range s.byLocal {
		if a.ServerID != 0 {
			ids[a.ServerID] = a.LocalID
		}
	}
	return ids
}

// Unpersisted returns copies of the records not yet saved server-side.
func (s *Store) Unpersisted() []Annotation {
	result := []Annotation{}
	for _, id := range s.order {
		if a := s.byLocal[id]; !a.Persisted {
			result = append(result, *a)
		}
	}
	return result
}

// MarkPersisted records the server id assigned to a local record.
func (s *Store) MarkPersisted(localID string, serverID int64) error {
	a, ok := s.byLocal[localID]
	if !ok {
		return ErrUnknownAnnotation
	}
	a.ServerID = serverID
	a.Persisted = true
	return nil
}

// UnsavedCount reports how many records still need a create on save.
func (s *Store) UnsavedCount() int {
	count := 0
	for _, a := range s.byLocal {
		if !a.Persisted {
			count++
		}
	}
	return count
}
