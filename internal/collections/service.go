// Package collections manages the user's named entry groupings. The
// aggregate is fully device-local: every mutation reads the whole set,
// changes it in memory, and writes the whole set back (last write
// wins). Collections hold references, not copies — deleting a
// collection never deletes an entry, and a referenced entry deleted on
// the backend simply resolves to nothing.
package collections

import (
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/minbarcms/minbar/internal/common"
	"github.com/minbarcms/minbar/internal/models"
)

// ErrNameRequired rejects collection saves without a name.
var ErrNameRequired = errors.New("collection name is required")

// Persister is the slice of the local store the service needs.
type Persister interface {
	ReadCollections() ([]models.Collection, error)
	WriteCollections([]models.Collection) error
}

// Lookup resolves entry ids against the content cache.
type Lookup interface {
	LookupByID(id string) (models.Entry, bool)
}

// Service owns the collections aggregate.
type Service struct {
	mu     sync.Mutex
	store  Persister
	lastID int64
}

// NewService returns a Service over the given store.
func NewService(store Persister) *Service {
	return &Service{store: store}
}

// nextID returns a time-based id, bumped on same-millisecond creation.
func (s *Service) nextID() int64 {
	id := time.Now().UnixMilli()
	if id <= s.lastID {
		id = s.lastID + 1
	}
	s.lastID = id
	return id
}

// List returns all collections (seeded defaults on first-ever read).
func (s *Service) List() ([]models.Collection, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.store.ReadCollections()
}

// Search filters collections by case-insensitive substring on name and
// description. An empty term returns everything.
func (s *Service) Search(term string) ([]models.Collection, error) {
	cols, err := s.List()
	if err != nil {
		return nil, err
	}
	term = strings.ToLower(strings.TrimSpace(term))
	if term == "" {
		return cols, nil
	}
	out := make([]models.Collection, 0, len(cols))
	for _, c := range cols {
		if strings.Contains(strings.ToLower(c.Name), term) ||
			strings.Contains(strings.ToLower(c.Description), term) {
			out = append(out, c)
		}
	}
	return out, nil
}

// Get returns one collection by id.
func (s *Service) Get(id int64) (models.Collection, error) {
	cols, err := s.List()
	if err != nil {
		return models.Collection{}, err
	}
	for _, c := range cols {
		if c.ID == id {
			return c, nil
		}
	}
	return models.Collection{}, common.ErrNotFound
}

// Create adds a new named collection.
func (s *Service) Create(name, description string) (models.Collection, error) {
	if strings.TrimSpace(name) == "" {
		return models.Collection{}, ErrNameRequired
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	cols, err := s.store.ReadCollections()
	if err != nil {
		return models.Collection{}, err
	}

	col := models.Collection{
		ID:          s.nextID(),
		Name:        name,
		Description: description,
		EntryIDs:    []string{},
	}
	cols = append(cols, col)
	if err := s.store.WriteCollections(cols); err != nil {
		return models.Collection{}, err
	}
	return col, nil
}

// Rename changes a collection's name and description.
func (s *Service) Rename(id int64, name, description string) error {
	if strings.TrimSpace(name) == "" {
		return ErrNameRequired
	}
	return s.mutate(id, func(c *models.Collection) error {
		c.Name = name
		c.Description = description
		return nil
	})
}

// Delete removes a collection. The entries it referenced are untouched.
func (s *Service) Delete(id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	cols, err := s.store.ReadCollections()
	if err != nil {
		return err
	}
	kept := make([]models.Collection, 0, len(cols))
	found := false
	for _, c := range cols {
		if c.ID == id {
			found = true
			continue
		}
		kept = append(kept, c)
	}
	if !found {
		return common.ErrNotFound
	}
	return s.store.WriteCollections(kept)
}

// AddEntry adds an entry reference, suppressing duplicates. It reports
// whether the reference was new.
func (s *Service) AddEntry(id int64, entryID string) (bool, error) {
	added := false
	err := s.mutate(id, func(c *models.Collection) error {
		added = c.AddEntry(entryID)
		return nil
	})
	return added, err
}

// RemoveEntry drops an entry reference from the collection.
func (s *Service) RemoveEntry(id int64, entryID string) error {
	return s.mutate(id, func(c *models.Collection) error {
		if !c.RemoveEntry(entryID) {
			return fmt.Errorf("entry %s: %w", entryID, common.ErrNotFound)
		}
		return nil
	})
}

// Resolve maps a collection's references through the cache, dropping
// dangling ids (referential staleness is an empty slot, never an
// error).
func (s *Service) Resolve(c models.Collection, lookup Lookup) []models.Entry {
	out := make([]models.Entry, 0, len(c.EntryIDs))
	for _, id := range c.EntryIDs {
		if e, ok := lookup.LookupByID(id); ok {
			out = append(out, e)
		}
	}
	return out
}

// mutate runs a whole-document read-modify-write on one collection.
func (s *Service) mutate(id int64, fn func(*models.Collection) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	cols, err := s.store.ReadCollections()
	if err != nil {
		return err
	}
	for i := range cols {
		if cols[i].ID == id {
			if err := fn(&cols[i]); err != nil {
				return err
			}
			return s.store.WriteCollections(cols)
		}
	}
	return common.ErrNotFound
}
