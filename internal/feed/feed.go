// Package feed maintains the device-local activity log: user-facing
// records derived from cache mutations ("Content Added", import results,
// errors). The feed is prepend-only except for read flags and bulk
// clearing, and every mutation persists the whole list through the local
// store. Unread count is derived from the list on each read, so the
// counter can never drift from the persisted records.
package feed

import (
	"context"
	"strconv"
	"sync"
	"time"

	"github.com/minbarcms/minbar/internal/logging"
	"github.com/minbarcms/minbar/internal/models"
)

// Persister is the slice of the local store the feed needs.
type Persister interface {
	ReadNotifications() ([]models.Notification, error)
	WriteNotifications([]models.Notification) error
}

// Feed is the in-memory view of the notification log, backed by the
// local store. Safe for concurrent use.
type Feed struct {
	mu     sync.Mutex
	store  Persister
	items  []models.Notification
	lastID int64
	log    logging.Logger
}

// New loads the persisted feed and returns a Feed over it. A missing
// aggregate is an empty feed.
func New(store Persister, log logging.Logger) (*Feed, error) {
	items, err := store.ReadNotifications()
	if err != nil {
		return nil, err
	}
	return &Feed{store: store, items: items, log: log}, nil
}

// nextID returns a time-based id, bumped when two records land in the
// same millisecond so ids stay unique within a session.
func (f *Feed) nextID() string {
	id := time.Now().UnixMilli()
	if id <= f.lastID {
		id = f.lastID + 1
	}
	f.lastID = id
	return strconv.FormatInt(id, 10)
}

// Add prepends a record, defaulting its id, timestamp and read flag,
// and persists the updated feed. The stored record is returned.
func (f *Feed) Add(n models.Notification) (models.Notification, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	n.ID = f.nextID()
	n.Timestamp = time.Now().UTC()
	n.Read = false

	updated := make([]models.Notification, 0, len(f.items)+1)
	updated = append(updated, n)
	updated = append(updated, f.items...)

	if err := f.store.WriteNotifications(updated); err != nil {
		f.log.Error(context.Background(), "persist notification failed", "err", err)
		return models.Notification{}, err
	}
	f.items = updated
	return n, nil
}

// MarkRead flips one record's read flag and persists. Unknown ids are a
// no-op.
func (f *Feed) MarkRead(id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	updated := make([]models.Notification, len(f.items))
	copy(updated, f.items)
	for i := range updated {
		if updated[i].ID == id {
			updated[i].Read = true
		}
	}

	if err := f.store.WriteNotifications(updated); err != nil {
		return err
	}
	f.items = updated
	return nil
}

// MarkAllRead flips every record and persists.
func (f *Feed) MarkAllRead() error {
	f.mu.Lock()
	defer f.mu.Unlock()

	updated := make([]models.Notification, len(f.items))
	copy(updated, f.items)
	for i := range updated {
		updated[i].Read = true
	}

	if err := f.store.WriteNotifications(updated); err != nil {
		return err
	}
	f.items = updated
	return nil
}

// Clear empties the feed and persists the empty aggregate.
func (f *Feed) Clear() error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if err := f.store.WriteNotifications(nil); err != nil {
		return err
	}
	f.items = nil
	return nil
}

// All returns a copy of the feed, newest first.
func (f *Feed) All() []models.Notification {
	f.mu.Lock()
	defer f.mu.Unlock()

	out := make([]models.Notification, len(f.items))
	copy(out, f.items)
	return out
}

// Unread counts the records not yet marked read. Derived on every call
// rather than cached alongside the list.
func (f *Feed) Unread() int {
	f.mu.Lock()
	defer f.mu.Unlock()

	n := 0
	for _, item := range f.items {
		if !item.Read {
			n++
		}
	}
	return n
}
