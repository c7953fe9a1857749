// Package cache is the single source of truth for content entries
// during a session: an in-memory mirror of the backend's joined read
// view, synchronized by full refetch. Mutations go through the gateway
// and then refetch the canonical list rather than patching locally —
// the read view adds the creator's display name, a projection the
// client can not reconstruct — with delete as the one local-patch
// exception. The cache is eventually consistent, not linearizable:
// overlapping refreshes are not serialized and the last one to complete
// wins.
package cache

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/minbarcms/minbar/internal/common"
	"github.com/minbarcms/minbar/internal/gateway"
	"github.com/minbarcms/minbar/internal/logging"
	"github.com/minbarcms/minbar/internal/models"
)

// Consistency tags how an operation brings the cache back in sync with
// the backend after a successful mutation.
type Consistency int

const (
	// ConsistencyRefetch reloads the full canonical list.
	ConsistencyRefetch Consistency = iota
	// ConsistencyLocalPatch applies the change to the in-memory list
	// directly, with no refetch.
	ConsistencyLocalPatch
)

// OperationConsistency is the per-operation sync policy. Swapping a
// strategy here is deliberate and visible, not hidden in call sites.
var OperationConsistency = map[string]Consistency{
	"create":     ConsistencyRefetch,
	"bulkCreate": ConsistencyRefetch,
	"update":     ConsistencyRefetch,
	"delete":     ConsistencyLocalPatch,
}

// Sessions is the slice of session state the cache depends on.
type Sessions interface {
	CurrentUser() *models.User
	Restoring() bool
	Subscribe(fn func()) (unsubscribe func())
}

// Notifier receives activity records for successful mutations. The
// notification feed implements it.
type Notifier interface {
	Add(models.Notification) (models.Notification, error)
}

// ErrorSink surfaces a user-visible error message (the UI toast of the
// original). A nil sink drops messages.
type ErrorSink func(title, message string)

// Result is the explicit outcome of a mutation: success with a payload,
// or failure with a message. Remote failures never escape as errors.
type Result struct {
	OK      bool
	Message string
	Entry   *models.Entry
	Count   int
}

func failure(err error) Result {
	return Result{Message: err.Error()}
}

// Store is the content cache.
type Store struct {
	gw       gateway.Gateway
	sessions Sessions
	feed     Notifier
	sink     ErrorSink
	log      logging.Logger

	mu        sync.Mutex
	entries   []models.Entry
	loading   bool
	firstLoad bool

	unsub func()
}

// New builds a Store. feed and sink may be nil.
func New(gw gateway.Gateway, sessions Sessions, feed Notifier, sink ErrorSink, log logging.Logger) *Store {
	return &Store{
		gw:        gw,
		sessions:  sessions,
		feed:      feed,
		sink:      sink,
		log:       log,
		loading:   true,
		firstLoad: true,
	}
}

// Start subscribes to session changes and runs the initial load. Error
// surfacing is suppressed only on the very first automatic load, so a
// transient failure during session warm-up does not flash an error.
func (s *Store) Start(ctx context.Context) {
	s.unsub = s.sessions.Subscribe(func() {
		s.Refresh(ctx, s.consumeFirstLoad())
	})
	if !s.sessions.Restoring() {
		s.Refresh(ctx, s.consumeFirstLoad())
	}
}

// Close unsubscribes from session changes.
func (s *Store) Close() {
	if s.unsub != nil {
		s.unsub()
	}
}

func (s *Store) consumeFirstLoad() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	first := s.firstLoad
	s.firstLoad = false
	return first
}

// Refresh reloads the full list from the joined read view and replaces
// the in-memory list atomically. While the session is restoring it is a
// no-op; signed out it clears the list. A failed fetch clears the list
// to empty and surfaces an error unless suppressed. Concurrent calls
// are not serialized; the last to complete wins.
func (s *Store) Refresh(ctx context.Context, suppressErrors bool) {
	if s.sessions.Restoring() {
		return
	}
	if s.sessions.CurrentUser() == nil {
		s.mu.Lock()
		s.entries = nil
		s.loading = false
		s.mu.Unlock()
		return
	}

	s.mu.Lock()
	s.loading = true
	s.mu.Unlock()

	entries, err := s.gw.ListEntries(ctx)

	s.mu.Lock()
	if err != nil {
		s.entries = nil
	} else {
		s.entries = entries
	}
	s.loading = false
	s.mu.Unlock()

	if err != nil {
		s.log.Error(ctx, "refresh entries failed", "err", err)
		if !suppressErrors {
			s.surface("Error", "Could not fetch data. Please check your connection.")
		}
	}
}

// Entries returns the current list, newest first. Callers must treat
// the slice as read-only.
func (s *Store) Entries() []models.Entry {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.entries
}

// Loading reports whether a load is in flight (or the initial load has
// not happened yet).
func (s *Store) Loading() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loading
}

// LookupByID scans the in-memory list synchronously; it never touches
// the network. Absent ids are normal (deleted elsewhere, or the first
// refresh has not completed) and callers must tolerate them.
func (s *Store) LookupByID(id string) (models.Entry, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, e := range s.entries {
		if e.ID == id {
			return e, true
		}
	}
	return models.Entry{}, false
}

// Create inserts one entry stamped with the creator's identity, then
// refetches the canonical list and emits a feed record.
func (s *Store) Create(ctx context.Context, e models.Entry) Result {
	user := s.sessions.CurrentUser()
	if user == nil {
		return failure(common.ErrNotAuthenticated)
	}

	rec := e.Record()
	rec.ID = ""
	rec.CreatorName = ""
	rec.CreatedAt = ""
	rec.UpdatedAt = ""
	rec.CreatedBy = user.ID

	created, err := s.gw.InsertEntry(ctx, rec)
	if err != nil {
		s.surface("Error", "Failed to add content. Please try again.")
		return failure(err)
	}

	s.Refresh(ctx, false)
	s.notify(models.NotificationSuccess, "Content Added",
		fmt.Sprintf("New %s entry has been successfully added.", e.Kind))

	return Result{OK: true, Entry: &created, Count: 1}
}

// BulkCreate inserts the batch in one request, stamping every record
// with the creator id. The batch is all-or-nothing; on success the
// canonical list is refetched.
func (s *Store) BulkCreate(ctx context.Context, recs []models.Record) Result {
	user := s.sessions.CurrentUser()
	if user == nil {
		return failure(common.ErrNotAuthenticated)
	}

	stamped := make([]models.Record, len(recs))
	for i, rec := range recs {
		rec.CreatedBy = user.ID
		stamped[i] = rec
	}

	created, err := s.gw.InsertEntries(ctx, stamped)
	if err != nil {
		s.surface("Import Error", "An error occurred during the import process.")
		return failure(err)
	}

	s.Refresh(ctx, false)
	s.notify(models.NotificationSuccess, "Import Successful",
		fmt.Sprintf("%d entries have been imported.", len(created)))

	return Result{OK: true, Count: len(created)}
}

// Update sends a partial update keyed by id, stripping the immutable
// and derived columns first and stamping a fresh update timestamp, then
// refetches the canonical list.
func (s *Store) Update(ctx context.Context, id string, patch models.Patch) Result {
	cleaned := models.Patch{}
	for k, v := range patch {
		cleaned[k] = v
	}
	for _, k := range models.ImmutablePatchFields {
		delete(cleaned, k)
	}
	cleaned["updated_at"] = time.Now().UTC().Format(time.RFC3339)

	updated, err := s.gw.UpdateEntry(ctx, id, cleaned)
	if err != nil {
		s.surface("Error", "Failed to update entry.")
		return failure(err)
	}

	s.Refresh(ctx, false)
	return Result{OK: true, Entry: &updated, Count: 1}
}

// Delete removes the row remotely and splices it out of the in-memory
// list directly — the one mutation that patches locally instead of
// refetching (no projection is needed to remove a row).
func (s *Store) Delete(ctx context.Context, id string) Result {
	if err := s.gw.DeleteEntry(ctx, id); err != nil {
		s.surface("Error", "Failed to delete entry.")
		return failure(err)
	}

	s.mu.Lock()
	kept := make([]models.Entry, 0, len(s.entries))
	for _, e := range s.entries {
		if e.ID != id {
			kept = append(kept, e)
		}
	}
	s.entries = kept
	s.mu.Unlock()

	return Result{OK: true, Count: 1}
}

func (s *Store) surface(title, message string) {
	if s.sink != nil {
		s.sink(title, message)
	}
}

func (s *Store) notify(t models.NotificationType, title, message string) {
	if s.feed == nil {
		return
	}
	if _, err := s.feed.Add(models.Notification{Type: t, Title: title, Message: message}); err != nil {
		s.log.Warn(context.Background(), "feed notification failed", "err", err)
	}
}
