package feed

import (
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/minbarcms/minbar/internal/logging"
	"github.com/minbarcms/minbar/internal/models"
)

// fakePersister records every whole-list write, standing in for the
// local store.
type fakePersister struct {
	stored   []models.Notification
	writes   int
	readErr  error
	writeErr error
}

func (f *fakePersister) ReadNotifications() ([]models.Notification, error) {
	if f.readErr != nil {
		return nil, f.readErr
	}
	return f.stored, nil
}

func (f *fakePersister) WriteNotifications(ns []models.Notification) error {
	if f.writeErr != nil {
		return f.writeErr
	}
	f.writes++
	f.stored = ns
	return nil
}

func newTestFeed(t *testing.T, p *fakePersister) *Feed {
	t.Helper()
	f, err := New(p, logging.NewTextLogger(io.Discard, slog.LevelError))
	require.NoError(t, err)
	return f
}

func TestNew_LoadsPersistedFeed(t *testing.T) {
	p := &fakePersister{stored: []models.Notification{{ID: "1", Title: "old"}}}
	f := newTestFeed(t, p)

	items := f.All()
	require.Len(t, items, 1)
	assert.Equal(t, "old", items[0].Title)
}

func TestNew_ReadFailure(t *testing.T) {
	p := &fakePersister{readErr: errors.New("boom")}
	_, err := New(p, logging.NewTextLogger(io.Discard, slog.LevelError))
	require.Error(t, err)
}

func TestAdd_PrependsAndPersistsWholeList(t *testing.T) {
	p := &fakePersister{}
	f := newTestFeed(t, p)

	first, err := f.Add(models.Notification{Type: models.NotificationSuccess, Title: "first"})
	require.NoError(t, err)
	second, err := f.Add(models.Notification{Type: models.NotificationSuccess, Title: "second"})
	require.NoError(t, err)

	assert.NotEmpty(t, first.ID)
	assert.NotEqual(t, first.ID, second.ID)
	assert.False(t, second.Read)
	assert.False(t, second.Timestamp.IsZero())

	// Newest first, and the persisted list always mirrors memory.
	items := f.All()
	require.Len(t, items, 2)
	assert.Equal(t, "second", items[0].Title)
	assert.Equal(t, "first", items[1].Title)
	assert.Equal(t, items, p.stored)
	assert.Equal(t, 2, p.writes)
}

func TestAdd_PersistFailureKeepsMemoryUnchanged(t *testing.T) {
	p := &fakePersister{}
	f := newTestFeed(t, p)

	_, err := f.Add(models.Notification{Title: "kept"})
	require.NoError(t, err)

	p.writeErr = errors.New("disk full")
	_, err = f.Add(models.Notification{Title: "dropped"})
	require.Error(t, err)

	items := f.All()
	require.Len(t, items, 1)
	assert.Equal(t, "kept", items[0].Title)
}

func TestMarkReadAndUnread(t *testing.T) {
	p := &fakePersister{}
	f := newTestFeed(t, p)

	a, err := f.Add(models.Notification{Title: "a"})
	require.NoError(t, err)
	_, err = f.Add(models.Notification{Title: "b"})
	require.NoError(t, err)

	assert.Equal(t, 2, f.Unread())

	require.NoError(t, f.MarkRead(a.ID))
	assert.Equal(t, 1, f.Unread())

	// Unknown id is a no-op.
	require.NoError(t, f.MarkRead("nope"))
	assert.Equal(t, 1, f.Unread())

	require.NoError(t, f.MarkAllRead())
	assert.Equal(t, 0, f.Unread())

	// Read flags persist with the whole list.
	for _, n := range p.stored {
		assert.True(t, n.Read)
	}
}

func TestClear(t *testing.T) {
	p := &fakePersister{}
	f := newTestFeed(t, p)

	_, err := f.Add(models.Notification{Title: "a"})
	require.NoError(t, err)

	require.NoError(t, f.Clear())
	assert.Empty(t, f.All())
	assert.Empty(t, p.stored)
	assert.Equal(t, 0, f.Unread())
}

func TestAll_ReturnsCopy(t *testing.T) {
	f := newTestFeed(t, &fakePersister{})

	_, err := f.Add(models.Notification{Title: "a"})
	require.NoError(t, err)

	items := f.All()
	items[0].Title = "mutated"

	assert.Equal(t, "a", f.All()[0].Title)
}
