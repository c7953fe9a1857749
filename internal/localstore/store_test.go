package localstore

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/minbarcms/minbar/internal/models"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestReadCollections_SeedsDefaultsOnFirstRead(t *testing.T) {
	s := openTestStore(t)

	cols, err := s.ReadCollections()
	require.NoError(t, err)
	require.Len(t, cols, 2)

	assert.Equal(t, "Sahih Bukhari", cols[0].Name)
	assert.Equal(t, []string{"h1", "h2"}, cols[0].EntryIDs)
	assert.Equal(t, "Favorite Ayat", cols[1].Name)
	assert.Equal(t, []string{"q1"}, cols[1].EntryIDs)

	// Seeding persists, so a second read returns the same aggregate.
	again, err := s.ReadCollections()
	require.NoError(t, err)
	assert.Equal(t, cols, again)
}

func TestCollections_EmptyAfterWriteStaysEmpty(t *testing.T) {
	s := openTestStore(t)

	_, err := s.ReadCollections()
	require.NoError(t, err)

	require.NoError(t, s.WriteCollections([]models.Collection{}))

	cols, err := s.ReadCollections()
	require.NoError(t, err)
	assert.Empty(t, cols)
}

func TestCollections_RoundTrip(t *testing.T) {
	s := openTestStore(t)

	want := []models.Collection{
		{ID: 100, Name: "Ramadan", Description: "Fasting entries", EntryIDs: []string{"a", "b"}},
	}
	require.NoError(t, s.WriteCollections(want))

	got, err := s.ReadCollections()
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestNotifications_AbsentKeyIsEmptyFeed(t *testing.T) {
	s := openTestStore(t)

	ns, err := s.ReadNotifications()
	require.NoError(t, err)
	assert.Empty(t, ns)
}

func TestNotifications_RoundTrip(t *testing.T) {
	s := openTestStore(t)

	want := []models.Notification{
		{ID: "2", Type: models.NotificationSuccess, Title: "Content Added", Message: "ok", Timestamp: time.Now().UTC().Truncate(time.Second)},
		{ID: "1", Type: models.NotificationError, Title: "Error", Message: "boom", Read: true, Timestamp: time.Now().UTC().Truncate(time.Second)},
	}
	require.NoError(t, s.WriteNotifications(want))

	got, err := s.ReadNotifications()
	require.NoError(t, err)
	assert.Equal(t, want, got)
}
