package cache

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/minbarcms/minbar/internal/common"
	"github.com/minbarcms/minbar/internal/gateway"
	"github.com/minbarcms/minbar/internal/logging"
	"github.com/minbarcms/minbar/internal/models"
)

// stubSessions is a hand-driven session source.
type stubSessions struct {
	user      *models.User
	restoring bool
	listeners []func()
}

func (s *stubSessions) CurrentUser() *models.User { return s.user }
func (s *stubSessions) Restoring() bool           { return s.restoring }
func (s *stubSessions) Subscribe(fn func()) func() {
	s.listeners = append(s.listeners, fn)
	return func() {}
}

func (s *stubSessions) fire() {
	for _, fn := range s.listeners {
		fn()
	}
}

// sinkRecorder captures surfaced error messages.
type sinkRecorder struct {
	titles   []string
	messages []string
}

func (r *sinkRecorder) sink(title, message string) {
	r.titles = append(r.titles, title)
	r.messages = append(r.messages, message)
}

// feedRecorder captures feed records.
type feedRecorder struct {
	added []models.Notification
}

func (r *feedRecorder) Add(n models.Notification) (models.Notification, error) {
	r.added = append(r.added, n)
	return n, nil
}

func testLogger() logging.Logger {
	return logging.NewTextLogger(io.Discard, slog.LevelError)
}

func signedIn(t *testing.T, gw *gateway.Fake) *stubSessions {
	t.Helper()
	s, err := gw.SignUp(context.Background(), "alice@example.org", "pw", "Alice")
	require.NoError(t, err)
	return &stubSessions{user: &s.User}
}

func hadith(arabic string) models.Entry {
	return models.Entry{
		Kind:            models.KindHadith,
		ArabicText:      arabic,
		UrduTranslation: "urdu",
		Hadith:          &models.HadithRef{FullReference: "Sahih Bukhari 1:1"},
	}
}

func TestCreate_RefetchesAndStampsCreator(t *testing.T) {
	ctx := context.Background()
	gw := gateway.NewFake()
	sessions := signedIn(t, gw)
	feed := &feedRecorder{}

	s := New(gw, sessions, feed, nil, testLogger())

	e := hadith("first")
	// Client-supplied server fields must be discarded before insert.
	e.ID = "client-id"
	e.CreatorName = "Spoofed"

	res := s.Create(ctx, e)
	require.True(t, res.OK)
	require.NotNil(t, res.Entry)
	assert.NotEqual(t, "client-id", res.Entry.ID)

	// The list was refetched from the read view: the creator display
	// name is joined in, something a local patch could not produce.
	entries := s.Entries()
	require.Len(t, entries, 1)
	assert.Equal(t, sessions.user.ID, entries[0].CreatedBy)
	assert.Equal(t, "Alice", entries[0].CreatorName)

	require.Len(t, feed.added, 1)
	assert.Equal(t, models.NotificationSuccess, feed.added[0].Type)
	assert.Equal(t, "Content Added", feed.added[0].Title)
	assert.Equal(t, "New hadith entry has been successfully added.", feed.added[0].Message)
}

func TestCreate_RequiresSession(t *testing.T) {
	gw := gateway.NewFake()
	s := New(gw, &stubSessions{}, nil, nil, testLogger())

	res := s.Create(context.Background(), hadith("x"))
	assert.False(t, res.OK)
	assert.Equal(t, common.ErrNotAuthenticated.Error(), res.Message)
}

func TestCreate_RemoteFailureSurfacesMessage(t *testing.T) {
	gw := gateway.NewFake()
	sessions := signedIn(t, gw)
	rec := &sinkRecorder{}

	s := New(gw, sessions, nil, rec.sink, testLogger())
	gw.FailInsert = errors.New("boom")

	res := s.Create(context.Background(), hadith("x"))
	assert.False(t, res.OK)
	require.Len(t, rec.messages, 1)
	assert.Equal(t, "Failed to add content. Please try again.", rec.messages[0])
}

func TestBulkCreate(t *testing.T) {
	ctx := context.Background()
	gw := gateway.NewFake()
	sessions := signedIn(t, gw)
	feed := &feedRecorder{}

	s := New(gw, sessions, feed, nil, testLogger())

	recs := []models.Record{
		{Type: "hadith", ArabicText: "a", UrduTranslation: "u", ReferenceFull: "B 1:1"},
		{Type: "ayat", ArabicText: "b", UrduTranslation: "v", QuranReference: "2:255"},
	}
	res := s.BulkCreate(ctx, recs)
	require.True(t, res.OK)
	assert.Equal(t, 2, res.Count)

	entries := s.Entries()
	require.Len(t, entries, 2)
	for _, e := range entries {
		assert.Equal(t, sessions.user.ID, e.CreatedBy)
	}

	require.Len(t, feed.added, 1)
	assert.Equal(t, "Import Successful", feed.added[0].Title)
	assert.Equal(t, "2 entries have been imported.", feed.added[0].Message)
}

func TestUpdate_StripsImmutableFieldsAndRefetches(t *testing.T) {
	ctx := context.Background()
	gw := gateway.NewFake()
	sessions := signedIn(t, gw)

	s := New(gw, sessions, nil, nil, testLogger())
	created := s.Create(ctx, hadith("original"))
	require.True(t, created.OK)
	id := created.Entry.ID

	res := s.Update(ctx, id, models.Patch{
		"arabic_text":  "changed",
		"id":           "forged",
		"type":         "ayat",
		"created_at":   "1999-01-01T00:00:00Z",
		"creator_name": "Mallory",
	})
	require.True(t, res.OK)

	// Exactly what went over the wire: mutables plus the fresh
	// updated_at stamp, immutables stripped.
	patch := gw.LastPatch
	assert.Equal(t, "changed", patch["arabic_text"])
	assert.Contains(t, patch, "updated_at")
	assert.NotContains(t, patch, "id")
	assert.NotContains(t, patch, "type")
	assert.NotContains(t, patch, "created_at")
	assert.NotContains(t, patch, "creator_name")

	entries := s.Entries()
	require.Len(t, entries, 1)
	assert.Equal(t, "changed", entries[0].ArabicText)
	assert.Equal(t, models.KindHadith, entries[0].Kind)
}

func TestDelete_PatchesLocallyWithoutRefetch(t *testing.T) {
	ctx := context.Background()
	gw := gateway.NewFake()
	sessions := signedIn(t, gw)

	s := New(gw, sessions, nil, nil, testLogger())
	a := s.Create(ctx, hadith("a"))
	b := s.Create(ctx, hadith("b"))
	require.True(t, a.OK)
	require.True(t, b.OK)
	require.Len(t, s.Entries(), 2)

	// If delete triggered a refetch this would clear the list; the
	// local splice must leave the other entry in place.
	gw.FailList = errors.New("list must not be called after delete")

	res := s.Delete(ctx, a.Entry.ID)
	require.True(t, res.OK)

	entries := s.Entries()
	require.Len(t, entries, 1)
	assert.Equal(t, b.Entry.ID, entries[0].ID)

	_, found := s.LookupByID(a.Entry.ID)
	assert.False(t, found)
}

func TestDelete_RemoteFailureKeepsList(t *testing.T) {
	ctx := context.Background()
	gw := gateway.NewFake()
	sessions := signedIn(t, gw)
	rec := &sinkRecorder{}

	s := New(gw, sessions, nil, rec.sink, testLogger())
	a := s.Create(ctx, hadith("a"))
	require.True(t, a.OK)

	gw.FailDelete = errors.New("boom")
	res := s.Delete(ctx, a.Entry.ID)
	assert.False(t, res.OK)
	assert.Len(t, s.Entries(), 1)
	require.Len(t, rec.messages, 1)
	assert.Equal(t, "Failed to delete entry.", rec.messages[0])
}

func TestRefresh_ErrorSuppressedOnlyOnFirstLoad(t *testing.T) {
	ctx := context.Background()
	gw := gateway.NewFake()
	sessions := signedIn(t, gw)
	rec := &sinkRecorder{}

	s := New(gw, sessions, nil, rec.sink, testLogger())
	gw.FailList = errors.New("network down")

	// First automatic load: failure stays quiet.
	s.Start(ctx)
	assert.Empty(t, rec.messages)
	assert.Empty(t, s.Entries())
	assert.False(t, s.Loading())

	// Any later failure surfaces the canonical message.
	s.Refresh(ctx, false)
	require.Len(t, rec.messages, 1)
	assert.Equal(t, "Could not fetch data. Please check your connection.", rec.messages[0])
	assert.Equal(t, "Error", rec.titles[0])
}

func TestRefresh_NoopWhileRestoring(t *testing.T) {
	gw := gateway.NewFake()
	sessions := &stubSessions{restoring: true}
	rec := &sinkRecorder{}

	s := New(gw, sessions, nil, rec.sink, testLogger())
	gw.FailList = errors.New("must not be called")

	s.Refresh(context.Background(), false)
	assert.Empty(t, rec.messages)
	assert.True(t, s.Loading())
}

func TestRefresh_ClearsWhenSignedOut(t *testing.T) {
	ctx := context.Background()
	gw := gateway.NewFake()
	sessions := signedIn(t, gw)

	s := New(gw, sessions, nil, nil, testLogger())
	created := s.Create(ctx, hadith("a"))
	require.True(t, created.OK)
	require.Len(t, s.Entries(), 1)

	sessions.user = nil
	s.Refresh(ctx, false)
	assert.Empty(t, s.Entries())
	assert.False(t, s.Loading())
}

func TestStart_RefreshesOnSessionChange(t *testing.T) {
	ctx := context.Background()
	gw := gateway.NewFake()
	sessions := &stubSessions{restoring: true}

	s := New(gw, sessions, nil, nil, testLogger())
	s.Start(ctx)
	defer s.Close()

	// Loading stays true until a session state arrives.
	assert.True(t, s.Loading())

	sess, err := gw.SignUp(ctx, "bob@example.org", "pw", "Bob")
	require.NoError(t, err)
	_, err = gw.InsertEntry(ctx, models.Record{Type: "hadith", ArabicText: "x", UrduTranslation: "y", CreatedBy: sess.User.ID})
	require.NoError(t, err)

	sessions.restoring = false
	sessions.user = &sess.User
	sessions.fire()

	entries := s.Entries()
	require.Len(t, entries, 1)
	assert.Equal(t, "Bob", entries[0].CreatorName)
	assert.False(t, s.Loading())
}

func TestEntries_NewestFirst(t *testing.T) {
	ctx := context.Background()
	gw := gateway.NewFake()
	sessions := signedIn(t, gw)

	s := New(gw, sessions, nil, nil, testLogger())
	first := s.Create(ctx, hadith("first"))
	second := s.Create(ctx, hadith("second"))
	require.True(t, first.OK)
	require.True(t, second.OK)

	entries := s.Entries()
	require.Len(t, entries, 2)
	assert.Equal(t, second.Entry.ID, entries[0].ID)
	assert.Equal(t, first.Entry.ID, entries[1].ID)
}
