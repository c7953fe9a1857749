package gateway

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/minbarcms/minbar/internal/common"
	"github.com/minbarcms/minbar/internal/models"
)

// Fake is an in-memory Gateway for tests and offline demos. Ids are
// uuid-assigned the way the backend would assign them, listing follows
// the read-view contract (newest first, creator display name joined in),
// and every operation can be forced to fail through the Fail* fields.
type Fake struct {
	mu sync.Mutex

	rows    map[string]models.Record
	created map[string]time.Time
	// Names maps user id to display name, standing in for the joined
	// read view's creator_name column.
	Names map[string]string

	session   *models.Session
	listeners []func(*models.Session)

	// LastPatch records the most recent UpdateEntry payload, so tests
	// can assert exactly what would have gone over the wire.
	LastPatch models.Patch

	FailList   error
	FailInsert error
	FailUpdate error
	FailDelete error

	clock time.Time
}

var _ Gateway = (*Fake)(nil)

// NewFake returns an empty in-memory gateway.
func NewFake() *Fake {
	return &Fake{
		rows:    map[string]models.Record{},
		created: map[string]time.Time{},
		Names:   map[string]string{},
		clock:   time.Now().UTC(),
	}
}

// tick returns strictly increasing timestamps so insertion order is
// always recoverable from created_at.
func (f *Fake) tick() time.Time {
	f.clock = f.clock.Add(time.Millisecond)
	return f.clock
}

// SetSession installs a session directly and notifies listeners, the
// way a sign-in would.
func (f *Fake) SetSession(s *models.Session) {
	f.mu.Lock()
	f.session = s
	fns := append([]func(*models.Session){}, f.listeners...)
	f.mu.Unlock()
	for _, fn := range fns {
		fn(s)
	}
}

func (f *Fake) ListEntries(ctx context.Context) ([]models.Entry, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.FailList != nil {
		return nil, f.FailList
	}

	recs := make([]models.Record, 0, len(f.rows))
	for _, r := range f.rows {
		r.CreatorName = f.Names[r.CreatedBy]
		recs = append(recs, r)
	}
	sort.Slice(recs, func(i, j int) bool {
		return f.created[recs[i].ID].After(f.created[recs[j].ID])
	})

	entries := make([]models.Entry, 0, len(recs))
	for _, r := range recs {
		entries = append(entries, r.Entry())
	}
	return entries, nil
}

func (f *Fake) InsertEntry(ctx context.Context, rec models.Record) (models.Entry, error) {
	created, err := f.InsertEntries(ctx, []models.Record{rec})
	if err != nil {
		return models.Entry{}, err
	}
	return created[0], nil
}

func (f *Fake) InsertEntries(ctx context.Context, recs []models.Record) ([]models.Entry, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.FailInsert != nil {
		return nil, f.FailInsert
	}

	out := make([]models.Entry, 0, len(recs))
	for _, rec := range recs {
		rec.ID = uuid.NewString()
		now := f.tick()
		rec.CreatedAt = now.Format(time.RFC3339Nano)
		rec.UpdatedAt = rec.CreatedAt
		f.rows[rec.ID] = rec
		f.created[rec.ID] = now
		out = append(out, rec.Entry())
	}
	return out, nil
}

func (f *Fake) UpdateEntry(ctx context.Context, id string, patch models.Patch) (models.Entry, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.FailUpdate != nil {
		return models.Entry{}, f.FailUpdate
	}
	f.LastPatch = patch

	rec, ok := f.rows[id]
	if !ok {
		return models.Entry{}, common.ErrNotFound
	}
	applyPatch(&rec, patch)
	f.rows[id] = rec
	return rec.Entry(), nil
}

func applyPatch(rec *models.Record, patch models.Patch) {
	get := func(k string) (string, bool) {
		v, ok := patch[k]
		if !ok {
			return "", false
		}
		s, ok := v.(string)
		return s, ok
	}
	if v, ok := get("arabic_text"); ok {
		rec.ArabicText = v
	}
	if v, ok := get("urdu_translation"); ok {
		rec.UrduTranslation = v
	}
	if v, ok := get("reference_full"); ok {
		rec.ReferenceFull = v
	}
	if v, ok := get("in_book_reference"); ok {
		rec.InBookReference = v
	}
	if v, ok := get("hadith_number"); ok {
		rec.HadithNumber = v
	}
	if v, ok := get("quran_reference"); ok {
		rec.QuranReference = v
	}
	if v, ok := get("surah_name"); ok {
		rec.SurahName = v
	}
	if v, ok := get("ayat_number"); ok {
		rec.AyatNumber = v
	}
	if v, ok := get("source_link"); ok {
		rec.SourceLink = v
	}
	if v, ok := get("note"); ok {
		rec.Note = v
	}
	if v, ok := get("updated_at"); ok {
		rec.UpdatedAt = v
	}
}

func (f *Fake) DeleteEntry(ctx context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.FailDelete != nil {
		return f.FailDelete
	}
	if _, ok := f.rows[id]; !ok {
		return common.ErrNotFound
	}
	delete(f.rows, id)
	delete(f.created, id)
	return nil
}

func (f *Fake) Session(ctx context.Context) (*models.Session, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.session, nil
}

func (f *Fake) SignIn(ctx context.Context, email, password string) (*models.Session, error) {
	s := &models.Session{
		AccessToken:  uuid.NewString(),
		RefreshToken: uuid.NewString(),
		ExpiresAt:    time.Now().Add(time.Hour),
		User:         models.User{ID: uuid.NewString(), Email: email},
	}
	f.SetSession(s)
	return s, nil
}

func (f *Fake) SignUp(ctx context.Context, email, password, displayName string) (*models.Session, error) {
	s, err := f.SignIn(ctx, email, password)
	if err != nil {
		return nil, err
	}
	s.User.DisplayName = displayName
	f.mu.Lock()
	f.Names[s.User.ID] = displayName
	f.mu.Unlock()
	return s, nil
}

func (f *Fake) SignOut(ctx context.Context) error {
	f.SetSession(nil)
	return nil
}

func (f *Fake) RefreshSession(ctx context.Context) (*models.Session, error) {
	f.mu.Lock()
	s := f.session
	f.mu.Unlock()
	if s == nil {
		return nil, common.ErrNotAuthenticated
	}
	refreshed := *s
	refreshed.AccessToken = uuid.NewString()
	refreshed.ExpiresAt = time.Now().Add(time.Hour)
	f.SetSession(&refreshed)
	return &refreshed, nil
}

func (f *Fake) UpdateUser(ctx context.Context, attrs UserAttributes) (*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.session == nil {
		return nil, common.ErrNotAuthenticated
	}
	if attrs.DisplayName != "" {
		f.session.User.DisplayName = attrs.DisplayName
		f.Names[f.session.User.ID] = attrs.DisplayName
	}
	user := f.session.User
	return &user, nil
}

func (f *Fake) Healthy(ctx context.Context) error { return nil }

func (f *Fake) OnSessionChange(fn func(*models.Session)) func() {
	f.mu.Lock()
	f.listeners = append(f.listeners, fn)
	idx := len(f.listeners) - 1
	f.mu.Unlock()
	return func() {
		f.mu.Lock()
		f.listeners[idx] = func(*models.Session) {}
		f.mu.Unlock()
	}
}
