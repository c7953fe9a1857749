// Package gateway is the thin client contract to the hosted backend:
// row storage over one logical entries table (plus its joined read
// view) and the auth session endpoints. The backend itself is opaque;
// nothing here retries, caches, or reorders — callers own those
// policies.
package gateway

import (
	"context"

	"github.com/minbarcms/minbar/internal/models"
)

// UserAttributes carries the mutable profile fields for UpdateUser.
// Zero values are left untouched on the backend.
type UserAttributes struct {
	DisplayName string
	Password    string
}

// Gateway is the remote content and auth boundary consumed by the
// content cache and the session manager.
type Gateway interface {
	// ListEntries fetches the full joined read view, ordered by
	// creation time descending (newest first).
	ListEntries(ctx context.Context) ([]models.Entry, error)

	// InsertEntry inserts one row into the base table and returns the
	// created row as the backend reports it (no creator display name;
	// that exists only on the read view).
	InsertEntry(ctx context.Context, rec models.Record) (models.Entry, error)

	// InsertEntries inserts a batch in one request. The batch is
	// all-or-nothing: a partial backend rejection fails the whole call.
	InsertEntries(ctx context.Context, recs []models.Record) ([]models.Entry, error)

	// UpdateEntry applies a partial update keyed by id.
	UpdateEntry(ctx context.Context, id string, patch models.Patch) (models.Entry, error)

	// DeleteEntry hard-deletes the row with the given id.
	DeleteEntry(ctx context.Context, id string) error

	// Session restores any existing session (from the persisted refresh
	// token). A missing or unrecoverable session yields (nil, nil):
	// restore failure means "no session", never an error to retry.
	Session(ctx context.Context) (*models.Session, error)

	SignIn(ctx context.Context, email, password string) (*models.Session, error)
	SignUp(ctx context.Context, email, password, displayName string) (*models.Session, error)
	SignOut(ctx context.Context) error

	// RefreshSession exchanges the current refresh token for new tokens.
	RefreshSession(ctx context.Context) (*models.Session, error)

	// UpdateUser changes profile metadata and/or password for the
	// current user.
	UpdateUser(ctx context.Context, attrs UserAttributes) (*models.User, error)

	// OnSessionChange registers a listener invoked after every session
	// mutation: sign-in, sign-out (nil session) and token refresh. The
	// returned func unsubscribes.
	OnSessionChange(fn func(*models.Session)) (unsubscribe func())

	// Healthy probes backend reachability. Used only by the CLI's
	// online-status watcher.
	Healthy(ctx context.Context) error
}
