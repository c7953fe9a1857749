package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/minbarcms/minbar/internal/common"
	"github.com/minbarcms/minbar/internal/logging"
	"github.com/minbarcms/minbar/internal/models"
)

const defaultTimeout = 30 * time.Second

// Config holds the connection settings for the hosted backend.
type Config struct {
	// BaseURL is the project root, e.g. https://xyz.example.co.
	BaseURL string
	// APIKey is the project API key sent on every request.
	APIKey string
	// Timeout bounds each request. Zero means defaultTimeout. There is
	// no per-request retry; a stalled request stalls its caller until
	// the timeout fires.
	Timeout time.Duration
	// SessionFile, when set, persists the session across runs so it can
	// be restored on startup. Empty disables persistence.
	SessionFile string
}

// Client is the HTTP implementation of Gateway. Rows are read and
// written PostgREST-style against the entries table and its joined read
// view; auth goes through the token/signup/logout/user endpoints.
type Client struct {
	http    *http.Client
	baseURL string
	apiKey  string
	file    string
	log     logging.Logger

	mu        sync.Mutex
	session   *models.Session
	listeners map[int]func(*models.Session)
	nextSub   int
}

var _ Gateway = (*Client)(nil)

// NewClient builds a Client from the given config.
func NewClient(cfg Config, log logging.Logger) (*Client, error) {
	base := strings.TrimRight(cfg.BaseURL, "/")
	if base == "" {
		return nil, errors.New("gateway: base URL is required")
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &Client{
		http:      &http.Client{Timeout: timeout},
		baseURL:   base,
		apiKey:    cfg.APIKey,
		file:      cfg.SessionFile,
		log:       log,
		listeners: map[int]func(*models.Session){},
	}, nil
}

// authPayload is the token/signup endpoint response shape.
type authPayload struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	ExpiresIn    int64  `json:"expires_in"`
	User         struct {
		ID           string         `json:"id"`
		Email        string         `json:"email"`
		UserMetadata map[string]any `json:"user_metadata"`
	} `json:"user"`
}

// remoteError is the backend's JSON error body. Both the rows layer and
// the auth layer use a message field; auth sometimes uses msg.
type remoteError struct {
	Message string `json:"message"`
	Msg     string `json:"msg"`
}

func (e remoteError) text() string {
	if e.Message != "" {
		return e.Message
	}
	return e.Msg
}

// do executes one JSON request and decodes the response into out (which
// may be nil). Failures are mapped onto the shared sentinel errors so
// call sites can distinguish auth, not-found and availability problems
// with errors.Is.
func (c *Client) do(ctx context.Context, method, path string, query url.Values, headers map[string]string, body, out any) error {
	u := c.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, u, reader)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set(common.APIKeyHeaderName, c.apiKey)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", common.ErrRemoteUnavailable, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}

	switch {
	case resp.StatusCode >= 200 && resp.StatusCode < 300:
		if out == nil || len(raw) == 0 {
			return nil
		}
		if err := json.Unmarshal(raw, out); err != nil {
			return fmt.Errorf("decode response: %w", err)
		}
		return nil
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return fmt.Errorf("%w: %s", common.ErrNotAuthenticated, errText(raw, resp.Status))
	case resp.StatusCode == http.StatusNotFound:
		return common.ErrNotFound
	case resp.StatusCode >= 500:
		return fmt.Errorf("%w: %s", common.ErrRemoteUnavailable, errText(raw, resp.Status))
	default:
		return fmt.Errorf("%w: %s", common.ErrRemoteRejected, errText(raw, resp.Status))
	}
}

func errText(raw []byte, fallback string) string {
	var re remoteError
	if err := json.Unmarshal(raw, &re); err == nil && re.text() != "" {
		return re.text()
	}
	return fallback
}

// rows issues an authenticated request against the rows layer. On an
// expired access token it refreshes the session once and retries, the
// way the original client did transparently.
func (c *Client) rows(ctx context.Context, method, table string, query url.Values, headers map[string]string, body, out any) error {
	err := c.do(ctx, method, "/rest/v1/"+table, query, c.withBearer(headers), body, out)
	if err == nil || !errors.Is(err, common.ErrNotAuthenticated) {
		return err
	}

	c.mu.Lock()
	hasRefresh := c.session != nil && c.session.RefreshToken != ""
	c.mu.Unlock()
	if !hasRefresh {
		return err
	}
	if _, rerr := c.RefreshSession(ctx); rerr != nil {
		return err
	}
	return c.do(ctx, method, "/rest/v1/"+table, query, c.withBearer(headers), body, out)
}

// withBearer adds the Authorization header: the session's access token
// when signed in, the project API key otherwise.
func (c *Client) withBearer(headers map[string]string) map[string]string {
	out := map[string]string{}
	for k, v := range headers {
		out[k] = v
	}
	c.mu.Lock()
	token := c.apiKey
	if c.session != nil && c.session.AccessToken != "" {
		token = c.session.AccessToken
	}
	c.mu.Unlock()
	out["Authorization"] = "Bearer " + token
	return out
}

// ListEntries fetches the joined read view, newest first.
func (c *Client) ListEntries(ctx context.Context) ([]models.Entry, error) {
	q := url.Values{}
	q.Set("select", "*")
	q.Set("order", "created_at.desc")

	var recs []models.Record
	if err := c.rows(ctx, http.MethodGet, common.EntriesReadView, q, nil, nil, &recs); err != nil {
		return nil, fmt.Errorf("list entries: %w", err)
	}

	entries := make([]models.Entry, 0, len(recs))
	for _, r := range recs {
		entries = append(entries, r.Entry())
	}
	return entries, nil
}

// InsertEntry inserts one row and returns it as created.
func (c *Client) InsertEntry(ctx context.Context, rec models.Record) (models.Entry, error) {
	created, err := c.InsertEntries(ctx, []models.Record{rec})
	if err != nil {
		return models.Entry{}, err
	}
	if len(created) == 0 {
		return models.Entry{}, fmt.Errorf("insert entry: %w: backend returned no row", common.ErrRemoteRejected)
	}
	return created[0], nil
}

// InsertEntries inserts the batch in one request; all-or-nothing.
func (c *Client) InsertEntries(ctx context.Context, recs []models.Record) ([]models.Entry, error) {
	headers := map[string]string{"Prefer": "return=representation"}

	var out []models.Record
	if err := c.rows(ctx, http.MethodPost, common.EntriesTable, nil, headers, recs, &out); err != nil {
		return nil, fmt.Errorf("insert entries: %w", err)
	}

	entries := make([]models.Entry, 0, len(out))
	for _, r := range out {
		entries = append(entries, r.Entry())
	}
	return entries, nil
}

// UpdateEntry applies a partial update keyed by id.
func (c *Client) UpdateEntry(ctx context.Context, id string, patch models.Patch) (models.Entry, error) {
	q := url.Values{}
	q.Set("id", "eq."+id)
	headers := map[string]string{"Prefer": "return=representation"}

	var out []models.Record
	if err := c.rows(ctx, http.MethodPatch, common.EntriesTable, q, headers, patch, &out); err != nil {
		return models.Entry{}, fmt.Errorf("update entry: %w", err)
	}
	if len(out) == 0 {
		return models.Entry{}, fmt.Errorf("update entry: %w", common.ErrNotFound)
	}
	return out[0].Entry(), nil
}

// DeleteEntry hard-deletes the row with the given id.
func (c *Client) DeleteEntry(ctx context.Context, id string) error {
	q := url.Values{}
	q.Set("id", "eq."+id)
	if err := c.rows(ctx, http.MethodDelete, common.EntriesTable, q, nil, nil, nil); err != nil {
		return fmt.Errorf("delete entry: %w", err)
	}
	return nil
}

// sessionFromPayload assembles a session from a token response, filling
// identity from the user object with the decoded JWT as fallback.
func sessionFromPayload(p authPayload) *models.Session {
	s := &models.Session{
		AccessToken:  p.AccessToken,
		RefreshToken: p.RefreshToken,
		User: models.User{
			ID:    p.User.ID,
			Email: p.User.Email,
		},
	}
	if name, ok := p.User.UserMetadata["display_name"].(string); ok {
		s.User.DisplayName = name
	}
	if p.AccessToken != "" {
		if u, exp, err := decodeAccessToken(p.AccessToken); err == nil {
			if s.User.ID == "" {
				s.User = u
			}
			s.ExpiresAt = exp
		}
	}
	if s.ExpiresAt.IsZero() && p.ExpiresIn > 0 {
		s.ExpiresAt = time.Now().Add(time.Duration(p.ExpiresIn) * time.Second)
	}
	return s
}

// adopt installs the session, persists it, and notifies listeners.
func (c *Client) adopt(s *models.Session) {
	c.mu.Lock()
	c.session = s
	fns := make([]func(*models.Session), 0, len(c.listeners))
	for _, fn := range c.listeners {
		fns = append(fns, fn)
	}
	c.mu.Unlock()

	c.persistSession(s)
	for _, fn := range fns {
		fn(s)
	}
}

func (c *Client) persistSession(s *models.Session) {
	if c.file == "" {
		return
	}
	if s == nil {
		_ = os.Remove(c.file)
		return
	}
	data, err := json.Marshal(s)
	if err != nil {
		return
	}
	if err := os.WriteFile(c.file, data, 0o600); err != nil {
		c.log.Warn(context.Background(), "persist session failed", "err", err)
	}
}

func (c *Client) loadPersistedSession() *models.Session {
	if c.file == "" {
		return nil
	}
	data, err := os.ReadFile(c.file)
	if err != nil {
		return nil
	}
	var s models.Session
	if err := json.Unmarshal(data, &s); err != nil {
		return nil
	}
	return &s
}

// Session restores any persisted session. A stale access token is
// refreshed once; any failure along the way reads as "no session".
func (c *Client) Session(ctx context.Context) (*models.Session, error) {
	c.mu.Lock()
	current := c.session
	c.mu.Unlock()
	if current != nil {
		return current, nil
	}

	stored := c.loadPersistedSession()
	if stored == nil || stored.RefreshToken == "" {
		return nil, nil
	}

	if !stored.Expired(time.Now()) {
		c.adopt(stored)
		return stored, nil
	}

	s, err := c.refreshWith(ctx, stored.RefreshToken)
	if err != nil {
		c.log.Warn(ctx, "session restore failed", "err", err)
		return nil, nil
	}
	return s, nil
}

// SignIn authenticates with the password grant and installs the session.
func (c *Client) SignIn(ctx context.Context, email, password string) (*models.Session, error) {
	q := url.Values{}
	q.Set("grant_type", "password")

	var p authPayload
	body := map[string]string{"email": email, "password": password}
	if err := c.do(ctx, http.MethodPost, "/auth/v1/token", q, nil, body, &p); err != nil {
		return nil, fmt.Errorf("sign in: %w", err)
	}

	s := sessionFromPayload(p)
	c.adopt(s)
	return s, nil
}

// SignUp registers a new account. Backends requiring email confirmation
// return a user without tokens; in that case no session is installed.
func (c *Client) SignUp(ctx context.Context, email, password, displayName string) (*models.Session, error) {
	var p authPayload
	body := map[string]any{
		"email":    email,
		"password": password,
		"data":     map[string]string{"display_name": displayName},
	}
	if err := c.do(ctx, http.MethodPost, "/auth/v1/signup", nil, nil, body, &p); err != nil {
		return nil, fmt.Errorf("sign up: %w", err)
	}

	s := sessionFromPayload(p)
	if s.AccessToken != "" {
		c.adopt(s)
	}
	return s, nil
}

// SignOut revokes the session remotely and always clears local state,
// even when the revoke call fails.
func (c *Client) SignOut(ctx context.Context) error {
	err := c.do(ctx, http.MethodPost, "/auth/v1/logout", nil, c.withBearer(nil), nil, nil)
	c.adopt(nil)
	if err != nil {
		return fmt.Errorf("sign out: %w", err)
	}
	return nil
}

// RefreshSession exchanges the current refresh token for new tokens.
func (c *Client) RefreshSession(ctx context.Context) (*models.Session, error) {
	c.mu.Lock()
	var token string
	if c.session != nil {
		token = c.session.RefreshToken
	}
	c.mu.Unlock()
	if token == "" {
		return nil, common.ErrNotAuthenticated
	}
	return c.refreshWith(ctx, token)
}

func (c *Client) refreshWith(ctx context.Context, refreshToken string) (*models.Session, error) {
	q := url.Values{}
	q.Set("grant_type", "refresh_token")

	var p authPayload
	body := map[string]string{"refresh_token": refreshToken}
	if err := c.do(ctx, http.MethodPost, "/auth/v1/token", q, nil, body, &p); err != nil {
		return nil, fmt.Errorf("refresh session: %w", err)
	}

	s := sessionFromPayload(p)
	c.adopt(s)
	return s, nil
}

// UpdateUser changes profile metadata and/or the password.
func (c *Client) UpdateUser(ctx context.Context, attrs UserAttributes) (*models.User, error) {
	body := map[string]any{}
	if attrs.DisplayName != "" {
		body["data"] = map[string]string{"display_name": attrs.DisplayName}
	}
	if attrs.Password != "" {
		body["password"] = attrs.Password
	}

	var p authPayload
	if err := c.do(ctx, http.MethodPut, "/auth/v1/user", nil, c.withBearer(nil), body, &p.User); err != nil {
		return nil, fmt.Errorf("update user: %w", err)
	}

	user := models.User{ID: p.User.ID, Email: p.User.Email}
	if name, ok := p.User.UserMetadata["display_name"].(string); ok {
		user.DisplayName = name
	}

	c.mu.Lock()
	if c.session != nil {
		c.session.User = user
	}
	updated := c.session
	c.mu.Unlock()
	if updated != nil {
		c.adopt(updated)
	}
	return &user, nil
}

// Healthy probes the auth health endpoint.
func (c *Client) Healthy(ctx context.Context) error {
	return c.do(ctx, http.MethodGet, "/auth/v1/health", nil, nil, nil, nil)
}

// OnSessionChange registers a session listener.
func (c *Client) OnSessionChange(fn func(*models.Session)) func() {
	c.mu.Lock()
	id := c.nextSub
	c.nextSub++
	c.listeners[id] = fn
	c.mu.Unlock()

	return func() {
		c.mu.Lock()
		delete(c.listeners, id)
		c.mu.Unlock()
	}
}
