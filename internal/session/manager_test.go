package session

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/minbarcms/minbar/internal/gateway"
	"github.com/minbarcms/minbar/internal/logging"
	"github.com/minbarcms/minbar/internal/models"
)

func testLogger() logging.Logger {
	return logging.NewTextLogger(io.Discard, slog.LevelError)
}

func TestStart_RestoresExistingSession(t *testing.T) {
	gw := gateway.NewFake()
	gw.SetSession(&models.Session{
		AccessToken:  "t1",
		RefreshToken: "r1",
		ExpiresAt:    time.Now().Add(time.Hour),
		User:         models.User{ID: "u1", Email: "a@b.c"},
	})

	m := NewManager(gw, testLogger())
	assert.True(t, m.Restoring())
	assert.Nil(t, m.CurrentUser())

	m.Start(context.Background())
	defer m.Close()

	assert.False(t, m.Restoring())
	user := m.CurrentUser()
	require.NotNil(t, user)
	assert.Equal(t, "u1", user.ID)
}

func TestStart_NoSessionMeansSignedOut(t *testing.T) {
	gw := gateway.NewFake()
	m := NewManager(gw, testLogger())

	m.Start(context.Background())
	defer m.Close()

	assert.False(t, m.Restoring())
	assert.Nil(t, m.CurrentUser())
}

func TestSignInAndOut_NotifySubscribers(t *testing.T) {
	ctx := context.Background()
	gw := gateway.NewFake()
	m := NewManager(gw, testLogger())
	m.Start(ctx)
	defer m.Close()

	var fired int
	unsubscribe := m.Subscribe(func() { fired++ })

	require.NoError(t, m.SignIn(ctx, "alice@example.org", "pw"))
	require.NotNil(t, m.CurrentUser())
	assert.Equal(t, 1, fired)

	require.NoError(t, m.SignOut(ctx))
	assert.Nil(t, m.CurrentUser())
	assert.Equal(t, 2, fired)

	unsubscribe()
	require.NoError(t, m.SignIn(ctx, "alice@example.org", "pw"))
	assert.Equal(t, 2, fired)
}

func TestSignUp(t *testing.T) {
	ctx := context.Background()
	gw := gateway.NewFake()
	m := NewManager(gw, testLogger())
	m.Start(ctx)
	defer m.Close()

	require.NoError(t, m.SignUp(ctx, "bob@example.org", "pw", "Bob"))
	user := m.CurrentUser()
	require.NotNil(t, user)
	assert.Equal(t, "bob@example.org", user.Email)
}

func TestUpdateProfile(t *testing.T) {
	ctx := context.Background()
	gw := gateway.NewFake()
	m := NewManager(gw, testLogger())
	m.Start(ctx)
	defer m.Close()

	require.NoError(t, m.SignUp(ctx, "bob@example.org", "pw", "Bob"))

	var fired int
	m.Subscribe(func() { fired++ })

	require.NoError(t, m.UpdateProfile(ctx, "Robert"))
	user := m.CurrentUser()
	require.NotNil(t, user)
	assert.Equal(t, "Robert", user.DisplayName)
	assert.Equal(t, 1, fired)
}

func TestUpdatePassword_SignsOut(t *testing.T) {
	ctx := context.Background()
	gw := gateway.NewFake()
	m := NewManager(gw, testLogger())
	m.Start(ctx)
	defer m.Close()

	require.NoError(t, m.SignIn(ctx, "alice@example.org", "old"))
	require.NotNil(t, m.CurrentUser())

	require.NoError(t, m.UpdatePassword(ctx, "new"))
	assert.Nil(t, m.CurrentUser())
}

func TestCurrentUser_ReturnsCopy(t *testing.T) {
	ctx := context.Background()
	gw := gateway.NewFake()
	m := NewManager(gw, testLogger())
	m.Start(ctx)
	defer m.Close()

	require.NoError(t, m.SignIn(ctx, "alice@example.org", "pw"))

	u := m.CurrentUser()
	u.Email = "mutated@example.org"
	assert.Equal(t, "alice@example.org", m.CurrentUser().Email)
}
