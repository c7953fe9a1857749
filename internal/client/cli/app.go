package cli

import (
	"bufio"
	"context"
	"os"
	"path/filepath"
	"time"

	"github.com/minbarcms/minbar/internal/cache"
	"github.com/minbarcms/minbar/internal/client/config"
	"github.com/minbarcms/minbar/internal/collections"
	"github.com/minbarcms/minbar/internal/feed"
	"github.com/minbarcms/minbar/internal/gateway"
	"github.com/minbarcms/minbar/internal/importer"
	"github.com/minbarcms/minbar/internal/localstore"
	"github.com/minbarcms/minbar/internal/logging"
	"github.com/minbarcms/minbar/internal/session"
)

type Mode string

const (
	ModeOffline Mode = "offline"
	ModeOnline  Mode = "online"
)

type App struct {
	config      *config.Config
	gw          gateway.Gateway
	sessions    *session.Manager
	cache       *cache.Store
	feed        *feed.Feed
	collections *collections.Service
	importer    *importer.Pipeline
	store       *localstore.Store
	log         logging.Logger
	Mode        Mode
	reader      *bufio.Reader
}

func NewApp(c *config.Config, log logging.Logger) (*App, error) {

	if err := os.MkdirAll(c.DataDir, 0o700); err != nil {
		return nil, err
	}

	store, err := localstore.Open(filepath.Join(c.DataDir, "minbar.db"))
	if err != nil {
		log.Error(context.Background(), "error opening local database", "err", err)
		return nil, err
	}

	gw, err := gateway.NewClient(gateway.Config{
		BaseURL:     c.BackendURL,
		APIKey:      c.APIKey,
		Timeout:     c.RequestTimeout,
		SessionFile: filepath.Join(c.DataDir, "session.json"),
	}, log)
	if err != nil {
		return nil, err
	}

	fd, err := feed.New(store, log)
	if err != nil {
		return nil, err
	}

	sessions := session.NewManager(gw, log)

	sink := func(title, message string) {
		printlnFn(title + ": " + message)
	}
	st := cache.New(gw, sessions, fd, sink, log)

	return &App{
		config:      c,
		gw:          gw,
		sessions:    sessions,
		cache:       st,
		feed:        fd,
		collections: collections.NewService(store),
		importer:    importer.New(),
		store:       store,
		log:         log,
		reader:      bufio.NewReader(os.Stdin),
	}, nil
}

func (a *App) setMode(mode Mode) {
	if a.Mode != mode {
		a.Mode = mode
		printlnFn("Switched to " + string(mode) + " mode")
	}
}

func (a *App) Run(ctx context.Context) {
	a.sessions.Start(ctx)
	a.cache.Start(ctx)
	defer a.Close()
	a.Root(ctx)
}

// Close releases subscriptions and the local database. Safe to call once.
func (a *App) Close() {
	a.cache.Close()
	a.sessions.Close()
	if err := a.store.Close(); err != nil {
		a.log.Warn(context.Background(), "error closing local database", "err", err)
	}
}

func (a *App) isLoggedIn() bool {
	return a.sessions.CurrentUser() != nil
}

func (a *App) StartOnlineStatusWatcher(ctx context.Context, interval time.Duration) {

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			probeCtx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
			err := a.gw.Healthy(probeCtx)
			cancel()

			if err != nil {
				if a.Mode != ModeOffline {
					a.setMode(ModeOffline)
				}
			} else {
				if a.Mode != ModeOnline {
					a.setMode(ModeOnline)
				}
			}

		case <-ctx.Done():
			return
		}
	}
}
