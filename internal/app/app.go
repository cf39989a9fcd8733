package app

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/dori/lifeos/internal/config"
	"github.com/dori/lifeos/internal/db"
	"github.com/dori/lifeos/internal/gateway"
	"github.com/dori/lifeos/internal/notify"
	"github.com/gofrs/flock"
)

// App holds the application state and dependencies
type App struct {
	Config   *config.Config
	DB       *db.DB
	Gateway  gateway.Gateway
	Notifier *notify.Notifier
	Logger   *slog.Logger
	DataDir  string

	// Remote is set when the board talks to a lifeos server
	Remote   *gateway.HTTPClient
	lockFile *flock.Flock
}

// New creates a new application instance. The local database is always
// opened: it is the backend in standalone mode and holds the outbox of
// unsent moves in remote mode.
func New(cfg *config.Config, logger *slog.Logger) (*App, error) {
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	if logger == nil {
		logger = slog.Default()
	}

	// Ensure data directory exists
	if err := os.MkdirAll(cfg.DataDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}

	app := &App{
		Config:   cfg,
		DataDir:  cfg.DataDir,
		Notifier: notify.NewNotifier(),
		Logger:   logger,
	}

	// Acquire lock to ensure single instance
	if err := app.acquireLock(); err != nil {
		return nil, err
	}

	database, err := db.Open(cfg.DBPath, db.WithLogger(logger))
	if err != nil {
		app.releaseLock()
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	app.DB = database

	if cfg.RemoteURL != "" {
		client, err := gateway.NewHTTPClient(cfg.RemoteURL, cfg.Gateway.Timeout, logger)
		if err != nil {
			app.Close()
			return nil, err
		}
		app.Remote = client
		app.Gateway = client
		logger.Info("using remote backend", "url", cfg.RemoteURL)
	} else {
		app.Gateway = gateway.NewLocal(database)
		logger.Info("using local backend", "db", cfg.DBPath)
	}

	return app, nil
}

// Backend names the active backend for the header
func (a *App) Backend() string {
	if a.Remote != nil {
		return a.Remote.BaseURL().Host
	}
	return "local"
}

// NewDispatcher builds the move dispatcher over the active gateway,
// backed by the local outbox.
func (a *App) NewDispatcher(onResult func(gateway.Result)) *gateway.Dispatcher {
	g := a.Config.Gateway
	return gateway.NewDispatcher(a.Gateway, gateway.DispatcherConfig{
		Workers:        g.Workers,
		MaxAttempts:    g.MaxAttempts,
		InitialBackoff: g.InitialBackoff,
		MaxBackoff:     g.MaxBackoff,
		Outbox:         a.DB,
		OnResult:       onResult,
		Logger:         a.Logger,
	})
}

// NewWatcher returns a change watcher in remote mode, nil otherwise
func (a *App) NewWatcher() *gateway.Watcher {
	if a.Remote == nil {
		return nil
	}
	return gateway.NewWatcher(a.Remote.BaseURL(), a.Logger)
}

// acquireLock acquires an exclusive file lock to prevent multiple instances
func (a *App) acquireLock() error {
	lockPath := filepath.Join(a.DataDir, "lifeos.lock")
	a.lockFile = flock.New(lockPath)

	locked, err := a.lockFile.TryLock()
	if err != nil {
		return fmt.Errorf("failed to acquire lock: %w", err)
	}

	if !locked {
		return fmt.Errorf("another instance of lifeos is already running")
	}

	return nil
}

// releaseLock releases the file lock
func (a *App) releaseLock() {
	if a.lockFile != nil {
		a.lockFile.Unlock()
	}
}

// Close cleans up application resources
func (a *App) Close() error {
	var errs []error

	if a.DB != nil {
		if err := a.DB.Close(); err != nil {
			errs = append(errs, fmt.Errorf("failed to close database: %w", err))
		}
	}

	a.releaseLock()

	if len(errs) > 0 {
		return errs[0]
	}
	return nil
}
