package cli

import (
	"bufio"
	"context"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/wh131462/stillalive/internal/client/config"
	"github.com/wh131462/stillalive/internal/client/storage"
	"github.com/wh131462/stillalive/internal/client/syncer"
	"github.com/wh131462/stillalive/internal/client/transport"
	"github.com/wh131462/stillalive/internal/logging"
)

// App is the interactive client: one local store, one sync manager, one REPL.
type App struct {
	config  *config.Config
	store   storage.Store
	manager *syncer.Manager
	logger  logging.Logger
	reader  *bufio.Reader
	out     io.Writer
	now     func() time.Time
}

// NewApp opens the device database and wires the sync manager against the
// configured authority.
func NewApp(c *config.Config) (*App, error) {
	ctx := context.Background()

	logger := logging.NewSlogLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelWarn,
	})))

	db, err := storage.OpenDatabase(ctx, c.DatabasePath)
	if err != nil {
		logger.Error(ctx, "error initializing database", "error", err)
		return nil, err
	}

	return &App{
		config: c,
		store:  storage.NewSQLiteStore(db),
		logger: logger,
		reader: bufio.NewReader(os.Stdin),
		out:    os.Stdout,
		now:    time.Now,
	}, nil
}

// Run prompts for a token when none is configured, starts background
// auto-sync, and enters the REPL; it returns when the user exits.
func (a *App) Run(ctx context.Context) {
	defer a.store.Close()

	if a.config.AuthToken == "" {
		tok, err := GetToken(a.out)
		if err != nil {
			a.logger.Warn(ctx, "could not read token, staying unauthenticated", "error", err)
		}
		a.config.AuthToken = tok
	}

	api := transport.NewHTTPClient(a.config.ServerEndpointAddr, a.config.AuthToken,
		a.config.RequestTimeout, a.config.MaxRetries, a.logger)
	a.manager = syncer.NewManager(a.store, api, a.logger)

	a.manager.StartAutoSync(a.config.SyncInterval, a.config.OnlineCheckInterval)
	defer a.manager.StopAutoSync()

	a.Root(ctx)
}
