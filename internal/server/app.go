// Package server initializes and runs the sync authority: it opens the
// database, applies migrations, and serves the HTTP API until shutdown.
package server

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"

	"github.com/wh131462/stillalive/internal/logging"
	"github.com/wh131462/stillalive/internal/server/config"
	"github.com/wh131462/stillalive/internal/server/httpapi"
	"github.com/wh131462/stillalive/internal/server/migrations"
	"github.com/wh131462/stillalive/internal/server/repositories/repomanager"
	"github.com/wh131462/stillalive/internal/server/services"
)

const shutdownTimeout = 10 * time.Second

type App struct {
	config *config.Config
	logger logging.Logger
	db     *sql.DB
	router http.Handler
}

func NewApp(c *config.Config) (*App, error) {
	logger := logging.NewSlogLogger(slog.New(slog.NewJSONHandler(os.Stdout, nil)))

	db, err := openDatabase(c.DatabaseDSN)
	if err != nil {
		return nil, fmt.Errorf("db init error: %w", err)
	}

	syncSvc := services.NewSyncService(db, repomanager.NewPostgres())
	photoSvc := services.NewPhotoService(c)
	handler := httpapi.NewHandler(syncSvc, photoSvc, logger)
	router := httpapi.NewRouter([]byte(c.SecretKey), handler)

	return &App{config: c, logger: logger, db: db, router: router}, nil
}

func openDatabase(dsn string) (*sql.DB, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, err
	}

	goose.SetBaseFS(migrations.Migrations)
	if err := goose.SetDialect("postgres"); err != nil {
		_ = db.Close()
		return nil, err
	}
	if err := goose.Up(db, "."); err != nil {
		_ = db.Close()
		return nil, err
	}

	return db, nil
}

func (app *App) initSignalHandler(cancelFunc context.CancelFunc) {
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	go func() {
		<-sigs
		cancelFunc()
	}()
}

func (app *App) serveHTTP(ctx context.Context, cancelFunc context.CancelFunc) {
	srv := &http.Server{
		Addr:    app.config.EndpointAddr,
		Handler: app.router,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			app.logger.Error(ctx, "shutdown error", "error", err.Error())
		}
	}()

	app.logger.Info(ctx, "listening", "addr", app.config.EndpointAddr)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		app.logger.Error(ctx, err.Error())
		cancelFunc()
	}
}

func (app *App) Run(ctx context.Context) {
	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()

	app.logger.Info(ctx, "Starting app...")

	app.initSignalHandler(cancelFunc)

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		app.serveHTTP(ctx, cancelFunc)
	}()

	wg.Wait()

	if err := app.db.Close(); err != nil {
		app.logger.Error(ctx, "db close error", "error", err.Error())
	}
}
