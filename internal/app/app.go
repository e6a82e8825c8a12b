// Package app wires the identity server together: config, logging, the
// database, mail and blob backends, the identity engine, and the HTTP
// surface. It owns startup, signal handling, and graceful shutdown.
package app

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/shopcore/identity/internal/accounts"
	"github.com/shopcore/identity/internal/auth"
	"github.com/shopcore/identity/internal/blob"
	"github.com/shopcore/identity/internal/config"
	"github.com/shopcore/identity/internal/httpapi"
	"github.com/shopcore/identity/internal/identity"
	"github.com/shopcore/identity/internal/logging"
	"github.com/shopcore/identity/internal/mailer"
	"github.com/shopcore/identity/internal/migrations"
)

type App struct {
	config *config.Config
	logger logging.Logger
	db     *sql.DB
	server *httpapi.Server
}

func NewApp(ctx context.Context, cfg *config.Config) (*App, error) {

	logger := logging.NewSlogLogger(slog.New(slog.NewJSONHandler(os.Stdout, nil)))

	db, err := sql.Open("pgx", cfg.DatabaseDSN)
	if err != nil {
		return nil, fmt.Errorf("db open error: %w", err)
	}

	if err := migrations.Up(ctx, db); err != nil {
		return nil, fmt.Errorf("db init error: %w", err)
	}

	store := accounts.NewPostgresStore(db)
	tokens := auth.NewService(cfg)

	var mail mailer.Mailer
	if cfg.MailDriver == "ses" {
		mail, err = mailer.NewSESMailer(ctx, cfg)
		if err != nil {
			return nil, fmt.Errorf("mailer init error: %w", err)
		}
	} else {
		mail = mailer.NewLogMailer(logger)
	}

	blobs, err := blob.NewS3Store(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("blob store init error: %w", err)
	}

	engine := identity.NewService(store, tokens, mail, blobs, logger, cfg)
	server := httpapi.NewServer(cfg, logger, engine, tokens)

	return &App{config: cfg, logger: logger, db: db, server: server}, nil
}

func (app *App) initSignalHandler(cancelFunc context.CancelFunc) {
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	go func() {
		<-sigs
		cancelFunc()
	}()
}

func (app *App) Run(ctx context.Context) {

	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()

	app.logger.Info(ctx, "starting identity server")

	app.initSignalHandler(cancelFunc)

	if err := app.server.Run(ctx); err != nil {
		app.logger.Error(ctx, "http server error", "error", err)
	}

	if err := app.db.Close(); err != nil {
		app.logger.Error(ctx, "db close error", "error", err)
	}

	app.logger.Info(ctx, "identity server stopped")
}
