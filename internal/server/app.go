// Package server wires the account service together: configuration, logging,
// database with schema migrations, outbound mail, and the HTTP endpoint. It
// also owns graceful shutdown on OS signals.
package server

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"sync"
	"syscall"

	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/techasish/accountd/internal/dbx"
	"github.com/techasish/accountd/internal/logging"
	"github.com/techasish/accountd/internal/server/config"
	"github.com/techasish/accountd/internal/server/httpapi"
	"github.com/techasish/accountd/internal/server/mail"
	"github.com/techasish/accountd/internal/server/migrations"
	"github.com/techasish/accountd/internal/server/password"
	"github.com/techasish/accountd/internal/server/repositories/users"
	"github.com/techasish/accountd/internal/server/services"
)

type App struct {
	config     *config.Config
	logger     logging.Logger
	db         *sql.DB
	httpServer *httpapi.Server
}

func NewApp(ctx context.Context, cfg *config.Config) (*App, error) {
	logger := logging.NewSlogLogger(slog.New(slog.NewJSONHandler(os.Stdout, nil)))

	db, err := sql.Open("pgx", cfg.DatabaseDSN)
	if err != nil {
		return nil, fmt.Errorf("db init error: %w", err)
	}

	if err := db.PingContext(ctx); err != nil {
		return nil, fmt.Errorf("db connection error: %w", err)
	}

	if err := migrations.Run(ctx, db); err != nil {
		return nil, err
	}

	var mailer mail.Notifier
	if cfg.SMTPAddr != "" {
		mailer = mail.NewSMTPNotifier(cfg.SMTPAddr, cfg.SMTPUser, cfg.SMTPPassword, cfg.SenderEmail)
	} else {
		logger.Warn(ctx, "no SMTP relay configured, outbound mail goes to the log")
		mailer = mail.NewLogNotifier(logger)
	}

	repoFor := func(db dbx.DBTX) users.Repository { return users.NewPostgresRepository(db) }

	userService := services.NewUserService(db, repoFor, password.NewBcryptHasher(),
		mailer, logger, []byte(cfg.SecretKey), cfg.SessionTokenValidityDuration)

	httpServer := httpapi.NewServer(cfg.EndpointAddrHTTP, userService, logger,
		[]byte(cfg.SecretKey), cfg.SessionTokenValidityDuration, cfg.SecureCookies)

	return &App{config: cfg, logger: logger, db: db, httpServer: httpServer}, nil
}

func (app *App) initSignalHandler(cancelFunc context.CancelFunc) {
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	go func() {
		<-sigs
		cancelFunc()
	}()
}

// Run serves until an OS signal or a server failure, then closes the database.
func (app *App) Run(ctx context.Context) {
	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()

	app.logger.Info(ctx, "starting app", "addr", app.config.EndpointAddrHTTP)

	app.initSignalHandler(cancelFunc)

	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()
		if err := app.httpServer.Run(ctx); err != nil {
			app.logger.Error(ctx, "http server error", "error", err)
			cancelFunc()
		}
	}()

	wg.Wait()

	if err := app.db.Close(); err != nil {
		app.logger.Error(ctx, "db close error", "error", err)
	}

	app.logger.Info(ctx, "app stopped")
}
