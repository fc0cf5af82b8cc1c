package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	httpapi "github.com/aussiebroadwan/campus/internal/campus/http"
	"github.com/aussiebroadwan/campus/internal/campus/notify"
	"github.com/aussiebroadwan/campus/internal/campus/service"
	"github.com/aussiebroadwan/campus/internal/campus/store/drivers/sqlite"
	"github.com/aussiebroadwan/campus/pkg/cryptox"
	"github.com/aussiebroadwan/campus/pkg/jwtx"
	"github.com/aussiebroadwan/campus/pkg/retryx"
	"github.com/aussiebroadwan/campus/pkg/slogx"
	"github.com/redis/go-redis/v9"
)

const (
	// BuildVersion should be set at build time via ldflags.
	BuildVersion = "v0.1.0"
)

// Application encapsulates the identity service with all its dependencies
type Application struct {
	cfg    Config
	logger *slog.Logger

	// Core dependencies
	db         *sqlite.Store
	keyManager *jwtx.KeyManager
	notifier   *notify.Queue
	redis      *redis.Client
	readyCheck map[string]httpapi.ReadyCheck

	// Services
	sessions            *service.SessionIssuer
	twoFactorService    *service.TwoFactorService
	accountService      *service.AccountService
	verificationService *service.VerificationService
	housekeepingService *service.HousekeepingService

	// HTTP server
	server *http.Server
	router *httpapi.Router
}

// New creates a new Application instance with all dependencies initialized
func New(cfg Config) (*Application, error) {
	app := &Application{
		cfg: cfg,
		logger: slogx.New(slogx.Config{
			Service: "campus-identity",
			Version: BuildVersion,
			Env:     cfg.Env,
			Level:   cfg.LogLevel,
			Format:  cfg.LogFormat,
		}),
		readyCheck: map[string]httpapi.ReadyCheck{},
	}

	if err := cryptox.LoadPepper(cfg.PepperFile); err != nil {
		return nil, fmt.Errorf("failed to load pepper: %w", err)
	}

	if err := app.initDatabase(); err != nil {
		return nil, err
	}

	keyManager, err := InitKeys(cfg, app.logger)
	if err != nil {
		_ = app.db.Close()
		return nil, err
	}
	app.keyManager = keyManager

	q, client, check, err := initNotifier(cfg, app.logger)
	if err != nil {
		_ = app.db.Close()
		return nil, err
	}
	app.notifier, app.redis = q, client
	if check != nil {
		app.readyCheck["redis"] = check
	}

	app.initServices()
	if err := app.bootstrapAdmin(); err != nil {
		app.closeDependencies()
		return nil, err
	}
	app.initHTTP()

	return app, nil
}

// Run starts the application and blocks until shutdown is requested
func (app *Application) Run() error {
	if err := app.housekeepingService.Start(); err != nil {
		return fmt.Errorf("failed to start housekeeping: %w", err)
	}

	app.logger.Info("campus identity service starting", "port", app.cfg.Port, "version", BuildVersion)

	serverErrors := make(chan error, 1)
	go func() {
		serverErrors <- app.server.ListenAndServe()
	}()

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			app.housekeepingService.Stop()
			app.closeDependencies()
			return fmt.Errorf("server failed: %w", err)
		}
	case sig := <-shutdown:
		app.logger.Info("shutdown signal received", "signal", sig)

		if err := app.Shutdown(); err != nil {
			return fmt.Errorf("graceful shutdown failed: %w", err)
		}
	}

	return nil
}

// Shutdown gracefully shuts down the application
func (app *Application) Shutdown() error {
	app.logger.Info("shutting down campus identity service...")

	ctx, cancel := context.WithTimeout(context.Background(), app.cfg.ShutdownGracePeriod)
	defer cancel()

	if err := app.server.Shutdown(ctx); err != nil {
		app.logger.Error("graceful server shutdown failed", "error", err)
		if err := app.server.Close(); err != nil {
			app.logger.Error("error closing server", "error", err)
		}
	}

	app.housekeepingService.Stop()

	if err := app.closeDependencies(); err != nil {
		return err
	}

	app.logger.Info("campus identity service stopped")
	return nil
}

// closeDependencies drains pending notifications before closing the
// connections they need.
func (app *Application) closeDependencies() error {
	app.notifier.Close()
	if n := app.notifier.Dropped(); n > 0 {
		app.logger.Warn("notifications dropped during run", "count", n)
	}

	if app.redis != nil {
		if err := app.redis.Close(); err != nil {
			app.logger.Error("error closing redis", "error", err)
		}
	}

	if err := app.db.Close(); err != nil {
		app.logger.Error("error closing database", "error", err)
		return err
	}
	return nil
}

// initDatabase opens the database and applies migrations
func (app *Application) initDatabase() error {
	db, err := sqlite.NewStore(app.cfg.DatabaseFile)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	app.db = db

	if err := db.ApplyMigrations(); err != nil {
		_ = db.Close()
		return fmt.Errorf("failed to apply database migrations: %w", err)
	}

	app.logger.Info("database migrations applied successfully", "file", app.cfg.DatabaseFile)
	return nil
}

// initServices initializes all business logic services
func (app *Application) initServices() {
	app.sessions = &service.SessionIssuer{
		Signer:     app.keyManager,
		Verifier:   app.keyManager.Verifier,
		Issuer:     app.cfg.Issuer,
		SessionTTL: app.cfg.SessionTTL,
		PendingTTL: app.cfg.PendingTTL,
	}

	app.twoFactorService = &service.TwoFactorService{
		Store:       app.db,
		Notifier:    app.notifier,
		Sessions:    app.sessions,
		Issuer:      app.cfg.Issuer,
		ExposeCodes: !app.cfg.Production(),
	}
	if !app.cfg.Production() {
		app.logger.Warn("one-time codes are echoed in responses", "env", app.cfg.Env)
	}

	app.accountService = &service.AccountService{
		Store:     app.db,
		Notifier:  app.notifier,
		Sessions:  app.sessions,
		TwoFactor: app.twoFactorService,
	}

	app.verificationService = &service.VerificationService{
		Store:    app.db,
		Notifier: app.notifier,
		Retry: retryx.Policy{
			Attempts: app.cfg.ProvisionRetryAttempts,
			Backoff:  app.cfg.ProvisionRetryBackoff,
		},
	}

	app.housekeepingService = service.NewHousekeepingService(
		app.db,
		app.verificationService,
		app.logger,
		app.cfg.HousekeepingSchedule,
	)
}

// bootstrapAdmin creates the first super admin so someone can review
// admin, library, placement and parent requests.
func (app *Application) bootstrapAdmin() error {
	if app.cfg.BootstrapAdminEmail == "" {
		return nil
	}
	if app.cfg.BootstrapAdminPassword == "" {
		return errors.New("BOOTSTRAP_ADMIN_PASSWORD is required with BOOTSTRAP_ADMIN_EMAIL")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	created, err := app.accountService.EnsureAdmin(ctx, app.cfg.BootstrapAdminEmail, app.cfg.BootstrapAdminPassword, "Administrator")
	if err != nil {
		return fmt.Errorf("failed to bootstrap admin: %w", err)
	}
	if created {
		app.logger.Info("bootstrap admin created", "email", cryptox.MaskEmail(app.cfg.BootstrapAdminEmail))
	}
	return nil
}

// initHTTP initializes the HTTP router and server
func (app *Application) initHTTP() {
	router := httpapi.NewRouter(
		app.keyManager.KeySet,
		app.keyManager.Verifier,
		BuildVersion,
		app.db,
		app.logger,
	)

	router.AccountService = app.accountService
	router.TwoFactorService = app.twoFactorService
	router.VerificationService = app.verificationService
	router.ReadyChecks = app.readyCheck
	router.ApplyRoutes()

	app.router = router

	app.server = &http.Server{
		Addr:              fmt.Sprintf(":%d", app.cfg.Port),
		Handler:           router,
		ReadHeaderTimeout: 3 * time.Second,
	}
}
