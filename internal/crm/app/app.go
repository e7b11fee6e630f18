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

	"github.com/aussiebroadwan/leadboard/internal/crm/cache"
	"github.com/aussiebroadwan/leadboard/internal/crm/events"
	httpapi "github.com/aussiebroadwan/leadboard/internal/crm/http"
	"github.com/aussiebroadwan/leadboard/internal/crm/service"
	"github.com/aussiebroadwan/leadboard/internal/crm/store"
	"github.com/aussiebroadwan/leadboard/internal/crm/store/drivers/postgres"
	"github.com/aussiebroadwan/leadboard/internal/crm/store/drivers/sqlite"
	"github.com/aussiebroadwan/leadboard/pkg/cryptox"
	"github.com/aussiebroadwan/leadboard/pkg/jwtx"
	"github.com/aussiebroadwan/leadboard/pkg/slogx"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

const serviceName = "crm-service"

// BuildVersion is overridden at build time via -ldflags "-X ...app.BuildVersion=...".
var BuildVersion = "v0.1.0"

// Application encapsulates the CRM service with all its dependencies.
type Application struct {
	cfg    Config
	logger *slog.Logger

	// Core dependencies
	db            store.Store
	cache         cache.Cache
	events        events.Publisher
	keyManager    *jwtx.KeyManager
	hasher        *cryptox.Hasher
	traceShutdown func(context.Context) error

	housekeepingService *service.HousekeepingService
	housekeepingRunning bool

	// HTTP server
	server *http.Server
	router *httpapi.Router
}

// NewLogger builds the service logger from cfg.
func NewLogger(cfg Config) *slog.Logger {
	return slogx.New(slogx.Config{
		Service: serviceName,
		Version: BuildVersion,
		Env:     cfg.Env,
		Level:   cfg.LogLevel,
		Format:  cfg.LogFormat,
	})
}

// New creates an Application with every dependency initialised and the
// database migrated.
func New(ctx context.Context, cfg Config) (*Application, error) {
	app := &Application{
		cfg:    cfg,
		logger: NewLogger(cfg),
	}

	pepper, err := cryptox.LoadOrCreatePepper(cfg.PepperFile)
	if err != nil {
		return nil, fmt.Errorf("failed to load pepper: %w", err)
	}
	app.hasher = cryptox.NewHasher(pepper)

	if err := app.initDatabase(ctx); err != nil {
		return nil, err
	}

	keyManager, err := InitSigningKeys(cfg, app.logger)
	if err != nil {
		app.closeAll()
		return nil, err
	}
	app.keyManager = keyManager

	if err := app.initCache(ctx); err != nil {
		app.closeAll()
		return nil, err
	}
	if err := app.initEvents(); err != nil {
		app.closeAll()
		return nil, err
	}

	app.traceShutdown, err = initTracing(ctx, cfg)
	if err != nil {
		app.closeAll()
		return nil, err
	}

	app.initHTTP()

	return app, nil
}

// OpenStore connects to the configured database without migrating it.
func OpenStore(ctx context.Context, cfg Config) (store.Store, error) {
	switch cfg.DatabaseDriver {
	case "postgres":
		return postgres.Open(ctx, cfg.DatabaseURL)
	default:
		return sqlite.Open(cfg.DatabaseURL)
	}
}

// Handler returns the instrumented HTTP handler.
func (app *Application) Handler() http.Handler {
	return app.server.Handler
}

// Run starts the application and blocks until shutdown is requested.
func (app *Application) Run() error {
	app.housekeepingService.Start()
	app.housekeepingRunning = true

	app.logger.Info("crm service starting",
		"port", app.cfg.Port,
		"version", BuildVersion,
		"database", app.cfg.DatabaseDriver,
	)

	serverErrors := make(chan error, 1)
	go func() {
		serverErrors <- app.server.ListenAndServe()
	}()

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(shutdown)

	select {
	case err := <-serverErrors:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			app.closeAll()
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

// Shutdown gracefully shuts down the application.
func (app *Application) Shutdown() error {
	app.logger.Info("shutting down crm service...")

	ctx, cancel := context.WithTimeout(context.Background(), app.cfg.ShutdownGracePeriod)
	defer cancel()

	if err := app.server.Shutdown(ctx); err != nil {
		app.logger.Error("graceful server shutdown failed", "error", err)
		if err := app.server.Close(); err != nil {
			app.logger.Error("error closing server", "error", err)
		}
	}

	if app.housekeepingRunning {
		app.housekeepingService.Stop()
	}

	if err := app.traceShutdown(ctx); err != nil {
		app.logger.Error("error flushing traces", "error", err)
	}

	if err := app.closeAll(); err != nil {
		return err
	}

	app.logger.Info("crm service stopped")
	return nil
}

// closeAll releases the connections opened by New.
func (app *Application) closeAll() error {
	var errs []error
	if app.events != nil {
		if err := app.events.Close(); err != nil {
			app.logger.Error("error closing event publisher", "error", err)
			errs = append(errs, err)
		}
	}
	if app.cache != nil {
		if err := app.cache.Close(); err != nil {
			app.logger.Error("error closing cache", "error", err)
			errs = append(errs, err)
		}
	}
	if app.db != nil {
		if err := app.db.Close(); err != nil {
			app.logger.Error("error closing database", "error", err)
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// initDatabase opens the store and applies migrations.
func (app *Application) initDatabase(ctx context.Context) error {
	db, err := OpenStore(ctx, app.cfg)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	app.db = db

	if err := db.ApplyMigrations(); err != nil {
		_ = db.Close()
		app.db = nil
		return fmt.Errorf("failed to apply database migrations: %w", err)
	}

	app.logger.Info("database migrations applied successfully", "driver", app.cfg.DatabaseDriver)
	return nil
}

func (app *Application) initCache(ctx context.Context) error {
	if app.cfg.RedisURL == "" {
		app.cache = cache.NewMemory()
		app.logger.Info("dashboard cache: in-memory")
		return nil
	}

	c, err := cache.NewRedis(ctx, app.cfg.RedisURL)
	if err != nil {
		return fmt.Errorf("failed to connect to redis: %w", err)
	}
	app.cache = c
	app.logger.Info("dashboard cache: redis")
	return nil
}

func (app *Application) initEvents() error {
	if app.cfg.AMQPURL == "" {
		app.events = events.Noop{}
		return nil
	}

	p, err := events.NewAMQP(app.cfg.AMQPURL, app.cfg.AMQPExchange)
	if err != nil {
		return fmt.Errorf("failed to connect to rabbitmq: %w", err)
	}
	app.events = p
	app.logger.Info("lead events: amqp", "exchange", app.cfg.AMQPExchange)
	return nil
}

// initHTTP builds the services, the router and the HTTP server.
func (app *Application) initHTTP() {
	auth := &service.AuthService{
		Store:      app.db,
		Hasher:     app.hasher,
		KeyManager: app.keyManager,
		Issuer:     app.cfg.Issuer,
		AccessTTL:  jwtx.DefaultAccessTokenTTL,
		RefreshTTL: jwtx.DefaultRefreshTokenTTL,
	}

	app.housekeepingService = service.NewHousekeepingService(
		app.db,
		app.logger,
		app.cfg.HousekeepingInterval,
	)

	router := httpapi.NewRouter(
		app.keyManager.KeySet(),
		auth.Verifier(),
		BuildVersion,
		app.db,
		app.logger,
	)

	router.AuthService = auth
	router.MFAService = &service.MFAService{Store: app.db, Issuer: app.cfg.Issuer}
	router.CompanyService = &service.CompanyService{Store: app.db}
	router.MemberService = &service.MemberService{Store: app.db}
	router.ProfileService = &service.ProfileService{Store: app.db, Hasher: app.hasher}
	router.StageService = &service.StageService{Store: app.db, Cache: app.cache}
	router.LeadService = &service.LeadService{Store: app.db, Cache: app.cache, Events: app.events}
	router.DetailService = &service.DetailService{Store: app.db}
	router.DashboardService = &service.DashboardService{Store: app.db, Cache: app.cache, TTL: app.cfg.DashboardTTL}
	router.ApplyRoutes()

	app.router = router

	app.server = &http.Server{
		Addr:              fmt.Sprintf(":%d", app.cfg.Port),
		Handler:           otelhttp.NewHandler(router, serviceName),
		ReadHeaderTimeout: 3 * time.Second,
	}
}
