// Package server wires configuration, storage, services and transports into
// the letterdesk server and runs it until a termination signal arrives.
package server

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/dmitrijs2005/letterdesk/internal/cryptox"
	"github.com/dmitrijs2005/letterdesk/internal/logging"
	"github.com/dmitrijs2005/letterdesk/internal/server/config"
	"github.com/dmitrijs2005/letterdesk/internal/server/generation"
	"github.com/dmitrijs2005/letterdesk/internal/server/notify"
	"github.com/dmitrijs2005/letterdesk/internal/server/ops"
	"github.com/dmitrijs2005/letterdesk/internal/server/ratelimit"
	"github.com/dmitrijs2005/letterdesk/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/letterdesk/internal/server/services"
	"github.com/dmitrijs2005/letterdesk/internal/server/templates"
	"github.com/dmitrijs2005/letterdesk/internal/server/tracing"
	"github.com/nats-io/nats.go"

	gs "github.com/dmitrijs2005/letterdesk/internal/server/grpc"
)

type App struct {
	config         *config.Config
	logger         logging.Logger
	db             *sql.DB
	repomanager    repomanager.RepositoryManager
	catalog        *templates.Catalog
	userService    *services.UserService
	letterService  *services.LetterService
	seeder         *services.Seeder
	healthChecks   map[string]ops.HealthCheck
	closers        []func(context.Context) error
	shutdownTracer func(context.Context) error
}

func NewApp(ctx context.Context, c *config.Config) (*App, error) {
	logger := logging.NewJSONLogger(os.Stdout, c.LogLevel)

	if err := c.Validate(); err != nil {
		return nil, err
	}

	app := &App{config: c, logger: logger, healthChecks: map[string]ops.HealthCheck{}}

	shutdown, err := tracing.Init(ctx, logger, c.OTLPEndpoint, "letterdesk-server")
	if err != nil {
		return nil, fmt.Errorf("tracing init error: %w", err)
	}
	app.shutdownTracer = shutdown

	db, err := sql.Open("pgx", c.DatabaseDSN)
	if err != nil {
		return nil, fmt.Errorf("db init error: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("db ping error: %w", err)
	}
	app.db = db
	app.healthChecks["postgres"] = db.PingContext
	app.closers = append(app.closers, func(context.Context) error { return db.Close() })

	app.repomanager = repomanager.NewPostgresRepositoryManager()
	if err := app.repomanager.RunMigrations(ctx, db); err != nil {
		app.Close(ctx)
		return nil, fmt.Errorf("migrations error: %w", err)
	}

	if err := app.buildServices(ctx); err != nil {
		app.Close(ctx)
		return nil, err
	}
	return app, nil
}

func (app *App) buildServices(ctx context.Context) error {
	c := app.config

	hasher, err := cryptox.NewHasher(c.HashScheme)
	if err != nil {
		return err
	}

	catalog := templates.NewBuiltin()
	if c.TemplatesFile != "" {
		if catalog, err = templates.Load(c.TemplatesFile); err != nil {
			return fmt.Errorf("template catalog error: %w", err)
		}
	}
	app.catalog = catalog

	loginLimiter, resetLimiter, err := app.newLimiters(ctx)
	if err != nil {
		return err
	}

	notifier, err := app.newNotifier()
	if err != nil {
		return err
	}

	generator := generation.NewGeminiClient(c.GenerationEndpoint, c.GenerationModel, c.GenerationAPIKey,
		c.GenerationTimeout, app.logger, generation.WithRetry(generation.RetryConfig{
			MaxAttempts: c.GenerationRetries + 1,
			BackoffBase: time.Second,
			MaxBackoff:  10 * time.Second,
		}))

	affiliates := services.NewAffiliateService(app.db, app.repomanager, app.logger)
	app.userService = services.NewUserService(app.db, app.repomanager, c, services.UserDeps{
		Hasher:       hasher,
		Affiliates:   affiliates,
		Notifier:     notifier,
		LoginLimiter: loginLimiter,
		ResetLimiter: resetLimiter,
		Logger:       app.logger,
	})
	app.letterService = services.NewLetterService(app.db, app.repomanager, catalog, generator, affiliates, app.logger)
	if c.SeedDemoData {
		app.seeder = services.NewSeeder(app.db, app.repomanager, hasher, affiliates, app.logger)
	}
	return nil
}

// newLimiters returns redis-backed limiters when RedisAddr is set and
// in-memory ones otherwise.
func (app *App) newLimiters(ctx context.Context) (ratelimit.Limiter, ratelimit.Limiter, error) {
	c := app.config
	if c.RedisAddr == "" {
		login := ratelimit.NewMemory(c.LoginRateLimit, c.RateWindow)
		reset := ratelimit.NewMemory(c.ResetRateLimit, c.RateWindow)
		app.closers = append(app.closers, func(context.Context) error {
			login.Stop()
			reset.Stop()
			return nil
		})
		return login, reset, nil
	}

	rdb, err := ratelimit.NewRedisClient(ctx, c.RedisAddr)
	if err != nil {
		return nil, nil, fmt.Errorf("redis init error: %w", err)
	}
	app.healthChecks["redis"] = func(ctx context.Context) error { return rdb.Ping(ctx).Err() }
	app.closers = append(app.closers, func(context.Context) error { return rdb.Close() })
	return ratelimit.NewRedis(rdb, "letterdesk:login", c.LoginRateLimit, c.RateWindow),
		ratelimit.NewRedis(rdb, "letterdesk:reset", c.ResetRateLimit, c.RateWindow), nil
}

func (app *App) newNotifier() (notify.Notifier, error) {
	c := app.config
	if c.NATSURL == "" {
		return notify.NewLogNotifier(app.logger), nil
	}
	nc, err := notify.Connect(c.NATSURL)
	if err != nil {
		return nil, fmt.Errorf("nats init error: %w", err)
	}
	app.healthChecks["nats"] = func(context.Context) error {
		if nc.Status() != nats.CONNECTED {
			return fmt.Errorf("nats status %s", nc.Status())
		}
		return nil
	}
	app.closers = append(app.closers, func(context.Context) error { return nc.Drain() })
	return notify.NewNATSNotifier(nc, c.NotifySubject), nil
}

func (app *App) initSignalHandler(cancelFunc context.CancelFunc) {
	// Channel to catch OS signals.
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	go func() {
		<-sigs
		cancelFunc()
	}()
}

func (app *App) startGRPCServer(ctx context.Context, cancelFunc context.CancelFunc) {
	s := gs.NewGRPCServer(app.config.EndpointAddrGRPC, app.logger, app.userService, app.letterService, app.config.SecretKey)
	if err := s.Run(ctx); err != nil {
		app.logger.Error(ctx, err.Error())
		cancelFunc()
	}
}

func (app *App) startOpsServer(ctx context.Context, cancelFunc context.CancelFunc) {
	s := ops.NewServer(app.config.EndpointAddrOps, app.healthChecks, app.logger)
	if err := s.Run(ctx); err != nil {
		app.logger.Error(ctx, err.Error())
		cancelFunc()
	}
}

func (app *App) Run(ctx context.Context) error {
	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()

	app.logger.Info(ctx, "Starting app...")

	if app.seeder != nil {
		if err := app.seeder.Run(ctx); err != nil {
			return fmt.Errorf("seeding error: %w", err)
		}
	}

	app.initSignalHandler(cancelFunc)

	var wg sync.WaitGroup

	wg.Add(2)
	go func() {
		defer wg.Done()
		app.startGRPCServer(ctx, cancelFunc)
	}()
	go func() {
		defer wg.Done()
		app.startOpsServer(ctx, cancelFunc)
	}()

	if app.config.TemplatesFile != "" {
		if err := app.catalog.Watch(ctx, app.config.TemplatesFile, app.logger); err != nil {
			app.logger.Warn(ctx, "template hot reload disabled", "error", err)
		}
	}

	wg.Wait()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	app.Close(shutdownCtx)
	return nil
}

// Close releases external connections in reverse order of acquisition.
func (app *App) Close(ctx context.Context) {
	for i := len(app.closers) - 1; i >= 0; i-- {
		if err := app.closers[i](ctx); err != nil {
			app.logger.Warn(ctx, "close failed", "error", err)
		}
	}
	app.closers = nil
	if app.shutdownTracer != nil {
		if err := app.shutdownTracer(ctx); err != nil {
			app.logger.Warn(ctx, "tracer shutdown failed", "error", err)
		}
	}
}

