package bootstrap

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"

	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	authhttp "github.com/AlibekovAA/task-tracker/backend/internal/auth/http"
	authservice "github.com/AlibekovAA/task-tracker/backend/internal/auth/service"
	"github.com/AlibekovAA/task-tracker/backend/internal/auth/token"
	"github.com/AlibekovAA/task-tracker/backend/internal/common/clock"
	"github.com/AlibekovAA/task-tracker/backend/internal/common/config"
	"github.com/AlibekovAA/task-tracker/backend/internal/common/constants"
	commoncrypto "github.com/AlibekovAA/task-tracker/backend/internal/common/crypto"
	"github.com/AlibekovAA/task-tracker/backend/internal/common/db"
	commonhttp "github.com/AlibekovAA/task-tracker/backend/internal/common/http"
	"github.com/AlibekovAA/task-tracker/backend/internal/common/jwtverify"
	"github.com/AlibekovAA/task-tracker/backend/internal/common/logger"
	srv "github.com/AlibekovAA/task-tracker/backend/internal/common/server"
	profilehttp "github.com/AlibekovAA/task-tracker/backend/internal/profile/http"
	profileservice "github.com/AlibekovAA/task-tracker/backend/internal/profile/service"
	taskhttp "github.com/AlibekovAA/task-tracker/backend/internal/task/http"
	taskrepo "github.com/AlibekovAA/task-tracker/backend/internal/task/repository"
	taskservice "github.com/AlibekovAA/task-tracker/backend/internal/task/service"
	userrepo "github.com/AlibekovAA/task-tracker/backend/internal/user/repository"
)

type App struct {
	Config  config.AppConfig
	Log     *logger.Logger
	Handler http.Handler

	AuthService    *authservice.AuthService
	TaskService    *taskservice.TaskService
	ProfileService *profileservice.ProfileService

	rateLimiter *commonhttp.StrictRateLimiter
	closers     []func(ctx context.Context) error
}

type store struct {
	users userrepo.Repository
	tasks taskrepo.Repository
	ping  commonhttp.Pinger
}

// Load reads the environment, builds the logger and assembles the app.
func Load(ctx context.Context) (*App, error) {
	cfg, err := config.LoadAppConfig()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	log, err := logger.New(cfg.LogDir, "tasktracker", cfg.LogLevel)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}

	return New(ctx, cfg, log)
}

// New opens and migrates the configured store and wires services and routes
// on top of it.
func New(ctx context.Context, cfg config.AppConfig, log *logger.Logger) (*App, error) {
	app := &App{Config: cfg, Log: log}

	st, err := app.openStore(ctx)
	if err != nil {
		app.Close(ctx)
		return nil, err
	}

	clk := clock.NewRealClock()
	idGenerator := commoncrypto.NewUUIDGenerator()
	hasher := commoncrypto.NewBcryptHasher(cfg.BcryptCost)
	tokens := token.NewJWTManager(cfg.JWTSecret, cfg.TokenTTL, clk, idGenerator)

	app.AuthService = authservice.NewAuthService(authservice.AuthServiceDeps{
		Repo:        st.users,
		Hasher:      hasher,
		IDGenerator: idGenerator,
		Tokens:      tokens,
		Clock:       clk,
		Log:         log,
	}, authservice.AuthServiceConfig{
		CircuitBreakerThreshold: cfg.CircuitBreakerThreshold,
		CircuitBreakerTimeout:   cfg.CircuitBreakerTimeout,
		CircuitBreakerReset:     cfg.CircuitBreakerReset,
	})

	app.TaskService = taskservice.NewTaskService(taskservice.TaskServiceDeps{
		Repo:        st.tasks,
		IDGenerator: idGenerator,
		Clock:       clk,
		Log:         log,
	}, taskservice.TaskServiceConfig{
		CircuitBreakerThreshold: cfg.CircuitBreakerThreshold,
		CircuitBreakerTimeout:   cfg.CircuitBreakerTimeout,
		CircuitBreakerReset:     cfg.CircuitBreakerReset,
	})

	app.ProfileService = profileservice.NewProfileService(profileservice.ProfileServiceDeps{
		Repo:   st.users,
		Hasher: hasher,
		Clock:  clk,
		Log:    log,
	}, profileservice.ProfileServiceConfig{
		CircuitBreakerThreshold: cfg.CircuitBreakerThreshold,
		CircuitBreakerTimeout:   cfg.CircuitBreakerTimeout,
		CircuitBreakerReset:     cfg.CircuitBreakerReset,
	})

	authenticate := jwtverify.Middleware(app.AuthService, log)

	mux := http.NewServeMux()
	mux.Handle("/health", commonhttp.HealthHandler(log, st.ping))
	mux.Handle("/metrics", promhttp.Handler())
	mux.HandleFunc("/", commonhttp.WriteNotFound)
	authhttp.NewHandler(app.AuthService, cfg.RequestTimeout, log).Register(mux)
	taskhttp.NewHandler(app.TaskService, cfg.RequestTimeout, log).Register(mux, authenticate)
	profilehttp.NewHandler(app.ProfileService, cfg.RequestTimeout, log).Register(mux, authenticate)

	app.rateLimiter = commonhttp.NewStrictRateLimiter()
	app.closers = append(app.closers, func(context.Context) error {
		app.rateLimiter.Stop()
		return nil
	})

	app.Handler = app.rateLimit(commonhttp.BuildBaseHandler(log, mux))
	return app, nil
}

func (a *App) rateLimit(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		path := r.URL.Path
		if path == "/health" || path == "/metrics" {
			next.ServeHTTP(w, r)
			return
		}
		a.rateLimiter.MiddlewareForPath(path)(next).ServeHTTP(w, r)
	})
}

func (a *App) openStore(ctx context.Context) (store, error) {
	switch a.Config.StorageDriver {
	case config.DriverSQLite:
		sqlDB, err := db.OpenSQLite(ctx, a.Config.SQLitePath)
		if err != nil {
			return store{}, err
		}
		a.closers = append(a.closers, func(context.Context) error { return sqlDB.Close() })

		if err := db.MigrateSQLite(ctx, a.Log, sqlDB); err != nil {
			return store{}, err
		}
		a.Log.Infof("using sqlite store at %s", a.Config.SQLitePath)
		return sqliteStore(sqlDB, a.Config), nil
	default:
		pool, err := db.NewPool(ctx, a.Log, a.Config.DatabaseURL)
		if err != nil {
			return store{}, err
		}

		metricsCtx, stopMetrics := context.WithCancel(context.Background())
		db.StartPoolMetrics(metricsCtx, pool, constants.DBPoolMetricsInterval)
		a.closers = append(a.closers, func(context.Context) error {
			stopMetrics()
			pool.Close()
			return nil
		})

		if err := db.MigratePostgres(ctx, a.Log, pool); err != nil {
			return store{}, err
		}
		return postgresStore(pool, a.Config), nil
	}
}

func sqliteStore(sqlDB *sql.DB, cfg config.AppConfig) store {
	return store{
		users: userrepo.NewSQLiteRepository(sqlDB, cfg.QueryTimeout),
		tasks: taskrepo.NewSQLiteRepository(sqlDB, cfg.QueryTimeout),
		ping:  sqlDB.PingContext,
	}
}

func postgresStore(pool *pgxpool.Pool, cfg config.AppConfig) store {
	return store{
		users: userrepo.NewPgRepository(pool, cfg.QueryTimeout),
		tasks: taskrepo.NewPgRepository(pool, cfg.QueryTimeout),
		ping:  pool.Ping,
	}
}

// ShutdownHooks releases the rate limiter and the store once the server has
// drained, in reverse order of acquisition.
func (a *App) ShutdownHooks() []srv.ShutdownHook {
	hooks := make([]srv.ShutdownHook, 0, len(a.closers))
	for i := len(a.closers) - 1; i >= 0; i-- {
		hooks = append(hooks, srv.ShutdownHook(a.closers[i]))
	}
	return hooks
}

// Close runs every shutdown hook; used when the app never reached Run.
func (a *App) Close(ctx context.Context) {
	for _, hook := range a.ShutdownHooks() {
		if err := hook(ctx); err != nil && a.Log != nil {
			a.Log.Errorf("shutdown hook failed: %v", err)
		}
	}
	a.closers = nil
}
