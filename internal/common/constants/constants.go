package constants

import "time"

const (
	NameMaxLength        = 50
	EmailMaxLength       = 254
	PasswordMinLength    = 6
	PasswordMaxLength    = 72
	TaskDescriptionLimit = 250
	JWTSecretMinLength   = 32

	DefaultMaxRequestSize = 1 << 20

	DefaultBcryptCost = 12

	DBPoolMaxOpenConns    = 25
	DBPoolMinOpenConns    = 5
	DBPoolConnMaxLifetime = time.Hour
	DBPoolConnMaxIdleTime = 30 * time.Minute
	DBPoolHealthCheck     = 1 * time.Minute
	DBPoolConnectTimeout  = 5 * time.Second
	DBPoolMaxAttempts     = 10
	DBPoolRetryDelay      = 1 * time.Second
	DBPoolMetricsInterval = 30 * time.Second
	DBQueryTimeout        = 5 * time.Second
	SQLiteBusyTimeout     = 5 * time.Second

	ServerReadHeaderTimeout = 10 * time.Second
	ServerReadTimeout       = 30 * time.Second
	ServerWriteTimeout      = 30 * time.Second
	ServerIdleTimeout       = 120 * time.Second

	StartupTimeout  = 2 * time.Minute
	ShutdownTimeout = 30 * time.Second
	DrainTimeout    = 10 * time.Second

	DefaultHTTPPort       = "8080"
	DefaultStorageDriver  = "postgres"
	DefaultSQLitePath     = "var/tasktracker.db"
	DefaultLogDir         = "/var/log/task-tracker"
	DefaultTokenTTL       = 24 * time.Hour
	DefaultRequestTimeout = 5 * time.Second

	DefaultCircuitBreakerThreshold = 20
	DefaultCircuitBreakerTimeout   = 10 * time.Second
	DefaultCircuitBreakerReset     = 15 * time.Second

	RateLimitCleanupInterval = 5 * time.Minute

	RateLimitLoginRequestsPerSecond    = 1.0
	RateLimitLoginBurst                = 5
	RateLimitRegisterRequestsPerSecond = 0.5
	RateLimitRegisterBurst             = 3
	RateLimitGeneralRequestsPerSecond  = 20.0
	RateLimitGeneralBurst              = 40

	LoggerMaxSize    = 100
	LoggerMaxBackups = 3
	LoggerMaxAge     = 28

	TestJWTSecret = "test-secret-key-must-be-at-least-32-bytes-long"
)

type TraceIDKeyType string

const TraceIDKey TraceIDKeyType = "trace_id"
