package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/AlibekovAA/task-tracker/backend/internal/common/constants"
)

var (
	ErrMissingRequiredEnv = errors.New("missing required environment variable")
	ErrInvalidJWTSecret   = errors.New("JWT_SECRET must be at least 32 bytes")
	ErrInvalidDriver      = errors.New("STORAGE_DRIVER must be postgres or sqlite")
)

const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

type AppConfig struct {
	HTTPPort       string
	StorageDriver  string
	DatabaseURL    string
	SQLitePath     string
	JWTSecret      string
	TokenTTL       time.Duration
	RequestTimeout time.Duration
	QueryTimeout   time.Duration
	BcryptCost     int

	CircuitBreakerThreshold int
	CircuitBreakerTimeout   time.Duration
	CircuitBreakerReset     time.Duration

	LogDir   string
	LogLevel string
}

func LoadAppConfig() (AppConfig, error) {
	jwtSecret, err := mustEnv("JWT_SECRET")
	if err != nil {
		return AppConfig{}, err
	}

	if err := validateJWTSecret(jwtSecret); err != nil {
		return AppConfig{}, err
	}

	driver := strings.ToLower(getEnv("STORAGE_DRIVER", constants.DefaultStorageDriver))

	var databaseURL string
	switch driver {
	case DriverPostgres:
		databaseURL, err = mustEnv("DATABASE_URL")
		if err != nil {
			return AppConfig{}, err
		}
	case DriverSQLite:
	default:
		return AppConfig{}, fmt.Errorf("%w: got %q", ErrInvalidDriver, driver)
	}

	return AppConfig{
		HTTPPort:       getEnv("HTTP_PORT", constants.DefaultHTTPPort),
		StorageDriver:  driver,
		DatabaseURL:    databaseURL,
		SQLitePath:     getEnv("SQLITE_PATH", constants.DefaultSQLitePath),
		JWTSecret:      jwtSecret,
		TokenTTL:       getDurationEnv("TOKEN_TTL", constants.DefaultTokenTTL),
		RequestTimeout: getDurationEnv("REQUEST_TIMEOUT", constants.DefaultRequestTimeout),
		QueryTimeout:   getDurationEnv("DB_QUERY_TIMEOUT", constants.DBQueryTimeout),
		BcryptCost:     getIntEnv("BCRYPT_COST", constants.DefaultBcryptCost),

		CircuitBreakerThreshold: getIntEnv("CIRCUIT_BREAKER_THRESHOLD", constants.DefaultCircuitBreakerThreshold),
		CircuitBreakerTimeout:   getDurationEnv("CIRCUIT_BREAKER_TIMEOUT", constants.DefaultCircuitBreakerTimeout),
		CircuitBreakerReset:     getDurationEnv("CIRCUIT_BREAKER_RESET", constants.DefaultCircuitBreakerReset),

		LogDir:   os.Getenv("LOG_DIR"),
		LogLevel: getEnv("LOG_LEVEL", "INFO"),
	}, nil
}

func validateJWTSecret(secret string) error {
	if len(secret) < constants.JWTSecretMinLength {
		return fmt.Errorf("%w: got %d bytes", ErrInvalidJWTSecret, len(secret))
	}
	return nil
}

func getEnv(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return fallback
}

func mustEnv(key string) (string, error) {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return "", fmt.Errorf("%w: %s", ErrMissingRequiredEnv, key)
	}
	return v, nil
}

func getDurationEnv(key string, fallback time.Duration) time.Duration {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return fallback
	}
	d, err := time.ParseDuration(v)
	if err != nil || d <= 0 {
		return fallback
	}
	return d
}

func getIntEnv(key string, fallback int) int {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return fallback
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return i
}
