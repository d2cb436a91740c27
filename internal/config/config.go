package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/cmlabs-hris/attendance-backend-go/internal/pkg/geo"
	"github.com/joho/godotenv"
)

type Config struct {
	App         AppConfig
	Database    DatabaseConfig
	JWT         JWTConfig
	CORS        CORSConfig
	Policy      PolicyConfig
	Geo         GeoConfig
	Sweeper     SweeperConfig
	Concurrency ConcurrencyConfig
	Storage     StorageConfig
	Alert       AlertConfig
	Telemetry   TelemetryConfig
}

// AppConfig holds application configuration
type AppConfig struct {
	Port     int
	Env      string
	LogLevel string
	Timezone *time.Location
}

type DatabaseConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	Name     string
	SSLMode  string
	MaxConns int32
	MinConns int32
}

// JWTConfig holds JWT configuration
type JWTConfig struct {
	Secret           string
	AccessExpiration string
}

type CORSConfig struct {
	AllowedOrigins []string
}

// PolicyConfig holds the attendance classification rules
type PolicyConfig struct {
	MinShift         time.Duration
	MaxShift         time.Duration
	MaxOpenShift     time.Duration
	CorrectionWindow time.Duration
}

// GeoConfig lists allowed sites. No sites means every coordinate is accepted.
type GeoConfig struct {
	Sites []geo.Site
}

type SweeperConfig struct {
	Interval time.Duration
}

type ConcurrencyConfig struct {
	LockTimeout time.Duration
	RetryMax    uint
}

const (
	StorageMemory   = "memory"
	StoragePostgres = "postgres"
)

type StorageConfig struct {
	Driver string
}

type AlertConfig struct {
	SQSQueueURL string
	AWSRegion   string
	AWSEndpoint string
}

type TelemetryConfig struct {
	TraceExporter string
}

func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("error loading .env file: %w", err)
	} else if err != nil {
		slog.Debug("no .env file found, using environment only")
	}

	config := &Config{}
	var err error

	// Application configuration
	appPort, err := strconv.Atoi(getEnv("APP_PORT", "8080"))
	if err != nil {
		return nil, fmt.Errorf("invalid APP_PORT: %w", err)
	}
	tz, err := time.LoadLocation(getEnv("APP_TIMEZONE", "UTC"))
	if err != nil {
		return nil, fmt.Errorf("invalid APP_TIMEZONE: %w", err)
	}
	config.App = AppConfig{
		Port:     appPort,
		Env:      getEnv("APP_ENV", "development"),
		LogLevel: getEnv("LOG_LEVEL", "info"),
		Timezone: tz,
	}

	// Database configuration
	dbPort, err := strconv.Atoi(getEnv("DB_PORT", "5432"))
	if err != nil {
		return nil, fmt.Errorf("invalid DB_PORT: %w", err)
	}
	maxConns, err := strconv.Atoi(getEnv("DB_MAX_CONNS", "25"))
	if err != nil {
		return nil, fmt.Errorf("invalid DB_MAX_CONNS: %w", err)
	}
	minConns, err := strconv.Atoi(getEnv("DB_MIN_CONNS", "5"))
	if err != nil {
		return nil, fmt.Errorf("invalid DB_MIN_CONNS: %w", err)
	}
	config.Database = DatabaseConfig{
		Host:     getEnv("DB_HOST", "localhost"),
		Port:     dbPort,
		User:     getEnv("DB_USER", "postgres"),
		Password: getEnv("DB_PASSWORD", ""),
		Name:     getEnv("DB_NAME", "attendance"),
		SSLMode:  getEnv("DB_SSL_MODE", "disable"),
		MaxConns: int32(maxConns),
		MinConns: int32(minConns),
	}

	// JWT configuration
	config.JWT = JWTConfig{
		Secret:           getEnv("JWT_SECRET_KEY", ""),
		AccessExpiration: getEnv("JWT_ACCESS_EXPIRATION_TIME", "1h"),
	}

	config.CORS = CORSConfig{
		AllowedOrigins: getEnvSlice("CORS_ALLOWED_ORIGINS", []string{"http://localhost:3000"}),
	}

	// Policy configuration
	if config.Policy.MinShift, err = getEnvDuration("POLICY_MIN_SHIFT", "1h"); err != nil {
		return nil, err
	}
	if config.Policy.MaxShift, err = getEnvDuration("POLICY_MAX_SHIFT", "10h"); err != nil {
		return nil, err
	}
	if config.Policy.MaxOpenShift, err = getEnvDuration("POLICY_MAX_OPEN_SHIFT", "14h"); err != nil {
		return nil, err
	}
	if config.Policy.CorrectionWindow, err = getEnvDuration("CORRECTION_WINDOW", "48h"); err != nil {
		return nil, err
	}

	sites, err := geo.ParseSites(getEnv("GEO_SITES", ""))
	if err != nil {
		return nil, fmt.Errorf("invalid GEO_SITES: %w", err)
	}
	config.Geo = GeoConfig{Sites: sites}

	if config.Sweeper.Interval, err = getEnvDuration("SWEEP_INTERVAL", "5m"); err != nil {
		return nil, err
	}

	// Concurrency configuration
	if config.Concurrency.LockTimeout, err = getEnvDuration("LOCK_TIMEOUT", "2s"); err != nil {
		return nil, err
	}
	retryMax, err := strconv.ParseUint(getEnv("RETRY_MAX", "3"), 10, 32)
	if err != nil {
		return nil, fmt.Errorf("invalid RETRY_MAX: %w", err)
	}
	config.Concurrency.RetryMax = uint(retryMax)

	config.Storage = StorageConfig{
		Driver: strings.ToLower(getEnv("STORAGE_DRIVER", StorageMemory)),
	}

	config.Alert = AlertConfig{
		SQSQueueURL: getEnv("ALERT_SQS_QUEUE_URL", ""),
		AWSRegion:   getEnv("AWS_REGION", "us-east-1"),
		AWSEndpoint: getEnv("AWS_ENDPOINT", ""),
	}

	config.Telemetry = TelemetryConfig{
		TraceExporter: getEnv("OTEL_TRACES_EXPORTER", "none"),
	}

	// Validate required fields
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return config, nil
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.JWT.Secret == "" {
		return fmt.Errorf("JWT_SECRET_KEY is required")
	}
	switch c.Storage.Driver {
	case StorageMemory:
	case StoragePostgres:
		if c.Database.Password == "" {
			return fmt.Errorf("DB_PASSWORD is required when STORAGE_DRIVER=postgres")
		}
	default:
		return fmt.Errorf("STORAGE_DRIVER must be %q or %q", StorageMemory, StoragePostgres)
	}
	if c.Policy.MinShift < 0 || c.Policy.MaxShift <= c.Policy.MinShift {
		return fmt.Errorf("POLICY_MAX_SHIFT must be greater than POLICY_MIN_SHIFT")
	}
	if c.Policy.MaxOpenShift <= 0 {
		return fmt.Errorf("POLICY_MAX_OPEN_SHIFT must be positive")
	}
	if c.Policy.CorrectionWindow <= 0 {
		return fmt.Errorf("CORRECTION_WINDOW must be positive")
	}
	if c.Sweeper.Interval <= 0 {
		return fmt.Errorf("SWEEP_INTERVAL must be positive")
	}
	if c.Concurrency.LockTimeout <= 0 {
		return fmt.Errorf("LOCK_TIMEOUT must be positive")
	}
	if c.Concurrency.RetryMax == 0 {
		return fmt.Errorf("RETRY_MAX must be at least 1")
	}
	if c.Telemetry.TraceExporter != "none" && c.Telemetry.TraceExporter != "stdout" {
		return fmt.Errorf("OTEL_TRACES_EXPORTER must be none or stdout")
	}
	return nil
}

// DatabaseURL returns the PostgreSQL connection string
func (c *Config) DatabaseURL() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s",
		c.Database.User,
		c.Database.Password,
		c.Database.Host,
		c.Database.Port,
		c.Database.Name,
		c.Database.SSLMode,
	)
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getEnvSlice(key string, fallback []string) []string {
	value := getEnv(key, "")
	if value == "" {
		return fallback
	}
	var result []string
	for _, item := range strings.Split(value, ",") {
		if item = strings.TrimSpace(item); item != "" {
			result = append(result, item)
		}
	}
	return result
}

func getEnvDuration(key, fallback string) (time.Duration, error) {
	d, err := time.ParseDuration(getEnv(key, fallback))
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return d, nil
}
