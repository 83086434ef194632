package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Environment represents the application environment.
type Environment string

const (
	EnvDevelopment Environment = "development"
	EnvStaging     Environment = "staging"
	EnvProduction  Environment = "production"
)

// Config holds all application configuration.
type Config struct {
	// Application
	App AppConfig

	// HTTP adapter
	HTTP HTTPConfig

	// Redis
	Redis RedisConfig

	// Classroom behaviour
	Classroom ClassroomConfig

	// Feature Flags
	Features *FeatureFlags

	// Observability
	Observability ObservabilityConfig
}

// AppConfig holds general application settings.
type AppConfig struct {
	Name        string
	Environment Environment
	Debug       bool
	Version     string

	// Graceful shutdown timeout
	ShutdownTimeout time.Duration
}

// HTTPConfig holds settings of the JSON HTTP adapter.
type HTTPConfig struct {
	Host         string
	Port         int
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration

	// Allowed CORS origins ("*" for any)
	AllowedOrigins []string
}

// Addr returns the listen address.
func (c HTTPConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// RedisConfig holds Redis connection settings.
type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int

	// Pool settings
	PoolSize int

	// Timeouts
	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration

	// How often the full leaderboard is pushed again (0 disables)
	ResyncInterval time.Duration

	// The service runs fully in memory when Redis is disabled
	Disabled bool
}

// ClassroomConfig holds the tunables of the classroom core.
type ClassroomConfig struct {
	// How long a toast stays visible before it is dismissed
	ToastTTL time.Duration

	// Delay before the scripted teacher reply to a parent message
	AutoReplyDelay time.Duration

	// How often stale toasts are swept (0 disables)
	ToastSweepInterval time.Duration

	// Simulated latency of slide generation
	SlideDelay time.Duration

	// Name stamped on signed logbook entries
	SignerName string

	// Start from the demo classroom instead of an empty one
	SeedDemo bool
}

// ObservabilityConfig holds logging settings.
type ObservabilityConfig struct {
	LogLevel  string // debug, info, warn, error
	LogFormat string // json, text
}

// Load loads configuration from environment variables. A .env file in the
// working directory is read first when present; real environment variables
// take precedence over it.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	cfg := &Config{
		App:           loadAppConfig(),
		HTTP:          loadHTTPConfig(),
		Redis:         loadRedisConfig(),
		Classroom:     loadClassroomConfig(),
		Features:      LoadFeatureFlags(),
		Observability: loadObservabilityConfig(),
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation: %w", err)
	}

	return cfg, nil
}

func loadAppConfig() AppConfig {
	env := Environment(getEnv("APP_ENV", "development"))

	return AppConfig{
		Name:            getEnv("APP_NAME", "classroom-hub"),
		Environment:     env,
		Debug:           env == EnvDevelopment || getEnvBool("APP_DEBUG", false),
		Version:         getEnv("APP_VERSION", "0.1.0"),
		ShutdownTimeout: getEnvDuration("APP_SHUTDOWN_TIMEOUT", 15*time.Second),
	}
}

func loadHTTPConfig() HTTPConfig {
	return HTTPConfig{
		Host:           getEnv("HTTP_HOST", "0.0.0.0"),
		Port:           getEnvInt("HTTP_PORT", 8080),
		ReadTimeout:    getEnvDuration("HTTP_READ_TIMEOUT", 10*time.Second),
		WriteTimeout:   getEnvDuration("HTTP_WRITE_TIMEOUT", 30*time.Second),
		IdleTimeout:    getEnvDuration("HTTP_IDLE_TIMEOUT", 60*time.Second),
		AllowedOrigins: getEnvStringSlice("HTTP_ALLOWED_ORIGINS", []string{"*"}),
	}
}

func loadRedisConfig() RedisConfig {
	return RedisConfig{
		Host:           getEnv("REDIS_HOST", "localhost"),
		Port:           getEnvInt("REDIS_PORT", 6379),
		Password:       getEnv("REDIS_PASSWORD", ""),
		DB:             getEnvInt("REDIS_DB", 0),
		PoolSize:       getEnvInt("REDIS_POOL_SIZE", 10),
		DialTimeout:    getEnvDuration("REDIS_DIAL_TIMEOUT", 5*time.Second),
		ReadTimeout:    getEnvDuration("REDIS_READ_TIMEOUT", 3*time.Second),
		WriteTimeout:   getEnvDuration("REDIS_WRITE_TIMEOUT", 3*time.Second),
		ResyncInterval: getEnvDuration("REDIS_RESYNC_INTERVAL", 5*time.Minute),
		Disabled:       getEnvBool("REDIS_DISABLED", true),
	}
}

func loadClassroomConfig() ClassroomConfig {
	return ClassroomConfig{
		ToastTTL:           getEnvDuration("CLASSROOM_TOAST_TTL", 3*time.Second),
		ToastSweepInterval: getEnvDuration("CLASSROOM_TOAST_SWEEP_INTERVAL", 30*time.Second),
		AutoReplyDelay:     getEnvDuration("CLASSROOM_AUTO_REPLY_DELAY", 1500*time.Millisecond),
		SlideDelay:         getEnvDuration("CLASSROOM_SLIDE_DELAY", 2*time.Second),
		SignerName:         getEnv("CLASSROOM_SIGNER_NAME", "Cô Lan"),
		SeedDemo:           getEnvBool("CLASSROOM_SEED_DEMO", true),
	}
}

func loadObservabilityConfig() ObservabilityConfig {
	return ObservabilityConfig{
		LogLevel:  getEnv("LOG_LEVEL", "info"),
		LogFormat: getEnv("LOG_FORMAT", "json"),
	}
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	var errs []string

	if c.HTTP.Port < 1 || c.HTTP.Port > 65535 {
		errs = append(errs, "HTTP_PORT must be 1-65535")
	}

	if !c.Redis.Disabled && c.Redis.Host == "" {
		errs = append(errs, "REDIS_HOST is required when Redis is enabled")
	}

	if c.Classroom.ToastTTL < 0 {
		errs = append(errs, "CLASSROOM_TOAST_TTL must not be negative")
	}
	if c.Classroom.AutoReplyDelay < 0 {
		errs = append(errs, "CLASSROOM_AUTO_REPLY_DELAY must not be negative")
	}
	if c.Classroom.SlideDelay < 0 {
		errs = append(errs, "CLASSROOM_SLIDE_DELAY must not be negative")
	}
	if strings.TrimSpace(c.Classroom.SignerName) == "" {
		errs = append(errs, "CLASSROOM_SIGNER_NAME must not be empty")
	}

	switch strings.ToLower(c.Observability.LogLevel) {
	case "debug", "info", "warn", "error":
	default:
		errs = append(errs, "LOG_LEVEL must be one of debug, info, warn, error")
	}

	if len(errs) > 0 {
		return fmt.Errorf("configuration errors:\n  - %s", strings.Join(errs, "\n  - "))
	}

	return nil
}

// IsDevelopment returns true if running in development mode.
func (c *Config) IsDevelopment() bool {
	return c.App.Environment == EnvDevelopment
}

// IsProduction returns true if running in production mode.
func (c *Config) IsProduction() bool {
	return c.App.Environment == EnvProduction
}

// --- Helper functions for environment variable parsing ---

func getEnv(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

func getEnvBool(key string, defaultVal bool) bool {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal
	}
	b, err := strconv.ParseBool(val)
	if err != nil {
		return defaultVal
	}
	return b
}

func getEnvInt(key string, defaultVal int) int {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal
	}
	i, err := strconv.Atoi(val)
	if err != nil {
		return defaultVal
	}
	return i
}

func getEnvDuration(key string, defaultVal time.Duration) time.Duration {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal
	}
	d, err := time.ParseDuration(val)
	if err != nil {
		return defaultVal
	}
	return d
}

func getEnvStringSlice(key string, defaultVal []string) []string {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal
	}

	parts := strings.Split(val, ",")
	result := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			result = append(result, p)
		}
	}
	return result
}
