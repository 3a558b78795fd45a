// Package config provides application configuration loaded from environment variables.
// Use the package-level Get() function to obtain the singleton Config instance.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"sync"
	"time"
)

// ──────────────────────────────────────────────────────────────────────────────
// Sub-config structs
// ──────────────────────────────────────────────────────────────────────────────

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Host         string        // default "127.0.0.1"
	Port         string        // e.g. "8765"
	Env          string        // "development" | "production"
	ReadTimeout  time.Duration // default 10s
	WriteTimeout time.Duration // default 10s
}

// DBConfig holds PostgreSQL connection settings.
type DBConfig struct {
	DSN             string        // full postgres DSN
	MaxOpenConns    int           // default 25
	MaxIdleConns    int           // default 10
	ConnMaxLifetime time.Duration // default 5m
}

// HarvesterConfig holds settings for the external odds-harvester process.
type HarvesterConfig struct {
	Path          string        // working directory of the harvester checkout
	PythonBin     string        // interpreter used to invoke it, default "python3"
	ScrapeTimeout time.Duration // hard per-fetch timeout, default 5m
	ProbeTimeout  time.Duration // health-probe timeout, default 30s
}

// EngineConfig holds job-engine scheduling settings.
type EngineConfig struct {
	MaxWorkers   int           // upper clamp on concurrent jobs, default 3
	PerWorkerGB  float64       // memory budget per harvester process, default 2
	PollInterval time.Duration // coordinator tick, default 30s
	ErrorBackoff time.Duration // pause after a coordinator error, default 60s
}

// CacheConfig holds league-data cache settings.
type CacheConfig struct {
	RetentionDays int           // default 30
	SweepInterval time.Duration // eviction tick, default 24h
	ProbeInterval time.Duration // harvester health-probe tick, default 6h
}

// ──────────────────────────────────────────────────────────────────────────────
// Top-level Config
// ──────────────────────────────────────────────────────────────────────────────

// Config is the root configuration object for the entire application.
type Config struct {
	Server    ServerConfig
	DB        DBConfig
	Harvester HarvesterConfig
	Engine    EngineConfig
	Cache     CacheConfig
}

// IsProd returns true when running in the production environment.
func (c *Config) IsProd() bool {
	return c.Server.Env == "production"
}

// Validate checks that all required configuration values are present and valid.
// Returns the first validation error encountered.
func (c *Config) Validate() error {
	var errs []error

	if c.Harvester.Path == "" {
		errs = append(errs, errors.New("HARVESTER_PATH must be set"))
	}
	if c.IsProd() && c.DB.DSN == "" {
		errs = append(errs, errors.New("DATABASE_DSN must be set in production"))
	}
	if c.Engine.MaxWorkers < 1 {
		errs = append(errs, fmt.Errorf("ENGINE_MAX_WORKERS must be >= 1, got %d", c.Engine.MaxWorkers))
	}
	if c.Engine.PerWorkerGB <= 0 {
		errs = append(errs, fmt.Errorf("ENGINE_PER_WORKER_GB must be > 0, got %.2f", c.Engine.PerWorkerGB))
	}
	if c.Cache.RetentionDays < 0 {
		errs = append(errs, fmt.Errorf("CACHE_RETENTION_DAYS must be >= 0, got %d", c.Cache.RetentionDays))
	}

	if len(errs) > 0 {
		return errors.Join(errs...)
	}
	return nil
}

// ──────────────────────────────────────────────────────────────────────────────
// Singleton
// ──────────────────────────────────────────────────────────────────────────────

var (
	instance *Config
	once     sync.Once
	loadErr  error
)

// Get returns the singleton Config, loading it once from environment variables.
// Panics if loading fails — call this early in main() to catch misconfigurations
// at startup.
func Get() *Config {
	once.Do(func() {
		instance, loadErr = load()
	})
	if loadErr != nil {
		panic(fmt.Sprintf("config: failed to load: %v", loadErr))
	}
	return instance
}

// MustLoad loads and validates configuration. Intended for use in main().
// Panics on any error so misconfiguration is caught immediately at boot.
func MustLoad() *Config {
	cfg := Get()
	if err := cfg.Validate(); err != nil {
		panic(fmt.Sprintf("config: validation failed: %v", err))
	}
	return cfg
}

// ──────────────────────────────────────────────────────────────────────────────
// Internal loader
// ──────────────────────────────────────────────────────────────────────────────

func load() (*Config, error) {
	cfg := &Config{}

	// ── Server ────────────────────────────────────────────────────────────────
	cfg.Server = ServerConfig{
		Host:         getEnv("SERVER_HOST", "127.0.0.1"),
		Port:         getEnv("SERVER_PORT", "8765"),
		Env:          getEnv("ENVIRONMENT", "development"),
		ReadTimeout:  getDuration("SERVER_READ_TIMEOUT", 10*time.Second),
		WriteTimeout: getDuration("SERVER_WRITE_TIMEOUT", 10*time.Second),
	}

	// ── Database ──────────────────────────────────────────────────────────────
	dsn := os.Getenv("DATABASE_DSN")
	if dsn == "" {
		// Build DSN from individual components for convenience in dev
		dsn = fmt.Sprintf(
			"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
			getEnv("DB_HOST", "localhost"),
			getEnv("DB_PORT", "5432"),
			getEnv("DB_USER", "postgres"),
			getEnv("DB_PASSWORD", ""),
			getEnv("DB_NAME", "clv_cache"),
			getEnv("DB_SSLMODE", "disable"),
		)
	}

	maxOpen, err := getInt("DB_MAX_OPEN_CONNS", 25)
	if err != nil {
		return nil, fmt.Errorf("DB_MAX_OPEN_CONNS: %w", err)
	}
	maxIdle, err := getInt("DB_MAX_IDLE_CONNS", 10)
	if err != nil {
		return nil, fmt.Errorf("DB_MAX_IDLE_CONNS: %w", err)
	}

	cfg.DB = DBConfig{
		DSN:             dsn,
		MaxOpenConns:    maxOpen,
		MaxIdleConns:    maxIdle,
		ConnMaxLifetime: getDuration("DB_CONN_MAX_LIFETIME", 5*time.Minute),
	}

	// ── Harvester ─────────────────────────────────────────────────────────────
	cfg.Harvester = HarvesterConfig{
		Path:          getEnv("HARVESTER_PATH", "./OddsHarvester"),
		PythonBin:     getEnv("HARVESTER_PYTHON", "python3"),
		ScrapeTimeout: getDuration("HARVESTER_SCRAPE_TIMEOUT", 5*time.Minute),
		ProbeTimeout:  getDuration("HARVESTER_PROBE_TIMEOUT", 30*time.Second),
	}

	// ── Engine ────────────────────────────────────────────────────────────────
	maxWorkers, err := getInt("ENGINE_MAX_WORKERS", 3)
	if err != nil {
		return nil, fmt.Errorf("ENGINE_MAX_WORKERS: %w", err)
	}
	perWorkerGB, err := getFloat("ENGINE_PER_WORKER_GB", 2)
	if err != nil {
		return nil, fmt.Errorf("ENGINE_PER_WORKER_GB: %w", err)
	}

	cfg.Engine = EngineConfig{
		MaxWorkers:   maxWorkers,
		PerWorkerGB:  perWorkerGB,
		PollInterval: getDuration("ENGINE_POLL_INTERVAL", 30*time.Second),
		ErrorBackoff: getDuration("ENGINE_ERROR_BACKOFF", 60*time.Second),
	}

	// ── Cache ─────────────────────────────────────────────────────────────────
	retention, err := getInt("CACHE_RETENTION_DAYS", 30)
	if err != nil {
		return nil, fmt.Errorf("CACHE_RETENTION_DAYS: %w", err)
	}

	cfg.Cache = CacheConfig{
		RetentionDays: retention,
		SweepInterval: getDuration("CACHE_SWEEP_INTERVAL", 24*time.Hour),
		ProbeInterval: getDuration("HARVESTER_PROBE_INTERVAL", 6*time.Hour),
	}

	return cfg, nil
}

// ──────────────────────────────────────────────────────────────────────────────
// Env helpers
// ──────────────────────────────────────────────────────────────────────────────

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getInt(key string, fallback int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("invalid integer %q: %w", v, err)
	}
	return n, nil
}

func getFloat(key string, fallback float64) (float64, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid float %q: %w", v, err)
	}
	return f, nil
}

func getDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil && d > 0 {
			return d
		}
	}
	return fallback
}
