// Package config loads runtime configuration for the keel service.
// Environment variables take precedence; tenant profiles are loaded
// from YAML files on disk.
package config

import (
	"os"
	"strconv"
	"time"
)

// Config holds service configuration.
type Config struct {
	LogLevel       string
	StoreDriver    string // "sqlite" | "postgres"
	StoreDSN       string
	ArchiveBackend string // "fs" | "s3" | "gcs"
	ArchiveDir     string
	ProfilesDir    string
	TenantCacheMax int
	RateLimit      float64 // evaluations per second per tenant
	RateBurst      int
	OTelEnabled    bool
	OTelEndpoint   string
	AuditClock     func() time.Time
}

// Load loads configuration from environment variables.
func Load() *Config {
	logLevel := os.Getenv("KEEL_LOG_LEVEL")
	if logLevel == "" {
		logLevel = "INFO"
	}

	driver := os.Getenv("KEEL_STORE_DRIVER")
	if driver == "" {
		driver = "sqlite"
	}

	dsn := os.Getenv("KEEL_STORE_DSN")
	if dsn == "" {
		dsn = "file:keel.db?_pragma=journal_mode(WAL)"
	}

	backend := os.Getenv("KEEL_ARCHIVE_BACKEND")
	if backend == "" {
		backend = "fs"
	}

	archiveDir := os.Getenv("KEEL_ARCHIVE_DIR")
	if archiveDir == "" {
		archiveDir = "./baselines"
	}

	profilesDir := os.Getenv("KEEL_PROFILES_DIR")
	if profilesDir == "" {
		profilesDir = "./profiles"
	}

	return &Config{
		LogLevel:       logLevel,
		StoreDriver:    driver,
		StoreDSN:       dsn,
		ArchiveBackend: backend,
		ArchiveDir:     archiveDir,
		ProfilesDir:    profilesDir,
		TenantCacheMax: envInt("KEEL_TENANT_CACHE_MAX", 64),
		RateLimit:      envFloat("KEEL_RATE_LIMIT", 50),
		RateBurst:      envInt("KEEL_RATE_BURST", 100),
		OTelEnabled:    os.Getenv("KEEL_OTEL_ENABLED") == "true",
		OTelEndpoint:   envDefault("KEEL_OTEL_ENDPOINT", "localhost:4317"),
		AuditClock:     time.Now,
	}
}

func envDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}

func envFloat(key string, fallback float64) float64 {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return fallback
	}
	return f
}
