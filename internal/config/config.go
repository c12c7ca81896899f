// Package config reads process settings from the environment, optionally seeded from a .env file.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/soaringjerry/mindscope/internal/utils"
)

type StoreKind string

const (
	StoreMemory   StoreKind = "memory"
	StoreSQLite   StoreKind = "sqlite"
	StorePostgres StoreKind = "postgres"
)

const devJWTSecret = "mindscope-dev-secret"

type Config struct {
	Addr            string
	Env             string
	Store           StoreKind
	SQLitePath      string
	SnapshotPath    string
	MigrationsDir   string
	DatabaseURL     string
	JWTSecret       string
	TokenTTL        time.Duration
	InstrumentsYAML string
	SeedCatalog     bool
	StaticDir       string
	DevFrontendURL  string
	CORSOrigins     []string
	Commit          string
	BuildTime       string
}

// Load reads envFiles (missing files are skipped) and then the environment.
// Variables already set in the environment win over .env values.
func Load(envFiles ...string) (*Config, error) {
	if len(envFiles) == 0 {
		envFiles = []string{".env"}
	}
	for _, f := range envFiles {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("load %s: %w", f, err)
		}
	}
	return FromEnv()
}

// FromEnv builds a Config from the current environment only.
func FromEnv() (*Config, error) {
	cfg := &Config{
		Addr:            utils.SafeEnv("MINDSCOPE_ADDR", ":8080"),
		Env:             utils.SafeEnv("MINDSCOPE_ENV", "development"),
		Store:           StoreKind(strings.ToLower(utils.SafeEnv("MINDSCOPE_STORE", string(StoreMemory)))),
		SQLitePath:      utils.SafeEnv("MINDSCOPE_SQLITE_PATH", "data/mindscope.db"),
		SnapshotPath:    utils.SafeEnv("MINDSCOPE_SNAPSHOT_PATH", ""),
		MigrationsDir:   utils.SafeEnv("MINDSCOPE_MIGRATIONS_DIR", ""),
		DatabaseURL:     utils.SafeEnv("MINDSCOPE_DATABASE_URL", ""),
		JWTSecret:       utils.SafeEnv("MINDSCOPE_JWT_SECRET", devJWTSecret),
		TokenTTL:        time.Duration(utils.SafeEnvInt("MINDSCOPE_TOKEN_TTL_HOURS", 720)) * time.Hour,
		InstrumentsYAML: utils.SafeEnv("MINDSCOPE_INSTRUMENTS_YAML", ""),
		SeedCatalog:     utils.SafeEnvBool("MINDSCOPE_SEED_CATALOG", true),
		StaticDir:       utils.SafeEnv("MINDSCOPE_STATIC_DIR", ""),
		DevFrontendURL:  utils.SafeEnv("MINDSCOPE_DEV_FRONTEND_URL", ""),
		CORSOrigins:     splitList(utils.SafeEnv("MINDSCOPE_CORS_ORIGINS", "")),
		Commit:          utils.SafeEnv("MINDSCOPE_COMMIT", ""),
		BuildTime:       utils.SafeEnv("MINDSCOPE_BUILD_TIME", ""),
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func (c *Config) Production() bool {
	switch strings.ToLower(c.Env) {
	case "prod", "production":
		return true
	}
	return false
}

// Validate rejects combinations the server cannot start with.
func (c *Config) Validate() error {
	var errs []error
	switch c.Store {
	case StoreMemory, StoreSQLite:
	case StorePostgres:
		if c.DatabaseURL == "" {
			errs = append(errs, errors.New("MINDSCOPE_DATABASE_URL is required for the postgres store"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown MINDSCOPE_STORE %q", c.Store))
	}
	if c.TokenTTL <= 0 {
		errs = append(errs, errors.New("MINDSCOPE_TOKEN_TTL_HOURS must be positive"))
	}
	if c.Production() && c.JWTSecret == devJWTSecret {
		errs = append(errs, errors.New("MINDSCOPE_JWT_SECRET must be set in production"))
	}
	return errors.Join(errs...)
}
