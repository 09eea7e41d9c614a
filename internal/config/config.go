// Package config resolves CLI settings from a .env file and PARITY_*
// environment variables. Flags override what Load returns.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"

	"github.com/justmiles/compose-helm-parity/internal/objectstore"
	"github.com/justmiles/compose-helm-parity/internal/telemetry"
)

type Config struct {
	// Root is the repository root that relative rule paths resolve against.
	Root string
	// RulesFile is an HCL rules file; empty means the built-in table.
	RulesFile string
	// Format is the report format: text, json or yaml.
	Format string
	// ComposeEnvFile supplies interpolation variables for strict linting.
	ComposeEnvFile string

	Metrics telemetry.Config
	S3      objectstore.S3Config
}

// S3Enabled reports whether an object store is configured.
func (c *Config) S3Enabled() bool {
	return c.S3.Endpoint != ""
}

// Load reads .env from the working directory when present and then the
// environment.
func Load() (*Config, error) {
	_ = godotenv.Load()

	metrics := telemetry.DefaultConfig()
	metrics.Exporter = firstNonEmpty(env("PARITY_METRICS_EXPORTER"), metrics.Exporter)
	metrics.TextfilePath = env("PARITY_METRICS_TEXTFILE")

	useSSL, err := parseBool("PARITY_S3_USE_SSL", true)
	if err != nil {
		return nil, err
	}

	return &Config{
		Root:           firstNonEmpty(env("PARITY_ROOT"), "."),
		RulesFile:      env("PARITY_RULES"),
		Format:         firstNonEmpty(env("PARITY_FORMAT"), "text"),
		ComposeEnvFile: env("PARITY_COMPOSE_ENV_FILE"),
		Metrics:        metrics,
		S3: objectstore.S3Config{
			Endpoint:  env("PARITY_S3_ENDPOINT"),
			Region:    firstNonEmpty(env("PARITY_S3_REGION"), "us-east-1"),
			AccessKey: firstNonEmpty(env("PARITY_S3_ACCESS_KEY"), env("MINIO_ROOT_USER")),
			SecretKey: firstNonEmpty(env("PARITY_S3_SECRET_KEY"), env("MINIO_ROOT_PASSWORD")),
			UseSSL:    useSSL,
		},
	}, nil
}

// ComposeEnv returns the variables of ComposeEnvFile, or nil when unset.
func (c *Config) ComposeEnv() (map[string]string, error) {
	if c.ComposeEnvFile == "" {
		return nil, nil
	}
	vars, err := godotenv.Read(c.ComposeEnvFile)
	if err != nil {
		return nil, fmt.Errorf("error reading compose env file: %w", err)
	}
	return vars, nil
}

func env(key string) string {
	return strings.TrimSpace(os.Getenv(key))
}

func parseBool(key string, fallback bool) (bool, error) {
	raw := env(key)
	if raw == "" {
		return fallback, nil
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return false, fmt.Errorf("invalid %s %q: %w", key, raw, err)
	}
	return v, nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
