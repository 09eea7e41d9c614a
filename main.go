//go:build !js

package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/justmiles/compose-helm-parity/internal/config"
	"github.com/justmiles/compose-helm-parity/internal/objectstore"
	"github.com/justmiles/compose-helm-parity/internal/resource"
)

// errChecksFailed signals a finished run with findings. The findings are
// already on stdout, so main only sets the exit code.
var errChecksFailed = errors.New("parity checks failed")

var (
	verbose bool
	logger  *zap.Logger
	cfg     *config.Config
)

var rootCmd = &cobra.Command{
	Use:   "compose-helm-parity",
	Short: "Check that docker-compose files and a Helm chart describe the same deployment",
	Long: `Compares container images, environment variables and secret wiring of
docker-compose services against the values of a Helm chart, and verifies that
files copied into the chart are identical to their sources.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		zapConfig := zap.NewProductionConfig()
		if verbose {
			zapConfig.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
		}
		var err error
		logger, err = zapConfig.Build()
		if err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}

		cfg, err = config.Load()
		if err != nil {
			return fmt.Errorf("failed to load configuration: %w", err)
		}
		return applyFlags(cmd)
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
	rootCmd.PersistentFlags().String("root", "", "repository root for relative paths (env PARITY_ROOT)")
	rootCmd.PersistentFlags().String("compose-env-file", "", "variables for compose interpolation (env PARITY_COMPOSE_ENV_FILE)")

	rootCmd.AddCommand(checkCmd, identityCmd, scaffoldCmd, lintCmd)
}

// applyFlags lets flags that were set on the command line override cfg.
func applyFlags(cmd *cobra.Command) error {
	overrides := []struct {
		flag   string
		target *string
	}{
		{"root", &cfg.Root},
		{"compose-env-file", &cfg.ComposeEnvFile},
		{"rules", &cfg.RulesFile},
		{"format", &cfg.Format},
		{"metrics-exporter", &cfg.Metrics.Exporter},
		{"metrics-textfile", &cfg.Metrics.TextfilePath},
	}
	for _, o := range overrides {
		f := cmd.Flags().Lookup(o.flag)
		if f == nil || !f.Changed {
			continue
		}
		*o.target = f.Value.String()
	}
	return nil
}

// newLoader returns a resource loader rooted at cfg.Root, backed by an object
// store when one is configured.
func newLoader() (*resource.Loader, error) {
	loader := &resource.Loader{Root: cfg.Root}
	if !cfg.S3Enabled() {
		return loader, nil
	}
	store, err := objectstore.NewMinioStore(cfg.S3)
	if err != nil {
		return nil, err
	}
	logger.Debug("object store enabled", zap.String("endpoint", cfg.S3.Endpoint))
	loader.Store = store
	return loader, nil
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		if !errors.Is(err, errChecksFailed) {
			fmt.Fprintln(os.Stderr, "Error:", err)
		}
		os.Exit(1)
	}
}
