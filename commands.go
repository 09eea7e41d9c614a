//go:build !js

package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/hashicorp/go-multierror"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/justmiles/compose-helm-parity/internal/converter"
	"github.com/justmiles/compose-helm-parity/internal/dockercompose"
	"github.com/justmiles/compose-helm-parity/internal/identity"
	"github.com/justmiles/compose-helm-parity/internal/parity"
	"github.com/justmiles/compose-helm-parity/internal/resource"
	"github.com/justmiles/compose-helm-parity/internal/telemetry"
)

var strict bool

var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Reconcile compose services with the Helm values",
	Long: `Runs every rule of the rule table and prints the findings. Without --rules
the built-in table of the RAG blueprint repository is used.

Exits non-zero when any rule fails or a document cannot be read.`,
	Args: cobra.NoArgs,
	RunE: runCheck,
}

var identityCmd = &cobra.Command{
	Use:   "identity <source> <copy>",
	Short: "Verify that a copied file still matches its source",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		loader, err := newLoader()
		if err != nil {
			return err
		}
		pair := identity.Pair{Name: filepath.Base(args[0]), Source: args[0], Copy: args[1]}
		if err := identity.Check(cmd.Context(), loader, pair); err != nil {
			return err
		}
		logger.Info("files are identical", zap.String("source", args[0]), zap.String("copy", args[1]))
		return nil
	},
}

var scaffoldCmd = &cobra.Command{
	Use:   "scaffold <compose-file>",
	Short: "Generate a starting rules file for a compose file",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		loader, err := newLoader()
		if err != nil {
			return err
		}
		res, err := loader.Read(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		valuesFile, _ := cmd.Flags().GetString("values")
		out, err := converter.ScaffoldRules(valuesFile, res.Name, res.Content)
		if err != nil {
			return err
		}

		output, _ := cmd.Flags().GetString("output")
		if output == "" {
			_, err = fmt.Fprint(cmd.OutOrStdout(), out)
			return err
		}
		return os.WriteFile(output, []byte(out), 0o644)
	},
}

var lintCmd = &cobra.Command{
	Use:   "lint <compose-file>...",
	Short: "Validate compose files against the compose schema",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		loader, err := newLoader()
		if err != nil {
			return err
		}
		env, err := cfg.ComposeEnv()
		if err != nil {
			return err
		}

		var result *multierror.Error
		for _, ref := range args {
			res, err := loader.Read(cmd.Context(), ref)
			if err == nil {
				err = dockercompose.Lint(res.Name, res.Content, env)
			}
			if err != nil {
				result = multierror.Append(result, err)
				continue
			}
			logger.Debug("compose file is valid", zap.String("file", ref))
		}
		return result.ErrorOrNil()
	},
}

func init() {
	checkCmd.Flags().String("rules", "", "HCL rules file (env PARITY_RULES)")
	checkCmd.Flags().String("format", "text", "report format: text, json or yaml (env PARITY_FORMAT)")
	checkCmd.Flags().String("metrics-exporter", "none", "metrics exporter: prometheus, stdout or none (env PARITY_METRICS_EXPORTER)")
	checkCmd.Flags().String("metrics-textfile", "", "write prometheus metrics to this file on exit (env PARITY_METRICS_TEXTFILE)")
	checkCmd.Flags().BoolVar(&strict, "strict", false, "validate compose files with the compose loader before checking")

	scaffoldCmd.Flags().String("values", "values.yaml", "values file the generated rules point at")
	scaffoldCmd.Flags().StringP("output", "o", "", "write the rules to this file instead of stdout")
}

func runCheck(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	loader, err := newLoader()
	if err != nil {
		return err
	}
	table, err := loadTable(ctx, loader)
	if err != nil {
		return err
	}

	provider, err := telemetry.Init(ctx, cfg.Metrics)
	if err != nil {
		return err
	}
	defer func() {
		if err := provider.Shutdown(context.Background()); err != nil {
			logger.Warn("failed to flush metrics", zap.Error(err))
		}
	}()

	opts := []parity.Option{
		parity.WithLogger(logger),
		parity.WithRecorder(telemetry.NewOtelRecorder(provider.Meter("compose-helm-parity"), logger)),
	}
	if strict {
		env, err := cfg.ComposeEnv()
		if err != nil {
			return err
		}
		opts = append(opts, parity.WithStrict(env))
	}

	report, err := parity.NewChecker(loader, opts...).Run(ctx, table)
	if err != nil {
		return err
	}
	if err := report.Write(cmd.OutOrStdout(), cfg.Format); err != nil {
		return err
	}
	if !report.OK() {
		return errChecksFailed
	}
	return nil
}

// loadTable returns the rules named by cfg.RulesFile, or the built-in table.
func loadTable(ctx context.Context, loader *resource.Loader) (*parity.Table, error) {
	if cfg.RulesFile == "" {
		logger.Debug("using the built-in rule table")
		return parity.DefaultTable(), nil
	}
	res, err := loader.Read(ctx, cfg.RulesFile)
	if err != nil {
		return nil, err
	}
	return parity.LoadRules(res.Name, res.Content)
}
