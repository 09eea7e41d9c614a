package parity

import (
	"context"
	"fmt"
	"sort"
	"time"

	"go.uber.org/zap"

	"github.com/justmiles/compose-helm-parity/internal/dockercompose"
	"github.com/justmiles/compose-helm-parity/internal/document"
	"github.com/justmiles/compose-helm-parity/internal/identity"
	"github.com/justmiles/compose-helm-parity/internal/resource"
	"github.com/justmiles/compose-helm-parity/internal/telemetry"
)

// Metric names recorded by Checker.Run.
const (
	MetricServicesChecked = "parity_services_checked_total"
	MetricMismatches      = "parity_mismatches"
	MetricRunDuration     = "parity_run_duration_ms"
)

// Checker runs a Table against documents read through a resource.Loader.
type Checker struct {
	loader   *resource.Loader
	recorder telemetry.Recorder
	logger   *zap.Logger

	// strict validates each compose file with compose-go before reconciling.
	strict  bool
	lintEnv map[string]string
}

// Option configures a Checker.
type Option func(*Checker)

// WithRecorder sets the metrics recorder. The default discards metrics.
func WithRecorder(r telemetry.Recorder) Option {
	return func(c *Checker) { c.recorder = r }
}

// WithLogger sets the logger. The default is a no-op logger.
func WithLogger(l *zap.Logger) Option {
	return func(c *Checker) { c.logger = l }
}

// WithStrict validates compose files against the compose schema, interpolating
// variables from env.
func WithStrict(env map[string]string) Option {
	return func(c *Checker) {
		c.strict = true
		c.lintEnv = env
	}
}

func NewChecker(loader *resource.Loader, opts ...Option) *Checker {
	c := &Checker{loader: loader}
	for _, opt := range opts {
		opt(c)
	}
	if c.recorder == nil {
		c.recorder = telemetry.NopRecorder{}
	}
	if c.logger == nil {
		c.logger = zap.NewNop()
	}
	if c.loader == nil {
		c.loader = &resource.Loader{}
	}
	return c
}

// Run reconciles every rule set and identity pair of table. The returned
// error is reserved for documents that cannot be read or parsed; every other
// finding is collected in the Report.
func (c *Checker) Run(ctx context.Context, table *Table) (*Report, error) {
	start := time.Now()

	values, err := c.load(ctx, table.ValuesFile)
	if err != nil {
		return nil, err
	}

	report := &Report{}
	for _, set := range table.RuleSets {
		if err := c.runSet(ctx, values, set, report); err != nil {
			return nil, err
		}
	}

	for _, pair := range table.Identities {
		if err := identity.Check(ctx, c.loader, pair); err != nil {
			c.logger.Warn("identity check failed", zap.String("name", pair.Name), zap.Error(err))
			report.Errors = append(report.Errors, err)
		}
	}

	for _, ref := range report.Uncovered {
		c.logger.Info("compose service has no parity rule", zap.String("file", ref.File), zap.String("service", ref.Service))
	}

	c.recorder.SetGauge(MetricMismatches, float64(len(report.Mismatches)))
	c.recorder.RecordHistogram(MetricRunDuration, float64(time.Since(start).Microseconds())/1000)
	c.logger.Info("parity check finished",
		zap.Bool("ok", report.OK()),
		zap.Int("mismatches", len(report.Mismatches)),
		zap.Int("errors", len(report.Errors)),
		zap.Duration("elapsed", time.Since(start)),
	)
	return report, nil
}

func (c *Checker) runSet(ctx context.Context, values document.Tree, set RuleSet, report *Report) error {
	res, err := c.loader.Read(ctx, set.ComposeFile)
	if err != nil {
		return err
	}
	doc, err := document.Load(set.ComposeFile, res.Content)
	if err != nil {
		return err
	}

	if c.strict {
		if err := dockercompose.Lint(set.ComposeFile, res.Content, c.lintEnv); err != nil {
			report.Errors = append(report.Errors, &StructuralError{File: set.ComposeFile, Reason: err.Error()})
		}
	}

	services := dockercompose.Services(doc)
	covered := make(map[string]bool, len(set.Rules))
	for _, rule := range set.Rules {
		covered[rule.Service] = true

		mismatches, err := CheckService(values, services, set.ComposeFile, rule)
		report.Mismatches = append(report.Mismatches, mismatches...)
		if err != nil {
			report.Errors = append(report.Errors, err)
		}

		result := "pass"
		if err != nil || len(mismatches) > 0 {
			result = "fail"
		}
		c.recorder.Increment(MetricServicesChecked, map[string]string{
			"file":    set.ComposeFile,
			"service": rule.Service,
			"result":  result,
		})
		c.logger.Debug("service checked",
			zap.String("file", set.ComposeFile),
			zap.String("service", rule.Service),
			zap.String("result", result),
			zap.Int("mismatches", len(mismatches)),
		)
	}

	names := make([]string, 0, len(services))
	for name := range services {
		if !covered[name] {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	for _, name := range names {
		report.Uncovered = append(report.Uncovered, ServiceRef{File: set.ComposeFile, Service: name})
	}
	return nil
}

func (c *Checker) load(ctx context.Context, ref string) (document.Tree, error) {
	if ref == "" {
		return nil, fmt.Errorf("no values file configured")
	}
	res, err := c.loader.Read(ctx, ref)
	if err != nil {
		return nil, err
	}
	return document.Load(ref, res.Content)
}
