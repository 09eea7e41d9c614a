// Package telemetry wires OpenTelemetry metrics for a single process: an
// explicitly constructed Provider, a narrow Recorder for the parity checker
// and the typed instrument set of the RAG API service.
package telemetry

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/prometheus/client_golang/prometheus"
	"go.opentelemetry.io/otel/attribute"
	promexporter "go.opentelemetry.io/otel/exporters/prometheus"
	"go.opentelemetry.io/otel/exporters/stdout/stdoutmetric"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
)

var (
	// ErrUnknownExporter is returned for an unsupported exporter name.
	ErrUnknownExporter = errors.New("unknown metric exporter")

	// ErrNilContext is returned when Init is called with a nil context.
	ErrNilContext = errors.New("nil context")
)

// Config controls which exporter the Provider uses.
type Config struct {
	// ServiceName identifies this process in exported metrics.
	ServiceName string

	// Exporter is "prometheus", "stdout" or "none".
	Exporter string

	// TextfilePath, when set with the prometheus exporter, receives the
	// registry contents in text exposition format on Shutdown.
	TextfilePath string

	// Writer receives stdout exporter output. Defaults to os.Stdout.
	Writer io.Writer
}

// DefaultConfig returns a configuration that exports nothing.
func DefaultConfig() Config {
	return Config{
		ServiceName: "compose-helm-parity",
		Exporter:    "none",
	}
}

// Provider owns the meter provider for one process run.
type Provider struct {
	cfg      Config
	mp       *sdkmetric.MeterProvider
	registry *prometheus.Registry
}

// Init builds a Provider for cfg. The caller must call Shutdown.
func Init(ctx context.Context, cfg Config) (*Provider, error) {
	if ctx == nil {
		return nil, ErrNilContext
	}

	res := resource.NewWithAttributes(
		"",
		attribute.String("service.name", cfg.ServiceName),
	)

	p := &Provider{cfg: cfg}
	switch cfg.Exporter {
	case "", "none":
		return p, nil

	case "prometheus":
		p.registry = prometheus.NewRegistry()
		exporter, err := promexporter.New(promexporter.WithRegisterer(p.registry))
		if err != nil {
			return nil, fmt.Errorf("create prometheus exporter: %w", err)
		}
		p.mp = sdkmetric.NewMeterProvider(
			sdkmetric.WithResource(res),
			sdkmetric.WithReader(exporter),
		)

	case "stdout":
		w := cfg.Writer
		if w == nil {
			w = os.Stdout
		}
		exporter, err := stdoutmetric.New(stdoutmetric.WithWriter(w), stdoutmetric.WithPrettyPrint())
		if err != nil {
			return nil, fmt.Errorf("create stdout metric exporter: %w", err)
		}
		p.mp = sdkmetric.NewMeterProvider(
			sdkmetric.WithResource(res),
			sdkmetric.WithReader(sdkmetric.NewPeriodicReader(exporter)),
		)

	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownExporter, cfg.Exporter)
	}
	return p, nil
}

// Meter returns a named meter. With no exporter configured it is a no-op meter.
func (p *Provider) Meter(name string) metric.Meter {
	if p == nil || p.mp == nil {
		return noop.NewMeterProvider().Meter(name)
	}
	return p.mp.Meter(name)
}

// Gatherer exposes the prometheus registry, or nil for other exporters.
func (p *Provider) Gatherer() prometheus.Gatherer {
	if p == nil || p.registry == nil {
		return nil
	}
	return p.registry
}

// Shutdown writes the textfile, if configured, and flushes the exporter.
func (p *Provider) Shutdown(ctx context.Context) error {
	if p == nil || p.mp == nil {
		return nil
	}
	var errs []error
	if p.registry != nil && p.cfg.TextfilePath != "" {
		if err := prometheus.WriteToTextfile(p.cfg.TextfilePath, p.registry); err != nil {
			errs = append(errs, fmt.Errorf("write metrics textfile: %w", err))
		}
	}
	if err := p.mp.Shutdown(ctx); err != nil {
		errs = append(errs, fmt.Errorf("shutdown meter provider: %w", err))
	}
	return errors.Join(errs...)
}
