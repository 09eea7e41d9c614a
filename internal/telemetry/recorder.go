package telemetry

import (
	"context"
	"sort"
	"sync"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.uber.org/zap"
)

// Recorder is the narrow metrics surface the checker depends on.
type Recorder interface {
	Increment(name string, labels map[string]string)
	SetGauge(name string, value float64)
	RecordHistogram(name string, value float64)
}

// NopRecorder discards everything.
type NopRecorder struct{}

func (NopRecorder) Increment(string, map[string]string) {}
func (NopRecorder) SetGauge(string, float64) {}
func (NopRecorder) RecordHistogram(string, float64) {}

// OtelRecorder records through an OpenTelemetry meter, creating each
// instrument on first use.
//
// Thread Safety: Safe for concurrent use.
type OtelRecorder struct {
	meter  metric.Meter
	logger *zap.Logger

	mu         sync.Mutex
	counters   map[string]metric.Int64Counter
	gauges     map[string]metric.Float64Gauge
	histograms map[string]metric.Float64Histogram
}

// NewOtelRecorder returns a Recorder backed by meter. A nil logger is replaced
// with a no-op logger.
func NewOtelRecorder(meter metric.Meter, logger *zap.Logger) *OtelRecorder {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &OtelRecorder{
		meter:      meter,
		logger:     logger,
		counters:   make(map[string]metric.Int64Counter),
		gauges:     make(map[string]metric.Float64Gauge),
		histograms: make(map[string]metric.Float64Histogram),
	}
}

// Increment adds one to the counter name.
func (r *OtelRecorder) Increment(name string, labels map[string]string) {
	r.mu.Lock()
	counter, ok := r.counters[name]
	if !ok {
		var err error
		counter, err = r.meter.Int64Counter(name)
		if err != nil {
			r.mu.Unlock()
			r.logger.Warn("create counter", zap.String("name", name), zap.Error(err))
			return
		}
		r.counters[name] = counter
	}
	r.mu.Unlock()
	counter.Add(context.Background(), 1, metric.WithAttributes(attributes(labels)...))
}

// SetGauge records the current value of gauge name.
func (r *OtelRecorder) SetGauge(name string, value float64) {
	r.mu.Lock()
	gauge, ok := r.gauges[name]
	if !ok {
		var err error
		gauge, err = r.meter.Float64Gauge(name)
		if err != nil {
			r.mu.Unlock()
			r.logger.Warn("create gauge", zap.String("name", name), zap.Error(err))
			return
		}
		r.gauges[name] = gauge
	}
	r.mu.Unlock()
	gauge.Record(context.Background(), value)
}

// RecordHistogram records value into histogram name.
func (r *OtelRecorder) RecordHistogram(name string, value float64) {
	r.mu.Lock()
	hist, ok := r.histograms[name]
	if !ok {
		var err error
		hist, err = r.meter.Float64Histogram(name)
		if err != nil {
			r.mu.Unlock()
			r.logger.Warn("create histogram", zap.String("name", name), zap.Error(err))
			return
		}
		r.histograms[name] = hist
	}
	r.mu.Unlock()
	hist.Record(context.Background(), value)
}

// attributes converts labels in key order so attribute sets are stable.
func attributes(labels map[string]string) []attribute.KeyValue {
	keys := make([]string, 0, len(labels))
	for k := range labels {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	attrs := make([]attribute.KeyValue, 0, len(keys))
	for _, k := range keys {
		attrs = append(attrs, attribute.String(k, labels[k]))
	}
	return attrs
}
