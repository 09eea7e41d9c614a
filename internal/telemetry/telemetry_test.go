package telemetry

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
)

func newManualMeter(t *testing.T) (*sdkmetric.ManualReader, *sdkmetric.MeterProvider) {
	t.Helper()
	reader := sdkmetric.NewManualReader()
	mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	t.Cleanup(func() { _ = mp.Shutdown(context.Background()) })
	return reader, mp
}

func collect(t *testing.T, reader *sdkmetric.ManualReader) map[string]metricdata.Metrics {
	t.Helper()
	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(context.Background(), &rm))
	out := make(map[string]metricdata.Metrics)
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			out[m.Name] = m
		}
	}
	return out
}

func TestOtelRecorder(t *testing.T) {
	reader, mp := newManualMeter(t)
	rec := NewOtelRecorder(mp.Meter("test"), nil)

	labels := map[string]string{"service": "rag-server", "result": "pass"}
	rec.Increment("parity_services_checked_total", labels)
	rec.Increment("parity_services_checked_total", labels)
	rec.SetGauge("parity_mismatches", 3)
	rec.SetGauge("parity_mismatches", 1)
	rec.RecordHistogram("parity_run_duration_ms", 12.5)

	got := collect(t, reader)

	sum, ok := got["parity_services_checked_total"].Data.(metricdata.Sum[int64])
	require.True(t, ok)
	require.Len(t, sum.DataPoints, 1)
	assert.Equal(t, int64(2), sum.DataPoints[0].Value)
	v, ok := sum.DataPoints[0].Attributes.Value(attribute.Key("service"))
	require.True(t, ok)
	assert.Equal(t, "rag-server", v.AsString())

	gauge, ok := got["parity_mismatches"].Data.(metricdata.Gauge[float64])
	require.True(t, ok)
	require.Len(t, gauge.DataPoints, 1)
	assert.Equal(t, 1.0, gauge.DataPoints[0].Value)

	hist, ok := got["parity_run_duration_ms"].Data.(metricdata.Histogram[float64])
	require.True(t, ok)
	require.Len(t, hist.DataPoints, 1)
	assert.Equal(t, uint64(1), hist.DataPoints[0].Count)
	assert.Equal(t, 12.5, hist.DataPoints[0].Sum)
}

func TestNopRecorder(t *testing.T) {
	var rec Recorder = NopRecorder{}
	rec.Increment("x", nil)
	rec.SetGauge("x", 1)
	rec.RecordHistogram("x", 1)
}

func TestRAGMetrics(t *testing.T) {
	reader, mp := newManualMeter(t)
	m, err := NewRAGMetrics(mp.Meter("rag"), nil)
	require.NoError(t, err)

	ctx := context.Background()
	m.RecordAPIRequest(ctx, "POST", "/v1/generate")
	m.RecordAPIRequest(ctx, "", "/v1/generate")
	m.RecordLLMTokens(ctx, 100, 20)
	m.RecordAvgWordsPerChunk(ctx, 180)
	m.RecordLatencies(ctx, map[Latency]float64{
		RAGTimeToFirstToken: 250,
		RetrievalTime:       40,
		Latency(99):         1,
	})

	got := collect(t, reader)

	requests, ok := got["api_requests_total"].Data.(metricdata.Sum[int64])
	require.True(t, ok)
	require.Len(t, requests.DataPoints, 1)
	assert.Equal(t, int64(1), requests.DataPoints[0].Value)

	total, ok := got["total_tokens"].Data.(metricdata.Gauge[int64])
	require.True(t, ok)
	require.Len(t, total.DataPoints, 1)
	assert.Equal(t, int64(120), total.DataPoints[0].Value)

	usage, ok := got["token_usage_distribution"].Data.(metricdata.Histogram[int64])
	require.True(t, ok)
	assert.Equal(t, int64(120), usage.DataPoints[0].Sum)

	avg, ok := got["avg_words_per_chunk"].Data.(metricdata.Gauge[int64])
	require.True(t, ok)
	assert.Equal(t, int64(180), avg.DataPoints[0].Value)

	ttft, ok := got["rag_ttft_ms"].Data.(metricdata.Histogram[float64])
	require.True(t, ok)
	assert.Equal(t, 250.0, ttft.DataPoints[0].Sum)
	assert.Equal(t, "ms", got["rag_ttft_ms"].Unit)
}

func TestLatencyNames(t *testing.T) {
	for i := Latency(0); i < latencyCount; i++ {
		parsed, ok := ParseLatency(i.String())
		require.True(t, ok, i.String())
		assert.Equal(t, i, parsed)
	}
	_, ok := ParseLatency("unknown_ms")
	assert.False(t, ok)
	assert.Equal(t, "Latency(42)", Latency(42).String())
}

func TestInit(t *testing.T) {
	t.Run("nil context", func(t *testing.T) {
		//nolint:staticcheck // exercising the guard
		_, err := Init(nil, DefaultConfig())
		assert.ErrorIs(t, err, ErrNilContext)
	})

	t.Run("unknown exporter", func(t *testing.T) {
		cfg := DefaultConfig()
		cfg.Exporter = "carrier-pigeon"
		_, err := Init(context.Background(), cfg)
		assert.ErrorIs(t, err, ErrUnknownExporter)
	})

	t.Run("none", func(t *testing.T) {
		p, err := Init(context.Background(), DefaultConfig())
		require.NoError(t, err)
		NewOtelRecorder(p.Meter("parity"), nil).Increment("x", nil)
		assert.Nil(t, p.Gatherer())
		assert.NoError(t, p.Shutdown(context.Background()))
	})

	t.Run("prometheus textfile", func(t *testing.T) {
		cfg := DefaultConfig()
		cfg.Exporter = "prometheus"
		cfg.TextfilePath = filepath.Join(t.TempDir(), "parity.prom")

		p, err := Init(context.Background(), cfg)
		require.NoError(t, err)
		require.NotNil(t, p.Gatherer())

		rec := NewOtelRecorder(p.Meter("parity"), nil)
		rec.Increment("parity_services_checked_total", map[string]string{"result": "fail"})
		require.NoError(t, p.Shutdown(context.Background()))

		data, err := os.ReadFile(cfg.TextfilePath)
		require.NoError(t, err)
		assert.True(t, strings.Contains(string(data), "parity_services_checked_total"), string(data))
	})

	t.Run("stdout", func(t *testing.T) {
		var buf strings.Builder
		cfg := DefaultConfig()
		cfg.Exporter = "stdout"
		cfg.Writer = &buf

		p, err := Init(context.Background(), cfg)
		require.NoError(t, err)
		NewOtelRecorder(p.Meter("parity"), nil).SetGauge("parity_mismatches", 0)
		require.NoError(t, p.Shutdown(context.Background()))
		assert.Contains(t, buf.String(), "parity_mismatches")
	})
}
