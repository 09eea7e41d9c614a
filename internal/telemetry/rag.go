package telemetry

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.uber.org/zap"
)

// Latency names one of the RAG latency histograms.
type Latency int

const (
	RAGTimeToFirstToken Latency = iota
	LLMTimeToFirstToken
	ContextRerankerTime
	RetrievalTime
	LLMGenerationTime

	latencyCount
)

var latencyNames = [latencyCount]string{
	RAGTimeToFirstToken: "rag_ttft_ms",
	LLMTimeToFirstToken: "llm_ttft_ms",
	ContextRerankerTime: "context_reranker_time_ms",
	RetrievalTime:       "retrieval_time_ms",
	LLMGenerationTime:   "llm_generation_time_ms",
}

var latencyDescriptions = [latencyCount]string{
	RAGTimeToFirstToken: "RAG time-to-first-token latency",
	LLMTimeToFirstToken: "LLM time-to-first-token latency",
	ContextRerankerTime: "Context reranker latency",
	RetrievalTime:       "Document retrieval latency",
	LLMGenerationTime:   "LLM generation latency",
}

// String returns the instrument name, e.g. "rag_ttft_ms".
func (l Latency) String() string {
	if l < 0 || l >= latencyCount {
		return fmt.Sprintf("Latency(%d)", int(l))
	}
	return latencyNames[l]
}

// ParseLatency maps an instrument name back to its Latency.
func ParseLatency(name string) (Latency, bool) {
	for i, n := range latencyNames {
		if n == name {
			return Latency(i), true
		}
	}
	return 0, false
}

// RAGMetrics holds the instruments of the RAG API service.
//
// Construct one per process with NewRAGMetrics and pass it to whatever
// records into it.
type RAGMetrics struct {
	// APIRequests counts API requests by method and endpoint.
	APIRequests metric.Int64Counter

	InputTokens      metric.Int64Gauge
	OutputTokens     metric.Int64Gauge
	TotalTokens      metric.Int64Gauge
	AvgWordsPerChunk metric.Int64Gauge
	TokenUsage       metric.Int64Histogram

	// Latencies are recorded in milliseconds.
	Latencies [latencyCount]metric.Float64Histogram

	logger *zap.Logger
}

// NewRAGMetrics registers every RAG instrument with meter.
func NewRAGMetrics(meter metric.Meter, logger *zap.Logger) (*RAGMetrics, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	m := &RAGMetrics{logger: logger}
	var err error

	m.APIRequests, err = meter.Int64Counter("api_requests_total",
		metric.WithDescription("Total API requests"),
		metric.WithUnit("{request}"),
	)
	if err != nil {
		return nil, fmt.Errorf("create api_requests_total: %w", err)
	}

	gauges := []struct {
		dst         *metric.Int64Gauge
		name, descr string
	}{
		{&m.InputTokens, "input_tokens", "Number of input tokens processed"},
		{&m.OutputTokens, "output_tokens", "Number of output tokens generated"},
		{&m.TotalTokens, "total_tokens", "Total tokens (input + output)"},
		{&m.AvgWordsPerChunk, "avg_words_per_chunk", "Avg words per chunk in context"},
	}
	for _, g := range gauges {
		*g.dst, err = meter.Int64Gauge(g.name, metric.WithDescription(g.descr))
		if err != nil {
			return nil, fmt.Errorf("create %s: %w", g.name, err)
		}
	}

	m.TokenUsage, err = meter.Int64Histogram("token_usage_distribution",
		metric.WithDescription("Token usage distribution per request"),
		metric.WithUnit("{token}"),
	)
	if err != nil {
		return nil, fmt.Errorf("create token_usage_distribution: %w", err)
	}

	for i := range m.Latencies {
		l := Latency(i)
		m.Latencies[i], err = meter.Float64Histogram(l.String(),
			metric.WithDescription(latencyDescriptions[i]),
			metric.WithUnit("ms"),
		)
		if err != nil {
			return nil, fmt.Errorf("create %s: %w", l, err)
		}
	}

	logger.Info("RAG metrics initialized")
	return m, nil
}

// RecordAPIRequest counts one request. Requests without both a method and an
// endpoint are not counted.
func (m *RAGMetrics) RecordAPIRequest(ctx context.Context, method, endpoint string) {
	if method == "" || endpoint == "" {
		return
	}
	m.APIRequests.Add(ctx, 1, metric.WithAttributes(
		attribute.String("method", method),
		attribute.String("endpoint", endpoint),
	))
	m.logger.Debug("API request tracked", zap.String("method", method), zap.String("endpoint", endpoint))
}

// RecordLLMTokens sets the token gauges and records the total into the usage
// histogram.
func (m *RAGMetrics) RecordLLMTokens(ctx context.Context, input, output int64) {
	total := input + output
	m.InputTokens.Record(ctx, input)
	m.OutputTokens.Record(ctx, output)
	m.TotalTokens.Record(ctx, total)
	m.TokenUsage.Record(ctx, total)
	m.logger.Debug("token usage",
		zap.Int64("input", input),
		zap.Int64("output", output),
		zap.Int64("total", total),
	)
}

// RecordAvgWordsPerChunk sets the average-words-per-chunk gauge.
func (m *RAGMetrics) RecordAvgWordsPerChunk(ctx context.Context, avg int64) {
	m.AvgWordsPerChunk.Record(ctx, avg)
}

// RecordLatencies records each latency (in milliseconds) into its histogram.
func (m *RAGMetrics) RecordLatencies(ctx context.Context, latencies map[Latency]float64) {
	for l, ms := range latencies {
		if l < 0 || l >= latencyCount {
			continue
		}
		m.Latencies[l].Record(ctx, ms)
	}
}
