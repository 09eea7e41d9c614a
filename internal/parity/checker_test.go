package parity

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/justmiles/compose-helm-parity/internal/document"
	"github.com/justmiles/compose-helm-parity/internal/identity"
	"github.com/justmiles/compose-helm-parity/internal/objectstore"
	"github.com/justmiles/compose-helm-parity/internal/resource"
)

type fakeRecorder struct {
	mu         sync.Mutex
	counters   map[string][]map[string]string
	gauges     map[string]float64
	histograms map[string][]float64
}

func newFakeRecorder() *fakeRecorder {
	return &fakeRecorder{
		counters:   make(map[string][]map[string]string),
		gauges:     make(map[string]float64),
		histograms: make(map[string][]float64),
	}
}

func (f *fakeRecorder) Increment(name string, labels map[string]string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.counters[name] = append(f.counters[name], labels)
}

func (f *fakeRecorder) SetGauge(name string, value float64) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.gauges[name] = value
}

func (f *fakeRecorder) RecordHistogram(name string, value float64) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.histograms[name] = append(f.histograms[name], value)
}

func ragLoader() *resource.Loader {
	return &resource.Loader{Root: filepath.Join("testdata", "rag")}
}

func TestCheckerRunRAGBlueprint(t *testing.T) {
	rec := newFakeRecorder()
	checker := NewChecker(ragLoader(), WithRecorder(rec), WithLogger(zaptest.NewLogger(t)))

	report, err := checker.Run(context.Background(), DefaultTable())
	require.NoError(t, err)
	require.NoError(t, report.Err())
	assert.True(t, report.OK())
	assert.Equal(t, []ServiceRef{{File: ragComposeIngestor, Service: "redis"}}, report.Uncovered)

	checked := rec.counters[MetricServicesChecked]
	assert.Len(t, checked, 7)
	for _, labels := range checked {
		assert.Equal(t, "pass", labels["result"], labels["service"])
	}
	assert.Equal(t, 0.0, rec.gauges[MetricMismatches])
	assert.Len(t, rec.histograms[MetricRunDuration], 1)
}

func TestCheckerRunStrict(t *testing.T) {
	checker := NewChecker(ragLoader(), WithStrict(nil))
	report, err := checker.Run(context.Background(), DefaultTable())
	require.NoError(t, err)
	assert.NoError(t, report.Err())
}

// writeRepo lays out files under a temporary root.
func writeRepo(t *testing.T, files map[string]string) string {
	t.Helper()
	root := t.TempDir()
	for name, content := range files {
		path := filepath.Join(root, name)
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	}
	return root
}

func TestCheckerRunCollectsEverything(t *testing.T) {
	root := writeRepo(t, map[string]string{
		"values.yaml": `
image:
  repository: r
  tag: t
envVars:
  A: "1"
`,
		"compose.yaml": `
services:
  app:
    image: r:other
    environment:
      - A=1
      - B=2
  extra:
    image: x
`,
		"prompt.yaml":      "one",
		"prompt-copy.yaml": "two",
	})

	table := &Table{
		ValuesFile: "values.yaml",
		RuleSets: []RuleSet{{
			ComposeFile: "compose.yaml",
			Rules: []Rule{
				{
					Service:                  "app",
					ImageRepositoryPath:      document.Path{"image", "repository"},
					ImageTagPath:             document.Path{"image", "tag"},
					EnvPath:                  document.Path{"envVars"},
					RequireAllEnvFromCompose: true,
				},
				imageRule("foo"),
			},
		}},
		Identities: []identity.Pair{{Name: "prompt.yaml", Source: "prompt.yaml", Copy: "prompt-copy.yaml"}},
	}

	rec := newFakeRecorder()
	report, err := NewChecker(&resource.Loader{Root: root}, WithRecorder(rec)).Run(context.Background(), table)
	require.NoError(t, err)
	assert.False(t, report.OK())

	assert.Equal(t, []Kind{ImageTag, MissingEnvKey}, kinds(report.Mismatches))
	assert.Contains(t, report.Mismatches[1].Detail, "[B]")

	require.Len(t, report.Errors, 2)
	var serr *StructuralError
	require.True(t, errors.As(report.Errors[0], &serr))
	assert.Equal(t, "foo", serr.Service)
	var merr *identity.MismatchError
	require.True(t, errors.As(report.Errors[1], &merr))

	assert.Equal(t, []ServiceRef{{File: "compose.yaml", Service: "extra"}}, report.Uncovered)
	assert.Equal(t, 2.0, rec.gauges[MetricMismatches])
	for _, labels := range rec.counters[MetricServicesChecked] {
		assert.Equal(t, "fail", labels["result"])
	}

	err = report.Err()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "4 findings")
	assert.Contains(t, err.Error(), `service "foo": service not found`)
	assert.Contains(t, err.Error(), "IMAGE_TAG")
}

func TestCheckerRunFatal(t *testing.T) {
	root := writeRepo(t, map[string]string{
		"values.yaml":     "image: {repository: r, tag: t}\n",
		"bad-values.yaml": "image: [unterminated\n",
		"bad-compose.yaml": `services:
  web: image: nginx`,
	})
	loader := &resource.Loader{Root: root}

	t.Run("values parse error", func(t *testing.T) {
		_, err := NewChecker(loader).Run(context.Background(), &Table{ValuesFile: "bad-values.yaml"})
		var perr *document.ParseError
		assert.True(t, errors.As(err, &perr))
	})

	t.Run("compose parse error", func(t *testing.T) {
		table := &Table{
			ValuesFile: "values.yaml",
			RuleSets:   []RuleSet{{ComposeFile: "bad-compose.yaml", Rules: []Rule{imageRule("web")}}},
		}
		_, err := NewChecker(loader).Run(context.Background(), table)
		var perr *document.ParseError
		assert.True(t, errors.As(err, &perr))
	})

	t.Run("missing compose file", func(t *testing.T) {
		table := &Table{
			ValuesFile: "values.yaml",
			RuleSets:   []RuleSet{{ComposeFile: "nope.yaml", Rules: []Rule{imageRule("web")}}},
		}
		_, err := NewChecker(loader).Run(context.Background(), table)
		assert.ErrorIs(t, err, os.ErrNotExist)
	})

	t.Run("no values file", func(t *testing.T) {
		_, err := NewChecker(loader).Run(context.Background(), &Table{})
		assert.Error(t, err)
	})
}

func TestCheckerRunFromObjectStore(t *testing.T) {
	ctx := context.Background()
	store := objectstore.NewMemory()
	require.NoError(t, store.Put(ctx, "deploy", "values.yaml", []byte("image:\n  repository: r\n  tag: t\n")))
	require.NoError(t, store.Put(ctx, "deploy", "compose.yaml", []byte("services:\n  app:\n    image: r:t\n")))

	table := &Table{
		ValuesFile: "s3://deploy/values.yaml",
		RuleSets:   []RuleSet{{ComposeFile: "s3://deploy/compose.yaml", Rules: []Rule{imageRule("app")}}},
	}
	report, err := NewChecker(&resource.Loader{Store: store}).Run(ctx, table)
	require.NoError(t, err)
	assert.True(t, report.OK())
}
