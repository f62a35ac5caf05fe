package metrics

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestObserveFetch(t *testing.T) {
	m := New()

	m.ObserveFetch("media", OutcomeOK, 2*time.Second, 1024)
	m.ObserveFetch("media", OutcomeOK, time.Second, 0)
	m.ObserveFetch("definition", OutcomeRemote, time.Millisecond, 0)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.FetchesTotal.WithLabelValues("media", OutcomeOK)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.FetchesTotal.WithLabelValues("definition", OutcomeRemote)))
	assert.Equal(t, 1024.0, testutil.ToFloat64(m.BytesTotal.WithLabelValues("media")))
	assert.Equal(t, 2, testutil.CollectAndCount(m.FetchDuration))
}

func TestCacheHitsAndUnsupported(t *testing.T) {
	m := New()
	m.IncCacheHit("definition")
	m.IncCacheHit("definition")
	m.IncUnsupported()

	assert.Equal(t, 2.0, testutil.ToFloat64(m.CacheHitsTotal.WithLabelValues("definition")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Unsupported))

	expected := `
# HELP apod_unsupported_media_total Total number of definitions whose media kind is not downloadable.
# TYPE apod_unsupported_media_total counter
apod_unsupported_media_total 1
`
	require.NoError(t, testutil.GatherAndCompare(m.Registry(), strings.NewReader(expected), "apod_unsupported_media_total"))
}

func TestNilMetricsIsNoop(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.ObserveFetch("media", OutcomeOK, time.Second, 10)
		m.IncCacheHit("media")
		m.IncUnsupported()
	})
	assert.Nil(t, m.Registry())
	assert.NoError(t, m.WriteTextfile(filepath.Join(t.TempDir(), "x.prom")))
}

func TestWriteTextfile(t *testing.T) {
	m := New()
	m.IncCacheHit("media")

	path := filepath.Join(t.TempDir(), "apod.prom")
	require.NoError(t, m.WriteTextfile(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `apod_cache_hits_total{kind="media"} 1`)
}
