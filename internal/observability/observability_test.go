package observability

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetricsForTesting_Independent(t *testing.T) {
	a := NewMetricsForTesting()
	b := NewMetricsForTesting()

	a.Incidents.WithLabelValues("fatal").Inc()
	assert.InDelta(t, 1, testutil.ToFloat64(a.Incidents.WithLabelValues("fatal")), 0)
	assert.InDelta(t, 0, testutil.ToFloat64(b.Incidents.WithLabelValues("fatal")), 0)
}

func TestWriteTextfile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "report.prom")

	require.NoError(t, WriteTextfile(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "go_goroutines")
}
