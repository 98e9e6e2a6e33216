package echarts

import (
	"bytes"
	"testing"

	"github.com/couchcryptid/pipeline-incident-report/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRenderReport(t *testing.T) {
	p := domain.Partition{
		NonFatal: []domain.Incident{
			{Line: 2, Point: domain.Point{Lon: -75, Lat: 40}, Severity: domain.NonFatalPlaceholder},
		},
		Fatal: []domain.Incident{
			{Line: 3, Point: domain.Point{Lon: -95.37, Lat: 29.76}, Severity: 2},
		},
	}
	freqs := []domain.WordFrequency{{Word: "TX", Count: 3}, {Word: "PA", Count: 1}}

	var buf bytes.Buffer
	require.NoError(t, RenderReport(&buf, p, freqs, DefaultOptions()))

	html := buf.String()
	assert.Contains(t, html, "<html")
	assert.Contains(t, html, "Pipeline Incidents (2010-2024)")
	assert.Contains(t, html, "Non-Fatality")
	assert.Contains(t, html, "Fatality")
	assert.Contains(t, html, "line 3")
	assert.Contains(t, html, "wordCloud")
	assert.Contains(t, html, `"TX"`)
}

func TestRenderReport_Empty(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, RenderReport(&buf, domain.Partition{}, nil, DefaultOptions()))
	assert.NotEmpty(t, buf.String())
}

func TestGeoData(t *testing.T) {
	data := geoData([]domain.Incident{{Line: 7, Point: domain.Point{Lon: -97.5, Lat: 35.4}, Severity: 3}})

	require.Len(t, data, 1)
	assert.Equal(t, "line 7", data[0].Name)
	assert.Equal(t, []float64{-97.5, 35.4, 3}, data[0].Value)
}
