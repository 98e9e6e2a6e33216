//go:build mapbox

package mapbox

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// These tests hit the real Mapbox API and require a valid MAPBOX_TOKEN env var.
// Run with: go test -tags=mapbox ./internal/adapter/mapbox/ -v -count=1

func smokeClient(t *testing.T) *Client {
	t.Helper()
	token := os.Getenv("MAPBOX_TOKEN")
	if token == "" {
		t.Fatal("MAPBOX_TOKEN must be set to run smoke tests")
	}
	return NewClient(token, 10*time.Second, testMetrics(), discardLogger())
}

func TestSmoke_ForwardGeocode(t *testing.T) {
	c := smokeClient(t)

	result, err := c.ForwardGeocode(context.Background(), "HOUSTON", "TX")
	require.NoError(t, err)

	assert.InDelta(t, 29.76, result.Lat, 0.2, "lat should be near Houston")
	assert.InDelta(t, -95.37, result.Lon, 0.2, "lon should be near Houston")
	assert.Contains(t, result.FormattedAddress, "Houston")
	assert.Greater(t, result.Confidence, 0.5)
}

func TestSmoke_ForwardGeocode_Nonsense(t *testing.T) {
	c := smokeClient(t)

	// Fuzzy matching may still return a place; the client only has to cope.
	_, err := c.ForwardGeocode(context.Background(), "XYZNONEXISTENT99", "ZZ")
	require.NoError(t, err)
}

func TestSmoke_CachedGeocoder(t *testing.T) {
	cached := NewCachedGeocoder(smokeClient(t), 10, testMetrics())

	r1, err := cached.ForwardGeocode(context.Background(), "MIDLAND", "TX")
	require.NoError(t, err)
	assert.Contains(t, r1.FormattedAddress, "Midland")

	r2, err := cached.ForwardGeocode(context.Background(), "MIDLAND", "TX")
	require.NoError(t, err)
	assert.Equal(t, r1, r2)
}
