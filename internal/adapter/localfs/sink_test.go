package localfs

import (
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/couchcryptid/pipeline-incident-report/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestSink(t *testing.T) (*Sink, string) {
	t.Helper()
	dir := filepath.Join(t.TempDir(), "out", "nested")
	sink, err := NewSink(dir, slog.New(slog.NewTextHandler(io.Discard, nil)))
	require.NoError(t, err)
	return sink, dir
}

func TestSink_Put(t *testing.T) {
	sink, dir := newTestSink(t)

	path, err := sink.Put(context.Background(), domain.Artifact{
		Name:        domain.ArtifactMap,
		ContentType: "image/png",
		Data:        []byte("png bytes"),
	})
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(dir, domain.ArtifactMap), path)
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "png bytes", string(data))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 1, "temp files are cleaned up")
}

func TestSink_PutOverwrites(t *testing.T) {
	sink, _ := newTestSink(t)
	ctx := context.Background()

	_, err := sink.Put(ctx, domain.Artifact{Name: "a.png", Data: []byte("first")})
	require.NoError(t, err)
	path, err := sink.Put(ctx, domain.Artifact{Name: "a.png", Data: []byte("second")})
	require.NoError(t, err)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "second", string(data))
}

func TestSink_RejectsPathNames(t *testing.T) {
	sink, _ := newTestSink(t)

	for _, name := range []string{"", "../escape.png", "sub/dir.png"} {
		t.Run(name, func(t *testing.T) {
			_, err := sink.Put(context.Background(), domain.Artifact{Name: name})
			require.Error(t, err)
		})
	}
}
