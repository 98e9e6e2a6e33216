// Package localfs writes report artifacts to a local directory.
package localfs

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/couchcryptid/pipeline-incident-report/internal/domain"
)

// Sink writes each artifact to dir/<name>. Writes go to a temp file in the
// same directory and are renamed into place.
type Sink struct {
	dir    string
	logger *slog.Logger
}

// NewSink creates dir if needed.
func NewSink(dir string, logger *slog.Logger) (*Sink, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create output dir: %w", err)
	}
	return &Sink{dir: dir, logger: logger}, nil
}

// Name identifies the sink in logs and metrics.
func (s *Sink) Name() string { return "localfs" }

// Put writes the artifact and returns its path.
func (s *Sink) Put(_ context.Context, a domain.Artifact) (string, error) {
	if a.Name == "" || a.Name != filepath.Base(a.Name) {
		return "", fmt.Errorf("invalid artifact name %q", a.Name)
	}
	dst := filepath.Join(s.dir, a.Name)

	tmp, err := os.CreateTemp(s.dir, "."+a.Name+".*")
	if err != nil {
		return "", fmt.Errorf("create temp file: %w", err)
	}
	defer os.Remove(tmp.Name()) //nolint:errcheck // no-op after a successful rename

	if _, err := tmp.Write(a.Data); err != nil {
		tmp.Close() //nolint:errcheck,gosec // write error takes precedence
		return "", fmt.Errorf("write %s: %w", a.Name, err)
	}
	if err := tmp.Close(); err != nil {
		return "", fmt.Errorf("close %s: %w", a.Name, err)
	}
	if err := os.Chmod(tmp.Name(), 0o644); err != nil {
		return "", fmt.Errorf("chmod %s: %w", a.Name, err)
	}
	if err := os.Rename(tmp.Name(), dst); err != nil {
		return "", fmt.Errorf("rename %s: %w", a.Name, err)
	}

	s.logger.Info("artifact written", "path", dst, "bytes", len(a.Data))
	return dst, nil
}
