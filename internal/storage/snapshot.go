// Package storage persists the artifacts the run loop produces: saved
// frames, video recordings, and the sqlite snapshot catalog.
package storage

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/sirupsen/logrus"
	"gocv.io/x/gocv"
)

// SnapshotWriter writes single frames as PNG files into an output directory
// and records each one in the catalog when one is configured.
type SnapshotWriter struct {
	dir     string
	catalog *Catalog
	log     *logrus.Logger
}

func NewSnapshotWriter(dir string, catalog *Catalog, log *logrus.Logger) *SnapshotWriter {
	return &SnapshotWriter{dir: dir, catalog: catalog, log: log}
}

// Save writes frame to <dir>/frame_<n>.png and returns the path. A catalog
// failure is logged but does not fail the save; the file on disk is the
// primary artifact.
func (s *SnapshotWriter) Save(frame gocv.Mat, frameNumber uint64, fps float64, active []string) (string, error) {
	if frame.Empty() {
		return "", fmt.Errorf("cannot save empty frame")
	}
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return "", fmt.Errorf("creating output directory: %w", err)
	}

	path := filepath.Join(s.dir, fmt.Sprintf("frame_%d.png", frameNumber))
	if ok := gocv.IMWrite(path, frame); !ok {
		return "", fmt.Errorf("writing %s failed", path)
	}

	if s.catalog != nil {
		if err := s.catalog.Record(path, frameNumber, fps, active); err != nil {
			s.log.WithError(err).Warn("snapshot saved but not cataloged")
		}
	}
	return path, nil
}
