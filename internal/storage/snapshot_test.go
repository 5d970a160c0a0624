package storage

import (
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gocv.io/x/gocv"
)

func quietLogger() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return log
}

func TestSnapshotWriterSave(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "output")
	catalog, err := OpenCatalog(filepath.Join(t.TempDir(), "snapshots.db"))
	require.NoError(t, err)
	defer catalog.Close()

	writer := NewSnapshotWriter(dir, catalog, quietLogger())

	frame := gocv.NewMatWithSizeFromScalar(gocv.NewScalar(80, 80, 80, 0), 48, 64, gocv.MatTypeCV8UC3)
	defer frame.Close()

	path, err := writer.Save(frame, 7, 30.1, []string{"blur"})
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "frame_7.png"), path)

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Positive(t, info.Size())

	snaps, err := catalog.List()
	require.NoError(t, err)
	require.Len(t, snaps, 1)
	assert.Equal(t, path, snaps[0].Path)
	assert.Equal(t, []string{"blur"}, snaps[0].Processors)
}

func TestSnapshotWriterNoCatalog(t *testing.T) {
	writer := NewSnapshotWriter(t.TempDir(), nil, quietLogger())

	frame := gocv.NewMatWithSizeFromScalar(gocv.NewScalar(10, 10, 10, 0), 48, 64, gocv.MatTypeCV8UC3)
	defer frame.Close()

	path, err := writer.Save(frame, 1, 0, nil)
	require.NoError(t, err)
	_, err = os.Stat(path)
	require.NoError(t, err)
}

func TestSnapshotWriterRejectsEmptyFrame(t *testing.T) {
	writer := NewSnapshotWriter(t.TempDir(), nil, quietLogger())

	_, err := writer.Save(gocv.NewMat(), 1, 0, nil)
	require.Error(t, err)
}
