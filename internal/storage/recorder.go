package storage

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/sirupsen/logrus"
	"gocv.io/x/gocv"
)

// Recorder writes displayed frames to an MJPG video file. The writer is
// opened lazily on the first frame so the output size matches the stream.
type Recorder struct {
	path   string
	fps    float64
	log    *logrus.Logger
	writer *gocv.VideoWriter
}

func NewRecorder(path string, fps float64, log *logrus.Logger) *Recorder {
	return &Recorder{path: path, fps: fps, log: log}
}

// Write appends one frame to the recording, opening the writer if this is
// the first frame.
func (r *Recorder) Write(frame gocv.Mat) error {
	if frame.Empty() {
		return fmt.Errorf("cannot record empty frame")
	}
	if r.writer == nil {
		if err := os.MkdirAll(filepath.Dir(r.path), 0o755); err != nil {
			return fmt.Errorf("creating recording directory: %w", err)
		}
		writer, err := gocv.VideoWriterFile(r.path, "MJPG", r.fps, frame.Cols(), frame.Rows(), true)
		if err != nil {
			return fmt.Errorf("opening video writer: %w", err)
		}
		if !writer.IsOpened() {
			writer.Close()
			return fmt.Errorf("video writer did not open for %s", r.path)
		}
		r.writer = writer
		r.log.WithFields(logrus.Fields{
			"path": r.path,
			"fps":  r.fps,
		}).Info("recording started")
	}
	return r.writer.Write(frame)
}

func (r *Recorder) Close() error {
	if r.writer == nil {
		return nil
	}
	err := r.writer.Close()
	r.writer = nil
	return err
}
