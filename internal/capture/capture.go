// Package capture opens the camera or video-file frame source through
// OpenCV's VideoCapture.
package capture

import (
	"errors"
	"fmt"

	"github.com/sirupsen/logrus"
	"gocv.io/x/gocv"
)

var (
	// ErrSourceUnavailable means the capture device could not be opened.
	ErrSourceUnavailable = errors.New("capture source unavailable")
	// ErrEndOfStream means the source has no further frames.
	ErrEndOfStream = errors.New("end of frame stream")
)

// Webcam reads frames from a camera device ("0", "1", ...) or a video file
// path. The requested width and height are applied to devices; files keep
// their native size.
type Webcam struct {
	source string
	width  int
	height int
	log    *logrus.Logger
	cap    *gocv.VideoCapture
}

func NewWebcam(source string, width, height int, log *logrus.Logger) *Webcam {
	return &Webcam{source: source, width: width, height: height, log: log}
}

// Open acquires the device. Failures wrap ErrSourceUnavailable.
func (w *Webcam) Open() error {
	vc, err := gocv.OpenVideoCapture(w.source)
	if err != nil {
		return fmt.Errorf("%w: %s: %v", ErrSourceUnavailable, w.source, err)
	}
	if !vc.IsOpened() {
		vc.Close()
		return fmt.Errorf("%w: %s", ErrSourceUnavailable, w.source)
	}

	vc.Set(gocv.VideoCaptureFrameWidth, float64(w.width))
	vc.Set(gocv.VideoCaptureFrameHeight, float64(w.height))

	w.cap = vc
	w.log.WithFields(logrus.Fields{
		"source": w.source,
		"width":  int(vc.Get(gocv.VideoCaptureFrameWidth)),
		"height": int(vc.Get(gocv.VideoCaptureFrameHeight)),
	}).Info("capture source opened")
	return nil
}

// Read returns the next frame, which the caller owns. An exhausted or failed
// source returns ErrEndOfStream.
func (w *Webcam) Read() (gocv.Mat, error) {
	if w.cap == nil {
		return gocv.NewMat(), ErrSourceUnavailable
	}
	frame := gocv.NewMat()
	if ok := w.cap.Read(&frame); !ok || frame.Empty() {
		frame.Close()
		return gocv.NewMat(), fmt.Errorf("%w: %s", ErrEndOfStream, w.source)
	}
	return frame, nil
}

func (w *Webcam) Close() error {
	if w.cap == nil {
		return nil
	}
	err := w.cap.Close()
	w.cap = nil
	return err
}
