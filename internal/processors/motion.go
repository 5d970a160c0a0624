package processors

import (
	"image"
	"image/color"

	"gocv.io/x/gocv"
)

func init() {
	register("motion", func(params map[string]interface{}) Processor {
		return NewMotionDetect(params)
	})
}

var motionBoxColor = color.RGBA{G: 255}

// MotionDetect marks moving regions by differencing consecutive frames. It is
// the one stateful processor: the previous blurred grayscale frame is kept
// between calls. The first call only records the baseline and returns the
// input unchanged.
type MotionDetect struct {
	state
	threshold float64
	minArea   float64
	prev      gocv.Mat
	hasPrev   bool
}

func NewMotionDetect(params map[string]interface{}) *MotionDetect {
	return &MotionDetect{
		state:     state{name: "motion", enabled: true},
		threshold: floatParam(params, "threshold", 25),
		minArea:   floatParam(params, "min_area", 500),
	}
}

func (m *MotionDetect) Transform(input gocv.Mat) (gocv.Mat, error) {
	if input.Empty() {
		return gocv.NewMat(), &ProcessingError{Processor: m.name, Err: errEmptyFrame}
	}

	gray := gocv.NewMat()
	if input.Channels() == 3 {
		if err := gocv.CvtColor(input, &gray, gocv.ColorBGRToGray); err != nil {
			gray.Close()
			return gocv.NewMat(), &ProcessingError{Processor: m.name, Err: err}
		}
	} else {
		gray = input.Clone()
	}
	// A heavy blur keeps sensor noise out of the difference image.
	if err := gocv.GaussianBlur(gray, &gray, image.Pt(21, 21), 0, 0, gocv.BorderDefault); err != nil {
		gray.Close()
		return gocv.NewMat(), &ProcessingError{Processor: m.name, Err: err}
	}

	// No usable baseline: record one and pass the frame through. A frame of
	// a different size than the baseline also resets it, so a mid-stream
	// resolution change cannot feed AbsDiff mismatched mats.
	if !m.hasPrev || m.prev.Rows() != gray.Rows() || m.prev.Cols() != gray.Cols() {
		if m.hasPrev {
			m.prev.Close()
		}
		m.prev = gray
		m.hasPrev = true
		return input.Clone(), nil
	}

	diff := gocv.NewMat()
	defer diff.Close()
	gocv.AbsDiff(m.prev, gray, &diff)

	thresh := gocv.NewMat()
	defer thresh.Close()
	gocv.Threshold(diff, &thresh, float32(m.threshold), 255, gocv.ThresholdBinary)

	contours := gocv.FindContours(thresh, gocv.RetrievalExternal, gocv.ChainApproxSimple)
	defer contours.Close()

	output := input.Clone()
	for i := 0; i < contours.Size(); i++ {
		contour := contours.At(i)
		if gocv.ContourArea(contour) < m.minArea {
			continue
		}
		gocv.Rectangle(&output, gocv.BoundingRect(contour), motionBoxColor, 2)
	}

	m.prev.Close()
	m.prev = gray
	return output, nil
}

func (m *MotionDetect) Params() map[string]interface{} {
	return map[string]interface{}{
		"threshold": m.threshold,
		"min_area":  m.minArea,
	}
}

// Close releases the retained baseline frame.
func (m *MotionDetect) Close() error {
	if m.hasPrev {
		m.prev.Close()
		m.hasPrev = false
	}
	return nil
}
