package processors

import (
	"fmt"

	"gocv.io/x/gocv"
)

func init() {
	register("edges", func(params map[string]interface{}) Processor {
		return NewEdgeDetect(params)
	})
}

// EdgeDetect runs Canny edge detection. The edge map is converted back to
// BGR so the chain keeps a 3-channel frame for later stages and the overlay.
type EdgeDetect struct {
	state
	threshold1 float64
	threshold2 float64
}

func NewEdgeDetect(params map[string]interface{}) *EdgeDetect {
	return &EdgeDetect{
		state:      state{name: "edges", enabled: true},
		threshold1: floatParam(params, "threshold1", 50),
		threshold2: floatParam(params, "threshold2", 150),
	}
}

func (e *EdgeDetect) Transform(input gocv.Mat) (gocv.Mat, error) {
	if input.Empty() {
		return gocv.NewMat(), &ProcessingError{Processor: e.name, Err: errEmptyFrame}
	}
	if input.Channels() != 3 {
		return gocv.NewMat(), &ProcessingError{
			Processor: e.name,
			Err:       fmt.Errorf("expected 3-channel frame, got %d channels", input.Channels()),
		}
	}

	gray := gocv.NewMat()
	defer gray.Close()
	if err := gocv.CvtColor(input, &gray, gocv.ColorBGRToGray); err != nil {
		return gocv.NewMat(), &ProcessingError{Processor: e.name, Err: err}
	}

	edges := gocv.NewMat()
	defer edges.Close()
	gocv.Canny(gray, &edges, float32(e.threshold1), float32(e.threshold2))

	output := gocv.NewMat()
	if err := gocv.CvtColor(edges, &output, gocv.ColorGrayToBGR); err != nil {
		output.Close()
		return gocv.NewMat(), &ProcessingError{Processor: e.name, Err: err}
	}
	return output, nil
}

func (e *EdgeDetect) Params() map[string]interface{} {
	return map[string]interface{}{
		"threshold1": e.threshold1,
		"threshold2": e.threshold2,
	}
}

func (e *EdgeDetect) Close() error { return nil }
