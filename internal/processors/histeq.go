package processors

import (
	"gocv.io/x/gocv"
)

func init() {
	register("histeq", func(params map[string]interface{}) Processor {
		return NewHistEqualize(params)
	})
}

// HistEqualize equalizes the luma histogram to stretch contrast. Color frames
// are equalized on the Y channel in YCrCb space so hue is untouched;
// grayscale frames are equalized directly.
type HistEqualize struct {
	state
}

func NewHistEqualize(params map[string]interface{}) *HistEqualize {
	_ = params
	return &HistEqualize{state: state{name: "histeq", enabled: true}}
}

func (h *HistEqualize) Transform(input gocv.Mat) (gocv.Mat, error) {
	if input.Empty() {
		return gocv.NewMat(), &ProcessingError{Processor: h.name, Err: errEmptyFrame}
	}

	if input.Channels() == 1 {
		output := gocv.NewMat()
		gocv.EqualizeHist(input, &output)
		return output, nil
	}

	ycrcb := gocv.NewMat()
	defer ycrcb.Close()
	if err := gocv.CvtColor(input, &ycrcb, gocv.ColorBGRToYCrCb); err != nil {
		return gocv.NewMat(), &ProcessingError{Processor: h.name, Err: err}
	}

	channels := gocv.Split(ycrcb)
	defer func() {
		for i := range channels {
			channels[i].Close()
		}
	}()

	equalized := gocv.NewMat()
	gocv.EqualizeHist(channels[0], &equalized)
	channels[0].Close()
	channels[0] = equalized

	merged := gocv.NewMat()
	defer merged.Close()
	gocv.Merge(channels, &merged)

	output := gocv.NewMat()
	if err := gocv.CvtColor(merged, &output, gocv.ColorYCrCbToBGR); err != nil {
		output.Close()
		return gocv.NewMat(), &ProcessingError{Processor: h.name, Err: err}
	}
	return output, nil
}

func (h *HistEqualize) Params() map[string]interface{} {
	return map[string]interface{}{}
}

func (h *HistEqualize) Close() error { return nil }
