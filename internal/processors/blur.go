package processors

import (
	"image"

	"gocv.io/x/gocv"
)

func init() {
	register("blur", func(params map[string]interface{}) Processor {
		return NewBlur(params)
	})
}

// Blur applies a Gaussian blur for noise reduction.
type Blur struct {
	state
	kernelSize int
}

// NewBlur builds a blur processor. Even kernel sizes are rounded up to the
// next odd value, which is what the Gaussian kernel requires.
func NewBlur(params map[string]interface{}) *Blur {
	kernelSize := intParam(params, "kernel_size", 5)
	if kernelSize < 1 {
		kernelSize = 1
	}
	if kernelSize%2 == 0 {
		kernelSize++
	}
	return &Blur{
		state:      state{name: "blur", enabled: true},
		kernelSize: kernelSize,
	}
}

func (b *Blur) Transform(input gocv.Mat) (gocv.Mat, error) {
	if input.Empty() {
		return gocv.NewMat(), &ProcessingError{Processor: b.name, Err: errEmptyFrame}
	}

	output := gocv.NewMat()
	if err := gocv.GaussianBlur(input, &output, image.Pt(b.kernelSize, b.kernelSize), 0, 0, gocv.BorderDefault); err != nil {
		output.Close()
		return gocv.NewMat(), &ProcessingError{Processor: b.name, Err: err}
	}
	return output, nil
}

func (b *Blur) Params() map[string]interface{} {
	return map[string]interface{}{"kernel_size": b.kernelSize}
}

func (b *Blur) Close() error { return nil }
