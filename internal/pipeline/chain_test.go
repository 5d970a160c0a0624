package pipeline

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gocv.io/x/gocv"

	"webcam-vision/internal/processors"
)

// addConst is a test processor that adds a constant to every pixel and
// records the order it was invoked in.
type addConst struct {
	name    string
	enabled bool
	delta   float32
	failErr error
	calls   *[]string
	closed  bool
}

func (p *addConst) Name() string                   { return p.name }
func (p *addConst) Enabled() bool                  { return p.enabled }
func (p *addConst) SetEnabled(enabled bool)        { p.enabled = enabled }
func (p *addConst) Params() map[string]interface{} { return nil }
func (p *addConst) Close() error                   { p.closed = true; return nil }

func (p *addConst) Transform(input gocv.Mat) (gocv.Mat, error) {
	if p.calls != nil {
		*p.calls = append(*p.calls, p.name)
	}
	if p.failErr != nil {
		return gocv.NewMat(), &processors.ProcessingError{Processor: p.name, Err: p.failErr}
	}
	out := input.Clone()
	out.AddFloat(p.delta)
	return out, nil
}

func testFrame(t *testing.T, value float64) gocv.Mat {
	t.Helper()
	return gocv.NewMatWithSizeFromScalar(gocv.NewScalar(value, value, value, 0), 48, 64, gocv.MatTypeCV8UC3)
}

func requireMatsEqual(t *testing.T, want, got gocv.Mat) {
	t.Helper()
	require.Equal(t, want.Rows(), got.Rows())
	require.Equal(t, want.Cols(), got.Cols())
	require.Equal(t, want.Type(), got.Type())
	diff := gocv.NewMat()
	defer diff.Close()
	gocv.AbsDiff(want, got, &diff)
	sum := diff.Sum()
	require.Zero(t, sum.Val1+sum.Val2+sum.Val3+sum.Val4)
}

func TestApplyEmptyChainIdentity(t *testing.T) {
	chain := NewChain()
	frame := testFrame(t, 64)
	defer frame.Close()

	out, err := chain.Apply(frame)
	require.NoError(t, err)
	defer out.Close()
	requireMatsEqual(t, frame, out)
}

func TestApplyAllDisabledIdentity(t *testing.T) {
	chain := NewChain()
	require.NoError(t, chain.Add(&addConst{name: "a", delta: 10}))
	require.NoError(t, chain.Add(&addConst{name: "b", delta: 20}))

	frame := testFrame(t, 64)
	defer frame.Close()

	out, err := chain.Apply(frame)
	require.NoError(t, err)
	defer out.Close()
	requireMatsEqual(t, frame, out)
}

func TestApplyRunsStagesInOrder(t *testing.T) {
	var calls []string
	chain := NewChain()
	require.NoError(t, chain.Add(&addConst{name: "first", enabled: true, delta: 10, calls: &calls}))
	require.NoError(t, chain.Add(&addConst{name: "second", enabled: true, delta: 20, calls: &calls}))

	frame := testFrame(t, 64)
	defer frame.Close()

	out, err := chain.Apply(frame)
	require.NoError(t, err)
	defer out.Close()

	assert.Equal(t, []string{"first", "second"}, calls)

	want := frame.Clone()
	defer want.Close()
	want.AddFloat(30)
	requireMatsEqual(t, want, out)
}

func TestApplyMatchesManualComposition(t *testing.T) {
	blur, err := processors.New("blur", nil)
	require.NoError(t, err)
	edges, err := processors.New("edges", nil)
	require.NoError(t, err)

	chain := NewChain()
	require.NoError(t, chain.Add(blur))
	require.NoError(t, chain.Add(edges))
	defer chain.Clear()

	frame := testFrame(t, 120)
	defer frame.Close()

	chained, err := chain.Apply(frame)
	require.NoError(t, err)
	defer chained.Close()

	blurred, err := processors.NewBlur(nil).Transform(frame)
	require.NoError(t, err)
	defer blurred.Close()
	want, err := processors.NewEdgeDetect(nil).Transform(blurred)
	require.NoError(t, err)
	defer want.Close()

	requireMatsEqual(t, want, chained)
}

func TestToggleTwiceRestores(t *testing.T) {
	p := &addConst{name: "a", enabled: true}
	chain := NewChain()
	require.NoError(t, chain.Add(p))

	require.NoError(t, chain.Toggle(0))
	assert.False(t, p.Enabled())
	require.NoError(t, chain.Toggle(0))
	assert.True(t, p.Enabled())
}

func TestToggleOutOfRange(t *testing.T) {
	p := &addConst{name: "a", enabled: true}
	chain := NewChain()
	require.NoError(t, chain.Add(p))

	for _, i := range []int{-1, 1, 99} {
		err := chain.Toggle(i)
		require.ErrorIs(t, err, ErrOutOfRange)
	}
	assert.Equal(t, 1, chain.Len())
	assert.True(t, p.Enabled())
}

func TestRemove(t *testing.T) {
	a := &addConst{name: "a", enabled: true}
	b := &addConst{name: "b", enabled: true}
	chain := NewChain()
	require.NoError(t, chain.Add(a))
	require.NoError(t, chain.Add(b))

	require.ErrorIs(t, chain.Remove(2), ErrOutOfRange)

	require.NoError(t, chain.Remove(0))
	assert.True(t, a.closed)
	assert.Equal(t, 1, chain.Len())
	assert.Equal(t, []string{"b"}, chain.ActiveNames())
}

func TestClearClosesProcessors(t *testing.T) {
	a := &addConst{name: "a", enabled: true}
	b := &addConst{name: "b"}
	chain := NewChain()
	require.NoError(t, chain.Add(a))
	require.NoError(t, chain.Add(b))

	chain.Clear()
	assert.Zero(t, chain.Len())
	assert.True(t, a.closed)
	assert.True(t, b.closed)
}

func TestAddNilRejected(t *testing.T) {
	chain := NewChain()
	require.Error(t, chain.Add(nil))
	assert.Zero(t, chain.Len())
}

func TestApplyPropagatesProcessingError(t *testing.T) {
	boom := errors.New("bad frame")
	chain := NewChain()
	require.NoError(t, chain.Add(&addConst{name: "broken", enabled: true, failErr: boom}))

	frame := testFrame(t, 64)
	defer frame.Close()

	out, err := chain.Apply(frame)
	out.Close()
	require.Error(t, err)

	var perr *processors.ProcessingError
	require.ErrorAs(t, err, &perr)
	assert.Equal(t, "broken", perr.Processor)
	assert.ErrorIs(t, err, boom)
}
