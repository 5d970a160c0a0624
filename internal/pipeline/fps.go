package pipeline

import "time"

// Weight of the newest interval in the moving average. At 30fps the figure
// settles within roughly a second of steady ticking.
const fpsSmoothing = 0.1

// FrameRateMonitor tracks a smoothed frames-per-second figure across loop
// iterations using an exponential moving average of the inter-tick interval.
type FrameRateMonitor struct {
	now      func() time.Time
	last     time.Time
	interval time.Duration
	frames   uint64
}

func NewFrameRateMonitor() *FrameRateMonitor {
	return &FrameRateMonitor{now: time.Now}
}

// Tick records the completion of one loop iteration. It must be called
// exactly once per iteration.
func (m *FrameRateMonitor) Tick() {
	t := m.now()
	if !m.last.IsZero() {
		sample := t.Sub(m.last)
		if m.interval == 0 {
			m.interval = sample
		} else {
			m.interval = time.Duration(float64(m.interval)*(1-fpsSmoothing) + float64(sample)*fpsSmoothing)
		}
	}
	m.last = t
	m.frames++
}

// FPS returns the smoothed frame rate. It is zero until two ticks have been
// seen and never divides by a zero interval.
func (m *FrameRateMonitor) FPS() float64 {
	if m.interval <= 0 {
		return 0
	}
	return float64(time.Second) / float64(m.interval)
}

// Frames returns the number of ticks recorded so far.
func (m *FrameRateMonitor) Frames() uint64 {
	return m.frames
}
