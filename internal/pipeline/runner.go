package pipeline

import (
	"errors"
	"fmt"

	"github.com/sirupsen/logrus"
	"gocv.io/x/gocv"
)

// FrameSource supplies the stream of frames driving the loop.
type FrameSource interface {
	Open() error
	Read() (gocv.Mat, error)
	Close() error
}

// Stats is the per-iteration status handed to the display for the overlay.
type Stats struct {
	FPS        float64
	Frame      uint64
	Processors []string
	Recording  bool
}

// Display renders processed frames and surfaces user commands. PollCommand
// may block briefly (keyboard polling with a short timeout) so the loop
// stays responsive to quit without busy-waiting.
type Display interface {
	Show(frame gocv.Mat, stats Stats) error
	PollCommand() Command
	Close() error
}

// SnapshotSink persists a single frame on demand.
type SnapshotSink interface {
	Save(frame gocv.Mat, frameNumber uint64, fps float64, active []string) (string, error)
}

// VideoSink receives every displayed frame while recording is on.
type VideoSink interface {
	Write(frame gocv.Mat) error
	Close() error
}

// State is the runner lifecycle state.
type State int

const (
	Stopped State = iota
	Running
	Terminating
)

func (s State) String() string {
	switch s {
	case Stopped:
		return "stopped"
	case Running:
		return "running"
	case Terminating:
		return "terminating"
	}
	return "unknown"
}

// RunnerConfig wires the collaborators into a Runner. Snapshots and Recorder
// are optional; their commands are ignored when nil.
type RunnerConfig struct {
	Source    FrameSource
	Display   Display
	Chain     *Chain
	Snapshots SnapshotSink
	Recorder  VideoSink
	Logger    *logrus.Logger
}

// Runner drives the capture → process → display loop and owns all mutable
// run state. It is single-threaded and cooperative: commands are observed
// only between iterations, so in-flight processing always completes before
// the loop reacts.
//
// Failure policy: a source open or read failure is fatal to the run. A
// per-frame processing error degrades — the error is logged and the raw
// frame is displayed for that iteration. Out-of-range toggles and snapshot
// write failures are logged and the run continues.
type Runner struct {
	source  FrameSource
	display Display
	chain   *Chain
	snaps   SnapshotSink
	video   VideoSink
	log     *logrus.Logger

	state     State
	monitor   *FrameRateMonitor
	recording bool
}

func NewRunner(cfg RunnerConfig) *Runner {
	log := cfg.Logger
	if log == nil {
		log = logrus.New()
	}
	return &Runner{
		source:  cfg.Source,
		display: cfg.Display,
		chain:   cfg.Chain,
		snaps:   cfg.Snapshots,
		video:   cfg.Recorder,
		log:     log,
		state:   Stopped,
	}
}

// State reports the current lifecycle state.
func (r *Runner) State() State { return r.state }

// Frames reports how many iterations have completed.
func (r *Runner) Frames() uint64 {
	if r.monitor == nil {
		return 0
	}
	return r.monitor.Frames()
}

// Run executes the loop until a quit command or a fatal source error. If the
// source cannot be opened the runner stays Stopped and no resources need
// releasing. On any other return the runner has passed through Terminating,
// released every collaborator, and is Stopped again.
func (r *Runner) Run() error {
	if r.state != Stopped {
		return fmt.Errorf("runner is %s, not stopped", r.state)
	}

	if err := r.source.Open(); err != nil {
		return fmt.Errorf("opening frame source: %w", err)
	}

	r.state = Running
	r.monitor = NewFrameRateMonitor()
	r.log.WithField("processors", r.chain.Len()).Info("pipeline started")

	var runErr error
	for r.state == Running {
		if err := r.iterate(); err != nil {
			runErr = err
			r.log.WithError(err).Error("fatal pipeline error")
			break
		}
	}

	r.state = Terminating
	r.teardown()
	r.state = Stopped
	return runErr
}

func (r *Runner) iterate() error {
	frame, err := r.source.Read()
	if err != nil {
		frame.Close()
		return fmt.Errorf("reading frame: %w", err)
	}
	defer frame.Close()

	processed, err := r.chain.Apply(frame)
	if err != nil {
		// Degraded continuation: report the failing stage, show this
		// iteration's raw frame, keep running.
		processed.Close()
		r.log.WithError(err).Warn("frame processing failed, showing raw frame")
		processed = frame.Clone()
	}
	defer processed.Close()

	r.monitor.Tick()

	if r.recording && r.video != nil {
		if err := r.video.Write(processed); err != nil {
			r.log.WithError(err).Warn("video write failed, recording stopped")
			r.recording = false
		}
	}

	stats := Stats{
		FPS:        r.monitor.FPS(),
		Frame:      r.monitor.Frames(),
		Processors: r.chain.ActiveNames(),
		Recording:  r.recording,
	}
	if err := r.display.Show(processed, stats); err != nil {
		return fmt.Errorf("showing frame: %w", err)
	}

	r.dispatch(r.display.PollCommand(), processed)
	return nil
}

func (r *Runner) dispatch(cmd Command, frame gocv.Mat) {
	switch cmd.Kind {
	case CommandNone:

	case CommandQuit:
		r.log.Info("quit requested")
		r.state = Terminating

	case CommandToggleProcessor:
		if err := r.chain.Toggle(cmd.Index); err != nil {
			if errors.Is(err, ErrOutOfRange) {
				r.log.WithField("index", cmd.Index).Warn("toggle ignored: no processor at index")
				return
			}
			r.log.WithError(err).Warn("toggle failed")
			return
		}
		p := r.chain.Processors()[cmd.Index]
		r.log.WithFields(logrus.Fields{
			"processor": p.Name(),
			"enabled":   p.Enabled(),
		}).Info("processor toggled")

	case CommandClearChain:
		r.chain.Clear()
		r.log.Info("processor chain cleared")

	case CommandSaveFrame:
		if r.snaps == nil {
			return
		}
		path, err := r.snaps.Save(frame, r.monitor.Frames(), r.monitor.FPS(), r.chain.ActiveNames())
		if err != nil {
			r.log.WithError(err).Error("snapshot failed")
			return
		}
		r.log.WithField("path", path).Info("frame saved")

	case CommandToggleRecording:
		if r.video == nil {
			return
		}
		r.recording = !r.recording
		r.log.WithField("recording", r.recording).Info("recording toggled")
	}
}

func (r *Runner) teardown() {
	if err := r.source.Close(); err != nil {
		r.log.WithError(err).Warn("closing frame source")
	}
	if err := r.display.Close(); err != nil {
		r.log.WithError(err).Warn("closing display")
	}
	if r.video != nil {
		if err := r.video.Close(); err != nil {
			r.log.WithError(err).Warn("closing video sink")
		}
	}
	r.chain.Clear()
	r.log.WithFields(logrus.Fields{
		"frames": r.monitor.Frames(),
		"fps":    r.monitor.FPS(),
	}).Info("pipeline stopped")
}
