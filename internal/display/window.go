// Package display renders frames in a HighGUI window and maps keystrokes
// onto pipeline commands.
package display

import (
	"errors"

	"gocv.io/x/gocv"

	"webcam-vision/internal/pipeline"
)

const keyEscape = 27

// Window shows frames in an OpenCV window. Keyboard polling doubles as the
// frame pacing: WaitKey blocks for the poll timeout, which keeps the loop
// responsive to quit without a busy wait.
type Window struct {
	win        *gocv.Window
	pollMillis int
}

func NewWindow(title string) *Window {
	return &Window{win: gocv.NewWindow(title), pollMillis: 10}
}

// Show draws the status overlay onto frame and renders it. The frame is
// modified in place; the runner is done with it by the time Show runs.
func (w *Window) Show(frame gocv.Mat, stats pipeline.Stats) error {
	if frame.Empty() {
		return errors.New("cannot display empty frame")
	}
	DrawOverlay(&frame, stats)
	w.win.IMShow(frame)
	return nil
}

// PollCommand waits up to the poll timeout for one keystroke and maps it to
// a command. Keys 1-9 toggle the chain stage at that position; q or ESC
// quits, s saves a snapshot, r toggles recording, c or 0 clears the chain.
func (w *Window) PollCommand() pipeline.Command {
	key := w.win.WaitKey(w.pollMillis)
	switch {
	case key == 'q' || key == keyEscape:
		return pipeline.Command{Kind: pipeline.CommandQuit}
	case key == 's':
		return pipeline.Command{Kind: pipeline.CommandSaveFrame}
	case key == 'r':
		return pipeline.Command{Kind: pipeline.CommandToggleRecording}
	case key == 'c' || key == '0':
		return pipeline.Command{Kind: pipeline.CommandClearChain}
	case key >= '1' && key <= '9':
		return pipeline.Command{Kind: pipeline.CommandToggleProcessor, Index: key - '1'}
	}
	return pipeline.Command{Kind: pipeline.CommandNone}
}

func (w *Window) Close() error {
	return w.win.Close()
}
