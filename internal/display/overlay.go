package display

import (
	"fmt"
	"image"
	"image/color"
	"strings"

	"gocv.io/x/gocv"

	"webcam-vision/internal/pipeline"
)

var (
	overlayColor = color.RGBA{G: 255}
	recColor     = color.RGBA{R: 255}
)

// DrawOverlay writes the FPS/status banner onto frame in place.
func DrawOverlay(frame *gocv.Mat, stats pipeline.Stats) {
	gocv.PutText(frame, fmt.Sprintf("FPS: %.1f", stats.FPS),
		image.Pt(10, 30), gocv.FontHersheySimplex, 0.8, overlayColor, 2)

	active := "none"
	if len(stats.Processors) > 0 {
		active = strings.Join(stats.Processors, " > ")
	}
	gocv.PutText(frame, "Active: "+active,
		image.Pt(10, 60), gocv.FontHersheySimplex, 0.6, overlayColor, 2)

	gocv.PutText(frame, fmt.Sprintf("Frame: %d", stats.Frame),
		image.Pt(10, 90), gocv.FontHersheySimplex, 0.6, overlayColor, 2)

	if stats.Recording {
		gocv.PutText(frame, "REC",
			image.Pt(10, 120), gocv.FontHersheySimplex, 0.6, recColor, 2)
	}
}
