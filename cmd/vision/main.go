package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/sirupsen/logrus"
	flag "github.com/spf13/pflag"

	"webcam-vision/internal/capture"
	"webcam-vision/internal/display"
	"webcam-vision/internal/pipeline"
	"webcam-vision/internal/processors"
	"webcam-vision/internal/storage"
)

const appName = "webcam-vision"

func main() {
	source := flag.String("source", "0", "camera index or video file path")
	width := flag.Int("width", 640, "requested capture width")
	height := flag.Int("height", 480, "requested capture height")
	procList := flag.String("processors", "blur,edges,motion,histeq", "comma-separated processor chain, in application order")
	enabledList := flag.String("enabled", "blur,edges", "processors enabled at startup")
	outputDir := flag.String("output", "output", "directory for saved frames and recordings")
	catalogPath := flag.String("catalog", "", "sqlite snapshot catalog path (empty disables the catalog)")
	listSnapshots := flag.Bool("list-snapshots", false, "print the snapshot catalog and exit")
	recordFPS := flag.Float64("record-fps", 25, "frame rate of recorded video files")
	debugMode := flag.Bool("debug", false, "enable verbose logging")
	flag.Parse()

	logger := initLogger(*debugMode)

	if *listSnapshots {
		if *catalogPath == "" {
			logger.Fatal("--list-snapshots requires --catalog")
		}
		if err := printSnapshots(*catalogPath); err != nil {
			logger.WithError(err).Fatal("cannot list snapshots")
		}
		return
	}

	chain, err := buildChain(*procList, *enabledList)
	if err != nil {
		logger.WithError(err).Fatal("invalid processor chain")
	}

	var catalog *storage.Catalog
	if *catalogPath != "" {
		catalog, err = storage.OpenCatalog(*catalogPath)
		if err != nil {
			logger.WithError(err).Fatal("cannot open snapshot catalog")
		}
		defer catalog.Close()
	}

	logger.WithFields(logrus.Fields{
		"source":     *source,
		"processors": strings.Join(chainNames(chain), ","),
	}).Info("starting " + appName)
	printControls(chain)

	runner := pipeline.NewRunner(pipeline.RunnerConfig{
		Source:    capture.NewWebcam(*source, *width, *height, logger),
		Display:   display.NewWindow(appName),
		Chain:     chain,
		Snapshots: storage.NewSnapshotWriter(*outputDir, catalog, logger),
		Recorder:  storage.NewRecorder(filepath.Join(*outputDir, "recording.avi"), *recordFPS, logger),
		Logger:    logger,
	})

	if err := runner.Run(); err != nil {
		logger.WithError(err).Error("pipeline terminated")
		os.Exit(1)
	}
}

// buildChain constructs the processor chain from the CLI lists. Every listed
// processor is added so the numeric toggle keys line up with the list order;
// only the ones named in enabled start out active.
func buildChain(list, enabled string) (*pipeline.Chain, error) {
	enabledSet := map[string]bool{}
	for _, name := range splitList(enabled) {
		enabledSet[name] = true
	}

	chain := pipeline.NewChain()
	for _, name := range splitList(list) {
		p, err := processors.New(name, nil)
		if err != nil {
			return nil, fmt.Errorf("%w (known processors: %s)", err, strings.Join(processors.Names(), ", "))
		}
		p.SetEnabled(enabledSet[name])
		if err := chain.Add(p); err != nil {
			return nil, err
		}
	}
	return chain, nil
}

func chainNames(chain *pipeline.Chain) []string {
	names := make([]string, 0, chain.Len())
	for _, p := range chain.Processors() {
		names = append(names, p.Name())
	}
	return names
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func printControls(chain *pipeline.Chain) {
	fmt.Println("Controls:")
	fmt.Println("  q/ESC  quit")
	fmt.Println("  s      save current frame")
	fmt.Println("  r      toggle video recording")
	fmt.Println("  c/0    clear processor chain")
	for i, p := range chain.Processors() {
		fmt.Printf("  %d      toggle %s\n", i+1, p.Name())
	}
}

// initLogger configures logrus: verbose colored text in debug mode, JSON
// otherwise.
func initLogger(debugMode bool) *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(os.Stdout)

	if debugMode {
		logger.SetLevel(logrus.DebugLevel)
		logger.SetFormatter(&logrus.TextFormatter{
			FullTimestamp: true,
			ForceColors:   true,
		})
	} else {
		logger.SetLevel(logrus.InfoLevel)
		logger.SetFormatter(&logrus.JSONFormatter{
			TimestampFormat: "2006-01-02 15:04:05",
		})
	}
	return logger
}

func printSnapshots(path string) error {
	catalog, err := storage.OpenCatalog(path)
	if err != nil {
		return err
	}
	defer catalog.Close()

	snaps, err := catalog.List()
	if err != nil {
		return err
	}
	if len(snaps) == 0 {
		fmt.Println("no snapshots recorded")
		return nil
	}
	for _, s := range snaps {
		fmt.Printf("%6d  %s  frame=%-6d fps=%-5.1f [%s]  %s\n",
			s.ID, s.CreatedAt.Local().Format("2006-01-02 15:04:05"),
			s.Frame, s.FPS, strings.Join(s.Processors, ","), s.Path)
	}
	return nil
}
