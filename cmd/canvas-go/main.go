// Command canvas-go runs a Lua canvas sketch and writes the result as an
// image, or shows it in a preview window.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/opd-ai/go-canvas/internal/profiling"
	"github.com/opd-ai/go-canvas/pkg/sketch"
)

// Version is set at build time with -ldflags "-X main.Version=...".
var Version = "0.1.0-dev"

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := run(ctx, os.Args[1:], os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	flags := flag.NewFlagSet("canvas-go", flag.ContinueOnError)
	flags.SetOutput(stderr)
	configPath := flags.String("c", "", "Path to the Lua sketch config")
	output := flags.String("o", "", `Output override: a .png or .jpg path, or "data-url" for stdout`)
	preview := flags.Bool("preview", false, "Show the surface in a window")
	watch := flags.Bool("watch", false, "Reload when the config or script changes")
	verbose := flags.Bool("v", false, "Log debug messages")
	cpuProfile := flags.String("cpuprofile", "", "Write CPU profile to file")
	memProfile := flags.String("memprofile", "", "Write heap profile to file on exit")
	version := flags.Bool("version", false, "Print version and exit")
	if err := flags.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		return 2
	}

	if *version {
		fmt.Fprintf(stdout, "canvas-go version %s\n", Version)
		return 0
	}

	if *configPath == "" {
		fmt.Fprintln(stderr, "No configuration file specified. Use -c to specify a config file.")
		fmt.Fprintln(stderr, "Usage: canvas-go -c <config-file> [-o output] [-preview] [-watch]")
		return 1
	}
	if _, err := os.Stat(*configPath); err != nil {
		if os.IsNotExist(err) {
			fmt.Fprintf(stderr, "Configuration file not found: %s\n", *configPath)
		} else {
			fmt.Fprintf(stderr, "Error accessing configuration file %s: %v\n", *configPath, err)
		}
		return 1
	}

	level := slog.LevelInfo
	if *verbose {
		level = slog.LevelDebug
	}
	logger := sketch.TextLogger(stderr, level)

	profiler := profiling.New(profiling.Config{
		CPUProfilePath: *cpuProfile,
		MemProfilePath: *memProfile,
	})
	if err := profiler.Start(); err != nil {
		logger.Error("failed to start profiling", "error", err)
		return 1
	}
	defer func() {
		if err := profiler.Stop(); err != nil {
			logger.Warn("failed to stop profiling", "error", err)
		}
	}()

	opts := sketch.DefaultOptions()
	opts.Output = *output
	opts.Preview = *preview
	opts.Watch = *watch
	opts.Stdout = stdout
	opts.Logger = logger

	s, err := sketch.New(*configPath, &opts)
	if err != nil {
		logger.Error("failed to load sketch", "error", err)
		return 1
	}

	runErr := s.Run(ctx)
	closeErr := s.Close()
	snap := s.Metrics().Snapshot()
	logger.Debug("sketch finished", "frames", snap.Frames, "outputs", snap.Outputs,
		"reloads", snap.Reloads, "errors", snap.Errors, "frame_avg", snap.FrameAvg)
	if runErr != nil {
		logger.Error("sketch failed", "category", sketch.CategoryOf(runErr).String(), "error", runErr)
		return 1
	}
	if closeErr != nil {
		logger.Error("close failed", "error", closeErr)
		return 1
	}
	if ctx.Err() != nil {
		logger.Info("shutting down")
	}
	return 0
}
