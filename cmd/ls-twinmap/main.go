// Command ls-twinmap is a terminal twin map viewer with synchronized geodesic
// distance rings.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"golang.org/x/term"

	"github.com/litescript/ls-twinmap/internal/config"
	"github.com/litescript/ls-twinmap/internal/export"
	"github.com/litescript/ls-twinmap/internal/logging"
	"github.com/litescript/ls-twinmap/internal/metrics"
	"github.com/litescript/ls-twinmap/internal/state"
	"github.com/litescript/ls-twinmap/internal/ui"
)

// CLI flags for headless mode
var (
	summaryMode bool
	geojsonPath string
)

func main() {
	// Parse flags
	configPath := flag.String("config", "", "Config file (default: twinmap.yaml in . or ./configs)")
	logLevel := flag.String("log-level", "", "Log level (debug, info, warn, error)")
	logFile := flag.String("log-file", "", "Write logs to file")
	metricsAddr := flag.String("metrics-addr", "", "Serve Prometheus metrics on this address (e.g., :9090)")
	flag.BoolVar(&summaryMode, "summary", false, "Print text summary instead of TUI")
	flag.StringVar(&geojsonPath, "geojson", "", "Export ring GeoJSON to file (use - for stdout)")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	if *logLevel != "" {
		cfg.Log.Level = *logLevel
	}
	if *logFile != "" {
		cfg.Log.File = *logFile
	}
	if *metricsAddr != "" {
		cfg.Metrics.Addr = *metricsAddr
	}

	isTTY := term.IsTerminal(int(os.Stdout.Fd()))
	headless := summaryMode || geojsonPath != "" || !isTTY

	// Set up logging. The TUI owns the terminal, so logs go to a file or
	// nowhere while it runs.
	logger := logging.New(logging.ParseLevel(cfg.Log.Level))
	switch {
	case cfg.Log.File != "":
		f, err := os.OpenFile(cfg.Log.File, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: open log file: %v\n", err)
			os.Exit(1)
		}
		defer f.Close()
		logger.SetOutput(f)
	case !headless:
		logger.SetOutput(io.Discard)
	}

	// Create context with cancellation
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Handle signals
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		cancel()
	}()

	if cfg.Metrics.Addr != "" {
		go serveMetrics(ctx, cfg.Metrics.Addr, logger.With("metrics"))
	}

	// Initialize components
	frames := ui.NewFrameScheduler()
	stateMgr := state.NewManager(stateConfig(cfg), frames, logger)
	defer stateMgr.Close()

	model, err := ui.New(stateMgr, frames, cfg.ViewportConfigs(), uiControls(cfg))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	// Headless mode: no TUI
	if headless {
		if err := runHeadless(stateMgr); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		return
	}

	p := tea.NewProgram(model, tea.WithAltScreen(), tea.WithMouseAllMotion(), tea.WithContext(ctx))

	logger.Info("Starting TUI with %d viewports", len(cfg.Viewports))
	if _, err := p.Run(); err != nil && !errors.Is(err, tea.ErrProgramKilled) {
		fmt.Fprintf(os.Stderr, "Error running TUI: %v\n", err)
		os.Exit(1)
	}
}

func stateConfig(cfg *config.Config) state.Config {
	sc := state.DefaultConfig()
	sc.Radii = cfg.Rings.Radii
	sc.Segments = cfg.Rings.Segments
	sc.InitialZoom = cfg.Camera.InitialZoom
	sc.ZoomEpsilon = cfg.Camera.ZoomEpsilon
	sc.ResetDuration = cfg.Camera.ResetDuration
	sc.ResetBearingDuration = cfg.Camera.ResetBearingDuration
	return sc
}

func uiControls(cfg *config.Config) ui.Controls {
	return ui.Controls{
		InitialZoom:  cfg.Camera.InitialZoom,
		ZoomStep:     cfg.Camera.ZoomStep,
		ZoomDuration: cfg.Camera.ZoomDuration,
		RotateStep:   cfg.Camera.RotateStep,
	}
}

// runHeadless writes the GeoJSON document and/or summary table. Without a
// terminal and without flags the summary is printed.
func runHeadless(stateMgr *state.Manager) error {
	now := time.Now().UTC()

	if geojsonPath != "" {
		doc := export.ExportSnapshot(stateMgr, now)
		if geojsonPath == "-" {
			if err := doc.WriteJSON(os.Stdout); err != nil {
				return fmt.Errorf("write GeoJSON to stdout: %w", err)
			}
		} else {
			f, err := os.Create(geojsonPath)
			if err != nil {
				return fmt.Errorf("create GeoJSON file: %w", err)
			}
			defer f.Close()
			if err := doc.WriteJSON(f); err != nil {
				return fmt.Errorf("write GeoJSON to file: %w", err)
			}
		}
	}

	if summaryMode || geojsonPath == "" {
		export.WriteSummaryTable(os.Stdout, stateMgr, now)
	}
	return nil
}

func serveMetrics(ctx context.Context, addr string, logger *logging.Logger) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", metrics.Handler())
	srv := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	logger.Info("Serving metrics on %s", addr)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("Metrics server failed: %v", err)
	}
}
