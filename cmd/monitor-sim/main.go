// Command monitor-sim is a terminal host shell for the streaming engine. It
// plays the historical batch back against a running dashboard backend and
// prints the feed, counters, and defect notifications as they happen, acting
// the part of the browser UI for local testing.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/Leesungkyoung/Cpastone02/backend"
	"github.com/Leesungkyoung/Cpastone02/streaming"
)

var (
	apiURL        string
	location      string
	seed          int64
	drainInterval time.Duration
	defectRate    float64
	verbose       bool
)

func main() {
	root := &cobra.Command{
		Use:   "monitor-sim",
		Short: "Replay the historical sensor feed as a live console dashboard",
		RunE:  run,

		SilenceUsage: true,
	}

	root.Flags().StringVar(&apiURL, "api-url", "http://localhost:8000",
		"base URL of the dashboard backend")
	root.Flags().StringVar(&location, "location", string(streaming.LocationMonitor),
		"screen the simulated operator starts on")
	root.Flags().Int64Var(&seed, "seed", 0,
		"random seed for the defect simulation (0 = time-based)")
	root.Flags().DurationVar(&drainInterval, "drain-interval", 2*time.Second,
		"cadence of the playback feed")
	root.Flags().Float64Var(&defectRate, "defect-rate", 0,
		"simulated defect probability (0 = default)")
	root.Flags().BoolVar(&verbose, "verbose", false, "enable debug logging")

	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

func run(_ *cobra.Command, _ []string) error {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	}))

	client, err := backend.New(apiURL, backend.WithLogger(logger))
	if err != nil {
		return err
	}

	opts := []streaming.EngineOption{
		streaming.WithLogger(logger),
		streaming.WithDrainInterval(drainInterval),
	}
	if seed != 0 {
		opts = append(opts,
			streaming.WithRandom(rand.New(rand.NewSource(seed))))
	}
	if defectRate > 0 {
		opts = append(opts, streaming.WithDefectRate(defectRate))
	}

	engine, err := streaming.New(client, opts...)
	if err != nil {
		return err
	}
	engine.SetLocation(streaming.Location(location))

	engine.OnItemDisplayed(func(item streaming.DisplayedItem) {
		fmt.Printf("▶ product %s entered the line\n", item.ProductID)
	})
	engine.OnStageChanged(func(id string, stage streaming.Stage) {
		logger.Debug("stage", "item", id, "stage", stage.String())
	})
	engine.OnCountersChanged(func(production, defects int) {
		fmt.Printf("  produced=%d defects=%d\n", production, defects)
	})
	engine.OnPopupOpened(func(item streaming.DisplayedItem) {
		fmt.Printf("‼ DEFECT %s (%.0f%%) sensors=%v\n",
			item.ProductID, item.Confidence*100, item.TopSensors)
	})
	engine.OnToastRaised(func(t streaming.Toast) {
		fmt.Printf("🔔 defect toast for product %s, activating\n",
			t.Item.ProductID)
		// The simulated operator always follows the toast.
		if err := engine.ActivateToast(t.ID); err != nil {
			logger.Error("toast activation failed", "error", err)
		}
	})
	engine.BindNavigator(func(target streaming.Location) {
		fmt.Printf("→ navigating to %s\n", target)
		engine.SetLocation(target)
	})

	done := make(chan struct{})
	engine.OnStreamFinished(func() {
		close(done)
	})

	ctx, stop := signal.NotifyContext(
		context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := engine.Start(ctx); err != nil {
		return err
	}
	defer engine.Stop()

	select {
	case <-done:
	case <-ctx.Done():
		return ctx.Err()
	}

	// Let the trailing item animations and alert posts settle.
	time.Sleep(4 * time.Second)

	snap := engine.Snapshot()
	fmt.Printf("\nsession complete: produced=%d defects=%d history=%d\n",
		snap.ProductionCount, snap.DefectCount, len(snap.DefectHistory))
	return nil
}
