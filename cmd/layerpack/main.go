package main

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"sync"

	"github.com/spf13/cobra"

	"github.com/example/layerpack/internal/config"
	"github.com/example/layerpack/internal/event"
	"github.com/example/layerpack/internal/pack"
	"github.com/example/layerpack/internal/stats"
	"github.com/example/layerpack/internal/ui"
)

var version = "dev"

func main() {
	os.Exit(run())
}

func run() int {
	var (
		thresholdStr string
		onError      string
		jsonOut      bool
		verbose      bool
		quiet        bool
		showVersion  bool
	)

	cmd := &cobra.Command{
		Use:   "layerpack [flags] ROOT...",
		Short: "Plan budget-bounded archive layers from directory trees",
		Long: `layerpack walks one or more directory trees (the layers of an image being
re-exported), resolves hardlink aliases within each tree, and plans how the
files pack into a sequence of output layers bounded by a byte budget. Files
larger than the remaining budget are split at budget-aligned offsets; small
trees merge into shared layers.

The plan is metadata only: no file contents are read. Hand the JSON output to
an archive writer to produce the actual layers.`,
		Args:          cobra.ArbitraryArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if showVersion {
				fmt.Printf("layerpack %s\n", version)
				return nil
			}
			if len(args) == 0 {
				return fmt.Errorf("at least one root directory is required")
			}

			// Config file fills in defaults for flags the user did not set.
			fileCfg, err := config.Load()
			if err != nil {
				slog.Warn("config file ignored", "path", config.Path(), "error", err)
			}
			if !cmd.Flags().Changed("threshold") && fileCfg.Defaults.Threshold != nil {
				thresholdStr = *fileCfg.Defaults.Threshold
			}
			if !cmd.Flags().Changed("on-error") && fileCfg.Defaults.OnError != nil {
				onError = *fileCfg.Defaults.OnError
			}
			if !cmd.Flags().Changed("json") && fileCfg.Defaults.JSON != nil {
				jsonOut = *fileCfg.Defaults.JSON
			}

			threshold, err := config.ParseByteSize(thresholdStr)
			if err != nil {
				return fmt.Errorf("--threshold: %w", err)
			}

			var policy pack.ErrorPolicy
			switch onError {
			case "skip":
				policy = pack.SkipAndWarn
			case "abort":
				policy = pack.Abort
			default:
				return fmt.Errorf("--on-error: %q (want skip or abort)", onError)
			}

			collector := stats.NewCollector()
			events := make(chan event.Event, 64)
			var wg sync.WaitGroup
			wg.Add(1)
			go func() {
				defer wg.Done()
				drainEvents(events)
			}()

			planner := pack.New(threshold, pack.WalkConfig{
				OnError: policy,
				Stats:   collector,
				Events:  events,
			})
			for _, root := range args {
				if err := planner.Ingest(root); err != nil {
					close(events)
					wg.Wait()
					return err
				}
			}

			plan, err := planner.GeneratePlan()
			close(events)
			wg.Wait()
			if err != nil {
				return err
			}

			if jsonOut {
				enc := json.NewEncoder(os.Stdout)
				enc.SetIndent("", "  ")
				return enc.Encode(plan)
			}
			if !quiet {
				fmt.Print(ui.RenderSummary(plan, collector.Snapshot(), threshold))
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&thresholdStr, "threshold", "t", "512M",
		"per-layer byte budget (e.g. 512M, 1G)")
	cmd.Flags().StringVar(&onError, "on-error", "skip",
		"mid-walk entry failure policy: skip or abort")
	cmd.Flags().BoolVar(&jsonOut, "json", false, "emit the full plan as JSON on stdout")
	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "debug logging")
	cmd.Flags().BoolVarP(&quiet, "quiet", "q", false, "suppress the summary table")
	cmd.Flags().BoolVar(&showVersion, "version", false, "print version and exit")

	level := slog.LevelInfo
	for _, a := range os.Args[1:] {
		if a == "-v" || a == "--verbose" {
			level = slog.LevelDebug
		}
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	})))

	if err := cmd.Execute(); err != nil {
		slog.Error("planning failed", "error", err)
		return 1
	}
	return 0
}

// drainEvents turns advisory progress events into log lines.
func drainEvents(events <-chan event.Event) {
	for e := range events {
		switch e.Type {
		case event.EntrySkipped:
			slog.Warn("entry skipped", "root", e.Root, "path", e.Path, "error", e.Err)
		case event.WalkStarted:
			slog.Debug("walking root", "root", e.Root)
		case event.WalkComplete:
			slog.Debug("root collected", "root", e.Root, "entries", e.Files)
		case event.LayerClosed:
			slog.Debug("layer closed", "label", e.Label, "files", e.Files, "bytes", e.Bytes)
		case event.PlanComplete:
			slog.Debug("plan complete", "layers", e.Files, "bytes", e.Bytes)
		}
	}
}
