package ui

import (
	"fmt"
	"strings"

	"github.com/example/layerpack/internal/pack"
	"github.com/example/layerpack/internal/stats"
)

// shortDigest truncates a layer digest for display.
func shortDigest(d string) string {
	if len(d) > 12 {
		return d[:12]
	}
	return d
}

// RenderSummary renders the plan as a per-layer table followed by aggregate
// counters. Intended for human eyes; the JSON output is the machine contract.
func RenderSummary(plan []pack.Layer, snap stats.Snapshot, threshold int64) string {
	var b strings.Builder

	fmt.Fprintf(&b, "%-5s %-14s %8s %10s %12s  %s\n",
		"LAYER", "DIGEST", "FILES", "FRAGS", "BYTES", "LABEL")
	for i := range plan {
		layer := &plan[i]
		frags := 0
		for j := range layer.Files {
			if layer.Files[j].Fragment != nil {
				frags++
			}
		}
		fmt.Fprintf(&b, "%-5d %-14s %8s %10d %12s  %s\n",
			i,
			shortDigest(layer.Digest),
			FormatCount(int64(len(layer.Files))),
			frags,
			FormatBytes(layer.PayloadBytes()),
			layer.Label,
		)
	}

	fmt.Fprintf(&b, "\n%s layers, %s entries, %s planned (budget %s/layer)\n",
		FormatCount(snap.LayersEmitted),
		FormatCount(snap.EntriesScanned),
		FormatBytes(snap.PlanBytes),
		FormatBytes(threshold),
	)
	if snap.HardLinksResolved > 0 {
		fmt.Fprintf(&b, "%s hardlink aliases resolved\n", FormatCount(snap.HardLinksResolved))
	}
	if snap.FragmentsEmitted > 0 {
		fmt.Fprintf(&b, "%s fragments emitted\n", FormatCount(snap.FragmentsEmitted))
	}
	if snap.EntriesSkipped > 0 {
		fmt.Fprintf(&b, "%s entries skipped (see warnings)\n", FormatCount(snap.EntriesSkipped))
	}
	return b.String()
}
