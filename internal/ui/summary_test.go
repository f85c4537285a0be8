package ui

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/example/layerpack/internal/pack"
	"github.com/example/layerpack/internal/stats"
)

func TestRenderSummary(t *testing.T) {
	plan := []pack.Layer{
		{
			Label:  "/images/base",
			Digest: "abcdef0123456789abcdef",
			Files: []pack.Record{
				{RelativePath: "bin/sh", Size: 100},
				{RelativePath: "lib/libc", Size: 400, Fragment: &pack.Fragment{StartOffset: 0, ChunkSize: 50}},
			},
		},
		{
			Label:  "last",
			Digest: "1234",
			Files: []pack.Record{
				{RelativePath: "lib/libc", Size: 400, Fragment: &pack.Fragment{StartOffset: 50, ChunkSize: 350}},
			},
		},
	}
	snap := stats.Snapshot{
		EntriesScanned:    3,
		LayersEmitted:     2,
		PlanBytes:         500,
		HardLinksResolved: 1,
		FragmentsEmitted:  2,
		EntriesSkipped:    1,
	}

	out := RenderSummary(plan, snap, 150)

	assert.Contains(t, out, "/images/base")
	assert.Contains(t, out, "last")
	assert.Contains(t, out, "abcdef012345") // digest truncated to 12 chars
	assert.NotContains(t, out, "abcdef0123456789")
	assert.Contains(t, out, "2 layers")
	assert.Contains(t, out, "1 hardlink aliases resolved")
	assert.Contains(t, out, "2 fragments emitted")
	assert.Contains(t, out, "1 entries skipped")

	lines := strings.Split(strings.TrimSpace(out), "\n")
	assert.True(t, strings.HasPrefix(lines[0], "LAYER"))
}
