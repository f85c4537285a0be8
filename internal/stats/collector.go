package stats

import (
	"sync/atomic"
	"time"
)

// Collector tracks collection and planning progress using lock-free atomic
// counters. All methods are safe on a nil receiver, so callers that do not
// care about stats can simply pass nil.
type Collector struct {
	entriesScanned    atomic.Int64
	bytesScanned      atomic.Int64
	dirsVisited       atomic.Int64
	symlinksSeen      atomic.Int64
	entriesSkipped    atomic.Int64
	hardLinksResolved atomic.Int64
	fragmentsEmitted  atomic.Int64
	layersEmitted     atomic.Int64
	planBytes         atomic.Int64
	startTime         time.Time
}

// NewCollector creates a Collector with startTime set to now.
func NewCollector() *Collector {
	return &Collector{startTime: time.Now()}
}

// Snapshot is a point-in-time read of all counters.
type Snapshot struct {
	EntriesScanned    int64
	BytesScanned      int64
	DirsVisited       int64
	SymlinksSeen      int64
	EntriesSkipped    int64
	HardLinksResolved int64
	FragmentsEmitted  int64
	LayersEmitted     int64
	PlanBytes         int64
	Elapsed           time.Duration
}

func (c *Collector) AddEntriesScanned(n int64) { c.add(&c.entriesScanned, n) }
func (c *Collector) AddBytesScanned(n int64)   { c.add(&c.bytesScanned, n) }
func (c *Collector) AddDirsVisited(n int64)    { c.add(&c.dirsVisited, n) }
func (c *Collector) AddSymlinksSeen(n int64)   { c.add(&c.symlinksSeen, n) }
func (c *Collector) AddEntriesSkipped(n int64) { c.add(&c.entriesSkipped, n) }

func (c *Collector) AddHardLinksResolved(n int64) { c.add(&c.hardLinksResolved, n) }
func (c *Collector) AddFragmentsEmitted(n int64)  { c.add(&c.fragmentsEmitted, n) }
func (c *Collector) AddLayersEmitted(n int64)     { c.add(&c.layersEmitted, n) }
func (c *Collector) AddPlanBytes(n int64)         { c.add(&c.planBytes, n) }

func (c *Collector) add(counter *atomic.Int64, n int64) {
	if c == nil {
		return
	}
	counter.Add(n)
}

// Elapsed returns the time since the collector was created.
func (c *Collector) Elapsed() time.Duration {
	if c == nil || c.startTime.IsZero() {
		return 0
	}
	return time.Since(c.startTime)
}

// Snapshot returns a consistent point-in-time read of all counters.
func (c *Collector) Snapshot() Snapshot {
	if c == nil {
		return Snapshot{}
	}
	return Snapshot{
		EntriesScanned:    c.entriesScanned.Load(),
		BytesScanned:      c.bytesScanned.Load(),
		DirsVisited:       c.dirsVisited.Load(),
		SymlinksSeen:      c.symlinksSeen.Load(),
		EntriesSkipped:    c.entriesSkipped.Load(),
		HardLinksResolved: c.hardLinksResolved.Load(),
		FragmentsEmitted:  c.fragmentsEmitted.Load(),
		LayersEmitted:     c.layersEmitted.Load(),
		PlanBytes:         c.planBytes.Load(),
		Elapsed:           c.Elapsed(),
	}
}
