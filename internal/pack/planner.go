package pack

import (
	"errors"
	"fmt"

	"github.com/example/layerpack/internal/event"
)

// DefaultSplitThreshold is the per-layer byte budget when none is configured.
const DefaultSplitThreshold int64 = 512 << 20 // 512 MiB

// LastLayerLabel marks the trailing partially-filled layer, which may hold
// records from several roots and so has no single root label.
const LastLayerLabel = "last"

// ErrPlannerConsumed is returned when a Planner is used after GeneratePlan.
var ErrPlannerConsumed = errors.New("planner already consumed")

// Planner accumulates ingested roots and produces a physical layer plan. The
// planning passes are pure transforms over the accumulated records; the only
// filesystem access happens inside Ingest. A Planner serves exactly one
// GeneratePlan call, which consumes its input.
type Planner struct {
	// SplitThreshold is the maximum payload bytes one output layer may hold
	// for records that are being freshly split.
	SplitThreshold int64

	walkCfg  WalkConfig
	roots    []RootFiles
	consumed bool
}

// New returns a Planner with the given per-layer byte budget. A zero or
// negative threshold selects DefaultSplitThreshold.
func New(threshold int64, walkCfg WalkConfig) *Planner {
	if threshold <= 0 {
		threshold = DefaultSplitThreshold
	}
	return &Planner{SplitThreshold: threshold, walkCfg: walkCfg}
}

// Ingest walks rootPath and appends its records as one root, labeled by the
// path itself. Roots are packed in ingestion order.
func (p *Planner) Ingest(rootPath string) error {
	if p.consumed {
		return ErrPlannerConsumed
	}
	files, err := Walk(rootPath, p.walkCfg)
	if err != nil {
		return fmt.Errorf("ingest %s: %w", rootPath, err)
	}
	p.roots = append(p.roots, RootFiles{Label: rootPath, Files: files})
	return nil
}

// IngestRecords appends pre-collected records as one root. The planner does
// not care whether records came from a live filesystem, an image manifest, or
// a fixture, as long as they are in traversal order.
func (p *Planner) IngestRecords(label string, files []Record) error {
	if p.consumed {
		return ErrPlannerConsumed
	}
	p.roots = append(p.roots, RootFiles{Label: label, Files: files})
	return nil
}

// GeneratePlan resolves hardlink aliases within each root and greedily packs
// all records, in input order, into budget-bounded layers. It consumes the
// planner; subsequent calls on the same Planner fail.
func (p *Planner) GeneratePlan() ([]Layer, error) {
	if p.consumed {
		return nil, ErrPlannerConsumed
	}
	p.consumed = true
	roots := p.roots
	p.roots = nil

	plan := p.packLayers(p.resolveHardLinks(roots))

	var planBytes int64
	for i := range plan {
		planBytes += plan[i].PayloadBytes()
	}
	p.walkCfg.Stats.AddPlanBytes(planBytes)
	event.Send(p.walkCfg.Events, event.Event{
		Type:  event.PlanComplete,
		Files: len(plan),
		Bytes: planBytes,
	})
	return plan, nil
}

// resolveHardLinks is pass 1: within each root independently, the first
// record seen with a given inode is canonical; every later record with that
// inode becomes an alias pointing at the canonical relative path. Detection
// never crosses roots. The input is not mutated; each stage owns its output.
func (p *Planner) resolveHardLinks(roots []RootFiles) []RootFiles {
	out := make([]RootFiles, 0, len(roots))
	for _, root := range roots {
		firstSeen := make(map[uint64]string, len(root.Files))
		files := make([]Record, len(root.Files))
		for i, rec := range root.Files {
			if canonical, seen := firstSeen[rec.Inode]; seen {
				rec.HardLinkTo = canonical
				p.walkCfg.Stats.AddHardLinksResolved(1)
			} else {
				firstSeen[rec.Inode] = rec.RelativePath
			}
			files[i] = rec
		}
		out = append(out, RootFiles{Label: root.Label, Files: files})
	}
	return out
}

// packLayers is pass 2: a single running layer persists across root
// boundaries, so small roots merge into one output layer and one file can
// straddle consecutive layers. Per record the remaining byte count is emitted
// in a loop:
//
//  1. if the remainder fits under the budget alongside the current layer, it
//     is appended (as a leftover fragment when the file is partially emitted,
//     as the whole record otherwise) and the record is done;
//  2. otherwise a hardlink alias is appended whole even past the budget —
//     fragmenting an alias would need fragment-aware link bookkeeping
//     downstream, so aliases are never split;
//  3. otherwise a fragment exactly filling the layer's remaining capacity is
//     cut and the layer is closed under the current root's label. A cut that
//     covers the entire file is emitted unfragmented.
func (p *Planner) packLayers(roots []RootFiles) []Layer {
	var (
		plan         []Layer
		current      []Record
		currentBytes int64
	)

	closeLayer := func(label string) {
		layer := Layer{Label: label, Files: current}
		layer.Digest = layerDigest(layer.Files)
		plan = append(plan, layer)
		p.walkCfg.Stats.AddLayersEmitted(1)
		event.Send(p.walkCfg.Events, event.Event{
			Type:  event.LayerClosed,
			Label: label,
			Files: len(layer.Files),
			Bytes: currentBytes,
		})
		current = nil
		currentBytes = 0
	}

	for _, root := range roots {
		for _, rec := range root.Files {
			if rec.Size == 0 {
				// Zero-size entries still carry metadata the archive writer
				// needs (empty files, entries whose payload lives elsewhere),
				// so they are kept rather than silently dropped.
				current = append(current, rec)
				continue
			}

			remainder := rec.Size
			for remainder > 0 {
				switch {
				case remainder+currentBytes < p.SplitThreshold:
					frag := rec
					if remainder != rec.Size {
						frag.Fragment = &Fragment{
							StartOffset: rec.Size - remainder,
							ChunkSize:   remainder,
						}
						p.walkCfg.Stats.AddFragmentsEmitted(1)
					}
					current = append(current, frag)
					currentBytes += remainder
					remainder = 0

				case rec.IsAlias():
					current = append(current, rec)
					currentBytes += remainder
					remainder = 0
					if currentBytes >= p.SplitThreshold {
						closeLayer(root.Label)
					}

				default:
					chunk := p.SplitThreshold - currentBytes
					frag := rec
					if chunk != rec.Size {
						frag.Fragment = &Fragment{
							StartOffset: rec.Size - remainder,
							ChunkSize:   chunk,
						}
						p.walkCfg.Stats.AddFragmentsEmitted(1)
					}
					current = append(current, frag)
					currentBytes += chunk
					remainder -= chunk
					closeLayer(root.Label)
				}
			}
		}
	}

	if len(current) > 0 {
		closeLayer(LastLayerLabel)
	}
	return plan
}
