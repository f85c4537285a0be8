package pack

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"syscall"

	"golang.org/x/sys/unix"

	"github.com/example/layerpack/internal/event"
	"github.com/example/layerpack/internal/stats"
)

// ErrNotDirectory is returned when an ingested root exists but is not a
// directory.
var ErrNotDirectory = errors.New("not a directory")

// ErrorPolicy selects how the walk treats per-entry failures encountered
// after the root itself has been validated.
type ErrorPolicy int

const (
	// SkipAndWarn drops the failing entry, emits an EntrySkipped event, and
	// keeps walking. Trees being exported can mutate under the walk, and a
	// plan minus a vanished entry beats no plan.
	SkipAndWarn ErrorPolicy = iota
	// Abort stops the walk at the first per-entry failure.
	Abort
)

// WalkConfig controls metadata collection for one root.
type WalkConfig struct {
	OnError ErrorPolicy
	Stats   *stats.Collector
	Events  chan<- event.Event
}

// Walk collects one Record per entry reachable under root, in breadth-first
// order: directories are expanded level by level via an explicit worklist,
// and entries within a directory follow read-order. Symlinks are recorded as
// leaf entries using their own lstat metadata (size of the link text) and are
// never followed, regardless of target.
//
// The root must be a readable directory; anything else is a configuration
// error and aborts before any records are produced.
func Walk(root string, cfg WalkConfig) ([]Record, error) {
	if err := checkRoot(root); err != nil {
		return nil, err
	}

	event.Send(cfg.Events, event.Event{Type: event.WalkStarted, Root: root})

	var files []Record
	queue := []string{""} // pending directories, relative to root

	for len(queue) > 0 {
		rel := queue[0]
		queue = queue[1:]

		entries, err := os.ReadDir(filepath.Join(root, rel))
		if err != nil {
			if skipErr := cfg.skip(root, filepath.Join(root, rel), err); skipErr != nil {
				return nil, skipErr
			}
			continue
		}

		for _, entry := range entries {
			entryRel := filepath.Join(rel, entry.Name())
			entryPath := filepath.Join(root, entryRel)

			info, err := os.Lstat(entryPath)
			if err != nil {
				if skipErr := cfg.skip(root, entryPath, err); skipErr != nil {
					return nil, skipErr
				}
				continue
			}

			stat, ok := info.Sys().(*syscall.Stat_t)
			if !ok {
				if skipErr := cfg.skip(root, entryPath, errors.New("no stat data")); skipErr != nil {
					return nil, skipErr
				}
				continue
			}

			// Lstat never reports a symlink as a directory, so symlinks fall
			// through as leaves here.
			if info.IsDir() {
				queue = append(queue, entryRel)
				cfg.Stats.AddDirsVisited(1)
			}
			if info.Mode()&os.ModeSymlink != 0 {
				cfg.Stats.AddSymlinksSeen(1)
			}

			files = append(files, Record{
				Path:         entryPath,
				RelativePath: entryRel,
				Size:         info.Size(),
				Inode:        inodeFromStat(stat),
				CtimeNsec:    ctimeNsecFromStat(stat),
			})
			cfg.Stats.AddEntriesScanned(1)
			cfg.Stats.AddBytesScanned(info.Size())
		}
	}

	event.Send(cfg.Events, event.Event{
		Type:  event.WalkComplete,
		Root:  root,
		Files: len(files),
	})
	return files, nil
}

// skip applies the configured error policy to a per-entry failure. A nil
// return means the entry was dropped and the walk continues.
func (cfg *WalkConfig) skip(root, path string, err error) error {
	if cfg.OnError == Abort {
		return fmt.Errorf("walk %s: %w", path, err)
	}
	cfg.Stats.AddEntriesSkipped(1)
	event.Send(cfg.Events, event.Event{
		Type: event.EntrySkipped,
		Root: root,
		Path: path,
		Err:  err,
	})
	return nil
}

// checkRoot validates an ingested root up front. Both failure modes are
// misconfigurations, not transient conditions: a plan over a partially
// readable root would be meaningless.
func checkRoot(root string) error {
	if err := unix.Access(root, unix.R_OK|unix.X_OK); err != nil && errors.Is(err, os.ErrPermission) {
		return fmt.Errorf(
			"root %s is not readable: %w (grant the invoking user read access, e.g. setfacl -R -m u:$USER:rx)",
			root, err,
		)
	}

	info, err := os.Stat(root)
	if err != nil {
		return fmt.Errorf("stat root %s: %w", root, err)
	}
	if !info.IsDir() {
		return fmt.Errorf("root %s: %w", root, ErrNotDirectory)
	}
	return nil
}
