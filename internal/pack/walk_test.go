package pack

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/example/layerpack/internal/event"
	"github.com/example/layerpack/internal/stats"
)

func TestWalk_FlatDir(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, "a.txt"), []byte("AAAA"), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(root, "b.txt"), []byte("BB"), 0644))

	files, err := Walk(root, WalkConfig{})
	require.NoError(t, err)
	require.Len(t, files, 2)

	assert.Equal(t, "a.txt", files[0].RelativePath)
	assert.Equal(t, filepath.Join(root, "a.txt"), files[0].Path)
	assert.Equal(t, int64(4), files[0].Size)
	assert.Equal(t, "b.txt", files[1].RelativePath)
	assert.Equal(t, int64(2), files[1].Size)

	for _, rec := range files {
		assert.NotZero(t, rec.Inode)
		assert.NotZero(t, rec.CtimeNsec)
		assert.Empty(t, rec.HardLinkTo, "the walk never sets aliases; that is the planner's pass")
		assert.Nil(t, rec.Fragment)
	}
}

func TestWalk_BreadthFirstOrder(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(root, "sub", "deep"), 0755))
	require.NoError(t, os.WriteFile(filepath.Join(root, "a.txt"), []byte("a"), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(root, "sub", "b.txt"), []byte("b"), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(root, "sub", "deep", "c.txt"), []byte("c"), 0644))

	files, err := Walk(root, WalkConfig{})
	require.NoError(t, err)

	var rels []string
	for _, rec := range files {
		rels = append(rels, rec.RelativePath)
	}
	// Level by level: all of the root's entries, then sub's, then deep's.
	assert.Equal(t, []string{
		"a.txt",
		"sub",
		filepath.Join("sub", "b.txt"),
		filepath.Join("sub", "deep"),
		filepath.Join("sub", "deep", "c.txt"),
	}, rels)
}

func TestWalk_SymlinkIsLeaf(t *testing.T) {
	root := t.TempDir()
	target := filepath.Join(root, "dir")
	require.NoError(t, os.Mkdir(target, 0755))
	require.NoError(t, os.WriteFile(filepath.Join(target, "inside.txt"), []byte("x"), 0644))
	require.NoError(t, os.Symlink("dir", filepath.Join(root, "link")))

	files, err := Walk(root, WalkConfig{})
	require.NoError(t, err)

	byRel := map[string]Record{}
	for _, rec := range files {
		byRel[rec.RelativePath] = rec
	}

	link, ok := byRel["link"]
	require.True(t, ok, "symlink must be recorded as a leaf")
	// lstat size: the length of the link text, not the target's size.
	assert.Equal(t, int64(len("dir")), link.Size)

	// The link was not followed: dir contents appear once, via dir itself.
	assert.Len(t, files, 3)
	_, ok = byRel[filepath.Join("link", "inside.txt")]
	assert.False(t, ok)
}

func TestWalk_HardlinksShareInode(t *testing.T) {
	root := t.TempDir()
	orig := filepath.Join(root, "orig")
	require.NoError(t, os.WriteFile(orig, []byte("content"), 0644))
	require.NoError(t, os.Link(orig, filepath.Join(root, "twin")))

	files, err := Walk(root, WalkConfig{})
	require.NoError(t, err)
	require.Len(t, files, 2)
	assert.Equal(t, files[0].Inode, files[1].Inode)

	p := New(0, WalkConfig{})
	require.NoError(t, p.IngestRecords(root, files))
	plan, err := p.GeneratePlan()
	require.NoError(t, err)
	require.Len(t, plan, 1)

	resolved := plan[0].Files
	assert.Empty(t, resolved[0].HardLinkTo)
	assert.Equal(t, "orig", resolved[1].HardLinkTo)
}

func TestWalk_RootNotDirectory(t *testing.T) {
	root := t.TempDir()
	file := filepath.Join(root, "plain.txt")
	require.NoError(t, os.WriteFile(file, []byte("x"), 0644))

	_, err := Walk(file, WalkConfig{})
	assert.ErrorIs(t, err, ErrNotDirectory)
}

func TestWalk_RootMissing(t *testing.T) {
	_, err := Walk(filepath.Join(t.TempDir(), "nope"), WalkConfig{})
	assert.Error(t, err)
}

func TestWalk_SkipPolicy(t *testing.T) {
	if os.Geteuid() == 0 {
		t.Skip("permission fixtures are meaningless as root")
	}

	root := t.TempDir()
	locked := filepath.Join(root, "locked")
	require.NoError(t, os.Mkdir(locked, 0755))
	require.NoError(t, os.WriteFile(filepath.Join(locked, "hidden.txt"), []byte("x"), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(root, "open.txt"), []byte("x"), 0644))
	require.NoError(t, os.Chmod(locked, 0000))
	t.Cleanup(func() { _ = os.Chmod(locked, 0755) })

	collector := stats.NewCollector()
	files, err := Walk(root, WalkConfig{OnError: SkipAndWarn, Stats: collector})
	require.NoError(t, err)

	// locked itself is recorded; its unreadable contents are skipped.
	var rels []string
	for _, rec := range files {
		rels = append(rels, rec.RelativePath)
	}
	assert.Contains(t, rels, "locked")
	assert.Contains(t, rels, "open.txt")
	assert.NotContains(t, rels, filepath.Join("locked", "hidden.txt"))
	assert.Equal(t, int64(1), collector.Snapshot().EntriesSkipped)

	_, err = Walk(root, WalkConfig{OnError: Abort})
	assert.Error(t, err)
}

func TestWalk_EventsAndStats(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.Mkdir(filepath.Join(root, "sub"), 0755))
	require.NoError(t, os.WriteFile(filepath.Join(root, "a.txt"), []byte("1234"), 0644))
	require.NoError(t, os.Symlink("a.txt", filepath.Join(root, "lnk")))

	collector := stats.NewCollector()
	events := make(chan event.Event, 16)
	files, err := Walk(root, WalkConfig{Stats: collector, Events: events})
	require.NoError(t, err)
	require.Len(t, files, 3)

	snap := collector.Snapshot()
	assert.Equal(t, int64(3), snap.EntriesScanned)
	assert.Equal(t, int64(1), snap.DirsVisited)
	assert.Equal(t, int64(1), snap.SymlinksSeen)
	assert.Equal(t, int64(0), snap.EntriesSkipped)

	close(events)
	var types []event.Type
	for e := range events {
		types = append(types, e.Type)
	}
	assert.Equal(t, []event.Type{event.WalkStarted, event.WalkComplete}, types)
}
