package pack

// Record describes one filesystem entry collected from an ingested root, or
// one emitted fragment of it. Records are the contract with the downstream
// archive writer: it reads Fragment (or the whole file) from Path and honors
// HardLinkTo by writing a link reference instead of content.
type Record struct {
	// Path is the absolute source location. Opaque to the planner.
	Path string `json:"path"`
	// RelativePath is the path relative to the ingested root. It is the
	// archive entry name and the hardlink target key.
	RelativePath string `json:"relative_path"`
	// Size is the total byte length of the original file, constant across
	// every fragment derived from it.
	Size int64 `json:"size"`
	// Inode identifies content within one root's traversal.
	Inode uint64 `json:"inode"`
	// HardLinkTo, when non-empty, names the RelativePath of the first record
	// seen with this record's inode. Empty means this record owns its content.
	HardLinkTo string `json:"hard_link_to,omitempty"`
	// CtimeNsec is the change time in nanoseconds, passed through unmodified.
	CtimeNsec int64 `json:"ctime_nsec"`
	// Fragment is set only on records that carry a byte range of the original
	// file rather than the whole of it.
	Fragment *Fragment `json:"fragment,omitempty"`
}

// Fragment is a contiguous byte range of an original file. Concatenating a
// file's fragments in increasing StartOffset order reproduces exactly Size
// bytes with no gap and no overlap.
type Fragment struct {
	StartOffset int64 `json:"start_offset"`
	ChunkSize   int64 `json:"chunk_size"`
}

// IsAlias reports whether the record is a hardlink alias of an earlier record.
func (r *Record) IsAlias() bool { return r.HardLinkTo != "" }

// PayloadSize returns the bytes this record contributes to its layer: the
// fragment length when fragmented, the full file size otherwise.
func (r *Record) PayloadSize() int64 {
	if r.Fragment != nil {
		return r.Fragment.ChunkSize
	}
	return r.Size
}

// RootFiles is the ordered record list collected from one ingested root.
type RootFiles struct {
	Label string   `json:"label"`
	Files []Record `json:"files"`
}

// Layer is one budget-bounded group of records in the final plan,
// corresponding to one archive to be written downstream.
type Layer struct {
	// Label names the root whose record closed this layer, or "last" for the
	// trailing partially-filled layer (which may span several roots).
	Label string `json:"label"`
	// Digest is a fingerprint of the layer's record metadata. It identifies
	// the planned layer; it is not a hash of file contents.
	Digest string   `json:"digest"`
	Files  []Record `json:"files"`
}

// PayloadBytes returns the sum of the layer's record payload sizes.
func (l *Layer) PayloadBytes() int64 {
	var total int64
	for i := range l.Files {
		total += l.Files[i].PayloadSize()
	}
	return total
}
