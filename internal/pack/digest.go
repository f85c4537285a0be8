package pack

import (
	"encoding/binary"
	"encoding/hex"

	"github.com/zeebo/blake3"
)

// layerDigest fingerprints a layer's record metadata: entry names, link
// targets, sizes, and fragment ranges, in order. Two plans that place the
// same fragments in the same order produce the same digest, giving the
// archive writer a stable identity for a planned layer before any file bytes
// are read. Host-specific fields (absolute paths, inodes, ctimes) are
// excluded so the digest survives re-planning on another machine.
func layerDigest(files []Record) string {
	h := blake3.New()
	var buf [8]byte
	writeInt := func(v int64) {
		binary.LittleEndian.PutUint64(buf[:], uint64(v))
		h.Write(buf[:])
	}

	for i := range files {
		rec := &files[i]
		h.Write([]byte(rec.RelativePath))
		h.Write([]byte{0})
		h.Write([]byte(rec.HardLinkTo))
		h.Write([]byte{0})
		writeInt(rec.Size)
		if rec.Fragment != nil {
			writeInt(rec.Fragment.StartOffset)
			writeInt(rec.Fragment.ChunkSize)
		} else {
			writeInt(-1)
			writeInt(-1)
		}
	}
	return hex.EncodeToString(h.Sum(nil))
}
