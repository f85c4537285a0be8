package pack

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLayerDigest_Deterministic(t *testing.T) {
	files := []Record{
		testRecord("a", 10, 1),
		testRecord("b", 20, 2),
	}
	files[1].Fragment = &Fragment{StartOffset: 5, ChunkSize: 15}

	assert.Equal(t, layerDigest(files), layerDigest(files))
	assert.Len(t, layerDigest(files), 64)
}

func TestLayerDigest_IgnoresHostFields(t *testing.T) {
	a := []Record{testRecord("a", 10, 1)}
	b := []Record{testRecord("a", 10, 99)}
	b[0].Path = "/somewhere/else/a"
	b[0].CtimeNsec = 12345

	// Same plan shape on a different host hashes identically.
	assert.Equal(t, layerDigest(a), layerDigest(b))
}

func TestLayerDigest_Sensitivity(t *testing.T) {
	base := []Record{testRecord("a", 10, 1), testRecord("b", 20, 2)}

	reordered := []Record{base[1], base[0]}
	assert.NotEqual(t, layerDigest(base), layerDigest(reordered))

	resized := []Record{testRecord("a", 11, 1), testRecord("b", 20, 2)}
	assert.NotEqual(t, layerDigest(base), layerDigest(resized))

	fragmented := []Record{testRecord("a", 10, 1), testRecord("b", 20, 2)}
	fragmented[0].Fragment = &Fragment{StartOffset: 0, ChunkSize: 10}
	assert.NotEqual(t, layerDigest(base), layerDigest(fragmented))

	linked := []Record{testRecord("a", 10, 1), testRecord("b", 20, 2)}
	linked[1].HardLinkTo = "a"
	assert.NotEqual(t, layerDigest(base), layerDigest(linked))
}
