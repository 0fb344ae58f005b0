// Package encode builds FlatBuffers collection buffers.
//
// The read path never depends on this package; it exists so tests and the
// command-line tool can produce well-formed, sorted buffers.
package encode

import (
	"slices"

	flatbuffers "github.com/google/flatbuffers/go"

	"github.com/meigma/flatview/internal/fb"
)

// Version is the collection format version written by Collection.
const Version = 1

// Collection encodes a collection named name holding one Referrable per id.
//
// ids is not modified. Referrables are written in ascending id order, which
// keyed lookups require; duplicate ids are preserved.
func Collection(name string, ids []uint64) []byte {
	sorted := slices.Clone(ids)
	slices.Sort(sorted)

	builder := flatbuffers.NewBuilder(64 + 24*len(sorted))

	// Tables are built in reverse order so offsets grow toward the root.
	offsets := make([]flatbuffers.UOffsetT, len(sorted))
	for i := len(sorted) - 1; i >= 0; i-- {
		fb.ReferrableStart(builder)
		fb.ReferrableAddId(builder, sorted[i])
		offsets[i] = fb.ReferrableEnd(builder)
	}

	fb.CollectionStartReferrablesVector(builder, len(offsets))
	for i := len(offsets) - 1; i >= 0; i-- {
		builder.PrependUOffsetT(offsets[i])
	}
	vec := builder.EndVector(len(offsets))

	var nameOffset flatbuffers.UOffsetT
	if name != "" {
		nameOffset = builder.CreateString(name)
	}

	fb.CollectionStart(builder)
	fb.CollectionAddVersion(builder, Version)
	if name != "" {
		fb.CollectionAddName(builder, nameOffset)
	}
	fb.CollectionAddReferrables(builder, vec)
	root := fb.CollectionEnd(builder)

	fb.FinishCollectionBuffer(builder, root)
	return builder.FinishedBytes()
}

// Names encodes a collection whose ids are the fnv1a_64 hashes of names.
func Names(name string, names []string) []byte {
	ids := make([]uint64, len(names))
	for i, n := range names {
		ids[i] = fb.HashID(n)
	}
	return Collection(name, ids)
}
