// Accessors for schema/collection.fbs, laid out like flatc's Go output.
// Running go generate in this directory replaces them with flatc's.

package fb

import (
	flatbuffers "github.com/google/flatbuffers/go"
)

type Collection struct {
	_tab flatbuffers.Table
}

func GetRootAsCollection(buf []byte, offset flatbuffers.UOffsetT) *Collection {
	n := flatbuffers.GetUOffsetT(buf[offset:])
	x := &Collection{}
	x.Init(buf, n+offset)
	return x
}

func FinishCollectionBuffer(builder *flatbuffers.Builder, offset flatbuffers.UOffsetT) {
	identifierBytes := []byte("RFRB")
	builder.FinishWithFileIdentifier(offset, identifierBytes)
}

func CollectionBufferHasIdentifier(buf []byte) bool {
	return flatbuffers.BufferHasIdentifier(buf, "RFRB")
}

func (rcv *Collection) Init(buf []byte, i flatbuffers.UOffsetT) {
	rcv._tab.Bytes = buf
	rcv._tab.Pos = i
}

func (rcv *Collection) Table() flatbuffers.Table {
	return rcv._tab
}

func (rcv *Collection) Version() uint32 {
	o := flatbuffers.UOffsetT(rcv._tab.Offset(4))
	if o != 0 {
		return rcv._tab.GetUint32(o + rcv._tab.Pos)
	}
	return 0
}

func (rcv *Collection) MutateVersion(n uint32) bool {
	return rcv._tab.MutateUint32Slot(4, n)
}

func (rcv *Collection) Name() []byte {
	o := flatbuffers.UOffsetT(rcv._tab.Offset(6))
	if o != 0 {
		return rcv._tab.ByteVector(o + rcv._tab.Pos)
	}
	return nil
}

func (rcv *Collection) Referrables(obj *Referrable, j int) bool {
	o := flatbuffers.UOffsetT(rcv._tab.Offset(8))
	if o != 0 {
		x := rcv._tab.Vector(o)
		x += flatbuffers.UOffsetT(j) * 4
		x = rcv._tab.Indirect(x)
		obj.Init(rcv._tab.Bytes, x)
		return true
	}
	return false
}

func (rcv *Collection) ReferrablesByKey(obj *Referrable, key uint64) bool {
	o := flatbuffers.UOffsetT(rcv._tab.Offset(8))
	if o != 0 {
		x := rcv._tab.Vector(o)
		return obj.LookupByKey(key, x, rcv._tab.Bytes)
	}
	return false
}

func (rcv *Collection) ReferrablesLength() int {
	o := flatbuffers.UOffsetT(rcv._tab.Offset(8))
	if o != 0 {
		return rcv._tab.VectorLen(o)
	}
	return 0
}

func CollectionStart(builder *flatbuffers.Builder) {
	builder.StartObject(3)
}
func CollectionAddVersion(builder *flatbuffers.Builder, version uint32) {
	builder.PrependUint32Slot(0, version, 0)
}
func CollectionAddName(builder *flatbuffers.Builder, name flatbuffers.UOffsetT) {
	builder.PrependUOffsetTSlot(1, flatbuffers.UOffsetT(name), 0)
}
func CollectionAddReferrables(builder *flatbuffers.Builder, referrables flatbuffers.UOffsetT) {
	builder.PrependUOffsetTSlot(2, flatbuffers.UOffsetT(referrables), 0)
}
func CollectionStartReferrablesVector(builder *flatbuffers.Builder, numElems int) flatbuffers.UOffsetT {
	return builder.StartVector(4, numElems, 4)
}
func CollectionEnd(builder *flatbuffers.Builder) flatbuffers.UOffsetT {
	return builder.EndObject()
}
