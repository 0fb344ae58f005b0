// Package flatview provides zero-copy, keyed access to FlatBuffers
// collections of referrable records.
//
// A collection buffer holds a root table with a vector of Referrable tables
// sorted by their uint64 id. Lookups binary search that vector directly in
// the serialized bytes, reading only the id field of O(log n) tables; nothing
// is deserialized or copied.
//
// # Quick Start
//
// Load a buffer and look up a record:
//
//	idx, err := flatview.Load(data)
//	if err != nil {
//	    return err
//	}
//	if r, ok := idx.Lookup(42); ok {
//	    fmt.Println(r.ID())
//	}
//
// Load verifies the buffer once (bounds, alignment, id order). After that,
// lookups perform no validation and never return errors: a missing id is
// reported as (zero, false).
//
// # Duplicate ids
//
// Lookup returns any record carrying the id. Use LookupFirst for the first
// such record in vector order, or LookupAll to iterate over all of them.
//
// # Storage
//
// Store keeps buffers in a content-addressed [cache.Cache], loading each
// digest at most once even under concurrent requests:
//
//	c, err := disk.New("/var/cache/flatview")
//	if err != nil {
//	    return err
//	}
//	s, err := flatview.NewStore(c)
//	if err != nil {
//	    return err
//	}
//	dgst, err := s.Put(data)
//	idx, err := s.Get(dgst)
//
// Buffers are borrowed, not copied. Callers must not modify a buffer after
// handing it to Load; concurrent lookups over the same Index are safe.
package flatview
