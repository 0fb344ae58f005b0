// Package lookup implements keyed binary search over vectors of tables.
//
// The search reads only the key field of O(log n) tables and never
// deserializes the surrounding structure. Vectors must be sorted ascending
// by the key; this is not checked, and an unsorted vector yields an
// unspecified result.
package lookup

import (
	"cmp"

	flatbuffers "github.com/google/flatbuffers/go"

	"github.com/meigma/flatview/internal/view"
)

// Searcher finds tables in a sorted vector by key.
type Searcher[K any] struct {
	// Key extracts the key from a table, applying the schema default when
	// the key field is absent.
	Key func(t *view.View) K

	// Compare orders keys, returning a negative number when a < b, zero
	// when they are equal, and a positive number when a > b.
	Compare func(a, b K) int
}

// Ordered returns a Searcher that compares keys by their natural order.
func Ordered[K cmp.Ordered](key func(t *view.View) K) Searcher[K] {
	return Searcher[K]{Key: key, Compare: cmp.Compare[K]}
}

// Find returns a view of a table whose key equals key.
//
// When the vector holds several equal keys, any one of them may be
// returned. Use LowerBound or EqualRange for a defined choice.
func (s Searcher[K]) Find(vec view.Vector, key K) (view.View, bool) {
	var t view.View
	if !s.FindInto(vec, key, &t) {
		return view.View{}, false
	}
	return t, true
}

// FindInto is like Find but binds the match to dst, avoiding a copy when
// the caller reuses a view across lookups. dst is only modified on success.
func (s Searcher[K]) FindInto(vec view.Vector, key K, dst *view.View) bool {
	buf := vec.Bytes()
	span := vec.Count()
	start := flatbuffers.UOffsetT(0)
	var t view.View
	for span != 0 {
		middle := span / 2
		pos := vec.Elem(start + middle)
		t.Init(buf, pos)
		c := s.Compare(s.Key(&t), key)
		switch {
		case c > 0:
			span = middle
		case c < 0:
			middle++
			start += middle
			span -= middle
		default:
			*dst = t
			return true
		}
	}
	return false
}

// LowerBound returns the index of the first element whose key is not less
// than key, or vec.Len() when every key is smaller.
func (s Searcher[K]) LowerBound(vec view.Vector, key K) int {
	return s.bound(vec, key, 0, false)
}

// UpperBound returns the index of the first element whose key is greater
// than key, or vec.Len() when no key is greater.
func (s Searcher[K]) UpperBound(vec view.Vector, key K) int {
	return s.bound(vec, key, 0, true)
}

// EqualRange returns the half-open index range [lo, hi) of elements whose
// key equals key. The range is empty when no element matches.
func (s Searcher[K]) EqualRange(vec view.Vector, key K) (lo, hi int) {
	lo = s.bound(vec, key, 0, false)
	hi = s.bound(vec, key, lo, true)
	return lo, hi
}

// bound narrows the window [from, len) to the first element that sorts
// after key (upper) or not before key (!upper).
func (s Searcher[K]) bound(vec view.Vector, key K, from int, upper bool) int {
	buf := vec.Bytes()
	start := flatbuffers.UOffsetT(from) //nolint:gosec // from is a vector index
	span := vec.Count() - start
	var t view.View
	for span != 0 {
		middle := span / 2
		t.Init(buf, vec.Elem(start+middle))
		c := s.Compare(s.Key(&t), key)
		if c < 0 || (upper && c == 0) {
			middle++
			start += middle
			span -= middle
		} else {
			span = middle
		}
	}
	return int(start)
}
