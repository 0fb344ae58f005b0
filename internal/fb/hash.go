package fb

//go:generate flatc --go --go-namespace fb -o .. ../../schema/collection.fbs

import "hash/fnv"

// HashID returns the Referrable id for name, using the fnv1a_64 hash
// declared on the id field.
func HashID(name string) uint64 {
	h := fnv.New64a()
	_, _ = h.Write([]byte(name))
	return h.Sum64()
}
