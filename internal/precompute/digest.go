package precompute

import (
	"crypto/sha256"
	"encoding/hex"
	"iter"
	"strconv"

	"rainbow/internal/store"
)

// Digest returns the lowercase hex SHA-256 of the decimal text of v.
func Digest(v int64) string {
	var buf [20]byte
	sum := sha256.Sum256(strconv.AppendInt(buf[:0], v, 10))
	return hex.EncodeToString(sum[:])
}

// Records pairs every value with its digest, keeping the order of values.
func Records(values iter.Seq[int64]) iter.Seq[store.Record] {
	return func(yield func(store.Record) bool) {
		for v := range values {
			if !yield(store.Record{Digest: Digest(v), Value: v}) {
				return
			}
		}
	}
}

// Records yields the (digest, value) pairs of the whole range.
func (r Range) Records() iter.Seq[store.Record] {
	return Records(r.Values())
}
