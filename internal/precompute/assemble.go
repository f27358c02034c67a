package precompute

import (
	"errors"
	"fmt"
	"iter"
	"math"
)

var (
	ErrInvalidRange   = errors.New("rainbow: invalid range bounds")
	ErrNegativePrefix = errors.New("rainbow: negative prefix")
	ErrOverflow       = errors.New("rainbow: composite value overflows int64")
)

// Range describes a block of integers to expand and the two prefixes glued in front of each.
type Range struct {
	Start        int64
	End          int64
	Prefix       int64
	GlobalPrefix int64
}

func (r Range) String() string {
	return fmt.Sprintf("%d-%d prefix %d/%d", r.Start, r.End, r.GlobalPrefix, r.Prefix)
}

// Len returns the number of values the range expands to.
func (r Range) Len() int64 {
	return r.End - r.Start + 1
}

// Validate checks the bounds and prefixes. Bounds must satisfy 1 <= Start <= End, prefixes
// must be non-negative and the composite value of End must fit in an int64. Composition is
// monotonic in x, so checking End covers the whole range.
func (r Range) Validate() error {
	if r.Start < 1 || r.End < r.Start {
		return fmt.Errorf("%w: start %d, end %d", ErrInvalidRange, r.Start, r.End)
	}
	if r.Prefix < 0 || r.GlobalPrefix < 0 {
		return fmt.Errorf("%w: prefix %d, global prefix %d", ErrNegativePrefix, r.Prefix, r.GlobalPrefix)
	}
	if _, err := Compose(r.End, r.Prefix, r.GlobalPrefix); err != nil {
		return err
	}
	return nil
}

// Values lazily yields the composite value of every x in [Start, End] in ascending order of x.
// The sequence can be ranged over any number of times. Callers must Validate the range first;
// on an unvalidated range the sequence ends before the first value that does not compose.
func (r Range) Values() iter.Seq[int64] {
	return func(yield func(int64) bool) {
		for x := r.Start; x <= r.End; x++ {
			v, err := Compose(x, r.Prefix, r.GlobalPrefix)
			if err != nil {
				return
			}
			if !yield(v) {
				return
			}
			if x == math.MaxInt64 {
				return
			}
		}
	}
}

// DigitCount returns the number of decimal digits of n. DigitCount(0) is 1, matching the
// length of "0". The sign is not counted.
func DigitCount(n int64) int {
	if n == 0 {
		return 1
	}
	u := uint64(n)
	if n < 0 {
		u = uint64(-(n + 1)) + 1
	}
	digits := 0
	for u > 0 {
		u /= 10
		digits++
	}
	return digits
}

// Concat glues prefix in front of the decimal digits of x: prefix * 10^DigitCount(x) + x.
// A zero prefix leaves x unchanged.
func Concat(prefix, x int64) (int64, error) {
	if prefix == 0 {
		return x, nil
	}

	shift := int64(1)
	for range DigitCount(x) {
		if shift > math.MaxInt64/10 {
			return 0, fmt.Errorf("%w: %d followed by %d", ErrOverflow, prefix, x)
		}
		shift *= 10
	}

	if prefix > (math.MaxInt64-x)/shift {
		return 0, fmt.Errorf("%w: %d followed by %d", ErrOverflow, prefix, x)
	}
	return prefix*shift + x, nil
}

// Compose builds the composite value for x: prefix is glued in front of x, then globalPrefix
// in front of the result.
func Compose(x, prefix, globalPrefix int64) (int64, error) {
	v1, err := Concat(prefix, x)
	if err != nil {
		return 0, err
	}
	return Concat(globalPrefix, v1)
}
