package precompute

import (
	"math"
	"slices"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDigitCount(t *testing.T) {
	tests := []struct {
		n    int64
		want int
	}{
		{0, 1},
		{1, 1},
		{7, 1},
		{9, 1},
		{10, 2},
		{99, 2},
		{100, 3},
		{999, 3},
		{1000, 4},
		{math.MaxInt64, 19},
		{-5, 1},
		{-100, 3},
		{math.MinInt64, 19},
	}

	for _, tt := range tests {
		t.Run(strconv.FormatInt(tt.n, 10), func(t *testing.T) {
			assert.Equal(t, tt.want, DigitCount(tt.n))
		})
	}
}

// Every power of ten and its neighbours, up to the largest one an int64 holds.
func TestDigitCount_PowersOfTen(t *testing.T) {
	for p := int64(10); ; p *= 10 {
		for _, n := range []int64{p - 1, p, p + 1} {
			if got, want := DigitCount(n), len(strconv.FormatInt(n, 10)); got != want {
				t.Errorf("DigitCount(%d) = %d, want %d", n, got, want)
			}
		}
		if p > math.MaxInt64/10 {
			break
		}
	}
}

func TestDigitCount_MatchesDecimalLength(t *testing.T) {
	limit := int64(99_999_999)
	step := int64(1)
	if testing.Short() {
		step = 997
	}

	for n := int64(1); n <= limit; n += step {
		if got, want := DigitCount(n), len(strconv.FormatInt(n, 10)); got != want {
			t.Fatalf("DigitCount(%d) = %d, want %d", n, got, want)
		}
	}
}

func TestConcat(t *testing.T) {
	tests := []struct {
		name    string
		prefix  int64
		x       int64
		want    int64
		wantErr error
	}{
		{name: "zero prefix", prefix: 0, x: 42, want: 42},
		{name: "single digits", prefix: 9, x: 5, want: 95},
		{name: "power of ten", prefix: 7, x: 100, want: 7100},
		{name: "multi digit prefix", prefix: 380, x: 501234567, want: 380501234567},
		{name: "largest fitting", prefix: 9, x: 223372036854775807, want: math.MaxInt64},
		{name: "overflow by one", prefix: 9, x: 223372036854775808, wantErr: ErrOverflow},
		{name: "nineteen digit x", prefix: 1, x: math.MaxInt64, wantErr: ErrOverflow},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Concat(tt.prefix, tt.x)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestCompose(t *testing.T) {
	// x=5, d1=1, v1=9*10+5=95, d2=2, v2=1*100+95=195
	v, err := Compose(5, 9, 1)
	require.NoError(t, err)
	assert.Equal(t, int64(195), v)

	v, err = Compose(3, 0, 0)
	require.NoError(t, err)
	assert.Equal(t, int64(3), v)

	v, err = Compose(10, 0, 7)
	require.NoError(t, err)
	assert.Equal(t, int64(710), v)
}

func TestRange_Validate(t *testing.T) {
	tests := []struct {
		name    string
		r       Range
		wantErr error
	}{
		{name: "valid", r: Range{Start: 1, End: 3}},
		{name: "single value", r: Range{Start: 5, End: 5, Prefix: 9, GlobalPrefix: 1}},
		{name: "zero start", r: Range{Start: 0, End: 3}, wantErr: ErrInvalidRange},
		{name: "negative start", r: Range{Start: -3, End: 3}, wantErr: ErrInvalidRange},
		{name: "end before start", r: Range{Start: 10, End: 9}, wantErr: ErrInvalidRange},
		{name: "negative prefix", r: Range{Start: 1, End: 2, Prefix: -1}, wantErr: ErrNegativePrefix},
		{name: "negative global prefix", r: Range{Start: 1, End: 2, GlobalPrefix: -1}, wantErr: ErrNegativePrefix},
		{name: "overflowing end", r: Range{Start: 1, End: 999_999_999_999, Prefix: 99_999_999, GlobalPrefix: 1}, wantErr: ErrOverflow},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.r.Validate()
			if tt.wantErr == nil {
				assert.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, tt.wantErr)
			}
		})
	}
}

func TestRange_Values(t *testing.T) {
	tests := []struct {
		name string
		r    Range
		want []int64
	}{
		{
			name: "no prefixes",
			r:    Range{Start: 1, End: 3},
			want: []int64{1, 2, 3},
		},
		{
			name: "both prefixes",
			r:    Range{Start: 5, End: 5, Prefix: 9, GlobalPrefix: 1},
			want: []int64{195},
		},
		{
			name: "crosses a power of ten",
			r:    Range{Start: 8, End: 11, Prefix: 4},
			want: []int64{48, 49, 410, 411},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.NoError(t, tt.r.Validate())
			assert.Equal(t, tt.want, slices.Collect(tt.r.Values()))
		})
	}
}

func TestRange_ValuesCountAndOrder(t *testing.T) {
	ranges := []Range{
		{Start: 1, End: 1},
		{Start: 1, End: 1000},
		{Start: 95, End: 10_005, Prefix: 3, GlobalPrefix: 44},
		{Start: 999_990, End: 1_000_010, Prefix: 7},
	}

	for _, r := range ranges {
		t.Run(r.String(), func(t *testing.T) {
			require.NoError(t, r.Validate())
			values := slices.Collect(r.Values())
			assert.Len(t, values, int(r.Len()))
			assert.True(t, slices.IsSorted(values), "values must ascend with x")

			// Restartable: a second pass yields the same sequence
			assert.Equal(t, values, slices.Collect(r.Values()))
		})
	}
}

func TestRange_ValuesStopsEarly(t *testing.T) {
	r := Range{Start: 1, End: 1_000_000}
	var seen int
	for range r.Values() {
		seen++
		if seen == 3 {
			break
		}
	}
	assert.Equal(t, 3, seen)
}

func TestRange_ValuesAtMaxInt64(t *testing.T) {
	r := Range{Start: math.MaxInt64 - 1, End: math.MaxInt64}
	require.NoError(t, r.Validate())
	assert.Equal(t, []int64{math.MaxInt64 - 1, math.MaxInt64}, slices.Collect(r.Values()))
}

func TestRange_ValuesEndsAtOverflow(t *testing.T) {
	// 922337203685477580 followed by 7 is MaxInt64, followed by 8 it no longer fits
	r := Range{Start: 7, End: 9, Prefix: 922337203685477580}
	require.ErrorIs(t, r.Validate(), ErrOverflow)

	assert.Equal(t, []int64{math.MaxInt64}, slices.Collect(r.Values()))

	var digests []string
	for rec := range r.Records() {
		digests = append(digests, rec.Digest)
	}
	assert.Equal(t, []string{Digest(math.MaxInt64)}, digests)
}
