package precompute

import (
	"crypto/sha256"
	"encoding/hex"
	"slices"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDigest(t *testing.T) {
	tests := []struct {
		value int64
		want  string
	}{
		{1, "6b86b273ff34fce19d6b804eff5a3f5747ada4eaa22f1d49c01e52ddb7875b4b"},
		{2, "d4735e3a265e16eee03f59718b9b5d03019c07d8b6c51f90da3a666eec13ab35"},
		{3, "4e07408562bedb8b60ce05c1decfe3ad16b72230967de01f640b7e4729b49fce"},
	}

	for _, tt := range tests {
		t.Run(strconv.FormatInt(tt.value, 10), func(t *testing.T) {
			assert.Equal(t, tt.want, Digest(tt.value))
		})
	}
}

func TestRecords_RoundTrip(t *testing.T) {
	r := Range{Start: 95, End: 1_205, Prefix: 12, GlobalPrefix: 3}
	require.NoError(t, r.Validate())

	values := slices.Collect(r.Values())
	records := slices.Collect(r.Records())
	require.Len(t, records, len(values))

	for i, rec := range records {
		assert.Equal(t, values[i], rec.Value, "records keep the order of values")

		sum := sha256.Sum256([]byte(strconv.FormatInt(rec.Value, 10)))
		assert.Equal(t, hex.EncodeToString(sum[:]), rec.Digest)
	}
}

func TestRecords_Scenario195(t *testing.T) {
	r := Range{Start: 5, End: 5, Prefix: 9, GlobalPrefix: 1}
	records := slices.Collect(r.Records())
	require.Len(t, records, 1)

	sum := sha256.Sum256([]byte("195"))
	assert.Equal(t, int64(195), records[0].Value)
	assert.Equal(t, hex.EncodeToString(sum[:]), records[0].Digest)
}
