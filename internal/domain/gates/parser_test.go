package gates_test

import (
	"math/rand"
	"strings"
	"testing"

	"github.com/opencanoetiming/c123-scoring/internal/domain/gates"
	"github.com/stretchr/testify/require"
)

func ints(values []gates.Value) []any {
	out := make([]any, len(values))
	for i, v := range values {
		if v.Present {
			out[i] = v.N
		} else {
			out[i] = nil
		}
	}
	return out
}

func TestDetectFormat(t *testing.T) {
	require.Equal(t, gates.FormatEmpty, gates.DetectFormat(""))
	require.Equal(t, gates.FormatToken, gates.DetectFormat("0 0 2 50 0"))
	require.Equal(t, gates.FormatFixedWidth, gates.DetectFormat("  0  0  2 50  0"))
	require.Equal(t, gates.FormatFixedWidth, gates.DetectFormat("0  0  2 50  0"))
}

func TestParse_FormatDetection(t *testing.T) {
	want := []any{0, 0, 2, 50, 0}
	require.Equal(t, want, ints(gates.Parse("  0  0  2 50  0")))
	require.Equal(t, want, ints(gates.Parse("0 0 2 50 0")))
	require.Empty(t, gates.Parse(""))
}

func TestParse_AllClear(t *testing.T) {
	raw := strings.Repeat("  0", 24)
	values := gates.Parse(raw)
	require.Len(t, values, 24)
	for _, v := range values {
		require.Equal(t, gates.Some(0), v)
	}
}

func TestParse_FixedWidthWithDeletedPenalty(t *testing.T) {
	raw := "  0  0  0     0  0  2  0 50" + strings.Repeat("  0", 15)
	values := gates.Parse(raw)
	require.Len(t, values, 24)
	require.Equal(t, gates.Some(0), values[0])
	require.Equal(t, gates.Absent, values[3])
	require.Equal(t, gates.Some(0), values[4])
	require.Equal(t, gates.Some(50), values[8])
}

func TestParse_TrimmedFixedWidth(t *testing.T) {
	// leading padding of the first block stripped by an intermediary
	values := gates.Parse("0  0  0  2  2  0     2  0  0  0 50  2  2")
	require.Equal(t, []any{0, 0, 0, 2, 2, 0, nil, 2, 0, 0, 0, 50, 2, 2}, ints(values))
}

func TestParse_StripsTrailingFiller(t *testing.T) {
	values := gates.Parse("  0  2" + strings.Repeat("   ", 10))
	require.Equal(t, []any{0, 2}, ints(values))
}

func TestParse_MalformedFieldsDegrade(t *testing.T) {
	require.Equal(t, []any{0, nil, 2}, ints(gates.Parse("0 x 2")))
	require.Equal(t, []any{0, nil, 50}, ints(gates.Parse("  0 ab 50")))
	require.Equal(t, []any{nil, 2}, ints(gates.Parse("  ?  2")))
}

func TestParse_TokenWithSurroundingSpace(t *testing.T) {
	require.Equal(t, []any{2, 0}, ints(gates.Parse(" 2 0 ")))
}

func TestEncodeFixedWidth(t *testing.T) {
	values := []gates.Value{gates.Some(0), gates.Absent, gates.Some(2), gates.Some(50)}
	require.Equal(t, "  0     2 50", gates.EncodeFixedWidth(values))
}

func TestRoundTrip(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	choices := []gates.Value{gates.Some(0), gates.Some(2), gates.Some(50), gates.Absent}

	for iter := 0; iter < 500; iter++ {
		n := 1 + rng.Intn(30)
		var config strings.Builder
		want := make([]gates.Value, n)
		for i := range want {
			want[i] = choices[rng.Intn(len(choices))]
			if rng.Intn(2) == 0 {
				config.WriteByte('N')
			} else {
				config.WriteByte('R')
			}
		}

		raw := gates.EncodeFixedWidth(want)
		records, err := gates.BuildGateRecords(raw, config.String())
		require.NoError(t, err)
		require.Equal(t, want, gates.Values(records), "raw %q", raw)
	}
}
