package partition

import (
	"math"
	"math/rand"
	"testing"

	"gsweb/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seg(start, end int) models.TxProfile {
	p := DefaultProfile
	p.RangeStart = start
	p.RangeEnd = end
	return p
}

func ranges(p Partition) [][2]int {
	out := make([][2]int, 0, len(p))
	for _, s := range p {
		out = append(out, [2]int{s.RangeStart, s.RangeEnd})
	}
	return out
}

func TestNormalize_Empty(t *testing.T) {
	a := DefaultAxis()
	p := a.Normalize(nil)

	require.Len(t, p, 1)
	assert.Equal(t, 999, p[0].RangeStart)
	assert.Equal(t, 2000, p[0].RangeEnd)
	assert.True(t, p[0].SameParams(DefaultProfile), "default bundle expected")
	assert.NoError(t, a.Check(p))
}

func TestNormalize_RepairsEdgesAndOverlap(t *testing.T) {
	a := DefaultAxis()
	p := a.Normalize([]models.TxProfile{seg(1000, 1500), seg(1500, 1800)})

	assert.Equal(t, [][2]int{{999, 1500}, {1501, 2000}}, ranges(p))
	assert.NoError(t, a.Check(p))
}

func TestNormalize_StableSort(t *testing.T) {
	a := DefaultAxis()
	first := seg(1200, 1300)
	first.Bitrate = 1
	second := seg(1200, 1400)
	second.Bitrate = 2

	p := a.Normalize([]models.TxProfile{seg(1500, 2000), first, second})

	require.Len(t, p, 3)
	assert.Equal(t, 1, p[0].Bitrate)
	assert.Equal(t, 2, p[1].Bitrate)
	assert.Equal(t, [][2]int{{999, 1300}, {1301, 1400}, {1401, 2000}}, ranges(p))
}

func TestNormalize_DoesNotMutateInput(t *testing.T) {
	a := DefaultAxis()
	raw := []models.TxProfile{seg(1500, 2000), seg(1000, 1499)}
	a.Normalize(raw)
	assert.Equal(t, 1500, raw[0].RangeStart)
	assert.Equal(t, 1000, raw[1].RangeStart)
}

func TestNormalize_GuardsInvertedSegments(t *testing.T) {
	a := DefaultAxis()

	t.Run("end below repaired start", func(t *testing.T) {
		p := a.Normalize([]models.TxProfile{seg(999, 1500), seg(1100, 1200), seg(1300, 2000)})
		assert.Equal(t, [][2]int{{999, 1500}, {1501, 1501}, {1502, 2000}}, ranges(p))
		assert.NoError(t, a.Check(p))
	})

	t.Run("interior segment reaching max collapses the rest", func(t *testing.T) {
		p := a.Normalize([]models.TxProfile{seg(999, 5000), seg(1000, 1100), seg(1200, 1300)})
		assert.Equal(t, [][2]int{{999, 2000}}, ranges(p))
		assert.NoError(t, a.Check(p))
	})

	t.Run("negative ends", func(t *testing.T) {
		p := a.Normalize([]models.TxProfile{seg(-5, -10), seg(-1, -1)})
		assert.Equal(t, [][2]int{{999, 999}, {1000, 2000}}, ranges(p))
	})
}

func TestDecode(t *testing.T) {
	a := Axis{Min: 999, Max: 2000, Step: 50}

	t.Run("not an array", func(t *testing.T) {
		p := a.Decode([]byte(`{"range_start": 1}`))
		assert.Equal(t, a.Default(), p)
	})

	t.Run("null", func(t *testing.T) {
		assert.Equal(t, a.Default(), a.Decode([]byte(`null`)))
	})

	t.Run("missing fields", func(t *testing.T) {
		p := a.Decode([]byte(`[{"bitrate": 3000}, {"range_start": 1500}]`))
		assert.Equal(t, [][2]int{{999, 999}, {1000, 2000}}, ranges(p))
		assert.Equal(t, 3000, p[0].Bitrate)
	})
}

func TestLadder(t *testing.T) {
	a := DefaultAxis()
	raw := DefaultLadder()
	require.Len(t, raw, 9)
	assert.Equal(t, 2001, raw[8].RangeEnd, "factory table is kept verbatim")

	p := a.Ladder()
	require.NoError(t, a.Check(p))
	require.Len(t, p, 9)
	assert.Equal(t, 2000, p[8].RangeEnd)
	for i := 1; i < len(p); i++ {
		assert.GreaterOrEqual(t, p[i].Bitrate, p[i-1].Bitrate)
		assert.GreaterOrEqual(t, p[i].MCS, p[i-1].MCS)
	}
	assert.NoError(t, models.ValidateAll(p.Profiles()))
}

func TestSplit(t *testing.T) {
	a := DefaultAxis()
	p := Partition{seg(999, 1099), seg(1100, 2000)}

	out, sel, changed := a.Split(p, 0)
	require.True(t, changed)
	assert.Equal(t, 1, sel)
	assert.Equal(t, [][2]int{{999, 1049}, {1050, 1099}, {1100, 2000}}, ranges(out))
	assert.True(t, out[0].SameParams(out[1]))
	assert.Equal(t, [][2]int{{999, 1099}, {1100, 2000}}, ranges(p), "input untouched")

	t.Run("too narrow", func(t *testing.T) {
		narrow := Partition{seg(999, 1098), seg(1099, 2000)}
		out, sel, changed := a.Split(narrow, 0)
		assert.False(t, changed)
		assert.Equal(t, 0, sel)
		assert.Equal(t, narrow, out)
	})

	t.Run("bad index", func(t *testing.T) {
		_, _, changed := a.Split(p, 5)
		assert.False(t, changed)
		_, _, changed = a.Split(p, -1)
		assert.False(t, changed)
	})

	t.Run("wide segment", func(t *testing.T) {
		out, _, changed := a.Split(a.Default(), 0)
		require.True(t, changed)
		assert.Equal(t, [][2]int{{999, 1499}, {1500, 2000}}, ranges(out))
	})
}

func TestMerge(t *testing.T) {
	a := DefaultAxis()

	t.Run("with previous", func(t *testing.T) {
		left := seg(999, 1049)
		left.Bitrate = 111
		p := Partition{left, seg(1050, 1099), seg(1100, 2000)}
		out, sel, changed := a.Merge(p, 1)
		require.True(t, changed)
		assert.Equal(t, 0, sel)
		assert.Equal(t, [][2]int{{999, 1099}, {1100, 2000}}, ranges(out))
		assert.Equal(t, 111, out[0].Bitrate, "previous keeps its own bundle")
	})

	t.Run("first merges with next", func(t *testing.T) {
		first := seg(999, 1049)
		first.Bitrate = 222
		p := Partition{first, seg(1050, 2000)}
		out, sel, changed := a.Merge(p, 0)
		require.True(t, changed)
		assert.Equal(t, 0, sel)
		assert.Equal(t, [][2]int{{999, 2000}}, ranges(out))
		assert.Equal(t, 222, out[0].Bitrate)
	})

	t.Run("single segment", func(t *testing.T) {
		p := a.Default()
		out, sel, changed := a.Merge(p, 0)
		assert.False(t, changed)
		assert.Equal(t, 0, sel)
		assert.Equal(t, p, out)
	})
}

func TestSplitThenMergeRestoresCoverage(t *testing.T) {
	a := DefaultAxis()
	p := a.Ladder()
	for i := range p {
		split, sel, changed := a.Split(p, i)
		if !changed {
			continue
		}
		merged, _, changed := a.Merge(split, sel)
		require.True(t, changed)
		assert.Equal(t, ranges(p), ranges(merged))
	}
}

func TestDrag(t *testing.T) {
	a := DefaultAxis()
	p := Partition{seg(999, 1099), seg(1100, 2000)}

	t.Run("within bounds", func(t *testing.T) {
		out, changed := a.Drag(p, 0, a.Fraction(1100))
		require.True(t, changed)
		assert.Equal(t, [][2]int{{999, 1100}, {1101, 2000}}, ranges(out))
	})

	t.Run("clamped low", func(t *testing.T) {
		out, changed := a.Drag(p, 0, 0)
		require.True(t, changed)
		assert.Equal(t, [][2]int{{999, 1049}, {1050, 2000}}, ranges(out))
	})

	t.Run("clamped high", func(t *testing.T) {
		out, changed := a.Drag(p, 0, 1.5)
		require.True(t, changed)
		assert.Equal(t, [][2]int{{999, 1950}, {1951, 2000}}, ranges(out))
	})

	t.Run("no movement", func(t *testing.T) {
		q := Partition{seg(999, 1100), seg(1101, 2000)}
		out, changed := a.Drag(q, 0, a.Fraction(1110))
		assert.False(t, changed)
		assert.Equal(t, q, out)
	})

	t.Run("neighbours too narrow", func(t *testing.T) {
		q := Partition{seg(999, 999), seg(1000, 1050), seg(1051, 2000)}
		_, changed := a.Drag(q, 0, 0.5)
		assert.False(t, changed)
	})

	t.Run("bad boundary", func(t *testing.T) {
		_, changed := a.Drag(p, 1, 0.5)
		assert.False(t, changed)
		_, changed = a.Drag(p, -1, 0.5)
		assert.False(t, changed)
	})
}

func TestDrag_SnapsHalfAwayFromZero(t *testing.T) {
	a := Axis{Min: 0, Max: 1000, Step: 50}
	p := Partition{seg(0, 100), seg(101, 1000)}
	// 0.375 lands exactly on 375, halfway between 350 and 400.
	out, changed := a.Drag(p, 0, 0.375)
	require.True(t, changed)
	assert.Equal(t, 400, out[0].RangeEnd)
}

func TestEditsPreserveInvariants(t *testing.T) {
	a := DefaultAxis()
	rng := rand.New(rand.NewSource(7))

	for round := 0; round < 200; round++ {
		raw := make([]models.TxProfile, rng.Intn(8))
		for i := range raw {
			start := rng.Intn(1400) + 800
			raw[i] = seg(start, start+rng.Intn(600)-100)
		}
		p := a.Normalize(raw)
		require.NoError(t, a.Check(p), "normalize: %v", raw)
		require.Equal(t, p, a.Normalize(p), "normalize must be idempotent")

		for step := 0; step < 30; step++ {
			i := rng.Intn(len(p) + 1)
			var next Partition
			switch rng.Intn(3) {
			case 0:
				next, _, _ = a.Split(p, i)
			case 1:
				next, _, _ = a.Merge(p, i)
			default:
				before := p
				var changed bool
				next, changed = a.Drag(p, i, rng.Float64())
				if changed {
					assert.GreaterOrEqual(t, next[i].Span(), a.Step)
					assert.GreaterOrEqual(t, next[i+1].Span()+1, a.Step)
				} else {
					assert.Equal(t, before, next)
				}
			}
			require.NoError(t, a.Check(next))
			p = next
		}
	}
}

func TestCheck(t *testing.T) {
	a := DefaultAxis()

	assert.NoError(t, a.Check(Partition{seg(999, 1500), seg(1501, 2000)}))
	assert.Error(t, a.Check(nil))
	assert.Error(t, a.Check(Partition{seg(1000, 2000)}), "starts after min")
	assert.Error(t, a.Check(Partition{seg(999, 1999)}), "ends before max")
	assert.Error(t, a.Check(Partition{seg(999, 1500), seg(1502, 2000)}), "gap")
	assert.Error(t, a.Check(Partition{seg(999, 1500), seg(1500, 2000)}), "overlap")
	assert.Error(t, a.Check(Partition{seg(999, 1500), seg(1501, 1400), seg(1401, 2000)}), "inverted")

	// Out-of-axis ends must not wrap around into an adjacent start.
	err := a.Check(Partition{seg(999, math.MaxInt), seg(math.MinInt, 2000)})
	assert.ErrorContains(t, err, "outside")
}
