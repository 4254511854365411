package partition

import "math"

// CanSplit reports whether segment i is wide enough to be split in two.
func (a Axis) CanSplit(p Partition, i int) bool {
	if a.Step <= 0 || i < 0 || i >= len(p) {
		return false
	}
	return p[i].Span() >= 2*a.Step
}

// Split divides segment i at a STEP-aligned point near its middle. Both halves
// keep the original parameters. The returned selection is the right half.
func (a Axis) Split(p Partition, i int) (Partition, int, bool) {
	if !a.CanSplit(p, i) {
		return p, i, false
	}

	cur := p[i]
	mid := cur.RangeStart + (cur.Span()/2/a.Step)*a.Step
	if mid <= cur.RangeStart {
		mid = cur.RangeStart + a.Step
	}
	if mid >= cur.RangeEnd {
		mid = cur.RangeEnd - a.Step
	}

	left, right := cur, cur
	left.RangeEnd = mid
	right.RangeStart = mid + 1

	out := make(Partition, 0, len(p)+1)
	out = append(out, p[:i]...)
	out = append(out, left, right)
	out = append(out, p[i+1:]...)
	return out, i + 1, true
}

// CanMerge reports whether segment i has a neighbour to merge with.
func (a Axis) CanMerge(p Partition, i int) bool {
	return len(p) > 1 && i >= 0 && i < len(p)
}

// Merge removes the boundary between segment i and a neighbour. Segment i is
// folded into its predecessor, except for the first segment which absorbs its
// successor. The surviving segment keeps its own parameters.
func (a Axis) Merge(p Partition, i int) (Partition, int, bool) {
	if !a.CanMerge(p, i) {
		return p, i, false
	}

	out := p.Clone()
	if i > 0 {
		out[i-1].RangeEnd = out[i].RangeEnd
		return append(out[:i], out[i+1:]...), i - 1, true
	}
	out[0].RangeEnd = out[1].RangeEnd
	return append(out[:1], out[2:]...), 0, true
}

// Drag moves boundary b, the edge between segments b and b+1, to the axis
// position under fraction, snapped to the nearest multiple of Step. The left
// segment keeps at least Step of span and the right segment at least Step axis
// values. When the neighbours are too narrow to honour both limits, or the
// snapped position equals the current one, nothing changes.
func (a Axis) Drag(p Partition, b int, fraction float64) (Partition, bool) {
	if a.Step <= 0 || b < 0 || b+1 >= len(p) || math.IsNaN(fraction) {
		return p, false
	}

	raw := a.ValueAt(fraction)
	v := int(math.Round(raw/float64(a.Step))) * a.Step

	lower := p[b].RangeStart + a.Step
	upper := p[b+1].RangeEnd - a.Step
	if lower > upper {
		return p, false
	}
	if v < lower {
		v = lower
	}
	if v > upper {
		v = upper
	}
	if v == p[b].RangeEnd {
		return p, false
	}

	out := p.Clone()
	out[b].RangeEnd = v
	out[b+1].RangeStart = v + 1
	return out, true
}
