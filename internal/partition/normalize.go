package partition

import (
	"encoding/json"
	"sort"

	"gsweb/internal/models"
)

// Normalize repairs an arbitrary list of profiles into a valid partition.
//
// The outer edges are always forced onto the axis. Interior boundaries are
// trusted but re-anchored left to right, so every start follows the previous
// end. Ends are clamped into [start, Max]; once a segment reaches Max any
// remaining segments are dropped, which keeps inverted ranges out of the
// result. An empty input, or an invalid axis, yields Default.
func (a Axis) Normalize(raw []models.TxProfile) Partition {
	if len(raw) == 0 || a.Validate() != nil {
		return a.Default()
	}

	sorted := make([]models.TxProfile, len(raw))
	copy(sorted, raw)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].RangeStart < sorted[j].RangeStart
	})

	out := make(Partition, 0, len(sorted))
	last := len(sorted) - 1
	for i, seg := range sorted {
		if i == 0 {
			seg.RangeStart = a.Min
		} else {
			seg.RangeStart = out[len(out)-1].RangeEnd + 1
		}
		if i == last {
			seg.RangeEnd = a.Max
		}
		if seg.RangeEnd > a.Max {
			seg.RangeEnd = a.Max
		}
		if seg.RangeEnd < seg.RangeStart {
			seg.RangeEnd = seg.RangeStart
		}
		out = append(out, seg)
		if seg.RangeEnd >= a.Max {
			break
		}
	}
	return out
}

// Decode parses a JSON document from an untrusted source and normalizes it.
// Anything that is not a JSON array of profile objects yields Default.
func (a Axis) Decode(data []byte) Partition {
	var raw []models.TxProfile
	if err := json.Unmarshal(data, &raw); err != nil {
		return a.Default()
	}
	return a.Normalize(raw)
}
