// Package partition models the TX profile ladder as a partition of a bounded
// integer axis into contiguous segments and implements the edits an operator
// can make to it.
//
// Every function in this package is total. Requests that would break the
// partition (bad indices, spans too small to split, a single segment to merge)
// return the input unchanged with changed == false instead of an error.
package partition

import (
	"fmt"

	"gsweb/internal/models"
)

// Axis describes the domain being partitioned and the granularity to which
// boundaries snap.
type Axis struct {
	Min  int
	Max  int
	Step int
}

// DefaultAxis is the link-quality axis used by the air unit.
func DefaultAxis() Axis {
	return Axis{Min: 999, Max: 2000, Step: 50}
}

// Validate reports whether the axis can hold a partition at all.
func (a Axis) Validate() error {
	if a.Max < a.Min {
		return fmt.Errorf("axis max %d is below min %d", a.Max, a.Min)
	}
	if a.Step <= 0 {
		return fmt.Errorf("axis step must be positive, got %d", a.Step)
	}
	return nil
}

// Partition is an ordered, gapless, non-overlapping cover of an Axis.
// Values are never mutated in place by this package; edits return copies.
type Partition []models.TxProfile

// Clone returns a deep copy of p.
func (p Partition) Clone() Partition {
	if p == nil {
		return nil
	}
	out := make(Partition, len(p))
	copy(out, p)
	return out
}

// Equal reports whether both partitions hold the same segments in order.
func (p Partition) Equal(o Partition) bool {
	if len(p) != len(o) {
		return false
	}
	for i := range p {
		if p[i] != o[i] {
			return false
		}
	}
	return true
}

// Profiles exposes the segments as a plain slice for serialization.
func (p Partition) Profiles() []models.TxProfile {
	return []models.TxProfile(p.Clone())
}

// Check verifies the structural invariants of p against the axis: non-empty,
// ordered, gapless, no inverted segment, and full coverage of [Min, Max].
func (a Axis) Check(p Partition) error {
	if len(p) == 0 {
		return fmt.Errorf("partition is empty")
	}
	if p[0].RangeStart != a.Min {
		return fmt.Errorf("first segment starts at %d, want %d", p[0].RangeStart, a.Min)
	}
	if last := p[len(p)-1]; last.RangeEnd != a.Max {
		return fmt.Errorf("last segment ends at %d, want %d", last.RangeEnd, a.Max)
	}
	for i, seg := range p {
		if seg.RangeStart < a.Min || seg.RangeEnd > a.Max {
			return fmt.Errorf("segment %d [%d, %d] lies outside [%d, %d]", i, seg.RangeStart, seg.RangeEnd, a.Min, a.Max)
		}
		if seg.RangeStart > seg.RangeEnd {
			return fmt.Errorf("segment %d is inverted: %d > %d", i, seg.RangeStart, seg.RangeEnd)
		}
		if i > 0 && seg.RangeStart != p[i-1].RangeEnd+1 {
			return fmt.Errorf("segment %d starts at %d, want %d", i, seg.RangeStart, p[i-1].RangeEnd+1)
		}
	}
	return nil
}

// Fraction maps an axis value to its position in [0, 1].
func (a Axis) Fraction(value int) float64 {
	if a.Max == a.Min {
		return 0
	}
	return float64(value-a.Min) / float64(a.Max-a.Min)
}

// ValueAt maps a position in [0, 1] back onto the axis. Positions outside the
// unit interval are clamped.
func (a Axis) ValueAt(fraction float64) float64 {
	if fraction < 0 {
		fraction = 0
	}
	if fraction > 1 {
		fraction = 1
	}
	return float64(a.Min) + fraction*float64(a.Max-a.Min)
}
