package partition

import "gsweb/internal/models"

// DefaultProfile is the parameter bundle used when the remote store returns
// nothing usable.
var DefaultProfile = models.TxProfile{
	GI:        models.GuardIntervalLong,
	MCS:       0,
	FecK:      8,
	FecN:      12,
	Bitrate:   5000,
	Gop:       2,
	Pwr:       20,
	RoiQP:     "0,0,0,0",
	Bandwidth: 20,
	QpDelta:   -12,
}

// DefaultLadder returns the factory nine-row profile table exactly as the air
// unit ships it. The last row ends one past the standard axis; Ladder runs the
// table through Normalize before it is used as a partition.
func DefaultLadder() []models.TxProfile {
	return []models.TxProfile{
		{RangeStart: 999, RangeEnd: 999, GI: "long", MCS: 0, FecK: 2, FecN: 3, Bitrate: 1000, Gop: 10, Pwr: 30, RoiQP: "0,0,0,0", Bandwidth: 20, QpDelta: -12},
		{RangeStart: 1000, RangeEnd: 1050, GI: "long", MCS: 0, FecK: 2, FecN: 3, Bitrate: 2000, Gop: 10, Pwr: 30, RoiQP: "0,0,0,0", Bandwidth: 20, QpDelta: -12},
		{RangeStart: 1051, RangeEnd: 1100, GI: "long", MCS: 1, FecK: 2, FecN: 3, Bitrate: 4000, Gop: 10, Pwr: 30, RoiQP: "0,0,0,0", Bandwidth: 20, QpDelta: -12},
		{RangeStart: 1101, RangeEnd: 1200, GI: "long", MCS: 2, FecK: 4, FecN: 6, Bitrate: 7000, Gop: 10, Pwr: 30, RoiQP: "12,8,8,12", Bandwidth: 20, QpDelta: -12},
		{RangeStart: 1201, RangeEnd: 1300, GI: "long", MCS: 3, FecK: 6, FecN: 9, Bitrate: 10000, Gop: 10, Pwr: 30, RoiQP: "2,1,1,2", Bandwidth: 20, QpDelta: -12},
		{RangeStart: 1301, RangeEnd: 1400, GI: "long", MCS: 4, FecK: 6, FecN: 9, Bitrate: 13000, Gop: 10, Pwr: 30, RoiQP: "2,1,1,2", Bandwidth: 20, QpDelta: -12},
		{RangeStart: 1401, RangeEnd: 1600, GI: "short", MCS: 4, FecK: 8, FecN: 12, Bitrate: 14000, Gop: 10, Pwr: 30, RoiQP: "0,0,0,0", Bandwidth: 20, QpDelta: -12},
		{RangeStart: 1601, RangeEnd: 1800, GI: "long", MCS: 4, FecK: 10, FecN: 15, Bitrate: 15000, Gop: 10, Pwr: 30, RoiQP: "0,0,0,0", Bandwidth: 20, QpDelta: -12},
		{RangeStart: 1801, RangeEnd: 2001, GI: "short", MCS: 4, FecK: 11, FecN: 15, Bitrate: 19000, Gop: 10, Pwr: 30, RoiQP: "0,0,0,0", Bandwidth: 20, QpDelta: -12},
	}
}

// Ladder returns the default ladder fitted to the axis.
func (a Axis) Ladder() Partition {
	return a.Normalize(DefaultLadder())
}

// Default returns a single default segment spanning the whole axis.
func (a Axis) Default() Partition {
	seg := DefaultProfile
	seg.RangeStart = a.Min
	seg.RangeEnd = a.Max
	return Partition{seg}
}
