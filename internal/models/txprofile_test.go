package models

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validProfile() TxProfile {
	return TxProfile{
		RangeStart: 999, RangeEnd: 1500,
		GI: GuardIntervalLong, MCS: 3, FecK: 8, FecN: 12,
		Bitrate: 5000, Gop: 10, Pwr: 30, RoiQP: "2,1,1,2",
		Bandwidth: 20, QpDelta: -12,
	}
}

func TestTxProfile_Validate(t *testing.T) {
	require.NoError(t, validProfile().Validate())

	tests := []struct {
		name   string
		mutate func(p *TxProfile)
		field  string
	}{
		{"bad gi", func(p *TxProfile) { p.GI = "medium" }, "gi"},
		{"mcs too high", func(p *TxProfile) { p.MCS = 8 }, "mcs"},
		{"fec k above n", func(p *TxProfile) { p.FecK = 13 }, "fec_k"},
		{"zero fec n", func(p *TxProfile) { p.FecK, p.FecN = 0, 0 }, "fec_k"},
		{"zero bitrate", func(p *TxProfile) { p.Bitrate = 0 }, "bitrate"},
		{"zero gop", func(p *TxProfile) { p.Gop = 0 }, "gop"},
		{"bandwidth", func(p *TxProfile) { p.Bandwidth = 30 }, "bandwidth"},
		{"roi three values", func(p *TxProfile) { p.RoiQP = "1,2,3" }, "roi_qp"},
		{"roi not numeric", func(p *TxProfile) { p.RoiQP = "1,a,3,4" }, "roi_qp"},
		{"inverted range", func(p *TxProfile) { p.RangeEnd = 900 }, "range_end"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := validProfile()
			tt.mutate(&p)
			err := p.Validate()
			require.Error(t, err)

			var verrs ValidationErrors
			require.True(t, errors.As(err, &verrs))
			fields := make([]string, 0, len(verrs))
			for _, fe := range verrs {
				fields = append(fields, fe.Field)
			}
			assert.Contains(t, fields, tt.field)
		})
	}
}

func TestValidateAll_ReportsIndex(t *testing.T) {
	bad := validProfile()
	bad.MCS = -1
	err := ValidateAll([]TxProfile{validProfile(), bad})
	require.Error(t, err)

	var verrs ValidationErrors
	require.True(t, errors.As(err, &verrs))
	require.Len(t, verrs, 1)
	assert.Equal(t, 1, verrs[0].Index)
	assert.Equal(t, "mcs", verrs[0].Field)
	assert.Contains(t, err.Error(), "profile 1: mcs")
}

func TestSameParams(t *testing.T) {
	a := validProfile()
	b := a
	b.RangeStart, b.RangeEnd = 1600, 1700
	assert.True(t, a.SameParams(b))
	b.Pwr = 10
	assert.False(t, a.SameParams(b))
}
