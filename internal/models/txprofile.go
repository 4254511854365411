package models

// Guard interval modes accepted by the air unit.
const (
	GuardIntervalLong  = "long"
	GuardIntervalShort = "short"
)

// TxProfile is one contiguous slice of the link-quality axis together with the
// transmission parameters the air unit applies while the link sits inside it.
// The JSON names match the air unit REST API.
type TxProfile struct {
	// RangeStart and RangeEnd are the inclusive bounds of the slice on the axis.
	RangeStart int `json:"range_start" yaml:"range_start"`
	RangeEnd   int `json:"range_end" yaml:"range_end" validate:"gtefield=RangeStart"`

	// GI is the guard interval mode, "long" or "short".
	GI string `json:"gi" yaml:"gi" validate:"oneof=long short"`
	// MCS is the modulation and coding scheme index.
	MCS int `json:"mcs" yaml:"mcs" validate:"min=0,max=7"`
	// FecK and FecN form the forward error correction ratio k/n.
	FecK int `json:"fec_k" yaml:"fec_k" validate:"min=1,ltefield=FecN"`
	FecN int `json:"fec_n" yaml:"fec_n" validate:"min=1"`
	// Bitrate is the encoder bitrate in kbps.
	Bitrate int `json:"bitrate" yaml:"bitrate" validate:"min=1"`
	// Gop is the group-of-pictures size.
	Gop int `json:"gop" yaml:"gop" validate:"min=1"`
	// Pwr is the transmit power setting.
	Pwr int `json:"pwr" yaml:"pwr"`
	// RoiQP holds four comma separated region-of-interest QP deltas.
	RoiQP string `json:"roi_qp" yaml:"roi_qp" validate:"roi_qp"`
	// Bandwidth is the channel width in MHz.
	Bandwidth int `json:"bandwidth" yaml:"bandwidth" validate:"oneof=10 20 40"`
	// QpDelta is the encoder quantization delta and may be negative.
	QpDelta int `json:"qp_delta" yaml:"qp_delta"`
}

// Span returns RangeEnd - RangeStart.
func (p TxProfile) Span() int {
	return p.RangeEnd - p.RangeStart
}

// SameParams reports whether both profiles carry the same parameter bundle,
// ignoring their ranges.
func (p TxProfile) SameParams(o TxProfile) bool {
	p.RangeStart, p.RangeEnd = o.RangeStart, o.RangeEnd
	return p == o
}
