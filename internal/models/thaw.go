package models

import (
	"fmt"
	"time"
)

// ThawStatus represents the claim state of a single unlock event.
type ThawStatus string

const (
	// StatusUnclaimed indicates the thaw has not been claimed yet. It is
	// derived from the raw status token "upcoming" and nothing else.
	StatusUnclaimed ThawStatus = "Unclaimed"

	// StatusClaimed is the default for every other raw status value,
	// including an absent one.
	StatusClaimed ThawStatus = "Claimed"
)

// StatusFromRaw maps a raw provider status token to a ThawStatus.
// The match is exact and case-sensitive: only the literal "upcoming" maps
// to StatusUnclaimed.
func StatusFromRaw(raw string) ThawStatus {
	if raw == "upcoming" {
		return StatusUnclaimed
	}
	return StatusClaimed
}

// ThawRecord is one normalized unlock event.
//
// Amount is in display units (the raw micro-unit quantity divided by 1e6).
// ThawTime, DaysUntil and LocalDisplayTime are nil/empty when the raw
// timestamp could not be parsed; the record is still emitted in that case.
type ThawRecord struct {
	Amount           float64    `json:"amount"`
	ThawTime         *time.Time `json:"thaw_time,omitempty"`
	Status           ThawStatus `json:"status"`
	DaysUntil        *int       `json:"days_until,omitempty"`
	LocalDisplayTime string     `json:"local_display_time,omitempty"`
	SummaryText      string     `json:"summary_text"`
}

// HasTime reports whether a thaw timestamp was successfully parsed.
func (r *ThawRecord) HasTime() bool {
	return r.ThawTime != nil
}

// ScheduleSummary is the aggregate result for one checked address.
// UnitPrice is 0 when the price lookup failed; TotalValue is then 0 as well
// and the summary degrades to "amount only".
type ScheduleSummary struct {
	Records     []ThawRecord `json:"records"`
	TotalAmount float64      `json:"total_amount"`
	UnitPrice   float64      `json:"unit_price"`
	TotalValue  float64      `json:"total_value"`
}

// String returns a compact representation of the summary totals.
func (s *ScheduleSummary) String() string {
	return fmt.Sprintf("ScheduleSummary{Records: %d, Total: %.3f, Price: %.3f, Value: %.3f}",
		len(s.Records), s.TotalAmount, s.UnitPrice, s.TotalValue)
}
