package schedule

import (
	"github.com/thawtrack/thawtrack/internal/models"
)

// Summarize sums the record amounts and values the total at the given unit
// price, producing the aggregate for one checked address.
//
// The sum is a plain left-to-right float accumulation; given the same
// inputs the total is deterministic. A unit price of 0 (unknown price)
// degrades the summary to amount-only. TotalValue is rounded to the
// 3-decimal display precision.
func Summarize(records []models.ThawRecord, unitPrice float64) models.ScheduleSummary {
	total := 0.0
	for i := range records {
		total += records[i].Amount
	}

	return models.ScheduleSummary{
		Records:     records,
		TotalAmount: total,
		UnitPrice:   unitPrice,
		TotalValue:  models.RoundDisplay(total * unitPrice),
	}
}
