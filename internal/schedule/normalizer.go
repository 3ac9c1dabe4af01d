package schedule

import (
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/thawtrack/thawtrack/internal/models"
)

// ErrNoSchedule indicates the raw document had no thaw container or an
// empty one. It is the only batch-level failure: a distinct "no schedule
// found" outcome, not the same as a zero-record success.
var ErrNoSchedule = errors.New("no schedule found")

const (
	// microUnitsPerToken scales the raw integer quantity to display units.
	microUnitsPerToken = 1e6

	// fallbackTimeLayout is accepted when strict RFC 3339 parsing fails;
	// such timestamps are interpreted as UTC.
	fallbackTimeLayout = "2006-01-02T15:04:05"

	// localDisplayLayout formats the fixed-offset regional display time.
	localDisplayLayout = "2006-01-02 15:04:05"

	// DefaultDisplayOffset is the fixed regional display convention: a flat
	// +7h shift, not a true timezone conversion (no DST, no locale).
	DefaultDisplayOffset = 7 * time.Hour
)

// Normalizer converts raw unlock events into canonical thaw records.
// It is stateless and safe for concurrent use.
type Normalizer struct {
	assetSymbol   string
	displayOffset time.Duration
	logger        *slog.Logger
}

// NewNormalizer creates a normalizer. The asset symbol appears in the
// per-record summary text; a zero displayOffset falls back to the default
// +7h regional convention.
func NewNormalizer(assetSymbol string, displayOffset time.Duration, logger *slog.Logger) *Normalizer {
	if assetSymbol == "" {
		assetSymbol = "NIGHT"
	}
	if displayOffset == 0 {
		displayOffset = DefaultDisplayOffset
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Normalizer{assetSymbol: assetSymbol, displayOffset: displayOffset, logger: logger}
}

// Normalize converts every raw event into a ThawRecord, preserving input
// order, and returns the records with the running amount total.
//
// No single event can fail the batch: each field extraction degrades to a
// safe zero/empty value on malformed input and the record is still emitted.
// The call fails only when the thaw container is structurally absent or
// empty, returning ErrNoSchedule.
func (n *Normalizer) Normalize(raw *RawSchedule, now time.Time) ([]models.ThawRecord, float64, error) {
	if raw == nil || len(raw.Thaws) == 0 {
		return nil, 0, ErrNoSchedule
	}

	records := make([]models.ThawRecord, 0, len(raw.Thaws))
	total := 0.0

	for i, event := range raw.Thaws {
		rec := n.normalizeEvent(event, i+1, now)
		total += rec.Amount
		records = append(records, rec)
	}

	n.logger.Debug("normalized schedule", "records", len(records), "total_amount", total)
	return records, total, nil
}

func (n *Normalizer) normalizeEvent(event map[string]any, index int, now time.Time) models.ThawRecord {
	amount := extractAmount(event) / microUnitsPerToken
	status := models.StatusFromRaw(stringField(event, "status"))

	rec := models.ThawRecord{
		Amount: amount,
		Status: status,
	}

	if thawTime := parseThawTime(timeField(event)); thawTime != nil {
		rec.ThawTime = thawTime
		rec.LocalDisplayTime = thawTime.Add(n.displayOffset).Format(localDisplayLayout)
		if status == models.StatusUnclaimed {
			days := daysUntil(*thawTime, now)
			rec.DaysUntil = &days
		}
	}

	rec.SummaryText = n.summaryText(index, &rec)
	return rec
}

// extractAmount reads the numeric "amount" field, degrading to 0 when the
// field is absent or not numeric.
func extractAmount(event map[string]any) float64 {
	v, ok := event["amount"]
	if !ok {
		return 0
	}
	switch val := v.(type) {
	case float64:
		return val
	case int64:
		return float64(val)
	case int:
		return float64(val)
	case string:
		if f, err := strconv.ParseFloat(val, 64); err == nil {
			return f
		}
	}
	return 0
}

// timeField returns the raw timestamp string from either accepted field
// name, first present wins.
func timeField(event map[string]any) string {
	if s := stringField(event, "thawing_period_start"); s != "" {
		return s
	}
	return stringField(event, "start")
}

func stringField(event map[string]any, key string) string {
	if v, ok := event[key]; ok {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return ""
}

// parseThawTime parses the raw timestamp: strict RFC 3339 first (a trailing
// Z is offset zero), then the fixed fallback layout interpreted as UTC.
// Returns nil when neither applies; the record then carries no time
// information but is still emitted.
func parseThawTime(raw string) *time.Time {
	if raw == "" {
		return nil
	}
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		t = t.UTC()
		return &t
	}
	if t, err := time.ParseInLocation(fallbackTimeLayout, raw, time.UTC); err == nil {
		return &t
	}
	return nil
}

// daysUntil returns the whole days between now and the thaw time, clamped
// at zero: a thaw in the past reported as upcoming shows 0 days, never a
// negative count.
func daysUntil(thaw, now time.Time) int {
	days := int(thaw.Sub(now) / (24 * time.Hour))
	if days < 0 {
		return 0
	}
	return days
}

// summaryText renders the fixed three-line human-readable block.
func (n *Normalizer) summaryText(index int, rec *models.ThawRecord) string {
	countdown := ""
	if rec.Status == models.StatusUnclaimed && rec.DaysUntil != nil {
		countdown = fmt.Sprintf(" | In %d days", *rec.DaysUntil)
	}

	display := rec.LocalDisplayTime
	if display == "" {
		display = "Unknown"
	}

	amount := strconv.FormatFloat(models.RoundDisplay(rec.Amount), 'f', -1, 64)

	return fmt.Sprintf("📌 Batch %d: %s %s\n   🔔 %s%s\n   ⏰ %s",
		index, amount, n.assetSymbol, rec.Status, countdown, display)
}
