// Package models provides the canonical data structures shared by the
// schedule normalization engine and the multi-provider candle normalizer.
// This package contains core value types: candles, thaw records, and
// schedule summaries. All types are plain serializable structures that are
// immutable after construction.
package models

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// Candle represents normalized OHLCV price and volume data for one interval.
// Timestamp is milliseconds since the Unix epoch, UTC. A canonical sequence
// is ordered by ascending Timestamp; duplicate timestamps are tolerated and
// never deduplicated.
type Candle struct {
	Timestamp int64   `json:"ts"`
	Open      float64 `json:"open"`
	High      float64 `json:"high"`
	Low       float64 `json:"low"`
	Close     float64 `json:"close"`
	Volume    float64 `json:"volume"`
}

// Time returns the candle timestamp as a UTC time.Time.
func (c *Candle) Time() time.Time {
	return time.UnixMilli(c.Timestamp).UTC()
}

// ShapeIssues reports violations of the desired OHLC shape
// low <= min(open, close) <= max(open, close) <= high.
// Providers are known to violate it; callers log the issues and keep the
// candle. An empty slice means the shape holds.
func (c *Candle) ShapeIssues() []string {
	var issues []string

	minOC := c.Open
	maxOC := c.Open
	if c.Close < minOC {
		minOC = c.Close
	}
	if c.Close > maxOC {
		maxOC = c.Close
	}

	if c.Low > minOC {
		issues = append(issues, fmt.Sprintf("low %g above min(open, close) %g", c.Low, minOC))
	}
	if c.High < maxOC {
		issues = append(issues, fmt.Sprintf("high %g below max(open, close) %g", c.High, maxOC))
	}
	if c.Volume < 0 {
		issues = append(issues, fmt.Sprintf("negative volume %g", c.Volume))
	}

	return issues
}

// IsBullish returns true if the close price is greater than the open price.
func (c *Candle) IsBullish() bool {
	return c.Close > c.Open
}

// String returns a human-readable representation of the candle.
// This method implements the fmt.Stringer interface.
func (c *Candle) String() string {
	return fmt.Sprintf("Candle{Timestamp: %s, O: %g, H: %g, L: %g, C: %g, V: %g}",
		c.Time().Format(time.RFC3339), c.Open, c.High, c.Low, c.Close, c.Volume)
}

// SortedAscending reports whether the sequence is non-decreasing by timestamp.
func SortedAscending(candles []Candle) bool {
	for i := 1; i < len(candles); i++ {
		if candles[i].Timestamp < candles[i-1].Timestamp {
			return false
		}
	}
	return true
}

// RoundDisplay rounds a value to the 3-decimal display precision used for
// amounts and valuations throughout the application. The rounding goes
// through decimal arithmetic so display values are stable regardless of the
// binary representation of the float.
func RoundDisplay(v float64) float64 {
	out, _ := decimal.NewFromFloat(v).Round(3).Float64()
	return out
}
