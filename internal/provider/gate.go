package provider

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/thawtrack/thawtrack/internal/models"
)

const gateCandlesURL = "https://api.gateio.ws/api/v4/spot/candlesticks?currency_pair=%s&interval=%s&limit=%d"

// gateIntervals translates the provider-agnostic timeframe tokens into the
// Gate candlestick interval vocabulary. Unrecognized tokens fall back to "1h".
var gateIntervals = map[string]string{
	"1m":  "1m",
	"5m":  "5m",
	"15m": "15m",
	"1H":  "1h",
	"4H":  "4h",
	"1D":  "1d",
}

// gateAdapter parses the Gate candlestick response.
//
// Rows are nominally [ts(seconds), open, high, low, close, volume], but this
// provider is known to sometimes transpose the volume and price columns. A
// per-row heuristic detects the transposed layout and remaps the row to
// [ts, volume, close, high, low, open]. The heuristic is best-effort: it
// cannot be verified from the payload alone and a row that happens to match
// the signature is remapped regardless of what the provider intended.
type gateAdapter struct{}

func (gateAdapter) name() string { return "gate" }

func (gateAdapter) requestURL(instrument, timeframe string, limit int) string {
	// "NIGHT-USDT" -> "NIGHT_USDT"
	pair := strings.ToUpper(strings.ReplaceAll(instrument, "-", "_"))
	interval, ok := gateIntervals[timeframe]
	if !ok {
		interval = "1h"
	}
	return fmt.Sprintf(gateCandlesURL, pair, interval, limit)
}

func (gateAdapter) parsePayload(raw []byte) ([]models.Candle, error) {
	rows, err := decodeRows(raw)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnexpectedShape, err)
	}

	out := make([]models.Candle, 0, len(rows))
	for _, row := range rows {
		f, ok := rowFloats(row, 6)
		if !ok {
			continue
		}

		ts := int64(f[0])
		if ts < 1e12 {
			ts *= 1000 // seconds resolution
		}

		o, h, l, c, v := f[1], f[2], f[3], f[4], f[5]
		if gateRowTransposed(o, h, l, c, v) {
			// reinterpret as [ts, volume, close, high, low, open]
			v, c, h, l, o = f[1], f[2], f[3], f[4], f[5]
		}

		out = append(out, models.Candle{
			Timestamp: ts,
			Open:      o,
			High:      h,
			Low:       l,
			Close:     c,
			Volume:    v,
		})
	}

	sort.Slice(out, func(i, j int) bool { return out[i].Timestamp < out[j].Timestamp })
	return out, nil
}

// gateRowTransposed detects the transposed column layout: the nominal open
// sits where volume belongs, so it dwarfs every plausible price in the row,
// while the nominal volume slot holds a price-sized value. The reference
// level excludes the suspect open itself, otherwise a transposed row could
// never trip the threshold.
func gateRowTransposed(o, h, l, c, v float64) bool {
	maxPrice := math.Max(math.Abs(h), math.Max(math.Abs(l), math.Abs(c)))
	if maxPrice == 0 {
		return false
	}
	return o > maxPrice*1000 && v < maxPrice*100
}
