package provider

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/thawtrack/thawtrack/internal/models"
)

const bybitKlineURL = "https://api.bybit.com/v5/market/kline?category=spot&symbol=%s&interval=%s&limit=%d"

// bybitIntervals translates the provider-agnostic timeframe tokens into the
// Bybit v5 kline interval vocabulary. Unrecognized tokens fall back to "60".
var bybitIntervals = map[string]string{
	"1m":  "1",
	"5m":  "5",
	"15m": "15",
	"1H":  "60",
	"4H":  "240",
	"1D":  "D",
}

// bybitAdapter parses the Bybit v5 kline response.
//
// Row order is the trusted [ts, open, high, low, close, volume], but the
// row ordering of the response is not: rows are sorted ascending after
// parsing. The row list arrives either inside the documented
// {"result":{"list":[...]}} envelope or as a bare list; both are accepted.
type bybitAdapter struct{}

func (bybitAdapter) name() string { return "bybit" }

func (bybitAdapter) requestURL(instrument, timeframe string, limit int) string {
	// "NIGHT-USDT" -> "NIGHTUSDT"
	symbol := strings.ToUpper(strings.ReplaceAll(instrument, "-", ""))
	interval, ok := bybitIntervals[timeframe]
	if !ok {
		interval = "60"
	}
	return fmt.Sprintf(bybitKlineURL, symbol, interval, limit)
}

func (bybitAdapter) parsePayload(raw []byte) ([]models.Candle, error) {
	rows, err := bybitRows(raw)
	if err != nil {
		return nil, err
	}

	out := make([]models.Candle, 0, len(rows))
	for _, row := range rows {
		f, ok := rowFloats(row, 6)
		if !ok {
			continue
		}
		out = append(out, models.Candle{
			Timestamp: int64(f[0]),
			Open:      f[1],
			High:      f[2],
			Low:       f[3],
			Close:     f[4],
			Volume:    f[5],
		})
	}

	sort.Slice(out, func(i, j int) bool { return out[i].Timestamp < out[j].Timestamp })
	return out, nil
}

// bybitRows unwraps whichever envelope shape the payload uses.
func bybitRows(raw []byte) ([][]json.RawMessage, error) {
	var envelope struct {
		Result struct {
			List [][]json.RawMessage `json:"list"`
		} `json:"result"`
	}
	if err := json.Unmarshal(raw, &envelope); err == nil && envelope.Result.List != nil {
		return envelope.Result.List, nil
	}

	if rows, err := decodeRows(raw); err == nil {
		return rows, nil
	}
	return nil, ErrUnexpectedShape
}
