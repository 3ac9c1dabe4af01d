package provider

import (
	"encoding/json"
	"fmt"

	"github.com/thawtrack/thawtrack/internal/models"
)

const okxCandlesURL = "https://www.okx.com/api/v5/market/history-candles?instId=%s&bar=%s&limit=%d"

// okxAdapter parses the OKX history-candles response.
//
// Row order is [ts, open, high, low, close, volume] and is trusted as-is;
// timestamps are already in milliseconds. OKX returns rows newest-first, so
// the adapter reverses them into chronological order.
type okxAdapter struct{}

func (okxAdapter) name() string { return "okx" }

// requestURL uses the provider-agnostic tokens directly: OKX instrument IDs
// are dash-separated ("NIGHT-USDT") and its bar tokens match ours.
func (okxAdapter) requestURL(instrument, timeframe string, limit int) string {
	return fmt.Sprintf(okxCandlesURL, instrument, timeframe, limit)
}

func (okxAdapter) parsePayload(raw []byte) ([]models.Candle, error) {
	var envelope struct {
		Data []json.RawMessage `json:"data"`
	}
	if err := json.Unmarshal(raw, &envelope); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnexpectedShape, err)
	}
	if envelope.Data == nil {
		return nil, ErrNoData
	}

	out := make([]models.Candle, 0, len(envelope.Data))
	for _, rawRow := range envelope.Data {
		var row []json.RawMessage
		if err := json.Unmarshal(rawRow, &row); err != nil {
			continue
		}
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

	// newest-first to chronological
	for i, j := 0, len(out)-1; i < j; i, j = i+1, j-1 {
		out[i], out[j] = out[j], out[i]
	}
	return out, nil
}
