// Package provider converts the raw candle payloads of the supported
// market-data providers into the canonical models.Candle sequence.
//
// Each provider has its own response envelope, field encoding and interval
// vocabulary. The conversion is dispatched over a closed Provider enum with
// exactly one adapter per variant; adding a provider means adding a variant
// and an adapter, not branching deeper inside an existing one.
package provider

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"

	"github.com/thawtrack/thawtrack/internal/models"
)

// Provider identifies one external market-data source.
type Provider string

const (
	OKX   Provider = "okx"
	Bybit Provider = "bybit"
	Gate  Provider = "gate"
)

// Errors returned by adapters and the normalizer. All of them are
// recoverable, per-request failures; no payload shape causes a panic.
var (
	// ErrNoData indicates the payload was decodable but contained no
	// recognizable row list.
	ErrNoData = errors.New("provider returned no candle data")

	// ErrUnexpectedShape indicates the payload did not match any shape the
	// adapter knows how to unwrap.
	ErrUnexpectedShape = errors.New("unexpected response format")

	// ErrUnknownProvider indicates the selector token did not name a
	// supported provider.
	ErrUnknownProvider = errors.New("unknown provider")
)

// ParseProvider maps a selector token to a Provider.
func ParseProvider(token string) (Provider, error) {
	switch Provider(token) {
	case OKX, Bybit, Gate:
		return Provider(token), nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownProvider, token)
	}
}

// adapter converts one provider's raw response into canonical candles.
// requestURL owns the translation of the provider-agnostic instrument and
// timeframe tokens into the provider's own vocabulary; parsePayload must
// handle the provider's envelope defensively and skip, not fail on,
// individual rows that do not parse.
type adapter interface {
	name() string
	requestURL(instrument, timeframe string, limit int) string
	parsePayload(raw []byte) ([]models.Candle, error)
}

// decodeRows unmarshals a JSON array of candle rows, where each row is an
// array of heterogeneous values (numbers or numeric strings).
func decodeRows(raw []byte) ([][]json.RawMessage, error) {
	var rows [][]json.RawMessage
	if err := json.Unmarshal(raw, &rows); err != nil {
		return nil, err
	}
	return rows, nil
}

// toFloat converts a single raw JSON value to a float64. Providers encode
// numeric fields as either JSON numbers or quoted decimal strings.
func toFloat(raw json.RawMessage) (float64, error) {
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return strconv.ParseFloat(s, 64)
	}
	var f float64
	if err := json.Unmarshal(raw, &f); err != nil {
		return 0, err
	}
	return f, nil
}

// rowFloats converts the first n values of a row. It returns false when the
// row is too short or any value fails to parse; such rows are skipped by
// the adapters.
func rowFloats(row []json.RawMessage, n int) ([]float64, bool) {
	if len(row) < n {
		return nil, false
	}
	out := make([]float64, n)
	for i := 0; i < n; i++ {
		f, err := toFloat(row[i])
		if err != nil {
			return nil, false
		}
		out[i] = f
	}
	return out, true
}
