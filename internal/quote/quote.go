// Package quote fetches a spot ticker snapshot and extracts a single
// instrument's last traded price for schedule valuation.
package quote

import (
	"context"
	"encoding/json"
	"log/slog"
	"strconv"
	"strings"

	"github.com/thawtrack/thawtrack/internal/provider"
)

const defaultTickersURL = "https://www.okx.com/api/v5/market/tickers?instType=SPOT"

// tickerEntry is one instrument in the snapshot. Last price arrives as a
// decimal string.
type tickerEntry struct {
	InstID string `json:"instId"`
	Last   string `json:"last"`
}

// Service resolves symbols to last traded prices.
type Service struct {
	client     *provider.Client
	logger     *slog.Logger
	tickersURL string
}

// NewService creates a quote service over the shared provider transport.
func NewService(client *provider.Client, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{client: client, logger: logger, tickersURL: defaultTickersURL}
}

// Quote returns the last traded price for the symbol.
//
// Entries match when the instrument identifier's prefix before the first
// "-" equals the symbol exactly. When several instruments share the prefix
// no one of them is authoritative; the first match in payload order wins.
// Every failure — network, malformed payload, no match, unparsable price —
// degrades to (0, false) so valuation can fall back to amount-only.
func (s *Service) Quote(ctx context.Context, symbol string) (float64, bool) {
	raw, err := s.client.Get(ctx, s.tickersURL)
	if err != nil {
		s.logger.Warn("ticker fetch failed", "symbol", symbol, "error", err)
		return 0, false
	}
	return s.extract(raw, symbol)
}

// extract scans an already-fetched ticker payload for the symbol.
func (s *Service) extract(raw []byte, symbol string) (float64, bool) {
	var envelope struct {
		Data []tickerEntry `json:"data"`
	}
	if err := json.Unmarshal(raw, &envelope); err != nil {
		s.logger.Warn("malformed ticker payload", "error", err)
		return 0, false
	}

	for _, entry := range envelope.Data {
		if entry.InstID == "" || entry.Last == "" {
			continue
		}
		prefix, _, _ := strings.Cut(entry.InstID, "-")
		if prefix != symbol {
			continue
		}
		price, err := strconv.ParseFloat(entry.Last, 64)
		if err != nil {
			continue
		}
		s.logger.Debug("quoted symbol", "symbol", symbol, "inst_id", entry.InstID, "price", price)
		return price, true
	}

	s.logger.Debug("no ticker match", "symbol", symbol)
	return 0, false
}
