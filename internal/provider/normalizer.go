package provider

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/thawtrack/thawtrack/internal/models"
)

// defaultLimit matches the largest window the presentation layer requests.
const defaultLimit = 200

// Normalizer fetches raw candle payloads and converts them into canonical,
// chronologically sorted sequences. It is stateless apart from its transport
// and safe for concurrent use; every call re-fetches from scratch.
type Normalizer struct {
	client   *Client
	logger   *slog.Logger
	adapters map[Provider]adapter
}

// NewNormalizer creates a Normalizer using the given transport.
func NewNormalizer(client *Client, logger *slog.Logger) *Normalizer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Normalizer{
		client: client,
		logger: logger,
		adapters: map[Provider]adapter{
			OKX:   okxAdapter{},
			Bybit: bybitAdapter{},
			Gate:  gateAdapter{},
		},
	}
}

// Candles fetches and normalizes one candle series.
//
// Instrument and timeframe are provider-agnostic tokens ("NIGHT-USDT",
// "1H"); translation into the provider's vocabulary is the adapter's
// private concern. The result ascends by timestamp for every provider.
// Failures are typed and per-request: ErrNoData / ErrUnexpectedShape for a
// payload without a recognizable row list, transport errors otherwise.
func (n *Normalizer) Candles(ctx context.Context, p Provider, instrument, timeframe string, limit int) ([]models.Candle, error) {
	a, ok := n.adapters[p]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownProvider, p)
	}
	if limit <= 0 {
		limit = defaultLimit
	}

	raw, err := n.client.Get(ctx, a.requestURL(instrument, timeframe, limit))
	if err != nil {
		return nil, fmt.Errorf("%s fetch failed: %w", a.name(), err)
	}

	return n.parse(a, instrument, raw)
}

// Parse normalizes an already-fetched payload for the given provider. It is
// the same conversion path Candles uses, exposed for callers that do their
// own fetching.
func (n *Normalizer) Parse(p Provider, instrument string, raw []byte) ([]models.Candle, error) {
	a, ok := n.adapters[p]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownProvider, p)
	}
	return n.parse(a, instrument, raw)
}

func (n *Normalizer) parse(a adapter, instrument string, raw []byte) ([]models.Candle, error) {
	candles, err := a.parsePayload(raw)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", a.name(), err)
	}

	// The OHLC shape invariant is desired, not enforced: report and keep.
	for i := range candles {
		if issues := candles[i].ShapeIssues(); len(issues) > 0 {
			n.logger.Debug("candle shape issues",
				"provider", a.name(),
				"instrument", instrument,
				"ts", candles[i].Timestamp,
				"issues", issues)
		}
	}

	n.logger.Debug("normalized candles",
		"provider", a.name(),
		"instrument", instrument,
		"count", len(candles))
	return candles, nil
}
