// Package checker orchestrates a single address check: retrieve the raw
// schedule, normalize it, attach a spot quote when one is available, and
// aggregate the result. Every check is self-contained and carries its own
// request ID; no state is shared between requests.
package checker

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/thawtrack/thawtrack/internal/models"
	"github.com/thawtrack/thawtrack/internal/schedule"
	"github.com/thawtrack/thawtrack/internal/storage"
)

// Quoter supplies a best-effort spot price for an asset symbol. A false
// second return means no quote; the check proceeds with a zero price.
type Quoter interface {
	Quote(ctx context.Context, symbol string) (float64, bool)
}

// CheckResult is the complete outcome of one address check.
type CheckResult struct {
	RequestID string
	Address   string
	Records   []models.ThawRecord
	Summary   models.ScheduleSummary
	Priced    bool
	CheckedAt time.Time
}

// Checker runs address checks. Safe for concurrent use as long as its
// collaborators are.
type Checker struct {
	source      schedule.Source
	normalizer  *schedule.Normalizer
	quoter      Quoter
	history     storage.HistoryStore
	assetSymbol string
	logger      *slog.Logger
}

// Config carries the checker's collaborators. Quoter and History are
// optional; a nil Quoter means every check is unpriced, a nil History
// means checks are not recorded.
type Config struct {
	Source      schedule.Source
	Normalizer  *schedule.Normalizer
	Quoter      Quoter
	History     storage.HistoryStore
	AssetSymbol string
	Logger      *slog.Logger
}

// New creates a Checker from its collaborators.
func New(cfg Config) (*Checker, error) {
	if cfg.Source == nil {
		return nil, fmt.Errorf("schedule source is required")
	}
	if cfg.Normalizer == nil {
		return nil, fmt.Errorf("normalizer is required")
	}
	if cfg.AssetSymbol == "" {
		cfg.AssetSymbol = "NIGHT"
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}

	return &Checker{
		source:      cfg.Source,
		normalizer:  cfg.Normalizer,
		quoter:      cfg.Quoter,
		history:     cfg.History,
		assetSymbol: cfg.AssetSymbol,
		logger:      cfg.Logger,
	}, nil
}

// Check runs one full check for the address. The quote is best-effort: a
// missing price degrades to zero and the check still succeeds. A failure
// to record history is logged, not returned; the result is already
// complete at that point.
func (c *Checker) Check(ctx context.Context, address string) (*CheckResult, error) {
	requestID := uuid.New().String()
	logger := c.logger.With("request_id", requestID, "address", address)
	checkedAt := time.Now().UTC()

	logger.Info("starting address check")

	raw, err := c.source.Fetch(ctx, address)
	if err != nil {
		return nil, fmt.Errorf("schedule retrieval failed for %s: %w", address, err)
	}

	records, _, err := c.normalizer.Normalize(raw, checkedAt)
	if err != nil {
		return nil, err
	}

	price, priced := 0.0, false
	if c.quoter != nil {
		price, priced = c.quoter.Quote(ctx, c.assetSymbol)
	}
	if !priced {
		logger.Warn("no spot quote available, reporting unpriced totals", "symbol", c.assetSymbol)
	}

	summary := schedule.Summarize(records, price)

	result := &CheckResult{
		RequestID: requestID,
		Address:   address,
		Records:   records,
		Summary:   summary,
		Priced:    priced,
		CheckedAt: checkedAt,
	}

	if c.history != nil {
		snap := storage.CheckSnapshot{
			RequestID:   requestID,
			Address:     address,
			RecordCount: len(records),
			TotalAmount: summary.TotalAmount,
			UnitPrice:   summary.UnitPrice,
			TotalValue:  summary.TotalValue,
			CheckedAt:   checkedAt,
		}
		if err := c.history.Record(ctx, snap); err != nil {
			logger.Warn("failed to record check history", "error", err)
		}
	}

	logger.Info("address check complete",
		"records", len(records),
		"total_amount", summary.TotalAmount,
		"total_value", summary.TotalValue,
		"priced", priced)

	return result, nil
}
