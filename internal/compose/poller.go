package compose

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/thawtrack/thawtrack/internal/models"
)

// DefaultPollInterval matches the live-refresh cadence of the presentation
// layer.
const DefaultPollInterval = 30 * time.Second

// Snapshot is one successfully refreshed window delivered to the consumer.
type Snapshot struct {
	Candles   []models.Candle
	FetchedAt time.Time
}

// Poller re-runs a series fetch on a fixed interval and hands each fresh
// window to a callback. Each poll is an independent, cancellable unit of
// work with no carried state except the last successfully delivered window.
// At most one refresh is in flight per poller: a tick that arrives while a
// refresh is still running is skipped rather than queued, so a slow network
// response never blocks a newer poll.
type Poller struct {
	interval time.Duration
	fetch    SeriesFunc
	onUpdate func(Snapshot)
	logger   *slog.Logger

	inFlight atomic.Bool
	mu       sync.Mutex
	last     *Snapshot
}

// NewPoller creates a poller that invokes fetch every interval and passes
// each successful result to onUpdate. A non-positive interval falls back to
// DefaultPollInterval.
func NewPoller(interval time.Duration, fetch SeriesFunc, onUpdate func(Snapshot), logger *slog.Logger) *Poller {
	if interval <= 0 {
		interval = DefaultPollInterval
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Poller{
		interval: interval,
		fetch:    fetch,
		onUpdate: onUpdate,
		logger:   logger,
	}
}

// Run polls until the context is cancelled. The first refresh happens
// immediately rather than one interval in.
func (p *Poller) Run(ctx context.Context) error {
	p.refresh(ctx)

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			p.refresh(ctx)
		}
	}
}

// Last returns the most recent successful snapshot, or nil before the first
// one lands.
func (p *Poller) Last() *Snapshot {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.last
}

func (p *Poller) refresh(ctx context.Context) {
	if !p.inFlight.CompareAndSwap(false, true) {
		p.logger.Debug("previous poll still running, skipping tick")
		return
	}
	defer p.inFlight.Store(false)

	candles, err := p.fetch(ctx)
	if err != nil {
		// Keep last good window; a failed poll is not terminal.
		p.logger.Warn("poll failed", "error", err)
		return
	}

	snap := Snapshot{Candles: candles, FetchedAt: time.Now()}

	p.mu.Lock()
	p.last = &snap
	p.mu.Unlock()

	if p.onUpdate != nil {
		p.onUpdate(snap)
	}
}
