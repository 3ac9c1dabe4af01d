// Package compose derives synthetic cross-instrument price series by ratio
// composition of two independently fetched canonical candle sequences, e.g.
// NIGHT/ADA from NIGHT-USDT and ADA-USDT.
package compose

import (
	"context"
	"fmt"
	"time"

	"github.com/thawtrack/thawtrack/internal/models"
)

// fetchTimeout bounds each source fetch independently so a slow leg cannot
// hold up the other one past its own deadline.
const fetchTimeout = 30 * time.Second

// SeriesFunc fetches one canonical candle sequence.
type SeriesFunc func(ctx context.Context) ([]models.Candle, error)

// Compose builds the synthetic left/right ratio sequence.
//
// The most recent min(len(left), len(right)) candles of each input are
// aligned by relative offset; older excess is dropped from the start of the
// longer series, preserving recency. Per aligned pair:
//
//	open  = a.open / b.open
//	close = a.close / b.close
//	high  = a.high / b.low   (widest plausible ratio)
//	low   = a.low / b.high   (narrowest plausible ratio)
//
// The asymmetric high/low formula deliberately bounds the ratio envelope
// conservatively. Volume is 0: it is undefined for a synthetic ratio. A zero
// denominator yields 0 for that field. The composed timestamp is the left
// candle's, falling back to the right's when the left has none.
func Compose(left, right []models.Candle) []models.Candle {
	n := len(left)
	if len(right) < n {
		n = len(right)
	}

	out := make([]models.Candle, 0, n)
	for i := 0; i < n; i++ {
		a := left[len(left)-n+i]
		b := right[len(right)-n+i]

		ts := a.Timestamp
		if ts == 0 {
			ts = b.Timestamp
		}

		out = append(out, models.Candle{
			Timestamp: ts,
			Open:      ratio(a.Open, b.Open),
			High:      ratio(a.High, b.Low),
			Low:       ratio(a.Low, b.High),
			Close:     ratio(a.Close, b.Close),
			Volume:    0,
		})
	}
	return out
}

func ratio(num, den float64) float64 {
	if den == 0 {
		return 0
	}
	return num / den
}

// FetchPair fetches both source series concurrently and composes them.
// Each fetch runs under its own timeout and fails independently without
// blocking the other; composition fails when either series reported an
// error.
func FetchPair(ctx context.Context, left, right SeriesFunc) ([]models.Candle, error) {
	type result struct {
		candles []models.Candle
		err     error
	}

	fetch := func(fn SeriesFunc, ch chan<- result) {
		fetchCtx, cancel := context.WithTimeout(ctx, fetchTimeout)
		defer cancel()
		candles, err := fn(fetchCtx)
		ch <- result{candles: candles, err: err}
	}

	leftCh := make(chan result, 1)
	rightCh := make(chan result, 1)
	go fetch(left, leftCh)
	go fetch(right, rightCh)

	leftRes := <-leftCh
	rightRes := <-rightCh

	if leftRes.err != nil {
		return nil, fmt.Errorf("left series: %w", leftRes.err)
	}
	if rightRes.err != nil {
		return nil, fmt.Errorf("right series: %w", rightRes.err)
	}

	return Compose(leftRes.candles, rightRes.candles), nil
}
