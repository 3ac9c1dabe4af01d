package compose

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/thawtrack/thawtrack/internal/models"
)

// series builds a flat test sequence: n hourly candles ending at the same
// most recent timestamp regardless of length.
func series(n int, price, volume float64) []models.Candle {
	const end = int64(1700000000000)
	out := make([]models.Candle, n)
	for i := 0; i < n; i++ {
		out[i] = models.Candle{
			Timestamp: end - int64(n-1-i)*3600000,
			Open:      price,
			High:      price * 1.1,
			Low:       price * 0.9,
			Close:     price,
			Volume:    volume,
		}
	}
	return out
}

func TestCompose(t *testing.T) {
	t.Run("aligns most recent window", func(t *testing.T) {
		left := series(100, 2.0, 500)
		right := series(80, 4.0, 900)

		out := Compose(left, right)
		require.Len(t, out, 80)

		// recency preserved: last composed candle pairs the last inputs
		assert.Equal(t, left[99].Timestamp, out[79].Timestamp)
		// first composed candle pairs left[20] with right[0]
		assert.Equal(t, left[20].Timestamp, out[0].Timestamp)
	})

	t.Run("ratio fields", func(t *testing.T) {
		left := []models.Candle{{Timestamp: 1, Open: 2.0, High: 2.2, Low: 1.8, Close: 2.1, Volume: 500}}
		right := []models.Candle{{Timestamp: 1, Open: 4.0, High: 4.4, Low: 3.6, Close: 4.2, Volume: 900}}

		out := Compose(left, right)
		require.Len(t, out, 1)

		c := out[0]
		assert.InDelta(t, 0.5, c.Open, 1e-12)
		assert.InDelta(t, 0.5, c.Close, 1e-12)
		assert.InDelta(t, 2.2/3.6, c.High, 1e-12)
		assert.InDelta(t, 1.8/4.4, c.Low, 1e-12)
		assert.Equal(t, 0.0, c.Volume)
	})

	t.Run("reciprocal pairs multiply to one", func(t *testing.T) {
		a := series(50, 3.0, 100)
		b := series(50, 7.0, 100)

		ab := Compose(a, b)
		ba := Compose(b, a)
		require.Len(t, ab, 50)

		for i := range ab {
			assert.InDelta(t, 1.0, ab[i].Close*ba[i].Close, 1e-9)
		}
	})

	t.Run("zero denominator yields zero", func(t *testing.T) {
		left := []models.Candle{{Timestamp: 1, Open: 2.0, High: 2.2, Low: 1.8, Close: 2.1}}
		right := []models.Candle{{Timestamp: 1, Open: 0, High: 4.4, Low: 0, Close: 4.2}}

		out := Compose(left, right)
		require.Len(t, out, 1)
		assert.Equal(t, 0.0, out[0].Open)  // right open is 0
		assert.Equal(t, 0.0, out[0].High)  // right low is 0
		assert.NotZero(t, out[0].Close)
	})

	t.Run("empty input", func(t *testing.T) {
		assert.Empty(t, Compose(nil, series(10, 1, 1)))
		assert.Empty(t, Compose(series(10, 1, 1), nil))
	})

	t.Run("timestamp falls back to right", func(t *testing.T) {
		left := []models.Candle{{Timestamp: 0, Open: 1, High: 1, Low: 1, Close: 1}}
		right := []models.Candle{{Timestamp: 42, Open: 1, High: 1, Low: 1, Close: 1}}

		out := Compose(left, right)
		require.Len(t, out, 1)
		assert.Equal(t, int64(42), out[0].Timestamp)
	})
}

func TestFetchPair(t *testing.T) {
	leftSeries := series(10, 2.0, 100)
	rightSeries := series(10, 4.0, 100)

	ok := func(c []models.Candle) SeriesFunc {
		return func(ctx context.Context) ([]models.Candle, error) { return c, nil }
	}
	fail := func(err error) SeriesFunc {
		return func(ctx context.Context) ([]models.Candle, error) { return nil, err }
	}

	t.Run("both succeed", func(t *testing.T) {
		out, err := FetchPair(context.Background(), ok(leftSeries), ok(rightSeries))
		require.NoError(t, err)
		assert.Len(t, out, 10)
		assert.InDelta(t, 0.5, out[0].Close, 1e-12)
	})

	t.Run("left failure reported", func(t *testing.T) {
		boom := errors.New("boom")
		_, err := FetchPair(context.Background(), fail(boom), ok(rightSeries))
		require.Error(t, err)
		assert.ErrorIs(t, err, boom)
		assert.Contains(t, err.Error(), "left series")
	})

	t.Run("right failure reported", func(t *testing.T) {
		boom := errors.New("boom")
		_, err := FetchPair(context.Background(), ok(leftSeries), fail(boom))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "right series")
	})
}
