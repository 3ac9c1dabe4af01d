package quote

import (
	"context"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/thawtrack/thawtrack/internal/provider"
)

const tickersPayload = `{"data":[
	{"instId":"BTC-USDT","last":"65000.5"},
	{"instId":"NIGHT-USDT","last":"2.5"},
	{"instId":"NIGHT-USDC","last":"2.6"},
	{"instId":"NIGHTOWL-USDT","last":"9.9"}
]}`

func testService() *Service {
	return NewService(provider.NewClient(slog.Default()), slog.Default())
}

func TestExtract(t *testing.T) {
	s := testService()

	t.Run("first match wins", func(t *testing.T) {
		price, ok := s.extract([]byte(tickersPayload), "NIGHT")
		require.True(t, ok)
		assert.Equal(t, 2.5, price)
	})

	t.Run("prefix match is exact", func(t *testing.T) {
		// "NIGHTOWL" must not match "NIGHT" and vice versa
		price, ok := s.extract([]byte(tickersPayload), "NIGHTOWL")
		require.True(t, ok)
		assert.Equal(t, 9.9, price)
	})

	t.Run("no match", func(t *testing.T) {
		_, ok := s.extract([]byte(tickersPayload), "ADA")
		assert.False(t, ok)
	})

	t.Run("unparsable price skipped", func(t *testing.T) {
		payload := `{"data":[
			{"instId":"NIGHT-USDT","last":"n/a"},
			{"instId":"NIGHT-USDC","last":"2.6"}
		]}`
		price, ok := s.extract([]byte(payload), "NIGHT")
		require.True(t, ok)
		assert.Equal(t, 2.6, price)
	})

	t.Run("malformed payload degrades", func(t *testing.T) {
		_, ok := s.extract([]byte(`not json`), "NIGHT")
		assert.False(t, ok)
	})

	t.Run("empty data", func(t *testing.T) {
		_, ok := s.extract([]byte(`{"data":[]}`), "NIGHT")
		assert.False(t, ok)
	})
}

func TestQuote(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(tickersPayload))
		}))
		defer server.Close()

		s := testService()
		s.tickersURL = server.URL

		price, ok := s.Quote(context.Background(), "NIGHT")
		require.True(t, ok)
		assert.Equal(t, 2.5, price)
	})

	t.Run("transport failure degrades", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusForbidden)
		}))
		defer server.Close()

		s := testService()
		s.tickersURL = server.URL

		price, ok := s.Quote(context.Background(), "NIGHT")
		assert.False(t, ok)
		assert.Equal(t, 0.0, price)
	})
}
