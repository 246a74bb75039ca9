package pricing

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newServer(t *testing.T, status int, body string) *AlphaVantage {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "GLOBAL_QUOTE", r.URL.Query().Get("function"))
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	av := NewAlphaVantage("test-key")
	av.BaseURL = srv.URL
	return av
}

func TestGetQuote_ParsesGlobalQuote(t *testing.T) {
	av := newServer(t, 200, `{"Global Quote": {"01. symbol": "AAPL", "05. price": "189.4100", "07. latest trading day": "2026-08-28"}}`)

	q, err := av.GetQuote(context.Background(), "aapl")
	require.NoError(t, err)
	assert.Equal(t, "AAPL", q.Symbol)
	assert.Equal(t, 189.41, q.Price)
	assert.Equal(t, "2026-08-28", q.AsOf.Format("2006-01-02"))
	assert.NotEmpty(t, q.Raw)
}

func TestGetQuote_RateLimited(t *testing.T) {
	av := newServer(t, 200, `{"Note": "Thank you for using Alpha Vantage!"}`)

	_, err := av.GetQuote(context.Background(), "AAPL")
	assert.ErrorIs(t, err, ErrUnavailable)
}

func TestGetQuote_EmptyQuote(t *testing.T) {
	av := newServer(t, 200, `{"Global Quote": {}}`)

	_, err := av.GetQuote(context.Background(), "ZZZZ")
	assert.ErrorIs(t, err, ErrUnavailable)
}

func TestGetQuote_NonPositivePrice(t *testing.T) {
	av := newServer(t, 200, `{"Global Quote": {"05. price": "0.0000"}}`)

	_, err := av.GetQuote(context.Background(), "AAPL")
	assert.ErrorIs(t, err, ErrUnavailable)
}

func TestGetQuote_ServerError(t *testing.T) {
	av := newServer(t, 500, `boom`)

	_, err := av.GetQuote(context.Background(), "AAPL")
	assert.ErrorIs(t, err, ErrUnavailable)
}

func TestGetQuote_MissingKey(t *testing.T) {
	av := NewAlphaVantage("")
	_, err := av.GetQuote(context.Background(), "AAPL")
	assert.ErrorIs(t, err, ErrUnavailable)
}
