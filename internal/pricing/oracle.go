// Package pricing supplies live unit prices for catalog symbols. The trade
// engine depends on the Oracle interface only; production wires the Alpha
// Vantage client, tests wire deterministic fakes.
package pricing

import (
	"context"
	"errors"
	"time"
)

// ErrUnavailable is returned whenever a usable price cannot be obtained:
// transport failure, timeout, rate limit, unknown symbol or non-positive price.
var ErrUnavailable = errors.New("Unable to fetch live price")

// Quote is one live price observation.
type Quote struct {
	Symbol string    `json:"symbol"`
	Price  float64   `json:"price"`
	AsOf   time.Time `json:"as_of"`
	// Raw is the provider payload as received, kept for journal snapshots.
	Raw []byte `json:"-"`
}

// Oracle returns a current unit price for a symbol, or ErrUnavailable.
// Implementations must not cache: trades always execute on a live fetch.
type Oracle interface {
	GetQuote(ctx context.Context, symbol string) (*Quote, error)
}
