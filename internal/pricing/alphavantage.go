package pricing

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
)

const alphaVantageURL = "https://www.alphavantage.co/query"

// AlphaVantage fetches GLOBAL_QUOTE prices. BaseURL is overridable for tests.
type AlphaVantage struct {
	APIKey  string
	BaseURL string
	Client  *http.Client
}

func NewAlphaVantage(apiKey string) *AlphaVantage {
	return &AlphaVantage{
		APIKey:  apiKey,
		BaseURL: alphaVantageURL,
		Client:  &http.Client{Timeout: 8 * time.Second},
	}
}

// GetQuote fetches the current price for symbol. Every failure mode collapses
// to ErrUnavailable for the caller; the cause is logged here.
func (a *AlphaVantage) GetQuote(ctx context.Context, symbol string) (*Quote, error) {
	symbol = strings.ToUpper(strings.TrimSpace(symbol))
	if symbol == "" || a.APIKey == "" {
		return nil, ErrUnavailable
	}

	base := a.BaseURL
	if base == "" {
		base = alphaVantageURL
	}
	reqURL := fmt.Sprintf("%s?function=GLOBAL_QUOTE&symbol=%s&apikey=%s",
		base, url.QueryEscape(symbol), url.QueryEscape(a.APIKey))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, ErrUnavailable
	}
	req.Header.Set("User-Agent", "smartfolio-backend/1.0")

	cli := a.Client
	if cli == nil {
		cli = &http.Client{Timeout: 8 * time.Second}
	}
	resp, err := cli.Do(req)
	if err != nil {
		log.Warn().Err(err).Str("symbol", symbol).Msg("Price fetch failed")
		return nil, ErrUnavailable
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		log.Warn().Int("status", resp.StatusCode).Str("symbol", symbol).Msg("Price fetch non-200")
		return nil, ErrUnavailable
	}

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, ErrUnavailable
	}

	var body map[string]json.RawMessage
	if err := json.Unmarshal(raw, &body); err != nil {
		return nil, ErrUnavailable
	}
	// Rate-limit responses come back 200 with a "Note" or "Information" field.
	if _, ok := body["Note"]; ok {
		log.Warn().Str("symbol", symbol).Msg("Price provider rate limited")
		return nil, ErrUnavailable
	}
	if _, ok := body["Information"]; ok {
		log.Warn().Str("symbol", symbol).Msg("Price provider rate limited")
		return nil, ErrUnavailable
	}

	var gq map[string]string
	if err := json.Unmarshal(body["Global Quote"], &gq); err != nil || len(gq) == 0 {
		return nil, ErrUnavailable
	}

	price, err := strconv.ParseFloat(gq["05. price"], 64)
	if err != nil || price <= 0 {
		return nil, ErrUnavailable
	}

	asOf := time.Now()
	if day := gq["07. latest trading day"]; day != "" {
		if t, e := time.Parse("2006-01-02", day); e == nil {
			asOf = t
		}
	}

	return &Quote{Symbol: symbol, Price: price, AsOf: asOf, Raw: raw}, nil
}
