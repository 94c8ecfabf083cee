// Package exchange provides the MEXC spot REST candle source.
package exchange

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"hybrid-screener/internal/model"
)

const defaultBaseURL = "https://api.mexc.com"

// intervals maps strategy timeframes to MEXC kline interval names.
var intervals = map[string]string{
	"1m":  "1m",
	"5m":  "5m",
	"15m": "15m",
	"30m": "30m",
	"1h":  "60m",
	"4h":  "4h",
	"1d":  "1d",
}

// Config configures the MEXC client.
type Config struct {
	BaseURL     string        // defaults to the public MEXC API
	HTTPTimeout time.Duration // per-request timeout, defaults to 10s

	// Breaker settings; zero values disable the breaker.
	BreakerMaxFailures  int
	BreakerResetTimeout time.Duration

	// OnBreakerStateChange, if set, is called on breaker transitions in
	// addition to the state log line. Feeds trip metrics and health.
	OnBreakerStateChange func(from, to State)
}

// Client fetches OHLCV klines from the MEXC spot API. It implements
// model.CandleSource. Safe for sequential per-symbol use; the breaker
// makes it safe to share across goroutines as well.
type Client struct {
	baseURL string
	http    *http.Client
	breaker *CircuitBreaker
}

// New creates a MEXC client.
func New(cfg Config) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = defaultBaseURL
	}
	if cfg.HTTPTimeout <= 0 {
		cfg.HTTPTimeout = 10 * time.Second
	}
	c := &Client{
		baseURL: cfg.BaseURL,
		http:    &http.Client{Timeout: cfg.HTTPTimeout},
	}
	if cfg.BreakerMaxFailures > 0 {
		c.breaker = NewCircuitBreaker(cfg.BreakerMaxFailures, cfg.BreakerResetTimeout)
		c.breaker.OnStateChange = func(from, to State) {
			log.Printf("[exchange] circuit breaker %s → %s", from, to)
			if cfg.OnBreakerStateChange != nil {
				cfg.OnBreakerStateChange(from, to)
			}
		}
	}
	return c
}

// Breaker exposes the circuit breaker for state metrics. May be nil.
func (c *Client) Breaker() *CircuitBreaker { return c.breaker }

// Fetch returns up to limit candles for symbol ("BASE/QUOTE") at the
// given timeframe, ordered ascending by open time. The final candle may
// still be forming.
func (c *Client) Fetch(ctx context.Context, symbol, timeframe string, limit int) (model.Series, error) {
	interval, ok := intervals[timeframe]
	if !ok {
		return model.Series{}, fmt.Errorf("unsupported timeframe %q", timeframe)
	}

	q := url.Values{}
	q.Set("symbol", strings.ReplaceAll(symbol, "/", ""))
	q.Set("interval", interval)
	q.Set("limit", strconv.Itoa(limit))
	reqURL := c.baseURL + "/api/v3/klines?" + q.Encode()

	var body []byte
	call := func() error {
		var cerr error
		body, cerr = c.get(ctx, reqURL)
		return cerr
	}

	var err error
	if c.breaker != nil {
		err = c.breaker.Execute(call)
	} else {
		err = call()
	}
	if err != nil {
		return model.Series{}, err
	}

	candles, err := parseKlines(body)
	if err != nil {
		return model.Series{}, fmt.Errorf("parse klines %s %s: %w", symbol, timeframe, err)
	}
	return model.Series{Symbol: symbol, Timeframe: timeframe, Candles: candles}, nil
}

// get performs one GET round trip and classifies the failure kind.
func (c *Client) get(ctx context.Context, reqURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, err
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, &TransientError{Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &TransientError{Err: err}
	}

	switch {
	case resp.StatusCode == http.StatusOK:
		return body, nil
	case resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500:
		return nil, &TransientError{Err: &APIError{Status: resp.StatusCode, Body: truncate(body)}}
	default:
		return nil, &APIError{Status: resp.StatusCode, Body: truncate(body)}
	}
}

// parseKlines decodes the MEXC kline array-of-arrays format:
// [openTimeMs, open, high, low, close, volume, closeTimeMs, quoteVolume]
// where prices arrive as decimal strings.
func parseKlines(body []byte) ([]model.Candle, error) {
	var raw [][]json.RawMessage
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, err
	}

	candles := make([]model.Candle, 0, len(raw))
	for i, row := range raw {
		if len(row) < 6 {
			return nil, fmt.Errorf("row %d: %d fields, need 6", i, len(row))
		}
		var openMs int64
		if err := json.Unmarshal(row[0], &openMs); err != nil {
			return nil, fmt.Errorf("row %d open time: %w", i, err)
		}
		var c model.Candle
		c.TS = time.UnixMilli(openMs).UTC()
		fields := []*float64{&c.Open, &c.High, &c.Low, &c.Close, &c.Volume}
		for j, dst := range fields {
			v, err := decimalField(row[j+1])
			if err != nil {
				return nil, fmt.Errorf("row %d field %d: %w", i, j+1, err)
			}
			*dst = v
		}
		candles = append(candles, c)
	}
	return candles, nil
}

// decimalField accepts either a JSON string ("43000.12") or a bare
// number, which MEXC has used interchangeably across API revisions.
func decimalField(raw json.RawMessage) (float64, error) {
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return strconv.ParseFloat(s, 64)
	}
	var f float64
	if err := json.Unmarshal(raw, &f); err != nil {
		return 0, err
	}
	return f, nil
}

func truncate(body []byte) string {
	const max = 200
	if len(body) > max {
		return string(body[:max]) + "..."
	}
	return string(body)
}
