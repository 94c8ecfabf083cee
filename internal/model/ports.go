package model

import "context"

// ── Port Interfaces ──
// These interfaces decouple the scoring core from concrete I/O
// implementations (exchange REST client, test fixtures).

// CandleSource supplies ordered OHLCV series for a symbol at a given
// timeframe and lookback length. Implementations may fail transiently;
// callers are expected to wrap calls in a retry policy.
type CandleSource interface {
	// Fetch returns up to limit candles, ordered ascending by timestamp.
	Fetch(ctx context.Context, symbol, timeframe string, limit int) (Series, error)
}
