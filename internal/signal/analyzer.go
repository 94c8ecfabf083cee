package signal

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"hybrid-screener/internal/indicator"
	"hybrid-screener/internal/model"
	"hybrid-screener/internal/retry"
)

// Config holds the analyzer's strategy parameters.
type Config struct {
	PrimaryTimeframe string // e.g. "15m"
	TrendTimeframe   string // e.g. "4h"
	PrimaryLimit     int    // candles fetched for the primary timeframe (e.g. 300)
	TrendLimit       int    // candles fetched for the trend timeframe (e.g. 250)

	// BreakoutWindow is the trailing high/low lookback in primary
	// candles (96 ≈ 24h at 15m spacing). Timeframe-coupled: recompute it
	// if PrimaryTimeframe changes.
	BreakoutWindow int

	Thresholds Thresholds

	// OnFetch, if set, observes the elapsed wall time of each successful
	// fetch, keyed by timeframe. Feeds the fetch duration histogram.
	OnFetch func(timeframe string, elapsed time.Duration)

	// OnDegraded, if set, is called when a symbol degrades to the zero
	// result for an error cause.
	OnDegraded func(symbol string)
}

// Analyzer runs the full fetch → indicators → conditions → score →
// resolve sequence for one symbol at a time.
type Analyzer struct {
	source model.CandleSource
	policy retry.Policy
	cfg    Config
}

// NewAnalyzer creates an analyzer over the given candle source. The retry
// policy governs both timeframe fetches.
func NewAnalyzer(source model.CandleSource, policy retry.Policy, cfg Config) *Analyzer {
	return &Analyzer{source: source, policy: policy, cfg: cfg}
}

// Analyze scores one symbol. Any failure — transport errors after
// retries, short history, indicator math errors, even panics — degrades
// to the neutral all-zero NONE result so one symbol can never abort a
// cycle. Insufficient history is logged as a normal condition, not an
// error.
func (a *Analyzer) Analyze(ctx context.Context, symbol string) (res model.ScoreResult) {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("[signal] %s: panic recovered: %v", symbol, r)
			res = a.degraded(symbol)
		}
	}()

	primary, err := a.fetch(ctx, symbol, a.cfg.PrimaryTimeframe, a.cfg.PrimaryLimit)
	if err != nil {
		log.Printf("[signal] %s: primary fetch failed: %v", symbol, err)
		return a.degraded(symbol)
	}
	trendSeries, err := a.fetch(ctx, symbol, a.cfg.TrendTimeframe, a.cfg.TrendLimit)
	if err != nil {
		log.Printf("[signal] %s: trend fetch failed: %v", symbol, err)
		return a.degraded(symbol)
	}

	pf, err := indicator.BuildPrimary(primary)
	if err != nil {
		a.logFrameErr(symbol, err)
		return a.degraded(symbol)
	}
	tf, err := indicator.BuildTrend(trendSeries)
	if err != nil {
		a.logFrameErr(symbol, err)
		return a.degraded(symbol)
	}
	trend := TrendFromFrame(tf)

	longSet, err := EvaluateLong(pf, a.cfg.BreakoutWindow)
	if err != nil {
		log.Printf("[signal] %s: %v", symbol, err)
		return a.degraded(symbol)
	}
	shortSet, err := EvaluateShort(pf, a.cfg.BreakoutWindow)
	if err != nil {
		log.Printf("[signal] %s: %v", symbol, err)
		return a.degraded(symbol)
	}

	return Resolve(Score(longSet), Score(shortSet), trend, a.cfg.Thresholds)
}

// fetch retrieves one timeframe through the retry policy and validates
// series ordering.
func (a *Analyzer) fetch(ctx context.Context, symbol, timeframe string, limit int) (model.Series, error) {
	var series model.Series
	op := fmt.Sprintf("fetch %s %s", symbol, timeframe)
	start := time.Now()
	err := a.policy.Do(ctx, op, func() error {
		var ferr error
		series, ferr = a.source.Fetch(ctx, symbol, timeframe, limit)
		return ferr
	})
	if err != nil {
		return model.Series{}, err
	}
	if a.cfg.OnFetch != nil {
		a.cfg.OnFetch(timeframe, time.Since(start))
	}
	if err := series.Validate(); err != nil {
		return model.Series{}, err
	}
	return series, nil
}

// degraded reports the error-caused zero result through OnDegraded.
func (a *Analyzer) degraded(symbol string) model.ScoreResult {
	if a.cfg.OnDegraded != nil {
		a.cfg.OnDegraded(symbol)
	}
	return model.ZeroResult()
}

func (a *Analyzer) logFrameErr(symbol string, err error) {
	if errors.Is(err, indicator.ErrInsufficientData) {
		log.Printf("[signal] %s: %v", symbol, err)
		return
	}
	log.Printf("[signal] %s: frame build failed: %v", symbol, err)
}
