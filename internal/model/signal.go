package model

// SignalType is the directional classification of a scored symbol.
type SignalType string

const (
	SignalLong  SignalType = "LONG"
	SignalShort SignalType = "SHORT"
	SignalNone  SignalType = "NONE"
)

// Trend classifies the higher-timeframe market direction.
type Trend string

const (
	TrendBullish Trend = "BULLISH"
	TrendBearish Trend = "BEARISH"
	TrendNeutral Trend = "NEUTRAL"
)

// ScoreResult is the outcome of one symbol's analysis cycle.
// It is computed fresh per symbol per cycle and never mutated after
// construction.
type ScoreResult struct {
	ScoreLong  int        `json:"score_long"`
	ScoreShort int        `json:"score_short"`
	Type       SignalType `json:"signal_type"`
	Strength   int        `json:"strength"` // winning side's score, 0 for NONE
}

// ZeroResult is the neutral all-zero result used when a symbol's
// analysis fails or lacks history.
func ZeroResult() ScoreResult {
	return ScoreResult{Type: SignalNone}
}
