package signal

import "hybrid-screener/internal/model"

// Thresholds are the minimum per-direction scores required to qualify a
// signal.
type Thresholds struct {
	Long  int
	Short int
}

// Resolve combines the two direction scores with the higher-timeframe
// trend into the final classification. Evaluated in fixed order, first
// match wins; LONG and SHORT are mutually exclusive because each requires
// its own score to strictly exceed the other's. A tie or a trend-filtered
// side yields NONE with strength 0, regardless of how high it scored.
func Resolve(scoreLong, scoreShort int, trend model.Trend, th Thresholds) model.ScoreResult {
	res := model.ScoreResult{
		ScoreLong:  scoreLong,
		ScoreShort: scoreShort,
		Type:       model.SignalNone,
	}

	switch {
	case scoreLong >= th.Long && scoreLong > scoreShort &&
		(trend == model.TrendBullish || trend == model.TrendNeutral):
		res.Type = model.SignalLong
		res.Strength = scoreLong

	case scoreShort >= th.Short && scoreShort > scoreLong &&
		(trend == model.TrendBearish || trend == model.TrendNeutral):
		res.Type = model.SignalShort
		res.Strength = scoreShort
	}
	return res
}
