package signal

import (
	"hybrid-screener/internal/indicator"
	"hybrid-screener/internal/model"
)

// TrendFromFrame classifies the higher-timeframe trend from EMA(20) vs
// EMA(200) on the most recent row. Unlike the primary timeframe, this
// reads the latest row even if that candle is still forming.
func TrendFromFrame(f *indicator.Frame) model.Trend {
	row, ok := f.Latest()
	if !ok {
		return model.TrendNeutral
	}
	switch {
	case row.EMA20 > row.EMA200:
		return model.TrendBullish
	case row.EMA20 < row.EMA200:
		return model.TrendBearish
	}
	return model.TrendNeutral
}
