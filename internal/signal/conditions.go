// Package signal implements the hybrid signal-scoring engine: it turns
// indicator frames for two timeframes into a bounded integer strength
// score and a LONG/SHORT/NONE classification.
package signal

import (
	"fmt"

	"hybrid-screener/internal/indicator"
)

const (
	adxMin           = 23.0 // slightly more sensitive than the classic 25 for a 15m chart
	volumeSurgeRatio = 1.5
	breakoutLongTol  = 0.99 // close within 1% of the trailing high counts
	breakoutShortTol = 1.01
)

// ConditionSet holds the six boolean conditions for one direction,
// evaluated on the last fully closed candle. Field order matches the
// scorer's weight vector.
type ConditionSet struct {
	Direction   bool // ema20 vs ema50 alignment, close on the right side of ema20
	ADXStrength bool // adx above adxMin
	MACDCross   bool // histogram freshly crossed zero within the last two candles
	RSICross    bool // rsi freshly crossed 50 within the last two candles
	VolumeSurge bool // closed candle volume ≥ ratio × rolling average
	Breakout    bool // close at or beyond the trailing extreme (with tolerance)
}

// flags returns the conditions in weight order.
func (c ConditionSet) flags() [6]bool {
	return [6]bool{c.Direction, c.ADXStrength, c.MACDCross, c.RSICross, c.VolumeSurge, c.Breakout}
}

// EvaluateLong computes the LONG condition set from the primary frame.
// window is the trailing breakout lookback in candles, ending at the
// closed candle.
func EvaluateLong(f *indicator.Frame, window int) (ConditionSet, error) {
	last, p1, p2, err := contextRows(f)
	if err != nil {
		return ConditionSet{}, err
	}
	return ConditionSet{
		Direction:   last.EMA20 > last.EMA50 && last.Candle.Close > last.EMA20,
		ADXStrength: last.ADX > adxMin,
		MACDCross:   last.MACDHist > 0 && (p1.MACDHist <= 0 || p2.MACDHist <= 0),
		RSICross:    last.RSI > 50 && (p1.RSI <= 50 || p2.RSI <= 50),
		VolumeSurge: last.Candle.Volume >= volumeSurgeRatio*last.VolSMA20,
		Breakout:    last.Candle.Close >= breakoutLongTol*f.TrailingHigh(window),
	}, nil
}

// EvaluateShort computes the SHORT condition set, mirroring EvaluateLong.
func EvaluateShort(f *indicator.Frame, window int) (ConditionSet, error) {
	last, p1, p2, err := contextRows(f)
	if err != nil {
		return ConditionSet{}, err
	}
	return ConditionSet{
		Direction:   last.EMA20 < last.EMA50 && last.Candle.Close < last.EMA20,
		ADXStrength: last.ADX > adxMin,
		MACDCross:   last.MACDHist < 0 && (p1.MACDHist >= 0 || p2.MACDHist >= 0),
		RSICross:    last.RSI < 50 && (p1.RSI >= 50 || p2.RSI >= 50),
		VolumeSurge: last.Candle.Volume >= volumeSurgeRatio*last.VolSMA20,
		Breakout:    last.Candle.Close <= breakoutShortTol*f.TrailingLow(window),
	}, nil
}

// contextRows resolves the closed candle and its two predecessors.
func contextRows(f *indicator.Frame) (last, p1, p2 indicator.Row, err error) {
	last, ok := f.Closed()
	if !ok {
		return last, p1, p2, fmt.Errorf("frame %s %s: no closed candle", f.Symbol, f.Timeframe)
	}
	p1, ok = f.Prior(1)
	if !ok {
		return last, p1, p2, fmt.Errorf("frame %s %s: missing prior candle 1", f.Symbol, f.Timeframe)
	}
	p2, ok = f.Prior(2)
	if !ok {
		return last, p1, p2, fmt.Errorf("frame %s %s: missing prior candle 2", f.Symbol, f.Timeframe)
	}
	return last, p1, p2, nil
}
