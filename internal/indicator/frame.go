package indicator

import (
	"errors"
	"fmt"

	"hybrid-screener/internal/model"
)

// ErrInsufficientData signals that a series is too short to produce a
// usable frame. Callers treat it as a normal no-signal condition, not a
// failure.
var ErrInsufficientData = errors.New("insufficient candle history")

const (
	// MinPrimaryCandles is the minimum input length for the primary
	// timeframe — must exceed the largest indicator lookback plus
	// warm-up slack.
	MinPrimaryCandles = 200

	// MinTrendCandles is the minimum input length for the trend
	// timeframe (EMA200 warm-up plus slack).
	MinTrendCandles = 210

	// MinPrimaryRows is the minimum viable row count for the primary
	// frame after warm-up trimming.
	MinPrimaryRows = 50
)

// Standard periods used by the hybrid strategy.
const (
	emaFastPeriod  = 20
	emaMidPeriod   = 50
	emaSlowPeriod  = 200
	adxPeriod      = 14
	rsiPeriod      = 14
	volSMAPeriod   = 20
	macdFastPeriod = 12
	macdSlowPeriod = 26
	macdSigPeriod  = 9
)

// Row is one frame row: a candle plus the derived indicator fields that
// were requested for this frame. Unrequested fields stay zero.
type Row struct {
	Candle   model.Candle
	EMA20    float64
	EMA50    float64
	EMA200   float64
	ADX      float64
	MACDHist float64
	RSI      float64
	VolSMA20 float64
}

// Frame is a candle series augmented with per-candle indicator values.
// Rows where any requested field lacked sufficient trailing history have
// been dropped; remaining rows preserve their relative order. The final
// row may represent a still-forming candle.
type Frame struct {
	Symbol    string
	Timeframe string
	Rows      []Row
}

// Len returns the number of surviving rows.
func (f *Frame) Len() int { return len(f.Rows) }

// Latest returns the most recent row, which may be an in-progress candle.
func (f *Frame) Latest() (Row, bool) {
	if len(f.Rows) == 0 {
		return Row{}, false
	}
	return f.Rows[len(f.Rows)-1], true
}

// Closed returns the last fully closed candle's row: the second-to-last
// row, since the final row may still be forming.
func (f *Frame) Closed() (Row, bool) {
	if len(f.Rows) < 2 {
		return Row{}, false
	}
	return f.Rows[len(f.Rows)-2], true
}

// Prior returns the row n candles before the closed candle (Prior(1) is
// the candle immediately preceding it).
func (f *Frame) Prior(n int) (Row, bool) {
	i := len(f.Rows) - 2 - n
	if n < 1 || i < 0 {
		return Row{}, false
	}
	return f.Rows[i], true
}

// TrailingHigh returns the maximum high over a window of rows ending at
// the closed candle (inclusive). The window clamps to available rows.
func (f *Frame) TrailingHigh(window int) float64 {
	rows := f.trailing(window)
	if len(rows) == 0 {
		return 0
	}
	m := rows[0].Candle.High
	for _, r := range rows[1:] {
		if r.Candle.High > m {
			m = r.Candle.High
		}
	}
	return m
}

// TrailingLow returns the minimum low over a window of rows ending at
// the closed candle (inclusive). The window clamps to available rows.
func (f *Frame) TrailingLow(window int) float64 {
	rows := f.trailing(window)
	if len(rows) == 0 {
		return 0
	}
	m := rows[0].Candle.Low
	for _, r := range rows[1:] {
		if r.Candle.Low < m {
			m = r.Candle.Low
		}
	}
	return m
}

// trailing slices the window of rows ending at the closed row. The
// forming final row is excluded on purpose.
func (f *Frame) trailing(window int) []Row {
	end := len(f.Rows) - 1 // exclusive; omits the final (possibly forming) row
	if end < 1 || window < 1 {
		return nil
	}
	start := end - window
	if start < 0 {
		start = 0
	}
	return f.Rows[start:end]
}

// BuildPrimary computes the primary-timeframe frame: EMA20, EMA50,
// ADX(14), MACD histogram, RSI(14) and the rolling 20-candle volume
// average. Returns ErrInsufficientData when the input is short or too
// few rows survive warm-up trimming.
func BuildPrimary(s model.Series) (*Frame, error) {
	if s.Len() < MinPrimaryCandles {
		return nil, fmt.Errorf("%w: %s %s has %d candles, need %d",
			ErrInsufficientData, s.Symbol, s.Timeframe, s.Len(), MinPrimaryCandles)
	}

	ema20 := NewEMA(emaFastPeriod)
	ema50 := NewEMA(emaMidPeriod)
	adx := NewADX(adxPeriod)
	macd := NewMACDHist(macdFastPeriod, macdSlowPeriod, macdSigPeriod)
	rsi := NewRSI(rsiPeriod)
	vol := NewVolumeSMA(volSMAPeriod)
	all := []Indicator{ema20, ema50, adx, macd, rsi, vol}

	f := &Frame{Symbol: s.Symbol, Timeframe: s.Timeframe}
	for _, c := range s.Candles {
		for _, ind := range all {
			ind.Update(c)
		}
		if !allReady(all) {
			continue
		}
		f.Rows = append(f.Rows, Row{
			Candle:   c,
			EMA20:    ema20.Value(),
			EMA50:    ema50.Value(),
			ADX:      adx.Value(),
			MACDHist: macd.Value(),
			RSI:      rsi.Value(),
			VolSMA20: vol.Value(),
		})
	}

	if len(f.Rows) < MinPrimaryRows {
		return nil, fmt.Errorf("%w: %s %s has %d rows after warm-up, need %d",
			ErrInsufficientData, s.Symbol, s.Timeframe, len(f.Rows), MinPrimaryRows)
	}
	return f, nil
}

// BuildTrend computes the trend-timeframe frame: EMA20 and EMA200 only.
func BuildTrend(s model.Series) (*Frame, error) {
	if s.Len() < MinTrendCandles {
		return nil, fmt.Errorf("%w: %s %s has %d candles, need %d",
			ErrInsufficientData, s.Symbol, s.Timeframe, s.Len(), MinTrendCandles)
	}

	ema20 := NewEMA(emaFastPeriod)
	ema200 := NewEMA(emaSlowPeriod)
	all := []Indicator{ema20, ema200}

	f := &Frame{Symbol: s.Symbol, Timeframe: s.Timeframe}
	for _, c := range s.Candles {
		for _, ind := range all {
			ind.Update(c)
		}
		if !allReady(all) {
			continue
		}
		f.Rows = append(f.Rows, Row{
			Candle: c,
			EMA20:  ema20.Value(),
			EMA200: ema200.Value(),
		})
	}
	return f, nil
}

func allReady(inds []Indicator) bool {
	for _, ind := range inds {
		if !ind.Ready() {
			return false
		}
	}
	return true
}
