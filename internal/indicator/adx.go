package indicator

import (
	"math"

	"hybrid-screener/internal/model"
)

// ADX calculates the Average Directional Index with standard Wilder
// smoothing: true range and directional movement are Wilder-smoothed into
// DI+/DI-, and the resulting DX series is Wilder-smoothed again into ADX.
// First ADX value appears after 2*period candles.
type ADX struct {
	period int
	count  int

	prevHigh  float64
	prevLow   float64
	prevClose float64

	// Wilder-smoothed sums (initial values are plain sums over `period`)
	smTR    float64
	smPlus  float64
	smMinus float64

	dxSum   float64 // accumulates the first `period` DX values for the ADX seed
	dxCount int
	current float64
}

// NewADX creates a new ADX indicator with the given period (typically 14).
func NewADX(period int) *ADX {
	return &ADX{period: period}
}

func (a *ADX) Name() string { return "ADX" }

func (a *ADX) Update(candle model.Candle) {
	a.count++

	if a.count == 1 {
		a.prevHigh, a.prevLow, a.prevClose = candle.High, candle.Low, candle.Close
		return
	}

	tr := trueRange(candle.High, candle.Low, a.prevClose)
	plusDM, minusDM := directionalMovement(candle.High, candle.Low, a.prevHigh, a.prevLow)
	a.prevHigh, a.prevLow, a.prevClose = candle.High, candle.Low, candle.Close

	if a.count <= a.period+1 {
		// Accumulation phase: Wilder's initial sums over the first `period` moves
		a.smTR += tr
		a.smPlus += plusDM
		a.smMinus += minusDM
		if a.count < a.period+1 {
			return
		}
	} else {
		// Wilder smoothing: sum = sum - sum/period + new
		p := float64(a.period)
		a.smTR = a.smTR - a.smTR/p + tr
		a.smPlus = a.smPlus - a.smPlus/p + plusDM
		a.smMinus = a.smMinus - a.smMinus/p + minusDM
	}

	dx := a.dx()
	if a.dxCount < a.period {
		a.dxSum += dx
		a.dxCount++
		if a.dxCount == a.period {
			// ADX seed: simple average of the first `period` DX values
			a.current = a.dxSum / float64(a.period)
		}
		return
	}

	p := float64(a.period)
	a.current = (a.current*(p-1) + dx) / p
}

// dx computes the current directional index from the smoothed sums.
func (a *ADX) dx() float64 {
	if a.smTR == 0 {
		return 0
	}
	diPlus := 100 * a.smPlus / a.smTR
	diMinus := 100 * a.smMinus / a.smTR
	if diPlus+diMinus == 0 {
		return 0
	}
	return 100 * math.Abs(diPlus-diMinus) / (diPlus + diMinus)
}

func (a *ADX) Value() float64 { return a.current }
func (a *ADX) Ready() bool    { return a.dxCount >= a.period }

func trueRange(high, low, prevClose float64) float64 {
	tr := high - low
	if d := math.Abs(high - prevClose); d > tr {
		tr = d
	}
	if d := math.Abs(low - prevClose); d > tr {
		tr = d
	}
	return tr
}

// directionalMovement returns (+DM, -DM) for one candle transition.
// Only the larger of the two moves counts, and only when positive.
func directionalMovement(high, low, prevHigh, prevLow float64) (float64, float64) {
	upMove := high - prevHigh
	downMove := prevLow - low

	plusDM := 0.0
	minusDM := 0.0
	if upMove > downMove && upMove > 0 {
		plusDM = upMove
	}
	if downMove > upMove && downMove > 0 {
		minusDM = downMove
	}
	return plusDM, minusDM
}
