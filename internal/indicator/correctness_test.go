package indicator

import (
	"math"
	"testing"
	"time"

	"hybrid-screener/internal/model"
)

// ────────────────────────────────────────────────────────────
// Helpers
// ────────────────────────────────────────────────────────────

func closeCandle(close float64) model.Candle {
	return model.Candle{
		Open: close, High: close + 0.5, Low: close - 0.5, Close: close, Volume: 100,
	}
}

func assertClose(t *testing.T, label string, got, want, tol float64) {
	t.Helper()
	if math.Abs(got-want) > tol {
		t.Errorf("%s: got %.6f, want %.6f (tol=%.6f, diff=%.6f)", label, got, want, tol, math.Abs(got-want))
	}
}

// ────────────────────────────────────────────────────────────
// EMA Correctness
// ────────────────────────────────────────────────────────────

func TestEMA_Correctness_Period3(t *testing.T) {
	// Hand-calculated EMA(3), multiplier 2/(3+1) = 0.5:
	// Prices: 1, 2, 3, 4, 5
	// Seed after candle 3: (1+2+3)/3 = 2.0
	// Candle 4: 4*0.5 + 2.0*0.5 = 3.0
	// Candle 5: 5*0.5 + 3.0*0.5 = 4.0

	ema := NewEMA(3)
	prices := []float64{1, 2, 3, 4, 5}
	expected := []float64{0, 0, 2.0, 3.0, 4.0}
	ready := []bool{false, false, true, true, true}

	for i, p := range prices {
		ema.Update(closeCandle(p))
		if ema.Ready() != ready[i] {
			t.Errorf("candle %d: Ready()=%v, want %v", i, ema.Ready(), ready[i])
		}
		if ready[i] {
			assertClose(t, "EMA(3)", ema.Value(), expected[i], 0.0001)
		}
	}
}

func TestEMA_SeedIsSimpleAverage(t *testing.T) {
	ema := NewEMA(4)
	for _, p := range []float64{10, 20, 30, 40} {
		ema.Update(closeCandle(p))
	}
	if !ema.Ready() {
		t.Fatal("expected Ready after period candles")
	}
	assertClose(t, "EMA(4) seed", ema.Value(), 25.0, 0.0001)
}

// ────────────────────────────────────────────────────────────
// RSI Correctness
// ────────────────────────────────────────────────────────────

func TestRSI_Correctness_Period3(t *testing.T) {
	// Prices: 10, 11, 12, 13 — three gains of 1, no losses.
	// First RSI after period+1 candles: avgLoss = 0 → RSI = 100.
	rsi := NewRSI(3)
	for _, p := range []float64{10, 11, 12, 13} {
		rsi.Update(closeCandle(p))
	}
	if !rsi.Ready() {
		t.Fatal("expected Ready after period+1 candles")
	}
	assertClose(t, "RSI(3) all gains", rsi.Value(), 100.0, 0.0001)

	// Next candle drops to 12 (loss of 1). Wilder smoothing:
	// avgGain = (1*2 + 0) / 3 = 0.6667
	// avgLoss = (0*2 + 1) / 3 = 0.3333
	// RS = 2 → RSI = 100 - 100/3 = 66.6667
	rsi.Update(closeCandle(12))
	assertClose(t, "RSI(3) after loss", rsi.Value(), 66.6667, 0.001)
}

func TestRSI_NotReadyDuringWarmup(t *testing.T) {
	rsi := NewRSI(14)
	for i := 0; i < 14; i++ {
		rsi.Update(closeCandle(100 + float64(i)))
		if rsi.Ready() {
			t.Fatalf("candle %d: Ready during warm-up", i)
		}
	}
	rsi.Update(closeCandle(120))
	if !rsi.Ready() {
		t.Error("expected Ready after period+1 candles")
	}
}

// ────────────────────────────────────────────────────────────
// ADX Correctness
// ────────────────────────────────────────────────────────────

// trendCandle builds a steadily rising candle: close climbs 2 per step,
// so every transition gives +DM=2, -DM=0, TR=3 → DX=100.
func trendCandle(i int) model.Candle {
	close := 100.0 + 2.0*float64(i)
	return model.Candle{Open: close - 1, High: close + 1, Low: close - 1, Close: close, Volume: 100}
}

func TestADX_Correctness_PureUptrend(t *testing.T) {
	// With DX pinned at 100 every step, ADX must converge to exactly 100.
	adx := NewADX(2)
	for i := 0; i < 4; i++ {
		adx.Update(trendCandle(i))
	}
	if !adx.Ready() {
		t.Fatal("expected Ready after 2*period candles")
	}
	assertClose(t, "ADX(2) uptrend", adx.Value(), 100.0, 0.0001)

	// Stays at 100 under further identical moves
	adx.Update(trendCandle(4))
	assertClose(t, "ADX(2) continued", adx.Value(), 100.0, 0.0001)
}

func TestADX_FlatMarketIsZero(t *testing.T) {
	adx := NewADX(2)
	flat := model.Candle{Open: 100, High: 100, Low: 100, Close: 100, Volume: 1}
	for i := 0; i < 10; i++ {
		adx.Update(flat)
	}
	if !adx.Ready() {
		t.Fatal("expected Ready")
	}
	assertClose(t, "ADX flat", adx.Value(), 0.0, 0.0001)
}

func TestADX_ReadyAfterTwoPeriods(t *testing.T) {
	adx := NewADX(14)
	for i := 0; i < 27; i++ {
		adx.Update(trendCandle(i))
		if adx.Ready() {
			t.Fatalf("candle %d: Ready before 2*period candles", i)
		}
	}
	adx.Update(trendCandle(27))
	if !adx.Ready() {
		t.Error("expected Ready at 2*period candles")
	}
}

// ────────────────────────────────────────────────────────────
// MACD Histogram Correctness
// ────────────────────────────────────────────────────────────

func TestMACDHist_ConstantPriceIsZero(t *testing.T) {
	// Fast(2), slow(3), signal(2): slow seeds at candle 3, signal gets its
	// first line value there and seeds at candle 4.
	m := NewMACDHist(2, 3, 2)
	for i := 0; i < 3; i++ {
		m.Update(closeCandle(10))
		if m.Ready() {
			t.Fatalf("candle %d: Ready before signal warm-up", i)
		}
	}
	m.Update(closeCandle(10))
	if !m.Ready() {
		t.Fatal("expected Ready once signal EMA is seeded")
	}
	assertClose(t, "MACD hist flat", m.Value(), 0.0, 0.0001)
}

func TestMACDHist_PositiveInUptrend(t *testing.T) {
	// On a steady ramp the MACD line keeps rising, so its own EMA (the
	// signal) always lags below it and the histogram stays positive.
	m := NewMACDHist(2, 4, 3)
	for i := 1; i <= 12; i++ {
		m.Update(closeCandle(float64(i)))
	}
	if !m.Ready() {
		t.Fatal("expected Ready")
	}
	if m.Value() <= 0 {
		t.Errorf("expected positive histogram in uptrend, got %.6f", m.Value())
	}
}

// ────────────────────────────────────────────────────────────
// Volume SMA Correctness
// ────────────────────────────────────────────────────────────

func TestVolumeSMA_Correctness_Period3(t *testing.T) {
	// Volumes: 10, 20, 30, 40
	// After candle 3: (10+20+30)/3 = 20
	// After candle 4: (20+30+40)/3 = 30
	v := NewVolumeSMA(3)
	vols := []float64{10, 20, 30, 40}
	expected := []float64{0, 0, 20.0, 30.0}
	ready := []bool{false, false, true, true}

	for i, vol := range vols {
		v.Update(model.Candle{TS: time.Unix(int64(i), 0), Close: 100, Volume: vol})
		if v.Ready() != ready[i] {
			t.Errorf("candle %d: Ready()=%v, want %v", i, v.Ready(), ready[i])
		}
		if ready[i] {
			assertClose(t, "VolumeSMA(3)", v.Value(), expected[i], 0.0001)
		}
	}
}
