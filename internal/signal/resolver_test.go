package signal

import (
	"testing"

	"hybrid-screener/internal/model"
)

var allTrends = []model.Trend{model.TrendBullish, model.TrendBearish, model.TrendNeutral}

func TestResolve_TotalAndExclusive(t *testing.T) {
	// For every (scoreLong, scoreShort, trend) triple exactly one of
	// LONG/SHORT/NONE comes back and strength matches the winner (or 0).
	th := Thresholds{Long: 7, Short: 7}
	for sl := 0; sl <= MaxScore; sl++ {
		for ss := 0; ss <= MaxScore; ss++ {
			for _, trend := range allTrends {
				res := Resolve(sl, ss, trend, th)

				switch res.Type {
				case model.SignalLong:
					if res.Strength != sl {
						t.Fatalf("(%d,%d,%s): LONG strength %d != %d", sl, ss, trend, res.Strength, sl)
					}
				case model.SignalShort:
					if res.Strength != ss {
						t.Fatalf("(%d,%d,%s): SHORT strength %d != %d", sl, ss, trend, res.Strength, ss)
					}
				case model.SignalNone:
					if res.Strength != 0 {
						t.Fatalf("(%d,%d,%s): NONE strength %d != 0", sl, ss, trend, res.Strength)
					}
				default:
					t.Fatalf("(%d,%d,%s): unknown type %q", sl, ss, trend, res.Type)
				}

				if res.ScoreLong != sl || res.ScoreShort != ss {
					t.Fatalf("(%d,%d,%s): scores not echoed: %+v", sl, ss, trend, res)
				}
			}
		}
	}
}

func TestResolve_TrendGating(t *testing.T) {
	th := Thresholds{Long: 7, Short: 7}
	for sl := 0; sl <= MaxScore; sl++ {
		for ss := 0; ss <= MaxScore; ss++ {
			if res := Resolve(sl, ss, model.TrendBullish, th); res.Type == model.SignalShort {
				t.Fatalf("(%d,%d): SHORT selected under BULLISH trend", sl, ss)
			}
			if res := Resolve(sl, ss, model.TrendBearish, th); res.Type == model.SignalLong {
				t.Fatalf("(%d,%d): LONG selected under BEARISH trend", sl, ss)
			}
		}
	}
}

func TestResolve_TieIsNone(t *testing.T) {
	th := Thresholds{Long: 0, Short: 0}
	for s := 0; s <= MaxScore; s++ {
		for _, trend := range allTrends {
			res := Resolve(s, s, trend, th)
			if res.Type != model.SignalNone || res.Strength != 0 {
				t.Fatalf("tie (%d,%d,%s): got %+v, want NONE/0", s, s, trend, res)
			}
		}
	}
}

func TestResolve_ThresholdBoundary(t *testing.T) {
	th := Thresholds{Long: 7, Short: 7}

	if res := Resolve(7, 0, model.TrendNeutral, th); res.Type != model.SignalLong || res.Strength != 7 {
		t.Errorf("at threshold: got %+v, want LONG/7", res)
	}
	if res := Resolve(6, 0, model.TrendNeutral, th); res.Type != model.SignalNone {
		t.Errorf("below threshold: got %+v, want NONE", res)
	}
	if res := Resolve(0, 8, model.TrendBearish, th); res.Type != model.SignalShort || res.Strength != 8 {
		t.Errorf("short at threshold: got %+v, want SHORT/8", res)
	}
}

func TestResolve_SuppressedHighScoreHasZeroStrength(t *testing.T) {
	// A SHORT scoring 10 under a BULLISH trend is discarded outright.
	res := Resolve(0, 10, model.TrendBullish, Thresholds{Long: 7, Short: 7})
	if res.Type != model.SignalNone || res.Strength != 0 {
		t.Errorf("got %+v, want NONE with strength 0", res)
	}
	if res.ScoreShort != 10 {
		t.Errorf("suppressed score must still be reported: %+v", res)
	}
}
