package signal

import (
	"math/rand"
	"testing"
)

// conditionsFromBits builds a ConditionSet from a 6-bit mask in flag
// order: direction, adx, macd, rsi, volume, breakout.
func conditionsFromBits(bits [6]bool) ConditionSet {
	return ConditionSet{
		Direction:   bits[0],
		ADXStrength: bits[1],
		MACDCross:   bits[2],
		RSICross:    bits[3],
		VolumeSurge: bits[4],
		Breakout:    bits[5],
	}
}

func TestScore_WeightTable(t *testing.T) {
	cases := []struct {
		name string
		bits [6]bool
		want int
	}{
		{"none", [6]bool{}, 0},
		{"all", [6]bool{true, true, true, true, true, true}, 10},
		{"direction only", [6]bool{true, false, false, false, false, false}, 2},
		{"rsi cross only", [6]bool{false, false, false, true, false, false}, 1},
		{"breakout only", [6]bool{false, false, false, false, false, true}, 1},
		{"heavy conditions", [6]bool{true, true, true, false, true, false}, 8},
	}
	for _, tc := range cases {
		if got := Score(conditionsFromBits(tc.bits)); got != tc.want {
			t.Errorf("%s: Score = %d, want %d", tc.name, got, tc.want)
		}
	}
}

func TestScore_RandomVectors(t *testing.T) {
	// Property: for any condition vector, the score equals the exact
	// weighted sum of true entries and stays within [0, MaxScore].
	table := [6]int{2, 2, 2, 1, 2, 1}
	rng := rand.New(rand.NewSource(42))

	for i := 0; i < 1000; i++ {
		var bits [6]bool
		want := 0
		for j := range bits {
			bits[j] = rng.Intn(2) == 1
			if bits[j] {
				want += table[j]
			}
		}
		got := Score(conditionsFromBits(bits))
		if got != want {
			t.Fatalf("vector %v: Score = %d, want %d", bits, got, want)
		}
		if got < 0 || got > MaxScore {
			t.Fatalf("vector %v: Score %d out of range", bits, got)
		}
	}
}
