package signal

// weights is the fixed weight vector aligned positionally with
// ConditionSet.flags(): direction, ADX strength, MACD cross, RSI cross,
// volume surge, breakout. Sum = 10.
var weights = [6]int{2, 2, 2, 1, 2, 1}

// MaxScore is the highest attainable per-direction score.
const MaxScore = 10

// Score sums the weights of the true conditions. Range [0, MaxScore].
func Score(c ConditionSet) int {
	score := 0
	for i, on := range c.flags() {
		if on {
			score += weights[i]
		}
	}
	return score
}
