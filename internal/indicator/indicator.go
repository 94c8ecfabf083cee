// Package indicator provides technical indicator calculations over candle data.
//
// All indicators implement the Indicator interface, receiving candles one at
// a time and producing float64 values. An indicator reports Ready() == false
// until it has accumulated enough trailing history; values read before that
// are undefined and must not be used.
package indicator

import "hybrid-screener/internal/model"

// Indicator is the interface for all technical indicators.
type Indicator interface {
	// Name returns the indicator name (e.g., "EMA", "ADX").
	Name() string

	// Update feeds a new candle and recalculates.
	Update(candle model.Candle)

	// Value returns the current calculated value. Undefined until Ready.
	Value() float64

	// Ready returns true when enough data has been accumulated.
	Ready() bool
}
