package model

import (
	"fmt"
	"time"
)

// Candle represents one OHLCV bucket of a fixed timeframe.
// Prices and volume are float64 as returned by the exchange.
// A candle is immutable once fetched.
type Candle struct {
	TS     time.Time `json:"ts"` // bucket open time (UTC)
	Open   float64   `json:"open"`
	High   float64   `json:"high"`
	Low    float64   `json:"low"`
	Close  float64   `json:"close"`
	Volume float64   `json:"volume"`
}

// Series is an ordered candle sequence for one symbol/timeframe pair.
// Candles are ordered ascending by timestamp.
type Series struct {
	Symbol    string   // "BASE/QUOTE", e.g. "BTC/USDT"
	Timeframe string   // e.g. "15m", "4h"
	Candles   []Candle
}

// Len returns the number of candles in the series.
func (s *Series) Len() int { return len(s.Candles) }

// Validate checks the strictly-increasing timestamp invariant.
func (s *Series) Validate() error {
	for i := 1; i < len(s.Candles); i++ {
		if !s.Candles[i].TS.After(s.Candles[i-1].TS) {
			return fmt.Errorf("series %s %s: non-increasing timestamp at index %d",
				s.Symbol, s.Timeframe, i)
		}
	}
	return nil
}
