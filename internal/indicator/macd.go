package indicator

import "hybrid-screener/internal/model"

// MACDHist calculates the MACD histogram: the difference between the MACD
// line (fast EMA − slow EMA of closes) and its signal line (EMA of the
// MACD line itself). Standard periods are 12/26/9.
type MACDHist struct {
	fast    *EMA
	slow    *EMA
	signal  *EMA
	current float64
}

// NewMACDHist creates a MACD histogram indicator with the given fast, slow
// and signal periods.
func NewMACDHist(fastPeriod, slowPeriod, signalPeriod int) *MACDHist {
	return &MACDHist{
		fast:   NewEMA(fastPeriod),
		slow:   NewEMA(slowPeriod),
		signal: NewEMA(signalPeriod),
	}
}

func (m *MACDHist) Name() string { return "MACD_HIST" }

func (m *MACDHist) Update(candle model.Candle) {
	m.fast.add(candle.Close)
	m.slow.add(candle.Close)

	// The MACD line only exists once the slow EMA is seeded; the signal
	// EMA consumes the line values from that point on.
	if !m.fast.Ready() || !m.slow.Ready() {
		return
	}
	line := m.fast.Value() - m.slow.Value()
	m.signal.add(line)
	if m.signal.Ready() {
		m.current = line - m.signal.Value()
	}
}

func (m *MACDHist) Value() float64 { return m.current }
func (m *MACDHist) Ready() bool    { return m.signal.Ready() }
