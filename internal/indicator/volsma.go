package indicator

import "hybrid-screener/internal/model"

// VolumeSMA calculates the simple mean of volume over a rolling window
// that includes the current candle. Uses a preallocated circular buffer
// for zero-allocation updates.
type VolumeSMA struct {
	period  int
	buf     []float64 // preallocated circular buffer
	idx     int       // current write position
	count   int       // total values received
	sum     float64
	current float64
}

// NewVolumeSMA creates a rolling volume average with the given window
// (typically 20).
func NewVolumeSMA(period int) *VolumeSMA {
	return &VolumeSMA{
		period: period,
		buf:    make([]float64, period),
	}
}

func (v *VolumeSMA) Name() string { return "VOL_SMA" }

func (v *VolumeSMA) Update(candle model.Candle) {
	vol := candle.Volume

	if v.count >= v.period {
		// Subtract the oldest value being overwritten
		v.sum -= v.buf[v.idx]
	}

	v.buf[v.idx] = vol
	v.sum += vol
	v.idx = (v.idx + 1) % v.period
	v.count++

	if v.count >= v.period {
		v.current = v.sum / float64(v.period)
	}
}

func (v *VolumeSMA) Value() float64 { return v.current }
func (v *VolumeSMA) Ready() bool    { return v.count >= v.period }
