package notification

import (
	"fmt"
	"time"

	"hybrid-screener/internal/model"
	"hybrid-screener/internal/signal"
)

// SignalConfirmed builds the alert for a signal that passed the trend
// filter and won the direction tiebreak.
func SignalConfirmed(symbol string, side model.SignalType, strength int) Alert {
	return Alert{
		Level: AlertInfo,
		Message: fmt.Sprintf("✅ Confirmed %s signal on %s | strength %d/%d",
			side, symbol, strength, signal.MaxScore),
	}
}

// SignalDiscarded builds the alert for a side that reached the alert
// threshold but lost the resolution: suppressed by the trend filter,
// tied, or outscored by the other side.
func SignalDiscarded(symbol string, side model.SignalType, score int) Alert {
	return Alert{
		Level: AlertWarning,
		Message: fmt.Sprintf("⚠️ Potential %s on %s (strength %d/%d) | discarded by filter",
			side, symbol, score, signal.MaxScore),
	}
}

// Heartbeat builds the twice-daily liveness message.
func Heartbeat(now time.Time, pairs int) Alert {
	return Alert{
		Level: AlertInfo,
		Message: fmt.Sprintf("💓 Screener alive | %s | scanning %d pairs",
			now.UTC().Format("2006-01-02 15:04 MST"), pairs),
	}
}

// Fatal builds the crash notification sent right before exit.
func Fatal(err error) Alert {
	return Alert{
		Level:   AlertCritical,
		Title:   "Screener stopped",
		Message: err.Error(),
	}
}
