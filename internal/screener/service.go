// Package screener runs the scan cycle: heartbeat, per-symbol analysis
// in fixed order, alert delivery with journal cooldown, and the summary
// table.
package screener

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"time"

	"hybrid-screener/internal/exchange"
	"hybrid-screener/internal/heartbeat"
	"hybrid-screener/internal/logger"
	"hybrid-screener/internal/metrics"
	"hybrid-screener/internal/model"
	"hybrid-screener/internal/notification"
	"hybrid-screener/internal/retry"
	"hybrid-screener/internal/signal"
	"hybrid-screener/internal/store/sqlite"
)

// Analyzer scores one symbol. Satisfied by *signal.Analyzer.
type Analyzer interface {
	Analyze(ctx context.Context, symbol string) model.ScoreResult
}

var _ Analyzer = (*signal.Analyzer)(nil)

// Journal is the subset of the alert journal the service needs. Nil
// disables the cooldown entirely.
type Journal interface {
	Record(ctx context.Context, symbol string, side model.SignalType, strength int, confirmed bool, ts time.Time) error
	RecentlyAlerted(ctx context.Context, symbol string, side model.SignalType, within time.Duration, now time.Time) (bool, error)
}

var _ Journal = (*sqlite.Journal)(nil)

// Deps wires the service. Analyzer, Notifier and Beats are required;
// Journal, Metrics, Health and Breaker are optional.
type Deps struct {
	Pairs          []string
	AlertThreshold int
	AlertCooldown  time.Duration // 0 disables the cooldown
	ScanInterval   time.Duration // 0 runs a single cycle

	Analyzer   Analyzer
	Notifier   notification.Notifier
	SendPolicy retry.Policy
	Beats      *heartbeat.Scheduler

	Journal Journal
	Metrics *metrics.Metrics
	Health  *metrics.HealthStatus
	Breaker *exchange.CircuitBreaker
}

// Service drives the screener.
type Service struct {
	deps Deps

	// now is replaceable in tests.
	now func() time.Time
}

// NewService creates the cycle runner.
func NewService(deps Deps) *Service {
	return &Service{deps: deps, now: time.Now}
}

// Run executes scan cycles until ctx is cancelled. With a zero interval
// it runs exactly one cycle, matching cron-style deployment.
func (s *Service) Run(ctx context.Context) error {
	if s.deps.ScanInterval <= 0 {
		return s.RunCycle(ctx)
	}

	ticker := time.NewTicker(s.deps.ScanInterval)
	defer ticker.Stop()

	if err := s.RunCycle(ctx); err != nil {
		return err
	}
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if err := s.RunCycle(ctx); err != nil {
				return err
			}
		}
	}
}

// RunCycle performs one full scan: heartbeat check, every configured
// pair in fixed order, alerts, summary. Per-symbol failures degrade to
// the zero result inside the analyzer; only ctx cancellation aborts a
// cycle.
func (s *Service) RunCycle(ctx context.Context) error {
	start := s.now()
	ctx = logger.WithCycleID(ctx, logger.GenerateCycleID(start))
	slog.Info("cycle start", append(logger.LogWithCycle(ctx), slog.Int("pairs", len(s.deps.Pairs)))...)

	s.maybeHeartbeat(ctx, start)

	results := make([]model.ScoreResult, 0, len(s.deps.Pairs))
	for _, symbol := range s.deps.Pairs {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		res := s.deps.Analyzer.Analyze(ctx, symbol)
		results = append(results, res)

		if m := s.deps.Metrics; m != nil {
			m.SymbolsAnalyzed.Inc()
			m.SignalsTotal.WithLabelValues(string(res.Type)).Inc()
		}
		s.dispatchAlerts(ctx, symbol, res)
	}

	s.printSummary(results)

	elapsed := time.Since(start)
	if m := s.deps.Metrics; m != nil {
		m.CyclesTotal.Inc()
		m.CycleDur.Observe(elapsed.Seconds())
		if s.deps.Breaker != nil {
			m.ExchangeBreakerState.Set(float64(s.deps.Breaker.CurrentState()))
		}
	}
	if s.deps.Health != nil {
		s.deps.Health.SetLastCycleTime(s.now())
	}
	slog.Info("cycle done", append(logger.LogWithCycle(ctx), slog.Duration("elapsed", elapsed))...)
	return nil
}

// maybeHeartbeat sends the liveness message when the schedule says so.
// Heartbeat problems are logged and never abort the cycle.
func (s *Service) maybeHeartbeat(ctx context.Context, now time.Time) {
	due, err := s.deps.Beats.ShouldSend(ctx, now)
	if err != nil {
		log.Printf("[screener] heartbeat check failed: %v", err)
		return
	}
	if !due {
		return
	}

	alert := notification.Heartbeat(now, len(s.deps.Pairs))
	if err := s.send(ctx, alert); err != nil {
		log.Printf("[screener] heartbeat send failed: %v", err)
		return
	}
	if m := s.deps.Metrics; m != nil {
		m.AlertsSent.WithLabelValues("heartbeat").Inc()
	}
	if err := s.deps.Beats.RecordSent(ctx, now); err != nil {
		log.Printf("[screener] heartbeat mark failed: %v", err)
	}
}

// dispatchAlerts sends the confirmed alert for the winning side and the
// discarded alert for any side that scored past the threshold but was
// suppressed. The journal cooldown applies per symbol and side.
func (s *Service) dispatchAlerts(ctx context.Context, symbol string, res model.ScoreResult) {
	sides := []struct {
		side  model.SignalType
		score int
	}{
		{model.SignalLong, res.ScoreLong},
		{model.SignalShort, res.ScoreShort},
	}

	for _, c := range sides {
		if c.score < s.deps.AlertThreshold {
			continue
		}
		confirmed := res.Type == c.side

		if s.onCooldown(ctx, symbol, c.side) {
			if m := s.deps.Metrics; m != nil {
				m.AlertsSkipped.Inc()
			}
			continue
		}

		var alert notification.Alert
		if confirmed {
			alert = notification.SignalConfirmed(symbol, c.side, res.Strength)
		} else {
			alert = notification.SignalDiscarded(symbol, c.side, c.score)
		}

		if err := s.send(ctx, alert); err != nil {
			log.Printf("[screener] %s %s alert send failed: %v", symbol, c.side, err)
			if m := s.deps.Metrics; m != nil {
				m.AlertSendFails.Inc()
			}
			continue
		}
		if m := s.deps.Metrics; m != nil {
			kind := "discarded"
			if confirmed {
				kind = "confirmed"
			}
			m.AlertsSent.WithLabelValues(kind).Inc()
		}
		s.journalDelivery(ctx, symbol, c.side, c.score, confirmed)
	}
}

func (s *Service) onCooldown(ctx context.Context, symbol string, side model.SignalType) bool {
	if s.deps.Journal == nil || s.deps.AlertCooldown <= 0 {
		return false
	}
	hit, err := s.deps.Journal.RecentlyAlerted(ctx, symbol, side, s.deps.AlertCooldown, s.now())
	if err != nil {
		// A broken journal must not silence alerts.
		log.Printf("[screener] journal lookup failed: %v", err)
		return false
	}
	return hit
}

func (s *Service) journalDelivery(ctx context.Context, symbol string, side model.SignalType, score int, confirmed bool) {
	if s.deps.Journal == nil {
		return
	}
	if err := s.deps.Journal.Record(ctx, symbol, side, score, confirmed, s.now()); err != nil {
		log.Printf("[screener] journal record failed: %v", err)
	}
}

// send delivers one alert through the retry policy.
func (s *Service) send(ctx context.Context, alert notification.Alert) error {
	return s.deps.SendPolicy.Do(ctx, "notify", func() error {
		return s.deps.Notifier.Send(ctx, alert)
	})
}

// printSummary writes the per-cycle score table to stdout.
func (s *Service) printSummary(results []model.ScoreResult) {
	fmt.Printf("%-10s %-6s %-6s %-6s\n", "PAIR", "LONG", "SHORT", "SIGNAL")
	for i, res := range results {
		fmt.Printf("%-10s %-6d %-6d %-6s\n", s.deps.Pairs[i], res.ScoreLong, res.ScoreShort, res.Type)
	}
}
