package metrics

import (
	"context"
	"database/sql"
	"encoding/json"
	"log"
	"net/http"
	"sync"
	"time"

	goredis "github.com/go-redis/redis/v8"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all Prometheus metrics for the screener.
type Metrics struct {
	CyclesTotal     prometheus.Counter
	SymbolsAnalyzed prometheus.Counter
	SignalsTotal    *prometheus.CounterVec // labels: type=LONG|SHORT|NONE
	AnalysisErrors  prometheus.Counter

	AlertsSent     *prometheus.CounterVec // labels: kind=confirmed|discarded|heartbeat
	AlertsSkipped  prometheus.Counter     // suppressed by the journal cooldown
	AlertSendFails prometheus.Counter

	FetchRetries prometheus.Counter
	FetchDur     *prometheus.HistogramVec // labels: timeframe
	CycleDur     prometheus.Histogram

	ExchangeBreakerState prometheus.Gauge // 0=closed, 1=open, 2=half-open
	ExchangeBreakerTrips prometheus.Counter
}

// NewMetrics registers and returns all Prometheus metrics.
func NewMetrics() *Metrics {
	m := &Metrics{
		CyclesTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "screener_cycles_total",
			Help: "Total scan cycles completed",
		}),
		SymbolsAnalyzed: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "screener_symbols_analyzed_total",
			Help: "Total per-symbol analyses performed",
		}),
		SignalsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "screener_signals_total",
			Help: "Resolved signals by type",
		}, []string{"type"}),
		AnalysisErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "screener_analysis_errors_total",
			Help: "Symbols that produced a zero result due to fetch or data errors",
		}),

		AlertsSent: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "screener_alerts_sent_total",
			Help: "Alerts delivered by kind (confirmed, discarded, heartbeat)",
		}, []string{"kind"}),
		AlertsSkipped: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "screener_alerts_skipped_total",
			Help: "Alerts suppressed by the journal cooldown",
		}),
		AlertSendFails: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "screener_alert_send_failures_total",
			Help: "Alert deliveries that failed after retries",
		}),

		FetchRetries: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "screener_fetch_retries_total",
			Help: "Exchange fetch retry attempts",
		}),
		FetchDur: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "screener_fetch_duration_seconds",
			Help:    "Exchange kline fetch latency per timeframe",
			Buckets: prometheus.DefBuckets,
		}, []string{"timeframe"}),
		CycleDur: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "screener_cycle_duration_seconds",
			Help:    "Full scan cycle latency",
			Buckets: []float64{0.5, 1, 2.5, 5, 10, 30, 60, 120},
		}),

		ExchangeBreakerState: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "screener_exchange_circuit_breaker_state",
			Help: "Exchange circuit breaker state (0=closed, 1=open, 2=half-open)",
		}),
		ExchangeBreakerTrips: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "screener_exchange_circuit_breaker_trips_total",
			Help: "Times the exchange circuit breaker tripped open",
		}),
	}

	prometheus.MustRegister(
		m.CyclesTotal,
		m.SymbolsAnalyzed,
		m.SignalsTotal,
		m.AnalysisErrors,
		m.AlertsSent,
		m.AlertsSkipped,
		m.AlertSendFails,
		m.FetchRetries,
		m.FetchDur,
		m.CycleDur,
		m.ExchangeBreakerState,
		m.ExchangeBreakerTrips,
	)

	return m
}

// HealthStatus represents the screener's health.
type HealthStatus struct {
	mu sync.RWMutex

	ExchangeOK     bool      `json:"exchange_ok"`
	LastCycleTime  time.Time `json:"last_cycle_time"`
	RedisConnected bool      `json:"redis_connected"`
	SQLiteOK       bool      `json:"sqlite_ok"`

	// Liveness probe results
	RedisLatencyMs  float64   `json:"redis_latency_ms"`
	SQLiteLatencyMs float64   `json:"sqlite_latency_ms"`
	LastCheckAt     time.Time `json:"last_check_at"`
	StartedAt       time.Time `json:"started_at"`

	// Optional dependencies are healthy when absent.
	redisEnabled  bool
	sqliteEnabled bool
}

// NewHealthStatus returns a default health status.
func NewHealthStatus(redisEnabled, sqliteEnabled bool) *HealthStatus {
	return &HealthStatus{
		StartedAt:      time.Now(),
		ExchangeOK:     true,
		RedisConnected: !redisEnabled,
		SQLiteOK:       !sqliteEnabled,
		redisEnabled:   redisEnabled,
		sqliteEnabled:  sqliteEnabled,
	}
}

func (h *HealthStatus) SetExchangeOK(v bool) {
	h.mu.Lock()
	h.ExchangeOK = v
	h.mu.Unlock()
}

func (h *HealthStatus) SetLastCycleTime(t time.Time) {
	h.mu.Lock()
	h.LastCycleTime = t
	h.mu.Unlock()
}

// CheckRedis pings Redis and records latency + connectivity.
func (h *HealthStatus) CheckRedis(ctx context.Context, rdb *goredis.Client) {
	start := time.Now()
	err := rdb.Ping(ctx).Err()
	latency := time.Since(start)

	h.mu.Lock()
	h.RedisConnected = err == nil
	h.RedisLatencyMs = float64(latency.Microseconds()) / 1000.0
	h.LastCheckAt = time.Now()
	h.mu.Unlock()
}

// CheckSQLite runs a trivial query and records latency + health.
func (h *HealthStatus) CheckSQLite(ctx context.Context, db *sql.DB) {
	start := time.Now()
	err := db.PingContext(ctx)
	latency := time.Since(start)

	h.mu.Lock()
	h.SQLiteOK = err == nil
	h.SQLiteLatencyMs = float64(latency.Microseconds()) / 1000.0
	h.LastCheckAt = time.Now()
	h.mu.Unlock()
}

// StartLivenessChecker runs periodic dependency checks. Nil clients are
// skipped.
func (h *HealthStatus) StartLivenessChecker(ctx context.Context, rdb *goredis.Client, sqlDB *sql.DB, interval time.Duration) {
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				probeCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
				if rdb != nil {
					h.CheckRedis(probeCtx, rdb)
				}
				if sqlDB != nil {
					h.CheckSQLite(probeCtx, sqlDB)
				}
				cancel()
			}
		}
	}()
}

// ServeHTTP handles the /healthz endpoint.
func (h *HealthStatus) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	overallStatus := "healthy"
	httpCode := http.StatusOK

	if !h.ExchangeOK || !h.RedisConnected || !h.SQLiteOK {
		overallStatus = "degraded"
		httpCode = http.StatusServiceUnavailable
	}

	cycleAge := ""
	if !h.LastCycleTime.IsZero() {
		cycleAge = time.Since(h.LastCycleTime).Round(time.Millisecond).String()
	}

	status := struct {
		Status          string  `json:"status"`
		Uptime          string  `json:"uptime"`
		ExchangeOK      bool    `json:"exchange_ok"`
		LastCycleTime   string  `json:"last_cycle_time"`
		CycleAge        string  `json:"cycle_age"`
		RedisEnabled    bool    `json:"redis_enabled"`
		RedisConnected  bool    `json:"redis_connected"`
		RedisLatencyMs  float64 `json:"redis_latency_ms"`
		SQLiteEnabled   bool    `json:"sqlite_enabled"`
		SQLiteOK        bool    `json:"sqlite_ok"`
		SQLiteLatencyMs float64 `json:"sqlite_latency_ms"`
		LastCheckAt     string  `json:"last_check_at"`
	}{
		Status:          overallStatus,
		Uptime:          time.Since(h.StartedAt).Round(time.Second).String(),
		ExchangeOK:      h.ExchangeOK,
		LastCycleTime:   h.LastCycleTime.Format(time.RFC3339),
		CycleAge:        cycleAge,
		RedisEnabled:    h.redisEnabled,
		RedisConnected:  h.RedisConnected,
		RedisLatencyMs:  h.RedisLatencyMs,
		SQLiteEnabled:   h.sqliteEnabled,
		SQLiteOK:        h.SQLiteOK,
		SQLiteLatencyMs: h.SQLiteLatencyMs,
		LastCheckAt:     h.LastCheckAt.Format(time.RFC3339),
	}

	w.Header().Set("Content-Type", "application/json")
	if httpCode != http.StatusOK {
		w.WriteHeader(httpCode)
	}
	json.NewEncoder(w).Encode(status)
}

// Server runs an HTTP server exposing /metrics and /healthz.
type Server struct {
	health *HealthStatus
	addr   string
	srv    *http.Server
}

// NewServer creates a metrics and health server.
func NewServer(addr string, health *HealthStatus) *Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	mux.HandleFunc("/healthz", health.ServeHTTP)

	return &Server{
		health: health,
		addr:   addr,
		srv: &http.Server{
			Addr:    addr,
			Handler: mux,
		},
	}
}

// Start launches the HTTP server in a goroutine.
func (s *Server) Start() {
	go func() {
		log.Printf("[metrics] server listening on %s", s.addr)
		if err := s.srv.ListenAndServe(); err != http.ErrServerClosed {
			log.Printf("[metrics] server error: %v", err)
		}
	}()
}

// Stop gracefully shuts down the metrics server.
func (s *Server) Stop(ctx context.Context) {
	s.srv.Shutdown(ctx)
}
