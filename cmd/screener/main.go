package main

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	goredis "github.com/go-redis/redis/v8"
	"github.com/joho/godotenv"

	"hybrid-screener/config"
	"hybrid-screener/internal/exchange"
	"hybrid-screener/internal/heartbeat"
	"hybrid-screener/internal/logger"
	"hybrid-screener/internal/metrics"
	"hybrid-screener/internal/notification"
	"hybrid-screener/internal/retry"
	"hybrid-screener/internal/screener"
	sig "hybrid-screener/internal/signal"
	redisstore "hybrid-screener/internal/store/redis"
	sqlitestore "hybrid-screener/internal/store/sqlite"
)

func main() {
	log.SetFlags(log.LstdFlags | log.Lmicroseconds | log.Lshortfile)
	log.Println("[screener] starting...")

	// ---- Load config from .env + environment ----
	if err := godotenv.Load(); err == nil {
		log.Println("[screener] loaded .env")
	}
	cfg := config.Load()
	pairs := cfg.ParsePairs()
	if len(pairs) == 0 {
		log.Fatalf("[screener] no valid pairs configured")
	}
	log.Printf("[screener] scanning %d pairs on %s/%s", len(pairs), cfg.PrimaryTimeframe, cfg.TrendTimeframe)

	logger.Init("screener", slog.LevelInfo)

	// ---- Metrics & health ----
	prom := metrics.NewMetrics()
	health := metrics.NewHealthStatus(cfg.RedisAddr != "", cfg.SQLitePath != "")
	metricsSrv := metrics.NewServer(cfg.MetricsAddr, health)
	metricsSrv.Start()

	// ---- Context for graceful shutdown ----
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		log.Println("[screener] shutdown signal received")
		cancel()
	}()

	// ---- Notifier ----
	backends := []notification.Notifier{notification.NewLogNotifier()}
	if cfg.TelegramEnabled() {
		backends = append(backends, notification.NewTelegramNotifier(cfg.TelegramToken, cfg.TelegramChatID))
	} else {
		log.Println("[screener] WARNING: telegram not configured, alerts go to the log only")
	}
	if cfg.WebhookURL != "" {
		backends = append(backends, notification.NewWebhookNotifier(cfg.WebhookURL))
	}
	notifier := notification.NewMultiNotifier(backends...)

	// ---- Heartbeat store: redis if configured, memory otherwise ----
	var beatStore heartbeat.BeatStore = heartbeat.NewMemoryStore()
	var beatRedis *redisstore.BeatStore
	if cfg.RedisAddr != "" {
		rs, err := redisstore.New(redisstore.Config{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
		})
		if err != nil {
			log.Printf("[screener] WARNING: redis init failed: %v (heartbeat marks are in-memory)", err)
		} else {
			beatStore = rs
			beatRedis = rs
			defer rs.Close()
		}
	}
	beats := heartbeat.NewScheduler(cfg.ParseHeartbeatHours(), beatStore)

	// ---- Alert journal ----
	var journal screener.Journal
	var journalStore *sqlitestore.Journal
	if cfg.SQLitePath != "" {
		if err := ensureDir(cfg.SQLitePath); err != nil {
			fatal(notifier, fmt.Errorf("create journal directory: %w", err))
		}
		j, err := sqlitestore.New(sqlitestore.Config{DBPath: cfg.SQLitePath})
		if err != nil {
			fatal(notifier, err)
		}
		journal = j
		journalStore = j
		defer j.Close()
	}

	// ---- Periodic liveness checks ----
	if beatRedis != nil || journalStore != nil {
		var rdb *goredis.Client
		if beatRedis != nil {
			rdb = beatRedis.Client()
		}
		var db *sql.DB
		if journalStore != nil {
			db = journalStore.DB()
		}
		health.StartLivenessChecker(ctx, rdb, db, 30*time.Second)
	}

	// ---- Exchange client & analyzer ----
	client := exchange.New(exchange.Config{
		BaseURL:             cfg.ExchangeBaseURL,
		BreakerMaxFailures:  cfg.BreakerMaxFailures,
		BreakerResetTimeout: cfg.BreakerResetTimeout,
		OnBreakerStateChange: func(from, to exchange.State) {
			if to == exchange.StateOpen {
				prom.ExchangeBreakerTrips.Inc()
			}
			health.SetExchangeOK(to != exchange.StateOpen)
		},
	})

	fetchPolicy := retry.Policy{
		MaxAttempts: cfg.RetryAttempts,
		BaseDelay:   cfg.RetryBaseDelay,
		Multiplier:  cfg.RetryMultiplier,
		OnRetry: func(op string, attempt int, err error) {
			prom.FetchRetries.Inc()
		},
	}
	analyzer := sig.NewAnalyzer(client, fetchPolicy, sig.Config{
		PrimaryTimeframe: cfg.PrimaryTimeframe,
		TrendTimeframe:   cfg.TrendTimeframe,
		PrimaryLimit:     cfg.PrimaryLimit,
		TrendLimit:       cfg.TrendLimit,
		BreakoutWindow:   cfg.BreakoutWindow,
		Thresholds: sig.Thresholds{
			Long:  cfg.LongThreshold,
			Short: cfg.ShortThreshold,
		},
		OnFetch: func(timeframe string, elapsed time.Duration) {
			prom.FetchDur.WithLabelValues(timeframe).Observe(elapsed.Seconds())
		},
		OnDegraded: func(symbol string) {
			prom.AnalysisErrors.Inc()
		},
	})

	// ---- Service ----
	svc := screener.NewService(screener.Deps{
		Pairs:          pairs,
		AlertThreshold: cfg.AlertThreshold,
		AlertCooldown:  cfg.AlertCooldown,
		ScanInterval:   cfg.ScanInterval,
		Analyzer:       analyzer,
		Notifier:       notifier,
		SendPolicy: retry.Policy{
			MaxAttempts: cfg.RetryAttempts,
			BaseDelay:   cfg.RetryBaseDelay,
			Multiplier:  cfg.RetryMultiplier,
		},
		Beats:   beats,
		Journal: journal,
		Metrics: prom,
		Health:  health,
		Breaker: client.Breaker(),
	})

	err := svc.Run(ctx)

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	metricsSrv.Stop(shutdownCtx)
	shutdownCancel()

	if err != nil && ctx.Err() == nil {
		fatal(notifier, err)
	}
	log.Println("[screener] stopped")
}

// ensureDir creates the parent directory of a database path.
func ensureDir(dbPath string) error {
	return os.MkdirAll(filepath.Dir(dbPath), 0o755)
}

// fatal notifies the crash and exits non-zero. Delivery gets a short
// standalone context since the run context may already be dead.
func fatal(notifier notification.Notifier, err error) {
	log.Printf("[screener] fatal: %v", err)
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if serr := notifier.Send(ctx, notification.Fatal(err)); serr != nil {
		log.Printf("[screener] crash notification failed: %v", serr)
	}
	os.Exit(1)
}
