package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"SignalDesk/internal/collector"
	"SignalDesk/internal/config"
	"SignalDesk/internal/dashboard"
	"SignalDesk/internal/metrics"
	"SignalDesk/internal/notifier"
	"SignalDesk/internal/pipeline"
	"SignalDesk/internal/recorder"
	"SignalDesk/internal/scheduler"
)

func main() {
	log.SetFlags(log.LstdFlags | log.Lshortfile)
	log.Println("[INFO] SignalDesk starting...")

	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		log.Printf("[WARN] load .env: %v", err)
	}

	// Load config
	cfgPath := "configs/config.yaml"
	if v := os.Getenv("CONFIG_PATH"); v != "" {
		cfgPath = v
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		log.Fatalf("[FATAL] load config: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("[FATAL] config validation: %v", err)
	}

	// Init fetcher
	fetcher, err := collector.NewFetcher(cfg)
	if err != nil {
		log.Fatalf("[FATAL] init data source: %v", err)
	}
	log.Printf("[INFO] data source: %s, symbol: %s", fetcher.Name(), cfg.Symbol)
	col := collector.NewCollector(fetcher, cfg.Symbol)

	// Metrics
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.NewMetrics(reg)
	health := metrics.NewHealthStatus(fetcher.Name())

	// Init Telegram notifier
	tn := notifier.NewTelegramNotifier(cfg.Telegram.BaseURL, cfg.Telegram.BotToken, cfg.Telegram.ChatID, cfg.Proxy)
	if !cfg.TelegramConfigured() {
		log.Println("[WARN] Telegram credentials missing, send actions will fail")
	}

	var rec recorder.Recorder
	if cfg.Output.CSVPath == "-" {
		rec = recorder.NewNoopRecorder()
	} else {
		rec = recorder.NewCSVRecorder(cfg.Output.CSVPath)
	}

	runner := pipeline.NewRunner(cfg, col, rec, tn, m, health)

	// Context for graceful shutdown
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	// Init scheduler
	sched := scheduler.NewScheduler(ctx, runner)
	if err := sched.RegisterAll(cfg.Schedule.RefreshCron, cfg.Schedule.AlertCron); err != nil {
		log.Fatalf("[FATAL] register cron tasks: %v", err)
	}
	sched.Start()
	defer sched.Stop()

	// Start Telegram polling
	if cfg.Telegram.Polling {
		go tn.StartPolling(ctx, sched.HandleCommand)
		log.Println("[INFO] Telegram polling started")
	}

	// Optional: run immediately on start
	if os.Getenv("RUN_ON_START") == "true" {
		log.Println("[INFO] RUN_ON_START enabled, running pipeline now")
		go sched.RunNow()
	}

	srv := dashboard.NewServer(cfg, runner, m, reg)
	if err := srv.Start(ctx); err != nil {
		log.Printf("[ERROR] dashboard: %v", err)
		cancel()
	}
	log.Println("[INFO] SignalDesk stopped")
}
