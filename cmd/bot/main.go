package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/shopspring/decimal"

	"DogCoinBot/internal/api"
	"DogCoinBot/internal/commands"
	"DogCoinBot/internal/config"
	"DogCoinBot/internal/ledger"
	"DogCoinBot/internal/market"
	"DogCoinBot/internal/metrics"
	"DogCoinBot/internal/notifier"
	"DogCoinBot/internal/scheduler"
	"DogCoinBot/internal/series"
	"DogCoinBot/internal/storage"
	"DogCoinBot/internal/trading"
)

func main() {
	log.SetFlags(log.LstdFlags | log.Lshortfile)
	log.Println("[INFO] DogCoinBot starting...")

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

	// Open storage
	db, err := storage.Open(cfg.Database.SQLitePath)
	if err != nil {
		log.Fatalf("[FATAL] open storage: %v", err)
	}
	defer db.Close()

	ledgerStore, err := ledger.NewSQLiteStore(db)
	if err != nil {
		log.Fatalf("[FATAL] init ledger store: %v", err)
	}
	seriesStore, err := series.NewSQLiteStore(db, cfg.Market.Symbol)
	if err != nil {
		log.Fatalf("[FATAL] init series store: %v", err)
	}

	// Seed the series and derive the starting quote from the last sample.
	seedPrice, err := decimal.NewFromString(cfg.Market.SeedPrice)
	if err != nil {
		log.Fatalf("[FATAL] parse seed price: %v", err)
	}
	if err := seriesStore.Seed(seedPrice); err != nil {
		log.Fatalf("[FATAL] seed price series: %v", err)
	}
	startPrice, ok, err := seriesStore.LastPrice()
	if err != nil {
		log.Fatalf("[FATAL] read last price: %v", err)
	}
	if !ok {
		startPrice = seedPrice
	}
	log.Printf("[INFO] starting quote at %s (restored from series)", startPrice.StringFixed(2))
	quote := market.NewQuote(startPrice)

	// Init engine, metrics, trading, router
	engine := market.NewEngine(seriesStore, quote, cfg.Market.Lookback, nil)
	collector := metrics.NewCollector()
	trader := trading.NewEngine(ledgerStore, quote)
	router := commands.NewRouter(ledgerStore, seriesStore, quote, trader, collector, commands.Options{
		Prefix:        cfg.Economy.CommandPrefix,
		AdminID:       cfg.Telegram.AdminID,
		WorkMin:       cfg.Economy.WorkMin,
		WorkMax:       cfg.Economy.WorkMax,
		HistoryPoints: cfg.Market.HistoryPoints,
	})

	// Init Telegram notifier
	tn := notifier.NewTelegramNotifier(cfg.Telegram.BotToken)

	// Context for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Init scheduler
	sched := scheduler.NewScheduler(ctx, engine, quote, collector)
	if err := sched.Register(cfg.Market.TickCron); err != nil {
		log.Fatalf("[FATAL] register price tick: %v", err)
	}
	sched.Start()
	defer sched.Stop()

	// Start Telegram polling
	go tn.StartPolling(ctx, router.Handle)
	log.Println("[INFO] Telegram polling started")

	// Start read-only API
	srv := api.NewServer(ledgerStore, seriesStore, quote, collector, cfg.Market.HistoryPoints)
	go func() {
		if err := srv.Run(cfg.API.ListenAddr); err != nil {
			log.Printf("[ERROR] api server: %v", err)
		}
	}()
	log.Printf("[INFO] api listening on %s", cfg.API.ListenAddr)

	// Optional: tick immediately on start
	if os.Getenv("RUN_ON_START") == "true" {
		log.Println("[INFO] RUN_ON_START enabled, executing price tick now")
		go sched.RunTickNow()
	}

	log.Println("[INFO] DogCoinBot is running. Press Ctrl+C to stop.")

	// Wait for shutdown signal
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	log.Println("[INFO] shutdown signal received, stopping...")
	cancel()
	log.Println("[INFO] DogCoinBot stopped")
}
