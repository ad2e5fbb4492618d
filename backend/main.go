package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"medbill/m/internal/api"
	"medbill/m/internal/billing"
	"medbill/m/internal/cache"
	"medbill/m/internal/config"
	"medbill/m/internal/database"
	"medbill/m/internal/events"
	"medbill/m/internal/logger"
	"medbill/m/internal/migrations"
	"medbill/m/internal/render"
	"medbill/m/internal/report"
	"medbill/m/internal/seed"
	"medbill/m/internal/store"
)

func main() {
	_ = godotenv.Load()

	log := logger.New("info")
	cfg := config.Load(log)
	logger.SetLevel(log, cfg.LogLevel)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	db, err := database.Connect(cfg.DatabaseDSN)
	if err != nil {
		log.Fatalf("db connect: %v", err)
	}
	defer db.Close()

	if err := migrations.Run(db); err != nil {
		log.Fatalf("migrate: %v", err)
	}
	if cfg.SeedMedicinesPath != "" {
		if _, err := seed.LoadMedicines(ctx, db, cfg.SeedMedicinesPath, log); err != nil {
			log.WithError(err).Warn("medicine seed skipped")
		}
	}

	// Document cache
	var docs cache.DocumentCache = cache.Nop{}
	if cfg.RedisAddr != "" {
		rdb := cache.NewRedis(cfg.RedisAddr)
		defer rdb.Close()
		if err := rdb.Ping(ctx); err != nil {
			log.WithError(err).Warn("redis unavailable, rendering without cache")
		}
		docs = rdb
	}

	// Invoice events
	var publisher events.Publisher = events.Nop{}
	var producer *events.Producer
	if len(cfg.KafkaBrokers) > 0 {
		producer = events.NewProducer(cfg.KafkaBrokers, cfg.KafkaTopic, cfg.ServiceName, 1024, log)
		producer.Start(ctx)
		publisher = producer
	}

	policy := store.CascadeDelete
	if cfg.MedicineDeletePolicy == config.DeleteRestrict {
		policy = store.RestrictDelete
	}
	medicines := store.NewMedicineStore(db, policy)
	customers := store.NewCustomerStore(db)
	invoices := store.NewInvoiceStore(db)
	engine := billing.NewEngine(store.NewTxManager(db), medicines, customers, invoices, publisher, log)

	handler := api.New(api.Deps{
		Users:     store.NewUserStore(db),
		Medicines: medicines,
		Customers: customers,
		Invoices:  engine,
		Documents: render.NewService(engine, docs, render.Options{CurrencySymbol: cfg.CurrencySymbol}, log),
		Reports:   report.NewReporter(medicines, customers, invoices, cfg.LowStockThreshold),
		Secret:    cfg.Secret,
		Log:       log,
	})

	srv := &http.Server{
		Addr:              ":" + cfg.HTTPPort,
		Handler:           handler.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Infof("medbill server starting on :%s", cfg.HTTPPort)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("server error: %v", err)
		}
	}()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	<-sig
	log.Info("shutting down")

	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancelShutdown()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.WithError(err).Warn("http shutdown")
	}
	if producer != nil {
		producer.Close()
	}
}
