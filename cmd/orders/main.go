package main

import (
	"context"
	"database/sql"
	"fmt"
	"os"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/zap"

	"MiniOrders/internal/config"
	"MiniOrders/internal/orders"
	"MiniOrders/pkg/kit"
)

func main() {
	service := "orders"

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}

	log, err := kit.NewLogger(service, cfg.LogLevel)
	if err != nil {
		fmt.Fprintf(os.Stderr, "logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = log.Sync() }()

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	store, closeStore, err := openStore(cfg, log, reg)
	if err != nil {
		log.Fatal("open order store failed", zap.Error(err))
	}
	defer closeStore()

	s := &orders.Server{Store: store, Log: log}
	h := orders.NewHandler(s, orders.HTTPDeps{
		Log:            log,
		Service:        service,
		Registry:       reg,
		MetricsEnabled: cfg.Metrics.Enabled,
		MetricsToken:   cfg.Metrics.Token,
	})

	if err := kit.RunHTTPServer(cfg.Addr(), h, log, cfg.HTTP.ShutdownTimeout); err != nil {
		log.Error("http server stopped", zap.Error(err))
	}
}

func openStore(cfg config.Config, log *zap.Logger, reg prometheus.Registerer) (orders.Store, func(), error) {
	if !cfg.UsePostgres() {
		fs, err := orders.NewFileStore(cfg.Storage.DataFile,
			orders.WithLogger(log),
			orders.WithMetrics(orders.NewStoreMetrics(reg)),
		)
		if err != nil {
			return nil, nil, err
		}
		return fs, func() {}, nil
	}

	db, err := sql.Open("pgx", cfg.Storage.DatabaseURL)
	if err != nil {
		return nil, nil, err
	}

	ps := orders.NewPostgresStore(db)
	if err := ps.EnsureSchema(context.Background()); err != nil {
		_ = db.Close()
		return nil, nil, err
	}
	log.Info("order store connected", zap.String("backend", "postgres"))

	return ps, func() { _ = db.Close() }, nil
}
