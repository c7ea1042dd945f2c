package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"carhive/internal/catalog"
	"carhive/internal/config"
	"carhive/internal/export"
	"carhive/internal/logging"
	"carhive/internal/service"
	"carhive/internal/store"
)

// Generates the back-office xlsx report from the booking store. Meant to be
// run from cron or by hand; the API server stays untouched.
func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	configPath := flag.String("config", "configs/config.yaml", "path to config.yaml")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	baseLogger, closer, err := logging.New(cfg.Logging, cfg.App)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	if closer != nil {
		defer closer.Close()
	}
	logger := baseLogger.With().Str("component", "export").Logger()

	fleet, err := catalog.Load(cfg.Catalog.Path)
	if err != nil {
		return fmt.Errorf("load catalog: %w", err)
	}

	db, err := store.NewDB(cfg.Database.Path, &logger)
	if err != nil {
		return fmt.Errorf("open db: %w", err)
	}
	defer db.Close()

	bookings := service.NewBookingService(db, fleet, nil, nil, &logger)
	exporter := export.NewExcelExporter(bookings, cfg.Exports.Path, &logger)

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	path, err := exporter.Export(ctx)
	if err != nil {
		return fmt.Errorf("export bookings: %w", err)
	}

	fmt.Printf("report written to %s\n", path)
	return nil
}
