// Command sectorsync rebuilds every sector document from the request database.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"bagportal/internal/config"
	"bagportal/internal/database"
	"bagportal/internal/observability"
	"bagportal/internal/repository"
	"bagportal/internal/sectordoc"
	"bagportal/internal/service"
)

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	dir := flag.String("dir", "", "Sector document directory (defaults to SECTOR_DOC_DIR)")
	format := flag.String("format", "", "Document format, xml or yaml (defaults to SECTOR_DOC_FORMAT)")
	timeout := flag.Duration("timeout", 5*time.Minute, "Abort the rebuild after this long")
	flag.Parse()

	cfg, err := config.LoadConfig()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if *dir != "" {
		cfg.SectorDocDir = *dir
	}
	if *format != "" {
		cfg.SectorDocFormat = *format
	}

	codec, err := sectordoc.CodecFor(cfg.SectorDocFormat)
	if err != nil {
		return err
	}
	store, err := sectordoc.NewStore(cfg.SectorDocDir,
		sectordoc.WithCodec(codec),
		sectordoc.WithLogger(observability.Logger),
	)
	if err != nil {
		return fmt.Errorf("open sector documents: %w", err)
	}

	db, err := database.ConnectWithOptions(cfg, database.ConnectOptions{ApplySchema: false})
	if err != nil {
		return fmt.Errorf("connect database: %w", err)
	}
	if sqlDB, err := db.DB(); err == nil {
		defer sqlDB.Close()
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	ctx, cancel := context.WithTimeout(ctx, *timeout)
	defer cancel()

	report, err := service.NewSyncService(repository.NewBagRequestRepository(db), store).Rebuild(ctx)
	if err != nil {
		return fmt.Errorf("rebuild sector documents: %w", err)
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(report)
}
