package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"

	"dealflow/internal/config"
	"dealflow/internal/ingest"
	"dealflow/internal/logger"
	"dealflow/internal/ndjson"
	"dealflow/internal/sqlgen"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

func main() {
	var (
		file    = flag.String("file", "", "deal list to ingest")
		quarOut = flag.String("unavailable-out", "", "quarantine file for invalid deals")
	)
	flag.Parse()

	if *file == "" {
		fmt.Fprintln(os.Stderr, "usage: ingest -file <deals_ndjson>")
		os.Exit(2)
	}

	// Endpoint credentials usually live in .env next to the binary.
	_ = godotenv.Load()
	cfg := config.Load()

	log, err := logger.New(cfg.Env)
	if err != nil {
		panic(fmt.Sprintf("failed to initialize logger: %v", err))
	}
	defer log.Sync()

	deals, err := ndjson.ReadDeals(*file)
	if err != nil {
		log.Fatal("Failed to read deal list", zap.Error(err))
	}

	valid, invalid := sqlgen.Partition(deals)
	log.Info("Deal statistics",
		zap.Int("total", len(deals)),
		zap.Int("valid", len(valid)),
		zap.Int("invalid", len(invalid)),
	)

	if len(invalid) > 0 {
		if *quarOut == "" {
			*quarOut = filepath.Join(cfg.Data.Dir, ndjson.OutputName("unprocessed", invalid[0].ValidPeriod))
		}
		if err := ndjson.WriteDeals(*quarOut, invalid); err != nil {
			log.Fatal("Failed to write quarantine file", zap.Error(err))
		}
		for reason, count := range sqlgen.ReasonCounts(invalid) {
			log.Info("Quarantined deals", zap.String("reason", reason), zap.Int("count", count))
		}
	}

	if len(valid) == 0 {
		log.Fatal("No valid deals to ingest")
	}

	client := ingest.NewClient(cfg.Ingest.APIURL, cfg.Ingest.APIKey)
	log.Info("Ingesting deals", zap.String("endpoint", cfg.Ingest.APIURL))

	details, err := client.Ingest(context.Background(), valid, cfg.Offer.Region, cfg.Offer.Currency)
	if err != nil {
		log.Fatal("Ingestion failed", zap.Error(err))
	}

	log.Info("Successfully ingested deals",
		zap.Int("deals", len(valid)),
		zap.String("details", details),
	)
}
