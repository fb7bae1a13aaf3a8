package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"dealflow/internal/config"
	"dealflow/internal/logger"
	"dealflow/internal/ndjson"
	"dealflow/internal/sqlgen"

	"go.uber.org/zap"
)

func main() {
	var (
		file    = flag.String("file", "", "deal list to validate and convert to SQL")
		sqlOut  = flag.String("sql-out", "", "output SQL file (default: <DATA_DIR>/<stem>.sql)")
		quarOut = flag.String("unavailable-out", "", "quarantine file for invalid deals (default: <DATA_DIR>/unavailable_<stem>.ndjson)")
	)
	flag.Parse()

	if *file == "" {
		fmt.Fprintln(os.Stderr, "usage: sqlgen -file <deals_ndjson> [-sql-out out.sql]")
		os.Exit(2)
	}

	cfg := config.Load()

	log, err := logger.New(cfg.Env)
	if err != nil {
		panic(fmt.Sprintf("failed to initialize logger: %v", err))
	}
	defer log.Sync()

	stem := strings.TrimSuffix(filepath.Base(*file), filepath.Ext(*file))
	if *sqlOut == "" {
		*sqlOut = filepath.Join(cfg.Data.Dir, stem+".sql")
	}
	if *quarOut == "" {
		*quarOut = filepath.Join(cfg.Data.Dir, "unavailable_"+stem+".ndjson")
	} else {
		// Custom quarantine names still land in the data directory.
		*quarOut = filepath.Join(cfg.Data.Dir, filepath.Base(*quarOut))
	}

	deals, err := ndjson.ReadDeals(*file)
	if err != nil {
		log.Fatal("Failed to read deal list", zap.Error(err))
	}

	valid, invalid := sqlgen.Partition(deals)

	if err := os.MkdirAll(cfg.Data.Dir, 0o755); err != nil {
		log.Fatal("Failed to create output directory", zap.Error(err))
	}

	if len(invalid) > 0 {
		if err := ndjson.WriteDeals(*quarOut, invalid); err != nil {
			log.Fatal("Failed to write quarantine file", zap.Error(err))
		}
		for reason, count := range sqlgen.ReasonCounts(invalid) {
			log.Info("Quarantined deals", zap.String("reason", reason), zap.Int("count", count))
		}
	}

	sql := sqlgen.Generate(valid, cfg.Offer.Region, cfg.Offer.Currency)
	if err := os.WriteFile(*sqlOut, []byte(sql), 0o644); err != nil {
		log.Fatal("Failed to write SQL file", zap.Error(err))
	}

	log.Info("Conversion complete",
		zap.String("sql", *sqlOut),
		zap.Int("total", len(deals)),
		zap.Int("valid", len(valid)),
		zap.Int("invalid", len(invalid)),
	)
}
