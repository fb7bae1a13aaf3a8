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
	"dealflow/internal/resolve"

	"go.uber.org/zap"
)

func main() {
	var (
		file   = flag.String("file", "", "target deal list whose missing SKUs should be filled")
		logOut = flag.String("log", "", "repair log path (default: <DATA_DIR>/fill_missing_skus.log)")
	)
	flag.Parse()

	if *file == "" {
		fmt.Fprintln(os.Stderr, "usage: skufill -file <target_ndjson>")
		os.Exit(2)
	}

	cfg := config.Load()

	log, err := logger.New(cfg.Env)
	if err != nil {
		panic(fmt.Sprintf("failed to initialize logger: %v", err))
	}
	defer log.Sync()

	if *logOut == "" {
		*logOut = filepath.Join(cfg.Data.Dir, "fill_missing_skus.log")
	}

	deals, err := ndjson.ReadDeals(*file)
	if err != nil {
		log.Fatal("Failed to read target file", zap.Error(err))
	}

	refs, err := resolve.LoadReferenceCorpus(cfg.Data.Dir, *file)
	if err != nil {
		log.Fatal("Failed to load reference corpus", zap.Error(err))
	}
	log.Info("Loaded reference corpus",
		zap.String("dir", cfg.Data.Dir),
		zap.Int("deals", len(refs)),
	)

	resolver := resolve.NewResolver(refs, cfg.Resolver.NameThreshold, cfg.Resolver.DetailsThreshold, log)
	filled, repairs := resolver.Resolve(deals, filepath.Base(*file))

	ext := filepath.Ext(*file)
	outPath := strings.TrimSuffix(*file, ext) + "_sku_filled" + ext
	if err := ndjson.WriteDeals(outPath, filled); err != nil {
		log.Fatal("Failed to write output file", zap.Error(err))
	}
	if err := resolve.AppendRepairLog(*logOut, repairs); err != nil {
		log.Fatal("Failed to write repair log", zap.Error(err))
	}

	missing := 0
	for _, deal := range deals {
		if deal.SKU == "" {
			missing++
		}
	}
	log.Info("SKU backfill complete",
		zap.String("output", outPath),
		zap.Int("total", len(deals)),
		zap.Int("resolved", len(repairs)),
		zap.Int("unresolved", missing-len(repairs)),
	)
}
