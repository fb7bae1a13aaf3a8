package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"

	"dealflow/internal/classify"
	"dealflow/internal/config"
	"dealflow/internal/extract"
	"dealflow/internal/logger"
	"dealflow/internal/ndjson"

	"go.uber.org/zap"
)

func main() {
	var (
		file         = flag.String("file", "", "captured markup file to extract deals from")
		outDir       = flag.String("out-dir", "", "output directory (default: DATA_DIR)")
		schema       = flag.String("schema", "", "markup schema version (default: SCHEMA_VERSION)")
		period       = flag.String("period", "", "explicit validity window as starts:ends, bypassing document parsing")
		allowUnknown = flag.Bool("allow-unknown-period", false, "continue with null dates when no validity window is found")
	)
	flag.Parse()

	if *file == "" {
		fmt.Fprintln(os.Stderr, "usage: extract -file <saved_markup> [-schema legacy|v2024|v2024ext] [-period starts:ends]")
		os.Exit(2)
	}

	cfg := config.Load()

	log, err := logger.New(cfg.Env)
	if err != nil {
		panic(fmt.Sprintf("failed to initialize logger: %v", err))
	}
	defer log.Sync()

	if *outDir == "" {
		*outDir = cfg.Data.Dir
	}
	if *schema == "" {
		*schema = cfg.Extract.SchemaVersion
	}

	opts := extract.Options{AllowUnknownPeriod: *allowUnknown}
	if *period != "" {
		p, err := extract.ParsePeriod(*period)
		if err != nil {
			log.Fatal("Invalid period override", zap.Error(err))
		}
		opts.Period = &p
	}

	doc, err := extract.LoadDocument(*file)
	if err != nil {
		log.Fatal("Failed to load document", zap.Error(err))
	}

	pipeline := extract.NewPipeline(*schema, classify.NewClassifier(classify.DefaultRules()), log)
	result, err := pipeline.Run(doc, opts)
	if err != nil {
		log.Fatal("Extraction failed", zap.Error(err))
	}

	if err := os.MkdirAll(*outDir, 0o755); err != nil {
		log.Fatal("Failed to create output directory", zap.Error(err))
	}
	outPath := filepath.Join(*outDir, ndjson.OutputName(ndjson.Prefix(*file), result.Period))
	if err := ndjson.WriteDeals(outPath, result.Deals); err != nil {
		log.Fatal("Failed to write deal list", zap.Error(err))
	}

	log.Info("Wrote deal list",
		zap.String("file", outPath),
		zap.Int("deals", len(result.Deals)),
		zap.String("schema", result.Schema),
	)
}
