// Package ndjson reads and writes newline-delimited deal records and
// derives the period-encoded output filenames used across the pipeline.
package ndjson

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"dealflow/internal/domain"
)

// maxLineSize bounds a single record; tile details are short but image
// URLs from archival captures can get long.
const maxLineSize = 1024 * 1024

// ReadDeals reads every non-blank line of an NDJSON file as one Deal.
func ReadDeals(path string) ([]domain.Deal, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open deals file: %w", err)
	}
	defer f.Close()

	var deals []domain.Deal
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineSize)

	line := 0
	for scanner.Scan() {
		line++
		text := strings.TrimSpace(scanner.Text())
		if text == "" {
			continue
		}
		var deal domain.Deal
		if err := json.Unmarshal([]byte(text), &deal); err != nil {
			return nil, fmt.Errorf("failed to parse %s line %d: %w", filepath.Base(path), line, err)
		}
		deals = append(deals, deal)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read deals file: %w", err)
	}

	return deals, nil
}

// WriteDeals writes deals to path, one JSON record per line. An existing
// file is truncated.
func WriteDeals(path string, deals []domain.Deal) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	defer f.Close()

	w := bufio.NewWriter(f)
	for _, deal := range deals {
		data, err := json.Marshal(deal)
		if err != nil {
			return fmt.Errorf("failed to encode deal %q: %w", deal.Name, err)
		}
		if _, err := w.Write(append(data, '\n')); err != nil {
			return fmt.Errorf("failed to write output file: %w", err)
		}
	}
	if err := w.Flush(); err != nil {
		return fmt.Errorf("failed to write output file: %w", err)
	}

	return nil
}

// Prefix derives the output name prefix from an input filename: the stem
// up to the first underscore, or "deals" when the stem has none.
func Prefix(inputPath string) string {
	stem := strings.TrimSuffix(filepath.Base(inputPath), filepath.Ext(inputPath))
	if i := strings.Index(stem, "_"); i > 0 {
		return stem[:i]
	}
	return "deals"
}

// OutputName encodes the validity window into the deal-list filename:
// <prefix>_<YYYYMMDD>-<YYYYMMDD>.ndjson, or the unknown-period fallback
// when either date is missing.
func OutputName(prefix string, period domain.ValidPeriod) string {
	if !period.Known() {
		return prefix + "_unknown_period.ndjson"
	}
	starts := strings.ReplaceAll(period.Starts, "-", "")
	ends := strings.ReplaceAll(period.Ends, "-", "")
	return fmt.Sprintf("%s_%s-%s.ndjson", prefix, starts, ends)
}
