// Package resolve backfills missing SKUs in a deal list by
// cross-referencing previously extracted lists.
package resolve

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"go.uber.org/zap"

	"dealflow/internal/domain"
	"dealflow/internal/ndjson"
	"dealflow/internal/similarity"
)

// Tier names, recorded in the repair log.
const (
	TierExactName    = "exact name"
	TierPrefixSuffix = "prefix/suffix match"
	TierFuzzy        = "fuzzy match"
)

// Repair records one SKU backfill decision.
type Repair struct {
	File   string
	Line   int
	Tier   string
	Before domain.Deal
	After  domain.Deal
}

// Resolver fills missing SKUs from a reference corpus using three
// successively weaker strategies. The first tier to produce a SKU wins.
type Resolver struct {
	refs             []domain.Deal
	nameThreshold    float64
	detailsThreshold float64
	logger           *zap.Logger
}

// NewResolver creates a resolver over a reference corpus. The similarity
// thresholds gate the fuzzy tier: a candidate must exceed both.
func NewResolver(refs []domain.Deal, nameThreshold, detailsThreshold float64, logger *zap.Logger) *Resolver {
	return &Resolver{
		refs:             refs,
		nameThreshold:    nameThreshold,
		detailsThreshold: detailsThreshold,
		logger:           logger,
	}
}

// LoadReferenceCorpus reads every deal list in dir except the target file
// and any previous backfill output derived from it. Order is directory
// order, which makes the exact-name tier's first-hit rule deterministic
// for a given tree.
func LoadReferenceCorpus(dir, targetPath string) ([]domain.Deal, error) {
	targetAbs, err := filepath.Abs(targetPath)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve target path: %w", err)
	}
	targetStem := strings.TrimSuffix(filepath.Base(targetAbs), filepath.Ext(targetAbs))

	paths, err := filepath.Glob(filepath.Join(dir, "*.ndjson"))
	if err != nil {
		return nil, fmt.Errorf("failed to list reference corpus: %w", err)
	}

	var refs []domain.Deal
	for _, path := range paths {
		abs, err := filepath.Abs(path)
		if err != nil {
			return nil, fmt.Errorf("failed to resolve reference path: %w", err)
		}
		if abs == targetAbs {
			continue
		}
		// A stale backfill of the target would let old guesses
		// reinforce themselves.
		if filepath.Base(abs) == targetStem+"_sku_filled.ndjson" {
			continue
		}
		deals, err := ndjson.ReadDeals(path)
		if err != nil {
			return nil, err
		}
		refs = append(refs, deals...)
	}

	return refs, nil
}

// Resolve returns a copy of deals, in the original order, with missing
// SKUs filled where a tier produced one, plus the repair records.
// Unresolved deals pass through unchanged and unlogged.
func (r *Resolver) Resolve(deals []domain.Deal, sourceName string) ([]domain.Deal, []Repair) {
	out := make([]domain.Deal, len(deals))
	var repairs []Repair

	for i, deal := range deals {
		out[i] = deal
		if deal.SKU != "" {
			continue
		}

		sku, tier := r.lookup(deal)
		if sku == "" {
			continue
		}

		out[i].SKU = sku
		repairs = append(repairs, Repair{
			File:   sourceName,
			Line:   i,
			Tier:   tier,
			Before: deal,
			After:  out[i],
		})
		r.logger.Info("sku filled",
			zap.String("file", sourceName),
			zap.Int("line", i),
			zap.String("tier", tier),
			zap.String("name", deal.Name),
			zap.String("sku", sku),
		)
	}

	return out, repairs
}

func (r *Resolver) lookup(deal domain.Deal) (string, string) {
	if sku := r.byExactName(deal.Name); sku != "" {
		return sku, TierExactName
	}
	if sku := r.bySKUFrequency(deal.Name); sku != "" {
		return sku, TierPrefixSuffix
	}
	if sku := r.bySimilarity(deal.Name, deal.Details); sku != "" {
		return sku, TierFuzzy
	}
	return "", ""
}

// byExactName takes the first reference deal with an identical name and a
// present SKU.
func (r *Resolver) byExactName(name string) string {
	for _, ref := range r.refs {
		if ref.SKU != "" && ref.Name == name {
			return ref.SKU
		}
	}
	return ""
}

// bySKUFrequency tallies SKUs across reference deals whose name has the
// target name as a prefix or suffix and picks the most frequent one.
// Ties go to the SKU on the deal with the latest valid-period start;
// reference entries without a parseable start date still count but never
// break ties. The same physical offer appearing in several capture runs
// is counted each time, so recurring offers weigh more.
func (r *Resolver) bySKUFrequency(name string) string {
	var matches []domain.Deal
	counts := make(map[string]int)
	var order []string

	for _, ref := range r.refs {
		if ref.SKU == "" {
			continue
		}
		if !strings.HasPrefix(ref.Name, name) && !strings.HasSuffix(ref.Name, name) {
			continue
		}
		matches = append(matches, ref)
		if counts[ref.SKU] == 0 {
			order = append(order, ref.SKU)
		}
		counts[ref.SKU]++
	}
	if len(matches) == 0 {
		return ""
	}

	top := 0
	for _, n := range counts {
		if n > top {
			top = n
		}
	}
	var topSKUs []string
	for _, sku := range order {
		if counts[sku] == top {
			topSKUs = append(topSKUs, sku)
		}
	}
	if len(topSKUs) == 1 {
		return topSKUs[0]
	}

	tied := make(map[string]bool, len(topSKUs))
	for _, sku := range topSKUs {
		tied[sku] = true
	}
	var latest time.Time
	chosen := ""
	for _, ref := range matches {
		if !tied[ref.SKU] {
			continue
		}
		starts, ok := ref.ValidPeriod.StartTime()
		if !ok {
			continue
		}
		if chosen == "" || starts.After(latest) {
			latest = starts
			chosen = ref.SKU
		}
	}
	if chosen != "" {
		return chosen
	}
	return topSKUs[0]
}

// bySimilarity picks the reference deal with the highest average of name
// and details similarity, considering only candidates that clear both
// thresholds. On a score tie the earlier reference deal wins.
func (r *Resolver) bySimilarity(name, details string) string {
	bestScore := 0.0
	best := ""
	for _, ref := range r.refs {
		if ref.SKU == "" {
			continue
		}
		nameScore := similarity.Ratio(ref.Name, name)
		if nameScore <= r.nameThreshold {
			continue
		}
		detailsScore := similarity.Ratio(ref.Details, details)
		if detailsScore <= r.detailsThreshold {
			continue
		}
		if avg := (nameScore + detailsScore) / 2; avg > bestScore {
			bestScore = avg
			best = ref.SKU
		}
	}
	return best
}

// AppendRepairLog appends human-readable repair entries to the change
// log, one block per repair, with the full record before and after.
func AppendRepairLog(path string, repairs []Repair) error {
	if len(repairs) == 0 {
		return nil
	}

	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("failed to open repair log: %w", err)
	}
	defer f.Close()

	for _, repair := range repairs {
		entry, err := formatRepair(repair)
		if err != nil {
			return err
		}
		if _, err := f.WriteString(entry); err != nil {
			return fmt.Errorf("failed to write repair log: %w", err)
		}
	}

	return nil
}

func formatRepair(repair Repair) (string, error) {
	oldJSON, err := marshalDeal(repair.Before)
	if err != nil {
		return "", err
	}
	newJSON, err := marshalDeal(repair.After)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("[SKU FILLED] file=%s line=%d reason=%s\n  OLD: %s\n  NEW: %s\n",
		repair.File, repair.Line, repair.Tier, oldJSON, newJSON), nil
}

func marshalDeal(deal domain.Deal) (string, error) {
	data, err := json.Marshal(deal)
	if err != nil {
		return "", fmt.Errorf("failed to encode repair record: %w", err)
	}
	return string(data), nil
}
