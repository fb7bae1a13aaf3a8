// Package extract drives tile extraction over one captured document and
// assembles the resulting deal list.
package extract

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"go.uber.org/zap"

	"dealflow/internal/classify"
	"dealflow/internal/domain"
	"dealflow/internal/markup"
)

// Pipeline extracts deals from captured offer pages.
type Pipeline struct {
	schemaVersion string
	classifier    *classify.Classifier
	logger        *zap.Logger
	now           func() time.Time
}

// Options control one extraction run.
type Options struct {
	// Period supplies the validity window out-of-band, bypassing all
	// document parsing. Used when a page's validity text is known to be
	// unreliable.
	Period *domain.ValidPeriod
	// AllowUnknownPeriod downgrades a missing validity window from a
	// fatal error to a warning, producing null-dated deals and the
	// unknown-period output name. Opt-in; downstream validation will
	// quarantine such deals.
	AllowUnknownPeriod bool
}

// Result is the outcome of one extraction run.
type Result struct {
	Schema string
	Period domain.ValidPeriod
	Deals  []domain.Deal
}

// NewPipeline creates a pipeline. schemaVersion is a markup schema name
// or "auto" to probe each document.
func NewPipeline(schemaVersion string, classifier *classify.Classifier, logger *zap.Logger) *Pipeline {
	return &Pipeline{
		schemaVersion: schemaVersion,
		classifier:    classifier,
		logger:        logger,
		now:           time.Now,
	}
}

// Run extracts every well-formed tile of doc into a deal. Malformed tiles
// are dropped silently; an undeterminable validity period is fatal unless
// the options say otherwise.
func (p *Pipeline) Run(doc *goquery.Document, opts Options) (*Result, error) {
	schema, err := p.selectSchema(doc)
	if err != nil {
		return nil, err
	}

	period, err := p.resolvePeriod(doc, schema, opts)
	if err != nil {
		return nil, err
	}

	// One capture timestamp for the whole run, UTC second precision.
	seenAt := p.now().UTC().Truncate(time.Second).Format(time.RFC3339)

	var deals []domain.Deal
	tiles := schema.Tiles(doc)
	tiles.Each(func(_ int, sel *goquery.Selection) {
		deal, ok := schema.ParseTile(sel)
		if !ok {
			return
		}
		deal.Category = p.classifier.Classify(deal.Name, deal.Details)
		deal.SeenAt = seenAt
		deal.ValidPeriod = period
		deals = append(deals, deal)
	})

	p.logger.Info("extraction complete",
		zap.String("schema", schema.Name()),
		zap.Int("tiles", tiles.Length()),
		zap.Int("deals", len(deals)),
		zap.String("starts", period.Starts),
		zap.String("ends", period.Ends),
	)

	return &Result{Schema: schema.Name(), Period: period, Deals: deals}, nil
}

func (p *Pipeline) selectSchema(doc *goquery.Document) (markup.Schema, error) {
	if p.schemaVersion == "" || p.schemaVersion == "auto" {
		return markup.Detect(doc)
	}
	return markup.Select(p.schemaVersion)
}

func (p *Pipeline) resolvePeriod(doc *goquery.Document, schema markup.Schema, opts Options) (domain.ValidPeriod, error) {
	if opts.Period != nil {
		return *opts.Period, nil
	}

	period, err := schema.ValidPeriod(doc)
	if err != nil {
		if !opts.AllowUnknownPeriod {
			return domain.ValidPeriod{}, fmt.Errorf("failed to determine valid period: %w", err)
		}
		p.logger.Warn("valid period not found, continuing with null dates",
			zap.String("schema", schema.Name()))
		return domain.ValidPeriod{}, nil
	}
	return period, nil
}

// LoadDocument parses a captured markup file.
func LoadDocument(path string) (*goquery.Document, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open markup file: %w", err)
	}
	defer f.Close()

	doc, err := goquery.NewDocumentFromReader(f)
	if err != nil {
		return nil, fmt.Errorf("failed to parse markup file: %w", err)
	}
	return doc, nil
}

// ParsePeriod parses an explicit "YYYY-MM-DD:YYYY-MM-DD" period override.
func ParsePeriod(s string) (domain.ValidPeriod, error) {
	parts := strings.SplitN(s, ":", 2)
	if len(parts) != 2 {
		return domain.ValidPeriod{}, fmt.Errorf("period must be starts:ends, got %q", s)
	}
	for _, part := range parts {
		if _, err := time.Parse("2006-01-02", part); err != nil {
			return domain.ValidPeriod{}, fmt.Errorf("invalid period date %q: %w", part, err)
		}
	}
	return domain.ValidPeriod{Starts: parts[0], Ends: parts[1]}, nil
}
