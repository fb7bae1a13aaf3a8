// Package markup parses promotional-offer tiles out of captured retailer
// pages. The page markup has gone through several incompatible revisions;
// each revision is modeled as a Schema so the rest of the pipeline never
// branches on markup details.
package markup

import (
	"errors"
	"fmt"
	"regexp"

	"github.com/PuerkitoBio/goquery"

	"dealflow/internal/domain"
)

var (
	ErrNoValidPeriod = errors.New("valid period not found in document")
	ErrUnknownSchema = errors.New("unknown markup schema")
)

// Schema is one markup revision's extraction contract. ParseTile returns
// false for malformed tiles (missing link, unparseable discount, no text);
// those tiles are dropped silently, they are noise rather than errors.
type Schema interface {
	Name() string
	// Match probes the document for this schema's distinguishing marker.
	Match(doc *goquery.Document) bool
	// Tiles selects every tile node in document order.
	Tiles(doc *goquery.Document) *goquery.Selection
	// ParseTile extracts the markup-derived fields of one deal. Category
	// and capture metadata are filled in by the caller.
	ParseTile(sel *goquery.Selection) (domain.Deal, bool)
	// ValidPeriod extracts the document-level validity window.
	ValidPeriod(doc *goquery.Document) (domain.ValidPeriod, error)
}

const (
	SchemaLegacy   = "legacy"
	SchemaV2024    = "v2024"
	SchemaV2024Ext = "v2024ext"
)

// Select returns the schema for an explicit version name.
func Select(version string) (Schema, error) {
	switch version {
	case SchemaLegacy:
		return &legacySchema{}, nil
	case SchemaV2024:
		return &v2024Schema{}, nil
	case SchemaV2024Ext:
		return &v2024ExtSchema{}, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownSchema, version)
	}
}

// Detect probes the document for schema markers, most specific first.
func Detect(doc *goquery.Document) (Schema, error) {
	for _, s := range []Schema{&v2024ExtSchema{}, &v2024Schema{}, &legacySchema{}} {
		if s.Match(doc) {
			return s, nil
		}
	}
	return nil, fmt.Errorf("%w: no schema marker in document", ErrUnknownSchema)
}

// archiveRe matches web-archive capture prefixes such as
// /web/20241217051439/ or /web/20241009103332im_/.
var archiveRe = regexp.MustCompile(`/web/\d+(?:im_)?/`)

// stripArchivePrefix removes an archival-capture prefix from a URL,
// keeping whatever follows the last prefix occurrence.
func stripArchivePrefix(url string) string {
	parts := archiveRe.Split(url, -1)
	return parts[len(parts)-1]
}
