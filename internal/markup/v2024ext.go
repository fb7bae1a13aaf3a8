package markup

import (
	"strconv"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"dealflow/internal/domain"
)

// v2024ExtSchema handles the extended 2024 revision: eco-coupons tiles
// that additionally carry an "after instant savings" text block next to
// the price table and machine-readable time markers in the validity
// header.
type v2024ExtSchema struct {
	v2024Schema
}

func (s *v2024ExtSchema) Name() string { return SchemaV2024Ext }

func (s *v2024ExtSchema) Match(doc *goquery.Document) bool {
	return doc.Find("li.eco-coupons").Length() > 0 &&
		doc.Find(validHeader+" time[datetime]").Length() > 0
}

func (s *v2024ExtSchema) ParseTile(sel *goquery.Selection) (domain.Deal, bool) {
	return parseEcoTile(sel, s.parseDiscount)
}

// parseDiscount checks the instant-savings block before the price table;
// when present it states the effective discount more reliably than the
// fragmented table.
func (s *v2024ExtSchema) parseDiscount(sel *goquery.Selection) (float64, domain.DiscountType, bool) {
	savings := strings.TrimSpace(sel.Find("div.eco-asterisk").First().Text())
	if savings != "" {
		for _, p := range afterOffRe {
			if m := p.re.FindStringSubmatch(savings); m != nil {
				value, err := strconv.ParseFloat(m[1], 64)
				if err == nil {
					return value, p.kind, true
				}
			}
		}
	}
	return parseEcoPriceTable(sel)
}

// ValidPeriod prefers the machine-readable datetime markers but defers to
// the human-readable banner when the two disagree; an editor correcting
// the banner text is more trustworthy than a stale datetime attribute.
func (s *v2024ExtSchema) ValidPeriod(doc *goquery.Document) (domain.ValidPeriod, error) {
	header := doc.Find(validHeader).First()
	if header.Length() == 0 {
		return ecoBannerPeriod(doc)
	}

	machine := machinePeriod(header)
	text, textOK := parseMonthRange(strings.TrimSpace(header.Text()))

	switch {
	case machine != nil && textOK:
		if *machine != text {
			return text, nil
		}
		return *machine, nil
	case machine != nil:
		return *machine, nil
	case textOK:
		return text, nil
	default:
		return ecoBannerPeriod(doc)
	}
}

// machinePeriod reads the two time[datetime] markers of the validity
// header. Both must parse as ISO dates.
func machinePeriod(header *goquery.Selection) *domain.ValidPeriod {
	times := header.Find("time[datetime]")
	if times.Length() != 2 {
		return nil
	}

	var dates []string
	times.Each(func(_ int, node *goquery.Selection) {
		value, _ := node.Attr("datetime")
		if _, err := time.Parse(isoDate, value); err == nil {
			dates = append(dates, value)
		}
	})
	if len(dates) != 2 {
		return nil
	}

	return &domain.ValidPeriod{Starts: dates[0], Ends: dates[1]}
}
