package markup

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"dealflow/internal/domain"
)

// legacySchema handles the oldest capture format, where every element
// carries a generic data-testid attribute and tiles are AdBuilder
// containers. Discounts render as separate "$" / "4" / "99" text
// fragments inside the price block.
type legacySchema struct{}

var (
	itemRe     = regexp.MustCompile(`Item\s+(\d+)`)
	pngSKURe   = regexp.MustCompile(`_([0-9]{6,})\.png`)
	numberRe   = regexp.MustCompile(`^\d+(?:\.\d+)?$`)
	afterOffRe = []struct {
		re   *regexp.Regexp
		kind domain.DiscountType
	}{
		{regexp.MustCompile(`(?i)After\s+\$(\d+(?:\.\d+)?)\s+OFF`), domain.DiscountDollar},
		{regexp.MustCompile(`(?i)After\s+(\d+)%\s+OFF`), domain.DiscountPercent},
	}
)

func (s *legacySchema) Name() string { return SchemaLegacy }

func (s *legacySchema) Match(doc *goquery.Document) bool {
	return doc.Find(`div[data-testid="AdBuilder"]`).Length() > 0
}

func (s *legacySchema) Tiles(doc *goquery.Document) *goquery.Selection {
	return doc.Find(`div[data-testid="AdBuilder"]`)
}

func (s *legacySchema) ParseTile(sel *goquery.Selection) (domain.Deal, bool) {
	link, ok := sel.Find("a[href]").First().Attr("href")
	if !ok {
		return domain.Deal{}, false
	}

	// A tile without a price block is decorative filler.
	if sel.Find(`div[data-testid="prices_and_percentages_prices"]`).Length() == 0 {
		return domain.Deal{}, false
	}
	discount, kind, ok := s.parseDiscount(sel)
	if !ok {
		return domain.Deal{}, false
	}

	lines := s.textLines(sel)
	if len(lines) == 0 {
		return domain.Deal{}, false
	}
	name := lines[0]
	details := lines[len(lines)-1]

	return domain.Deal{
		Link:         stripArchivePrefix(link),
		SKU:          s.extractSKU(sel, details),
		Name:         name,
		Details:      details,
		Discount:     discount,
		DiscountType: kind,
		Channel:      s.extractChannel(sel),
	}, true
}

// parseDiscount prefers the explicit "After $X OFF" banner, then falls
// back to reassembling the fragmented price block, where a dollar amount
// is split into a symbol token and one or two number tokens (whole
// dollars, then cents).
func (s *legacySchema) parseDiscount(sel *goquery.Selection) (float64, domain.DiscountType, bool) {
	appendText := strings.TrimSpace(sel.Find(`div[data-testid="Text_prices_and_percentages_append_text"]`).First().Text())
	if appendText != "" {
		for _, p := range afterOffRe {
			if m := p.re.FindStringSubmatch(appendText); m != nil {
				value, err := strconv.ParseFloat(m[1], 64)
				if err == nil {
					return value, p.kind, true
				}
			}
		}
	}

	var symbol string
	var dollars, cents float64
	haveDollars, haveCents := false, false
	sel.Find(`div[data-testid="prices_and_percentages_prices"] div[data-testid="Text"]`).Each(func(_ int, node *goquery.Selection) {
		text := strings.TrimSpace(node.Text())
		if text == "$" || text == "%" {
			symbol = text
			return
		}
		if !numberRe.MatchString(text) {
			return
		}
		value, err := strconv.ParseFloat(text, 64)
		if err != nil {
			return
		}
		switch {
		case !haveDollars:
			dollars, haveDollars = value, true
		case !haveCents:
			cents, haveCents = value, true
		}
	})

	if !haveDollars {
		return 0, "", false
	}
	value := dollars
	if haveCents {
		value += cents / 100
	}
	kind := domain.DiscountDollar
	if symbol == "%" {
		kind = domain.DiscountPercent
	}
	return value, kind, true
}

// textLines gathers the non-empty text lines of the tile's text zone,
// skipping anything that lives inside the price block.
func (s *legacySchema) textLines(sel *goquery.Selection) []string {
	var lines []string
	sel.Find(`div[data-testid="below_the_ad_text_content"] div[data-testid="Text"]`).Each(func(_ int, node *goquery.Selection) {
		if node.ParentsFiltered(`div[data-testid="prices_and_percentages_prices"]`).Length() > 0 {
			return
		}
		if text := strings.TrimSpace(node.Text()); text != "" {
			lines = append(lines, text)
		}
	})
	return lines
}

// extractSKU pulls the item number from the details text, falling back to
// the numeric token embedded in a product image filename.
func (s *legacySchema) extractSKU(sel *goquery.Selection, details string) string {
	if m := itemRe.FindStringSubmatch(details); m != nil {
		return m[1]
	}
	markup, err := goquery.OuterHtml(sel)
	if err != nil {
		return ""
	}
	if m := pngSKURe.FindStringSubmatch(markup); m != nil {
		return m[1]
	}
	return ""
}

func (s *legacySchema) extractChannel(sel *goquery.Selection) domain.Channel {
	text := strings.TrimSpace(sel.Find(`div[data-testid="strip"] div[data-testid="Text"]`).First().Text())
	switch {
	case strings.Contains(text, "Warehouse-Only"):
		return domain.ChannelWarehouseOnly
	case strings.Contains(text, "In-Warehouse & Online"):
		return domain.ChannelWarehouseAndOnline
	case strings.Contains(text, "Online-Only"):
		return domain.ChannelOnlineOnly
	default:
		return domain.ChannelUnknown
	}
}

func (s *legacySchema) ValidPeriod(doc *goquery.Document) (domain.ValidPeriod, error) {
	return freeTextPeriod(doc)
}
