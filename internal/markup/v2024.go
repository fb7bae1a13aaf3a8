package markup

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"dealflow/internal/domain"
)

// v2024Schema handles the 2024 revision, where tiles are li.eco-coupons
// list items and the discount renders inside a nested table. Item lines
// may list several SKUs ("Item 1720981, 1720886"); the first one is the
// deal's identifier.
type v2024Schema struct{}

var (
	itemListRe  = regexp.MustCompile(`Item\s+([\d, ]+)`)
	firstNumRe  = regexp.MustCompile(`\d+(?:\.\d+)?`)
	validHeader = "p.eco-webvalid-header"
)

func (s *v2024Schema) Name() string { return SchemaV2024 }

func (s *v2024Schema) Match(doc *goquery.Document) bool {
	return doc.Find("li.eco-coupons").Length() > 0
}

func (s *v2024Schema) Tiles(doc *goquery.Document) *goquery.Selection {
	return doc.Find("li.eco-coupons")
}

func (s *v2024Schema) ParseTile(sel *goquery.Selection) (domain.Deal, bool) {
	return parseEcoTile(sel, s.parseDiscount)
}

func (s *v2024Schema) parseDiscount(sel *goquery.Selection) (float64, domain.DiscountType, bool) {
	return parseEcoPriceTable(sel)
}

func (s *v2024Schema) ValidPeriod(doc *goquery.Document) (domain.ValidPeriod, error) {
	return ecoBannerPeriod(doc)
}

// parseEcoTile extracts a deal from one eco-coupons tile. The discount
// strategy differs between the plain and extended revisions and is
// supplied by the caller.
func parseEcoTile(sel *goquery.Selection, discount func(*goquery.Selection) (float64, domain.DiscountType, bool)) (domain.Deal, bool) {
	link, ok := sel.Find("a[href]").First().Attr("href")
	if !ok {
		return domain.Deal{}, false
	}

	value, kind, ok := discount(sel)
	if !ok {
		return domain.Deal{}, false
	}

	name := strings.TrimSpace(sel.Find("div.eco-sl1").First().Text())
	if name == "" {
		name = "Unknown Product"
	}

	var detailsParts []string
	if sl2 := strings.TrimSpace(sel.Find("div.eco-sl2").First().Text()); sl2 != "" {
		detailsParts = append(detailsParts, sl2)
	}

	sku := ""
	if itemsText := strings.TrimSpace(sel.Find("div.eco-items").First().Text()); itemsText != "" {
		detailsParts = append(detailsParts, itemsText)
		if m := itemListRe.FindStringSubmatch(itemsText); m != nil {
			// Multi-item bundles list several SKUs; keep the first.
			sku = strings.TrimSpace(strings.Split(m[1], ",")[0])
		}
	}

	imageURL := ""
	if src, ok := sel.Find("img.eco-webImage").First().Attr("src"); ok {
		imageURL = stripArchivePrefix(src)
	}

	return domain.Deal{
		Link:         stripArchivePrefix(link),
		SKU:          sku,
		Name:         name,
		ImageURL:     imageURL,
		Details:      strings.Join(detailsParts, ". "),
		Discount:     value,
		DiscountType: kind,
		Channel:      ecoChannel(sel),
	}, true
}

// parseEcoPriceTable reads the nested price table. The numeric span is
// often split across nested nodes, so all fragments are concatenated
// before the first numeric substring is taken.
func parseEcoPriceTable(sel *goquery.Selection) (float64, domain.DiscountType, bool) {
	table := sel.Find("table.eco-price").First()
	if table.Length() == 0 {
		return 0, "", false
	}

	var fragments []string
	table.Find("span.eco-dollar").Each(func(_ int, node *goquery.Selection) {
		fragments = append(fragments, strings.TrimSpace(node.Text()))
	})
	numText := firstNumRe.FindString(strings.Join(fragments, ""))
	if numText == "" {
		return 0, "", false
	}
	value, err := strconv.ParseFloat(numText, 64)
	if err != nil {
		return 0, "", false
	}

	kind := domain.DiscountDollar
	if strings.Contains(table.Find("span.eco-dollarSign").Text(), "%") {
		kind = domain.DiscountPercent
	}
	return value, kind, true
}

func ecoChannel(sel *goquery.Selection) domain.Channel {
	text := strings.ToUpper(strings.TrimSpace(sel.Find("div.eco-header").First().Text()))
	switch {
	case strings.Contains(text, "IN-WAREHOUSE") && strings.Contains(text, "ONLINE"):
		return domain.ChannelWarehouseAndOnline
	case strings.Contains(text, "WAREHOUSE"):
		return domain.ChannelWarehouseOnly
	case strings.Contains(text, "ONLINE"):
		return domain.ChannelOnlineOnly
	default:
		return domain.ChannelUnknown
	}
}

// ecoBannerPeriod parses the dedicated validity header, falling back to a
// free-text scan for captures whose header was mangled.
func ecoBannerPeriod(doc *goquery.Document) (domain.ValidPeriod, error) {
	header := strings.TrimSpace(doc.Find(validHeader).First().Text())
	if header != "" {
		if period, ok := parseMonthRange(header); ok {
			return period, nil
		}
	}
	return freeTextPeriod(doc)
}
