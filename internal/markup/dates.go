package markup

import (
	"regexp"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"

	"dealflow/internal/domain"
)

const isoDate = "2006-01-02"

// monthRangeRe matches the human-readable validity banners:
//
//	Valid August 28 to September 22, 2024
//	Valid August 28 to 31, 2024
//	Valid April 12 - 15, 2023
//
// The end month defaults to the start month when omitted.
var monthRangeRe = regexp.MustCompile(`Valid\s+([A-Za-z]+)\s+(\d{1,2})\s*(?:to|-|–)\s*(?:([A-Za-z]+)\s+)?(\d{1,2}),\s*(\d{4})`)

// numericDateRe matches the M/D/YY tokens of the oldest banner format,
// e.g. "Valid 5/14/25 - 6/8/25".
var numericDateRe = regexp.MustCompile(`\d{1,2}/\d{1,2}/\d{2}`)

// parseMonthRange parses a month-name validity banner out of text.
func parseMonthRange(text string) (domain.ValidPeriod, bool) {
	m := monthRangeRe.FindStringSubmatch(text)
	if m == nil {
		return domain.ValidPeriod{}, false
	}
	startMonth, startDay, endMonth, endDay, year := m[1], m[2], m[3], m[4], m[5]
	if endMonth == "" {
		endMonth = startMonth
	}

	starts, err := time.Parse("January 2 2006", startMonth+" "+startDay+" "+year)
	if err != nil {
		return domain.ValidPeriod{}, false
	}
	ends, err := time.Parse("January 2 2006", endMonth+" "+endDay+" "+year)
	if err != nil {
		return domain.ValidPeriod{}, false
	}

	return domain.ValidPeriod{
		Starts: starts.Format(isoDate),
		Ends:   ends.Format(isoDate),
	}, true
}

// parseNumericRange parses the two M/D/YY tokens of a legacy banner.
func parseNumericRange(text string) (domain.ValidPeriod, bool) {
	dates := numericDateRe.FindAllString(text, -1)
	if len(dates) != 2 {
		return domain.ValidPeriod{}, false
	}

	starts, err := time.Parse("1/2/06", dates[0])
	if err != nil {
		return domain.ValidPeriod{}, false
	}
	ends, err := time.Parse("1/2/06", dates[1])
	if err != nil {
		return domain.ValidPeriod{}, false
	}

	return domain.ValidPeriod{
		Starts: starts.Format(isoDate),
		Ends:   ends.Format(isoDate),
	}, true
}

// strippedStrings walks the document and yields every trimmed non-empty
// text node, in document order.
func strippedStrings(doc *goquery.Document) []string {
	var out []string
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			if text := strings.TrimSpace(n.Data); text != "" {
				out = append(out, text)
			}
			return
		}
		if n.Type == html.ElementNode && (n.Data == "script" || n.Data == "style") {
			return
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	for _, n := range doc.Selection.Nodes {
		walk(n)
	}
	return out
}

// freeTextPeriod scans the document's text for a validity banner: month
// ranges first, then the numeric M/D/YY form still seen in old captures.
func freeTextPeriod(doc *goquery.Document) (domain.ValidPeriod, error) {
	for _, text := range strippedStrings(doc) {
		if !strings.Contains(text, "Valid") {
			continue
		}
		if period, ok := parseMonthRange(text); ok {
			return period, nil
		}
		if period, ok := parseNumericRange(text); ok {
			return period, nil
		}
	}
	return domain.ValidPeriod{}, ErrNoValidPeriod
}
