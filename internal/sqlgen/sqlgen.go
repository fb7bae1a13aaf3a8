package sqlgen

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"dealflow/internal/domain"
)

// Expr is a raw SQL expression embedded into a VALUES list without
// quoting. Used for the deferred-lookup sub-selects that link rows by
// SKU instead of surrogate ids.
type Expr string

// Insert is one bulk insert statement.
type Insert struct {
	Table   string
	Columns []string
	Rows    [][]any
}

// Render emits the statement with INSERT OR IGNORE semantics, so
// re-running the same batch never errors or duplicates rows. Empty
// inserts render as "".
func (i Insert) Render() string {
	if len(i.Rows) == 0 {
		return ""
	}

	var b strings.Builder
	fmt.Fprintf(&b, "INSERT OR IGNORE INTO %s (%s) VALUES ", i.Table, strings.Join(i.Columns, ", "))
	for ri, row := range i.Rows {
		if ri > 0 {
			b.WriteString(", ")
		}
		b.WriteString("(")
		for ci, value := range row {
			if ci > 0 {
				b.WriteString(", ")
			}
			b.WriteString(renderValue(value))
		}
		b.WriteString(")")
	}
	b.WriteString(";")
	return b.String()
}

// renderValue serializes one value with minimal escaping: NULL for nil
// and empty strings, bare numerics, single-quote doubling for string
// literals, and Expr passed through verbatim.
func renderValue(value any) string {
	switch v := value.(type) {
	case nil:
		return "NULL"
	case Expr:
		return string(v)
	case string:
		if v == "" {
			return "NULL"
		}
		return "'" + strings.ReplaceAll(v, "'", "''") + "'"
	case int:
		return strconv.Itoa(v)
	case *int:
		if v == nil {
			return "NULL"
		}
		return strconv.Itoa(*v)
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	default:
		return "'" + strings.ReplaceAll(fmt.Sprint(v), "'", "''") + "'"
	}
}

var limitQtyRe = regexp.MustCompile(`Limit\s+(\d+)`)

// LimitQty parses a purchase limit ("Limit 2") out of free-text details.
func LimitQty(details string) *int {
	m := limitQtyRe.FindStringSubmatch(details)
	if m == nil {
		return nil
	}
	n, err := strconv.Atoi(m[1])
	if err != nil {
		return nil
	}
	return &n
}

func productLookup(sku string) Expr {
	return Expr(fmt.Sprintf("(SELECT id FROM product WHERE sku = '%s')", escape(sku)))
}

func offerPeriodLookup(sku string) Expr {
	return Expr(fmt.Sprintf("(SELECT id FROM offer_period WHERE product_id = (SELECT id FROM product WHERE sku = '%s'))", escape(sku)))
}

func escape(s string) string {
	return strings.ReplaceAll(s, "'", "''")
}

// ProductInsert builds the product upsert. Duplicate SKUs across deals
// collapse to one row at insert time via the natural-key constraint.
func ProductInsert(deals []domain.Deal) Insert {
	ins := Insert{
		Table:   "product",
		Columns: []string{"sku", "name", "category", "brand", "image_url"},
	}
	for _, deal := range deals {
		category := deal.Category
		if category == "" {
			category = "Other"
		}
		// Brand never appears in the captured markup.
		ins.Rows = append(ins.Rows, []any{deal.SKU, deal.Name, category, nil, deal.ImageURL})
	}
	return ins
}

// OfferPeriodInsert builds the offer_period insert, linking each row to
// its product by a lookup-by-sku sub-select resolved at insert time.
func OfferPeriodInsert(deals []domain.Deal, region, currency string) Insert {
	ins := Insert{
		Table: "offer_period",
		Columns: []string{
			"product_id", "region", "channel", "sale_type",
			"discount_low", "discount_high", "currency",
			"limit_qty", "details", "starts", "ends",
		},
	}
	for _, deal := range deals {
		channel := deal.Channel
		if channel == "" {
			channel = domain.ChannelUnknown
		}
		ins.Rows = append(ins.Rows, []any{
			productLookup(deal.SKU),
			region,
			string(channel),
			string(deal.DiscountType),
			deal.Discount,
			deal.Discount, // no range support; low and high are the same value
			currency,
			LimitQty(deal.Details),
			deal.Details,
			deal.ValidPeriod.Starts,
			deal.ValidPeriod.Ends,
		})
	}
	return ins
}

// OfferSnapshotInsert builds the offer_snapshot insert, linked to the
// offer period transitively via the product's SKU.
func OfferSnapshotInsert(deals []domain.Deal) Insert {
	ins := Insert{
		Table: "offer_snapshot",
		Columns: []string{
			"offer_period_id", "seen_at",
			"discount_low", "discount_high", "details",
		},
	}
	for _, deal := range deals {
		ins.Rows = append(ins.Rows, []any{
			offerPeriodLookup(deal.SKU),
			deal.SeenAt,
			deal.Discount,
			deal.Discount,
			deal.Details,
		})
	}
	return ins
}

// Generate renders the three bulk inserts in dependency order.
func Generate(deals []domain.Deal, region, currency string) string {
	var b strings.Builder
	b.WriteString(ProductInsert(deals).Render() + "\n")
	b.WriteString(OfferPeriodInsert(deals, region, currency).Render() + "\n")
	b.WriteString(OfferSnapshotInsert(deals).Render() + "\n")
	return b.String()
}
