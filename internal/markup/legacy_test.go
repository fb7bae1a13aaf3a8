package markup

import (
	"testing"

	"dealflow/internal/domain"
)

const legacyTile = `
<div data-testid="AdBuilder">
  <div data-testid="strip"><div data-testid="Text">Warehouse-Only Offer</div></div>
  <a href="https://web.archive.org/web/20250514000000im_/https://example.com/p/1111161">
    <img src="https://example.com/imgs/prod_1111161.png">
  </a>
  <div data-testid="below_the_ad_text_content">
    <div data-testid="prices_and_percentages_prices">
      <div data-testid="Text">$</div>
      <div data-testid="Text">4</div>
      <div data-testid="Text">99</div>
    </div>
    <div data-testid="Text">Dixie Ultra Plates</div>
    <div data-testid="Text">186 ct. Item 1111161, Limit 2.</div>
  </div>
</div>`

func TestLegacyParseTile(t *testing.T) {
	schema := &legacySchema{}
	doc := mustDoc(t, legacyTile)

	tiles := schema.Tiles(doc)
	if tiles.Length() != 1 {
		t.Fatalf("Tiles found %d tiles, want 1", tiles.Length())
	}

	deal, ok := schema.ParseTile(tiles.First())
	if !ok {
		t.Fatal("ParseTile rejected a complete tile")
	}

	if deal.Link != "https://example.com/p/1111161" {
		t.Errorf("Link = %q, want archive prefix stripped", deal.Link)
	}
	if deal.SKU != "1111161" {
		t.Errorf("SKU = %q, want 1111161", deal.SKU)
	}
	if deal.Name != "Dixie Ultra Plates" {
		t.Errorf("Name = %q", deal.Name)
	}
	if deal.Details != "186 ct. Item 1111161, Limit 2." {
		t.Errorf("Details = %q", deal.Details)
	}
	if deal.Discount != 4.99 || deal.DiscountType != domain.DiscountDollar {
		t.Errorf("discount = %v %s, want 4.99 dollar", deal.Discount, deal.DiscountType)
	}
	if deal.Channel != domain.ChannelWarehouseOnly {
		t.Errorf("Channel = %q, want %q", deal.Channel, domain.ChannelWarehouseOnly)
	}
}

func TestLegacyAfterOffBanner(t *testing.T) {
	tests := []struct {
		name string
		text string
		want float64
		kind domain.DiscountType
	}{
		{"dollar", "After $30 OFF", 30, domain.DiscountDollar},
		{"dollar with cents", "After $4.50 OFF", 4.5, domain.DiscountDollar},
		{"percent", "After 20% OFF", 20, domain.DiscountPercent},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			html := `
<div data-testid="AdBuilder">
  <a href="https://example.com/p/1"></a>
  <div data-testid="below_the_ad_text_content">
    <div data-testid="prices_and_percentages_prices">
      <div data-testid="Text">$</div>
      <div data-testid="Text">99</div>
    </div>
    <div data-testid="Text_prices_and_percentages_append_text">` + tt.text + `</div>
    <div data-testid="Text">Some Product</div>
  </div>
</div>`
			schema := &legacySchema{}
			doc := mustDoc(t, html)

			deal, ok := schema.ParseTile(schema.Tiles(doc).First())
			if !ok {
				t.Fatal("ParseTile rejected tile")
			}
			if deal.Discount != tt.want || deal.DiscountType != tt.kind {
				t.Errorf("discount = %v %s, want %v %s", deal.Discount, deal.DiscountType, tt.want, tt.kind)
			}
		})
	}
}

func TestLegacyParseTileRejections(t *testing.T) {
	tests := []struct {
		name string
		html string
	}{
		{
			name: "missing link",
			html: `<div data-testid="AdBuilder">
  <div data-testid="below_the_ad_text_content">
    <div data-testid="prices_and_percentages_prices">
      <div data-testid="Text">$</div><div data-testid="Text">5</div>
    </div>
    <div data-testid="Text">Product</div>
  </div>
</div>`,
		},
		{
			name: "missing price block",
			html: `<div data-testid="AdBuilder">
  <a href="https://example.com/p/1"></a>
  <div data-testid="below_the_ad_text_content">
    <div data-testid="Text">Product</div>
  </div>
</div>`,
		},
		{
			name: "no text lines",
			html: `<div data-testid="AdBuilder">
  <a href="https://example.com/p/1"></a>
  <div data-testid="below_the_ad_text_content">
    <div data-testid="prices_and_percentages_prices">
      <div data-testid="Text">$</div><div data-testid="Text">5</div>
    </div>
  </div>
</div>`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			schema := &legacySchema{}
			doc := mustDoc(t, tt.html)
			if _, ok := schema.ParseTile(schema.Tiles(doc).First()); ok {
				t.Error("ParseTile accepted an incomplete tile")
			}
		})
	}
}

func TestLegacySKUFromImageFallback(t *testing.T) {
	html := `<div data-testid="AdBuilder">
  <a href="https://example.com/p/x"><img src="cdn/item_2223334.png"></a>
  <div data-testid="below_the_ad_text_content">
    <div data-testid="prices_and_percentages_prices">
      <div data-testid="Text">$</div><div data-testid="Text">12</div>
    </div>
    <div data-testid="Text">Product Without Item Number</div>
    <div data-testid="Text">Great value.</div>
  </div>
</div>`
	schema := &legacySchema{}
	doc := mustDoc(t, html)

	deal, ok := schema.ParseTile(schema.Tiles(doc).First())
	if !ok {
		t.Fatal("ParseTile rejected tile")
	}
	if deal.SKU != "2223334" {
		t.Errorf("SKU = %q, want 2223334 from the image filename", deal.SKU)
	}
}

func TestLegacyPercentSymbol(t *testing.T) {
	html := `<div data-testid="AdBuilder">
  <a href="https://example.com/p/x"></a>
  <div data-testid="below_the_ad_text_content">
    <div data-testid="prices_and_percentages_prices">
      <div data-testid="Text">%</div><div data-testid="Text">25</div>
    </div>
    <div data-testid="Text">Product</div>
  </div>
</div>`
	schema := &legacySchema{}
	doc := mustDoc(t, html)

	deal, ok := schema.ParseTile(schema.Tiles(doc).First())
	if !ok {
		t.Fatal("ParseTile rejected tile")
	}
	if deal.Discount != 25 || deal.DiscountType != domain.DiscountPercent {
		t.Errorf("discount = %v %s, want 25 percent", deal.Discount, deal.DiscountType)
	}
}

func TestLegacyValidPeriod(t *testing.T) {
	html := `<html><body>
  <p>Valid 5/14/25 - 6/8/25</p>
  <div data-testid="AdBuilder"></div>
</body></html>`
	schema := &legacySchema{}
	doc := mustDoc(t, html)

	period, err := schema.ValidPeriod(doc)
	if err != nil {
		t.Fatalf("ValidPeriod: %v", err)
	}
	want := domain.ValidPeriod{Starts: "2025-05-14", Ends: "2025-06-08"}
	if period != want {
		t.Errorf("ValidPeriod = %+v, want %+v", period, want)
	}
}
