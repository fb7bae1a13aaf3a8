package sqlgen

import (
	"database/sql"
	"strings"
	"testing"

	_ "modernc.org/sqlite"

	"dealflow/internal/domain"
)

func TestRenderValue(t *testing.T) {
	limit := 2
	tests := []struct {
		name  string
		value any
		want  string
	}{
		{"nil", nil, "NULL"},
		{"empty string", "", "NULL"},
		{"string", "Dixie Ultra Plates", "'Dixie Ultra Plates'"},
		{"string with quote", "Reese's Pieces", "'Reese''s Pieces'"},
		{"expr verbatim", Expr("(SELECT 1)"), "(SELECT 1)"},
		{"int", 7, "7"},
		{"int pointer", &limit, "2"},
		{"nil int pointer", (*int)(nil), "NULL"},
		{"float trims zeroes", 4.99, "4.99"},
		{"float whole", 30.0, "30"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := renderValue(tt.value); got != tt.want {
				t.Errorf("renderValue(%v) = %q, want %q", tt.value, got, tt.want)
			}
		})
	}
}

func TestLimitQty(t *testing.T) {
	tests := []struct {
		details string
		want    *int
	}{
		{"186 ct. Item 1111161, Limit 2.", intPtr(2)},
		{"Limit 10 per member.", intPtr(10)},
		{"While supplies last.", nil},
	}

	for _, tt := range tests {
		got := LimitQty(tt.details)
		switch {
		case tt.want == nil && got != nil:
			t.Errorf("LimitQty(%q) = %d, want nil", tt.details, *got)
		case tt.want != nil && (got == nil || *got != *tt.want):
			t.Errorf("LimitQty(%q) = %v, want %d", tt.details, got, *tt.want)
		}
	}
}

func intPtr(n int) *int { return &n }

func TestInsertRender(t *testing.T) {
	ins := Insert{
		Table:   "product",
		Columns: []string{"sku", "name"},
		Rows: [][]any{
			{"1234567", "Dixie Ultra Plates"},
			{"7654321", "Tide Pods"},
		},
	}
	want := "INSERT OR IGNORE INTO product (sku, name) VALUES ('1234567', 'Dixie Ultra Plates'), ('7654321', 'Tide Pods');"
	if got := ins.Render(); got != want {
		t.Errorf("Render = %q, want %q", got, want)
	}
}

func TestInsertRenderEmpty(t *testing.T) {
	ins := Insert{Table: "product", Columns: []string{"sku"}}
	if got := ins.Render(); got != "" {
		t.Errorf("Render of empty insert = %q, want empty", got)
	}
}

func TestGenerateStatementShape(t *testing.T) {
	deal := validDeal()
	deal.Details = "186 ct. Item 1234567, Limit 2."
	deal.SeenAt = "2024-09-01T10:30:00Z"
	deal.Category = "Home & Kitchen"
	deal.Channel = domain.ChannelWarehouseOnly

	script := Generate([]domain.Deal{deal}, "US", "USD")

	for _, fragment := range []string{
		"INSERT OR IGNORE INTO product (sku, name, category, brand, image_url)",
		"INSERT OR IGNORE INTO offer_period (product_id, region, channel, sale_type, discount_low, discount_high, currency, limit_qty, details, starts, ends)",
		"INSERT OR IGNORE INTO offer_snapshot (offer_period_id, seen_at, discount_low, discount_high, details)",
		"(SELECT id FROM product WHERE sku = '1234567')",
		"'Warehouse-Only'",
		"'dollar'",
		"4.99",
	} {
		if !strings.Contains(script, fragment) {
			t.Errorf("Generate output is missing %q:\n%s", fragment, script)
		}
	}
}

const testDDL = `
CREATE TABLE product (
	id INTEGER PRIMARY KEY,
	sku TEXT NOT NULL UNIQUE,
	name TEXT NOT NULL,
	category TEXT,
	brand TEXT,
	image_url TEXT
);
CREATE TABLE offer_period (
	id INTEGER PRIMARY KEY,
	product_id INTEGER NOT NULL REFERENCES product(id),
	region TEXT NOT NULL,
	channel TEXT,
	sale_type TEXT,
	discount_low REAL,
	discount_high REAL,
	currency TEXT,
	limit_qty INTEGER,
	details TEXT,
	starts TEXT,
	ends TEXT,
	UNIQUE (product_id, starts, ends)
);
CREATE TABLE offer_snapshot (
	id INTEGER PRIMARY KEY,
	offer_period_id INTEGER NOT NULL REFERENCES offer_period(id),
	seen_at TEXT NOT NULL,
	discount_low REAL,
	discount_high REAL,
	details TEXT,
	UNIQUE (offer_period_id, seen_at)
);`

// Re-running a generated script against a database that already holds the
// batch must change nothing.
func TestGenerateIsIdempotent(t *testing.T) {
	db, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		t.Fatalf("failed to open database: %v", err)
	}
	defer db.Close()

	if _, err := db.Exec(testDDL); err != nil {
		t.Fatalf("failed to create schema: %v", err)
	}

	first := validDeal()
	first.Details = "186 ct. Limit 2."
	first.SeenAt = "2024-09-01T10:30:00Z"
	second := validDeal()
	second.SKU = "7654321"
	second.Name = "Tide Pods"
	second.SeenAt = "2024-09-01T10:30:00Z"

	script := Generate([]domain.Deal{first, second}, "US", "USD")
	for i := 0; i < 2; i++ {
		if _, err := db.Exec(script); err != nil {
			t.Fatalf("failed to apply generated script: %v", err)
		}
	}

	for _, table := range []string{"product", "offer_period", "offer_snapshot"} {
		var n int
		if err := db.QueryRow("SELECT COUNT(*) FROM " + table).Scan(&n); err != nil {
			t.Fatalf("failed to count %s rows: %v", table, err)
		}
		if n != 2 {
			t.Errorf("%s holds %d rows after replay, want 2", table, n)
		}
	}
}
