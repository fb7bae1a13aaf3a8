package ingest

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"dealflow/internal/domain"
)

func testDeal() domain.Deal {
	return domain.Deal{
		SKU:          "1234567",
		Name:         "Dixie Ultra Plates",
		Category:     "Home & Kitchen",
		Discount:     4.99,
		DiscountType: domain.DiscountDollar,
		Details:      "186 ct. Limit 2.",
		SeenAt:       "2024-09-01T10:30:00Z",
		ValidPeriod:  domain.ValidPeriod{Starts: "2024-08-28", Ends: "2024-09-22"},
		Channel:      domain.ChannelWarehouseOnly,
	}
}

func TestTransform(t *testing.T) {
	entry := Transform(testDeal(), "US", "USD")

	if entry.Product.SKU != "1234567" || entry.Product.Category != "Home & Kitchen" {
		t.Errorf("Product = %+v", entry.Product)
	}
	if entry.Product.Brand != nil {
		t.Errorf("Brand = %v, want nil", entry.Product.Brand)
	}
	if entry.OfferPeriod.Region != "US" || entry.OfferPeriod.Currency != "USD" {
		t.Errorf("OfferPeriod = %+v", entry.OfferPeriod)
	}
	if entry.OfferPeriod.DiscountLow != 4.99 || entry.OfferPeriod.DiscountHigh != 4.99 {
		t.Errorf("discount range = %v-%v, want 4.99-4.99", entry.OfferPeriod.DiscountLow, entry.OfferPeriod.DiscountHigh)
	}
	if entry.OfferPeriod.LimitQty == nil || *entry.OfferPeriod.LimitQty != 2 {
		t.Errorf("LimitQty = %v, want 2", entry.OfferPeriod.LimitQty)
	}
	if entry.Snapshot.SeenAt != "2024-09-01T10:30:00Z" {
		t.Errorf("Snapshot = %+v", entry.Snapshot)
	}
}

func TestTransformDefaults(t *testing.T) {
	deal := testDeal()
	deal.Category = ""
	deal.Channel = ""
	deal.Details = "no purchase limit here"

	entry := Transform(deal, "US", "USD")
	if entry.Product.Category != "Other" {
		t.Errorf("Category = %q, want Other", entry.Product.Category)
	}
	if entry.OfferPeriod.Channel != string(domain.ChannelUnknown) {
		t.Errorf("Channel = %q, want %q", entry.OfferPeriod.Channel, domain.ChannelUnknown)
	}
	if entry.OfferPeriod.LimitQty != nil {
		t.Errorf("LimitQty = %v, want nil", *entry.OfferPeriod.LimitQty)
	}
}

func TestIngestSuccess(t *testing.T) {
	var gotAuth string
	var gotEntries []Entry

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		if ct := r.Header.Get("Content-Type"); ct != "application/json" {
			t.Errorf("Content-Type = %q", ct)
		}
		if err := json.NewDecoder(r.Body).Decode(&gotEntries); err != nil {
			t.Errorf("failed to decode batch: %v", err)
		}
		json.NewEncoder(w).Encode(map[string]string{
			"status":  "success",
			"details": "2 deals ingested",
		})
	}))
	defer srv.Close()

	client := NewClient(srv.URL, "secret-key")
	details, err := client.Ingest(context.Background(), []domain.Deal{testDeal(), testDeal()}, "US", "USD")
	if err != nil {
		t.Fatalf("Ingest: %v", err)
	}

	if details != "2 deals ingested" {
		t.Errorf("details = %q", details)
	}
	if gotAuth != "Bearer secret-key" {
		t.Errorf("Authorization = %q, want bearer token", gotAuth)
	}
	if len(gotEntries) != 2 {
		t.Fatalf("endpoint received %d entries, want 2", len(gotEntries))
	}
	if gotEntries[0].Product.SKU != "1234567" {
		t.Errorf("entry product = %+v", gotEntries[0].Product)
	}
}

func TestIngestNoKeyOmitsAuthorization(t *testing.T) {
	var sawAuth bool
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sawAuth = r.Header.Get("Authorization") != ""
		json.NewEncoder(w).Encode(map[string]string{"status": "success"})
	}))
	defer srv.Close()

	client := NewClient(srv.URL, "")
	if _, err := client.Ingest(context.Background(), []domain.Deal{testDeal()}, "US", "USD"); err != nil {
		t.Fatalf("Ingest: %v", err)
	}
	if sawAuth {
		t.Error("request carried an Authorization header without an API key")
	}
}

func TestIngestHTTPError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer srv.Close()

	client := NewClient(srv.URL, "")
	if _, err := client.Ingest(context.Background(), []domain.Deal{testDeal()}, "US", "USD"); err == nil {
		t.Fatal("Ingest returned nil error for a 500 response")
	}
}

func TestIngestEndpointFailureStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]string{
			"status":  "error",
			"message": "duplicate batch",
		})
	}))
	defer srv.Close()

	client := NewClient(srv.URL, "")
	_, err := client.Ingest(context.Background(), []domain.Deal{testDeal()}, "US", "USD")
	if err == nil {
		t.Fatal("Ingest returned nil error for a failure status")
	}
	if got := err.Error(); got != "ingestion failed: duplicate batch" {
		t.Errorf("error = %q", got)
	}
}
