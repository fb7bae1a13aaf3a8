// Package ingest serializes validated deals into the ingestion
// endpoint's batch shape and posts them. The endpoint itself (and the
// database behind it) is an external collaborator.
package ingest

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"dealflow/internal/domain"
	"dealflow/internal/sqlgen"
)

// Product is the product part of one batch entry.
type Product struct {
	SKU      string  `json:"sku"`
	Name     string  `json:"name"`
	Category string  `json:"category"`
	Brand    *string `json:"brand"`
	ImageURL string  `json:"image_url,omitempty"`
}

// OfferPeriod is the validity-window part of one batch entry. The
// endpoint links it to the product itself, so no product reference is
// carried here.
type OfferPeriod struct {
	Region       string  `json:"region"`
	Channel      string  `json:"channel"`
	SaleType     string  `json:"sale_type"`
	DiscountLow  float64 `json:"discount_low"`
	DiscountHigh float64 `json:"discount_high"`
	Currency     string  `json:"currency"`
	LimitQty     *int    `json:"limit_qty"`
	Details      string  `json:"details"`
	Starts       string  `json:"starts"`
	Ends         string  `json:"ends"`
}

// Snapshot is the point-in-time observation part of one batch entry.
type Snapshot struct {
	SeenAt       string  `json:"seen_at"`
	DiscountLow  float64 `json:"discount_low"`
	DiscountHigh float64 `json:"discount_high"`
	Details      string  `json:"details"`
}

// Entry is one transformed deal in the batch payload.
type Entry struct {
	Product     Product     `json:"product"`
	OfferPeriod OfferPeriod `json:"offer_period"`
	Snapshot    Snapshot    `json:"snapshot"`
}

type response struct {
	Status  string `json:"status"`
	Message string `json:"message"`
	Details string `json:"details"`
}

// Transform reshapes one valid deal into its batch entry.
func Transform(deal domain.Deal, region, currency string) Entry {
	category := deal.Category
	if category == "" {
		category = "Other"
	}
	channel := deal.Channel
	if channel == "" {
		channel = domain.ChannelUnknown
	}
	return Entry{
		Product: Product{
			SKU:      deal.SKU,
			Name:     deal.Name,
			Category: category,
			Brand:    nil,
			ImageURL: deal.ImageURL,
		},
		OfferPeriod: OfferPeriod{
			Region:       region,
			Channel:      string(channel),
			SaleType:     string(deal.DiscountType),
			DiscountLow:  deal.Discount,
			DiscountHigh: deal.Discount,
			Currency:     currency,
			LimitQty:     sqlgen.LimitQty(deal.Details),
			Details:      deal.Details,
			Starts:       deal.ValidPeriod.Starts,
			Ends:         deal.ValidPeriod.Ends,
		},
		Snapshot: Snapshot{
			SeenAt:       deal.SeenAt,
			DiscountLow:  deal.Discount,
			DiscountHigh: deal.Discount,
			Details:      deal.Details,
		},
	}
}

// Client posts deal batches to the ingestion endpoint.
type Client struct {
	apiURL string
	apiKey string
	http   *http.Client
}

// NewClient creates a client for the given endpoint. apiKey may be empty
// for endpoints that need no Authorization header.
func NewClient(apiURL, apiKey string) *Client {
	return &Client{
		apiURL: apiURL,
		apiKey: apiKey,
		http:   &http.Client{Timeout: 30 * time.Second},
	}
}

// Ingest transforms and posts the full batch, returning the endpoint's
// detail message on success.
func (c *Client) Ingest(ctx context.Context, deals []domain.Deal, region, currency string) (string, error) {
	entries := make([]Entry, len(deals))
	for i, deal := range deals {
		entries[i] = Transform(deal, region, currency)
	}

	body, err := json.Marshal(entries)
	if err != nil {
		return "", fmt.Errorf("failed to encode batch: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.apiURL, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to reach ingestion endpoint: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read endpoint response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("ingestion endpoint returned %d: %s", resp.StatusCode, data)
	}

	var result response
	if err := json.Unmarshal(data, &result); err != nil {
		return "", fmt.Errorf("invalid endpoint response: %w", err)
	}
	if result.Status != "success" {
		msg := result.Message
		if msg == "" {
			msg = "unknown error"
		}
		return "", fmt.Errorf("ingestion failed: %s", msg)
	}

	return result.Details, nil
}
