package domain

import "time"

// DiscountType is the unit of a deal's discount amount.
type DiscountType string

const (
	DiscountDollar  DiscountType = "dollar"
	DiscountPercent DiscountType = "percent"
)

// Valid reports whether t is one of the known discount types.
func (t DiscountType) Valid() bool {
	return t == DiscountDollar || t == DiscountPercent
}

// Channel is where an offer can be redeemed.
type Channel string

const (
	ChannelWarehouseOnly      Channel = "Warehouse-Only"
	ChannelWarehouseAndOnline Channel = "In-Warehouse & Online"
	ChannelOnlineOnly         Channel = "Online-Only"
	ChannelUnknown            Channel = "Unknown"
)

// ValidPeriod is the date window during which every deal on one captured
// page is active. Dates are ISO calendar dates (YYYY-MM-DD).
type ValidPeriod struct {
	Starts string `json:"starts"`
	Ends   string `json:"ends"`
}

// Known reports whether both dates were determined.
func (p ValidPeriod) Known() bool {
	return p.Starts != "" && p.Ends != ""
}

// StartTime parses the start date. The zero time and false are returned
// when the date is absent or malformed.
func (p ValidPeriod) StartTime() (time.Time, bool) {
	if p.Starts == "" {
		return time.Time{}, false
	}
	t, err := time.Parse("2006-01-02", p.Starts)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

// Deal is one normalized promotional offer extracted from a single tile.
type Deal struct {
	Link            string       `json:"link"`
	SKU             string       `json:"sku,omitempty"`
	Name            string       `json:"name"`
	ImageURL        string       `json:"image_url,omitempty"`
	Category        string       `json:"category"`
	Discount        float64      `json:"discount"`
	DiscountType    DiscountType `json:"discount_type"`
	Details         string       `json:"details"`
	SeenAt          string       `json:"seen_at"`
	ValidPeriod     ValidPeriod  `json:"valid_period"`
	Channel         Channel      `json:"channel"`
	ValidationError string       `json:"validation_error,omitempty"`
}
