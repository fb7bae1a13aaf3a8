// Package sqlgen validates extracted deals and transforms the valid ones
// into idempotent insert statements for the product, offer_period and
// offer_snapshot tables.
package sqlgen

import (
	"fmt"

	"dealflow/internal/domain"
)

// Validate checks a deal against the target schema's requirements and
// returns the first applicable rejection reason, or "" for a valid deal.
// The check order is part of the contract: a deal missing several fields
// is tagged with the earliest reason.
func Validate(deal domain.Deal) string {
	if deal.SKU == "" {
		return "Missing SKU"
	}
	if deal.Name == "" {
		return "Missing product name"
	}
	if deal.Discount == 0 {
		return "Missing discount"
	}
	if deal.DiscountType == "" {
		return "Missing discount type"
	}
	if deal.ValidPeriod.Starts == "" && deal.ValidPeriod.Ends == "" {
		return "Missing valid period"
	}
	if !deal.ValidPeriod.Known() {
		return "Invalid valid period dates"
	}
	if !deal.DiscountType.Valid() {
		return fmt.Sprintf("Invalid discount type: %s", deal.DiscountType)
	}
	if deal.Discount < 0 {
		return fmt.Sprintf("Invalid discount value: %v", deal.Discount)
	}
	return ""
}

// Partition splits deals into valid and quarantined sets. Every input
// deal lands in exactly one of the two; quarantined deals carry their
// rejection reason in the validation_error field.
func Partition(deals []domain.Deal) (valid, invalid []domain.Deal) {
	for _, deal := range deals {
		if reason := Validate(deal); reason != "" {
			deal.ValidationError = reason
			invalid = append(invalid, deal)
			continue
		}
		valid = append(valid, deal)
	}
	return valid, invalid
}

// ReasonCounts tallies quarantined deals by rejection reason.
func ReasonCounts(invalid []domain.Deal) map[string]int {
	counts := make(map[string]int)
	for _, deal := range invalid {
		counts[deal.ValidationError]++
	}
	return counts
}
