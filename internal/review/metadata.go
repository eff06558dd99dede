package review

import (
	"fmt"
	"time"

	scrapeerr "ukescout/reviewworker/pkg/errors"
)

var allowedSizes = map[string]bool{
	SizeSoprano:   true,
	SizeSopranino: true,
	SizeConcert:   true,
	SizeTenor:     true,
	SizeBaritone:  true,
	SizeOther:     true,
}

var allowedPriceRanges = map[string]bool{
	PriceUnder50:  true,
	Price50To100:  true,
	Price100To200: true,
	Price200To500: true,
	Price500Plus:  true,
	PriceUnknown:  true,
}

// Validate checks every review against the size and price bracket
// allow-lists. Any value outside them is fatal for the run; brand values are
// not validated.
func Validate(reviews []Review) error {
	for _, r := range reviews {
		if !allowedSizes[r.Size] {
			return scrapeerr.NewValidation("metadata",
				fmt.Sprintf("unexpected size %q for %s", r.Size, r.URL))
		}
		if !allowedPriceRanges[r.PriceRange] {
			return scrapeerr.NewValidation("metadata",
				fmt.Sprintf("unexpected price range %q for %s", r.PriceRange, r.URL))
		}
	}
	return nil
}

// BuildFilterOptions recomputes the filter options from a full review set.
// Brands keep the order they were produced in; sizes and price ranges are
// always the fixed lists.
func BuildFilterOptions(reviews []Review, now time.Time) FilterOptions {
	seen := make(map[string]bool, len(reviews))
	brands := []string{}
	for _, r := range reviews {
		if r.Brand == "" || seen[r.Brand] {
			continue
		}
		seen[r.Brand] = true
		brands = append(brands, r.Brand)
	}

	return FilterOptions{
		LastUpdated: now.UTC().Format(time.RFC3339),
		Brands:      brands,
		Sizes:       append([]string(nil), AllSizes...),
		PriceRanges: append([]string(nil), AllPriceRanges...),
	}
}
