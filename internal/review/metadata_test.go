package review

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	scrapeerr "ukescout/reviewworker/pkg/errors"
)

func TestValidate(t *testing.T) {
	reviews := []Review{
		{Size: SizeSoprano, PriceRange: Price50To100, URL: "https://example.com/a"},
		{Size: SizeOther, PriceRange: PriceUnknown, URL: "https://example.com/b"},
	}
	assert.NoError(t, Validate(reviews))

	// Any brand string is accepted
	reviews[0].Brand = "SOME UNHEARD OF WORKSHOP"
	assert.NoError(t, Validate(reviews))

	badSize := []Review{{Size: "mega", PriceRange: Price50To100, URL: "https://example.com/c"}}
	err := Validate(badSize)
	assert.Error(t, err)
	var scrapeErr *scrapeerr.ScrapeError
	assert.ErrorAs(t, err, &scrapeErr)
	assert.Equal(t, scrapeerr.ErrorTypeValidation, scrapeErr.Type)

	badPrice := []Review{{Size: SizeSoprano, PriceRange: "1000+", URL: "https://example.com/d"}}
	assert.Error(t, Validate(badPrice))
}

func TestBuildFilterOptions(t *testing.T) {
	now := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	reviews := []Review{
		{Brand: "KALA", Size: SizeSoprano, PriceRange: Price50To100},
		{Brand: "ENYA", Size: SizeConcert, PriceRange: Price100To200},
		{Brand: "KALA", Size: SizeTenor, PriceRange: Price200To500},
	}

	opts := BuildFilterOptions(reviews, now)

	assert.Equal(t, "2024-06-01T12:00:00Z", opts.LastUpdated)
	// Brands keep production order, deduplicated
	assert.Equal(t, []string{"KALA", "ENYA"}, opts.Brands)
	// Sizes and price ranges are always the fixed lists
	assert.Equal(t, AllSizes, opts.Sizes)
	assert.Equal(t, AllPriceRanges, opts.PriceRanges)
}

func TestBuildFilterOptionsEmpty(t *testing.T) {
	opts := BuildFilterOptions(nil, time.Now())
	assert.Empty(t, opts.Brands)
	assert.Len(t, opts.Sizes, 6)
	assert.Len(t, opts.PriceRanges, 5)
}
