package review

// Size categories a review can be classified into
const (
	SizeSoprano   = "soprano"
	SizeSopranino = "sopranino"
	SizeConcert   = "concert"
	SizeTenor     = "tenor"
	SizeBaritone  = "baritone"
	SizeOther     = "other"
)

// Price bracket categories
const (
	PriceUnder50  = "<50"
	Price50To100  = "50-100"
	Price100To200 = "100-200"
	Price200To500 = "200-500"
	Price500Plus  = "500+"
	PriceUnknown  = "unknown"
)

var (
	// AllSizes is the fixed size list written to the filter options file
	AllSizes = []string{SizeSoprano, SizeSopranino, SizeConcert, SizeTenor, SizeBaritone, SizeOther}

	// AllPriceRanges is the fixed price bracket list written to the filter options file
	AllPriceRanges = []string{PriceUnder50, Price50To100, Price100To200, Price200To500, Price500Plus}
)

// Review represents one scraped review record. The URL uniquely identifies a
// review across runs; rating and review date are null when the source page
// does not carry them in a recognizable form.
type Review struct {
	Size       string   `json:"size"`
	Brand      string   `json:"brand"`
	Model      string   `json:"model"`
	PriceRange string   `json:"priceRange"`
	URL        string   `json:"url"`
	Rating     *float64 `json:"rating"`
	ReviewDate *string  `json:"reviewDate"`
}

// FilterOptions is the aggregated metadata record backing the UI filters.
// It is fully recomputed from the review set after each run.
type FilterOptions struct {
	LastUpdated string   `json:"lastUpdated"`
	Brands      []string `json:"brands"`
	Sizes       []string `json:"sizes"`
	PriceRanges []string `json:"priceRanges"`
}

// ReviewChange pairs the previous and current versions of a changed record
type ReviewChange struct {
	URL      string `json:"url"`
	Previous Review `json:"previous"`
	Current  Review `json:"current"`
}

// DiffReport classifies the current review set against the previous run,
// keyed by review URL. Removed entries are bare URLs.
type DiffReport struct {
	New     []Review       `json:"new"`
	Removed []string       `json:"removed"`
	Updated []ReviewChange `json:"updated"`
}

// FileMetadata describes one persisted scrape run
type FileMetadata struct {
	SourceURL  string      `json:"sourceUrl"`
	ScrapedAt  int64       `json:"scrapedAt"` // epoch milliseconds
	Total      int         `json:"total"`
	DiffReport *DiffReport `json:"diffReport,omitempty"`
}

// ReviewsFile is the on-disk envelope for a persisted review set
type ReviewsFile struct {
	Data     []Review     `json:"data"`
	Metadata FileMetadata `json:"metadata"`
}
