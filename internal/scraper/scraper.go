package scraper

import (
	"errors"
	"io"
	"net/url"
	"strconv"
	"time"

	"github.com/PuerkitoBio/goquery"

	"ukescout/reviewworker/helpers"
	"ukescout/reviewworker/internal/review"
	"ukescout/reviewworker/logger"
	scrapeerr "ukescout/reviewworker/pkg/errors"
	"ukescout/reviewworker/services/cache"
	"ukescout/reviewworker/services/store"
)

// Options configures a Scraper. All configuration arrives through this
// struct; there are no command-line flags.
type Options struct {
	SourceURL string
	CacheKey  string
	BlockTime time.Duration
	CacheSvc  cache.CacheService
	Store     *store.FileStore
}

// Scraper performs one sequential scrape-and-save cycle per Run call: one
// GET for the index page, extraction, normalization, diff against the prior
// persisted output, then two file writes.
type Scraper struct {
	sourceURL *url.URL
	cacheKey  string
	blockTime time.Duration
	cacheSvc  cache.CacheService
	store     *store.FileStore
	log       *logger.Logger
}

// Result is the outcome of a completed run
type Result struct {
	Reviews []review.Review
	Diff    review.DiffReport
	Filters review.FilterOptions
}

// New creates a scraper from options
func New(opts Options) (*Scraper, error) {
	u, err := url.Parse(opts.SourceURL)
	if err != nil {
		return nil, scrapeerr.NewConfiguration("invalid source URL "+opts.SourceURL, err)
	}
	if u.Host == "" {
		return nil, scrapeerr.NewConfiguration("source URL "+opts.SourceURL+" has no host", nil)
	}
	if opts.Store == nil {
		return nil, scrapeerr.NewConfiguration("scraper requires a store", nil)
	}

	cacheKey := opts.CacheKey
	if cacheKey == "" {
		cacheKey = "review_index_rate_limited"
	}
	blockTime := opts.BlockTime
	if blockTime == 0 {
		blockTime = 500 * time.Second
	}

	return &Scraper{
		sourceURL: u,
		cacheKey:  cacheKey,
		blockTime: blockTime,
		cacheSvc:  opts.CacheSvc,
		store:     opts.Store,
		log:       logger.ForScraper(),
	}, nil
}

// Run performs one scrape-and-save cycle. A run either produces a complete,
// internally consistent output or produces none: fetch failures, an empty
// extraction and metadata validation failures all abort before any write.
func (s *Scraper) Run() (*Result, error) {
	body, err := s.fetchWithGuard()
	if err != nil {
		return nil, err
	}

	doc, err := goquery.NewDocumentFromReader(body)
	if err != nil {
		return nil, scrapeerr.NewParsing("scraper", "HTML parse failure", err)
	}

	catalog := ExtractBrandCatalog(doc)
	s.log.Debug().Int("brands", len(catalog)).Msg("Extracted brand catalog")

	candidates := ExtractReviewLinks(doc, s.sourceURL)
	reviews := assemble(candidates, catalog)
	if len(reviews) == 0 {
		return nil, scrapeerr.NewParsing("scraper", "no reviews extracted from "+s.sourceURL.String(), nil)
	}

	if err := review.Validate(reviews); err != nil {
		return nil, err
	}

	previous := s.store.LoadPreviousReviews()
	diffReport := review.Diff(previous, reviews)
	filters := review.BuildFilterOptions(reviews, time.Now())

	if err := s.store.SaveFilterOptions(filters); err != nil {
		return nil, err
	}
	if err := s.store.SaveReviews(reviews, store.RunInfo{
		SourceURL: s.sourceURL.String(),
		ScrapedAt: time.Now().UnixMilli(),
		Diff:      diffReport,
	}); err != nil {
		return nil, err
	}

	s.log.Info().
		Int("total", len(reviews)).
		Int("new", len(diffReport.New)).
		Int("removed", len(diffReport.Removed)).
		Int("updated", len(diffReport.Updated)).
		Msg("Scrape cycle complete")

	return &Result{Reviews: reviews, Diff: diffReport, Filters: filters}, nil
}

// fetchWithGuard fetches the index page unless a prior run left a rate-limit
// key in the cache service, and sets that key when the source starts
// throttling us.
func (s *Scraper) fetchWithGuard() (io.Reader, error) {
	if s.cacheSvc != nil && s.cacheKey != "" {
		if _, err := s.cacheSvc.Get(s.cacheKey); err == nil {
			return nil, scrapeerr.NewRateLimit("scraper", s.blockTime)
		}
	}

	body, err := helpers.FetchHTML(s.sourceURL.String())
	if err != nil {
		if errors.Is(err, helpers.ErrRateLimited) {
			if s.cacheSvc != nil && s.cacheKey != "" {
				seconds := strconv.Itoa(int(s.blockTime / time.Second))
				if setErr := s.cacheSvc.Set(s.cacheKey, []byte(seconds), s.blockTime); setErr != nil {
					s.log.Warn().Err(setErr).Msg("Failed to set rate limit key")
				}
			}
			return nil, scrapeerr.NewRateLimit("scraper", s.blockTime)
		}
		return nil, scrapeerr.NewNetwork("scraper", "failed to fetch "+s.sourceURL.String(), err)
	}
	return body, nil
}

// assemble normalizes candidates into review records, keeping the first
// occurrence when the page links the same review URL twice.
func assemble(candidates []Candidate, catalog review.BrandCatalog) []review.Review {
	seen := make(map[string]bool, len(candidates))
	var reviews []review.Review
	for _, c := range candidates {
		if seen[c.URL] {
			continue
		}
		seen[c.URL] = true

		brand := review.BrandFromTitle(c.Title, catalog)
		rating := c.Rating
		reviews = append(reviews, review.Review{
			Size:       review.SizeFromTitle(c.Title),
			Brand:      brand,
			Model:      review.ModelFromTitle(c.Title, brand),
			PriceRange: c.PriceRange,
			URL:        c.URL,
			Rating:     &rating,
			ReviewDate: review.ParseReviewDate(c.DateText),
		})
	}
	return reviews
}
