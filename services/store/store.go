package store

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"

	"ukescout/reviewworker/internal/review"
	"ukescout/reviewworker/logger"
	scrapeerr "ukescout/reviewworker/pkg/errors"
)

// FileStore persists the review set and filter options as pretty-printed
// JSON files in one output directory. Files are overwritten in full on every
// run; there is no partial update.
type FileStore struct {
	dir         string
	reviewsFile string
	filtersFile string
	log         *logger.Logger
}

// RunInfo carries the per-run metadata written alongside the review set
type RunInfo struct {
	SourceURL string
	ScrapedAt int64 // epoch milliseconds
	Diff      review.DiffReport
}

// NewFileStore creates a file store rooted at dir. Empty file names fall
// back to the defaults.
func NewFileStore(dir, reviewsFile, filtersFile string) *FileStore {
	if reviewsFile == "" {
		reviewsFile = "reviews.json"
	}
	if filtersFile == "" {
		filtersFile = "filters.json"
	}
	return &FileStore{
		dir:         dir,
		reviewsFile: reviewsFile,
		filtersFile: filtersFile,
		log:         logger.ForStore(),
	}
}

// ReviewsPath returns the path of the persisted review set
func (s *FileStore) ReviewsPath() string {
	return filepath.Join(s.dir, s.reviewsFile)
}

// FiltersPath returns the path of the persisted filter options
func (s *FileStore) FiltersPath() string {
	return filepath.Join(s.dir, s.filtersFile)
}

// SaveReviews writes the full review set with run metadata, replacing any
// prior file.
func (s *FileStore) SaveReviews(reviews []review.Review, info RunInfo) error {
	payload := review.ReviewsFile{
		Data: reviews,
		Metadata: review.FileMetadata{
			SourceURL:  info.SourceURL,
			ScrapedAt:  info.ScrapedAt,
			Total:      len(reviews),
			DiffReport: &info.Diff,
		},
	}
	return s.writeJSON(s.ReviewsPath(), payload)
}

// SaveFilterOptions writes the filter options file, replacing any prior file
func (s *FileStore) SaveFilterOptions(opts review.FilterOptions) error {
	return s.writeJSON(s.FiltersPath(), opts)
}

// LoadReviewsFile reads and decodes the persisted review set
func (s *FileStore) LoadReviewsFile() (*review.ReviewsFile, error) {
	data, err := os.ReadFile(s.ReviewsPath())
	if err != nil {
		return nil, scrapeerr.NewStorage("store", "read "+s.reviewsFile, err)
	}
	var file review.ReviewsFile
	if err := json.Unmarshal(data, &file); err != nil {
		return nil, scrapeerr.NewStorage("store", "decode "+s.reviewsFile, err)
	}
	return &file, nil
}

// LoadFilterOptions reads and decodes the persisted filter options
func (s *FileStore) LoadFilterOptions() (*review.FilterOptions, error) {
	data, err := os.ReadFile(s.FiltersPath())
	if err != nil {
		return nil, scrapeerr.NewStorage("store", "read "+s.filtersFile, err)
	}
	var opts review.FilterOptions
	if err := json.Unmarshal(data, &opts); err != nil {
		return nil, scrapeerr.NewStorage("store", "decode "+s.filtersFile, err)
	}
	return &opts, nil
}

// LoadPreviousReviews returns the prior run's records for diffing. The load
// fails closed: a missing or malformed file means no prior data, never an
// error, and records without a URL key are dropped rather than trusted.
func (s *FileStore) LoadPreviousReviews() []review.Review {
	file, err := s.LoadReviewsFile()
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			s.log.Warn().Err(err).Msg("Previous output unreadable, diffing against empty set")
		}
		return nil
	}

	var reviews []review.Review
	for _, r := range file.Data {
		if r.URL == "" {
			continue
		}
		reviews = append(reviews, r)
	}
	return reviews
}

func (s *FileStore) writeJSON(path string, v interface{}) error {
	if err := os.MkdirAll(s.dir, 0755); err != nil {
		return scrapeerr.NewStorage("store", "create output directory", err)
	}
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return scrapeerr.NewStorage("store", "encode "+filepath.Base(path), err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return scrapeerr.NewStorage("store", "write "+filepath.Base(path), err)
	}
	return nil
}
