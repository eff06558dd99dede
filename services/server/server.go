package server

import (
	"context"
	"encoding/json"
	"net/http"
	"sort"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"ukescout/reviewworker/internal/review"
	"ukescout/reviewworker/logger"
	"ukescout/reviewworker/services/store"
)

// Server serves the persisted review data over HTTP. It reads the store on
// every request, so a scrape finishing mid-flight is picked up without a
// restart.
type Server struct {
	store  *store.FileStore
	router *chi.Mux
	log    *logger.Logger
}

// NewServer creates a server over the given file store
func NewServer(st *store.FileStore) *Server {
	s := &Server{
		store:  st,
		router: chi.NewRouter(),
		log:    logger.ForServer(),
	}

	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.RealIP)
	s.router.Use(middleware.Recoverer)
	s.router.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type"},
		MaxAge:         300,
	}))

	s.router.Get("/health", s.handleHealth)
	s.router.Route("/api", func(r chi.Router) {
		r.Get("/reviews", s.handleReviews)
		r.Get("/filters", s.handleFilters)
	})

	return s
}

// Handler returns the configured router
func (s *Server) Handler() http.Handler {
	return s.router
}

// ListenAndServe serves until ctx is cancelled, then shuts down gracefully
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:    addr,
		Handler: s.router,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	s.log.Info().Str("addr", addr).Msg("HTTP server listening")

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	case err := <-errCh:
		return err
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, map[string]string{"status": "ok"})
}

// handleReviews returns the persisted review records, optionally filtered by
// brand, size and priceRange (all case-insensitive) and sorted by date or
// rating. A missing or unreadable data file yields an empty collection, not
// an error: the UI stays up while the first scrape is still pending.
func (s *Server) handleReviews(w http.ResponseWriter, r *http.Request) {
	var reviews []review.Review
	file, err := s.store.LoadReviewsFile()
	if err != nil {
		s.log.WithError(err).Warn().Msg("Review data unavailable, serving empty collection")
	} else {
		reviews = file.Data
	}

	q := r.URL.Query()
	reviews = filterReviews(reviews, q.Get("brand"), q.Get("size"), q.Get("priceRange"))
	sortReviews(reviews, q.Get("sort"), q.Get("order"))

	if reviews == nil {
		reviews = []review.Review{}
	}
	writeJSON(w, map[string]interface{}{
		"data":  reviews,
		"total": len(reviews),
	})
}

// handleFilters returns the persisted filter options
func (s *Server) handleFilters(w http.ResponseWriter, r *http.Request) {
	opts, err := s.store.LoadFilterOptions()
	if err != nil {
		s.log.WithError(err).Warn().Msg("Filter options unavailable, serving empty collection")
		opts = &review.FilterOptions{
			Brands:      []string{},
			Sizes:       []string{},
			PriceRanges: []string{},
		}
	}
	writeJSON(w, opts)
}

func filterReviews(reviews []review.Review, brand, size, priceRange string) []review.Review {
	if brand == "" && size == "" && priceRange == "" {
		return reviews
	}
	var out []review.Review
	for _, r := range reviews {
		if brand != "" && !strings.EqualFold(r.Brand, brand) {
			continue
		}
		if size != "" && !strings.EqualFold(r.Size, size) {
			continue
		}
		if priceRange != "" && !strings.EqualFold(r.PriceRange, priceRange) {
			continue
		}
		out = append(out, r)
	}
	return out
}

// sortReviews orders reviews by date or rating. Records without the sort
// field always sink to the end, whatever the direction.
func sortReviews(reviews []review.Review, field, order string) {
	if field != "date" && field != "rating" {
		return
	}
	asc := order == "asc"

	sort.SliceStable(reviews, func(i, j int) bool {
		a, b := reviews[i], reviews[j]
		switch field {
		case "rating":
			if a.Rating == nil {
				return false
			}
			if b.Rating == nil {
				return true
			}
			if asc {
				return *a.Rating < *b.Rating
			}
			return *a.Rating > *b.Rating
		default:
			if a.ReviewDate == nil {
				return false
			}
			if b.ReviewDate == nil {
				return true
			}
			if asc {
				return *a.ReviewDate < *b.ReviewDate
			}
			return *a.ReviewDate > *b.ReviewDate
		}
	})
}

func writeJSON(w http.ResponseWriter, v interface{}) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		http.Error(w, "encoding failure", http.StatusInternalServerError)
	}
}
