package detector

import (
	"crypto/md5"
	"encoding/hex"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"time"

	"ukescout/reviewworker/logger"
	scrapeerr "ukescout/reviewworker/pkg/errors"
)

// Entry records the last sighting of a single review URL.
type Entry struct {
	URL         string `json:"url"`
	LastSeen    string `json:"lastSeen"`
	ContentHash string `json:"contentHash,omitempty"`
}

// Metadata tracks the cache file's own history.
type Metadata struct {
	Created   string `json:"created"`
	TotalRuns int    `json:"totalRuns"`
}

type cacheFile struct {
	LastRun  string           `json:"lastRun"`
	URLs     map[string]Entry `json:"urls"`
	Metadata Metadata         `json:"metadata"`
}

// ChangeDetector keeps a persistent record of every review URL ever seen,
// keyed by the MD5 hex digest of the URL. It answers whether a URL is new
// or carries changed content since the last run.
type ChangeDetector struct {
	path string
	data cacheFile
	log  *logger.Logger
}

// New loads the detector cache from path. A missing or unreadable file is
// not an error: the detector re-initializes with an empty cache and the
// first save recreates it.
func New(path string) *ChangeDetector {
	d := &ChangeDetector{
		path: path,
		log:  logger.ForDetector(),
	}
	d.data = cacheFile{
		URLs: make(map[string]Entry),
		Metadata: Metadata{
			Created: time.Now().UTC().Format(time.RFC3339),
		},
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			d.log.WithError(err).WithField("path", path).Warn().Msg("Detector cache unreadable, starting fresh")
		}
		return d
	}

	var loaded cacheFile
	if err := json.Unmarshal(raw, &loaded); err != nil {
		d.log.WithError(err).WithField("path", path).Warn().Msg("Detector cache malformed, starting fresh")
		return d
	}
	if loaded.URLs == nil {
		loaded.URLs = make(map[string]Entry)
	}
	if loaded.Metadata.Created == "" {
		loaded.Metadata.Created = d.data.Metadata.Created
	}
	d.data = loaded
	return d
}

func hashURL(url string) string {
	sum := md5.Sum([]byte(url))
	return hex.EncodeToString(sum[:])
}

// IsNewOrUpdated reports whether url has never been seen, or was seen with
// different content. An empty contentHash only checks presence.
func (d *ChangeDetector) IsNewOrUpdated(url, contentHash string) bool {
	entry, seen := d.data.URLs[hashURL(url)]
	if !seen {
		return true
	}
	if contentHash == "" {
		return false
	}
	return entry.ContentHash != contentHash
}

// MarkSeen records url (and optionally its content hash) as seen now.
func (d *ChangeDetector) MarkSeen(url, contentHash string) {
	d.data.URLs[hashURL(url)] = Entry{
		URL:         url,
		LastSeen:    time.Now().UTC().Format(time.RFC3339),
		ContentHash: contentHash,
	}
}

// FinishRun stamps the run time and bumps the run counter.
func (d *ChangeDetector) FinishRun() {
	d.data.LastRun = time.Now().UTC().Format(time.RFC3339)
	d.data.Metadata.TotalRuns++
}

// Known returns the number of URLs in the cache.
func (d *ChangeDetector) Known() int {
	return len(d.data.URLs)
}

// Save writes the cache back to disk.
func (d *ChangeDetector) Save() error {
	raw, err := json.MarshalIndent(d.data, "", "  ")
	if err != nil {
		return scrapeerr.NewCache("detector save", "failed to encode detector cache", err)
	}
	if dir := filepath.Dir(d.path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return scrapeerr.NewCache("detector save", "failed to create cache directory", err)
		}
	}
	if err := os.WriteFile(d.path, raw, 0644); err != nil {
		return scrapeerr.NewCache("detector save", "failed to write detector cache", err)
	}
	return nil
}
