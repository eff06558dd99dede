package review

import "reflect"

// Diff classifies the current review set against the previous one, keyed by
// review URL. New entries carry the full record, removed entries only the
// URL, and updated entries both versions when the records differ by deep
// equality. It is a pure function of its inputs.
func Diff(previous, current []Review) DiffReport {
	report := DiffReport{
		New:     []Review{},
		Removed: []string{},
		Updated: []ReviewChange{},
	}

	previousByURL := make(map[string]Review, len(previous))
	for _, r := range previous {
		previousByURL[r.URL] = r
	}

	currentURLs := make(map[string]bool, len(current))
	for _, r := range current {
		currentURLs[r.URL] = true

		prev, ok := previousByURL[r.URL]
		if !ok {
			report.New = append(report.New, r)
			continue
		}
		if !reflect.DeepEqual(prev, r) {
			report.Updated = append(report.Updated, ReviewChange{
				URL:      r.URL,
				Previous: prev,
				Current:  r,
			})
		}
	}

	for _, r := range previous {
		if !currentURLs[r.URL] {
			report.Removed = append(report.Removed, r.URL)
		}
	}

	return report
}
