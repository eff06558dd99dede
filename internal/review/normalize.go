package review

import (
	"fmt"
	"regexp"
	"sort"
	"strings"
)

// sizeExceptions maps model-name tokens to a forced size. The Enya EUC line
// carries no size keyword in its titles but is sold as a concert.
var sizeExceptions = map[string]string{
	"euc": SizeConcert,
}

// sizeKeywords is checked in fixed priority order; the first keyword found
// anywhere in the title wins, even when a later one also appears.
var sizeKeywords = []struct {
	keyword string
	size    string
}{
	{"soprano", SizeSoprano},
	{"sopranino", SizeSopranino},
	{"concert", SizeConcert},
	{"tenor", SizeTenor},
	{"baritone", SizeBaritone},
}

// SizeFromTitle derives the size category from a review title
func SizeFromTitle(title string) string {
	lower := strings.ToLower(title)

	for _, token := range strings.Fields(lower) {
		base, _, _ := strings.Cut(token, "-")
		if size, ok := sizeExceptions[base]; ok {
			return size
		}
	}

	for _, k := range sizeKeywords {
		if strings.Contains(lower, k.keyword) {
			return k.size
		}
	}
	return SizeOther
}

func isSizeKeyword(word string) bool {
	lower := strings.ToLower(word)
	for _, k := range sizeKeywords {
		if lower == k.keyword {
			return true
		}
	}
	return false
}

// BrandCatalog is a set of known brand names, uppercase, ordered longest
// first so multi-word brands win over their prefixes. It is built once per
// scrape run and threaded through extraction calls.
type BrandCatalog []string

// NewBrandCatalog normalizes raw widget link texts into a catalog
func NewBrandCatalog(names []string) BrandCatalog {
	seen := make(map[string]bool, len(names))
	var catalog BrandCatalog
	for _, name := range names {
		name = strings.ToUpper(strings.TrimSpace(name))
		if name == "" || seen[name] {
			continue
		}
		seen[name] = true
		catalog = append(catalog, name)
	}
	sort.SliceStable(catalog, func(i, j int) bool {
		return len(catalog[i]) > len(catalog[j])
	})
	return catalog
}

// Match returns the longest catalog brand contained in the title, or ""
func (c BrandCatalog) Match(title string) string {
	upper := strings.ToUpper(title)
	for _, brand := range c {
		if strings.Contains(upper, brand) {
			return brand
		}
	}
	return ""
}

// BrandFromTitle derives the brand from a review title. When no catalog
// brand matches, the first whitespace-delimited token is used, uppercased.
func BrandFromTitle(title string, catalog BrandCatalog) string {
	if brand := catalog.Match(title); brand != "" {
		return brand
	}
	fields := strings.Fields(title)
	if len(fields) == 0 {
		return ""
	}
	return strings.ToUpper(fields[0])
}

// UnknownModel is the sentinel for titles that reduce to nothing
const UnknownModel = "Unknown Model"

var modelSuffixWords = map[string]bool{
	"ukulele":  true,
	"ukuleles": true,
	"uke":      true,
	"review":   true,
}

// ModelFromTitle derives the model from a review title: the matched brand
// prefix and generic suffix words are stripped, and a trailing size keyword
// is dropped when more than one token remains.
func ModelFromTitle(title, brand string) string {
	model := strings.TrimSpace(title)
	if brand != "" && strings.HasPrefix(strings.ToUpper(model), brand) {
		model = strings.TrimSpace(model[len(brand):])
	}

	words := strings.Fields(model)
	for len(words) > 0 && modelSuffixWords[strings.ToLower(words[len(words)-1])] {
		words = words[:len(words)-1]
	}
	if len(words) > 1 && isSizeKeyword(words[len(words)-1]) {
		words = words[:len(words)-1]
	}

	model = strings.Join(words, " ")
	if model == "" {
		return UnknownModel
	}
	return model
}

var (
	monthYearRegex = regexp.MustCompile(`(?i)\b(jan|feb|mar|apr|may|jun|jul|aug|sep|oct|nov|dec)[a-z]*\s+(\d{4})\b`)
	bareYearRegex  = regexp.MustCompile(`\b(\d{4})\b`)

	monthNumbers = map[string]string{
		"jan": "01", "feb": "02", "mar": "03", "apr": "04",
		"may": "05", "jun": "06", "jul": "07", "aug": "08",
		"sep": "09", "oct": "10", "nov": "11", "dec": "12",
	}
)

// ParseReviewDate parses free-text dates into ISO calendar dates. A month
// plus year maps to the first of that month, a bare year to January 1st;
// anything else is null. No day-level precision is ever recovered.
func ParseReviewDate(text string) *string {
	if m := monthYearRegex.FindStringSubmatch(text); m != nil {
		date := fmt.Sprintf("%s-%s-01", m[2], monthNumbers[strings.ToLower(m[1])])
		return &date
	}
	if m := bareYearRegex.FindStringSubmatch(text); m != nil {
		date := m[1] + "-01-01"
		return &date
	}
	return nil
}

// PriceRangeFromText maps a price-section heading text to a bracket
// category. Currency symbols are stripped and substrings are matched in
// fixed priority order; unmatched text maps to "unknown".
func PriceRangeFromText(text string) string {
	cleaned := strings.ToLower(text)
	for _, symbol := range []string{"£", "$", "€", ","} {
		cleaned = strings.ReplaceAll(cleaned, symbol, "")
	}
	cleaned = strings.TrimSpace(cleaned)

	switch {
	case strings.Contains(cleaned, "500") && (strings.Contains(cleaned, "plus") || strings.Contains(cleaned, "+")):
		return Price500Plus
	case strings.Contains(cleaned, "200 -") || strings.Contains(cleaned, "200-"):
		return Price200To500
	case strings.Contains(cleaned, "100 -") || strings.Contains(cleaned, "100-"):
		return Price100To200
	case strings.Contains(cleaned, "50-") || strings.Contains(cleaned, "50 -"):
		return Price50To100
	case strings.Contains(cleaned, "0 -") || strings.HasPrefix(cleaned, "0-"):
		return PriceUnder50
	default:
		return PriceUnknown
	}
}
