package scraper

import (
	"net/url"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"

	"ukescout/reviewworker/helpers"
	"ukescout/reviewworker/internal/review"
)

// contentSelector locates the main content region of the index page
const contentSelector = "div.entry-content, main#main, article"

const (
	minLinkTextRunes = 5
	maxTrailingChars = 100
)

// ratingDateRegex matches the annotation trailing a review link: a decimal
// rating written as "N out of 10" or "N/10" followed by a parenthesised
// date string.
var ratingDateRegex = regexp.MustCompile(`(?i)(\d+(?:\.\d+)?)\s*(?:out\s+of\s+10|/10)\s*\(([^)]*)\)`)

// Candidate is one qualifying review anchor with its parsed annotation and
// the price bracket of its section heading.
type Candidate struct {
	Title      string
	URL        string
	Rating     float64
	DateText   string
	PriceRange string
}

// priceHeading is a price-section heading tagged with its document position
type priceHeading struct {
	pos      int
	category string
}

// ExtractReviewLinks walks the content region of the parsed index page and
// produces one candidate per anchor that points into the source domain, is
// not the index page itself, has link text of at least five characters, and
// is trailed by a recognizable rating/date annotation. Anchors whose
// trailing text fails the pattern are silently dropped.
func ExtractReviewLinks(doc *goquery.Document, source *url.URL) []Candidate {
	content := doc.Find(contentSelector).First()
	if content.Length() == 0 {
		content = doc.Selection
	}

	// One pass over headings and anchors together: goquery returns matches
	// in document order, so the shared index doubles as the document
	// position for the nearest-preceding-heading lookup.
	type positionedAnchor struct {
		pos   int
		sel   *goquery.Selection
		title string
		url   string
	}
	var headings []priceHeading
	var anchors []positionedAnchor

	content.Find("h1, h2, h3, h4, a[href]").Each(func(i int, s *goquery.Selection) {
		if goquery.NodeName(s) == "a" {
			if title, link, ok := qualifyAnchor(s, source); ok {
				anchors = append(anchors, positionedAnchor{pos: i, sel: s, title: title, url: link})
			}
			return
		}
		if category := review.PriceRangeFromText(s.Text()); category != review.PriceUnknown {
			headings = append(headings, priceHeading{pos: i, category: category})
		}
	})

	headingPositions := make([]int, len(headings))
	for i, h := range headings {
		headingPositions[i] = h.pos
	}

	var candidates []Candidate
	for _, a := range anchors {
		match := ratingDateRegex.FindStringSubmatch(trailingText(a.sel))
		if match == nil {
			continue
		}
		rating, err := strconv.ParseFloat(match[1], 64)
		if err != nil {
			continue
		}
		candidates = append(candidates, Candidate{
			Title:      a.title,
			URL:        a.url,
			Rating:     rating,
			DateText:   match[2],
			PriceRange: priceRangeAt(headings, headingPositions, a.pos),
		})
	}
	return candidates
}

// priceRangeAt resolves the heading with the largest position that is still
// at or before the anchor, by binary search over the sorted heading
// positions. The first heading is the fallback when none precedes the
// anchor; with no headings at all the bracket stays unknown.
func priceRangeAt(headings []priceHeading, positions []int, anchorPos int) string {
	if len(headings) == 0 {
		return review.PriceUnknown
	}
	idx := sort.SearchInts(positions, anchorPos+1)
	if idx == 0 {
		return headings[0].category
	}
	return headings[idx-1].category
}

// qualifyAnchor filters out anchors that cannot be review links
func qualifyAnchor(s *goquery.Selection, source *url.URL) (title, link string, ok bool) {
	href, exists := s.Attr("href")
	if !exists {
		return "", "", false
	}
	resolved, err := source.Parse(strings.TrimSpace(href))
	if err != nil {
		return "", "", false
	}
	if !sameHost(resolved.Host, source.Host) {
		return "", "", false
	}

	// The index page itself and other top-level links are not reviews
	path := strings.TrimSuffix(resolved.Path, "/")
	if path == "" || path == strings.TrimSuffix(source.Path, "/") {
		return "", "", false
	}

	title = helpers.CollapseWhitespace(s.Text())
	if utf8.RuneCountInString(title) < minLinkTextRunes {
		return "", "", false
	}

	resolved.Fragment = ""
	return title, resolved.String(), true
}

func sameHost(a, b string) bool {
	return strings.TrimPrefix(a, "www.") == strings.TrimPrefix(b, "www.")
}

// trailingText accumulates sibling text after the anchor until a line-break
// or paragraph boundary, or until the character budget is reached. An anchor
// nested in a bold element is flattened: the scan continues from the bold
// element's siblings instead.
func trailingText(s *goquery.Selection) string {
	if len(s.Nodes) == 0 {
		return ""
	}
	node := s.Nodes[0]
	if p := node.Parent; p != nil && p.Type == html.ElementNode && (p.Data == "b" || p.Data == "strong") {
		node = p
	}

	var b strings.Builder
	for n := node.NextSibling; n != nil; n = n.NextSibling {
		if n.Type == html.ElementNode && (n.Data == "br" || n.Data == "p") {
			break
		}
		b.WriteString(nodeText(n))
		if b.Len() >= maxTrailingChars {
			break
		}
	}
	return helpers.CollapseWhitespace(truncateRunes(b.String(), maxTrailingChars))
}

// truncateRunes caps the accumulated text at the character budget; anything
// past it is never considered part of the annotation.
func truncateRunes(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}

func nodeText(n *html.Node) string {
	if n.Type == html.TextNode {
		return n.Data
	}
	var b strings.Builder
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		b.WriteString(nodeText(c))
	}
	return b.String()
}
