package scraper

import (
	"net/url"
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ukescout/reviewworker/internal/review"
)

func parsePage(t *testing.T, html string) *goquery.Document {
	t.Helper()
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	require.NoError(t, err)
	return doc
}

func sourceURL(t *testing.T) *url.URL {
	t.Helper()
	u, err := url.Parse("https://www.example.com/uke-reviews/")
	require.NoError(t, err)
	return u
}

func TestExtractReviewLinks(t *testing.T) {
	html := `
		<html><body><div class="entry-content">
		<p>Welcome back to the <a href="https://www.example.com/uke-reviews/">review index</a>.</p>
		<h2>Ukuleles £50 - £100</h2>
		<p>
			<a href="/reviews/kala-ka-s/">Kala KA-S Soprano Ukulele</a> - 8.5 out of 10 (Mar 2021)<br>
			<b><a href="/reviews/enya-euc-ms/">Enya EUC-ms</a></b> - 9/10 (2019)<br>
			<a href="/reviews/silent-page/">Some other page entirely</a> - no rating on this one<br>
			<a href="/r/x">tiny</a> 8 out of 10 (2020)<br>
			<a href="https://elsewhere.com/reviews/offsite-uke/">Offsite Brand Uke</a> - 7 out of 10 (2018)
		</p>
		<h2>Ukuleles £200 - £500</h2>
		<p>
			<a href="/reviews/martin-t1k/">Martin T1K Tenor Ukulele</a> - 9.1 out of 10 (Jun 2020)
		</p>
		</div></body></html>
	`
	candidates := ExtractReviewLinks(parsePage(t, html), sourceURL(t))

	require.Len(t, candidates, 3)

	assert.Equal(t, "Kala KA-S Soprano Ukulele", candidates[0].Title)
	assert.Equal(t, "https://www.example.com/reviews/kala-ka-s/", candidates[0].URL)
	assert.Equal(t, 8.5, candidates[0].Rating)
	assert.Equal(t, "Mar 2021", candidates[0].DateText)
	assert.Equal(t, review.Price50To100, candidates[0].PriceRange)

	// Anchor nested in a bold element: the trailing text scan flattens
	// through the bold wrapper
	assert.Equal(t, "Enya EUC-ms", candidates[1].Title)
	assert.Equal(t, 9.0, candidates[1].Rating)
	assert.Equal(t, "2019", candidates[1].DateText)

	assert.Equal(t, "Martin T1K Tenor Ukulele", candidates[2].Title)
	assert.Equal(t, review.Price200To500, candidates[2].PriceRange)
}

func TestExtractReviewLinksHeadingAttribution(t *testing.T) {
	// Three anchors positioned after the second heading must all carry the
	// second heading's bracket, not the first
	html := `
		<html><body><div class="entry-content">
		<h2>Ukuleles £0 - £50</h2>
		<p><a href="/reviews/cheap-uke/">Budget Brand Soprano</a> - 6 out of 10 (2017)</p>
		<h2>Ukuleles £100 - £200</h2>
		<p>
			<a href="/reviews/mid-one/">Mid One Concert</a> - 8 out of 10 (2020)<br>
			<a href="/reviews/mid-two/">Mid Two Tenor</a> - 8.5 out of 10 (2021)<br>
			<a href="/reviews/mid-three/">Mid Three Soprano</a> - 7/10 (2022)
		</p>
		</div></body></html>
	`
	candidates := ExtractReviewLinks(parsePage(t, html), sourceURL(t))

	require.Len(t, candidates, 4)
	assert.Equal(t, review.PriceUnder50, candidates[0].PriceRange)
	for _, c := range candidates[1:] {
		assert.Equal(t, review.Price100To200, c.PriceRange, "url: %s", c.URL)
	}
}

func TestExtractReviewLinksFirstHeadingFallback(t *testing.T) {
	// An anchor before any heading falls back to the first heading found
	html := `
		<html><body><div class="entry-content">
		<p><a href="/reviews/early-uke/">Early Bird Soprano</a> - 7 out of 10 (2016)</p>
		<h2>Ukuleles £50 - £100</h2>
		<p><a href="/reviews/later-uke/">Later Bird Concert</a> - 8 out of 10 (2019)</p>
		</div></body></html>
	`
	candidates := ExtractReviewLinks(parsePage(t, html), sourceURL(t))

	require.Len(t, candidates, 2)
	assert.Equal(t, review.Price50To100, candidates[0].PriceRange)
	assert.Equal(t, review.Price50To100, candidates[1].PriceRange)
}

func TestExtractReviewLinksNoHeadings(t *testing.T) {
	html := `
		<html><body><div class="entry-content">
		<p><a href="/reviews/lonely-uke/">Lonely Uke Soprano</a> - 7 out of 10 (2016)</p>
		</div></body></html>
	`
	candidates := ExtractReviewLinks(parsePage(t, html), sourceURL(t))

	require.Len(t, candidates, 1)
	assert.Equal(t, review.PriceUnknown, candidates[0].PriceRange)
}

func TestExtractReviewLinksStopsAtLineBreak(t *testing.T) {
	// The rating after the break belongs to the next entry, so this anchor
	// has no annotation of its own and is dropped
	html := `
		<html><body><div class="entry-content">
		<h2>Ukuleles £50 - £100</h2>
		<p><a href="/reviews/broken-uke/">Broken Annotation Uke</a> some trailing words<br>
		8 out of 10 (2021)</p>
		</div></body></html>
	`
	candidates := ExtractReviewLinks(parsePage(t, html), sourceURL(t))
	assert.Empty(t, candidates)
}

func TestExtractReviewLinksCharacterBudget(t *testing.T) {
	filler := strings.Repeat("filler words between the link and the rating ", 4)
	html := `
		<html><body><div class="entry-content">
		<h2>Ukuleles £50 - £100</h2>
		<p><a href="/reviews/far-rating/">Far Rating Uke</a> ` + filler + ` 8 out of 10 (2021)</p>
		</div></body></html>
	`
	candidates := ExtractReviewLinks(parsePage(t, html), sourceURL(t))
	assert.Empty(t, candidates)
}

func TestExtractReviewLinksNoContentRegion(t *testing.T) {
	// Without a recognizable content wrapper the whole document is scanned
	html := `
		<html><body>
		<h2>Ukuleles £50 - £100</h2>
		<p><a href="https://www.example.com/reviews/bare-uke/">Bare Page Soprano</a> - 8 out of 10 (2020)</p>
		</body></html>
	`
	candidates := ExtractReviewLinks(parsePage(t, html), sourceURL(t))

	require.Len(t, candidates, 1)
	assert.Equal(t, "https://www.example.com/reviews/bare-uke/", candidates[0].URL)
}
