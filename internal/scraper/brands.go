package scraper

import (
	"github.com/PuerkitoBio/goquery"

	"ukescout/reviewworker/internal/review"
)

// brandCloudSelector locates the brand tag-cloud widget. WordPress themes
// render it either as the classic widget or the block variant.
const brandCloudSelector = "div.widget_tag_cloud a, div.tagcloud a, p.wp-block-tag-cloud a"

// ExtractBrandCatalog parses the tag-cloud widget into a catalog of known
// brand names. The catalog is rebuilt on every run and only used as a lookup
// table for title matching.
func ExtractBrandCatalog(doc *goquery.Document) review.BrandCatalog {
	var names []string
	doc.Find(brandCloudSelector).Each(func(_ int, s *goquery.Selection) {
		names = append(names, s.Text())
	})
	return review.NewBrandCatalog(names)
}
