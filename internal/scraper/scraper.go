// Package scraper extracts listing data from marketplace search-result
// and detail pages. The markup has no guaranteed schema, so every lookup
// is optional: a missing element degrades the field instead of failing
// the record.
package scraper

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"rentwatch/internal/fetcher"
	"rentwatch/internal/model"
	"rentwatch/internal/normalize"
)

// DefaultBaseURL is the marketplace origin.
const DefaultBaseURL = "https://www.pararius.com"

// SourceCode identifies this marketplace in the store.
const SourceCode = "PARARIUS"

// PageResult is the outcome of parsing one search-result page.
type PageResult struct {
	Items   []model.ScrapedListing
	Skipped int
}

// Scraper fetches and parses search-result pages and the detail pages
// they link to.
type Scraper struct {
	fetcher *fetcher.Fetcher
	baseURL string
	log     *slog.Logger
	now     func() time.Time
}

// New creates a Scraper against the default marketplace origin.
func New(f *fetcher.Fetcher, log *slog.Logger) *Scraper {
	return &Scraper{
		fetcher: f,
		baseURL: DefaultBaseURL,
		log:     log,
		now:     time.Now,
	}
}

// SetBaseURL overrides the marketplace origin (useful for testing).
func (s *Scraper) SetBaseURL(u string) {
	s.baseURL = strings.TrimRight(u, "/")
}

// SetNow overrides the clock used for "immediately" availability dates.
func (s *Scraper) SetNow(now func() time.Time) {
	s.now = now
}

// PageURL returns the search-result URL for a city slug and page number.
func (s *Scraper) PageURL(citySlug string, page int) string {
	return fmt.Sprintf("%s/apartments/%s/page-%d", s.baseURL, citySlug, page)
}

// ScrapePage fetches one search-result page and parses every summary
// item on it. A page fetch failure is returned; individual item failures
// are logged, counted in Skipped, and never abort the page. Zero items
// means the end of pagination, not an error.
func (s *Scraper) ScrapePage(ctx context.Context, citySlug string, page int) (*PageResult, error) {
	pageURL := s.PageURL(citySlug, page)
	s.log.Debug("fetching search page", "city", citySlug, "page", page, "url", pageURL)

	doc, err := s.fetcher.FetchDocument(ctx, pageURL)
	if err != nil {
		return nil, err
	}

	res := &PageResult{}
	doc.Find(".listing-search-item").Each(func(_ int, item *goquery.Selection) {
		listing, err := s.parseItem(ctx, item)
		if err != nil {
			s.log.Error("parse listing item", "city", citySlug, "page", page, "error", err)
			res.Skipped++
			return
		}
		if listing == nil {
			s.log.Warn("listing item without usable link, skipping", "city", citySlug, "page", page)
			res.Skipped++
			return
		}
		res.Items = append(res.Items, *listing)
	})

	s.log.Debug("parsed search page", "city", citySlug, "page", page,
		"items", len(res.Items), "skipped", res.Skipped)
	return res, nil
}

// parseItem parses one summary item and its detail page. A nil, nil
// return means the item has no link and should be skipped.
func (s *Scraper) parseItem(ctx context.Context, item *goquery.Selection) (*model.ScrapedListing, error) {
	link := item.Find(".listing-search-item__link, a[href]").First()
	if link.Length() == 0 {
		return nil, nil
	}
	href := strings.TrimSpace(link.AttrOr("href", ""))
	if href == "" {
		return nil, nil
	}

	fullURL := href
	if !strings.HasPrefix(href, "http") {
		fullURL = s.baseURL + href
	}
	externalID := strings.Trim(href, "/")

	listing := model.ScrapedListing{
		ExternalID:   externalID,
		SourceCode:   SourceCode,
		CanonicalURL: fullURL,
		Title:        text(item, ".listing-search-item__title"),
		Country:      "NL",
	}

	priceText := text(item, ".listing-search-item__price")
	listing.DisplayPrice = priceText
	listing.RentAmount = normalize.Price(priceText)
	if strings.Contains(strings.ToLower(priceText), "per month") {
		listing.RentPeriod = model.RentPerMonth
	}

	if location := text(item, ".listing-search-item__location"); location != "" {
		parts := strings.Split(location, ",")
		listing.Street = strings.TrimSpace(parts[0])
		if len(parts) >= 2 {
			listing.City = strings.TrimSpace(parts[1])
		}
	}

	if img := item.Find("img").First(); img.Length() > 0 {
		listing.ThumbnailURL = absURL(s.baseURL, img.AttrOr("src", ""))
	}

	detail, err := s.fetchDetail(ctx, fullURL)
	if err != nil {
		return nil, fmt.Errorf("detail page for %s: %w", externalID, err)
	}
	detail.mergeInto(&listing)

	if len(listing.PhotoURLs) == 0 && listing.ThumbnailURL != "" {
		listing.PhotoURLs = []string{listing.ThumbnailURL}
	}

	return &listing, nil
}

// text returns the trimmed text of the first node matching selector, or "".
func text(root *goquery.Selection, selector string) string {
	return strings.TrimSpace(root.Find(selector).First().Text())
}

// absURL resolves src against base and returns "" for anything that does
// not end up as an absolute http(s) URL.
func absURL(base, src string) string {
	src = strings.TrimSpace(src)
	if src == "" {
		return ""
	}
	if strings.HasPrefix(src, "http") {
		return src
	}
	b, err := url.Parse(base)
	if err != nil {
		return ""
	}
	ref, err := url.Parse(src)
	if err != nil {
		return ""
	}
	resolved := b.ResolveReference(ref).String()
	if !strings.HasPrefix(resolved, "http") {
		return ""
	}
	return resolved
}
