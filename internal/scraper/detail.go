package scraper

import (
	"context"
	"strconv"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"rentwatch/internal/model"
	"rentwatch/internal/normalize"
)

// detailData holds everything extracted from one detail page.
type detailData struct {
	description        string
	areaM2             *float64
	rooms              *float64
	bedrooms           *float64
	bathrooms          *float64
	availableFrom      *time.Time
	minimumLeaseMonths *int
	furnishingTypeCode string
	propertyTypeCode   string
	postalCode         string
	houseNumber        string
	energyLabel        string
	deposit            *float64
	displayDeposit     string
	lat                *float64
	lon                *float64
	photoURLs          []string
}

// featureRule binds a lower-cased label substring to a setter. Rules are
// evaluated top to bottom per feature row; the first match wins and
// unmatched labels are ignored.
type featureRule struct {
	substr string
	apply  func(s *Scraper, d *detailData, value string)
}

var featureRules = []featureRule{
	{"living area", func(_ *Scraper, d *detailData, v string) { d.areaM2 = normalize.Number(v) }},
	{"number of rooms", func(_ *Scraper, d *detailData, v string) { d.rooms = normalize.Number(v) }},
	{"number of bedrooms", func(_ *Scraper, d *detailData, v string) { d.bedrooms = normalize.Number(v) }},
	{"number of bathrooms", func(_ *Scraper, d *detailData, v string) { d.bathrooms = normalize.Number(v) }},
	{"available", func(s *Scraper, d *detailData, v string) { d.availableFrom = normalize.AvailableDate(v, s.now()) }},
	{"energy rating", func(_ *Scraper, d *detailData, v string) { d.energyLabel = strings.TrimSpace(v) }},
	{"type of house", func(_ *Scraper, d *detailData, v string) { d.propertyTypeCode = normalize.PropertyType(v) }},
	{"interior", func(_ *Scraper, d *detailData, v string) { d.furnishingTypeCode = normalize.Furnishing(v) }},
	{"furnishing", func(_ *Scraper, d *detailData, v string) { d.furnishingTypeCode = normalize.Furnishing(v) }},
	{"postal code", func(_ *Scraper, d *detailData, v string) { d.postalCode = strings.TrimSpace(v) }},
	{"house number", func(_ *Scraper, d *detailData, v string) { d.houseNumber = strings.TrimSpace(v) }},
	{"deposit", func(_ *Scraper, d *detailData, v string) {
		d.deposit = normalize.Number(v)
		d.displayDeposit = strings.TrimSpace(v)
	}},
	{"duration", func(_ *Scraper, d *detailData, v string) { d.minimumLeaseMonths = normalize.DurationMonths(v) }},
}

// fetchDetail downloads a listing's detail page and extracts the full
// attribute set. Only the fetch itself can fail; every extraction step
// degrades to a zero value.
func (s *Scraper) fetchDetail(ctx context.Context, pageURL string) (*detailData, error) {
	doc, err := s.fetcher.FetchDocument(ctx, pageURL)
	if err != nil {
		return nil, err
	}

	d := &detailData{}

	if desc := doc.Find(".listing-detail-description__content").First(); desc.Length() > 0 {
		d.description = strings.TrimSpace(desc.Text())
	} else {
		d.description = text(doc.Selection, ".listing-detail-description, .listing-detail__description")
	}

	if loc := text(doc.Selection, ".listing-detail-summary__location"); loc != "" {
		d.postalCode = normalize.Postcode(loc)
	}

	s.parseCoordinates(doc, d, pageURL)
	s.parseFeatures(doc, d)
	d.photoURLs = collectPhotos(doc, pageURL)

	s.log.Debug("parsed detail page", "url", pageURL,
		"photos", len(d.photoURLs), "postal_code", d.postalCode)
	return d, nil
}

func (s *Scraper) parseCoordinates(doc *goquery.Document, d *detailData, pageURL string) {
	mapEl := doc.Find("wc-detail-map[data-latitude][data-longitude]").First()
	if mapEl.Length() == 0 {
		return
	}
	if v := strings.TrimSpace(mapEl.AttrOr("data-latitude", "")); v != "" {
		if lat, err := strconv.ParseFloat(v, 64); err == nil {
			d.lat = &lat
		} else {
			s.log.Warn("unparsable latitude on detail page", "url", pageURL, "value", v)
		}
	}
	if v := strings.TrimSpace(mapEl.AttrOr("data-longitude", "")); v != "" {
		if lon, err := strconv.ParseFloat(v, 64); err == nil {
			d.lon = &lon
		} else {
			s.log.Warn("unparsable longitude on detail page", "url", pageURL, "value", v)
		}
	}
}

// parseFeatures scans every feature list on the page. Each row is a
// dt label followed by its dd value; rows whose label matches no rule
// are ignored.
func (s *Scraper) parseFeatures(doc *goquery.Document, d *detailData) {
	doc.Find(".listing-features__list").Each(func(_ int, list *goquery.Selection) {
		list.Find("dt.listing-features__term").Each(func(_ int, term *goquery.Selection) {
			dd := term.Next()
			if dd.Length() == 0 {
				return
			}
			value := dd.Text()
			if main := dd.Find(".listing-features__main-description").First(); main.Length() > 0 {
				value = main.Text()
			}
			value = strings.TrimSpace(value)
			label := strings.ToLower(strings.TrimSpace(term.Text()))
			for _, rule := range featureRules {
				if strings.Contains(label, rule.substr) {
					rule.apply(s, d, value)
					break
				}
			}
		})
	})
}

// collectPhotos prefers the primary image carousel, including the lazy
// template images, and falls back to a generic gallery selector only
// when the carousel yields nothing. URLs are absolute and deduplicated.
func collectPhotos(doc *goquery.Document, pageURL string) []string {
	var photos []string
	seen := map[string]bool{}
	add := func(src string) {
		u := absURL(pageURL, src)
		if u == "" || seen[u] {
			return
		}
		seen[u] = true
		photos = append(photos, u)
	}

	carousel := doc.Find("wc-carrousel.carrousel--listing-detail").First()
	if carousel.Length() > 0 {
		carousel.Find("img.picture__image").Each(func(_ int, img *goquery.Selection) {
			add(img.AttrOr("src", ""))
		})
		carousel.Find("wc-picture > template").Each(func(_ int, tpl *goquery.Selection) {
			tpl.Find("img.picture__image").Each(func(_ int, img *goquery.Selection) {
				add(img.AttrOr("src", ""))
			})
		})
	}

	if len(photos) == 0 {
		doc.Find(".gallery img, .listing-detail__gallery img").Each(func(_ int, img *goquery.Selection) {
			add(img.AttrOr("src", ""))
		})
	}
	return photos
}

// mergeInto copies the detail fields onto the scraped listing and derives
// the lease window end when both its inputs are present.
func (d *detailData) mergeInto(listing *model.ScrapedListing) {
	listing.Description = d.description
	listing.AreaM2 = d.areaM2
	listing.Rooms = d.rooms
	listing.Bedrooms = d.bedrooms
	listing.Bathrooms = d.bathrooms
	listing.AvailableFrom = d.availableFrom
	listing.MinimumLeaseMonths = d.minimumLeaseMonths
	listing.FurnishingTypeCode = d.furnishingTypeCode
	listing.PropertyTypeCode = d.propertyTypeCode
	listing.PostalCode = d.postalCode
	listing.HouseNumber = d.houseNumber
	listing.EnergyLabel = d.energyLabel
	listing.Deposit = d.deposit
	listing.DisplayDeposit = d.displayDeposit
	listing.Lat = d.lat
	listing.Lon = d.lon
	listing.PhotoURLs = d.photoURLs

	if d.availableFrom != nil && d.minimumLeaseMonths != nil {
		until := d.availableFrom.AddDate(0, *d.minimumLeaseMonths, 0)
		listing.AvailableUntil = &until
	}
}
