// Package ingest drives one crawl run: pagination, per-item upsert
// reconciliation, and the stale sweep that retires listings the run no
// longer observed.
package ingest

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"rentwatch/internal/contenthash"
	"rentwatch/internal/model"
	"rentwatch/internal/scraper"
	"rentwatch/internal/storage"
)

// agencyExternalID is the seeded agency all crawled listings belong to.
const agencyExternalID = "PARARIUS_AGENCY"

// Notifier receives newly created listings. Implementations must not
// block the run on delivery failures.
type Notifier interface {
	ListingCreated(listing *model.Listing, item model.ScrapedListing)
}

// Ingestor runs the crawl-and-reconcile pipeline against the store.
type Ingestor struct {
	store    storage.Storage
	scraper  *scraper.Scraper
	notifier Notifier
	log      *slog.Logger
	now      func() time.Time
}

// New creates an Ingestor.
func New(store storage.Storage, scr *scraper.Scraper, log *slog.Logger) *Ingestor {
	return &Ingestor{
		store:   store,
		scraper: scr,
		log:     log,
		now:     time.Now,
	}
}

// SetNotifier attaches a notifier for newly created listings.
func (i *Ingestor) SetNotifier(n Notifier) {
	i.notifier = n
}

// SetNow overrides the clock (useful for testing the stale cutoff).
func (i *Ingestor) SetNow(now func() time.Time) {
	i.now = now
}

// Run crawls up to maxPages search pages for the city and reconciles the
// results. Page-fetch failures and missing reference data abort the run;
// every per-item failure is logged, counted, and skipped. The stale sweep
// uses the run's start time as cutoff, so listings re-observed during
// this run are never deactivated by it.
func (i *Ingestor) Run(ctx context.Context, citySlug string, maxPages int) (*model.RunStats, error) {
	source, err := i.store.SourceByCode(ctx, scraper.SourceCode)
	if err != nil {
		return nil, fmt.Errorf("resolve source: %w", err)
	}
	active, err := i.store.StatusByCode(ctx, model.StatusActive)
	if err != nil {
		return nil, fmt.Errorf("resolve active status: %w", err)
	}
	removed, err := i.store.StatusByCode(ctx, model.StatusRemoved)
	if err != nil {
		return nil, fmt.Errorf("resolve removed status: %w", err)
	}

	agency, err := i.store.AgencyByExternalID(ctx, agencyExternalID, source.ID)
	if errors.Is(err, storage.ErrNotFound) {
		i.log.Warn("agency not found, listings will have no agency", "external_id", agencyExternalID)
		agency = nil
	} else if err != nil {
		return nil, fmt.Errorf("resolve agency: %w", err)
	}

	stats := &model.RunStats{
		CitySlug:  citySlug,
		StartedAt: i.now().UTC(),
	}
	cutoff := stats.StartedAt

	i.log.Info("starting crawl run", "city", citySlug, "max_pages", maxPages)

	for page := 1; page <= maxPages; page++ {
		res, err := i.scraper.ScrapePage(ctx, citySlug, page)
		if err != nil {
			return nil, fmt.Errorf("page %d: %w", page, err)
		}
		stats.Pages++

		if len(res.Items) == 0 && res.Skipped == 0 {
			i.log.Info("no listings on page, stopping pagination", "city", citySlug, "page", page)
			break
		}

		stats.ItemsSeen += len(res.Items) + res.Skipped
		stats.Skipped += res.Skipped

		for _, item := range res.Items {
			listing, created, err := i.upsertOne(ctx, source, active, agency, item)
			if err != nil {
				i.log.Error("upsert listing", "external_id", item.ExternalID,
					"url", item.CanonicalURL, "error", err)
				stats.Failed++
				continue
			}
			if created {
				stats.Created++
				if i.notifier != nil {
					i.notifier.ListingCreated(listing, item)
				}
			} else {
				stats.Updated++
			}
		}
	}

	deactivated, err := i.store.MarkMissingInactive(ctx, source.ID, active.ID, removed.ID, cutoff)
	if err != nil {
		return nil, fmt.Errorf("stale sweep: %w", err)
	}
	stats.Deactivated = int(deactivated)

	i.log.Info("finished crawl run", "city", citySlug,
		"pages", stats.Pages, "items", stats.ItemsSeen, "created", stats.Created,
		"updated", stats.Updated, "skipped", stats.Skipped, "failed", stats.Failed,
		"deactivated", stats.Deactivated)
	return stats, nil
}

// upsertOne finds-or-creates the canonical listing for the item,
// overwrites its fields, refreshes the raw snapshot, and persists the
// photo rows. Returns whether the listing was newly created.
func (i *Ingestor) upsertOne(ctx context.Context, source *model.ListingSource, active *model.ListingStatus, agency *model.Agency, item model.ScrapedListing) (*model.Listing, bool, error) {
	hash := contenthash.Compute(item)
	now := i.now().UTC()

	raw := &model.RawListing{
		SourceID:    source.ID,
		ExternalID:  item.ExternalID,
		URL:         item.CanonicalURL,
		FetchedAt:   now,
		PayloadJSON: i.payloadJSON(item),
		ContentHash: hash,
	}
	if err := i.store.UpsertRawListing(ctx, raw); err != nil {
		return nil, false, fmt.Errorf("raw snapshot: %w", err)
	}

	listing, err := i.store.FindListing(ctx, source.ID, item.ExternalID)
	created := false
	if errors.Is(err, storage.ErrNotFound) {
		listing = &model.Listing{}
		created = true
	} else if err != nil {
		return nil, false, fmt.Errorf("find listing: %w", err)
	}

	listing.SourceID = source.ID
	listing.ExternalID = item.ExternalID
	listing.StatusID = active.ID
	if agency != nil {
		id := agency.ID
		listing.AgencyID = &id
	}

	listing.CanonicalURL = item.CanonicalURL
	listing.Title = item.Title
	listing.Description = item.Description
	listing.EnergyLabel = item.EnergyLabel

	listing.RentAmount = item.RentAmount
	listing.RentPeriod = item.RentPeriod
	listing.Deposit = item.Deposit
	listing.AreaM2 = item.AreaM2
	listing.Rooms = item.Rooms
	listing.Bedrooms = item.Bedrooms
	listing.Bathrooms = item.Bathrooms

	listing.AvailableFrom = item.AvailableFrom
	listing.AvailableUntil = item.AvailableUntil
	listing.MinimumLeaseMonths = item.MinimumLeaseMonths

	listing.Country = item.Country
	listing.City = item.City
	listing.PostalCode = item.PostalCode
	listing.Street = item.Street
	listing.HouseNumber = item.HouseNumber
	listing.Lat = item.Lat
	listing.Lon = item.Lon

	if err := i.applyReferenceCodes(ctx, listing, item); err != nil {
		return nil, false, err
	}

	// Curated flag: forced off on creation only, later edits survive
	// re-observation.
	if created {
		listing.PetsAllowed = false
	}
	listing.ContentHash = hash

	if len(item.PhotoURLs) > 0 {
		listing.PrimaryPhotoURL = item.PhotoURLs[0]
		listing.PhotosCount = len(item.PhotoURLs)
	} else {
		listing.PrimaryPhotoURL = item.ThumbnailURL
		listing.PhotosCount = 0
	}

	if listing.FirstSeenAt.IsZero() {
		listing.FirstSeenAt = now
	}
	listing.LastSeenAt = now

	if err := i.store.SaveListing(ctx, listing); err != nil {
		return nil, false, fmt.Errorf("save listing: %w", err)
	}

	for pos, url := range item.PhotoURLs {
		photo := &model.ListingPhoto{
			ListingID: listing.ID,
			PhotoURL:  url,
			Position:  pos,
		}
		if err := i.store.SaveListingPhoto(ctx, photo); err != nil {
			i.log.Warn("save photo", "listing_id", listing.ID, "url", url, "error", err)
		}
	}

	i.log.Debug("upsert complete", "external_id", item.ExternalID,
		"listing_id", listing.ID, "created", created)
	return listing, created, nil
}

// applyReferenceCodes resolves the normalized type codes to reference
// rows. An unknown code leaves the previous value untouched; only a
// store failure propagates.
func (i *Ingestor) applyReferenceCodes(ctx context.Context, listing *model.Listing, item model.ScrapedListing) error {
	if item.PropertyTypeCode != "" {
		pt, err := i.store.PropertyTypeByCode(ctx, item.PropertyTypeCode)
		switch {
		case err == nil:
			listing.PropertyTypeID = &pt.ID
		case !errors.Is(err, storage.ErrNotFound):
			return fmt.Errorf("property type: %w", err)
		}
	}
	if item.FurnishingTypeCode != "" {
		ft, err := i.store.FurnishingTypeByCode(ctx, item.FurnishingTypeCode)
		switch {
		case err == nil:
			listing.FurnishingTypeID = &ft.ID
		case !errors.Is(err, storage.ErrNotFound):
			return fmt.Errorf("furnishing type: %w", err)
		}
	}
	return nil
}

// payloadJSON serializes the scraped item for the raw snapshot. On
// failure a minimal fallback payload is substituted so the upsert still
// proceeds.
func (i *Ingestor) payloadJSON(item model.ScrapedListing) string {
	b, err := json.Marshal(item)
	if err != nil {
		i.log.Error("serialize scraped listing", "external_id", item.ExternalID, "error", err)
		return fmt.Sprintf(`{"externalId":%q,"error":"serialization failed"}`, item.ExternalID)
	}
	return string(b)
}
