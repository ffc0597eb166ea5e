// Package storage defines the persistence interface and its implementations.
package storage

import (
	"context"
	"errors"
	"time"

	"rentwatch/internal/model"
)

// ErrNotFound is returned when a requested record does not exist.
var ErrNotFound = errors.New("not found")

// Storage is the interface for all persistence operations the pipeline
// requires.
type Storage interface {
	// Reference data lookups. A missing code is a configuration error
	// and aborts the run that needed it.
	SourceByCode(ctx context.Context, code string) (*model.ListingSource, error)
	StatusByCode(ctx context.Context, code string) (*model.ListingStatus, error)
	PropertyTypeByCode(ctx context.Context, code string) (*model.PropertyType, error)
	FurnishingTypeByCode(ctx context.Context, code string) (*model.FurnishingType, error)
	AgencyByExternalID(ctx context.Context, externalID string, sourceID int64) (*model.Agency, error)

	FindListing(ctx context.Context, sourceID int64, externalID string) (*model.Listing, error)
	SaveListing(ctx context.Context, listing *model.Listing) error
	SaveListingPhoto(ctx context.Context, photo *model.ListingPhoto) error
	ListingPhotos(ctx context.Context, listingID int64) ([]model.ListingPhoto, error)

	UpsertRawListing(ctx context.Context, raw *model.RawListing) error
	FindRawListing(ctx context.Context, sourceID int64, externalID string) (*model.RawListing, error)

	// MarkMissingInactive bulk-transitions every listing of the source
	// that is still in fromStatus but was last seen before cutoff into
	// toStatus, returning the number of rows changed.
	MarkMissingInactive(ctx context.Context, sourceID, fromStatusID, toStatusID int64, cutoff time.Time) (int64, error)

	Close() error
}
