// Package model defines the domain types used across the application.
package model

import "time"

// Listing status codes as seeded in the database.
const (
	StatusActive  = "ACTIVE"
	StatusRemoved = "REMOVED"
)

// Rent period codes.
const (
	RentPerMonth = "PER_MONTH"
)

// ListingSource is a reference row identifying a marketplace we crawl.
type ListingSource struct {
	ID   int64
	Code string
	Name string
}

// ListingStatus is a reference row for a listing lifecycle state.
type ListingStatus struct {
	ID   int64
	Code string
}

// PropertyType is a reference row for a normalized property type code.
type PropertyType struct {
	ID   int64
	Code string
}

// FurnishingType is a reference row for a normalized furnishing code.
type FurnishingType struct {
	ID   int64
	Code string
}

// Agency is the advertising agency a listing belongs to, identified by
// its external id within a source.
type Agency struct {
	ID         int64
	SourceID   int64
	ExternalID string
	Name       string
}

// Listing is the canonical mutable record, unique per (source, external id).
// It is created on first observation, overwritten on every later one, and
// never deleted, only transitioned to REMOVED.
type Listing struct {
	ID               int64
	SourceID         int64
	ExternalID       string
	StatusID         int64
	AgencyID         *int64
	CanonicalURL     string
	Title            string
	Description      string
	PropertyTypeID   *int64
	FurnishingTypeID *int64
	EnergyLabel      string

	RentAmount *float64
	RentPeriod string
	Deposit    *float64
	AreaM2     *float64
	Rooms      *float64
	Bedrooms   *float64
	Bathrooms  *float64

	AvailableFrom      *time.Time
	AvailableUntil     *time.Time
	MinimumLeaseMonths *int

	Country     string
	City        string
	PostalCode  string
	Street      string
	HouseNumber string
	Unit        string
	Lat         *float64
	Lon         *float64

	PrimaryPhotoURL string
	PhotosCount     int
	PetsAllowed     bool
	ContentHash     string

	FirstSeenAt time.Time
	LastSeenAt  time.Time
}

// ListingPhoto is an ordered child row of a listing, unique per
// (listing, photo URL). Position determines display order.
type ListingPhoto struct {
	ID        int64
	ListingID int64
	PhotoURL  string
	Position  int
}

// RawListing is the latest fetched snapshot per (source, external id),
// fully overwritten on every run.
type RawListing struct {
	ID          int64
	SourceID    int64
	ExternalID  string
	URL         string
	FetchedAt   time.Time
	PayloadJSON string
	ContentHash string
}

// ScrapedListing is the parse product of one search-result item combined
// with its detail page, before any persistence.
type ScrapedListing struct {
	ExternalID   string `json:"externalId"`
	SourceCode   string `json:"source"`
	CanonicalURL string `json:"canonicalUrl"`
	Title        string `json:"title"`
	Description  string `json:"description,omitempty"`

	DisplayPrice   string   `json:"displayPrice,omitempty"`
	DisplayDeposit string   `json:"displayDeposit,omitempty"`
	RentAmount     *float64 `json:"rentAmount,omitempty"`
	RentPeriod     string   `json:"rentPeriod,omitempty"`
	Deposit        *float64 `json:"deposit,omitempty"`

	PropertyTypeCode   string `json:"propertyType,omitempty"`
	FurnishingTypeCode string `json:"furnishingType,omitempty"`
	EnergyLabel        string `json:"energyLabel,omitempty"`

	AreaM2    *float64 `json:"areaM2,omitempty"`
	Rooms     *float64 `json:"rooms,omitempty"`
	Bedrooms  *float64 `json:"bedrooms,omitempty"`
	Bathrooms *float64 `json:"bathrooms,omitempty"`

	AvailableFrom      *time.Time `json:"availableFrom,omitempty"`
	AvailableUntil     *time.Time `json:"availableUntil,omitempty"`
	MinimumLeaseMonths *int       `json:"minimumLeaseMonths,omitempty"`

	Country     string   `json:"country,omitempty"`
	City        string   `json:"city,omitempty"`
	PostalCode  string   `json:"postalCode,omitempty"`
	Street      string   `json:"street,omitempty"`
	HouseNumber string   `json:"houseNumber,omitempty"`
	Lat         *float64 `json:"lat,omitempty"`
	Lon         *float64 `json:"lon,omitempty"`

	ThumbnailURL string   `json:"image,omitempty"`
	PhotoURLs    []string `json:"photoUrls,omitempty"`
}

// RunStats summarizes one crawl run. Per-item failures are counted here
// rather than propagated, so one malformed item never stops ingestion of
// the rest of the catalogue.
type RunStats struct {
	CitySlug    string
	StartedAt   time.Time
	Pages       int
	ItemsSeen   int
	Skipped     int
	Created     int
	Updated     int
	Failed      int
	Deactivated int
}
