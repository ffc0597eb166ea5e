package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "modernc.org/sqlite" // SQLite driver registration.

	"rentwatch/internal/model"
	"rentwatch/migrations"
)

const timeLayout = "2006-01-02T15:04:05Z"
const dateLayout = "2006-01-02"

// SQLite implements Storage backed by a SQLite database.
type SQLite struct {
	db *sql.DB
}

// NewSQLite opens a SQLite database at dsn and runs pending migrations.
func NewSQLite(dsn string) (*SQLite, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("set WAL mode: %w", err)
	}
	if _, err := db.Exec("PRAGMA foreign_keys=ON"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("enable foreign keys: %w", err)
	}

	if err := migrations.Run(db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLite{db: db}, nil
}

// Close closes the underlying database connection.
func (s *SQLite) Close() error {
	return s.db.Close()
}

// SourceByCode returns the listing source with the given code.
func (s *SQLite) SourceByCode(ctx context.Context, code string) (*model.ListingSource, error) {
	var src model.ListingSource
	err := s.db.QueryRowContext(ctx,
		`SELECT id, code, name FROM listing_sources WHERE code = ?`, code,
	).Scan(&src.ID, &src.Code, &src.Name)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("listing source %q: %w", code, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("query listing source: %w", err)
	}
	return &src, nil
}

// StatusByCode returns the listing status with the given code.
func (s *SQLite) StatusByCode(ctx context.Context, code string) (*model.ListingStatus, error) {
	var st model.ListingStatus
	err := s.db.QueryRowContext(ctx,
		`SELECT id, code FROM listing_statuses WHERE code = ?`, code,
	).Scan(&st.ID, &st.Code)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("listing status %q: %w", code, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("query listing status: %w", err)
	}
	return &st, nil
}

// PropertyTypeByCode returns the property type with the given code.
func (s *SQLite) PropertyTypeByCode(ctx context.Context, code string) (*model.PropertyType, error) {
	var pt model.PropertyType
	err := s.db.QueryRowContext(ctx,
		`SELECT id, code FROM property_types WHERE code = ?`, code,
	).Scan(&pt.ID, &pt.Code)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("property type %q: %w", code, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("query property type: %w", err)
	}
	return &pt, nil
}

// FurnishingTypeByCode returns the furnishing type with the given code.
func (s *SQLite) FurnishingTypeByCode(ctx context.Context, code string) (*model.FurnishingType, error) {
	var ft model.FurnishingType
	err := s.db.QueryRowContext(ctx,
		`SELECT id, code FROM furnishing_types WHERE code = ?`, code,
	).Scan(&ft.ID, &ft.Code)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("furnishing type %q: %w", code, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("query furnishing type: %w", err)
	}
	return &ft, nil
}

// AgencyByExternalID returns the agency identified by external id within
// a source.
func (s *SQLite) AgencyByExternalID(ctx context.Context, externalID string, sourceID int64) (*model.Agency, error) {
	var a model.Agency
	err := s.db.QueryRowContext(ctx,
		`SELECT id, source_id, external_id, name FROM agencies
		 WHERE external_id = ? AND source_id = ?`, externalID, sourceID,
	).Scan(&a.ID, &a.SourceID, &a.ExternalID, &a.Name)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("agency %q: %w", externalID, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("query agency: %w", err)
	}
	return &a, nil
}

const listingColumns = `id, source_id, external_id, status_id, agency_id, canonical_url,
	title, description, property_type_id, furnishing_type_id, energy_label,
	rent_amount, rent_period, deposit, area_m2, rooms, bedrooms, bathrooms,
	available_from, available_until, minimum_lease_months,
	country, city, postal_code, street, house_number, unit, lat, lon,
	primary_photo_url, photos_count, pets_allowed, content_hash,
	first_seen_at, last_seen_at`

// FindListing returns the listing identified by (source, external id).
func (s *SQLite) FindListing(ctx context.Context, sourceID int64, externalID string) (*model.Listing, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+listingColumns+` FROM listings WHERE source_id = ? AND external_id = ?`,
		sourceID, externalID,
	)
	l, err := scanListing(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("listing %d/%s: %w", sourceID, externalID, ErrNotFound)
	}
	return l, err
}

// SaveListing inserts the listing when its ID is zero and updates it
// otherwise, inside a single transaction so readers never observe a
// half-written row. On insert the generated ID is written back.
func (s *SQLite) SaveListing(ctx context.Context, l *model.Listing) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	args := []any{
		l.SourceID, l.ExternalID, l.StatusID, l.AgencyID, l.CanonicalURL,
		l.Title, l.Description, l.PropertyTypeID, l.FurnishingTypeID, l.EnergyLabel,
		l.RentAmount, l.RentPeriod, l.Deposit, l.AreaM2, l.Rooms, l.Bedrooms, l.Bathrooms,
		formatDate(l.AvailableFrom), formatDate(l.AvailableUntil), l.MinimumLeaseMonths,
		l.Country, l.City, l.PostalCode, l.Street, l.HouseNumber, l.Unit, l.Lat, l.Lon,
		l.PrimaryPhotoURL, l.PhotosCount, boolToInt(l.PetsAllowed), l.ContentHash,
		l.FirstSeenAt.UTC().Format(timeLayout), l.LastSeenAt.UTC().Format(timeLayout),
	}

	if l.ID == 0 {
		res, err := tx.ExecContext(ctx,
			`INSERT INTO listings (source_id, external_id, status_id, agency_id, canonical_url,
				title, description, property_type_id, furnishing_type_id, energy_label,
				rent_amount, rent_period, deposit, area_m2, rooms, bedrooms, bathrooms,
				available_from, available_until, minimum_lease_months,
				country, city, postal_code, street, house_number, unit, lat, lon,
				primary_photo_url, photos_count, pets_allowed, content_hash,
				first_seen_at, last_seen_at)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			args...,
		)
		if err != nil {
			return fmt.Errorf("insert listing: %w", err)
		}
		id, err := res.LastInsertId()
		if err != nil {
			return fmt.Errorf("last insert id: %w", err)
		}
		l.ID = id
	} else {
		_, err := tx.ExecContext(ctx,
			`UPDATE listings SET source_id = ?, external_id = ?, status_id = ?, agency_id = ?, canonical_url = ?,
				title = ?, description = ?, property_type_id = ?, furnishing_type_id = ?, energy_label = ?,
				rent_amount = ?, rent_period = ?, deposit = ?, area_m2 = ?, rooms = ?, bedrooms = ?, bathrooms = ?,
				available_from = ?, available_until = ?, minimum_lease_months = ?,
				country = ?, city = ?, postal_code = ?, street = ?, house_number = ?, unit = ?, lat = ?, lon = ?,
				primary_photo_url = ?, photos_count = ?, pets_allowed = ?, content_hash = ?,
				first_seen_at = ?, last_seen_at = ?
			 WHERE id = ?`,
			append(args, l.ID)...,
		)
		if err != nil {
			return fmt.Errorf("update listing: %w", err)
		}
	}

	return tx.Commit()
}

// SaveListingPhoto persists one photo row. Re-observing a URL updates its
// position instead of violating the (listing, photo URL) uniqueness.
func (s *SQLite) SaveListingPhoto(ctx context.Context, p *model.ListingPhoto) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO listing_photos (listing_id, photo_url, position) VALUES (?, ?, ?)
		 ON CONFLICT(listing_id, photo_url) DO UPDATE SET position = excluded.position`,
		p.ListingID, p.PhotoURL, p.Position,
	)
	if err != nil {
		return fmt.Errorf("save listing photo: %w", err)
	}
	return nil
}

// ListingPhotos returns a listing's photos in display order.
func (s *SQLite) ListingPhotos(ctx context.Context, listingID int64) ([]model.ListingPhoto, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, listing_id, photo_url, position FROM listing_photos
		 WHERE listing_id = ? ORDER BY position`, listingID,
	)
	if err != nil {
		return nil, fmt.Errorf("query listing photos: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var photos []model.ListingPhoto
	for rows.Next() {
		var p model.ListingPhoto
		if err := rows.Scan(&p.ID, &p.ListingID, &p.PhotoURL, &p.Position); err != nil {
			return nil, fmt.Errorf("scan listing photo: %w", err)
		}
		photos = append(photos, p)
	}
	return photos, rows.Err()
}

// UpsertRawListing fully overwrites the raw snapshot for
// (source, external id).
func (s *SQLite) UpsertRawListing(ctx context.Context, raw *model.RawListing) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO raw_listings (source_id, external_id, url, fetched_at, payload_json, content_hash)
		 VALUES (?, ?, ?, ?, ?, ?)
		 ON CONFLICT(source_id, external_id) DO UPDATE SET
			url = excluded.url,
			fetched_at = excluded.fetched_at,
			payload_json = excluded.payload_json,
			content_hash = excluded.content_hash`,
		raw.SourceID, raw.ExternalID, raw.URL,
		raw.FetchedAt.UTC().Format(timeLayout), raw.PayloadJSON, raw.ContentHash,
	)
	if err != nil {
		return fmt.Errorf("upsert raw listing: %w", err)
	}
	return nil
}

// FindRawListing returns the raw snapshot for (source, external id).
func (s *SQLite) FindRawListing(ctx context.Context, sourceID int64, externalID string) (*model.RawListing, error) {
	var raw model.RawListing
	var fetchedAt string
	err := s.db.QueryRowContext(ctx,
		`SELECT id, source_id, external_id, url, fetched_at, payload_json, content_hash
		 FROM raw_listings WHERE source_id = ? AND external_id = ?`,
		sourceID, externalID,
	).Scan(&raw.ID, &raw.SourceID, &raw.ExternalID, &raw.URL, &fetchedAt, &raw.PayloadJSON, &raw.ContentHash)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("raw listing %d/%s: %w", sourceID, externalID, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("query raw listing: %w", err)
	}
	raw.FetchedAt, _ = time.Parse(timeLayout, fetchedAt)
	return &raw, nil
}

// MarkMissingInactive bulk-transitions listings of the source still in
// fromStatus whose last_seen_at predates cutoff into toStatus.
func (s *SQLite) MarkMissingInactive(ctx context.Context, sourceID, fromStatusID, toStatusID int64, cutoff time.Time) (int64, error) {
	res, err := s.db.ExecContext(ctx,
		`UPDATE listings SET status_id = ?
		 WHERE source_id = ? AND status_id = ? AND last_seen_at < ?`,
		toStatusID, sourceID, fromStatusID, cutoff.UTC().Format(timeLayout),
	)
	if err != nil {
		return 0, fmt.Errorf("mark missing inactive: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("rows affected: %w", err)
	}
	return n, nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

func formatDate(t *time.Time) *string {
	if t == nil {
		return nil
	}
	v := t.Format(dateLayout)
	return &v
}

type scannable interface {
	Scan(dest ...any) error
}

func scanListing(row scannable) (*model.Listing, error) {
	var l model.Listing
	var availableFrom, availableUntil sql.NullString
	var firstSeen, lastSeen string
	var petsAllowed int
	err := row.Scan(
		&l.ID, &l.SourceID, &l.ExternalID, &l.StatusID, &l.AgencyID, &l.CanonicalURL,
		&l.Title, &l.Description, &l.PropertyTypeID, &l.FurnishingTypeID, &l.EnergyLabel,
		&l.RentAmount, &l.RentPeriod, &l.Deposit, &l.AreaM2, &l.Rooms, &l.Bedrooms, &l.Bathrooms,
		&availableFrom, &availableUntil, &l.MinimumLeaseMonths,
		&l.Country, &l.City, &l.PostalCode, &l.Street, &l.HouseNumber, &l.Unit, &l.Lat, &l.Lon,
		&l.PrimaryPhotoURL, &l.PhotosCount, &petsAllowed, &l.ContentHash,
		&firstSeen, &lastSeen,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("scan listing: %w", err)
	}
	l.PetsAllowed = petsAllowed == 1
	if availableFrom.Valid {
		if t, err := time.Parse(dateLayout, availableFrom.String); err == nil {
			l.AvailableFrom = &t
		}
	}
	if availableUntil.Valid {
		if t, err := time.Parse(dateLayout, availableUntil.String); err == nil {
			l.AvailableUntil = &t
		}
	}
	l.FirstSeenAt, _ = time.Parse(timeLayout, firstSeen)
	l.LastSeenAt, _ = time.Parse(timeLayout, lastSeen)
	return &l, nil
}
