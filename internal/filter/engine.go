// Package filter implements the notification matching engine: it decides
// which newly discovered listings are worth telling subscribers about.
package filter

import (
	"strconv"
	"strings"

	"rentwatch/internal/model"
)

// Rules restricts which listings trigger a notification.
// Include keywords use OR logic (at least one must match); exclude
// keywords use AND logic (none may match). A nil MaxRent means no bound.
type Rules struct {
	Include []string
	Exclude []string
	MaxRent *float64
}

// Empty reports whether the rules impose no restriction at all.
func (r Rules) Empty() bool {
	return len(r.Include) == 0 && len(r.Exclude) == 0 && r.MaxRent == nil
}

// Match checks whether a listing passes the rules. With empty rules
// every listing passes.
func Match(listing *model.Listing, r Rules) bool {
	text := strings.ToLower(listing.Title + " " + listing.Description + " " + listing.City)

	for _, kw := range r.Exclude {
		if strings.Contains(text, strings.ToLower(kw)) {
			return false
		}
	}

	if len(r.Include) > 0 {
		matched := false
		for _, kw := range r.Include {
			if strings.Contains(text, strings.ToLower(kw)) {
				matched = true
				break
			}
		}
		if !matched {
			return false
		}
	}

	if r.MaxRent != nil && listing.RentAmount != nil && *listing.RentAmount > *r.MaxRent {
		return false
	}
	return true
}

// ParseMaxRent parses a max-rent bound from config text. Empty text
// means no bound.
func ParseMaxRent(text string) (*float64, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, nil
	}
	v, err := strconv.ParseFloat(text, 64)
	if err != nil {
		return nil, err
	}
	return &v, nil
}
