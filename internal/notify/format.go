package notify

import (
	"fmt"
	"strings"

	"rentwatch/internal/model"
)

// FormatListing formats a newly discovered listing as a notification
// message.
func FormatListing(listing *model.Listing, item model.ScrapedListing) string {
	var b strings.Builder
	fmt.Fprintf(&b, "New listing: %s\n", listing.Title)

	var address []string
	if listing.Street != "" {
		address = append(address, listing.Street)
	}
	if listing.City != "" {
		address = append(address, listing.City)
	}
	if len(address) > 0 {
		b.WriteString(strings.Join(address, ", "))
		b.WriteString("\n")
	}

	var facts []string
	if item.DisplayPrice != "" {
		facts = append(facts, item.DisplayPrice)
	}
	if listing.AreaM2 != nil {
		facts = append(facts, fmt.Sprintf("%.0f m2", *listing.AreaM2))
	}
	if listing.Bedrooms != nil {
		facts = append(facts, fmt.Sprintf("%.0f bedrooms", *listing.Bedrooms))
	}
	if len(facts) > 0 {
		b.WriteString(strings.Join(facts, " | "))
		b.WriteString("\n")
	}

	if listing.AvailableFrom != nil {
		fmt.Fprintf(&b, "Available from %s\n", listing.AvailableFrom.Format("2006-01-02"))
	}

	b.WriteString("\n")
	b.WriteString(listing.CanonicalURL)
	return b.String()
}
