// Package contenthash fingerprints the change-relevant subset of a
// scraped listing for cheap change detection.
package contenthash

import (
	"crypto/sha256"
	"fmt"
	"strconv"
	"strings"

	"rentwatch/internal/model"
)

// Compute returns a lowercase-hex SHA-256 digest over the fixed field
// subset (canonical URL, title, city, rent amount), joined with "|".
// Absent fields contribute an empty string, so the digest is stable for
// identical inputs and differs whenever one of these fields changes.
func Compute(item model.ScrapedListing) string {
	parts := []string{
		item.CanonicalURL,
		item.Title,
		item.City,
		formatAmount(item.RentAmount),
	}
	sum := sha256.Sum256([]byte(strings.Join(parts, "|")))
	return fmt.Sprintf("%x", sum)
}

// formatAmount renders a rent amount as plain decimal text: no exponent,
// no trailing zeros, so 1234.0 prints as "1234".
func formatAmount(v *float64) string {
	if v == nil {
		return ""
	}
	return strconv.FormatFloat(*v, 'f', -1, 64)
}
