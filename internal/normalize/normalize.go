// Package normalize maps free-text listing attributes to a small fixed
// vocabulary and parses numbers, prices, and dates out of marketplace text.
// Every function degrades to a zero value on unmatchable input; none of
// them return errors.
package normalize

import (
	"regexp"
	"strconv"
	"strings"
	"time"
)

// Furnishing type codes.
const (
	Furnished     = "FURNISHED"
	SemiFurnished = "SEMI_FURNISHED"
	Unfurnished   = "UNFURNISHED"
)

// Property type codes.
const (
	Apartment = "APARTMENT"
	House     = "HOUSE"
	Studio    = "STUDIO"
	Room      = "ROOM"
)

// vocabRule maps a label substring to a canonical code. Rules are
// evaluated top to bottom; the first match wins.
type vocabRule struct {
	substr string
	code   string
}

// "unfurnished" and "semi" must be tested before "furnished", which is a
// substring of both.
var furnishingRules = []vocabRule{
	{"upholstered", SemiFurnished}, // Pararius term
	{"semi", SemiFurnished},
	{"unfurnished", Unfurnished},
	{"furnished", Furnished},
}

var propertyTypeRules = []vocabRule{
	{"apartment", Apartment},
	{"flat", Apartment},
	{"upper floor", Apartment},
	{"house", House},
	{"studio", Studio},
	{"room", Room},
}

// Furnishing maps a free-text interior description to a furnishing code.
// Unmatched text yields "".
func Furnishing(value string) string {
	return matchVocab(value, furnishingRules)
}

// PropertyType maps a free-text house type to a property type code.
// Unmatched text yields "".
func PropertyType(value string) string {
	return matchVocab(value, propertyTypeRules)
}

func matchVocab(value string, rules []vocabRule) string {
	v := strings.ToLower(value)
	for _, r := range rules {
		if strings.Contains(v, r.substr) {
			return r.code
		}
	}
	return ""
}

var (
	nonPriceChars  = regexp.MustCompile(`[^0-9]`)
	nonNumberChars = regexp.MustCompile(`[^0-9.]`)
	postcodeRe     = regexp.MustCompile(`([0-9]{4}\s?[A-Z]{2})`)
	firstIntRe     = regexp.MustCompile(`(\d+)`)
)

// Price extracts a monetary amount from text like "€ 1,234 per month".
// Text without digits ("Price on request") yields nil.
func Price(text string) *float64 {
	digits := nonPriceChars.ReplaceAllString(text, "")
	if digits == "" {
		return nil
	}
	v, err := strconv.ParseFloat(digits, 64)
	if err != nil {
		return nil
	}
	return &v
}

// Number extracts a decimal number from text like "75 m²", keeping digits
// and dots. Unparsable text yields nil.
func Number(text string) *float64 {
	digits := nonNumberChars.ReplaceAllString(text, "")
	if digits == "" {
		return nil
	}
	v, err := strconv.ParseFloat(digits, 64)
	if err != nil {
		return nil
	}
	return &v
}

// DurationMonths extracts the first integer from a lease duration value
// like "12 months". No integer yields nil.
func DurationMonths(text string) *int {
	m := firstIntRe.FindString(text)
	if m == "" {
		return nil
	}
	n, err := strconv.Atoi(m)
	if err != nil {
		return nil
	}
	return &n
}

// Postcode extracts a Dutch postal code ("5611 AB") from text, or "".
func Postcode(text string) string {
	return postcodeRe.FindString(text)
}

// AvailableDate parses an availability value. "immediately" means now;
// otherwise the two textual formats the site uses are tried in order.
// Anything else yields nil.
func AvailableDate(value string, now time.Time) *time.Time {
	v := strings.TrimSpace(value)
	if strings.EqualFold(v, "immediately") {
		d := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
		return &d
	}
	for _, layout := range []string{"02-01-2006", "2 January 2006"} {
		if d, err := time.Parse(layout, v); err == nil {
			return &d
		}
	}
	return nil
}
