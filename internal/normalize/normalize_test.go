package normalize

import (
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
)

func TestFurnishing(t *testing.T) {
	tests := []struct {
		value string
		want  string
	}{
		{"Upholstered", SemiFurnished},
		{"Semi-furnished", SemiFurnished},
		{"Furnished", Furnished},
		{"fully furnished apartment", Furnished},
		{"Unfurnished", Unfurnished},
		{"Shell", ""},
		{"", ""},
	}

	for _, tt := range tests {
		t.Run(tt.value, func(t *testing.T) {
			if got := Furnishing(tt.value); got != tt.want {
				t.Errorf("Furnishing(%q) = %q, want %q", tt.value, got, tt.want)
			}
		})
	}
}

func TestPropertyType(t *testing.T) {
	tests := []struct {
		value string
		want  string
	}{
		{"Apartment", Apartment},
		{"Flat", Apartment},
		{"Upper floor apartment", Apartment},
		{"Terraced house", House},
		{"Studio", Studio},
		{"Room", Room},
		{"Houseboat", House},
		{"Parking space", ""},
	}

	for _, tt := range tests {
		t.Run(tt.value, func(t *testing.T) {
			if got := PropertyType(tt.value); got != tt.want {
				t.Errorf("PropertyType(%q) = %q, want %q", tt.value, got, tt.want)
			}
		})
	}
}

func TestPrice(t *testing.T) {
	tests := []struct {
		text string
		want *float64
	}{
		{"€ 1,234 per month", f(1234)},
		{"€ 950", f(950)},
		{"Price on request", nil},
		{"", nil},
	}

	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			if diff := cmp.Diff(tt.want, Price(tt.text)); diff != "" {
				t.Errorf("Price(%q) mismatch (-want +got):\n%s", tt.text, diff)
			}
		})
	}
}

func TestNumber(t *testing.T) {
	tests := []struct {
		text string
		want *float64
	}{
		{"75 m²", f(75)},
		{"62.5 m²", f(62.5)},
		{"3", f(3)},
		{"unknown", nil},
		{"", nil},
		{"..", nil},
	}

	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			if diff := cmp.Diff(tt.want, Number(tt.text)); diff != "" {
				t.Errorf("Number(%q) mismatch (-want +got):\n%s", tt.text, diff)
			}
		})
	}
}

func TestDurationMonths(t *testing.T) {
	tests := []struct {
		text string
		want *int
	}{
		{"12 months", i(12)},
		{"Minimum of 6 months", i(6)},
		{"Indefinite", nil},
	}

	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			if diff := cmp.Diff(tt.want, DurationMonths(tt.text)); diff != "" {
				t.Errorf("DurationMonths(%q) mismatch (-want +got):\n%s", tt.text, diff)
			}
		})
	}
}

func TestPostcode(t *testing.T) {
	tests := []struct {
		text string
		want string
	}{
		{"5611 AB Eindhoven (Binnenstad)", "5611 AB"},
		{"1017XS Amsterdam", "1017XS"},
		{"Eindhoven", ""},
	}

	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			if got := Postcode(tt.text); got != tt.want {
				t.Errorf("Postcode(%q) = %q, want %q", tt.text, got, tt.want)
			}
		})
	}
}

func TestAvailableDate(t *testing.T) {
	now := time.Date(2026, 8, 31, 14, 30, 0, 0, time.UTC)

	tests := []struct {
		name  string
		value string
		want  *time.Time
	}{
		{"immediately", "Immediately", d(2026, 8, 31)},
		{"numeric format", "01-09-2026", d(2026, 9, 1)},
		{"textual format", "1 September 2026", d(2026, 9, 1)},
		{"padded", "  15-10-2026  ", d(2026, 10, 15)},
		{"unparsable", "In consultation", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if diff := cmp.Diff(tt.want, AvailableDate(tt.value, now)); diff != "" {
				t.Errorf("AvailableDate(%q) mismatch (-want +got):\n%s", tt.value, diff)
			}
		})
	}
}

func f(v float64) *float64 { return &v }
func i(v int) *int         { return &v }

func d(year int, month time.Month, day int) *time.Time {
	t := time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
	return &t
}
