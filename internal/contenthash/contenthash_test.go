package contenthash

import (
	"testing"

	"rentwatch/internal/model"
)

func TestComputeDeterministic(t *testing.T) {
	rent := 1250.0
	item := model.ScrapedListing{
		CanonicalURL: "https://www.pararius.com/apartment-for-rent/eindhoven/PR0001/stratumseind",
		Title:        "Apartment Stratumseind",
		City:         "Eindhoven",
		RentAmount:   &rent,
	}

	want := "28fa4e1d85231f5389a374191d26dc7e8b059c9a4d51003c45c9243e218297bf"
	if got := Compute(item); got != want {
		t.Errorf("Compute = %s, want %s", got, want)
	}
	if got := Compute(item); got != want {
		t.Errorf("second Compute = %s, want %s", got, want)
	}
}

func TestComputeAbsentFields(t *testing.T) {
	// All hash fields absent: the digest covers "|||".
	want := "be5be69f55e91af25e54ecc2154d4da359b67b3b27e25f5cc0b3ff54eb74dff3"
	if got := Compute(model.ScrapedListing{}); got != want {
		t.Errorf("Compute(empty) = %s, want %s", got, want)
	}
}

func TestComputeChangesWithRent(t *testing.T) {
	rentA, rentB := 1250.0, 1300.0
	item := model.ScrapedListing{
		CanonicalURL: "https://www.pararius.com/apartment-for-rent/eindhoven/PR0001/stratumseind",
		Title:        "Apartment Stratumseind",
		City:         "Eindhoven",
		RentAmount:   &rentA,
	}
	before := Compute(item)

	item.RentAmount = &rentB
	if after := Compute(item); after == before {
		t.Error("expected hash to change with rent amount")
	}

	// Irrelevant fields do not affect the hash.
	item.RentAmount = &rentA
	item.Description = "renovated last year"
	if got := Compute(item); got != before {
		t.Error("expected hash to ignore non-subset fields")
	}
}

func TestFormatAmountPlainDecimal(t *testing.T) {
	tests := []struct {
		in   float64
		want string
	}{
		{1234, "1234"},
		{62.5, "62.5"},
	}
	for _, tt := range tests {
		v := tt.in
		if got := formatAmount(&v); got != tt.want {
			t.Errorf("formatAmount(%v) = %q, want %q", tt.in, got, tt.want)
		}
	}
	if got := formatAmount(nil); got != "" {
		t.Errorf("formatAmount(nil) = %q, want empty", got)
	}
}
