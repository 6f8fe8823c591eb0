package validation

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var now = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

func validInput() DonationInput {
	return DonationInput{
		FoodType:        "Rice",
		Quantity:        "5kg",
		ExpiryTime:      now.Add(24 * time.Hour).Format(time.RFC3339),
		PickupLocation:  "12 Main St, City",
		PreferredOption: "NGO Pickup",
	}
}

func TestValidateDonationAccepts(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*DonationInput)
	}{
		{"basic valid form", func(in *DonationInput) {}},
		{"food type with spaces", func(in *DonationInput) { in.FoodType = "Vegetable Curry" }},
		{"quantity with spaced unit", func(in *DonationInput) { in.Quantity = "2 plates" }},
		{"quantity uppercase unit", func(in *DonationInput) { in.Quantity = "3KG" }},
		{"quantity bare number", func(in *DonationInput) { in.Quantity = "10" }},
		{"quantity litres", func(in *DonationInput) { in.Quantity = "2 litres" }},
		{"restaurant delivery option", func(in *DonationInput) { in.PreferredOption = "Restaurant Delivery" }},
		{"datetime-local expiry", func(in *DonationInput) { in.ExpiryTime = "2025-06-02T15:04" }},
		{"address with punctuation", func(in *DonationInput) { in.PickupLocation = "Flat 4-B, Park Rd." }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			input := validInput()
			tt.mutate(&input)
			expiry, errs := ValidateDonation(input, now)
			require.Nil(t, errs)
			assert.False(t, expiry.IsZero())
		})
	}
}

func TestValidateDonationRejects(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*DonationInput)
		field  string
	}{
		{"digits in food type", func(in *DonationInput) { in.FoodType = "R1ce123" }, "foodType"},
		{"empty food type", func(in *DonationInput) { in.FoodType = "" }, "foodType"},
		{"quantity without number", func(in *DonationInput) { in.Quantity = "some kg" }, "quantity"},
		{"unknown unit", func(in *DonationInput) { in.Quantity = "5 boxes" }, "quantity"},
		{"short pickup address", func(in *DonationInput) { in.PickupLocation = "abc" }, "pickupLocation"},
		{"missing expiry", func(in *DonationInput) { in.ExpiryTime = "" }, "expiryTime"},
		{"garbage expiry", func(in *DonationInput) { in.ExpiryTime = "tomorrow" }, "expiryTime"},
		{"past expiry", func(in *DonationInput) { in.ExpiryTime = now.Add(-time.Hour).Format(time.RFC3339) }, "expiryTime"},
		{"unknown preferred option", func(in *DonationInput) { in.PreferredOption = "Courier" }, "preferredOption"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			input := validInput()
			tt.mutate(&input)
			_, errs := ValidateDonation(input, now)
			require.NotNil(t, errs)
			assert.Contains(t, errs, tt.field)
		})
	}
}

func TestValidateDonationCollectsAllFieldErrors(t *testing.T) {
	input := DonationInput{
		FoodType:        "R1ce",
		Quantity:        "plenty",
		ExpiryTime:      "",
		PickupLocation:  "x",
		PreferredOption: "NGO Pickup",
	}

	_, errs := ValidateDonation(input, now)
	require.NotNil(t, errs)
	assert.Len(t, errs, 4)
	assert.Equal(t, "Only alphabets allowed (e.g., Rice, Bread, Curry)", errs["foodType"])
	assert.Equal(t, "Use proper format (e.g., 5kg, 2 plates, 10 servings)", errs["quantity"])
	assert.Equal(t, "Enter a valid pickup address", errs["pickupLocation"])
	assert.Equal(t, "Expiry time is required", errs["expiryTime"])
}

func TestErrorsImplementsError(t *testing.T) {
	errs := Errors{"foodType": "Only alphabets allowed (e.g., Rice, Bread, Curry)"}
	assert.Contains(t, errs.Error(), "foodType")
}
