// Package validation enforces the donation form contract. The patterns and
// messages match the original form field-for-field so existing clients see
// identical errors.
package validation

import (
	"errors"
	"regexp"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
)

var (
	foodTypePattern = regexp.MustCompile(`^[a-zA-Z\s]+$`)
	quantityPattern = regexp.MustCompile(`(?i)^[0-9]+(\s?(kg|g|plate|plates|serving|servings|ltr|litre|litres)?)$`)
	pickupPattern   = regexp.MustCompile(`^[a-zA-Z0-9\s,.-]{5,}$`)
)

var validate *validator.Validate

func init() {
	validate = validator.New()
	validate.RegisterValidation("foodtype", func(fl validator.FieldLevel) bool {
		return foodTypePattern.MatchString(fl.Field().String())
	})
	validate.RegisterValidation("quantitystr", func(fl validator.FieldLevel) bool {
		return quantityPattern.MatchString(fl.Field().String())
	})
	validate.RegisterValidation("pickup", func(fl validator.FieldLevel) bool {
		return pickupPattern.MatchString(fl.Field().String())
	})
}

type DonationInput struct {
	FoodType        string `json:"foodType" validate:"required,foodtype"`
	Quantity        string `json:"quantity" validate:"required,quantitystr"`
	ExpiryTime      string `json:"expiryTime" validate:"required"`
	PickupLocation  string `json:"pickupLocation" validate:"required,pickup"`
	PreferredOption string `json:"preferredOption" validate:"required,oneof='NGO Pickup' 'Restaurant Delivery'"`
}

// Errors maps field names to user-facing messages; the handler returns it
// as the per-field error body on 400 responses.
type Errors map[string]string

func (e Errors) Error() string {
	parts := make([]string, 0, len(e))
	for field, msg := range e {
		parts = append(parts, field+": "+msg)
	}
	return strings.Join(parts, "; ")
}

// expiry accepted as RFC3339 or the datetime-local format the form posts.
var expiryLayouts = []string{time.RFC3339, "2006-01-02T15:04"}

func parseExpiry(value string) (time.Time, error) {
	for _, layout := range expiryLayouts {
		if t, err := time.Parse(layout, value); err == nil {
			return t, nil
		}
	}
	return time.Time{}, errors.New("unrecognized expiry format")
}

// ValidateDonation checks every field and collects all failures at once,
// returning the parsed expiry instant on success.
func ValidateDonation(input DonationInput, now time.Time) (time.Time, Errors) {
	fieldErrors := Errors{}

	if err := validate.Struct(input); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			for _, ve := range verrs {
				switch ve.StructField() {
				case "FoodType":
					fieldErrors["foodType"] = "Only alphabets allowed (e.g., Rice, Bread, Curry)"
				case "Quantity":
					fieldErrors["quantity"] = "Use proper format (e.g., 5kg, 2 plates, 10 servings)"
				case "PickupLocation":
					fieldErrors["pickupLocation"] = "Enter a valid pickup address"
				case "ExpiryTime":
					fieldErrors["expiryTime"] = "Expiry time is required"
				case "PreferredOption":
					fieldErrors["preferredOption"] = "Choose NGO Pickup or Restaurant Delivery"
				}
			}
		} else {
			fieldErrors["form"] = "Invalid donation data"
		}
	}

	var expiry time.Time
	if _, seen := fieldErrors["expiryTime"]; !seen {
		parsed, err := parseExpiry(input.ExpiryTime)
		switch {
		case err != nil:
			fieldErrors["expiryTime"] = "Expiry time must be a valid date"
		case parsed.Before(now):
			fieldErrors["expiryTime"] = "Expiry time cannot be in the past"
		default:
			expiry = parsed
		}
	}

	if len(fieldErrors) > 0 {
		return time.Time{}, fieldErrors
	}
	return expiry, nil
}
