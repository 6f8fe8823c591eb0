package models

import (
	"time"

	"github.com/shopspring/decimal"
)

const (
	StatusAvailable = "Available"
	StatusRequested = "Requested"
	StatusAccepted  = "Accepted"
	StatusCompleted = "Completed"
	StatusExpired   = "Expired"
)

const (
	OptionNGOPickup          = "NGO Pickup"
	OptionRestaurantDelivery = "Restaurant Delivery"
)

type Donation struct {
	ID              int        `json:"id" db:"id"`
	FoodType        string     `json:"foodType" db:"food_type"`
	Quantity        string     `json:"quantity" db:"quantity"`
	ExpiryTime      time.Time  `json:"expiryTime" db:"expiry_time"`
	PickupLocation  string     `json:"pickupLocation" db:"pickup_location"`
	PreferredOption string     `json:"preferredOption" db:"preferred_option"`
	Status          string     `json:"status" db:"status"`
	Restaurant      *UserRef   `json:"restaurant"`
	RequestedBy     *UserRef   `json:"requestedBy,omitempty"`
	RequestedAt     *time.Time `json:"requestedAt,omitempty" db:"requested_at"`
	AcceptedAt      *time.Time `json:"acceptedAt,omitempty" db:"accepted_at"`
	CompletedAt     *time.Time `json:"completedAt,omitempty" db:"completed_at"`
	Rating          *int       `json:"rating,omitempty" db:"rating"`
	Review          *string    `json:"review,omitempty" db:"review"`
	RatedAt         *time.Time `json:"ratedAt,omitempty" db:"rated_at"`
	CreatedAt       time.Time  `json:"createdAt" db:"created_at"`

	// Straight-line distance from the requesting NGO, filled in on the
	// available listing when both sides have coordinates.
	DistanceKm *float64 `json:"distanceKm,omitempty"`
}

// EffectiveStatus derives the presented status at a given instant. Expired
// is never stored: a donation still Available or Requested whose expiry has
// passed is shown as Expired.
func (d *Donation) EffectiveStatus(now time.Time) string {
	if (d.Status == StatusAvailable || d.Status == StatusRequested) && d.ExpiryTime.Before(now) {
		return StatusExpired
	}
	return d.Status
}

// CheckInvariants verifies the timestamp ordering and rating pairing rules.
// It is exercised by tests and by the service layer after transitions.
func (d *Donation) CheckInvariants() error {
	if d.AcceptedAt != nil {
		if d.RequestedAt == nil {
			return ErrInvariantViolated
		}
		if d.RequestedAt.After(*d.AcceptedAt) {
			return ErrInvariantViolated
		}
	}
	if d.CompletedAt != nil {
		if d.AcceptedAt == nil {
			return ErrInvariantViolated
		}
		if d.AcceptedAt.After(*d.CompletedAt) {
			return ErrInvariantViolated
		}
	}
	if (d.Rating == nil) != (d.RatedAt == nil) {
		return ErrInvariantViolated
	}
	return nil
}

// QuantityUnits extracts the leading numeric component of a free-form
// quantity like "5kg" or "2 plates". Non-numeric quantities contribute
// zero rather than failing aggregation.
func QuantityUnits(quantity string) decimal.Decimal {
	end := 0
	seenDot := false
	for end < len(quantity) {
		c := quantity[end]
		if c >= '0' && c <= '9' {
			end++
			continue
		}
		if c == '.' && !seenDot && end > 0 {
			seenDot = true
			end++
			continue
		}
		break
	}
	if end == 0 {
		return decimal.Zero
	}
	units, err := decimal.NewFromString(quantity[:end])
	if err != nil {
		return decimal.Zero
	}
	return units
}

type DonationStats struct {
	Total         int
	Completed     int
	Accepted      int
	Requested     int
	Available     int
	Expired       int
	TotalQuantity decimal.Decimal
}

// AggregateDonations derives the per-user summary from a loaded donation
// list. Statuses are bucketed by their effective (expiry-aware) value and
// the quantity total covers completed items only.
func AggregateDonations(donations []Donation, now time.Time) DonationStats {
	stats := DonationStats{Total: len(donations), TotalQuantity: decimal.Zero}
	for i := range donations {
		switch donations[i].EffectiveStatus(now) {
		case StatusCompleted:
			stats.Completed++
			stats.TotalQuantity = stats.TotalQuantity.Add(QuantityUnits(donations[i].Quantity))
		case StatusAccepted:
			stats.Accepted++
		case StatusRequested:
			stats.Requested++
		case StatusAvailable:
			stats.Available++
		case StatusExpired:
			stats.Expired++
		}
	}
	return stats
}
