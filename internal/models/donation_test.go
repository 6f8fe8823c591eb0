package models

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var baseTime = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

func TestEffectiveStatus(t *testing.T) {
	tests := []struct {
		name   string
		status string
		expiry time.Time
		want   string
	}{
		{"available before expiry", StatusAvailable, baseTime.Add(time.Hour), StatusAvailable},
		{"available past expiry", StatusAvailable, baseTime.Add(-time.Hour), StatusExpired},
		{"requested past expiry", StatusRequested, baseTime.Add(-time.Minute), StatusExpired},
		{"accepted past expiry keeps status", StatusAccepted, baseTime.Add(-time.Hour), StatusAccepted},
		{"completed past expiry keeps status", StatusCompleted, baseTime.Add(-time.Hour), StatusCompleted},
		{"requested before expiry", StatusRequested, baseTime.Add(time.Minute), StatusRequested},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := Donation{Status: tt.status, ExpiryTime: tt.expiry}
			assert.Equal(t, tt.want, d.EffectiveStatus(baseTime))
		})
	}
}

func TestCheckInvariants(t *testing.T) {
	requested := baseTime
	accepted := baseTime.Add(time.Hour)
	completed := baseTime.Add(2 * time.Hour)
	rating := 4

	t.Run("full lifecycle ordering is valid", func(t *testing.T) {
		d := Donation{
			Status:      StatusCompleted,
			RequestedAt: &requested,
			AcceptedAt:  &accepted,
			CompletedAt: &completed,
			Rating:      &rating,
			RatedAt:     &completed,
		}
		require.NoError(t, d.CheckInvariants())
	})

	t.Run("accepted requires requested", func(t *testing.T) {
		d := Donation{Status: StatusAccepted, AcceptedAt: &accepted}
		assert.ErrorIs(t, d.CheckInvariants(), ErrInvariantViolated)
	})

	t.Run("accepted before requested is invalid", func(t *testing.T) {
		late := accepted.Add(time.Hour)
		d := Donation{Status: StatusAccepted, RequestedAt: &late, AcceptedAt: &accepted}
		assert.ErrorIs(t, d.CheckInvariants(), ErrInvariantViolated)
	})

	t.Run("completed requires accepted", func(t *testing.T) {
		d := Donation{Status: StatusCompleted, RequestedAt: &requested, CompletedAt: &completed}
		assert.ErrorIs(t, d.CheckInvariants(), ErrInvariantViolated)
	})

	t.Run("rating without ratedAt is invalid", func(t *testing.T) {
		d := Donation{Rating: &rating}
		assert.ErrorIs(t, d.CheckInvariants(), ErrInvariantViolated)
	})

	t.Run("ratedAt without rating is invalid", func(t *testing.T) {
		d := Donation{RatedAt: &completed}
		assert.ErrorIs(t, d.CheckInvariants(), ErrInvariantViolated)
	})
}

func TestQuantityUnits(t *testing.T) {
	tests := []struct {
		quantity string
		want     string
	}{
		{"5kg", "5"},
		{"2 plates", "2"},
		{"10 servings", "10"},
		{"3.5 kg", "3.5"},
		{"120", "120"},
		{"a few boxes", "0"},
		{"", "0"},
		{".5kg", "0"},
	}

	for _, tt := range tests {
		t.Run(tt.quantity, func(t *testing.T) {
			want, err := decimal.NewFromString(tt.want)
			require.NoError(t, err)
			assert.True(t, QuantityUnits(tt.quantity).Equal(want),
				"QuantityUnits(%q) = %s, want %s", tt.quantity, QuantityUnits(tt.quantity), want)
		})
	}
}

func TestAggregateDonations(t *testing.T) {
	past := baseTime.Add(-time.Hour)
	future := baseTime.Add(24 * time.Hour)

	donations := []Donation{
		{Status: StatusCompleted, Quantity: "5kg", ExpiryTime: future},
		{Status: StatusCompleted, Quantity: "2 plates", ExpiryTime: past},
		{Status: StatusCompleted, Quantity: "unknown amount", ExpiryTime: future},
		{Status: StatusAccepted, Quantity: "10kg", ExpiryTime: future},
		{Status: StatusRequested, Quantity: "1kg", ExpiryTime: future},
		{Status: StatusRequested, Quantity: "1kg", ExpiryTime: past},
		{Status: StatusAvailable, Quantity: "4kg", ExpiryTime: future},
		{Status: StatusAvailable, Quantity: "4kg", ExpiryTime: past},
	}

	stats := AggregateDonations(donations, baseTime)

	assert.Equal(t, 8, stats.Total)
	assert.Equal(t, 3, stats.Completed)
	assert.Equal(t, 1, stats.Accepted)
	assert.Equal(t, 1, stats.Requested)
	assert.Equal(t, 1, stats.Available)
	assert.Equal(t, 2, stats.Expired)
	// only completed items count toward the total; the non-numeric one
	// contributes zero.
	assert.True(t, stats.TotalQuantity.Equal(decimal.NewFromInt(7)),
		"TotalQuantity = %s, want 7", stats.TotalQuantity)
}

func TestAggregateDonationsEmpty(t *testing.T) {
	stats := AggregateDonations(nil, baseTime)
	assert.Equal(t, 0, stats.Total)
	assert.True(t, stats.TotalQuantity.IsZero())
}

func TestDisplayName(t *testing.T) {
	assert.Equal(t, "Unknown", DisplayName(nil, "Unknown"))
	assert.Equal(t, "Anonymous", DisplayName(&UserRef{ID: 3}, "Anonymous"))
	assert.Equal(t, "Helping Hands", DisplayName(&UserRef{ID: 3, Name: "Helping Hands"}, "Anonymous"))
}
