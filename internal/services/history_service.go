package services

import (
	"context"

	"FoodBridge/server/internal/models"

	"github.com/jonboulle/clockwork"
)

type HistoryService interface {
	RestaurantHistory(ctx context.Context, restaurantID int) ([]models.Donation, models.DonationStats, error)
	NGOHistory(ctx context.Context, ngoID int) ([]models.Donation, models.DonationStats, error)
}

type historyService struct {
	donations DonationService
	clock     clockwork.Clock
}

func NewHistoryService(donations DonationService, clock clockwork.Clock) *historyService {
	return &historyService{donations: donations, clock: clock}
}

func (hs *historyService) RestaurantHistory(ctx context.Context, restaurantID int) ([]models.Donation, models.DonationStats, error) {
	donations, err := hs.donations.ListByRestaurant(ctx, restaurantID)
	if err != nil {
		return nil, models.DonationStats{}, err
	}
	return donations, models.AggregateDonations(donations, hs.clock.Now()), nil
}

func (hs *historyService) NGOHistory(ctx context.Context, ngoID int) ([]models.Donation, models.DonationStats, error) {
	donations, err := hs.donations.ListMyRequests(ctx, ngoID)
	if err != nil {
		return nil, models.DonationStats{}, err
	}
	return donations, models.AggregateDonations(donations, hs.clock.Now()), nil
}
