package services

import (
	"context"
	"log"
	"math"
	"time"

	"FoodBridge/server/internal/db"
	"FoodBridge/server/internal/models"

	"github.com/Masterminds/squirrel"
	"github.com/hashicorp/golang-lru/v2/expirable"
)

type ReviewService interface {
	RestaurantReviews(ctx context.Context, restaurantID int) ([]models.Review, models.ReviewStats, error)
	InvalidateStats(restaurantID int)
}

type reviewPage struct {
	reviews []models.Review
	stats   models.ReviewStats
}

type reviewService struct {
	cache *expirable.LRU[int, reviewPage]
}

// Review pages are read far more often than written (every card on the
// available listing can open one), so they sit in a short-lived LRU that
// rating submissions invalidate.
func NewReviewService() *reviewService {
	return &reviewService{
		cache: expirable.NewLRU[int, reviewPage](128, nil, time.Minute),
	}
}

func (rs *reviewService) RestaurantReviews(ctx context.Context, restaurantID int) ([]models.Review, models.ReviewStats, error) {
	if page, ok := rs.cache.Get(restaurantID); ok {
		return page.reviews, page.stats, nil
	}

	query := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar).
		Select("d.id", "d.food_type", "d.rating", "d.review", "d.rated_at",
			"n.id", "n.name", "n.avatar").
		From("donations d").
		LeftJoin("users n ON d.requested_by = n.id").
		Where(squirrel.And{
			squirrel.Eq{"d.restaurant_id": restaurantID},
			squirrel.NotEq{"d.rating": nil},
		}).
		OrderBy("d.rated_at DESC")

	sqlStr, args, err := query.ToSql()
	if err != nil {
		log.Printf("Failed to build SQL query: %v", err)
		return nil, models.ReviewStats{}, err
	}

	rows, err := db.Pool.Query(ctx, sqlStr, args...)
	if err != nil {
		log.Printf("Error fetching reviews for restaurant %d: %v", restaurantID, err)
		return nil, models.ReviewStats{}, err
	}
	defer rows.Close()

	reviews := make([]models.Review, 0)
	ratingSum := 0
	for rows.Next() {
		var review models.Review
		var text *string
		var ngoID *int
		var ngoName, ngoAvatar *string
		err := rows.Scan(&review.DonationID, &review.FoodType, &review.Rating, &text, &review.RatedAt,
			&ngoID, &ngoName, &ngoAvatar)
		if err != nil {
			log.Printf("Error scanning review row: %v", err)
			continue
		}
		if text != nil {
			review.Review = *text
		}
		if ngoID != nil {
			review.NGO = &models.UserRef{ID: *ngoID, Avatar: ngoAvatar}
			if ngoName != nil {
				review.NGO.Name = *ngoName
			}
		}
		ratingSum += review.Rating
		reviews = append(reviews, review)
	}
	if rows.Err() != nil {
		return nil, models.ReviewStats{}, rows.Err()
	}

	stats := models.ReviewStats{TotalReviews: len(reviews)}
	if len(reviews) > 0 {
		average := float64(ratingSum) / float64(len(reviews))
		stats.AverageRating = math.Round(average*10) / 10
	}

	rs.cache.Add(restaurantID, reviewPage{reviews: reviews, stats: stats})

	log.Printf("Fetched %d reviews for restaurant %d (avg %.1f)", len(reviews), restaurantID, stats.AverageRating)
	return reviews, stats, nil
}

func (rs *reviewService) InvalidateStats(restaurantID int) {
	rs.cache.Remove(restaurantID)
}
