package models

import "time"

type Review struct {
	DonationID int       `json:"donationId"`
	FoodType   string    `json:"foodType"`
	Rating     int       `json:"rating"`
	Review     string    `json:"review,omitempty"`
	RatedAt    time.Time `json:"ratedAt"`
	NGO        *UserRef  `json:"ngo,omitempty"`
}

type ReviewStats struct {
	AverageRating float64 `json:"averageRating"`
	TotalReviews  int     `json:"totalReviews"`
}
