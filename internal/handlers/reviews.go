package handlers

import (
	"log"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
)

func RestaurantReviews(w http.ResponseWriter, r *http.Request) {
	if _, ok := currentSession(w, r); !ok {
		return
	}

	idStr := chi.URLParam(r, "id")
	restaurantID, err := strconv.Atoi(idStr)
	if err != nil || restaurantID <= 0 {
		log.Printf("Invalid restaurant ID: %s", idStr)
		writeMessage(w, http.StatusBadRequest, "Invalid restaurant ID")
		return
	}

	reviews, stats, err := reviewService.RestaurantReviews(r.Context(), restaurantID)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"reviews": reviews,
		"stats":   stats,
	})
}
