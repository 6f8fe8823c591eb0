package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"log"
	"net/http"
	"strconv"

	"FoodBridge/server/internal/models"
	"FoodBridge/server/internal/validation"

	"github.com/go-chi/chi/v5"
)

func donationIDParam(w http.ResponseWriter, r *http.Request) (int, bool) {
	idStr := chi.URLParam(r, "id")
	id, err := strconv.Atoi(idStr)
	if err != nil || id <= 0 {
		log.Printf("Invalid donation ID: %s", idStr)
		writeMessage(w, http.StatusBadRequest, "Invalid donation ID")
		return 0, false
	}
	return id, true
}

func CreateDonation(w http.ResponseWriter, r *http.Request) {
	sess, ok := requireRole(w, r, models.RoleRestaurant)
	if !ok {
		return
	}

	var input validation.DonationInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		log.Printf("Invalid donation payload: %v", err)
		writeMessage(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	expiry, fieldErrors := validation.ValidateDonation(input, clock.Now())
	if fieldErrors != nil {
		writeJSON(w, http.StatusBadRequest, map[string]interface{}{
			"message": "Please correct the highlighted errors",
			"errors":  fieldErrors,
		})
		return
	}

	donation := &models.Donation{
		FoodType:        input.FoodType,
		Quantity:        input.Quantity,
		ExpiryTime:      expiry,
		PickupLocation:  input.PickupLocation,
		PreferredOption: input.PreferredOption,
	}

	created, err := donationService.Create(r.Context(), sess.UserID, donation)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, map[string]interface{}{
		"message":  "Donation added successfully",
		"donation": created,
	})
}

func RequestDonation(w http.ResponseWriter, r *http.Request) {
	sess, ok := requireRole(w, r, models.RoleNGO)
	if !ok {
		return
	}
	id, ok := donationIDParam(w, r)
	if !ok {
		return
	}

	donation, err := donationService.Request(r.Context(), id, sess.UserID)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"message":  "Donation requested",
		"donation": donation,
	})
}

func AcceptDonation(w http.ResponseWriter, r *http.Request) {
	sess, ok := requireRole(w, r, models.RoleRestaurant)
	if !ok {
		return
	}
	id, ok := donationIDParam(w, r)
	if !ok {
		return
	}

	donation, err := donationService.Accept(r.Context(), id, sess.UserID)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	// Accepting opens the conversation between the two sides.
	if donation.RequestedBy != nil {
		if _, err := chatService.EnsureChat(r.Context(), sess.UserID, donation.RequestedBy.ID); err != nil {
			log.Printf("Error ensuring chat for donation %d: %v", id, err)
		}
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"message":  "Donation accepted",
		"donation": donation,
	})
}

func RejectDonation(w http.ResponseWriter, r *http.Request) {
	sess, ok := requireRole(w, r, models.RoleRestaurant)
	if !ok {
		return
	}
	id, ok := donationIDParam(w, r)
	if !ok {
		return
	}

	donation, err := donationService.Reject(r.Context(), id, sess.UserID)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"message":  "Request rejected, donation is available again",
		"donation": donation,
	})
}

func CompleteDonation(w http.ResponseWriter, r *http.Request) {
	sess, ok := requireRole(w, r, models.RoleNGO)
	if !ok {
		return
	}
	id, ok := donationIDParam(w, r)
	if !ok {
		return
	}

	// The body is optional: a rating supplied here is applied atomically
	// with the completion.
	var req struct {
		Rating *int    `json:"rating"`
		Review *string `json:"review"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		writeMessage(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.Rating != nil && (*req.Rating < 1 || *req.Rating > 5) {
		writeMessage(w, http.StatusBadRequest, "Rating must be between 1 and 5")
		return
	}
	if req.Review != nil && len(*req.Review) > 500 {
		writeMessage(w, http.StatusBadRequest, "Review must be at most 500 characters")
		return
	}

	donation, err := donationService.Complete(r.Context(), id, sess.UserID, req.Rating, req.Review)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	if req.Rating != nil && donation.Restaurant != nil {
		reviewService.InvalidateStats(donation.Restaurant.ID)
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"message":  "Donation completed",
		"donation": donation,
	})
}

func RateDonation(w http.ResponseWriter, r *http.Request) {
	sess, ok := requireRole(w, r, models.RoleNGO)
	if !ok {
		return
	}
	id, ok := donationIDParam(w, r)
	if !ok {
		return
	}

	var req struct {
		Rating int    `json:"rating"`
		Review string `json:"review"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeMessage(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.Rating < 1 || req.Rating > 5 {
		writeMessage(w, http.StatusBadRequest, "Rating must be between 1 and 5")
		return
	}
	if len(req.Review) > 500 {
		writeMessage(w, http.StatusBadRequest, "Review must be at most 500 characters")
		return
	}

	donation, err := donationService.Rate(r.Context(), id, sess.UserID, req.Rating, req.Review)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	if donation.Restaurant != nil {
		reviewService.InvalidateStats(donation.Restaurant.ID)
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"message":  "Thank you for your feedback",
		"donation": donation,
	})
}

func AvailableDonations(w http.ResponseWriter, r *http.Request) {
	sess, ok := requireRole(w, r, models.RoleNGO)
	if !ok {
		return
	}

	ngo, err := userService.GetUserById(r.Context(), sess.UserID)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	donations, err := donationService.ListAvailable(r.Context(), ngo)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{"donations": donations})
}

func MyRequests(w http.ResponseWriter, r *http.Request) {
	sess, ok := requireRole(w, r, models.RoleNGO)
	if !ok {
		return
	}

	donations, err := donationService.ListMyRequests(r.Context(), sess.UserID)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{"donations": donations})
}

func IncomingRequests(w http.ResponseWriter, r *http.Request) {
	sess, ok := requireRole(w, r, models.RoleRestaurant)
	if !ok {
		return
	}

	donations, err := donationService.ListByRestaurant(r.Context(), sess.UserID)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{"donations": donations})
}
