package handlers

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"FoodBridge/server/internal/models"
	"FoodBridge/server/internal/services"
	"FoodBridge/server/internal/session"

	"github.com/jonboulle/clockwork"
)

var (
	clock           clockwork.Clock
	userService     *services.UserService
	donationService services.DonationService
	chatService     services.ChatService
	historyService  services.HistoryService
	reviewService   services.ReviewService
)

func init() {
	clock = clockwork.NewRealClock()
	userService = services.NewUserService()
	donationService = services.NewDonationService(clock)
	chatService = services.NewChatService(clock)
	historyService = services.NewHistoryService(donationService, clock)
	reviewService = services.NewReviewService()
}

func writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		log.Printf("Error encoding response: %v", err)
	}
}

func writeMessage(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"message": message})
}

// writeServiceError maps the error taxonomy to HTTP statuses. Server-side
// causes are logged; the client gets the taxonomy message, never a
// swallowed failure.
func writeServiceError(w http.ResponseWriter, err error) {
	var invalidState *models.InvalidStateError
	switch {
	case errors.As(err, &invalidState):
		writeMessage(w, http.StatusConflict, invalidState.Error())
	case errors.Is(err, models.ErrAlreadyRated):
		writeMessage(w, http.StatusConflict, err.Error())
	case errors.Is(err, models.ErrEmailTaken):
		writeMessage(w, http.StatusConflict, err.Error())
	case errors.Is(err, models.ErrDonationNotFound),
		errors.Is(err, models.ErrChatNotFound),
		errors.Is(err, models.ErrUserNotFound):
		writeMessage(w, http.StatusNotFound, err.Error())
	case errors.Is(err, models.ErrNotOwner),
		errors.Is(err, models.ErrNotRequester),
		errors.Is(err, models.ErrUserNotParticipant):
		writeMessage(w, http.StatusForbidden, err.Error())
	case errors.Is(err, models.ErrEmptyMessage):
		writeMessage(w, http.StatusBadRequest, err.Error())
	default:
		log.Printf("Internal error: %v", err)
		writeMessage(w, http.StatusInternalServerError, "Internal server error")
	}
}

func currentSession(w http.ResponseWriter, r *http.Request) (session.Session, bool) {
	sess, ok := session.FromContext(r.Context())
	if !ok {
		writeMessage(w, http.StatusUnauthorized, "Unauthorized")
		return session.Session{}, false
	}
	return sess, true
}

func requireRole(w http.ResponseWriter, r *http.Request, role string) (session.Session, bool) {
	sess, ok := currentSession(w, r)
	if !ok {
		return session.Session{}, false
	}
	if sess.Role != role {
		writeMessage(w, http.StatusForbidden, "This action requires the "+role+" role")
		return session.Session{}, false
	}
	return sess, true
}
