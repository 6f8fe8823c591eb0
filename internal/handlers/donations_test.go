package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"FoodBridge/server/internal/models"
	"FoodBridge/server/internal/session"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func requestAs(t *testing.T, sess session.Session, method, target, body string) *http.Request {
	t.Helper()
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	return req.WithContext(session.WithSession(req.Context(), sess))
}

func restaurantSession() session.Session {
	return session.Session{UserID: 1, Role: models.RoleRestaurant, Name: "Spice Garden"}
}

func ngoSession() session.Session {
	return session.Session{UserID: 2, Role: models.RoleNGO, Name: "Helping Hands"}
}

// Validation failures must be rejected before any persistence happens; the
// service layer is never reached in these cases.
func TestCreateDonationRejectsInvalidFields(t *testing.T) {
	body := `{
		"foodType": "R1ce123",
		"quantity": "5kg",
		"expiryTime": "2099-01-01T12:00",
		"pickupLocation": "12 Main St, City",
		"preferredOption": "NGO Pickup"
	}`

	rec := httptest.NewRecorder()
	CreateDonation(rec, requestAs(t, restaurantSession(), http.MethodPost, "/api/donations/create", body))

	require.Equal(t, http.StatusBadRequest, rec.Code)

	var resp struct {
		Message string            `json:"message"`
		Errors  map[string]string `json:"errors"`
	}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Equal(t, "Please correct the highlighted errors", resp.Message)
	assert.Equal(t, "Only alphabets allowed (e.g., Rice, Bread, Curry)", resp.Errors["foodType"])
	assert.NotContains(t, resp.Errors, "quantity")
}

func TestCreateDonationRejectsMalformedBody(t *testing.T) {
	rec := httptest.NewRecorder()
	CreateDonation(rec, requestAs(t, restaurantSession(), http.MethodPost, "/api/donations/create", "{not json"))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCreateDonationRequiresRestaurantRole(t *testing.T) {
	rec := httptest.NewRecorder()
	CreateDonation(rec, requestAs(t, ngoSession(), http.MethodPost, "/api/donations/create", "{}"))

	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestCreateDonationRequiresSession(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/api/donations/create", strings.NewReader("{}"))
	rec := httptest.NewRecorder()
	CreateDonation(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestRequestDonationRejectsBadID(t *testing.T) {
	r := chi.NewRouter()
	r.Post("/api/donations/request/{id}", RequestDonation)

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, requestAs(t, ngoSession(), http.MethodPost, "/api/donations/request/abc", ""))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCreateDonationRejectsPastExpiry(t *testing.T) {
	body := `{
		"foodType": "Rice",
		"quantity": "5kg",
		"expiryTime": "2020-01-01T12:00",
		"pickupLocation": "12 Main St, City",
		"preferredOption": "NGO Pickup"
	}`

	rec := httptest.NewRecorder()
	CreateDonation(rec, requestAs(t, restaurantSession(), http.MethodPost, "/api/donations/create", body))

	require.Equal(t, http.StatusBadRequest, rec.Code)

	var resp struct {
		Errors map[string]string `json:"errors"`
	}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Equal(t, "Expiry time cannot be in the past", resp.Errors["expiryTime"])
}

// A rating supplied on completion gets the same 400s as the standalone
// rate endpoint, never a generic 500.
func TestCompleteDonationRejectsOutOfRangeRating(t *testing.T) {
	r := chi.NewRouter()
	r.Post("/api/donations/complete/{id}", CompleteDonation)

	for _, body := range []string{`{"rating": 0}`, `{"rating": 9, "review": "Great!"}`} {
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, requestAs(t, ngoSession(), http.MethodPost, "/api/donations/complete/5", body))

		require.Equal(t, http.StatusBadRequest, rec.Code, "body %s", body)

		var resp struct {
			Message string `json:"message"`
		}
		require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
		assert.Equal(t, "Rating must be between 1 and 5", resp.Message)
	}
}

func TestCompleteDonationRejectsOverlongReview(t *testing.T) {
	r := chi.NewRouter()
	r.Post("/api/donations/complete/{id}", CompleteDonation)

	long := strings.Repeat("x", 501)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, requestAs(t, ngoSession(), http.MethodPost, "/api/donations/complete/5",
		`{"rating": 4, "review": "`+long+`"}`))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestRateDonationRejectsOutOfRangeRating(t *testing.T) {
	r := chi.NewRouter()
	r.Post("/api/donations/{id}/rate", RateDonation)

	for _, body := range []string{`{"rating": 0}`, `{"rating": 6}`} {
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, requestAs(t, ngoSession(), http.MethodPost, "/api/donations/5/rate", body))
		assert.Equal(t, http.StatusBadRequest, rec.Code, "body %s", body)
	}
}

func TestRateDonationRejectsOverlongReview(t *testing.T) {
	r := chi.NewRouter()
	r.Post("/api/donations/{id}/rate", RateDonation)

	long := strings.Repeat("x", 501)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, requestAs(t, ngoSession(), http.MethodPost, "/api/donations/5/rate",
		`{"rating": 4, "review": "`+long+`"}`))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestAcceptDonationRequiresRestaurantRole(t *testing.T) {
	r := chi.NewRouter()
	r.Post("/api/donations/accept/{id}", AcceptDonation)

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, requestAs(t, ngoSession(), http.MethodPost, "/api/donations/accept/5", ""))

	assert.Equal(t, http.StatusForbidden, rec.Code)
}
