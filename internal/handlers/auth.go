package handlers

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"os"
	"strconv"

	"FoodBridge/server/internal/models"
	"FoodBridge/server/internal/utils"

	"github.com/google/uuid"
	"google.golang.org/api/idtoken"
)

type registerRequest struct {
	Name     string           `json:"name"`
	Email    string           `json:"email"`
	Phone    *string          `json:"phone"`
	Password string           `json:"password"`
	Location *models.Location `json:"location"`
}

func register(w http.ResponseWriter, r *http.Request, role string) {
	var req registerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Name == "" || req.Email == "" || req.Password == "" {
		log.Printf("Invalid register request: %v", err)
		writeMessage(w, http.StatusBadRequest, "Name, email and password are required")
		return
	}

	ctx := r.Context()

	exists, err := userService.CheckEmailExists(ctx, req.Email)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	if exists {
		writeServiceError(w, models.ErrEmailTaken)
		return
	}

	user := &models.User{
		Name:     req.Name,
		Email:    req.Email,
		Role:     role,
		Phone:    req.Phone,
		Location: req.Location,
	}

	userID, err := userService.CreateUser(ctx, user, req.Password)
	if err != nil {
		log.Printf("Error creating %s account: %v", role, err)
		writeMessage(w, http.StatusInternalServerError, "Failed to create user")
		return
	}

	writeJSON(w, http.StatusCreated, map[string]string{
		"message": "User created",
		"user_id": strconv.Itoa(userID),
	})
}

func RegisterNGO(w http.ResponseWriter, r *http.Request) {
	register(w, r, models.RoleNGO)
}

func RegisterRestaurant(w http.ResponseWriter, r *http.Request) {
	register(w, r, models.RoleRestaurant)
}

func login(w http.ResponseWriter, r *http.Request, role string) {
	var loginData struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}

	if err := json.NewDecoder(r.Body).Decode(&loginData); err != nil || loginData.Email == "" || loginData.Password == "" {
		writeMessage(w, http.StatusBadRequest, "Email and password are required")
		return
	}

	ctx := r.Context()

	user, err := userService.GetUserByEmail(ctx, loginData.Email)
	if err != nil || user.Role != role {
		log.Printf("Login failed for %s as %s: %v", loginData.Email, role, err)
		writeMessage(w, http.StatusUnauthorized, "Invalid email or password")
		return
	}

	if err := utils.CheckPasswordHash(loginData.Password, user.PasswordHash); err != nil {
		log.Printf("Password verification failed for user %d", user.ID)
		writeMessage(w, http.StatusUnauthorized, "Invalid email or password")
		return
	}

	tokenString, err := utils.GenerateToken(user)
	if err != nil {
		log.Printf("Error creating token for user %d: %v", user.ID, err)
		writeMessage(w, http.StatusInternalServerError, "Token creation error")
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"token": tokenString,
		"user":  user,
	})
}

func LoginNGO(w http.ResponseWriter, r *http.Request) {
	login(w, r, models.RoleNGO)
}

func LoginRestaurant(w http.ResponseWriter, r *http.Request) {
	login(w, r, models.RoleRestaurant)
}

// GoogleAuth verifies a Google ID token and signs the user in, creating
// the account on first login. The client is told when a location still
// needs to be captured.
func GoogleAuth(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Credential string `json:"credential"`
		Role       string `json:"role"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Credential == "" {
		writeMessage(w, http.StatusBadRequest, "Missing Google credential")
		return
	}
	if req.Role != models.RoleRestaurant && req.Role != models.RoleNGO {
		writeMessage(w, http.StatusBadRequest, "Invalid role")
		return
	}

	ctx := r.Context()

	payload, err := idtoken.Validate(ctx, req.Credential, os.Getenv("GOOGLE_CLIENT_ID"))
	if err != nil {
		log.Printf("Google token validation failed: %v", err)
		writeMessage(w, http.StatusUnauthorized, "Invalid Google credential")
		return
	}

	email, _ := payload.Claims["email"].(string)
	name, _ := payload.Claims["name"].(string)
	picture, _ := payload.Claims["picture"].(string)
	if email == "" {
		writeMessage(w, http.StatusUnauthorized, "Google credential has no email")
		return
	}

	user, err := userService.GetUserByEmail(ctx, email)
	if errors.Is(err, models.ErrUserNotFound) {
		newUser := &models.User{Name: name, Email: email, Role: req.Role}
		if picture != "" {
			newUser.Avatar = &picture
		}
		// Google accounts never log in by password; the stored hash is a
		// throwaway.
		userID, createErr := userService.CreateUser(ctx, newUser, uuid.NewString())
		if createErr != nil {
			log.Printf("Error creating Google user %s: %v", email, createErr)
			writeMessage(w, http.StatusInternalServerError, "Failed to create user")
			return
		}
		user, err = userService.GetUserById(ctx, userID)
	}
	if err != nil {
		writeServiceError(w, err)
		return
	}

	if user.Role != req.Role {
		writeMessage(w, http.StatusConflict, "An account with this email exists with a different role")
		return
	}

	tokenString, err := utils.GenerateToken(user)
	if err != nil {
		log.Printf("Error creating token for user %d: %v", user.ID, err)
		writeMessage(w, http.StatusInternalServerError, "Token creation error")
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"token":         tokenString,
		"user":          user,
		"needsLocation": user.Location == nil,
	})
}

func UpdateLocation(w http.ResponseWriter, r *http.Request) {
	sess, ok := currentSession(w, r)
	if !ok {
		return
	}

	var location models.Location
	if err := json.NewDecoder(r.Body).Decode(&location); err != nil || location.Address == "" {
		writeMessage(w, http.StatusBadRequest, "Latitude, longitude and address are required")
		return
	}

	if err := userService.UpdateLocation(r.Context(), sess.UserID, location); err != nil {
		writeServiceError(w, err)
		return
	}

	user, err := userService.GetUserById(r.Context(), sess.UserID)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"message": "Location updated",
		"user":    user,
	})
}

func ListNGOs(w http.ResponseWriter, r *http.Request) {
	listByRole(w, r, models.RoleNGO)
}

func ListRestaurants(w http.ResponseWriter, r *http.Request) {
	listByRole(w, r, models.RoleRestaurant)
}

func listByRole(w http.ResponseWriter, r *http.Request, role string) {
	users, err := userService.ListByRole(r.Context(), role)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{role + "s": users})
}
