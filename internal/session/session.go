// Package session carries the authenticated identity through a request.
// Handlers and services read the typed Session instead of raw context keys.
package session

import (
	"context"

	"FoodBridge/server/internal/models"
)

type contextKey struct{}

type Session struct {
	UserID int
	Role   string
	Name   string
}

func (s Session) IsRestaurant() bool {
	return s.Role == models.RoleRestaurant
}

func (s Session) IsNGO() bool {
	return s.Role == models.RoleNGO
}

// WithSession installs the session into the context at login/auth time.
func WithSession(ctx context.Context, s Session) context.Context {
	return context.WithValue(ctx, contextKey{}, s)
}

// FromContext retrieves the session; ok is false for unauthenticated
// requests.
func FromContext(ctx context.Context) (Session, bool) {
	s, ok := ctx.Value(contextKey{}).(Session)
	return s, ok
}
