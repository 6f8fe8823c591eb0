package models

import (
	"time"

	"github.com/paulmach/orb"
)

const (
	RoleRestaurant = "restaurant"
	RoleNGO        = "ngo"
)

type Location struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	Address   string  `json:"address"`
}

func (l *Location) Point() orb.Point {
	return orb.Point{l.Longitude, l.Latitude}
}

type User struct {
	ID           int       `json:"id" db:"id"`
	Name         string    `json:"name" db:"name"`
	Email        string    `json:"email" db:"email"`
	PasswordHash string    `json:"-" db:"password_hash"`
	Role         string    `json:"role" db:"role"`
	Phone        *string   `json:"phone,omitempty" db:"phone"`
	Location     *Location `json:"location,omitempty"`
	Avatar       *string   `json:"avatar,omitempty" db:"avatar"`
	CreatedAt    time.Time `json:"createdAt" db:"created_at"`
}

// UserRef is the embedded form of a user inside donations and chats.
type UserRef struct {
	ID      int     `json:"id"`
	Name    string  `json:"name"`
	Email   string  `json:"email,omitempty"`
	Phone   *string `json:"phone,omitempty"`
	Address *string `json:"address,omitempty"`
	Avatar  *string `json:"avatar,omitempty"`
}

// DisplayName tolerates missing references so listings never fail on
// orphaned rows. Restaurants fall back to "Unknown", NGOs to "Anonymous".
func DisplayName(ref *UserRef, fallback string) string {
	if ref == nil || ref.Name == "" {
		return fallback
	}
	return ref.Name
}
