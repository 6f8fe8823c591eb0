package utils

import (
	"errors"
	"os"
	"time"

	"github.com/golang-jwt/jwt/v4"

	"FoodBridge/server/internal/models"
	"FoodBridge/server/internal/session"
)

func jwtSecret() []byte {
	if secret := os.Getenv("JWT_SECRET"); secret != "" {
		return []byte(secret)
	}
	return []byte("secret-key")
}

// GenerateToken issues the bearer token the client attaches to every
// request. Claims carry identity and role so the middleware can build a
// session without a database round trip.
func GenerateToken(user *models.User) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"user_id": user.ID,
		"role":    user.Role,
		"name":    user.Name,
		"exp":     time.Now().Add(24 * time.Hour).Unix(),
	})
	return token.SignedString(jwtSecret())
}

// ParseToken validates a bearer token and returns the session it encodes.
func ParseToken(tokenStr string) (session.Session, error) {
	token, err := jwt.Parse(tokenStr, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("invalid signing method")
		}
		return jwtSecret(), nil
	})
	if err != nil || !token.Valid {
		return session.Session{}, errors.New("invalid token")
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || claims["user_id"] == nil || claims["role"] == nil {
		return session.Session{}, errors.New("invalid claims in token")
	}

	sess := session.Session{
		UserID: int(claims["user_id"].(float64)),
		Role:   claims["role"].(string),
	}
	if name, ok := claims["name"].(string); ok {
		sess.Name = name
	}
	return sess, nil
}
