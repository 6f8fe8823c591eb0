package services

import (
	"context"
	"errors"
	"log"

	"FoodBridge/server/internal/db"
	"FoodBridge/server/internal/models"
	"FoodBridge/server/internal/utils"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
)

type UserService struct{}

func NewUserService() *UserService {
	return &UserService{}
}

func (us *UserService) CheckEmailExists(ctx context.Context, email string) (bool, error) {
	query := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar).
		Select("COUNT(*)").
		From("users").
		Where(squirrel.Eq{"email": email})

	sqlStr, args, err := query.ToSql()
	if err != nil {
		log.Printf("Failed to build SQL query: %v", err)
		return false, err
	}

	var count int
	err = db.Pool.QueryRow(ctx, sqlStr, args...).Scan(&count)
	if err != nil {
		log.Printf("Error executing query: %v", err)
		return false, err
	}

	return count > 0, nil
}

func (us *UserService) CreateUser(ctx context.Context, user *models.User, password string) (int, error) {
	hashedPassword, err := utils.HashPassword(password)
	if err != nil {
		log.Printf("Failed to hash password: %v", err)
		return 0, err
	}

	var latitude, longitude, address interface{}
	if user.Location != nil {
		latitude = user.Location.Latitude
		longitude = user.Location.Longitude
		address = user.Location.Address
	}

	query := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar).
		Insert("users").
		Columns("name", "email", "password_hash", "role", "phone", "latitude", "longitude", "address", "avatar").
		Values(user.Name, user.Email, hashedPassword, user.Role, user.Phone, latitude, longitude, address, user.Avatar).
		Suffix("RETURNING id")

	sqlStr, args, err := query.ToSql()
	if err != nil {
		log.Printf("Failed to build SQL query: %v", err)
		return 0, err
	}

	log.Printf("Executing SQL: %s", sqlStr)

	var userId int
	err = db.Pool.QueryRow(ctx, sqlStr, args...).Scan(&userId)
	if err != nil {
		log.Printf("Error creating user: %v", err)
		return 0, err
	}

	log.Printf("User created: %s (ID: %d, role: %s)", user.Name, userId, user.Role)
	return userId, nil
}

var userColumns = []string{"id", "name", "email", "password_hash", "role", "phone", "latitude", "longitude", "address", "avatar", "created_at"}

func scanUser(row pgx.Row) (*models.User, error) {
	var user models.User
	var latitude, longitude *float64
	var address *string
	err := row.Scan(&user.ID, &user.Name, &user.Email, &user.PasswordHash, &user.Role,
		&user.Phone, &latitude, &longitude, &address, &user.Avatar, &user.CreatedAt)
	if err != nil {
		return nil, err
	}
	if latitude != nil && longitude != nil {
		user.Location = &models.Location{Latitude: *latitude, Longitude: *longitude}
		if address != nil {
			user.Location.Address = *address
		}
	}
	return &user, nil
}

func (us *UserService) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	query := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar).
		Select(userColumns...).
		From("users").
		Where(squirrel.Eq{"email": email})

	sqlStr, args, err := query.ToSql()
	if err != nil {
		log.Printf("Failed to build SQL query: %v", err)
		return nil, err
	}

	user, err := scanUser(db.Pool.QueryRow(ctx, sqlStr, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, models.ErrUserNotFound
		}
		log.Printf("Error fetching user by email: %v", err)
		return nil, err
	}

	return user, nil
}

func (us *UserService) GetUserById(ctx context.Context, id int) (*models.User, error) {
	query := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar).
		Select(userColumns...).
		From("users").
		Where(squirrel.Eq{"id": id})

	sqlStr, args, err := query.ToSql()
	if err != nil {
		log.Printf("Failed to build SQL query: %v", err)
		return nil, err
	}

	user, err := scanUser(db.Pool.QueryRow(ctx, sqlStr, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, models.ErrUserNotFound
		}
		log.Printf("Error fetching user %d: %v", id, err)
		return nil, err
	}

	return user, nil
}

func (us *UserService) UpdateLocation(ctx context.Context, userID int, location models.Location) error {
	query := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar).
		Update("users").
		Set("latitude", location.Latitude).
		Set("longitude", location.Longitude).
		Set("address", location.Address).
		Where(squirrel.Eq{"id": userID})

	sqlStr, args, err := query.ToSql()
	if err != nil {
		log.Printf("Failed to build SQL query: %v", err)
		return err
	}

	result, err := db.Pool.Exec(ctx, sqlStr, args...)
	if err != nil {
		log.Printf("Error updating location for user %d: %v", userID, err)
		return err
	}
	if result.RowsAffected() == 0 {
		return models.ErrUserNotFound
	}

	log.Printf("Location updated for user %d (%s)", userID, location.Address)
	return nil
}

// ListByRole powers the public NGO/restaurant directories used by the
// client's map view. Password hashes never leave this layer.
func (us *UserService) ListByRole(ctx context.Context, role string) ([]models.User, error) {
	query := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar).
		Select(userColumns...).
		From("users").
		Where(squirrel.Eq{"role": role}).
		OrderBy("name ASC")

	sqlStr, args, err := query.ToSql()
	if err != nil {
		log.Printf("Failed to build SQL query: %v", err)
		return nil, err
	}

	rows, err := db.Pool.Query(ctx, sqlStr, args...)
	if err != nil {
		log.Printf("Error listing users with role %s: %v", role, err)
		return nil, err
	}
	defer rows.Close()

	var users []models.User
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			log.Printf("Error scanning user row: %v", err)
			continue
		}
		user.PasswordHash = ""
		users = append(users, *user)
	}
	if rows.Err() != nil {
		return nil, rows.Err()
	}

	return users, nil
}
