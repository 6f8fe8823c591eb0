package services

import (
	"context"
	"errors"
	"log"
	"math"
	"time"

	"FoodBridge/server/internal/db"
	"FoodBridge/server/internal/models"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jonboulle/clockwork"
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geo"
)

type DonationService interface {
	Create(ctx context.Context, restaurantID int, donation *models.Donation) (*models.Donation, error)
	Request(ctx context.Context, donationID, ngoID int) (*models.Donation, error)
	Accept(ctx context.Context, donationID, restaurantID int) (*models.Donation, error)
	Reject(ctx context.Context, donationID, restaurantID int) (*models.Donation, error)
	Complete(ctx context.Context, donationID, ngoID int, rating *int, review *string) (*models.Donation, error)
	Rate(ctx context.Context, donationID, ngoID, rating int, review string) (*models.Donation, error)
	GetByID(ctx context.Context, donationID int) (*models.Donation, error)
	ListAvailable(ctx context.Context, ngo *models.User) ([]models.Donation, error)
	ListMyRequests(ctx context.Context, ngoID int) ([]models.Donation, error)
	ListByRestaurant(ctx context.Context, restaurantID int) ([]models.Donation, error)
}

type donationService struct {
	clock clockwork.Clock
}

func NewDonationService(clock clockwork.Clock) *donationService {
	return &donationService{clock: clock}
}

func donationSelect() squirrel.SelectBuilder {
	return squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar).
		Select("d.id", "d.food_type", "d.quantity", "d.expiry_time", "d.pickup_location",
			"d.preferred_option", "d.status", "d.requested_at", "d.accepted_at", "d.completed_at",
			"d.rating", "d.review", "d.rated_at", "d.created_at",
			"r.id", "r.name", "r.email", "r.phone", "r.address", "r.avatar", "r.latitude", "r.longitude",
			"n.id", "n.name", "n.email", "n.phone", "n.address", "n.avatar").
		From("donations d").
		LeftJoin("users r ON d.restaurant_id = r.id").
		LeftJoin("users n ON d.requested_by = n.id")
}

func scanDonation(row pgx.Row) (*models.Donation, *orb.Point, error) {
	var d models.Donation
	var rID, nID *int
	var rName, rEmail, rPhone, rAddress, rAvatar *string
	var nName, nEmail, nPhone, nAddress, nAvatar *string
	var rLat, rLng *float64

	err := row.Scan(&d.ID, &d.FoodType, &d.Quantity, &d.ExpiryTime, &d.PickupLocation,
		&d.PreferredOption, &d.Status, &d.RequestedAt, &d.AcceptedAt, &d.CompletedAt,
		&d.Rating, &d.Review, &d.RatedAt, &d.CreatedAt,
		&rID, &rName, &rEmail, &rPhone, &rAddress, &rAvatar, &rLat, &rLng,
		&nID, &nName, &nEmail, &nPhone, &nAddress, &nAvatar)
	if err != nil {
		return nil, nil, err
	}

	if rID != nil {
		d.Restaurant = &models.UserRef{ID: *rID, Phone: rPhone, Address: rAddress, Avatar: rAvatar}
		if rName != nil {
			d.Restaurant.Name = *rName
		}
		if rEmail != nil {
			d.Restaurant.Email = *rEmail
		}
	}
	if nID != nil {
		d.RequestedBy = &models.UserRef{ID: *nID, Phone: nPhone, Address: nAddress, Avatar: nAvatar}
		if nName != nil {
			d.RequestedBy.Name = *nName
		}
		if nEmail != nil {
			d.RequestedBy.Email = *nEmail
		}
	}

	var restaurantPoint *orb.Point
	if rLat != nil && rLng != nil {
		restaurantPoint = &orb.Point{*rLng, *rLat}
	}
	return &d, restaurantPoint, nil
}

func (ds *donationService) Create(ctx context.Context, restaurantID int, donation *models.Donation) (*models.Donation, error) {
	query := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar).
		Insert("donations").
		Columns("food_type", "quantity", "expiry_time", "pickup_location", "preferred_option", "status", "restaurant_id").
		Values(donation.FoodType, donation.Quantity, donation.ExpiryTime, donation.PickupLocation,
			donation.PreferredOption, models.StatusAvailable, restaurantID).
		Suffix("RETURNING id")

	sqlStr, args, err := query.ToSql()
	if err != nil {
		log.Printf("Failed to build SQL query: %v", err)
		return nil, err
	}

	log.Printf("Executing SQL: %s", sqlStr)

	var donationID int
	err = db.Pool.QueryRow(ctx, sqlStr, args...).Scan(&donationID)
	if err != nil {
		log.Printf("Error creating donation: %v", err)
		return nil, err
	}

	log.Printf("Donation created with ID %d by restaurant %d", donationID, restaurantID)
	return ds.GetByID(ctx, donationID)
}

func (ds *donationService) GetByID(ctx context.Context, donationID int) (*models.Donation, error) {
	query := donationSelect().Where(squirrel.Eq{"d.id": donationID})

	sqlStr, args, err := query.ToSql()
	if err != nil {
		log.Printf("Failed to build SQL query: %v", err)
		return nil, err
	}

	donation, _, err := scanDonation(db.Pool.QueryRow(ctx, sqlStr, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, models.ErrDonationNotFound
		}
		log.Printf("Error fetching donation %d: %v", donationID, err)
		return nil, err
	}

	donation.Status = donation.EffectiveStatus(ds.clock.Now())
	return donation, nil
}

// Request moves an Available donation to Requested. The state guard lives
// in the WHERE clause so a lost race leaves the row untouched.
func (ds *donationService) Request(ctx context.Context, donationID, ngoID int) (*models.Donation, error) {
	now := ds.clock.Now()

	query := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar).
		Update("donations").
		Set("status", models.StatusRequested).
		Set("requested_by", ngoID).
		Set("requested_at", now).
		Where(squirrel.And{
			squirrel.Eq{"id": donationID},
			squirrel.Eq{"status": models.StatusAvailable},
			squirrel.Gt{"expiry_time": now},
		})

	sqlStr, args, err := query.ToSql()
	if err != nil {
		log.Printf("Failed to build SQL query: %v", err)
		return nil, err
	}

	log.Printf("Executing SQL: %s, Args: %v", sqlStr, args)

	result, err := db.Pool.Exec(ctx, sqlStr, args...)
	if err != nil {
		log.Printf("Error requesting donation %d: %v", donationID, err)
		return nil, err
	}
	if result.RowsAffected() == 0 {
		return nil, ds.invalidState(ctx, donationID, "request", models.StatusAvailable)
	}

	log.Printf("Donation %d requested by NGO %d", donationID, ngoID)
	return ds.GetByID(ctx, donationID)
}

func (ds *donationService) Accept(ctx context.Context, donationID, restaurantID int) (*models.Donation, error) {
	current, err := ds.GetByID(ctx, donationID)
	if err != nil {
		return nil, err
	}
	if current.Restaurant == nil || current.Restaurant.ID != restaurantID {
		return nil, models.ErrNotOwner
	}
	if current.Status != models.StatusRequested {
		return nil, models.NewInvalidStateError("accept", models.StatusRequested, current.Status)
	}

	query := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar).
		Update("donations").
		Set("status", models.StatusAccepted).
		Set("accepted_at", ds.clock.Now()).
		Where(squirrel.And{
			squirrel.Eq{"id": donationID},
			squirrel.Eq{"status": models.StatusRequested},
		})

	sqlStr, args, err := query.ToSql()
	if err != nil {
		log.Printf("Failed to build SQL query: %v", err)
		return nil, err
	}

	result, err := db.Pool.Exec(ctx, sqlStr, args...)
	if err != nil {
		log.Printf("Error accepting donation %d: %v", donationID, err)
		return nil, err
	}
	if result.RowsAffected() == 0 {
		return nil, ds.invalidState(ctx, donationID, "accept", models.StatusRequested)
	}

	log.Printf("Donation %d accepted by restaurant %d", donationID, restaurantID)
	return ds.GetByID(ctx, donationID)
}

// Reject returns a Requested donation to Available. The rejected request
// is recorded in donation_rejections before the request fields are
// cleared, in the same transaction.
func (ds *donationService) Reject(ctx context.Context, donationID, restaurantID int) (*models.Donation, error) {
	tx, err := db.Pool.Begin(ctx)
	if err != nil {
		log.Printf("Error starting transaction: %v", err)
		return nil, err
	}
	defer tx.Rollback(ctx)

	var status string
	var ownerID int
	var requestedBy *int
	var requestedAt *time.Time
	err = tx.QueryRow(ctx,
		`SELECT status, restaurant_id, requested_by, requested_at FROM donations WHERE id = $1 FOR UPDATE`,
		donationID).Scan(&status, &ownerID, &requestedBy, &requestedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, models.ErrDonationNotFound
		}
		log.Printf("Error locking donation %d: %v", donationID, err)
		return nil, err
	}

	if ownerID != restaurantID {
		return nil, models.ErrNotOwner
	}
	if status != models.StatusRequested || requestedBy == nil || requestedAt == nil {
		return nil, models.NewInvalidStateError("reject", models.StatusRequested, status)
	}

	_, err = tx.Exec(ctx,
		`INSERT INTO donation_rejections (donation_id, ngo_id, requested_at, rejected_at) VALUES ($1, $2, $3, $4)`,
		donationID, *requestedBy, *requestedAt, ds.clock.Now())
	if err != nil {
		log.Printf("Error recording rejection for donation %d: %v", donationID, err)
		return nil, err
	}

	_, err = tx.Exec(ctx,
		`UPDATE donations SET status = $1, requested_by = NULL, requested_at = NULL WHERE id = $2`,
		models.StatusAvailable, donationID)
	if err != nil {
		log.Printf("Error rejecting donation %d: %v", donationID, err)
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		log.Printf("Error committing rejection of donation %d: %v", donationID, err)
		return nil, err
	}

	log.Printf("Donation %d rejected by restaurant %d, returned to Available", donationID, restaurantID)
	return ds.GetByID(ctx, donationID)
}

// Complete finishes an Accepted donation. An optional rating travels in
// the same transaction as the status change: if either part fails the
// donation stays Accepted and the caller can retry.
func (ds *donationService) Complete(ctx context.Context, donationID, ngoID int, rating *int, review *string) (*models.Donation, error) {
	if rating != nil && (*rating < 1 || *rating > 5) {
		return nil, errors.New("rating must be between 1 and 5")
	}
	if review != nil && len(*review) > 500 {
		return nil, errors.New("review must be at most 500 characters")
	}

	tx, err := db.Pool.Begin(ctx)
	if err != nil {
		log.Printf("Error starting transaction: %v", err)
		return nil, err
	}
	defer tx.Rollback(ctx)

	var status string
	var requestedBy *int
	err = tx.QueryRow(ctx,
		`SELECT status, requested_by FROM donations WHERE id = $1 FOR UPDATE`,
		donationID).Scan(&status, &requestedBy)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, models.ErrDonationNotFound
		}
		log.Printf("Error locking donation %d: %v", donationID, err)
		return nil, err
	}

	if status != models.StatusAccepted {
		return nil, models.NewInvalidStateError("complete", models.StatusAccepted, status)
	}
	if requestedBy == nil || *requestedBy != ngoID {
		return nil, models.ErrNotRequester
	}

	now := ds.clock.Now()
	update := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar).
		Update("donations").
		Set("status", models.StatusCompleted).
		Set("completed_at", now).
		Where(squirrel.Eq{"id": donationID})
	if rating != nil {
		update = update.Set("rating", *rating).Set("review", review).Set("rated_at", now)
	}

	sqlStr, args, err := update.ToSql()
	if err != nil {
		log.Printf("Failed to build SQL query: %v", err)
		return nil, err
	}

	if _, err := tx.Exec(ctx, sqlStr, args...); err != nil {
		log.Printf("Error completing donation %d: %v", donationID, err)
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		log.Printf("Error committing completion of donation %d: %v", donationID, err)
		return nil, err
	}

	log.Printf("Donation %d completed by NGO %d (rated: %v)", donationID, ngoID, rating != nil)
	return ds.GetByID(ctx, donationID)
}

// Rate attaches a rating to an already Completed, unrated donation. Once
// set it is immutable.
func (ds *donationService) Rate(ctx context.Context, donationID, ngoID, rating int, review string) (*models.Donation, error) {
	if rating < 1 || rating > 5 {
		return nil, errors.New("rating must be between 1 and 5")
	}
	if len(review) > 500 {
		return nil, errors.New("review must be at most 500 characters")
	}

	query := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar).
		Update("donations").
		Set("rating", rating).
		Set("review", review).
		Set("rated_at", ds.clock.Now()).
		Where(squirrel.And{
			squirrel.Eq{"id": donationID},
			squirrel.Eq{"requested_by": ngoID},
			squirrel.Eq{"status": models.StatusCompleted},
			squirrel.Eq{"rating": nil},
		})

	sqlStr, args, err := query.ToSql()
	if err != nil {
		log.Printf("Failed to build SQL query: %v", err)
		return nil, err
	}

	result, err := db.Pool.Exec(ctx, sqlStr, args...)
	if err != nil {
		log.Printf("Error rating donation %d: %v", donationID, err)
		return nil, err
	}
	if result.RowsAffected() == 0 {
		current, err := ds.GetByID(ctx, donationID)
		if err != nil {
			return nil, err
		}
		if current.RequestedBy == nil || current.RequestedBy.ID != ngoID {
			return nil, models.ErrNotRequester
		}
		if current.Status != models.StatusCompleted {
			return nil, models.NewInvalidStateError("rate", models.StatusCompleted, current.Status)
		}
		return nil, models.ErrAlreadyRated
	}

	log.Printf("Donation %d rated %d by NGO %d", donationID, rating, ngoID)
	return ds.GetByID(ctx, donationID)
}

// ListAvailable returns unexpired Available donations, newest first. When
// the NGO and the restaurant both have coordinates the straight-line
// distance is attached for the client's map and sorting.
func (ds *donationService) ListAvailable(ctx context.Context, ngo *models.User) ([]models.Donation, error) {
	query := donationSelect().
		Where(squirrel.And{
			squirrel.Eq{"d.status": models.StatusAvailable},
			squirrel.Gt{"d.expiry_time": ds.clock.Now()},
		}).
		OrderBy("d.created_at DESC")

	sqlStr, args, err := query.ToSql()
	if err != nil {
		log.Printf("Failed to build SQL query: %v", err)
		return nil, err
	}

	rows, err := db.Pool.Query(ctx, sqlStr, args...)
	if err != nil {
		log.Printf("Error listing available donations: %v", err)
		return nil, err
	}
	defer rows.Close()

	var ngoPoint *orb.Point
	if ngo != nil && ngo.Location != nil {
		p := ngo.Location.Point()
		ngoPoint = &p
	}

	var donations []models.Donation
	for rows.Next() {
		donation, restaurantPoint, err := scanDonation(rows)
		if err != nil {
			log.Printf("Error scanning donation row: %v", err)
			continue
		}
		if ngoPoint != nil && restaurantPoint != nil {
			km := geo.Distance(*ngoPoint, *restaurantPoint) / 1000
			km = math.Round(km*10) / 10
			donation.DistanceKm = &km
		}
		donations = append(donations, *donation)
	}
	if rows.Err() != nil {
		return nil, rows.Err()
	}

	log.Printf("Fetched %d available donations", len(donations))
	return donations, nil
}

func (ds *donationService) ListMyRequests(ctx context.Context, ngoID int) ([]models.Donation, error) {
	query := donationSelect().
		Where(squirrel.Eq{"d.requested_by": ngoID}).
		OrderBy("d.requested_at DESC")

	return ds.list(ctx, query)
}

func (ds *donationService) ListByRestaurant(ctx context.Context, restaurantID int) ([]models.Donation, error) {
	query := donationSelect().
		Where(squirrel.Eq{"d.restaurant_id": restaurantID}).
		OrderBy("d.created_at DESC")

	return ds.list(ctx, query)
}

func (ds *donationService) list(ctx context.Context, query squirrel.SelectBuilder) ([]models.Donation, error) {
	sqlStr, args, err := query.ToSql()
	if err != nil {
		log.Printf("Failed to build SQL query: %v", err)
		return nil, err
	}

	rows, err := db.Pool.Query(ctx, sqlStr, args...)
	if err != nil {
		log.Printf("Error listing donations: %v", err)
		return nil, err
	}
	defer rows.Close()

	now := ds.clock.Now()
	var donations []models.Donation
	for rows.Next() {
		donation, _, err := scanDonation(rows)
		if err != nil {
			log.Printf("Error scanning donation row: %v", err)
			continue
		}
		donation.Status = donation.EffectiveStatus(now)
		donations = append(donations, *donation)
	}
	if rows.Err() != nil {
		return nil, rows.Err()
	}

	return donations, nil
}

// invalidState rebuilds the precise failure after a guarded UPDATE touched
// zero rows.
func (ds *donationService) invalidState(ctx context.Context, donationID int, op, required string) error {
	current, err := ds.GetByID(ctx, donationID)
	if err != nil {
		return err
	}
	return models.NewInvalidStateError(op, required, current.Status)
}
