package database

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/runpool/runpool-backend/internal/models"
)

// uniqueViolation is the Postgres error code raised by the partial unique
// index on (trip_id, passenger_id) WHERE deleted_at IS NULL.
const uniqueViolation = "23505"

// ReservationRepository handles database operations for trip_passengers.
type ReservationRepository struct {
	db *sqlx.DB
}

// NewReservationRepository creates a new ReservationRepository
func NewReservationRepository(db *sqlx.DB) *ReservationRepository {
	return &ReservationRepository{db: db}
}

// Join reserves a seat on a trip. The whole operation runs in one
// transaction that locks the trip row before reading the reservation set,
// so two concurrent joins for the last seat serialize and the loser sees
// the winner's row. A tombstoned reservation for the same passenger is
// reactivated instead of inserting a second row.
func (r *ReservationRepository) Join(tripID, passengerID string) (*models.Reservation, error) {
	tx, err := r.db.Beginx()
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	var seatCount int
	err = tx.Get(&seatCount, `
		SELECT seat_count FROM trips
		WHERE id = $1 AND deleted_at IS NULL
		FOR UPDATE
	`, tripID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, models.ErrTripNotFound
		}
		return nil, err
	}

	var history []models.Reservation
	err = tx.Select(&history, `
		SELECT id, trip_id, passenger_id, created_at, updated_at, deleted_at
		FROM trip_passengers
		WHERE trip_id = $1
		ORDER BY created_at
	`, tripID)
	if err != nil {
		return nil, err
	}

	decision, err := models.DecideJoin(seatCount, history, passengerID)
	if err != nil {
		return nil, err
	}

	var reservation *models.Reservation
	switch decision.Action {
	case models.JoinReactivate:
		reservation = decision.Existing
		err = tx.QueryRow(`
			UPDATE trip_passengers
			SET deleted_at = NULL, updated_at = NOW()
			WHERE id = $1
			RETURNING updated_at
		`, reservation.ID).Scan(&reservation.UpdatedAt)
		if err != nil {
			return nil, err
		}
		reservation.DeletedAt = nil
	case models.JoinCreate:
		reservation = &models.Reservation{
			ID:          uuid.New().String(),
			TripID:      tripID,
			PassengerID: passengerID,
		}
		err = tx.QueryRow(`
			INSERT INTO trip_passengers (id, trip_id, passenger_id)
			VALUES ($1, $2, $3)
			RETURNING created_at, updated_at
		`, reservation.ID, reservation.TripID, reservation.PassengerID).
			Scan(&reservation.CreatedAt, &reservation.UpdatedAt)
		if err != nil {
			if isUniqueViolation(err) {
				return nil, models.ErrAlreadyJoined
			}
			return nil, err
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}
	return reservation, nil
}

// Cancel tombstones the passenger's active reservation on the trip.
func (r *ReservationRepository) Cancel(tripID, passengerID string) error {
	result, err := r.db.Exec(`
		UPDATE trip_passengers
		SET deleted_at = NOW(), updated_at = NOW()
		WHERE trip_id = $1 AND passenger_id = $2 AND deleted_at IS NULL
	`, tripID, passengerID)
	if err != nil {
		return err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return models.ErrReservationNotFound
	}
	return nil
}

// GetActive retrieves the passenger's active reservation on the trip.
func (r *ReservationRepository) GetActive(tripID, passengerID string) (*models.Reservation, error) {
	query := `
		SELECT id, trip_id, passenger_id, created_at, updated_at, deleted_at
		FROM trip_passengers
		WHERE trip_id = $1 AND passenger_id = $2 AND deleted_at IS NULL
	`

	var reservation models.Reservation
	if err := r.db.Get(&reservation, query, tripID, passengerID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, models.ErrReservationNotFound
		}
		return nil, err
	}
	return &reservation, nil
}

// ListActiveByTrip retrieves the trip's active reservations, oldest first.
func (r *ReservationRepository) ListActiveByTrip(tripID string) ([]models.Reservation, error) {
	query := `
		SELECT id, trip_id, passenger_id, created_at, updated_at, deleted_at
		FROM trip_passengers
		WHERE trip_id = $1 AND deleted_at IS NULL
		ORDER BY created_at
	`

	var reservations []models.Reservation
	if err := r.db.Select(&reservations, query, tripID); err != nil {
		return nil, err
	}
	return reservations, nil
}

// CountActive counts the trip's active reservations.
func (r *ReservationRepository) CountActive(tripID string) (int, error) {
	var count int
	err := r.db.Get(&count, `
		SELECT COUNT(*) FROM trip_passengers
		WHERE trip_id = $1 AND deleted_at IS NULL
	`, tripID)
	return count, err
}

func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == uniqueViolation
}
