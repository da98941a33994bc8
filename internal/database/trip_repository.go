package database

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/runpool/runpool-backend/internal/models"
)

// TripRepository handles database operations for trips.
type TripRepository struct {
	db *sqlx.DB
}

// NewTripRepository creates a new TripRepository
func NewTripRepository(db *sqlx.DB) *TripRepository {
	return &TripRepository{db: db}
}

const tripColumns = `
	id, driver_id, race_id, car_id, departure_day, departure_hour,
	departure_city, departure_province, arrival_city, arrival_province,
	description, seat_count, created_at, deleted_at
`

// CreateWithDriver creates a trip and the driver's own reservation in one
// transaction, so a trip never exists without its driver occupying a seat.
func (r *TripRepository) CreateWithDriver(trip *models.Trip) (*models.Reservation, error) {
	tx, err := r.db.Beginx()
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if trip.ID == "" {
		trip.ID = uuid.New().String()
	}

	insertTrip := `
		INSERT INTO trips (
			id, driver_id, race_id, car_id, departure_day, departure_hour,
			departure_city, departure_province, arrival_city, arrival_province,
			description, seat_count
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		RETURNING created_at
	`
	err = tx.QueryRow(
		insertTrip,
		trip.ID, trip.DriverID, trip.RaceID, trip.CarID,
		trip.DepartureDay, trip.DepartureHour,
		trip.DepartureCity, trip.DepartureProvince,
		trip.ArrivalCity, trip.ArrivalProvince,
		trip.Description, trip.SeatCount,
	).Scan(&trip.CreatedAt)
	if err != nil {
		return nil, err
	}

	reservation := &models.Reservation{
		ID:          uuid.New().String(),
		TripID:      trip.ID,
		PassengerID: trip.DriverID,
	}
	insertReservation := `
		INSERT INTO trip_passengers (id, trip_id, passenger_id)
		VALUES ($1, $2, $3)
		RETURNING created_at, updated_at
	`
	err = tx.QueryRow(insertReservation, reservation.ID, reservation.TripID, reservation.PassengerID).
		Scan(&reservation.CreatedAt, &reservation.UpdatedAt)
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}
	return reservation, nil
}

// GetByID retrieves a trip by ID
func (r *TripRepository) GetByID(tripID string) (*models.Trip, error) {
	query := `SELECT ` + tripColumns + ` FROM trips WHERE id = $1 AND deleted_at IS NULL`

	var trip models.Trip
	if err := r.db.Get(&trip, query, tripID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, models.ErrTripNotFound
		}
		return nil, err
	}
	return &trip, nil
}

// ListByRace retrieves all live trips for a race, earliest departure first.
func (r *TripRepository) ListByRace(raceID string) ([]models.Trip, error) {
	query := `
		SELECT ` + tripColumns + `
		FROM trips
		WHERE race_id = $1 AND deleted_at IS NULL
		ORDER BY departure_day, departure_hour
	`

	var trips []models.Trip
	if err := r.db.Select(&trips, query, raceID); err != nil {
		return nil, err
	}
	return trips, nil
}

// ListByPassenger retrieves the live trips where the user holds an active
// reservation (their own driven trips included).
func (r *TripRepository) ListByPassenger(passengerID string) ([]models.Trip, error) {
	query := `
		SELECT t.id, t.driver_id, t.race_id, t.car_id, t.departure_day, t.departure_hour,
			   t.departure_city, t.departure_province, t.arrival_city, t.arrival_province,
			   t.description, t.seat_count, t.created_at, t.deleted_at
		FROM trips t
		JOIN trip_passengers tp ON tp.trip_id = t.id
		WHERE tp.passenger_id = $1
		  AND tp.deleted_at IS NULL
		  AND t.deleted_at IS NULL
		ORDER BY t.departure_day, t.departure_hour
	`

	var trips []models.Trip
	if err := r.db.Select(&trips, query, passengerID); err != nil {
		return nil, err
	}
	return trips, nil
}

// Update partially updates a trip. Seat count and the trip's driver, race
// and car bindings are immutable.
func (r *TripRepository) Update(tripID string, req *models.UpdateTripRequest) (*models.Trip, error) {
	query := `
		UPDATE trips
		SET departure_day = COALESCE($2, departure_day),
			departure_hour = COALESCE($3, departure_hour),
			departure_city = COALESCE($4, departure_city),
			departure_province = COALESCE($5, departure_province),
			arrival_city = COALESCE($6, arrival_city),
			arrival_province = COALESCE($7, arrival_province),
			description = COALESCE($8, description)
		WHERE id = $1 AND deleted_at IS NULL
	`
	result, err := r.db.Exec(
		query,
		tripID, req.DepartureDay, req.DepartureHour,
		req.DepartureCity, req.DepartureProvince,
		req.ArrivalCity, req.ArrivalProvince, req.Description,
	)
	if err != nil {
		return nil, err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return nil, err
	}
	if affected == 0 {
		return nil, models.ErrTripNotFound
	}
	return r.GetByID(tripID)
}

// SoftDeleteCascade tombstones the trip and every active reservation on it
// in one transaction. Reservation history is kept.
func (r *TripRepository) SoftDeleteCascade(tripID string) error {
	tx, err := r.db.Beginx()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.Exec(`
		UPDATE trip_passengers
		SET deleted_at = NOW(), updated_at = NOW()
		WHERE trip_id = $1 AND deleted_at IS NULL
	`, tripID)
	if err != nil {
		return err
	}

	result, err := tx.Exec(`
		UPDATE trips
		SET deleted_at = NOW()
		WHERE id = $1 AND deleted_at IS NULL
	`, tripID)
	if err != nil {
		return err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return models.ErrTripNotFound
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}
