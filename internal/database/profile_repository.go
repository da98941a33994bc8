package database

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/runpool/runpool-backend/internal/models"
)

// ProfileRepository handles database operations for user profiles and their
// cars. It holds the concrete sqlx handle because profile creation is
// transactional.
type ProfileRepository struct {
	db *sqlx.DB
}

// NewProfileRepository creates a new ProfileRepository
func NewProfileRepository(db *sqlx.DB) *ProfileRepository {
	return &ProfileRepository{db: db}
}

// CreateComplete creates a profile together with its cars and running
// preferences in one transaction. The whole write is rolled back when the
// user does not exist, already has a profile, or any license plate is
// already registered.
func (r *ProfileRepository) CreateComplete(req *models.CreateProfileRequest) (*models.UserProfile, error) {
	tx, err := r.db.Beginx()
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	var userCount int
	err = tx.Get(&userCount, `SELECT COUNT(*) FROM users WHERE id = $1`, req.UserID)
	if err != nil {
		return nil, err
	}
	if userCount == 0 {
		return nil, models.ErrUserNotFound
	}

	var existing int
	err = tx.Get(&existing, `SELECT COUNT(*) FROM user_profiles WHERE user_id = $1 AND deleted_at IS NULL`, req.UserID)
	if err != nil {
		return nil, err
	}
	if existing > 0 {
		return nil, models.ErrProfileExists
	}

	profile := &models.UserProfile{
		ID:                uuid.New().String(),
		UserID:            req.UserID,
		Name:              req.Name,
		Surname:           req.Surname,
		Email:             req.Email,
		Phone:             req.Phone,
		BirthYear:         req.BirthYear,
		Gender:            req.Gender,
		RunningExperience: req.RunningExperience,
		UsuallyTravelRace: req.UsuallyTravelRace,
	}

	insertProfile := `
		INSERT INTO user_profiles (
			id, user_id, name, surname, email, phone, birth_year,
			gender, running_experience, usually_travel_race
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING created_at, updated_at
	`
	err = tx.QueryRow(
		insertProfile,
		profile.ID, profile.UserID, profile.Name, profile.Surname, profile.Email, profile.Phone,
		profile.BirthYear, profile.Gender, profile.RunningExperience, profile.UsuallyTravelRace,
	).Scan(&profile.CreatedAt, &profile.UpdatedAt)
	if err != nil {
		return nil, err
	}

	for _, carReq := range req.Cars {
		var taken int
		err = tx.Get(&taken, `SELECT COUNT(*) FROM cars WHERE license_plate = $1 AND deleted_at IS NULL`, carReq.LicensePlate)
		if err != nil {
			return nil, err
		}
		if taken > 0 {
			return nil, models.ErrDuplicatePlate
		}

		car := models.Car{
			ID:            uuid.New().String(),
			UserProfileID: profile.ID,
			Brand:         carReq.Brand,
			Model:         carReq.Model,
			Year:          carReq.Year,
			Color:         carReq.Color,
			Seats:         carReq.Seats,
			LicensePlate:  carReq.LicensePlate,
		}
		insertCar := `
			INSERT INTO cars (
				id, user_profile_id, brand, model, year, color, seats, license_plate
			) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
			RETURNING created_at, updated_at
		`
		err = tx.QueryRow(
			insertCar,
			car.ID, car.UserProfileID, car.Brand, car.Model, car.Year,
			car.Color, car.Seats, car.LicensePlate,
		).Scan(&car.CreatedAt, &car.UpdatedAt)
		if err != nil {
			return nil, err
		}
		profile.Cars = append(profile.Cars, car)
	}

	for _, raceType := range req.PreferredRaceTypes {
		pref := models.RaceTypePreference{
			ID:            uuid.New().String(),
			UserProfileID: profile.ID,
			RaceType:      raceType,
		}
		err = tx.QueryRow(`
			INSERT INTO user_profile_race_types (id, user_profile_id, race_type)
			VALUES ($1, $2, $3)
			RETURNING created_at, updated_at
		`, pref.ID, pref.UserProfileID, pref.RaceType).Scan(&pref.CreatedAt, &pref.UpdatedAt)
		if err != nil {
			return nil, err
		}
		profile.PreferredRaceTypes = append(profile.PreferredRaceTypes, pref)
	}

	for _, km := range req.PreferredDistances {
		pref := models.DistancePreference{
			ID:            uuid.New().String(),
			UserProfileID: profile.ID,
			DistanceKM:    km,
		}
		err = tx.QueryRow(`
			INSERT INTO user_profile_distances (id, user_profile_id, distance_km)
			VALUES ($1, $2, $3)
			RETURNING created_at, updated_at
		`, pref.ID, pref.UserProfileID, pref.DistanceKM).Scan(&pref.CreatedAt, &pref.UpdatedAt)
		if err != nil {
			return nil, err
		}
		profile.PreferredDistances = append(profile.PreferredDistances, pref)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}
	return profile, nil
}

// GetByUserID retrieves a user's profile with all its cars (tombstoned ones
// included, in registration order) and its active running preferences.
func (r *ProfileRepository) GetByUserID(userID string) (*models.UserProfile, error) {
	query := `
		SELECT id, user_id, name, surname, email, phone, birth_year,
			   gender, running_experience, usually_travel_race,
			   created_at, updated_at, deleted_at
		FROM user_profiles
		WHERE user_id = $1 AND deleted_at IS NULL
	`

	var profile models.UserProfile
	if err := r.db.Get(&profile, query, userID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, models.ErrProfileNotFound
		}
		return nil, err
	}

	cars, err := r.carsByProfileID(profile.ID)
	if err != nil {
		return nil, err
	}
	profile.Cars = cars

	err = r.db.Select(&profile.PreferredRaceTypes, `
		SELECT id, user_profile_id, race_type, created_at, updated_at, deleted_at
		FROM user_profile_race_types
		WHERE user_profile_id = $1 AND deleted_at IS NULL
		ORDER BY created_at
	`, profile.ID)
	if err != nil {
		return nil, err
	}

	err = r.db.Select(&profile.PreferredDistances, `
		SELECT id, user_profile_id, distance_km, created_at, updated_at, deleted_at
		FROM user_profile_distances
		WHERE user_profile_id = $1 AND deleted_at IS NULL
		ORDER BY distance_km
	`, profile.ID)
	if err != nil {
		return nil, err
	}
	return &profile, nil
}

// SoftDelete tombstones a user's profile together with its cars and running
// preferences in one transaction.
func (r *ProfileRepository) SoftDelete(userID string) error {
	tx, err := r.db.Beginx()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	var profileID string
	err = tx.Get(&profileID, `SELECT id FROM user_profiles WHERE user_id = $1 AND deleted_at IS NULL`, userID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.ErrProfileNotFound
		}
		return err
	}

	cascade := []string{
		`UPDATE cars SET deleted_at = NOW(), updated_at = NOW() WHERE user_profile_id = $1 AND deleted_at IS NULL`,
		`UPDATE user_profile_race_types SET deleted_at = NOW(), updated_at = NOW() WHERE user_profile_id = $1 AND deleted_at IS NULL`,
		`UPDATE user_profile_distances SET deleted_at = NOW(), updated_at = NOW() WHERE user_profile_id = $1 AND deleted_at IS NULL`,
		`UPDATE user_profiles SET deleted_at = NOW(), updated_at = NOW() WHERE id = $1`,
	}
	for _, query := range cascade {
		if _, err := tx.Exec(query, profileID); err != nil {
			return err
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// GetCarByID retrieves a single car
func (r *ProfileRepository) GetCarByID(carID string) (*models.Car, error) {
	query := `
		SELECT id, user_profile_id, brand, model, year, color, seats,
			   license_plate, created_at, updated_at, deleted_at
		FROM cars
		WHERE id = $1
	`

	var car models.Car
	if err := r.db.Get(&car, query, carID); err != nil {
		return nil, err
	}
	return &car, nil
}

func (r *ProfileRepository) carsByProfileID(profileID string) ([]models.Car, error) {
	query := `
		SELECT id, user_profile_id, brand, model, year, color, seats,
			   license_plate, created_at, updated_at, deleted_at
		FROM cars
		WHERE user_profile_id = $1
		ORDER BY created_at
	`

	var cars []models.Car
	if err := r.db.Select(&cars, query, profileID); err != nil {
		return nil, err
	}
	return cars, nil
}
