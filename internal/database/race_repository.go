package database

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/runpool/runpool-backend/internal/models"
)

// RaceRepository handles database operations for races and their distances.
type RaceRepository struct {
	db *sqlx.DB
}

// NewRaceRepository creates a new RaceRepository
func NewRaceRepository(db *sqlx.DB) *RaceRepository {
	return &RaceRepository{db: db}
}

// Create creates a race and its initial distance rows in one transaction.
func (r *RaceRepository) Create(req *models.CreateRaceRequest) (*models.Race, error) {
	tx, err := r.db.Beginx()
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	race := &models.Race{
		ID:          uuid.New().String(),
		Name:        req.Name,
		Description: req.Description,
		StartDate:   req.StartDate,
		EndDate:     req.EndDate,
		City:        req.City,
		Province:    req.Province,
		Country:     req.Country,
		Location:    req.Location,
		Website:     req.Website,
		RaceType:    req.RaceType,
	}

	insertRace := `
		INSERT INTO races (
			id, name, description, start_date, end_date,
			city, province, country, location, website, race_type
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING created_at, updated_at
	`
	err = tx.QueryRow(
		insertRace,
		race.ID, race.Name, race.Description, race.StartDate, race.EndDate,
		race.City, race.Province, race.Country, race.Location, race.Website, race.RaceType,
	).Scan(&race.CreatedAt, &race.UpdatedAt)
	if err != nil {
		return nil, err
	}

	for _, km := range req.Distances {
		row, err := insertDistance(tx, race.ID, km)
		if err != nil {
			return nil, err
		}
		race.Distances = append(race.Distances, *row)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}
	return race, nil
}

// GetByID retrieves a race with its active distances
func (r *RaceRepository) GetByID(raceID string) (*models.Race, error) {
	race, err := r.getRace(raceID)
	if err != nil {
		return nil, err
	}

	distances, err := r.activeDistances(raceID)
	if err != nil {
		return nil, err
	}
	race.Distances = distances
	return race, nil
}

// List retrieves all races that are not tombstoned, soonest first.
func (r *RaceRepository) List() ([]models.Race, error) {
	query := `
		SELECT id, name, description, start_date, end_date,
			   city, province, country, location, website, race_type,
			   created_at, updated_at, deleted_at
		FROM races
		WHERE deleted_at IS NULL
		ORDER BY start_date
	`

	var races []models.Race
	if err := r.db.Select(&races, query); err != nil {
		return nil, err
	}
	for i := range races {
		distances, err := r.activeDistances(races[i].ID)
		if err != nil {
			return nil, err
		}
		races[i].Distances = distances
	}
	return races, nil
}

// Update partially updates a race and, when the request carries a distance
// set, reconciles the stored rows against it by diff: values no longer
// requested are tombstoned, previously tombstoned values are reactivated on
// their original rows, brand new values are inserted. Everything happens in
// one transaction.
func (r *RaceRepository) Update(raceID string, req *models.UpdateRaceRequest) (*models.Race, error) {
	tx, err := r.db.Beginx()
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	updateRace := `
		UPDATE races
		SET name = COALESCE($2, name),
			description = COALESCE($3, description),
			start_date = COALESCE($4, start_date),
			end_date = COALESCE($5, end_date),
			city = COALESCE($6, city),
			province = COALESCE($7, province),
			country = COALESCE($8, country),
			location = COALESCE($9, location),
			website = COALESCE($10, website),
			race_type = COALESCE($11, race_type),
			updated_at = NOW()
		WHERE id = $1 AND deleted_at IS NULL
	`
	result, err := tx.Exec(
		updateRace,
		raceID, req.Name, req.Description, req.StartDate, req.EndDate,
		req.City, req.Province, req.Country, req.Location, req.Website, req.RaceType,
	)
	if err != nil {
		return nil, err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return nil, err
	}
	if affected == 0 {
		return nil, models.ErrRaceNotFound
	}

	if req.Distances != nil {
		var existing []models.RaceDistance
		selectAll := `
			SELECT id, race_id, distance_km, created_at, updated_at, deleted_at
			FROM race_distances
			WHERE race_id = $1
			ORDER BY distance_km
		`
		if err := tx.Select(&existing, selectAll, raceID); err != nil {
			return nil, err
		}

		toInsert, toReactivate, toRemove := models.DiffDistances(existing, req.Distances)
		for _, row := range toRemove {
			_, err = tx.Exec(`UPDATE race_distances SET deleted_at = NOW(), updated_at = NOW() WHERE id = $1`, row.ID)
			if err != nil {
				return nil, err
			}
		}
		for _, row := range toReactivate {
			_, err = tx.Exec(`UPDATE race_distances SET deleted_at = NULL, updated_at = NOW() WHERE id = $1`, row.ID)
			if err != nil {
				return nil, err
			}
		}
		for _, km := range toInsert {
			if _, err := insertDistance(tx, raceID, km); err != nil {
				return nil, err
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}
	return r.GetByID(raceID)
}

func (r *RaceRepository) getRace(raceID string) (*models.Race, error) {
	query := `
		SELECT id, name, description, start_date, end_date,
			   city, province, country, location, website, race_type,
			   created_at, updated_at, deleted_at
		FROM races
		WHERE id = $1 AND deleted_at IS NULL
	`

	var race models.Race
	if err := r.db.Get(&race, query, raceID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, models.ErrRaceNotFound
		}
		return nil, err
	}
	return &race, nil
}

func (r *RaceRepository) activeDistances(raceID string) ([]models.RaceDistance, error) {
	query := `
		SELECT id, race_id, distance_km, created_at, updated_at, deleted_at
		FROM race_distances
		WHERE race_id = $1 AND deleted_at IS NULL
		ORDER BY distance_km
	`

	var distances []models.RaceDistance
	if err := r.db.Select(&distances, query, raceID); err != nil {
		return nil, err
	}
	return distances, nil
}

func insertDistance(tx *sqlx.Tx, raceID string, km int) (*models.RaceDistance, error) {
	row := &models.RaceDistance{
		ID:         uuid.New().String(),
		RaceID:     raceID,
		DistanceKM: km,
	}
	query := `
		INSERT INTO race_distances (id, race_id, distance_km)
		VALUES ($1, $2, $3)
		RETURNING created_at, updated_at
	`
	if err := tx.QueryRow(query, row.ID, row.RaceID, row.DistanceKM).Scan(&row.CreatedAt, &row.UpdatedAt); err != nil {
		return nil, err
	}
	return row, nil
}
