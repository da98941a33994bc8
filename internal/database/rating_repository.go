package database

import (
	"github.com/google/uuid"
	"github.com/runpool/runpool-backend/internal/models"
)

// RatingRepository handles database operations for trip ratings.
type RatingRepository struct {
	db DB
}

// NewRatingRepository creates a new RatingRepository
func NewRatingRepository(db DB) *RatingRepository {
	return &RatingRepository{db: db}
}

// Create inserts a rating. The unique index on (trip_id, rater_id, rated_id)
// rejects a second rating for the same pair; callers detect that before
// insert via Exists, this is only the race fallback.
func (r *RatingRepository) Create(rating *models.TripRating) error {
	if rating.ID == "" {
		rating.ID = uuid.New().String()
	}

	query := `
		INSERT INTO trip_ratings (id, trip_id, rater_id, rated_id, type, rating, comment)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING created_at, updated_at
	`

	return r.db.QueryRow(
		query,
		rating.ID, rating.TripID, rating.RaterID, rating.RatedID,
		rating.Type, rating.Rating, rating.Comment,
	).Scan(&rating.CreatedAt, &rating.UpdatedAt)
}

// Exists reports whether the rater has already rated this user for the trip.
func (r *RatingRepository) Exists(tripID, raterID, ratedID string) (bool, error) {
	var count int
	err := r.db.Get(&count, `
		SELECT COUNT(*) FROM trip_ratings
		WHERE trip_id = $1 AND rater_id = $2 AND rated_id = $3
	`, tripID, raterID, ratedID)
	return count > 0, err
}

// ListByTrip retrieves all ratings left on a trip, newest first.
func (r *RatingRepository) ListByTrip(tripID string) ([]models.TripRating, error) {
	query := `
		SELECT id, trip_id, rater_id, rated_id, type, rating, comment,
			   created_at, updated_at
		FROM trip_ratings
		WHERE trip_id = $1
		ORDER BY created_at DESC
	`

	var ratings []models.TripRating
	if err := r.db.Select(&ratings, query, tripID); err != nil {
		return nil, err
	}
	return ratings, nil
}

// ListByRatedUser retrieves all ratings a user has received, newest first.
func (r *RatingRepository) ListByRatedUser(userID string) ([]models.TripRating, error) {
	query := `
		SELECT id, trip_id, rater_id, rated_id, type, rating, comment,
			   created_at, updated_at
		FROM trip_ratings
		WHERE rated_id = $1
		ORDER BY created_at DESC
	`

	var ratings []models.TripRating
	if err := r.db.Select(&ratings, query, userID); err != nil {
		return nil, err
	}
	return ratings, nil
}
