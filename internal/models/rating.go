package models

import "time"

// RatingType distinguishes who is being rated on a trip
type RatingType string

const (
	RatingTypeDriver    RatingType = "driver"
	RatingTypePassenger RatingType = "passenger"
)

// TripRating is one participant's rating of another for a shared trip.
// A (trip, rater, rated) triple can only be rated once.
type TripRating struct {
	ID        string     `json:"id" db:"id"`
	TripID    string     `json:"trip_id" db:"trip_id"`
	RaterID   string     `json:"rater_id" db:"rater_id"`
	RatedID   string     `json:"rated_id" db:"rated_id"`
	Type      RatingType `json:"type" db:"type"`
	Rating    int        `json:"rating" db:"rating"`
	Comment   *string    `json:"comment,omitempty" db:"comment"`
	CreatedAt time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt time.Time  `json:"updated_at" db:"updated_at"`
}

// CreateTripRatingRequest submits a rating for a trip participant.
type CreateTripRatingRequest struct {
	TripID  string     `json:"trip_id" binding:"required"`
	RaterID string     `json:"rater_id" binding:"required"`
	RatedID string     `json:"rated_id" binding:"required"`
	Type    RatingType `json:"type" binding:"required,oneof=driver passenger"`
	Rating  int        `json:"rating" binding:"required,min=1,max=5"`
	Comment *string    `json:"comment,omitempty"`
}

// Validate validates the rating request.
func (r *CreateTripRatingRequest) Validate() error {
	if r.RaterID == r.RatedID {
		return ErrSelfRating
	}
	return nil
}
