package models

import (
	"errors"
	"time"
)

// RaceType classifies a race event
type RaceType string

const (
	RaceTypeRoad  RaceType = "road"
	RaceTypeTrail RaceType = "trail"
	RaceTypeTrack RaceType = "track"
	RaceTypeCross RaceType = "cross"
)

// Valid reports whether the value is one of the known race types.
func (t RaceType) Valid() bool {
	switch t {
	case RaceTypeRoad, RaceTypeTrail, RaceTypeTrack, RaceTypeCross:
		return true
	}
	return false
}

// Race represents a running event trips can be attached to.
type Race struct {
	ID          string     `json:"id" db:"id"`
	Name        string     `json:"name" db:"name"`
	Description string     `json:"description" db:"description"`
	StartDate   string     `json:"start_date" db:"start_date"` // 2006-01-02
	EndDate     string     `json:"end_date" db:"end_date"`     // 2006-01-02
	City        string     `json:"city" db:"city"`
	Province    string     `json:"province" db:"province"`
	Country     string     `json:"country" db:"country"`
	Location    string     `json:"location" db:"location"`
	Website     string     `json:"website" db:"website"`
	RaceType    RaceType   `json:"race_type" db:"race_type"`
	CreatedAt   time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at" db:"updated_at"`
	DeletedAt   *time.Time `json:"deleted_at,omitempty" db:"deleted_at"`

	Distances []RaceDistance `json:"distances,omitempty"`
}

// RaceDistance is one distance offered by a race. The (race, distance) pair
// is unique; a distance removed from a race is tombstoned, not deleted, so
// re-adding it later reactivates the same row.
type RaceDistance struct {
	ID         string     `json:"id" db:"id"`
	RaceID     string     `json:"race_id" db:"race_id"`
	DistanceKM int        `json:"distance_km" db:"distance_km"`
	CreatedAt  time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt  time.Time  `json:"updated_at" db:"updated_at"`
	DeletedAt  *time.Time `json:"deleted_at,omitempty" db:"deleted_at"`
}

// IsActive reports whether the distance is still offered by its race.
func (d *RaceDistance) IsActive() bool {
	return d.DeletedAt == nil
}

// RaceSummary is the projection of a race embedded in trip responses.
type RaceSummary struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	StartDate   string `json:"start_date"`
	EndDate     string `json:"end_date"`
	Location    string `json:"location"`
}

// Summary converts a race into its response projection.
func (r *Race) Summary() RaceSummary {
	return RaceSummary{
		ID:          r.ID,
		Name:        r.Name,
		Description: r.Description,
		StartDate:   r.StartDate,
		EndDate:     r.EndDate,
		Location:    r.Location,
	}
}

// CreateRaceRequest creates a race with its initial distance set.
type CreateRaceRequest struct {
	Name        string   `json:"name" binding:"required"`
	Description string   `json:"description" binding:"required"`
	StartDate   string   `json:"start_date" binding:"required"`
	EndDate     string   `json:"end_date" binding:"required"`
	City        string   `json:"city" binding:"required"`
	Province    string   `json:"province" binding:"required"`
	Country     string   `json:"country" binding:"required"`
	Location    string   `json:"location" binding:"required"`
	Website     string   `json:"website"`
	RaceType    RaceType `json:"race_type" binding:"required"`
	Distances   []int    `json:"distances,omitempty"`
}

// Validate validates the race creation request.
func (r *CreateRaceRequest) Validate() error {
	if err := validateDateOrder(r.StartDate, r.EndDate); err != nil {
		return err
	}
	return validateDistances(r.Distances)
}

// UpdateRaceRequest partially updates a race. A non-nil Distances slice
// replaces the race's distance set wholesale (reconciled by diff).
type UpdateRaceRequest struct {
	Name        *string   `json:"name,omitempty"`
	Description *string   `json:"description,omitempty"`
	StartDate   *string   `json:"start_date,omitempty"`
	EndDate     *string   `json:"end_date,omitempty"`
	City        *string   `json:"city,omitempty"`
	Province    *string   `json:"province,omitempty"`
	Country     *string   `json:"country,omitempty"`
	Location    *string   `json:"location,omitempty"`
	Website     *string   `json:"website,omitempty"`
	RaceType    *RaceType `json:"race_type,omitempty"`
	Distances   []int     `json:"distances,omitempty"`
}

// Validate validates the race update request.
func (r *UpdateRaceRequest) Validate() error {
	if r.StartDate != nil && r.EndDate != nil {
		if err := validateDateOrder(*r.StartDate, *r.EndDate); err != nil {
			return err
		}
	}
	return validateDistances(r.Distances)
}

func validateDateOrder(start, end string) error {
	startDate, err := time.Parse("2006-01-02", start)
	if err != nil {
		return errors.New("start_date must be formatted as YYYY-MM-DD")
	}
	endDate, err := time.Parse("2006-01-02", end)
	if err != nil {
		return errors.New("end_date must be formatted as YYYY-MM-DD")
	}
	if endDate.Before(startDate) {
		return errors.New("end_date cannot be before start_date")
	}
	return nil
}

func validateDistances(distances []int) error {
	seen := make(map[int]struct{}, len(distances))
	for _, km := range distances {
		if km <= 0 {
			return errors.New("distances must be positive kilometers")
		}
		if _, dup := seen[km]; dup {
			return errors.New("duplicate distance in request")
		}
		seen[km] = struct{}{}
	}
	return nil
}

// DiffDistances computes the reconciliation between a race's stored distance
// rows and a requested distance set. Rows whose value is absent from the
// request are tombstoned, tombstoned rows whose value reappears are
// reactivated (keeping their identity), and values with no row at all are
// inserted.
func DiffDistances(existing []RaceDistance, requested []int) (toInsert []int, toReactivate []RaceDistance, toRemove []RaceDistance) {
	wanted := make(map[int]struct{}, len(requested))
	for _, km := range requested {
		wanted[km] = struct{}{}
	}

	byValue := make(map[int]RaceDistance, len(existing))
	for _, row := range existing {
		byValue[row.DistanceKM] = row
	}

	for _, row := range existing {
		_, keep := wanted[row.DistanceKM]
		switch {
		case keep && !row.IsActive():
			toReactivate = append(toReactivate, row)
		case !keep && row.IsActive():
			toRemove = append(toRemove, row)
		}
	}
	for _, km := range requested {
		if _, ok := byValue[km]; !ok {
			toInsert = append(toInsert, km)
		}
	}
	return toInsert, toReactivate, toRemove
}
