package models

import (
	"errors"
	"time"
)

// Gender codes stored on a runner profile
type Gender int

const (
	GenderUnspecified Gender = iota
	GenderFemale
	GenderMale
	GenderOther
)

// RunningExperience codes stored on a runner profile
type RunningExperience int

const (
	ExperienceBeginner RunningExperience = iota + 1
	ExperienceIntermediate
	ExperienceAdvanced
	ExperienceElite
)

// UserProfile holds the runner-facing profile attached to a user account.
type UserProfile struct {
	ID                string            `json:"id" db:"id"`
	UserID            string            `json:"user_id" db:"user_id"`
	Name              string            `json:"name" db:"name"`
	Surname           string            `json:"surname" db:"surname"`
	Email             string            `json:"email" db:"email"`
	Phone             *string           `json:"phone,omitempty" db:"phone"`
	BirthYear         int               `json:"birth_year" db:"birth_year"`
	Gender            Gender            `json:"gender" db:"gender"`
	RunningExperience RunningExperience `json:"running_experience" db:"running_experience"`
	UsuallyTravelRace int               `json:"usually_travel_race" db:"usually_travel_race"`
	CreatedAt         time.Time         `json:"created_at" db:"created_at"`
	UpdatedAt         time.Time         `json:"updated_at" db:"updated_at"`
	DeletedAt         *time.Time        `json:"deleted_at,omitempty" db:"deleted_at"`

	Cars               []Car                `json:"cars,omitempty"`
	PreferredRaceTypes []RaceTypePreference `json:"preferred_race_types,omitempty"`
	PreferredDistances []DistancePreference `json:"preferred_distances,omitempty"`
}

// RaceTypePreference is one race type a runner likes to run
// (user_profile_race_types row).
type RaceTypePreference struct {
	ID            string     `json:"id" db:"id"`
	UserProfileID string     `json:"user_profile_id" db:"user_profile_id"`
	RaceType      RaceType   `json:"race_type" db:"race_type"`
	CreatedAt     time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at" db:"updated_at"`
	DeletedAt     *time.Time `json:"deleted_at,omitempty" db:"deleted_at"`
}

// DistancePreference is one distance a runner likes to run
// (user_profile_distances row).
type DistancePreference struct {
	ID            string     `json:"id" db:"id"`
	UserProfileID string     `json:"user_profile_id" db:"user_profile_id"`
	DistanceKM    int        `json:"distance_km" db:"distance_km"`
	CreatedAt     time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at" db:"updated_at"`
	DeletedAt     *time.Time `json:"deleted_at,omitempty" db:"deleted_at"`
}

// Car is a vehicle registered on a driver's profile. A tombstoned car is
// kept for historical trips but is never eligible for new ones.
type Car struct {
	ID            string     `json:"id" db:"id"`
	UserProfileID string     `json:"user_profile_id" db:"user_profile_id"`
	Brand         string     `json:"brand" db:"brand"`
	Model         string     `json:"model" db:"model"`
	Year          int        `json:"year" db:"year"`
	Color         string     `json:"color" db:"color"`
	Seats         int        `json:"seats" db:"seats"`
	LicensePlate  string     `json:"license_plate" db:"license_plate"`
	CreatedAt     time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at" db:"updated_at"`
	DeletedAt     *time.Time `json:"deleted_at,omitempty" db:"deleted_at"`
}

// IsActive reports whether the car is still registered (not tombstoned).
func (c *Car) IsActive() bool {
	return c.DeletedAt == nil
}

// FirstActiveCar selects the driver's eligible car: the first car in
// registration order whose tombstone is not set.
func FirstActiveCar(cars []Car) (*Car, error) {
	if len(cars) == 0 {
		return nil, ErrNoCarRegistered
	}
	for i := range cars {
		if cars[i].IsActive() {
			return &cars[i], nil
		}
	}
	return nil, ErrNoActiveCar
}

// CarSummary is the projection of a car embedded in trip responses.
type CarSummary struct {
	ID           string `json:"id"`
	Brand        string `json:"brand"`
	Model        string `json:"model"`
	Year         int    `json:"year"`
	Color        string `json:"color"`
	Seats        int    `json:"seats"`
	LicensePlate string `json:"license_plate"`
}

// Summary converts a car into its response projection.
func (c *Car) Summary() CarSummary {
	return CarSummary{
		ID:           c.ID,
		Brand:        c.Brand,
		Model:        c.Model,
		Year:         c.Year,
		Color:        c.Color,
		Seats:        c.Seats,
		LicensePlate: c.LicensePlate,
	}
}

// CreateCarRequest is one car inside a profile creation request.
type CreateCarRequest struct {
	Brand        string `json:"brand" binding:"required"`
	Model        string `json:"model" binding:"required"`
	Year         int    `json:"year" binding:"required"`
	Color        string `json:"color" binding:"required"`
	Seats        int    `json:"seats" binding:"required,min=1"`
	LicensePlate string `json:"license_plate" binding:"required"`
}

// CreateProfileRequest creates a complete runner profile, optionally with
// cars and running preferences.
type CreateProfileRequest struct {
	UserID             string             `json:"user_id" binding:"required"`
	Name               string             `json:"name" binding:"required"`
	Surname            string             `json:"surname" binding:"required"`
	Email              string             `json:"email" binding:"required,email"`
	Phone              *string            `json:"phone,omitempty"`
	BirthYear          int                `json:"birth_year" binding:"required"`
	Gender             Gender             `json:"gender"`
	RunningExperience  RunningExperience  `json:"running_experience"`
	UsuallyTravelRace  int                `json:"usually_travel_race"`
	Cars               []CreateCarRequest `json:"cars,omitempty"`
	PreferredRaceTypes []RaceType         `json:"preferred_race_types,omitempty"`
	PreferredDistances []int              `json:"preferred_distances,omitempty"`
}

// Validate validates the profile creation request.
func (r *CreateProfileRequest) Validate() error {
	if r.BirthYear < 1900 || r.BirthYear > time.Now().Year() {
		return errors.New("birth_year is out of range")
	}
	seen := make(map[string]struct{}, len(r.Cars))
	for _, car := range r.Cars {
		if _, dup := seen[car.LicensePlate]; dup {
			return errors.New("duplicate license plate in request")
		}
		seen[car.LicensePlate] = struct{}{}
	}
	seenTypes := make(map[RaceType]struct{}, len(r.PreferredRaceTypes))
	for _, raceType := range r.PreferredRaceTypes {
		if !raceType.Valid() {
			return errors.New("unknown race type in preferences")
		}
		if _, dup := seenTypes[raceType]; dup {
			return errors.New("duplicate race type in preferences")
		}
		seenTypes[raceType] = struct{}{}
	}
	if err := validateDistances(r.PreferredDistances); err != nil {
		return err
	}
	return nil
}
