package models

import (
	"errors"
	"fmt"
	"time"
)

// Trip represents one driver's offer to carry passengers to a race.
// Departure day and hour are stored as separate columns ("2006-01-02" and
// "15:04") and combined when the departure instant is needed.
type Trip struct {
	ID                string     `json:"id" db:"id"`
	DriverID          string     `json:"driver_id" db:"driver_id"`
	RaceID            string     `json:"race_id" db:"race_id"`
	CarID             string     `json:"car_id" db:"car_id"`
	DepartureDay      string     `json:"departure_day" db:"departure_day"`
	DepartureHour     string     `json:"departure_hour" db:"departure_hour"`
	DepartureCity     string     `json:"departure_city" db:"departure_city"`
	DepartureProvince string     `json:"departure_province" db:"departure_province"`
	ArrivalCity       *string    `json:"arrival_city,omitempty" db:"arrival_city"`
	ArrivalProvince   *string    `json:"arrival_province,omitempty" db:"arrival_province"`
	Description       *string    `json:"description,omitempty" db:"description"`
	SeatCount         int        `json:"seat_count" db:"seat_count"`
	CreatedAt         time.Time  `json:"created_at" db:"created_at"`
	DeletedAt         *time.Time `json:"deleted_at,omitempty" db:"deleted_at"`
}

// DepartureTime combines the trip's day and hour columns into one instant
// in the server's local timezone.
func (t *Trip) DepartureTime() (time.Time, error) {
	return CombineDeparture(t.DepartureDay, t.DepartureHour)
}

// HasDeparted reports whether the trip's departure instant lies before now.
func (t *Trip) HasDeparted(now time.Time) (bool, error) {
	departure, err := t.DepartureTime()
	if err != nil {
		return false, err
	}
	return departure.Before(now), nil
}

// CombineDeparture parses a "2006-01-02" day and "15:04" hour pair.
func CombineDeparture(day, hour string) (time.Time, error) {
	departure, err := time.ParseInLocation("2006-01-02 15:04", fmt.Sprintf("%s %s", day, hour), time.Local)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid departure date/time %q %q: %w", day, hour, err)
	}
	return departure, nil
}

// CreateTripRequest creates a trip. The car is not part of the request; it
// is resolved from the driver's profile.
type CreateTripRequest struct {
	DriverID          string  `json:"driver_id" binding:"required"`
	RaceID            string  `json:"race_id" binding:"required"`
	DepartureDay      string  `json:"departure_day" binding:"required"`
	DepartureHour     string  `json:"departure_hour" binding:"required"`
	DepartureCity     string  `json:"departure_city" binding:"required"`
	DepartureProvince string  `json:"departure_province" binding:"required"`
	ArrivalCity       *string `json:"arrival_city,omitempty"`
	ArrivalProvince   *string `json:"arrival_province,omitempty"`
	Description       *string `json:"description,omitempty"`
	SeatCount         int     `json:"seat_count" binding:"required"`
}

// Validate validates the trip creation request against a clock instant.
func (r *CreateTripRequest) Validate(now time.Time) error {
	if r.SeatCount < 1 {
		return errors.New("trip must have at least 1 seat")
	}
	departure, err := CombineDeparture(r.DepartureDay, r.DepartureHour)
	if err != nil {
		return err
	}
	if departure.Before(now) {
		return ErrPastDeparture
	}
	return nil
}

// UpdateTripRequest partially updates a trip. Seat count is deliberately
// not updatable after creation.
type UpdateTripRequest struct {
	DepartureDay      *string `json:"departure_day,omitempty"`
	DepartureHour     *string `json:"departure_hour,omitempty"`
	DepartureCity     *string `json:"departure_city,omitempty"`
	DepartureProvince *string `json:"departure_province,omitempty"`
	ArrivalCity       *string `json:"arrival_city,omitempty"`
	ArrivalProvince   *string `json:"arrival_province,omitempty"`
	Description       *string `json:"description,omitempty"`
}

// TouchesDeparture reports whether the patch carries departure fields.
func (r *UpdateTripRequest) TouchesDeparture() bool {
	return r.DepartureDay != nil || r.DepartureHour != nil
}

// MergedDeparture combines patched departure fields with the trip's stored
// ones, so the past-date check always runs against the effective values.
func (r *UpdateTripRequest) MergedDeparture(trip *Trip) (time.Time, error) {
	day := trip.DepartureDay
	hour := trip.DepartureHour
	if r.DepartureDay != nil {
		day = *r.DepartureDay
	}
	if r.DepartureHour != nil {
		hour = *r.DepartureHour
	}
	return CombineDeparture(day, hour)
}

// JoinTripRequest asks to reserve a seat on a trip.
type JoinTripRequest struct {
	TripID      string `json:"trip_id" binding:"required"`
	PassengerID string `json:"passenger_id" binding:"required"`
}

// TripResponse is the full trip projection returned by every trip read
// path. AvailableSeats is derived from the active reservation count on
// every read and is never stored.
type TripResponse struct {
	ID                string                `json:"id"`
	Driver            UserSummary           `json:"driver"`
	Race              RaceSummary           `json:"race"`
	Car               CarSummary            `json:"car"`
	DepartureDay      string                `json:"departure_day"`
	DepartureHour     string                `json:"departure_hour"`
	DepartureCity     string                `json:"departure_city"`
	DepartureProvince string                `json:"departure_province"`
	ArrivalCity       *string               `json:"arrival_city,omitempty"`
	ArrivalProvince   *string               `json:"arrival_province,omitempty"`
	Description       *string               `json:"description,omitempty"`
	SeatCount         int                   `json:"seat_count"`
	AvailableSeats    int                   `json:"available_seats"`
	Passengers        []ReservationResponse `json:"passengers"`
	CreatedAt         time.Time             `json:"created_at"`
}
