package models

import "time"

// Reservation is one passenger's seat on a trip (trip_passengers row).
// Cancelling sets the tombstone; rejoining the same trip clears it on the
// same row, so the row id is stable across the passenger's whole history
// with that trip.
type Reservation struct {
	ID          string     `json:"id" db:"id"`
	TripID      string     `json:"trip_id" db:"trip_id"`
	PassengerID string     `json:"passenger_id" db:"passenger_id"`
	CreatedAt   time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at" db:"updated_at"`
	DeletedAt   *time.Time `json:"deleted_at,omitempty" db:"deleted_at"`
}

// IsActive reports whether the reservation currently holds a seat.
func (r *Reservation) IsActive() bool {
	return r.DeletedAt == nil
}

// ActiveCount counts the reservations currently holding a seat.
func ActiveCount(reservations []Reservation) int {
	n := 0
	for i := range reservations {
		if reservations[i].IsActive() {
			n++
		}
	}
	return n
}

// JoinAction is the write DecideJoin selected.
type JoinAction int

const (
	// JoinCreate inserts a brand new reservation row.
	JoinCreate JoinAction = iota
	// JoinReactivate clears the tombstone on the passenger's previous row.
	JoinReactivate
)

// JoinDecision carries the action to perform and, for a reactivation, the
// existing row to revive.
type JoinDecision struct {
	Action   JoinAction
	Existing *Reservation
}

// DecideJoin decides how a passenger's join request resolves against a
// snapshot of the trip's full reservation history. The capacity check runs
// first, against the raw active count, so a trip at capacity rejects every
// join attempt, including a returning passenger whose own row is tombstoned.
// Only then is the passenger's history consulted: an active row is a
// duplicate join, a tombstoned row is reactivated, no row means a fresh
// reservation.
func DecideJoin(seatCount int, history []Reservation, passengerID string) (JoinDecision, error) {
	if ActiveCount(history) >= seatCount {
		return JoinDecision{}, ErrTripFull
	}
	for i := range history {
		if history[i].PassengerID != passengerID {
			continue
		}
		if history[i].IsActive() {
			return JoinDecision{}, ErrAlreadyJoined
		}
		return JoinDecision{Action: JoinReactivate, Existing: &history[i]}, nil
	}
	return JoinDecision{Action: JoinCreate}, nil
}

// ReservationResponse is the passenger projection returned by the trip
// passenger endpoints.
type ReservationResponse struct {
	ReservationID string      `json:"reservation_id"`
	Passenger     UserSummary `json:"passenger"`
	JoinedAt      time.Time   `json:"joined_at"`
}
