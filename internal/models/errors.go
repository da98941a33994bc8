package models

import "errors"

// Missing-entity errors. Handlers map these to 404.
var (
	ErrUserNotFound        = errors.New("user not found")
	ErrDriverNotFound      = errors.New("driver not found")
	ErrPassengerNotFound   = errors.New("passenger not found")
	ErrRaceNotFound        = errors.New("race not found")
	ErrTripNotFound        = errors.New("trip not found")
	ErrReservationNotFound = errors.New("passenger not found in this trip")
	ErrProfileNotFound     = errors.New("profile not found")
)

// Rule violations. Handlers map these to 400.
var (
	ErrNoCarRegistered   = errors.New("driver must have at least one car registered")
	ErrNoActiveCar       = errors.New("driver must have at least one active car")
	ErrTripFull          = errors.New("trip is full")
	ErrAlreadyJoined     = errors.New("passenger already joined this trip")
	ErrTripDeparted      = errors.New("trip has already departed")
	ErrPastDeparture     = errors.New("departure date cannot be in the past")
	ErrDriverCannotLeave = errors.New("driver cannot leave their own trip")
	ErrProfileExists     = errors.New("user already has a profile")
	ErrDuplicatePlate    = errors.New("license plate is already registered")
	ErrSelfRating        = errors.New("users cannot rate themselves")
	ErrDuplicateRating   = errors.New("user already rated for this trip")
)

var notFoundErrors = []error{
	ErrUserNotFound,
	ErrDriverNotFound,
	ErrPassengerNotFound,
	ErrRaceNotFound,
	ErrTripNotFound,
	ErrReservationNotFound,
	ErrProfileNotFound,
}

var invalidStateErrors = []error{
	ErrNoCarRegistered,
	ErrNoActiveCar,
	ErrTripFull,
	ErrAlreadyJoined,
	ErrTripDeparted,
	ErrPastDeparture,
	ErrDriverCannotLeave,
	ErrProfileExists,
	ErrDuplicatePlate,
	ErrSelfRating,
	ErrDuplicateRating,
}

// IsNotFound reports whether err is one of the missing-entity errors.
func IsNotFound(err error) bool {
	for _, sentinel := range notFoundErrors {
		if errors.Is(err, sentinel) {
			return true
		}
	}
	return false
}

// IsInvalidState reports whether err is one of the rule violation errors.
func IsInvalidState(err error) bool {
	for _, sentinel := range invalidStateErrors {
		if errors.Is(err, sentinel) {
			return true
		}
	}
	return false
}
