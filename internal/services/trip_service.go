package services

import (
	"fmt"
	"time"

	"github.com/runpool/runpool-backend/internal/database"
	"github.com/runpool/runpool-backend/internal/models"
	"github.com/runpool/runpool-backend/pkg/notify"
	"github.com/sirupsen/logrus"
)

// TripService orchestrates the trip booking flow: eligibility checks,
// capacity decisions, reservation lifecycle and notification side effects.
type TripService struct {
	tripRepo        *database.TripRepository
	reservationRepo *database.ReservationRepository
	raceRepo        *database.RaceRepository
	userRepo        *database.UserRepository
	profileRepo     *database.ProfileRepository
	notifier        notify.Notifier
	frontendBaseURL string
	logger          *logrus.Logger
	now             func() time.Time
}

// NewTripService creates a new TripService
func NewTripService(
	tripRepo *database.TripRepository,
	reservationRepo *database.ReservationRepository,
	raceRepo *database.RaceRepository,
	userRepo *database.UserRepository,
	profileRepo *database.ProfileRepository,
	notifier notify.Notifier,
	frontendBaseURL string,
	logger *logrus.Logger,
) *TripService {
	return &TripService{
		tripRepo:        tripRepo,
		reservationRepo: reservationRepo,
		raceRepo:        raceRepo,
		userRepo:        userRepo,
		profileRepo:     profileRepo,
		notifier:        notifier,
		frontendBaseURL: frontendBaseURL,
		logger:          logger,
		now:             time.Now,
	}
}

// Create publishes a new trip. The driver must exist, the race must exist,
// and the driver's profile must hold an active car; the trip and the
// driver's own reservation are written atomically.
func (s *TripService) Create(req *models.CreateTripRequest) (*models.TripResponse, error) {
	driver, err := s.userRepo.GetByID(req.DriverID)
	if err != nil {
		if models.IsNotFound(err) {
			return nil, models.ErrDriverNotFound
		}
		return nil, fmt.Errorf("failed to load driver: %w", err)
	}

	if _, err := s.raceRepo.GetByID(req.RaceID); err != nil {
		return nil, err
	}

	car, err := s.resolveDriverCar(req.DriverID)
	if err != nil {
		return nil, err
	}

	if err := req.Validate(s.now()); err != nil {
		return nil, err
	}

	trip := &models.Trip{
		DriverID:          req.DriverID,
		RaceID:            req.RaceID,
		CarID:             car.ID,
		DepartureDay:      req.DepartureDay,
		DepartureHour:     req.DepartureHour,
		DepartureCity:     req.DepartureCity,
		DepartureProvince: req.DepartureProvince,
		ArrivalCity:       req.ArrivalCity,
		ArrivalProvince:   req.ArrivalProvince,
		Description:       req.Description,
		SeatCount:         req.SeatCount,
	}
	if _, err := s.tripRepo.CreateWithDriver(trip); err != nil {
		return nil, fmt.Errorf("failed to create trip: %w", err)
	}

	s.notify(trip, driver, s.notifier.TripCreated)

	return s.buildTripResponse(trip)
}

// Join reserves a seat for a passenger. The capacity decision and the write
// are serialized inside the repository's locked transaction.
func (s *TripService) Join(req *models.JoinTripRequest) (*models.TripResponse, error) {
	trip, err := s.tripRepo.GetByID(req.TripID)
	if err != nil {
		return nil, err
	}

	passenger, err := s.userRepo.GetByID(req.PassengerID)
	if err != nil {
		if models.IsNotFound(err) {
			return nil, models.ErrPassengerNotFound
		}
		return nil, fmt.Errorf("failed to load passenger: %w", err)
	}

	departed, err := trip.HasDeparted(s.now())
	if err != nil {
		return nil, err
	}
	if departed {
		return nil, models.ErrTripDeparted
	}

	if _, err := s.reservationRepo.Join(trip.ID, passenger.ID); err != nil {
		return nil, err
	}

	driver, err := s.userRepo.GetByID(trip.DriverID)
	if err == nil {
		s.notify(trip, driver, s.notifier.TripJoined)
	}

	return s.buildTripResponse(trip)
}

// Leave gives up a passenger's seat. The driver cannot leave their own
// trip; they remove it instead.
func (s *TripService) Leave(tripID, passengerID string) error {
	trip, err := s.tripRepo.GetByID(tripID)
	if err != nil {
		return err
	}

	if _, err := s.reservationRepo.GetActive(tripID, passengerID); err != nil {
		return err
	}

	if trip.DriverID == passengerID {
		return models.ErrDriverCannotLeave
	}

	if err := s.reservationRepo.Cancel(tripID, passengerID); err != nil {
		return err
	}

	driver, err := s.userRepo.GetByID(trip.DriverID)
	if err == nil {
		s.notify(trip, driver, s.notifier.TripLeft)
	}
	return nil
}

// Remove cancels a trip: every active reservation and the trip itself are
// tombstoned together, then the passengers are notified.
func (s *TripService) Remove(tripID string) error {
	trip, err := s.tripRepo.GetByID(tripID)
	if err != nil {
		return err
	}

	reservations, err := s.reservationRepo.ListActiveByTrip(tripID)
	if err != nil {
		return fmt.Errorf("failed to load reservations: %w", err)
	}

	if err := s.tripRepo.SoftDeleteCascade(tripID); err != nil {
		return err
	}

	for _, reservation := range reservations {
		if reservation.PassengerID == trip.DriverID {
			continue
		}
		passenger, err := s.userRepo.GetByID(reservation.PassengerID)
		if err != nil {
			continue
		}
		s.notify(trip, passenger, s.notifier.TripCancelled)
	}
	return nil
}

// Update partially updates a trip, re-validating the merged departure when
// the patch touches it.
func (s *TripService) Update(tripID string, req *models.UpdateTripRequest) (*models.TripResponse, error) {
	trip, err := s.tripRepo.GetByID(tripID)
	if err != nil {
		return nil, err
	}

	if req.TouchesDeparture() {
		departure, err := req.MergedDeparture(trip)
		if err != nil {
			return nil, err
		}
		if departure.Before(s.now()) {
			return nil, models.ErrPastDeparture
		}
	}

	updated, err := s.tripRepo.Update(tripID, req)
	if err != nil {
		return nil, err
	}
	return s.buildTripResponse(updated)
}

// FindOne retrieves a trip with its derived seat availability.
func (s *TripService) FindOne(tripID string) (*models.TripResponse, error) {
	trip, err := s.tripRepo.GetByID(tripID)
	if err != nil {
		return nil, err
	}
	return s.buildTripResponse(trip)
}

// FindByRace lists a race's live trips.
func (s *TripService) FindByRace(raceID string) ([]models.TripResponse, error) {
	if _, err := s.raceRepo.GetByID(raceID); err != nil {
		return nil, err
	}

	trips, err := s.tripRepo.ListByRace(raceID)
	if err != nil {
		return nil, fmt.Errorf("failed to list trips: %w", err)
	}
	return s.buildTripResponses(trips)
}

// FindByPassenger lists the live trips where the user holds a seat.
func (s *TripService) FindByPassenger(passengerID string) ([]models.TripResponse, error) {
	if _, err := s.userRepo.GetByID(passengerID); err != nil {
		if models.IsNotFound(err) {
			return nil, models.ErrPassengerNotFound
		}
		return nil, err
	}

	trips, err := s.tripRepo.ListByPassenger(passengerID)
	if err != nil {
		return nil, fmt.Errorf("failed to list trips: %w", err)
	}
	return s.buildTripResponses(trips)
}

// GetPassengers lists a trip's active passengers, oldest reservation first.
func (s *TripService) GetPassengers(tripID string) ([]models.ReservationResponse, error) {
	if _, err := s.tripRepo.GetByID(tripID); err != nil {
		return nil, err
	}

	reservations, err := s.reservationRepo.ListActiveByTrip(tripID)
	if err != nil {
		return nil, fmt.Errorf("failed to list reservations: %w", err)
	}
	return s.reservationResponses(reservations)
}

// resolveDriverCar applies the driver eligibility rule: the driver's
// profile must exist and hold at least one active car; the first active one
// in registration order drives the trip. A missing profile stays a
// not-found error, a profile without a usable car is a rule violation.
func (s *TripService) resolveDriverCar(driverID string) (*models.Car, error) {
	profile, err := s.profileRepo.GetByUserID(driverID)
	if err != nil {
		if models.IsNotFound(err) {
			return nil, models.ErrProfileNotFound
		}
		return nil, fmt.Errorf("failed to load driver profile: %w", err)
	}
	return models.FirstActiveCar(profile.Cars)
}

func (s *TripService) buildTripResponse(trip *models.Trip) (*models.TripResponse, error) {
	responses, err := s.buildTripResponses([]models.Trip{*trip})
	if err != nil {
		return nil, err
	}
	return &responses[0], nil
}

func (s *TripService) buildTripResponses(trips []models.Trip) ([]models.TripResponse, error) {
	responses := make([]models.TripResponse, 0, len(trips))
	for i := range trips {
		trip := &trips[i]

		driver, err := s.userRepo.GetByID(trip.DriverID)
		if err != nil {
			return nil, fmt.Errorf("failed to load driver: %w", err)
		}
		race, err := s.raceRepo.GetByID(trip.RaceID)
		if err != nil {
			return nil, fmt.Errorf("failed to load race: %w", err)
		}
		car, err := s.profileRepo.GetCarByID(trip.CarID)
		if err != nil {
			return nil, fmt.Errorf("failed to load car: %w", err)
		}
		reservations, err := s.reservationRepo.ListActiveByTrip(trip.ID)
		if err != nil {
			return nil, fmt.Errorf("failed to list reservations: %w", err)
		}
		passengers, err := s.reservationResponses(reservations)
		if err != nil {
			return nil, err
		}

		responses = append(responses, models.TripResponse{
			ID:                trip.ID,
			Driver:            driver.Summary(),
			Race:              race.Summary(),
			Car:               car.Summary(),
			DepartureDay:      trip.DepartureDay,
			DepartureHour:     trip.DepartureHour,
			DepartureCity:     trip.DepartureCity,
			DepartureProvince: trip.DepartureProvince,
			ArrivalCity:       trip.ArrivalCity,
			ArrivalProvince:   trip.ArrivalProvince,
			Description:       trip.Description,
			SeatCount:         trip.SeatCount,
			AvailableSeats:    trip.SeatCount - len(reservations),
			Passengers:        passengers,
			CreatedAt:         trip.CreatedAt,
		})
	}
	return responses, nil
}

func (s *TripService) reservationResponses(reservations []models.Reservation) ([]models.ReservationResponse, error) {
	ids := make([]string, 0, len(reservations))
	for _, r := range reservations {
		ids = append(ids, r.PassengerID)
	}
	users, err := s.userRepo.GetByIDs(ids)
	if err != nil {
		return nil, fmt.Errorf("failed to load passengers: %w", err)
	}

	responses := make([]models.ReservationResponse, 0, len(reservations))
	for _, r := range reservations {
		user, ok := users[r.PassengerID]
		if !ok {
			continue
		}
		responses = append(responses, models.ReservationResponse{
			ReservationID: r.ID,
			Passenger:     user.Summary(),
			JoinedAt:      r.CreatedAt,
		})
	}
	return responses, nil
}

// notify sends a booking notification without failing the operation. The
// recipient's phone comes from their profile when they have one.
func (s *TripService) notify(trip *models.Trip, recipient *models.User, send func(notify.Event) error) {
	race, err := s.raceRepo.GetByID(trip.RaceID)
	if err != nil {
		s.logger.WithError(err).Warn("Skipping notification, race lookup failed")
		return
	}

	event := notify.Event{
		RecipientName:  recipient.GivenName,
		RecipientEmail: recipient.Email,
		RaceName:       race.Name,
		DepartureDay:   trip.DepartureDay,
		DepartureHour:  trip.DepartureHour,
		DepartureCity:  trip.DepartureCity,
		TripURL:        fmt.Sprintf("%s/trips/%s", s.frontendBaseURL, trip.ID),
	}
	if profile, err := s.profileRepo.GetByUserID(recipient.ID); err == nil && profile.Phone != nil {
		event.RecipientPhone = *profile.Phone
	}

	if err := send(event); err != nil {
		s.logger.WithFields(logrus.Fields{
			"trip_id":   trip.ID,
			"recipient": recipient.ID,
		}).WithError(err).Warn("Failed to send notification")
	}
}
