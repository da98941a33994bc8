package services

import (
	"io"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/runpool/runpool-backend/internal/database"
	"github.com/runpool/runpool-backend/internal/models"
	"github.com/runpool/runpool-backend/pkg/notify"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var userColumns = []string{"id", "name", "given_name", "family_name", "email", "picture_url", "created_at", "updated_at"}

var raceColumns = []string{
	"id", "name", "description", "start_date", "end_date",
	"city", "province", "country", "location", "website", "race_type",
	"created_at", "updated_at", "deleted_at",
}

var tripColumns = []string{
	"id", "driver_id", "race_id", "car_id", "departure_day", "departure_hour",
	"departure_city", "departure_province", "arrival_city", "arrival_province",
	"description", "seat_count", "created_at", "deleted_at",
}

func newTestService(t *testing.T) (*TripService, sqlmock.Sqlmock) {
	t.Helper()

	mockDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { mockDB.Close() })

	db := sqlx.NewDb(mockDB, "sqlmock")
	wrapped := &database.PostgresDB{DB: db}

	logger := logrus.New()
	logger.SetOutput(io.Discard)

	service := NewTripService(
		database.NewTripRepository(db),
		database.NewReservationRepository(db),
		database.NewRaceRepository(db),
		database.NewUserRepository(wrapped),
		database.NewProfileRepository(db),
		notify.NewLogNotifier(logger),
		"http://localhost:3000",
		logger,
	)
	return service, mock
}

func userRow(id string, now time.Time) *sqlmock.Rows {
	return sqlmock.NewRows(userColumns).
		AddRow(id, "Ana Ruiz", "Ana", "Ruiz", id+"@example.com", nil, now, now)
}

func raceRow(now time.Time) *sqlmock.Rows {
	return sqlmock.NewRows(raceColumns).AddRow(
		"race-1", "City Marathon", "Annual road race", "2027-05-01", "2027-05-02",
		"Valencia", "Valencia", "Spain", "City center", "", "road",
		now, now, nil,
	)
}

func profileRow(now time.Time) *sqlmock.Rows {
	return sqlmock.NewRows([]string{
		"id", "user_id", "name", "surname", "email", "phone", "birth_year",
		"gender", "running_experience", "usually_travel_race",
		"created_at", "updated_at", "deleted_at",
	}).AddRow("profile-1", "driver-1", "Ana", "Ruiz", "ana@example.com", nil, 1990, 2, 1, 3, now, now, nil)
}

func tripRow(now time.Time, day, hour string) *sqlmock.Rows {
	return sqlmock.NewRows(tripColumns).AddRow(
		"trip-1", "driver-1", "race-1", "car-1", day, hour,
		"Madrid", "Madrid", nil, nil, nil, 3, now, nil,
	)
}

func TestTripServiceCreate(t *testing.T) {
	now := time.Now()

	t.Run("unknown driver", func(t *testing.T) {
		service, mock := newTestService(t)

		mock.ExpectQuery(`SELECT (.+) FROM users`).
			WithArgs("nobody").
			WillReturnRows(sqlmock.NewRows(userColumns))

		_, err := service.Create(&models.CreateTripRequest{
			DriverID: "nobody", RaceID: "race-1",
			DepartureDay: "2030-06-01", DepartureHour: "07:30",
			DepartureCity: "Madrid", DepartureProvince: "Madrid", SeatCount: 3,
		})
		assert.ErrorIs(t, err, models.ErrDriverNotFound)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("driver without a profile is not found", func(t *testing.T) {
		service, mock := newTestService(t)

		mock.ExpectQuery(`SELECT (.+) FROM users`).
			WithArgs("driver-1").
			WillReturnRows(userRow("driver-1", now))
		mock.ExpectQuery(`SELECT (.+) FROM races`).
			WithArgs("race-1").
			WillReturnRows(raceRow(now))
		mock.ExpectQuery(`SELECT (.+) FROM race_distances`).
			WithArgs("race-1").
			WillReturnRows(sqlmock.NewRows([]string{"id", "race_id", "distance_km", "created_at", "updated_at", "deleted_at"}))
		mock.ExpectQuery(`SELECT (.+) FROM user_profiles`).
			WithArgs("driver-1").
			WillReturnRows(sqlmock.NewRows([]string{"id"}))

		_, err := service.Create(&models.CreateTripRequest{
			DriverID: "driver-1", RaceID: "race-1",
			DepartureDay: "2030-06-01", DepartureHour: "07:30",
			DepartureCity: "Madrid", DepartureProvince: "Madrid", SeatCount: 3,
		})
		assert.ErrorIs(t, err, models.ErrProfileNotFound)
		assert.True(t, models.IsNotFound(err))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("driver profile without cars cannot publish", func(t *testing.T) {
		service, mock := newTestService(t)

		mock.ExpectQuery(`SELECT (.+) FROM users`).
			WithArgs("driver-1").
			WillReturnRows(userRow("driver-1", now))
		mock.ExpectQuery(`SELECT (.+) FROM races`).
			WithArgs("race-1").
			WillReturnRows(raceRow(now))
		mock.ExpectQuery(`SELECT (.+) FROM race_distances`).
			WithArgs("race-1").
			WillReturnRows(sqlmock.NewRows([]string{"id", "race_id", "distance_km", "created_at", "updated_at", "deleted_at"}))
		mock.ExpectQuery(`SELECT (.+) FROM user_profiles`).
			WithArgs("driver-1").
			WillReturnRows(profileRow(now))
		mock.ExpectQuery(`SELECT (.+) FROM cars`).
			WithArgs("profile-1").
			WillReturnRows(sqlmock.NewRows([]string{
				"id", "user_profile_id", "brand", "model", "year", "color", "seats",
				"license_plate", "created_at", "updated_at", "deleted_at",
			}))
		mock.ExpectQuery(`SELECT (.+) FROM user_profile_race_types`).
			WithArgs("profile-1").
			WillReturnRows(sqlmock.NewRows([]string{"id", "user_profile_id", "race_type", "created_at", "updated_at", "deleted_at"}))
		mock.ExpectQuery(`SELECT (.+) FROM user_profile_distances`).
			WithArgs("profile-1").
			WillReturnRows(sqlmock.NewRows([]string{"id", "user_profile_id", "distance_km", "created_at", "updated_at", "deleted_at"}))

		_, err := service.Create(&models.CreateTripRequest{
			DriverID: "driver-1", RaceID: "race-1",
			DepartureDay: "2030-06-01", DepartureHour: "07:30",
			DepartureCity: "Madrid", DepartureProvince: "Madrid", SeatCount: 3,
		})
		assert.ErrorIs(t, err, models.ErrNoCarRegistered)
		assert.True(t, models.IsInvalidState(err))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("past departure rejected after eligibility checks", func(t *testing.T) {
		service, mock := newTestService(t)

		mock.ExpectQuery(`SELECT (.+) FROM users`).
			WithArgs("driver-1").
			WillReturnRows(userRow("driver-1", now))
		mock.ExpectQuery(`SELECT (.+) FROM races`).
			WithArgs("race-1").
			WillReturnRows(raceRow(now))
		mock.ExpectQuery(`SELECT (.+) FROM race_distances`).
			WithArgs("race-1").
			WillReturnRows(sqlmock.NewRows([]string{"id", "race_id", "distance_km", "created_at", "updated_at", "deleted_at"}))
		mock.ExpectQuery(`SELECT (.+) FROM user_profiles`).
			WithArgs("driver-1").
			WillReturnRows(profileRow(now))
		mock.ExpectQuery(`SELECT (.+) FROM cars`).
			WithArgs("profile-1").
			WillReturnRows(sqlmock.NewRows([]string{
				"id", "user_profile_id", "brand", "model", "year", "color", "seats",
				"license_plate", "created_at", "updated_at", "deleted_at",
			}).AddRow("car-1", "profile-1", "Seat", "Leon", 2020, "red", 5, "1234ABC", now, now, nil))
		mock.ExpectQuery(`SELECT (.+) FROM user_profile_race_types`).
			WithArgs("profile-1").
			WillReturnRows(sqlmock.NewRows([]string{"id", "user_profile_id", "race_type", "created_at", "updated_at", "deleted_at"}))
		mock.ExpectQuery(`SELECT (.+) FROM user_profile_distances`).
			WithArgs("profile-1").
			WillReturnRows(sqlmock.NewRows([]string{"id", "user_profile_id", "distance_km", "created_at", "updated_at", "deleted_at"}))

		_, err := service.Create(&models.CreateTripRequest{
			DriverID: "driver-1", RaceID: "race-1",
			DepartureDay: "2020-01-01", DepartureHour: "07:30",
			DepartureCity: "Madrid", DepartureProvince: "Madrid", SeatCount: 3,
		})
		assert.ErrorIs(t, err, models.ErrPastDeparture)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestTripServiceJoin(t *testing.T) {
	now := time.Now()

	t.Run("departed trip rejects joins", func(t *testing.T) {
		service, mock := newTestService(t)

		mock.ExpectQuery(`SELECT (.+) FROM trips`).
			WithArgs("trip-1").
			WillReturnRows(tripRow(now, "2020-01-01", "07:30"))
		mock.ExpectQuery(`SELECT (.+) FROM users`).
			WithArgs("p1").
			WillReturnRows(userRow("p1", now))

		_, err := service.Join(&models.JoinTripRequest{TripID: "trip-1", PassengerID: "p1"})
		assert.ErrorIs(t, err, models.ErrTripDeparted)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("unknown passenger", func(t *testing.T) {
		service, mock := newTestService(t)

		mock.ExpectQuery(`SELECT (.+) FROM trips`).
			WithArgs("trip-1").
			WillReturnRows(tripRow(now, "2030-06-01", "07:30"))
		mock.ExpectQuery(`SELECT (.+) FROM users`).
			WithArgs("nobody").
			WillReturnRows(sqlmock.NewRows(userColumns))

		_, err := service.Join(&models.JoinTripRequest{TripID: "trip-1", PassengerID: "nobody"})
		assert.ErrorIs(t, err, models.ErrPassengerNotFound)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestTripServiceLeave(t *testing.T) {
	now := time.Now()

	t.Run("driver cannot leave their own trip", func(t *testing.T) {
		service, mock := newTestService(t)

		mock.ExpectQuery(`SELECT (.+) FROM trips`).
			WithArgs("trip-1").
			WillReturnRows(tripRow(now, "2030-06-01", "07:30"))
		mock.ExpectQuery(`SELECT (.+) FROM trip_passengers`).
			WithArgs("trip-1", "driver-1").
			WillReturnRows(sqlmock.NewRows([]string{"id", "trip_id", "passenger_id", "created_at", "updated_at", "deleted_at"}).
				AddRow("r1", "trip-1", "driver-1", now, now, nil))

		err := service.Leave("trip-1", "driver-1")
		assert.ErrorIs(t, err, models.ErrDriverCannotLeave)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("passenger without a seat", func(t *testing.T) {
		service, mock := newTestService(t)

		mock.ExpectQuery(`SELECT (.+) FROM trips`).
			WithArgs("trip-1").
			WillReturnRows(tripRow(now, "2030-06-01", "07:30"))
		mock.ExpectQuery(`SELECT (.+) FROM trip_passengers`).
			WithArgs("trip-1", "p9").
			WillReturnRows(sqlmock.NewRows([]string{"id"}))

		err := service.Leave("trip-1", "p9")
		assert.ErrorIs(t, err, models.ErrReservationNotFound)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestTripServiceUpdate(t *testing.T) {
	now := time.Now()

	t.Run("merged past departure rejected", func(t *testing.T) {
		service, mock := newTestService(t)
		day := "2020-01-01"

		mock.ExpectQuery(`SELECT (.+) FROM trips`).
			WithArgs("trip-1").
			WillReturnRows(tripRow(now, "2030-06-01", "07:30"))

		_, err := service.Update("trip-1", &models.UpdateTripRequest{DepartureDay: &day})
		assert.ErrorIs(t, err, models.ErrPastDeparture)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}
