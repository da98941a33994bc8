package database

import (
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/runpool/runpool-backend/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleProfileRequest() *models.CreateProfileRequest {
	return &models.CreateProfileRequest{
		UserID:    "user-1",
		Name:      "Ana",
		Surname:   "Ruiz",
		Email:     "ana@example.com",
		BirthYear: 1990,
		Cars: []models.CreateCarRequest{
			{Brand: "Seat", Model: "Leon", Year: 2020, Color: "red", Seats: 5, LicensePlate: "1234ABC"},
		},
		PreferredRaceTypes: []models.RaceType{models.RaceTypeRoad, models.RaceTypeTrail},
		PreferredDistances: []int{10, 21},
	}
}

func expectUserCount(mock sqlmock.Sqlmock, userID string, count int) {
	mock.ExpectQuery(`SELECT COUNT(.+) FROM users`).
		WithArgs(userID).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(count))
}

func TestCreateCompleteProfile(t *testing.T) {
	now := time.Now()

	t.Run("creates profile, cars and preferences in one transaction", func(t *testing.T) {
		db, mock := newMockDB(t)
		repo := NewProfileRepository(db)

		mock.ExpectBegin()
		expectUserCount(mock, "user-1", 1)
		mock.ExpectQuery(`SELECT COUNT(.+) FROM user_profiles`).
			WithArgs("user-1").
			WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))
		mock.ExpectQuery(`INSERT INTO user_profiles`).
			WillReturnRows(sqlmock.NewRows([]string{"created_at", "updated_at"}).AddRow(now, now))
		mock.ExpectQuery(`SELECT COUNT(.+) FROM cars`).
			WithArgs("1234ABC").
			WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))
		mock.ExpectQuery(`INSERT INTO cars`).
			WillReturnRows(sqlmock.NewRows([]string{"created_at", "updated_at"}).AddRow(now, now))
		mock.ExpectQuery(`INSERT INTO user_profile_race_types`).
			WithArgs(sqlmock.AnyArg(), sqlmock.AnyArg(), models.RaceTypeRoad).
			WillReturnRows(sqlmock.NewRows([]string{"created_at", "updated_at"}).AddRow(now, now))
		mock.ExpectQuery(`INSERT INTO user_profile_race_types`).
			WithArgs(sqlmock.AnyArg(), sqlmock.AnyArg(), models.RaceTypeTrail).
			WillReturnRows(sqlmock.NewRows([]string{"created_at", "updated_at"}).AddRow(now, now))
		mock.ExpectQuery(`INSERT INTO user_profile_distances`).
			WithArgs(sqlmock.AnyArg(), sqlmock.AnyArg(), 10).
			WillReturnRows(sqlmock.NewRows([]string{"created_at", "updated_at"}).AddRow(now, now))
		mock.ExpectQuery(`INSERT INTO user_profile_distances`).
			WithArgs(sqlmock.AnyArg(), sqlmock.AnyArg(), 21).
			WillReturnRows(sqlmock.NewRows([]string{"created_at", "updated_at"}).AddRow(now, now))
		mock.ExpectCommit()

		profile, err := repo.CreateComplete(sampleProfileRequest())
		require.NoError(t, err)
		require.Len(t, profile.Cars, 1)
		assert.Equal(t, "1234ABC", profile.Cars[0].LicensePlate)
		assert.Equal(t, profile.ID, profile.Cars[0].UserProfileID)
		require.Len(t, profile.PreferredRaceTypes, 2)
		assert.Equal(t, models.RaceTypeRoad, profile.PreferredRaceTypes[0].RaceType)
		require.Len(t, profile.PreferredDistances, 2)
		assert.Equal(t, 21, profile.PreferredDistances[1].DistanceKM)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("unknown user rejected before any write", func(t *testing.T) {
		db, mock := newMockDB(t)
		repo := NewProfileRepository(db)

		mock.ExpectBegin()
		expectUserCount(mock, "user-1", 0)
		mock.ExpectRollback()

		_, err := repo.CreateComplete(sampleProfileRequest())
		assert.ErrorIs(t, err, models.ErrUserNotFound)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("existing profile rejected", func(t *testing.T) {
		db, mock := newMockDB(t)
		repo := NewProfileRepository(db)

		mock.ExpectBegin()
		expectUserCount(mock, "user-1", 1)
		mock.ExpectQuery(`SELECT COUNT(.+) FROM user_profiles`).
			WithArgs("user-1").
			WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))
		mock.ExpectRollback()

		_, err := repo.CreateComplete(sampleProfileRequest())
		assert.ErrorIs(t, err, models.ErrProfileExists)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("taken license plate rolls back the whole profile", func(t *testing.T) {
		db, mock := newMockDB(t)
		repo := NewProfileRepository(db)

		mock.ExpectBegin()
		expectUserCount(mock, "user-1", 1)
		mock.ExpectQuery(`SELECT COUNT(.+) FROM user_profiles`).
			WithArgs("user-1").
			WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))
		mock.ExpectQuery(`INSERT INTO user_profiles`).
			WillReturnRows(sqlmock.NewRows([]string{"created_at", "updated_at"}).AddRow(now, now))
		mock.ExpectQuery(`SELECT COUNT(.+) FROM cars`).
			WithArgs("1234ABC").
			WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))
		mock.ExpectRollback()

		_, err := repo.CreateComplete(sampleProfileRequest())
		assert.ErrorIs(t, err, models.ErrDuplicatePlate)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestGetProfileByUserID(t *testing.T) {
	t.Run("loads profile with cars and preferences", func(t *testing.T) {
		db, mock := newMockDB(t)
		repo := NewProfileRepository(db)
		now := time.Now()

		mock.ExpectQuery(`SELECT (.+) FROM user_profiles`).
			WithArgs("user-1").
			WillReturnRows(sqlmock.NewRows([]string{
				"id", "user_id", "name", "surname", "email", "phone", "birth_year",
				"gender", "running_experience", "usually_travel_race",
				"created_at", "updated_at", "deleted_at",
			}).AddRow(
				"profile-1", "user-1", "Ana", "Ruiz", "ana@example.com", nil, 1990,
				2, 1, 3, now, now, nil,
			))
		mock.ExpectQuery(`SELECT (.+) FROM cars`).
			WithArgs("profile-1").
			WillReturnRows(sqlmock.NewRows([]string{
				"id", "user_profile_id", "brand", "model", "year", "color", "seats",
				"license_plate", "created_at", "updated_at", "deleted_at",
			}).AddRow(
				"car-1", "profile-1", "Seat", "Leon", 2020, "red", 5,
				"1234ABC", now, now, nil,
			))
		mock.ExpectQuery(`SELECT (.+) FROM user_profile_race_types`).
			WithArgs("profile-1").
			WillReturnRows(sqlmock.NewRows([]string{
				"id", "user_profile_id", "race_type", "created_at", "updated_at", "deleted_at",
			}).AddRow("pref-1", "profile-1", "trail", now, now, nil))
		mock.ExpectQuery(`SELECT (.+) FROM user_profile_distances`).
			WithArgs("profile-1").
			WillReturnRows(sqlmock.NewRows([]string{
				"id", "user_profile_id", "distance_km", "created_at", "updated_at", "deleted_at",
			}).AddRow("pref-2", "profile-1", 42, now, now, nil))

		profile, err := repo.GetByUserID("user-1")
		require.NoError(t, err)
		require.Len(t, profile.Cars, 1)
		assert.Equal(t, "car-1", profile.Cars[0].ID)
		require.Len(t, profile.PreferredRaceTypes, 1)
		assert.Equal(t, models.RaceTypeTrail, profile.PreferredRaceTypes[0].RaceType)
		require.Len(t, profile.PreferredDistances, 1)
		assert.Equal(t, 42, profile.PreferredDistances[0].DistanceKM)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("missing profile", func(t *testing.T) {
		db, mock := newMockDB(t)
		repo := NewProfileRepository(db)

		mock.ExpectQuery(`SELECT (.+) FROM user_profiles`).
			WithArgs("nobody").
			WillReturnRows(sqlmock.NewRows([]string{"id"}))

		_, err := repo.GetByUserID("nobody")
		assert.ErrorIs(t, err, models.ErrProfileNotFound)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestProfileSoftDelete(t *testing.T) {
	t.Run("tombstones profile, cars and preferences together", func(t *testing.T) {
		db, mock := newMockDB(t)
		repo := NewProfileRepository(db)

		mock.ExpectBegin()
		mock.ExpectQuery(`SELECT id FROM user_profiles`).
			WithArgs("user-1").
			WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow("profile-1"))
		mock.ExpectExec(`UPDATE cars`).
			WithArgs("profile-1").
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectExec(`UPDATE user_profile_race_types`).
			WithArgs("profile-1").
			WillReturnResult(sqlmock.NewResult(0, 2))
		mock.ExpectExec(`UPDATE user_profile_distances`).
			WithArgs("profile-1").
			WillReturnResult(sqlmock.NewResult(0, 2))
		mock.ExpectExec(`UPDATE user_profiles`).
			WithArgs("profile-1").
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectCommit()

		assert.NoError(t, repo.SoftDelete("user-1"))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("missing profile", func(t *testing.T) {
		db, mock := newMockDB(t)
		repo := NewProfileRepository(db)

		mock.ExpectBegin()
		mock.ExpectQuery(`SELECT id FROM user_profiles`).
			WithArgs("nobody").
			WillReturnRows(sqlmock.NewRows([]string{"id"}))
		mock.ExpectRollback()

		err := repo.SoftDelete("nobody")
		assert.ErrorIs(t, err, models.ErrProfileNotFound)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}
