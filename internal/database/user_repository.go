package database

import (
	"database/sql"
	"errors"

	"github.com/lib/pq"
	"github.com/runpool/runpool-backend/internal/models"
)

// UserRepository handles database operations for the users table. Users are
// written by the identity sync, so this repository is read-only.
type UserRepository struct {
	db DB
}

// NewUserRepository creates a new UserRepository
func NewUserRepository(db DB) *UserRepository {
	return &UserRepository{db: db}
}

// GetByID retrieves a user by ID
func (r *UserRepository) GetByID(userID string) (*models.User, error) {
	query := `
		SELECT id, name, given_name, family_name, email, picture_url,
			   created_at, updated_at
		FROM users
		WHERE id = $1
	`

	var user models.User
	if err := r.db.Get(&user, query, userID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, models.ErrUserNotFound
		}
		return nil, err
	}
	return &user, nil
}

// GetByIDs retrieves users keyed by ID. Missing IDs are simply absent from
// the result map.
func (r *UserRepository) GetByIDs(userIDs []string) (map[string]models.User, error) {
	result := make(map[string]models.User, len(userIDs))
	if len(userIDs) == 0 {
		return result, nil
	}

	query := `
		SELECT id, name, given_name, family_name, email, picture_url,
			   created_at, updated_at
		FROM users
		WHERE id = ANY($1)
	`

	var users []models.User
	if err := r.db.Select(&users, query, pq.StringArray(userIDs)); err != nil {
		return nil, err
	}
	for _, u := range users {
		result[u.ID] = u
	}
	return result, nil
}
