package models

import "time"

// User represents an account as issued by the external identity provider.
// The backend never creates users itself; they arrive through the identity
// sync and are only read here.
type User struct {
	ID         string    `json:"id" db:"id"`
	Name       string    `json:"name" db:"name"`
	GivenName  string    `json:"given_name" db:"given_name"`
	FamilyName string    `json:"family_name" db:"family_name"`
	Email      string    `json:"email" db:"email"`
	PictureURL *string   `json:"picture_url,omitempty" db:"picture_url"`
	CreatedAt  time.Time `json:"created_at" db:"created_at"`
	UpdatedAt  time.Time `json:"updated_at" db:"updated_at"`
}

// UserSummary is the projection of a user embedded in trip responses.
type UserSummary struct {
	ID         string  `json:"id"`
	Name       string  `json:"name"`
	GivenName  string  `json:"given_name"`
	FamilyName string  `json:"family_name"`
	Email      string  `json:"email"`
	PictureURL *string `json:"picture_url,omitempty"`
}

// Summary converts a user into its response projection.
func (u *User) Summary() UserSummary {
	return UserSummary{
		ID:         u.ID,
		Name:       u.Name,
		GivenName:  u.GivenName,
		FamilyName: u.FamilyName,
		Email:      u.Email,
		PictureURL: u.PictureURL,
	}
}
