package models

import "time"

// AuthProvider identifies where an identity came from.
type AuthProvider string

const (
	ProviderGoogle AuthProvider = "google"
	ProviderLocal  AuthProvider = "local"
)

// User is an authenticated identity. Users signing in through OAuth are
// created on first sign-in and never edited through the registration flows.
type User struct {
	ID           int          `json:"id" db:"id"`
	Provider     AuthProvider `json:"provider" db:"provider"`
	ProviderID   *string      `json:"-" db:"provider_id"`
	FullName     string       `json:"full_name" db:"full_name"`
	Email        string       `json:"email" db:"email"`
	PasswordHash *string      `json:"-" db:"password_hash"`
	CreatedAt    time.Time    `json:"created_at" db:"created_at"`

	// AvatarURL is the provider-supplied picture; AvatarKey points at an
	// uploaded avatar in object storage and takes precedence when present.
	AvatarURL *string `json:"avatar_url,omitempty" db:"avatar_url"`
	AvatarKey *string `json:"-" db:"avatar_key"`
}

type Credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}
