package services

import "errors"

// Shared errors used across services and the HTTP mapping.
var (
	ErrNotFound = errors.New("requested resource not found")

	// Validation and business rules.
	ErrValidationFailed     = errors.New("validation failed")
	ErrPasswordTooShort     = errors.New("password is too short")
	ErrEventNameRequired    = errors.New("event name is required")
	ErrEventDateRequired    = errors.New("event date is required")
	ErrTeamNameRequired     = errors.New("team name is required")
	ErrTeamMemberIncomplete = errors.New("all team members need a name and an email")
	ErrTeamMemberCount      = errors.New("a team must have exactly four members")

	// Conflicts.
	ErrUserEmailConflict = errors.New("email address is already in use")
	ErrTeamCodeExhausted = errors.New("could not allocate a unique team code")

	// Authentication and authorization.
	ErrAuthInvalidCredentials = errors.New("invalid email or password")
	ErrAuthEmailTaken         = errors.New("email is already taken")
	ErrOAuthNotConfigured     = errors.New("oauth sign-in is not configured")
	ErrStorageNotConfigured   = errors.New("avatar storage is not configured")
	ErrOAuthExchangeFailed    = errors.New("oauth code exchange failed")
	ErrCaptainActionForbidden = errors.New("only the team captain can perform this action")

	// Entity-specific not-found errors, more context than the generic one.
	ErrUserNotFound  = errors.New("user not found")
	ErrEventNotFound = errors.New("event not found")
	ErrTeamNotFound  = errors.New("team not found")
)
