package models

import "time"

// Event is a dated activity that teams register against. Events are
// insert-only: the registration client exposes no update or delete for them.
type Event struct {
	ID          int       `json:"id" db:"id"`
	Name        string    `json:"name" db:"name"`
	Description *string   `json:"description,omitempty" db:"description"`
	EventDate   time.Time `json:"event_date" db:"event_date"`
	MaxTeams    int       `json:"max_teams" db:"max_teams"`
	CreatedBy   int       `json:"created_by" db:"created_by"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`

	// TeamCount is filled by the catalog query, not a column.
	TeamCount int `json:"team_count" db:"-"`

	Creator *User `json:"creator,omitempty" db:"-"`
}
