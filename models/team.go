package models

import "time"

// TeamSize is the fixed roster size. Every team owns exactly this many
// members, positioned 1..TeamSize.
const TeamSize = 4

// Team is a named group registered to one event, owned by one captain and
// identified by a server-generated unique code. Code, captain and event
// binding are fixed at creation.
type Team struct {
	ID        int       `json:"id" db:"id"`
	Name      string    `json:"team_name" db:"team_name"`
	Code      string    `json:"team_code" db:"team_code"`
	EventID   int       `json:"event_id" db:"event_id"`
	CaptainID int       `json:"captain_id" db:"captain_id"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`

	Captain *User        `json:"captain,omitempty" db:"-"`
	Members []TeamMember `json:"members,omitempty" db:"-"`
}

// TeamMember is one roster entry. Members are replaced as a whole unit on
// every team update, never patched individually.
type TeamMember struct {
	ID       int    `json:"id" db:"id"`
	TeamID   int    `json:"team_id" db:"team_id"`
	Name     string `json:"member_name" db:"member_name"`
	Email    string `json:"member_email" db:"member_email"`
	Position int    `json:"member_position" db:"member_position"`
}
