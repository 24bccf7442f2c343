// Package app holds the client-side application state of the registration
// flow as an explicit container: one struct for session, catalog, roster and
// view state, mutated only through named transition functions. It sits on
// the same service interfaces the HTTP layer exposes, so the whole flow can
// run and be tested without a UI.
package app

import (
	"context"
	"fmt"
	"strings"

	"github.com/lbeckmann/team-registration/models"
	"github.com/lbeckmann/team-registration/services"
)

// Screen enumerates the views of the single-page flow.
type Screen string

const (
	ScreenEvents      Screen = "events"
	ScreenCreateEvent Screen = "createEvent"
	ScreenTeams       Screen = "teams"
)

// EventCatalog is the slice of the backend the catalog screens need.
// Satisfied by services.EventService.
type EventCatalog interface {
	ListEvents(ctx context.Context) ([]models.Event, error)
	CreateEvent(ctx context.Context, input services.CreateEventInput) (*models.Event, error)
}

// TeamRoster is the slice of the backend the roster screens need.
// Satisfied by services.TeamService.
type TeamRoster interface {
	ListTeamsByEvent(ctx context.Context, eventID int) ([]models.Team, error)
	CreateTeam(ctx context.Context, input services.SaveTeamInput) (*models.Team, error)
	UpdateTeam(ctx context.Context, teamID int, input services.SaveTeamInput) (*models.Team, error)
	DeleteTeam(ctx context.Context, teamID int, currentUserID int) error
}

// SessionManager ends sessions; sign-in happens out of band through the
// OAuth redirect and arrives via HandleAuthChange.
type SessionManager interface {
	SignOut(ctx context.Context, userID int) error
}

// State is everything the view layer renders from. All fields are plain
// data; transitions on App are the only writers.
type State struct {
	CurrentUser   *models.User
	View          Screen
	Events        []models.Event
	SelectedEvent *models.Event
	Teams         []models.Team
	ShowTeamForm  bool
	EditingTeam   *models.Team
	Submitting    bool

	// Notice carries the last user-visible error, named after the failed
	// operation with the backend's message attached. Empty when the last
	// transition succeeded.
	Notice string
}

// App drives State through its transitions. It is single-goroutine by
// design, matching the event-driven UI it models; callers must not share one
// App across goroutines.
type App struct {
	state   State
	session SessionManager
	catalog EventCatalog
	roster  TeamRoster
}

func New(session SessionManager, catalog EventCatalog, roster TeamRoster) *App {
	return &App{
		state:   State{View: ScreenEvents},
		session: session,
		catalog: catalog,
		roster:  roster,
	}
}

// State returns a copy of the current application state.
func (a *App) State() State {
	return a.state
}

// HandleAuthChange is the subscriber for the auth-state stream. A present
// identity loads the catalog; an absent one clears every piece of downstream
// state so nothing leaks into the next session.
func (a *App) HandleAuthChange(ctx context.Context, user *models.User) {
	a.state.CurrentUser = user
	if user == nil {
		a.state.Events = nil
		a.state.Teams = nil
		a.state.SelectedEvent = nil
		a.state.ShowTeamForm = false
		a.state.EditingTeam = nil
		a.state.Submitting = false
		a.state.View = ScreenEvents
		return
	}
	a.LoadEvents(ctx)
}

// SignOut requests session termination and applies the resulting absent
// session locally.
func (a *App) SignOut(ctx context.Context) {
	if a.state.CurrentUser == nil {
		return
	}
	if err := a.session.SignOut(ctx, a.state.CurrentUser.ID); err != nil {
		// Reported, session state unaffected.
		a.state.Notice = "Sign-out failed: " + err.Error()
		return
	}
	a.HandleAuthChange(ctx, nil)
}

// LoadEvents refreshes the catalog. On failure the previous list stays
// untouched and the error is surfaced.
func (a *App) LoadEvents(ctx context.Context) {
	if a.state.CurrentUser == nil {
		return
	}
	events, err := a.catalog.ListEvents(ctx)
	if err != nil {
		a.state.Notice = "Loading events failed: " + err.Error()
		return
	}
	a.state.Events = events
	a.state.Notice = ""
}

func (a *App) OpenCreateEvent() {
	a.state.View = ScreenCreateEvent
	a.state.Notice = ""
}

func (a *App) CancelEventForm() {
	a.state.View = ScreenEvents
	a.state.Notice = ""
}

// SubmitEvent validates the form locally first: a missing name or date never
// reaches the backend. On success the new event is prepended and the view
// returns to the catalog; on failure the form stays open.
func (a *App) SubmitEvent(ctx context.Context, input services.CreateEventInput) {
	if a.state.CurrentUser == nil || a.state.Submitting {
		return
	}
	if strings.TrimSpace(input.Name) == "" || strings.TrimSpace(input.Date) == "" {
		a.state.Notice = "Please fill in all required fields."
		return
	}
	input.CreatorID = a.state.CurrentUser.ID

	a.state.Submitting = true
	event, err := a.catalog.CreateEvent(ctx, input)
	a.state.Submitting = false

	if err != nil {
		a.state.Notice = "Creating event failed: " + err.Error()
		return
	}

	a.state.Events = append([]models.Event{*event}, a.state.Events...)
	a.state.View = ScreenEvents
	a.state.Notice = ""
}

// SelectEvent enters the roster view and loads its teams as a side effect.
func (a *App) SelectEvent(ctx context.Context, event models.Event) {
	a.state.SelectedEvent = &event
	a.state.View = ScreenTeams
	a.LoadTeams(ctx)
}

// ShowEvents returns to the catalog, dropping the event selection.
func (a *App) ShowEvents() {
	a.state.View = ScreenEvents
	a.state.SelectedEvent = nil
	a.state.Notice = ""
}

// LoadTeams refreshes the roster of the selected event. On failure the
// previous roster stays untouched.
func (a *App) LoadTeams(ctx context.Context) {
	if a.state.SelectedEvent == nil {
		return
	}
	teams, err := a.roster.ListTeamsByEvent(ctx, a.state.SelectedEvent.ID)
	if err != nil {
		a.state.Notice = "Loading teams failed: " + err.Error()
		return
	}
	a.state.Teams = teams
	a.state.Notice = ""
}

// OpenTeamForm shows the overlay; a nil team means create, otherwise the
// given team is being edited.
func (a *App) OpenTeamForm(team *models.Team) {
	a.state.ShowTeamForm = true
	a.state.EditingTeam = team
	a.state.Notice = ""
}

func (a *App) CloseTeamForm() {
	a.state.ShowTeamForm = false
	a.state.EditingTeam = nil
}

// SubmitTeam registers a new team or, when a team is being edited, updates
// its name and replaces its members. Validation failures and backend errors
// keep the overlay open; the submit flag guards against double submission
// from this session.
func (a *App) SubmitTeam(ctx context.Context, input services.SaveTeamInput) {
	if a.state.CurrentUser == nil || a.state.SelectedEvent == nil || a.state.Submitting {
		return
	}

	if strings.TrimSpace(input.Name) == "" {
		a.state.Notice = "Please enter a team name."
		return
	}
	if len(input.Members) != models.TeamSize {
		a.state.Notice = fmt.Sprintf("A team needs exactly %d members.", models.TeamSize)
		return
	}
	for _, m := range input.Members {
		if strings.TrimSpace(m.Name) == "" || strings.TrimSpace(m.Email) == "" {
			a.state.Notice = "Please fill in all team member fields."
			return
		}
	}

	input.EventID = a.state.SelectedEvent.ID
	input.CurrentUserID = a.state.CurrentUser.ID

	a.state.Submitting = true
	var err error
	if a.state.EditingTeam != nil {
		_, err = a.roster.UpdateTeam(ctx, a.state.EditingTeam.ID, input)
	} else {
		_, err = a.roster.CreateTeam(ctx, input)
	}
	a.state.Submitting = false

	if err != nil {
		if a.state.EditingTeam != nil {
			a.state.Notice = "Updating team failed: " + err.Error()
		} else {
			a.state.Notice = "Registering team failed: " + err.Error()
		}
		return
	}

	a.CloseTeamForm()
	a.LoadTeams(ctx)
}

// DeleteTeam removes a team after interactive confirmation and reloads the
// roster. A declined confirmation is a no-op.
func (a *App) DeleteTeam(ctx context.Context, teamID int, confirmed bool) {
	if a.state.CurrentUser == nil || !confirmed {
		return
	}
	if err := a.roster.DeleteTeam(ctx, teamID, a.state.CurrentUser.ID); err != nil {
		a.state.Notice = "Deleting team failed: " + err.Error()
		return
	}
	a.state.Notice = ""
	a.LoadTeams(ctx)
}

// CanManageTeam gates the edit/delete controls. This is a UI convenience;
// the backend enforces the captain rule authoritatively.
func (a *App) CanManageTeam(team models.Team) bool {
	return a.state.CurrentUser != nil && a.state.CurrentUser.ID == team.CaptainID
}

// EventBadge renders the capacity badge shown on a catalog card, e.g.
// "3/20 Teams".
func EventBadge(event models.Event) string {
	return fmt.Sprintf("%d/%d Teams", event.TeamCount, event.MaxTeams)
}
