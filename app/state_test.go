package app

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lbeckmann/team-registration/models"
	"github.com/lbeckmann/team-registration/services"
)

type fakeSession struct {
	signOutCalls int
	signOutErr   error
}

func (f *fakeSession) SignOut(ctx context.Context, userID int) error {
	f.signOutCalls++
	return f.signOutErr
}

type fakeCatalog struct {
	events      []models.Event
	listErr     error
	createCalls int
	createErr   error
	nextEventID int
}

func (f *fakeCatalog) ListEvents(ctx context.Context) ([]models.Event, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	out := make([]models.Event, len(f.events))
	copy(out, f.events)
	return out, nil
}

func (f *fakeCatalog) CreateEvent(ctx context.Context, input services.CreateEventInput) (*models.Event, error) {
	f.createCalls++
	if f.createErr != nil {
		return nil, f.createErr
	}
	f.nextEventID++
	event := models.Event{
		ID:        f.nextEventID,
		Name:      input.Name,
		MaxTeams:  input.MaxTeams,
		CreatedBy: input.CreatorID,
	}
	f.events = append([]models.Event{event}, f.events...)
	return &event, nil
}

type fakeRoster struct {
	teams       map[int][]models.Team
	createCalls int
	updateCalls int
	deleteCalls int
	lastInput   services.SaveTeamInput
	saveErr     error
	deleteErr   error
	nextTeamID  int
}

func newFakeRoster() *fakeRoster {
	return &fakeRoster{teams: make(map[int][]models.Team)}
}

func (f *fakeRoster) ListTeamsByEvent(ctx context.Context, eventID int) ([]models.Team, error) {
	out := make([]models.Team, len(f.teams[eventID]))
	copy(out, f.teams[eventID])
	return out, nil
}

func (f *fakeRoster) CreateTeam(ctx context.Context, input services.SaveTeamInput) (*models.Team, error) {
	f.createCalls++
	f.lastInput = input
	if f.saveErr != nil {
		return nil, f.saveErr
	}
	f.nextTeamID++
	team := models.Team{
		ID:        f.nextTeamID,
		Name:      input.Name,
		Code:      fmt.Sprintf("CODE%02d", f.nextTeamID),
		EventID:   input.EventID,
		CaptainID: input.CurrentUserID,
	}
	f.teams[input.EventID] = append([]models.Team{team}, f.teams[input.EventID]...)
	return &team, nil
}

func (f *fakeRoster) UpdateTeam(ctx context.Context, teamID int, input services.SaveTeamInput) (*models.Team, error) {
	f.updateCalls++
	f.lastInput = input
	if f.saveErr != nil {
		return nil, f.saveErr
	}
	for eventID, teams := range f.teams {
		for i := range teams {
			if teams[i].ID == teamID {
				teams[i].Name = input.Name
				f.teams[eventID] = teams
				team := teams[i]
				return &team, nil
			}
		}
	}
	return nil, services.ErrTeamNotFound
}

func (f *fakeRoster) DeleteTeam(ctx context.Context, teamID int, currentUserID int) error {
	f.deleteCalls++
	if f.deleteErr != nil {
		return f.deleteErr
	}
	for eventID, teams := range f.teams {
		for i := range teams {
			if teams[i].ID == teamID {
				f.teams[eventID] = append(teams[:i], teams[i+1:]...)
				return nil
			}
		}
	}
	return services.ErrTeamNotFound
}

func signedInApp(t *testing.T) (*App, *fakeSession, *fakeCatalog, *fakeRoster) {
	t.Helper()
	session := &fakeSession{}
	catalog := &fakeCatalog{}
	roster := newFakeRoster()
	a := New(session, catalog, roster)
	a.HandleAuthChange(context.Background(), &models.User{ID: 7, FullName: "Pat"})
	return a, session, catalog, roster
}

func memberInputs() []services.TeamMemberInput {
	return []services.TeamMemberInput{
		{Name: "Alice", Email: "alice@example.com"},
		{Name: "Bob", Email: "bob@example.com"},
		{Name: "Carol", Email: "carol@example.com"},
		{Name: "Dave", Email: "dave@example.com"},
	}
}

func TestAuthChangeLoadsEvents(t *testing.T) {
	session := &fakeSession{}
	catalog := &fakeCatalog{events: []models.Event{{ID: 1, Name: "Spring Cup"}}}
	a := New(session, catalog, newFakeRoster())

	assert.Nil(t, a.State().CurrentUser)
	assert.Equal(t, ScreenEvents, a.State().View)

	a.HandleAuthChange(context.Background(), &models.User{ID: 7})

	state := a.State()
	require.NotNil(t, state.CurrentUser)
	require.Len(t, state.Events, 1)
	assert.Equal(t, "Spring Cup", state.Events[0].Name)
}

func TestSignOutClearsEverything(t *testing.T) {
	a, session, catalog, _ := signedInApp(t)
	catalog.events = []models.Event{{ID: 1, Name: "Spring Cup", MaxTeams: 8}}
	a.LoadEvents(context.Background())
	a.SelectEvent(context.Background(), catalog.events[0])
	a.OpenTeamForm(nil)

	a.SignOut(context.Background())

	state := a.State()
	assert.Equal(t, 1, session.signOutCalls)
	assert.Nil(t, state.CurrentUser)
	assert.Nil(t, state.Events)
	assert.Nil(t, state.Teams)
	assert.Nil(t, state.SelectedEvent)
	assert.False(t, state.ShowTeamForm)
	assert.Nil(t, state.EditingTeam)
	assert.Equal(t, ScreenEvents, state.View)
}

func TestSubmitEventValidationNeverCallsBackend(t *testing.T) {
	a, _, catalog, _ := signedInApp(t)
	a.OpenCreateEvent()

	a.SubmitEvent(context.Background(), services.CreateEventInput{Name: "  ", Date: "2026-05-01"})
	a.SubmitEvent(context.Background(), services.CreateEventInput{Name: "Spring Cup", Date: ""})

	state := a.State()
	assert.Zero(t, catalog.createCalls)
	assert.Equal(t, ScreenCreateEvent, state.View)
	assert.NotEmpty(t, state.Notice)
}

func TestSubmitEventSuccessReturnsToCatalog(t *testing.T) {
	a, _, catalog, _ := signedInApp(t)
	a.OpenCreateEvent()

	a.SubmitEvent(context.Background(), services.CreateEventInput{Name: "Spring Cup", Date: "2026-05-01", MaxTeams: 8})

	state := a.State()
	assert.Equal(t, 1, catalog.createCalls)
	assert.Equal(t, ScreenEvents, state.View)
	require.Len(t, state.Events, 1)
	assert.Equal(t, "Spring Cup", state.Events[0].Name)
	assert.False(t, state.Submitting)
	assert.Empty(t, state.Notice)
}

func TestSubmitEventFailureKeepsFormOpen(t *testing.T) {
	a, _, catalog, _ := signedInApp(t)
	catalog.createErr = fmt.Errorf("backend down")
	a.OpenCreateEvent()

	a.SubmitEvent(context.Background(), services.CreateEventInput{Name: "Spring Cup", Date: "2026-05-01"})

	state := a.State()
	assert.Equal(t, ScreenCreateEvent, state.View)
	assert.Contains(t, state.Notice, "backend down")
	assert.False(t, state.Submitting)
}

func TestSelectEventShowsRoster(t *testing.T) {
	a, _, _, roster := signedInApp(t)
	event := models.Event{ID: 5, Name: "Spring Cup", MaxTeams: 8}
	roster.teams[5] = []models.Team{{ID: 1, Name: "Early Birds", EventID: 5, CaptainID: 2}}

	a.SelectEvent(context.Background(), event)

	state := a.State()
	assert.Equal(t, ScreenTeams, state.View)
	require.NotNil(t, state.SelectedEvent)
	assert.Equal(t, 5, state.SelectedEvent.ID)
	require.Len(t, state.Teams, 1)
	assert.Equal(t, "Early Birds", state.Teams[0].Name)

	a.ShowEvents()
	assert.Equal(t, ScreenEvents, a.State().View)
	assert.Nil(t, a.State().SelectedEvent)
}

func TestSubmitTeamValidationNeverCallsBackend(t *testing.T) {
	a, _, _, roster := signedInApp(t)
	a.SelectEvent(context.Background(), models.Event{ID: 5, Name: "Spring Cup"})
	a.OpenTeamForm(nil)

	blankEmail := memberInputs()
	blankEmail[1].Email = " "

	a.SubmitTeam(context.Background(), services.SaveTeamInput{Name: " ", Members: memberInputs()})
	a.SubmitTeam(context.Background(), services.SaveTeamInput{Name: "Squad", Members: memberInputs()[:2]})
	a.SubmitTeam(context.Background(), services.SaveTeamInput{Name: "Squad", Members: blankEmail})

	assert.Zero(t, roster.createCalls)
	assert.Zero(t, roster.updateCalls)
	assert.True(t, a.State().ShowTeamForm)
	assert.NotEmpty(t, a.State().Notice)
}

func TestSubmitTeamCreatesAndRefreshesRoster(t *testing.T) {
	a, _, _, roster := signedInApp(t)
	a.SelectEvent(context.Background(), models.Event{ID: 5, Name: "Spring Cup"})
	a.OpenTeamForm(nil)

	a.SubmitTeam(context.Background(), services.SaveTeamInput{Name: "The Regulars", Members: memberInputs()})

	state := a.State()
	assert.Equal(t, 1, roster.createCalls)
	assert.Equal(t, 5, roster.lastInput.EventID)
	assert.Equal(t, 7, roster.lastInput.CurrentUserID)
	assert.False(t, state.ShowTeamForm)
	require.Len(t, state.Teams, 1)
	assert.Equal(t, "The Regulars", state.Teams[0].Name)
}

func TestSubmitTeamEditUpdatesExisting(t *testing.T) {
	a, _, _, roster := signedInApp(t)
	a.SelectEvent(context.Background(), models.Event{ID: 5, Name: "Spring Cup"})
	a.OpenTeamForm(nil)
	a.SubmitTeam(context.Background(), services.SaveTeamInput{Name: "Originals", Members: memberInputs()})
	require.Len(t, a.State().Teams, 1)

	team := a.State().Teams[0]
	a.OpenTeamForm(&team)
	a.SubmitTeam(context.Background(), services.SaveTeamInput{Name: "Renamed", Members: memberInputs()})

	state := a.State()
	assert.Equal(t, 1, roster.createCalls)
	assert.Equal(t, 1, roster.updateCalls)
	assert.False(t, state.ShowTeamForm)
	assert.Nil(t, state.EditingTeam)
	require.Len(t, state.Teams, 1)
	assert.Equal(t, "Renamed", state.Teams[0].Name)
	assert.Equal(t, team.Code, state.Teams[0].Code)
}

func TestSubmitTeamFailureKeepsOverlayOpen(t *testing.T) {
	a, _, _, roster := signedInApp(t)
	roster.saveErr = services.ErrCaptainActionForbidden
	a.SelectEvent(context.Background(), models.Event{ID: 5, Name: "Spring Cup"})
	a.OpenTeamForm(nil)

	a.SubmitTeam(context.Background(), services.SaveTeamInput{Name: "Squad", Members: memberInputs()})

	state := a.State()
	assert.True(t, state.ShowTeamForm)
	assert.NotEmpty(t, state.Notice)
	assert.False(t, state.Submitting)
}

func TestDeleteTeamNeedsConfirmation(t *testing.T) {
	a, _, _, roster := signedInApp(t)
	a.SelectEvent(context.Background(), models.Event{ID: 5, Name: "Spring Cup"})
	a.OpenTeamForm(nil)
	a.SubmitTeam(context.Background(), services.SaveTeamInput{Name: "Doomed", Members: memberInputs()})
	teamID := a.State().Teams[0].ID

	a.DeleteTeam(context.Background(), teamID, false)
	assert.Zero(t, roster.deleteCalls)
	assert.Len(t, a.State().Teams, 1)

	a.DeleteTeam(context.Background(), teamID, true)
	assert.Equal(t, 1, roster.deleteCalls)
	assert.Empty(t, a.State().Teams)
}

func TestCanManageTeamGatesControls(t *testing.T) {
	a, _, _, _ := signedInApp(t)

	assert.True(t, a.CanManageTeam(models.Team{CaptainID: 7}))
	assert.False(t, a.CanManageTeam(models.Team{CaptainID: 8}))

	a.HandleAuthChange(context.Background(), nil)
	assert.False(t, a.CanManageTeam(models.Team{CaptainID: 7}))
}

func TestEventBadge(t *testing.T) {
	assert.Equal(t, "0/8 Teams", EventBadge(models.Event{MaxTeams: 8}))
	assert.Equal(t, "3/20 Teams", EventBadge(models.Event{TeamCount: 3, MaxTeams: 20}))
}
