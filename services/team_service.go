package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/lbeckmann/team-registration/models"
	"github.com/lbeckmann/team-registration/realtime"
	"github.com/lbeckmann/team-registration/repositories"
)

// How many times a fresh code is generated when an insert hits the unique
// index on team_code.
const codeAllocationAttempts = 3

// TeamService owns the roster of an event: listing teams with captain and
// members, registration, captain-only edits and deletion. Team code, captain
// and event binding are fixed at creation and never change afterwards.
type TeamService interface {
	ListTeamsByEvent(ctx context.Context, eventID int) ([]models.Team, error)
	GetTeamByID(ctx context.Context, teamID int) (*models.Team, error)
	CreateTeam(ctx context.Context, input SaveTeamInput) (*models.Team, error)
	UpdateTeam(ctx context.Context, teamID int, input SaveTeamInput) (*models.Team, error)
	DeleteTeam(ctx context.Context, teamID int, currentUserID int) error
}

type TeamMemberInput struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}

type SaveTeamInput struct {
	Name    string            `json:"team_name"`
	Members []TeamMemberInput `json:"members"`

	// EventID binds a new team; ignored on update. CurrentUserID comes from
	// the session and becomes the captain on create.
	EventID       int `json:"-"`
	CurrentUserID int `json:"-"`
}

type teamService struct {
	teamRepo  repositories.TeamRepository
	eventRepo repositories.EventRepository
	codeGen   CodeGenerator
	hub       *realtime.Hub
	logger    *slog.Logger
}

func NewTeamService(
	teamRepo repositories.TeamRepository,
	eventRepo repositories.EventRepository,
	codeGen CodeGenerator,
	hub *realtime.Hub,
	logger *slog.Logger,
) TeamService {
	return &teamService{
		teamRepo:  teamRepo,
		eventRepo: eventRepo,
		codeGen:   codeGen,
		hub:       hub,
		logger:    logger,
	}
}

func (s *teamService) ListTeamsByEvent(ctx context.Context, eventID int) ([]models.Team, error) {
	if _, err := s.eventRepo.GetByID(ctx, eventID); err != nil {
		if errors.Is(err, repositories.ErrEventNotFound) {
			return nil, ErrEventNotFound
		}
		return nil, err
	}

	teams, err := s.teamRepo.ListByEventID(ctx, eventID)
	if err != nil {
		return nil, fmt.Errorf("failed to list teams for event %d: %w", eventID, err)
	}

	// Member lists are loaded per team; fan out but keep the connection pool
	// honest.
	g, gCtx := errgroup.WithContext(ctx)
	g.SetLimit(4)
	for i := range teams {
		i := i
		g.Go(func() error {
			members, err := s.teamRepo.ListMembers(gCtx, teams[i].ID)
			if err != nil {
				return fmt.Errorf("failed to load members for team %d: %w", teams[i].ID, err)
			}
			teams[i].Members = members
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	return teams, nil
}

func (s *teamService) GetTeamByID(ctx context.Context, teamID int) (*models.Team, error) {
	team, err := s.teamRepo.GetByID(ctx, teamID)
	if err != nil {
		if errors.Is(err, repositories.ErrTeamNotFound) {
			return nil, ErrTeamNotFound
		}
		return nil, err
	}
	members, err := s.teamRepo.ListMembers(ctx, teamID)
	if err != nil {
		return nil, fmt.Errorf("failed to load members for team %d: %w", teamID, err)
	}
	team.Members = members
	return team, nil
}

func (s *teamService) CreateTeam(ctx context.Context, input SaveTeamInput) (*models.Team, error) {
	name, members, err := validateTeamInput(input)
	if err != nil {
		return nil, err
	}

	if _, err := s.eventRepo.GetByID(ctx, input.EventID); err != nil {
		if errors.Is(err, repositories.ErrEventNotFound) {
			return nil, ErrEventNotFound
		}
		return nil, err
	}

	team := &models.Team{
		Name:      name,
		EventID:   input.EventID,
		CaptainID: input.CurrentUserID,
	}

	// The generator only produces candidates; the unique index on team_code
	// is the actual uniqueness guarantee. A collision just burns an attempt.
	inserted := false
	for attempt := 0; attempt < codeAllocationAttempts; attempt++ {
		code, genErr := s.codeGen.GenerateTeamCode()
		if genErr != nil {
			return nil, fmt.Errorf("failed to generate team code: %w", genErr)
		}
		team.Code = code

		createErr := s.teamRepo.Create(ctx, nil, team)
		if createErr == nil {
			inserted = true
			break
		}
		if errors.Is(createErr, repositories.ErrTeamCodeConflict) {
			continue
		}
		if errors.Is(createErr, repositories.ErrTeamInvalidEvent) {
			return nil, ErrEventNotFound
		}
		if errors.Is(createErr, repositories.ErrTeamInvalidCaptain) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to create team: %w", createErr)
	}
	if !inserted {
		return nil, ErrTeamCodeExhausted
	}

	if err := s.teamRepo.InsertMembers(ctx, nil, team.ID, members); err != nil {
		// Compensate: drop the team row so a half-created team never shows
		// up in the roster. Best effort, the original error wins.
		if delErr := s.teamRepo.Delete(ctx, team.ID); delErr != nil {
			s.logger.Error("failed to roll back team after member insert failure",
				slog.Int("team_id", team.ID), slog.Any("error", delErr))
		}
		return nil, fmt.Errorf("failed to register team members: %w", err)
	}
	for i := range members {
		members[i].TeamID = team.ID
	}
	team.Members = members

	s.notifyRosterChange(team.EventID, "team_created", team.ID)
	return team, nil
}

func (s *teamService) UpdateTeam(ctx context.Context, teamID int, input SaveTeamInput) (*models.Team, error) {
	name, members, err := validateTeamInput(input)
	if err != nil {
		return nil, err
	}

	team, err := s.teamRepo.GetByID(ctx, teamID)
	if err != nil {
		if errors.Is(err, repositories.ErrTeamNotFound) {
			return nil, ErrTeamNotFound
		}
		return nil, err
	}

	if team.CaptainID != input.CurrentUserID {
		return nil, ErrCaptainActionForbidden
	}

	// Only the name is mutable; code, captain and event binding stay as
	// created.
	if err := s.teamRepo.UpdateName(ctx, teamID, name); err != nil {
		if errors.Is(err, repositories.ErrTeamNotFound) {
			return nil, ErrTeamNotFound
		}
		return nil, fmt.Errorf("failed to update team name: %w", err)
	}
	team.Name = name

	for i := range members {
		members[i].TeamID = teamID
	}
	if err := s.teamRepo.ReplaceMembers(ctx, teamID, members); err != nil {
		return nil, fmt.Errorf("failed to replace team members: %w", err)
	}
	team.Members = members

	s.notifyRosterChange(team.EventID, "team_updated", team.ID)
	return team, nil
}

func (s *teamService) DeleteTeam(ctx context.Context, teamID int, currentUserID int) error {
	team, err := s.teamRepo.GetByID(ctx, teamID)
	if err != nil {
		if errors.Is(err, repositories.ErrTeamNotFound) {
			return ErrTeamNotFound
		}
		return err
	}

	if team.CaptainID != currentUserID {
		return ErrCaptainActionForbidden
	}

	// Member rows cascade via the team_members foreign key.
	if err := s.teamRepo.Delete(ctx, teamID); err != nil {
		if errors.Is(err, repositories.ErrTeamNotFound) {
			return ErrTeamNotFound
		}
		return fmt.Errorf("failed to delete team: %w", err)
	}

	s.notifyRosterChange(team.EventID, "team_deleted", teamID)
	return nil
}

// validateTeamInput enforces the roster rules before anything touches the
// database: trimmed non-empty team name, exactly four members, each with a
// trimmed non-empty name and email. Positions are assigned 1..4 in submitted
// order.
func validateTeamInput(input SaveTeamInput) (string, []models.TeamMember, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return "", nil, ErrTeamNameRequired
	}

	if len(input.Members) != models.TeamSize {
		return "", nil, ErrTeamMemberCount
	}

	members := make([]models.TeamMember, 0, models.TeamSize)
	for i, m := range input.Members {
		memberName := strings.TrimSpace(m.Name)
		memberEmail := strings.TrimSpace(m.Email)
		if memberName == "" || memberEmail == "" {
			return "", nil, ErrTeamMemberIncomplete
		}
		members = append(members, models.TeamMember{
			Name:     memberName,
			Email:    memberEmail,
			Position: i + 1,
		})
	}
	return name, members, nil
}

func (s *teamService) notifyRosterChange(eventID int, change string, teamID int) {
	if s.hub == nil {
		return
	}
	s.hub.BroadcastToRoom(eventRoom(eventID), realtime.EventRosterChanged, map[string]interface{}{
		"change":   change,
		"event_id": eventID,
		"team_id":  teamID,
	})
}

func eventRoom(eventID int) string {
	return fmt.Sprintf("event_%d", eventID)
}
