package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/lbeckmann/team-registration/models"
	"github.com/lbeckmann/team-registration/repositories"
)

// DefaultMaxTeams is used when the event form does not carry a valid
// positive capacity.
const DefaultMaxTeams = 20

type EventService interface {
	// ListEvents returns the catalog ordered by creation time descending.
	ListEvents(ctx context.Context) ([]models.Event, error)
	GetEventByID(ctx context.Context, id int) (*models.Event, error)
	CreateEvent(ctx context.Context, input CreateEventInput) (*models.Event, error)
}

type CreateEventInput struct {
	Name        string  `json:"name"`
	Description *string `json:"description,omitempty"`
	Date        string  `json:"date"`
	MaxTeams    int     `json:"max_teams"`

	// CreatorID is taken from the authenticated session, never from the form.
	CreatorID int `json:"-"`
}

type eventService struct {
	eventRepo repositories.EventRepository
}

func NewEventService(eventRepo repositories.EventRepository) EventService {
	return &eventService{eventRepo: eventRepo}
}

func (s *eventService) ListEvents(ctx context.Context) ([]models.Event, error) {
	events, err := s.eventRepo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list events: %w", err)
	}
	return events, nil
}

func (s *eventService) GetEventByID(ctx context.Context, id int) (*models.Event, error) {
	event, err := s.eventRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repositories.ErrEventNotFound) {
			return nil, ErrEventNotFound
		}
		return nil, err
	}
	return event, nil
}

func (s *eventService) CreateEvent(ctx context.Context, input CreateEventInput) (*models.Event, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, ErrEventNameRequired
	}
	if strings.TrimSpace(input.Date) == "" {
		return nil, ErrEventDateRequired
	}
	eventDate, err := time.Parse("2006-01-02", input.Date)
	if err != nil {
		return nil, fmt.Errorf("%w: date must be YYYY-MM-DD", ErrEventDateRequired)
	}

	maxTeams := input.MaxTeams
	if maxTeams <= 0 {
		maxTeams = DefaultMaxTeams
	}

	event := &models.Event{
		Name:        name,
		Description: input.Description,
		EventDate:   eventDate,
		MaxTeams:    maxTeams,
		CreatedBy:   input.CreatorID,
	}

	if err := s.eventRepo.Create(ctx, event); err != nil {
		if errors.Is(err, repositories.ErrEventInvalidCreator) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return event, nil
}
