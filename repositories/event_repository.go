package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"

	"github.com/lbeckmann/team-registration/models"
)

var (
	ErrEventNotFound       = errors.New("event not found")
	ErrEventInvalidCreator = errors.New("invalid event creator reference")
)

// EventRepository is insert-only on purpose: the registration client never
// updates or deletes events.
type EventRepository interface {
	Create(ctx context.Context, event *models.Event) error
	GetByID(ctx context.Context, id int) (*models.Event, error)
	// List returns all events ordered by creation time descending, each with
	// its current registered team count.
	List(ctx context.Context) ([]models.Event, error)
}

type postgresEventRepository struct {
	db *sql.DB
}

func NewPostgresEventRepository(db *sql.DB) EventRepository {
	return &postgresEventRepository{db: db}
}

func (r *postgresEventRepository) Create(ctx context.Context, event *models.Event) error {
	query := `
		INSERT INTO events (name, description, event_date, max_teams, created_by)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at`

	err := r.db.QueryRowContext(ctx, query,
		event.Name,
		event.Description,
		event.EventDate,
		event.MaxTeams,
		event.CreatedBy,
	).Scan(&event.ID, &event.CreatedAt)

	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok && pqErr.Code == "23503" {
			if pqErr.Constraint == "events_created_by_fkey" {
				return ErrEventInvalidCreator
			}
		}
		return fmt.Errorf("failed to create event: %w", err)
	}
	return nil
}

func (r *postgresEventRepository) GetByID(ctx context.Context, id int) (*models.Event, error) {
	query := `
		SELECT e.id, e.name, e.description, e.event_date, e.max_teams, e.created_by, e.created_at,
		       (SELECT COUNT(*) FROM teams t WHERE t.event_id = e.id)
		FROM events e
		WHERE e.id = $1`

	var e models.Event
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&e.ID, &e.Name, &e.Description, &e.EventDate, &e.MaxTeams, &e.CreatedBy, &e.CreatedAt,
		&e.TeamCount,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrEventNotFound
		}
		return nil, err
	}
	return &e, nil
}

func (r *postgresEventRepository) List(ctx context.Context) ([]models.Event, error) {
	query := `
		SELECT e.id, e.name, e.description, e.event_date, e.max_teams, e.created_by, e.created_at,
		       (SELECT COUNT(*) FROM teams t WHERE t.event_id = e.id)
		FROM events e
		ORDER BY e.created_at DESC`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	events := make([]models.Event, 0)
	for rows.Next() {
		var e models.Event
		if scanErr := rows.Scan(
			&e.ID, &e.Name, &e.Description, &e.EventDate, &e.MaxTeams, &e.CreatedBy, &e.CreatedAt,
			&e.TeamCount,
		); scanErr != nil {
			return nil, scanErr
		}
		events = append(events, e)
	}

	if err = rows.Err(); err != nil {
		return nil, err
	}
	return events, nil
}
