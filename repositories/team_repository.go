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
	ErrTeamNotFound       = errors.New("team not found")
	ErrTeamCodeConflict   = errors.New("team code conflict")
	ErrTeamInvalidEvent   = errors.New("invalid event reference")
	ErrTeamInvalidCaptain = errors.New("invalid captain reference")
)

type TeamRepository interface {
	Create(ctx context.Context, exec SQLExecutor, team *models.Team) error
	GetByID(ctx context.Context, id int) (*models.Team, error)
	// ListByEventID returns teams for an event ordered by creation time
	// descending, each joined with its captain's profile. Members are loaded
	// separately via ListMembers.
	ListByEventID(ctx context.Context, eventID int) ([]models.Team, error)
	UpdateName(ctx context.Context, id int, name string) error
	// Delete removes the team row; member rows cascade via the schema's
	// referential rule.
	Delete(ctx context.Context, id int) error

	InsertMembers(ctx context.Context, exec SQLExecutor, teamID int, members []models.TeamMember) error
	// ReplaceMembers swaps the whole member list in a single transaction, so
	// a failed insert never leaves the team without members.
	ReplaceMembers(ctx context.Context, teamID int, members []models.TeamMember) error
	ListMembers(ctx context.Context, teamID int) ([]models.TeamMember, error)
}

type postgresTeamRepository struct {
	db *sql.DB
}

func NewPostgresTeamRepository(db *sql.DB) TeamRepository {
	return &postgresTeamRepository{db: db}
}

func (r *postgresTeamRepository) getExecutor(exec SQLExecutor) SQLExecutor {
	if exec != nil {
		return exec
	}
	return r.db
}

func (r *postgresTeamRepository) Create(ctx context.Context, exec SQLExecutor, team *models.Team) error {
	executor := r.getExecutor(exec)
	query := `
		INSERT INTO teams (team_name, team_code, event_id, captain_id)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at`

	err := executor.QueryRowContext(ctx, query,
		team.Name,
		team.Code,
		team.EventID,
		team.CaptainID,
	).Scan(&team.ID, &team.CreatedAt)

	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok {
			switch pqErr.Code {
			case "23505":
				if pqErr.Constraint == "teams_team_code_key" {
					return ErrTeamCodeConflict
				}
			case "23503":
				if pqErr.Constraint == "teams_event_id_fkey" {
					return ErrTeamInvalidEvent
				}
				if pqErr.Constraint == "teams_captain_id_fkey" {
					return ErrTeamInvalidCaptain
				}
			}
		}
		return err
	}
	return nil
}

func (r *postgresTeamRepository) GetByID(ctx context.Context, id int) (*models.Team, error) {
	query := `
		SELECT id, team_name, team_code, event_id, captain_id, created_at
		FROM teams
		WHERE id = $1`

	var team models.Team
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&team.ID, &team.Name, &team.Code, &team.EventID, &team.CaptainID, &team.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrTeamNotFound
		}
		return nil, err
	}
	return &team, nil
}

func (r *postgresTeamRepository) ListByEventID(ctx context.Context, eventID int) ([]models.Team, error) {
	query := `
		SELECT
			t.id, t.team_name, t.team_code, t.event_id, t.captain_id, t.created_at,
			u.id, u.provider, u.full_name, u.email, u.created_at
		FROM teams t
		JOIN users u ON t.captain_id = u.id
		WHERE t.event_id = $1
		ORDER BY t.created_at DESC`

	rows, err := r.db.QueryContext(ctx, query, eventID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	teams := make([]models.Team, 0)
	for rows.Next() {
		var team models.Team
		var captain models.User
		if scanErr := rows.Scan(
			&team.ID, &team.Name, &team.Code, &team.EventID, &team.CaptainID, &team.CreatedAt,
			&captain.ID, &captain.Provider, &captain.FullName, &captain.Email, &captain.CreatedAt,
		); scanErr != nil {
			return nil, scanErr
		}
		team.Captain = &captain
		teams = append(teams, team)
	}

	if err = rows.Err(); err != nil {
		return nil, err
	}
	return teams, nil
}

func (r *postgresTeamRepository) UpdateName(ctx context.Context, id int, name string) error {
	query := `UPDATE teams SET team_name = $1 WHERE id = $2`
	result, err := r.db.ExecContext(ctx, query, name, id)
	if err != nil {
		return err
	}
	return checkAffectedRows(result, ErrTeamNotFound)
}

func (r *postgresTeamRepository) Delete(ctx context.Context, id int) error {
	query := `DELETE FROM teams WHERE id = $1`
	result, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return err
	}
	return checkAffectedRows(result, ErrTeamNotFound)
}

func (r *postgresTeamRepository) InsertMembers(ctx context.Context, exec SQLExecutor, teamID int, members []models.TeamMember) error {
	executor := r.getExecutor(exec)
	if len(members) == 0 {
		return nil
	}

	query := `INSERT INTO team_members (team_id, member_name, member_email, member_position) VALUES `
	args := make([]interface{}, 0, len(members)*4)
	argID := 1
	for i, m := range members {
		if i > 0 {
			query += ", "
		}
		query += fmt.Sprintf("($%d, $%d, $%d, $%d)", argID, argID+1, argID+2, argID+3)
		args = append(args, teamID, m.Name, m.Email, m.Position)
		argID += 4
	}

	if _, err := executor.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("failed to insert team members: %w", err)
	}
	return nil
}

func (r *postgresTeamRepository) ReplaceMembers(ctx context.Context, teamID int, members []models.TeamMember) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin member replacement: %w", err)
	}
	defer tx.Rollback()

	if _, err = tx.ExecContext(ctx, `DELETE FROM team_members WHERE team_id = $1`, teamID); err != nil {
		return fmt.Errorf("failed to delete team members: %w", err)
	}

	if err = r.InsertMembers(ctx, tx, teamID, members); err != nil {
		return err
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit member replacement: %w", err)
	}
	return nil
}

func (r *postgresTeamRepository) ListMembers(ctx context.Context, teamID int) ([]models.TeamMember, error) {
	query := `
		SELECT id, team_id, member_name, member_email, member_position
		FROM team_members
		WHERE team_id = $1
		ORDER BY member_position ASC`

	rows, err := r.db.QueryContext(ctx, query, teamID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	members := make([]models.TeamMember, 0, models.TeamSize)
	for rows.Next() {
		var m models.TeamMember
		if scanErr := rows.Scan(&m.ID, &m.TeamID, &m.Name, &m.Email, &m.Position); scanErr != nil {
			return nil, scanErr
		}
		members = append(members, m)
	}

	if err = rows.Err(); err != nil {
		return nil, err
	}
	return members, nil
}
