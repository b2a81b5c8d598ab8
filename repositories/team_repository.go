package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/courtside/matchday/models"
	"github.com/lib/pq"
)

var (
	ErrTeamNotFound     = errors.New("team not found")
	ErrTeamNameConflict = errors.New("team name is already in use")
)

type TeamRepository interface {
	Create(ctx context.Context, exec SQLExecutor, team *models.Team) error
	GetByID(ctx context.Context, id int) (*models.Team, error)
	// ListCheckedIn returns the checked-in roster in check-in order.
	// That order is the deterministic input every generator depends on.
	ListCheckedIn(ctx context.Context) ([]*models.Team, error)
	AssignPool(ctx context.Context, exec SQLExecutor, teamID int, poolName string) error
	ClearPools(ctx context.Context, exec SQLExecutor) error
}

type postgresTeamRepository struct {
	db *sql.DB
}

func NewPostgresTeamRepository(db *sql.DB) TeamRepository {
	return &postgresTeamRepository{db: db}
}

func (r *postgresTeamRepository) Create(ctx context.Context, exec SQLExecutor, team *models.Team) error {
	query := `
		INSERT INTO teams (name, skill_level, division, checked_in)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at`

	err := exec.QueryRowContext(ctx, query,
		team.Name,
		team.SkillLevel,
		team.Division,
		team.CheckedIn,
	).Scan(&team.ID, &team.CreatedAt)

	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Constraint == "teams_name_key" {
			return ErrTeamNameConflict
		}
		return fmt.Errorf("failed to insert team %q: %w", team.Name, err)
	}
	return nil
}

func (r *postgresTeamRepository) GetByID(ctx context.Context, id int) (*models.Team, error) {
	query := `
		SELECT id, name, skill_level, division, pool_name, checked_in, created_at
		FROM teams
		WHERE id = $1`

	team := &models.Team{}
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&team.ID,
		&team.Name,
		&team.SkillLevel,
		&team.Division,
		&team.PoolName,
		&team.CheckedIn,
		&team.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrTeamNotFound
		}
		return nil, fmt.Errorf("failed to scan team %d: %w", id, err)
	}
	return team, nil
}

func (r *postgresTeamRepository) ListCheckedIn(ctx context.Context) ([]*models.Team, error) {
	query := `
		SELECT id, name, skill_level, division, pool_name, checked_in, created_at
		FROM teams
		WHERE checked_in = TRUE
		ORDER BY created_at ASC, id ASC`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query checked-in teams: %w", err)
	}
	defer rows.Close()

	teams := make([]*models.Team, 0)
	for rows.Next() {
		var team models.Team
		if scanErr := rows.Scan(
			&team.ID,
			&team.Name,
			&team.SkillLevel,
			&team.Division,
			&team.PoolName,
			&team.CheckedIn,
			&team.CreatedAt,
		); scanErr != nil {
			return nil, fmt.Errorf("failed to scan team row: %w", scanErr)
		}
		teams = append(teams, &team)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error during team rows iteration: %w", err)
	}
	return teams, nil
}

func (r *postgresTeamRepository) AssignPool(ctx context.Context, exec SQLExecutor, teamID int, poolName string) error {
	result, err := exec.ExecContext(ctx,
		`UPDATE teams SET pool_name = $1 WHERE id = $2`, poolName, teamID)
	if err != nil {
		return fmt.Errorf("failed to assign pool %q to team %d: %w", poolName, teamID, err)
	}
	return checkAffectedRows(result, ErrTeamNotFound)
}

func (r *postgresTeamRepository) ClearPools(ctx context.Context, exec SQLExecutor) error {
	if _, err := exec.ExecContext(ctx, `UPDATE teams SET pool_name = NULL`); err != nil {
		return fmt.Errorf("failed to clear pool assignments: %w", err)
	}
	return nil
}
