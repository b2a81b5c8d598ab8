package repositories

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/courtside/matchday/models"
	"github.com/lib/pq"
)

var (
	ErrMatchNotFound    = errors.New("match not found")
	ErrMatchTeamInvalid = errors.New("match references an unknown team")
	// ErrMatchVersionConflict means the row changed between read and
	// write; the caller holds a stale copy and must re-read.
	ErrMatchVersionConflict = errors.New("match was modified concurrently")
	// ErrBracketSlotOccupied means a bracket slot already holds a
	// different team than the advancing winner.
	ErrBracketSlotOccupied = errors.New("bracket slot already holds a different team")
)

type MatchRepository interface {
	Create(ctx context.Context, exec SQLExecutor, match *models.Match) error
	GetByID(ctx context.Context, id int) (*models.Match, error)
	ListByPhase(ctx context.Context, phase models.Phase, category *string) ([]*models.Match, error)
	DeleteByPhase(ctx context.Context, exec SQLExecutor, phase models.Phase) error
	// UpdateLiveState persists a state-machine transition guarded by the
	// version the caller read. The match's version is bumped on success.
	UpdateLiveState(ctx context.Context, match *models.Match) error
	// FillBracketSlot writes a winner into a playoff slot. The update is
	// idempotent: filling a slot with its current occupant is a no-op,
	// while a differing occupant is a consistency error.
	FillBracketSlot(ctx context.Context, matchID, slot, teamID int) error
}

type postgresMatchRepository struct {
	db *sql.DB
}

func NewPostgresMatchRepository(db *sql.DB) MatchRepository {
	return &postgresMatchRepository{db: db}
}

const matchColumns = `
	id, phase, round, match_number, category, pool_name, team1_id, team2_id,
	referee_team_id, court_number, scheduled_time, status, bracket_position,
	sets, current_set, sets_won_team1, sets_won_team2, switch_notified,
	winner_id, completed_at, version, created_at`

func (r *postgresMatchRepository) Create(ctx context.Context, exec SQLExecutor, match *models.Match) error {
	sets, err := marshalSets(match.Sets)
	if err != nil {
		return err
	}

	query := `
		INSERT INTO matches
			(phase, round, match_number, category, pool_name, team1_id, team2_id,
			 referee_team_id, court_number, scheduled_time, status, bracket_position,
			 sets, current_set, sets_won_team1, sets_won_team2, switch_notified,
			 winner_id, completed_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19)
		RETURNING id, version, created_at`

	err = exec.QueryRowContext(ctx, query,
		match.Phase,
		match.Round,
		match.MatchNumber,
		match.Category,
		match.PoolName,
		match.Team1ID,
		match.Team2ID,
		match.RefereeTeamID,
		match.CourtNumber,
		match.ScheduledTime,
		match.Status,
		match.BracketPosition,
		sets,
		match.CurrentSet,
		match.SetsWonTeam1,
		match.SetsWonTeam2,
		match.SwitchNotified,
		match.WinnerID,
		match.CompletedAt,
	).Scan(&match.ID, &match.Version, &match.CreatedAt)

	return r.handleMatchError(err)
}

func (r *postgresMatchRepository) GetByID(ctx context.Context, id int) (*models.Match, error) {
	query := `SELECT` + matchColumns + ` FROM matches WHERE id = $1`

	match, err := scanMatch(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrMatchNotFound
		}
		return nil, fmt.Errorf("failed to scan match %d: %w", id, err)
	}
	return match, nil
}

func (r *postgresMatchRepository) ListByPhase(ctx context.Context, phase models.Phase, category *string) ([]*models.Match, error) {
	var queryBuilder strings.Builder
	queryBuilder.WriteString(`SELECT` + matchColumns + ` FROM matches WHERE phase = $1`)

	args := []interface{}{phase}
	if category != nil {
		queryBuilder.WriteString(" AND category = $" + strconv.Itoa(len(args)+1))
		args = append(args, *category)
	}
	queryBuilder.WriteString(" ORDER BY round ASC, match_number ASC, id ASC")

	rows, err := r.db.QueryContext(ctx, queryBuilder.String(), args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query %s matches: %w", phase, err)
	}
	defer rows.Close()

	matches := make([]*models.Match, 0)
	for rows.Next() {
		match, scanErr := scanMatch(rows)
		if scanErr != nil {
			return nil, fmt.Errorf("failed to scan match row: %w", scanErr)
		}
		matches = append(matches, match)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error during match rows iteration: %w", err)
	}
	return matches, nil
}

func (r *postgresMatchRepository) DeleteByPhase(ctx context.Context, exec SQLExecutor, phase models.Phase) error {
	if _, err := exec.ExecContext(ctx, `DELETE FROM matches WHERE phase = $1`, phase); err != nil {
		return fmt.Errorf("failed to delete %s matches: %w", phase, err)
	}
	return nil
}

func (r *postgresMatchRepository) UpdateLiveState(ctx context.Context, match *models.Match) error {
	sets, err := marshalSets(match.Sets)
	if err != nil {
		return err
	}

	query := `
		UPDATE matches
		SET sets = $1, current_set = $2, sets_won_team1 = $3, sets_won_team2 = $4,
		    switch_notified = $5, status = $6, winner_id = $7, completed_at = $8,
		    version = version + 1
		WHERE id = $9 AND version = $10`

	result, err := r.db.ExecContext(ctx, query,
		sets,
		match.CurrentSet,
		match.SetsWonTeam1,
		match.SetsWonTeam2,
		match.SwitchNotified,
		match.Status,
		match.WinnerID,
		match.CompletedAt,
		match.ID,
		match.Version,
	)
	if err != nil {
		return r.handleMatchError(err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check affected rows: %w", err)
	}
	if rowsAffected == 0 {
		if _, getErr := r.GetByID(ctx, match.ID); getErr != nil {
			return getErr
		}
		return ErrMatchVersionConflict
	}

	match.Version++
	return nil
}

func (r *postgresMatchRepository) FillBracketSlot(ctx context.Context, matchID, slot, teamID int) error {
	column := "team1_id"
	if slot == 2 {
		column = "team2_id"
	} else if slot != 1 {
		return fmt.Errorf("invalid bracket slot %d", slot)
	}

	query := fmt.Sprintf(`
		UPDATE matches
		SET %s = $1, version = version + 1
		WHERE id = $2 AND (%s IS NULL OR %s = $1)`, column, column, column)

	result, err := r.db.ExecContext(ctx, query, teamID, matchID)
	if err != nil {
		return r.handleMatchError(err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check affected rows: %w", err)
	}
	if rowsAffected == 0 {
		if _, getErr := r.GetByID(ctx, matchID); getErr != nil {
			return getErr
		}
		return ErrBracketSlotOccupied
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanMatch(row rowScanner) (*models.Match, error) {
	match := &models.Match{}
	var sets []byte

	err := row.Scan(
		&match.ID,
		&match.Phase,
		&match.Round,
		&match.MatchNumber,
		&match.Category,
		&match.PoolName,
		&match.Team1ID,
		&match.Team2ID,
		&match.RefereeTeamID,
		&match.CourtNumber,
		&match.ScheduledTime,
		&match.Status,
		&match.BracketPosition,
		&sets,
		&match.CurrentSet,
		&match.SetsWonTeam1,
		&match.SetsWonTeam2,
		&match.SwitchNotified,
		&match.WinnerID,
		&match.CompletedAt,
		&match.Version,
		&match.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	if len(sets) > 0 {
		if err := json.Unmarshal(sets, &match.Sets); err != nil {
			return nil, fmt.Errorf("failed to decode sets of match %d: %w", match.ID, err)
		}
	}
	return match, nil
}

func marshalSets(sets []models.SetScore) ([]byte, error) {
	if sets == nil {
		sets = []models.SetScore{}
	}
	encoded, err := json.Marshal(sets)
	if err != nil {
		return nil, fmt.Errorf("failed to encode set scores: %w", err)
	}
	return encoded, nil
}

func (r *postgresMatchRepository) handleMatchError(err error) error {
	if err == nil {
		return nil
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		switch pqErr.Constraint {
		case "matches_team1_id_fkey", "matches_team2_id_fkey", "matches_referee_team_id_fkey", "matches_winner_id_fkey":
			return ErrMatchTeamInvalid
		}
	}
	return err
}
