package services

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/courtside/matchday/models"
	"github.com/courtside/matchday/repositories"
	"github.com/courtside/matchday/scheduling"
	"github.com/courtside/matchday/storage"
)

type GeneratePoolPlayParams struct {
	Format               models.FormatConfig `json:"format"`
	FirstGameTime        string              `json:"first_game_time"`
	MatchDurationMinutes int                 `json:"match_duration_minutes"`
	WarmupMinutes        int                 `json:"warmup_minutes"`
	// CourtCount caps the courts in use; zero gives every pool its own.
	CourtCount int `json:"court_count,omitempty"`
}

type CategoryBreakdown struct {
	Category   string `json:"category"`
	TeamCount  int    `json:"team_count"`
	PoolSizes  []int  `json:"pool_sizes"`
	MatchCount int    `json:"match_count"`
}

type PoolPlayResult struct {
	Pools          []models.Pool       `json:"pools"`
	Matches        []*models.Match     `json:"matches"`
	RequiredCourts int                 `json:"required_courts"`
	Categories     []CategoryBreakdown `json:"categories"`
}

type ScheduleService interface {
	// GeneratePoolPlay builds and persists the complete pool-play
	// schedule from the checked-in roster: pools, round-robin matches,
	// referee duties and court times. All-or-nothing: any previously
	// generated schedule is replaced in the same transaction.
	GeneratePoolPlay(ctx context.Context, params GeneratePoolPlayParams) (*PoolPlayResult, error)
	ListMatches(ctx context.Context, phase models.Phase, category *string) ([]*models.Match, error)
	Standings(ctx context.Context) ([]*models.Standing, error)
}

type scheduleService struct {
	db         *sql.DB
	teamRepo   repositories.TeamRepository
	matchRepo  repositories.MatchRepository
	formatRepo repositories.FormatRepository
	uploader   storage.FileUploader
	hub        *scheduling.Hub
	logger     *slog.Logger
}

func NewScheduleService(
	db *sql.DB,
	teamRepo repositories.TeamRepository,
	matchRepo repositories.MatchRepository,
	formatRepo repositories.FormatRepository,
	uploader storage.FileUploader,
	hub *scheduling.Hub,
	logger *slog.Logger,
) ScheduleService {
	return &scheduleService{
		db:         db,
		teamRepo:   teamRepo,
		matchRepo:  matchRepo,
		formatRepo: formatRepo,
		uploader:   uploader,
		hub:        hub,
		logger:     logger,
	}
}

func (s *scheduleService) GeneratePoolPlay(ctx context.Context, params GeneratePoolPlayParams) (*PoolPlayResult, error) {
	firstGame, err := time.Parse(time.RFC3339, params.FirstGameTime)
	if err != nil {
		return nil, fmt.Errorf("%w: first game time %q is not RFC 3339", ErrValidationFailed, params.FirstGameTime)
	}
	if params.MatchDurationMinutes <= 0 {
		return nil, fmt.Errorf("%w: match duration must be positive", ErrValidationFailed)
	}
	if params.WarmupMinutes < 0 {
		return nil, fmt.Errorf("%w: warm-up minutes cannot be negative", ErrValidationFailed)
	}
	if params.CourtCount < 0 {
		return nil, fmt.Errorf("%w: court count cannot be negative", ErrValidationFailed)
	}
	if params.Format.Default.SetsPerGame <= 0 || params.Format.Default.PointsPerSet <= 0 {
		return nil, fmt.Errorf("%w: format must define sets per game and points per set", ErrValidationFailed)
	}

	roster, err := s.teamRepo.ListCheckedIn(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load checked-in roster: %w", err)
	}
	if len(roster) < 4 {
		return nil, fmt.Errorf("%w: found %d", ErrNotEnoughTeams, len(roster))
	}

	schedule, err := scheduling.GeneratePools(roster)
	if err != nil {
		return nil, fmt.Errorf("pool generation failed: %w", err)
	}
	scheduling.AssignReferees(schedule.Matches, roster)
	unofficiated := 0
	for _, match := range schedule.Matches {
		if match.RefereeTeamID == nil {
			unofficiated++
		}
	}
	if unofficiated > 0 {
		s.logger.Warn("matches left without a referee",
			slog.Int("count", unofficiated),
			slog.String("reason", ErrRefereeUnassignable.Error()))
	}

	courts, err := scheduling.ScheduleCourts(schedule, scheduling.CourtParams{
		FirstGameTime:  firstGame,
		MatchDuration:  time.Duration(params.MatchDurationMinutes) * time.Minute,
		WarmupDuration: time.Duration(params.WarmupMinutes) * time.Minute,
		CourtCount:     params.CourtCount,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrValidationFailed, err)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	var txErr error
	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			panic(p)
		} else if txErr != nil {
			if rbErr := tx.Rollback(); rbErr != nil {
				s.logger.Error("rollback failed", slog.Any("error", rbErr))
			}
		} else if cErr := tx.Commit(); cErr != nil {
			txErr = fmt.Errorf("failed to commit schedule: %w", cErr)
		}
	}()

	// Regeneration replaces everything: stale playoff matches would
	// reference pools that no longer exist.
	if txErr = s.matchRepo.DeleteByPhase(ctx, tx, models.PhasePlayoffs); txErr != nil {
		return nil, txErr
	}
	if txErr = s.matchRepo.DeleteByPhase(ctx, tx, models.PhasePoolPlay); txErr != nil {
		return nil, txErr
	}
	if txErr = s.teamRepo.ClearPools(ctx, tx); txErr != nil {
		return nil, txErr
	}
	if txErr = s.formatRepo.Save(ctx, tx, params.Format); txErr != nil {
		return nil, txErr
	}

	for _, pool := range schedule.Pools {
		for _, teamID := range pool.TeamIDs {
			if txErr = s.teamRepo.AssignPool(ctx, tx, teamID, pool.Name); txErr != nil {
				return nil, txErr
			}
		}
	}
	for _, match := range schedule.Matches {
		if txErr = s.matchRepo.Create(ctx, tx, match); txErr != nil {
			return nil, txErr
		}
	}
	if txErr != nil {
		return nil, txErr
	}

	result := &PoolPlayResult{
		Pools:          schedule.Pools,
		Matches:        schedule.Matches,
		RequiredCourts: courts,
		Categories:     summarize(schedule),
	}

	s.logger.Info("pool play generated",
		slog.Int("teams", len(roster)),
		slog.Int("pools", len(schedule.Pools)),
		slog.Int("matches", len(schedule.Matches)),
		slog.Int("courts", courts),
	)

	s.publishSnapshot(ctx, result)
	for _, breakdown := range result.Categories {
		s.hub.BroadcastToRoom(breakdown.Category, scheduling.EventScheduleGenerated, breakdown)
	}

	return result, nil
}

func (s *scheduleService) ListMatches(ctx context.Context, phase models.Phase, category *string) ([]*models.Match, error) {
	if phase != models.PhasePoolPlay && phase != models.PhasePlayoffs {
		return nil, fmt.Errorf("%w: unknown phase %q", ErrValidationFailed, phase)
	}
	return s.matchRepo.ListByPhase(ctx, phase, category)
}

func (s *scheduleService) Standings(ctx context.Context) ([]*models.Standing, error) {
	roster, err := s.teamRepo.ListCheckedIn(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load roster: %w", err)
	}
	pools := poolsFromRoster(roster)
	if len(pools) == 0 {
		return nil, ErrPoolPlayNotGenerated
	}

	matches, err := s.matchRepo.ListByPhase(ctx, models.PhasePoolPlay, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to load pool matches: %w", err)
	}

	standings := make([]*models.Standing, 0, len(roster))
	for _, pool := range pools {
		standings = append(standings, scheduling.ComputeStandings(pool, matches)...)
	}
	return standings, nil
}

func summarize(schedule *scheduling.GeneratedSchedule) []CategoryBreakdown {
	order := make([]string, 0)
	byCategory := make(map[string]*CategoryBreakdown)

	for _, pool := range schedule.Pools {
		breakdown, seen := byCategory[pool.Category]
		if !seen {
			breakdown = &CategoryBreakdown{Category: pool.Category}
			byCategory[pool.Category] = breakdown
			order = append(order, pool.Category)
		}
		breakdown.TeamCount += len(pool.TeamIDs)
		breakdown.PoolSizes = append(breakdown.PoolSizes, len(pool.TeamIDs))
	}
	for _, match := range schedule.Matches {
		byCategory[match.Category].MatchCount++
	}

	breakdowns := make([]CategoryBreakdown, 0, len(order))
	for _, category := range order {
		breakdowns = append(breakdowns, *byCategory[category])
	}
	return breakdowns
}

// publishSnapshot uploads the generated schedule as a JSON document.
// Best-effort: a failed upload is logged and never fails generation.
func (s *scheduleService) publishSnapshot(ctx context.Context, result *PoolPlayResult) {
	if s.uploader == nil {
		return
	}

	encoded, err := json.Marshal(result)
	if err != nil {
		s.logger.Error("failed to encode schedule snapshot", slog.Any("error", err))
		return
	}

	key := fmt.Sprintf("schedules/pool-play-%s.json", time.Now().UTC().Format("20060102-150405"))
	if _, err := s.uploader.Upload(ctx, key, "application/json", bytes.NewReader(encoded)); err != nil {
		s.logger.Error("failed to publish schedule snapshot", slog.String("key", key), slog.Any("error", err))
		return
	}
	s.logger.Info("schedule snapshot published", slog.String("key", key))
}
