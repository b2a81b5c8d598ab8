package services

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/courtside/matchday/models"
	"github.com/courtside/matchday/repositories"
	"github.com/courtside/matchday/scheduling"
	"golang.org/x/sync/errgroup"
)

type BracketService interface {
	// GenerateBrackets computes standings from completed pool play and
	// persists one seeded single-elimination bracket per category.
	// advancePerPool is the top-N cutoff per pool; scheduling.AdvanceAll
	// advances everyone. Categories without enough advancers are skipped
	// and reported, not fatal.
	GenerateBrackets(ctx context.Context, advancePerPool int) (*scheduling.BracketResult, error)
	// AdvanceWinner propagates a completed playoff match's winner into
	// the next round's slot. Idempotent under retries; a slot already
	// holding a different team is a consistency error.
	AdvanceWinner(ctx context.Context, match *models.Match) error
}

type bracketService struct {
	db        *sql.DB
	teamRepo  repositories.TeamRepository
	matchRepo repositories.MatchRepository
	hub       *scheduling.Hub
	logger    *slog.Logger
}

func NewBracketService(
	db *sql.DB,
	teamRepo repositories.TeamRepository,
	matchRepo repositories.MatchRepository,
	hub *scheduling.Hub,
	logger *slog.Logger,
) BracketService {
	return &bracketService{
		db:        db,
		teamRepo:  teamRepo,
		matchRepo: matchRepo,
		hub:       hub,
		logger:    logger,
	}
}

func (s *bracketService) GenerateBrackets(ctx context.Context, advancePerPool int) (*scheduling.BracketResult, error) {
	if advancePerPool == 0 || (advancePerPool < 0 && advancePerPool != scheduling.AdvanceAll) {
		return nil, fmt.Errorf("%w: invalid advancement count %d", ErrValidationFailed, advancePerPool)
	}

	var (
		roster      []*models.Team
		poolMatches []*models.Match
	)
	g, gCtx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		roster, err = s.teamRepo.ListCheckedIn(gCtx)
		if err != nil {
			return fmt.Errorf("failed to load roster: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		poolMatches, err = s.matchRepo.ListByPhase(gCtx, models.PhasePoolPlay, nil)
		if err != nil {
			return fmt.Errorf("failed to load pool matches: %w", err)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	pools := poolsFromRoster(roster)
	if len(pools) == 0 || len(poolMatches) == 0 {
		return nil, ErrPoolPlayNotGenerated
	}

	result, err := scheduling.BuildBrackets(pools, poolMatches, advancePerPool)
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
			txErr = fmt.Errorf("failed to commit brackets: %w", cErr)
		}
	}()

	if txErr = s.matchRepo.DeleteByPhase(ctx, tx, models.PhasePlayoffs); txErr != nil {
		return nil, txErr
	}
	for _, match := range result.Matches {
		if txErr = s.matchRepo.Create(ctx, tx, match); txErr != nil {
			return nil, txErr
		}
	}
	if txErr != nil {
		return nil, txErr
	}

	s.logger.Info("brackets generated",
		slog.Int("matches", len(result.Matches)),
		slog.Int("skipped_categories", len(result.Skipped)),
	)
	for _, skipped := range result.Skipped {
		s.logger.Warn("category skipped", slog.String("category", skipped.Category), slog.String("reason", skipped.Reason))
	}

	seen := make(map[string]bool)
	for _, match := range result.Matches {
		if !seen[match.Category] {
			seen[match.Category] = true
			s.hub.BroadcastToRoom(match.Category, scheduling.EventBracketUpdated, result)
		}
	}

	return result, nil
}

func (s *bracketService) AdvanceWinner(ctx context.Context, match *models.Match) error {
	if match.Phase != models.PhasePlayoffs {
		return nil
	}
	if match.Status != models.StatusCompleted || match.WinnerID == nil {
		return fmt.Errorf("%w: match %d has no winner to advance", ErrValidationFailed, match.ID)
	}

	category := match.Category
	playoffMatches, err := s.matchRepo.ListByPhase(ctx, models.PhasePlayoffs, &category)
	if err != nil {
		return fmt.Errorf("failed to load playoff matches for %s: %w", category, err)
	}

	nextRound, nextNumber, slot, ok := scheduling.NextBracketSlot(match.Round, match.MatchNumber, scheduling.TotalRounds(playoffMatches))
	if !ok {
		// The final has no successor.
		return nil
	}

	var target *models.Match
	for _, candidate := range playoffMatches {
		if candidate.Round == nextRound && candidate.MatchNumber == nextNumber {
			target = candidate
			break
		}
	}
	if target == nil {
		return fmt.Errorf("%w: no round %d match %d in %s bracket", ErrMatchNotFound, nextRound, nextNumber, category)
	}

	if err := s.matchRepo.FillBracketSlot(ctx, target.ID, slot, *match.WinnerID); err != nil {
		return fmt.Errorf("cannot advance winner of match %d into match %d slot %d: %w", match.ID, target.ID, slot, err)
	}

	s.logger.Info("winner advanced",
		slog.Int("from_match", match.ID),
		slog.Int("to_match", target.ID),
		slog.Int("slot", slot),
		slog.Int("team", *match.WinnerID),
	)
	return nil
}
