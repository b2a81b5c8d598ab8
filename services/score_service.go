package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/courtside/matchday/models"
	"github.com/courtside/matchday/repositories"
	"github.com/courtside/matchday/scheduling"
)

// ScoreService drives the live-match state machine. Every mutation is a
// read-modify-write guarded by the match version, so concurrent officiating
// clients cannot silently overwrite each other: the stale writer gets
// ErrScoreConflict and must re-read.
type ScoreService interface {
	StartMatch(ctx context.Context, matchID int) (*models.Match, error)
	ApplyPoint(ctx context.Context, matchID, side, delta int) (*models.Match, *scheduling.PointOutcome, error)
	// ApplyManualScore overwrites the active set's score for one side
	// without win-condition evaluation. Corrections only.
	ApplyManualScore(ctx context.Context, matchID, side, value int) (*models.Match, error)
}

type scoreService struct {
	matchRepo  repositories.MatchRepository
	formatRepo repositories.FormatRepository
	brackets   BracketService
	hub        *scheduling.Hub
	logger     *slog.Logger
	now        func() time.Time
}

func NewScoreService(
	matchRepo repositories.MatchRepository,
	formatRepo repositories.FormatRepository,
	brackets BracketService,
	hub *scheduling.Hub,
	logger *slog.Logger,
) ScoreService {
	return &scoreService{
		matchRepo:  matchRepo,
		formatRepo: formatRepo,
		brackets:   brackets,
		hub:        hub,
		logger:     logger,
		now:        time.Now,
	}
}

func (s *scoreService) StartMatch(ctx context.Context, matchID int) (*models.Match, error) {
	match, err := s.matchRepo.GetByID(ctx, matchID)
	if err != nil {
		return nil, err
	}

	if err := scheduling.StartMatch(match); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrValidationFailed, err)
	}
	if err := s.matchRepo.UpdateLiveState(ctx, match); err != nil {
		return nil, err
	}

	s.hub.BroadcastToRoom(match.Category, scheduling.EventMatchUpdated, match)
	return match, nil
}

func (s *scoreService) ApplyPoint(ctx context.Context, matchID, side, delta int) (*models.Match, *scheduling.PointOutcome, error) {
	match, err := s.matchRepo.GetByID(ctx, matchID)
	if err != nil {
		return nil, nil, err
	}
	format, err := s.activeFormat(ctx, match.Phase)
	if err != nil {
		return nil, nil, err
	}

	outcome, err := scheduling.ApplyPoint(match, format, side, delta, s.now())
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %v", ErrValidationFailed, err)
	}

	// The version guard makes completion fire at most once: of two racing
	// writers only one update lands, and only that caller runs the
	// advancement below.
	if err := s.matchRepo.UpdateLiveState(ctx, match); err != nil {
		return nil, nil, err
	}

	if outcome.MatchCompleted && match.Phase == models.PhasePlayoffs {
		if err := s.brackets.AdvanceWinner(ctx, match); err != nil {
			if errors.Is(err, ErrBracketSlotConflict) {
				// Surfaced for manual resolution, the completed match
				// itself stands.
				s.logger.Error("winner advancement conflict", slog.Int("match", match.ID), slog.Any("error", err))
				return match, &outcome, err
			}
			return nil, nil, err
		}
	}

	s.hub.BroadcastToRoom(match.Category, scheduling.EventMatchUpdated, match)
	if outcome.SideSwitch {
		s.hub.BroadcastToRoom(match.Category, scheduling.EventSideSwitch, map[string]int{
			"match_id": match.ID,
			"total":    outcome.SwitchAt,
		})
	}

	return match, &outcome, nil
}

func (s *scoreService) ApplyManualScore(ctx context.Context, matchID, side, value int) (*models.Match, error) {
	match, err := s.matchRepo.GetByID(ctx, matchID)
	if err != nil {
		return nil, err
	}

	if err := scheduling.ApplyManualScore(match, side, value); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrValidationFailed, err)
	}
	if err := s.matchRepo.UpdateLiveState(ctx, match); err != nil {
		return nil, err
	}

	s.hub.BroadcastToRoom(match.Category, scheduling.EventMatchUpdated, match)
	return match, nil
}

func (s *scoreService) activeFormat(ctx context.Context, phase models.Phase) (models.Format, error) {
	config, err := s.formatRepo.Get(ctx)
	if err != nil {
		return models.Format{}, err
	}
	return config.ForPhase(phase), nil
}
