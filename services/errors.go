package services

import (
	"errors"

	"github.com/courtside/matchday/repositories"
)

// Sentinel errors shared across services and the HTTP error mapping.
var (
	// Validation: malformed input, rejected before any computation.
	ErrValidationFailed = errors.New("validation failed")

	// Precondition: the roster cannot support a schedule yet.
	ErrNotEnoughTeams = errors.New("at least 4 checked-in teams are required")

	// Consistency: the specific match is left for manual resolution,
	// the batch is not aborted.
	ErrBracketSlotConflict = repositories.ErrBracketSlotOccupied
	ErrRefereeUnassignable = errors.New("no eligible referee team for match")

	ErrMatchNotFound       = repositories.ErrMatchNotFound
	ErrScoreConflict       = repositories.ErrMatchVersionConflict
	ErrFormatNotConfigured = repositories.ErrFormatNotConfigured

	ErrPoolPlayNotGenerated = errors.New("pool play has not been generated")
)
