package scheduling

import (
	"errors"
	"fmt"
	"time"

	"github.com/courtside/matchday/models"
)

var (
	ErrMatchNotStartable = errors.New("match cannot be started from its current status")
	ErrMatchNotLive      = errors.New("match is not in progress")
	ErrInvalidSide       = errors.New("side must be 1 or 2")
)

// PointOutcome describes what a point increment caused.
type PointOutcome struct {
	SetCompleted   bool `json:"set_completed"`
	MatchCompleted bool `json:"match_completed"`
	// SideSwitch fires once per crossing of a switch interval multiple
	// within a set, never twice for the same multiple.
	SideSwitch bool `json:"side_switch"`
	SwitchAt   int  `json:"switch_at,omitempty"`
}

// SetTarget returns the point target of the set about to be decided.
// The deciding-set target applies only to the last possible set.
func SetTarget(format models.Format, match *models.Match) int {
	if match.SetsWonTeam1+match.SetsWonTeam2 == format.SetsPerGame-1 && format.DecidingSetPoints > 0 {
		return format.DecidingSetPoints
	}
	return format.PointsPerSet
}

// SwitchInterval is the cumulative point interval between side switches:
// every 5 points for short sets, every 7 for full-length sets.
func SwitchInterval(target int) int {
	if target <= 15 {
		return 5
	}
	return 7
}

// SetsToWin is the number of sets that decides the match.
func SetsToWin(format models.Format) int {
	return (format.SetsPerGame + 1) / 2
}

// setWon reports whether a side with score points has taken a set against
// opponent, given the target and required margin.
func setWon(score, opponent, target, mustWinBy int) bool {
	return score >= target && score-opponent >= mustWinBy
}

// StartMatch moves a match from scheduled to in progress. Status is
// monotonic; any other transition is rejected.
func StartMatch(match *models.Match) error {
	if match.Status != models.StatusScheduled {
		return fmt.Errorf("%w: status is %s", ErrMatchNotStartable, match.Status)
	}
	if match.Team1ID == nil || match.Team2ID == nil {
		return fmt.Errorf("%w: both teams must be known", ErrMatchNotStartable)
	}
	match.Status = models.StatusInProgress
	match.LiveSet()
	return nil
}

// ApplyPoint applies a score delta for one side of a live match and runs
// the win-condition evaluation: set completion, deciding-set rules, match
// completion and side-switch notification.
func ApplyPoint(match *models.Match, format models.Format, side, delta int, now time.Time) (PointOutcome, error) {
	var outcome PointOutcome

	if match.Status != models.StatusInProgress {
		return outcome, fmt.Errorf("%w: status is %s", ErrMatchNotLive, match.Status)
	}
	if side != 1 && side != 2 {
		return outcome, fmt.Errorf("%w: got %d", ErrInvalidSide, side)
	}

	live := match.LiveSet()
	if side == 1 {
		live.Team1 += delta
		if live.Team1 < 0 {
			live.Team1 = 0
		}
	} else {
		live.Team2 += delta
		if live.Team2 < 0 {
			live.Team2 = 0
		}
	}

	target := SetTarget(format, match)
	interval := SwitchInterval(target)
	if threshold := (live.Team1 + live.Team2) / interval * interval; threshold > 0 && threshold > match.SwitchNotified {
		match.SwitchNotified = threshold
		outcome.SideSwitch = true
		outcome.SwitchAt = threshold
	}

	switch {
	case setWon(live.Team1, live.Team2, target, format.MustWinBy):
		match.SetsWonTeam1++
		outcome.SetCompleted = true
	case setWon(live.Team2, live.Team1, target, format.MustWinBy):
		match.SetsWonTeam2++
		outcome.SetCompleted = true
	}
	if !outcome.SetCompleted {
		return outcome, nil
	}

	needed := SetsToWin(format)
	if match.SetsWonTeam1 == needed || match.SetsWonTeam2 == needed {
		completeMatch(match, now)
		outcome.MatchCompleted = true
		return outcome, nil
	}

	// Archive the finished set and open the next one at 0-0 with a fresh
	// side-switch tracker.
	match.CurrentSet++
	match.Sets = append(match.Sets, models.SetScore{})
	match.SwitchNotified = 0

	return outcome, nil
}

// ApplyManualScore overwrites the active set's score for one side without
// any win-condition evaluation. It exists for score corrections and is the
// only path that bypasses the state machine.
func ApplyManualScore(match *models.Match, side, value int) error {
	if match.Status != models.StatusInProgress {
		return fmt.Errorf("%w: status is %s", ErrMatchNotLive, match.Status)
	}
	if side != 1 && side != 2 {
		return fmt.Errorf("%w: got %d", ErrInvalidSide, side)
	}
	if value < 0 {
		value = 0
	}

	live := match.LiveSet()
	if side == 1 {
		live.Team1 = value
	} else {
		live.Team2 = value
	}
	return nil
}

func completeMatch(match *models.Match, now time.Time) {
	match.Status = models.StatusCompleted
	completed := now
	match.CompletedAt = &completed

	if match.SetsWonTeam1 > match.SetsWonTeam2 {
		match.WinnerID = match.Team1ID
	} else {
		match.WinnerID = match.Team2ID
	}
}
