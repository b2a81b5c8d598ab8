package scheduling

import (
	"fmt"
	"sort"

	"github.com/courtside/matchday/models"
)

// AdvanceAll is the sentinel advancement count meaning every team of every
// pool advances to the playoffs.
const AdvanceAll = -1

type SkippedCategory struct {
	Category string `json:"category"`
	Reason   string `json:"reason"`
}

// BracketResult holds the playoff matches of every category that could be
// bracketed, plus the categories that could not.
type BracketResult struct {
	Matches []*models.Match   `json:"matches"`
	Skipped []SkippedCategory `json:"skipped,omitempty"`
}

// BuildBrackets computes standings from completed pool play, advances the
// top advancePerPool teams of each pool (AdvanceAll for everyone), seeds
// them, and lays out one single-elimination bracket per category.
//
// Seeding within a category orders teams by pool finishing position first
// (all first-place finishers ahead of all second-place finishers), then by
// the standings comparator. Bracket size is the smallest power of two that
// fits the advancing teams; the unused slots become byes. Bye matches are
// materialized already completed and their team is propagated into the
// next round at generation time.
//
// A category that cannot produce a bracket is skipped and reported, never
// fatal to the batch.
func BuildBrackets(pools []models.Pool, poolMatches []*models.Match, advancePerPool int) (*BracketResult, error) {
	if advancePerPool == 0 || advancePerPool < AdvanceAll {
		return nil, fmt.Errorf("invalid advancement count %d", advancePerPool)
	}

	categoryOrder := make([]string, 0)
	poolsByCategory := make(map[string][]models.Pool)
	for _, pool := range pools {
		if _, seen := poolsByCategory[pool.Category]; !seen {
			categoryOrder = append(categoryOrder, pool.Category)
		}
		poolsByCategory[pool.Category] = append(poolsByCategory[pool.Category], pool)
	}

	result := &BracketResult{}
	for _, category := range categoryOrder {
		seeds, refTeamID := seedCategory(poolsByCategory[category], poolMatches, advancePerPool)
		if len(seeds) < 2 {
			result.Skipped = append(result.Skipped, SkippedCategory{
				Category: category,
				Reason:   fmt.Sprintf("only %d advancing teams, need at least 2", len(seeds)),
			})
			continue
		}
		result.Matches = append(result.Matches, buildCategoryBracket(category, seeds, refTeamID)...)
	}

	return result, nil
}

// seedCategory returns the seeded advancing team IDs of a category and the
// highest-ranked non-advancing team, which officiates round 1 (nil when
// every team advances).
func seedCategory(pools []models.Pool, poolMatches []*models.Match, advancePerPool int) ([]int, *int) {
	advancing := make([]*models.Standing, 0)
	left := make([]*models.Standing, 0)

	for _, pool := range pools {
		standings := ComputeStandings(pool, poolMatches)
		for _, s := range standings {
			if advancePerPool == AdvanceAll || s.Place <= advancePerPool {
				advancing = append(advancing, s)
			} else {
				left = append(left, s)
			}
		}
	}

	// Pool finishing position dominates; the standings comparator breaks
	// ties between equal finishers of different pools.
	sort.SliceStable(advancing, func(i, j int) bool {
		if advancing[i].Place != advancing[j].Place {
			return advancing[i].Place < advancing[j].Place
		}
		return standingLess(advancing[i], advancing[j])
	})

	seeds := make([]int, len(advancing))
	for i, s := range advancing {
		seeds[i] = s.TeamID
	}

	if len(left) == 0 {
		return seeds, nil
	}
	sort.SliceStable(left, func(i, j int) bool {
		if left[i].Place != left[j].Place {
			return left[i].Place < left[j].Place
		}
		return standingLess(left[i], left[j])
	})
	ref := left[0].TeamID
	return seeds, &ref
}

func buildCategoryBracket(category string, seeds []int, refTeamID *int) []*models.Match {
	bracketSize := 1
	rounds := 0
	for bracketSize < len(seeds) {
		bracketSize <<= 1
		rounds++
	}

	matches := make([]*models.Match, 0, bracketSize-1)
	indexByPosition := make(map[[2]int]int)

	// Round 1: seed i meets seed (bracketSize+1-i). Seeds beyond the
	// advancing count are byes; a pairing of two empty slots is dropped.
	for i := 1; i <= bracketSize/2; i++ {
		team1 := seedTeam(seeds, i)
		team2 := seedTeam(seeds, bracketSize+1-i)
		if team1 == nil && team2 == nil {
			continue
		}

		match := &models.Match{
			Phase:       models.PhasePlayoffs,
			Round:       1,
			MatchNumber: i,
			Category:    category,
			Team1ID:     team1,
			Team2ID:     team2,
			Status:      models.StatusScheduled,
			Sets:        []models.SetScore{{}},
		}
		match.BracketPosition = bracketLabel(1, i, rounds)

		if team2 == nil {
			// Bye: no play, the seeded team moves on immediately. The
			// completion is synthetic, so CompletedAt stays unset; only
			// matches that were actually played carry a timestamp.
			match.Status = models.StatusCompleted
			match.WinnerID = team1
		} else if refTeamID != nil {
			ref := *refTeamID
			match.RefereeTeamID = &ref
		}

		indexByPosition[[2]int{1, i}] = len(matches)
		matches = append(matches, match)
	}

	// Later rounds: placeholders waiting for winners.
	for round := 2; round <= rounds; round++ {
		count := bracketSize >> uint(round)
		for i := 1; i <= count; i++ {
			match := &models.Match{
				Phase:       models.PhasePlayoffs,
				Round:       round,
				MatchNumber: i,
				Category:    category,
				Status:      models.StatusScheduled,
				Sets:        []models.SetScore{{}},
			}
			match.BracketPosition = bracketLabel(round, i, rounds)
			indexByPosition[[2]int{round, i}] = len(matches)
			matches = append(matches, match)
		}
	}

	// Propagate bye winners into their round-2 slots.
	for _, match := range matches {
		if match.Round != 1 || match.WinnerID == nil {
			continue
		}
		nextRound, nextNumber, slot, ok := NextBracketSlot(match.Round, match.MatchNumber, rounds)
		if !ok {
			continue
		}
		if idx, exists := indexByPosition[[2]int{nextRound, nextNumber}]; exists {
			if slot == 1 {
				matches[idx].Team1ID = match.WinnerID
			} else {
				matches[idx].Team2ID = match.WinnerID
			}
		}
	}

	return matches
}

func seedTeam(seeds []int, seed int) *int {
	if seed > len(seeds) {
		return nil
	}
	teamID := seeds[seed-1]
	return &teamID
}

// NextBracketSlot maps a playoff match position onto the slot its winner
// fills in the following round. ok is false for the final.
func NextBracketSlot(round, matchNumber, totalRounds int) (nextRound, nextMatchNumber, slot int, ok bool) {
	if round >= totalRounds {
		return 0, 0, 0, false
	}
	nextRound = round + 1
	nextMatchNumber = (matchNumber + 1) / 2
	slot = 2
	if matchNumber%2 == 1 {
		slot = 1
	}
	return nextRound, nextMatchNumber, slot, true
}

// TotalRounds derives the round count of a category's bracket from its
// persisted playoff matches.
func TotalRounds(matches []*models.Match) int {
	total := 0
	for _, m := range matches {
		if m.Round > total {
			total = m.Round
		}
	}
	return total
}

func bracketLabel(round, matchNumber, totalRounds int) *string {
	var label string
	switch totalRounds - round {
	case 0:
		label = "Final"
	case 1:
		label = fmt.Sprintf("Semifinal %c", 'A'+matchNumber-1)
	case 2:
		label = fmt.Sprintf("Quarterfinal %d", matchNumber)
	default:
		label = fmt.Sprintf("Round %d - Match %d", round, matchNumber)
	}
	return &label
}
