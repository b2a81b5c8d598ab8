package scheduling

import (
	"fmt"

	"github.com/courtside/matchday/models"
)

// GeneratedSchedule is the output of pool-play generation before referee
// and court assignment: the pools and their round-robin matches, in a
// deterministic order.
type GeneratedSchedule struct {
	Pools   []models.Pool
	Matches []*models.Match
}

// GeneratePools groups the roster by category, partitions each category
// with OptimizePools, and fills the pools in roster order.
//
// The roster order is load-bearing: it decides pool membership and, later,
// seeding. Callers must pass the roster pre-sorted deterministically.
func GeneratePools(teams []*models.Team) (*GeneratedSchedule, error) {
	if len(teams) == 0 {
		return nil, fmt.Errorf("cannot generate pools: empty roster")
	}

	categoryOrder := make([]string, 0)
	byCategory := make(map[string][]*models.Team)
	for _, team := range teams {
		key := team.CategoryKey()
		if _, seen := byCategory[key]; !seen {
			categoryOrder = append(categoryOrder, key)
		}
		byCategory[key] = append(byCategory[key], team)
	}

	schedule := &GeneratedSchedule{}
	matchNumber := 0

	for _, category := range categoryOrder {
		categoryTeams := byCategory[category]
		config := OptimizePools(len(categoryTeams))

		next := 0
		for i, size := range config.PoolSizes {
			pool := models.Pool{
				Name:     fmt.Sprintf("%s-%c", category, 'A'+i),
				Category: category,
			}
			for _, team := range categoryTeams[next : next+size] {
				pool.TeamIDs = append(pool.TeamIDs, team.ID)
			}
			next += size

			poolMatches := roundRobinMatches(pool)
			for _, m := range poolMatches {
				matchNumber++
				m.MatchNumber = matchNumber
			}
			schedule.Pools = append(schedule.Pools, pool)
			schedule.Matches = append(schedule.Matches, poolMatches...)
		}
	}

	return schedule, nil
}

type teamPair struct {
	a, b int // indexes into the pool's member list, a < b
}

// roundRobinMatches builds every unordered pairing of the pool exactly once,
// grouped into rounds so that no team plays twice in the same round. Each
// round takes the maximal subset of remaining pairs in canonical order,
// which spreads a team's matches apart instead of stacking them.
func roundRobinMatches(pool models.Pool) []*models.Match {
	k := len(pool.TeamIDs)
	pending := make([]teamPair, 0, k*(k-1)/2)
	for i := 0; i < k; i++ {
		for j := i + 1; j < k; j++ {
			pending = append(pending, teamPair{a: i, b: j})
		}
	}

	matches := make([]*models.Match, 0, len(pending))
	poolName := pool.Name

	round := 0
	for len(pending) > 0 {
		round++
		busy := make(map[int]bool, k)
		remaining := pending[:0]

		for _, pair := range pending {
			if busy[pair.a] || busy[pair.b] {
				remaining = append(remaining, pair)
				continue
			}
			busy[pair.a] = true
			busy[pair.b] = true

			team1 := pool.TeamIDs[pair.a]
			team2 := pool.TeamIDs[pair.b]
			matches = append(matches, &models.Match{
				Phase:    models.PhasePoolPlay,
				Round:    round,
				Category: pool.Category,
				PoolName: &poolName,
				Team1ID:  &team1,
				Team2ID:  &team2,
				Status:   models.StatusScheduled,
				Sets:     []models.SetScore{{}},
			})
		}
		pending = remaining
	}

	return matches
}
