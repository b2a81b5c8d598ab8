package scheduling

import (
	"fmt"
	"testing"

	"github.com/courtside/matchday/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func makeRoster(count int, division, skill string) []*models.Team {
	teams := make([]*models.Team, count)
	for i := range teams {
		team := &models.Team{
			ID:        i + 1,
			Name:      fmt.Sprintf("Team %d", i+1),
			CheckedIn: true,
		}
		if division != "" {
			d := division
			team.Division = &d
		}
		if skill != "" {
			s := skill
			team.SkillLevel = &s
		}
		teams[i] = team
	}
	return teams
}

func TestGeneratePoolsRoundRobinProperties(t *testing.T) {
	for _, k := range []int{2, 3, 4, 5} {
		t.Run(fmt.Sprintf("%d team pool", k), func(t *testing.T) {
			schedule, err := GeneratePools(makeRoster(k, "", ""))
			require.NoError(t, err)
			require.Len(t, schedule.Pools, 1)

			assert.Len(t, schedule.Matches, k*(k-1)/2)

			// Every unordered pair exactly once.
			pairs := make(map[[2]int]int)
			for _, m := range schedule.Matches {
				a, b := *m.Team1ID, *m.Team2ID
				if a > b {
					a, b = b, a
				}
				pairs[[2]int{a, b}]++
			}
			assert.Len(t, pairs, k*(k-1)/2)
			for pair, n := range pairs {
				assert.Equal(t, 1, n, "pair %v plays more than once", pair)
			}

			// No team appears twice within one round.
			perRound := make(map[int]map[int]bool)
			for _, m := range schedule.Matches {
				if perRound[m.Round] == nil {
					perRound[m.Round] = make(map[int]bool)
				}
				for _, id := range []int{*m.Team1ID, *m.Team2ID} {
					assert.False(t, perRound[m.Round][id], "team %d twice in round %d", id, m.Round)
					perRound[m.Round][id] = true
				}
			}
		})
	}
}

func TestGeneratePoolsSplitsCategories(t *testing.T) {
	roster := append(makeRoster(4, "mens", "a"), makeRoster(4, "womens", "a")...)
	for i, team := range roster {
		team.ID = i + 1
	}

	schedule, err := GeneratePools(roster)
	require.NoError(t, err)
	require.Len(t, schedule.Pools, 2)

	assert.Equal(t, "mens-a-A", schedule.Pools[0].Name)
	assert.Equal(t, "womens-a-A", schedule.Pools[1].Name)

	for _, m := range schedule.Matches {
		require.NotNil(t, m.PoolName)
		assert.Contains(t, []string{"mens-a-A", "womens-a-A"}, *m.PoolName)
		assert.Equal(t, models.PhasePoolPlay, m.Phase)
	}
}

func TestGeneratePoolsAssignsTeamsInRosterOrder(t *testing.T) {
	schedule, err := GeneratePools(makeRoster(10, "", ""))
	require.NoError(t, err)
	require.Len(t, schedule.Pools, 3)

	assert.Equal(t, []int{1, 2, 3, 4}, schedule.Pools[0].TeamIDs)
	assert.Equal(t, []int{5, 6, 7, 8}, schedule.Pools[1].TeamIDs)
	assert.Equal(t, []int{9, 10}, schedule.Pools[2].TeamIDs)
	assert.Len(t, schedule.Matches, 13)
}

func TestGeneratePoolsMatchNumbersAreSequential(t *testing.T) {
	schedule, err := GeneratePools(makeRoster(8, "", ""))
	require.NoError(t, err)

	for i, m := range schedule.Matches {
		assert.Equal(t, i+1, m.MatchNumber)
	}
}

func TestGeneratePoolsEmptyRoster(t *testing.T) {
	_, err := GeneratePools(nil)
	assert.Error(t, err)
}
