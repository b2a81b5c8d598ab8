package scheduling

import (
	"testing"

	"github.com/courtside/matchday/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func completedPoolMatch(pool string, team1, team2, setsWon1, setsWon2 int) *models.Match {
	winner := team1
	if setsWon2 > setsWon1 {
		winner = team2
	}
	return &models.Match{
		Phase:        models.PhasePoolPlay,
		PoolName:     &pool,
		Team1ID:      &team1,
		Team2ID:      &team2,
		SetsWonTeam1: setsWon1,
		SetsWonTeam2: setsWon2,
		WinnerID:     &winner,
		Status:       models.StatusCompleted,
	}
}

func TestComputeStandingsRanksByWinsThenSets(t *testing.T) {
	pool := models.Pool{Name: "open-A", Category: "open", TeamIDs: []int{1, 2, 3, 4}}
	matches := []*models.Match{
		completedPoolMatch("open-A", 1, 2, 2, 0),
		completedPoolMatch("open-A", 3, 4, 2, 1),
		completedPoolMatch("open-A", 1, 3, 2, 1),
		completedPoolMatch("open-A", 2, 4, 2, 0),
		completedPoolMatch("open-A", 1, 4, 2, 0),
		completedPoolMatch("open-A", 2, 3, 0, 2),
	}

	standings := ComputeStandings(pool, matches)
	require.Len(t, standings, 4)

	assert.Equal(t, 1, standings[0].TeamID)
	assert.Equal(t, 3, standings[0].Wins)
	assert.Equal(t, 0, standings[0].Losses)
	assert.Equal(t, 1.0, standings[0].WinPercentage)
	assert.Equal(t, 1, standings[0].Place)

	assert.Equal(t, 3, standings[1].TeamID)
	assert.Equal(t, 2, standings[1].Wins)

	assert.Equal(t, []int{2, 4}, []int{standings[2].TeamID, standings[3].TeamID})
}

func TestComputeStandingsIgnoresUnfinishedMatches(t *testing.T) {
	pool := models.Pool{Name: "open-A", Category: "open", TeamIDs: []int{1, 2}}
	team1, team2 := 1, 2
	poolName := "open-A"
	matches := []*models.Match{
		{
			Phase:    models.PhasePoolPlay,
			PoolName: &poolName,
			Team1ID:  &team1,
			Team2ID:  &team2,
			Status:   models.StatusInProgress,
		},
	}

	standings := ComputeStandings(pool, matches)
	require.Len(t, standings, 2)
	for _, s := range standings {
		assert.Zero(t, s.Wins)
		assert.Zero(t, s.Losses)
		assert.Zero(t, s.WinPercentage)
	}
}

func TestComputeStandingsStableOnFullTie(t *testing.T) {
	pool := models.Pool{Name: "open-A", Category: "open", TeamIDs: []int{7, 8}}

	standings := ComputeStandings(pool, nil)
	require.Len(t, standings, 2)
	// No matches played: pool member order decides.
	assert.Equal(t, 7, standings[0].TeamID)
	assert.Equal(t, 8, standings[1].TeamID)
}
