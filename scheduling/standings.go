package scheduling

import (
	"sort"

	"github.com/courtside/matchday/models"
)

// ComputeStandings ranks the pool's teams from its completed matches.
// Matches still scheduled or in progress contribute nothing.
//
// Ranking order: win percentage, then set differential, then sets won.
// The sort is stable over pool member order, so ties resolve to the
// earlier-listed team instead of randomly.
func ComputeStandings(pool models.Pool, matches []*models.Match) []*models.Standing {
	byTeam := make(map[int]*models.Standing, len(pool.TeamIDs))
	standings := make([]*models.Standing, 0, len(pool.TeamIDs))
	for _, teamID := range pool.TeamIDs {
		s := &models.Standing{
			TeamID:   teamID,
			PoolName: pool.Name,
			Category: pool.Category,
		}
		byTeam[teamID] = s
		standings = append(standings, s)
	}

	for _, match := range matches {
		if match.Status != models.StatusCompleted {
			continue
		}
		if match.PoolName == nil || *match.PoolName != pool.Name {
			continue
		}
		if match.Team1ID == nil || match.Team2ID == nil || match.WinnerID == nil {
			continue
		}

		s1, ok1 := byTeam[*match.Team1ID]
		s2, ok2 := byTeam[*match.Team2ID]
		if !ok1 || !ok2 {
			continue
		}

		s1.SetsWon += match.SetsWonTeam1
		s1.SetsLost += match.SetsWonTeam2
		s2.SetsWon += match.SetsWonTeam2
		s2.SetsLost += match.SetsWonTeam1

		if *match.WinnerID == *match.Team1ID {
			s1.Wins++
			s2.Losses++
		} else {
			s2.Wins++
			s1.Losses++
		}
	}

	for _, s := range standings {
		if played := s.Wins + s.Losses; played > 0 {
			s.WinPercentage = float64(s.Wins) / float64(played)
		}
		s.SetsDiff = s.SetsWon - s.SetsLost
	}

	sort.SliceStable(standings, func(i, j int) bool {
		return standingLess(standings[i], standings[j])
	})
	for place, s := range standings {
		s.Place = place + 1
	}

	return standings
}

func standingLess(a, b *models.Standing) bool {
	if a.WinPercentage != b.WinPercentage {
		return a.WinPercentage > b.WinPercentage
	}
	if a.SetsDiff != b.SetsDiff {
		return a.SetsDiff > b.SetsDiff
	}
	return a.SetsWon > b.SetsWon
}
