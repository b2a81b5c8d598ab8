package services

import (
	"github.com/courtside/matchday/models"
)

// poolsFromRoster rebuilds the generated pools from persisted pool
// assignments, preserving roster order for members and first-seen order
// for pools. This keeps standings and seeding deterministic across
// process restarts.
func poolsFromRoster(teams []*models.Team) []models.Pool {
	order := make([]string, 0)
	byName := make(map[string]*models.Pool)

	for _, team := range teams {
		if team.PoolName == nil {
			continue
		}
		name := *team.PoolName
		pool, seen := byName[name]
		if !seen {
			pool = &models.Pool{Name: name, Category: team.CategoryKey()}
			byName[name] = pool
			order = append(order, name)
		}
		pool.TeamIDs = append(pool.TeamIDs, team.ID)
	}

	pools := make([]models.Pool, 0, len(order))
	for _, name := range order {
		pools = append(pools, *byName[name])
	}
	return pools
}
