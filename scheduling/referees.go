package scheduling

import "github.com/courtside/matchday/models"

// AssignReferees gives every match a non-playing officiating team,
// balancing duty counts across the eligible roster. Matches are visited
// in generation order; ties on duty count break by roster order.
//
// With fewer than three distinct teams no referee can exist, so the
// matches are left without one rather than failing the batch.
func AssignReferees(matches []*models.Match, roster []*models.Team) {
	if len(roster) < 3 {
		return
	}

	duties := make(map[int]int, len(roster))
	for _, team := range roster {
		duties[team.ID] = 0
	}

	for _, match := range matches {
		var chosen *models.Team
		for _, team := range roster {
			if match.Team1ID != nil && *match.Team1ID == team.ID {
				continue
			}
			if match.Team2ID != nil && *match.Team2ID == team.ID {
				continue
			}
			if chosen == nil || duties[team.ID] < duties[chosen.ID] {
				chosen = team
			}
		}
		if chosen == nil {
			continue
		}

		refID := chosen.ID
		match.RefereeTeamID = &refID
		duties[refID]++
	}
}
