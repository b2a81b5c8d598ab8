package scheduling

import (
	"fmt"
	"time"

	"github.com/courtside/matchday/models"
)

// Turnover time between matches on the same court, on top of the match
// and warm-up durations.
const courtTurnover = 5 * time.Minute

type CourtParams struct {
	FirstGameTime  time.Time
	MatchDuration  time.Duration
	WarmupDuration time.Duration
	// CourtCount caps the number of courts. Zero means one court per pool.
	CourtCount int
}

// ScheduleCourts assigns a court and start time to every match of the
// schedule and returns the number of courts used.
//
// Each pool plays on one dedicated court (pools rotate over courts when
// there are more pools than courts). Within a pool matches run in order;
// a match starts at the later of the court's next-free time and the
// earliest time that gives all three involved teams (both sides and the
// referee) a rest of at least match+warm-up since their previous start.
// Scheduling is fully deterministic for identical input.
func ScheduleCourts(schedule *GeneratedSchedule, params CourtParams) (int, error) {
	if params.MatchDuration <= 0 {
		return 0, fmt.Errorf("match duration must be positive, got %s", params.MatchDuration)
	}
	if params.WarmupDuration < 0 {
		return 0, fmt.Errorf("warm-up duration cannot be negative, got %s", params.WarmupDuration)
	}

	courts := len(schedule.Pools)
	if params.CourtCount > 0 && params.CourtCount < courts {
		courts = params.CourtCount
	}
	if courts == 0 {
		return 0, nil
	}

	rest := params.MatchDuration + params.WarmupDuration

	courtFree := make([]time.Time, courts)
	for i := range courtFree {
		courtFree[i] = params.FirstGameTime
	}
	lastStart := make(map[int]time.Time)

	for poolIndex, pool := range schedule.Pools {
		court := poolIndex % courts

		for _, match := range schedule.Matches {
			if match.PoolName == nil || *match.PoolName != pool.Name {
				continue
			}

			start := courtFree[court]
			for _, teamID := range involvedTeams(match) {
				if prev, played := lastStart[teamID]; played {
					if earliest := prev.Add(rest); earliest.After(start) {
						start = earliest
					}
				}
			}

			scheduled := start
			match.ScheduledTime = &scheduled
			match.CourtNumber = court + 1

			for _, teamID := range involvedTeams(match) {
				lastStart[teamID] = start
			}
			courtFree[court] = start.Add(params.MatchDuration + params.WarmupDuration + courtTurnover)
		}
	}

	return courts, nil
}

func involvedTeams(match *models.Match) []int {
	teams := make([]int, 0, 3)
	for _, id := range []*int{match.Team1ID, match.Team2ID, match.RefereeTeamID} {
		if id != nil {
			teams = append(teams, *id)
		}
	}
	return teams
}
