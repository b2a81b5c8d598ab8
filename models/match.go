package models

import "time"

type Phase string

const (
	PhasePoolPlay Phase = "pool_play"
	PhasePlayoffs Phase = "playoffs"
)

type MatchStatus string

const (
	StatusScheduled  MatchStatus = "scheduled"
	StatusInProgress MatchStatus = "in_progress"
	StatusCompleted  MatchStatus = "completed"
)

// SetScore holds the points of one set, live or archived.
type SetScore struct {
	Team1 int `json:"team1"`
	Team2 int `json:"team2"`
}

// Match is a single scheduled game. Team and referee IDs are nullable:
// nil denotes a TBD slot (bracket placeholder) or a bye.
//
// The Version column backs optimistic locking on the live-scoring path.
// Every state-machine mutation must go through a compare-and-swap update
// keyed on the version read.
type Match struct {
	ID              int         `json:"id" db:"id"`
	Phase           Phase       `json:"phase" db:"phase"`
	Round           int         `json:"round" db:"round"`
	MatchNumber     int         `json:"match_number" db:"match_number"`
	Category        string      `json:"category" db:"category"`
	PoolName        *string     `json:"pool_name,omitempty" db:"pool_name"`
	Team1ID         *int        `json:"team1_id,omitempty" db:"team1_id"`
	Team2ID         *int        `json:"team2_id,omitempty" db:"team2_id"`
	RefereeTeamID   *int        `json:"referee_team_id,omitempty" db:"referee_team_id"`
	CourtNumber     int         `json:"court_number" db:"court_number"`
	ScheduledTime   *time.Time  `json:"scheduled_time,omitempty" db:"scheduled_time"`
	Status          MatchStatus `json:"status" db:"status"`
	BracketPosition *string     `json:"bracket_position,omitempty" db:"bracket_position"`

	Sets           []SetScore `json:"sets"`
	CurrentSet     int        `json:"current_set" db:"current_set"`
	SetsWonTeam1   int        `json:"sets_won_team1" db:"sets_won_team1"`
	SetsWonTeam2   int        `json:"sets_won_team2" db:"sets_won_team2"`
	SwitchNotified int        `json:"-" db:"switch_notified"`

	WinnerID    *int       `json:"winner_id,omitempty" db:"winner_id"`
	CompletedAt *time.Time `json:"completed_at,omitempty" db:"completed_at"`
	Version     int        `json:"version" db:"version"`
	CreatedAt   time.Time  `json:"created_at" db:"created_at"`
}

// LiveSet returns a pointer to the set currently being played.
// The slice is grown on demand so a freshly loaded match is always safe.
func (m *Match) LiveSet() *SetScore {
	for len(m.Sets) <= m.CurrentSet {
		m.Sets = append(m.Sets, SetScore{})
	}
	return &m.Sets[m.CurrentSet]
}

// Involves reports whether the team plays or officiates this match.
func (m *Match) Involves(teamID int) bool {
	if m.Team1ID != nil && *m.Team1ID == teamID {
		return true
	}
	if m.Team2ID != nil && *m.Team2ID == teamID {
		return true
	}
	if m.RefereeTeamID != nil && *m.RefereeTeamID == teamID {
		return true
	}
	return false
}
