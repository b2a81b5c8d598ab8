package models

// Standing is a team's derived position within its pool, computed from
// completed matches only. It is never stored.
type Standing struct {
	TeamID        int     `json:"team_id"`
	PoolName      string  `json:"pool_name"`
	Category      string  `json:"category"`
	Place         int     `json:"place"`
	Wins          int     `json:"wins"`
	Losses        int     `json:"losses"`
	SetsWon       int     `json:"sets_won"`
	SetsLost      int     `json:"sets_lost"`
	WinPercentage float64 `json:"win_percentage"`
	SetsDiff      int     `json:"sets_differential"`
}
