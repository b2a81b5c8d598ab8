package models

// Pool is a group of teams playing a full round robin before advancement.
// Pools are created once at generation time and never mutated afterward.
type Pool struct {
	Name     string `json:"name"`
	Category string `json:"category"`
	TeamIDs  []int  `json:"team_ids"`
}
