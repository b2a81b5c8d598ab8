package models

import (
	"strings"
	"time"
)

// OpenCategory is the category key for teams that registered without a
// division or skill level.
const OpenCategory = "open"

type Team struct {
	ID         int       `json:"id" db:"id"`
	Name       string    `json:"name" db:"name"`
	SkillLevel *string   `json:"skill_level,omitempty" db:"skill_level"`
	Division   *string   `json:"division,omitempty" db:"division"`
	PoolName   *string   `json:"pool_name,omitempty" db:"pool_name"`
	CheckedIn  bool      `json:"checked_in" db:"checked_in"`
	CreatedAt  time.Time `json:"created_at" db:"created_at"`
}

// CategoryKey groups teams that are scheduled and bracketed together.
// Division and skill level combine into one key; teams with neither
// fall into the open category.
func (t *Team) CategoryKey() string {
	division := ""
	if t.Division != nil {
		division = strings.ToLower(strings.TrimSpace(*t.Division))
	}
	skill := ""
	if t.SkillLevel != nil {
		skill = strings.ToLower(strings.TrimSpace(*t.SkillLevel))
	}

	switch {
	case division != "" && skill != "":
		return division + "-" + skill
	case division != "":
		return division
	case skill != "":
		return skill
	default:
		return OpenCategory
	}
}
