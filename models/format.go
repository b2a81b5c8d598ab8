package models

type FormatMode string

const (
	FormatModeSingle  FormatMode = "single"
	FormatModeByPhase FormatMode = "by_phase"
)

// Format describes the win conditions of a single match.
type Format struct {
	SetsPerGame       int `json:"sets_per_game"`
	PointsPerSet      int `json:"points_per_set"`
	MustWinBy         int `json:"must_win_by"`
	DecidingSetPoints int `json:"deciding_set_points"`
}

// FormatConfig is the active format configuration, either one format for
// the whole event or two independent formats keyed by phase.
type FormatConfig struct {
	Mode    FormatMode `json:"mode"`
	Default Format     `json:"default"`
	Playoff *Format    `json:"playoff,omitempty"`
}

// ForPhase resolves the format that governs matches of the given phase.
func (c FormatConfig) ForPhase(phase Phase) Format {
	if c.Mode == FormatModeByPhase && phase == PhasePlayoffs && c.Playoff != nil {
		return *c.Playoff
	}
	return c.Default
}
