package services

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"testing"

	"github.com/courtside/matchday/models"
	"github.com/courtside/matchday/repositories"
	"github.com/courtside/matchday/scheduling"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeMatchRepository keeps matches in memory with the same version-guard
// and slot-fill semantics as the postgres implementation.
type fakeMatchRepository struct {
	mu      sync.Mutex
	nextID  int
	matches map[int]*models.Match

	// beforeUpdate runs at the top of UpdateLiveState, letting a test
	// slip in a competing write.
	beforeUpdate func()
}

func newFakeMatchRepository() *fakeMatchRepository {
	return &fakeMatchRepository{nextID: 1, matches: make(map[int]*models.Match)}
}

func copyMatch(m *models.Match) *models.Match {
	clone := *m
	clone.Sets = append([]models.SetScore(nil), m.Sets...)
	return &clone
}

func (r *fakeMatchRepository) seed(m *models.Match) *models.Match {
	r.mu.Lock()
	defer r.mu.Unlock()
	m.ID = r.nextID
	r.nextID++
	if m.Version == 0 {
		m.Version = 1
	}
	r.matches[m.ID] = copyMatch(m)
	return m
}

func (r *fakeMatchRepository) Create(ctx context.Context, exec repositories.SQLExecutor, match *models.Match) error {
	r.seed(match)
	return nil
}

func (r *fakeMatchRepository) GetByID(ctx context.Context, id int) (*models.Match, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	match, ok := r.matches[id]
	if !ok {
		return nil, repositories.ErrMatchNotFound
	}
	return copyMatch(match), nil
}

func (r *fakeMatchRepository) ListByPhase(ctx context.Context, phase models.Phase, category *string) ([]*models.Match, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	matches := make([]*models.Match, 0)
	for id := 1; id < r.nextID; id++ {
		match, ok := r.matches[id]
		if !ok || match.Phase != phase {
			continue
		}
		if category != nil && match.Category != *category {
			continue
		}
		matches = append(matches, copyMatch(match))
	}
	return matches, nil
}

func (r *fakeMatchRepository) DeleteByPhase(ctx context.Context, exec repositories.SQLExecutor, phase models.Phase) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for id, match := range r.matches {
		if match.Phase == phase {
			delete(r.matches, id)
		}
	}
	return nil
}

func (r *fakeMatchRepository) UpdateLiveState(ctx context.Context, match *models.Match) error {
	if r.beforeUpdate != nil {
		r.beforeUpdate()
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	stored, ok := r.matches[match.ID]
	if !ok {
		return repositories.ErrMatchNotFound
	}
	if stored.Version != match.Version {
		return repositories.ErrMatchVersionConflict
	}
	match.Version++
	r.matches[match.ID] = copyMatch(match)
	return nil
}

func (r *fakeMatchRepository) FillBracketSlot(ctx context.Context, matchID, slot, teamID int) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	match, ok := r.matches[matchID]
	if !ok {
		return repositories.ErrMatchNotFound
	}
	target := &match.Team1ID
	if slot == 2 {
		target = &match.Team2ID
	}
	if *target != nil && **target != teamID {
		return repositories.ErrBracketSlotOccupied
	}
	team := teamID
	*target = &team
	return nil
}

type fakeFormatRepository struct {
	config *models.FormatConfig
}

func (r *fakeFormatRepository) Save(ctx context.Context, exec repositories.SQLExecutor, config models.FormatConfig) error {
	r.config = &config
	return nil
}

func (r *fakeFormatRepository) Get(ctx context.Context) (*models.FormatConfig, error) {
	if r.config == nil {
		return nil, repositories.ErrFormatNotConfigured
	}
	return r.config, nil
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// scoreFixture wires a score service over fakes with a seeded playoff
// bracket: two round-1 matches feeding a final. Match 1 is live at 24-0.
func scoreFixture(t *testing.T) (ScoreService, BracketService, *fakeMatchRepository) {
	t.Helper()

	matchRepo := newFakeMatchRepository()
	formatRepo := &fakeFormatRepository{config: &models.FormatConfig{
		Mode:    models.FormatModeSingle,
		Default: models.Format{SetsPerGame: 1, PointsPerSet: 25, MustWinBy: 2},
	}}

	team1, team2, team3, team4 := 1, 2, 3, 4
	matchRepo.seed(&models.Match{
		Phase: models.PhasePlayoffs, Round: 1, MatchNumber: 1, Category: "open",
		Team1ID: &team1, Team2ID: &team2,
		Status: models.StatusInProgress,
		Sets:   []models.SetScore{{Team1: 24, Team2: 0}},
	})
	matchRepo.seed(&models.Match{
		Phase: models.PhasePlayoffs, Round: 1, MatchNumber: 2, Category: "open",
		Team1ID: &team3, Team2ID: &team4,
		Status: models.StatusScheduled,
		Sets:   []models.SetScore{{}},
	})
	matchRepo.seed(&models.Match{
		Phase: models.PhasePlayoffs, Round: 2, MatchNumber: 1, Category: "open",
		Status: models.StatusScheduled,
		Sets:   []models.SetScore{{}},
	})

	hub := scheduling.NewHub()
	logger := testLogger()
	brackets := NewBracketService(nil, nil, matchRepo, hub, logger)
	scores := NewScoreService(matchRepo, formatRepo, brackets, hub, logger)
	return scores, brackets, matchRepo
}

func TestScoreServiceStartMatch(t *testing.T) {
	scores, _, repo := scoreFixture(t)

	match, err := scores.StartMatch(context.Background(), 2)
	require.NoError(t, err)
	assert.Equal(t, models.StatusInProgress, match.Status)
	assert.Equal(t, 2, match.Version)

	stored, err := repo.GetByID(context.Background(), 2)
	require.NoError(t, err)
	assert.Equal(t, models.StatusInProgress, stored.Status)
}

func TestScoreServiceStartMatchRejectsLiveMatch(t *testing.T) {
	scores, _, _ := scoreFixture(t)

	_, err := scores.StartMatch(context.Background(), 1)
	assert.ErrorIs(t, err, ErrValidationFailed)
}

func TestScoreServiceApplyPointCompletesAndAdvances(t *testing.T) {
	scores, _, repo := scoreFixture(t)

	match, outcome, err := scores.ApplyPoint(context.Background(), 1, 1, 1)
	require.NoError(t, err)
	require.NotNil(t, outcome)
	assert.True(t, outcome.MatchCompleted)
	assert.Equal(t, models.StatusCompleted, match.Status)
	require.NotNil(t, match.WinnerID)
	assert.Equal(t, 1, *match.WinnerID)

	final, err := repo.GetByID(context.Background(), 3)
	require.NoError(t, err)
	require.NotNil(t, final.Team1ID)
	assert.Equal(t, 1, *final.Team1ID)
	assert.Nil(t, final.Team2ID)
}

func TestScoreServiceApplyPointVersionConflict(t *testing.T) {
	scores, _, repo := scoreFixture(t)

	// A competing officiating client lands its write first.
	repo.beforeUpdate = func() {
		repo.beforeUpdate = nil
		repo.mu.Lock()
		repo.matches[1].Version++
		repo.mu.Unlock()
	}

	_, _, err := scores.ApplyPoint(context.Background(), 1, 1, 1)
	assert.ErrorIs(t, err, ErrScoreConflict)

	// The stale writer changed nothing.
	stored, getErr := repo.GetByID(context.Background(), 1)
	require.NoError(t, getErr)
	assert.Equal(t, models.StatusInProgress, stored.Status)
	assert.Nil(t, stored.WinnerID)
}

func TestScoreServiceApplyPointUnknownMatch(t *testing.T) {
	scores, _, _ := scoreFixture(t)

	_, _, err := scores.ApplyPoint(context.Background(), 99, 1, 1)
	assert.ErrorIs(t, err, ErrMatchNotFound)
}

func TestScoreServiceApplyManualScoreNoEvaluation(t *testing.T) {
	scores, _, repo := scoreFixture(t)

	match, err := scores.ApplyManualScore(context.Background(), 1, 2, 30)
	require.NoError(t, err)
	assert.Equal(t, models.StatusInProgress, match.Status)
	assert.Equal(t, 30, match.Sets[0].Team2)

	stored, err := repo.GetByID(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, 30, stored.Sets[0].Team2)
	assert.Zero(t, stored.SetsWonTeam2)
}

func TestScoreServicePhaseKeyedFormats(t *testing.T) {
	matchRepo := newFakeMatchRepository()
	formatRepo := &fakeFormatRepository{config: &models.FormatConfig{
		Mode:    models.FormatModeByPhase,
		Default: models.Format{SetsPerGame: 1, PointsPerSet: 25, MustWinBy: 2},
		Playoff: &models.Format{SetsPerGame: 1, PointsPerSet: 15, MustWinBy: 2},
	}}

	team1, team2, team3, team4 := 1, 2, 3, 4
	poolMatch := matchRepo.seed(&models.Match{
		Phase: models.PhasePoolPlay, Round: 1, MatchNumber: 1, Category: "open",
		Team1ID: &team1, Team2ID: &team2,
		Status: models.StatusInProgress,
		Sets:   []models.SetScore{{Team1: 14, Team2: 0}},
	})
	playoffMatch := matchRepo.seed(&models.Match{
		Phase: models.PhasePlayoffs, Round: 1, MatchNumber: 1, Category: "open",
		Team1ID: &team3, Team2ID: &team4,
		Status: models.StatusInProgress,
		Sets:   []models.SetScore{{Team1: 14, Team2: 0}},
	})

	hub := scheduling.NewHub()
	logger := testLogger()
	brackets := NewBracketService(nil, &fakeTeamRepository{}, matchRepo, hub, logger)
	scores := NewScoreService(matchRepo, formatRepo, brackets, hub, logger)

	// Pool play runs to 25, so 15-0 is not enough.
	match, outcome, err := scores.ApplyPoint(context.Background(), poolMatch.ID, 1, 1)
	require.NoError(t, err)
	assert.False(t, outcome.MatchCompleted)
	assert.Equal(t, models.StatusInProgress, match.Status)

	// The same score ends a playoff match under the 15-point format.
	match, outcome, err = scores.ApplyPoint(context.Background(), playoffMatch.ID, 1, 1)
	require.NoError(t, err)
	assert.True(t, outcome.MatchCompleted)
	assert.Equal(t, models.StatusCompleted, match.Status)
	require.NotNil(t, match.WinnerID)
	assert.Equal(t, 3, *match.WinnerID)
}

func TestScoreServiceSurfacesSlotConflict(t *testing.T) {
	scores, _, repo := scoreFixture(t)

	// Someone already sits in the winner's slot.
	occupant := 9
	repo.mu.Lock()
	repo.matches[3].Team1ID = &occupant
	repo.mu.Unlock()

	match, outcome, err := scores.ApplyPoint(context.Background(), 1, 1, 1)
	assert.ErrorIs(t, err, ErrBracketSlotConflict)

	// The completed match stands even though the advancement did not.
	require.NotNil(t, match)
	require.NotNil(t, outcome)
	assert.True(t, outcome.MatchCompleted)
	assert.Equal(t, models.StatusCompleted, match.Status)
}
