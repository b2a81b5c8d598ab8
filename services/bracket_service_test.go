package services

import (
	"context"
	"testing"

	"github.com/courtside/matchday/models"
	"github.com/courtside/matchday/repositories"
	"github.com/courtside/matchday/scheduling"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeTeamRepository struct {
	teams []*models.Team
}

func (r *fakeTeamRepository) Create(ctx context.Context, exec repositories.SQLExecutor, team *models.Team) error {
	r.teams = append(r.teams, team)
	return nil
}

func (r *fakeTeamRepository) GetByID(ctx context.Context, id int) (*models.Team, error) {
	for _, team := range r.teams {
		if team.ID == id {
			return team, nil
		}
	}
	return nil, repositories.ErrTeamNotFound
}

func (r *fakeTeamRepository) ListCheckedIn(ctx context.Context) ([]*models.Team, error) {
	checkedIn := make([]*models.Team, 0)
	for _, team := range r.teams {
		if team.CheckedIn {
			checkedIn = append(checkedIn, team)
		}
	}
	return checkedIn, nil
}

func (r *fakeTeamRepository) AssignPool(ctx context.Context, exec repositories.SQLExecutor, teamID int, poolName string) error {
	for _, team := range r.teams {
		if team.ID == teamID {
			name := poolName
			team.PoolName = &name
			return nil
		}
	}
	return repositories.ErrTeamNotFound
}

func (r *fakeTeamRepository) ClearPools(ctx context.Context, exec repositories.SQLExecutor) error {
	for _, team := range r.teams {
		team.PoolName = nil
	}
	return nil
}

func completedPlayoffMatch(repo *fakeMatchRepository, round, number int, team1, team2 *int, winner *int) *models.Match {
	status := models.StatusScheduled
	if winner != nil {
		status = models.StatusCompleted
	}
	return repo.seed(&models.Match{
		Phase: models.PhasePlayoffs, Round: round, MatchNumber: number, Category: "open",
		Team1ID: team1, Team2ID: team2,
		WinnerID: winner,
		Status:   status,
		Sets:     []models.SetScore{{}},
	})
}

func bracketServiceFixture(t *testing.T) (BracketService, *fakeMatchRepository) {
	t.Helper()
	repo := newFakeMatchRepository()
	return NewBracketService(nil, &fakeTeamRepository{}, repo, scheduling.NewHub(), testLogger()), repo
}

func TestAdvanceWinnerFillsNextSlot(t *testing.T) {
	brackets, repo := bracketServiceFixture(t)

	team1, team2, team3, team4 := 1, 2, 3, 4
	semiA := completedPlayoffMatch(repo, 1, 1, &team1, &team2, &team1)
	completedPlayoffMatch(repo, 1, 2, &team3, &team4, nil)
	final := completedPlayoffMatch(repo, 2, 1, nil, nil, nil)

	require.NoError(t, brackets.AdvanceWinner(context.Background(), semiA))

	stored, err := repo.GetByID(context.Background(), final.ID)
	require.NoError(t, err)
	require.NotNil(t, stored.Team1ID)
	assert.Equal(t, 1, *stored.Team1ID)
	assert.Nil(t, stored.Team2ID)
}

func TestAdvanceWinnerIsIdempotent(t *testing.T) {
	brackets, repo := bracketServiceFixture(t)

	team1, team2 := 1, 2
	semiA := completedPlayoffMatch(repo, 1, 1, &team1, &team2, &team1)
	final := completedPlayoffMatch(repo, 2, 1, nil, nil, nil)

	require.NoError(t, brackets.AdvanceWinner(context.Background(), semiA))
	require.NoError(t, brackets.AdvanceWinner(context.Background(), semiA))

	stored, err := repo.GetByID(context.Background(), final.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, *stored.Team1ID)
}

func TestAdvanceWinnerRejectsDifferingOccupant(t *testing.T) {
	brackets, repo := bracketServiceFixture(t)

	team1, team2, occupant := 1, 2, 9
	semiA := completedPlayoffMatch(repo, 1, 1, &team1, &team2, &team1)
	completedPlayoffMatch(repo, 2, 1, &occupant, nil, nil)

	err := brackets.AdvanceWinner(context.Background(), semiA)
	assert.ErrorIs(t, err, ErrBracketSlotConflict)
}

func TestAdvanceWinnerSecondSemifinalFillsSlotTwo(t *testing.T) {
	brackets, repo := bracketServiceFixture(t)

	team1, team2, team3, team4 := 1, 2, 3, 4
	completedPlayoffMatch(repo, 1, 1, &team1, &team2, nil)
	semiB := completedPlayoffMatch(repo, 1, 2, &team3, &team4, &team4)
	final := completedPlayoffMatch(repo, 2, 1, nil, nil, nil)

	require.NoError(t, brackets.AdvanceWinner(context.Background(), semiB))

	stored, err := repo.GetByID(context.Background(), final.ID)
	require.NoError(t, err)
	assert.Nil(t, stored.Team1ID)
	require.NotNil(t, stored.Team2ID)
	assert.Equal(t, 4, *stored.Team2ID)
}

func TestAdvanceWinnerFinalHasNoSuccessor(t *testing.T) {
	brackets, repo := bracketServiceFixture(t)

	team1, team2 := 1, 2
	final := completedPlayoffMatch(repo, 1, 1, &team1, &team2, &team2)

	assert.NoError(t, brackets.AdvanceWinner(context.Background(), final))
}

func TestAdvanceWinnerIgnoresPoolPlay(t *testing.T) {
	brackets, _ := bracketServiceFixture(t)

	match := &models.Match{Phase: models.PhasePoolPlay, Status: models.StatusCompleted}
	assert.NoError(t, brackets.AdvanceWinner(context.Background(), match))
}

func TestAdvanceWinnerRequiresAWinner(t *testing.T) {
	brackets, repo := bracketServiceFixture(t)

	team1, team2 := 1, 2
	pending := completedPlayoffMatch(repo, 1, 1, &team1, &team2, nil)

	err := brackets.AdvanceWinner(context.Background(), pending)
	assert.ErrorIs(t, err, ErrValidationFailed)
}

func TestGenerateBracketsRejectsInvalidAdvancement(t *testing.T) {
	brackets, _ := bracketServiceFixture(t)

	_, err := brackets.GenerateBrackets(context.Background(), 0)
	assert.ErrorIs(t, err, ErrValidationFailed)

	_, err = brackets.GenerateBrackets(context.Background(), -2)
	assert.ErrorIs(t, err, ErrValidationFailed)
}

func TestGenerateBracketsRequiresPoolPlay(t *testing.T) {
	brackets, _ := bracketServiceFixture(t)

	_, err := brackets.GenerateBrackets(context.Background(), 2)
	assert.ErrorIs(t, err, ErrPoolPlayNotGenerated)
}

func TestPoolsFromRoster(t *testing.T) {
	poolA, poolB := "open-A", "open-B"
	teams := []*models.Team{
		{ID: 1, PoolName: &poolA},
		{ID: 2, PoolName: &poolB},
		{ID: 3, PoolName: &poolA},
		{ID: 4},
	}

	pools := poolsFromRoster(teams)
	require.Len(t, pools, 2)
	assert.Equal(t, "open-A", pools[0].Name)
	assert.Equal(t, []int{1, 3}, pools[0].TeamIDs)
	assert.Equal(t, []int{2}, pools[1].TeamIDs)
}
