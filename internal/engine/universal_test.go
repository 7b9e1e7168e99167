package engine

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jason-s-yu/anotador/internal/models"
)

func newUniversalScores(n int) []*models.UniversalScore {
	gameID := uuid.New()
	out := make([]*models.UniversalScore, n)
	for i := range out {
		out[i] = &models.UniversalScore{ID: uuid.New(), GameID: gameID, PlayerID: uuid.New()}
	}
	return out
}

func TestUniversalApplyRound(t *testing.T) {
	eng := Universal{Config: models.UniversalConfig{TargetScore: 100, HighestWins: true}}
	scores := newUniversalScores(3)

	err := eng.ApplyRound(scores, []RoundEntry{
		{ScoreID: scores[0].ID, Points: 12},
		{ScoreID: scores[1].ID, Points: -5},
	})
	require.NoError(t, err)

	assert.Equal(t, 12, scores[0].TotalPoints)
	assert.Equal(t, -5, scores[1].TotalPoints)
	assert.Equal(t, 0, scores[2].TotalPoints)
	for _, s := range scores {
		require.Len(t, s.Rounds, 1)
	}

	err = eng.ApplyRound(scores, []RoundEntry{{ScoreID: uuid.New(), Points: 1}})
	assert.Error(t, err)
}

func TestUniversalWinnerHighest(t *testing.T) {
	eng := Universal{Config: models.UniversalConfig{TargetScore: 100, HighestWins: true}}
	scores := newUniversalScores(2)

	assert.Nil(t, eng.Winner(scores))

	scores[0].TotalPoints = 100
	scores[1].TotalPoints = 40
	winner := eng.Winner(scores)
	require.NotNil(t, winner)
	assert.Equal(t, scores[0].PlayerID, *winner)
}

func TestUniversalWinnerLowest(t *testing.T) {
	// In lowest-wins games the target is a losing line: once somebody
	// crosses it the smallest total takes the game.
	eng := Universal{Config: models.UniversalConfig{TargetScore: 100}}
	scores := newUniversalScores(2)
	scores[0].TotalPoints = 100
	scores[1].TotalPoints = 40

	winner := eng.Winner(scores)
	require.NotNil(t, winner)
	assert.Equal(t, scores[1].PlayerID, *winner)
}

func TestUniversalWinnerTieRosterOrder(t *testing.T) {
	eng := Universal{Config: models.UniversalConfig{TargetScore: 100, HighestWins: true}}
	scores := newUniversalScores(2)
	scores[0].TotalPoints = 100
	scores[1].TotalPoints = 100

	winner := eng.Winner(scores)
	require.NotNil(t, winner)
	assert.Equal(t, scores[0].PlayerID, *winner)
}

func TestUniversalUndoRound(t *testing.T) {
	eng := Universal{Config: models.UniversalConfig{TargetScore: 100, HighestWins: true}}
	scores := newUniversalScores(2)

	require.NoError(t, eng.ApplyRound(scores, []RoundEntry{{ScoreID: scores[0].ID, Points: 30}}))
	require.NoError(t, eng.ApplyRound(scores, []RoundEntry{{ScoreID: scores[1].ID, Points: 20}}))

	touched := eng.UndoRound(scores)
	require.Len(t, touched, 2)
	assert.Equal(t, 30, scores[0].TotalPoints)
	assert.Equal(t, 0, scores[1].TotalPoints)
	for _, s := range scores {
		assert.Len(t, s.Rounds, 1)
	}

	require.Len(t, eng.UndoRound(scores), 2)
	assert.Nil(t, eng.UndoRound(scores))
}
