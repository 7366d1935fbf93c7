package output

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/qrave1/Gamefinity/internal/domain/engine"
	"github.com/qrave1/Gamefinity/internal/domain/models"
)

var t0 = time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)

func deductionRoom(t *testing.T) (*models.Room, engine.Policy) {
	t.Helper()

	policy, err := engine.PolicyFor(models.KindBrainMyst)
	require.NoError(t, err)

	room := models.NewRoom("r1", "123456", models.KindBrainMyst, policy.Capacity, "Math", t0)
	for _, id := range []string{"a", "b", "c", "d"} {
		room.Players = append(room.Players, models.NewPlayer(models.Identity{ID: id, DisplayName: id}, t0))
	}

	room.Status = models.StatusPlaying
	room.SecretRole = "b"
	room.Topic = "Algebra"

	return room, policy
}

func TestNewRoomView_SecretRole(t *testing.T) {
	room, policy := deductionRoom(t)

	spy := NewRoomView(room, policy, "b", t0)
	assert.True(t, spy.IsSpy)
	assert.Empty(t, spy.Topic)
	assert.Empty(t, spy.SecretRole)

	innocent := NewRoomView(room, policy, "a", t0)
	assert.False(t, innocent.IsSpy)
	assert.Equal(t, "Algebra", innocent.Topic)
	assert.Empty(t, innocent.SecretRole)

	stranger := NewRoomView(room, policy, "zz", t0)
	assert.Empty(t, stranger.Topic)

	room.Status = models.StatusFinished
	finished := NewRoomView(room, policy, "a", t0)
	assert.Equal(t, "b", finished.SecretRole)
	assert.Equal(t, "Algebra", finished.Topic)
}

func TestNewRoomView_VotesHiddenWhileVoting(t *testing.T) {
	room, policy := deductionRoom(t)

	room.Phase = models.PhaseVoting
	room.PhaseStart = t0
	room.Votes = map[string]string{"a": "b", "c": models.SkipVote}

	v := NewRoomView(room, policy, "a", t0.Add(10*time.Second))
	assert.Nil(t, v.Votes)
	assert.True(t, v.Players[0].Voted)
	assert.False(t, v.Players[1].Voted)

	require.NotNil(t, v.Timer)
	assert.Equal(t, int64(30000), v.Timer.DurationMs)
	assert.Equal(t, int64(20000), v.Timer.RemainingMs)

	room.Phase = models.PhaseResult
	v = NewRoomView(room, policy, "a", t0)
	assert.Equal(t, room.Votes, v.Votes)
}

func TestNewRoomView_TriviaAnswerHidden(t *testing.T) {
	policy, err := engine.PolicyFor(models.KindQuizBlitz)
	require.NoError(t, err)

	room := models.NewRoom("r2", "ABCD", models.KindQuizBlitz, policy.Capacity, "Trivia", t0)
	room.Players = append(room.Players, models.NewPlayer(models.Identity{ID: "a", DisplayName: "a"}, t0))
	room.Status = models.StatusPlaying
	room.Phase = models.PhaseQuestion
	room.PhaseStart = t0
	room.Questions = []models.Question{
		{ID: "q1", Prompt: "first", Choices: []string{"x", "y"}, Answer: 1},
		{ID: "q2", Prompt: "second", Choices: []string{"x", "y"}, Answer: 0},
	}
	room.QuestionIndex = 1
	room.Answers = map[string]int{"a": 0}

	v := NewRoomView(room, policy, "a", t0)

	require.NotNil(t, v.Question)
	assert.Equal(t, "q2", v.Question.ID)
	assert.Nil(t, v.Question.Answer)

	require.NotNil(t, v.PreviousQuestion)
	require.NotNil(t, v.PreviousQuestion.Answer)
	assert.Equal(t, 1, *v.PreviousQuestion.Answer)

	require.NotNil(t, v.MyAnswer)
	assert.Equal(t, 0, *v.MyAnswer)
	assert.True(t, v.Players[0].Answered)
	assert.Equal(t, 2, v.QuestionCount)

	other := NewRoomView(room, policy, "b", t0)
	assert.Nil(t, other.MyAnswer)
}

func TestNewRoomView_EmptyChat(t *testing.T) {
	room, policy := deductionRoom(t)

	v := NewRoomView(room, policy, "a", t0)
	assert.NotNil(t, v.Chat)
	assert.Empty(t, v.Chat)
}
