package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/qrave1/Gamefinity/internal/domain/models"
)

func TestTally(t *testing.T) {
	tests := []struct {
		name       string
		votes      map[string]string
		eliminated string
		threshold  int
		tie        bool
	}{
		{
			name:       "plurality meets threshold",
			votes:      map[string]string{"A": "B", "B": "C", "C": "B"},
			eliminated: "B",
			threshold:  2,
		},
		{
			name:      "two way tie",
			votes:     map[string]string{"A": "B", "B": "A"},
			threshold: 1,
			tie:       true,
		},
		{
			name:       "skips are excluded from threshold",
			votes:      map[string]string{"A": "B", "B": models.SkipVote, "C": models.SkipVote},
			eliminated: "B",
			threshold:  1,
		},
		{
			name:      "below threshold",
			votes:     map[string]string{"A": "B", "B": "C", "C": "D", "D": "E", "E": "B"},
			threshold: 3,
		},
		{
			name:      "only skips",
			votes:     map[string]string{"A": models.SkipVote},
			threshold: 0,
		},
		{
			name:      "no votes",
			votes:     map[string]string{},
			threshold: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := Tally(tt.votes)

			assert.Equal(t, tt.eliminated, res.Eliminated)
			assert.Equal(t, tt.threshold, res.Threshold)
			assert.Equal(t, tt.tie, res.Tie)
		})
	}
}

func TestTally_Idempotent(t *testing.T) {
	votes := map[string]string{"A": "B", "B": "C", "C": "B", "D": models.SkipVote}

	first := Tally(votes)
	second := Tally(votes)

	require.Equal(t, first, second)
	assert.Equal(t, "B", first.Eliminated)
	assert.Equal(t, 2, first.Count)
	assert.Equal(t, 1, first.Skips)
}

func TestValidVotes_DropsVotesForDeparted(t *testing.T) {
	room := models.NewRoom("r", "c", models.KindBrainMyst, 4, "Math", t0)
	for _, id := range []string{"A", "B", "C"} {
		room.Players = append(room.Players, models.NewPlayer(ident(id), t0))
	}
	room.Player("C").Connection = models.ConnectionOffline
	room.Player("C").Alive = false
	room.Votes = map[string]string{"A": "C", "B": models.SkipVote, "C": "A"}

	valid := ValidVotes(room)

	assert.Equal(t, map[string]string{"B": models.SkipVote, "C": "A"}, valid)
}
