package engine

import (
	"fmt"
	"time"

	"github.com/qrave1/Gamefinity/internal/domain/models"
)

var t0 = time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

type fakeClock struct {
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.now = c.now.Add(d)
}

// fixedRand всегда выбирает индекс n и не перемешивает
type fixedRand struct {
	n int
}

func (r fixedRand) IntN(n int) int {
	return r.n % n
}

func (fixedRand) Shuffle(int, func(i, j int)) {}

type stubContent struct{}

func (stubContent) Subjects() []string {
	return []string{"Math", "Science"}
}

func (stubContent) Categories() []string {
	return []string{"Trivia"}
}

func (stubContent) Topic(subject string, _ Randomizer) (string, error) {
	if subject != "Math" && subject != "Science" {
		return "", ErrUnknownCriteria
	}

	return "Algebra", nil
}

func (stubContent) Questions(category string, n int, _ Randomizer) ([]models.Question, error) {
	if category != "Trivia" {
		return nil, ErrUnknownCriteria
	}

	qs := make([]models.Question, n)
	for i := range qs {
		qs[i] = models.Question{
			ID:       fmt.Sprintf("q%d", i),
			Category: category,
			Prompt:   fmt.Sprintf("question %d", i),
			Choices:  []string{"a", "b", "c", "d"},
			Answer:   0,
		}
	}

	return qs, nil
}

func newTestMachine(kind models.GameKind, criteria string, spyIndex int) (*Machine, *fakeClock) {
	policy, err := PolicyFor(kind)
	if err != nil {
		panic(err)
	}

	clock := &fakeClock{now: t0}
	room := models.NewRoom("room-1", "123456", kind, policy.Capacity, criteria, t0)

	return NewMachine(room, policy, stubContent{}, fixedRand{n: spyIndex}, clock), clock
}

func ident(id string) models.Identity {
	return models.Identity{ID: id, DisplayName: "name-" + id}
}

func aliveCount(room *models.Room) int {
	return room.AliveCount()
}
