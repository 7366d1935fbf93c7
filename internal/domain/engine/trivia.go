package engine

import (
	"fmt"
	"time"

	"github.com/qrave1/Gamefinity/internal/domain/models"
)

func (m *Machine) startTrivia(now time.Time) error {
	if m.room.Criteria == "" {
		return ErrCriteriaRequired
	}

	questions, err := m.content.Questions(m.room.Criteria, m.policy.QuestionsPerGame, m.rnd)
	if err != nil {
		return fmt.Errorf("pick questions: %w", err)
	}

	for _, p := range m.room.Players {
		p.Alive = true
		p.Ready = false
		p.Score = 0
	}

	m.room.Status = models.StatusPlaying
	m.room.Questions = questions
	m.room.QuestionIndex = 0
	m.room.Answers = map[string]int{}
	m.room.Winner = models.FactionNone
	m.room.Leaders = nil
	m.room.RematchReady = nil
	m.room.Phase = models.PhaseQuestion
	m.room.PhaseStart = now

	return nil
}

// SubmitAnswer принимает один ответ игрока на открытый вопрос
func (m *Machine) SubmitAnswer(playerID string, questionIndex, choice int) error {
	if m.policy.Mode != ModeTrivia {
		return ErrUnsupportedAction
	}

	if m.room.Status != models.StatusPlaying || m.room.Phase != models.PhaseQuestion {
		return ErrNoOpenQuestion
	}

	p := m.room.Player(playerID)
	if p == nil {
		return ErrPlayerNotInRoom
	}

	if !p.Online() {
		return ErrPlayerOffline
	}

	if questionIndex != m.room.QuestionIndex {
		return ErrStaleQuestion
	}

	if _, ok := m.room.Answers[playerID]; ok {
		return ErrAlreadyAnswered
	}

	q, ok := m.room.CurrentQuestion()
	if !ok {
		return ErrNoOpenQuestion
	}

	if choice < 0 || choice >= len(q.Choices) {
		return ErrInvalidChoice
	}

	m.room.Answers[playerID] = choice
	m.fastForwardQuestion(m.clock.Now())

	return nil
}

func (m *Machine) fastForwardQuestion(now time.Time) {
	if m.room.Status != models.StatusPlaying || m.room.Phase != models.PhaseQuestion {
		return
	}

	online := m.room.Online()
	if len(online) == 0 {
		return
	}

	for _, id := range online {
		if _, ok := m.room.Answers[id]; !ok {
			return
		}
	}

	m.room.PhaseStart = FastForward(m.room.PhaseStart, now, m.policy.QuestionDuration, m.policy.Grace)
}

func (m *Machine) tickTrivia(now time.Time) {
	if m.room.Phase != models.PhaseQuestion || !Expired(m.policy.QuestionDuration, m.room.PhaseStart, now) {
		return
	}

	m.closeQuestion()

	m.room.QuestionIndex++
	if m.room.QuestionIndex >= len(m.room.Questions) {
		m.finish(models.FactionPlayers)
		return
	}

	m.room.Answers = map[string]int{}
	m.room.PhaseStart = now
}

// closeQuestion начисляет по очку за каждый верный ответ
func (m *Machine) closeQuestion() {
	q, ok := m.room.CurrentQuestion()
	if !ok {
		return
	}

	for id, choice := range m.room.Answers {
		if choice != q.Answer {
			continue
		}

		if p := m.room.Player(id); p != nil {
			p.Score++
		}
	}
}

func leaders(players []*models.Player) []string {
	best := 0
	for _, p := range players {
		if p.Score > best {
			best = p.Score
		}
	}

	if best == 0 {
		return nil
	}

	var ids []string
	for _, p := range players {
		if p.Score == best {
			ids = append(ids, p.ID)
		}
	}

	return ids
}
