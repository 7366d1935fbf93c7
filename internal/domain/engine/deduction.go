package engine

import (
	"fmt"
	"time"

	"github.com/qrave1/Gamefinity/internal/domain/models"
)

func (m *Machine) startDeduction(now time.Time) error {
	if m.room.Criteria == "" {
		return ErrCriteriaRequired
	}

	topic, err := m.content.Topic(m.room.Criteria, m.rnd)
	if err != nil {
		return fmt.Errorf("pick topic: %w", err)
	}

	for _, p := range m.room.Players {
		p.Alive = p.Online()
		p.Ready = false
		p.Score = 0
	}

	eligible := m.room.Eligible()
	if len(eligible) == 0 {
		return ErrNotEnoughPlayers
	}

	m.room.Status = models.StatusPlaying
	m.room.Round = 1
	m.room.SecretRole = eligible[m.rnd.IntN(len(eligible))]
	m.room.Topic = topic
	m.room.Winner = models.FactionNone
	m.room.LastResult = nil
	m.room.RematchReady = nil
	m.room.Votes = map[string]string{}
	m.room.TurnsTaken = map[string]bool{}
	m.room.Phase = models.PhaseNone
	m.room.PhaseStart = time.Time{}
	m.room.CurrentActor = NextTurn(m.room.Order(), set(eligible), "")
	m.room.TurnStart = now

	return nil
}

func (m *Machine) deductionRunning() error {
	if m.policy.Mode != ModeDeduction {
		return ErrUnsupportedAction
	}

	if m.room.Status != models.StatusPlaying {
		return ErrGameNotStarted
	}

	return nil
}

// EndTurn - текущий игрок завершает ход
func (m *Machine) EndTurn(playerID string) error {
	if err := m.deductionRunning(); err != nil {
		return err
	}

	if m.room.Phase != models.PhaseNone || m.room.CurrentActor != playerID {
		return ErrNotYourTurn
	}

	m.recordAction(playerID, m.clock.Now())

	return nil
}

func (m *Machine) recordAction(playerID string, now time.Time) {
	m.room.TurnsTaken[playerID] = true
	m.advanceTurn(now)
}

// advanceTurn передает ход следующему не походившему игроку или начинает голосование
func (m *Machine) advanceTurn(now time.Time) {
	eligible := m.room.Eligible()

	if RoundComplete(eligible, m.room.TurnsTaken) {
		m.beginPhase(models.PhasePreparation, now)
		return
	}

	candidates := pending(eligible, m.room.TurnsTaken)

	current := m.room.CurrentActor
	if p := m.room.Player(current); p != nil && p.Eligible() {
		candidates[current] = true
	}

	m.room.CurrentActor = NextTurn(m.room.Order(), candidates, current)
	m.room.TurnStart = now
}

func (m *Machine) beginPhase(phase models.Phase, now time.Time) {
	m.room.Phase = phase
	m.room.PhaseStart = now

	if phase == models.PhasePreparation {
		m.room.Votes = map[string]string{}
		// ходов до следующего раунда нет
		m.room.CurrentActor = ""
		m.room.TurnStart = time.Time{}
	}
}

func (m *Machine) CastVote(voterID, targetID string) error {
	if err := m.deductionRunning(); err != nil {
		return err
	}

	if m.room.Phase != models.PhaseVoting {
		return ErrNotVotingPhase
	}

	voter := m.room.Player(voterID)
	if voter == nil {
		return ErrPlayerNotInRoom
	}

	if !voter.Online() {
		return ErrPlayerOffline
	}

	if !voter.Alive {
		return ErrPlayerEliminated
	}

	if _, ok := m.room.Votes[voterID]; ok {
		return ErrAlreadyVoted
	}

	if targetID != models.SkipVote {
		target := m.room.Player(targetID)
		if target == nil || !target.Eligible() {
			return ErrInvalidTarget
		}
	}

	m.room.Votes[voterID] = targetID
	m.fastForwardVoting(m.clock.Now())

	return nil
}

// fastForwardVoting сокращает голосование до Grace, когда проголосовали все
func (m *Machine) fastForwardVoting(now time.Time) {
	if m.room.Phase != models.PhaseVoting {
		return
	}

	for _, id := range m.room.Eligible() {
		if _, ok := m.room.Votes[id]; !ok {
			return
		}
	}

	m.room.PhaseStart = FastForward(m.room.PhaseStart, now, m.policy.VotingDuration, m.policy.Grace)
}

func (m *Machine) tickDeduction(now time.Time) {
	switch m.room.Phase {
	case models.PhaseNone:
		if m.room.CurrentActor != "" && Expired(m.policy.TurnDuration, m.room.TurnStart, now) {
			m.recordAction(m.room.CurrentActor, now)
		}

	case models.PhasePreparation:
		if Expired(m.policy.PreparationDuration, m.room.PhaseStart, now) {
			m.beginPhase(models.PhaseVoting, now)
		}

	case models.PhaseVoting:
		if Expired(m.policy.VotingDuration, m.room.PhaseStart, now) {
			m.resolveVotes(now)
		}

	case models.PhaseResult:
		if !Expired(m.policy.ResultDuration, m.room.PhaseStart, now) {
			return
		}

		if m.room.Winner != models.FactionNone {
			m.finish(m.room.Winner)
			return
		}

		m.nextRound(now)
	}
}

func (m *Machine) resolveVotes(now time.Time) {
	res := Tally(ValidVotes(m.room))

	if res.Eliminated != "" {
		if p := m.room.Player(res.Eliminated); p != nil {
			p.Alive = false
		}

		m.room.Winner = m.winner()
	}

	m.room.LastResult = &res
	m.beginPhase(models.PhaseResult, now)
}

func (m *Machine) nextRound(now time.Time) {
	m.room.Round++
	m.room.Votes = map[string]string{}
	m.room.TurnsTaken = map[string]bool{}
	m.room.Phase = models.PhaseNone
	m.room.PhaseStart = time.Time{}
	m.room.CurrentActor = NextTurn(m.room.Order(), set(m.room.Eligible()), "")
	m.room.TurnStart = now
}

// winner проверяет условие победы: шпион выбыл - победа остальных,
// живых осталось не больше двух при живом шпионе - победа шпиона
func (m *Machine) winner() models.Faction {
	spy := m.room.Player(m.room.SecretRole)
	if spy == nil || !spy.Alive {
		return models.FactionInnocents
	}

	if len(m.room.Eligible()) <= 2 {
		return models.FactionSpy
	}

	return models.FactionNone
}

func (m *Machine) afterDeductionDeparture(playerID string, now time.Time) {
	if w := m.winner(); w != models.FactionNone {
		if m.room.Phase == models.PhaseResult {
			// итог покажется после фазы результата
			if m.room.Winner == models.FactionNone {
				m.room.Winner = w
			}

			return
		}

		m.finish(w)

		return
	}

	switch m.room.Phase {
	case models.PhaseNone:
		if m.room.CurrentActor == playerID || RoundComplete(m.room.Eligible(), m.room.TurnsTaken) {
			m.advanceTurn(now)
		}

	case models.PhaseVoting:
		m.fastForwardVoting(now)
	}
}
