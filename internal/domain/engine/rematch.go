package engine

import (
	"time"

	"github.com/qrave1/Gamefinity/internal/domain/models"
)

// SetRematchReady отмечает готовность к реваншу. Идемпотентно.
func (m *Machine) SetRematchReady(playerID string) error {
	if m.room.Status != models.StatusFinished {
		return ErrGameNotFinished
	}

	p := m.room.Player(playerID)
	if p == nil {
		return ErrPlayerNotInRoom
	}

	if !p.Online() {
		return ErrPlayerOffline
	}

	if m.room.RematchReady == nil {
		m.room.RematchReady = map[string]bool{}
	}

	m.room.RematchReady[playerID] = true
	m.checkRematch(m.clock.Now())

	return nil
}

// ClearRematchReady снимает готовность ушедшего игрока и проверяет, готовы ли оставшиеся
func (m *Machine) ClearRematchReady(playerID string) {
	if m.room.Status != models.StatusFinished {
		return
	}

	delete(m.room.RematchReady, playerID)
	m.checkRematch(m.clock.Now())
}

func (m *Machine) checkRematch(now time.Time) bool {
	online := m.room.Online()
	if len(online) == 0 {
		return false
	}

	for _, id := range online {
		if !m.room.RematchReady[id] {
			return false
		}
	}

	m.rematch(now)

	return true
}

// rematch сбрасывает комнату: офлайн игроки удаляются, дедукция сразу стартует заново,
// тривия возвращается в лобби
func (m *Machine) rematch(now time.Time) {
	kept := make([]*models.Player, 0, len(m.room.Players))
	for _, p := range m.room.Players {
		if !p.Online() {
			continue
		}

		p.Alive = true
		p.Ready = false
		p.Score = 0
		kept = append(kept, p)
	}

	m.room.Players = kept
	m.ensureHost()

	m.room.Status = models.StatusWaiting
	m.room.Round = 1
	m.room.RematchReady = nil
	m.room.Votes = map[string]string{}
	m.room.TurnsTaken = map[string]bool{}
	m.room.Answers = map[string]int{}
	m.room.LastResult = nil
	m.room.Winner = models.FactionNone
	m.room.Leaders = nil
	m.room.Phase = models.PhaseNone
	m.room.PhaseStart = time.Time{}
	m.room.CurrentActor = ""
	m.room.SecretRole = ""
	m.room.Topic = ""
	m.room.Questions = nil
	m.room.QuestionIndex = 0
	m.room.Chat = nil

	if m.policy.Mode == ModeDeduction && len(kept) >= m.policy.MinPlayers {
		// при ошибке комната остается в лобби
		_ = m.startDeduction(now)
	}
}

func (m *Machine) ensureHost() {
	for _, p := range m.room.Players {
		if p.IsHost {
			m.room.HostID = p.ID
			return
		}
	}

	if len(m.room.Players) > 0 {
		m.room.Players[0].IsHost = true
		m.room.HostID = m.room.Players[0].ID
	}
}
