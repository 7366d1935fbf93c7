package engine

import (
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/qrave1/Gamefinity/internal/domain/models"
)

const MaxChatRunes = 500

// Machine - конечный автомат одной комнаты.
// Не потокобезопасен: единственный владелец - актор комнаты.
type Machine struct {
	room    *models.Room
	policy  Policy
	content Content
	rnd     Randomizer
	clock   Clock

	closed bool
}

func NewMachine(room *models.Room, policy Policy, content Content, rnd Randomizer, clock Clock) *Machine {
	return &Machine{
		room:    room,
		policy:  policy,
		content: content,
		rnd:     rnd,
		clock:   clock,
	}
}

func (m *Machine) Room() *models.Room {
	return m.room
}

func (m *Machine) Policy() Policy {
	return m.policy
}

// Closed - хост распустил лобби
func (m *Machine) Closed() bool {
	return m.closed
}

// Abandoned - комнату пора уничтожить: она закрыта или в ней никого нет в сети и никого не ждут
func (m *Machine) Abandoned() bool {
	return m.closed || (len(m.room.Online()) == 0 && !m.Suspended())
}

// Join добавляет игрока. Повторный вход уже известного игрока - переподключение.
func (m *Machine) Join(identity models.Identity) error {
	if m.closed {
		return ErrRoomClosed
	}

	now := m.clock.Now()

	if p := m.room.Player(identity.ID); p != nil {
		p.Connection = models.ConnectionOnline
		if identity.DisplayName != "" {
			p.DisplayName = identity.DisplayName
		}

		return nil
	}

	if m.room.Status != models.StatusWaiting {
		return ErrGameInProgress
	}

	if len(m.room.Players) >= m.room.Capacity {
		return ErrRoomFull
	}

	p := models.NewPlayer(identity, now)
	if len(m.room.Players) == 0 {
		p.IsHost = true
		m.room.HostID = p.ID
	}

	m.room.Players = append(m.room.Players, p)

	if m.policy.AutoStart && len(m.room.Players) == m.room.Capacity {
		return m.startDeduction(now)
	}

	return nil
}

// Leave - явный выход игрока
func (m *Machine) Leave(playerID string) error {
	p := m.room.Player(playerID)
	if p == nil {
		return ErrPlayerNotInRoom
	}

	if m.room.Status == models.StatusWaiting {
		m.removeFromLobby(p)
		return nil
	}

	if p.Online() {
		m.depart(p, p.Eligible(), m.clock.Now())
	}

	return nil
}

// MarkOnline отмечает игрока в сети. Выбывший игрок остается выбывшим.
func (m *Machine) MarkOnline(playerID string) error {
	p := m.room.Player(playerID)
	if p == nil {
		return ErrPlayerNotInRoom
	}

	p.Connection = models.ConnectionOnline

	return nil
}

// MarkOffline обрабатывает обрыв соединения. Возвращает false, если игрок уже не в сети.
func (m *Machine) MarkOffline(playerID string) bool {
	p := m.room.Player(playerID)
	if p == nil || !p.Online() {
		return false
	}

	if m.room.Status == models.StatusWaiting {
		m.removeFromLobby(p)
		return true
	}

	m.depart(p, p.Eligible(), m.clock.Now())

	return true
}

// Suspend переводит восстановленную после рестарта комнату в ожидание: игроки, бывшие в сети,
// становятся reconnecting, их уход откладывается до Expire
func (m *Machine) Suspend() {
	for _, p := range m.room.Players {
		if p.Online() {
			p.Connection = models.ConnectionReconnecting
		}
	}
}

// Suspended - кого-то из игроков еще ждут после Suspend
func (m *Machine) Suspended() bool {
	for _, p := range m.room.Players {
		if p.Reconnecting() {
			return true
		}
	}

	return false
}

// Expire применяет уход к игрокам, не вернувшимся после Suspend
func (m *Machine) Expire(now time.Time) {
	for _, id := range m.room.Order() {
		p := m.room.Player(id)
		if p == nil || !p.Reconnecting() {
			continue
		}

		if m.room.Status == models.StatusWaiting {
			m.removeFromLobby(p)
			continue
		}

		// до рестарта игрок был в сети
		m.depart(p, p.Alive, now)
	}
}

func (m *Machine) removeFromLobby(p *models.Player) {
	if p.IsHost {
		m.closed = true
		return
	}

	m.room.RemovePlayer(p.ID)
}

func (m *Machine) depart(p *models.Player, wasEligible bool, now time.Time) {
	p.Connection = models.ConnectionOffline
	p.Ready = false
	m.transferHost(p)

	switch m.room.Status {
	case models.StatusPlaying:
		p.Alive = false

		if !wasEligible {
			return
		}

		if m.policy.Mode == ModeDeduction {
			m.afterDeductionDeparture(p.ID, now)
		} else {
			m.fastForwardQuestion(now)
		}

	case models.StatusFinished:
		m.ClearRematchReady(p.ID)
	}
}

func (m *Machine) transferHost(p *models.Player) {
	if !p.IsHost {
		return
	}

	for _, other := range m.room.Players {
		if other.ID != p.ID && other.Online() {
			p.IsHost = false
			other.IsHost = true
			m.room.HostID = other.ID
			return
		}
	}
}

// Start - хост запускает игру из лобби
func (m *Machine) Start(by string) error {
	if m.closed {
		return ErrRoomClosed
	}

	if m.room.Status != models.StatusWaiting {
		return ErrGameInProgress
	}

	p := m.room.Player(by)
	if p == nil {
		return ErrPlayerNotInRoom
	}

	if !p.IsHost {
		return ErrNotHost
	}

	if len(m.room.Online()) < m.policy.MinPlayers {
		return ErrNotEnoughPlayers
	}

	if m.policy.RequireReady {
		for _, other := range m.room.Players {
			if !other.IsHost && other.Online() && !other.Ready {
				return ErrPlayersNotReady
			}
		}
	}

	if m.policy.Mode == ModeDeduction {
		return m.startDeduction(m.clock.Now())
	}

	return m.startTrivia(m.clock.Now())
}

func (m *Machine) ToggleReady(playerID string) error {
	if m.room.Status != models.StatusWaiting {
		return ErrGameInProgress
	}

	p := m.room.Player(playerID)
	if p == nil {
		return ErrPlayerNotInRoom
	}

	p.Ready = !p.Ready

	return nil
}

// SetCriteria меняет предмет/категорию до старта, только хост
func (m *Machine) SetCriteria(by, criteria string) error {
	if m.room.Status != models.StatusWaiting {
		return ErrGameInProgress
	}

	p := m.room.Player(by)
	if p == nil {
		return ErrPlayerNotInRoom
	}

	if !p.IsHost {
		return ErrNotHost
	}

	if !ValidCriteria(m.content, m.policy.Mode, criteria) {
		return ErrUnknownCriteria
	}

	m.room.Criteria = criteria

	return nil
}

func (m *Machine) SendChat(playerID, text string) error {
	p := m.room.Player(playerID)
	if p == nil {
		return ErrPlayerNotInRoom
	}

	if !p.Online() {
		return ErrPlayerOffline
	}

	text = strings.TrimSpace(text)
	if text == "" {
		return ErrEmptyMessage
	}

	if utf8.RuneCountInString(text) > MaxChatRunes {
		return ErrMessageTooLong
	}

	deduction := m.room.Status == models.StatusPlaying && m.policy.Mode == ModeDeduction
	if deduction {
		if m.room.Phase == models.PhasePreparation || m.room.Phase == models.PhaseVoting {
			return ErrChatClosed
		}

		if !p.Alive {
			return ErrPlayerEliminated
		}
	}

	now := m.clock.Now()

	m.room.Chat = append(m.room.Chat, models.ChatMessage{
		ID:         strconv.Itoa(len(m.room.Chat) + 1),
		AuthorID:   p.ID,
		AuthorName: p.DisplayName,
		Text:       text,
		SentAt:     now,
	})

	// сообщение текущего игрока засчитывается как его ход
	if deduction && m.room.Phase == models.PhaseNone && m.room.CurrentActor == p.ID {
		m.recordAction(p.ID, now)
	}

	return nil
}

// Tick продвигает фазы, у которых истек срок. Повторный вызов с тем же now ничего не меняет.
func (m *Machine) Tick(now time.Time) {
	if m.closed || m.room.Status != models.StatusPlaying {
		return
	}

	if m.policy.Mode == ModeDeduction {
		m.tickDeduction(now)
		return
	}

	m.tickTrivia(now)
}

func (m *Machine) finish(winner models.Faction) {
	m.room.Status = models.StatusFinished
	m.room.Winner = winner
	m.room.Phase = models.PhaseNone
	m.room.PhaseStart = time.Time{}
	m.room.CurrentActor = ""
	m.room.RematchReady = map[string]bool{}

	for _, p := range m.room.Players {
		p.Ready = false
	}

	if m.policy.Mode == ModeTrivia {
		m.room.Leaders = leaders(m.room.Players)
	}
}

// Timer возвращает текущий отсчет комнаты: фаза голосования/вопроса или ход игрока
func Timer(room *models.Room, policy Policy) (start time.Time, duration time.Duration, ok bool) {
	if room.Status != models.StatusPlaying {
		return time.Time{}, 0, false
	}

	if room.Phase != models.PhaseNone {
		return room.PhaseStart, policy.PhaseDuration(room.Phase), true
	}

	if policy.Mode == ModeDeduction && room.CurrentActor != "" {
		return room.TurnStart, policy.TurnDuration, true
	}

	return time.Time{}, 0, false
}
