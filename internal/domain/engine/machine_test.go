package engine

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/qrave1/Gamefinity/internal/domain/models"
)

// startedBrainMyst возвращает игру из 4 игроков a,b,c,d, шпион - b
func startedBrainMyst(t *testing.T) (*Machine, *fakeClock) {
	t.Helper()

	m, clock := newTestMachine(models.KindBrainMyst, "Math", 1)
	for _, id := range []string{"a", "b", "c", "d"} {
		require.NoError(t, m.Join(ident(id)))
	}

	return m, clock
}

// finishTurns проводит всех живых игроков через ход
func finishTurns(t *testing.T, m *Machine) {
	t.Helper()

	for m.Room().Phase == models.PhaseNone && m.Room().Status == models.StatusPlaying {
		require.NoError(t, m.EndTurn(m.Room().CurrentActor))
	}
}

func openVoting(t *testing.T, m *Machine, clock *fakeClock) {
	t.Helper()

	finishTurns(t, m)
	require.Equal(t, models.PhasePreparation, m.Room().Phase)

	clock.Advance(5 * time.Second)
	m.Tick(clock.Now())
	require.Equal(t, models.PhaseVoting, m.Room().Phase)
}

func TestJoin_AutoStartAtCapacity(t *testing.T) {
	m, _ := newTestMachine(models.KindBrainMyst, "Math", 2)

	for _, id := range []string{"a", "b", "c"} {
		require.NoError(t, m.Join(ident(id)))
		assert.Equal(t, models.StatusWaiting, m.Room().Status)
	}

	require.NoError(t, m.Join(ident("d")))

	room := m.Room()
	assert.Equal(t, models.StatusPlaying, room.Status)
	assert.Equal(t, 1, room.Round)
	assert.Equal(t, "c", room.SecretRole)
	assert.Equal(t, "Algebra", room.Topic)
	assert.Equal(t, "a", room.CurrentActor)
	assert.Equal(t, models.PhaseNone, room.Phase)

	spies := 0
	for _, p := range room.Players {
		assert.True(t, p.Alive)
		if p.ID == room.SecretRole {
			spies++
		}
	}
	assert.Equal(t, 1, spies)

	assert.ErrorIs(t, m.Join(ident("e")), ErrGameInProgress)
}

func TestJoin_Rejoin(t *testing.T) {
	m, _ := newTestMachine(models.KindQuizBlitz, "Trivia", 0)
	require.NoError(t, m.Join(ident("a")))
	require.NoError(t, m.Join(ident("a")))

	assert.Len(t, m.Room().Players, 1)
	assert.Equal(t, "a", m.Room().HostID)
}

func TestJoin_Full(t *testing.T) {
	m, _ := newTestMachine(models.KindQuizBlitz, "Trivia", 0)
	for _, id := range []string{"a", "b", "c", "d", "e"} {
		require.NoError(t, m.Join(ident(id)))
	}

	assert.ErrorIs(t, m.Join(ident("f")), ErrRoomFull)
}

func TestTurnRotation(t *testing.T) {
	m, clock := startedBrainMyst(t)
	room := m.Room()

	assert.ErrorIs(t, m.EndTurn("b"), ErrNotYourTurn)

	require.NoError(t, m.EndTurn("a"))
	assert.Equal(t, "b", room.CurrentActor)

	// сообщение в чат засчитывается как ход
	require.NoError(t, m.SendChat("b", "it has numbers"))
	assert.Equal(t, "c", room.CurrentActor)

	// чужое сообщение ход не передает
	require.NoError(t, m.SendChat("a", "hmm"))
	assert.Equal(t, "c", room.CurrentActor)

	// таймаут хода
	clock.Advance(15 * time.Second)
	m.Tick(clock.Now())
	assert.Equal(t, "d", room.CurrentActor)
	assert.True(t, room.TurnsTaken["c"])

	require.NoError(t, m.EndTurn("d"))
	assert.Equal(t, models.PhasePreparation, room.Phase)
	assert.Equal(t, clock.Now(), room.PhaseStart)
	assert.Empty(t, room.Votes)
}

func TestDisconnect_ExcludedFromRoundComplete(t *testing.T) {
	m, _ := startedBrainMyst(t)
	room := m.Room()

	assert.True(t, m.MarkOffline("c"))
	assert.False(t, m.MarkOffline("c"), "second disconnect is a no-op")

	player := room.Player("c")
	assert.False(t, player.Alive)
	assert.Equal(t, models.ConnectionOffline, player.Connection)

	require.NoError(t, m.EndTurn("a"))
	require.NoError(t, m.EndTurn("b"))
	assert.Equal(t, "d", room.CurrentActor, "offline player is skipped")

	require.NoError(t, m.EndTurn("d"))
	assert.Equal(t, models.PhasePreparation, room.Phase)
}

func TestDisconnect_CurrentActorPassesTurn(t *testing.T) {
	m, _ := startedBrainMyst(t)

	assert.True(t, m.MarkOffline("a"))
	assert.Equal(t, "b", m.Room().CurrentActor)
	assert.Equal(t, "b", m.Room().HostID, "host moves to next online player")
}

func TestVoting_NoActorOutsideTurns(t *testing.T) {
	m, clock := startedBrainMyst(t)
	room := m.Room()

	finishTurns(t, m)
	require.Equal(t, models.PhasePreparation, room.Phase)
	assert.Empty(t, room.CurrentActor)
	assert.True(t, room.TurnStart.IsZero())

	clock.Advance(5 * time.Second)
	m.Tick(clock.Now())
	require.Equal(t, models.PhaseVoting, room.Phase)

	assert.True(t, m.MarkOffline("d"))
	assert.Empty(t, room.CurrentActor)

	start, d, ok := Timer(room, m.Policy())
	require.True(t, ok)
	assert.Equal(t, room.PhaseStart, start)
	assert.Equal(t, 30*time.Second, d)

	for _, id := range []string{"a", "b", "c"} {
		require.NoError(t, m.CastVote(id, models.SkipVote))
	}

	clock.Advance(3 * time.Second)
	m.Tick(clock.Now())
	require.Equal(t, models.PhaseResult, room.Phase)
	assert.Empty(t, room.CurrentActor)

	clock.Advance(10 * time.Second)
	m.Tick(clock.Now())

	// следующий раунд начинается с живого игрока в сети
	require.Equal(t, models.PhaseNone, room.Phase)
	actor := room.Player(room.CurrentActor)
	require.NotNil(t, actor)
	assert.True(t, actor.Eligible())
}

func TestDisconnect_SpyLeavingEndsGame(t *testing.T) {
	m, _ := startedBrainMyst(t)

	m.MarkOffline("b")

	assert.Equal(t, models.StatusFinished, m.Room().Status)
	assert.Equal(t, models.FactionInnocents, m.Room().Winner)
	assert.NotNil(t, m.Room().RematchReady)
}

func TestVoting_SpyEliminated(t *testing.T) {
	m, clock := startedBrainMyst(t)
	room := m.Room()

	openVoting(t, m, clock)

	require.NoError(t, m.CastVote("a", "b"))
	assert.ErrorIs(t, m.CastVote("a", "c"), ErrAlreadyVoted)
	require.NoError(t, m.CastVote("c", "b"))
	require.NoError(t, m.CastVote("d", "b"))
	require.NoError(t, m.CastVote("b", "a"))

	// все проголосовали - осталось не больше grace
	assert.Equal(t, 3*time.Second, Remaining(30*time.Second, room.PhaseStart, clock.Now()))

	clock.Advance(3 * time.Second)
	m.Tick(clock.Now())

	require.Equal(t, models.PhaseResult, room.Phase)
	require.NotNil(t, room.LastResult)
	assert.Equal(t, "b", room.LastResult.Eliminated)
	assert.Equal(t, 2, room.LastResult.Threshold)
	assert.False(t, room.Player("b").Alive)
	assert.Equal(t, models.FactionInnocents, room.Winner)
	assert.Equal(t, models.StatusPlaying, room.Status, "winner shown after result phase")

	// повторный тик в тот же момент ничего не меняет
	m.Tick(clock.Now())
	assert.Equal(t, models.PhaseResult, room.Phase)

	clock.Advance(10 * time.Second)
	m.Tick(clock.Now())

	assert.Equal(t, models.StatusFinished, room.Status)
	assert.Equal(t, models.PhaseNone, room.Phase)
	assert.Empty(t, room.CurrentActor)
}

func TestVoting_InnocentEliminatedThenSpyWins(t *testing.T) {
	m, clock := startedBrainMyst(t)
	room := m.Room()
	alive := aliveCount(room)

	openVoting(t, m, clock)
	require.NoError(t, m.CastVote("a", "c"))
	require.NoError(t, m.CastVote("b", "c"))
	require.NoError(t, m.CastVote("d", "c"))
	require.NoError(t, m.CastVote("c", models.SkipVote))

	clock.Advance(3 * time.Second)
	m.Tick(clock.Now())
	assert.Equal(t, "c", room.LastResult.Eliminated)
	assert.Equal(t, models.FactionNone, room.Winner)
	assert.LessOrEqual(t, aliveCount(room), alive)
	alive = aliveCount(room)

	clock.Advance(10 * time.Second)
	m.Tick(clock.Now())

	assert.Equal(t, 2, room.Round)
	assert.Equal(t, models.PhaseNone, room.Phase)
	assert.Equal(t, "a", room.CurrentActor)
	assert.Empty(t, room.Votes)
	assert.Empty(t, room.TurnsTaken)

	// второй раунд: c выбыл, ходят a, b, d
	assert.ErrorIs(t, m.SendChat("c", "boo"), ErrPlayerEliminated)

	openVoting(t, m, clock)
	assert.ErrorIs(t, m.CastVote("c", "a"), ErrPlayerEliminated)
	assert.ErrorIs(t, m.CastVote("a", "c"), ErrInvalidTarget)
	require.NoError(t, m.CastVote("a", "d"))
	require.NoError(t, m.CastVote("b", "d"))
	require.NoError(t, m.CastVote("d", models.SkipVote))

	clock.Advance(3 * time.Second)
	m.Tick(clock.Now())
	assert.LessOrEqual(t, aliveCount(room), alive)
	assert.Equal(t, models.FactionSpy, room.Winner)

	clock.Advance(10 * time.Second)
	m.Tick(clock.Now())
	assert.Equal(t, models.StatusFinished, room.Status)
	assert.Equal(t, models.FactionSpy, room.Winner)
}

func TestVoting_TieKeepsEveryone(t *testing.T) {
	m, clock := startedBrainMyst(t)
	room := m.Room()

	openVoting(t, m, clock)
	require.NoError(t, m.CastVote("a", "b"))
	require.NoError(t, m.CastVote("b", "a"))

	clock.Advance(30 * time.Second)
	m.Tick(clock.Now())

	assert.True(t, room.LastResult.Tie)
	assert.Empty(t, room.LastResult.Eliminated)
	assert.Equal(t, 4, aliveCount(room))
}

func TestVoting_OutsidePhase(t *testing.T) {
	m, _ := startedBrainMyst(t)

	assert.ErrorIs(t, m.CastVote("a", "b"), ErrNotVotingPhase)
}

func TestChat(t *testing.T) {
	m, clock := startedBrainMyst(t)

	assert.ErrorIs(t, m.SendChat("a", "   "), ErrEmptyMessage)
	assert.ErrorIs(t, m.SendChat("a", strings.Repeat("x", MaxChatRunes+1)), ErrMessageTooLong)
	assert.ErrorIs(t, m.SendChat("zz", "hi"), ErrPlayerNotInRoom)

	finishTurns(t, m)
	assert.ErrorIs(t, m.SendChat("a", "hi"), ErrChatClosed)

	clock.Advance(5 * time.Second)
	m.Tick(clock.Now())
	assert.ErrorIs(t, m.SendChat("a", "hi"), ErrChatClosed)

	clock.Advance(30 * time.Second)
	m.Tick(clock.Now())
	require.Equal(t, models.PhaseResult, m.Room().Phase)
	require.NoError(t, m.SendChat("a", " gg "))

	last := m.Room().Chat[len(m.Room().Chat)-1]
	assert.Equal(t, "gg", last.Text)
	assert.Equal(t, "a", last.AuthorID)
}

func TestLobby_HostCancelClosesRoom(t *testing.T) {
	m, _ := newTestMachine(models.KindQuizBlitz, "Trivia", 0)
	for _, id := range []string{"a", "b", "c"} {
		require.NoError(t, m.Join(ident(id)))
	}

	require.NoError(t, m.Leave("b"))
	assert.Len(t, m.Room().Players, 2)
	assert.False(t, m.Closed())

	require.NoError(t, m.Leave("a"))
	assert.True(t, m.Closed())
	assert.True(t, m.Abandoned())
	assert.ErrorIs(t, m.Join(ident("d")), ErrRoomClosed)
}

func TestLobby_DisconnectIsLeave(t *testing.T) {
	m, _ := newTestMachine(models.KindQuizBlitz, "Trivia", 0)
	require.NoError(t, m.Join(ident("a")))
	require.NoError(t, m.Join(ident("b")))

	assert.True(t, m.MarkOffline("b"))
	assert.Nil(t, m.Room().Player("b"))
	assert.False(t, m.MarkOffline("b"))
}

func TestLeave_UnknownPlayer(t *testing.T) {
	m, _ := newTestMachine(models.KindQuizBlitz, "Trivia", 0)

	assert.ErrorIs(t, m.Leave("ghost"), ErrPlayerNotInRoom)
}

func TestTimer(t *testing.T) {
	m, clock := startedBrainMyst(t)
	policy := m.Policy()

	start, d, ok := Timer(m.Room(), policy)
	require.True(t, ok)
	assert.Equal(t, t0, start)
	assert.Equal(t, policy.TurnDuration, d)

	openVoting(t, m, clock)
	start, d, ok = Timer(m.Room(), policy)
	require.True(t, ok)
	assert.Equal(t, clock.Now(), start)
	assert.Equal(t, policy.VotingDuration, d)
}

func TestSuspend_WaitsForReturningPlayers(t *testing.T) {
	m, clock := startedBrainMyst(t)
	room := m.Room()

	m.Suspend()
	assert.Empty(t, room.Online())
	assert.True(t, m.Suspended())
	assert.False(t, m.Abandoned(), "suspended room waits for reconnects")
	assert.Equal(t, 4, aliveCount(room), "nobody is eliminated while suspended")

	require.NoError(t, m.MarkOnline("a"))
	require.NoError(t, m.Join(ident("b")))
	require.NoError(t, m.MarkOnline("c"))
	assert.True(t, m.Suspended())
	assert.True(t, room.Player("d").Reconnecting())

	clock.Advance(time.Minute)
	m.Expire(clock.Now())

	assert.False(t, m.Suspended())
	assert.False(t, m.Abandoned())
	assert.Equal(t, models.StatusPlaying, room.Status)
	assert.False(t, room.Player("d").Alive)
	assert.Equal(t, []string{"a", "b", "c"}, room.Eligible())
	assert.Equal(t, "a", room.CurrentActor)
}

func TestSuspend_NobodyReturns(t *testing.T) {
	m, clock := startedBrainMyst(t)

	m.Suspend()
	m.Expire(clock.Now())

	assert.False(t, m.Suspended())
	assert.True(t, m.Abandoned())
	assert.Equal(t, models.StatusFinished, m.Room().Status)
}

func TestSuspend_LobbyHostMissing(t *testing.T) {
	m, clock := newTestMachine(models.KindQuizBlitz, "Trivia", 0)
	require.NoError(t, m.Join(ident("a")))
	require.NoError(t, m.Join(ident("b")))

	m.Suspend()
	require.NoError(t, m.MarkOnline("b"))
	m.Expire(clock.Now())

	assert.True(t, m.Closed())
	assert.True(t, m.Abandoned())
}
