package handlers

import (
	"context"
	"errors"
	"log/slog"
	"math"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/qrave1/Gamefinity/internal/application/constant"
	"github.com/qrave1/Gamefinity/internal/domain/events"
	"github.com/qrave1/Gamefinity/internal/domain/models"
	"github.com/qrave1/Gamefinity/internal/domain/output"
	"github.com/qrave1/Gamefinity/internal/infra/adapters/memory"
	"github.com/qrave1/Gamefinity/internal/usecase"
)

type roomUpdate struct {
	roomID   string
	snapshot any
}

// wsClient - одно WS соединение: текущая комната, подписка на ее документ
// и выдача событий. Снапшоты схлопываются: клиент получает последнее состояние.
type wsClient struct {
	h        *WebSocketHandler
	session  *memory.Session
	identity models.Identity
	limiter  *rate.Limiter

	mu          sync.Mutex
	roomID      string
	unsubscribe func()
	pending     *roomUpdate
	notify      chan struct{}

	// дальше только горутина writeLoop
	lastRoomID   string
	lastSnapshot any
	last         *output.RoomView
}

func newWSClient(h *WebSocketHandler, session *memory.Session, identity models.Identity) *wsClient {
	return &wsClient{
		h:        h,
		session:  session,
		identity: identity,
		limiter:  rate.NewLimiter(rate.Limit(h.cfg.Game.WSMessagesPerSecond), h.cfg.Game.WSBurst),
		notify:   make(chan struct{}, 1),
	}
}

func (c *wsClient) handle(ctx context.Context, msg *events.Message) error {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	rooms, game := c.h.roomUsecase, c.h.gameUsecase
	playerID := c.identity.ID

	switch msg.Type {
	case events.CreateLobby, events.FindOrJoin:
		ev, err := decode[events.LobbyEvent](msg)
		if err != nil {
			return err
		}

		var view *output.RoomView
		if msg.Type == events.CreateLobby {
			view, err = rooms.CreateRoom(ctx, c.identity, ev.Kind, ev.Criteria)
		} else {
			view, err = rooms.FindOrJoin(ctx, c.identity, ev.Kind, ev.Criteria)
		}
		if err != nil {
			return err
		}

		return c.attach(ctx, view.ID)

	case events.JoinLobby:
		ev, err := decode[events.JoinLobbyEvent](msg)
		if err != nil {
			return err
		}

		view, err := rooms.JoinByCode(ctx, c.identity, ev.Code)
		if err != nil {
			return err
		}

		return c.attach(ctx, view.ID)

	case events.Subscribe:
		ev, err := decode[events.SubscribeEvent](msg)
		if err != nil {
			return err
		}

		return c.attach(ctx, ev.RoomID)

	case events.LeaveLobby:
		roomID, err := c.currentRoom()
		if err != nil {
			return err
		}

		// отписка до выхода: уходящий не должен получить roomClosed с причиной closed
		c.detach()

		if err = rooms.Leave(ctx, roomID, playerID); err != nil && !errors.Is(err, usecase.ErrRoomNotFound) {
			return err
		}

		c.send(events.RoomClosed, events.RoomClosedEvent{RoomID: roomID, Reason: events.ReasonLeft})

		return nil

	case events.ToggleReady:
		return c.inRoom(func(roomID string) error {
			return game.ToggleReady(ctx, roomID, playerID)
		})

	case events.SelectCategory:
		ev, err := decode[events.SelectCategoryEvent](msg)
		if err != nil {
			return err
		}

		return c.inRoom(func(roomID string) error {
			return game.SelectCriteria(ctx, roomID, playerID, ev.Criteria)
		})

	case events.StartGame:
		return c.inRoom(func(roomID string) error {
			return game.StartGame(ctx, roomID, playerID)
		})

	case events.SendChat:
		ev, err := decode[events.SendChatEvent](msg)
		if err != nil {
			return err
		}

		return c.inRoom(func(roomID string) error {
			return game.SendChat(ctx, roomID, playerID, ev.Text)
		})

	case events.EndTurn:
		return c.inRoom(func(roomID string) error {
			return game.EndTurn(ctx, roomID, playerID)
		})

	case events.CastVote:
		ev, err := decode[events.CastVoteEvent](msg)
		if err != nil {
			return err
		}

		return c.inRoom(func(roomID string) error {
			return game.CastVote(ctx, roomID, playerID, ev.TargetID)
		})

	case events.SubmitAnswer:
		ev, err := decode[events.SubmitAnswerEvent](msg)
		if err != nil {
			return err
		}

		return c.inRoom(func(roomID string) error {
			return game.SubmitAnswer(ctx, roomID, playerID, ev.QuestionIndex, ev.Choice)
		})

	case events.RematchReady:
		return c.inRoom(func(roomID string) error {
			return game.SetRematchReady(ctx, roomID, playerID)
		})

	case events.Ping:
		c.send(events.Pong, nil)
		return nil

	default:
		return errUnknownEvent
	}
}

// attach делает комнату текущей: игрок отмечается в сети, соединение подписывается на документ
func (c *wsClient) attach(ctx context.Context, roomID string) error {
	if err := c.h.presenceUsecase.MarkOnline(ctx, roomID, c.identity.ID, c.session); err != nil {
		return err
	}

	c.mu.Lock()
	prevRoom, prevUnsubscribe := c.roomID, c.unsubscribe
	c.roomID, c.unsubscribe, c.pending = roomID, nil, nil
	c.mu.Unlock()

	if prevUnsubscribe != nil {
		prevUnsubscribe()
	}

	if prevRoom != "" && prevRoom != roomID {
		// соединение ушло в другую комнату
		err := c.h.presenceUsecase.Release(ctx, prevRoom, c.identity.ID, c.session)
		if err != nil && !errors.Is(err, usecase.ErrRoomNotFound) {
			slog.Error(
				"leave previous room",
				slog.Any(constant.Error, err),
				slog.String(constant.RoomID, prevRoom),
				slog.String(constant.UserID, c.identity.ID),
			)
		}
	}

	unsubscribe := c.h.store.Subscribe(models.RoomPath(roomID), func(snapshot any) {
		c.enqueue(roomID, snapshot)
	})

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.roomID != roomID {
		unsubscribe()
		return nil
	}

	c.unsubscribe = unsubscribe

	return nil
}

func (c *wsClient) detach() {
	c.mu.Lock()
	unsubscribe := c.unsubscribe
	c.roomID, c.unsubscribe, c.pending = "", nil, nil
	c.mu.Unlock()

	if unsubscribe != nil {
		unsubscribe()
	}
}

func (c *wsClient) detachRoom(roomID string) {
	c.mu.Lock()
	if c.roomID != roomID {
		c.mu.Unlock()
		return
	}
	c.mu.Unlock()

	c.detach()
}

func (c *wsClient) currentRoom() (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.roomID == "" {
		return "", errNotSubscribed
	}

	return c.roomID, nil
}

func (c *wsClient) inRoom(fn func(roomID string) error) error {
	roomID, err := c.currentRoom()
	if err != nil {
		return err
	}

	return fn(roomID)
}

// enqueue вызывается из горутины актора и не должен блокироваться
func (c *wsClient) enqueue(roomID string, snapshot any) {
	c.mu.Lock()
	if c.roomID != roomID {
		c.mu.Unlock()
		return
	}
	c.pending = &roomUpdate{roomID: roomID, snapshot: snapshot}
	c.mu.Unlock()

	select {
	case c.notify <- struct{}{}:
	default:
	}
}

func (c *wsClient) writeLoop(done <-chan struct{}) {
	ticker := time.NewTicker(timerPeriod)
	defer ticker.Stop()

	for {
		select {
		case <-done:
			return
		case <-c.notify:
			c.flush()
		case <-ticker.C:
			c.sendTimer()
		}
	}
}

func (c *wsClient) flush() {
	c.mu.Lock()
	upd := c.pending
	c.pending = nil
	c.mu.Unlock()

	if upd == nil {
		return
	}

	view, err := c.h.roomUsecase.View(upd.snapshot, c.identity.ID)
	if err != nil {
		if errors.Is(err, usecase.ErrRoomNotFound) {
			c.last, c.lastSnapshot, c.lastRoomID = nil, nil, ""
			c.detachRoom(upd.roomID)
			c.send(events.RoomClosed, events.RoomClosedEvent{RoomID: upd.roomID, Reason: events.ReasonClosed})

			return
		}

		slog.Error("build room view", slog.Any(constant.Error, err), slog.String(constant.RoomID, upd.roomID))

		return
	}

	prev := c.last
	if c.lastRoomID != upd.roomID {
		prev = nil
	}

	c.sendTransitions(prev, view)
	c.send(events.LobbyUpdated, view)

	c.last, c.lastSnapshot, c.lastRoomID = view, upd.snapshot, upd.roomID
}

// sendTransitions выводит события смены состояния из двух последовательных снапшотов
func (c *wsClient) sendTransitions(prev, next *output.RoomView) {
	was := func(status models.Status) bool {
		return prev != nil && prev.Status == status
	}

	if next.Status == models.StatusPlaying && !was(models.StatusPlaying) {
		c.send(events.GameStarted, events.GameStartedEvent{
			RoomID: next.ID,
			Kind:   next.Kind,
			Round:  next.Round,
			IsSpy:  next.IsSpy,
			Topic:  next.Topic,
		})
	}

	if next.Status == models.StatusPlaying && next.Question != nil &&
		(prev == nil || prev.Question == nil || prev.Question.Index != next.Question.Index || !was(models.StatusPlaying)) {
		var durationMs int64
		if next.Timer != nil {
			durationMs = next.Timer.DurationMs
		}

		c.send(events.StartQuestion, events.StartQuestionEvent{
			RoomID:     next.ID,
			Question:   next.Question,
			Total:      next.QuestionCount,
			DurationMs: durationMs,
		})
	}

	if next.Status == models.StatusFinished && !was(models.StatusFinished) {
		c.send(events.GameFinished, events.GameFinishedEvent{
			RoomID:     next.ID,
			Winner:     next.Winner,
			Leaders:    next.Leaders,
			SecretRole: next.SecretRole,
			Topic:      next.Topic,
		})
	}
}

func (c *wsClient) sendTimer() {
	if c.lastSnapshot == nil {
		return
	}

	view, err := c.h.roomUsecase.View(c.lastSnapshot, c.identity.ID)
	if err != nil || view.Timer == nil {
		return
	}

	c.send(events.TimerTick, events.TimerTickEvent{
		RoomID:      view.ID,
		Phase:       view.Phase,
		Remaining:   int(math.Ceil(float64(view.Timer.RemainingMs) / 1000)),
		RemainingMs: view.Timer.RemainingMs,
	})
}

func (c *wsClient) send(eventType string, data any) {
	err := c.h.wsConnRepo.Write(c.session.ID(), events.Outgoing{Type: eventType, Data: data})
	if err != nil && !errors.Is(err, memory.ErrConnectionNotFound) {
		slog.Debug("send websocket event", slog.Any(constant.Error, err), slog.String(constant.Event, eventType))
	}
}

func (c *wsClient) sendError(err error) {
	_, message := statusFor(err)
	c.send(events.Error, events.ErrorEvent{Message: message})
}
