package usecase

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/qrave1/Gamefinity/internal/application/constant"
	"github.com/qrave1/Gamefinity/internal/application/metric"
	"github.com/qrave1/Gamefinity/internal/domain/engine"
	"github.com/qrave1/Gamefinity/internal/domain/models"
	"github.com/qrave1/Gamefinity/internal/domain/runtime"
	"github.com/qrave1/Gamefinity/internal/infra/adapters/memory"
)

const inboxSize = 32

type command struct {
	fn    func(a *roomActor) error
	reply chan error
}

// roomActor - единственный владелец комнаты. Все изменения проходят через inbox,
// после каждого изменения документ комнаты публикуется в хранилище.
type roomActor struct {
	id      string
	kind    models.GameKind
	machine *engine.Machine
	clock   engine.Clock

	store    memory.DocumentStore
	registry memory.RoomRegistry

	// sessions хранит последнюю сессию игрока: обрыв старой сессии после переподключения игнорируется
	sessions map[string]uuid.UUID

	// restoreUntil - до этого момента восстановленная комната ждет игроков и не двигает фазы
	restoreUntil time.Time

	published  map[string]any
	lastStatus models.Status
	lastPhase  models.Phase

	inbox     chan command
	done      chan struct{}
	onDestroy func(roomID string)
}

func newRoomActor(
	machine *engine.Machine,
	clock engine.Clock,
	store memory.DocumentStore,
	registry memory.RoomRegistry,
	onDestroy func(roomID string),
) *roomActor {
	room := machine.Room()

	return &roomActor{
		id:        room.ID,
		kind:      room.Kind,
		machine:   machine,
		clock:     clock,
		store:     store,
		registry:  registry,
		sessions:  make(map[string]uuid.UUID),
		inbox:     make(chan command, inboxSize),
		done:      make(chan struct{}),
		onDestroy: onDestroy,
	}
}

func (a *roomActor) run(ctx context.Context, ticks <-chan time.Time, stop func()) {
	defer stop()

	for {
		select {
		case <-ctx.Done():
			a.destroy(ctx)
			return

		case cmd := <-a.inbox:
			err := cmd.fn(a)
			finished := a.settle(ctx)
			cmd.reply <- err

			if finished {
				return
			}

		case <-ticks:
			now := a.clock.Now()

			if a.machine.Suspended() {
				if now.Before(a.restoreUntil) {
					continue
				}

				a.machine.Expire(now)

				slog.Info("restore grace expired", slog.String(constant.RoomID, a.id))
			}

			a.machine.Tick(now)

			if a.settle(ctx) {
				return
			}
		}
	}
}

// do выполняет fn в горутине актора и ждет результат
func (a *roomActor) do(ctx context.Context, fn func(a *roomActor) error) error {
	cmd := command{fn: fn, reply: make(chan error, 1)}

	select {
	case a.inbox <- cmd:
	case <-a.done:
		return ErrRoomNotFound
	case <-ctx.Done():
		return ctx.Err()
	}

	select {
	case err := <-cmd.reply:
		return err
	case <-a.done:
		// актор мог ответить и сразу завершиться
		select {
		case err := <-cmd.reply:
			return err
		default:
			return ErrRoomNotFound
		}
	case <-ctx.Done():
		return ctx.Err()
	}
}

// settle публикует состояние или уничтожает брошенную комнату. Возвращает true, если актор остановлен.
func (a *roomActor) settle(ctx context.Context) bool {
	if a.machine.Abandoned() {
		a.destroy(ctx)
		return true
	}

	a.publish(ctx)

	return false
}

func (a *roomActor) publish(ctx context.Context) {
	room := a.machine.Room()

	doc, err := models.RoomDocument(room)
	if err != nil {
		slog.Error("build room document", slog.Any(constant.Error, err), slog.String(constant.RoomID, a.id))
		return
	}

	path := models.RoomPath(a.id)

	if a.published == nil {
		a.store.Set(ctx, path, doc)
	} else if fields := memory.Diff(a.published, doc); len(fields) > 0 {
		a.store.Merge(ctx, path, fields)
	}

	a.published = doc
	a.registry.Update(runtime.NewRoomListing(room))

	if room.Status == a.lastStatus && room.Phase == a.lastPhase {
		return
	}

	metric.RecordPhaseTransition(string(a.kind), string(room.Status), string(room.Phase))

	if room.Status == models.StatusFinished && a.lastStatus != models.StatusFinished {
		metric.RecordGameFinished(string(a.kind), string(room.Winner))

		slog.Info(
			"game finished",
			slog.String(constant.RoomID, a.id),
			slog.String(constant.Kind, string(a.kind)),
			slog.String("winner", string(room.Winner)),
		)
	}

	if room.Phase == models.PhaseResult && room.LastResult != nil && room.LastResult.Eliminated != "" {
		metric.IncrementEliminations(string(a.kind))
	}

	a.lastStatus, a.lastPhase = room.Status, room.Phase
}

func (a *roomActor) destroy(ctx context.Context) {
	// удаление должно дойти до хранилища и при остановке сервера
	a.store.Delete(context.WithoutCancel(ctx), models.RoomPath(a.id))
	a.registry.Remove(a.id)

	metric.DecrementRoomsActive(string(a.kind))

	if a.onDestroy != nil {
		a.onDestroy(a.id)
	}

	slog.Info("room destroyed", slog.String(constant.RoomID, a.id), slog.String(constant.Kind, string(a.kind)))

	close(a.done)
}
