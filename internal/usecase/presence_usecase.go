package usecase

import (
	"context"
	"errors"
	"log/slog"

	"github.com/google/uuid"

	"github.com/qrave1/Gamefinity/internal/application/constant"
	"github.com/qrave1/Gamefinity/internal/infra/adapters/memory"
)

// PresenceUsecase связывает соединение игрока с его статусом в комнате
type PresenceUsecase interface {
	// MarkOnline отмечает игрока в сети и вешает на сессию хук обрыва
	MarkOnline(ctx context.Context, roomID, playerID string, session *memory.Session) error
	// MarkOffline игнорируется, если игрок уже переподключился другой сессией
	MarkOffline(ctx context.Context, roomID, playerID string, sessionID uuid.UUID) error
	// Release снимает хук обрыва комнаты с сессии и отмечает игрока офлайн (соединение перешло в другую комнату)
	Release(ctx context.Context, roomID, playerID string, session *memory.Session) error
}

type presenceUsecase struct {
	rooms dispatcher
}

func NewPresenceUsecase(rooms RoomUsecase) PresenceUsecase {
	return &presenceUsecase{rooms: rooms}
}

func presenceKey(roomID string) string {
	return "presence:" + roomID
}

func (uc *presenceUsecase) MarkOnline(ctx context.Context, roomID, playerID string, session *memory.Session) error {
	err := uc.rooms.dispatch(ctx, roomID, func(a *roomActor) error {
		if err := a.machine.MarkOnline(playerID); err != nil {
			return err
		}

		a.sessions[playerID] = session.ID()

		return nil
	})
	if err != nil {
		return err
	}

	// хук выполняется вне горутины актора: если сессия уже закрыта, он сработает сразу
	session.OnDisconnect(presenceKey(roomID), func() {
		err := uc.MarkOffline(context.Background(), roomID, playerID, session.ID())
		if err != nil && !errors.Is(err, ErrRoomNotFound) {
			slog.Error(
				"mark player offline",
				slog.Any(constant.Error, err),
				slog.String(constant.RoomID, roomID),
				slog.String(constant.PlayerID, playerID),
			)
		}
	})

	return nil
}

func (uc *presenceUsecase) MarkOffline(ctx context.Context, roomID, playerID string, sessionID uuid.UUID) error {
	return uc.rooms.dispatch(ctx, roomID, func(a *roomActor) error {
		current, ok := a.sessions[playerID]
		if !ok || current != sessionID {
			return nil
		}

		delete(a.sessions, playerID)

		if a.machine.MarkOffline(playerID) {
			slog.Info(
				"player went offline",
				slog.String(constant.RoomID, roomID),
				slog.String(constant.PlayerID, playerID),
			)
		}

		return nil
	})
}

func (uc *presenceUsecase) Release(ctx context.Context, roomID, playerID string, session *memory.Session) error {
	session.Cancel(presenceKey(roomID))

	return uc.MarkOffline(ctx, roomID, playerID, session.ID())
}
