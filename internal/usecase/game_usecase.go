package usecase

import (
	"context"
)

// GameUsecase передает игровые команды актору комнаты. Проверки правил делает engine.Machine.
type GameUsecase interface {
	StartGame(ctx context.Context, roomID, playerID string) error
	ToggleReady(ctx context.Context, roomID, playerID string) error
	SelectCriteria(ctx context.Context, roomID, playerID, criteria string) error

	SendChat(ctx context.Context, roomID, playerID, text string) error
	EndTurn(ctx context.Context, roomID, playerID string) error
	CastVote(ctx context.Context, roomID, playerID, targetID string) error
	SubmitAnswer(ctx context.Context, roomID, playerID string, questionIndex, choice int) error

	SetRematchReady(ctx context.Context, roomID, playerID string) error
}

type gameUsecase struct {
	rooms dispatcher
}

func NewGameUsecase(rooms RoomUsecase) GameUsecase {
	return &gameUsecase{rooms: rooms}
}

func (uc *gameUsecase) StartGame(ctx context.Context, roomID, playerID string) error {
	return uc.rooms.dispatch(ctx, roomID, func(a *roomActor) error {
		return a.machine.Start(playerID)
	})
}

func (uc *gameUsecase) ToggleReady(ctx context.Context, roomID, playerID string) error {
	return uc.rooms.dispatch(ctx, roomID, func(a *roomActor) error {
		return a.machine.ToggleReady(playerID)
	})
}

func (uc *gameUsecase) SelectCriteria(ctx context.Context, roomID, playerID, criteria string) error {
	return uc.rooms.dispatch(ctx, roomID, func(a *roomActor) error {
		return a.machine.SetCriteria(playerID, criteria)
	})
}

func (uc *gameUsecase) SendChat(ctx context.Context, roomID, playerID, text string) error {
	return uc.rooms.dispatch(ctx, roomID, func(a *roomActor) error {
		return a.machine.SendChat(playerID, text)
	})
}

func (uc *gameUsecase) EndTurn(ctx context.Context, roomID, playerID string) error {
	return uc.rooms.dispatch(ctx, roomID, func(a *roomActor) error {
		return a.machine.EndTurn(playerID)
	})
}

func (uc *gameUsecase) CastVote(ctx context.Context, roomID, playerID, targetID string) error {
	return uc.rooms.dispatch(ctx, roomID, func(a *roomActor) error {
		return a.machine.CastVote(playerID, targetID)
	})
}

func (uc *gameUsecase) SubmitAnswer(ctx context.Context, roomID, playerID string, questionIndex, choice int) error {
	return uc.rooms.dispatch(ctx, roomID, func(a *roomActor) error {
		return a.machine.SubmitAnswer(playerID, questionIndex, choice)
	})
}

// SetRematchReady отмечает готовность к реваншу. Снятие флага при обрыве делает PresenceUsecase.
func (uc *gameUsecase) SetRematchReady(ctx context.Context, roomID, playerID string) error {
	return uc.rooms.dispatch(ctx, roomID, func(a *roomActor) error {
		return a.machine.SetRematchReady(playerID)
	})
}
