package handlers

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/qrave1/Gamefinity/internal/application/constant"
	"github.com/qrave1/Gamefinity/internal/domain/engine"
	"github.com/qrave1/Gamefinity/internal/usecase"
)

// statusFor переводит доменные ошибки в HTTP статус и текст для клиента
func statusFor(err error) (int, string) {
	switch {
	case errors.Is(err, usecase.ErrRoomNotFound):
		return http.StatusNotFound, "room not found"

	case errors.Is(err, usecase.ErrNotEntitled):
		return http.StatusForbidden, err.Error()

	case errors.Is(err, engine.ErrNotHost),
		errors.Is(err, engine.ErrPlayerNotInRoom):
		return http.StatusForbidden, err.Error()

	case errors.Is(err, engine.ErrUnknownKind),
		errors.Is(err, engine.ErrUnknownCriteria),
		errors.Is(err, engine.ErrCriteriaRequired),
		errors.Is(err, engine.ErrEmptyMessage),
		errors.Is(err, engine.ErrMessageTooLong),
		errors.Is(err, engine.ErrInvalidTarget),
		errors.Is(err, engine.ErrInvalidChoice),
		errors.Is(err, engine.ErrUnsupportedAction),
		errors.Is(err, usecase.ErrInvalidDisplayName),
		errors.Is(err, errMalformedMessage),
		errors.Is(err, errUnknownEvent),
		errors.Is(err, errNotSubscribed):
		return http.StatusBadRequest, err.Error()

	case errors.Is(err, errRateLimited):
		return http.StatusTooManyRequests, err.Error()

	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusServiceUnavailable, "room is busy, try again"

	case errors.Is(err, engine.ErrRoomFull),
		errors.Is(err, engine.ErrRoomClosed),
		errors.Is(err, engine.ErrGameInProgress),
		errors.Is(err, engine.ErrGameNotStarted),
		errors.Is(err, engine.ErrGameNotFinished),
		errors.Is(err, engine.ErrPlayerOffline),
		errors.Is(err, engine.ErrPlayerEliminated),
		errors.Is(err, engine.ErrNotEnoughPlayers),
		errors.Is(err, engine.ErrPlayersNotReady),
		errors.Is(err, engine.ErrNotYourTurn),
		errors.Is(err, engine.ErrNotVotingPhase),
		errors.Is(err, engine.ErrAlreadyVoted),
		errors.Is(err, engine.ErrChatClosed),
		errors.Is(err, engine.ErrNoOpenQuestion),
		errors.Is(err, engine.ErrStaleQuestion),
		errors.Is(err, engine.ErrAlreadyAnswered):
		return http.StatusConflict, err.Error()

	default:
		return http.StatusInternalServerError, "internal error"
	}
}

func errorJSON(c echo.Context, err error) error {
	status, message := statusFor(err)

	if status >= http.StatusInternalServerError {
		slog.Error(
			"handle request",
			slog.Any(constant.Error, err),
			slog.String("uri", c.Request().RequestURI),
		)
	}

	return c.JSON(status, map[string]string{"error": message})
}
