package handlers

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/qrave1/Gamefinity/internal/domain/engine"
	"github.com/qrave1/Gamefinity/internal/domain/input"
	"github.com/qrave1/Gamefinity/internal/infra/appctx"
	"github.com/qrave1/Gamefinity/internal/usecase"
)

type RoomHandler struct {
	roomUsecase usecase.RoomUsecase
}

func NewRoomHandler(roomUsecase usecase.RoomUsecase) *RoomHandler {
	return &RoomHandler{roomUsecase: roomUsecase}
}

func (h *RoomHandler) Catalog(c echo.Context) error {
	return c.JSON(http.StatusOK, h.roomUsecase.Catalog())
}

func (h *RoomHandler) Create(c echo.Context) error {
	identity, ok := appctx.Identity(c.Request().Context())
	if !ok {
		return c.JSON(http.StatusUnauthorized, map[string]string{"error": "invalid user in context"})
	}

	var req input.LobbyInput
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid request"})
	}

	view, err := h.roomUsecase.CreateRoom(c.Request().Context(), identity, req.Kind, req.Criteria)
	if err != nil {
		return errorJSON(c, err)
	}

	return c.JSON(http.StatusCreated, view)
}

func (h *RoomHandler) Match(c echo.Context) error {
	identity, ok := appctx.Identity(c.Request().Context())
	if !ok {
		return c.JSON(http.StatusUnauthorized, map[string]string{"error": "invalid user in context"})
	}

	var req input.LobbyInput
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid request"})
	}

	view, err := h.roomUsecase.FindOrJoin(c.Request().Context(), identity, req.Kind, req.Criteria)
	if err != nil {
		return errorJSON(c, err)
	}

	return c.JSON(http.StatusOK, view)
}

func (h *RoomHandler) Join(c echo.Context) error {
	identity, ok := appctx.Identity(c.Request().Context())
	if !ok {
		return c.JSON(http.StatusUnauthorized, map[string]string{"error": "invalid user in context"})
	}

	var req input.JoinInput
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid request"})
	}

	view, err := h.roomUsecase.JoinByCode(c.Request().Context(), identity, req.Code)
	if err != nil {
		if errors.Is(err, usecase.ErrRoomNotFound) ||
			errors.Is(err, engine.ErrRoomFull) ||
			errors.Is(err, engine.ErrGameInProgress) {
			return c.JSON(http.StatusNotFound, map[string]string{"error": "invalid or full room"})
		}

		return errorJSON(c, err)
	}

	return c.JSON(http.StatusOK, view)
}

func (h *RoomHandler) Get(c echo.Context) error {
	identity, ok := appctx.Identity(c.Request().Context())
	if !ok {
		return c.JSON(http.StatusUnauthorized, map[string]string{"error": "invalid user in context"})
	}

	view, err := h.roomUsecase.Snapshot(c.Request().Context(), c.Param("id"), identity.ID)
	if err != nil {
		return errorJSON(c, err)
	}

	return c.JSON(http.StatusOK, view)
}

func (h *RoomHandler) Leave(c echo.Context) error {
	identity, ok := appctx.Identity(c.Request().Context())
	if !ok {
		return c.JSON(http.StatusUnauthorized, map[string]string{"error": "invalid user in context"})
	}

	if err := h.roomUsecase.Leave(c.Request().Context(), c.Param("id"), identity.ID); err != nil {
		return errorJSON(c, err)
	}

	return c.NoContent(http.StatusNoContent)
}
