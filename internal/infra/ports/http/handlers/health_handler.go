package handlers

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/qrave1/Gamefinity/internal/application/constant"
	"github.com/qrave1/Gamefinity/internal/infra/ports/http/dto"
)

// Pinger - проверка доступности базы (*sqlx.DB)
type Pinger interface {
	PingContext(ctx context.Context) error
}

type ConnectionCounter interface {
	Count() int
}

type HealthHandler struct {
	db    Pinger
	conns ConnectionCounter
}

func NewHealthHandler(db Pinger, conns ConnectionCounter) *HealthHandler {
	return &HealthHandler{db: db, conns: conns}
}

func (h *HealthHandler) Health(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 2*time.Second)
	defer cancel()

	resp := dto.HealthResponse{Status: "ok", Database: "ok", Connections: h.conns.Count()}

	if err := h.db.PingContext(ctx); err != nil {
		slog.Error("database health check", slog.Any(constant.Error, err))

		resp.Status, resp.Database = "degraded", "unavailable"

		return c.JSON(http.StatusServiceUnavailable, resp)
	}

	return c.JSON(http.StatusOK, resp)
}
