package handlers

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/qrave1/Gamefinity/internal/application/config"
	"github.com/qrave1/Gamefinity/internal/application/constant"
	"github.com/qrave1/Gamefinity/internal/domain/output"
	"github.com/qrave1/Gamefinity/internal/infra/appctx"
	"github.com/qrave1/Gamefinity/internal/infra/ports/http/dto"
	"github.com/qrave1/Gamefinity/internal/infra/ports/http/middleware"
	"github.com/qrave1/Gamefinity/internal/usecase"
)

type AuthHandler struct {
	cfg *config.Config

	identityUsecase    usecase.IdentityUsecase
	entitlementUsecase usecase.EntitlementUsecase
}

func NewAuthHandler(
	cfg *config.Config,
	identityUsecase usecase.IdentityUsecase,
	entitlementUsecase usecase.EntitlementUsecase,
) *AuthHandler {
	return &AuthHandler{
		cfg:                cfg,
		identityUsecase:    identityUsecase,
		entitlementUsecase: entitlementUsecase,
	}
}

// Guest выдает гостевой токен для отображаемого имени
func (h *AuthHandler) Guest(c echo.Context) error {
	var req dto.GuestRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid request"})
	}

	token, identity, err := h.identityUsecase.IssueGuest(req.DisplayName)
	if err != nil {
		return errorJSON(c, err)
	}

	c.SetCookie(&http.Cookie{
		Name:     middleware.CookieName,
		Value:    token,
		Expires:  time.Now().Add(h.cfg.Game.GuestTokenTTL),
		Path:     "/",
		Secure:   !h.cfg.Debug,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})

	slog.Info("guest token issued", slog.String(constant.UserID, identity.ID))

	return c.JSON(http.StatusOK, dto.TokenResponse{
		Token:       token,
		ID:          identity.ID,
		DisplayName: identity.DisplayName,
	})
}

func (h *AuthHandler) GetMe(c echo.Context) error {
	identity, ok := appctx.Identity(c.Request().Context())
	if !ok {
		return c.JSON(http.StatusUnauthorized, map[string]string{"error": "invalid user in context"})
	}

	canPlay, err := h.entitlementUsecase.CanPlay(c.Request().Context(), identity.ID)
	if err != nil {
		return errorJSON(c, err)
	}

	return c.JSON(http.StatusOK, output.Me{
		ID:          identity.ID,
		DisplayName: identity.DisplayName,
		CanPlay:     canPlay,
	})
}
