package server

import (
	"github.com/labstack/echo/v4"
	"github.com/swaggest/swgui/v5emb"

	"github.com/qrave1/Gamefinity/internal/application/config"
	"github.com/qrave1/Gamefinity/internal/infra/ports/http/handlers"
	"github.com/qrave1/Gamefinity/internal/infra/ports/http/middleware"
	"github.com/qrave1/Gamefinity/internal/usecase"
)

func New(
	cfg *config.Config,
	identityUsecase usecase.IdentityUsecase,
	authHandler *handlers.AuthHandler,
	roomHandler *handlers.RoomHandler,
	healthHandler *handlers.HealthHandler,
	wsHandler *handlers.WebSocketHandler,
) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	e.Use(middleware.SlogLogger())
	e.Use(middleware.PrometheusMiddleware())

	e.GET("/health", healthHandler.Health)
	e.GET("/openapi.json", openAPIHandler())
	e.GET("/docs*", echo.WrapHandler(v5emb.New("Gamefinity API", "/openapi.json", "/docs/")))

	api := e.Group("/api")
	{
		authGroup := api.Group("/auth")
		{
			authGroup.POST("/guest", authHandler.Guest)
		}

		v1 := api.Group("/v1")
		v1.Use(middleware.JWTAuthMiddleware(identityUsecase))
		{
			v1.GET("/me", authHandler.GetMe)

			v1.GET("/ws", wsHandler.Handle)

			v1.GET("/games", roomHandler.Catalog)

			v1.POST("/rooms", roomHandler.Create)
			v1.POST("/rooms/match", roomHandler.Match)
			v1.POST("/rooms/join", roomHandler.Join)
			v1.GET("/rooms/:id", roomHandler.Get)
			v1.DELETE("/rooms/:id/players/me", roomHandler.Leave)
		}
	}

	return e
}
