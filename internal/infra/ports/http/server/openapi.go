package server

import (
	"encoding/json"
	"net/http"

	"github.com/labstack/echo/v4"
	openapi "github.com/swaggest/openapi-go"
	"github.com/swaggest/openapi-go/openapi3"

	"github.com/qrave1/Gamefinity/internal/domain/input"
	"github.com/qrave1/Gamefinity/internal/domain/output"
	"github.com/qrave1/Gamefinity/internal/infra/ports/http/dto"
)

func newOpenAPISpec() *openapi3.Spec {
	r := openapi3.NewReflector()
	r.Spec.Info.Title = "Gamefinity API"
	r.Spec.Info.Version = "1.0.0"
	r.Spec.Info.WithDescription("Room coordinator for BrainMyst, QuizBlitz and itapp. Realtime state is delivered over /api/v1/ws.")

	// GET /health
	getHealth, _ := r.NewOperationContext(http.MethodGet, "/health")
	getHealth.SetSummary("Health check")
	getHealth.AddRespStructure(dto.HealthResponse{}, openapi.WithHTTPStatus(http.StatusOK))
	getHealth.AddRespStructure(dto.HealthResponse{}, openapi.WithHTTPStatus(http.StatusServiceUnavailable))
	_ = r.AddOperation(getHealth)

	// POST /api/auth/guest
	postGuest, _ := r.NewOperationContext(http.MethodPost, "/api/auth/guest")
	postGuest.SetSummary("Guest sign-in")
	postGuest.SetDescription("Issues a guest JWT for a display name and sets it as the jwt cookie.")
	postGuest.AddReqStructure(dto.GuestRequest{})
	postGuest.AddRespStructure(dto.TokenResponse{}, openapi.WithHTTPStatus(http.StatusOK))
	postGuest.AddRespStructure(dto.ErrorResponse{}, openapi.WithHTTPStatus(http.StatusBadRequest))
	_ = r.AddOperation(postGuest)

	// GET /api/v1/me
	getMe, _ := r.NewOperationContext(http.MethodGet, "/api/v1/me")
	getMe.SetSummary("Current user")
	getMe.AddRespStructure(output.Me{}, openapi.WithHTTPStatus(http.StatusOK))
	getMe.AddRespStructure(dto.ErrorResponse{}, openapi.WithHTTPStatus(http.StatusUnauthorized))
	_ = r.AddOperation(getMe)

	// GET /api/v1/ws
	getWS, _ := r.NewOperationContext(http.MethodGet, "/api/v1/ws")
	getWS.SetSummary("Realtime room events")
	getWS.SetDescription("Upgrades to a WebSocket. Messages are {\"type\": string, \"data\": object}.")
	getWS.AddRespStructure(nil, openapi.WithHTTPStatus(http.StatusSwitchingProtocols),
		openapi.WithContentType("text/plain"))
	_ = r.AddOperation(getWS)

	// GET /api/v1/games
	getGames, _ := r.NewOperationContext(http.MethodGet, "/api/v1/games")
	getGames.SetSummary("Game kinds with their subjects and categories")
	getGames.AddRespStructure([]output.GameCatalog{}, openapi.WithHTTPStatus(http.StatusOK))
	_ = r.AddOperation(getGames)

	// POST /api/v1/rooms
	postRoom, _ := r.NewOperationContext(http.MethodPost, "/api/v1/rooms")
	postRoom.SetSummary("Create room")
	postRoom.SetDescription("Creates a room with the caller as host.")
	postRoom.AddReqStructure(input.LobbyInput{})
	postRoom.AddRespStructure(output.RoomView{}, openapi.WithHTTPStatus(http.StatusCreated))
	postRoom.AddRespStructure(dto.ErrorResponse{}, openapi.WithHTTPStatus(http.StatusBadRequest))
	postRoom.AddRespStructure(dto.ErrorResponse{}, openapi.WithHTTPStatus(http.StatusForbidden))
	_ = r.AddOperation(postRoom)

	// POST /api/v1/rooms/match
	postMatch, _ := r.NewOperationContext(http.MethodPost, "/api/v1/rooms/match")
	postMatch.SetSummary("Find or create room")
	postMatch.SetDescription("Joins the oldest waiting room of the same kind and criteria, or creates one.")
	postMatch.AddReqStructure(input.LobbyInput{})
	postMatch.AddRespStructure(output.RoomView{}, openapi.WithHTTPStatus(http.StatusOK))
	postMatch.AddRespStructure(dto.ErrorResponse{}, openapi.WithHTTPStatus(http.StatusBadRequest))
	postMatch.AddRespStructure(dto.ErrorResponse{}, openapi.WithHTTPStatus(http.StatusForbidden))
	_ = r.AddOperation(postMatch)

	// POST /api/v1/rooms/join
	postJoin, _ := r.NewOperationContext(http.MethodPost, "/api/v1/rooms/join")
	postJoin.SetSummary("Join room by code")
	postJoin.AddReqStructure(input.JoinInput{})
	postJoin.AddRespStructure(output.RoomView{}, openapi.WithHTTPStatus(http.StatusOK))
	postJoin.AddRespStructure(dto.ErrorResponse{}, openapi.WithHTTPStatus(http.StatusNotFound))
	_ = r.AddOperation(postJoin)

	// GET /api/v1/rooms/{id}
	getRoom, _ := r.NewOperationContext(http.MethodGet, "/api/v1/rooms/{id}")
	getRoom.SetSummary("Room snapshot for the caller")
	getRoom.AddReqStructure(dto.RoomPath{})
	getRoom.AddRespStructure(output.RoomView{}, openapi.WithHTTPStatus(http.StatusOK))
	getRoom.AddRespStructure(dto.ErrorResponse{}, openapi.WithHTTPStatus(http.StatusNotFound))
	_ = r.AddOperation(getRoom)

	// DELETE /api/v1/rooms/{id}/players/me
	deleteMe, _ := r.NewOperationContext(http.MethodDelete, "/api/v1/rooms/{id}/players/me")
	deleteMe.SetSummary("Leave room")
	deleteMe.SetDescription("Before the game starts the player is removed. The host leaving closes the room.")
	deleteMe.AddReqStructure(dto.RoomPath{})
	deleteMe.AddRespStructure(nil, openapi.WithHTTPStatus(http.StatusNoContent))
	deleteMe.AddRespStructure(dto.ErrorResponse{}, openapi.WithHTTPStatus(http.StatusNotFound))
	_ = r.AddOperation(deleteMe)

	return r.Spec
}

func openAPIHandler() echo.HandlerFunc {
	spec := newOpenAPISpec()
	data, _ := json.MarshalIndent(spec, "", "  ")

	return func(c echo.Context) error {
		return c.JSONBlob(http.StatusOK, data)
	}
}
