package events

import (
	"encoding/json"

	"github.com/qrave1/Gamefinity/internal/domain/input"
	"github.com/qrave1/Gamefinity/internal/domain/models"
	"github.com/qrave1/Gamefinity/internal/domain/output"
)

// События клиента
const (
	CreateLobby    = "createLobby"
	FindOrJoin     = "findOrJoin"
	JoinLobby      = "joinLobby"
	Subscribe      = "subscribe"
	LeaveLobby     = "leaveLobby"
	ToggleReady    = "toggleReady"
	SelectCategory = "selectCategory"
	StartGame      = "startGame"
	SendChat       = "sendChat"
	EndTurn        = "endTurn"
	CastVote       = "castVote"
	SubmitAnswer   = "submitAnswer"
	RematchReady   = "rematchReady"
	Ping           = "ping"
)

// События сервера
const (
	LobbyUpdated  = "lobbyUpdated"
	GameStarted   = "gameStarted"
	StartQuestion = "startQuestion"
	TimerTick     = "timerTick"
	GameFinished  = "gameFinished"
	RoomClosed    = "roomClosed"
	Error         = "error"
	Pong          = "pong"
)

// Message - общее событие от клиента
type Message struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data"`
}

// Outgoing - событие сервера
type Outgoing struct {
	Type string `json:"type"`
	Data any    `json:"data,omitempty"`
}

type LobbyEvent = input.LobbyInput

type JoinLobbyEvent = input.JoinInput

type SubscribeEvent struct {
	RoomID string `json:"roomId"`
}

type SelectCategoryEvent struct {
	Criteria string `json:"criteria"`
}

type SendChatEvent struct {
	Text string `json:"text"`
}

type CastVoteEvent struct {
	TargetID string `json:"targetId"`
}

type SubmitAnswerEvent struct {
	QuestionIndex int `json:"questionIndex"`
	Choice        int `json:"choice"`
}

type GameStartedEvent struct {
	RoomID string          `json:"roomId"`
	Kind   models.GameKind `json:"kind"`
	Round  int             `json:"round"`
	IsSpy  bool            `json:"isSpy"`
	Topic  string          `json:"topic,omitempty"`
}

type StartQuestionEvent struct {
	RoomID     string               `json:"roomId"`
	Question   *output.QuestionView `json:"question"`
	Total      int                  `json:"total"`
	DurationMs int64                `json:"durationMs"`
}

// TimerTickEvent - остаток текущего отсчета по часам сервера
type TimerTickEvent struct {
	RoomID      string       `json:"roomId"`
	Phase       models.Phase `json:"phase"`
	Remaining   int          `json:"remaining"`
	RemainingMs int64        `json:"remainingMs"`
}

type GameFinishedEvent struct {
	RoomID     string         `json:"roomId"`
	Winner     models.Faction `json:"winner"`
	Leaders    []string       `json:"leaders,omitempty"`
	SecretRole string         `json:"secretRole,omitempty"`
	Topic      string         `json:"topic,omitempty"`
}

const (
	ReasonClosed = "closed"
	ReasonLeft   = "left"
)

type RoomClosedEvent struct {
	RoomID string `json:"roomId"`
	Reason string `json:"reason"`
}

type ErrorEvent struct {
	Message string `json:"message"`
}
