package engine

import "errors"

var (
	ErrUnknownKind       = errors.New("unknown game kind")
	ErrUnknownCriteria   = errors.New("unknown subject or category")
	ErrCriteriaRequired  = errors.New("subject or category is required")
	ErrRoomFull          = errors.New("room is full")
	ErrRoomClosed        = errors.New("room is closed")
	ErrGameInProgress    = errors.New("game already started")
	ErrGameNotStarted    = errors.New("game is not running")
	ErrGameNotFinished   = errors.New("game is not finished")
	ErrPlayerNotInRoom   = errors.New("player is not in room")
	ErrPlayerOffline     = errors.New("player is offline")
	ErrPlayerEliminated  = errors.New("player is eliminated")
	ErrNotHost           = errors.New("only host can do this")
	ErrNotEnoughPlayers  = errors.New("not enough players")
	ErrPlayersNotReady   = errors.New("not all players are ready")
	ErrNotYourTurn       = errors.New("not your turn")
	ErrNotVotingPhase    = errors.New("voting is not open")
	ErrAlreadyVoted      = errors.New("already voted")
	ErrInvalidTarget     = errors.New("invalid vote target")
	ErrChatClosed        = errors.New("chat is closed during voting")
	ErrEmptyMessage      = errors.New("empty message")
	ErrMessageTooLong    = errors.New("message too long")
	ErrNoOpenQuestion    = errors.New("no open question")
	ErrStaleQuestion     = errors.New("question already closed")
	ErrAlreadyAnswered   = errors.New("already answered")
	ErrInvalidChoice     = errors.New("invalid choice")
	ErrUnsupportedAction = errors.New("action is not supported by this game")
)
