package constant

// Ключи атрибутов для slog
const (
	Error    = "error"
	UserID   = "user_id"
	RoomID   = "room_id"
	PlayerID = "player_id"
	Kind     = "kind"
	Event    = "event"
	Phase    = "phase"
	State    = "state"
	Path     = "path"
)
