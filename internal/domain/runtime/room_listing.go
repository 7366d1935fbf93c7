package runtime

import (
	"time"

	"github.com/qrave1/Gamefinity/internal/domain/models"
)

// RoomListing - краткое описание живой комнаты для поиска и подбора
type RoomListing struct {
	ID        string          `json:"id"`
	Code      string          `json:"code"`
	Kind      models.GameKind `json:"kind"`
	Criteria  string          `json:"criteria"`
	Status    models.Status   `json:"status"`
	Players   int             `json:"players"`
	Capacity  int             `json:"capacity"`
	CreatedAt time.Time       `json:"createdAt"`
}

// Open - в комнату можно войти через подбор
func (l RoomListing) Open() bool {
	return l.Status == models.StatusWaiting && l.Players < l.Capacity
}

func NewRoomListing(room *models.Room) RoomListing {
	return RoomListing{
		ID:        room.ID,
		Code:      room.Code,
		Kind:      room.Kind,
		Criteria:  room.Criteria,
		Status:    room.Status,
		Players:   len(room.Players),
		Capacity:  room.Capacity,
		CreatedAt: room.CreatedAt,
	}
}
