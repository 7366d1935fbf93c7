package input

import "github.com/qrave1/Gamefinity/internal/domain/models"

// LobbyInput - создание комнаты или подбор
type LobbyInput struct {
	Kind     models.GameKind `json:"kind"`
	Criteria string          `json:"criteria"`
}

type JoinInput struct {
	Code string `json:"code"`
}
