package output

import "github.com/qrave1/Gamefinity/internal/domain/models"

// GameCatalog - вид игры и доступные для него предметы/категории
type GameCatalog struct {
	Kind       models.GameKind `json:"kind"`
	Capacity   int             `json:"capacity"`
	MinPlayers int             `json:"minPlayers"`
	Criteria   []string        `json:"criteria"`
}

type Me struct {
	ID          string `json:"id"`
	DisplayName string `json:"displayName"`
	CanPlay     bool   `json:"canPlay"`
}
