package models

import "time"

type ConnectionState string

const (
	ConnectionOnline  ConnectionState = "online"
	ConnectionOffline ConnectionState = "offline"
	// ConnectionReconnecting - игрок был в сети до рестарта сервера, его ждут обратно
	ConnectionReconnecting ConnectionState = "reconnecting"
)

type Player struct {
	ID          string          `json:"id"`
	DisplayName string          `json:"displayName"`
	Alive       bool            `json:"alive"`
	Connection  ConnectionState `json:"connectionState"`
	Score       int             `json:"score"`
	IsHost      bool            `json:"isHost"`
	Ready       bool            `json:"ready"`
	JoinedAt    time.Time       `json:"joinedAt"`
}

func NewPlayer(identity Identity, now time.Time) *Player {
	return &Player{
		ID:          identity.ID,
		DisplayName: identity.DisplayName,
		Alive:       true,
		Connection:  ConnectionOnline,
		JoinedAt:    now,
	}
}

func (p *Player) Online() bool {
	return p.Connection == ConnectionOnline
}

func (p *Player) Reconnecting() bool {
	return p.Connection == ConnectionReconnecting
}

// Eligible - игрок жив и в сети: может ходить, голосовать и быть целью
func (p *Player) Eligible() bool {
	return p.Alive && p.Online()
}
