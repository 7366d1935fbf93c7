package dto

type GuestRequest struct {
	DisplayName string `json:"displayName"`
}

type TokenResponse struct {
	Token       string `json:"token"`
	ID          string `json:"id"`
	DisplayName string `json:"displayName"`
}

type ErrorResponse struct {
	Error string `json:"error"`
}

type HealthResponse struct {
	Status   string `json:"status"`
	Database string `json:"database"`
	// Connections - открытые WebSocket соединения этого инстанса
	Connections int `json:"connections"`
}
