package models

// Identity - то, что ядро знает о пользователе
type Identity struct {
	ID          string `json:"id"`
	DisplayName string `json:"displayName"`
}
