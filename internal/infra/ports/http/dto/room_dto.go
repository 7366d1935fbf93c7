package dto

// RoomPath - параметр пути /rooms/:id
type RoomPath struct {
	ID string `path:"id" param:"id"`
}
