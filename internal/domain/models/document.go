package models

import (
	"encoding/json"
	"fmt"
	"sort"
)

// RoomPath возвращает путь документа комнаты в хранилище
func RoomPath(roomID string) string {
	return "rooms/" + roomID
}

type roomAlias Room

// roomDocument - форма комнаты в хранилище. Игроки и чат лежат объектами по id,
// чтобы у каждого был свой путь rooms/{id}/players/{playerId}. Порядок хранится в seat и seq.
type roomDocument struct {
	*roomAlias
	Players map[string]seatedPlayer  `json:"players"`
	Chat    map[string]seatedMessage `json:"chat"`
}

type seatedPlayer struct {
	Player
	Seat int `json:"seat"`
}

type seatedMessage struct {
	ChatMessage
	Seq int `json:"seq"`
}

// RoomDocument переводит комнату в дерево документа (map[string]any)
func RoomDocument(r *Room) (map[string]any, error) {
	d := roomDocument{
		roomAlias: (*roomAlias)(r),
		Players:   make(map[string]seatedPlayer, len(r.Players)),
		Chat:      make(map[string]seatedMessage, len(r.Chat)),
	}

	for i, p := range r.Players {
		d.Players[p.ID] = seatedPlayer{Player: *p, Seat: i}
	}

	for i, msg := range r.Chat {
		d.Chat[msg.ID] = seatedMessage{ChatMessage: msg, Seq: i}
	}

	raw, err := json.Marshal(d)
	if err != nil {
		return nil, fmt.Errorf("marshal room: %w", err)
	}

	doc := make(map[string]any)
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("unmarshal room document: %w", err)
	}

	return doc, nil
}

// RoomFromDocument собирает комнату обратно из снапшота хранилища
func RoomFromDocument(doc any) (*Room, error) {
	if doc == nil {
		return nil, fmt.Errorf("empty room document")
	}

	raw, err := json.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("marshal room document: %w", err)
	}

	return DecodeRoom(raw)
}

// DecodeRoom читает комнату из сохраненного JSON документа
func DecodeRoom(raw []byte) (*Room, error) {
	room := new(Room)

	d := roomDocument{roomAlias: (*roomAlias)(room)}
	if err := json.Unmarshal(raw, &d); err != nil {
		return nil, fmt.Errorf("unmarshal room: %w", err)
	}

	seated := make([]seatedPlayer, 0, len(d.Players))
	for _, p := range d.Players {
		seated = append(seated, p)
	}
	sort.Slice(seated, func(i, j int) bool { return seated[i].Seat < seated[j].Seat })

	room.Players = make([]*Player, 0, len(seated))
	for i := range seated {
		p := seated[i].Player
		room.Players = append(room.Players, &p)
	}

	msgs := make([]seatedMessage, 0, len(d.Chat))
	for _, msg := range d.Chat {
		msgs = append(msgs, msg)
	}
	sort.Slice(msgs, func(i, j int) bool { return msgs[i].Seq < msgs[j].Seq })

	room.Chat = nil
	for _, msg := range msgs {
		room.Chat = append(room.Chat, msg.ChatMessage)
	}

	return room, nil
}
