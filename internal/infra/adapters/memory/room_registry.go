package memory

import (
	"errors"
	"sync"

	"github.com/qrave1/Gamefinity/internal/domain/models"
	"github.com/qrave1/Gamefinity/internal/domain/runtime"
)

var (
	ErrCodeTaken    = errors.New("room code already taken")
	ErrRoomNotFound = errors.New("room not found")
)

// RoomRegistry хранит описания живых комнат и индекс по коду
type RoomRegistry interface {
	Add(listing runtime.RoomListing) error
	Update(listing runtime.RoomListing)
	Remove(roomID string)

	Get(roomID string) (runtime.RoomListing, error)
	GetByCode(code string) (runtime.RoomListing, error)

	// FindOpen возвращает открытые комнаты с тем же видом и критерием в порядке создания
	FindOpen(kind models.GameKind, criteria string) []runtime.RoomListing
	List() []runtime.RoomListing
}

type roomRegistry struct {
	rooms  map[string]runtime.RoomListing
	byCode map[string]string
	// order хранит id комнат в порядке создания
	order []string

	mu sync.RWMutex
}

func NewRoomRegistry() RoomRegistry {
	return &roomRegistry{
		rooms:  make(map[string]runtime.RoomListing),
		byCode: make(map[string]string),
	}
}

func (r *roomRegistry) Add(listing runtime.RoomListing) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.byCode[listing.Code]; ok {
		return ErrCodeTaken
	}

	r.rooms[listing.ID] = listing
	r.byCode[listing.Code] = listing.ID
	r.order = append(r.order, listing.ID)

	return nil
}

func (r *roomRegistry) Update(listing runtime.RoomListing) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.rooms[listing.ID]; !ok {
		return
	}

	r.rooms[listing.ID] = listing
}

func (r *roomRegistry) Remove(roomID string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	listing, ok := r.rooms[roomID]
	if !ok {
		return
	}

	delete(r.rooms, roomID)
	delete(r.byCode, listing.Code)

	for i, id := range r.order {
		if id == roomID {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}
}

func (r *roomRegistry) Get(roomID string) (runtime.RoomListing, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	listing, ok := r.rooms[roomID]
	if !ok {
		return runtime.RoomListing{}, ErrRoomNotFound
	}

	return listing, nil
}

func (r *roomRegistry) GetByCode(code string) (runtime.RoomListing, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	id, ok := r.byCode[code]
	if !ok {
		return runtime.RoomListing{}, ErrRoomNotFound
	}

	return r.rooms[id], nil
}

func (r *roomRegistry) FindOpen(kind models.GameKind, criteria string) []runtime.RoomListing {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var open []runtime.RoomListing

	for _, id := range r.order {
		listing := r.rooms[id]
		if listing.Kind == kind && listing.Criteria == criteria && listing.Open() {
			open = append(open, listing)
		}
	}

	return open
}

func (r *roomRegistry) List() []runtime.RoomListing {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]runtime.RoomListing, 0, len(r.order))
	for _, id := range r.order {
		out = append(out, r.rooms[id])
	}

	return out
}
