package memory

import (
	"sync"

	"github.com/google/uuid"
)

// Session - одно транспортное соединение игрока.
// Хуки OnDisconnect выполняются ровно один раз при Close.
type Session struct {
	id uuid.UUID

	hooks map[string]func()
	order []string
	done  bool

	mu sync.Mutex
}

func NewSession() *Session {
	return &Session{
		id:    uuid.New(),
		hooks: make(map[string]func()),
	}
}

func (s *Session) ID() uuid.UUID {
	return s.id
}

// OnDisconnect регистрирует хук под ключом, повторная регистрация заменяет хук.
// Если сессия уже закрыта, хук выполняется сразу.
func (s *Session) OnDisconnect(key string, fn func()) {
	s.mu.Lock()

	if s.done {
		s.mu.Unlock()
		fn()

		return
	}

	if _, ok := s.hooks[key]; !ok {
		s.order = append(s.order, key)
	}
	s.hooks[key] = fn

	s.mu.Unlock()
}

// Cancel снимает хук без выполнения
func (s *Session) Cancel(key string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.hooks[key]; !ok {
		return
	}

	delete(s.hooks, key)

	for i, k := range s.order {
		if k == key {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
}

// Close выполняет все хуки в порядке регистрации. Повторные вызовы ничего не делают.
func (s *Session) Close() {
	s.mu.Lock()

	if s.done {
		s.mu.Unlock()
		return
	}

	s.done = true

	hooks := make([]func(), 0, len(s.order))
	for _, key := range s.order {
		hooks = append(hooks, s.hooks[key])
	}

	s.hooks = nil
	s.order = nil

	s.mu.Unlock()

	for _, fn := range hooks {
		fn()
	}
}
