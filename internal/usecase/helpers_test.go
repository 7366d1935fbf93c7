package usecase

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/qrave1/Gamefinity/internal/domain/models"
	"github.com/qrave1/Gamefinity/internal/infra/adapters/content"
	"github.com/qrave1/Gamefinity/internal/infra/adapters/database/repository"
	"github.com/qrave1/Gamefinity/internal/infra/adapters/memory"
)

const testTick = 250 * time.Millisecond

var t0 = time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.now = c.now.Add(d)
}

type MockTickerCreator struct {
	mock.Mock
}

func (m *MockTickerCreator) Create(d time.Duration) (<-chan time.Time, func()) {
	args := m.Called(d)
	return args.Get(0).(chan time.Time), args.Get(1).(func())
}

// expectRoom регистрирует тикер для следующей создаваемой комнаты
func (m *MockTickerCreator) expectRoom() chan time.Time {
	ch := make(chan time.Time)
	m.On("Create", testTick).Return(ch, func() {}).Once()

	return ch
}

type MockDocumentRepository struct {
	mock.Mock
}

func (m *MockDocumentRepository) Save(ctx context.Context, path string, body []byte) error {
	args := m.Called(ctx, path, body)
	return args.Error(0)
}

func (m *MockDocumentRepository) List(ctx context.Context, prefix string) ([]repository.Document, error) {
	args := m.Called(ctx, prefix)
	return args.Get(0).([]repository.Document), args.Error(1)
}

func (m *MockDocumentRepository) Delete(ctx context.Context, path string) error {
	args := m.Called(ctx, path)
	return args.Error(0)
}

type stubEntitlement struct {
	allowed bool
}

func (s stubEntitlement) CanPlay(context.Context, string) (bool, error) {
	return s.allowed, nil
}

func (stubEntitlement) Subscription(context.Context, string) (*models.Subscription, error) {
	return nil, nil
}

type testEnv struct {
	rooms    *roomUsecase
	game     GameUsecase
	presence PresenceUsecase
	clock    *fakeClock
	store    memory.DocumentStore
	tickers  *MockTickerCreator
}

func newTestEnv(t *testing.T, allowed bool) *testEnv {
	t.Helper()

	bank, err := content.New()
	require.NoError(t, err)

	env := &testEnv{
		clock:   &fakeClock{now: t0},
		store:   memory.NewDocumentStore(nil),
		tickers: new(MockTickerCreator),
	}

	rooms := NewRoomUsecase(
		bank,
		env.clock,
		env.tickers,
		testTick,
		env.store,
		memory.NewRoomRegistry(),
		stubEntitlement{allowed: allowed},
	)
	t.Cleanup(rooms.Shutdown)

	env.rooms = rooms.(*roomUsecase)
	env.game = NewGameUsecase(rooms)
	env.presence = NewPresenceUsecase(rooms)

	return env
}

func ident(i int) models.Identity {
	return models.Identity{ID: fmt.Sprintf("p%d", i), DisplayName: fmt.Sprintf("Player %d", i)}
}

// room читает опубликованный документ комнаты
func (e *testEnv) room(t *testing.T, roomID string) *models.Room {
	t.Helper()

	doc, ok := e.store.Get(models.RoomPath(roomID))
	require.True(t, ok, "room document %s not found", roomID)

	room, err := models.RoomFromDocument(doc)
	require.NoError(t, err)

	return room
}

// flush ждет, пока актор обработает все, что пришло до вызова
func (e *testEnv) flush(t *testing.T, roomID string) {
	t.Helper()

	require.NoError(t, e.rooms.dispatch(context.Background(), roomID, func(*roomActor) error { return nil }))
}

func (e *testEnv) tick(t *testing.T, ch chan time.Time, roomID string) {
	t.Helper()

	ch <- e.clock.Now()
	e.flush(t, roomID)
}

// fullDeduction собирает четверых игроков в brainmyst через подбор
func (e *testEnv) fullDeduction(t *testing.T) (string, chan time.Time) {
	t.Helper()

	ctx := context.Background()
	ticks := e.tickers.expectRoom()

	var roomID string
	for i := 1; i <= 4; i++ {
		view, err := e.rooms.FindOrJoin(ctx, ident(i), models.KindBrainMyst, "Math")
		require.NoError(t, err)

		if i == 1 {
			roomID = view.ID
		}
		require.Equal(t, roomID, view.ID)
	}

	return roomID, ticks
}

// stored возвращает опубликованный документ комнаты в том виде, в каком его сохраняет база
func (e *testEnv) stored(t *testing.T, roomID string) repository.Document {
	t.Helper()

	doc, ok := e.store.Get(models.RoomPath(roomID))
	require.True(t, ok, "room document %s not found", roomID)

	body, err := json.Marshal(doc)
	require.NoError(t, err)

	return repository.Document{Path: models.RoomPath(roomID), Body: string(body)}
}
