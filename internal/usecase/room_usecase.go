package usecase

import (
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/qrave1/Gamefinity/internal/application/constant"
	"github.com/qrave1/Gamefinity/internal/application/metric"
	"github.com/qrave1/Gamefinity/internal/domain/engine"
	"github.com/qrave1/Gamefinity/internal/domain/models"
	"github.com/qrave1/Gamefinity/internal/domain/output"
	"github.com/qrave1/Gamefinity/internal/domain/runtime"
	"github.com/qrave1/Gamefinity/internal/infra/adapters/database/repository"
	"github.com/qrave1/Gamefinity/internal/infra/adapters/memory"
)

const codeAttempts = 20

var (
	ErrRoomNotFound = errors.New("room not found")
	ErrNotEntitled  = errors.New("active subscription required")

	errRoomFinished = errors.New("room already finished")
)

type dispatcher interface {
	dispatch(ctx context.Context, roomID string, fn func(a *roomActor) error) error
}

// RoomUsecase создает комнаты, подбирает игроков и управляет жизненным циклом акторов
type RoomUsecase interface {
	CreateRoom(ctx context.Context, identity models.Identity, kind models.GameKind, criteria string) (*output.RoomView, error)
	FindOrJoin(ctx context.Context, identity models.Identity, kind models.GameKind, criteria string) (*output.RoomView, error)
	JoinByCode(ctx context.Context, identity models.Identity, code string) (*output.RoomView, error)
	Leave(ctx context.Context, roomID, playerID string) error

	// Snapshot читает опубликованный документ комнаты и строит вид для viewerID
	Snapshot(ctx context.Context, roomID, viewerID string) (*output.RoomView, error)
	// View строит вид из снапшота подписки на документ комнаты
	View(snapshot any, viewerID string) (*output.RoomView, error)
	Catalog() []output.GameCatalog

	// Restore поднимает комнаты из сохраненных документов после рестарта.
	// Игроки ждут переподключения в течение grace, законченные комнаты удаляются.
	Restore(ctx context.Context, docs repository.DocumentRepository, grace time.Duration) (int, error)

	// Shutdown останавливает все акторы и ждет их завершения
	Shutdown()

	dispatcher
}

type roomUsecase struct {
	content  engine.Content
	clock    engine.Clock
	tickers  TickerCreator
	tick     time.Duration
	store    memory.DocumentStore
	registry memory.RoomRegistry

	entitlement EntitlementUsecase

	actors map[string]*roomActor
	// codeMu сериализует выбор кода комнаты
	codeMu sync.Mutex
	mu     sync.RWMutex

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

func NewRoomUsecase(
	content engine.Content,
	clock engine.Clock,
	tickers TickerCreator,
	tick time.Duration,
	store memory.DocumentStore,
	registry memory.RoomRegistry,
	entitlement EntitlementUsecase,
) RoomUsecase {
	ctx, cancel := context.WithCancel(context.Background())

	return &roomUsecase{
		content:     content,
		clock:       clock,
		tickers:     tickers,
		tick:        tick,
		store:       store,
		registry:    registry,
		entitlement: entitlement,
		actors:      make(map[string]*roomActor),
		ctx:         ctx,
		cancel:      cancel,
	}
}

func (u *roomUsecase) CreateRoom(ctx context.Context, identity models.Identity, kind models.GameKind, criteria string) (*output.RoomView, error) {
	if err := u.checkEntitlement(ctx, identity.ID); err != nil {
		return nil, err
	}

	policy, err := u.validate(kind, criteria)
	if err != nil {
		return nil, err
	}

	return u.create(identity, policy, criteria)
}

func (u *roomUsecase) FindOrJoin(ctx context.Context, identity models.Identity, kind models.GameKind, criteria string) (*output.RoomView, error) {
	if err := u.checkEntitlement(ctx, identity.ID); err != nil {
		return nil, err
	}

	policy, err := u.validate(kind, criteria)
	if err != nil {
		return nil, err
	}

	for _, listing := range u.registry.FindOpen(kind, criteria) {
		view, err := u.join(ctx, listing.ID, identity)
		if err == nil {
			return view, nil
		}

		// комнату заняли или закрыли между поиском и входом
		if errors.Is(err, engine.ErrRoomFull) ||
			errors.Is(err, engine.ErrGameInProgress) ||
			errors.Is(err, engine.ErrRoomClosed) ||
			errors.Is(err, ErrRoomNotFound) {
			continue
		}

		return nil, err
	}

	return u.create(identity, policy, criteria)
}

func (u *roomUsecase) JoinByCode(ctx context.Context, identity models.Identity, code string) (*output.RoomView, error) {
	if err := u.checkEntitlement(ctx, identity.ID); err != nil {
		return nil, err
	}

	listing, err := u.registry.GetByCode(strings.TrimSpace(code))
	if err != nil {
		return nil, ErrRoomNotFound
	}

	return u.join(ctx, listing.ID, identity)
}

func (u *roomUsecase) Leave(ctx context.Context, roomID, playerID string) error {
	return u.dispatch(ctx, roomID, func(a *roomActor) error {
		delete(a.sessions, playerID)

		return a.machine.Leave(playerID)
	})
}

func (u *roomUsecase) Snapshot(_ context.Context, roomID, viewerID string) (*output.RoomView, error) {
	doc, ok := u.store.Get(models.RoomPath(roomID))
	if !ok {
		return nil, ErrRoomNotFound
	}

	return u.View(doc, viewerID)
}

func (u *roomUsecase) View(snapshot any, viewerID string) (*output.RoomView, error) {
	if snapshot == nil {
		return nil, ErrRoomNotFound
	}

	room, err := models.RoomFromDocument(snapshot)
	if err != nil {
		return nil, fmt.Errorf("decode room document: %w", err)
	}

	policy, err := engine.PolicyFor(room.Kind)
	if err != nil {
		return nil, err
	}

	return output.NewRoomView(room, policy, viewerID, u.clock.Now()), nil
}

func (u *roomUsecase) Catalog() []output.GameCatalog {
	out := make([]output.GameCatalog, 0, len(engine.Kinds()))

	for _, kind := range engine.Kinds() {
		policy, _ := engine.PolicyFor(kind)

		criteria := u.content.Categories()
		if policy.Mode == engine.ModeDeduction {
			criteria = u.content.Subjects()
		}

		out = append(out, output.GameCatalog{
			Kind:       kind,
			Capacity:   policy.Capacity,
			MinPlayers: policy.MinPlayers,
			Criteria:   criteria,
		})
	}

	return out
}

func (u *roomUsecase) Restore(ctx context.Context, docs repository.DocumentRepository, grace time.Duration) (int, error) {
	stored, err := docs.List(ctx, models.RoomPath(""))
	if err != nil {
		return 0, fmt.Errorf("list room documents: %w", err)
	}

	restored := 0

	for _, doc := range stored {
		err := u.resume(doc, grace)
		if err == nil {
			restored++
			continue
		}

		if !errors.Is(err, errRoomFinished) {
			slog.Warn("drop stored room", slog.Any(constant.Error, err), slog.String(constant.Path, doc.Path))
		}

		if err := docs.Delete(ctx, doc.Path); err != nil {
			slog.Error("delete stored room", slog.Any(constant.Error, err), slog.String(constant.Path, doc.Path))
		}
	}

	return restored, nil
}

// resume запускает актор сохраненной комнаты. Все игроки считаются отключенными до переподключения.
func (u *roomUsecase) resume(doc repository.Document, grace time.Duration) error {
	room, err := models.DecodeRoom([]byte(doc.Body))
	if err != nil {
		return err
	}

	if models.RoomPath(room.ID) != doc.Path {
		return fmt.Errorf("document path does not match room %q", room.ID)
	}

	if room.Status == models.StatusFinished {
		return errRoomFinished
	}

	policy, err := engine.PolicyFor(room.Kind)
	if err != nil {
		return err
	}

	seed, err := uuid.Parse(room.ID)
	if err != nil {
		return fmt.Errorf("parse room id: %w", err)
	}

	machine := engine.NewMachine(room, policy, u.content, seededRand(seed), u.clock)
	machine.Suspend()

	if machine.Abandoned() {
		return fmt.Errorf("room %q has nobody to wait for", room.ID)
	}

	actor := newRoomActor(machine, u.clock, u.store, u.registry, u.forget)
	actor.restoreUntil = u.clock.Now().Add(grace)

	if err := u.registry.Add(runtime.NewRoomListing(room)); err != nil {
		return fmt.Errorf("register room: %w", err)
	}

	actor.publish(u.ctx)
	u.start(actor, policy.Kind)

	slog.Info(
		"room restored",
		slog.String(constant.RoomID, room.ID),
		slog.String(constant.Kind, string(policy.Kind)),
		slog.String("status", string(room.Status)),
	)

	return nil
}

func (u *roomUsecase) Shutdown() {
	u.cancel()
	u.wg.Wait()
}

func (u *roomUsecase) dispatch(ctx context.Context, roomID string, fn func(a *roomActor) error) error {
	u.mu.RLock()
	a, ok := u.actors[roomID]
	u.mu.RUnlock()

	if !ok {
		return ErrRoomNotFound
	}

	return a.do(ctx, fn)
}

func (u *roomUsecase) checkEntitlement(ctx context.Context, userID string) error {
	ok, err := u.entitlement.CanPlay(ctx, userID)
	if err != nil {
		return fmt.Errorf("check entitlement: %w", err)
	}

	if !ok {
		return ErrNotEntitled
	}

	return nil
}

func (u *roomUsecase) validate(kind models.GameKind, criteria string) (engine.Policy, error) {
	policy, err := engine.PolicyFor(kind)
	if err != nil {
		return engine.Policy{}, err
	}

	if !engine.ValidCriteria(u.content, policy.Mode, criteria) {
		return engine.Policy{}, fmt.Errorf("%w: %q", engine.ErrUnknownCriteria, criteria)
	}

	return policy, nil
}

func (u *roomUsecase) join(ctx context.Context, roomID string, identity models.Identity) (*output.RoomView, error) {
	var view *output.RoomView

	err := u.dispatch(ctx, roomID, func(a *roomActor) error {
		if err := a.machine.Join(identity); err != nil {
			return err
		}

		view = output.NewRoomView(a.machine.Room().Clone(), a.machine.Policy(), identity.ID, a.clock.Now())

		return nil
	})
	if err != nil {
		return nil, err
	}

	slog.Info(
		"player joined room",
		slog.String(constant.RoomID, roomID),
		slog.String(constant.PlayerID, identity.ID),
	)

	return view, nil
}

// create заводит комнату с создателем-хостом и запускает ее актор.
// Первый документ публикуется до старта актора, чтобы подписчики сразу видели комнату.
func (u *roomUsecase) create(identity models.Identity, policy engine.Policy, criteria string) (*output.RoomView, error) {
	now := u.clock.Now()
	seed := uuid.New()

	room := models.NewRoom(seed.String(), "", policy.Kind, policy.Capacity, criteria, now)

	machine := engine.NewMachine(room, policy, u.content, seededRand(seed), u.clock)
	if err := machine.Join(identity); err != nil {
		return nil, fmt.Errorf("join creator: %w", err)
	}

	actor := newRoomActor(machine, u.clock, u.store, u.registry, u.forget)

	if err := u.register(room, policy); err != nil {
		return nil, err
	}

	actor.publish(u.ctx)
	view := output.NewRoomView(room.Clone(), policy, identity.ID, now)

	u.start(actor, policy.Kind)

	slog.Info(
		"room created",
		slog.String(constant.RoomID, room.ID),
		slog.String(constant.Kind, string(policy.Kind)),
		slog.String(constant.PlayerID, identity.ID),
	)

	return view, nil
}

func (u *roomUsecase) start(actor *roomActor, kind models.GameKind) {
	u.mu.Lock()
	u.actors[actor.id] = actor
	u.mu.Unlock()

	metric.IncrementRoomsActive(string(kind))

	ticks, stop := u.tickers.Create(u.tick)

	u.wg.Add(1)
	go func() {
		defer u.wg.Done()
		actor.run(u.ctx, ticks, stop)
	}()
}

// register подбирает свободный код комнаты и добавляет ее в реестр
func (u *roomUsecase) register(room *models.Room, policy engine.Policy) error {
	u.codeMu.Lock()
	defer u.codeMu.Unlock()

	for range codeAttempts {
		room.Code = randomCode(policy.CodeLength)

		err := u.registry.Add(runtime.NewRoomListing(room))
		if err == nil {
			return nil
		}

		if !errors.Is(err, memory.ErrCodeTaken) {
			return fmt.Errorf("register room: %w", err)
		}
	}

	return fmt.Errorf("register room: no free code of length %d", policy.CodeLength)
}

func (u *roomUsecase) forget(roomID string) {
	u.mu.Lock()
	delete(u.actors, roomID)
	u.mu.Unlock()
}

func seededRand(seed uuid.UUID) *rand.Rand {
	return rand.New(rand.NewPCG(binary.BigEndian.Uint64(seed[:8]), binary.BigEndian.Uint64(seed[8:])))
}

func randomCode(length int) string {
	var b strings.Builder
	b.Grow(length)

	for range length {
		b.WriteByte(byte('0' + rand.IntN(10)))
	}

	return b.String()
}
