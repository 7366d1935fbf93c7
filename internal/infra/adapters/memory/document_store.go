package memory

import (
	"context"
	"encoding/json"
	"log/slog"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/qrave1/Gamefinity/internal/application/constant"
	"github.com/qrave1/Gamefinity/internal/application/metric"
)

// Persister сохраняет корневые документы (например rooms/{id}) во внешнее хранилище
type Persister interface {
	Save(ctx context.Context, path string, body []byte) error
	Delete(ctx context.Context, path string) error
}

// DocumentStore - дерево документов в памяти с подпиской на изменения.
// Пути разделяются "/", корневой документ - первые два сегмента пути.
type DocumentStore interface {
	Get(path string) (any, bool)
	Set(ctx context.Context, path string, value any)
	// Merge атомарно применяет поля. Ключ поля может быть относительным путем "players/{playerId}/alive",
	// значение nil удаляет поле.
	Merge(ctx context.Context, path string, fields map[string]any)
	Delete(ctx context.Context, path string)
	// Subscribe сразу отдает текущий снапшот, затем каждое изменение пути, его предков или потомков.
	// Снапшот nil означает, что пути больше нет. cb не должен писать в хранилище.
	Subscribe(path string, cb func(snapshot any)) (unsubscribe func())
}

type subscription struct {
	id     uint64
	path   []string
	cb     func(any)
	closed atomic.Bool

	mu       sync.Mutex
	lastSeen uint64
}

type notification struct {
	sub      *subscription
	version  uint64
	snapshot any
}

type documentStore struct {
	root map[string]any

	subs    map[uint64]*subscription
	nextSub uint64
	version uint64

	persister Persister

	mu sync.Mutex
}

func NewDocumentStore(persister Persister) DocumentStore {
	return &documentStore{
		root:      make(map[string]any),
		subs:      make(map[uint64]*subscription),
		persister: persister,
	}
}

func splitPath(path string) []string {
	parts := strings.Split(path, "/")

	out := parts[:0]
	for _, p := range parts {
		if p != "" {
			out = append(out, p)
		}
	}

	return out
}

func (s *documentStore) Get(path string) (any, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	v, ok := lookup(s.root, splitPath(path))
	if !ok {
		return nil, false
	}

	return deepCopy(v), true
}

func (s *documentStore) Set(ctx context.Context, path string, value any) {
	parts := splitPath(path)
	if len(parts) == 0 {
		return
	}

	s.mutate(ctx, parts, func() {
		assign(s.root, parts, deepCopy(value))
	})
}

func (s *documentStore) Merge(ctx context.Context, path string, fields map[string]any) {
	parts := splitPath(path)
	if len(parts) == 0 || len(fields) == 0 {
		return
	}

	s.mutate(ctx, parts, func() {
		for key, value := range fields {
			full := append(append([]string{}, parts...), splitPath(key)...)

			if value == nil {
				remove(s.root, full)
				continue
			}

			assign(s.root, full, deepCopy(value))
		}
	})
}

func (s *documentStore) Delete(ctx context.Context, path string) {
	parts := splitPath(path)
	if len(parts) == 0 {
		return
	}

	s.mutate(ctx, parts, func() {
		remove(s.root, parts)
	})
}

// mutate применяет изменение под блокировкой, затем вне блокировки сохраняет
// корневой документ и рассылает снапшоты подписчикам
func (s *documentStore) mutate(ctx context.Context, parts []string, apply func()) {
	s.mu.Lock()

	apply()
	s.version++

	notes := s.collect(parts)

	rootPath, rootDoc, rootExists := s.rootDocument(parts)

	s.mu.Unlock()

	s.persist(ctx, rootPath, rootDoc, rootExists)

	for _, n := range notes {
		n.sub.deliver(n.version, n.snapshot)
	}
}

func (s *documentStore) collect(parts []string) []notification {
	var notes []notification

	for _, sub := range s.subs {
		if !related(sub.path, parts) {
			continue
		}

		v, _ := lookup(s.root, sub.path)
		notes = append(notes, notification{sub: sub, version: s.version, snapshot: deepCopy(v)})
	}

	return notes
}

func (s *documentStore) rootDocument(parts []string) (string, []byte, bool) {
	if s.persister == nil || len(parts) < 2 {
		return "", nil, false
	}

	rootParts := parts[:2]
	path := strings.Join(rootParts, "/")

	v, ok := lookup(s.root, rootParts)
	if !ok {
		return path, nil, false
	}

	body, err := json.Marshal(v)
	if err != nil {
		slog.Error("marshal document", slog.Any(constant.Error, err), slog.String(constant.Path, path))
		return path, nil, false
	}

	return path, body, true
}

// persist пишет документ синхронно. Ошибки логируются, повторов нет.
func (s *documentStore) persist(ctx context.Context, path string, body []byte, exists bool) {
	if s.persister == nil || path == "" {
		return
	}

	var err error
	if exists {
		err = s.persister.Save(ctx, path, body)
	} else {
		err = s.persister.Delete(ctx, path)
	}

	if err != nil {
		metric.IncrementStoreWriteErrors()
		slog.Error(
			"persist document",
			slog.Any(constant.Error, err),
			slog.String(constant.Path, path),
		)
	}
}

func (s *documentStore) Subscribe(path string, cb func(snapshot any)) func() {
	s.mu.Lock()

	s.nextSub++
	sub := &subscription{id: s.nextSub, path: splitPath(path), cb: cb}
	s.subs[sub.id] = sub

	v, _ := lookup(s.root, sub.path)
	version, snapshot := s.version, deepCopy(v)

	s.mu.Unlock()

	sub.deliver(version, snapshot)

	return func() {
		sub.closed.Store(true)

		s.mu.Lock()
		delete(s.subs, sub.id)
		s.mu.Unlock()
	}
}

// deliver отдает снапшот, пропуская устаревшие версии
func (sub *subscription) deliver(version uint64, snapshot any) {
	sub.mu.Lock()
	defer sub.mu.Unlock()

	if sub.closed.Load() || (sub.lastSeen != 0 && version <= sub.lastSeen) {
		return
	}

	sub.lastSeen = version
	sub.cb(snapshot)
}

// related - один путь является префиксом другого
func related(a, b []string) bool {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}

	for i := 0; i < n; i++ {
		if a[i] != b[i] {
			return false
		}
	}

	return true
}

func lookup(node map[string]any, parts []string) (any, bool) {
	if len(parts) == 0 {
		return node, true
	}

	var cur any = node
	for _, p := range parts {
		m, ok := cur.(map[string]any)
		if !ok {
			return nil, false
		}

		cur, ok = m[p]
		if !ok {
			return nil, false
		}
	}

	return cur, true
}

func assign(node map[string]any, parts []string, value any) {
	cur := node
	for _, p := range parts[:len(parts)-1] {
		next, ok := cur[p].(map[string]any)
		if !ok {
			next = make(map[string]any)
			cur[p] = next
		}

		cur = next
	}

	cur[parts[len(parts)-1]] = value
}

func remove(node map[string]any, parts []string) {
	cur := node
	for _, p := range parts[:len(parts)-1] {
		next, ok := cur[p].(map[string]any)
		if !ok {
			return
		}

		cur = next
	}

	delete(cur, parts[len(parts)-1])
}

func deepCopy(v any) any {
	switch t := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(t))
		for k, val := range t {
			out[k] = deepCopy(val)
		}

		return out
	case []any:
		out := make([]any, len(t))
		for i, val := range t {
			out[i] = deepCopy(val)
		}

		return out
	default:
		return v
	}
}
