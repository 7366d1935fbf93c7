package memory

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDiff(t *testing.T) {
	prev := map[string]any{
		"status":  "playing",
		"round":   float64(1),
		"votes":   map[string]any{"a": "b"},
		"players": []any{map[string]any{"id": "a", "alive": true}},
		"topic":   "Algebra",
	}
	next := map[string]any{
		"status":  "playing",
		"round":   float64(2),
		"votes":   map[string]any{"a": "b", "c": "skip"},
		"players": []any{map[string]any{"id": "a", "alive": false}},
		"chat":    []any{},
	}

	fields := Diff(prev, next)

	assert.Equal(t, map[string]any{
		"round":   float64(2),
		"votes/c": "skip",
		"players": []any{map[string]any{"id": "a", "alive": false}},
		"chat":    []any{},
		"topic":   nil,
	}, fields)
}

func TestDiff_ClearedMapIsReplaced(t *testing.T) {
	fields := Diff(
		map[string]any{"votes": map[string]any{"a": "b"}},
		map[string]any{"votes": map[string]any{}},
	)

	assert.Equal(t, map[string]any{"votes": map[string]any{}}, fields)
}

func TestDiff_AppliedByMergeReproducesNext(t *testing.T) {
	ctx := context.Background()
	store := NewDocumentStore(nil)

	prev := map[string]any{"status": "waiting", "votes": map[string]any{"a": "b", "c": "d"}, "host": "a"}
	next := map[string]any{"status": "playing", "votes": map[string]any{"a": "skip"}}

	store.Set(ctx, "rooms/r1", prev)
	store.Merge(ctx, "rooms/r1", Diff(prev, next))

	doc, _ := store.Get("rooms/r1")
	assert.Equal(t, next, doc)
}

func TestDiff_NoChanges(t *testing.T) {
	doc := map[string]any{"status": "waiting", "votes": map[string]any{"a": "b"}}

	assert.Empty(t, Diff(doc, doc))
}
