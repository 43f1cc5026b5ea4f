package host_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rkellett/quarrel/internal/host"
)

func TestSetPath_DeepUpdate(t *testing.T) {
	doc := map[string]any{
		"system": map[string]any{
			"battleWear": map[string]any{
				"armor": map[string]any{
					"torso": map[string]any{"value": 1},
				},
			},
		},
	}
	require.NoError(t, host.SetPath(doc, "system.battleWear.armor.torso.value", 3))
	v, ok := host.GetPath(doc, "system.battleWear.armor.torso.value")
	require.True(t, ok)
	assert.Equal(t, 3, v)
}

func TestSetPath_CreatesMissingStructure(t *testing.T) {
	doc := map[string]any{}
	require.NoError(t, host.SetPath(doc, "system.conditions.pain.value", 2))
	v, ok := host.GetPath(doc, "system.conditions.pain.value")
	require.True(t, ok)
	assert.Equal(t, 2, v)
}

func TestSetPath_ReplacesNonMapIntermediate(t *testing.T) {
	doc := map[string]any{"system": "garbage"}
	require.NoError(t, host.SetPath(doc, "system.mob.bodies", 16))
	v, ok := host.GetPath(doc, "system.mob.bodies")
	require.True(t, ok)
	assert.Equal(t, 16, v)
}

func TestGetPath_Missing(t *testing.T) {
	doc := map[string]any{"a": map[string]any{"b": 1}}
	_, ok := host.GetPath(doc, "a.c")
	assert.False(t, ok)
	_, ok = host.GetPath(doc, "a.b.c")
	assert.False(t, ok)
}

func TestMemoryActorStore_UpdateIsolation(t *testing.T) {
	ctx := context.Background()
	store := host.NewMemoryActorStore()
	store.Put("a1", map[string]any{"name": "Vile", "system": map[string]any{}})

	doc, err := store.Get(ctx, "a1")
	require.NoError(t, err)
	doc["name"] = "mutated copy"

	again, err := store.Get(ctx, "a1")
	require.NoError(t, err)
	assert.Equal(t, "Vile", again["name"], "Get must return copies")

	require.NoError(t, store.Update(ctx, "a1", map[string]any{
		"system.battleWear.weapon.value": 2,
		"name":                           "Viler",
	}))
	updated, err := store.Get(ctx, "a1")
	require.NoError(t, err)
	assert.Equal(t, "Viler", updated["name"])
	v, ok := host.GetPath(updated, "system.battleWear.weapon.value")
	require.True(t, ok)
	assert.Equal(t, 2, v)
}

func TestMemoryActorStore_MissingActor(t *testing.T) {
	ctx := context.Background()
	store := host.NewMemoryActorStore()
	_, err := store.Get(ctx, "ghost")
	assert.ErrorIs(t, err, host.ErrActorNotFound)
	err = store.Update(ctx, "ghost", map[string]any{"name": "x"})
	assert.ErrorIs(t, err, host.ErrActorNotFound)
}

func TestMemoryActorStore_EmbeddedLifecycle(t *testing.T) {
	ctx := context.Background()
	store := host.NewMemoryActorStore()
	store.Put("a1", map[string]any{})

	ids, err := store.CreateEmbedded(ctx, "a1", "injury", []map[string]any{
		{"location": "Left Eye"},
		{"location": "Ribs"},
	})
	require.NoError(t, err)
	require.Len(t, ids, 2)
	assert.Len(t, store.Embedded("a1", "injury"), 2)

	require.NoError(t, store.DeleteEmbedded(ctx, "a1", "injury", ids[:1]))
	remaining := store.Embedded("a1", "injury")
	require.Len(t, remaining, 1)
	assert.Equal(t, "Ribs", remaining[0]["location"])
}

func TestMemoryChat_FlagsThreading(t *testing.T) {
	ctx := context.Background()
	chat := host.NewMemoryChat()
	id, err := chat.Create(ctx, host.Message{
		Content: "quarrel opened",
		Flags: map[string]map[string]any{
			"quarrel": {"combatId": "abc"},
		},
	})
	require.NoError(t, err)

	require.NoError(t, chat.SetFlag(ctx, id, "quarrel", "netHits", 3))
	msg, err := chat.Get(ctx, id)
	require.NoError(t, err)

	v, ok := msg.Flag("quarrel", "combatId")
	require.True(t, ok)
	assert.Equal(t, "abc", v)
	v, ok = msg.Flag("quarrel", "netHits")
	require.True(t, ok)
	assert.Equal(t, 3, v)
	_, ok = msg.Flag("other", "combatId")
	assert.False(t, ok)
}

func TestMemoryBus_FanOut(t *testing.T) {
	bus := host.NewMemoryBus()
	var got []string
	bus.On("wear.request", func(ev host.Event) { got = append(got, "a") })
	bus.On("wear.request", func(ev host.Event) { got = append(got, "b") })
	bus.On("wear.applied", func(ev host.Event) { got = append(got, "c") })

	bus.Emit(host.Event{Name: "wear.request"})
	assert.Equal(t, []string{"a", "b"}, got)
}

func TestMemoryBus_HandlerMayRegisterDuringDispatch(t *testing.T) {
	bus := host.NewMemoryBus()
	var got []string
	bus.On("quarrel.open", func(ev host.Event) {
		got = append(got, "first")
		bus.On("quarrel.open", func(ev host.Event) { got = append(got, "late") })
	})

	// Dispatch runs over a snapshot: the handler added mid-emit fires
	// on the next emit, not this one.
	bus.Emit(host.Event{Name: "quarrel.open"})
	assert.Equal(t, []string{"first"}, got)

	bus.Emit(host.Event{Name: "quarrel.open"})
	assert.Equal(t, []string{"first", "first", "late"}, got)
}

func TestWhisperTargets(t *testing.T) {
	gms := []string{"gm1", "gm2"}
	assert.Nil(t, host.WhisperTargets(host.RollPublic, gms, "u1"))
	assert.Equal(t, []string{"gm1", "gm2"}, host.WhisperTargets(host.RollPrivate, gms, "u1"))
	assert.Equal(t, []string{"u1"}, host.WhisperTargets(host.RollSelf, gms, "u1"))
	assert.Equal(t, []string{"gm1", "gm2", "u1"}, host.WhisperTargets(host.RollGMSelf, gms, "u1"))
}
