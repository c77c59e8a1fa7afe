package world

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/eagleglass/airsim/internal/geo"
	"github.com/eagleglass/airsim/pkg/core"
)

func newMap() *Map {
	return New(geo.NewBounds(0, 0, 50, 50), "colony", "pirates")
}

func TestMap_SpawnAndDestroy(t *testing.T) {
	m := newMap()
	id := m.SpawnEntity("helicopter", core.Vec3{X: 5, Y: 15, Z: 5}, 90)

	e, ok := m.Entity(id)
	require.True(t, ok)
	assert.Equal(t, "helicopter", e.Kind)
	assert.Equal(t, 1, m.Count("helicopter"))

	m.DestroyEntity(id)
	m.DestroyEntity(id)
	assert.Equal(t, 0, m.Count("helicopter"))
	assert.Empty(t, m.Entities())
}

func TestMap_RestoreEntity(t *testing.T) {
	m := newMap()
	id := core.NewEntityID()

	got := m.RestoreEntity(id, "helicopter", core.Vec3{X: 3, Y: 5, Z: 4}, 90)
	assert.Equal(t, id, got)
	got = m.RestoreEntity(id, "helicopter", core.Vec3{X: 6, Y: 5, Z: 4}, 90)
	assert.Equal(t, id, got)

	e, ok := m.Entity(id)
	require.True(t, ok)
	assert.Equal(t, core.Vec3{X: 6, Y: 5, Z: 4}, e.Position)
	assert.Len(t, m.Entities(), 1, "restoring twice keeps one entity")

	fresh := m.RestoreEntity(core.NilEntity, "fighter", core.Vec3{}, 0)
	assert.False(t, fresh.IsNil())
	assert.Equal(t, 1, m.Count("fighter"))
}

func TestMap_FindNearestHostile(t *testing.T) {
	m := newMap()
	friend := m.AddActor(m.GenerateActor("colonist", "colony"), core.Vec3{X: 1})
	far := m.AddActor(m.GenerateActor("raider", "pirates"), core.Vec3{X: 9})
	near := m.AddActor(m.GenerateActor("raider", "pirates"), core.Vec3{X: 4})
	tie := m.AddActor(m.GenerateActor("raider", "pirates"), core.Vec3{X: -4})
	_ = m.AddActor(m.GenerateActor("raider", "pirates"), core.Vec3{X: 40})

	got, ok := m.FindNearestHostile(core.Vec3{}, 20, nil)
	require.True(t, ok)
	assert.Equal(t, near, got.ID, "ties go to the earlier actor")
	assert.NotEqual(t, tie, got.ID)
	assert.True(t, got.Hostile)

	got, ok = m.FindNearestHostile(core.Vec3{}, 20, func(t core.Target) bool { return t.ID == far })
	require.True(t, ok)
	assert.Equal(t, far, got.ID)

	ft, ok := m.Target(friend)
	require.True(t, ok)
	assert.False(t, ft.Hostile)

	_, ok = m.FindNearestHostile(core.Vec3{}, 2, nil)
	assert.False(t, ok)
}

func TestMap_FindNearestHostileFromAltitude(t *testing.T) {
	m := newMap()
	edge := m.AddActor(m.GenerateActor("raider", "pirates"), core.Vec3{X: 12})

	// A hovering gunship five cells up still reaches the ground target
	// at the edge of its range.
	got, ok := m.FindNearestHostile(core.Vec3{Y: 5}, 12, nil)
	require.True(t, ok)
	assert.Equal(t, edge, got.ID)
}

func TestMap_ApplyDamage(t *testing.T) {
	m := newMap()
	id := m.AddActor(m.GenerateActor("raider", "pirates"), core.Vec3{})
	src := core.NewEntityID()

	m.ApplyDamage(id, 80, 0.5, src)
	tg, _ := m.Target(id)
	assert.True(t, tg.Downed)
	assert.False(t, tg.Dead)

	m.ApplyDamage(id, 30, 0.5, src)
	tg, _ = m.Target(id)
	assert.True(t, tg.Dead)
	assert.False(t, tg.Downed)

	m.ApplyDamage(id, 30, 0.5, src)
	assert.Len(t, m.Hits(), 2, "dead actors take no more hits")
	assert.Equal(t, map[core.Faction]int{"pirates": 1}, m.Casualties())

	_, found := m.FindNearestHostile(core.Vec3{}, 10, nil)
	assert.False(t, found)
}

func TestMap_LineOfEffect(t *testing.T) {
	m := newMap()
	id := m.AddActor(m.GenerateActor("raider", "pirates"), core.Vec3{X: 10.5, Z: 0.5})
	tg, _ := m.Target(id)

	assert.True(t, m.HasLineOfEffect(core.Vec3{X: 0.5, Z: 0.5}, tg))
	m.AddWall(core.Cell{X: 5, Z: 0})
	assert.False(t, m.HasLineOfEffect(core.Vec3{X: 0.5, Z: 0.5}, tg))
}

func TestMap_PlaceActorAndTargetsAt(t *testing.T) {
	m := newMap()
	m.SetGround(core.Cell{X: 3, Z: 4}, 2)
	a := m.GenerateActor("trooper", "colony")
	m.PlaceActor(a, core.Cell{X: 3, Z: 4})

	ts := m.TargetsAt(core.Cell{X: 3, Z: 4})
	require.Len(t, ts, 1)
	assert.Equal(t, a.ID, ts[0].ID)
	assert.Equal(t, 2.0, ts[0].Position.Y)
	assert.Empty(t, m.TargetsAt(core.Cell{X: 0, Z: 0}))
}

func TestMap_Hostility(t *testing.T) {
	m := newMap()
	assert.True(t, m.IsHostile("pirates"))
	assert.False(t, m.IsHostile("colony"))
	assert.False(t, m.IsHostile(""))

	m.SetHostile("", true)
	assert.True(t, m.IsHostile(""))
	m.SetHostile("pirates", false)
	assert.False(t, m.IsHostile("pirates"))

	m.SetHostile("colony", true)
	assert.False(t, m.IsHostile("colony"), "the player is never hostile to itself")
}
