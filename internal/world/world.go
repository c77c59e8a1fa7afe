// Package world is an in-memory map the simulation can run against: a
// bounded rectangle with entities, factions, walls and a damage ledger.
package world

import (
	"sync"

	"github.com/eagleglass/airsim/internal/geo"
	"github.com/eagleglass/airsim/pkg/core"
)

const (
	// DefaultHealth is the health of a newly placed actor.
	DefaultHealth = 100.0
	// DownedBelow is the health under which a living actor is downed.
	DownedBelow = 25.0
)

// Entity is anything placed on the map. Actors have health and a faction,
// other entities (aircraft, projectiles, debris) only a position.
type Entity struct {
	ID       core.EntityID
	Kind     string
	Faction  core.Faction
	Position core.Vec3
	Rotation core.Rotation
	Actor    bool
	Health   float64
	Dead     bool
	Downed   bool
}

// Hit is one entry of the damage ledger.
type Hit struct {
	Target      core.EntityID
	Source      core.EntityID
	Amount      float64
	Penetration float64
}

// Map is safe for concurrent use; the simulation mutates it from a single
// goroutine while reporters read counts.
type Map struct {
	mu       sync.RWMutex
	bounds   geo.Bounds
	player   core.Faction
	hostile  map[core.Faction]bool
	order    []core.EntityID
	entities map[core.EntityID]*Entity
	walls    map[core.Cell]bool
	ground   map[core.Cell]float64
	hits     []Hit
}

// New creates an empty map. player is the defending side; hostile lists
// the factions it is at war with.
func New(bounds geo.Bounds, player core.Faction, hostile ...core.Faction) *Map {
	m := &Map{
		bounds:   bounds,
		player:   player,
		hostile:  make(map[core.Faction]bool, len(hostile)),
		entities: make(map[core.EntityID]*Entity),
		walls:    make(map[core.Cell]bool),
		ground:   make(map[core.Cell]float64),
	}
	for _, f := range hostile {
		m.hostile[f] = true
	}
	return m
}

func (m *Map) Bounds() geo.Bounds { return m.bounds }

func (m *Map) Player() core.Faction { return m.player }

// IsHostile reports whether f is at war with the player.
func (m *Map) IsHostile(f core.Faction) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.isHostile(f)
}

func (m *Map) isHostile(f core.Faction) bool {
	return f != m.player && m.hostile[f]
}

// SetHostile declares or ends a war with f.
func (m *Map) SetHostile(f core.Faction, hostile bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if hostile {
		m.hostile[f] = true
		return
	}
	delete(m.hostile, f)
}

// AddWall blocks line of effect through c.
func (m *Map) AddWall(c core.Cell) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.walls[c] = true
}

// SetGround sets the ground altitude of c. Unset cells are at 0.
func (m *Map) SetGround(c core.Cell, altitude float64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ground[c] = altitude
}

func (m *Map) GroundAltitude(c core.Cell) float64 {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.ground[c]
}

func (m *Map) IsInBounds(pos core.Vec3) bool {
	return m.bounds.Contains(pos)
}

func (m *Map) add(e *Entity) {
	if e.ID.IsNil() {
		e.ID = core.NewEntityID()
	}
	if _, ok := m.entities[e.ID]; !ok {
		m.order = append(m.order, e.ID)
	}
	m.entities[e.ID] = e
}

// SpawnEntity places a non-actor entity and returns its handle.
func (m *Map) SpawnEntity(kind string, pos core.Vec3, rot core.Rotation) core.EntityID {
	m.mu.Lock()
	defer m.mu.Unlock()
	e := &Entity{Kind: kind, Position: pos, Rotation: rot}
	m.add(e)
	return e.ID
}

// RestoreEntity places kind under id, replacing an entity already held
// there. A nil id gets a fresh handle.
func (m *Map) RestoreEntity(id core.EntityID, kind string, pos core.Vec3, rot core.Rotation) core.EntityID {
	m.mu.Lock()
	defer m.mu.Unlock()
	e := &Entity{ID: id, Kind: kind, Position: pos, Rotation: rot}
	m.add(e)
	return e.ID
}

// DestroyEntity removes id. Unknown handles are ignored.
func (m *Map) DestroyEntity(id core.EntityID) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.entities[id]; !ok {
		return
	}
	delete(m.entities, id)
	for i, o := range m.order {
		if o == id {
			m.order = append(m.order[:i], m.order[i+1:]...)
			break
		}
	}
}

// GenerateActor creates a new actor that is not yet on the map.
func (m *Map) GenerateActor(kind string, faction core.Faction) core.Actor {
	return core.Actor{ID: core.NewEntityID(), Kind: kind, Faction: faction}
}

// AddActor places a at pos with full health.
func (m *Map) AddActor(a core.Actor, pos core.Vec3) core.EntityID {
	m.mu.Lock()
	defer m.mu.Unlock()
	e := &Entity{ID: a.ID, Kind: a.Kind, Faction: a.Faction, Position: pos, Actor: true, Health: DefaultHealth}
	m.add(e)
	return e.ID
}

// PlaceActor puts a on the ground of cell c.
func (m *Map) PlaceActor(a core.Actor, c core.Cell) {
	pos := c.Vec()
	pos.Y = m.GroundAltitude(c)
	m.AddActor(a, pos)
}

// Entity returns a copy of the entity with handle id.
func (m *Map) Entity(id core.EntityID) (Entity, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	e, ok := m.entities[id]
	if !ok {
		return Entity{}, false
	}
	return *e, true
}

// Entities returns copies of every entity in placement order.
func (m *Map) Entities() []Entity {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]Entity, 0, len(m.order))
	for _, id := range m.order {
		out = append(out, *m.entities[id])
	}
	return out
}

// Count returns how many entities of kind are on the map.
func (m *Map) Count(kind string) int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	n := 0
	for _, e := range m.entities {
		if e.Kind == kind {
			n++
		}
	}
	return n
}

func (m *Map) target(e *Entity) core.Target {
	return core.Target{
		ID:       e.ID,
		Kind:     e.Kind,
		Faction:  e.Faction,
		Position: e.Position,
		Dead:     e.Dead,
		Downed:   e.Downed,
		Hostile:  m.isHostile(e.Faction),
	}
}

// Target returns the targeting view of an actor.
func (m *Map) Target(id core.EntityID) (core.Target, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	e, ok := m.entities[id]
	if !ok || !e.Actor {
		return core.Target{}, false
	}
	return m.target(e), true
}

// FindNearestHostile returns the closest living hostile actor within rng of
// pos that satisfies pred. Ties go to the earlier placed actor.
func (m *Map) FindNearestHostile(pos core.Vec3, rng float64, pred func(core.Target) bool) (core.Target, bool) {
	m.mu.RLock()
	candidates := make([]core.Target, 0)
	for _, id := range m.order {
		e := m.entities[id]
		if !e.Actor || e.Dead || !m.isHostile(e.Faction) {
			continue
		}
		if pos.DistanceTo(e.Position) > rng {
			continue
		}
		candidates = append(candidates, m.target(e))
	}
	m.mu.RUnlock()

	// pred may call back into the map
	var best core.Target
	found := false
	bestDist := 0.0
	for _, t := range candidates {
		if pred != nil && !pred(t) {
			continue
		}
		d := pos.DistanceTo(t.Position)
		if !found || d < bestDist {
			best, bestDist, found = t, d, true
		}
	}
	return best, found
}

// HasLineOfEffect is false when a wall lies between from and the target.
func (m *Map) HasLineOfEffect(from core.Vec3, to core.Target) bool {
	m.mu.RLock()
	walls := make([]core.Cell, 0, len(m.walls))
	for c := range m.walls {
		walls = append(walls, c)
	}
	m.mu.RUnlock()
	return !geo.Blocked(from, to.Position, walls)
}

// TargetsAt returns every actor standing in c, in placement order.
func (m *Map) TargetsAt(c core.Cell) []core.Target {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []core.Target
	for _, id := range m.order {
		e := m.entities[id]
		if e.Actor && e.Position.Cell() == c {
			out = append(out, m.target(e))
		}
	}
	return out
}

// ApplyDamage records the hit and lowers the target's health. Penetration
// is recorded only.
func (m *Map) ApplyDamage(target core.EntityID, amount, penetration float64, source core.EntityID) {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.entities[target]
	if !ok || !e.Actor || e.Dead {
		return
	}
	m.hits = append(m.hits, Hit{Target: target, Source: source, Amount: amount, Penetration: penetration})
	e.Health -= amount
	switch {
	case e.Health <= 0:
		e.Health = 0
		e.Dead = true
		e.Downed = false
	case e.Health < DownedBelow:
		e.Downed = true
	}
}

// Hits returns a copy of the damage ledger.
func (m *Map) Hits() []Hit {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]Hit, len(m.hits))
	copy(out, m.hits)
	return out
}

// Casualties counts dead actors per faction.
func (m *Map) Casualties() map[core.Faction]int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make(map[core.Faction]int)
	for _, e := range m.entities {
		if e.Actor && e.Dead {
			out[e.Faction]++
		}
	}
	return out
}
