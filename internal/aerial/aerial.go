// Package aerial composes flight, weapons and descent lines into aircraft
// that hover over a point or fly across the map.
package aerial

//go:generate go tool mockgen -destination=./mocks/world_mock.go -package=mocks . World,DamageApplier,EventSink

import (
	"math/rand/v2"

	"github.com/eagleglass/airsim/internal/weapon"
	"github.com/eagleglass/airsim/pkg/core"
)

// World is everything a unit needs from the map it operates on.
type World interface {
	IsInBounds(pos core.Vec3) bool
	SpawnEntity(kind string, pos core.Vec3, rot core.Rotation) core.EntityID
	// RestoreEntity places kind under a saved handle; a nil id gets a new one.
	RestoreEntity(id core.EntityID, kind string, pos core.Vec3, rot core.Rotation) core.EntityID
	DestroyEntity(id core.EntityID)
	FindNearestHostile(pos core.Vec3, rng float64, pred func(core.Target) bool) (core.Target, bool)
	Target(id core.EntityID) (core.Target, bool)
	HasLineOfEffect(from core.Vec3, to core.Target) bool
	TargetsAt(cell core.Cell) []core.Target
	PlaceActor(a core.Actor, at core.Cell)
	GroundAltitude(cell core.Cell) float64
}

// ActorFactory generates passengers.
type ActorFactory interface {
	GenerateActor(kind string, faction core.Faction) core.Actor
}

// DamageApplier resolves hits.
type DamageApplier interface {
	ApplyDamage(target core.EntityID, amount, penetration float64, source core.EntityID)
}

// EventSink receives everything units report.
type EventSink interface {
	Publish(ev core.Event)
}

var _ weapon.Targeting = World(nil)

// Env bundles the collaborators of a unit. Damage and Events are optional.
type Env struct {
	World          World
	Damage         DamageApplier
	Events         EventSink
	Rand           *rand.Rand
	TicksPerSecond int
	ScanInterval   int
}

func (e Env) withDefaults() Env {
	if e.Rand == nil {
		e.Rand = rand.New(rand.NewPCG(1, 2))
	}
	if e.TicksPerSecond <= 0 {
		e.TicksPerSecond = weapon.DefaultTicksPerSecond
	}
	if e.ScanInterval <= 0 {
		e.ScanInterval = weapon.DefaultScanInterval
	}
	return e
}
