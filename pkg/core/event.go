// pkg/core/event.go
package core

import "time"

// EventKind classifies a simulation event.
type EventKind string

const (
	EventUnitSpawned       EventKind = "unit.spawned"
	EventUnitImpacted      EventKind = "unit.impacted"
	EventUnitDeparted      EventKind = "unit.departed"
	EventUnitDestroyed     EventKind = "unit.destroyed"
	EventWeaponBurst       EventKind = "weapon.burst"
	EventWeaponOutOfAmmo   EventKind = "weapon.out_of_ammo"
	EventProjectile        EventKind = "weapon.projectile"
	EventPassengerDeployed EventKind = "passenger.deployed"
	EventResourceConsumed  EventKind = "resource.consumed"
	EventResourceLoaded    EventKind = "resource.loaded"
	EventAbilityCast       EventKind = "ability.cast"
	EventAbilityRejected   EventKind = "ability.rejected"
)

// EventKinds lists every kind the simulation publishes.
var EventKinds = []EventKind{
	EventUnitSpawned,
	EventUnitImpacted,
	EventUnitDeparted,
	EventUnitDestroyed,
	EventWeaponBurst,
	EventWeaponOutOfAmmo,
	EventProjectile,
	EventPassengerDeployed,
	EventResourceConsumed,
	EventResourceLoaded,
	EventAbilityCast,
	EventAbilityRejected,
}

// Event is something observable that happened during a tick.
type Event struct {
	Tick     int               `json:"tick"`
	Time     time.Time         `json:"time"`
	Kind     EventKind         `json:"kind"`
	Source   EntityID          `json:"source"`
	Target   EntityID          `json:"target,omitempty"`
	Position Vec3              `json:"position"`
	Message  string            `json:"message,omitempty"`
	Data     map[string]string `json:"data,omitempty"`
}

// Session describes one simulation run.
type Session struct {
	ID             EntityID  `json:"id"`
	Scenario       string    `json:"scenario"`
	StartTime      time.Time `json:"startTime"`
	TicksPerSecond int       `json:"ticksPerSecond"`
}
