package weapon

import (
	"github.com/eagleglass/airsim/pkg/core"
)

const (
	// DefaultTicksPerSecond converts weapon timings to ticks.
	DefaultTicksPerSecond = 60
	// DefaultScanInterval is how often an idle weapon looks for targets.
	DefaultScanInterval = 15
)

// Targeting is what the machine needs from the world to pick targets.
type Targeting interface {
	FindNearestHostile(pos core.Vec3, rng float64, pred func(core.Target) bool) (core.Target, bool)
	Target(id core.EntityID) (core.Target, bool)
	HasLineOfEffect(from core.Vec3, to core.Target) bool
}

// Shot is a single discharge handed to the Shooter.
type Shot struct {
	Weapon *Weapon
	Origin core.Vec3
	Target core.Target
	// First is set on the opening shot of a burst.
	First bool
}

// Shooter is the fire primitive: it resolves one shot, e.g. by applying
// damage.
type Shooter interface {
	Shoot(shot Shot)
}

// ShooterFunc adapts a function to Shooter.
type ShooterFunc func(Shot)

func (f ShooterFunc) Shoot(s Shot) { f(s) }

// Machine runs the Idle → Warmup → Bursting → Cooldown cycle for every
// weapon of one unit. Weapons only share their ammunition, if anything.
type Machine struct {
	Weapons        []*Weapon
	Shared         *Ammo
	TicksPerSecond int
	ScanInterval   int
	// OnOutOfAmmo runs when a burst cannot be paid for.
	OnOutOfAmmo func(w *Weapon)

	targeting Targeting
	shooter   Shooter
	stopped   bool
}

// NewMachine creates a machine for weapons. shared, if not nil, is used by
// every weapon that has no stock of its own.
func NewMachine(targeting Targeting, shooter Shooter, shared *Ammo, weapons ...*Weapon) *Machine {
	m := &Machine{
		Weapons:        weapons,
		Shared:         shared,
		TicksPerSecond: DefaultTicksPerSecond,
		ScanInterval:   DefaultScanInterval,
		targeting:      targeting,
		shooter:        shooter,
	}
	for _, w := range weapons {
		if w.Ammo == nil {
			w.Ammo = shared
		}
	}
	return m
}

// Bind attaches collaborators after a restore.
func (m *Machine) Bind(targeting Targeting, shooter Shooter) {
	m.targeting = targeting
	m.shooter = shooter
}

// Stop halts the machine for good, including for the rest of the current
// tick. Used when the owning unit is destroyed.
func (m *Machine) Stop() {
	m.stopped = true
}

func (m *Machine) Stopped() bool { return m.stopped }

func (m *Machine) ticks(seconds float64) int {
	return int(seconds * float64(m.TicksPerSecond))
}

// Tick evaluates every weapon once. immediate allows a weapon without
// warmup to fire on the tick it acquires a target.
func (m *Machine) Tick(tick int, origin core.Vec3, immediate bool) {
	if m.stopped {
		return
	}
	scan := m.ScanInterval <= 1 || tick%m.ScanInterval == 0
	for _, w := range m.Weapons {
		if m.stopped {
			return
		}
		switch w.State {
		case Bursting:
			continue
		case Warmup:
			w.WarmupLeft--
			if w.WarmupLeft <= 0 {
				w.WarmupLeft = 0
				m.beginBurst(w, origin)
			}
			continue
		case Cooldown:
			w.CooldownLeft--
			if w.CooldownLeft > 0 {
				continue
			}
			w.reset()
		}
		if scan {
			m.acquire(w, origin, immediate)
		}
	}
	m.driveBursts(origin)
}

// Valid reports whether t may be engaged from origin by w.
func (m *Machine) Valid(w *Weapon, origin core.Vec3, t core.Target) bool {
	if t.Dead || t.Downed || !t.Hostile {
		return false
	}
	if origin.DistanceTo(t.Position) > w.Def.Range {
		return false
	}
	return m.targeting.HasLineOfEffect(origin, t)
}

func (m *Machine) acquire(w *Weapon, origin core.Vec3, immediate bool) {
	t, ok := m.targeting.FindNearestHostile(origin, w.Def.Range, func(t core.Target) bool {
		return m.Valid(w, origin, t)
	})
	if !ok {
		return
	}
	w.Target = t.ID
	if warmup := m.ticks(w.Def.WarmupSeconds); warmup > 0 {
		w.State = Warmup
		w.WarmupLeft = warmup
		return
	}
	if immediate {
		m.beginBurst(w, origin)
		return
	}
	w.State = Warmup
	w.WarmupLeft = 1
}

func (m *Machine) beginBurst(w *Weapon, origin core.Vec3) {
	t, ok := m.targeting.Target(w.Target)
	if !ok || !m.Valid(w, origin, t) {
		w.reset()
		return
	}
	if w.Ammo != nil && !w.Ammo.Consume() {
		w.reset()
		if m.OnOutOfAmmo != nil {
			m.OnOutOfAmmo(w)
		}
		return
	}
	w.State = Bursting
	w.shotsLeft = max(1, w.Def.BurstShots)
	w.opened = true
	m.fire(w, origin, t, true)
}

func (m *Machine) driveBursts(origin core.Vec3) {
	for _, w := range m.Weapons {
		if m.stopped {
			return
		}
		if w.State != Bursting {
			continue
		}
		if w.opened {
			// the opening shot already went out this tick
			w.opened = false
			continue
		}
		if w.shotDelay > 0 {
			w.shotDelay--
			if w.shotDelay > 0 {
				continue
			}
		}
		t, ok := m.targeting.Target(w.Target)
		if !ok || t.Dead {
			m.CompleteBurst(w)
			continue
		}
		m.fire(w, origin, t, false)
	}
}

func (m *Machine) fire(w *Weapon, origin core.Vec3, t core.Target, first bool) {
	if m.shooter != nil {
		m.shooter.Shoot(Shot{Weapon: w, Origin: origin, Target: t, First: first})
	}
	w.shotsLeft--
	if w.shotsLeft <= 0 {
		m.CompleteBurst(w)
		return
	}
	w.shotDelay = max(1, w.Def.TicksBetweenShots)
}

// CompleteBurst ends the running burst of w and starts its cooldown.
func (m *Machine) CompleteBurst(w *Weapon) {
	w.opened = false
	w.shotsLeft = 0
	w.shotDelay = 0
	w.CooldownLeft = m.ticks(w.Def.CooldownSeconds)
	if w.CooldownLeft <= 0 {
		w.reset()
		return
	}
	w.State = Cooldown
}

// Idle reports whether no weapon is mid-cycle.
func (m *Machine) Idle() bool {
	for _, w := range m.Weapons {
		if w.State != Idle {
			return false
		}
	}
	return true
}

// Save writes the shared stock and every weapon's cycle state.
func (m *Machine) Save(s core.Snapshot, prefix string) {
	if m.Shared != nil {
		m.Shared.Save(s, core.Key(prefix, "ammo"))
	}
	s.PutInt(core.Key(prefix, "weapons"), len(m.Weapons))
	for i, w := range m.Weapons {
		wp := core.IndexKey(prefix+".weapons", i, "")
		w.save(s, wp)
		if w.Ammo != nil && w.Ammo != m.Shared {
			w.Ammo.Save(s, core.Key(wp, "ammo"))
		}
	}
}

// Load restores state into the already configured weapons. Entries beyond
// the configured weapons are ignored and missing ones reset to Idle.
func (m *Machine) Load(s core.Snapshot, prefix string) {
	if m.Shared != nil {
		m.Shared.Load(s, core.Key(prefix, "ammo"))
	}
	n := s.Int(core.Key(prefix, "weapons"), 0)
	for i, w := range m.Weapons {
		if i >= n {
			w.reset()
			continue
		}
		wp := core.IndexKey(prefix+".weapons", i, "")
		w.load(s, wp)
		if w.Ammo != nil && w.Ammo != m.Shared {
			w.Ammo.Load(s, core.Key(wp, "ammo"))
		}
	}
}
