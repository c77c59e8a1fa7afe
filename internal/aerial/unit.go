package aerial

import (
	"math"

	"github.com/eagleglass/airsim/internal/flight"
	"github.com/eagleglass/airsim/internal/queue"
	"github.com/eagleglass/airsim/internal/rope"
	"github.com/eagleglass/airsim/internal/weapon"
	"github.com/eagleglass/airsim/pkg/core"
)

// Unit is one aircraft. Which of Flight, Weapons, Cadence, Ropes and Drops
// are set depends on Config.Kind.
type Unit struct {
	ID     core.EntityID
	Config Config

	// Duration is the remaining service time; see Config.Duration.
	Duration   int
	ImpactLeft int
	Impacted   bool
	Departed   bool
	Destroyed  bool

	Position core.Vec3
	Rotation core.Rotation

	Flight   *flight.Controller
	Weapons  *weapon.Machine
	Cadence  *weapon.Cadence
	Ropes    *rope.Deployment
	Drops    *queue.Queue[core.Actor]
	DropLeft int

	effect Effect
	env    Env
	tick   int
}

// build wires the sub-components for cfg without touching the world.
func build(cfg Config, env Env) *Unit {
	u := &Unit{
		Config:   cfg,
		Duration: cfg.Duration,
		effect:   effectFor(cfg.Kind),
		env:      env,
	}
	if cfg.Kind.Hovering() {
		if cfg.Kind.Armed() && len(cfg.Weapons) > 0 {
			ws := make([]*weapon.Weapon, 0, len(cfg.Weapons))
			for _, def := range cfg.Weapons {
				ws = append(ws, weapon.New(def, nil))
			}
			m := weapon.NewMachine(env.World, weapon.ShooterFunc(u.shoot), weapon.NewAmmo(cfg.Ammo), ws...)
			m.TicksPerSecond = env.TicksPerSecond
			m.ScanInterval = env.ScanInterval
			m.OnOutOfAmmo = u.outOfAmmo
			u.Weapons = m
		}
		if cfg.Ropes && cfg.Kind != Support {
			u.Ropes = rope.NewDeployment(cfg.Rope)
		}
		return u
	}

	u.Flight = flight.New(cfg.Start, cfg.End, cfg.Speed)
	u.Flight.PreEntry = cfg.PreEntry
	u.Flight.Altitude = cfg.Altitude
	u.Cadence = weapon.NewCadence(cfg.Weapons...)
	if cfg.Kind == Paradrop {
		u.Drops = queue.New[core.Actor]()
	}
	return u
}

// Spawn places a new unit in env.World and returns it. Hovering units
// appear above their target and impact after TicksToImpact; fly-overs
// enter at the bounds edge behind Start.
func Spawn(cfg Config, env Env) *Unit {
	cfg = cfg.withDefaults()
	env = env.withDefaults()
	u := build(cfg, env)

	if cfg.Kind.Hovering() {
		u.Position = cfg.Target.Vec()
		u.Position.Y = env.World.GroundAltitude(cfg.Target) + cfg.HoverAltitude
		if cfg.Start != cfg.Target {
			u.Rotation = core.RotationOf(cfg.Target.Vec().Sub(cfg.Start.Vec()))
		}
		u.ImpactLeft = cfg.TicksToImpact
	} else {
		u.Flight.Launch(env.World)
		u.Position = u.Flight.Position
		u.Rotation = u.Flight.Rotation()
		u.Impacted = true
	}

	u.ID = env.World.SpawnEntity(cfg.Name, u.Position, u.Rotation)
	u.effect.OnSpawnCreated(u)
	u.publish(core.EventUnitSpawned, core.NilEntity, u.Position, cfg.Kind.String(), nil)
	return u
}

func (u *Unit) Kind() Kind { return u.Config.Kind }

// Alive is false once the unit was destroyed or departed.
func (u *Unit) Alive() bool { return !u.Destroyed }

func (u *Unit) Cell() core.Cell { return u.Position.Cell() }

// Direction is the unit's heading on the ground plane.
func (u *Unit) Direction() core.Vec3 {
	if u.Flight != nil {
		return u.Flight.Direction
	}
	rad := float64(u.Rotation) * math.Pi / 180
	return core.Vec3{X: math.Sin(rad), Z: math.Cos(rad)}
}

// Tick advances the unit by one step: movement or impact countdown, then
// weapons, then lines and drops, then the service time.
func (u *Unit) Tick(tick int) {
	if u.Destroyed {
		return
	}
	u.tick = tick

	if u.Flight != nil {
		if !u.Flight.Tick(u.env.World) {
			u.Destroy()
			return
		}
		u.Position = u.Flight.Position
	} else if !u.Impacted {
		u.ImpactLeft--
		if u.ImpactLeft > 0 {
			return
		}
		u.Impact()
	}

	u.tickWeapons(tick)
	if u.Destroyed {
		return
	}

	if u.Ropes != nil {
		cell := u.Cell()
		u.Ropes.Tick(rope.Env{
			UnitAltitude:   u.Position.Y,
			GroundAltitude: u.env.World.GroundAltitude(cell),
			Ground:         cell,
		}, u.deploy)
	}
	if u.Drops != nil && u.Flight.InDropRange() {
		u.drop()
	}

	u.checkService()
}

func (u *Unit) tickWeapons(tick int) {
	if u.Flight == nil {
		if u.Weapons != nil {
			u.Weapons.Tick(tick, u.Position, true)
		}
		return
	}
	if !u.Flight.InFiringRange() {
		return
	}
	u.Cadence.Tick(func(_ int, def weapon.Def, due bool) {
		if due {
			u.effect.FireProjectile(u, Shot{Def: def, Origin: u.Position, First: true})
		}
		u.effect.ApplyAreaEffect(u)
	})
}

func (u *Unit) drop() {
	u.DropLeft--
	if u.DropLeft > 0 {
		return
	}
	if a, ok := u.Drops.Pop(); ok {
		u.deploy(a, u.Cell())
	}
	u.DropLeft = u.Config.DropInterval
}

func (u *Unit) checkService() {
	switch u.Config.Kind {
	case Support:
		u.countdown()
	case Transport:
		if u.Ropes == nil || !u.Ropes.Active || u.Ropes.IsComplete() {
			u.Depart()
		}
	case Reinforcement:
		if u.Ropes != nil && u.Ropes.Active && !u.Ropes.IsComplete() {
			return
		}
		u.countdown()
	}
}

func (u *Unit) countdown() {
	if u.Duration <= 0 {
		return
	}
	u.Duration--
	if u.Duration == 0 {
		u.Depart()
	}
}

// Impact activates a hovering unit and starts lowering queued passengers.
func (u *Unit) Impact() {
	if u.Impacted || u.Destroyed {
		return
	}
	u.Impacted = true
	u.ImpactLeft = 0
	u.publish(core.EventUnitImpacted, core.NilEntity, u.Position, "", nil)
	if u.Ropes != nil && !u.Ropes.Queue.Empty() {
		u.Ropes.Start()
	}
}

// Depart replaces the unit with its leaving entity and destroys it. Calling
// it on a destroyed unit does nothing.
func (u *Unit) Depart() {
	if u.Destroyed {
		return
	}
	u.Departed = true
	if u.Config.Leaving != "" {
		u.env.World.SpawnEntity(u.Config.Leaving, u.Position, u.Rotation)
	}
	u.publish(core.EventUnitDeparted, core.NilEntity, u.Position, u.Config.Leaving, nil)
	u.Destroy()
}

// Destroy removes the unit from the world. No state changes afterwards.
func (u *Unit) Destroy() {
	if u.Destroyed {
		return
	}
	u.Destroyed = true
	if u.Weapons != nil {
		u.Weapons.Stop()
	}
	u.env.World.DestroyEntity(u.ID)
	u.publish(core.EventUnitDestroyed, core.NilEntity, u.Position, "", nil)
}

func (u *Unit) outOfAmmo(w *weapon.Weapon) {
	u.publish(core.EventWeaponOutOfAmmo, core.NilEntity, u.Position, w.Def.Name, nil)
	if u.Config.OutOfAmmo == DepartOnEmpty {
		u.Depart()
		return
	}
	u.Destroy()
}

func (u *Unit) shoot(s weapon.Shot) {
	if s.First {
		u.publish(core.EventWeaponBurst, s.Target.ID, s.Target.Position, s.Weapon.Def.Name, nil)
	}
	u.effect.FireProjectile(u, Shot{Def: s.Weapon.Def, Origin: s.Origin, Target: s.Target, First: s.First})
}

func (u *Unit) deploy(a core.Actor, at core.Cell) {
	u.env.World.PlaceActor(a, at)
	u.publish(core.EventPassengerDeployed, a.ID, at.Vec(), a.Kind, nil)
}

func (u *Unit) hit(target core.EntityID, amount, penetration float64) {
	if u.env.Damage == nil || target.IsNil() || amount <= 0 {
		return
	}
	u.env.Damage.ApplyDamage(target, amount, penetration, u.ID)
}

func (u *Unit) publish(kind core.EventKind, target core.EntityID, pos core.Vec3, msg string, data map[string]string) {
	if u.env.Events == nil {
		return
	}
	u.env.Events.Publish(core.Event{
		Tick:     u.tick,
		Kind:     kind,
		Source:   u.ID,
		Target:   target,
		Position: pos,
		Message:  msg,
		Data:     data,
	})
}

// Passengers is how many passengers are still aboard.
func (u *Unit) Passengers() int {
	n := 0
	if u.Ropes != nil {
		n += u.Ropes.Queue.Len()
		if u.Ropes.Left.HasPassenger() {
			n++
		}
		if u.Ropes.Right.HasPassenger() {
			n++
		}
	}
	if u.Drops != nil {
		n += u.Drops.Len()
	}
	return n
}
