package aerial

import (
	"math"

	"github.com/eagleglass/airsim/internal/weapon"
	"github.com/eagleglass/airsim/pkg/core"
)

// Shot is one projectile leaving a unit. Target is empty for fly-over fire;
// the effect then picks its own aim point.
type Shot struct {
	Def    weapon.Def
	Origin core.Vec3
	Target core.Target
	First  bool
}

// Effect holds the behavior that differs between kinds.
type Effect interface {
	// OnSpawnCreated runs once, right after the unit entered the world.
	OnSpawnCreated(u *Unit)
	FireProjectile(u *Unit, shot Shot)
	// ApplyAreaEffect runs once per weapon on every tick the unit is in its
	// firing window, whether or not that weapon fired.
	ApplyAreaEffect(u *Unit)
}

func effectFor(k Kind) Effect {
	switch k {
	case BombingRun:
		return bombing{}
	case StrafingRun:
		return strafing{}
	case Paradrop:
		return paradrop{}
	default:
		return hover{}
	}
}

type hover struct{}

func (hover) OnSpawnCreated(u *Unit) {
	if u.Ropes != nil && len(u.Config.Passengers) > 0 {
		u.Ropes.Enqueue(u.Config.Passengers...)
	}
}

func (hover) FireProjectile(u *Unit, shot Shot) {
	u.hit(shot.Target.ID, shot.Def.Damage, shot.Def.Penetration)
	u.publish(core.EventProjectile, shot.Target.ID, shot.Target.Position, shot.Def.Name, nil)
}

func (hover) ApplyAreaEffect(*Unit) {}

type bombing struct{}

func (bombing) OnSpawnCreated(*Unit) {}

// FireProjectile drops straight down onto the cell below.
func (bombing) FireProjectile(u *Unit, shot Shot) {
	impact(u, shot.Def, u.Cell())
}

func (bombing) ApplyAreaEffect(*Unit) {}

type strafing struct{}

func (strafing) OnSpawnCreated(*Unit) {}

// FireProjectile lands StrafeLead cells ahead, spread randomly across the
// corridor.
func (strafing) FireProjectile(u *Unit, shot Shot) {
	w := u.Config.CorridorWidth
	lateral := u.env.Rand.IntN(2*w+1) - w
	impact(u, shot.Def, corridorCell(u, lateral))
}

// ApplyAreaEffect sweeps the whole corridor width ahead of the aircraft,
// hurting hostile actors that are still standing.
func (strafing) ApplyAreaEffect(u *Unit) {
	if u.Config.AreaDamage <= 0 {
		return
	}
	w := u.Config.CorridorWidth
	for x := -w; x <= w; x++ {
		c := corridorCell(u, x)
		if !u.env.World.IsInBounds(c.Vec()) {
			continue
		}
		for _, t := range u.env.World.TargetsAt(c) {
			if t.Dead || t.Downed || t.Faction == "" || !t.Hostile {
				continue
			}
			u.hit(t.ID, u.Config.AreaDamage, u.Config.AreaPen)
		}
	}
}

type paradrop struct{}

func (paradrop) OnSpawnCreated(u *Unit) {
	if u.Drops != nil {
		u.Drops.Push(u.Config.Passengers...)
	}
}

func (paradrop) FireProjectile(u *Unit, shot Shot) {
	impact(u, shot.Def, u.Cell())
}

func (paradrop) ApplyAreaEffect(*Unit) {}

// corridorCell is the cell lateral cells sideways of the strafing aim point.
func corridorCell(u *Unit, lateral int) core.Cell {
	dir := u.Direction()
	ahead := core.Cell{X: int(dir.X * StrafeLead), Z: int(dir.Z * StrafeLead)}
	perp := dir.Perpendicular()
	side := core.Cell{
		X: int(math.Round(perp.X * float64(lateral))),
		Z: int(math.Round(perp.Z * float64(lateral))),
	}
	return u.Cell().Add(ahead).Add(side)
}

// impact resolves a projectile landing on cell: everything alive standing
// there is hit.
func impact(u *Unit, def weapon.Def, cell core.Cell) {
	pos := cell.Vec()
	u.publish(core.EventProjectile, core.NilEntity, pos, def.Name, map[string]string{
		"cell": cell.String(),
	})
	if def.Damage <= 0 {
		return
	}
	for _, t := range u.env.World.TargetsAt(cell) {
		if t.Dead {
			continue
		}
		u.hit(t.ID, def.Damage, def.Penetration)
	}
}
