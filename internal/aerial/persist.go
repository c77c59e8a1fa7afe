package aerial

import (
	"github.com/eagleglass/airsim/internal/queue"
	"github.com/eagleglass/airsim/pkg/core"
)

// Save writes the unit's configuration and every piece of running state
// under prefix.
func (u *Unit) Save(s core.Snapshot, prefix string) {
	u.Config.save(s, core.Key(prefix, "config"))
	s.PutEntity(core.Key(prefix, "id"), u.ID)
	s.PutInt(core.Key(prefix, "duration"), u.Duration)
	s.PutInt(core.Key(prefix, "impactLeft"), u.ImpactLeft)
	s.PutBool(core.Key(prefix, "impacted"), u.Impacted)
	s.PutBool(core.Key(prefix, "departed"), u.Departed)
	s.PutBool(core.Key(prefix, "destroyed"), u.Destroyed)
	s.PutVec(core.Key(prefix, "pos"), u.Position)
	s.PutFloat(core.Key(prefix, "rot"), float64(u.Rotation))

	if u.Flight != nil {
		u.Flight.Save(s, core.Key(prefix, "flight"))
	}
	if u.Weapons != nil {
		u.Weapons.Save(s, core.Key(prefix, "weapons"))
	}
	if u.Cadence != nil {
		u.Cadence.Save(s, core.Key(prefix, "cadence"))
	}
	if u.Ropes != nil {
		u.Ropes.Save(s, core.Key(prefix, "ropes"))
	}
	if u.Drops != nil {
		s.PutActors(core.Key(prefix, "drops"), u.Drops.Items())
		s.PutInt(core.Key(prefix, "dropLeft"), u.DropLeft)
	}
}

// Restore rebuilds a unit saved under prefix, binds it to env and puts a
// live unit back into env.World under its saved handle. Missing values fall
// back to their defaults.
func Restore(s core.Snapshot, prefix string, env Env) *Unit {
	env = env.withDefaults()
	u := build(loadConfig(s, core.Key(prefix, "config")), env)

	u.ID = s.Entity(core.Key(prefix, "id"))
	u.Duration = s.Int(core.Key(prefix, "duration"), u.Config.Duration)
	u.ImpactLeft = max(0, s.Int(core.Key(prefix, "impactLeft"), 0))
	u.Impacted = s.Bool(core.Key(prefix, "impacted"), false)
	u.Departed = s.Bool(core.Key(prefix, "departed"), false)
	u.Destroyed = s.Bool(core.Key(prefix, "destroyed"), false)
	u.Position = s.Vec(core.Key(prefix, "pos"))
	u.Rotation = core.Rotation(s.Float(core.Key(prefix, "rot"), 0))

	if u.Flight != nil {
		u.Flight.Load(s, core.Key(prefix, "flight"))
		if !s.Has(core.Key(prefix, "pos")) {
			u.Position = u.Flight.Position
		}
	}
	if u.Weapons != nil {
		u.Weapons.Load(s, core.Key(prefix, "weapons"))
		if u.Destroyed {
			u.Weapons.Stop()
		}
	}
	if u.Cadence != nil {
		u.Cadence.Load(s, core.Key(prefix, "cadence"))
	}
	if u.Ropes != nil {
		u.Ropes.Load(s, core.Key(prefix, "ropes"))
	}
	if u.Drops != nil {
		u.Drops = queue.New(s.Actors(core.Key(prefix, "drops"))...)
		u.DropLeft = s.Int(core.Key(prefix, "dropLeft"), 0)
	}

	if u.Alive() {
		u.ID = env.World.RestoreEntity(u.ID, u.Config.Name, u.Position, u.Rotation)
	}
	return u
}
