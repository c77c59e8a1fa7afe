package weapon

import (
	"fmt"

	"github.com/eagleglass/airsim/pkg/core"
)

// State is the phase of a weapon's firing cycle.
type State int

const (
	Idle State = iota
	Warmup
	Bursting
	Cooldown
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Warmup:
		return "warmup"
	case Bursting:
		return "bursting"
	case Cooldown:
		return "cooldown"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// Def is the static description of a weapon.
type Def struct {
	Name              string  `yaml:"name"`
	Range             float64 `yaml:"range"`
	WarmupSeconds     float64 `yaml:"warmupSeconds"`
	CooldownSeconds   float64 `yaml:"cooldownSeconds"`
	BurstShots        int     `yaml:"burstShots"`
	TicksBetweenShots int     `yaml:"ticksBetweenShots"`
	Damage            float64 `yaml:"damage"`
	Penetration       float64 `yaml:"penetration"`
	Projectile        string  `yaml:"projectile"`
}

// Weapon is one gun on a unit together with its cycle state.
type Weapon struct {
	Def          Def
	State        State
	WarmupLeft   int
	CooldownLeft int
	Target       core.EntityID
	// Ammo is nil when the weapon fires for free. Several weapons may share
	// one stock.
	Ammo *Ammo

	shotsLeft int
	shotDelay int
	opened    bool
}

func New(def Def, ammo *Ammo) *Weapon {
	return &Weapon{Def: def, Ammo: ammo}
}

func (w *Weapon) reset() {
	w.State = Idle
	w.WarmupLeft = 0
	w.CooldownLeft = 0
	w.Target = core.NilEntity
	w.shotsLeft = 0
	w.shotDelay = 0
	w.opened = false
}

func (w *Weapon) save(s core.Snapshot, prefix string) {
	s.PutInt(core.Key(prefix, "state"), int(w.State))
	s.PutInt(core.Key(prefix, "warmup"), w.WarmupLeft)
	s.PutInt(core.Key(prefix, "cooldown"), w.CooldownLeft)
	s.PutEntity(core.Key(prefix, "target"), w.Target)
	s.PutInt(core.Key(prefix, "shotsLeft"), w.shotsLeft)
	s.PutInt(core.Key(prefix, "shotDelay"), w.shotDelay)
}

func (w *Weapon) load(s core.Snapshot, prefix string) {
	state := State(s.Int(core.Key(prefix, "state"), int(Idle)))
	if state < Idle || state > Cooldown {
		state = Idle
	}
	w.State = state
	w.WarmupLeft = max(0, s.Int(core.Key(prefix, "warmup"), 0))
	w.CooldownLeft = max(0, s.Int(core.Key(prefix, "cooldown"), 0))
	w.Target = s.Entity(core.Key(prefix, "target"))
	w.shotsLeft = max(0, s.Int(core.Key(prefix, "shotsLeft"), 0))
	w.shotDelay = max(0, s.Int(core.Key(prefix, "shotDelay"), 0))
}
