package aerial

import (
	"github.com/eagleglass/airsim/internal/flight"
	"github.com/eagleglass/airsim/internal/rope"
	"github.com/eagleglass/airsim/internal/weapon"
	"github.com/eagleglass/airsim/pkg/core"
)

const (
	// DefaultHoverAltitude is the height of a hovering unit above ground.
	DefaultHoverAltitude = 5.0
	// DefaultDropInterval is the ticks between two paradrop jumps.
	DefaultDropInterval = 30
	// DefaultCorridorWidth is the half width of a strafing corridor in cells.
	DefaultCorridorWidth = 2
	// StrafeLead is how many cells ahead of the aircraft strafing fire lands.
	StrafeLead = 10.0
	// Unlimited disables the service time of a hovering unit.
	Unlimited = -1
)

// Config describes a unit to spawn. Hovering kinds use Target, fly-overs
// use Start, End and Speed.
type Config struct {
	Kind Kind
	// Name is the entity kind placed in the world.
	Name string
	// Leaving is spawned in place of a departing unit; empty spawns nothing.
	Leaving string
	Faction core.Faction

	Target        core.Cell
	TicksToImpact int
	HoverAltitude float64
	// Duration is the service time after impact in ticks; zero or
	// Unlimited never expire.
	Duration int

	Start    core.Cell
	End      core.Cell
	Speed    float64
	PreEntry float64
	Altitude float64

	Weapons   []weapon.Def
	Ammo      int
	OutOfAmmo OutOfAmmo

	Ropes      bool
	Rope       rope.Config
	Passengers []core.Actor

	DropInterval  int
	CorridorWidth int
	AreaDamage    float64
	AreaPen       float64
}

func (c Config) withDefaults() Config {
	if c.HoverAltitude <= 0 {
		c.HoverAltitude = DefaultHoverAltitude
	}
	if c.PreEntry <= 0 {
		c.PreEntry = flight.DefaultPreEntry
	}
	if c.Altitude <= 0 {
		c.Altitude = flight.DefaultAltitude
	}
	if c.Ammo <= 0 {
		c.Ammo = weapon.DefaultAmmo
	}
	if c.DropInterval <= 0 {
		c.DropInterval = DefaultDropInterval
	}
	if c.CorridorWidth <= 0 {
		c.CorridorWidth = DefaultCorridorWidth
	}
	if c.Rope == (rope.Config{}) {
		c.Rope = rope.DefaultConfig()
	}
	return c
}

func saveDef(s core.Snapshot, prefix string, d weapon.Def) {
	s.PutString(core.Key(prefix, "name"), d.Name)
	s.PutFloat(core.Key(prefix, "range"), d.Range)
	s.PutFloat(core.Key(prefix, "warmup"), d.WarmupSeconds)
	s.PutFloat(core.Key(prefix, "cooldown"), d.CooldownSeconds)
	s.PutInt(core.Key(prefix, "burst"), d.BurstShots)
	s.PutInt(core.Key(prefix, "between"), d.TicksBetweenShots)
	s.PutFloat(core.Key(prefix, "damage"), d.Damage)
	s.PutFloat(core.Key(prefix, "pen"), d.Penetration)
	s.PutString(core.Key(prefix, "projectile"), d.Projectile)
}

func loadDef(s core.Snapshot, prefix string) weapon.Def {
	return weapon.Def{
		Name:              s.String(core.Key(prefix, "name"), ""),
		Range:             s.Float(core.Key(prefix, "range"), 0),
		WarmupSeconds:     s.Float(core.Key(prefix, "warmup"), 0),
		CooldownSeconds:   s.Float(core.Key(prefix, "cooldown"), 0),
		BurstShots:        s.Int(core.Key(prefix, "burst"), 1),
		TicksBetweenShots: s.Int(core.Key(prefix, "between"), 0),
		Damage:            s.Float(core.Key(prefix, "damage"), 0),
		Penetration:       s.Float(core.Key(prefix, "pen"), 0),
		Projectile:        s.String(core.Key(prefix, "projectile"), ""),
	}
}

func (c Config) save(s core.Snapshot, prefix string) {
	s.PutString(core.Key(prefix, "kind"), c.Kind.String())
	s.PutString(core.Key(prefix, "name"), c.Name)
	s.PutString(core.Key(prefix, "leaving"), c.Leaving)
	s.PutString(core.Key(prefix, "faction"), string(c.Faction))
	s.PutCell(core.Key(prefix, "target"), c.Target)
	s.PutFloat(core.Key(prefix, "hoverAltitude"), c.HoverAltitude)
	s.PutInt(core.Key(prefix, "duration"), c.Duration)
	s.PutCell(core.Key(prefix, "start"), c.Start)
	s.PutCell(core.Key(prefix, "end"), c.End)
	s.PutFloat(core.Key(prefix, "speed"), c.Speed)
	s.PutInt(core.Key(prefix, "ammo"), c.Ammo)
	s.PutString(core.Key(prefix, "outOfAmmo"), c.OutOfAmmo.String())
	s.PutBool(core.Key(prefix, "ropes"), c.Ropes)
	s.PutFloat(core.Key(prefix, "rope.extendSpeed"), c.Rope.ExtendSpeed)
	s.PutFloat(core.Key(prefix, "rope.descentSeconds"), c.Rope.DescentSeconds)
	s.PutInt(core.Key(prefix, "rope.ticksPerSecond"), c.Rope.TicksPerSecond)
	s.PutInt(core.Key(prefix, "dropInterval"), c.DropInterval)
	s.PutInt(core.Key(prefix, "corridor"), c.CorridorWidth)
	s.PutFloat(core.Key(prefix, "areaDamage"), c.AreaDamage)
	s.PutFloat(core.Key(prefix, "areaPen"), c.AreaPen)
	s.PutInt(core.Key(prefix, "defs"), len(c.Weapons))
	for i, d := range c.Weapons {
		saveDef(s, core.IndexKey(prefix+".defs", i, ""), d)
	}
}

func loadConfig(s core.Snapshot, prefix string) Config {
	kind, err := ParseKind(s.String(core.Key(prefix, "kind"), ""))
	if err != nil {
		kind = Support
	}
	policy, err := ParseOutOfAmmo(s.String(core.Key(prefix, "outOfAmmo"), ""))
	if err != nil {
		policy = DestroyOnEmpty
	}
	c := Config{
		Kind:          kind,
		Name:          s.String(core.Key(prefix, "name"), ""),
		Leaving:       s.String(core.Key(prefix, "leaving"), ""),
		Faction:       core.Faction(s.String(core.Key(prefix, "faction"), "")),
		Target:        s.Cell(core.Key(prefix, "target")),
		HoverAltitude: s.Float(core.Key(prefix, "hoverAltitude"), DefaultHoverAltitude),
		Duration:      s.Int(core.Key(prefix, "duration"), Unlimited),
		Start:         s.Cell(core.Key(prefix, "start")),
		End:           s.Cell(core.Key(prefix, "end")),
		Speed:         s.Float(core.Key(prefix, "speed"), 0),
		Ammo:          s.Int(core.Key(prefix, "ammo"), weapon.DefaultAmmo),
		OutOfAmmo:     policy,
		Ropes:         s.Bool(core.Key(prefix, "ropes"), false),
		Rope: rope.Config{
			ExtendSpeed:    s.Float(core.Key(prefix, "rope.extendSpeed"), rope.DefaultExtendSpeed),
			DescentSeconds: s.Float(core.Key(prefix, "rope.descentSeconds"), rope.DefaultDescentSeconds),
			TicksPerSecond: s.Int(core.Key(prefix, "rope.ticksPerSecond"), rope.DefaultTicksPerSecond),
			LeftOffset:     rope.DefaultLeftOffset,
			RightOffset:    rope.DefaultRightOffset,
		},
		DropInterval:  s.Int(core.Key(prefix, "dropInterval"), DefaultDropInterval),
		CorridorWidth: s.Int(core.Key(prefix, "corridor"), DefaultCorridorWidth),
		AreaDamage:    s.Float(core.Key(prefix, "areaDamage"), 0),
		AreaPen:       s.Float(core.Key(prefix, "areaPen"), 0),
	}
	n := s.Int(core.Key(prefix, "defs"), 0)
	for i := 0; i < n; i++ {
		c.Weapons = append(c.Weapons, loadDef(s, core.IndexKey(prefix+".defs", i, "")))
	}
	return c.withDefaults()
}
