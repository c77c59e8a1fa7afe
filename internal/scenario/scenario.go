// Package scenario loads YAML scenario files and applies them to a
// simulation: the map, the actors on it, carriers with their abilities,
// supply depots and scheduled orders.
package scenario

import (
	"bytes"
	"errors"
	"fmt"
	"log/slog"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/eagleglass/airsim/internal/ability"
	"github.com/eagleglass/airsim/internal/aerial"
	"github.com/eagleglass/airsim/internal/geo"
	"github.com/eagleglass/airsim/internal/rope"
	"github.com/eagleglass/airsim/internal/sim"
	"github.com/eagleglass/airsim/internal/util"
	"github.com/eagleglass/airsim/internal/weapon"
	"github.com/eagleglass/airsim/internal/world"
	"github.com/eagleglass/airsim/pkg/core"
)

var ErrInvalid = errors.New("invalid scenario")

// Scenario is the YAML document.
type Scenario struct {
	Name     string    `yaml:"name"`
	Map      MapDef    `yaml:"map"`
	Actors   []Group   `yaml:"actors"`
	Carriers []Carrier `yaml:"carriers"`
	Depots   []Depot   `yaml:"depots"`
	Orders   []Order   `yaml:"orders"`
}

type MapDef struct {
	MinX    float64  `yaml:"minX"`
	MinZ    float64  `yaml:"minZ"`
	MaxX    float64  `yaml:"maxX"`
	MaxZ    float64  `yaml:"maxZ"`
	Player  string   `yaml:"player"`
	Hostile []string `yaml:"hostile"`
	Walls   []string `yaml:"walls"`
	Ground  []Ground `yaml:"ground"`
}

type Ground struct {
	Cell     string  `yaml:"cell"`
	Altitude float64 `yaml:"altitude"`
}

// Group places Count actors of one kind on a cell.
type Group struct {
	Kind    string `yaml:"kind"`
	Faction string `yaml:"faction"`
	Cell    string `yaml:"cell"`
	Count   int    `yaml:"count"`
}

type Carrier struct {
	Name       string    `yaml:"name"`
	Faction    string    `yaml:"faction"`
	Cell       string    `yaml:"cell"`
	TargetFill string    `yaml:"targetFill"`
	Abilities  []Ability `yaml:"abilities"`
}

type Ability struct {
	Name          string  `yaml:"name"`
	Kind          string  `yaml:"kind"`
	Costs         string  `yaml:"costs"`
	Capacity      string  `yaml:"capacity"`
	Contents      string  `yaml:"contents"`
	StackLimit    int     `yaml:"stackLimit"`
	Passengers    int     `yaml:"passengers"`
	PassengerKind string  `yaml:"passengerKind"`
	PlaneCount    int     `yaml:"planeCount"`
	Spacing       float64 `yaml:"spacing"`
	Unit          Unit    `yaml:"unit"`
}

type Unit struct {
	Name            string       `yaml:"name"`
	Leaving         string       `yaml:"leaving"`
	TicksToImpact   int          `yaml:"ticksToImpact"`
	HoverAltitude   float64      `yaml:"hoverAltitude"`
	Duration        int          `yaml:"duration"`
	Speed           float64      `yaml:"speed"`
	Ropes           bool         `yaml:"ropes"`
	Ammo            int          `yaml:"ammo"`
	OutOfAmmo       string       `yaml:"outOfAmmo"`
	Weapons         []weapon.Def `yaml:"weapons"`
	DropInterval    int          `yaml:"dropInterval"`
	CorridorWidth   int          `yaml:"corridorWidth"`
	AreaDamage      float64      `yaml:"areaDamage"`
	AreaPenetration float64      `yaml:"areaPenetration"`
}

type Depot struct {
	Type  string `yaml:"type"`
	Count int    `yaml:"count"`
	Cell  string `yaml:"cell"`
}

type Order struct {
	Tick    int    `yaml:"tick"`
	Carrier string `yaml:"carrier"`
	Ability string `yaml:"ability"`
	Start   string `yaml:"start"`
	End     string `yaml:"end"`
	Recall  bool   `yaml:"recall"`
}

// Defaults fill unit settings a scenario leaves out.
type Defaults struct {
	HoverAltitude float64
	Ammo          int
	PreEntry      float64
	Altitude      float64
	Rope          rope.Config
}

// Load reads a scenario from a YAML file.
func Load(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}
	return Parse(data)
}

// Parse decodes a scenario. Unknown fields are rejected.
func Parse(data []byte) (*Scenario, error) {
	var sc Scenario
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&sc); err != nil {
		return nil, fmt.Errorf("failed to parse scenario: %w", err)
	}
	if sc.Map.MaxX <= sc.Map.MinX || sc.Map.MaxZ <= sc.Map.MinZ {
		return nil, fmt.Errorf("%w: empty map bounds", ErrInvalid)
	}
	if sc.Map.Player == "" {
		return nil, fmt.Errorf("%w: no player faction", ErrInvalid)
	}
	return &sc, nil
}

// World builds the map with its walls, ground and actors.
func (sc *Scenario) World() (*world.Map, error) {
	hostile := make([]core.Faction, 0, len(sc.Map.Hostile))
	for _, f := range sc.Map.Hostile {
		hostile = append(hostile, core.Faction(f))
	}
	w := world.New(geo.NewBounds(sc.Map.MinX, sc.Map.MinZ, sc.Map.MaxX, sc.Map.MaxZ), core.Faction(sc.Map.Player), hostile...)

	for _, s := range sc.Map.Walls {
		c, err := cell("wall", s)
		if err != nil {
			return nil, err
		}
		w.AddWall(c)
	}
	for _, g := range sc.Map.Ground {
		c, err := cell("ground", g.Cell)
		if err != nil {
			return nil, err
		}
		w.SetGround(c, g.Altitude)
	}
	for _, g := range sc.Actors {
		c, err := cell("actor group "+g.Kind, g.Cell)
		if err != nil {
			return nil, err
		}
		for range max(1, g.Count) {
			w.PlaceActor(w.GenerateActor(g.Kind, core.Faction(g.Faction)), c)
		}
	}
	return w, nil
}

// Build creates a simulation for the scenario.
func (sc *Scenario) Build(cfg sim.Config, defaults Defaults, sink aerial.EventSink, logger *slog.Logger) (*sim.Simulation, error) {
	w, err := sc.World()
	if err != nil {
		return nil, err
	}
	s := sim.New(cfg, w, sink, logger)
	if err := sc.Apply(s, defaults); err != nil {
		return nil, err
	}
	return s, nil
}

// Apply registers carriers, depots and orders on s.
func (sc *Scenario) Apply(s *sim.Simulation, defaults Defaults) error {
	for _, cd := range sc.Carriers {
		pos, err := cell("carrier "+cd.Name, cd.Cell)
		if err != nil {
			return err
		}
		c := s.AddCarrier(cd.Name, core.Faction(cd.Faction), pos)
		for _, ad := range cd.Abilities {
			def, err := ad.def(defaults)
			if err != nil {
				return fmt.Errorf("carrier %s: %w", cd.Name, err)
			}
			if _, err := c.Add(def); err != nil {
				return fmt.Errorf("carrier %s: %w", cd.Name, err)
			}
		}
		fill, err := util.ParseResourceList(cd.TargetFill)
		if err != nil {
			return fmt.Errorf("carrier %s target fill: %w", cd.Name, err)
		}
		for _, rc := range fill {
			c.Pool().SetTargetFill(rc.Type, rc.Count)
		}
	}

	for _, d := range sc.Depots {
		pos, err := cell("depot", d.Cell)
		if err != nil {
			return err
		}
		s.AddDepot(sim.Depot{Type: core.ResourceType(d.Type), Count: d.Count, Position: pos})
	}

	for i, o := range sc.Orders {
		order := sim.Order{Tick: o.Tick, Carrier: o.Carrier, Ability: o.Ability, Recall: o.Recall}
		if !o.Recall {
			var err error
			if order.Request.Start, err = cell(fmt.Sprintf("order %d start", i), o.Start); err != nil {
				return err
			}
			if order.Request.End, err = cell(fmt.Sprintf("order %d end", i), o.End); err != nil {
				return err
			}
		}
		s.Schedule(order)
	}
	return nil
}

func (ad Ability) def(defaults Defaults) (ability.Def, error) {
	kind, err := aerial.ParseKind(ad.Kind)
	if err != nil {
		return ability.Def{}, fmt.Errorf("ability %s: %w", ad.Name, err)
	}
	def := ability.Def{
		Name:          ad.Name,
		Kind:          kind,
		StackLimit:    ad.StackLimit,
		Passengers:    ad.Passengers,
		PassengerKind: ad.PassengerKind,
		PlaneCount:    ad.PlaneCount,
		Spacing:       ad.Spacing,
	}
	lists := []struct {
		name string
		src  string
		dst  *[]core.ResourceCount
	}{
		{"costs", ad.Costs, &def.Costs},
		{"capacity", ad.Capacity, &def.Capacity},
		{"contents", ad.Contents, &def.Contents},
	}
	for _, l := range lists {
		if *l.dst, err = util.ParseResourceList(l.src); err != nil {
			return ability.Def{}, fmt.Errorf("ability %s %s: %w", ad.Name, l.name, err)
		}
	}

	u := ad.Unit
	def.Unit = aerial.Config{
		Name:          u.Name,
		Leaving:       u.Leaving,
		TicksToImpact: u.TicksToImpact,
		HoverAltitude: firstPositive(u.HoverAltitude, defaults.HoverAltitude),
		Duration:      u.Duration,
		Speed:         u.Speed,
		PreEntry:      defaults.PreEntry,
		Altitude:      defaults.Altitude,
		Weapons:       u.Weapons,
		Ammo:          u.Ammo,
		Ropes:         u.Ropes,
		Rope:          defaults.Rope,
		DropInterval:  u.DropInterval,
		CorridorWidth: u.CorridorWidth,
		AreaDamage:    u.AreaDamage,
		AreaPen:       u.AreaPenetration,
	}
	if def.Unit.Ammo <= 0 {
		def.Unit.Ammo = defaults.Ammo
	}
	if u.OutOfAmmo != "" {
		if def.Unit.OutOfAmmo, err = aerial.ParseOutOfAmmo(u.OutOfAmmo); err != nil {
			return ability.Def{}, fmt.Errorf("ability %s: %w", ad.Name, err)
		}
	}
	return def, nil
}

func cell(what, s string) (core.Cell, error) {
	c, err := geo.CellFromString(s)
	if err != nil {
		return core.Cell{}, fmt.Errorf("%w: %s cell %q: %w", ErrInvalid, what, s, err)
	}
	return c, nil
}

func firstPositive(v, def float64) float64 {
	if v > 0 {
		return v
	}
	return def
}
