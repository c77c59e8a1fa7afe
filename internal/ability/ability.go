package ability

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/eagleglass/airsim/internal/aerial"
	"github.com/eagleglass/airsim/internal/flight"
	"github.com/eagleglass/airsim/internal/resource"
	"github.com/eagleglass/airsim/pkg/core"
)

const (
	DefaultPlaneCount = 1
	DefaultSpacing    = 5.0
)

var (
	ErrActive          = errors.New("a unit of this ability is still in the air")
	ErrNothingToRecall = errors.New("no unit to recall")
)

// Def configures an ability. Unit is the template for every spawned unit;
// its Kind, Faction and trajectory are filled in on cast.
type Def struct {
	Name  string
	Kind  aerial.Kind
	Costs []core.ResourceCount

	// Capacity makes the ability a resource container for the pool.
	Capacity   []core.ResourceCount
	Contents   []core.ResourceCount
	StackLimit int

	Unit          aerial.Config
	Passengers    int
	PassengerKind string
	PlaneCount    int
	Spacing       float64
}

// Request is where a cast goes. Hovering kinds fly from Start to hover
// over End; runs fly Start→End.
type Request struct {
	Start core.Cell
	End   core.Cell
}

// Env is what a cast needs beyond the carrier.
type Env struct {
	Unit   aerial.Env
	Actors aerial.ActorFactory
	Tick   int
}

// Ability is one castable call on a carrier.
type Ability struct {
	Def       Def
	Container *resource.Container

	carrier *Carrier
	units   []*aerial.Unit
}

func newAbility(def Def, c *Carrier) *Ability {
	if def.PlaneCount <= 0 {
		def.PlaneCount = DefaultPlaneCount
	}
	if def.Spacing <= 0 {
		def.Spacing = DefaultSpacing
	}
	a := &Ability{Def: def, carrier: c}
	if len(def.Capacity) > 0 {
		var opts []resource.Option
		if def.StackLimit > 0 {
			opts = append(opts, resource.WithStackLimit(def.StackLimit))
		}
		opts = append(opts, resource.WithContents(def.Contents...))
		a.Container = resource.NewContainer(def.Name, def.Capacity, opts...)
	}
	return a
}

func (a *Ability) Carrier() *Carrier { return a.carrier }

// Units returns the ability's units that are still alive and forgets the
// rest.
func (a *Ability) Units() []*aerial.Unit {
	live := a.units[:0]
	for _, u := range a.units {
		if u.Alive() {
			live = append(live, u)
		}
	}
	clear(a.units[len(live):])
	a.units = live
	out := make([]*aerial.Unit, len(live))
	copy(out, live)
	return out
}

// Attach links a restored unit back to the ability.
func (a *Ability) Attach(u *aerial.Unit) {
	a.units = append(a.units, u)
}

// Check reports why the ability cannot be cast right now, or nil.
func (a *Ability) Check() error {
	if a.Def.Kind.Hovering() && len(a.Units()) > 0 {
		return ErrActive
	}
	return a.carrier.pool.CheckCosts(a.Def.Costs)
}

// Cast pays the costs and spawns the ability's units. On failure nothing is
// consumed and an ability.rejected event carries the reason.
func (a *Ability) Cast(req Request, env Env) ([]*aerial.Unit, error) {
	if err := a.Check(); err != nil {
		a.reject(env, err)
		return nil, err
	}
	if err := a.carrier.pool.ApplyCosts(a.Def.Costs); err != nil {
		a.reject(env, err)
		return nil, err
	}
	for _, rc := range a.Def.Costs {
		a.publish(env, core.EventResourceConsumed, string(rc.Type), map[string]string{
			"count": strconv.Itoa(rc.Count),
		})
	}
	a.publish(env, core.EventAbilityCast, a.Def.Name, map[string]string{
		"kind": a.Def.Kind.String(),
	})

	var spawned []*aerial.Unit
	for _, cfg := range a.configs(req, env) {
		u := aerial.Spawn(cfg, env.Unit)
		a.units = append(a.units, u)
		spawned = append(spawned, u)
	}
	return spawned, nil
}

func (a *Ability) configs(req Request, env Env) []aerial.Config {
	base := a.Def.Unit
	base.Kind = a.Def.Kind
	base.Faction = a.carrier.Faction
	if base.Name == "" {
		base.Name = a.Def.Name
	}

	if a.Def.Kind.Hovering() {
		cfg := base
		cfg.Start = req.Start
		cfg.Target = req.End
		if a.Def.Kind != aerial.Support {
			cfg.Passengers = a.passengers(env)
		}
		return []aerial.Config{cfg}
	}

	lanes := flight.Formation(req.Start, req.End, a.Def.PlaneCount, a.Def.Spacing)
	out := make([]aerial.Config, 0, len(lanes))
	for _, lane := range lanes {
		cfg := base
		cfg.Start = lane.Start
		cfg.End = lane.End
		cfg.Passengers = nil
		if a.Def.Kind == aerial.Paradrop {
			cfg.Passengers = a.passengers(env)
		}
		out = append(out, cfg)
	}
	return out
}

func (a *Ability) passengers(env Env) []core.Actor {
	if env.Actors == nil || a.Def.Passengers <= 0 {
		return nil
	}
	out := make([]core.Actor, 0, a.Def.Passengers)
	for i := 0; i < a.Def.Passengers; i++ {
		out = append(out, env.Actors.GenerateActor(a.Def.PassengerKind, a.carrier.Faction))
	}
	return out
}

// Recall sends every live unit of the ability home.
func (a *Ability) Recall() error {
	live := a.Units()
	if len(live) == 0 {
		return ErrNothingToRecall
	}
	for _, u := range live {
		u.Depart()
	}
	return nil
}

func (a *Ability) reject(env Env, err error) {
	a.publish(env, core.EventAbilityRejected, fmt.Sprintf("%s: %v", a.Def.Name, err), nil)
}

func (a *Ability) publish(env Env, kind core.EventKind, msg string, data map[string]string) {
	if env.Unit.Events == nil {
		return
	}
	env.Unit.Events.Publish(core.Event{
		Tick:     env.Tick,
		Kind:     kind,
		Source:   a.carrier.ID,
		Position: a.carrier.Position.Vec(),
		Message:  msg,
		Data:     data,
	})
}
