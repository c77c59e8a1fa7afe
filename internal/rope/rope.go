// Package rope lowers passengers from a hovering unit on two lines.
package rope

import (
	"fmt"
	"math"

	"github.com/eagleglass/airsim/pkg/core"
)

const (
	DefaultExtendSpeed    = 0.1
	DefaultDescentSeconds = 1.0
	DefaultTicksPerSecond = 60

	// progress within epsilon of 1 counts as landed
	epsilon = 1e-9
)

var (
	DefaultLeftOffset  = core.Vec3{X: -2}
	DefaultRightOffset = core.Vec3{X: 2}
)

// State is the phase of one line.
type State int

const (
	Extending State = iota
	Extended
	Retracting
)

func (s State) String() string {
	switch s {
	case Extending:
		return "extending"
	case Extended:
		return "extended"
	case Retracting:
		return "retracting"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// Env is what a line needs to know about its surroundings each tick.
type Env struct {
	UnitAltitude   float64
	GroundAltitude float64
	// Ground is the cell under the unit.
	Ground core.Cell
}

// DeployFunc places a passenger that reached the ground.
type DeployFunc func(passenger core.Actor, at core.Cell)

// Rope is a single descent line.
type Rope struct {
	State          State
	Length         float64
	TargetLength   float64
	Passenger      *core.Actor
	Progress       float64
	Offset         core.Vec3
	ExtendSpeed    float64
	DescentSeconds float64
	TicksPerSecond int
}

// New returns a retracted line that starts extending on its first tick.
func New(offset core.Vec3, extendSpeed, descentSeconds float64) *Rope {
	return &Rope{
		State:          Extending,
		Offset:         offset,
		ExtendSpeed:    extendSpeed,
		DescentSeconds: descentSeconds,
		TicksPerSecond: DefaultTicksPerSecond,
	}
}

// IsReady is true when the line is down and free.
func (r *Rope) IsReady() bool { return r.State == Extended && r.Passenger == nil }

// IsRetracted is true once the line has been pulled all the way in.
func (r *Rope) IsRetracted() bool { return r.State == Retracting && r.Length <= 0 }

func (r *Rope) HasPassenger() bool { return r.Passenger != nil }

// Assign hangs a passenger on the line and restarts its descent.
func (r *Rope) Assign(a core.Actor) {
	r.Passenger = &a
	r.Progress = 0
}

// StartRetracting only takes effect on an extended line.
func (r *Rope) StartRetracting() {
	if r.State == Extended {
		r.State = Retracting
	}
}

// Tick advances the line by one tick. The target length follows the unit,
// so it is recomputed every time.
func (r *Rope) Tick(env Env, deploy DeployFunc) {
	r.TargetLength = math.Max(0, env.UnitAltitude-env.GroundAltitude)

	switch r.State {
	case Extending:
		r.Length += r.ExtendSpeed
		if r.Length >= r.TargetLength {
			r.Length = r.TargetLength
			r.State = Extended
			r.Progress = 0
		}
	case Extended:
		if r.Passenger == nil {
			return
		}
		r.Progress += 1 / (r.DescentSeconds * float64(r.TicksPerSecond))
		if r.Progress >= 1-epsilon {
			r.Progress = 1
			p := *r.Passenger
			r.Passenger = nil
			if deploy != nil {
				deploy(p, env.Ground.Add(core.Cell{
					X: int(math.Round(r.Offset.X)),
					Z: int(math.Round(r.Offset.Z)),
				}))
			}
		}
	case Retracting:
		r.Length = math.Max(0, r.Length-r.ExtendSpeed)
	}
}

func (r *Rope) Save(s core.Snapshot, prefix string) {
	s.PutInt(core.Key(prefix, "state"), int(r.State))
	s.PutFloat(core.Key(prefix, "length"), r.Length)
	s.PutFloat(core.Key(prefix, "target"), r.TargetLength)
	s.PutFloat(core.Key(prefix, "progress"), r.Progress)
	s.PutVec(core.Key(prefix, "offset"), r.Offset)
	s.PutFloat(core.Key(prefix, "extendSpeed"), r.ExtendSpeed)
	s.PutFloat(core.Key(prefix, "descent"), r.DescentSeconds)
	s.PutInt(core.Key(prefix, "tps"), r.TicksPerSecond)
	if r.Passenger != nil {
		s.PutActor(core.Key(prefix, "passenger"), *r.Passenger)
	}
}

func (r *Rope) Load(s core.Snapshot, prefix string) {
	state := State(s.Int(core.Key(prefix, "state"), int(Extending)))
	if state < Extending || state > Retracting {
		state = Extending
	}
	r.State = state
	r.Length = math.Max(0, s.Float(core.Key(prefix, "length"), 0))
	r.TargetLength = math.Max(0, s.Float(core.Key(prefix, "target"), 0))
	r.Progress = math.Min(1, math.Max(0, s.Float(core.Key(prefix, "progress"), 0)))
	if s.Has(core.Key(prefix, "offset")) {
		r.Offset = s.Vec(core.Key(prefix, "offset"))
	}
	r.ExtendSpeed = s.Float(core.Key(prefix, "extendSpeed"), DefaultExtendSpeed)
	r.DescentSeconds = s.Float(core.Key(prefix, "descent"), DefaultDescentSeconds)
	r.TicksPerSecond = s.Int(core.Key(prefix, "tps"), DefaultTicksPerSecond)
	r.Passenger = nil
	if a, ok := s.Actor(core.Key(prefix, "passenger")); ok {
		r.Passenger = &a
	}
}
