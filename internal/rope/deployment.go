package rope

import (
	"github.com/eagleglass/airsim/internal/queue"
	"github.com/eagleglass/airsim/pkg/core"
)

// Config tunes a Deployment.
type Config struct {
	ExtendSpeed    float64
	DescentSeconds float64
	TicksPerSecond int
	LeftOffset     core.Vec3
	RightOffset    core.Vec3
}

// DefaultConfig returns the stock line settings.
func DefaultConfig() Config {
	return Config{
		ExtendSpeed:    DefaultExtendSpeed,
		DescentSeconds: DefaultDescentSeconds,
		TicksPerSecond: DefaultTicksPerSecond,
		LeftOffset:     DefaultLeftOffset,
		RightOffset:    DefaultRightOffset,
	}
}

// Deployment coordinates the left and right lines over one passenger
// queue. A passenger leaves the queue when it is hung on a line.
type Deployment struct {
	Left   *Rope
	Right  *Rope
	Queue  *queue.Queue[core.Actor]
	Active bool
}

func NewDeployment(cfg Config) *Deployment {
	left := New(cfg.LeftOffset, cfg.ExtendSpeed, cfg.DescentSeconds)
	right := New(cfg.RightOffset, cfg.ExtendSpeed, cfg.DescentSeconds)
	if cfg.TicksPerSecond > 0 {
		left.TicksPerSecond = cfg.TicksPerSecond
		right.TicksPerSecond = cfg.TicksPerSecond
	}
	return &Deployment{
		Left:  left,
		Right: right,
		Queue: queue.New[core.Actor](),
	}
}

// Enqueue adds passengers to the tail of the queue.
func (d *Deployment) Enqueue(actors ...core.Actor) {
	d.Queue.Push(actors...)
}

// Start begins lowering the lines.
func (d *Deployment) Start() {
	d.Active = true
}

// Tick advances both lines, hands queued passengers to ready lines (left
// first) and pulls the lines in once nobody is left.
func (d *Deployment) Tick(env Env, deploy DeployFunc) {
	if !d.Active {
		return
	}
	d.Left.Tick(env, deploy)
	d.Right.Tick(env, deploy)

	d.assign()

	if d.Queue.Empty() && !d.Left.HasPassenger() && !d.Right.HasPassenger() {
		d.Left.StartRetracting()
		d.Right.StartRetracting()
	}
}

func (d *Deployment) assign() {
	for _, r := range []*Rope{d.Left, d.Right} {
		if !r.IsReady() {
			continue
		}
		a, ok := d.Queue.Pop()
		if !ok {
			return
		}
		r.Assign(a)
	}
}

// IsComplete is true when both lines are fully retracted and the queue is
// empty.
func (d *Deployment) IsComplete() bool {
	return d.Left.IsRetracted() && d.Right.IsRetracted() && d.Queue.Empty()
}

func (d *Deployment) Save(s core.Snapshot, prefix string) {
	s.PutBool(core.Key(prefix, "active"), d.Active)
	d.Left.Save(s, core.Key(prefix, "left"))
	d.Right.Save(s, core.Key(prefix, "right"))
	s.PutActors(core.Key(prefix, "queue"), d.Queue.Items())
}

// Load restores both lines and the queue. A missing queue restores empty.
func (d *Deployment) Load(s core.Snapshot, prefix string) {
	d.Active = s.Bool(core.Key(prefix, "active"), false)
	if d.Left == nil {
		d.Left = New(DefaultLeftOffset, DefaultExtendSpeed, DefaultDescentSeconds)
	}
	if d.Right == nil {
		d.Right = New(DefaultRightOffset, DefaultExtendSpeed, DefaultDescentSeconds)
	}
	d.Left.Load(s, core.Key(prefix, "left"))
	d.Right.Load(s, core.Key(prefix, "right"))

	if d.Queue == nil {
		d.Queue = queue.New[core.Actor]()
	}
	d.Queue.Reset(s.Actors(core.Key(prefix, "queue")))
}
