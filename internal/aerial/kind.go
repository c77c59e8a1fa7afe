package aerial

import (
	"fmt"
	"strings"
)

// Kind selects a unit's behavior. The first three hover over a point, the
// rest fly straight across the map.
type Kind int

const (
	Support Kind = iota
	Transport
	Reinforcement
	BombingRun
	StrafingRun
	Paradrop
)

var kindNames = [...]string{
	Support:       "support",
	Transport:     "transport",
	Reinforcement: "reinforcement",
	BombingRun:    "bombing",
	StrafingRun:   "strafing",
	Paradrop:      "paradrop",
}

func (k Kind) String() string {
	if k < 0 || int(k) >= len(kindNames) {
		return fmt.Sprintf("Kind(%d)", int(k))
	}
	return kindNames[k]
}

// ParseKind accepts the names produced by String.
func ParseKind(s string) (Kind, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	for k, name := range kindNames {
		if name == s {
			return Kind(k), nil
		}
	}
	return 0, fmt.Errorf("unknown unit kind %q", s)
}

// Hovering reports whether the kind holds position over a point.
func (k Kind) Hovering() bool {
	return k == Support || k == Transport || k == Reinforcement
}

// Armed reports whether a hovering kind runs its weapons.
func (k Kind) Armed() bool {
	return k == Support || k == Reinforcement
}

// OutOfAmmo is what a unit does when a burst cannot be paid for.
type OutOfAmmo int

const (
	DestroyOnEmpty OutOfAmmo = iota
	DepartOnEmpty
)

func (o OutOfAmmo) String() string {
	if o == DepartOnEmpty {
		return "depart"
	}
	return "destroy"
}

func ParseOutOfAmmo(s string) (OutOfAmmo, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "destroy":
		return DestroyOnEmpty, nil
	case "depart":
		return DepartOnEmpty, nil
	}
	return 0, fmt.Errorf("unknown out-of-ammo policy %q", s)
}
