// pkg/core/entity.go
package core

import (
	"github.com/google/uuid"
)

// EntityID is an opaque handle for anything placed in the world.
type EntityID uuid.UUID

// NilEntity is the zero handle; it never refers to a live entity.
var NilEntity EntityID

// NewEntityID returns a fresh random handle.
func NewEntityID() EntityID { return EntityID(uuid.New()) }

// ParseEntityID parses the canonical string form. Empty input yields
// NilEntity without error.
func ParseEntityID(s string) (EntityID, error) {
	if s == "" {
		return NilEntity, nil
	}
	u, err := uuid.Parse(s)
	if err != nil {
		return NilEntity, err
	}
	return EntityID(u), nil
}

func (id EntityID) IsNil() bool { return id == NilEntity }

func (id EntityID) String() string {
	if id.IsNil() {
		return ""
	}
	return uuid.UUID(id).String()
}

func (id EntityID) MarshalText() ([]byte, error) { return []byte(id.String()), nil }

func (id *EntityID) UnmarshalText(b []byte) error {
	parsed, err := ParseEntityID(string(b))
	if err != nil {
		return err
	}
	*id = parsed
	return nil
}

// Faction names a side. The empty faction belongs to nobody.
type Faction string

// Actor is a generated person or creature, e.g. a queued passenger.
type Actor struct {
	ID      EntityID `json:"id"`
	Kind    string   `json:"kind"`
	Faction Faction  `json:"faction"`
}

// Target is the world's view of a candidate for weapon fire. Hostile is
// evaluated by the world relative to the defending side.
type Target struct {
	ID       EntityID
	Kind     string
	Faction  Faction
	Position Vec3
	Dead     bool
	Downed   bool
	Hostile  bool
}
