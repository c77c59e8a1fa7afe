// pkg/core/snapshot.go
package core

import (
	"sort"
	"strconv"
	"strings"
)

// Snapshot is the flat key-value record every stateful component saves to
// and restores from. Keys are dotted paths; readers fall back to the
// supplied default whenever a key is missing or cannot be parsed.
type Snapshot map[string]string

// Key joins path segments with dots, skipping empty segments.
func Key(parts ...string) string {
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p != "" {
			out = append(out, p)
		}
	}
	return strings.Join(out, ".")
}

// IndexKey is Key for the i-th element of a list.
func IndexKey(prefix string, i int, field string) string {
	return Key(prefix, strconv.Itoa(i), field)
}

func (s Snapshot) PutString(key, v string) { s[key] = v }

func (s Snapshot) PutInt(key string, v int) { s[key] = strconv.Itoa(v) }

func (s Snapshot) PutFloat(key string, v float64) {
	s[key] = strconv.FormatFloat(v, 'g', -1, 64)
}

func (s Snapshot) PutBool(key string, v bool) { s[key] = strconv.FormatBool(v) }

func (s Snapshot) PutEntity(key string, id EntityID) { s[key] = id.String() }

func (s Snapshot) PutVec(key string, v Vec3) {
	s.PutFloat(key+".x", v.X)
	s.PutFloat(key+".y", v.Y)
	s.PutFloat(key+".z", v.Z)
}

func (s Snapshot) PutCell(key string, c Cell) {
	s.PutInt(key+".x", c.X)
	s.PutInt(key+".z", c.Z)
}

func (s Snapshot) String(key, def string) string {
	if v, ok := s[key]; ok {
		return v
	}
	return def
}

func (s Snapshot) Int(key string, def int) int {
	v, ok := s[key]
	if !ok {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}

func (s Snapshot) Float(key string, def float64) float64 {
	v, ok := s[key]
	if !ok {
		return def
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return def
	}
	return f
}

func (s Snapshot) Bool(key string, def bool) bool {
	v, ok := s[key]
	if !ok {
		return def
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return def
	}
	return b
}

// Entity returns NilEntity for missing or malformed handles.
func (s Snapshot) Entity(key string) EntityID {
	id, err := ParseEntityID(s[key])
	if err != nil {
		return NilEntity
	}
	return id
}

func (s Snapshot) Vec(key string) Vec3 {
	return Vec3{
		X: s.Float(key+".x", 0),
		Y: s.Float(key+".y", 0),
		Z: s.Float(key+".z", 0),
	}
}

func (s Snapshot) Cell(key string) Cell {
	return Cell{X: s.Int(key+".x", 0), Z: s.Int(key+".z", 0)}
}

// PutActor writes a under prefix.
func (s Snapshot) PutActor(prefix string, a Actor) {
	s.PutEntity(Key(prefix, "id"), a.ID)
	s.PutString(Key(prefix, "kind"), a.Kind)
	s.PutString(Key(prefix, "faction"), string(a.Faction))
}

// Actor reads an actor written by PutActor; ok is false if none is there.
func (s Snapshot) Actor(prefix string) (a Actor, ok bool) {
	if !s.Has(prefix) {
		return Actor{}, false
	}
	return Actor{
		ID:      s.Entity(Key(prefix, "id")),
		Kind:    s.String(Key(prefix, "kind"), ""),
		Faction: Faction(s.String(Key(prefix, "faction"), "")),
	}, true
}

// PutActors writes an ordered list of actors.
func (s Snapshot) PutActors(prefix string, actors []Actor) {
	s.PutInt(prefix, len(actors))
	for i, a := range actors {
		s.PutActor(IndexKey(prefix, i, ""), a)
	}
}

// Actors reads a list written by PutActors, skipping missing entries. A
// missing list reads as empty.
func (s Snapshot) Actors(prefix string) []Actor {
	n := s.Int(prefix, 0)
	out := make([]Actor, 0, max(0, n))
	for i := 0; i < n; i++ {
		if a, ok := s.Actor(IndexKey(prefix, i, "")); ok {
			out = append(out, a)
		}
	}
	return out
}

// Has reports whether any key equals prefix or lives beneath it.
func (s Snapshot) Has(prefix string) bool {
	if _, ok := s[prefix]; ok {
		return true
	}
	for k := range s {
		if strings.HasPrefix(k, prefix+".") {
			return true
		}
	}
	return false
}

// Merge copies every entry of o into s.
func (s Snapshot) Merge(o Snapshot) {
	for k, v := range o {
		s[k] = v
	}
}

// Sub returns the entries below prefix with the prefix stripped.
func (s Snapshot) Sub(prefix string) Snapshot {
	out := Snapshot{}
	p := prefix + "."
	for k, v := range s {
		if strings.HasPrefix(k, p) {
			out[strings.TrimPrefix(k, p)] = v
		}
	}
	return out
}

// Keys returns the keys in sorted order.
func (s Snapshot) Keys() []string {
	keys := make([]string, 0, len(s))
	for k := range s {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// ToMap converts the snapshot for JSON storage columns.
func (s Snapshot) ToMap() map[string]any {
	out := make(map[string]any, len(s))
	for k, v := range s {
		out[k] = v
	}
	return out
}

// SnapshotFromMap is the inverse of ToMap. Non-string values are skipped.
func SnapshotFromMap(m map[string]any) Snapshot {
	out := make(Snapshot, len(m))
	for k, v := range m {
		if str, ok := v.(string); ok {
			out[k] = str
		}
	}
	return out
}
