// pkg/core/resource.go
package core

// ResourceType names a stackable item kind.
type ResourceType string

// ResourceCount pairs a type with an amount. Used for capacities, costs and
// starting contents.
type ResourceCount struct {
	Type  ResourceType `json:"type" yaml:"type"`
	Count int          `json:"count" yaml:"count"`
}

// Stack is a physical quantity of one resource type. A stack with
// Count <= 0 is spent.
type Stack struct {
	Type  ResourceType `json:"type"`
	Count int          `json:"count"`
}

// Spent reports whether nothing is left on the stack.
func (s *Stack) Spent() bool { return s == nil || s.Count <= 0 }

// Split removes up to n units and returns them as a new stack.
func (s *Stack) Split(n int) Stack {
	if n > s.Count {
		n = s.Count
	}
	if n < 0 {
		n = 0
	}
	s.Count -= n
	return Stack{Type: s.Type, Count: n}
}
