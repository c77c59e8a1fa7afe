// Package session tracks the simulation run currently in progress.
package session

import (
	"context"
	"log/slog"
	"sync"

	"github.com/eagleglass/airsim/pkg/core"
)

// Clock reports the running tick.
type Clock interface {
	Tick() int
}

// Context holds the current session and the clock of its simulation.
type Context struct {
	mu      sync.RWMutex
	Session *core.Session
	clock   Clock
}

// NewContext creates a Context with no session loaded.
func NewContext() *Context {
	return &Context{
		Session: &core.Session{Scenario: "No scenario loaded"},
	}
}

// GetSession returns the current session
func (sc *Context) GetSession() *core.Session {
	sc.mu.RLock()
	defer sc.mu.RUnlock()
	return sc.Session
}

// SetSession sets the current session and the clock it runs on.
func (sc *Context) SetSession(s *core.Session, clock Clock) {
	sc.mu.Lock()
	defer sc.mu.Unlock()
	sc.Session = s
	sc.clock = clock
}

// Tick returns the running tick, or 0 before a session starts.
func (sc *Context) Tick() int {
	sc.mu.RLock()
	defer sc.mu.RUnlock()
	if sc.clock == nil {
		return 0
	}
	return sc.clock.Tick()
}

// LogAttrs is a logging.ContextProvider.
func (sc *Context) LogAttrs(context.Context) []slog.Attr {
	sc.mu.RLock()
	s, clock := sc.Session, sc.clock
	sc.mu.RUnlock()

	attrs := []slog.Attr{slog.String("scenario", s.Scenario)}
	if !s.ID.IsNil() {
		attrs = append(attrs, slog.String("session", s.ID.String()))
	}
	if clock != nil {
		attrs = append(attrs, slog.Int("tick", clock.Tick()))
	}
	return attrs
}
