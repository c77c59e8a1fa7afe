package dispatcher

import (
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/eagleglass/airsim/pkg/core"
)

// testLogger implements Logger for testing
type testLogger struct {
	mu       sync.Mutex
	messages []string
}

func (l *testLogger) Debug(msg string, keysAndValues ...any) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.messages = append(l.messages, fmt.Sprintf("DEBUG: %s %v", msg, keysAndValues))
}

func (l *testLogger) Info(msg string, keysAndValues ...any) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.messages = append(l.messages, fmt.Sprintf("INFO: %s %v", msg, keysAndValues))
}

func (l *testLogger) Error(msg string, keysAndValues ...any) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.messages = append(l.messages, fmt.Sprintf("ERROR: %s %v", msg, keysAndValues))
}

func (l *testLogger) hasError() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	for _, msg := range l.messages {
		if len(msg) >= 5 && msg[:5] == "ERROR" {
			return true
		}
	}
	return false
}

func newTestDispatcher(t *testing.T) (*Dispatcher, *testLogger) {
	logger := &testLogger{}

	d, err := New(logger)
	if err != nil {
		t.Fatalf("failed to create dispatcher: %v", err)
	}

	return d, logger
}

func ev(kind core.EventKind) core.Event {
	return core.Event{Kind: kind, Tick: 1}
}

func TestDispatcher_SyncHandler(t *testing.T) {
	d, _ := newTestDispatcher(t)

	var got core.Event
	d.Register(core.EventUnitSpawned, func(e core.Event) error {
		got = e
		return nil
	})

	err := d.Dispatch(core.Event{Kind: core.EventUnitSpawned, Message: "bomber"})

	if err != nil {
		t.Errorf("unexpected error: %v", err)
	}
	if got.Message != "bomber" {
		t.Errorf("handler saw %+v", got)
	}
}

func TestDispatcher_FansOutInOrder(t *testing.T) {
	d, _ := newTestDispatcher(t)

	var order []string
	d.Register(core.EventWeaponBurst, func(core.Event) error {
		order = append(order, "storage")
		return nil
	})
	d.Register(core.EventWeaponBurst, func(core.Event) error {
		order = append(order, "metrics")
		return fmt.Errorf("metrics down")
	})

	err := d.Dispatch(ev(core.EventWeaponBurst))

	if err == nil {
		t.Error("expected the second handler's error")
	}
	if len(order) != 2 || order[0] != "storage" || order[1] != "metrics" {
		t.Errorf("unexpected order %v", order)
	}
}

func TestDispatcher_UnknownKind(t *testing.T) {
	d, logger := newTestDispatcher(t)

	err := d.Dispatch(ev("unit.unknown"))

	if !errors.Is(err, ErrNoHandler) {
		t.Errorf("expected ErrNoHandler, got %v", err)
	}

	d.Publish(ev("unit.unknown"))
	if logger.hasError() {
		t.Error("publishing an unhandled kind must not log an error")
	}
}

func TestDispatcher_PublishStampsTime(t *testing.T) {
	d, _ := newTestDispatcher(t)

	var got core.Event
	d.Register(core.EventUnitImpacted, func(e core.Event) error {
		got = e
		return nil
	})
	d.Publish(ev(core.EventUnitImpacted))

	if got.Time.IsZero() {
		t.Error("expected Publish to stamp the event time")
	}
}

func TestDispatcher_BufferedHandler(t *testing.T) {
	d, _ := newTestDispatcher(t)

	var processed atomic.Int32
	d.Register(core.EventProjectile, func(e core.Event) error {
		processed.Add(1)
		return nil
	}, Buffered(100))

	for i := 0; i < 3; i++ {
		if err := d.Dispatch(ev(core.EventProjectile)); err != nil {
			t.Errorf("unexpected error: %v", err)
		}
	}

	// Close drains the queue
	d.Close()

	if processed.Load() != 3 {
		t.Errorf("expected 3 processed, got %d", processed.Load())
	}

	if err := d.Dispatch(ev(core.EventProjectile)); !errors.Is(err, ErrClosed) {
		t.Errorf("expected ErrClosed after Close, got %v", err)
	}
	d.Close()
}

func TestDispatcher_BufferedDropsWhenFull(t *testing.T) {
	d, _ := newTestDispatcher(t)

	block := make(chan struct{})
	started := make(chan struct{}, 1)
	d.Register(core.EventProjectile, func(e core.Event) error {
		select {
		case started <- struct{}{}:
		default:
		}
		<-block
		return nil
	}, Buffered(2))

	d.Dispatch(ev(core.EventProjectile)) // being processed
	<-started
	d.Dispatch(ev(core.EventProjectile)) // queued
	d.Dispatch(ev(core.EventProjectile)) // queued

	// This should be dropped
	err := d.Dispatch(ev(core.EventProjectile))

	if err == nil {
		t.Error("expected error when queue is full")
	}

	close(block)
}

func TestDispatcher_BufferedBlocking(t *testing.T) {
	d, _ := newTestDispatcher(t)

	block := make(chan struct{})
	started := make(chan struct{}, 1)
	d.Register(core.EventProjectile, func(e core.Event) error {
		select {
		case started <- struct{}{}:
		default:
		}
		<-block
		return nil
	}, Buffered(1), Blocking())

	// First event starts processing
	d.Dispatch(ev(core.EventProjectile))
	<-started
	// Second event fills the queue
	d.Dispatch(ev(core.EventProjectile))

	// Third event should block (test with timeout)
	done := make(chan struct{})
	go func() {
		d.Dispatch(ev(core.EventProjectile))
		close(done)
	}()

	select {
	case <-done:
		t.Error("dispatch should have blocked")
	case <-time.After(50 * time.Millisecond):
		// Expected - dispatch is blocking
	}

	close(block)
	<-done
}

func TestDispatcher_LoggedHandler(t *testing.T) {
	d, logger := newTestDispatcher(t)

	d.Register(core.EventUnitDeparted, func(e core.Event) error {
		return nil
	}, Logged())

	d.Dispatch(ev(core.EventUnitDeparted))

	logger.mu.Lock()
	defer logger.mu.Unlock()

	if len(logger.messages) < 2 {
		t.Errorf("expected at least 2 log messages, got %d", len(logger.messages))
	}
}

func TestDispatcher_LoggedHandlerError(t *testing.T) {
	d, logger := newTestDispatcher(t)

	d.Register(core.EventUnitDestroyed, func(e core.Event) error {
		return fmt.Errorf("test error")
	}, Logged())

	d.Dispatch(ev(core.EventUnitDestroyed))

	if !logger.hasError() {
		t.Error("expected error log message")
	}
}

func TestDispatcher_HasHandler(t *testing.T) {
	d, _ := newTestDispatcher(t)

	d.RegisterAll([]core.EventKind{core.EventUnitSpawned, core.EventUnitDestroyed}, func(e core.Event) error { return nil })

	if !d.HasHandler(core.EventUnitSpawned) || !d.HasHandler(core.EventUnitDestroyed) {
		t.Error("expected handlers to exist")
	}

	if d.HasHandler(core.EventAbilityCast) {
		t.Error("expected handler to not exist")
	}
}

func TestDispatcher_CombinedOptions(t *testing.T) {
	d, logger := newTestDispatcher(t)

	var processed atomic.Int32
	d.Register(core.EventPassengerDeployed, func(e core.Event) error {
		processed.Add(1)
		return nil
	}, Buffered(100), Logged())

	if err := d.Dispatch(ev(core.EventPassengerDeployed)); err != nil {
		t.Errorf("unexpected error: %v", err)
	}

	d.Close()

	if processed.Load() != 1 {
		t.Errorf("expected 1 processed, got %d", processed.Load())
	}

	logger.mu.Lock()
	defer logger.mu.Unlock()

	if len(logger.messages) < 2 {
		t.Errorf("expected log messages, got %d", len(logger.messages))
	}
}
