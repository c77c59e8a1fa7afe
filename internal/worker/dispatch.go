package worker

import (
	"context"
	"fmt"

	"github.com/eagleglass/airsim/internal/dispatcher"
	"github.com/eagleglass/airsim/internal/influx"
	"github.com/eagleglass/airsim/pkg/core"
)

// RegisterHandlers registers all event handlers with the dispatcher.
func (m *Manager) RegisterHandlers(d *dispatcher.Dispatcher) {
	// Storage - sync, so the backend sees events in publication order.
	// Every backend queues internally.
	if m.backend != nil {
		d.RegisterAll(core.EventKinds, m.handleRecord, dispatcher.Logged())
	}

	// Metrics - buffered, dropping when the writer falls behind
	if m.deps.Metrics != nil {
		d.RegisterAll(highVolume, m.handleMetric, dispatcher.Buffered(5000))
		d.RegisterAll(lowVolume(), m.handleMetric, dispatcher.Buffered(1000))
	}
}

var highVolume = []core.EventKind{
	core.EventWeaponBurst,
	core.EventProjectile,
}

func lowVolume() []core.EventKind {
	out := make([]core.EventKind, 0, len(core.EventKinds))
	for _, k := range core.EventKinds {
		if k != core.EventWeaponBurst && k != core.EventProjectile {
			out = append(out, k)
		}
	}
	return out
}

func (m *Manager) handleRecord(e core.Event) error {
	if err := m.backend.RecordEvent(&e); err != nil {
		return fmt.Errorf("failed to record %s: %w", e.Kind, err)
	}
	m.recorded.Add(1)
	return nil
}

func (m *Manager) handleMetric(e core.Event) error {
	scenario := ""
	if s := m.deps.Session.GetSession(); s != nil {
		scenario = s.Scenario
	}
	point := influx.EventPoint(scenario, e)
	if err := m.deps.Metrics.WritePoint(context.Background(), influx.BucketEvents, point); err != nil {
		return fmt.Errorf("failed to write %s metric: %w", e.Kind, err)
	}
	m.written.Add(1)
	return nil
}
