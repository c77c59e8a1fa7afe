package websocket

import (
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/eagleglass/airsim/internal/storage"
	"github.com/eagleglass/airsim/pkg/core"
	"github.com/eagleglass/airsim/pkg/streaming"
)

// Config holds WebSocket backend configuration.
type Config struct {
	URL    string
	Secret string
	// QueueSize bounds queued event frames; 0 means 10000.
	QueueSize int
	// Backoff is used after the stream drops; zero means DefaultBackoff.
	Backoff Backoff
}

// Backend streams session data over WebSocket to a live viewer.
// Snapshots are sent but cannot be loaded back.
type Backend struct {
	stream *stream
	log    *slog.Logger
}

// New creates a new WebSocket storage backend.
func New(cfg Config, logger *slog.Logger) *Backend {
	if logger == nil {
		logger = slog.Default()
	}
	return &Backend{
		stream: newStream(cfg, logger),
		log:    logger,
	}
}

// Init connects to the WebSocket server.
func (b *Backend) Init() error {
	return b.stream.open()
}

// Close disconnects from the WebSocket server.
func (b *Backend) Close() error {
	st := b.stream.stats()
	b.log.Debug("Closing viewer stream",
		"sent", st.Sent,
		"dropped", st.Dropped,
		"coalesced", st.Coalesced,
		"reconnects", st.Reconnects,
	)
	return b.stream.close()
}

// Stats reports frame counters for the stream.
func (b *Backend) Stats() Stats {
	return b.stream.stats()
}

// marshalEnvelope builds a JSON-encoded Envelope from a message type and payload.
func marshalEnvelope(msgType string, payload any) ([]byte, error) {
	env, err := streaming.NewEnvelope(msgType, payload)
	if err != nil {
		return nil, fmt.Errorf("marshal %s payload: %w", msgType, err)
	}
	data, err := json.Marshal(env)
	if err != nil {
		return nil, fmt.Errorf("marshal %s envelope: %w", msgType, err)
	}
	return data, nil
}

// StartSession announces the run and waits for server ack. The
// announcement is replayed if the stream reconnects.
func (b *Backend) StartSession(s *core.Session) error {
	data, err := marshalEnvelope(streaming.TypeStartSession, streaming.StartSessionPayload{Session: s})
	if err != nil {
		return err
	}
	b.stream.setHeader(data)
	return b.stream.request(data, streaming.TypeStartSession, ackTimeout)
}

// EndSession sends end_session and waits for server ack.
func (b *Backend) EndSession() error {
	data, err := marshalEnvelope(streaming.TypeEndSession, nil)
	if err == nil {
		err = b.stream.request(data, streaming.TypeEndSession, ackTimeout)
	}
	b.stream.clearHeader()
	return err
}

// SaveSnapshot sends snap without waiting. If the writer is behind, only
// the newest snapshot is kept.
func (b *Backend) SaveSnapshot(tick int, snap core.Snapshot) error {
	data, err := marshalEnvelope(streaming.TypeSnapshot, streaming.SnapshotPayload{Tick: tick, Data: snap})
	if err != nil {
		return err
	}
	b.stream.pushSnapshot(data)
	return nil
}

// LoadSnapshot is not supported: the stream is write-only.
func (b *Backend) LoadSnapshot() (core.Snapshot, int, error) {
	return nil, 0, storage.ErrNotSupported
}

func (b *Backend) RecordEvent(e *core.Event) error {
	data, err := marshalEnvelope(streaming.TypeEvent, e)
	if err != nil {
		return err
	}
	b.stream.push(data)
	return nil
}
