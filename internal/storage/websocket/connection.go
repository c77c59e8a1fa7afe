package websocket

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/url"
	"sync"
	"sync/atomic"
	"time"

	"github.com/eagleglass/airsim/pkg/streaming"
	ws "github.com/gorilla/websocket"
)

const (
	defaultQueueSize = 10_000
	ackBuffer        = 16
	writeWait        = 10 * time.Second
	handshakeWait    = 5 * time.Second
	ackTimeout       = 10 * time.Second
)

// Backoff bounds reconnect attempts after the stream drops.
type Backoff struct {
	Attempts int
	Initial  time.Duration
	Max      time.Duration
}

// DefaultBackoff doubles from one second up to 30s, ten times.
var DefaultBackoff = Backoff{Attempts: 10, Initial: time.Second, Max: 30 * time.Second}

func (b Backoff) next(d time.Duration) time.Duration {
	return min(2*d, b.Max)
}

// Stats counts what happened to frames handed to the stream.
type Stats struct {
	Sent       int64 `json:"sent"`
	Dropped    int64 `json:"dropped"`
	Coalesced  int64 `json:"coalesced"`
	Reconnects int64 `json:"reconnects"`
}

// stream owns one viewer connection. Events queue in order; snapshots go
// through a single slot where a newer one replaces an unsent one.
type stream struct {
	url     string
	secret  string
	backoff Backoff
	log     *slog.Logger

	mu     sync.Mutex
	conn   *ws.Conn
	stop   chan struct{} // closed when conn is replaced
	closed bool
	// header and snapshot are written first after every reconnect so the
	// viewer can rebuild the run without the frames it missed.
	header   []byte
	snapshot []byte

	frames chan []byte
	latest chan []byte
	acks   chan streaming.AckMessage
	done   chan struct{}

	sent       atomic.Int64
	dropped    atomic.Int64
	coalesced  atomic.Int64
	reconnects atomic.Int64
}

func newStream(cfg Config, log *slog.Logger) *stream {
	queue := cfg.QueueSize
	if queue <= 0 {
		queue = defaultQueueSize
	}
	backoff := cfg.Backoff
	if backoff.Attempts <= 0 {
		backoff = DefaultBackoff
	}
	return &stream{
		url:     cfg.URL,
		secret:  cfg.Secret,
		backoff: backoff,
		log:     log,
		frames:  make(chan []byte, queue),
		latest:  make(chan []byte, 1),
		acks:    make(chan streaming.AckMessage, ackBuffer),
		done:    make(chan struct{}),
	}
}

func (s *stream) open() error {
	conn, err := s.dial()
	if err != nil {
		return err
	}
	if !s.attach(conn) {
		_ = conn.Close()
		return fmt.Errorf("stream closed")
	}
	return nil
}

// attach makes conn current and starts its loops. It reports false once
// the stream is closed.
func (s *stream) attach(conn *ws.Conn) bool {
	stop := make(chan struct{})
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return false
	}
	s.conn = conn
	s.stop = stop
	s.mu.Unlock()

	go s.writeLoop(conn, stop)
	go s.readLoop(conn)
	return true
}

func (s *stream) dial() (*ws.Conn, error) {
	u, err := url.Parse(s.url)
	if err != nil {
		return nil, fmt.Errorf("invalid websocket URL: %w", err)
	}
	q := u.Query()
	q.Set("secret", s.secret)
	u.RawQuery = q.Encode()

	dialer := ws.Dialer{HandshakeTimeout: handshakeWait}
	conn, _, err := dialer.Dial(u.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("websocket dial failed: %w", err)
	}
	return conn, nil
}

func (s *stream) write(conn *ws.Conn, data []byte) error {
	if err := conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
		return err
	}
	if err := conn.WriteMessage(ws.TextMessage, data); err != nil {
		return err
	}
	s.sent.Add(1)
	return nil
}

// writeLoop is the only writer on conn. It exits on shutdown or on the
// first write error, handing off to reconnect.
func (s *stream) writeLoop(conn *ws.Conn, stop <-chan struct{}) {
	for {
		var batch [2][]byte
		select {
		case <-s.done:
			return
		case <-stop:
			return
		case snap := <-s.latest:
			batch[0] = snap
		case frame := <-s.frames:
			// A pending snapshot goes out before any frame queued after it.
			select {
			case snap := <-s.latest:
				batch[0] = snap
			default:
			}
			batch[1] = frame
		}
		for _, data := range batch {
			if data == nil {
				continue
			}
			if err := s.write(conn, data); err != nil {
				s.log.Warn("WebSocket write error", "error", err)
				go s.reconnect(conn)
				return
			}
		}
	}
}

// readLoop routes acks to waiters. Anything else from the viewer is
// ignored.
func (s *stream) readLoop(conn *ws.Conn) {
	for {
		_, message, err := conn.ReadMessage()
		if err != nil {
			select {
			case <-s.done:
				return
			default:
			}
			s.log.Warn("WebSocket read error", "error", err)
			go s.reconnect(conn)
			return
		}

		var ack streaming.AckMessage
		if err := json.Unmarshal(message, &ack); err != nil || ack.Type != streaming.TypeAck {
			s.log.Debug("Ignoring viewer message", "raw", string(message))
			continue
		}
		select {
		case s.acks <- ack:
		default:
			s.log.Debug("Ack buffer full, dropping", "for", ack.For)
		}
	}
}

// reconnect replaces broken. The read and write loops both call it when
// the connection fails; only the first call for a given conn does work.
func (s *stream) reconnect(broken *ws.Conn) {
	s.mu.Lock()
	if s.closed || s.conn != broken {
		s.mu.Unlock()
		return
	}
	_ = broken.Close()
	close(s.stop)
	s.conn = nil
	s.mu.Unlock()

	wait := s.backoff.Initial
	for attempt := 1; attempt <= s.backoff.Attempts; attempt++ {
		select {
		case <-s.done:
			return
		case <-time.After(wait):
		}

		s.log.Info("Reconnecting to viewer", "attempt", attempt)
		conn, err := s.dial()
		if err != nil {
			s.log.Warn("Reconnect dial failed", "attempt", attempt, "error", err)
			wait = s.backoff.next(wait)
			continue
		}

		s.mu.Lock()
		header, snapshot := s.header, s.snapshot
		s.mu.Unlock()

		if err := s.replay(conn, header, snapshot); err != nil {
			s.log.Warn("Replay after reconnect failed", "attempt", attempt, "error", err)
			_ = conn.Close()
			wait = s.backoff.next(wait)
			continue
		}

		if !s.attach(conn) {
			_ = conn.Close()
			return
		}

		s.reconnects.Add(1)
		s.log.Info("Viewer stream reconnected", "attempt", attempt, "replayedSnapshot", snapshot != nil)
		return
	}

	s.log.Error("Viewer stream lost", "attempts", s.backoff.Attempts)
}

func (s *stream) replay(conn *ws.Conn, frames ...[]byte) error {
	for _, data := range frames {
		if data == nil {
			continue
		}
		if err := s.write(conn, data); err != nil {
			return err
		}
	}
	return nil
}

// push queues a frame, dropping it when the queue is full.
func (s *stream) push(data []byte) {
	select {
	case s.frames <- data:
	default:
		s.dropped.Add(1)
		s.log.Warn("WebSocket send queue full, dropping frame")
	}
}

// pushSnapshot puts data in the snapshot slot, replacing an unsent one.
func (s *stream) pushSnapshot(data []byte) {
	s.mu.Lock()
	s.snapshot = data
	s.mu.Unlock()

	select {
	case s.latest <- data:
		return
	default:
	}
	select {
	case <-s.latest:
		s.coalesced.Add(1)
	default:
	}
	select {
	case s.latest <- data:
	default:
		// The writer took the slot and a concurrent push refilled it.
		s.dropped.Add(1)
	}
}

func (s *stream) setHeader(data []byte) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.header = data
	s.snapshot = nil
}

func (s *stream) clearHeader() {
	s.setHeader(nil)
}

// request queues data and waits for the viewer to ack it.
func (s *stream) request(data []byte, ackFor string, timeout time.Duration) error {
	s.push(data)

	timer := time.NewTimer(timeout)
	defer timer.Stop()
	for {
		select {
		case ack := <-s.acks:
			if ack.For == ackFor {
				return nil
			}
		case <-timer.C:
			return fmt.Errorf("timeout waiting for ack of %q", ackFor)
		case <-s.done:
			return fmt.Errorf("stream closed while waiting for ack of %q", ackFor)
		}
	}
}

func (s *stream) stats() Stats {
	return Stats{
		Sent:       s.sent.Load(),
		Dropped:    s.dropped.Load(),
		Coalesced:  s.coalesced.Load(),
		Reconnects: s.reconnects.Load(),
	}
}

// close sends a close frame and stops both loops.
func (s *stream) close() error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	s.closed = true
	close(s.done)
	conn := s.conn
	s.conn = nil
	s.mu.Unlock()

	if conn == nil {
		return nil
	}
	_ = conn.WriteControl(
		ws.CloseMessage,
		ws.FormatCloseMessage(ws.CloseNormalClosure, ""),
		time.Now().Add(writeWait),
	)
	return conn.Close()
}
