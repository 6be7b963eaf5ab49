// Package transport wraps a gorilla/websocket connection with the
// browser-style surface the client is written against: Send queues a frame
// without blocking and BufferedAmount reports how many bytes are still
// waiting to be written.
package transport

import (
	"errors"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"
	"github.com/jonboulle/clockwork"
)

const (
	writeTimeout   = 10 * time.Second
	pingInterval   = 30 * time.Second
	pongTimeout    = 60 * time.Second
	readLimit      = 1 << 20
	sendBufferSize = 64
)

var (
	// ErrClosed is returned by Send once the socket has shut down.
	ErrClosed = errors.New("socket closed")
	// ErrQueueFull is returned by Send when the outbound queue has no room.
	ErrQueueFull = errors.New("socket send queue full")
)

// Handlers receive socket events. Each runs on the socket's reader
// goroutine; callers that need single-threaded handling must hand the event
// off to their own loop.
type Handlers struct {
	OnMessage func(data []byte)
	OnError   func(err error)
	OnClose   func(err error)
}

// Socket is a single WebSocket connection.
type Socket struct {
	conn  *websocket.Conn
	clock clockwork.Clock

	// Any inbound frame or pong pushes the read deadline readTimeout ahead.
	readTimeout time.Duration
	pingEvery   time.Duration

	send     chan []byte
	buffered atomic.Int64

	closed    atomic.Bool
	closeOnce sync.Once
	done      chan struct{}
	wg        sync.WaitGroup
}

// NewSocket wraps an established connection. Nothing is read or written
// until Start is called.
func NewSocket(conn *websocket.Conn, clock clockwork.Clock) *Socket {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &Socket{
		conn:        conn,
		clock:       clock,
		readTimeout: pongTimeout,
		pingEvery:   pingInterval,
		send:        make(chan []byte, sendBufferSize),
		done:        make(chan struct{}),
	}
}

// Start launches the reader and writer goroutines.
func (s *Socket) Start(h Handlers) {
	s.conn.SetReadLimit(readLimit)
	_ = s.extendReadDeadline()
	s.conn.SetPongHandler(func(string) error {
		return s.extendReadDeadline()
	})

	s.wg.Add(2)
	go s.writePump()
	go s.readPump(h)
}

// Send queues a text frame.
func (s *Socket) Send(data []byte) error {
	if s.closed.Load() {
		return ErrClosed
	}
	s.buffered.Add(int64(len(data)))
	select {
	case s.send <- data:
		return nil
	case <-s.done:
		s.buffered.Add(-int64(len(data)))
		return ErrClosed
	default:
		s.buffered.Add(-int64(len(data)))
		return ErrQueueFull
	}
}

// BufferedAmount is the number of queued bytes not yet written to the wire.
func (s *Socket) BufferedAmount() int {
	return int(s.buffered.Load())
}

// Close shuts the connection down. The OnClose handler still fires, once,
// from the reader goroutine.
func (s *Socket) Close() error {
	if !s.closed.Load() {
		msg := websocket.FormatCloseMessage(websocket.CloseNormalClosure, "")
		_ = s.conn.WriteControl(websocket.CloseMessage, msg, s.clock.Now().Add(time.Second))
	}
	s.shutdown()
	return nil
}

// Wait blocks until both pumps have exited.
func (s *Socket) Wait() {
	s.wg.Wait()
}

// RemoteAddr returns the peer address.
func (s *Socket) RemoteAddr() string {
	return s.conn.RemoteAddr().String()
}

func (s *Socket) shutdown() {
	s.closeOnce.Do(func() {
		s.closed.Store(true)
		close(s.done)
		_ = s.conn.Close()
	})
}

func (s *Socket) readPump(h Handlers) {
	defer s.wg.Done()

	var readErr error
	for {
		_, data, err := s.conn.ReadMessage()
		if err != nil {
			readErr = err
			break
		}
		_ = s.extendReadDeadline()
		if h.OnMessage != nil {
			h.OnMessage(data)
		}
	}

	// A deliberate local close or a clean close frame is not an error event.
	if !s.closed.Load() && !websocket.IsCloseError(readErr, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
		if h.OnError != nil {
			h.OnError(readErr)
		}
	}
	s.shutdown()
	if h.OnClose != nil {
		h.OnClose(readErr)
	}
}

func (s *Socket) writePump() {
	defer s.wg.Done()

	ticker := s.clock.NewTicker(s.pingEvery)
	defer ticker.Stop()

	for {
		select {
		case data := <-s.send:
			err := s.write(websocket.TextMessage, data)
			s.buffered.Add(-int64(len(data)))
			if err != nil {
				slog.Warn("transport.write_failed",
					"component", "transport",
					"error", err,
				)
				s.shutdown()
				return
			}
		case <-ticker.Chan():
			if err := s.write(websocket.PingMessage, nil); err != nil {
				s.shutdown()
				return
			}
		case <-s.done:
			return
		}
	}
}

func (s *Socket) extendReadDeadline() error {
	return s.conn.SetReadDeadline(s.clock.Now().Add(s.readTimeout))
}

func (s *Socket) write(messageType int, data []byte) error {
	_ = s.conn.SetWriteDeadline(s.clock.Now().Add(writeTimeout))
	return s.conn.WriteMessage(messageType, data)
}
