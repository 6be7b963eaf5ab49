package transport

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/gorilla/websocket"
	"github.com/jonboulle/clockwork"
)

// ErrEmptyAddress is returned when asked to dial an empty address.
var ErrEmptyAddress = errors.New("empty websocket address")

// Dialer opens sockets.
type Dialer interface {
	Dial(ctx context.Context, addr string) (*Socket, error)
}

// WebSocketDialer dials with gorilla/websocket.
type WebSocketDialer struct {
	HandshakeTimeout time.Duration
	Clock            clockwork.Clock
}

// NewDialer returns a WebSocketDialer with the given handshake timeout.
func NewDialer(handshakeTimeout time.Duration) *WebSocketDialer {
	return &WebSocketDialer{
		HandshakeTimeout: handshakeTimeout,
		Clock:            clockwork.NewRealClock(),
	}
}

// Dial performs the WebSocket handshake against addr.
func (d *WebSocketDialer) Dial(ctx context.Context, addr string) (*Socket, error) {
	if addr == "" {
		return nil, ErrEmptyAddress
	}

	dialer := websocket.Dialer{
		HandshakeTimeout: d.HandshakeTimeout,
		ReadBufferSize:   4096,
		WriteBufferSize:  1024,
	}
	conn, resp, err := dialer.DialContext(ctx, addr, nil)
	if resp != nil && resp.Body != nil {
		_ = resp.Body.Close()
	}
	if err != nil {
		return nil, fmt.Errorf("dial %s: %w", addr, err)
	}
	return NewSocket(conn, d.Clock), nil
}

var _ Dialer = (*WebSocketDialer)(nil)
