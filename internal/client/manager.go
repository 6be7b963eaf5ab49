// Package client owns the single connection to the backend: it discovers the
// WebSocket address, connects, announces itself and reconnects after every
// close.
package client

import (
	"context"
	"errors"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/kostyay/signboard/internal/discovery"
	"github.com/kostyay/signboard/internal/eventloop"
	"github.com/kostyay/signboard/internal/metrics"
	"github.com/kostyay/signboard/internal/model"
	"github.com/kostyay/signboard/internal/protocol"
	"github.com/kostyay/signboard/internal/reliable"
	"github.com/kostyay/signboard/internal/transport"
)

const (
	DefaultReconnectDelay = 5 * time.Second
	DefaultDiscoveryPoll  = 2 * time.Second

	announceRetryDelay = 200 * time.Millisecond
	announceAttempts   = 5
)

// ErrNotConnected is returned by Send while no socket is open.
var ErrNotConnected = errors.New("not connected")

// Resolver looks up the WebSocket address.
type Resolver interface {
	ResolveAsync(ctx context.Context) <-chan discovery.Result
}

// MessageFunc handles one inbound frame. conn is the manager itself, so
// replies always go to whichever socket is current when they are written.
type MessageFunc func(conn reliable.Conn, data []byte)

// Config wires a Manager.
type Config struct {
	Scheduler eventloop.Scheduler
	Resolver  Resolver
	Dialer    transport.Dialer

	ReconnectDelay time.Duration
	DiscoveryPoll  time.Duration

	OnMessage MessageFunc
	OnStatus  func(model.ConnectionStatus)
	Now       func() time.Time
}

// Manager is the connection state machine. Apart from Send, BufferedAmount
// and Close, its methods run on the scheduler's goroutine.
type Manager struct {
	cfg Config
	ctx context.Context

	state   model.ConnectionState
	address string
	connID  string
	dialing bool

	current atomic.Pointer[transport.Socket]
	stopped atomic.Bool

	pollTimer      eventloop.Timer
	reconnectTimer eventloop.Timer
}

// New creates a Manager. Zero delays fall back to the defaults.
func New(cfg Config) *Manager {
	if cfg.ReconnectDelay <= 0 {
		cfg.ReconnectDelay = DefaultReconnectDelay
	}
	if cfg.DiscoveryPoll <= 0 {
		cfg.DiscoveryPoll = DefaultDiscoveryPoll
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	if cfg.OnMessage == nil {
		cfg.OnMessage = func(reliable.Conn, []byte) {}
	}
	if cfg.OnStatus == nil {
		cfg.OnStatus = func(model.ConnectionStatus) {}
	}
	return &Manager{cfg: cfg, ctx: context.Background()}
}

// Start begins discovery and the first connection attempt. It may be called
// from any goroutine.
func (m *Manager) Start(ctx context.Context) {
	m.cfg.Scheduler.Post(func() {
		m.ctx = ctx
		m.setState(model.StateDiscovering)
		m.discover()
		m.connect()
	})
}

// Close drops the current socket and stops any further reconnects. Safe to
// call from any goroutine.
func (m *Manager) Close() {
	m.stopped.Store(true)
	if sock := m.current.Swap(nil); sock != nil {
		_ = sock.Close()
	}
}

// Send writes to the current socket.
func (m *Manager) Send(data []byte) error {
	sock := m.current.Load()
	if sock == nil {
		return ErrNotConnected
	}
	return sock.Send(data)
}

// BufferedAmount reports the current socket's queued bytes, 0 when there is
// no socket.
func (m *Manager) BufferedAmount() int {
	sock := m.current.Load()
	if sock == nil {
		return 0
	}
	return sock.BufferedAmount()
}

// State returns the connection state.
func (m *Manager) State() model.ConnectionState {
	return m.state
}

// Address returns the discovered address, empty until discovery succeeds.
func (m *Manager) Address() string {
	return m.address
}

func (m *Manager) discover() {
	ch := m.cfg.Resolver.ResolveAsync(m.ctx)
	go func() {
		res, ok := <-ch
		if !ok {
			res = discovery.Result{Err: context.Canceled}
		}
		m.cfg.Scheduler.Post(func() { m.onDiscovered(res) })
	}()
}

func (m *Manager) onDiscovered(res discovery.Result) {
	if m.done() {
		return
	}
	if res.Err != nil {
		metrics.DiscoveryRequests.WithLabelValues("error").Inc()
		slog.Warn("client.discovery_failed",
			"component", "client",
			"error", res.Err,
			"retry_in", m.cfg.DiscoveryPoll,
		)
		m.cfg.Scheduler.AfterFunc(m.cfg.DiscoveryPoll, m.discover)
		return
	}

	metrics.DiscoveryRequests.WithLabelValues("ok").Inc()
	m.address = res.Address
	slog.Info("client.discovered", "component", "client", "address", res.Address)

	if m.pollTimer != nil {
		m.pollTimer.Stop()
		m.pollTimer = nil
	}
	m.connect()
}

// connect dials the known address, or waits for discovery to provide one.
func (m *Manager) connect() {
	if m.done() || m.dialing || m.current.Load() != nil {
		return
	}
	if m.address == "" {
		if m.pollTimer == nil {
			m.pollTimer = m.cfg.Scheduler.AfterFunc(m.cfg.DiscoveryPoll, func() {
				m.pollTimer = nil
				m.connect()
			})
		}
		return
	}

	m.dialing = true
	m.connID = uuid.NewString()
	m.setState(model.StateConnecting)

	id, addr, ctx := m.connID, m.address, m.ctx
	go func() {
		sock, err := m.cfg.Dialer.Dial(ctx, addr)
		m.cfg.Scheduler.Post(func() { m.onDialed(id, sock, err) })
	}()
}

func (m *Manager) onDialed(id string, sock *transport.Socket, err error) {
	m.dialing = false
	if id != m.connID || m.done() {
		if sock != nil {
			_ = sock.Close()
		}
		return
	}
	if err != nil {
		slog.Warn("client.dial_failed",
			"component", "client",
			"conn_id", id,
			"address", m.address,
			"error", err,
		)
		m.closed()
		return
	}

	m.current.Store(sock)
	sock.Start(transport.Handlers{
		OnMessage: func(data []byte) {
			m.cfg.Scheduler.Post(func() { m.onMessage(sock, data) })
		},
		OnError: func(err error) {
			m.cfg.Scheduler.Post(func() { m.onError(sock, err) })
		},
		OnClose: func(err error) {
			m.cfg.Scheduler.Post(func() { m.onSocketClosed(sock, err) })
		},
	})

	slog.Info("client.connected", "component", "client", "conn_id", id, "address", m.address)
	m.setState(model.StateOpen)
	reliable.SendBounded(m.cfg.Scheduler, m, protocol.ConnectionMessage(), announceRetryDelay, announceAttempts)
}

func (m *Manager) onMessage(sock *transport.Socket, data []byte) {
	if m.current.Load() != sock {
		return
	}
	m.cfg.OnMessage(m, data)
}

func (m *Manager) onError(sock *transport.Socket, err error) {
	if m.current.Load() != sock {
		return
	}
	slog.Warn("client.socket_error", "component", "client", "conn_id", m.connID, "error", err)
}

func (m *Manager) onSocketClosed(sock *transport.Socket, err error) {
	if !m.current.CompareAndSwap(sock, nil) {
		return
	}
	slog.Info("client.disconnected", "component", "client", "conn_id", m.connID, "reason", err)
	m.closed()
}

// closed moves to StateClosed and arms the one reconnect timer.
func (m *Manager) closed() {
	m.setState(model.StateClosed)
	if m.done() {
		return
	}
	if m.reconnectTimer != nil {
		m.reconnectTimer.Stop()
	}
	metrics.ReconnectsScheduled.Inc()
	m.reconnectTimer = m.cfg.Scheduler.AfterFunc(m.cfg.ReconnectDelay, func() {
		m.reconnectTimer = nil
		m.connect()
	})
}

func (m *Manager) setState(s model.ConnectionState) {
	m.state = s
	metrics.ConnectionState.Set(float64(s))
	m.cfg.OnStatus(model.ConnectionStatus{
		State:   s,
		Address: m.address,
		ConnID:  m.connID,
		At:      m.cfg.Now(),
	})
}

func (m *Manager) done() bool {
	return m.stopped.Load() || m.ctx.Err() != nil
}

var _ reliable.Conn = (*Manager)(nil)
