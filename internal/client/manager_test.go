package client

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kostyay/signboard/internal/discovery"
	"github.com/kostyay/signboard/internal/eventloop"
	"github.com/kostyay/signboard/internal/model"
	"github.com/kostyay/signboard/internal/reliable"
	"github.com/kostyay/signboard/internal/transport"
)

const waitTimeout = 3 * time.Second

// backend is a WebSocket server that records what clients send and lets the
// test drop connections.
type backend struct {
	srv *httptest.Server

	mu       sync.Mutex
	conns    []*websocket.Conn
	received []string
	accepted atomic.Int32
}

func newBackend(t *testing.T) *backend {
	t.Helper()
	b := &backend{}
	upgrader := websocket.Upgrader{}
	b.srv = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		b.mu.Lock()
		b.conns = append(b.conns, conn)
		b.mu.Unlock()
		b.accepted.Add(1)

		for {
			_, data, err := conn.ReadMessage()
			if err != nil {
				return
			}
			b.mu.Lock()
			b.received = append(b.received, string(data))
			b.mu.Unlock()
		}
	}))
	t.Cleanup(b.srv.Close)
	return b
}

func (b *backend) addr() string {
	return strings.Replace(b.srv.URL, "http://", "ws://", 1)
}

func (b *backend) messages() []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]string(nil), b.received...)
}

func (b *backend) push(t *testing.T, msg string) {
	t.Helper()
	b.mu.Lock()
	conn := b.conns[len(b.conns)-1]
	b.mu.Unlock()
	require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte(msg)))
}

func (b *backend) dropLatest() {
	b.mu.Lock()
	conn := b.conns[len(b.conns)-1]
	b.mu.Unlock()
	_ = conn.Close()
}

// fakeResolver hands out scripted results, one per call.
type fakeResolver struct {
	mu      sync.Mutex
	results []chan discovery.Result
	calls   int
}

func (r *fakeResolver) ResolveAsync(context.Context) <-chan discovery.Result {
	r.mu.Lock()
	defer r.mu.Unlock()
	ch := make(chan discovery.Result, 1)
	r.results = append(r.results, ch)
	r.calls++
	return ch
}

func (r *fakeResolver) answer(i int, res discovery.Result) {
	r.mu.Lock()
	ch := r.results[i]
	r.mu.Unlock()
	ch <- res
}

func (r *fakeResolver) callCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.calls
}

type harness struct {
	sched    *eventloop.Manual
	resolver *fakeResolver
	mgr      *Manager
	statuses []model.ConnectionStatus
	inbound  []string
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	h := &harness{
		sched:    eventloop.NewManual(),
		resolver: &fakeResolver{},
	}
	h.mgr = New(Config{
		Scheduler: h.sched,
		Resolver:  h.resolver,
		Dialer:    transport.NewDialer(time.Second),
		OnMessage: func(conn reliable.Conn, data []byte) {
			h.inbound = append(h.inbound, string(data))
		},
		OnStatus: func(s model.ConnectionStatus) {
			h.statuses = append(h.statuses, s)
		},
	})
	t.Cleanup(h.mgr.Close)
	return h
}

func (h *harness) waitState(t *testing.T, want model.ConnectionState) {
	t.Helper()
	ok := h.sched.WaitFor(waitTimeout, func() bool { return h.mgr.State() == want })
	require.True(t, ok, "state = %v, want %v", h.mgr.State(), want)
}

func (h *harness) startAt(t *testing.T, addr string) {
	t.Helper()
	h.mgr.Start(context.Background())
	h.sched.RunPending()
	require.Equal(t, 1, h.resolver.callCount())
	h.resolver.answer(0, discovery.Result{Address: addr})
}

func TestManager_ConnectsAndAnnounces(t *testing.T) {
	b := newBackend(t)
	h := newHarness(t)

	h.startAt(t, b.addr())
	h.waitState(t, model.StateOpen)

	assert.Eventually(t, func() bool {
		return len(b.messages()) == 1
	}, waitTimeout, 10*time.Millisecond)
	assert.Equal(t, `{"type":"connection"}`, b.messages()[0])

	var states []model.ConnectionState
	for _, s := range h.statuses {
		states = append(states, s.State)
	}
	assert.Equal(t, []model.ConnectionState{model.StateDiscovering, model.StateConnecting, model.StateOpen}, states)
	assert.NotEmpty(t, h.statuses[2].ConnID)
	assert.Equal(t, b.addr(), h.statuses[2].Address)
	assert.Empty(t, h.sched.Pending(), "discovery poll timer must be cancelled")
}

func TestManager_DispatchesInboundMessages(t *testing.T) {
	b := newBackend(t)
	h := newHarness(t)

	h.startAt(t, b.addr())
	h.waitState(t, model.StateOpen)

	b.push(t, `{"type":"downloaded"}`)
	ok := h.sched.WaitFor(waitTimeout, func() bool { return len(h.inbound) == 1 })
	require.True(t, ok)
	assert.Equal(t, `{"type":"downloaded"}`, h.inbound[0])
}

func TestManager_ReconnectsWithKnownAddress(t *testing.T) {
	b := newBackend(t)
	h := newHarness(t)

	h.startAt(t, b.addr())
	h.waitState(t, model.StateOpen)
	firstID := h.statuses[len(h.statuses)-1].ConnID

	for cycle := 0; cycle < 3; cycle++ {
		b.dropLatest()
		h.waitState(t, model.StateClosed)

		pending := h.sched.Pending()
		require.Len(t, pending, 1, "exactly one reconnect is scheduled")
		assert.Equal(t, 5*time.Second, pending[0].Delay)

		pending[0].Fire()
		h.waitState(t, model.StateOpen)
	}

	assert.Equal(t, 1, h.resolver.callCount(), "reconnects never rediscover")
	assert.EqualValues(t, 4, b.accepted.Load())
	assert.NotEqual(t, firstID, h.statuses[len(h.statuses)-1].ConnID)
}

func TestManager_PollsUntilDiscovered(t *testing.T) {
	b := newBackend(t)
	h := newHarness(t)

	h.mgr.Start(context.Background())
	h.sched.RunPending()
	assert.Equal(t, model.StateDiscovering, h.mgr.State())

	for i := 0; i < 3; i++ {
		pending := h.sched.Pending()
		require.Len(t, pending, 1)
		assert.Equal(t, 2*time.Second, pending[0].Delay)
		pending[0].Fire()
		h.sched.RunPending()
		assert.Equal(t, model.StateDiscovering, h.mgr.State())
	}

	h.resolver.answer(0, discovery.Result{Address: b.addr()})
	h.waitState(t, model.StateOpen)
	assert.Empty(t, h.sched.Pending())
	assert.Equal(t, 1, h.resolver.callCount())
}

func TestManager_RetriesFailedDiscovery(t *testing.T) {
	b := newBackend(t)
	h := newHarness(t)

	h.mgr.Start(context.Background())
	h.sched.RunPending()
	h.resolver.answer(0, discovery.Result{Err: discovery.ErrEmptyAddress})

	ok := h.sched.WaitFor(waitTimeout, func() bool { return len(h.sched.Pending()) == 2 })
	require.True(t, ok, "a discovery retry and the connect poll should both be armed")

	for _, timer := range h.sched.Pending() {
		assert.Equal(t, 2*time.Second, timer.Delay)
		timer.Fire()
	}
	h.sched.RunPending()
	require.Equal(t, 2, h.resolver.callCount())

	h.resolver.answer(1, discovery.Result{Address: b.addr()})
	h.waitState(t, model.StateOpen)
}

func TestManager_DialFailureSchedulesReconnect(t *testing.T) {
	b := newBackend(t)
	addr := b.addr()
	b.srv.Close()

	h := newHarness(t)
	h.startAt(t, addr)
	h.waitState(t, model.StateClosed)

	pending := h.sched.Pending()
	require.Len(t, pending, 1)
	assert.Equal(t, 5*time.Second, pending[0].Delay)
}

func TestManager_NotConnected(t *testing.T) {
	h := newHarness(t)

	assert.ErrorIs(t, h.mgr.Send([]byte("x")), ErrNotConnected)
	assert.Equal(t, 0, h.mgr.BufferedAmount())
}

func TestManager_CloseStopsReconnects(t *testing.T) {
	b := newBackend(t)
	h := newHarness(t)

	h.startAt(t, b.addr())
	h.waitState(t, model.StateOpen)

	h.mgr.Close()
	h.sched.WaitFor(200*time.Millisecond, func() bool { return false })

	assert.Empty(t, h.sched.Pending(), "no reconnect after Close")
	assert.ErrorIs(t, h.mgr.Send([]byte("x")), ErrNotConnected)
}
