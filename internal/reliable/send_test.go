package reliable

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kostyay/signboard/internal/eventloop"
)

// fakeConn reports a scripted buffered amount and records sent frames.
type fakeConn struct {
	buffered []int // consumed one per BufferedAmount call; last value repeats
	checks   int
	sent     [][]byte
	sendErr  error
}

func (c *fakeConn) BufferedAmount() int {
	c.checks++
	if len(c.buffered) == 0 {
		return 0
	}
	v := c.buffered[0]
	if len(c.buffered) > 1 {
		c.buffered = c.buffered[1:]
	}
	return v
}

func (c *fakeConn) Send(data []byte) error {
	if c.sendErr != nil {
		return c.sendErr
	}
	c.sent = append(c.sent, data)
	return nil
}

type loadMsg struct {
	Type    string `json:"type"`
	Message string `json:"message,omitempty"`
}

func fireAll(t *testing.T, s *eventloop.Manual) []time.Duration {
	t.Helper()
	var delays []time.Duration
	for i := 0; i < 100; i++ {
		pending := s.Pending()
		if len(pending) == 0 {
			return delays
		}
		require.Len(t, pending, 1, "a retry loop must never have more than one timer armed")
		delays = append(delays, pending[0].Delay)
		pending[0].Fire()
		s.RunPending()
	}
	t.Fatal("retry loop did not settle")
	return nil
}

func TestSendWithCallback_SendsImmediatelyWhenIdle(t *testing.T) {
	s := eventloop.NewManual()
	conn := &fakeConn{}
	called := 0

	SendWithCallback(s, conn, loadMsg{Type: "load", Message: "images"}, 200*time.Millisecond, func() {
		called++
		assert.Len(t, conn.sent, 1, "callback must run after the send")
	})

	require.Len(t, conn.sent, 1)
	assert.JSONEq(t, `{"type":"load","message":"images"}`, string(conn.sent[0]))
	assert.Equal(t, 1, called)
	assert.Empty(t, s.Pending())
}

func TestSendWithCallback_RetriesUntilBufferDrains(t *testing.T) {
	s := eventloop.NewManual()
	conn := &fakeConn{buffered: []int{10, 10, 10, 10, 10, 10, 10, 0}}
	called := 0

	SendWithCallback(s, conn, loadMsg{Type: "load"}, 200*time.Millisecond, func() { called++ })
	assert.Empty(t, conn.sent)

	delays := fireAll(t, s)

	assert.Len(t, delays, 7, "no attempt cap for must-deliver sends")
	for _, d := range delays {
		assert.Equal(t, 200*time.Millisecond, d)
	}
	assert.Len(t, conn.sent, 1)
	assert.Equal(t, 1, called)
}

func TestSendWithCallback_NilCallback(t *testing.T) {
	s := eventloop.NewManual()
	conn := &fakeConn{}

	SendWithCallback(s, conn, loadMsg{Type: "load", Message: "weather"}, 200*time.Millisecond, nil)

	assert.Len(t, conn.sent, 1)
}

func TestSendWithCallback_SendErrorSkipsCallback(t *testing.T) {
	s := eventloop.NewManual()
	conn := &fakeConn{sendErr: errors.New("closed")}
	called := false

	SendWithCallback(s, conn, loadMsg{Type: "load"}, 200*time.Millisecond, func() { called = true })

	assert.False(t, called)
	assert.Empty(t, s.Pending())
}

func TestSendBounded_GivesUpAfterMaxAttempts(t *testing.T) {
	tests := []struct {
		name        string
		maxAttempts int
		delay       time.Duration
	}{
		{"connection announcement", 5, 200 * time.Millisecond},
		{"error report", 5, 500 * time.Millisecond},
		{"single attempt", 1, time.Second},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := eventloop.NewManual()
			conn := &fakeConn{buffered: []int{1}}

			require.NotPanics(t, func() {
				SendBounded(s, conn, loadMsg{Type: "connection"}, tt.delay, tt.maxAttempts)
			})
			delays := fireAll(t, s)

			assert.Equal(t, tt.maxAttempts, conn.checks, "attempt count")
			assert.Len(t, delays, tt.maxAttempts-1)
			for _, d := range delays {
				assert.Equal(t, tt.delay, d)
			}
			assert.Empty(t, conn.sent)
		})
	}
}

func TestSendBounded_NonPositiveLimitSendsNothing(t *testing.T) {
	for _, limit := range []int{0, -1} {
		s := eventloop.NewManual()
		conn := &fakeConn{}

		SendBounded(s, conn, loadMsg{Type: "connection"}, 200*time.Millisecond, limit)

		assert.Zero(t, conn.checks, "limit %d", limit)
		assert.Empty(t, conn.sent, "limit %d", limit)
		assert.Empty(t, s.Pending(), "limit %d", limit)
	}
}

func TestSendBounded_SendsOnceBufferDrains(t *testing.T) {
	s := eventloop.NewManual()
	conn := &fakeConn{buffered: []int{3, 3, 0}}

	SendBounded(s, conn, loadMsg{Type: "connection"}, 200*time.Millisecond, 5)
	fireAll(t, s)

	require.Len(t, conn.sent, 1)
	assert.JSONEq(t, `{"type":"connection"}`, string(conn.sent[0]))
	assert.Equal(t, 3, conn.checks)
}

func TestSendBounded_SwallowsErrors(t *testing.T) {
	s := eventloop.NewManual()
	conn := &fakeConn{sendErr: errors.New("broken pipe")}

	assert.NotPanics(t, func() {
		SendBounded(s, conn, loadMsg{Type: "error", Message: "x"}, 500*time.Millisecond, 5)
	})
	assert.Empty(t, s.Pending())
}

func TestSendBounded_UnencodableMessage(t *testing.T) {
	s := eventloop.NewManual()
	conn := &fakeConn{}

	SendBounded(s, conn, map[string]any{"bad": make(chan int)}, 500*time.Millisecond, 5)

	assert.Zero(t, conn.checks)
	assert.Empty(t, conn.sent)
}
