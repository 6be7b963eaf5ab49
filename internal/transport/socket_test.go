package transport

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// wsDialURL converts an httptest server URL to a WebSocket URL.
func wsDialURL(serverURL string) string {
	return strings.Replace(serverURL, "http://", "ws://", 1)
}

// newEchoServer echoes every text frame back. If closeAfter > 0 the server
// closes the connection after that many frames.
func newEchoServer(t *testing.T, closeAfter int) *httptest.Server {
	t.Helper()
	upgrader := websocket.Upgrader{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		defer conn.Close()
		for n := 1; ; n++ {
			mt, data, err := conn.ReadMessage()
			if err != nil {
				return
			}
			if err := conn.WriteMessage(mt, data); err != nil {
				return
			}
			if closeAfter > 0 && n >= closeAfter {
				return
			}
		}
	}))
	t.Cleanup(srv.Close)
	return srv
}

func dial(t *testing.T, srv *httptest.Server) *Socket {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	sock, err := NewDialer(time.Second).Dial(ctx, wsDialURL(srv.URL))
	require.NoError(t, err)
	return sock
}

func TestSocket_SendAndReceive(t *testing.T) {
	srv := newEchoServer(t, 0)
	sock := dial(t, srv)

	got := make(chan string, 2)
	sock.Start(Handlers{OnMessage: func(data []byte) { got <- string(data) }})
	t.Cleanup(func() { _ = sock.Close(); sock.Wait() })

	require.NoError(t, sock.Send([]byte(`{"type":"connection"}`)))
	require.NoError(t, sock.Send([]byte(`{"type":"load","message":"images"}`)))

	for _, want := range []string{`{"type":"connection"}`, `{"type":"load","message":"images"}`} {
		select {
		case msg := <-got:
			assert.Equal(t, want, msg)
		case <-time.After(2 * time.Second):
			t.Fatalf("did not receive %s", want)
		}
	}

	assert.Eventually(t, func() bool { return sock.BufferedAmount() == 0 }, time.Second, 10*time.Millisecond)
}

func TestSocket_RemoteCloseFiresOnCloseOnce(t *testing.T) {
	srv := newEchoServer(t, 1)
	sock := dial(t, srv)

	var closes atomic.Int32
	closed := make(chan struct{})
	sock.Start(Handlers{
		OnClose: func(error) {
			if closes.Add(1) == 1 {
				close(closed)
			}
		},
	})

	require.NoError(t, sock.Send([]byte("ping")))

	select {
	case <-closed:
	case <-time.After(2 * time.Second):
		t.Fatal("OnClose not called after remote close")
	}

	_ = sock.Close()
	sock.Wait()
	assert.Equal(t, int32(1), closes.Load())
	assert.ErrorIs(t, sock.Send([]byte("late")), ErrClosed)
}

func TestSocket_LocalCloseIsNotAnError(t *testing.T) {
	srv := newEchoServer(t, 0)
	sock := dial(t, srv)

	var errs atomic.Int32
	closed := make(chan struct{})
	sock.Start(Handlers{
		OnError: func(error) { errs.Add(1) },
		OnClose: func(error) { close(closed) },
	})

	require.NoError(t, sock.Close())

	select {
	case <-closed:
	case <-time.After(2 * time.Second):
		t.Fatal("OnClose not called after local close")
	}
	sock.Wait()
	assert.Zero(t, errs.Load())
}

// newSilentPingServer never answers pings and pushes one frame every
// interval until stop is closed.
func newSilentPingServer(t *testing.T, interval time.Duration, stop <-chan struct{}) *httptest.Server {
	t.Helper()
	upgrader := websocket.Upgrader{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		defer conn.Close()
		conn.SetPingHandler(func(string) error { return nil })
		readDone := make(chan struct{})
		go func() {
			defer close(readDone)
			for {
				if _, _, err := conn.ReadMessage(); err != nil {
					return
				}
			}
		}()

		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				if err := conn.WriteMessage(websocket.TextMessage, []byte(`{"type":"weather"}`)); err != nil {
					return
				}
			case <-stop:
				<-readDone
				return
			case <-readDone:
				return
			}
		}
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestSocket_DataFramesKeepConnectionAlive(t *testing.T) {
	stop := make(chan struct{})
	srv := newSilentPingServer(t, 30*time.Millisecond, stop)
	sock := dial(t, srv)
	sock.readTimeout = 200 * time.Millisecond
	sock.pingEvery = time.Hour

	var frames atomic.Int32
	closed := make(chan struct{})
	sock.Start(Handlers{
		OnMessage: func([]byte) { frames.Add(1) },
		OnClose:   func(error) { close(closed) },
	})
	t.Cleanup(func() { _ = sock.Close(); sock.Wait() })

	select {
	case <-closed:
		t.Fatal("socket timed out while frames were still arriving")
	case <-time.After(600 * time.Millisecond):
	}
	assert.Greater(t, frames.Load(), int32(5))

	close(stop)
	select {
	case <-closed:
	case <-time.After(2 * time.Second):
		t.Fatal("socket should time out once frames stop")
	}
}

func TestDialer_EmptyAddress(t *testing.T) {
	_, err := NewDialer(time.Second).Dial(context.Background(), "")
	assert.ErrorIs(t, err, ErrEmptyAddress)
}

func TestDialer_Unreachable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	t.Cleanup(srv.Close)

	_, err := NewDialer(time.Second).Dial(context.Background(), wsDialURL(srv.URL))
	assert.Error(t, err)
}
