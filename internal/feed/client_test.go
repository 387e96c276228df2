package feed_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/jonboulle/clockwork"
	"github.com/opencanoetiming/c123-scoring/internal/feed"
	"github.com/stretchr/testify/require"
)

const scheduleFrame = `{"type":"Schedule","data":{"races":[{"raceId":"A","shortTitle":"A","raceStatus":"running"}]}}`

type timingServer struct {
	*httptest.Server
	connections atomic.Int32
}

// newTimingServer serves each connection with serve.
func newTimingServer(t *testing.T, serve func(n int32, conn *websocket.Conn)) *timingServer {
	t.Helper()
	ts := &timingServer{}
	upgrader := websocket.Upgrader{}
	ts.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		defer conn.Close()
		serve(ts.connections.Add(1), conn)
	}))
	t.Cleanup(ts.Close)
	return ts
}

func (ts *timingServer) wsURL() string {
	return "ws" + strings.TrimPrefix(ts.URL, "http")
}

// drain blocks until the peer goes away.
func drain(conn *websocket.Conn) {
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			return
		}
	}
}

func TestClient_ReceivesMessages(t *testing.T) {
	ts := newTimingServer(t, func(_ int32, conn *websocket.Conn) {
		_ = conn.WriteMessage(websocket.TextMessage, []byte(scheduleFrame))
		_ = conn.WriteMessage(websocket.TextMessage, []byte(`{"type":"RaceConfig","data":{"nrGates":4,"gateConfig":"NNRN"}}`))
		drain(conn)
	})

	updates := make(chan feed.Snapshot, 16)
	c := feed.NewClient(feed.Config{URL: ts.wsURL(), OnUpdate: func(s feed.Snapshot) {
		select {
		case updates <- s:
		default:
		}
	}})

	ctx, cancel := context.WithCancel(context.Background())
	errCh := make(chan error, 1)
	go func() { errCh <- c.Run(ctx) }()

	require.Eventually(t, func() bool {
		_, ok := c.Snapshot().Config("A")
		return ok && len(c.Snapshot().Schedule.Races) == 1
	}, 2*time.Second, 10*time.Millisecond)
	require.Equal(t, feed.StateConnected, c.Snapshot().State)
	require.True(t, c.Status().Healthy)
	require.NotEmpty(t, updates)

	cancel()
	select {
	case err := <-errCh:
		require.ErrorIs(t, err, context.Canceled)
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not return after cancel")
	}
	require.Equal(t, feed.StateDisconnected, c.Snapshot().State)
}

func TestClient_ReconnectsAfterRetryWait(t *testing.T) {
	ts := newTimingServer(t, func(n int32, conn *websocket.Conn) {
		if n == 1 {
			_ = conn.WriteMessage(websocket.TextMessage, []byte(scheduleFrame))
			return
		}
		drain(conn)
	})

	clock := clockwork.NewFakeClock()
	c := feed.NewClient(feed.Config{URL: ts.wsURL(), RetryWait: 5 * time.Second, Clock: clock})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() { _ = c.Run(ctx) }()

	waitCtx, waitCancel := context.WithTimeout(ctx, 2*time.Second)
	defer waitCancel()
	require.NoError(t, clock.BlockUntilContext(waitCtx, 1))

	snap := c.Snapshot()
	require.Equal(t, feed.StateDisconnected, snap.State)
	require.NotEmpty(t, snap.LastError)
	require.Len(t, snap.Schedule.Races, 1)
	require.Equal(t, int32(1), ts.connections.Load())

	clock.Advance(5 * time.Second)
	require.Eventually(t, func() bool {
		return ts.connections.Load() == 2 && c.Snapshot().State == feed.StateConnected
	}, 2*time.Second, 10*time.Millisecond)
	require.Empty(t, c.Snapshot().LastError)
}

func TestClient_DialFailureRetries(t *testing.T) {
	clock := clockwork.NewFakeClock()
	c := feed.NewClient(feed.Config{URL: "ws://127.0.0.1:1/ws", Clock: clock})

	ctx, cancel := context.WithCancel(context.Background())
	errCh := make(chan error, 1)
	go func() { errCh <- c.Run(ctx) }()

	waitCtx, waitCancel := context.WithTimeout(ctx, 2*time.Second)
	defer waitCancel()
	require.NoError(t, clock.BlockUntilContext(waitCtx, 1))
	require.Equal(t, feed.ClassError, c.Status().Class)

	cancel()
	select {
	case err := <-errCh:
		require.ErrorIs(t, err, context.Canceled)
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not return after cancel")
	}
}
