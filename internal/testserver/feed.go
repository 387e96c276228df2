package testserver

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/gorilla/websocket"
	"github.com/opencanoetiming/c123-scoring/internal/feed"
	"github.com/stretchr/testify/require"
)

// FeedServer is a fake C123 server. Every published frame is kept and
// replayed to clients that connect later.
type FeedServer struct {
	Server *httptest.Server

	upgrader websocket.Upgrader
	mu       sync.Mutex
	conns    []*websocket.Conn
	backlog  [][]byte
	accepted int
}

// NewFeedServer starts a fake feed closed on test cleanup.
func NewFeedServer(t *testing.T) *FeedServer {
	t.Helper()
	f := &FeedServer{}
	f.Server = httptest.NewServer(http.HandlerFunc(f.serve))
	t.Cleanup(f.Close)
	return f
}

// URL returns the websocket address of the feed.
func (f *FeedServer) URL() string {
	return "ws" + strings.TrimPrefix(f.Server.URL, "http")
}

func (f *FeedServer) serve(w http.ResponseWriter, r *http.Request) {
	conn, err := f.upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}

	f.mu.Lock()
	for _, frame := range f.backlog {
		if err := conn.WriteMessage(websocket.TextMessage, frame); err != nil {
			f.mu.Unlock()
			conn.Close()
			return
		}
	}
	f.conns = append(f.conns, conn)
	f.accepted++
	f.mu.Unlock()

	// Drain until the client goes away.
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			f.drop(conn)
			return
		}
	}
}

func (f *FeedServer) drop(conn *websocket.Conn) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i, c := range f.conns {
		if c == conn {
			f.conns = append(f.conns[:i], f.conns[i+1:]...)
			break
		}
	}
	conn.Close()
}

// Publish sends one typed message to every connected client.
func (f *FeedServer) Publish(t *testing.T, msgType string, data any) {
	t.Helper()
	raw, err := json.Marshal(data)
	require.NoError(t, err)
	frame, err := json.Marshal(feed.Envelope{Type: msgType, Data: raw})
	require.NoError(t, err)

	f.mu.Lock()
	defer f.mu.Unlock()
	f.backlog = append(f.backlog, frame)
	for _, c := range f.conns {
		_ = c.WriteMessage(websocket.TextMessage, frame)
	}
}

// Accepted returns how many connections the feed has served.
func (f *FeedServer) Accepted() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.accepted
}

// Disconnect drops every client connection but keeps serving.
func (f *FeedServer) Disconnect() {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, c := range f.conns {
		c.Close()
	}
	f.conns = nil
}

// Close disconnects every client and stops the server.
func (f *FeedServer) Close() {
	f.Disconnect()
	f.Server.Close()
}
