package testserver

import (
	"context"
	"fmt"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/opencanoetiming/c123-scoring/internal/console"
	"github.com/opencanoetiming/c123-scoring/internal/feed"
	"github.com/opencanoetiming/c123-scoring/internal/mcp"
	"github.com/opencanoetiming/c123-scoring/internal/sqlite"
	"github.com/stretchr/testify/require"
)

// TestServer runs the whole console stack: a fake feed, the feed client, a
// sqlite-backed console and the MCP server over streamable HTTP.
type TestServer struct {
	Server  *httptest.Server
	Feed    *FeedServer
	DB      *sqlite.DB
	Console *console.Console
	Client  *feed.Client
}

// New starts a test server. Everything stops on test cleanup.
func New(t *testing.T) *TestServer {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := sqlite.New(dsn)
	require.NoError(t, err)
	require.NoError(t, db.RunMigrations())
	t.Cleanup(func() { _ = db.Close() })

	return Start(t, db)
}

// Start runs the stack on an existing database, so a test can restart the
// console and observe what was persisted. The caller owns db.
func Start(t *testing.T, db *sqlite.DB) *TestServer {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())

	feedServer := NewFeedServer(t)
	c := console.New(console.Config{Store: sqlite.NewKVStore(db)})
	c.Load(ctx)

	client := feed.NewClient(feed.Config{
		URL:       feedServer.URL(),
		RetryWait: 50 * time.Millisecond,
		OnUpdate: func(snap feed.Snapshot) {
			c.ApplySnapshot(ctx, snap)
		},
	})
	done := make(chan struct{})
	go func() {
		defer close(done)
		_ = client.Run(ctx)
	}()

	server := httptest.NewServer(mcp.NewHTTPHandler(mcp.NewServer(mcp.Config{Console: c}), time.Minute))

	t.Cleanup(func() {
		server.Close()
		cancel()
		<-done
	})

	return &TestServer{
		Server:  server,
		Feed:    feedServer,
		DB:      db,
		Console: c,
		Client:  client,
	}
}

// Connect opens an MCP client session over streamable HTTP.
func (ts *TestServer) Connect(t *testing.T) *sdkmcp.ClientSession {
	t.Helper()
	client := sdkmcp.NewClient(&sdkmcp.Implementation{Name: "test-client", Version: "1.0.0"}, nil)
	session, err := client.Connect(context.Background(), &sdkmcp.StreamableClientTransport{
		Endpoint: ts.Server.URL + "/mcp",
	}, nil)
	require.NoError(t, err)
	t.Cleanup(func() { session.Close() })
	return session
}

// WaitConnected blocks until the feed client is connected.
func (ts *TestServer) WaitConnected(t *testing.T) {
	t.Helper()
	require.Eventually(t, func() bool {
		return ts.Client.Snapshot().State == feed.StateConnected
	}, 5*time.Second, 10*time.Millisecond)
}
