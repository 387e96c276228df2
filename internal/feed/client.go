package feed

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/jonboulle/clockwork"
)

// Default timings.
const (
	DefaultRetryWait  = 3 * time.Second
	DefaultStaleAfter = 10 * time.Second
)

// Config configures a Client.
type Config struct {
	URL        string
	RetryWait  time.Duration
	StaleAfter time.Duration
	Dialer     *websocket.Dialer
	Clock      clockwork.Clock
	Logger     *slog.Logger
	// OnUpdate receives a copy of the snapshot after every applied message and
	// connection state change. It runs on the Run goroutine.
	OnUpdate func(Snapshot)
}

// Client keeps a websocket connection to the timing server and accumulates
// its messages into a Snapshot.
type Client struct {
	url        string
	retryWait  time.Duration
	staleAfter time.Duration
	dialer     *websocket.Dialer
	clock      clockwork.Clock
	logger     *slog.Logger
	onUpdate   func(Snapshot)

	mu   sync.RWMutex
	snap Snapshot
}

// NewClient creates a disconnected client.
func NewClient(cfg Config) *Client {
	if cfg.RetryWait <= 0 {
		cfg.RetryWait = DefaultRetryWait
	}
	if cfg.StaleAfter <= 0 {
		cfg.StaleAfter = DefaultStaleAfter
	}
	if cfg.Dialer == nil {
		cfg.Dialer = websocket.DefaultDialer
	}
	if cfg.Clock == nil {
		cfg.Clock = clockwork.NewRealClock()
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Client{
		url:        cfg.URL,
		retryWait:  cfg.RetryWait,
		staleAfter: cfg.StaleAfter,
		dialer:     cfg.Dialer,
		clock:      cfg.Clock,
		logger:     cfg.Logger,
		onUpdate:   cfg.OnUpdate,
		snap:       Snapshot{State: StateDisconnected},
	}
}

// Snapshot returns a copy of the accumulated feed state.
func (c *Client) Snapshot() Snapshot {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.snap.Clone()
}

// Status returns the connection indicator at the current clock time.
func (c *Client) Status() Status {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.snap.Status(c.clock.Now(), c.staleAfter)
}

// Run connects and reads until ctx is cancelled, reconnecting after a fixed
// wait whenever the connection drops. It returns ctx.Err().
func (c *Client) Run(ctx context.Context) error {
	for {
		c.setState(StateConnecting, nil)
		err := c.session(ctx)
		if ctx.Err() != nil {
			c.setState(StateDisconnected, nil)
			return ctx.Err()
		}
		c.setState(StateDisconnected, err)
		c.logger.Warn("feed disconnected", "url", c.url, "error", err, "retry_in", c.retryWait)

		timer := c.clock.NewTimer(c.retryWait)
		select {
		case <-ctx.Done():
			timer.Stop()
			c.setState(StateDisconnected, nil)
			return ctx.Err()
		case <-timer.Chan():
		}
	}
}

func (c *Client) session(ctx context.Context) error {
	conn, _, err := c.dialer.DialContext(ctx, c.url, nil)
	if err != nil {
		return err
	}
	defer conn.Close()

	done := make(chan struct{})
	defer close(done)
	go func() {
		select {
		case <-ctx.Done():
			_ = conn.WriteControl(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
				time.Now().Add(time.Second))
			conn.Close()
		case <-done:
		}
	}()

	c.logger.Info("feed connected", "url", c.url)
	c.setState(StateConnected, nil)

	for {
		kind, frame, err := conn.ReadMessage()
		if err != nil {
			var closeErr *websocket.CloseError
			if errors.As(err, &closeErr) && closeErr.Code == websocket.CloseNormalClosure {
				return errors.New("server closed connection")
			}
			return err
		}
		if kind != websocket.TextMessage {
			continue
		}
		c.handle(frame)
	}
}

func (c *Client) handle(frame []byte) {
	c.mu.Lock()
	err := c.snap.Apply(frame, c.clock.Now())
	snap := c.snap.Clone()
	c.mu.Unlock()

	switch {
	case errors.Is(err, ErrUnknownType):
		c.logger.Debug("ignoring feed message", "error", err)
	case err != nil:
		c.logger.Warn("dropping feed message", "error", err)
		return
	}
	c.publish(snap)
}

func (c *Client) setState(state State, err error) {
	c.mu.Lock()
	c.snap.State = state
	if err != nil {
		c.snap.LastError = err.Error()
	} else if state == StateConnected {
		c.snap.LastError = ""
	}
	snap := c.snap.Clone()
	c.mu.Unlock()
	c.publish(snap)
}

func (c *Client) publish(snap Snapshot) {
	if c.onUpdate != nil {
		c.onUpdate(snap)
	}
}
