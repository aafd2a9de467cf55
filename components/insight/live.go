package insight

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"
)

// LiveState models the channel lifecycle. There is no half-open state: any
// read failure moves the channel straight to closed.
type LiveState int32

const (
	StateConnecting LiveState = iota
	StateOpen
	StateClosed
)

func (s LiveState) String() string {
	switch s {
	case StateConnecting:
		return "connecting"
	case StateOpen:
		return "open"
	case StateClosed:
		return "closed"
	}
	return "unknown"
}

// messageTypeKPIUpdate is the only live message type the channel consumes.
// Unknown types are ignored for forward compatibility.
const messageTypeKPIUpdate = "KPI_UPDATE"

// StreamConn is the minimal websocket surface the channel needs, extracted
// so tests can feed scripted frames.
type StreamConn interface {
	ReadMessage() (messageType int, p []byte, err error)
	Close() error
}

// StreamDialer opens a stream connection to the KPI stream endpoint.
type StreamDialer interface {
	DialStream(ctx context.Context, url string) (StreamConn, error)
}

type gorillaDialer struct{}

func (gorillaDialer) DialStream(ctx context.Context, url string) (StreamConn, error) {
	conn, _, err := websocket.DefaultDialer.DialContext(ctx, url, nil)
	if err != nil {
		return nil, err
	}
	return conn, nil
}

// ReconnectPolicy wraps the connection in a capped exponential backoff loop.
// Disabled by default: the source behavior is reconnect-on-remount only.
type ReconnectPolicy struct {
	Enabled      bool
	InitialDelay time.Duration
	MaxDelay     time.Duration
	MaxAttempts  int
}

func (p ReconnectPolicy) normalized() ReconnectPolicy {
	if p.InitialDelay <= 0 {
		p.InitialDelay = time.Second
	}
	if p.MaxDelay <= 0 {
		p.MaxDelay = 30 * time.Second
	}
	return p
}

// LiveChannelOptions configures a LiveChannel.
type LiveChannelOptions struct {
	URL       string
	Filters   *FilterStore
	Hub       *StreamHub
	Dialer    StreamDialer
	Telemetry Telemetry
	Reconnect ReconnectPolicy
}

// LiveChannel maintains one persistent connection to the gateway KPI stream
// and merges updates into the shared KPI snapshot. Updates are applied only
// while no category/region slice is active, since the stream is global and
// must not silently overwrite a filtered view.
type LiveChannel struct {
	opts  LiveChannelOptions
	state atomic.Int32

	mu       sync.RWMutex
	snapshot KPISnapshot

	connMu sync.Mutex
	conn   StreamConn
}

// NewLiveChannel builds a channel; Run starts it.
func NewLiveChannel(opts LiveChannelOptions) (*LiveChannel, error) {
	if opts.URL == "" {
		return nil, errors.New("insight: live channel url is required")
	}
	if opts.Filters == nil {
		return nil, errors.New("insight: live channel requires a filter store")
	}
	if opts.Dialer == nil {
		opts.Dialer = gorillaDialer{}
	}
	opts.Telemetry = normalizeTelemetry(opts.Telemetry)
	opts.Reconnect = opts.Reconnect.normalized()
	c := &LiveChannel{opts: opts}
	c.state.Store(int32(StateConnecting))
	return c, nil
}

// State reports the current lifecycle state.
func (c *LiveChannel) State() LiveState {
	return LiveState(c.state.Load())
}

// Snapshot returns the current merged KPI snapshot.
func (c *LiveChannel) Snapshot() KPISnapshot {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.snapshot
}

// SetBaseline replaces the snapshot wholesale, e.g. after an overview fetch.
func (c *LiveChannel) SetBaseline(snapshot KPISnapshot) {
	c.mu.Lock()
	c.snapshot = snapshot
	c.mu.Unlock()
}

// Run dials the stream and consumes messages until the context is canceled,
// the connection drops (reconnect disabled), or the reconnect budget is
// exhausted. Always returns with the channel in StateClosed.
func (c *LiveChannel) Run(ctx context.Context) error {
	defer c.state.Store(int32(StateClosed))
	attempts := 0
	delay := c.opts.Reconnect.InitialDelay
	for {
		err := c.runOnce(ctx)
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if !c.opts.Reconnect.Enabled {
			return err
		}
		attempts++
		if c.opts.Reconnect.MaxAttempts > 0 && attempts >= c.opts.Reconnect.MaxAttempts {
			return err
		}
		c.opts.Telemetry.Record(ctx, "insight.live.reconnect", map[string]any{
			"attempt": attempts,
			"delay":   delay.String(),
		})
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(delay):
		}
		delay *= 2
		if delay > c.opts.Reconnect.MaxDelay {
			delay = c.opts.Reconnect.MaxDelay
		}
	}
}

func (c *LiveChannel) runOnce(ctx context.Context) error {
	c.state.Store(int32(StateConnecting))
	conn, err := c.opts.Dialer.DialStream(ctx, c.opts.URL)
	if err != nil {
		c.state.Store(int32(StateClosed))
		return err
	}
	c.connMu.Lock()
	c.conn = conn
	c.connMu.Unlock()
	c.state.Store(int32(StateOpen))

	done := make(chan struct{})
	defer close(done)
	go func() {
		select {
		case <-ctx.Done():
			_ = conn.Close()
		case <-done:
		}
	}()

	for {
		_, payload, err := conn.ReadMessage()
		if err != nil {
			c.state.Store(int32(StateClosed))
			return err
		}
		c.handle(ctx, payload)
	}
}

// Close tears down the active connection. No buffered messages are replayed
// after a reconnect.
func (c *LiveChannel) Close() error {
	c.connMu.Lock()
	defer c.connMu.Unlock()
	c.state.Store(int32(StateClosed))
	if c.conn == nil {
		return nil
	}
	err := c.conn.Close()
	c.conn = nil
	return err
}

type liveMessage struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

// handle parses one frame. Malformed payloads are dropped (recorded via
// telemetry) without crashing the channel.
func (c *LiveChannel) handle(ctx context.Context, raw []byte) {
	var msg liveMessage
	if err := json.Unmarshal(raw, &msg); err != nil {
		c.opts.Telemetry.Record(ctx, "insight.live.malformed", map[string]any{"error": err.Error()})
		return
	}
	if msg.Type != messageTypeKPIUpdate {
		return
	}
	var update KPIUpdate
	if err := json.Unmarshal(msg.Payload, &update); err != nil {
		c.opts.Telemetry.Record(ctx, "insight.live.malformed", map[string]any{"error": err.Error()})
		return
	}
	if c.opts.Filters.Selection().HasSliceRestriction() {
		c.opts.Telemetry.Record(ctx, "insight.live.skipped", map[string]any{
			"reason": "active slice",
		})
		return
	}
	c.mu.Lock()
	c.snapshot.Apply(update)
	snapshot := c.snapshot
	c.mu.Unlock()
	if c.opts.Hub != nil {
		c.opts.Hub.Publish(ctx, LiveUpdate{Update: update, Snapshot: snapshot})
	}
}
