package invalidator

import (
	"context"
	"encoding/json"
	"log/slog"
	"math/rand"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"

	"github.com/UnitedWeRise-org/UnitedWeRise-sub011/internal/profile"
)

// MutationSink receives decoded mutation events. *profile.Builder satisfies
// this interface.
type MutationSink interface {
	OnMutation(ctx context.Context, m profile.Mutation)
}

// Client is a resilient WebSocket client for the mutation event stream.
// It automatically reconnects with exponential backoff and jitter, decodes
// each message as a mutation event and forwards it to the sink.
type Client struct {
	config Config
	sink   MutationSink
	logger *slog.Logger

	mu          sync.Mutex
	rng         *rand.Rand // protected by mu
	conn        *websocket.Conn
	isConnected bool

	// reconnectCount tracks consecutive reconnection attempts (atomic)
	reconnectCount int64
}

// NewClient creates a new mutation stream client with the given configuration.
// Decoded mutations are forwarded to the sink.
func NewClient(config Config, sink MutationSink, logger *slog.Logger) (*Client, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{
		config: config,
		sink:   sink,
		logger: logger,
		rng:    rand.New(rand.NewSource(time.Now().UnixNano())),
	}, nil
}

// Run starts the WebSocket client and blocks until the context is cancelled.
// It will automatically reconnect with exponential backoff on connection failures.
func (c *Client) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			c.logger.Info("mutation stream client stopping due to context cancellation")
			c.close()
			return ctx.Err()
		default:
		}

		// Attempt to connect
		if err := c.connect(ctx); err != nil {
			attempt := atomic.LoadInt64(&c.reconnectCount) + 1
			c.logger.Warn("mutation stream connection failed",
				slog.String("error", err.Error()),
				slog.Int64("attempt", attempt))

			// Schedule reconnect with backoff
			delay := c.computeBackoff()
			atomic.AddInt64(&c.reconnectCount, 1)

			if c.config.MaxRetryAttempts > 0 && attempt >= c.config.MaxRetryAttempts {
				c.logger.Error("mutation stream reconnect attempts exhausted, continuing with stale cache risk",
					slog.Int64("attempts", attempt))
			}

			c.logger.Info("scheduling reconnect",
				slog.Duration("delay", delay),
				slog.Int64("attempt", atomic.LoadInt64(&c.reconnectCount)))

			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(delay):
				continue
			}
		}

		// Reset reconnect count on successful connection
		atomic.StoreInt64(&c.reconnectCount, 0)

		// Read messages until connection closes
		c.readLoop(ctx)
	}
}

// connect establishes a WebSocket connection to the mutation stream endpoint.
func (c *Client) connect(ctx context.Context) error {
	c.logger.Info("connecting to mutation stream", slog.String("url", c.config.URL))

	dialer := websocket.Dialer{
		HandshakeTimeout: 10 * time.Second,
	}

	conn, _, err := dialer.DialContext(ctx, c.config.URL, nil)
	if err != nil {
		return err
	}

	c.mu.Lock()
	c.conn = conn
	c.isConnected = true
	c.mu.Unlock()

	c.logger.Info("connected to mutation stream")
	return nil
}

// readLoop reads messages from the WebSocket connection until it closes.
// Malformed events are logged and skipped; they never tear down the
// connection, since the stream continues past them.
func (c *Client) readLoop(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		// Get connection under lock to prevent race with close()
		c.mu.Lock()
		conn := c.conn
		c.mu.Unlock()

		if conn == nil {
			// Connection was closed, exit loop
			return
		}

		messageType, payload, err := conn.ReadMessage()
		if err != nil {
			c.logger.Warn("mutation stream connection closed",
				slog.String("error", err.Error()))
			c.close()
			return
		}

		if messageType != websocket.TextMessage {
			continue
		}

		var m profile.Mutation
		if err := json.Unmarshal(payload, &m); err != nil {
			c.logger.Warn("skipping malformed mutation event",
				slog.String("error", err.Error()))
			continue
		}
		if m.UserID == "" {
			c.logger.Warn("skipping mutation event without user id",
				slog.String("kind", string(m.Kind)))
			continue
		}

		if c.sink != nil {
			c.sink.OnMutation(ctx, m)
		}
	}
}

// close cleanly closes the WebSocket connection.
func (c *Client) close() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.conn != nil {
		_ = c.conn.Close()
		c.conn = nil
	}
	c.isConnected = false
}

// computeBackoff calculates the next reconnection delay with exponential backoff and jitter.
func (c *Client) computeBackoff() time.Duration {
	c.mu.Lock()
	defer c.mu.Unlock()

	// Exponential backoff: baseDelay * 2^attempts using bit shifting
	// Cap the shift at 30 to prevent overflow (2^30 = ~1 billion)
	reconnectCount := atomic.LoadInt64(&c.reconnectCount)
	shift := uint(reconnectCount)
	if shift > 30 {
		shift = 30
	}
	backoff := float64(c.config.BaseDelay) * float64(uint64(1)<<shift)

	// Cap at max delay
	if backoff > float64(c.config.MaxDelay) {
		backoff = float64(c.config.MaxDelay)
	}

	// Apply jitter: delay * (1 - jitter/2 + rand*jitter)
	// This creates a range of [delay*(1-jitter/2), delay*(1+jitter/2)]
	if c.config.JitterFactor > 0 {
		jitter := (c.rng.Float64() - 0.5) * c.config.JitterFactor
		backoff = backoff * (1 + jitter)
	}

	return time.Duration(backoff)
}

// IsConnected returns whether the client is currently connected.
func (c *Client) IsConnected() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.isConnected
}
