package websocket

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/jonboulle/clockwork"
)

const (
	pingInterval = 30 * time.Second
	pongDeadline = 60 * time.Second
)

// Conn is a subscriber handle backed by one WebSocket connection. Writes are
// serialized; each one is bounded by the write timeout or the context
// deadline, whichever comes first.
type Conn struct {
	id           string
	connection   *websocket.Conn
	clock        clockwork.Clock
	writeTimeout time.Duration

	writeMu   sync.Mutex
	done      chan struct{}
	closeOnce sync.Once
	wg        sync.WaitGroup
}

func newConn(connection *websocket.Conn, clock clockwork.Clock, writeTimeout time.Duration) *Conn {
	c := &Conn{
		id:           uuid.NewString(),
		connection:   connection,
		clock:        clock,
		writeTimeout: writeTimeout,
		done:         make(chan struct{}),
	}
	c.configurePongHandler()
	c.wg.Add(1)
	go c.keepAlive()
	return c
}

func (c *Conn) ID() string {
	return c.id
}

// Send writes message as a single text frame.
func (c *Conn) Send(ctx context.Context, message string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	c.writeMu.Lock()
	defer c.writeMu.Unlock()

	_ = c.connection.SetWriteDeadline(c.writeDeadline(ctx))
	if err := c.connection.WriteMessage(websocket.TextMessage, []byte(message)); err != nil {
		return fmt.Errorf("write text frame: %w", err)
	}
	return nil
}

// read blocks for the next text message and extends the read deadline.
func (c *Conn) read() (string, error) {
	for {
		kind, data, err := c.connection.ReadMessage()
		if err != nil {
			return "", err
		}
		c.updateReadDeadline()
		if kind == websocket.TextMessage {
			return string(data), nil
		}
	}
}

// close stops the keepalive loop, sends a normal close frame and releases the
// connection. Safe to call more than once.
func (c *Conn) close() {
	c.closeOnce.Do(func() {
		close(c.done)
		c.wg.Wait()

		msg := websocket.FormatCloseMessage(websocket.CloseNormalClosure, "")
		_ = c.connection.WriteControl(websocket.CloseMessage, msg, c.clock.Now().Add(c.writeTimeout))
		_ = c.connection.Close()
	})
}

func (c *Conn) keepAlive() {
	defer c.wg.Done()

	ticker := c.clock.NewTicker(pingInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.Chan():
			if err := c.connection.WriteControl(websocket.PingMessage, nil, c.clock.Now().Add(c.writeTimeout)); err != nil {
				return
			}
		case <-c.done:
			return
		}
	}
}

func (c *Conn) writeDeadline(ctx context.Context) time.Time {
	deadline := c.clock.Now().Add(c.writeTimeout)
	if d, ok := ctx.Deadline(); ok && d.Before(deadline) {
		return d
	}
	return deadline
}

func (c *Conn) configurePongHandler() {
	c.updateReadDeadline()
	c.connection.SetPongHandler(func(string) error {
		c.updateReadDeadline()
		return nil
	})
}

func (c *Conn) updateReadDeadline() {
	_ = c.connection.SetReadDeadline(c.clock.Now().Add(pongDeadline))
}
