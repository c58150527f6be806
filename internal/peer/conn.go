package peer

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"sync"
	"time"

	"rps_ultimate/internal/logger"

	"github.com/gorilla/websocket"
)

const (
	writeWait     = 10 * time.Second
	handshakeWait = 10 * time.Second
	sendBuffer    = 64
)

// WSChannel is a Channel over a relay websocket.
type WSChannel struct {
	conn *websocket.Conn
	send chan []byte
	recv chan []byte
	done chan struct{}

	closeOnce sync.Once
	mu        sync.Mutex
	err       error
}

func newWSChannel(conn *websocket.Conn) *WSChannel {
	c := &WSChannel{
		conn: conn,
		send: make(chan []byte, sendBuffer),
		recv: make(chan []byte, sendBuffer),
		done: make(chan struct{}),
	}
	go c.writePump()
	go c.readPump()
	return c
}

// Create opens a new room on the relay and returns its code. playerID may be
// empty; when set the relay refuses to pair it with itself.
func Create(ctx context.Context, relayURL, playerID string) (*WSChannel, string, error) {
	conn, err := dial(ctx, relayURL, query(playerID, "action", "create"))
	if err != nil {
		return nil, "", err
	}

	msg, err := readHandshake(conn)
	if err != nil {
		conn.Close()
		return nil, "", err
	}
	room, ok := msg.(RoomCreated)
	if !ok {
		conn.Close()
		return nil, "", fmt.Errorf("unexpected %s frame during create", msg.Kind())
	}
	return newWSChannel(conn), room.Code, nil
}

// Join enters an existing room. It returns once the relay paired both sides.
func Join(ctx context.Context, relayURL, code, playerID string) (*WSChannel, error) {
	code, err := NormalizeRoomCode(code)
	if err != nil {
		return nil, err
	}
	conn, err := dial(ctx, relayURL, query(playerID, "action", "join", "code", code))
	if err != nil {
		return nil, err
	}

	msg, err := readHandshake(conn)
	if err != nil {
		conn.Close()
		return nil, err
	}
	if _, ok := msg.(PeerJoined); !ok {
		conn.Close()
		return nil, fmt.Errorf("unexpected %s frame during join", msg.Kind())
	}
	return newWSChannel(conn), nil
}

func query(playerID string, kv ...string) url.Values {
	q := url.Values{}
	for i := 0; i+1 < len(kv); i += 2 {
		q.Set(kv[i], kv[i+1])
	}
	if playerID != "" {
		q.Set("player", playerID)
	}
	return q
}

func dial(ctx context.Context, relayURL string, q url.Values) (*websocket.Conn, error) {
	u, err := url.Parse(relayURL)
	if err != nil {
		return nil, fmt.Errorf("parse relay url: %w", err)
	}
	u.RawQuery = q.Encode()

	conn, _, err := websocket.DefaultDialer.DialContext(ctx, u.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("dial relay: %w", err)
	}
	return conn, nil
}

func readHandshake(conn *websocket.Conn) (Message, error) {
	conn.SetReadDeadline(time.Now().Add(handshakeWait))
	defer conn.SetReadDeadline(time.Time{})

	_, raw, err := conn.ReadMessage()
	if err != nil {
		return nil, fmt.Errorf("relay handshake: %w", err)
	}
	msg, err := Decode(raw)
	if err != nil {
		return nil, err
	}
	if e, ok := msg.(RelayError); ok {
		return nil, errors.New(e.Message)
	}
	return msg, nil
}

func (c *WSChannel) Send(data []byte) error {
	select {
	case <-c.done:
		return ErrClosed
	default:
	}
	select {
	case c.send <- data:
		return nil
	case <-c.done:
		return ErrClosed
	}
}

func (c *WSChannel) Receive() <-chan []byte {
	return c.recv
}

func (c *WSChannel) Err() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.err
}

func (c *WSChannel) Close() error {
	c.closeOnce.Do(func() {
		close(c.done)
	})
	return nil
}

func (c *WSChannel) fail(err error) {
	c.mu.Lock()
	if c.err == nil {
		c.err = err
	}
	c.mu.Unlock()
	c.Close()
}

func (c *WSChannel) readPump() {
	defer close(c.recv)

	for {
		_, msg, err := c.conn.ReadMessage()
		if err != nil {
			select {
			case <-c.done:
			default:
				c.fail(err)
			}
			return
		}
		select {
		case c.recv <- msg:
		case <-c.done:
			return
		}
	}
}

func (c *WSChannel) writePump() {
	defer c.conn.Close()

	for {
		select {
		case msg := <-c.send:
			if err := c.write(websocket.TextMessage, msg); err != nil {
				logger.Debug("WSChannel.writePump: write failed", "error", err)
				c.fail(err)
				return
			}
		case <-c.done:
			// flush what was queued before Close, e.g. the "left" notice
			for {
				select {
				case msg := <-c.send:
					_ = c.write(websocket.TextMessage, msg)
				default:
					_ = c.write(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
					return
				}
			}
		}
	}
}

func (c *WSChannel) write(kind int, data []byte) error {
	c.conn.SetWriteDeadline(time.Now().Add(writeWait))
	return c.conn.WriteMessage(kind, data)
}
