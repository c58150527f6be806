package ws

import (
	"log"
	"sync"
	"time"

	"rps_ultimate/internal/peer"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

const (
	writeWait   = 10 * time.Second
	pongWait    = 30 * time.Second
	pingPeriod  = 25 * time.Second
	enqueueWait = 2 * time.Second
	maxFrame    = 4096
)

const (
	ActionCreate = "create"
	ActionJoin   = "join"
)

type Client struct {
	ID       string
	PlayerID string
	Conn     *websocket.Conn
	Send     chan []byte
	Hub      *Hub

	room      *Room
	done      chan struct{}
	closeOnce sync.Once
}

func NewClient(conn *websocket.Conn, hub *Hub, playerID string) *Client {
	return &Client{
		ID:       uuid.NewString(),
		PlayerID: playerID,
		Conn:     conn,
		Send:     make(chan []byte, 64),
		Hub:      hub,
		done:     make(chan struct{}),
	}
}

// Run seats the client in a room and then relays until it disconnects.
func (c *Client) Run(action, code string) {
	go c.writePump()

	switch action {
	case ActionCreate:
		c.room = c.Hub.CreateRoom(c)
	case ActionJoin:
		room, err := c.Hub.JoinRoom(code, c)
		if err != nil {
			log.Printf("Client.Run: client=%s join %q failed: %v", c.ID, code, err)
			c.enqueue(peer.MustEncode(peer.RelayError{Message: err.Error()}))
			c.Close()
			return
		}
		c.room = room
	default:
		c.enqueue(peer.MustEncode(peer.RelayError{Message: "unknown action"}))
		c.Close()
		return
	}

	c.readPump()
}

//read
func (c *Client) readPump() {
	defer func() {
		if c.room != nil {
			c.room.Leave(c)
		}
		c.Close()
	}()

	c.Conn.SetReadLimit(maxFrame)
	c.Conn.SetReadDeadline(time.Now().Add(pongWait))
	c.Conn.SetPongHandler(func(string) error {
		c.Conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, msg, err := c.Conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				log.Printf("Client.readPump: client=%s read error: %v", c.ID, err)
			}
			return
		}
		c.room.Relay(c, msg)
	}
}

//write
func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.Conn.Close()
	}()

	for {
		select {
		case msg := <-c.Send:
			if err := c.write(websocket.TextMessage, msg); err != nil {
				log.Printf("Client.writePump: client=%s write error: %v", c.ID, err)
				return
			}
		case <-ticker.C:
			if err := c.write(websocket.PingMessage, nil); err != nil {
				return
			}
		case <-c.done:
			// flush pending frames such as "left" or an error before closing
			for {
				select {
				case msg := <-c.Send:
					_ = c.write(websocket.TextMessage, msg)
				default:
					_ = c.write(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
					return
				}
			}
		}
	}
}

func (c *Client) write(kind int, data []byte) error {
	c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
	return c.Conn.WriteMessage(kind, data)
}

// enqueue queues a frame for the write pump; false if the client is gone
// or too slow.
func (c *Client) enqueue(msg []byte) bool {
	select {
	case <-c.done:
		return false
	default:
	}
	select {
	case c.Send <- msg:
		return true
	case <-c.done:
		return false
	case <-time.After(enqueueWait):
		log.Printf("Client.enqueue: client=%s timeout", c.ID)
		return false
	}
}

func (c *Client) Close() {
	c.closeOnce.Do(func() {
		close(c.done)
	})
}
