package ws

import (
	"log"
	"sync"
	"time"

	"rps_ultimate/internal/peer"
)

// Room relays frames between a host and at most one guest. The relay
// never interprets application messages.
type Room struct {
	Code string

	mu        sync.RWMutex
	host      *Client
	guest     *Client
	closed    bool
	createdAt time.Time

	hub *Hub
}

func NewRoom(code string, host *Client, hub *Hub) *Room {
	return &Room{
		Code:      code,
		host:      host,
		createdAt: time.Now(),
		hub:       hub,
	}
}

func (r *Room) seatGuest(c *Client) error {
	r.mu.Lock()
	if r.closed || r.guest != nil {
		r.mu.Unlock()
		return ErrRoomFull
	}
	if c.PlayerID != "" && c.PlayerID == r.host.PlayerID {
		r.mu.Unlock()
		return ErrOwnRoom
	}
	r.guest = c
	host := r.host
	r.mu.Unlock()

	joined := peer.MustEncode(peer.PeerJoined{})
	host.enqueue(joined)
	c.enqueue(joined)
	return nil
}

// Waiting reports whether the host is still alone.
func (r *Room) Waiting() bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return !r.closed && r.guest == nil
}

func (r *Room) other(c *Client) *Client {
	if c == r.host {
		return r.guest
	}
	if c == r.guest {
		return r.host
	}
	return nil
}

// Relay forwards a frame from one side to the other.
func (r *Room) Relay(from *Client, msg []byte) {
	r.mu.RLock()
	to := r.other(from)
	closed := r.closed
	r.mu.RUnlock()

	if closed || to == nil {
		log.Printf("Room.Relay: room=%s dropping frame from %s (no peer)", r.Code, from.ID)
		return
	}
	if to.enqueue(msg) {
		FramesRelayed.Inc()
	}
}

// Leave closes the room and tells the remaining side.
func (r *Room) Leave(c *Client) {
	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		return
	}
	r.closed = true
	to := r.other(c)
	r.mu.Unlock()

	log.Printf("Room.Leave: room=%s client=%s", r.Code, c.ID)
	r.hub.remove(r.Code)

	if to != nil {
		to.enqueue(peer.MustEncode(peer.Left{}))
	}
}

// expire closes a room nobody joined and disconnects the host.
func (r *Room) expire() {
	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		return
	}
	r.closed = true
	host := r.host
	r.mu.Unlock()

	r.hub.remove(r.Code)
	host.enqueue(peer.MustEncode(peer.RelayError{Message: "room expired"}))
	host.Close()
}
