package ws

import (
	"context"
	"errors"
	"log"
	"sync"
	"time"

	"rps_ultimate/internal/peer"
)

var (
	ErrRoomNotFound = errors.New("room code not found")
	ErrRoomFull     = errors.New("this room is already full")
	ErrOwnRoom      = errors.New("you can't join your own game")
)

const (
	staleAfter      = time.Hour
	cleanupInterval = 10 * time.Minute
)

// Hub hands out room codes and pairs a joiner with the waiting host.
type Hub struct {
	Rooms map[string]*Room
	mu    sync.RWMutex

	newCode func() string
}

func NewHub() *Hub {
	return &Hub{
		Rooms:   make(map[string]*Room),
		newCode: peer.GenerateRoomCode,
	}
}

// CreateRoom opens a room with a fresh code and seats c as host.
func (h *Hub) CreateRoom(c *Client) *Room {
	h.mu.Lock()
	defer h.mu.Unlock()

	code := h.newCode()
	for {
		if _, taken := h.Rooms[code]; !taken {
			break
		}
		code = h.newCode()
	}

	room := NewRoom(code, c, h)
	// queued before the room is visible so it always precedes peer_joined
	c.enqueue(peer.MustEncode(peer.RoomCreated{Code: code}))
	h.Rooms[code] = room
	RoomsOpen.Inc()

	log.Printf("Hub.CreateRoom: room=%s host=%s", code, c.ID)
	return room
}

// JoinRoom seats c as the second player of an open room.
func (h *Hub) JoinRoom(code string, c *Client) (*Room, error) {
	code, err := peer.NormalizeRoomCode(code)
	if err != nil {
		JoinFailures.WithLabelValues("invalid_code").Inc()
		return nil, err
	}

	h.mu.RLock()
	room, ok := h.Rooms[code]
	h.mu.RUnlock()
	if !ok {
		JoinFailures.WithLabelValues("not_found").Inc()
		return nil, ErrRoomNotFound
	}

	if err := room.seatGuest(c); err != nil {
		JoinFailures.WithLabelValues(reason(err)).Inc()
		return nil, err
	}

	log.Printf("Hub.JoinRoom: room=%s guest=%s", code, c.ID)
	return room, nil
}

func reason(err error) string {
	switch {
	case errors.Is(err, ErrRoomFull):
		return "full"
	case errors.Is(err, ErrOwnRoom):
		return "own_room"
	}
	return "other"
}

func (h *Hub) remove(code string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if _, ok := h.Rooms[code]; ok {
		delete(h.Rooms, code)
		RoomsOpen.Dec()
	}
}

func (h *Hub) RoomCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.Rooms)
}

// StartCleanup drops rooms that waited for a joiner too long.
func (h *Hub) StartCleanup(ctx context.Context) {
	go func() {
		ticker := time.NewTicker(cleanupInterval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				h.cleanupStaleRooms(time.Now())
			}
		}
	}()
}

func (h *Hub) cleanupStaleRooms(now time.Time) {
	h.mu.RLock()
	var stale []*Room
	for _, room := range h.Rooms {
		if room.Waiting() && now.Sub(room.createdAt) > staleAfter {
			stale = append(stale, room)
		}
	}
	h.mu.RUnlock()

	for _, room := range stale {
		log.Printf("cleaned up stale room: %s", room.Code)
		room.expire()
	}
}
