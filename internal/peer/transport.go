package peer

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync/atomic"
	"time"
	"unicode/utf8"

	"rps_ultimate/internal/domain"
	"rps_ultimate/internal/logger"

	"github.com/google/uuid"
)

const MaxChatLength = 200

var (
	ErrEmptyChat   = errors.New("message cannot be empty")
	ErrChatTooLong = errors.New("message too long")
	ErrClosed      = errors.New("peer channel closed")
)

// Channel is a reliable, ordered data channel to exactly one peer.
// Receive is closed when the connection ends; Err then tells why.
type Channel interface {
	Send(data []byte) error
	Receive() <-chan []byte
	Err() error
	Close() error
}

// Handler receives the signals decoded from the channel.
type Handler interface {
	OnMoveReceived(m domain.Move)
	OnChatReceived(c Chat)
	OnOpponentInfo(p domain.Profile, series int)
	OnPeerJoined()
	OnRestartRequested()
	OnOpponentLeft()
	OnConnectionClosed(err error)
}

// Transport translates between a Channel and the round coordinator.
type Transport struct {
	ch     Channel
	sender string
	closed atomic.Bool
	left   atomic.Bool
}

func NewTransport(ch Channel, sender string) *Transport {
	return &Transport{ch: ch, sender: sender}
}

// Run dispatches inbound messages to h until the channel ends or ctx is done.
func (t *Transport) Run(ctx context.Context, h Handler) {
	for {
		select {
		case <-ctx.Done():
			return
		case raw, ok := <-t.ch.Receive():
			if !ok {
				if !t.left.Load() && !t.closed.Load() {
					h.OnConnectionClosed(t.ch.Err())
				}
				return
			}
			msg, err := Decode(raw)
			if err != nil {
				logger.Warn("Transport.Run: dropping frame", "error", err)
				continue
			}
			t.dispatch(msg, h)
		}
	}
}

func (t *Transport) dispatch(msg Message, h Handler) {
	switch m := msg.(type) {
	case Move:
		h.OnMoveReceived(m.Move)
	case Chat:
		h.OnChatReceived(m)
	case Info:
		h.OnOpponentInfo(domain.Profile{Name: m.Name, Avatar: m.Avatar}, m.Series)
	case PeerJoined:
		h.OnPeerJoined()
	case RestartRequest:
		h.OnRestartRequested()
	case Left:
		// both the peer and the relay announce a departure
		if t.left.Swap(true) {
			return
		}
		h.OnOpponentLeft()
	case RelayError:
		h.OnConnectionClosed(fmt.Errorf("relay: %s", m.Message))
	case RoomCreated:
		// only meaningful during the handshake
	}
}

func (t *Transport) send(m Message) error {
	if t.closed.Load() {
		return ErrClosed
	}
	b, err := Encode(m)
	if err != nil {
		return err
	}
	return t.ch.Send(b)
}

func (t *Transport) SendMove(m domain.Move) error {
	if !m.Valid() {
		return domain.ErrInvalidMove
	}
	return t.send(Move{Move: m})
}

// SendChat trims and validates text before sending it.
func (t *Transport) SendChat(text string) (Chat, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return Chat{}, ErrEmptyChat
	}
	if utf8.RuneCountInString(text) > MaxChatLength {
		return Chat{}, ErrChatTooLong
	}
	c := Chat{
		ID:     uuid.NewString(),
		Sender: t.sender,
		Text:   text,
		SentAt: time.Now(),
	}
	return c, t.send(c)
}

func (t *Transport) SendInfo(p domain.Profile, series int) error {
	return t.send(Info{Name: p.Name, Avatar: p.Avatar, Series: series})
}

func (t *Transport) SendRestart() error {
	return t.send(RestartRequest{})
}

// Close tells the peer we left and releases the channel. Safe to call twice.
func (t *Transport) Close() error {
	if t.closed.Swap(true) {
		return nil
	}
	if !t.left.Load() {
		if b, err := Encode(Left{}); err == nil {
			_ = t.ch.Send(b)
		}
	}
	return t.ch.Close()
}
