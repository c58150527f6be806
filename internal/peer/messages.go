package peer

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"rps_ultimate/internal/domain"
)

var (
	ErrUnknownMessage = errors.New("unknown message type")
	ErrMalformed      = errors.New("malformed message")
)

// Kind is the wire "type" tag.
type Kind string

const (
	// peer -> peer
	KindInfo    Kind = "info"
	KindMove    Kind = "move"
	KindChat    Kind = "chat"
	KindRestart Kind = "restart_request"
	KindLeft    Kind = "left"

	// relay -> peer
	KindRoom       Kind = "room"
	KindPeerJoined Kind = "peer_joined"
	KindError      Kind = "error"
)

// Message is a decoded frame. Every concrete type below is a Message and
// nothing else is.
type Message interface {
	Kind() Kind
}

type Info struct {
	Name   string
	Avatar string
	Series int
}

type Move struct {
	Move domain.Move
}

type Chat struct {
	ID     string
	Sender string
	Text   string
	SentAt time.Time
}

type RestartRequest struct{}

type Left struct{}

// RoomCreated answers a create request with the code to share.
type RoomCreated struct {
	Code string
}

type PeerJoined struct{}

type RelayError struct {
	Message string
}

func (Info) Kind() Kind           { return KindInfo }
func (Move) Kind() Kind           { return KindMove }
func (Chat) Kind() Kind           { return KindChat }
func (RestartRequest) Kind() Kind { return KindRestart }
func (Left) Kind() Kind           { return KindLeft }
func (RoomCreated) Kind() Kind    { return KindRoom }
func (PeerJoined) Kind() Kind     { return KindPeerJoined }
func (RelayError) Kind() Kind     { return KindError }

// envelope is the JSON shape shared by all kinds.
type envelope struct {
	Type      Kind   `json:"type"`
	Name      string `json:"name,omitempty"`
	Avatar    string `json:"avatar,omitempty"`
	Series    int    `json:"series,omitempty"`
	Move      string `json:"move,omitempty"`
	Message   string `json:"message,omitempty"`
	ID        string `json:"id,omitempty"`
	Sender    string `json:"sender,omitempty"`
	Timestamp int64  `json:"ts,omitempty"`
	Code      string `json:"code,omitempty"`
}

func Encode(m Message) ([]byte, error) {
	env := envelope{Type: m.Kind()}

	switch v := m.(type) {
	case Info:
		env.Name, env.Avatar, env.Series = v.Name, v.Avatar, v.Series
	case Move:
		env.Move = string(v.Move)
	case Chat:
		env.Message, env.ID, env.Sender = v.Text, v.ID, v.Sender
		if !v.SentAt.IsZero() {
			env.Timestamp = v.SentAt.UnixMilli()
		}
	case RestartRequest, Left, PeerJoined:
	case RoomCreated:
		env.Code = v.Code
	case RelayError:
		env.Message = v.Message
	default:
		return nil, fmt.Errorf("%w: %T", ErrUnknownMessage, m)
	}

	return json.Marshal(env)
}

func Decode(raw []byte) (Message, error) {
	var env envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}

	switch env.Type {
	case KindInfo:
		return Info{Name: env.Name, Avatar: env.Avatar, Series: env.Series}, nil
	case KindMove:
		mv, err := domain.ParseMove(env.Move)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
		}
		return Move{Move: mv}, nil
	case KindChat:
		c := Chat{ID: env.ID, Sender: env.Sender, Text: env.Message}
		if env.Timestamp > 0 {
			c.SentAt = time.UnixMilli(env.Timestamp)
		}
		return c, nil
	case KindRestart:
		return RestartRequest{}, nil
	case KindLeft:
		return Left{}, nil
	case KindRoom:
		return RoomCreated{Code: env.Code}, nil
	case KindPeerJoined:
		return PeerJoined{}, nil
	case KindError:
		return RelayError{Message: env.Message}, nil
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownMessage, env.Type)
}

// MustEncode is for control frames built from constants.
func MustEncode(m Message) []byte {
	b, err := Encode(m)
	if err != nil {
		panic(err)
	}
	return b
}
