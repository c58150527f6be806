package peer

import (
	crand "crypto/rand"
	"errors"
	"math/big"
	"math/rand"
	"strings"
)

const (
	RoomCodeLength = 4
	// O and 0 are left out so codes read unambiguously.
	RoomCodeChars = "ABCDEFGHIJKLMNPQRSTUVWXYZ123456789"
)

var ErrInvalidRoomCode = errors.New("room code must be 4 characters from A-Z and 1-9, without O or 0")

// GenerateRoomCode creates a random room code
func GenerateRoomCode() string {
	code := make([]byte, RoomCodeLength)
	for i := 0; i < RoomCodeLength; i++ {
		n, err := crand.Int(crand.Reader, big.NewInt(int64(len(RoomCodeChars))))
		if err != nil {
			code[i] = RoomCodeChars[rand.Intn(len(RoomCodeChars))]
			continue
		}
		code[i] = RoomCodeChars[n.Int64()]
	}
	return string(code)
}

// NormalizeRoomCode upper-cases user input and checks it against the alphabet.
func NormalizeRoomCode(s string) (string, error) {
	code := strings.ToUpper(strings.TrimSpace(s))
	if len(code) != RoomCodeLength {
		return "", ErrInvalidRoomCode
	}
	for i := 0; i < len(code); i++ {
		if strings.IndexByte(RoomCodeChars, code[i]) < 0 {
			return "", ErrInvalidRoomCode
		}
	}
	return code, nil
}
