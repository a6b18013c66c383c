package pkg

import (
	"crypto/rand"
	"crypto/sha1" //nolint: gosec // mandated by RFC 6455
	"encoding/base64"
	"fmt"
	"math/big"

	"github.com/google/uuid"
)

const (
	gameIDLength = 6

	// Ambiguous characters are left out so codes survive being read aloud.
	gameIDChars = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"

	websocketMagicGUID = "258EAFA5-E914-47DA-95CA-C5AB0DC85B11"
)

// GenerateGameID returns a short join code for a game room.
func GenerateGameID() (string, error) {
	code := make([]byte, gameIDLength)
	for i := range code {
		n, err := rand.Int(rand.Reader, big.NewInt(int64(len(gameIDChars))))
		if err != nil {
			return "", fmt.Errorf("failed to generate game id: %w", err)
		}
		code[i] = gameIDChars[n.Int64()]
	}

	return string(code), nil
}

// GenerateNewSessionID returns an opaque player/session identifier.
func GenerateNewSessionID() string {
	return uuid.NewString()
}

// GenerateAcceptKey computes the Sec-WebSocket-Accept value for a
// client's Sec-WebSocket-Key.
func GenerateAcceptKey(key string) string {
	hash := sha1.Sum([]byte(key + websocketMagicGUID)) //nolint: gosec // mandated by RFC 6455
	return base64.StdEncoding.EncodeToString(hash[:])
}
