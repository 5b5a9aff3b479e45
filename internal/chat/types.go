package chat

import (
	"errors"
	"time"
)

var (
	// ErrRateLimited means the player is sending faster than the limiter
	// allows. The message is dropped.
	ErrRateLimited = errors.New("chat rate limited")
	// ErrEmptyMessage means nothing printable was left after sanitizing.
	ErrEmptyMessage = errors.New("chat message is empty")
)

// DefaultMaxLength is the longest message kept, in runes.
const DefaultMaxLength = 200

// InboundMessage is a raw chat line as received from a client.
type InboundMessage struct {
	PlayerID   string
	Text       string
	ReceivedAt time.Time
}
