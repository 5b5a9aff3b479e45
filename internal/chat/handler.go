// Package chat validates inbound chat lines before they reach the world.
package chat

import (
	"fmt"
	"log"
	"strings"
	"unicode"

	"github.com/willheto/game-server/internal/game"
)

// Sink receives accepted chat lines. *game.World implements it.
type Sink interface {
	AddChatMessage(playerID, text string) (game.ChatMessage, error)
}

// Handler cleans, limits and forwards chat messages
type Handler struct {
	sink        Sink
	rateLimiter *RateLimiter
	maxLength   int
}

// NewHandler creates a chat handler. maxLength <= 0 uses DefaultMaxLength.
func NewHandler(sink Sink, maxLength int, limits RateLimitConfig) *Handler {
	if maxLength <= 0 {
		maxLength = DefaultMaxLength
	}
	return &Handler{
		sink:        sink,
		rateLimiter: NewRateLimiter(limits),
		maxLength:   maxLength,
	}
}

// Handle applies one inbound message. Chat is not tick-gated: an accepted
// line is in the world log when Handle returns.
func (h *Handler) Handle(msg InboundMessage) (game.ChatMessage, error) {
	text := Sanitize(msg.Text, h.maxLength)
	if text == "" {
		return game.ChatMessage{}, ErrEmptyMessage
	}

	if !h.rateLimiter.Allow(msg.PlayerID) {
		log.Printf("🚫 Chat rate limited: %s", msg.PlayerID)
		return game.ChatMessage{}, ErrRateLimited
	}

	added, err := h.sink.AddChatMessage(msg.PlayerID, text)
	if err != nil {
		return game.ChatMessage{}, fmt.Errorf("add chat message: %w", err)
	}
	return added, nil
}

// Forget drops limiter state for a player who disconnected
func (h *Handler) Forget(playerID string) {
	h.rateLimiter.Forget(playerID)
}

// Stop releases the rate limiter's background goroutine
func (h *Handler) Stop() {
	h.rateLimiter.Stop()
}

// Sanitize strips control characters, trims surrounding space and cuts the
// result to maxLength runes.
func Sanitize(text string, maxLength int) string {
	cleaned := strings.Map(func(r rune) rune {
		if unicode.IsControl(r) {
			return -1
		}
		return r
	}, text)
	cleaned = strings.TrimSpace(cleaned)

	if maxLength > 0 {
		runes := []rune(cleaned)
		if len(runes) > maxLength {
			cleaned = strings.TrimSpace(string(runes[:maxLength]))
		}
	}
	return cleaned
}
