package handler

import (
	"encoding/base64"
	"encoding/json"

	"github.com/dhis2-sre/eventos/internal/util"
	"github.com/gin-gonic/gin"
)

const flashCookieName = "messages"

const (
	pendingFlashesKey  = "flashes.pending"
	consumedFlashesKey = "flashes.consumed"
)

// Message levels.
const (
	LevelSuccess = "success"
	LevelInfo    = "info"
	LevelError   = "error"
)

// Message is shown once on the next rendered page.
type Message struct {
	Level string `json:"level"`
	Text  string `json:"text"`
}

// AddFlash queues a message for the next page rendered for this client.
func AddFlash(c *gin.Context, level, text string) {
	pending := append(pendingFlashes(c), Message{Level: level, Text: text})
	c.Set(pendingFlashesKey, pending)

	value, err := encodeFlashes(pending)
	if err != nil {
		_ = c.Error(err)
		return
	}
	util.SetCookie(c, flashCookieName, value, 0)
}

func pendingFlashes(c *gin.Context) []Message {
	if v, ok := c.Get(pendingFlashesKey); ok {
		if messages, ok := v.([]Message); ok {
			return messages
		}
	}

	// messages of a previous request which haven't been shown yet are kept
	if _, consumed := c.Get(consumedFlashesKey); consumed {
		return nil
	}
	return readFlashCookie(c)
}

// Flashes returns the queued messages and removes them so they're only shown once.
func Flashes(c *gin.Context) []Message {
	if v, ok := c.Get(consumedFlashesKey); ok {
		messages, _ := v.([]Message)
		return messages
	}

	messages := readFlashCookie(c)
	if pending, ok := c.Get(pendingFlashesKey); ok {
		messages, _ = pending.([]Message)
		c.Set(pendingFlashesKey, []Message(nil))
	}
	c.Set(consumedFlashesKey, messages)

	if len(messages) > 0 {
		util.SetCookie(c, flashCookieName, "", -1)
	}
	return messages
}

func readFlashCookie(c *gin.Context) []Message {
	value, err := c.Cookie(flashCookieName)
	if err != nil || value == "" {
		return nil
	}

	messages, err := decodeFlashes(value)
	if err != nil {
		return nil
	}
	return messages
}

func encodeFlashes(messages []Message) (string, error) {
	b, err := json.Marshal(messages)
	if err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}

func decodeFlashes(value string) ([]Message, error) {
	b, err := base64.RawURLEncoding.DecodeString(value)
	if err != nil {
		return nil, err
	}

	var messages []Message
	if err := json.Unmarshal(b, &messages); err != nil {
		return nil, err
	}
	return messages, nil
}
