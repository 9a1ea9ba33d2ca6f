package types

import (
	"time"
)

// Message is a persisted chat message as exposed to clients. Exactly one
// of Text or Image carries the payload.
type Message struct {
	Id        int64     `json:"id"`
	Room      string    `json:"room"`
	Author    string    `json:"author"`
	Text      string    `json:"text,omitempty"`
	Image     string    `json:"image,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}
