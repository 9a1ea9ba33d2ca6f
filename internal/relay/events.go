package relay

import (
	"net/http"
	"time"
)

// ClientEvent is the envelope for events received from a connection.
// Exactly one field is expected to be set.
type ClientEvent struct {
	Join       *Join    `json:"join,omitempty"`
	Message    *Publish `json:"message,omitempty"`
	Image      *Image   `json:"image,omitempty"`
	Typing     *Typing  `json:"typing,omitempty"`
	StopTyping *Typing  `json:"stop_typing,omitempty"`
	client     *Client
}

type Join struct {
	Username string `json:"username"`
	Room     string `json:"room"`
}

type Publish struct {
	Room     string `json:"room"`
	Username string `json:"username"`
	Text     string `json:"text"`
}

type Image struct {
	Room     string `json:"room"`
	Username string `json:"username"`
	Image    string `json:"image"`
}

type Typing struct {
	Room     string `json:"room"`
	Username string `json:"username"`
}

// ServerEvent is the envelope for events pushed to a connection.
type ServerEvent struct {
	Timestamp         time.Time       `json:"timestamp"`
	Response          *Response       `json:"response,omitempty"`
	PresenceUpdate    *PresenceUpdate `json:"presence_update,omitempty"`
	HistoryItem       *HistoryItem    `json:"history_item,omitempty"`
	ChatMessage       *ChatMessage    `json:"chat_message,omitempty"`
	ChatImage         *ChatImage      `json:"chat_image,omitempty"`
	TypingStarted     *TypingNotice   `json:"typing_started,omitempty"`
	TypingStopped     *TypingNotice   `json:"typing_stopped,omitempty"`
	JoinAnnouncement  *Announcement   `json:"join_announcement,omitempty"`
	LeaveAnnouncement *Announcement   `json:"leave_announcement,omitempty"`
}

type Response struct {
	ResponseCode int    `json:"response_code"`
	Error        string `json:"error,omitempty"`
}

type PresenceUpdate struct {
	Room  string   `json:"room"`
	Names []string `json:"names"`
}

// HistoryItem is one replayed message, pushed only to a joining
// connection.
type HistoryItem struct {
	Id        int64     `json:"id"`
	Author    string    `json:"author"`
	Text      string    `json:"text,omitempty"`
	Image     string    `json:"image,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

type ChatMessage struct {
	Room   string `json:"room"`
	Author string `json:"author"`
	Text   string `json:"text"`
}

type ChatImage struct {
	Room   string `json:"room"`
	Author string `json:"author"`
	Image  string `json:"image"`
}

type TypingNotice struct {
	Room   string `json:"room"`
	Author string `json:"author"`
}

type Announcement struct {
	Room   string `json:"room"`
	Author string `json:"author"`
}

func ErrInvalidEvent() *ServerEvent {
	return &ServerEvent{
		Timestamp: Now(),
		Response: &Response{
			ResponseCode: http.StatusBadRequest,
			Error:        "invalid event",
		},
	}
}

func ErrNotJoined() *ServerEvent {
	return &ServerEvent{
		Timestamp: Now(),
		Response: &Response{
			ResponseCode: http.StatusForbidden,
			Error:        "not joined to a room",
		},
	}
}

func Now() time.Time {
	return time.Now().UTC().Round(time.Millisecond)
}
