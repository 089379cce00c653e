package chat

import (
	"encoding/json"
	"time"

	"github.com/rachitkumar2105/HeyChat/internal/models"
)

// Event names, client to server.
const (
	EvPrivateMessage = "privateMessage"
	EvTyping         = "typing"
	EvStopTyping     = "stopTyping"
	EvMessageSeen    = "messageSeen" // also server to sender, different payload
	EvDeleteMessage  = "deleteMessage"
)

// Event names, server to client.
const (
	EvReceiveMessage   = "receiveMessage"
	EvMessageSent      = "messageSent"
	EvMessageDelivered = "messageDelivered"
	EvUserTyping       = "userTyping"
	EvUserStopTyping   = "userStopTyping"
	EvUserOnline       = "userOnline"
	EvUserOffline      = "userOffline"
	EvMessageDeleted   = "messageDeleted"
	EvError            = "error"
)

// Envelope is the wire frame: an event name plus its payload.
type Envelope struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data,omitempty"`
}

type PrivateMessagePayload struct {
	To      string             `json:"to"`
	Content string             `json:"content"`
	Type    models.MessageKind `json:"type"`
	FileURL string             `json:"fileUrl,omitempty"`
	ReplyTo string             `json:"replyTo,omitempty"`
}

type TypingPayload struct {
	To string `json:"to"`
}

type SeenPayload struct {
	MessageID string `json:"messageId"`
	SenderID  string `json:"senderId"`
}

type DeletePayload struct {
	MessageID         string `json:"messageId"`
	DeleteForEveryone bool   `json:"deleteForEveryone"`
	ReceiverID        string `json:"receiverId"`
}

type deliveredPayload struct {
	MessageID string `json:"messageId"`
}

type typingRelayPayload struct {
	From string `json:"from"`
}

type seenRelayPayload struct {
	MessageID string    `json:"messageId"`
	SeenAt    time.Time `json:"seenAt"`
}

type onlinePayload struct {
	UserID string `json:"userId"`
}

type offlinePayload struct {
	UserID     string    `json:"userId"`
	LastActive time.Time `json:"lastActive"`
}

type deletedPayload struct {
	MessageID         string `json:"messageId"`
	DeleteForEveryone bool   `json:"deleteForEveryone"`
}

type errorPayload struct {
	Message string `json:"message"`
}

// ReplyPreview carries the minimal fields of a reply target, resolved at
// routing time so the recipient can render the quote without another fetch.
type ReplyPreview struct {
	ID      string             `json:"id"`
	Content string             `json:"content"`
	Type    models.MessageKind `json:"type"`
	Sender  string             `json:"sender"`
}

// MessageView is the full message record as emitted over the socket.
type MessageView struct {
	models.Message
	ReplyPreview *ReplyPreview `json:"replyPreview,omitempty"`
}

func encode(event string, data any) []byte {
	var raw json.RawMessage
	if data != nil {
		raw, _ = json.Marshal(data)
	}
	b, _ := json.Marshal(Envelope{Event: event, Data: raw})
	return b
}
