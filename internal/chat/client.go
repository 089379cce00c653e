package chat

import (
	"encoding/json"

	"github.com/gofiber/contrib/websocket"
	"github.com/google/uuid"
)

const sendBuffer = 16

// ConnLike is the slice of the websocket connection the core touches.
// Tests substitute it with an in-memory pipe.
type ConnLike interface {
	ReadMessage() (int, []byte, error)
	WriteMessage(int, []byte) error
	Close() error
}

// Client is one authenticated connection. The identity was verified at the
// handshake and is never re-checked per event. The presence directory owns
// the handle for its lifetime.
type Client struct {
	ID     string // connection id, unique per handle
	UserID string
	Conn   ConnLike
	Send   chan []byte
}

func NewClient(userID string, conn ConnLike) *Client {
	return &Client{
		ID:     uuid.NewString(),
		UserID: userID,
		Conn:   conn,
		Send:   make(chan []byte, sendBuffer),
	}
}

// ReadPump decodes inbound frames and hands them to the hub in arrival
// order. Unreadable frames are skipped; a read error means the connection is
// gone and triggers unregistration.
func (c *Client) ReadPump(h *Hub) {
	for {
		_, data, err := c.Conn.ReadMessage()
		if err != nil {
			h.Unregister(c)
			return
		}
		var env Envelope
		if err := json.Unmarshal(data, &env); err != nil || env.Event == "" {
			continue
		}
		h.Dispatch(c, env)
	}
}

func (c *Client) WritePump() {
	for data := range c.Send {
		_ = c.Conn.WriteMessage(websocket.TextMessage, data)
	}
	_ = c.Conn.Close()
}

// trySend queues a frame without blocking. A client whose buffer is full
// simply misses the frame; durable state lives in the store, not the socket.
func (c *Client) trySend(data []byte) {
	select {
	case c.Send <- data:
	default:
	}
}
