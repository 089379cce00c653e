package chat

import (
	"errors"

	"github.com/rachitkumar2105/HeyChat/internal/metrics"
	"github.com/rachitkumar2105/HeyChat/internal/models"
	"github.com/rachitkumar2105/HeyChat/internal/store"
)

// routeMessage carries an outbound intent end to end: relationship checks,
// persistence, then emission. Any storage failure aborts the whole operation
// before anything is emitted.
func (h *Hub) routeMessage(c *Client, p PrivateMessagePayload) error {
	if p.To == "" || p.To == c.UserID {
		return errSilentDrop
	}

	if _, err := h.store.FindUserByID(p.To); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return errSilentDrop
		}
		return storageErr("find recipient", err)
	}

	// A recipient who blocked the sender sees nothing, and neither does the
	// sender: no message row, no ack, no error.
	blocked, err := h.store.IsBlocking(p.To, c.UserID)
	if err != nil {
		return storageErr("check block", err)
	}
	if blocked {
		return errSilentDrop
	}

	chat, err := h.store.FindAcceptedChat(c.UserID, p.To)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return ErrNoActiveConversation
		}
		return storageErr("resolve chat", err)
	}

	kind := p.Type
	if !kind.Valid() {
		kind = models.KindText
	}

	// Delivery eligibility is decided here, once. If the recipient drops
	// between this check and the emit, the frame no-ops and the flag stays
	// true; the history fetch still shows the message.
	deliveredNow := h.presence.IsOnline(p.To)

	msg := &models.Message{
		ChatID:     chat.ID,
		SenderID:   c.UserID,
		ReceiverID: p.To,
		Content:    p.Content,
		Kind:       kind,
		FileURL:    p.FileURL,
		Delivered:  deliveredNow,
	}
	if p.ReplyTo != "" {
		msg.ReplyToID = &p.ReplyTo
	}

	if err := h.store.CreateMessage(msg); err != nil {
		return storageErr("create message", err)
	}
	// Must happen after the create so the chat never points at a message
	// that does not exist.
	if err := h.store.SetLastMessage(chat.ID, msg.ID); err != nil {
		return storageErr("update last message", err)
	}

	view := MessageView{Message: *msg}
	if msg.ReplyToID != nil {
		if target, err := h.store.FindMessageByID(*msg.ReplyToID); err == nil {
			view.ReplyPreview = &ReplyPreview{
				ID:      target.ID,
				Content: target.Content,
				Type:    target.Kind,
				Sender:  target.SenderID,
			}
		}
	}

	h.emitToUser(p.To, encode(EvReceiveMessage, view))
	// The ack goes to the originating connection only, not to the sender's
	// other devices: to them it would look like an incoming message.
	c.trySend(encode(EvMessageSent, view))
	if deliveredNow {
		c.trySend(encode(EvMessageDelivered, deliveredPayload{MessageID: msg.ID}))
	}

	metrics.MessagesRouted.Inc()
	return nil
}
