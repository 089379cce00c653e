package chat

import (
	"errors"

	"github.com/rachitkumar2105/HeyChat/internal/metrics"
	"github.com/rachitkumar2105/HeyChat/internal/store"
)

// flushBacklog reconciles delivery state accumulated while the user was
// offline: every undelivered, undeleted message addressed to them is marked
// delivered in one batch, then each still-connected sender gets a
// confirmation. The batch update makes the flush idempotent; a second
// registration finds nothing to flush.
func (h *Hub) flushBacklog(userID string) {
	msgs, err := h.store.FindUndeliveredMessages(userID)
	if err != nil {
		h.log.Error("backlog query", "user", userID, "err", err)
		return
	}
	if len(msgs) == 0 {
		return
	}
	ids := make([]string, len(msgs))
	for i := range msgs {
		ids[i] = msgs[i].ID
	}
	if err := h.store.MarkMessagesDelivered(ids); err != nil {
		// Fail-fast: without the persisted transition no confirmations go out.
		h.log.Error("backlog update", "user", userID, "err", err)
		return
	}
	for i := range msgs {
		h.emitToUser(msgs[i].SenderID, encode(EvMessageDelivered, deliveredPayload{
			MessageID: msgs[i].ID,
		}))
	}
	metrics.BacklogDelivered.Add(float64(len(msgs)))
	h.log.Info("backlog flushed", "user", userID, "messages", len(msgs))
}

// markSeen applies the read receipt and relays it to the recorded sender.
// The client supplies a sender id, but it is only cross-checked; the relay
// always targets the sender stored on the message, and only the message's
// recipient may mark it.
func (h *Hub) markSeen(c *Client, p SeenPayload) error {
	msg, err := h.store.FindMessageByID(p.MessageID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return errSilentDrop
		}
		return storageErr("find message", err)
	}
	if msg.ReceiverID != c.UserID {
		h.log.Warn("seen claim from non-recipient", "message", p.MessageID, "user", c.UserID)
		return errSilentDrop
	}
	if p.SenderID != "" && p.SenderID != msg.SenderID {
		h.log.Warn("seen claim names wrong sender", "message", p.MessageID, "claimed", p.SenderID)
		return errSilentDrop
	}

	updated, err := h.store.MarkMessageSeen(p.MessageID, h.now())
	if err != nil {
		return storageErr("mark seen", err)
	}
	if updated.SeenAt != nil {
		h.emitToUser(updated.SenderID, encode(EvMessageSeen, seenRelayPayload{
			MessageID: updated.ID,
			SeenAt:    *updated.SeenAt,
		}))
	}
	return nil
}
