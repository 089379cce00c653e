package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/rachitkumar2105/HeyChat/internal/chat"
	"github.com/rachitkumar2105/HeyChat/internal/models"
	"github.com/rachitkumar2105/HeyChat/internal/store"
)

// ChatList GET /api/chat/list
func (a *API) ChatList(c *fiber.Ctx) error {
	chats, err := a.Store.ChatsForUser(currentUserID(c))
	if err != nil {
		return errJSON(c, fiber.StatusInternalServerError, "Failed to get chats")
	}
	return c.JSON(chats)
}

// ChatWith GET /api/chat/with/:userId
func (a *API) ChatWith(c *fiber.Ctx) error {
	userID := currentUserID(c)
	chatRow, err := a.Store.FindAcceptedChat(userID, c.Params("userId"))
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return errJSON(c, fiber.StatusNotFound, "Chat not found")
		}
		return errJSON(c, fiber.StatusInternalServerError, "Failed to get chat")
	}
	msgs, err := a.Store.ListMessages(chatRow.ID, userID)
	if err != nil {
		return errJSON(c, fiber.StatusInternalServerError, "Failed to get chat")
	}
	return c.JSON(fiber.Map{"chat": chatRow, "messages": a.withReplyPreviews(msgs)})
}

// Messages GET /api/chat/:chatId/messages
func (a *API) Messages(c *fiber.Ctx) error {
	userID := currentUserID(c)
	chatRow, err := a.Store.FindChatByID(c.Params("chatId"))
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return errJSON(c, fiber.StatusNotFound, "Chat not found")
		}
		return errJSON(c, fiber.StatusInternalServerError, "Failed to get messages")
	}
	if chatRow.UserA != userID && chatRow.UserB != userID {
		return errJSON(c, fiber.StatusForbidden, "Not authorized")
	}
	msgs, err := a.Store.ListMessages(chatRow.ID, userID)
	if err != nil {
		return errJSON(c, fiber.StatusInternalServerError, "Failed to get messages")
	}
	return c.JSON(a.withReplyPreviews(msgs))
}

// withReplyPreviews resolves reply targets the same way the router does for
// live delivery, so history and realtime frames share one shape.
func (a *API) withReplyPreviews(msgs []models.Message) []chat.MessageView {
	byID := make(map[string]*models.Message, len(msgs))
	for i := range msgs {
		byID[msgs[i].ID] = &msgs[i]
	}
	views := make([]chat.MessageView, 0, len(msgs))
	for i := range msgs {
		view := chat.MessageView{Message: msgs[i]}
		if id := msgs[i].ReplyToID; id != nil {
			target := byID[*id]
			if target == nil {
				// Reply target hidden for this viewer; fetch the original.
				target, _ = a.Store.FindMessageByID(*id)
			}
			if target != nil {
				view.ReplyPreview = &chat.ReplyPreview{
					ID:      target.ID,
					Content: target.Content,
					Type:    target.Kind,
					Sender:  target.SenderID,
				}
			}
		}
		views = append(views, view)
	}
	return views
}

// DeleteMessage DELETE /api/chat/message/:id
func (a *API) DeleteMessage(c *fiber.Ctx) error {
	var req struct {
		DeleteForEveryone bool `json:"deleteForEveryone"`
	}
	_ = c.BodyParser(&req)
	userID := currentUserID(c)

	msg, err := a.Store.FindMessageByID(c.Params("id"))
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return errJSON(c, fiber.StatusNotFound, "Message not found")
		}
		return errJSON(c, fiber.StatusInternalServerError, "Failed to delete message")
	}

	if req.DeleteForEveryone {
		if msg.SenderID != userID {
			return errJSON(c, fiber.StatusForbidden, "Can only delete your own messages for everyone")
		}
		if err := a.Store.MarkDeletedForEveryone(msg.ID); err != nil {
			return errJSON(c, fiber.StatusInternalServerError, "Failed to delete message")
		}
		// The persisted mutation is done; the hub only relays the fact.
		a.Hub.NotifyDeleted(msg.ID, msg.ReceiverID)
	} else {
		if err := a.Store.DeleteForUser(msg.ID, userID); err != nil {
			return errJSON(c, fiber.StatusInternalServerError, "Failed to delete message")
		}
	}
	return c.JSON(fiber.Map{"message": "Message deleted", "deleteForEveryone": req.DeleteForEveryone})
}

// ForwardMessage POST /api/chat/forward
func (a *API) ForwardMessage(c *fiber.Ctx) error {
	var req struct {
		MessageID string `json:"messageId"`
		ToUserID  string `json:"toUserId"`
	}
	if err := c.BodyParser(&req); err != nil || req.MessageID == "" || req.ToUserID == "" {
		return errJSON(c, fiber.StatusBadRequest, "Invalid request body")
	}
	userID := currentUserID(c)

	original, err := a.Store.FindMessageByID(req.MessageID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return errJSON(c, fiber.StatusNotFound, "Message not found")
		}
		return errJSON(c, fiber.StatusInternalServerError, "Failed to forward message")
	}
	chatRow, err := a.Store.FindAcceptedChat(userID, req.ToUserID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return errJSON(c, fiber.StatusNotFound, "No active chat with this user")
		}
		return errJSON(c, fiber.StatusInternalServerError, "Failed to forward message")
	}

	msg := &models.Message{
		ChatID:     chatRow.ID,
		SenderID:   userID,
		ReceiverID: req.ToUserID,
		Content:    original.Content,
		Kind:       original.Kind,
		FileURL:    original.FileURL,
		Forwarded:  true,
		Delivered:  a.Hub.Presence().IsOnline(req.ToUserID),
	}
	if err := a.Store.CreateMessage(msg); err != nil {
		return errJSON(c, fiber.StatusInternalServerError, "Failed to forward message")
	}
	if err := a.Store.SetLastMessage(chatRow.ID, msg.ID); err != nil {
		return errJSON(c, fiber.StatusInternalServerError, "Failed to forward message")
	}
	a.Hub.NotifyForwarded(chat.MessageView{Message: *msg})

	return c.JSON(msg)
}

// ClearChat POST /api/chat/clear/:chatId — delete-for-me of every message.
func (a *API) ClearChat(c *fiber.Ctx) error {
	userID := currentUserID(c)
	chatRow, err := a.Store.FindChatByID(c.Params("chatId"))
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return errJSON(c, fiber.StatusNotFound, "Chat not found")
		}
		return errJSON(c, fiber.StatusInternalServerError, "Failed to clear chat")
	}
	if chatRow.UserA != userID && chatRow.UserB != userID {
		return errJSON(c, fiber.StatusForbidden, "Not authorized")
	}
	if err := a.Store.ClearChatForUser(chatRow.ID, userID); err != nil {
		return errJSON(c, fiber.StatusInternalServerError, "Failed to clear chat")
	}
	return c.JSON(fiber.Map{"message": "Chat cleared"})
}

// CreateReport POST /api/report
func (a *API) CreateReport(c *fiber.Ctx) error {
	var req struct {
		ReportedID string `json:"reportedId"`
		Reason     string `json:"reason"`
	}
	if err := c.BodyParser(&req); err != nil || req.ReportedID == "" || req.Reason == "" {
		return errJSON(c, fiber.StatusBadRequest, "Invalid request body")
	}
	report, err := a.Store.CreateReport(currentUserID(c), req.ReportedID, req.Reason)
	if err != nil {
		return errJSON(c, fiber.StatusInternalServerError, "Failed to submit report")
	}
	return c.Status(fiber.StatusCreated).JSON(report)
}
