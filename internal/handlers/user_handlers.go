package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/rachitkumar2105/HeyChat/internal/models"
	"github.com/rachitkumar2105/HeyChat/internal/store"
)

// SearchUsers GET /api/user/search?query=
func (a *API) SearchUsers(c *fiber.Ctx) error {
	query := c.Query("query")
	if query == "" {
		return c.JSON([]models.Profile{})
	}
	users, err := a.Store.SearchUsers(query, currentUserID(c))
	if err != nil {
		return errJSON(c, fiber.StatusInternalServerError, "Search failed")
	}
	return c.JSON(users)
}

// SendRequest POST /api/user/request
func (a *API) SendRequest(c *fiber.Ctx) error {
	var req struct {
		ToID string `json:"toId"`
	}
	if err := c.BodyParser(&req); err != nil || req.ToID == "" {
		return errJSON(c, fiber.StatusBadRequest, "Invalid request body")
	}
	fromID := currentUserID(c)
	if fromID == req.ToID {
		return errJSON(c, fiber.StatusBadRequest, "Cannot send request to yourself")
	}

	if _, err := a.Store.FindUserByID(req.ToID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return errJSON(c, fiber.StatusNotFound, "User not found")
		}
		return errJSON(c, fiber.StatusInternalServerError, "Failed to send request")
	}
	if blocked, err := a.Store.IsBlocking(req.ToID, fromID); err != nil {
		return errJSON(c, fiber.StatusInternalServerError, "Failed to send request")
	} else if blocked {
		return errJSON(c, fiber.StatusForbidden, "Cannot send request to this user")
	}
	if friends, err := a.Store.AreFriends(fromID, req.ToID); err != nil {
		return errJSON(c, fiber.StatusInternalServerError, "Failed to send request")
	} else if friends {
		return errJSON(c, fiber.StatusBadRequest, "Already friends")
	}
	if pending, err := a.Store.HasPendingRequest(fromID, req.ToID); err != nil {
		return errJSON(c, fiber.StatusInternalServerError, "Failed to send request")
	} else if pending {
		return errJSON(c, fiber.StatusBadRequest, "Request already sent")
	}

	if _, err := a.Store.CreateChatRequest(fromID, req.ToID); err != nil {
		return errJSON(c, fiber.StatusInternalServerError, "Failed to send request")
	}
	return c.JSON(fiber.Map{"message": "Chat request sent"})
}

// AcceptRequest POST /api/user/accept — the only path that creates a chat.
func (a *API) AcceptRequest(c *fiber.Ctx) error {
	var req struct {
		RequestID string `json:"requestId"`
	}
	if err := c.BodyParser(&req); err != nil || req.RequestID == "" {
		return errJSON(c, fiber.StatusBadRequest, "Invalid request body")
	}
	userID := currentUserID(c)

	cr, err := a.Store.FindChatRequest(req.RequestID)
	if err != nil || cr.ToID != userID || cr.Status != models.RequestPending {
		return errJSON(c, fiber.StatusNotFound, "Request not found")
	}
	if err := a.Store.UpdateRequestStatus(cr.ID, models.RequestAccepted); err != nil {
		return errJSON(c, fiber.StatusInternalServerError, "Failed to accept request")
	}
	if err := a.Store.AddFriends(userID, cr.FromID); err != nil {
		return errJSON(c, fiber.StatusInternalServerError, "Failed to accept request")
	}
	if _, err := a.Store.EnsureChat(userID, cr.FromID, cr.FromID); err != nil {
		return errJSON(c, fiber.StatusInternalServerError, "Failed to accept request")
	}
	return c.JSON(fiber.Map{"message": "Request accepted"})
}

// RejectRequest POST /api/user/reject
func (a *API) RejectRequest(c *fiber.Ctx) error {
	var req struct {
		RequestID string `json:"requestId"`
	}
	if err := c.BodyParser(&req); err != nil || req.RequestID == "" {
		return errJSON(c, fiber.StatusBadRequest, "Invalid request body")
	}
	cr, err := a.Store.FindChatRequest(req.RequestID)
	if err != nil || cr.ToID != currentUserID(c) || cr.Status != models.RequestPending {
		return errJSON(c, fiber.StatusNotFound, "Request not found")
	}
	if err := a.Store.UpdateRequestStatus(cr.ID, models.RequestRejected); err != nil {
		return errJSON(c, fiber.StatusInternalServerError, "Failed to reject request")
	}
	return c.JSON(fiber.Map{"message": "Request rejected"})
}

// Contacts GET /api/user/contacts
func (a *API) Contacts(c *fiber.Ctx) error {
	userID := currentUserID(c)
	friends, err := a.Store.Friends(userID)
	if err != nil {
		return errJSON(c, fiber.StatusInternalServerError, "Failed to load contacts")
	}
	requests, err := a.Store.PendingRequests(userID)
	if err != nil {
		return errJSON(c, fiber.StatusInternalServerError, "Failed to load contacts")
	}
	return c.JSON(fiber.Map{"friends": friends, "requests": requests})
}

// ToggleBlock POST /api/user/block
func (a *API) ToggleBlock(c *fiber.Ctx) error {
	var req struct {
		TargetID string `json:"targetId"`
	}
	if err := c.BodyParser(&req); err != nil || req.TargetID == "" {
		return errJSON(c, fiber.StatusBadRequest, "Invalid request body")
	}
	blocked, err := a.Store.ToggleBlock(currentUserID(c), req.TargetID)
	if err != nil {
		return errJSON(c, fiber.StatusInternalServerError, "Failed to toggle block")
	}
	msg := "User unblocked"
	if blocked {
		msg = "User blocked"
	}
	return c.JSON(fiber.Map{"blocked": blocked, "message": msg})
}

// Profile GET /api/user/profile/:id
func (a *API) Profile(c *fiber.Ctx) error {
	user, err := a.Store.FindUserByID(c.Params("id"))
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return errJSON(c, fiber.StatusNotFound, "User not found")
		}
		return errJSON(c, fiber.StatusInternalServerError, "Failed to get profile")
	}
	return c.JSON(user.Profile())
}
