package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/rachitkumar2105/HeyChat/internal/models"
	"github.com/rachitkumar2105/HeyChat/internal/store"
)

// Stats GET /api/admin/stats
func (a *API) Stats(c *fiber.Ctx) error {
	users, err := a.Store.CountUsers()
	if err != nil {
		return errJSON(c, fiber.StatusInternalServerError, "Failed to get stats")
	}
	messages, err := a.Store.CountMessages()
	if err != nil {
		return errJSON(c, fiber.StatusInternalServerError, "Failed to get stats")
	}
	chats, err := a.Store.CountChats()
	if err != nil {
		return errJSON(c, fiber.StatusInternalServerError, "Failed to get stats")
	}
	return c.JSON(fiber.Map{
		"users":    users,
		"messages": messages,
		"chats":    chats,
		"online":   a.Hub.Presence().OnlineCount(),
	})
}

// Users GET /api/admin/users
func (a *API) Users(c *fiber.Ctx) error {
	users, err := a.Store.ListUsers()
	if err != nil {
		return errJSON(c, fiber.StatusInternalServerError, "Failed to get users")
	}
	return c.JSON(users)
}

// ToggleBan POST /api/admin/ban/:id
func (a *API) ToggleBan(c *fiber.Ctx) error {
	banned, err := a.Store.ToggleBan(c.Params("id"))
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return errJSON(c, fiber.StatusNotFound, "User not found")
		}
		return errJSON(c, fiber.StatusInternalServerError, "Failed to toggle ban")
	}
	return c.JSON(fiber.Map{"banned": banned})
}

// DeleteUser DELETE /api/admin/user/:id
func (a *API) DeleteUser(c *fiber.Ctx) error {
	if err := a.Store.DeleteUser(c.Params("id")); err != nil {
		return errJSON(c, fiber.StatusInternalServerError, "Failed to delete user")
	}
	return c.JSON(fiber.Map{"message": "User deleted"})
}

// Reports GET /api/admin/reports
func (a *API) Reports(c *fiber.Ctx) error {
	reports, err := a.Store.ListReports()
	if err != nil {
		return errJSON(c, fiber.StatusInternalServerError, "Failed to get reports")
	}
	return c.JSON(reports)
}

// RemoveMessage DELETE /api/admin/message/:id — moderation takedown. The
// affected recipient hears about it live like a delete-for-everyone.
func (a *API) RemoveMessage(c *fiber.Ctx) error {
	msg, err := a.Store.FindMessageByID(c.Params("id"))
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return errJSON(c, fiber.StatusNotFound, "Message not found")
		}
		return errJSON(c, fiber.StatusInternalServerError, "Failed to remove message")
	}
	if err := a.Store.AdminRemoveMessage(msg.ID); err != nil {
		return errJSON(c, fiber.StatusInternalServerError, "Failed to remove message")
	}
	a.Hub.NotifyDeleted(msg.ID, msg.ReceiverID)
	return c.JSON(fiber.Map{"message": "Message removed"})
}

// UpdateReport PATCH /api/admin/report/:id
func (a *API) UpdateReport(c *fiber.Ctx) error {
	var req struct {
		Status models.ReportStatus `json:"status"`
	}
	if err := c.BodyParser(&req); err != nil {
		return errJSON(c, fiber.StatusBadRequest, "Invalid request body")
	}
	switch req.Status {
	case models.ReportOpen, models.ReportReviewed, models.ReportActioned:
	default:
		return errJSON(c, fiber.StatusBadRequest, "Invalid status")
	}
	if err := a.Store.UpdateReportStatus(c.Params("id"), req.Status); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return errJSON(c, fiber.StatusNotFound, "Report not found")
		}
		return errJSON(c, fiber.StatusInternalServerError, "Failed to update report")
	}
	return c.JSON(fiber.Map{"message": "Report updated"})
}
