package handlers

import (
	"log/slog"

	"github.com/gofiber/fiber/v2"

	"github.com/rachitkumar2105/HeyChat/internal/auth"
	"github.com/rachitkumar2105/HeyChat/internal/chat"
	"github.com/rachitkumar2105/HeyChat/internal/config"
	"github.com/rachitkumar2105/HeyChat/internal/store"
)

// API bundles the HTTP and websocket handlers with their dependencies.
// Nothing here is global; main wires one instance.
type API struct {
	Store  *store.Store
	Tokens *auth.Tokens
	Hub    *chat.Hub
	Cfg    *config.Config
	Log    *slog.Logger
}

func New(st *store.Store, tokens *auth.Tokens, hub *chat.Hub, cfg *config.Config, log *slog.Logger) *API {
	return &API{Store: st, Tokens: tokens, Hub: hub, Cfg: cfg, Log: log}
}

func errJSON(c *fiber.Ctx, status int, msg string) error {
	return c.Status(status).JSON(fiber.Map{"error": msg})
}

// currentUserID reads the identity Protect stored on the request.
func currentUserID(c *fiber.Ctx) string {
	id, _ := c.Locals(localUserID).(string)
	return id
}
