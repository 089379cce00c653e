package handlers

import (
	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"

	"github.com/rachitkumar2105/HeyChat/internal/chat"
	"github.com/rachitkumar2105/HeyChat/internal/models"
)

// WSUpgrade authenticates the handshake before the connection is allowed to
// open. The token rides the query string (browsers cannot set headers on
// websocket requests); a bearer header works too for non-browser clients.
func (a *API) WSUpgrade(c *fiber.Ctx) error {
	if !websocket.IsWebSocketUpgrade(c) {
		return fiber.ErrUpgradeRequired
	}
	token := c.Query("token")
	if token == "" {
		token = bearerToken(c)
	}
	claims, err := a.Tokens.Verify(token)
	if err != nil {
		return errJSON(c, fiber.StatusUnauthorized, "Authentication error")
	}
	if claims.UserID != models.ReservedAdminID {
		// Banned or deleted accounts cannot open a connection.
		user, err := a.Store.FindUserByID(claims.UserID)
		if err != nil || user.IsBanned {
			return errJSON(c, fiber.StatusForbidden, "Account unavailable")
		}
	}
	c.Locals(localUserID, claims.UserID)
	return c.Next()
}

// WS GET /api/ws — one registered connection per upgrade. The read pump owns
// unregistration: when the read side fails the handle is withdrawn from
// presence and the write pump drains out.
func (a *API) WS() fiber.Handler {
	return websocket.New(func(conn *websocket.Conn) {
		userID, _ := conn.Locals(localUserID).(string)
		if userID == "" {
			_ = conn.Close()
			return
		}
		client := chat.NewClient(userID, conn)
		a.Hub.Register(client)
		go client.WritePump()
		client.ReadPump(a.Hub)
	})
}
