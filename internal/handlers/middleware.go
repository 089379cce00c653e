package handlers

import (
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/rachitkumar2105/HeyChat/internal/models"
	"github.com/rachitkumar2105/HeyChat/internal/store"
)

const (
	localUserID  = "userID"
	localIsAdmin = "isAdmin"
	localUser    = "user"
)

func bearerToken(c *fiber.Ctx) string {
	header := c.Get(fiber.HeaderAuthorization)
	if strings.HasPrefix(header, "Bearer ") {
		return strings.TrimPrefix(header, "Bearer ")
	}
	return ""
}

// Protect verifies the bearer token and loads the caller's user row. The
// reserved admin principal has no row; it passes with just the claims.
func (a *API) Protect(c *fiber.Ctx) error {
	token := bearerToken(c)
	if token == "" {
		return errJSON(c, fiber.StatusUnauthorized, "No token provided")
	}
	claims, err := a.Tokens.Verify(token)
	if err != nil {
		return errJSON(c, fiber.StatusUnauthorized, "Invalid or expired token")
	}

	if claims.UserID == models.ReservedAdminID {
		c.Locals(localUserID, claims.UserID)
		c.Locals(localIsAdmin, true)
		return c.Next()
	}

	user, err := a.Store.FindUserByID(claims.UserID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return errJSON(c, fiber.StatusUnauthorized, "User not found")
		}
		return errJSON(c, fiber.StatusInternalServerError, "Auth lookup failed")
	}
	if user.IsBanned {
		return errJSON(c, fiber.StatusForbidden, "Account banned")
	}

	c.Locals(localUserID, user.ID)
	c.Locals(localIsAdmin, user.IsAdmin || claims.IsAdmin)
	c.Locals(localUser, user)
	return c.Next()
}

func (a *API) AdminOnly(c *fiber.Ctx) error {
	if admin, _ := c.Locals(localIsAdmin).(bool); !admin {
		return errJSON(c, fiber.StatusForbidden, "Admin access required")
	}
	return c.Next()
}
