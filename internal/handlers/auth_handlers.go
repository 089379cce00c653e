package handlers

import (
	"errors"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/rachitkumar2105/HeyChat/internal/auth"
	"github.com/rachitkumar2105/HeyChat/internal/models"
	"github.com/rachitkumar2105/HeyChat/internal/store"
)

type signupRequest struct {
	DisplayName string `json:"displayName"`
	Username    string `json:"username"`
	Email       string `json:"email"`
	Password    string `json:"password"`
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// Signup POST /api/auth/signup
func (a *API) Signup(c *fiber.Ctx) error {
	var req signupRequest
	if err := c.BodyParser(&req); err != nil {
		return errJSON(c, fiber.StatusBadRequest, "Invalid request body")
	}
	req.DisplayName = strings.TrimSpace(req.DisplayName)
	req.Username = strings.ToLower(strings.TrimSpace(req.Username))
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))

	if req.DisplayName == "" || req.Username == "" || req.Email == "" {
		return errJSON(c, fiber.StatusBadRequest, "All fields are required")
	}
	if len(req.Password) < 6 {
		return errJSON(c, fiber.StatusBadRequest, "Password must be at least 6 characters")
	}
	taken, err := a.Store.UsernameOrEmailTaken(req.Username, req.Email)
	if err != nil {
		return errJSON(c, fiber.StatusInternalServerError, "Signup failed")
	}
	if taken {
		return errJSON(c, fiber.StatusBadRequest, "Username or email already in use")
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		return errJSON(c, fiber.StatusInternalServerError, "Signup failed")
	}
	user := &models.User{
		DisplayName: req.DisplayName,
		Username:    req.Username,
		Email:       req.Email,
		Password:    hash,
		LastActive:  time.Now(),
	}
	if err := a.Store.CreateUser(user); err != nil {
		return errJSON(c, fiber.StatusInternalServerError, "Signup failed")
	}

	token, err := a.Tokens.Issue(user.ID, false)
	if err != nil {
		return errJSON(c, fiber.StatusInternalServerError, "Signup failed")
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"token": token, "user": user})
}

// Login POST /api/auth/login
func (a *API) Login(c *fiber.Ctx) error {
	var req loginRequest
	if err := c.BodyParser(&req); err != nil {
		return errJSON(c, fiber.StatusBadRequest, "Invalid request body")
	}
	user, err := a.Store.FindUserByUsername(strings.ToLower(strings.TrimSpace(req.Username)))
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return errJSON(c, fiber.StatusBadRequest, "Invalid credentials")
		}
		return errJSON(c, fiber.StatusInternalServerError, "Login failed")
	}
	if !auth.CheckPassword(user.Password, req.Password) {
		return errJSON(c, fiber.StatusBadRequest, "Invalid credentials")
	}
	if user.IsBanned {
		return errJSON(c, fiber.StatusForbidden, "Account banned")
	}
	if err := a.Store.RecordLogin(user.ID, time.Now()); err != nil {
		a.Log.Error("record login", "user", user.ID, "err", err)
	}

	token, err := a.Tokens.Issue(user.ID, user.IsAdmin)
	if err != nil {
		return errJSON(c, fiber.StatusInternalServerError, "Login failed")
	}
	return c.JSON(fiber.Map{"token": token, "user": user})
}

// AdminLogin POST /api/auth/admin-login
func (a *API) AdminLogin(c *fiber.Ctx) error {
	var req loginRequest
	if err := c.BodyParser(&req); err != nil {
		return errJSON(c, fiber.StatusBadRequest, "Invalid request body")
	}

	// The reserved admin principal is configured, not stored. It never shows
	// up in presence or messaging.
	if a.Cfg.AdminUser != "" && req.Username == a.Cfg.AdminUser && req.Password == a.Cfg.AdminPass {
		token, err := a.Tokens.Issue(models.ReservedAdminID, true)
		if err != nil {
			return errJSON(c, fiber.StatusInternalServerError, "Login failed")
		}
		return c.JSON(fiber.Map{
			"token": token,
			"user":  fiber.Map{"id": models.ReservedAdminID, "username": req.Username, "isAdmin": true},
		})
	}

	// Database users flagged isAdmin may also use the admin door.
	user, err := a.Store.FindUserByUsername(strings.ToLower(strings.TrimSpace(req.Username)))
	if err != nil || !user.IsAdmin || !auth.CheckPassword(user.Password, req.Password) {
		return errJSON(c, fiber.StatusBadRequest, "Invalid admin credentials")
	}
	token, err := a.Tokens.Issue(user.ID, true)
	if err != nil {
		return errJSON(c, fiber.StatusInternalServerError, "Login failed")
	}
	return c.JSON(fiber.Map{"token": token, "user": user})
}

// Me GET /api/auth/me
func (a *API) Me(c *fiber.Ctx) error {
	if user, ok := c.Locals(localUser).(*models.User); ok {
		return c.JSON(user)
	}
	return c.JSON(fiber.Map{"id": currentUserID(c), "isAdmin": true})
}
