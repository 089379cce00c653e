package handlers

import (
	"time"

	"github.com/gofiber/adaptor/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// RegisterRoutes mounts the whole API surface on the app.
func (a *API) RegisterRoutes(app *fiber.App) {
	app.Get("/api/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok", "time": time.Now()})
	})
	app.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))

	app.Static("/uploads", a.Cfg.UploadDir)

	// Realtime
	app.Get("/api/ws", a.WSUpgrade, a.WS())

	auth := app.Group("/api/auth")
	auth.Post("/signup", a.Signup)
	auth.Post("/login", a.Login)
	auth.Post("/admin-login", a.AdminLogin)
	auth.Get("/me", a.Protect, a.Me)

	user := app.Group("/api/user", a.Protect)
	user.Get("/search", a.SearchUsers)
	user.Post("/request", a.SendRequest)
	user.Post("/accept", a.AcceptRequest)
	user.Post("/reject", a.RejectRequest)
	user.Get("/contacts", a.Contacts)
	user.Post("/block", a.ToggleBlock)
	user.Get("/profile/:id", a.Profile)

	chat := app.Group("/api/chat", a.Protect)
	chat.Get("/list", a.ChatList)
	chat.Get("/with/:userId", a.ChatWith)
	chat.Get("/:chatId/messages", a.Messages)
	chat.Delete("/message/:id", a.DeleteMessage)
	chat.Post("/forward", a.ForwardMessage)
	chat.Post("/clear/:chatId", a.ClearChat)

	app.Post("/api/report", a.Protect, a.CreateReport)
	app.Post("/api/upload", a.Protect, a.Upload)

	admin := app.Group("/api/admin", a.Protect, a.AdminOnly)
	admin.Get("/stats", a.Stats)
	admin.Get("/users", a.Users)
	admin.Post("/ban/:id", a.ToggleBan)
	admin.Delete("/user/:id", a.DeleteUser)
	admin.Get("/reports", a.Reports)
	admin.Delete("/message/:id", a.RemoveMessage)
	admin.Patch("/report/:id", a.UpdateReport)
}
