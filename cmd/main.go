package main

import (
	"log/slog"
	"os"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/rachitkumar2105/HeyChat/internal/auth"
	"github.com/rachitkumar2105/HeyChat/internal/chat"
	"github.com/rachitkumar2105/HeyChat/internal/config"
	"github.com/rachitkumar2105/HeyChat/internal/handlers"
	"github.com/rachitkumar2105/HeyChat/internal/store"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("config", "err", err)
		os.Exit(1)
	}
	log := newLogger(cfg.LogLevel)

	st, err := store.Open(cfg.DBPath)
	if err != nil {
		log.Error("open store", "path", cfg.DBPath, "err", err)
		os.Exit(1)
	}
	if err := os.MkdirAll(cfg.UploadDir, 0o755); err != nil {
		log.Error("create upload dir", "dir", cfg.UploadDir, "err", err)
		os.Exit(1)
	}

	tokens := auth.NewTokens(cfg.JWTSecret, cfg.TokenTTL)
	hub := chat.NewHub(st, chat.NewPresence(), log)
	go hub.Run()

	app := fiber.New(fiber.Config{
		BodyLimit: int(cfg.MaxUploadBytes),
	})
	api := handlers.New(st, tokens, hub, cfg, log)
	api.RegisterRoutes(app)

	log.Info("listening", "addr", cfg.Addr)
	if err := app.Listen(cfg.Addr); err != nil {
		log.Error("listen", "err", err)
		os.Exit(1)
	}
}

func newLogger(level string) *slog.Logger {
	var lvl slog.Level
	switch strings.ToLower(level) {
	case "debug":
		lvl = slog.LevelDebug
	case "warn":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	default:
		lvl = slog.LevelInfo
	}
	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: lvl}))
}
