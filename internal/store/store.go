package store

import (
	"errors"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/rachitkumar2105/HeyChat/internal/models"
)

// ErrNotFound is returned by lookups that matched no row.
var ErrNotFound = errors.New("store: not found")

// Store is the single persistence gateway. The chat core consumes it through
// a narrow interface; the HTTP handlers use it directly.
type Store struct {
	db *gorm.DB
}

func Open(path string) (*Store, error) {
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, err
	}
	if err := db.AutoMigrate(
		&models.User{},
		&models.Friendship{},
		&models.Block{},
		&models.ChatRequest{},
		&models.Chat{},
		&models.Message{},
		&models.MessageDeletion{},
		&models.Report{},
	); err != nil {
		return nil, err
	}
	return &Store{db: db}, nil
}

func notFound(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	return err
}
