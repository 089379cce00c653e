package chat

import (
	"time"

	"github.com/rachitkumar2105/HeyChat/internal/models"
)

// Store is the slice of persistence the realtime core consumes. Messages and
// chats are owned by the store; the core never caches them between calls.
type Store interface {
	FindUserByID(id string) (*models.User, error)
	IsBlocking(ownerID, targetID string) (bool, error)
	FindAcceptedChat(a, b string) (*models.Chat, error)
	CreateMessage(m *models.Message) error
	SetLastMessage(chatID, messageID string) error
	FindMessageByID(id string) (*models.Message, error)
	UpdateLastActive(userID string, t time.Time) error
	FindUndeliveredMessages(userID string) ([]models.Message, error)
	MarkMessagesDelivered(ids []string) error
	MarkMessageSeen(id string, at time.Time) (*models.Message, error)
}
