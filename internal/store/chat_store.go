package store

import (
	"github.com/google/uuid"

	"github.com/rachitkumar2105/HeyChat/internal/models"
)

// EnsureChat creates the accepted chat between the pair if none exists yet.
// This is the only place conversations come into being; the realtime core
// never creates them.
func (s *Store) EnsureChat(a, b, requestedBy string) (*models.Chat, error) {
	ua, ub := models.OrderPair(a, b)
	var chat models.Chat
	err := s.db.Where("user_a = ? AND user_b = ?", ua, ub).First(&chat).Error
	if err == nil {
		return &chat, nil
	}
	chat = models.Chat{
		ID:          uuid.NewString(),
		UserA:       ua,
		UserB:       ub,
		Status:      "accepted",
		RequestedBy: requestedBy,
	}
	if err := s.db.Create(&chat).Error; err != nil {
		return nil, err
	}
	return &chat, nil
}

func (s *Store) FindAcceptedChat(a, b string) (*models.Chat, error) {
	ua, ub := models.OrderPair(a, b)
	var chat models.Chat
	err := s.db.
		Where("user_a = ? AND user_b = ? AND status = ?", ua, ub, "accepted").
		First(&chat).Error
	if err != nil {
		return nil, notFound(err)
	}
	return &chat, nil
}

func (s *Store) FindChatByID(id string) (*models.Chat, error) {
	var chat models.Chat
	if err := s.db.First(&chat, "id = ?", id).Error; err != nil {
		return nil, notFound(err)
	}
	return &chat, nil
}

func (s *Store) SetLastMessage(chatID, messageID string) error {
	return s.db.Model(&models.Chat{}).Where("id = ?", chatID).
		Update("last_message_id", messageID).Error
}

// ChatSummary is a chat-list entry: the chat plus the peer's public profile
// and the latest message, if any.
type ChatSummary struct {
	Chat        models.Chat     `json:"chat"`
	Peer        models.Profile  `json:"peer"`
	LastMessage *models.Message `json:"lastMessage,omitempty"`
}

func (s *Store) ChatsForUser(userID string) ([]ChatSummary, error) {
	var chats []models.Chat
	err := s.db.
		Where("(user_a = ? OR user_b = ?) AND status = ?", userID, userID, "accepted").
		Order("updated_at DESC").
		Find(&chats).Error
	if err != nil {
		return nil, err
	}

	out := make([]ChatSummary, 0, len(chats))
	for i := range chats {
		chat := chats[i]
		peer, err := s.FindUserByID(chat.Other(userID))
		if err != nil {
			// Peer deleted by an admin; skip the orphaned chat.
			continue
		}
		entry := ChatSummary{Chat: chat, Peer: peer.Profile()}
		if chat.LastMessageID != nil {
			if msg, err := s.FindMessageByID(*chat.LastMessageID); err == nil {
				entry.LastMessage = msg
			}
		}
		out = append(out, entry)
	}
	return out, nil
}
