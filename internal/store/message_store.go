package store

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/rachitkumar2105/HeyChat/internal/models"
)

// DeletedContent replaces the body of a message deleted for everyone.
const DeletedContent = "This message was deleted"

// RemovedContent replaces the body of a message pulled by an admin.
const RemovedContent = "[Removed by admin]"

func (s *Store) CreateMessage(m *models.Message) error {
	if m.ID == "" {
		m.ID = uuid.NewString()
	}
	return s.db.Create(m).Error
}

func (s *Store) FindMessageByID(id string) (*models.Message, error) {
	var m models.Message
	if err := s.db.First(&m, "id = ?", id).Error; err != nil {
		return nil, notFound(err)
	}
	return &m, nil
}

// ListMessages returns the chat history visible to viewer: messages deleted
// for everyone or deleted for this viewer are filtered out.
func (s *Store) ListMessages(chatID, viewerID string) ([]models.Message, error) {
	var msgs []models.Message
	err := s.db.
		Where("chat_id = ? AND deleted_for_everyone = ?", chatID, false).
		Where("id NOT IN (?)", s.db.Model(&models.MessageDeletion{}).
			Select("message_id").Where("user_id = ?", viewerID)).
		Order("created_at").
		Find(&msgs).Error
	return msgs, err
}

// FindUndeliveredMessages is the backlog query run at connect time.
func (s *Store) FindUndeliveredMessages(userID string) ([]models.Message, error) {
	var msgs []models.Message
	err := s.db.
		Where("receiver_id = ? AND delivered = ? AND deleted_for_everyone = ?",
			userID, false, false).
		Order("created_at").
		Find(&msgs).Error
	return msgs, err
}

func (s *Store) MarkMessagesDelivered(ids []string) error {
	if len(ids) == 0 {
		return nil
	}
	return s.db.Model(&models.Message{}).Where("id IN ?", ids).
		Update("delivered", true).Error
}

// MarkMessageSeen flips seen (and delivered, which seen implies) and returns
// the updated row so the caller can verify the recorded sender.
func (s *Store) MarkMessageSeen(id string, at time.Time) (*models.Message, error) {
	res := s.db.Model(&models.Message{}).Where("id = ?", id).
		Updates(map[string]any{
			"seen":      true,
			"seen_at":   at,
			"delivered": true,
		})
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		return nil, ErrNotFound
	}
	return s.FindMessageByID(id)
}

// MarkDeletedForEveryone rewrites the content and sets the flag. The realtime
// relay to the other participant is the hub's job, not the store's.
func (s *Store) MarkDeletedForEveryone(id string) error {
	return s.replaceContent(id, DeletedContent)
}

// AdminRemoveMessage is the moderation variant of delete-for-everyone.
func (s *Store) AdminRemoveMessage(id string) error {
	return s.replaceContent(id, RemovedContent)
}

func (s *Store) replaceContent(id, content string) error {
	res := s.db.Model(&models.Message{}).Where("id = ?", id).
		Updates(map[string]any{
			"content":              content,
			"file_url":             "",
			"deleted_for_everyone": true,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// DeleteForUser hides a single message from one user only.
func (s *Store) DeleteForUser(messageID, userID string) error {
	row := models.MessageDeletion{MessageID: messageID, UserID: userID}
	return s.db.Where(&row).FirstOrCreate(&models.MessageDeletion{}, row).Error
}

// ClearChatForUser hides every current message of a chat from one user.
func (s *Store) ClearChatForUser(chatID, userID string) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		var ids []string
		if err := tx.Model(&models.Message{}).Where("chat_id = ?", chatID).
			Pluck("id", &ids).Error; err != nil {
			return err
		}
		for _, id := range ids {
			row := models.MessageDeletion{MessageID: id, UserID: userID}
			if err := tx.Where(&row).FirstOrCreate(&models.MessageDeletion{}, row).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

// CountMessages is used by the admin stats endpoint.
func (s *Store) CountMessages() (int64, error) {
	var n int64
	err := s.db.Model(&models.Message{}).Count(&n).Error
	return n, err
}

func (s *Store) CountUsers() (int64, error) {
	var n int64
	err := s.db.Model(&models.User{}).Count(&n).Error
	return n, err
}

func (s *Store) CountChats() (int64, error) {
	var n int64
	err := s.db.Model(&models.Chat{}).Count(&n).Error
	return n, err
}
