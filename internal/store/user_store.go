package store

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/rachitkumar2105/HeyChat/internal/models"
)

func (s *Store) CreateUser(u *models.User) error {
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	return s.db.Create(u).Error
}

func (s *Store) FindUserByID(id string) (*models.User, error) {
	var u models.User
	if err := s.db.First(&u, "id = ?", id).Error; err != nil {
		return nil, notFound(err)
	}
	return &u, nil
}

func (s *Store) FindUserByUsername(username string) (*models.User, error) {
	var u models.User
	if err := s.db.First(&u, "username = ?", username).Error; err != nil {
		return nil, notFound(err)
	}
	return &u, nil
}

func (s *Store) UsernameOrEmailTaken(username, email string) (bool, error) {
	var n int64
	err := s.db.Model(&models.User{}).
		Where("username = ? OR email = ?", username, email).
		Count(&n).Error
	return n > 0, err
}

// SearchUsers matches username or display name, case-insensitively, skipping
// the searcher and banned accounts.
func (s *Store) SearchUsers(query, excludeID string) ([]models.Profile, error) {
	var users []models.User
	like := "%" + query + "%"
	err := s.db.
		Where("(username LIKE ? OR display_name LIKE ?) AND id <> ? AND is_banned = ?",
			like, like, excludeID, false).
		Order("username").
		Find(&users).Error
	if err != nil {
		return nil, err
	}
	out := make([]models.Profile, 0, len(users))
	for i := range users {
		out = append(out, users[i].Profile())
	}
	return out, nil
}

func (s *Store) UpdateLastActive(userID string, t time.Time) error {
	return s.db.Model(&models.User{}).Where("id = ?", userID).
		Update("last_active", t).Error
}

// RecordLogin bumps the login counter and stamps lastLogin.
func (s *Store) RecordLogin(userID string, t time.Time) error {
	return s.db.Model(&models.User{}).Where("id = ?", userID).
		Updates(map[string]any{
			"login_count": gorm.Expr("login_count + 1"),
			"last_login":  t,
		}).Error
}

func (s *Store) ListUsers() ([]models.User, error) {
	var users []models.User
	err := s.db.Order("created_at DESC").Find(&users).Error
	return users, err
}

// ToggleBan flips the ban flag and reports the new state.
func (s *Store) ToggleBan(userID string) (bool, error) {
	u, err := s.FindUserByID(userID)
	if err != nil {
		return false, err
	}
	u.IsBanned = !u.IsBanned
	if err := s.db.Model(u).Update("is_banned", u.IsBanned).Error; err != nil {
		return false, err
	}
	return u.IsBanned, nil
}

// DeleteUser removes the account and every row referencing it.
func (s *Store) DeleteUser(userID string) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Delete(&models.User{}, "id = ?", userID).Error; err != nil {
			return err
		}
		if err := tx.Delete(&models.Friendship{}, "user_id = ? OR friend_id = ?", userID, userID).Error; err != nil {
			return err
		}
		if err := tx.Delete(&models.Block{}, "owner_id = ? OR target_id = ?", userID, userID).Error; err != nil {
			return err
		}
		if err := tx.Delete(&models.ChatRequest{}, "from_id = ? OR to_id = ?", userID, userID).Error; err != nil {
			return err
		}
		return tx.Delete(&models.Chat{}, "user_a = ? OR user_b = ?", userID, userID).Error
	})
}

// IsBlocking reports whether owner has blocked target.
func (s *Store) IsBlocking(ownerID, targetID string) (bool, error) {
	var n int64
	err := s.db.Model(&models.Block{}).
		Where("owner_id = ? AND target_id = ?", ownerID, targetID).
		Count(&n).Error
	return n > 0, err
}

// ToggleBlock blocks or unblocks target and reports the new state.
func (s *Store) ToggleBlock(ownerID, targetID string) (bool, error) {
	blocked, err := s.IsBlocking(ownerID, targetID)
	if err != nil {
		return false, err
	}
	if blocked {
		err = s.db.Delete(&models.Block{}, "owner_id = ? AND target_id = ?", ownerID, targetID).Error
		return false, err
	}
	err = s.db.Create(&models.Block{OwnerID: ownerID, TargetID: targetID}).Error
	return true, err
}

func (s *Store) AreFriends(a, b string) (bool, error) {
	var n int64
	err := s.db.Model(&models.Friendship{}).
		Where("user_id = ? AND friend_id = ?", a, b).
		Count(&n).Error
	return n > 0, err
}

// AddFriends records the friendship in both directions.
func (s *Store) AddFriends(a, b string) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		for _, row := range []models.Friendship{{UserID: a, FriendID: b}, {UserID: b, FriendID: a}} {
			if err := tx.Where(&row).FirstOrCreate(&models.Friendship{}, row).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

func (s *Store) Friends(userID string) ([]models.Profile, error) {
	var users []models.User
	err := s.db.
		Joins("JOIN friendships ON friendships.friend_id = users.id AND friendships.user_id = ?", userID).
		Order("users.username").
		Find(&users).Error
	if err != nil {
		return nil, err
	}
	out := make([]models.Profile, 0, len(users))
	for i := range users {
		out = append(out, users[i].Profile())
	}
	return out, nil
}

func (s *Store) CreateChatRequest(fromID, toID string) (*models.ChatRequest, error) {
	req := &models.ChatRequest{
		ID:     uuid.NewString(),
		FromID: fromID,
		ToID:   toID,
		Status: models.RequestPending,
	}
	if err := s.db.Create(req).Error; err != nil {
		return nil, err
	}
	return req, nil
}

func (s *Store) FindChatRequest(id string) (*models.ChatRequest, error) {
	var req models.ChatRequest
	if err := s.db.First(&req, "id = ?", id).Error; err != nil {
		return nil, notFound(err)
	}
	return &req, nil
}

func (s *Store) HasPendingRequest(fromID, toID string) (bool, error) {
	var n int64
	err := s.db.Model(&models.ChatRequest{}).
		Where("from_id = ? AND to_id = ? AND status = ?", fromID, toID, models.RequestPending).
		Count(&n).Error
	return n > 0, err
}

func (s *Store) PendingRequests(toID string) ([]models.ChatRequest, error) {
	var reqs []models.ChatRequest
	err := s.db.
		Where("to_id = ? AND status = ?", toID, models.RequestPending).
		Order("created_at").
		Find(&reqs).Error
	return reqs, err
}

func (s *Store) UpdateRequestStatus(id string, status models.RequestStatus) error {
	return s.db.Model(&models.ChatRequest{}).Where("id = ?", id).
		Update("status", status).Error
}
