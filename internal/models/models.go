package models

import "time"

// ReservedAdminID is the principal issued by admin login. It never owns a
// user row and never participates in presence bookkeeping or backlog flushes.
const ReservedAdminID = "admin"

type MessageKind string

const (
	KindText  MessageKind = "text"
	KindImage MessageKind = "image"
	KindAudio MessageKind = "audio"
	KindVideo MessageKind = "video"
)

func (k MessageKind) Valid() bool {
	switch k {
	case KindText, KindImage, KindAudio, KindVideo:
		return true
	}
	return false
}

type RequestStatus string

const (
	RequestPending  RequestStatus = "pending"
	RequestAccepted RequestStatus = "accepted"
	RequestRejected RequestStatus = "rejected"
)

type User struct {
	ID          string     `gorm:"primaryKey" json:"id"`
	DisplayName string     `gorm:"not null" json:"displayName"`
	Username    string     `gorm:"uniqueIndex;not null" json:"username"`
	Email       string     `gorm:"uniqueIndex;not null" json:"email"`
	Password    string     `gorm:"not null" json:"-"`
	ProfilePic  string     `json:"profilePic"`
	IsAdmin     bool       `json:"isAdmin"`
	IsBanned    bool       `json:"isBanned"`
	LastActive  time.Time  `json:"lastActive"`
	LoginCount  int        `json:"loginCount"`
	LastLogin   *time.Time `json:"lastLogin,omitempty"`
	CreatedAt   time.Time  `json:"createdAt"`
	UpdatedAt   time.Time  `json:"-"`
}

// Profile is the public subset of a user exposed to other users.
type Profile struct {
	ID          string    `json:"id"`
	DisplayName string    `json:"displayName"`
	Username    string    `json:"username"`
	ProfilePic  string    `json:"profilePic"`
	LastActive  time.Time `json:"lastActive"`
}

func (u *User) Profile() Profile {
	return Profile{
		ID:          u.ID,
		DisplayName: u.DisplayName,
		Username:    u.Username,
		ProfilePic:  u.ProfilePic,
		LastActive:  u.LastActive,
	}
}

// Friendship rows are written in both directions when a request is accepted.
type Friendship struct {
	UserID   string `gorm:"primaryKey"`
	FriendID string `gorm:"primaryKey"`
}

// Block records that Owner has blocked Target.
type Block struct {
	OwnerID  string `gorm:"primaryKey"`
	TargetID string `gorm:"primaryKey"`
}

type ChatRequest struct {
	ID        string        `gorm:"primaryKey" json:"id"`
	FromID    string        `gorm:"index" json:"fromId"`
	ToID      string        `gorm:"index" json:"toId"`
	Status    RequestStatus `json:"status"`
	CreatedAt time.Time     `json:"createdAt"`
}

// Chat is a 1-to-1 conversation. The pair is stored ordered (UserA < UserB)
// so the unordered pair has a single row regardless of who requested it.
type Chat struct {
	ID            string    `gorm:"primaryKey" json:"id"`
	UserA         string    `gorm:"index:idx_chat_pair,unique" json:"userA"`
	UserB         string    `gorm:"index:idx_chat_pair,unique" json:"userB"`
	Status        string    `gorm:"default:accepted" json:"status"`
	RequestedBy   string    `json:"requestedBy"`
	LastMessageID *string   `json:"lastMessageId,omitempty"`
	CreatedAt     time.Time `json:"createdAt"`
	UpdatedAt     time.Time `json:"-"`
}

// OrderPair returns the two ids in the canonical stored order.
func OrderPair(a, b string) (string, string) {
	if a < b {
		return a, b
	}
	return b, a
}

// Other returns the participant that is not id.
func (c *Chat) Other(id string) string {
	if c.UserA == id {
		return c.UserB
	}
	return c.UserA
}

type Message struct {
	ID                 string      `gorm:"primaryKey" json:"id"`
	ChatID             string      `gorm:"index" json:"chatId"`
	SenderID           string      `gorm:"index" json:"sender"`
	ReceiverID         string      `gorm:"index" json:"receiver"`
	Content            string      `json:"content"`
	Kind               MessageKind `gorm:"default:text" json:"type"`
	FileURL            string      `json:"fileUrl"`
	ReplyToID          *string     `json:"replyTo,omitempty"`
	Forwarded          bool        `json:"forwarded"`
	Delivered          bool        `json:"delivered"`
	Seen               bool        `json:"seen"`
	SeenAt             *time.Time  `json:"seenAt,omitempty"`
	DeletedForEveryone bool        `json:"deletedForEveryone"`
	CreatedAt          time.Time   `json:"createdAt"`
	UpdatedAt          time.Time   `json:"-"`
}

// MessageDeletion scopes "delete for me" to a single user without touching
// the message row itself.
type MessageDeletion struct {
	MessageID string `gorm:"primaryKey"`
	UserID    string `gorm:"primaryKey"`
}

type ReportStatus string

const (
	ReportOpen     ReportStatus = "open"
	ReportReviewed ReportStatus = "reviewed"
	ReportActioned ReportStatus = "actioned"
)

type Report struct {
	ID         string       `gorm:"primaryKey" json:"id"`
	ReporterID string       `gorm:"index" json:"reporterId"`
	ReportedID string       `gorm:"index" json:"reportedId"`
	Reason     string       `json:"reason"`
	Status     ReportStatus `gorm:"default:open" json:"status"`
	CreatedAt  time.Time    `json:"createdAt"`
}
