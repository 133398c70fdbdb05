package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Notification content discriminants. The tagged (ContentType, ObjectID)
// pair replaces an open-ended polymorphic reference; lookup dispatches on
// the tag.
const (
	NotificationProfileView = "profile_view"
	NotificationSentiment   = "sentiment"
)

type Notification struct {
	ID      uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	UserID  uuid.UUID `gorm:"type:uuid;not null;index" json:"user"`
	Content string    `gorm:"size:1024" json:"content"`

	ContentType string    `gorm:"size:32;not null;index:idx_notifications_content,priority:1" json:"content_type"`
	ObjectID    uuid.UUID `gorm:"type:uuid;not null;index:idx_notifications_content,priority:2" json:"object_id"`

	CreatedAt time.Time `json:"created_at"`

	User User `gorm:"foreignKey:UserID" json:"-"`
}

func (n *Notification) BeforeCreate(tx *gorm.DB) error {
	if n.ID == uuid.Nil {
		n.ID = uuid.New()
	}
	return nil
}

func (Notification) TableName() string {
	return "notifications"
}
