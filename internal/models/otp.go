package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// OTP is a short-lived login code emailed to the user. Verification always
// checks against the latest row inside the expiry window, so issuing a new
// code invalidates older ones in practice.
type OTP struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	UserID    uuid.UUID `gorm:"type:uuid;not null;index" json:"user"`
	Token     string    `gorm:"size:16;not null" json:"-"`
	CreatedAt time.Time `gorm:"index" json:"created_at"`

	User User `gorm:"foreignKey:UserID" json:"-"`
}

func (o *OTP) BeforeCreate(tx *gorm.DB) error {
	if o.ID == uuid.Nil {
		o.ID = uuid.New()
	}
	return nil
}

func (OTP) TableName() string {
	return "otps"
}
