package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ProfileView is an append-only viewer -> viewee edge. Repeat views create
// repeat rows; there is deliberately no uniqueness constraint.
type ProfileView struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	ViewerID  uuid.UUID `gorm:"type:uuid;not null;index" json:"viewer"`
	VieweeID  uuid.UUID `gorm:"type:uuid;not null;index" json:"viewee"`
	CreatedAt time.Time `gorm:"index" json:"created_at"`

	Viewer User `gorm:"foreignKey:ViewerID" json:"-"`
	Viewee User `gorm:"foreignKey:VieweeID" json:"-"`
}

func (p *ProfileView) BeforeCreate(tx *gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}

func (ProfileView) TableName() string {
	return "profile_views"
}
