package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Event time-status filter values. An event whose end date equals the
// current instant exactly counts as pending (inclusive lower bound).
const (
	EventStatusPast    = "past"
	EventStatusPending = "pending"
)

const (
	InterestAttend    = "A"
	InterestNotAttend = "N"
	InterestIgnore    = "I"
)

type Event struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Title     string    `gorm:"size:512;not null" json:"title"`
	Detail    string    `gorm:"type:text" json:"detail"`
	StartDate time.Time `gorm:"not null;index" json:"start_date"`
	EndDate   time.Time `gorm:"not null;index" json:"end_date"`
	Address   string    `gorm:"size:1024" json:"address"`
	City      string    `gorm:"size:256" json:"city"`
	State     string    `gorm:"size:256" json:"state"`
	Country   string    `gorm:"size:256" json:"country"`
	IsActive  bool      `gorm:"default:true" json:"is_active"`

	// Ownership is immutable after creation.
	CreatedByID uuid.UUID `gorm:"type:uuid;not null;index" json:"created_by"`
	CreatedBy   User      `gorm:"foreignKey:CreatedByID" json:"-"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (e *Event) BeforeCreate(tx *gorm.DB) error {
	if e.ID == uuid.Nil {
		e.ID = uuid.New()
	}
	return nil
}

func (Event) TableName() string {
	return "events"
}

// UserEvent records a user's attendance intent for an event. The composite
// unique index guarantees at most one row per (event, user) pair.
type UserEvent struct {
	ID             uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	EventID        uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_user_events_event_user,priority:1" json:"event"`
	UserID         uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_user_events_event_user,priority:2" json:"user"`
	InterestStatus string    `gorm:"size:1;not null;default:'I'" json:"interest_status"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`

	Event Event `gorm:"foreignKey:EventID" json:"-"`
	User  User  `gorm:"foreignKey:UserID" json:"-"`
}

func (ue *UserEvent) BeforeCreate(tx *gorm.DB) error {
	if ue.ID == uuid.Nil {
		ue.ID = uuid.New()
	}
	return nil
}

func (UserEvent) TableName() string {
	return "user_events"
}

func ValidInterestStatus(v string) bool {
	return v == InterestAttend || v == InterestNotAttend || v == InterestIgnore
}
