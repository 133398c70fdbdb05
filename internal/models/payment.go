package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Payment-provider event types we record. Anything else is stored under
// PaymentEventUnhandled.
const (
	PaymentIntentCreated    = "payment_intent.created"
	ChargeSucceeded         = "charge.succeeded"
	PaymentIntentSucceeded  = "payment_intent.succeeded"
	PaymentIntentProcessing = "payment_intent.processing"
	PaymentIntentFailed     = "payment_intent.payment_failed"
	PaymentEventUnhandled   = "unhandled_event"
)

// PaymentPlan is a priced subscription offering. Amount is in the smallest
// currency unit (1000 means 10 USD).
type PaymentPlan struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Title     string    `gorm:"size:128;not null" json:"title"`
	Amount    int64     `gorm:"not null;default:1000" json:"amount"`
	Duration  int       `gorm:"not null;default:30" json:"duration"`
	Currency  string    `gorm:"size:3;not null;default:'usd'" json:"currency"`
	IsActive  bool      `gorm:"default:true" json:"is_active"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (p *PaymentPlan) BeforeCreate(tx *gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}

func (PaymentPlan) TableName() string {
	return "payment_plans"
}

// PaymentEvent is the idempotency record for one webhook delivery, keyed by
// (type, payment_intent). Redeliveries update only fields that are still
// unset.
type PaymentEvent struct {
	ID            uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	PaymentIntent string    `gorm:"size:256;not null;uniqueIndex:idx_payment_events_type_intent,priority:2" json:"payment_intent"`
	Type          string    `gorm:"size:64;not null;default:'unhandled_event';uniqueIndex:idx_payment_events_type_intent,priority:1" json:"type"`

	UserID        *uuid.UUID   `gorm:"type:uuid;index" json:"user"`
	User          *User        `gorm:"foreignKey:UserID" json:"-"`
	PaymentPlanID *uuid.UUID   `gorm:"type:uuid;index" json:"payment_plan"`
	PaymentPlan   *PaymentPlan `gorm:"foreignKey:PaymentPlanID" json:"-"`

	Amount   *int64         `json:"amount"`
	Currency string         `gorm:"size:3" json:"currency"`
	Response datatypes.JSON `json:"response"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (p *PaymentEvent) BeforeCreate(tx *gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}

func (PaymentEvent) TableName() string {
	return "payment_events"
}
