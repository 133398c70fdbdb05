package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	SentimentLike    = "L"
	SentimentDislike = "D"
	SentimentNeutral = "N"
)

// Sentiment is a directed like/dislike/neutral edge between two users.
// At most one row exists per ordered (from, to) pair; mutuality is always
// derived by querying the reverse edge, never stored.
type Sentiment struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	FromID    uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_sentiments_from_to,priority:1" json:"sentiment_from"`
	ToID      uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_sentiments_from_to,priority:2" json:"sentiment_to"`
	Sentiment string    `gorm:"size:1;not null;default:'N'" json:"sentiment"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	From User `gorm:"foreignKey:FromID" json:"-"`
	To   User `gorm:"foreignKey:ToID" json:"-"`
}

func (s *Sentiment) BeforeCreate(tx *gorm.DB) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	return nil
}

func (Sentiment) TableName() string {
	return "sentiments"
}

func ValidSentiment(v string) bool {
	return v == SentimentLike || v == SentimentDislike || v == SentimentNeutral
}
