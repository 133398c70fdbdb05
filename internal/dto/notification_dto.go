package dto

import (
	"time"

	"github.com/google/uuid"
)

// NotificationResponse carries the tagged content reference plus the
// resolved content object (a sentiment or profile-view projection).
type NotificationResponse struct {
	ID            uuid.UUID   `json:"id"`
	User          uuid.UUID   `json:"user"`
	Content       string      `json:"content"`
	ContentType   string      `json:"content_type"`
	ObjectID      uuid.UUID   `json:"object_id"`
	ContentObject interface{} `json:"content_object"`
	CreatedAt     time.Time   `json:"created_at"`
}
