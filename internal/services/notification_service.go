package services

import (
	"errors"
	"log/slog"

	"github.com/google/uuid"
	"github.com/vivaha-app/backend/internal/dto"
	"github.com/vivaha-app/backend/internal/models"
	"github.com/vivaha-app/backend/internal/pagination"
	"gorm.io/gorm"
)

var ErrNotificationNotFound = errors.New("notification not found")

type NotificationService struct {
	db *gorm.DB
}

func NewNotificationService(db *gorm.DB) *NotificationService {
	return &NotificationService{db: db}
}

// Notify appends a notification row. Failures are logged and swallowed so
// a notification hiccup never fails the triggering write.
func (s *NotificationService) Notify(userID uuid.UUID, content, contentType string, objectID uuid.UUID) {
	n := models.Notification{
		UserID:      userID,
		Content:     content,
		ContentType: contentType,
		ObjectID:    objectID,
	}
	if err := s.db.Create(&n).Error; err != nil {
		slog.Error("failed to create notification",
			"user_id", userID.String(), "content_type", contentType, "error", err)
	}
}

// List returns the recipient's notifications, newest first, with each
// content object resolved by its type tag.
func (s *NotificationService) List(userID uuid.UUID, limit int, token string) ([]dto.NotificationResponse, string, error) {
	cursor, err := pagination.Decode(token)
	if err != nil {
		return nil, "", err
	}

	var rows []models.Notification
	err = s.db.
		Where("user_id = ?", userID).
		Scopes(pagination.Apply(cursor, "notifications", "created_at")).
		Order("created_at DESC, id DESC").
		Limit(limit).
		Find(&rows).Error
	if err != nil {
		return nil, "", err
	}

	results := make([]dto.NotificationResponse, len(rows))
	for i := range rows {
		results[i] = s.toResponse(&rows[i])
	}

	next := ""
	if len(rows) > 0 {
		last := rows[len(rows)-1]
		next = pagination.NextToken(last.CreatedAt, last.ID.String(), len(rows), limit)
	}
	return results, next, nil
}

func (s *NotificationService) Get(id, userID uuid.UUID) (*dto.NotificationResponse, error) {
	var n models.Notification
	if err := s.db.Where("id = ? AND user_id = ?", id, userID).First(&n).Error; err != nil {
		return nil, ErrNotificationNotFound
	}
	resp := s.toResponse(&n)
	return &resp, nil
}

func (s *NotificationService) toResponse(n *models.Notification) dto.NotificationResponse {
	return dto.NotificationResponse{
		ID:            n.ID,
		User:          n.UserID,
		Content:       n.Content,
		ContentType:   n.ContentType,
		ObjectID:      n.ObjectID,
		ContentObject: s.resolveObject(n.ContentType, n.ObjectID),
		CreatedAt:     n.CreatedAt,
	}
}

// resolveObject dispatches on the content-type tag. An unknown tag or a
// deleted referent resolves to nil rather than failing the listing.
func (s *NotificationService) resolveObject(contentType string, objectID uuid.UUID) interface{} {
	switch contentType {
	case models.NotificationSentiment:
		var obj models.Sentiment
		if err := s.db.First(&obj, "id = ?", objectID).Error; err != nil {
			return nil
		}
		return obj
	case models.NotificationProfileView:
		var obj models.ProfileView
		if err := s.db.First(&obj, "id = ?", objectID).Error; err != nil {
			return nil
		}
		return obj
	}
	return nil
}
