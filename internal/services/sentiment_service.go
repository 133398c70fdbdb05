package services

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/vivaha-app/backend/internal/dto"
	"github.com/vivaha-app/backend/internal/models"
	"github.com/vivaha-app/backend/internal/pagination"
	"gorm.io/gorm"
)

var (
	ErrSentimentNotFound  = errors.New("sentiment not found")
	ErrInvalidSentiment   = errors.New("sentiment must be one of L, D, N")
	ErrSelfSentiment      = errors.New("cannot rate your own profile")
	ErrSentimentForbidden = errors.New("sentiment belongs to another user")
)

type SentimentService struct {
	db            *gorm.DB
	notifications *NotificationService
}

func NewSentimentService(db *gorm.DB, notifications *NotificationService) *SentimentService {
	return &SentimentService{db: db, notifications: notifications}
}

// Upsert creates the requester's edge toward the target user, or updates
// the value when the ordered pair already exists. A LIKE or DISLIKE result
// notifies the target.
func (s *SentimentService) Upsert(fromID uuid.UUID, req *dto.SentimentWriteRequest) (*models.Sentiment, error) {
	if req.Sentiment == "" {
		req.Sentiment = models.SentimentNeutral
	}
	if !models.ValidSentiment(req.Sentiment) {
		return nil, ErrInvalidSentiment
	}
	if fromID == req.SentimentTo {
		return nil, ErrSelfSentiment
	}

	var target models.User
	if err := s.db.First(&target, "id = ?", req.SentimentTo).Error; err != nil {
		return nil, ErrUserNotFound
	}

	var edge models.Sentiment
	err := s.db.Where("from_id = ? AND to_id = ?", fromID, req.SentimentTo).First(&edge).Error
	switch {
	case err == nil:
		if edge.Sentiment != req.Sentiment {
			if err := s.db.Model(&edge).Update("sentiment", req.Sentiment).Error; err != nil {
				return nil, err
			}
			edge.Sentiment = req.Sentiment
		}
	case errors.Is(err, gorm.ErrRecordNotFound):
		edge = models.Sentiment{FromID: fromID, ToID: req.SentimentTo, Sentiment: req.Sentiment}
		if err := s.db.Create(&edge).Error; err != nil {
			return nil, err
		}
	default:
		return nil, err
	}

	if edge.Sentiment != models.SentimentNeutral {
		s.notifications.Notify(edge.ToID, s.notificationContent(fromID, edge.Sentiment),
			models.NotificationSentiment, edge.ID)
	}
	return &edge, nil
}

func (s *SentimentService) notificationContent(fromID uuid.UUID, value string) string {
	var from models.User
	if err := s.db.First(&from, "id = ?", fromID).Error; err != nil {
		return "Someone rated your profile."
	}
	if value == models.SentimentLike {
		return fmt.Sprintf("%s liked your profile.", from.FullName())
	}
	return fmt.Sprintf("%s disliked your profile.", from.FullName())
}

// List returns the requester's outgoing edges, newest first, optionally
// narrowed to one value.
func (s *SentimentService) List(fromID uuid.UUID, filter string, limit int, token string) ([]models.Sentiment, string, error) {
	cursor, err := pagination.Decode(token)
	if err != nil {
		return nil, "", err
	}

	query := s.db.Where("from_id = ?", fromID)
	if filter != "" {
		query = query.Where("sentiment = ?", filter)
	}

	var rows []models.Sentiment
	err = query.
		Scopes(pagination.Apply(cursor, "sentiments", "created_at")).
		Order("created_at DESC, id DESC").
		Limit(limit).
		Find(&rows).Error
	if err != nil {
		return nil, "", err
	}

	next := ""
	if len(rows) > 0 {
		last := rows[len(rows)-1]
		next = pagination.NextToken(last.CreatedAt, last.ID.String(), len(rows), limit)
	}
	return rows, next, nil
}

func (s *SentimentService) Get(id uuid.UUID) (*models.Sentiment, error) {
	var edge models.Sentiment
	if err := s.db.First(&edge, "id = ?", id).Error; err != nil {
		return nil, ErrSentimentNotFound
	}
	return &edge, nil
}

// Update changes the value of an existing edge. Only the owning (from)
// user may do so; the pair itself is immutable.
func (s *SentimentService) Update(id, requesterID uuid.UUID, value string) (*models.Sentiment, error) {
	if !models.ValidSentiment(value) {
		return nil, ErrInvalidSentiment
	}

	edge, err := s.Get(id)
	if err != nil {
		return nil, err
	}
	if edge.FromID != requesterID {
		return nil, ErrSentimentForbidden
	}

	if err := s.db.Model(edge).Update("sentiment", value).Error; err != nil {
		return nil, err
	}
	edge.Sentiment = value
	return edge, nil
}

func (s *SentimentService) Delete(id, requesterID uuid.UUID) error {
	edge, err := s.Get(id)
	if err != nil {
		return err
	}
	if edge.FromID != requesterID {
		return ErrSentimentForbidden
	}
	return s.db.Delete(edge).Error
}
