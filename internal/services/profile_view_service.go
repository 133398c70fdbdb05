package services

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/vivaha-app/backend/internal/models"
	"github.com/vivaha-app/backend/internal/pagination"
	"gorm.io/gorm"
)

var (
	ErrProfileViewNotFound = errors.New("profile view not found")
	ErrSelfProfileView     = errors.New("cannot record a view of your own profile")
)

type ProfileViewService struct {
	db            *gorm.DB
	notifications *NotificationService
}

func NewProfileViewService(db *gorm.DB, notifications *NotificationService) *ProfileViewService {
	return &ProfileViewService{db: db, notifications: notifications}
}

// Record appends a view row and notifies the viewee. Views are append-only;
// a repeat visit is a new row.
func (s *ProfileViewService) Record(viewerID, vieweeID uuid.UUID) (*models.ProfileView, error) {
	if viewerID == vieweeID {
		return nil, ErrSelfProfileView
	}

	var viewee models.User
	if err := s.db.First(&viewee, "id = ?", vieweeID).Error; err != nil {
		return nil, ErrUserNotFound
	}

	view := models.ProfileView{ViewerID: viewerID, VieweeID: vieweeID}
	if err := s.db.Create(&view).Error; err != nil {
		return nil, err
	}

	content := "Someone viewed your profile."
	var viewer models.User
	if err := s.db.First(&viewer, "id = ?", viewerID).Error; err == nil {
		content = fmt.Sprintf("%s viewed your profile.", viewer.FullName())
	}
	s.notifications.Notify(vieweeID, content, models.NotificationProfileView, view.ID)

	return &view, nil
}

// List returns the requester's incoming view rows, newest first, optionally
// windowed by [start, end].
func (s *ProfileViewService) List(vieweeID uuid.UUID, start, end *time.Time, limit int, token string) ([]models.ProfileView, string, error) {
	cursor, err := pagination.Decode(token)
	if err != nil {
		return nil, "", err
	}

	query := s.db.Where("viewee_id = ?", vieweeID)
	if start != nil {
		query = query.Where("created_at >= ?", *start)
	}
	if end != nil {
		query = query.Where("created_at <= ?", *end)
	}

	var rows []models.ProfileView
	err = query.
		Scopes(pagination.Apply(cursor, "profile_views", "created_at")).
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

func (s *ProfileViewService) Get(id uuid.UUID) (*models.ProfileView, error) {
	var view models.ProfileView
	if err := s.db.First(&view, "id = ?", id).Error; err != nil {
		return nil, ErrProfileViewNotFound
	}
	return &view, nil
}

func (s *ProfileViewService) Delete(id uuid.UUID) error {
	result := s.db.Delete(&models.ProfileView{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrProfileViewNotFound
	}
	return nil
}
