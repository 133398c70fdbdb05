package services

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/vivaha-app/backend/internal/dto"
	"github.com/vivaha-app/backend/internal/models"
	"github.com/vivaha-app/backend/internal/pagination"
	"gorm.io/gorm"
)

var (
	ErrEventNotFound       = errors.New("event not found")
	ErrUserEventNotFound   = errors.New("user event not found")
	ErrInvalidInterest     = errors.New("interest_status must be one of A, N, I")
	ErrInvalidEventStatus  = errors.New("status must be past or pending")
	ErrDuplicateUserEvent  = errors.New("a row for this event and user already exists")
	ErrUserEventForbidden  = errors.New("user event belongs to another user")
	ErrInvalidEventPayload = errors.New("title, start_date and end_date are required")
)

type EventService struct {
	db *gorm.DB
}

func NewEventService(db *gorm.DB) *EventService {
	return &EventService{db: db}
}

// statusScope partitions events by end_date against now. The boundary is
// inclusive on the pending side: end_date == now is pending.
func statusScope(status string, now time.Time) (func(db *gorm.DB) *gorm.DB, error) {
	switch status {
	case "":
		return func(db *gorm.DB) *gorm.DB { return db }, nil
	case models.EventStatusPast:
		return func(db *gorm.DB) *gorm.DB {
			return db.Where("events.end_date < ?", now)
		}, nil
	case models.EventStatusPending:
		return func(db *gorm.DB) *gorm.DB {
			return db.Where("events.end_date >= ?", now)
		}, nil
	}
	return nil, ErrInvalidEventStatus
}

type eventStatsRow struct {
	models.Event `gorm:"embedded"`

	AttendCount    int64
	NotAttendCount int64
	IgnoreCount    int64
	InterestStatus string
	UserEvent      uuid.NullUUID
}

// annotated builds the single-pass aggregation every event listing shares:
// per-event attendance counts over a LEFT JOIN plus the requester's own
// standing resolved by correlated sub-selects, defaulting to IGNORE.
func (s *EventService) annotated(requesterID uuid.UUID) *gorm.DB {
	interestSub := s.db.Table("user_events ue2").
		Select("ue2.interest_status").
		Where("ue2.event_id = events.id AND ue2.user_id = ?", requesterID)
	idSub := s.db.Table("user_events ue3").
		Select("ue3.id").
		Where("ue3.event_id = events.id AND ue3.user_id = ?", requesterID)

	return s.db.Table("events").
		Select("events.*, "+
			"count(case when ue.interest_status = ? then 1 end) AS attend_count, "+
			"count(case when ue.interest_status = ? then 1 end) AS not_attend_count, "+
			"count(case when ue.interest_status = ? then 1 end) AS ignore_count, "+
			"coalesce((?), ?) AS interest_status, "+
			"(?) AS user_event",
			models.InterestAttend, models.InterestNotAttend, models.InterestIgnore,
			interestSub, models.InterestIgnore, idSub).
		Joins("LEFT JOIN user_events ue ON ue.event_id = events.id").
		Group("events.id")
}

// List returns the annotated event listing, newest start date first,
// optionally partitioned by time status.
func (s *EventService) List(requesterID uuid.UUID, status string, limit int, token string) ([]dto.EventWithStats, string, error) {
	cursor, err := pagination.Decode(token)
	if err != nil {
		return nil, "", err
	}
	scope, err := statusScope(status, time.Now())
	if err != nil {
		return nil, "", err
	}

	var rows []eventStatsRow
	err = s.annotated(requesterID).
		Scopes(scope, pagination.Apply(cursor, "events", "start_date")).
		Order("events.start_date DESC, events.id DESC").
		Limit(limit).
		Scan(&rows).Error
	if err != nil {
		return nil, "", err
	}

	results := toEventStats(rows)
	next := ""
	if len(rows) > 0 {
		last := rows[len(rows)-1]
		next = pagination.NextToken(last.StartDate, last.Event.ID.String(), len(rows), limit)
	}
	return results, next, nil
}

// GetAnnotated retrieves one event with the same annotations the listing
// carries.
func (s *EventService) GetAnnotated(id, requesterID uuid.UUID) (*dto.EventWithStats, error) {
	var row eventStatsRow
	err := s.annotated(requesterID).
		Where("events.id = ?", id).
		Scan(&row).Error
	if err != nil {
		return nil, err
	}
	if row.Event.ID == uuid.Nil {
		return nil, ErrEventNotFound
	}
	result := toEventStats([]eventStatsRow{row})[0]
	return &result, nil
}

// UserEvents lists the events a user has a non-IGNORE standing toward,
// most recently ended first. An explicit ?interest= filter overrides the
// IGNORE exclusion.
func (s *EventService) UserEvents(userID uuid.UUID, status, interest string) ([]dto.EventWithStats, error) {
	scope, err := statusScope(status, time.Now())
	if err != nil {
		return nil, err
	}

	query := s.annotated(userID).
		Joins("JOIN user_events mine ON mine.event_id = events.id AND mine.user_id = ?", userID).
		Scopes(scope)
	if interest != "" {
		if !models.ValidInterestStatus(interest) {
			return nil, ErrInvalidInterest
		}
		query = query.Where("mine.interest_status = ?", interest)
	} else {
		query = query.Where("mine.interest_status <> ?", models.InterestIgnore)
	}

	var rows []eventStatsRow
	if err := query.Order("events.end_date DESC").Scan(&rows).Error; err != nil {
		return nil, err
	}
	return toEventStats(rows), nil
}

// EventUsers lists an event's attendees in join order, optionally narrowed
// to one interest value.
func (s *EventService) EventUsers(eventID uuid.UUID, interest string) ([]dto.EventUser, error) {
	var event models.Event
	if err := s.db.First(&event, "id = ?", eventID).Error; err != nil {
		return nil, ErrEventNotFound
	}

	query := s.db.Table("users").
		Select("users.*, ue.interest_status AS interest_status").
		Joins("JOIN user_events ue ON ue.user_id = users.id AND ue.event_id = ?", eventID)
	if interest != "" {
		if !models.ValidInterestStatus(interest) {
			return nil, ErrInvalidInterest
		}
		query = query.Where("ue.interest_status = ?", interest)
	}

	var rows []struct {
		models.User    `gorm:"embedded"`
		InterestStatus string
	}
	if err := query.Order("ue.created_at").Scan(&rows).Error; err != nil {
		return nil, err
	}

	results := make([]dto.EventUser, len(rows))
	for i := range rows {
		results[i] = dto.EventUser{
			UserBasic:      dto.NewUserBasic(&rows[i].User),
			InterestStatus: rows[i].InterestStatus,
		}
	}
	return results, nil
}

// Create stores a staff-authored event. Ownership is fixed at creation.
func (s *EventService) Create(creatorID uuid.UUID, req *dto.EventWriteRequest) (*models.Event, error) {
	if req.Title == "" || req.StartDate == nil || req.EndDate == nil {
		return nil, ErrInvalidEventPayload
	}

	event := models.Event{
		Title:       req.Title,
		StartDate:   *req.StartDate,
		EndDate:     *req.EndDate,
		IsActive:    true,
		CreatedByID: creatorID,
	}
	applyEventWrite(&event, req)

	if err := s.db.Create(&event).Error; err != nil {
		return nil, err
	}
	return &event, nil
}

func (s *EventService) Get(id uuid.UUID) (*models.Event, error) {
	var event models.Event
	if err := s.db.First(&event, "id = ?", id).Error; err != nil {
		return nil, ErrEventNotFound
	}
	return &event, nil
}

// Update applies a partial edit; created_by is never writable.
func (s *EventService) Update(id uuid.UUID, req *dto.EventWriteRequest) (*models.Event, error) {
	event, err := s.Get(id)
	if err != nil {
		return nil, err
	}

	if req.Title != "" {
		event.Title = req.Title
	}
	if req.StartDate != nil {
		event.StartDate = *req.StartDate
	}
	if req.EndDate != nil {
		event.EndDate = *req.EndDate
	}
	applyEventWrite(event, req)

	if err := s.db.Save(event).Error; err != nil {
		return nil, err
	}
	return event, nil
}

func (s *EventService) Delete(id uuid.UUID) error {
	result := s.db.Delete(&models.Event{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrEventNotFound
	}
	return nil
}

// JoinEvent creates the (event, user) attendance row. The pair is unique;
// a second join for the same pair fails.
func (s *EventService) JoinEvent(req *dto.UserEventWriteRequest) (*models.UserEvent, error) {
	if req.InterestStatus == "" {
		req.InterestStatus = models.InterestIgnore
	}
	if !models.ValidInterestStatus(req.InterestStatus) {
		return nil, ErrInvalidInterest
	}

	var event models.Event
	if err := s.db.First(&event, "id = ?", req.Event).Error; err != nil {
		return nil, ErrEventNotFound
	}

	var existing models.UserEvent
	err := s.db.Where("event_id = ? AND user_id = ?", req.Event, req.User).First(&existing).Error
	if err == nil {
		return nil, ErrDuplicateUserEvent
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	ue := models.UserEvent{
		EventID:        req.Event,
		UserID:         req.User,
		InterestStatus: req.InterestStatus,
	}
	if err := s.db.Create(&ue).Error; err != nil {
		return nil, ErrDuplicateUserEvent
	}
	return &ue, nil
}

func (s *EventService) GetUserEvent(id uuid.UUID) (*models.UserEvent, error) {
	var ue models.UserEvent
	if err := s.db.First(&ue, "id = ?", id).Error; err != nil {
		return nil, ErrUserEventNotFound
	}
	return &ue, nil
}

// UpdateUserEvent changes the interest value only; the (event, user) pair
// is immutable.
func (s *EventService) UpdateUserEvent(id, requesterID uuid.UUID, interest string) (*models.UserEvent, error) {
	if !models.ValidInterestStatus(interest) {
		return nil, ErrInvalidInterest
	}

	ue, err := s.GetUserEvent(id)
	if err != nil {
		return nil, err
	}
	if ue.UserID != requesterID {
		return nil, ErrUserEventForbidden
	}

	if err := s.db.Model(ue).Update("interest_status", interest).Error; err != nil {
		return nil, err
	}
	ue.InterestStatus = interest
	return ue, nil
}

func (s *EventService) DeleteUserEvent(id, requesterID uuid.UUID) error {
	ue, err := s.GetUserEvent(id)
	if err != nil {
		return err
	}
	if ue.UserID != requesterID {
		return ErrUserEventForbidden
	}
	return s.db.Delete(ue).Error
}

// ListUserEvents is the flat /api/user-events listing for the requester.
func (s *EventService) ListUserEvents(userID uuid.UUID, limit int, token string) ([]models.UserEvent, string, error) {
	cursor, err := pagination.Decode(token)
	if err != nil {
		return nil, "", err
	}

	var rows []models.UserEvent
	err = s.db.
		Where("user_id = ?", userID).
		Scopes(pagination.Apply(cursor, "user_events", "created_at")).
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

func toEventStats(rows []eventStatsRow) []dto.EventWithStats {
	results := make([]dto.EventWithStats, len(rows))
	for i := range rows {
		results[i] = dto.EventWithStats{
			Event:          rows[i].Event,
			AttendCount:    rows[i].AttendCount,
			NotAttendCount: rows[i].NotAttendCount,
			IgnoreCount:    rows[i].IgnoreCount,
			InterestStatus: rows[i].InterestStatus,
		}
		if rows[i].UserEvent.Valid {
			id := rows[i].UserEvent.UUID
			results[i].UserEvent = &id
		}
	}
	return results
}

func applyEventWrite(event *models.Event, req *dto.EventWriteRequest) {
	if req.Detail != nil {
		event.Detail = *req.Detail
	}
	if req.Address != nil {
		event.Address = *req.Address
	}
	if req.City != nil {
		event.City = *req.City
	}
	if req.State != nil {
		event.State = *req.State
	}
	if req.Country != nil {
		event.Country = *req.Country
	}
	if req.IsActive != nil {
		event.IsActive = *req.IsActive
	}
}
