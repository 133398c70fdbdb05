package dto

import (
	"time"

	"github.com/google/uuid"
	"github.com/vivaha-app/backend/internal/models"
)

type EventWriteRequest struct {
	Title     string     `json:"title"`
	Detail    *string    `json:"detail"`
	StartDate *time.Time `json:"start_date"`
	EndDate   *time.Time `json:"end_date"`
	Address   *string    `json:"address"`
	City      *string    `json:"city"`
	State     *string    `json:"state"`
	Country   *string    `json:"country"`
	IsActive  *bool      `json:"is_active"`
}

type UserEventWriteRequest struct {
	Event          uuid.UUID `json:"event"`
	User           uuid.UUID `json:"user"`
	InterestStatus string    `json:"interest_status"`
}

// EventWithStats is the annotated listing row: the event plus aggregated
// attendance counts and the requester's own standing toward it.
type EventWithStats struct {
	models.Event

	AttendCount    int64  `json:"attend_count"`
	NotAttendCount int64  `json:"not_attend_count"`
	IgnoreCount    int64  `json:"ignore_count"`
	InterestStatus string `json:"interest_status"`

	// UserEvent is the id of the requester's attendance row, null when the
	// requester never touched the event.
	UserEvent *uuid.UUID `json:"user_event"`
}

// EventUser is one attendee row of the /events/:id/users listing.
type EventUser struct {
	UserBasic
	InterestStatus string `json:"interest_status"`
}
