package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/vivaha-app/backend/internal/dto"
	"github.com/vivaha-app/backend/internal/services"
)

type EventHandler struct {
	eventService *services.EventService
}

func NewEventHandler(eventService *services.EventService) *EventHandler {
	return &EventHandler{eventService: eventService}
}

// List returns the annotated event listing with the ?status=past|pending
// partition.
func (h *EventHandler) List(c *fiber.Ctx) error {
	requesterID, ok, err := requireUserID(c)
	if !ok {
		return err
	}

	results, next, err := h.eventService.List(requesterID, c.Query("status"), pageSize(c), c.Query("page_token"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: true, Message: err.Error(),
		})
	}
	return c.JSON(dto.Page{Results: results, Next: next})
}

func (h *EventHandler) Get(c *fiber.Ctx) error {
	requesterID, ok, err := requireUserID(c)
	if !ok {
		return err
	}
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: true, Message: "Invalid event id",
		})
	}

	event, err := h.eventService.GetAnnotated(id, requesterID)
	if err != nil {
		if errors.Is(err, services.ErrEventNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{
				Error: true, Message: err.Error(),
			})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
			Error: true, Message: "Internal server error",
		})
	}
	return c.JSON(event)
}

// Create stores a new event owned by the requesting staff user.
func (h *EventHandler) Create(c *fiber.Ctx) error {
	requesterID, ok, err := requireUserID(c)
	if !ok {
		return err
	}

	var req dto.EventWriteRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: true, Message: "Invalid request body",
		})
	}

	event, err := h.eventService.Create(requesterID, &req)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: true, Message: err.Error(),
		})
	}
	return c.Status(fiber.StatusCreated).JSON(event)
}

func (h *EventHandler) Update(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: true, Message: "Invalid event id",
		})
	}

	var req dto.EventWriteRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: true, Message: "Invalid request body",
		})
	}

	event, err := h.eventService.Update(id, &req)
	if err != nil {
		if errors.Is(err, services.ErrEventNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{
				Error: true, Message: err.Error(),
			})
		}
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: true, Message: err.Error(),
		})
	}
	return c.JSON(event)
}

func (h *EventHandler) Delete(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: true, Message: "Invalid event id",
		})
	}

	if err := h.eventService.Delete(id); err != nil {
		return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{
			Error: true, Message: err.Error(),
		})
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// Users lists an event's attendees, optionally filtered by ?interest=.
func (h *EventHandler) Users(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: true, Message: "Invalid event id",
		})
	}

	results, err := h.eventService.EventUsers(id, c.Query("interest"))
	if err != nil {
		if errors.Is(err, services.ErrEventNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{
				Error: true, Message: err.Error(),
			})
		}
		if errors.Is(err, services.ErrInvalidInterest) {
			return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
				Error: true, Message: err.Error(),
			})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
			Error: true, Message: "Internal server error",
		})
	}
	return c.JSON(results)
}

// JoinEvent creates the requester's attendance row for an event.
func (h *EventHandler) JoinEvent(c *fiber.Ctx) error {
	requesterID, ok, err := requireUserID(c)
	if !ok {
		return err
	}

	var req dto.UserEventWriteRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: true, Message: "Invalid request body",
		})
	}
	req.User = requesterID

	ue, err := h.eventService.JoinEvent(&req)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrEventNotFound):
			return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{
				Error: true, Message: err.Error(),
			})
		case errors.Is(err, services.ErrDuplicateUserEvent):
			return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{
				Error: true, Message: err.Error(),
			})
		case errors.Is(err, services.ErrInvalidInterest):
			return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
				Error: true, Message: err.Error(),
			})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
			Error: true, Message: "Internal server error",
		})
	}
	return c.Status(fiber.StatusCreated).JSON(ue)
}

func (h *EventHandler) ListUserEvents(c *fiber.Ctx) error {
	requesterID, ok, err := requireUserID(c)
	if !ok {
		return err
	}

	results, next, err := h.eventService.ListUserEvents(requesterID, pageSize(c), c.Query("page_token"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: true, Message: err.Error(),
		})
	}
	return c.JSON(dto.Page{Results: results, Next: next})
}

func (h *EventHandler) GetUserEvent(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: true, Message: "Invalid user event id",
		})
	}

	ue, err := h.eventService.GetUserEvent(id)
	if err != nil {
		return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{
			Error: true, Message: err.Error(),
		})
	}
	return c.JSON(ue)
}

func (h *EventHandler) UpdateUserEvent(c *fiber.Ctx) error {
	requesterID, ok, err := requireUserID(c)
	if !ok {
		return err
	}
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: true, Message: "Invalid user event id",
		})
	}

	var req dto.UserEventWriteRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: true, Message: "Invalid request body",
		})
	}

	ue, err := h.eventService.UpdateUserEvent(id, requesterID, req.InterestStatus)
	if err != nil {
		return userEventError(c, err)
	}
	return c.JSON(ue)
}

func (h *EventHandler) DeleteUserEvent(c *fiber.Ctx) error {
	requesterID, ok, err := requireUserID(c)
	if !ok {
		return err
	}
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: true, Message: "Invalid user event id",
		})
	}

	if err := h.eventService.DeleteUserEvent(id, requesterID); err != nil {
		return userEventError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

func userEventError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, services.ErrUserEventNotFound):
		return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{
			Error: true, Message: err.Error(),
		})
	case errors.Is(err, services.ErrUserEventForbidden):
		return c.Status(fiber.StatusForbidden).JSON(dto.ErrorResponse{
			Error: true, Message: err.Error(),
		})
	case errors.Is(err, services.ErrInvalidInterest):
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: true, Message: err.Error(),
		})
	}
	return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
		Error: true, Message: "Internal server error",
	})
}
