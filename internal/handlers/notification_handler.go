package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/vivaha-app/backend/internal/dto"
	"github.com/vivaha-app/backend/internal/services"
)

type NotificationHandler struct {
	notificationService *services.NotificationService
}

func NewNotificationHandler(notificationService *services.NotificationService) *NotificationHandler {
	return &NotificationHandler{notificationService: notificationService}
}

func (h *NotificationHandler) List(c *fiber.Ctx) error {
	requesterID, ok, err := requireUserID(c)
	if !ok {
		return err
	}

	results, next, err := h.notificationService.List(requesterID, pageSize(c), c.Query("page_token"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: true, Message: err.Error(),
		})
	}
	return c.JSON(dto.Page{Results: results, Next: next})
}

func (h *NotificationHandler) Get(c *fiber.Ctx) error {
	requesterID, ok, err := requireUserID(c)
	if !ok {
		return err
	}
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: true, Message: "Invalid notification id",
		})
	}

	resp, err := h.notificationService.Get(id, requesterID)
	if err != nil {
		return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{
			Error: true, Message: err.Error(),
		})
	}
	return c.JSON(resp)
}
