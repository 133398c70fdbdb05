package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/vivaha-app/backend/internal/dto"
	"github.com/vivaha-app/backend/internal/services"
)

type ProfileViewHandler struct {
	profileViewService *services.ProfileViewService
}

func NewProfileViewHandler(profileViewService *services.ProfileViewService) *ProfileViewHandler {
	return &ProfileViewHandler{profileViewService: profileViewService}
}

// Create records that the requester viewed a profile. Every call appends a
// new row.
func (h *ProfileViewHandler) Create(c *fiber.Ctx) error {
	requesterID, ok, err := requireUserID(c)
	if !ok {
		return err
	}

	var req dto.ProfileViewWriteRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: true, Message: "Invalid request body",
		})
	}

	view, err := h.profileViewService.Record(requesterID, req.Viewee)
	if err != nil {
		if errors.Is(err, services.ErrUserNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{
				Error: true, Message: err.Error(),
			})
		}
		if errors.Is(err, services.ErrSelfProfileView) {
			return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
				Error: true, Message: err.Error(),
			})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
			Error: true, Message: "Internal server error",
		})
	}

	return c.Status(fiber.StatusCreated).JSON(view)
}

// List returns the requester's incoming views, optionally windowed by
// ?start=&end= unix timestamps.
func (h *ProfileViewHandler) List(c *fiber.Ctx) error {
	requesterID, ok, err := requireUserID(c)
	if !ok {
		return err
	}

	start, err := unixQuery(c, "start")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: true, Message: "start must be a unix timestamp",
		})
	}
	end, err := unixQuery(c, "end")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: true, Message: "end must be a unix timestamp",
		})
	}

	results, next, err := h.profileViewService.List(requesterID, start, end, pageSize(c), c.Query("page_token"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: true, Message: err.Error(),
		})
	}
	return c.JSON(dto.Page{Results: results, Next: next})
}

func (h *ProfileViewHandler) Get(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: true, Message: "Invalid profile view id",
		})
	}

	view, err := h.profileViewService.Get(id)
	if err != nil {
		return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{
			Error: true, Message: err.Error(),
		})
	}
	return c.JSON(view)
}

func (h *ProfileViewHandler) Delete(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: true, Message: "Invalid profile view id",
		})
	}

	if err := h.profileViewService.Delete(id); err != nil {
		return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{
			Error: true, Message: err.Error(),
		})
	}
	return c.SendStatus(fiber.StatusNoContent)
}
