package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/vivaha-app/backend/internal/dto"
	"github.com/vivaha-app/backend/internal/services"
)

type SentimentHandler struct {
	sentimentService *services.SentimentService
}

func NewSentimentHandler(sentimentService *services.SentimentService) *SentimentHandler {
	return &SentimentHandler{sentimentService: sentimentService}
}

// Create upserts the requester's edge toward another user.
func (h *SentimentHandler) Create(c *fiber.Ctx) error {
	requesterID, ok, err := requireUserID(c)
	if !ok {
		return err
	}

	var req dto.SentimentWriteRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: true, Message: "Invalid request body",
		})
	}

	edge, err := h.sentimentService.Upsert(requesterID, &req)
	if err != nil {
		if errors.Is(err, services.ErrUserNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{
				Error: true, Message: err.Error(),
			})
		}
		if errors.Is(err, services.ErrInvalidSentiment) || errors.Is(err, services.ErrSelfSentiment) {
			return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
				Error: true, Message: err.Error(),
			})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
			Error: true, Message: "Internal server error",
		})
	}

	return c.Status(fiber.StatusCreated).JSON(edge)
}

func (h *SentimentHandler) List(c *fiber.Ctx) error {
	requesterID, ok, err := requireUserID(c)
	if !ok {
		return err
	}

	results, next, err := h.sentimentService.List(requesterID, c.Query("sentiment"), pageSize(c), c.Query("page_token"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: true, Message: err.Error(),
		})
	}
	return c.JSON(dto.Page{Results: results, Next: next})
}

func (h *SentimentHandler) Get(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: true, Message: "Invalid sentiment id",
		})
	}

	edge, err := h.sentimentService.Get(id)
	if err != nil {
		return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{
			Error: true, Message: err.Error(),
		})
	}
	return c.JSON(edge)
}

func (h *SentimentHandler) Update(c *fiber.Ctx) error {
	requesterID, ok, err := requireUserID(c)
	if !ok {
		return err
	}
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: true, Message: "Invalid sentiment id",
		})
	}

	var req dto.SentimentWriteRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: true, Message: "Invalid request body",
		})
	}

	edge, err := h.sentimentService.Update(id, requesterID, req.Sentiment)
	if err != nil {
		return sentimentError(c, err)
	}
	return c.JSON(edge)
}

func (h *SentimentHandler) Delete(c *fiber.Ctx) error {
	requesterID, ok, err := requireUserID(c)
	if !ok {
		return err
	}
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: true, Message: "Invalid sentiment id",
		})
	}

	if err := h.sentimentService.Delete(id, requesterID); err != nil {
		return sentimentError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

func sentimentError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, services.ErrSentimentNotFound):
		return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{
			Error: true, Message: err.Error(),
		})
	case errors.Is(err, services.ErrSentimentForbidden):
		return c.Status(fiber.StatusForbidden).JSON(dto.ErrorResponse{
			Error: true, Message: err.Error(),
		})
	case errors.Is(err, services.ErrInvalidSentiment):
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: true, Message: err.Error(),
		})
	}
	return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
		Error: true, Message: "Internal server error",
	})
}
