package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/vivaha-app/backend/internal/dto"
	"github.com/vivaha-app/backend/internal/middleware"
)

// requireUserID resolves the authenticated user id from the verified token.
// When ok is false a 401 has already been written; return the error as-is.
func requireUserID(c *fiber.Ctx) (uuid.UUID, bool, error) {
	id, err := middleware.GetUserID(c)
	if err != nil {
		return uuid.Nil, false, c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{
			Error: true, Message: "Unauthorized",
		})
	}
	return id, true, nil
}
