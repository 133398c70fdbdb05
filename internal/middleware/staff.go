package middleware

import (
	"github.com/gofiber/fiber/v2"
	"github.com/vivaha-app/backend/internal/dto"
	"github.com/vivaha-app/backend/internal/models"
	"gorm.io/gorm"
)

// StaffRequired gates event and plan management behind the is_staff flag.
// It must run after JWTProtected.
func StaffRequired(db *gorm.DB) fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID, err := GetUserID(c)
		if err != nil {
			return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{
				Error: true, Message: "Unauthorized",
			})
		}

		var user models.User
		if err := db.First(&user, "id = ?", userID).Error; err != nil || !user.IsStaff {
			return c.Status(fiber.StatusForbidden).JSON(dto.ErrorResponse{
				Error: true, Message: "Staff access required",
			})
		}
		return c.Next()
	}
}
