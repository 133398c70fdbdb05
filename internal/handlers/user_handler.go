package handlers

import (
	"errors"
	"io"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/vivaha-app/backend/internal/dto"
	"github.com/vivaha-app/backend/internal/facecheck"
	"github.com/vivaha-app/backend/internal/services"
)

const defaultPageSize = 20

type UserHandler struct {
	userService  *services.UserService
	eventService *services.EventService
}

func NewUserHandler(userService *services.UserService, eventService *services.EventService) *UserHandler {
	return &UserHandler{userService: userService, eventService: eventService}
}

// Create registers a new inactive account and emails the activation link.
func (h *UserHandler) Create(c *fiber.Ctx) error {
	var req dto.UserWriteRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: true, Message: "Invalid request body",
		})
	}

	user, err := h.userService.Create(&req)
	if err != nil {
		if errors.Is(err, services.ErrUsernameTaken) || errors.Is(err, services.ErrEmailTaken) {
			return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{
				Error: true, Message: err.Error(),
			})
		}
		if errors.Is(err, services.ErrActivationDeliveryFailed) {
			// The account exists; the client should offer a resend path.
			return c.Status(fiber.StatusCreated).JSON(dto.MessageResponse{
				Message: "Account created, but the activation email could not be sent",
			})
		}
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: true, Message: err.Error(),
		})
	}

	detail, err := h.userService.Detail(user)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
			Error: true, Message: "Internal server error",
		})
	}
	return c.Status(fiber.StatusCreated).JSON(detail)
}

// Activate consumes the emailed activation token.
func (h *UserHandler) Activate(c *fiber.Ctx) error {
	token := c.Query("token")
	if token == "" {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: true, Message: "Activation token is required",
		})
	}

	if err := h.userService.Activate(token); err != nil {
		if errors.Is(err, services.ErrAccountAlreadyActive) {
			return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{
				Error: true, Message: err.Error(),
			})
		}
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: true, Message: services.ErrInvalidActivation.Error(),
		})
	}

	return c.JSON(dto.MessageResponse{Message: "Account activated"})
}

func (h *UserHandler) List(c *fiber.Ctx) error {
	results, next, err := h.userService.List(pageSize(c), c.Query("page_token"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: true, Message: err.Error(),
		})
	}
	return c.JSON(dto.Page{Results: results, Next: next})
}

func (h *UserHandler) Get(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: true, Message: "Invalid user id",
		})
	}

	user, err := h.userService.Get(id)
	if err != nil {
		return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{
			Error: true, Message: err.Error(),
		})
	}

	detail, err := h.userService.Detail(user)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
			Error: true, Message: "Internal server error",
		})
	}
	return c.JSON(detail)
}

// Update applies a partial profile edit. Only the profile owner may write.
func (h *UserHandler) Update(c *fiber.Ctx) error {
	id, ok, err := h.ownedResource(c)
	if !ok {
		return err
	}

	var req dto.UserWriteRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: true, Message: "Invalid request body",
		})
	}

	user, err := h.userService.Update(id, &req)
	if err != nil {
		if errors.Is(err, services.ErrUserNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{
				Error: true, Message: err.Error(),
			})
		}
		if errors.Is(err, services.ErrUsernameTaken) || errors.Is(err, services.ErrEmailTaken) {
			return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{
				Error: true, Message: err.Error(),
			})
		}
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: true, Message: err.Error(),
		})
	}

	detail, err := h.userService.Detail(user)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
			Error: true, Message: "Internal server error",
		})
	}
	return c.JSON(detail)
}

func (h *UserHandler) Delete(c *fiber.Ctx) error {
	id, ok, err := h.ownedResource(c)
	if !ok {
		return err
	}

	if err := h.userService.Delete(id); err != nil {
		return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{
			Error: true, Message: err.Error(),
		})
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// SetAvatar accepts a multipart image upload; it must contain exactly one
// detectable face.
func (h *UserHandler) SetAvatar(c *fiber.Ctx) error {
	id, ok, err := h.ownedResource(c)
	if !ok {
		return err
	}

	file, err := c.FormFile("avatar")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: true, Message: "An 'avatar' file field is required",
		})
	}

	src, err := file.Open()
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: true, Message: "Failed to read the uploaded file",
		})
	}
	defer src.Close()
	data, err := io.ReadAll(src)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: true, Message: "Failed to read the uploaded file",
		})
	}

	user, err := h.userService.SetAvatar(id, file.Filename, data)
	if err != nil {
		if errors.Is(err, facecheck.ErrNoFace) || errors.Is(err, facecheck.ErrMultipleFaces) {
			return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
				Error: true, Message: err.Error(),
			})
		}
		if errors.Is(err, services.ErrUserNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{
				Error: true, Message: err.Error(),
			})
		}
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: true, Message: err.Error(),
		})
	}

	return c.JSON(fiber.Map{"avatar": user.Avatar})
}

// SentimentFrom lists the users this user has rated.
func (h *UserHandler) SentimentFrom(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: true, Message: "Invalid user id",
		})
	}

	results, err := h.userService.SentimentsFrom(id, c.Query("sentiment"))
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
			Error: true, Message: "Internal server error",
		})
	}
	return c.JSON(results)
}

// SentimentTo lists the users who rated this user.
func (h *UserHandler) SentimentTo(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: true, Message: "Invalid user id",
		})
	}

	results, err := h.userService.SentimentsTo(id, c.Query("sentiment"))
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
			Error: true, Message: "Internal server error",
		})
	}
	return c.JSON(results)
}

// ProfileVisitedBy lists the distinct users who viewed this profile inside
// the optional ?start=&end= unix window.
func (h *UserHandler) ProfileVisitedBy(c *fiber.Ctx) error {
	return h.profileVisited(c, h.userService.VisitedBy)
}

// ProfileVisitedTo lists the distinct profiles this user viewed.
func (h *UserHandler) ProfileVisitedTo(c *fiber.Ctx) error {
	return h.profileVisited(c, h.userService.VisitedTo)
}

func (h *UserHandler) profileVisited(c *fiber.Ctx, list func(uuid.UUID, *time.Time, *time.Time) ([]dto.UserWithViewStats, error)) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: true, Message: "Invalid user id",
		})
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

	results, err := list(id, start, end)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
			Error: true, Message: "Internal server error",
		})
	}
	return c.JSON(results)
}

// Events lists the events this user has a standing toward, with the same
// status filter the event listing uses.
func (h *UserHandler) Events(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: true, Message: "Invalid user id",
		})
	}

	results, err := h.eventService.UserEvents(id, c.Query("status"), c.Query("interest"))
	if err != nil {
		if errors.Is(err, services.ErrInvalidEventStatus) || errors.Is(err, services.ErrInvalidInterest) {
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

// ownedResource parses the :id param and enforces that it belongs to the
// requester. When ok is false the response has already been written.
func (h *UserHandler) ownedResource(c *fiber.Ctx) (uuid.UUID, bool, error) {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return uuid.Nil, false, c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: true, Message: "Invalid user id",
		})
	}
	requesterID, ok, err := requireUserID(c)
	if !ok {
		return uuid.Nil, false, err
	}
	if requesterID != id {
		return uuid.Nil, false, c.Status(fiber.StatusForbidden).JSON(dto.ErrorResponse{
			Error: true, Message: "You can only modify your own profile",
		})
	}
	return id, true, nil
}

func pageSize(c *fiber.Ctx) int {
	limit, err := strconv.Atoi(c.Query("limit"))
	if err != nil || limit <= 0 || limit > 100 {
		return defaultPageSize
	}
	return limit
}

func unixQuery(c *fiber.Ctx, name string) (*time.Time, error) {
	raw := c.Query(name)
	if raw == "" {
		return nil, nil
	}
	secs, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return nil, err
	}
	t := time.Unix(secs, 0).UTC()
	return &t, nil
}
