package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/vivaha-app/backend/internal/dto"
	"github.com/vivaha-app/backend/internal/services"
)

type PaymentHandler struct {
	paymentService *services.PaymentService
}

func NewPaymentHandler(paymentService *services.PaymentService) *PaymentHandler {
	return &PaymentHandler{paymentService: paymentService}
}

func (h *PaymentHandler) Plans(c *fiber.Ctx) error {
	plans, err := h.paymentService.Plans()
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
			Error: true, Message: "Internal server error",
		})
	}
	return c.JSON(plans)
}

func (h *PaymentHandler) CreatePlan(c *fiber.Ctx) error {
	var req dto.PaymentPlanWriteRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: true, Message: "Invalid request body",
		})
	}

	plan, err := h.paymentService.CreatePlan(&req)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: true, Message: err.Error(),
		})
	}
	return c.Status(fiber.StatusCreated).JSON(plan)
}

func (h *PaymentHandler) UpdatePlan(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: true, Message: "Invalid plan id",
		})
	}

	var req dto.PaymentPlanWriteRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: true, Message: "Invalid request body",
		})
	}

	plan, err := h.paymentService.UpdatePlan(id, &req)
	if err != nil {
		if errors.Is(err, services.ErrPlanNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{
				Error: true, Message: err.Error(),
			})
		}
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: true, Message: err.Error(),
		})
	}
	return c.JSON(plan)
}

// CreateIntent opens a payment intent for the requested plan. A missing or
// inactive plan is a 400; a provider rejection surfaces as 402.
func (h *PaymentHandler) CreateIntent(c *fiber.Ctx) error {
	requesterID, ok, err := requireUserID(c)
	if !ok {
		return err
	}

	var req dto.CreatePaymentIntentRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: true, Message: "Invalid request body",
		})
	}

	resp, err := h.paymentService.CreateIntent(requesterID, req.PaymentPlan)
	if err != nil {
		return paymentError(c, err)
	}
	return c.JSON(resp)
}

func (h *PaymentHandler) ConfirmIntent(c *fiber.Ctx) error {
	var req dto.ConfirmPaymentIntentRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: true, Message: "Invalid request body",
		})
	}
	if req.PaymentIntentID == "" {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: true, Message: "payment_intent_id is required",
		})
	}

	resp, err := h.paymentService.ConfirmIntent(req.PaymentIntentID)
	if err != nil {
		return paymentError(c, err)
	}
	return c.JSON(resp)
}

// Callback ingests provider webhook deliveries. Unrecognized payloads are
// acknowledged so the provider stops retrying them.
func (h *PaymentHandler) Callback(c *fiber.Ctx) error {
	err := h.paymentService.HandleWebhook(c.Body(), c.Get("Stripe-Signature"))
	if err != nil {
		if errors.Is(err, services.ErrBadSignature) {
			return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
				Error: true, Message: "Invalid webhook signature",
			})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
			Error: true, Message: "Failed to process the event",
		})
	}
	return c.JSON(dto.MessageResponse{Message: "ok"})
}

func paymentError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, services.ErrPlanNotFound):
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: true, Message: err.Error(),
		})
	case errors.Is(err, services.ErrProviderRejected):
		return c.Status(fiber.StatusPaymentRequired).JSON(dto.ErrorResponse{
			Error: true, Message: err.Error(),
		})
	}
	return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
		Error: true, Message: "Internal server error",
	})
}
