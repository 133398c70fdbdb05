package services

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/stripe/stripe-go/v76"
	"github.com/stripe/stripe-go/v76/paymentintent"
	"github.com/stripe/stripe-go/v76/webhook"
	"github.com/vivaha-app/backend/internal/config"
	"github.com/vivaha-app/backend/internal/dto"
	"github.com/vivaha-app/backend/internal/models"
	"gorm.io/gorm"
)

var (
	ErrPlanNotFound     = errors.New("payment plan not found or inactive")
	ErrProviderRejected = errors.New("payment provider rejected the request")
	ErrBadSignature     = errors.New("webhook signature verification failed")
)

type PaymentService struct {
	db  *gorm.DB
	cfg *config.Config
}

func NewPaymentService(db *gorm.DB, cfg *config.Config) *PaymentService {
	stripe.Key = cfg.StripeSecretKey
	return &PaymentService{db: db, cfg: cfg}
}

// Plans lists active offerings, cheapest first.
func (s *PaymentService) Plans() ([]models.PaymentPlan, error) {
	var plans []models.PaymentPlan
	err := s.db.
		Where("is_active = ?", true).
		Order("amount, created_at").
		Find(&plans).Error
	return plans, err
}

// CreatePlan stores a staff-authored offering.
func (s *PaymentService) CreatePlan(req *dto.PaymentPlanWriteRequest) (*models.PaymentPlan, error) {
	if req.Title == "" {
		return nil, errors.New("title is required")
	}

	plan := models.PaymentPlan{Title: req.Title}
	applyPlanWrite(&plan, req)

	if err := s.db.Create(&plan).Error; err != nil {
		return nil, err
	}
	return &plan, nil
}

func (s *PaymentService) UpdatePlan(id uuid.UUID, req *dto.PaymentPlanWriteRequest) (*models.PaymentPlan, error) {
	var plan models.PaymentPlan
	if err := s.db.First(&plan, "id = ?", id).Error; err != nil {
		return nil, ErrPlanNotFound
	}

	if req.Title != "" {
		plan.Title = req.Title
	}
	applyPlanWrite(&plan, req)

	if err := s.db.Save(&plan).Error; err != nil {
		return nil, err
	}
	return &plan, nil
}

// CreateIntent opens a payment intent for a plan. The metadata carries the
// user and plan ids so the webhook can attribute the payment later.
func (s *PaymentService) CreateIntent(userID uuid.UUID, planID uuid.UUID) (*dto.PaymentIntentResponse, error) {
	var plan models.PaymentPlan
	if err := s.db.Where("id = ? AND is_active = ?", planID, true).First(&plan).Error; err != nil {
		return nil, ErrPlanNotFound
	}

	params := &stripe.PaymentIntentParams{
		Amount:   stripe.Int64(plan.Amount),
		Currency: stripe.String(plan.Currency),
		AutomaticPaymentMethods: &stripe.PaymentIntentAutomaticPaymentMethodsParams{
			Enabled: stripe.Bool(true),
		},
	}
	params.AddMetadata("user", userID.String())
	params.AddMetadata("payment_plan", plan.ID.String())

	intent, err := paymentintent.New(params)
	if err != nil {
		return nil, wrapStripeError(err)
	}

	return &dto.PaymentIntentResponse{
		ID:           intent.ID,
		Object:       string(intent.Object),
		ClientSecret: intent.ClientSecret,
		PublicKey:    s.cfg.StripePublicKey,
		Amount:       intent.Amount,
		Currency:     string(intent.Currency),
	}, nil
}

// ConfirmIntent confirms a previously created intent by id.
func (s *PaymentService) ConfirmIntent(intentID string) (*dto.PaymentIntentResponse, error) {
	intent, err := paymentintent.Confirm(intentID, &stripe.PaymentIntentConfirmParams{})
	if err != nil {
		return nil, wrapStripeError(err)
	}

	return &dto.PaymentIntentResponse{
		ID:           intent.ID,
		Object:       string(intent.Object),
		ClientSecret: intent.ClientSecret,
		PublicKey:    s.cfg.StripePublicKey,
		Amount:       intent.Amount,
		Currency:     string(intent.Currency),
	}, nil
}

// HandleWebhook ingests one provider delivery. The signature is verified
// when a webhook secret is configured. Deliveries are idempotent on
// (type, payment_intent): a redelivery fills only still-unset fields, and a
// payment_intent.succeeded stamps the payer's subscription window — all in
// one transaction. A payload whose object is not "event" is a no-op.
func (s *PaymentService) HandleWebhook(body []byte, signature string) error {
	if s.cfg.StripeWebhookSecret != "" {
		if err := webhook.ValidatePayload(body, signature, s.cfg.StripeWebhookSecret); err != nil {
			return fmt.Errorf("%w: %s", ErrBadSignature, err)
		}
	}

	var payload dto.WebhookPayload
	if err := json.Unmarshal(body, &payload); err != nil {
		return fmt.Errorf("malformed webhook payload: %w", err)
	}
	if payload.Object != "event" || payload.Data.Object.ID == "" {
		return nil
	}

	eventType := payload.Type
	if eventType == "" {
		eventType = models.PaymentEventUnhandled
	}

	return s.db.Transaction(func(tx *gorm.DB) error {
		var record models.PaymentEvent
		err := tx.
			Where("type = ? AND payment_intent = ?", eventType, payload.Data.Object.ID).
			First(&record).Error
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			record = models.PaymentEvent{
				PaymentIntent: payload.Data.Object.ID,
				Type:          eventType,
				Currency:      payload.Data.Object.Currency,
				Response:      body,
			}
			if payload.Data.Object.Amount != 0 {
				amount := payload.Data.Object.Amount
				record.Amount = &amount
			}
			fillEventRefs(&record, &payload)
			if err := tx.Create(&record).Error; err != nil {
				return err
			}
		case err != nil:
			return err
		default:
			if err := mergeUnsetFields(tx, &record, &payload, body); err != nil {
				return err
			}
		}

		if eventType == models.PaymentIntentSucceeded {
			return s.stampSubscription(tx, &record)
		}
		return nil
	})
}

// fillEventRefs parses the metadata ids, silently skipping values that are
// not UUIDs.
func fillEventRefs(record *models.PaymentEvent, payload *dto.WebhookPayload) {
	if id, err := uuid.Parse(payload.Data.Object.Metadata.User); err == nil {
		record.UserID = &id
	}
	if id, err := uuid.Parse(payload.Data.Object.Metadata.PaymentPlan); err == nil {
		record.PaymentPlanID = &id
	}
}

// mergeUnsetFields updates only fields the first delivery left empty;
// previously recorded values are never overwritten.
func mergeUnsetFields(tx *gorm.DB, record *models.PaymentEvent, payload *dto.WebhookPayload, body []byte) error {
	updates := map[string]interface{}{}

	if record.UserID == nil {
		if id, err := uuid.Parse(payload.Data.Object.Metadata.User); err == nil {
			updates["user_id"] = id
			record.UserID = &id
		}
	}
	if record.PaymentPlanID == nil {
		if id, err := uuid.Parse(payload.Data.Object.Metadata.PaymentPlan); err == nil {
			updates["payment_plan_id"] = id
			record.PaymentPlanID = &id
		}
	}
	if record.Amount == nil && payload.Data.Object.Amount != 0 {
		amount := payload.Data.Object.Amount
		updates["amount"] = amount
		record.Amount = &amount
	}
	if record.Currency == "" && payload.Data.Object.Currency != "" {
		updates["currency"] = payload.Data.Object.Currency
		record.Currency = payload.Data.Object.Currency
	}
	if len(record.Response) == 0 {
		updates["response"] = body
	}

	if len(updates) == 0 {
		return nil
	}
	return tx.Model(record).Updates(updates).Error
}

// stampSubscription attaches the paid plan to the payer and opens the
// subscription window for the plan's duration in days.
func (s *PaymentService) stampSubscription(tx *gorm.DB, record *models.PaymentEvent) error {
	if record.UserID == nil || record.PaymentPlanID == nil {
		return nil
	}

	var plan models.PaymentPlan
	if err := tx.First(&plan, "id = ?", *record.PaymentPlanID).Error; err != nil {
		return err
	}

	now := time.Now()
	return tx.Model(&models.User{}).
		Where("id = ?", *record.UserID).
		Updates(map[string]interface{}{
			"payment_plan_id":            plan.ID,
			"payment_plan_subscribed_at": now,
			"payment_plan_expires_at":    now.AddDate(0, 0, plan.Duration),
		}).Error
}

func wrapStripeError(err error) error {
	var stripeErr *stripe.Error
	if errors.As(err, &stripeErr) {
		return fmt.Errorf("%w: %s", ErrProviderRejected, stripeErr.Msg)
	}
	return err
}

func applyPlanWrite(plan *models.PaymentPlan, req *dto.PaymentPlanWriteRequest) {
	if req.Amount != nil {
		plan.Amount = *req.Amount
	}
	if req.Duration != nil {
		plan.Duration = *req.Duration
	}
	if req.Currency != nil {
		plan.Currency = *req.Currency
	}
	if req.IsActive != nil {
		plan.IsActive = *req.IsActive
	}
}
