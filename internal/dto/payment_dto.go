package dto

import "github.com/google/uuid"

type PaymentPlanWriteRequest struct {
	Title    string  `json:"title"`
	Amount   *int64  `json:"amount"`
	Duration *int    `json:"duration"`
	Currency *string `json:"currency"`
	IsActive *bool   `json:"is_active"`
}

type CreatePaymentIntentRequest struct {
	PaymentPlan uuid.UUID `json:"payment_plan"`
}

type ConfirmPaymentIntentRequest struct {
	PaymentIntentID string `json:"payment_intent_id"`
}

type PaymentIntentResponse struct {
	ID           string `json:"id"`
	Object       string `json:"object"`
	ClientSecret string `json:"client_secret"`
	PublicKey    string `json:"public_key"`
	Amount       int64  `json:"amount"`
	Currency     string `json:"currency"`
}

// WebhookPayload mirrors the provider's event envelope:
// {object: "event", type, data: {object: {id, amount, currency, metadata}}}.
type WebhookPayload struct {
	Object string `json:"object"`
	Type   string `json:"type"`
	Data   struct {
		Object struct {
			ID       string `json:"id"`
			Amount   int64  `json:"amount"`
			Currency string `json:"currency"`
			Metadata struct {
				User        string `json:"user"`
				PaymentPlan string `json:"payment_plan"`
			} `json:"metadata"`
		} `json:"object"`
	} `json:"data"`
}
