package services_test

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vivaha-app/backend/internal/models"
	"github.com/vivaha-app/backend/internal/services"
	"gorm.io/gorm"
)

func createTestPlan(t *testing.T, db *gorm.DB, title string, amount int64, duration int) *models.PaymentPlan {
	t.Helper()
	plan := &models.PaymentPlan{
		Title: title, Amount: amount, Duration: duration, Currency: "usd", IsActive: true,
	}
	require.NoError(t, db.Create(plan).Error)
	return plan
}

func webhookBody(t *testing.T, object, eventType, intentID string, amount int64, user, plan string) []byte {
	t.Helper()
	payload := map[string]interface{}{
		"object": object,
		"type":   eventType,
		"data": map[string]interface{}{
			"object": map[string]interface{}{
				"id":       intentID,
				"amount":   amount,
				"currency": "usd",
				"metadata": map[string]string{
					"user":         user,
					"payment_plan": plan,
				},
			},
		},
	}
	body, err := json.Marshal(payload)
	require.NoError(t, err)
	return body
}

func TestWebhookIdempotentOnTypeAndIntent(t *testing.T) {
	db := setupTestDB(t)
	svc := services.NewPaymentService(db, testConfig())
	alice := createTestUser(t, db, "alice", true)
	plan := createTestPlan(t, db, "gold", 1000, 30)

	body := webhookBody(t, "event", models.PaymentIntentCreated, "pi_123", 1000,
		alice.ID.String(), plan.ID.String())

	require.NoError(t, svc.HandleWebhook(body, ""))
	require.NoError(t, svc.HandleWebhook(body, ""))

	var rows []models.PaymentEvent
	require.NoError(t, db.Find(&rows).Error)
	require.Len(t, rows, 1)
	assert.Equal(t, "pi_123", rows[0].PaymentIntent)
	assert.Equal(t, models.PaymentIntentCreated, rows[0].Type)
}

func TestWebhookRedeliveryNeverOverwrites(t *testing.T) {
	db := setupTestDB(t)
	svc := services.NewPaymentService(db, testConfig())
	alice := createTestUser(t, db, "alice", true)
	plan := createTestPlan(t, db, "gold", 1000, 30)

	// first delivery carries no attribution
	first := webhookBody(t, "event", models.PaymentIntentCreated, "pi_123", 0, "", "")
	require.NoError(t, svc.HandleWebhook(first, ""))

	var record models.PaymentEvent
	require.NoError(t, db.First(&record, "payment_intent = ?", "pi_123").Error)
	assert.Nil(t, record.UserID)
	assert.Nil(t, record.Amount)

	// the redelivery fills the still-unset fields
	second := webhookBody(t, "event", models.PaymentIntentCreated, "pi_123", 1000,
		alice.ID.String(), plan.ID.String())
	require.NoError(t, svc.HandleWebhook(second, ""))

	require.NoError(t, db.First(&record, "payment_intent = ?", "pi_123").Error)
	require.NotNil(t, record.UserID)
	assert.Equal(t, alice.ID, *record.UserID)
	require.NotNil(t, record.Amount)
	assert.EqualValues(t, 1000, *record.Amount)

	// a third delivery with different attribution changes nothing
	bob := createTestUser(t, db, "bob", true)
	third := webhookBody(t, "event", models.PaymentIntentCreated, "pi_123", 2000,
		bob.ID.String(), plan.ID.String())
	require.NoError(t, svc.HandleWebhook(third, ""))

	require.NoError(t, db.First(&record, "payment_intent = ?", "pi_123").Error)
	assert.Equal(t, alice.ID, *record.UserID)
	assert.EqualValues(t, 1000, *record.Amount)
}

func TestWebhookSucceededStampsSubscription(t *testing.T) {
	db := setupTestDB(t)
	svc := services.NewPaymentService(db, testConfig())
	alice := createTestUser(t, db, "alice", true)
	plan := createTestPlan(t, db, "gold", 1000, 30)

	body := webhookBody(t, "event", models.PaymentIntentSucceeded, "pi_456", 1000,
		alice.ID.String(), plan.ID.String())
	require.NoError(t, svc.HandleWebhook(body, ""))

	var updated models.User
	require.NoError(t, db.First(&updated, "id = ?", alice.ID).Error)
	require.NotNil(t, updated.PaymentPlanID)
	assert.Equal(t, plan.ID, *updated.PaymentPlanID)
	assert.WithinDuration(t, time.Now().AddDate(0, 0, 30), updated.PaymentPlanExpiresAt, time.Minute)
	assert.False(t, updated.IsPaymentPlanExpired(time.Now()))
}

func TestWebhookNonEventObjectIsNoOp(t *testing.T) {
	db := setupTestDB(t)
	svc := services.NewPaymentService(db, testConfig())

	body := webhookBody(t, "charge", models.PaymentIntentSucceeded, "pi_789", 1000, "", "")
	require.NoError(t, svc.HandleWebhook(body, ""))

	var count int64
	db.Model(&models.PaymentEvent{}).Count(&count)
	assert.Zero(t, count)
}

func TestWebhookDistinctTypesForSameIntent(t *testing.T) {
	db := setupTestDB(t)
	svc := services.NewPaymentService(db, testConfig())

	created := webhookBody(t, "event", models.PaymentIntentCreated, "pi_123", 1000, "", "")
	succeeded := webhookBody(t, "event", models.PaymentIntentSucceeded, "pi_123", 1000, "", "")
	require.NoError(t, svc.HandleWebhook(created, ""))
	require.NoError(t, svc.HandleWebhook(succeeded, ""))

	var count int64
	db.Model(&models.PaymentEvent{}).Where("payment_intent = ?", "pi_123").Count(&count)
	assert.EqualValues(t, 2, count)
}

func TestPlansListsActiveOrderedByAmount(t *testing.T) {
	db := setupTestDB(t)
	svc := services.NewPaymentService(db, testConfig())

	createTestPlan(t, db, "gold", 3000, 90)
	createTestPlan(t, db, "silver", 1000, 30)
	retired := createTestPlan(t, db, "retired", 500, 30)
	require.NoError(t, db.Model(retired).Update("is_active", false).Error)

	plans, err := svc.Plans()
	require.NoError(t, err)
	require.Len(t, plans, 2)
	assert.Equal(t, "silver", plans[0].Title)
	assert.Equal(t, "gold", plans[1].Title)
}
