package services_test

import (
	"regexp"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vivaha-app/backend/internal/dto"
	"github.com/vivaha-app/backend/internal/models"
	"github.com/vivaha-app/backend/internal/services"
)

func TestRequestOTPStoresCodeAndSendsMail(t *testing.T) {
	db := setupTestDB(t)
	mail := &fakeMailer{}
	svc := services.NewAuthService(db, testConfig(), mail)
	user := createTestUser(t, db, "alice", true)

	err := svc.RequestOTP(&dto.AuthenticateRequest{Username: "alice", Password: testPassword})
	require.NoError(t, err)

	require.Len(t, mail.sent, 1)
	assert.Equal(t, user.Email, mail.sent[0].To)

	var otp models.OTP
	require.NoError(t, db.First(&otp, "user_id = ?", user.ID).Error)
	// letters block followed by digits block, fixed total length
	assert.Regexp(t, regexp.MustCompile(`^[A-Z]+[0-9]*$`), otp.Token)
	assert.Len(t, otp.Token, 6)
	assert.Contains(t, mail.sent[0].Body, otp.Token)
}

func TestRequestOTPUniformFailures(t *testing.T) {
	db := setupTestDB(t)
	svc := services.NewAuthService(db, testConfig(), &fakeMailer{})
	createTestUser(t, db, "alice", true)
	createTestUser(t, db, "inactive", false)

	cases := []struct {
		name     string
		username string
		password string
	}{
		{"unknown user", "nobody", testPassword},
		{"wrong password", "alice", "wrong-password"},
		{"inactive account", "inactive", testPassword},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := svc.RequestOTP(&dto.AuthenticateRequest{Username: tc.username, Password: tc.password})
			assert.ErrorIs(t, err, services.ErrInvalidCredentials)
		})
	}
}

func TestRequestOTPDeliveryFailureStoresNothing(t *testing.T) {
	db := setupTestDB(t)
	svc := services.NewAuthService(db, testConfig(), &fakeMailer{fail: true})
	user := createTestUser(t, db, "alice", true)

	err := svc.RequestOTP(&dto.AuthenticateRequest{Username: "alice", Password: testPassword})
	assert.ErrorIs(t, err, services.ErrOTPDeliveryFailed)

	var count int64
	db.Model(&models.OTP{}).Where("user_id = ?", user.ID).Count(&count)
	assert.Zero(t, count)
}

func TestVerifyOTPRoundTrip(t *testing.T) {
	db := setupTestDB(t)
	svc := services.NewAuthService(db, testConfig(), &fakeMailer{})
	user := createTestUser(t, db, "alice", true)

	require.NoError(t, svc.RequestOTP(&dto.AuthenticateRequest{Username: "alice", Password: testPassword}))
	var otp models.OTP
	require.NoError(t, db.First(&otp, "user_id = ?", user.ID).Error)

	pair, err := svc.VerifyOTP(&dto.TokenGenerateRequest{Username: "alice", Token: otp.Token})
	require.NoError(t, err)
	assert.NotEmpty(t, pair.Access)
	assert.NotEmpty(t, pair.Refresh)

	var updated models.User
	require.NoError(t, db.First(&updated, "id = ?", user.ID).Error)
	assert.NotNil(t, updated.LastLogin)
}

func TestVerifyOTPStaleCodeFailsAfterNewerIssued(t *testing.T) {
	db := setupTestDB(t)
	svc := services.NewAuthService(db, testConfig(), &fakeMailer{})
	user := createTestUser(t, db, "alice", true)

	stale := models.OTP{UserID: user.ID, Token: "ABC123"}
	require.NoError(t, db.Create(&stale).Error)
	require.NoError(t, db.Model(&stale).Update("created_at", time.Now().Add(-time.Minute)).Error)
	fresh := models.OTP{UserID: user.ID, Token: "XYZ789"}
	require.NoError(t, db.Create(&fresh).Error)

	// only the latest row is checked
	_, err := svc.VerifyOTP(&dto.TokenGenerateRequest{Username: "alice", Token: "ABC123"})
	assert.ErrorIs(t, err, services.ErrInvalidCredentials)

	pair, err := svc.VerifyOTP(&dto.TokenGenerateRequest{Username: "alice", Token: "XYZ789"})
	require.NoError(t, err)
	assert.NotEmpty(t, pair.Access)
}

func TestVerifyOTPExpiredCodeFails(t *testing.T) {
	db := setupTestDB(t)
	cfg := testConfig()
	svc := services.NewAuthService(db, cfg, &fakeMailer{})
	user := createTestUser(t, db, "alice", true)

	otp := models.OTP{UserID: user.ID, Token: "ABC123"}
	require.NoError(t, db.Create(&otp).Error)
	expired := time.Now().Add(-cfg.OTPExpiresAfter - time.Minute)
	require.NoError(t, db.Model(&otp).Update("created_at", expired).Error)

	_, err := svc.VerifyOTP(&dto.TokenGenerateRequest{Username: "alice", Token: "ABC123"})
	assert.ErrorIs(t, err, services.ErrInvalidCredentials)
}

func TestVerifyOTPInactiveUserFailsUniformly(t *testing.T) {
	db := setupTestDB(t)
	svc := services.NewAuthService(db, testConfig(), &fakeMailer{})
	user := createTestUser(t, db, "alice", false)

	otp := models.OTP{UserID: user.ID, Token: "ABC123"}
	require.NoError(t, db.Create(&otp).Error)

	_, err := svc.VerifyOTP(&dto.TokenGenerateRequest{Username: "alice", Token: "ABC123"})
	assert.ErrorIs(t, err, services.ErrInvalidCredentials)
}

func TestRefreshRotatesToken(t *testing.T) {
	db := setupTestDB(t)
	svc := services.NewAuthService(db, testConfig(), &fakeMailer{})
	user := createTestUser(t, db, "alice", true)

	require.NoError(t, svc.RequestOTP(&dto.AuthenticateRequest{Username: "alice", Password: testPassword}))
	var otp models.OTP
	require.NoError(t, db.First(&otp, "user_id = ?", user.ID).Error)
	pair, err := svc.VerifyOTP(&dto.TokenGenerateRequest{Username: "alice", Token: otp.Token})
	require.NoError(t, err)

	rotated, err := svc.Refresh(&dto.RefreshRequest{Refresh: pair.Refresh})
	require.NoError(t, err)
	assert.NotEqual(t, pair.Refresh, rotated.Refresh)

	// the consumed token is revoked
	_, err = svc.Refresh(&dto.RefreshRequest{Refresh: pair.Refresh})
	assert.ErrorIs(t, err, services.ErrInvalidToken)
}
