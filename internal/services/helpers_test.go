package services_test

import (
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/vivaha-app/backend/internal/config"
	"github.com/vivaha-app/backend/internal/models"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

const testPassword = "password123"

// setup in-memory DB
func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	database, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		NowFunc: func() time.Time { return time.Now().UTC().Truncate(time.Millisecond) },
	})
	if err != nil {
		t.Fatalf("failed to open sqlite: %v", err)
	}
	err = database.AutoMigrate(
		&models.User{},
		&models.Sentiment{},
		&models.ProfileView{},
		&models.Event{},
		&models.UserEvent{},
		&models.Notification{},
		&models.PaymentPlan{},
		&models.PaymentEvent{},
		&models.OTP{},
		&models.RefreshToken{},
		&models.ActivationToken{},
	)
	if err != nil {
		t.Fatalf("failed to migrate: %v", err)
	}
	return database
}

func testConfig() *config.Config {
	return &config.Config{
		JWTSecret:             "test-secret",
		JWTAccessExpiry:       15 * time.Minute,
		JWTRefreshExpiry:      168 * time.Hour,
		OTPLength:             6,
		OTPExpiresAfter:       10 * time.Minute,
		TrialPeriodDays:       14,
		ActivationBaseURL:     "http://localhost:8080",
		ActivationTokenExpiry: 72 * time.Hour,
		MediaDir:              "media",
	}
}

type sentMail struct {
	To      string
	Subject string
	Body    string
}

// fakeMailer records outgoing mail; set fail to simulate delivery errors.
type fakeMailer struct {
	sent []sentMail
	fail bool
}

func (m *fakeMailer) Send(to, subject, body string) error {
	if m.fail {
		return errors.New("smtp unreachable")
	}
	m.sent = append(m.sent, sentMail{To: to, Subject: subject, Body: body})
	return nil
}

func createTestUser(t *testing.T, db *gorm.DB, username string, active bool) *models.User {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(testPassword), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("failed to hash password: %v", err)
	}
	user := &models.User{
		Username:  username,
		Email:     username + "@example.com",
		Password:  string(hash),
		FirstName: "Test",
		LastName:  username,
		IsActive:  active,
	}
	if err := db.Create(user).Error; err != nil {
		t.Fatalf("failed to create user %s: %v", username, err)
	}
	return user
}

func createStaffUser(t *testing.T, db *gorm.DB, username string) *models.User {
	t.Helper()
	user := createTestUser(t, db, username, true)
	if err := db.Model(user).Update("is_staff", true).Error; err != nil {
		t.Fatalf("failed to flag staff: %v", err)
	}
	user.IsStaff = true
	return user
}

func createTestEvent(t *testing.T, db *gorm.DB, creator uuid.UUID, title string, start, end time.Time) *models.Event {
	t.Helper()
	event := &models.Event{
		Title:       title,
		StartDate:   start,
		EndDate:     end,
		IsActive:    true,
		CreatedByID: creator,
	}
	if err := db.Create(event).Error; err != nil {
		t.Fatalf("failed to create event %s: %v", title, err)
	}
	return event
}
