package services_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vivaha-app/backend/internal/models"
	"github.com/vivaha-app/backend/internal/services"
	"gorm.io/gorm"
)

func newProfileViewService(db *gorm.DB) *services.ProfileViewService {
	return services.NewProfileViewService(db, services.NewNotificationService(db))
}

func TestRecordViewIsAppendOnly(t *testing.T) {
	db := setupTestDB(t)
	svc := newProfileViewService(db)
	alice := createTestUser(t, db, "alice", true)
	bob := createTestUser(t, db, "bob", true)

	_, err := svc.Record(alice.ID, bob.ID)
	require.NoError(t, err)
	_, err = svc.Record(alice.ID, bob.ID)
	require.NoError(t, err)

	// repeat views create repeat rows
	var count int64
	db.Model(&models.ProfileView{}).
		Where("viewer_id = ? AND viewee_id = ?", alice.ID, bob.ID).
		Count(&count)
	assert.EqualValues(t, 2, count)
}

func TestRecordViewNotifiesViewee(t *testing.T) {
	db := setupTestDB(t)
	svc := newProfileViewService(db)
	alice := createTestUser(t, db, "alice", true)
	bob := createTestUser(t, db, "bob", true)

	view, err := svc.Record(alice.ID, bob.ID)
	require.NoError(t, err)

	var n models.Notification
	require.NoError(t, db.First(&n, "user_id = ?", bob.ID).Error)
	assert.Equal(t, models.NotificationProfileView, n.ContentType)
	assert.Equal(t, view.ID, n.ObjectID)
}

func TestRecordViewRejectsSelfAndUnknown(t *testing.T) {
	db := setupTestDB(t)
	svc := newProfileViewService(db)
	alice := createTestUser(t, db, "alice", true)
	ghost := createTestUser(t, db, "ghost", true)
	require.NoError(t, db.Delete(ghost).Error)

	_, err := svc.Record(alice.ID, alice.ID)
	assert.ErrorIs(t, err, services.ErrSelfProfileView)

	_, err = svc.Record(alice.ID, ghost.ID)
	assert.ErrorIs(t, err, services.ErrUserNotFound)
}

func TestListViewsWindow(t *testing.T) {
	db := setupTestDB(t)
	svc := newProfileViewService(db)
	alice := createTestUser(t, db, "alice", true)
	bob := createTestUser(t, db, "bob", true)

	now := time.Now().UTC().Truncate(time.Second)
	recordView(t, db, bob, alice, now.Add(-2*time.Hour))
	recordView(t, db, bob, alice, now.Add(-50*time.Hour))

	start := now.Add(-24 * time.Hour)
	rows, _, err := svc.List(alice.ID, &start, &now, 10, "")
	require.NoError(t, err)
	assert.Len(t, rows, 1)

	rows, _, err = svc.List(alice.ID, nil, nil, 10, "")
	require.NoError(t, err)
	assert.Len(t, rows, 2)
}
