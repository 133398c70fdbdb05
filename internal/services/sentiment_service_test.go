package services_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vivaha-app/backend/internal/dto"
	"github.com/vivaha-app/backend/internal/models"
	"github.com/vivaha-app/backend/internal/services"
	"gorm.io/gorm"
)

func newSentimentService(db *gorm.DB) *services.SentimentService {
	return services.NewSentimentService(db, services.NewNotificationService(db))
}

func TestUpsertSentimentCreatesSingleRow(t *testing.T) {
	db := setupTestDB(t)
	svc := newSentimentService(db)
	alice := createTestUser(t, db, "alice", true)
	bob := createTestUser(t, db, "bob", true)

	first, err := svc.Upsert(alice.ID, &dto.SentimentWriteRequest{
		SentimentTo: bob.ID, Sentiment: models.SentimentLike,
	})
	require.NoError(t, err)

	// a second write for the same ordered pair updates in place
	second, err := svc.Upsert(alice.ID, &dto.SentimentWriteRequest{
		SentimentTo: bob.ID, Sentiment: models.SentimentDislike,
	})
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, models.SentimentDislike, second.Sentiment)

	var count int64
	db.Model(&models.Sentiment{}).Where("from_id = ? AND to_id = ?", alice.ID, bob.ID).Count(&count)
	assert.EqualValues(t, 1, count)
}

func TestUpsertSentimentReverseEdgeIsDistinct(t *testing.T) {
	db := setupTestDB(t)
	svc := newSentimentService(db)
	alice := createTestUser(t, db, "alice", true)
	bob := createTestUser(t, db, "bob", true)

	_, err := svc.Upsert(alice.ID, &dto.SentimentWriteRequest{
		SentimentTo: bob.ID, Sentiment: models.SentimentLike,
	})
	require.NoError(t, err)
	_, err = svc.Upsert(bob.ID, &dto.SentimentWriteRequest{
		SentimentTo: alice.ID, Sentiment: models.SentimentLike,
	})
	require.NoError(t, err)

	var count int64
	db.Model(&models.Sentiment{}).Count(&count)
	assert.EqualValues(t, 2, count)
}

func TestUpsertSentimentValidation(t *testing.T) {
	db := setupTestDB(t)
	svc := newSentimentService(db)
	alice := createTestUser(t, db, "alice", true)
	bob := createTestUser(t, db, "bob", true)

	_, err := svc.Upsert(alice.ID, &dto.SentimentWriteRequest{
		SentimentTo: bob.ID, Sentiment: "X",
	})
	assert.ErrorIs(t, err, services.ErrInvalidSentiment)

	_, err = svc.Upsert(alice.ID, &dto.SentimentWriteRequest{
		SentimentTo: alice.ID, Sentiment: models.SentimentLike,
	})
	assert.ErrorIs(t, err, services.ErrSelfSentiment)
}

func TestSentimentNotifiesTarget(t *testing.T) {
	db := setupTestDB(t)
	svc := newSentimentService(db)
	alice := createTestUser(t, db, "alice", true)
	bob := createTestUser(t, db, "bob", true)
	carol := createTestUser(t, db, "carol", true)

	edge, err := svc.Upsert(alice.ID, &dto.SentimentWriteRequest{
		SentimentTo: bob.ID, Sentiment: models.SentimentLike,
	})
	require.NoError(t, err)

	var n models.Notification
	require.NoError(t, db.First(&n, "user_id = ?", bob.ID).Error)
	assert.Equal(t, models.NotificationSentiment, n.ContentType)
	assert.Equal(t, edge.ID, n.ObjectID)

	// a NEUTRAL edge stays silent
	_, err = svc.Upsert(alice.ID, &dto.SentimentWriteRequest{
		SentimentTo: carol.ID, Sentiment: models.SentimentNeutral,
	})
	require.NoError(t, err)
	var count int64
	db.Model(&models.Notification{}).Where("user_id = ?", carol.ID).Count(&count)
	assert.Zero(t, count)
}

func TestSentimentUpdateOwnerOnly(t *testing.T) {
	db := setupTestDB(t)
	svc := newSentimentService(db)
	alice := createTestUser(t, db, "alice", true)
	bob := createTestUser(t, db, "bob", true)

	edge, err := svc.Upsert(alice.ID, &dto.SentimentWriteRequest{
		SentimentTo: bob.ID, Sentiment: models.SentimentLike,
	})
	require.NoError(t, err)

	_, err = svc.Update(edge.ID, bob.ID, models.SentimentDislike)
	assert.ErrorIs(t, err, services.ErrSentimentForbidden)

	updated, err := svc.Update(edge.ID, alice.ID, models.SentimentDislike)
	require.NoError(t, err)
	assert.Equal(t, models.SentimentDislike, updated.Sentiment)
}

func TestNotificationResolvesContentObject(t *testing.T) {
	db := setupTestDB(t)
	notifications := services.NewNotificationService(db)
	svc := services.NewSentimentService(db, notifications)
	alice := createTestUser(t, db, "alice", true)
	bob := createTestUser(t, db, "bob", true)

	edge, err := svc.Upsert(alice.ID, &dto.SentimentWriteRequest{
		SentimentTo: bob.ID, Sentiment: models.SentimentLike,
	})
	require.NoError(t, err)

	results, _, err := notifications.List(bob.ID, 10, "")
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, models.NotificationSentiment, results[0].ContentType)

	resolved, ok := results[0].ContentObject.(models.Sentiment)
	require.True(t, ok, "content object should resolve to a sentiment")
	assert.Equal(t, edge.ID, resolved.ID)
}
