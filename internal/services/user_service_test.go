package services_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vivaha-app/backend/internal/dto"
	"github.com/vivaha-app/backend/internal/models"
	"github.com/vivaha-app/backend/internal/services"
	"gorm.io/gorm"
)

func newUserService(t *testing.T, db *gorm.DB, mail *fakeMailer) *services.UserService {
	t.Helper()
	return services.NewUserService(db, testConfig(), mail, nil)
}

func TestCreateUserStartsInactiveWithTrial(t *testing.T) {
	db := setupTestDB(t)
	mail := &fakeMailer{}
	svc := newUserService(t, db, mail)

	user, err := svc.Create(&dto.UserWriteRequest{
		Username: "alice", Email: "alice@example.com", Password: testPassword,
	})
	require.NoError(t, err)
	assert.False(t, user.IsActive)

	wantExpiry := time.Now().AddDate(0, 0, 14)
	assert.WithinDuration(t, wantExpiry, user.PaymentPlanExpiresAt, time.Minute)

	require.Len(t, mail.sent, 1)
	assert.Contains(t, mail.sent[0].Body, "token=")

	var tokens int64
	db.Model(&models.ActivationToken{}).Where("user_id = ?", user.ID).Count(&tokens)
	assert.EqualValues(t, 1, tokens)
}

func TestCreateUserRejectsDuplicates(t *testing.T) {
	db := setupTestDB(t)
	svc := newUserService(t, db, &fakeMailer{})
	createTestUser(t, db, "alice", true)

	_, err := svc.Create(&dto.UserWriteRequest{
		Username: "alice", Email: "other@example.com", Password: testPassword,
	})
	assert.ErrorIs(t, err, services.ErrUsernameTaken)

	_, err = svc.Create(&dto.UserWriteRequest{
		Username: "bob", Email: "alice@example.com", Password: testPassword,
	})
	assert.ErrorIs(t, err, services.ErrEmailTaken)
}

func TestCreateUserSurvivesActivationDeliveryFailure(t *testing.T) {
	db := setupTestDB(t)
	svc := newUserService(t, db, &fakeMailer{fail: true})

	user, err := svc.Create(&dto.UserWriteRequest{
		Username: "alice", Email: "alice@example.com", Password: testPassword,
	})
	assert.ErrorIs(t, err, services.ErrActivationDeliveryFailed)
	require.NotNil(t, user)

	var count int64
	db.Model(&models.User{}).Where("username = ?", "alice").Count(&count)
	assert.EqualValues(t, 1, count)
}

func TestActivateIsSingleUse(t *testing.T) {
	db := setupTestDB(t)
	mail := &fakeMailer{}
	svc := newUserService(t, db, mail)

	user, err := svc.Create(&dto.UserWriteRequest{
		Username: "alice", Email: "alice@example.com", Password: testPassword,
	})
	require.NoError(t, err)

	token := extractToken(t, mail.sent[0].Body)
	require.NoError(t, svc.Activate(token))

	var activated models.User
	require.NoError(t, db.First(&activated, "id = ?", user.ID).Error)
	assert.True(t, activated.IsActive)

	// the consumed token cannot re-activate, and an already-active account
	// is a distinct failure
	err = svc.Activate(token)
	assert.Error(t, err)
}

func TestActivateInvalidToken(t *testing.T) {
	db := setupTestDB(t)
	svc := newUserService(t, db, &fakeMailer{})

	err := svc.Activate("not-a-real-token")
	assert.ErrorIs(t, err, services.ErrInvalidActivation)
}

// Direction must never be swapped: A rating B shows up in A's outgoing
// listing and B's incoming listing only.
func TestSentimentDirectionIsNeverSwapped(t *testing.T) {
	db := setupTestDB(t)
	svc := newUserService(t, db, &fakeMailer{})
	alice := createTestUser(t, db, "alice", true)
	bob := createTestUser(t, db, "bob", true)

	edge := models.Sentiment{FromID: alice.ID, ToID: bob.ID, Sentiment: models.SentimentLike}
	require.NoError(t, db.Create(&edge).Error)

	from, err := svc.SentimentsFrom(alice.ID, "")
	require.NoError(t, err)
	require.Len(t, from, 1)
	assert.Equal(t, bob.ID, from[0].ID)
	assert.Equal(t, models.SentimentLike, from[0].Sentiment)

	// Bob rated nobody, so his outgoing listing is empty even though Alice
	// rated him.
	fromBob, err := svc.SentimentsFrom(bob.ID, "")
	require.NoError(t, err)
	assert.Empty(t, fromBob)

	toBob, err := svc.SentimentsTo(bob.ID, "")
	require.NoError(t, err)
	require.Len(t, toBob, 1)
	assert.Equal(t, alice.ID, toBob[0].ID)

	toAlice, err := svc.SentimentsTo(alice.ID, "")
	require.NoError(t, err)
	assert.Empty(t, toAlice)
}

func TestSentimentListingsExcludeNeutralAndFilter(t *testing.T) {
	db := setupTestDB(t)
	svc := newUserService(t, db, &fakeMailer{})
	alice := createTestUser(t, db, "alice", true)
	bob := createTestUser(t, db, "bob", true)
	carol := createTestUser(t, db, "carol", true)
	dave := createTestUser(t, db, "dave", true)

	require.NoError(t, db.Create(&models.Sentiment{FromID: alice.ID, ToID: bob.ID, Sentiment: models.SentimentLike}).Error)
	require.NoError(t, db.Create(&models.Sentiment{FromID: alice.ID, ToID: carol.ID, Sentiment: models.SentimentDislike}).Error)
	require.NoError(t, db.Create(&models.Sentiment{FromID: alice.ID, ToID: dave.ID, Sentiment: models.SentimentNeutral}).Error)

	all, err := svc.SentimentsFrom(alice.ID, "")
	require.NoError(t, err)
	assert.Len(t, all, 2)

	likes, err := svc.SentimentsFrom(alice.ID, models.SentimentLike)
	require.NoError(t, err)
	require.Len(t, likes, 1)
	assert.Equal(t, bob.ID, likes[0].ID)
}

func TestSentimentCountsEnrichment(t *testing.T) {
	db := setupTestDB(t)
	svc := newUserService(t, db, &fakeMailer{})
	alice := createTestUser(t, db, "alice", true)
	bob := createTestUser(t, db, "bob", true)
	carol := createTestUser(t, db, "carol", true)

	// two likes and one dislike toward bob
	require.NoError(t, db.Create(&models.Sentiment{FromID: alice.ID, ToID: bob.ID, Sentiment: models.SentimentLike}).Error)
	require.NoError(t, db.Create(&models.Sentiment{FromID: carol.ID, ToID: bob.ID, Sentiment: models.SentimentLike}).Error)
	require.NoError(t, db.Create(&models.Sentiment{FromID: bob.ID, ToID: alice.ID, Sentiment: models.SentimentDislike}).Error)

	toBob, err := svc.SentimentsTo(bob.ID, "")
	require.NoError(t, err)
	require.Len(t, toBob, 2)
	for _, row := range toBob {
		if row.ID == alice.ID {
			assert.EqualValues(t, 0, row.ProfileLikes)
			assert.EqualValues(t, 1, row.ProfileDislikes)
		}
	}

	user, err := svc.Get(bob.ID)
	require.NoError(t, err)
	detail, err := svc.Detail(user)
	require.NoError(t, err)
	assert.EqualValues(t, 2, detail.ProfileLikes)
	assert.EqualValues(t, 0, detail.ProfileDislikes)
}

func recordView(t *testing.T, db *gorm.DB, viewer, viewee *models.User, at time.Time) {
	t.Helper()
	view := models.ProfileView{ViewerID: viewer.ID, VieweeID: viewee.ID}
	require.NoError(t, db.Create(&view).Error)
	require.NoError(t, db.Model(&view).Update("created_at", at).Error)
}

func TestVisitedByWindowedAnnotations(t *testing.T) {
	db := setupTestDB(t)
	svc := newUserService(t, db, &fakeMailer{})
	alice := createTestUser(t, db, "alice", true)
	bob := createTestUser(t, db, "bob", true)
	carol := createTestUser(t, db, "carol", true)
	dave := createTestUser(t, db, "dave", true)

	now := time.Now().UTC().Truncate(time.Second)
	// bob viewed alice three times, one outside the window
	recordView(t, db, bob, alice, now.Add(-3*time.Hour))
	recordView(t, db, bob, alice, now.Add(-2*time.Hour))
	recordView(t, db, bob, alice, now.Add(-30*time.Hour))
	// carol viewed once, inside
	recordView(t, db, carol, alice, now.Add(-1*time.Hour))
	// dave viewed only outside the window
	recordView(t, db, dave, alice, now.Add(-40*time.Hour))

	start := now.Add(-24 * time.Hour)
	results, err := svc.VisitedBy(alice.ID, &start, &now)
	require.NoError(t, err)
	require.Len(t, results, 2)

	// ordered by last_viewed DESC: carol (1h ago) before bob (2h ago)
	assert.Equal(t, carol.ID, results[0].ID)
	assert.EqualValues(t, 1, results[0].ViewCount)
	assert.Equal(t, bob.ID, results[1].ID)
	assert.EqualValues(t, 2, results[1].ViewCount)

	require.True(t, results[1].LastViewed.Valid)
	assert.WithinDuration(t, now.Add(-2*time.Hour), results[1].LastViewed.Time, time.Second)
}

func TestVisitedByUnwindowedCountsEverything(t *testing.T) {
	db := setupTestDB(t)
	svc := newUserService(t, db, &fakeMailer{})
	alice := createTestUser(t, db, "alice", true)
	bob := createTestUser(t, db, "bob", true)

	now := time.Now().UTC().Truncate(time.Second)
	recordView(t, db, bob, alice, now.Add(-2*time.Hour))
	recordView(t, db, bob, alice, now.Add(-50*time.Hour))

	results, err := svc.VisitedBy(alice.ID, nil, nil)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.EqualValues(t, 2, results[0].ViewCount)
}

func TestVisitedToMirrorsDirection(t *testing.T) {
	db := setupTestDB(t)
	svc := newUserService(t, db, &fakeMailer{})
	alice := createTestUser(t, db, "alice", true)
	bob := createTestUser(t, db, "bob", true)

	now := time.Now().UTC().Truncate(time.Second)
	recordView(t, db, alice, bob, now.Add(-time.Hour))

	visited, err := svc.VisitedTo(alice.ID, nil, nil)
	require.NoError(t, err)
	require.Len(t, visited, 1)
	assert.Equal(t, bob.ID, visited[0].ID)

	// bob visited nobody
	visited, err = svc.VisitedTo(bob.ID, nil, nil)
	require.NoError(t, err)
	assert.Empty(t, visited)
}

func TestListUsersPaginates(t *testing.T) {
	db := setupTestDB(t)
	svc := newUserService(t, db, &fakeMailer{})
	for _, name := range []string{"alice", "bob", "carol"} {
		createTestUser(t, db, name, true)
	}

	page1, next, err := svc.List(2, "")
	require.NoError(t, err)
	assert.Len(t, page1, 2)
	require.NotEmpty(t, next)

	page2, next2, err := svc.List(2, next)
	require.NoError(t, err)
	assert.Len(t, page2, 1)
	assert.Empty(t, next2)

	seen := map[string]bool{}
	for _, u := range append(page1, page2...) {
		assert.False(t, seen[u.Username], "user %s returned twice", u.Username)
		seen[u.Username] = true
	}
}

func TestUpdateUserRehashesPassword(t *testing.T) {
	db := setupTestDB(t)
	svc := newUserService(t, db, &fakeMailer{})
	user := createTestUser(t, db, "alice", true)

	city := "Mumbai"
	updated, err := svc.Update(user.ID, &dto.UserWriteRequest{
		Password: "new-password-42", City: &city,
	})
	require.NoError(t, err)
	assert.Equal(t, "Mumbai", updated.City)
	assert.NotEqual(t, user.Password, updated.Password)
	assert.NotEqual(t, "new-password-42", updated.Password)
}

func extractToken(t *testing.T, body string) string {
	t.Helper()
	const marker = "token="
	idx := -1
	for i := 0; i+len(marker) <= len(body); i++ {
		if body[i:i+len(marker)] == marker {
			idx = i + len(marker)
			break
		}
	}
	require.GreaterOrEqual(t, idx, 0, "activation link missing from mail body")
	end := idx
	for end < len(body) && body[end] != '\n' && body[end] != ' ' {
		end++
	}
	return body[idx:end]
}
