package services

import (
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/vivaha-app/backend/internal/config"
	"github.com/vivaha-app/backend/internal/dto"
	"github.com/vivaha-app/backend/internal/facecheck"
	"github.com/vivaha-app/backend/internal/mailer"
	"github.com/vivaha-app/backend/internal/models"
	"github.com/vivaha-app/backend/internal/pagination"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

var (
	ErrUsernameTaken            = errors.New("a user with that username already exists")
	ErrEmailTaken               = errors.New("a user with that email already exists")
	ErrUserNotFound             = errors.New("user not found")
	ErrInvalidActivation        = errors.New("activation link is invalid")
	ErrAccountAlreadyActive     = errors.New("the account is already active")
	ErrActivationDeliveryFailed = errors.New("activation email delivery failed")
)

type UserService struct {
	db     *gorm.DB
	cfg    *config.Config
	mailer mailer.Mailer
	faces  *facecheck.Detector
}

func NewUserService(db *gorm.DB, cfg *config.Config, m mailer.Mailer, faces *facecheck.Detector) *UserService {
	return &UserService{db: db, cfg: cfg, mailer: m, faces: faces}
}

// Create registers an inactive account, issues an activation token and
// emails the activation link. The account is persisted even when delivery
// fails; the returned error is then ErrActivationDeliveryFailed so callers
// can surface a warning instead of silently dropping the failure.
func (s *UserService) Create(req *dto.UserWriteRequest) (*models.User, error) {
	if req.Username == "" || req.Email == "" || len(req.Password) < 8 {
		return nil, errors.New("username and email are required and password must be at least 8 characters")
	}

	var existing models.User
	if err := s.db.Where("username = ?", req.Username).First(&existing).Error; err == nil {
		return nil, ErrUsernameTaken
	}
	if err := s.db.Where("email = ?", req.Email).First(&existing).Error; err == nil {
		return nil, ErrEmailTaken
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	now := time.Now()
	user := models.User{
		Username: req.Username,
		Email:    req.Email,
		Password: string(hash),
		IsActive: false,

		PaymentPlanSubscribedAt: now,
		PaymentPlanExpiresAt:    now.AddDate(0, 0, s.cfg.TrialPeriodDays),
	}
	applyUserWrite(&user, req)

	var rawToken string
	err = s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&user).Error; err != nil {
			return fmt.Errorf("failed to create user: %w", err)
		}
		rawToken, err = s.issueActivationToken(tx, user.ID)
		return err
	})
	if err != nil {
		return nil, err
	}

	if err := s.sendActivationEmail(&user, rawToken); err != nil {
		slog.Error("activation email failed", "user_id", user.ID.String(), "error", err)
		return &user, fmt.Errorf("%w: %s", ErrActivationDeliveryFailed, err)
	}
	return &user, nil
}

func (s *UserService) issueActivationToken(tx *gorm.DB, userID uuid.UUID) (string, error) {
	raw := make([]byte, 32)
	if _, err := rand.Read(raw); err != nil {
		return "", fmt.Errorf("failed to generate activation token: %w", err)
	}
	token := base64.URLEncoding.EncodeToString(raw)

	record := models.ActivationToken{
		UserID:    userID,
		Token:     hashToken(token),
		ExpiresAt: time.Now().Add(s.cfg.ActivationTokenExpiry),
	}
	if err := tx.Create(&record).Error; err != nil {
		return "", fmt.Errorf("failed to store activation token: %w", err)
	}
	return token, nil
}

func (s *UserService) sendActivationEmail(user *models.User, token string) error {
	link := s.cfg.ActivationBaseURL + "/api/users/activate?token=" + token
	body := fmt.Sprintf("Hello %s,\n\nPlease confirm your email address by "+
		"following this link:\n\n%s\n", user.FullName(), link)
	return s.mailer.Send(user.Email, "Matrimony Account Activation Link.", body)
}

// Activate consumes a single-use activation token and flips is_active.
func (s *UserService) Activate(token string) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		var record models.ActivationToken
		if err := tx.Where("token = ?", hashToken(token)).First(&record).Error; err != nil {
			return ErrInvalidActivation
		}
		if record.UsedAt != nil || time.Now().After(record.ExpiresAt) {
			return ErrInvalidActivation
		}

		var user models.User
		if err := tx.First(&user, "id = ?", record.UserID).Error; err != nil {
			return ErrInvalidActivation
		}
		if user.IsActive {
			return ErrAccountAlreadyActive
		}

		if err := tx.Model(&user).Update("is_active", true).Error; err != nil {
			return err
		}
		now := time.Now()
		return tx.Model(&record).Update("used_at", now).Error
	})
}

func (s *UserService) Get(id uuid.UUID) (*models.User, error) {
	var user models.User
	if err := s.db.First(&user, "id = ?", id).Error; err != nil {
		return nil, ErrUserNotFound
	}
	return &user, nil
}

// List returns a cursor-paginated page of users ordered by newest first.
func (s *UserService) List(limit int, token string) ([]dto.UserBasic, string, error) {
	cursor, err := pagination.Decode(token)
	if err != nil {
		return nil, "", err
	}

	var users []models.User
	err = s.db.
		Scopes(pagination.Apply(cursor, "users", "created_at")).
		Order("created_at DESC, id DESC").
		Limit(limit).
		Find(&users).Error
	if err != nil {
		return nil, "", err
	}

	results := make([]dto.UserBasic, len(users))
	for i := range users {
		results[i] = dto.NewUserBasic(&users[i])
	}

	next := ""
	if len(users) > 0 {
		last := users[len(users)-1]
		next = pagination.NextToken(last.CreatedAt, last.ID.String(), len(users), limit)
	}
	return results, next, nil
}

// Detail builds the full profile payload with sentiment and view counters
// and the subscription projection.
func (s *UserService) Detail(user *models.User) (*dto.UserDetail, error) {
	now := time.Now()
	detail := dto.NewUserDetail(user, now)

	counts, err := s.sentimentCounts([]uuid.UUID{user.ID})
	if err != nil {
		return nil, err
	}
	detail.SentimentCounts = counts[user.ID]

	if err := s.db.Model(&models.ProfileView{}).
		Where("viewee_id = ?", user.ID).
		Distinct("viewer_id").
		Count(&detail.ProfileViewers).Error; err != nil {
		return nil, err
	}
	if err := s.db.Model(&models.ProfileView{}).
		Where("viewee_id = ?", user.ID).
		Count(&detail.ProfileViews).Error; err != nil {
		return nil, err
	}

	if user.PaymentPlanID != nil {
		var plan models.PaymentPlan
		if err := s.db.First(&plan, "id = ?", *user.PaymentPlanID).Error; err == nil {
			detail.PaymentPlanTitle = &plan.Title
		}
	}
	return &detail, nil
}

// Update applies a partial profile update. Passwords are always re-hashed;
// subscription fields are never writable here.
func (s *UserService) Update(id uuid.UUID, req *dto.UserWriteRequest) (*models.User, error) {
	var user models.User
	if err := s.db.First(&user, "id = ?", id).Error; err != nil {
		return nil, ErrUserNotFound
	}

	if req.Username != "" && req.Username != user.Username {
		var existing models.User
		if err := s.db.Where("username = ? AND id <> ?", req.Username, id).First(&existing).Error; err == nil {
			return nil, ErrUsernameTaken
		}
		user.Username = req.Username
	}
	if req.Email != "" && req.Email != user.Email {
		var existing models.User
		if err := s.db.Where("email = ? AND id <> ?", req.Email, id).First(&existing).Error; err == nil {
			return nil, ErrEmailTaken
		}
		user.Email = req.Email
	}
	if req.Password != "" {
		hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
		if err != nil {
			return nil, fmt.Errorf("failed to hash password: %w", err)
		}
		user.Password = string(hash)
	}

	applyUserWrite(&user, req)

	if err := s.db.Save(&user).Error; err != nil {
		return nil, fmt.Errorf("failed to update user: %w", err)
	}
	return &user, nil
}

func (s *UserService) Delete(id uuid.UUID) error {
	result := s.db.Delete(&models.User{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrUserNotFound
	}
	return nil
}

// SetAvatar validates that the upload contains exactly one detectable face,
// stores the file under the media dir and records its relative path.
func (s *UserService) SetAvatar(id uuid.UUID, filename string, data []byte) (*models.User, error) {
	var user models.User
	if err := s.db.First(&user, "id = ?", id).Error; err != nil {
		return nil, ErrUserNotFound
	}

	if s.faces != nil {
		if err := s.faces.Validate(data); err != nil {
			return nil, err
		}
	}

	dir := filepath.Join(s.cfg.MediaDir, "avatar")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create media dir: %w", err)
	}
	name := user.ID.String() + filepath.Ext(filename)
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return nil, fmt.Errorf("failed to store avatar: %w", err)
	}

	relative := "avatar/" + name
	if err := s.db.Model(&user).Update("avatar", relative).Error; err != nil {
		return nil, err
	}
	user.Avatar = relative
	return &user, nil
}

// userSentimentRow scans the base listing plus the joined edge value.
type userSentimentRow struct {
	models.User `gorm:"embedded"`
	Sentiment   string
}

// SentimentsFrom lists the users the given user has rated: the join always
// follows the outgoing edge (from -> other), annotated with that edge's
// value. NEUTRAL edges are excluded; an explicit filter narrows further.
func (s *UserService) SentimentsFrom(userID uuid.UUID, filter string) ([]dto.UserWithSentiment, error) {
	return s.sentimentListing(
		"JOIN sentiments s ON s.to_id = users.id AND s.from_id = ?",
		userID, filter,
	)
}

// SentimentsTo lists the users who rated the given user: the join follows
// the incoming edge (other -> to), never the reverse.
func (s *UserService) SentimentsTo(userID uuid.UUID, filter string) ([]dto.UserWithSentiment, error) {
	return s.sentimentListing(
		"JOIN sentiments s ON s.from_id = users.id AND s.to_id = ?",
		userID, filter,
	)
}

func (s *UserService) sentimentListing(join string, userID uuid.UUID, filter string) ([]dto.UserWithSentiment, error) {
	query := s.db.Table("users").
		Select("users.*, s.sentiment AS sentiment").
		Joins(join, userID).
		Where("s.sentiment <> ?", models.SentimentNeutral)
	if filter != "" {
		query = query.Where("s.sentiment = ?", filter)
	}

	var rows []userSentimentRow
	if err := query.Order("s.updated_at DESC").Scan(&rows).Error; err != nil {
		return nil, err
	}

	ids := make([]uuid.UUID, len(rows))
	for i := range rows {
		ids[i] = rows[i].User.ID
	}
	counts, err := s.sentimentCounts(ids)
	if err != nil {
		return nil, err
	}

	results := make([]dto.UserWithSentiment, len(rows))
	for i := range rows {
		results[i] = dto.UserWithSentiment{
			UserBasic:       dto.NewUserBasic(&rows[i].User),
			SentimentCounts: counts[rows[i].User.ID],
			Sentiment:       rows[i].Sentiment,
		}
	}
	return results, nil
}

// profileViewRow scans the base listing plus the windowed annotations.
type profileViewRow struct {
	models.User `gorm:"embedded"`
	ViewCount   int64
	LastViewed  models.DBTime
}

// VisitedBy lists the distinct viewers of the given user, windowed by the
// optional [start, end] bounds. The same bounds apply to the join filter,
// the view_count annotation and the last_viewed annotation.
func (s *UserService) VisitedBy(userID uuid.UUID, start, end *time.Time) ([]dto.UserWithViewStats, error) {
	return s.profileViewListing(userID, start, end, true)
}

// VisitedTo lists the distinct users the given user has viewed, with the
// mirrored join direction.
func (s *UserService) VisitedTo(userID uuid.UUID, start, end *time.Time) ([]dto.UserWithViewStats, error) {
	return s.profileViewListing(userID, start, end, false)
}

func (s *UserService) profileViewListing(userID uuid.UUID, start, end *time.Time, incoming bool) ([]dto.UserWithViewStats, error) {
	// The joined identity column flips with the direction; the fixed side
	// is always the target user.
	outerCol, fixedCol := "viewer_id", "viewee_id"
	if !incoming {
		outerCol, fixedCol = "viewee_id", "viewer_id"
	}

	// The window bounds must be identical in the join filter and both
	// annotations.
	windowed := func(alias string, q *gorm.DB) *gorm.DB {
		if start != nil {
			q = q.Where(alias+".created_at >= ?", *start)
		}
		if end != nil {
			q = q.Where(alias+".created_at <= ?", *end)
		}
		return q
	}

	countSub := windowed("pv2", s.db.Table("profile_views pv2").
		Select("count(*)").
		Where("pv2."+outerCol+" = users.id AND pv2."+fixedCol+" = ?", userID))
	lastSub := windowed("pv3", s.db.Table("profile_views pv3").
		Select("max(pv3.created_at)").
		Where("pv3."+outerCol+" = users.id AND pv3."+fixedCol+" = ?", userID))

	query := windowed("pv", s.db.Table("users").
		Joins("JOIN profile_views pv ON pv."+outerCol+" = users.id AND pv."+fixedCol+" = ?", userID)).
		Select("users.*, (?) AS view_count, (?) AS last_viewed", countSub, lastSub)

	var rows []profileViewRow
	err := query.
		Group("users.id").
		Order("last_viewed DESC").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	ids := make([]uuid.UUID, len(rows))
	for i := range rows {
		ids[i] = rows[i].User.ID
	}
	counts, err := s.sentimentCounts(ids)
	if err != nil {
		return nil, err
	}

	results := make([]dto.UserWithViewStats, len(rows))
	for i := range rows {
		results[i] = dto.UserWithViewStats{
			UserBasic:       dto.NewUserBasic(&rows[i].User),
			SentimentCounts: counts[rows[i].User.ID],
			ViewCount:       rows[i].ViewCount,
			LastViewed:      rows[i].LastViewed,
		}
	}
	return results, nil
}

// sentimentCounts batches the incoming like/dislike totals for a set of
// users in one grouped query.
func (s *UserService) sentimentCounts(ids []uuid.UUID) (map[uuid.UUID]dto.SentimentCounts, error) {
	result := make(map[uuid.UUID]dto.SentimentCounts, len(ids))
	if len(ids) == 0 {
		return result, nil
	}

	var rows []struct {
		ToID      uuid.UUID
		Sentiment string
		Total     int64
	}
	err := s.db.Model(&models.Sentiment{}).
		Select("to_id, sentiment, count(*) AS total").
		Where("to_id IN ?", ids).
		Group("to_id").Group("sentiment").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	for _, row := range rows {
		counts := result[row.ToID]
		switch row.Sentiment {
		case models.SentimentLike:
			counts.ProfileLikes = row.Total
		case models.SentimentDislike:
			counts.ProfileDislikes = row.Total
		}
		result[row.ToID] = counts
	}
	return result, nil
}

func applyUserWrite(user *models.User, req *dto.UserWriteRequest) {
	setString := func(dst *string, src *string) {
		if src != nil {
			*dst = *src
		}
	}
	setInt := func(dst *int, src *int) {
		if src != nil {
			*dst = *src
		}
	}
	setBool := func(dst *bool, src *bool) {
		if src != nil {
			*dst = *src
		}
	}

	setString(&user.FirstName, req.FirstName)
	setString(&user.LastName, req.LastName)
	setString(&user.ContactNumber, req.ContactNumber)

	if req.DateOfBirth != nil {
		user.DateOfBirth = req.DateOfBirth
	}
	setString(&user.TimeOfBirth, req.TimeOfBirth)
	setString(&user.CityOfBirth, req.CityOfBirth)
	setString(&user.Country, req.Country)
	setString(&user.City, req.City)
	setString(&user.ZipCode, req.ZipCode)

	setString(&user.ResidencyStatus, req.ResidencyStatus)
	setString(&user.HighestQualification, req.HighestQualification)
	setString(&user.Employer, req.Employer)
	setString(&user.Designation, req.Designation)
	setInt(&user.AnnualIncome, req.AnnualIncome)

	setString(&user.Religion, req.Religion)
	setString(&user.MotherTongue, req.MotherTongue)
	setString(&user.Community, req.Community)
	setString(&user.SubCommunity, req.SubCommunity)
	setString(&user.Gender, req.Gender)
	setString(&user.MaritalStatus, req.MaritalStatus)
	setString(&user.LookingFor, req.LookingFor)
	setString(&user.BloodGroup, req.BloodGroup)
	setString(&user.CreatedBy, req.CreatedBy)

	setInt(&user.Height, req.Height)
	setBool(&user.HasDisability, req.HasDisability)
	setBool(&user.IsFatherAlive, req.IsFatherAlive)
	setBool(&user.IsMotherAlive, req.IsMotherAlive)
	setInt(&user.ChildrenCount, req.ChildrenCount)
	setInt(&user.BrothersCount, req.BrothersCount)
	setInt(&user.SistersCount, req.SistersCount)

	setString(&user.AboutSelf, req.AboutSelf)
	setString(&user.AboutFamily, req.AboutFamily)
	setString(&user.AboutPartner, req.AboutPartner)
	setString(&user.AboutLikes, req.AboutLikes)
	setString(&user.AboutDislikes, req.AboutDislikes)
	setString(&user.AboutLifestyle, req.AboutLifestyle)
}
