package dto

import (
	"time"

	"github.com/google/uuid"
	"github.com/vivaha-app/backend/internal/models"
)

// UserBasic is the base projection shared by every user-facing listing.
// Endpoint-specific payloads compose it with named enrichments instead of
// stacking serializer inheritance.
type UserBasic struct {
	ID         uuid.UUID `json:"id"`
	Username   string    `json:"username"`
	Email      string    `json:"email"`
	Avatar     string    `json:"avatar"`
	FirstName  string    `json:"first_name"`
	LastName   string    `json:"last_name"`
	Gender     string    `json:"gender"`
	Religion   string    `json:"religion"`
	BloodGroup string    `json:"blood_group"`
}

func NewUserBasic(u *models.User) UserBasic {
	return UserBasic{
		ID:         u.ID,
		Username:   u.Username,
		Email:      u.Email,
		Avatar:     u.Avatar,
		FirstName:  u.FirstName,
		LastName:   u.LastName,
		Gender:     u.Gender,
		Religion:   u.Religion,
		BloodGroup: u.BloodGroup,
	}
}

// SentimentCounts enriches a user payload with incoming like/dislike totals.
type SentimentCounts struct {
	ProfileLikes    int64 `json:"profile_likes"`
	ProfileDislikes int64 `json:"profile_dislikes"`
}

// UserWithSentiment is the row shape of the sentiment-from / sentiment-to
// listings: base projection plus the value of the requested edge.
type UserWithSentiment struct {
	UserBasic
	SentimentCounts
	Sentiment string `json:"sentiment"`
}

// UserWithViewStats is the row shape of the profile-visited listings.
type UserWithViewStats struct {
	UserBasic
	SentimentCounts
	ViewCount  int64         `json:"view_count"`
	LastViewed models.DBTime `json:"last_viewed"`
}

// UserDetail is the full profile payload for retrieve/update responses.
type UserDetail struct {
	UserBasic
	SentimentCounts

	ContactNumber string     `json:"contact_number"`
	DateOfBirth   *time.Time `json:"date_of_birth"`
	TimeOfBirth   string     `json:"time_of_birth"`
	CityOfBirth   string     `json:"city_of_birth"`
	Country       string     `json:"country"`
	City          string     `json:"city"`
	ZipCode       string     `json:"zip_code"`

	ResidencyStatus      string `json:"residency_status"`
	HighestQualification string `json:"highest_qualification"`
	Employer             string `json:"employer"`
	Designation          string `json:"designation"`
	AnnualIncome         int    `json:"annual_income"`

	MotherTongue  string `json:"mother_tongue"`
	Community     string `json:"community"`
	SubCommunity  string `json:"sub_community"`
	MaritalStatus string `json:"marital_status"`
	LookingFor    string `json:"looking_for"`
	CreatedBy     string `json:"created_by"`

	Height        int  `json:"height"`
	HasDisability bool `json:"has_disability"`
	IsFatherAlive bool `json:"is_father_alive"`
	IsMotherAlive bool `json:"is_mother_alive"`
	ChildrenCount int  `json:"children_count"`
	BrothersCount int  `json:"brothers_count"`
	SistersCount  int  `json:"sisters_count"`

	AboutSelf      string `json:"about_self"`
	AboutFamily    string `json:"about_family"`
	AboutPartner   string `json:"about_partner"`
	AboutLikes     string `json:"about_likes"`
	AboutDislikes  string `json:"about_dislikes"`
	AboutLifestyle string `json:"about_lifestyle"`

	ProfileViewers int64 `json:"profile_viewers"`
	ProfileViews   int64 `json:"profile_views"`

	PaymentPlanTitle     *string `json:"payment_plan_title"`
	IsPaymentPlanExpired bool    `json:"is_payment_plan_expired"`
}

// NewUserDetail builds the base detail projection; counters and plan title
// are filled in by the service.
func NewUserDetail(u *models.User, now time.Time) UserDetail {
	return UserDetail{
		UserBasic: NewUserBasic(u),

		ContactNumber: u.ContactNumber,
		DateOfBirth:   u.DateOfBirth,
		TimeOfBirth:   u.TimeOfBirth,
		CityOfBirth:   u.CityOfBirth,
		Country:       u.Country,
		City:          u.City,
		ZipCode:       u.ZipCode,

		ResidencyStatus:      u.ResidencyStatus,
		HighestQualification: u.HighestQualification,
		Employer:             u.Employer,
		Designation:          u.Designation,
		AnnualIncome:         u.AnnualIncome,

		MotherTongue:  u.MotherTongue,
		Community:     u.Community,
		SubCommunity:  u.SubCommunity,
		MaritalStatus: u.MaritalStatus,
		LookingFor:    u.LookingFor,
		CreatedBy:     u.CreatedBy,

		Height:        u.Height,
		HasDisability: u.HasDisability,
		IsFatherAlive: u.IsFatherAlive,
		IsMotherAlive: u.IsMotherAlive,
		ChildrenCount: u.ChildrenCount,
		BrothersCount: u.BrothersCount,
		SistersCount:  u.SistersCount,

		AboutSelf:      u.AboutSelf,
		AboutFamily:    u.AboutFamily,
		AboutPartner:   u.AboutPartner,
		AboutLikes:     u.AboutLikes,
		AboutDislikes:  u.AboutDislikes,
		AboutLifestyle: u.AboutLifestyle,

		IsPaymentPlanExpired: u.IsPaymentPlanExpired(now),
	}
}

// UserWriteRequest carries writable profile fields. Pointer fields are
// applied only when present, so the same shape serves create and partial
// update.
type UserWriteRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`

	FirstName     *string `json:"first_name"`
	LastName      *string `json:"last_name"`
	ContactNumber *string `json:"contact_number"`

	DateOfBirth *time.Time `json:"date_of_birth"`
	TimeOfBirth *string    `json:"time_of_birth"`
	CityOfBirth *string    `json:"city_of_birth"`
	Country     *string    `json:"country"`
	City        *string    `json:"city"`
	ZipCode     *string    `json:"zip_code"`

	ResidencyStatus      *string `json:"residency_status"`
	HighestQualification *string `json:"highest_qualification"`
	Employer             *string `json:"employer"`
	Designation          *string `json:"designation"`
	AnnualIncome         *int    `json:"annual_income"`

	Religion      *string `json:"religion"`
	MotherTongue  *string `json:"mother_tongue"`
	Community     *string `json:"community"`
	SubCommunity  *string `json:"sub_community"`
	Gender        *string `json:"gender"`
	MaritalStatus *string `json:"marital_status"`
	LookingFor    *string `json:"looking_for"`
	BloodGroup    *string `json:"blood_group"`
	CreatedBy     *string `json:"created_by"`

	Height        *int  `json:"height"`
	HasDisability *bool `json:"has_disability"`
	IsFatherAlive *bool `json:"is_father_alive"`
	IsMotherAlive *bool `json:"is_mother_alive"`
	ChildrenCount *int  `json:"children_count"`
	BrothersCount *int  `json:"brothers_count"`
	SistersCount  *int  `json:"sisters_count"`

	AboutSelf      *string `json:"about_self"`
	AboutFamily    *string `json:"about_family"`
	AboutPartner   *string `json:"about_partner"`
	AboutLikes     *string `json:"about_likes"`
	AboutDislikes  *string `json:"about_dislikes"`
	AboutLifestyle *string `json:"about_lifestyle"`
}
