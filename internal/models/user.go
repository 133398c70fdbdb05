package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Demographic choice codes, mirrored in the mobile clients.
const (
	GenderMale    = "M"
	GenderFemale  = "F"
	GenderUnknown = "U"

	MaritalSingle   = "S"
	MaritalMarried  = "M"
	MaritalDivorced = "D"
	MaritalOther    = "O"

	LookingForSingle       = "S"
	LookingForMarried      = "M"
	LookingForDivorced     = "D"
	LookingForNoPreference = "N"
)

type User struct {
	ID       uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Username string    `gorm:"size:150;not null;uniqueIndex" json:"username"`
	Email    string    `gorm:"size:255;not null;uniqueIndex" json:"email"`
	Password string    `gorm:"not null" json:"-"`

	FirstName     string `gorm:"size:150" json:"first_name"`
	LastName      string `gorm:"size:150" json:"last_name"`
	ContactNumber string `gorm:"size:16" json:"contact_number"`

	// IsActive gates login. Accounts start inactive until the emailed
	// activation link is followed.
	IsActive  bool       `gorm:"default:false" json:"-"`
	IsStaff   bool       `gorm:"default:false" json:"-"`
	LastLogin *time.Time `json:"-"`

	DateOfBirth *time.Time `json:"date_of_birth"`
	TimeOfBirth string     `gorm:"size:8" json:"time_of_birth"`
	CityOfBirth string     `gorm:"size:64" json:"city_of_birth"`
	Country     string     `gorm:"size:64" json:"country"`
	City        string     `gorm:"size:64" json:"city"`
	ZipCode     string     `gorm:"size:32" json:"zip_code"`

	ResidencyStatus      string `gorm:"size:64" json:"residency_status"`
	HighestQualification string `gorm:"size:128" json:"highest_qualification"`
	Employer             string `gorm:"size:128" json:"employer"`
	Designation          string `gorm:"size:128" json:"designation"`
	AnnualIncome         int    `gorm:"default:0" json:"annual_income"`

	Religion      string `gorm:"size:32;default:'OTHER'" json:"religion"`
	MotherTongue  string `gorm:"size:64" json:"mother_tongue"`
	Community     string `gorm:"size:64" json:"community"`
	SubCommunity  string `gorm:"size:64" json:"sub_community"`
	Gender        string `gorm:"size:1;default:'U'" json:"gender"`
	MaritalStatus string `gorm:"size:1;default:'S'" json:"marital_status"`
	LookingFor    string `gorm:"size:1;default:'N'" json:"looking_for"`
	BloodGroup    string `gorm:"size:3;default:'U'" json:"blood_group"`
	CreatedBy     string `gorm:"size:8;default:'SELF'" json:"created_by"`

	Height        int  `gorm:"default:0" json:"height"`
	HasDisability bool `gorm:"default:false" json:"has_disability"`
	IsFatherAlive bool `gorm:"default:true" json:"is_father_alive"`
	IsMotherAlive bool `gorm:"default:true" json:"is_mother_alive"`
	ChildrenCount int  `gorm:"default:0" json:"children_count"`
	BrothersCount int  `gorm:"default:0" json:"brothers_count"`
	SistersCount  int  `gorm:"default:0" json:"sisters_count"`

	Avatar string `gorm:"size:512" json:"avatar"`

	AboutSelf      string `gorm:"size:2048" json:"about_self"`
	AboutFamily    string `gorm:"size:2048" json:"about_family"`
	AboutPartner   string `gorm:"size:2048" json:"about_partner"`
	AboutLikes     string `gorm:"size:1024" json:"about_likes"`
	AboutDislikes  string `gorm:"size:1024" json:"about_dislikes"`
	AboutLifestyle string `gorm:"size:1024" json:"about_lifestyle"`

	// Subscription fields are mutated only by payment-webhook processing.
	PaymentPlanID           *uuid.UUID   `gorm:"type:uuid;index" json:"payment_plan_id"`
	PaymentPlan             *PaymentPlan `gorm:"foreignKey:PaymentPlanID" json:"-"`
	PaymentPlanSubscribedAt time.Time    `json:"payment_plan_subscribed_at"`
	PaymentPlanExpiresAt    time.Time    `json:"payment_plan_expires_at"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	return nil
}

func (User) TableName() string {
	return "users"
}

func (u *User) IsPaymentPlanExpired(now time.Time) bool {
	return !u.PaymentPlanExpiresAt.After(now)
}

func (u *User) FullName() string {
	if u.FirstName == "" {
		return u.LastName
	}
	if u.LastName == "" {
		return u.FirstName
	}
	return u.FirstName + " " + u.LastName
}
