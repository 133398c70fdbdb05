package services

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"fmt"
	mathrand "math/rand/v2"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/vivaha-app/backend/internal/config"
	"github.com/vivaha-app/backend/internal/dto"
	"github.com/vivaha-app/backend/internal/mailer"
	"github.com/vivaha-app/backend/internal/models"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

var (
	ErrInvalidCredentials = errors.New("no active account found with the given credentials")
	ErrOTPDeliveryFailed  = errors.New("OTP delivery failed")
	ErrInvalidToken       = errors.New("invalid or expired refresh token")
)

const otpLetters = "ABCDEFGHIJKLMNOPQRSTUVWXYZ"
const otpDigits = "0123456789"

type AuthService struct {
	db     *gorm.DB
	cfg    *config.Config
	mailer mailer.Mailer
}

func NewAuthService(db *gorm.DB, cfg *config.Config, m mailer.Mailer) *AuthService {
	return &AuthService{db: db, cfg: cfg, mailer: m}
}

// RequestOTP verifies the primary credential, generates a login code and
// emails it. Delivery failure is a hard failure; no OTP row is persisted
// without a sent mail.
func (s *AuthService) RequestOTP(req *dto.AuthenticateRequest) error {
	if req.Username == "" || req.Password == "" {
		return ErrInvalidCredentials
	}

	var user models.User
	if err := s.db.Where("username = ?", req.Username).First(&user).Error; err != nil {
		return ErrInvalidCredentials
	}
	if !user.IsActive {
		return ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.Password)); err != nil {
		return ErrInvalidCredentials
	}

	code := generateOTPCode(s.cfg.OTPLength)

	body := fmt.Sprintf("Hello %s,\n\nYour one-time login code is %s. "+
		"It expires in %d minutes.\n", user.FullName(), code,
		int(s.cfg.OTPExpiresAfter.Minutes()))
	if err := s.mailer.Send(user.Email, "Matrimony App OTP", body); err != nil {
		return fmt.Errorf("%w: %s", ErrOTPDeliveryFailed, err)
	}

	otp := models.OTP{UserID: user.ID, Token: code}
	if err := s.db.Create(&otp).Error; err != nil {
		return fmt.Errorf("failed to store OTP: %w", err)
	}
	return nil
}

// VerifyOTP checks the submitted code against the user's single most recent
// OTP inside the expiry window and issues a token pair. All failure modes
// collapse into ErrInvalidCredentials so callers cannot enumerate accounts.
func (s *AuthService) VerifyOTP(req *dto.TokenGenerateRequest) (*dto.TokenPairResponse, error) {
	if req.Username == "" || req.Token == "" {
		return nil, ErrInvalidCredentials
	}

	cutoff := time.Now().Add(-s.cfg.OTPExpiresAfter)

	var otp models.OTP
	err := s.db.
		Joins("JOIN users ON users.id = otps.user_id").
		Where("users.username = ? AND otps.created_at >= ?", req.Username, cutoff).
		Order("otps.created_at DESC").
		First(&otp).Error
	if err != nil {
		return nil, ErrInvalidCredentials
	}

	var user models.User
	if err := s.db.First(&user, "id = ?", otp.UserID).Error; err != nil {
		return nil, ErrInvalidCredentials
	}
	if otp.Token != req.Token || !user.IsActive {
		return nil, ErrInvalidCredentials
	}

	now := time.Now()
	s.db.Model(&user).Update("last_login", now)

	return s.generateTokenPair(&user)
}

// Refresh rotates the refresh token and derives a fresh access token.
func (s *AuthService) Refresh(req *dto.RefreshRequest) (*dto.TokenPairResponse, error) {
	tokenHash := hashToken(req.Refresh)

	var stored models.RefreshToken
	if err := s.db.Where("token_hash = ? AND revoked = ?", tokenHash, false).First(&stored).Error; err != nil {
		return nil, ErrInvalidToken
	}

	if time.Now().After(stored.ExpiresAt) {
		s.db.Model(&stored).Update("revoked", true)
		return nil, ErrInvalidToken
	}

	s.db.Model(&stored).Update("revoked", true)

	var user models.User
	if err := s.db.First(&user, "id = ?", stored.UserID).Error; err != nil {
		return nil, fmt.Errorf("user not found: %w", err)
	}
	if !user.IsActive {
		return nil, ErrInvalidToken
	}

	return s.generateTokenPair(&user)
}

func (s *AuthService) generateTokenPair(user *models.User) (*dto.TokenPairResponse, error) {
	access, err := s.generateAccessToken(user)
	if err != nil {
		return nil, err
	}

	refresh, err := s.generateRefreshToken(user)
	if err != nil {
		return nil, err
	}

	return &dto.TokenPairResponse{Refresh: refresh, Access: access}, nil
}

func (s *AuthService) generateAccessToken(user *models.User) (string, error) {
	claims := jwt.MapClaims{
		"sub":      user.ID.String(),
		"username": user.Username,
		"iat":      time.Now().Unix(),
		"exp":      time.Now().Add(s.cfg.JWTAccessExpiry).Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(s.cfg.JWTSecret))
}

func (s *AuthService) generateRefreshToken(user *models.User) (string, error) {
	rawBytes := make([]byte, 32)
	if _, err := rand.Read(rawBytes); err != nil {
		return "", fmt.Errorf("failed to generate random bytes: %w", err)
	}

	rawToken := base64.URLEncoding.EncodeToString(rawBytes)

	record := models.RefreshToken{
		UserID:    user.ID,
		TokenHash: hashToken(rawToken),
		ExpiresAt: time.Now().Add(s.cfg.JWTRefreshExpiry),
	}

	if err := s.db.Create(&record).Error; err != nil {
		return "", fmt.Errorf("failed to store refresh token: %w", err)
	}

	return rawToken, nil
}

// generateOTPCode produces a block of uppercase letters followed by digits.
// Total length is fixed; the digit count is uniform over [0, length-1).
func generateOTPCode(length int) string {
	if length < 2 {
		length = 2
	}
	digitCount := mathrand.IntN(length - 1)

	code := make([]byte, 0, length)
	for i := 0; i < length-digitCount; i++ {
		code = append(code, otpLetters[mathrand.IntN(len(otpLetters))])
	}
	for i := 0; i < digitCount; i++ {
		code = append(code, otpDigits[mathrand.IntN(len(otpDigits))])
	}
	return string(code)
}

func hashToken(token string) string {
	h := sha256.Sum256([]byte(token))
	return fmt.Sprintf("%x", h)
}
