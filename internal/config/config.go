package config

import (
	"os"
	"strconv"
	"time"
)

type Config struct {
	// Database
	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string
	DBSSLMode  string

	// JWT
	JWTSecret        string
	JWTAccessExpiry  time.Duration
	JWTRefreshExpiry time.Duration

	// OTP authentication
	OTPLength       int
	OTPExpiresAfter time.Duration

	// New accounts get a free trial subscription window.
	TrialPeriodDays int

	// Activation links embedded in the signup email point here.
	ActivationBaseURL     string
	ActivationTokenExpiry time.Duration

	// SMTP
	SMTPHost     string
	SMTPPort     int
	SMTPUser     string
	SMTPPassword string
	SMTPFrom     string

	// Stripe
	StripeSecretKey     string
	StripePublicKey     string
	StripeWebhookSecret string

	// Face detection cascade file for avatar validation
	FaceCascadePath string

	// Uploaded avatars are written here
	MediaDir string

	// Server
	Port        string
	CORSOrigins string
}

func Load() *Config {
	return &Config{
		DBHost:     getEnv("DB_HOST", "localhost"),
		DBPort:     getEnv("DB_PORT", "5432"),
		DBUser:     getEnv("DB_USER", "postgres"),
		DBPassword: getEnv("DB_PASSWORD", ""),
		DBName:     getEnv("DB_NAME", "matrimony_db"),
		DBSSLMode:  getEnv("DB_SSLMODE", "disable"),

		JWTSecret:        getEnv("JWT_SECRET", ""),
		JWTAccessExpiry:  parseDuration(getEnv("JWT_ACCESS_EXPIRY", "15m"), 15*time.Minute),
		JWTRefreshExpiry: parseDuration(getEnv("JWT_REFRESH_EXPIRY", "168h"), 168*time.Hour),

		OTPLength:       parseInt(getEnv("OTP_LENGTH", "6"), 6),
		OTPExpiresAfter: parseDuration(getEnv("OTP_EXPIRES_AFTER", "10m"), 10*time.Minute),

		TrialPeriodDays: parseInt(getEnv("USER_TRIAL_PERIOD", "14"), 14),

		ActivationBaseURL:     getEnv("ACTIVATION_BASE_URL", "http://localhost:8080"),
		ActivationTokenExpiry: parseDuration(getEnv("ACTIVATION_TOKEN_EXPIRY", "72h"), 72*time.Hour),

		SMTPHost:     getEnv("SMTP_HOST", "localhost"),
		SMTPPort:     parseInt(getEnv("SMTP_PORT", "587"), 587),
		SMTPUser:     getEnv("SMTP_USER", ""),
		SMTPPassword: getEnv("SMTP_PASSWORD", ""),
		SMTPFrom:     getEnv("SMTP_FROM", "no-reply@vivaha.app"),

		StripeSecretKey:     getEnv("STRIPE_SECRET_KEY", ""),
		StripePublicKey:     getEnv("STRIPE_PUBLIC_KEY", ""),
		StripeWebhookSecret: getEnv("STRIPE_WEBHOOK_SECRET", ""),

		FaceCascadePath: getEnv("FACE_CASCADE_PATH", "cascade/facefinder"),

		MediaDir: getEnv("MEDIA_DIR", "media"),

		Port:        getEnv("PORT", "8080"),
		CORSOrigins: getEnv("CORS_ORIGINS", "*"),
	}
}

func (c *Config) DSN() string {
	return "host=" + c.DBHost +
		" user=" + c.DBUser +
		" password=" + c.DBPassword +
		" dbname=" + c.DBName +
		" port=" + c.DBPort +
		" sslmode=" + c.DBSSLMode +
		" TimeZone=UTC"
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func parseDuration(s string, fallback time.Duration) time.Duration {
	d, err := time.ParseDuration(s)
	if err != nil {
		return fallback
	}
	return d
}

func parseInt(s string, fallback int) int {
	n, err := strconv.Atoi(s)
	if err != nil {
		return fallback
	}
	return n
}
