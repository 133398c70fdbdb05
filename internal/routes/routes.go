package routes

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/vivaha-app/backend/internal/config"
	"github.com/vivaha-app/backend/internal/handlers"
	"github.com/vivaha-app/backend/internal/middleware"
	"gorm.io/gorm"
)

func Setup(
	app *fiber.App,
	cfg *config.Config,
	db *gorm.DB,
	authHandler *handlers.AuthHandler,
	userHandler *handlers.UserHandler,
	sentimentHandler *handlers.SentimentHandler,
	profileViewHandler *handlers.ProfileViewHandler,
	eventHandler *handlers.EventHandler,
	notificationHandler *handlers.NotificationHandler,
	paymentHandler *handlers.PaymentHandler,
	healthHandler *handlers.HealthHandler,
) {
	api := app.Group("/api")

	// General API rate limiter: 60 req/min per IP
	api.Use(limiter.New(limiter.Config{
		Max:               60,
		Expiration:        1 * time.Minute,
		LimiterMiddleware: limiter.SlidingWindow{},
		KeyGenerator:      func(c *fiber.Ctx) string { return c.IP() },
	}))

	api.Get("/health", healthHandler.Check)

	// Auth — public, with a stricter limit: 10 req/min per IP
	auth := api.Group("/authentication")
	auth.Use(limiter.New(limiter.Config{
		Max:               10,
		Expiration:        1 * time.Minute,
		LimiterMiddleware: limiter.SlidingWindow{},
		KeyGenerator:      func(c *fiber.Ctx) string { return c.IP() },
	}))
	auth.Post("/authenticate", authHandler.Authenticate)
	auth.Post("/token/generate", authHandler.TokenGenerate)
	auth.Post("/token/refresh", authHandler.TokenRefresh)

	protected := middleware.JWTProtected(cfg)
	staff := middleware.StaffRequired(db)

	// Users — registration and activation are public
	users := api.Group("/users")
	users.Post("/", userHandler.Create)
	users.Get("/activate", userHandler.Activate)
	users.Get("/", protected, userHandler.List)
	users.Get("/:id", protected, userHandler.Get)
	users.Put("/:id", protected, userHandler.Update)
	users.Patch("/:id", protected, userHandler.Update)
	users.Delete("/:id", protected, userHandler.Delete)
	users.Put("/:id/avatar", protected, userHandler.SetAvatar)
	users.Get("/:id/sentiment-from", protected, userHandler.SentimentFrom)
	users.Get("/:id/sentiment-to", protected, userHandler.SentimentTo)
	users.Get("/:id/profile-visited-by", protected, userHandler.ProfileVisitedBy)
	users.Get("/:id/profile-visited-to", protected, userHandler.ProfileVisitedTo)
	users.Get("/:id/events", protected, userHandler.Events)

	// Sentiments
	sentiments := api.Group("/sentiments", protected)
	sentiments.Post("/", sentimentHandler.Create)
	sentiments.Get("/", sentimentHandler.List)
	sentiments.Get("/:id", sentimentHandler.Get)
	sentiments.Put("/:id", sentimentHandler.Update)
	sentiments.Patch("/:id", sentimentHandler.Update)
	sentiments.Delete("/:id", sentimentHandler.Delete)

	// Profile views
	profileViews := api.Group("/profile-views", protected)
	profileViews.Post("/", profileViewHandler.Create)
	profileViews.Get("/", profileViewHandler.List)
	profileViews.Get("/:id", profileViewHandler.Get)
	profileViews.Delete("/:id", profileViewHandler.Delete)

	// Events — writes are staff-only, reads require auth
	events := api.Group("/events", protected)
	events.Get("/", eventHandler.List)
	events.Get("/:id", eventHandler.Get)
	events.Get("/:id/users", eventHandler.Users)
	events.Post("/", staff, eventHandler.Create)
	events.Put("/:id", staff, eventHandler.Update)
	events.Patch("/:id", staff, eventHandler.Update)
	events.Delete("/:id", staff, eventHandler.Delete)

	// Attendance rows
	userEvents := api.Group("/user-events", protected)
	userEvents.Post("/", eventHandler.JoinEvent)
	userEvents.Get("/", eventHandler.ListUserEvents)
	userEvents.Get("/:id", eventHandler.GetUserEvent)
	userEvents.Put("/:id", eventHandler.UpdateUserEvent)
	userEvents.Patch("/:id", eventHandler.UpdateUserEvent)
	userEvents.Delete("/:id", eventHandler.DeleteUserEvent)

	// Notifications
	notifications := api.Group("/notifications", protected)
	notifications.Get("/", notificationHandler.List)
	notifications.Get("/:id", notificationHandler.Get)

	// Payments — the provider callback carries no JWT
	payments := api.Group("/payments")
	payments.Get("/payment-plans", paymentHandler.Plans)
	payments.Post("/payment-plans", protected, staff, paymentHandler.CreatePlan)
	payments.Put("/payment-plans/:id", protected, staff, paymentHandler.UpdatePlan)
	payments.Post("/create-payment-intent", protected, paymentHandler.CreateIntent)
	payments.Post("/confirm-payment-intent", protected, paymentHandler.ConfirmIntent)
	payments.Post("/payment-events-callback", paymentHandler.Callback)
}
