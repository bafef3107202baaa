package api

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/example/user-crud-demo/middleware/ratelimit"
	"github.com/go-monolith/mono"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
)

// APIModule is the HTTP module exposing the user management API.
type APIModule struct {
	app            *fiber.App
	usersContainer mono.ServiceContainer
	usersAdapter   UsersPort
	addr           string
}

// Compile-time interface checks.
var _ mono.Module = (*APIModule)(nil)
var _ mono.DependentModule = (*APIModule)(nil)
var _ mono.HealthCheckableModule = (*APIModule)(nil)

// NewModule creates a new APIModule.
func NewModule() *APIModule {
	port := os.Getenv("PORT")
	if port == "" {
		port = "3000"
	}
	return &APIModule{
		addr: ":" + port,
	}
}

// Name returns the module name.
func (m *APIModule) Name() string {
	return "api"
}

// Dependencies returns the list of module dependencies.
func (m *APIModule) Dependencies() []string {
	return []string{"users"}
}

// SetDependencyServiceContainer receives service containers from dependencies.
func (m *APIModule) SetDependencyServiceContainer(dependency string, container mono.ServiceContainer) {
	switch dependency {
	case "users":
		m.usersContainer = container
		m.usersAdapter = NewUsersAdapter(container)
	}
}

// Start initializes the Fiber HTTP server.
func (m *APIModule) Start(_ context.Context) error {
	if m.usersContainer == nil {
		return fmt.Errorf("users dependency not set")
	}

	m.app = fiber.New(fiber.Config{
		DisableStartupMessage: true,
		ErrorHandler:          fiberErrorHandler,
	})

	m.app.Use(recover.New())
	m.app.Use(logger.New(logger.Config{
		Format: "[${time}] ${status} - ${latency} ${method} ${path}\n",
	}))
	m.app.Use(cors.New())

	registerRoutes(m.app, m.usersAdapter, loginRateLimiter())

	go func() {
		if err := m.app.Listen(m.addr); err != nil {
			log.Printf("[api] HTTP server error: %v", err)
		}
	}()

	log.Printf("[api] HTTP server started on %s", m.addr)
	return nil
}

// Stop shuts down the Fiber HTTP server.
func (m *APIModule) Stop(_ context.Context) error {
	if m.app == nil {
		return nil
	}
	log.Println("[api] Shutting down HTTP server...")
	return m.app.Shutdown()
}

// Health returns the health status of the module.
func (m *APIModule) Health(_ context.Context) mono.HealthStatus {
	return mono.HealthStatus{
		Healthy: m.app != nil,
		Message: "operational",
		Details: map[string]any{
			"addr": m.addr,
		},
	}
}

// registerRoutes configures the HTTP surface. The list endpoint
// requires authentication while single-record reads stay public; both
// mutating endpoints enforce ownership inside their handlers.
func registerRoutes(app *fiber.App, port UsersPort, loginLimiter fiber.Handler) {
	handlers := NewHandlers(port)
	requireAuth := AuthMiddleware(port)

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status": "healthy",
			"module": "api",
		})
	})

	app.Post("/users", handlers.CreateUser)
	app.Get("/users", requireAuth, handlers.ListUsers)
	app.Get("/users/:id", handlers.GetUser)
	app.Put("/users/:id", requireAuth, handlers.UpdateUser)
	app.Delete("/users/:id", requireAuth, handlers.DeleteUser)

	if loginLimiter != nil {
		app.Post("/auth/token", loginLimiter, handlers.Login)
	} else {
		app.Post("/auth/token", handlers.Login)
	}
}

// loginRateLimiter builds the Redis-backed login throttle when
// REDIS_ADDR is configured. Without it login runs unthrottled, so the
// core API never requires Redis.
func loginRateLimiter() fiber.Handler {
	redisAddr := os.Getenv("REDIS_ADDR")
	if redisAddr == "" {
		return nil
	}

	limiter, err := ratelimit.New(
		ratelimit.WithRedisAddr(redisAddr),
		ratelimit.WithRedisPassword(os.Getenv("REDIS_PASSWORD")),
		ratelimit.WithLimit(10, time.Minute),
	)
	if err != nil {
		log.Printf("[api] Login rate limiter disabled: %v", err)
		return nil
	}

	log.Printf("[api] Login rate limiter enabled (redis: %s)", redisAddr)
	return limiter
}

// fiberErrorHandler handles errors escaping the route handlers.
func fiberErrorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	detail := "Internal server error"

	if e, ok := err.(*fiber.Error); ok {
		code = e.Code
		detail = e.Message
	}

	return c.Status(code).JSON(ErrorResponse{Detail: detail})
}
