// Package router provides HTTP routing, middleware configuration, and server setup for the web application
package router

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"log"
	"time"

	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/compress"
	"github.com/gofiber/fiber/v3/middleware/cors"
	"github.com/gofiber/fiber/v3/middleware/helmet"
	"github.com/gofiber/fiber/v3/middleware/limiter"
	"github.com/gofiber/fiber/v3/middleware/logger"
	"github.com/gofiber/fiber/v3/middleware/recover"
	"github.com/gofiber/fiber/v3/middleware/requestid"

	"github.com/heraldhq/herald/app/dto"
	"github.com/heraldhq/herald/app/handlers"
	"github.com/heraldhq/herald/app/middleware"
	"github.com/heraldhq/herald/app/services"
	businessflow "github.com/heraldhq/herald/business_flow"
	"github.com/heraldhq/herald/config"
	"github.com/heraldhq/herald/utils"
)

// Router interface for HTTP routing
type Router interface {
	SetupRoutes()
	Start(address string) error
	GetApp() *fiber.App
}

// FiberRouter implements Router using Fiber
type FiberRouter struct {
	app              *fiber.App
	cfg              *config.Config
	userHandler      handlers.UserHandlerInterface
	broadcastHandler handlers.BroadcastHandlerInterface
	historyHandler   handlers.HistoryHandlerInterface
	messageHandler   handlers.MessageHandlerInterface
	authHandler      handlers.AuthHandlerInterface
	authMiddleware   *middleware.AuthMiddleware
	chatService      services.ChatService
}

// NewFiberRouter creates a new Fiber router
func NewFiberRouter(
	cfg *config.Config,
	userHandler handlers.UserHandlerInterface,
	broadcastHandler handlers.BroadcastHandlerInterface,
	historyHandler handlers.HistoryHandlerInterface,
	messageHandler handlers.MessageHandlerInterface,
	authHandler handlers.AuthHandlerInterface,
	authMiddleware *middleware.AuthMiddleware,
	chatService services.ChatService,
) Router {
	r := &FiberRouter{
		cfg:              cfg,
		userHandler:      userHandler,
		broadcastHandler: broadcastHandler,
		historyHandler:   historyHandler,
		messageHandler:   messageHandler,
		authHandler:      authHandler,
		authMiddleware:   authMiddleware,
		chatService:      chatService,
	}

	r.app = fiber.New(fiber.Config{
		AppName:      "Herald API",
		ServerHeader: "Herald",
		ErrorHandler: r.errorHandler,
		BodyLimit:    cfg.Server.BodyLimit,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
		JSONEncoder:  json.Marshal,
		JSONDecoder:  json.Unmarshal,
	})

	return r
}

// SetupRoutes configures all application routes
func (r *FiberRouter) SetupRoutes() {
	log.Println("Setting up routes...")

	r.setupMiddleware()

	api := r.app.Group("/api/v1")

	// Health check route (unauthenticated, no rate limiting)
	api.Get("/health", r.healthCheck)

	// General rate limiting for all API routes
	api.Use(limiter.New(limiter.Config{
		Max:        r.cfg.Server.GlobalRateLimit,
		Expiration: r.cfg.Server.RateLimitWindow,
		KeyGenerator: func(c fiber.Ctx) string {
			return c.IP()
		},
		LimitReached: func(c fiber.Ctx) error {
			return c.Status(fiber.StatusTooManyRequests).JSON(dto.APIResponse{
				Success: false,
				Message: "Too many requests. Please try again later.",
				Error: dto.ErrorDetail{
					Code: "RATE_LIMIT_EXCEEDED",
				},
			})
		},
		Next: func(c fiber.Ctx) bool {
			return c.Path() == "/api/v1/health"
		},
	}))

	// Token exchange with stricter rate limiting; authenticates by
	// request body, not by header
	auth := api.Group("/auth")
	auth.Use(limiter.New(limiter.Config{
		Max:        20,
		Expiration: 1 * time.Minute,
		KeyGenerator: func(c fiber.Ctx) string {
			return c.IP()
		},
		LimitReached: func(c fiber.Ctx) error {
			return c.Status(fiber.StatusTooManyRequests).JSON(dto.APIResponse{
				Success: false,
				Message: "Too many requests. Please try again later.",
				Error: dto.ErrorDetail{
					Code: "RATE_LIMIT_EXCEEDED",
				},
			})
		},
	}))
	auth.Post("/token", r.authHandler.ExchangeToken)

	// Everything below requires the service-role bearer token
	api.Use(r.authMiddleware.Authenticate())

	api.Get("/users", r.userHandler.ListUsers)
	api.Post("/users", r.userHandler.CreateUser)
	api.Put("/users/:id", r.userHandler.UpdateUser)
	api.Delete("/users/:id", r.userHandler.DeleteUser)

	api.Get("/broadcasts", r.broadcastHandler.ListBroadcasts)
	api.Post("/broadcasts", r.broadcastHandler.CreateBroadcast)
	api.Post("/broadcasts/:id/segments", r.broadcastHandler.CreateSegmentGroup)
	api.Get("/broadcasts/:id/draft", r.broadcastHandler.DraftBroadcast)

	api.Get("/history", r.historyHandler.GetHistory)

	api.Get("/messages/processed", r.messageHandler.ListProcessedMessages)
	api.Get("/messages/export", r.messageHandler.ExportProcessedMessages)

	// Not found handler
	r.app.Use(r.notFoundHandler)

	log.Println("Routes configured successfully")
}

// setupMiddleware configures global middleware
func (r *FiberRouter) setupMiddleware() {
	// Request ID middleware - must be first
	r.app.Use(requestid.New(requestid.Config{
		Header: "X-Request-ID",
		Generator: func() string {
			return generateRequestID()
		},
	}))

	// Security headers middleware
	r.app.Use(helmet.New(helmet.Config{
		XSSProtection:         "1; mode=block",
		ContentTypeNosniff:    "nosniff",
		XFrameOptions:         "DENY",
		HSTSMaxAge:            31536000,
		ContentSecurityPolicy: "default-src 'self'; frame-ancestors 'none';",
		ReferrerPolicy:        "strict-origin-when-cross-origin",
	}))

	// CORS middleware
	r.app.Use(cors.New(cors.Config{
		AllowOrigins: r.cfg.Server.AllowedOrigins,
		AllowMethods: []string{
			"GET", "POST", "PUT", "DELETE", "HEAD", "OPTIONS",
		},
		AllowHeaders: []string{
			"Origin",
			"Content-Type",
			"Accept",
			"Authorization",
			"X-Requested-With",
			"X-Request-ID",
		},
		ExposeHeaders: []string{
			"X-Request-ID",
		},
		AllowCredentials: true,
		MaxAge:           utils.CORSMaxAge,
	}))

	// Compression middleware
	r.app.Use(compress.New(compress.Config{
		Level: compress.LevelBestSpeed,
	}))

	// Structured access logging
	r.app.Use(logger.New(logger.Config{
		Format:     `{"time":"${time}","pid":"${pid}","request_id":"${locals:requestid}","level":"info","method":"${method}","path":"${path}","protocol":"${protocol}","ip":"${ip}","user_agent":"${ua}","status":${status},"latency":"${latency}","bytes_in":${bytesReceived},"bytes_out":${bytesSent}}` + "\n",
		TimeFormat: time.RFC3339,
		TimeZone:   "UTC",
		Next: func(c fiber.Ctx) bool {
			return c.Path() == "/api/v1/health"
		},
	}))

	// Prometheus request metrics
	r.app.Use(middleware.Metrics())

	// Recovery middleware with custom panic logging
	r.app.Use(recover.New(recover.Config{
		EnableStackTrace: true,
		StackTraceHandler: func(c fiber.Ctx, e any) {
			log.Printf(`{"time":"%s","level":"error","request_id":"%s","event":"panic","error":"%v","path":"%s","method":"%s","ip":"%s"}`,
				utils.UTCNow().Format(time.RFC3339),
				c.Locals("requestid"),
				e,
				c.Path(),
				c.Method(),
				c.IP(),
			)
		},
	}))
}

// Start starts the HTTP server
func (r *FiberRouter) Start(address string) error {
	log.Printf("Starting server on %s", address)
	return r.app.Listen(address)
}

// GetApp returns the Fiber app instance
func (r *FiberRouter) GetApp() *fiber.App {
	return r.app
}

// Health check endpoint
func (r *FiberRouter) healthCheck(c fiber.Ctx) error {
	return c.JSON(dto.APIResponse{
		Success: true,
		Message: "Service is healthy",
		Data: fiber.Map{
			"status":    "ok",
			"timestamp": utils.UTCNow().Unix(),
			"version":   "1.0.0",
			"service":   "herald-api",
		},
	})
}

// Not found handler
func (r *FiberRouter) notFoundHandler(c fiber.Ctx) error {
	requestID := c.Locals("requestid")

	return c.Status(fiber.StatusNotFound).JSON(dto.APIResponse{
		Success: false,
		Message: "The requested resource was not found",
		Error: dto.ErrorDetail{
			Code: "NOT_FOUND",
			Details: fiber.Map{
				"path":       c.Path(),
				"method":     c.Method(),
				"request_id": requestID,
			},
		},
	})
}

// errorHandler is the single funnel for errors returned by handlers.
// Route errors keep their explicit status. System errors are hidden from
// the client: log, alert the operator channel, answer 204 with no body.
// Anything else is treated as a rejected request.
func (r *FiberRouter) errorHandler(c fiber.Ctx, err error) error {
	requestID := c.Locals("requestid")

	if sysErr, ok := businessflow.AsSystemError(err); ok {
		log.Printf("System error on %s %s: %v", c.Method(), c.Path(), sysErr)

		if r.chatService != nil {
			ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
			defer cancel()
			if alertErr := r.chatService.SendAlert(ctx, "", map[string]string{
				"failureDetails": sysErr.Error(),
			}); alertErr != nil {
				log.Printf("Failed to send operator alert: %v", alertErr)
			}
		}

		return c.SendStatus(fiber.StatusNoContent)
	}

	if routeErr, ok := businessflow.AsRouteError(err); ok {
		log.Printf("Route error %d on %s %s (request %v): %v", routeErr.Status, c.Method(), c.Path(), requestID, routeErr)
		return c.Status(routeErr.Status).JSON(fiber.Map{"error": routeErr.Message})
	}

	if e, ok := err.(*fiber.Error); ok {
		log.Printf("Error %d: %v", e.Code, err)
		return c.Status(e.Code).JSON(fiber.Map{"error": e.Message})
	}

	log.Printf("Rejected request on %s %s (request %v): %v", c.Method(), c.Path(), requestID, err)
	return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
}

// generateRequestID creates a unique request ID
func generateRequestID() string {
	bytes := make([]byte, 8)
	rand.Read(bytes)
	return hex.EncodeToString(bytes)
}
