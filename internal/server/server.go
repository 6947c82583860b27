// Package server contains HTTP and WebSocket handlers for the application's API endpoints.
package server

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	_ "bagportal/docs" // swagger docs
	"bagportal/internal/cache"
	"bagportal/internal/config"
	"bagportal/internal/database"
	"bagportal/internal/middleware"
	"bagportal/internal/models"
	"bagportal/internal/notifications"
	"bagportal/internal/observability"
	"bagportal/internal/quota"
	"bagportal/internal/repository"
	"bagportal/internal/sectordoc"
	"bagportal/internal/service"

	"github.com/ansrivas/fiberprometheus/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/helmet"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/gofiber/swagger"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// Server holds all dependencies and provides handlers
type Server struct {
	config         *config.Config
	db             *gorm.DB
	redis          *redis.Client
	app            *fiber.App
	promMiddleware *fiberprometheus.FiberPrometheus
	shutdownCtx    context.Context
	shutdownFn     context.CancelFunc

	sectorRepo repository.SectorRepository
	sectorDocs *sectordoc.Store
	notifier   *notifications.Notifier
	hub        *notifications.Hub

	requestService  *service.RequestService
	decisionService *service.DecisionService
}

// NewServer creates a new server instance with all dependencies
func NewServer(cfg *config.Config) (*Server, error) {
	db, err := database.Connect(cfg)
	if err != nil {
		return nil, fmt.Errorf("database connection failed: %w", err)
	}

	redisClient := cache.InitRedis(cfg.RedisURL)

	return NewServerWithDeps(cfg, db, redisClient)
}

// NewServerWithDeps creates a Server using already-initialized dependencies.
// redisClient may be nil; decision events and the staff feed are then disabled.
func NewServerWithDeps(cfg *config.Config, db *gorm.DB, redisClient *redis.Client) (*Server, error) {
	codec, err := sectordoc.CodecFor(cfg.SectorDocFormat)
	if err != nil {
		return nil, err
	}
	store, err := sectordoc.NewStore(cfg.SectorDocDir, sectordoc.WithCodec(codec))
	if err != nil {
		return nil, fmt.Errorf("sector document store: %w", err)
	}

	requestRepo := repository.NewBagRequestRepository(db)
	sectorRepo := repository.NewSectorRepository(db)
	ledger := quota.NewLedger(requestRepo)

	server := &Server{
		config:         cfg,
		db:             db,
		redis:          redisClient,
		sectorRepo:     sectorRepo,
		sectorDocs:     store,
		promMiddleware: httpMetrics(),
	}

	var publisher service.DecisionPublisher
	if redisClient != nil {
		server.notifier = notifications.NewNotifier(redisClient)
		server.hub = notifications.NewHub()
		publisher = server.notifier
	}

	server.requestService = service.NewRequestService(
		requestRepo,
		repository.NewPropertyRepository(db),
		repository.NewRequesterRepository(db),
		sectorRepo,
		repository.NewAttachmentRepository(db),
		ledger,
		service.RequestLimits{
			MaxAttachmentBytes: int64(cfg.AttachmentMaxSizeMB) << 20,
			MaxBagsPerRequest:  cfg.MaxBagsPerRequest,
		},
	)
	server.decisionService = service.NewDecisionService(
		requestRepo, ledger, store, publisher,
		time.Duration(cfg.ExportTimeoutSeconds)*time.Second,
	)

	middleware.InitMiddleware(cfg)
	return server, nil
}

var (
	promOnce sync.Once
	prom     *fiberprometheus.FiberPrometheus
)

// httpMetrics returns the shared HTTP metrics middleware. Its collectors live in
// the default registry, so it is created once per process.
func httpMetrics() *fiberprometheus.FiberPrometheus {
	promOnce.Do(func() {
		prom = fiberprometheus.New("bagportal-api")
	})
	return prom
}

// bodyLimit leaves room for three maximum-size attachments plus form fields.
func (s *Server) bodyLimit() int {
	mb := s.config.AttachmentMaxSizeMB
	if mb <= 0 {
		mb = 10
	}
	return (3*mb + 1) << 20
}

// NewApp builds the fiber app with middleware and routes.
func (s *Server) NewApp() *fiber.App {
	app := fiber.New(fiber.Config{
		AppName:   "Bag Portal API",
		BodyLimit: s.bodyLimit(),
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			if fe, ok := err.(*fiber.Error); ok {
				return c.Status(fe.Code).JSON(models.ErrorResponse{Error: fe.Message})
			}
			observability.Logger.ErrorContext(c.UserContext(), "Unhandled error", slog.String("error", err.Error()))
			return models.RespondWithError(c, fiber.StatusInternalServerError, models.NewInternalError(err))
		},
	})
	s.SetupMiddleware(app)
	s.SetupRoutes(app)
	return app
}

// SetupMiddleware configures middleware for the Fiber app
func (s *Server) SetupMiddleware(app *fiber.App) {
	app.Use(recover.New())
	app.Use(requestid.New())
	app.Use(middleware.TracingMiddleware())
	app.Use(middleware.ContextMiddleware())

	if s.promMiddleware != nil {
		s.promMiddleware.RegisterAt(app, "/metrics")
		app.Use(s.promMiddleware.Middleware)
	}

	app.Use(helmet.New())
	app.Use(middleware.StructuredLogger())

	// CORS runs before the limiter so rejected requests still carry CORS headers.
	origins := s.config.AllowedOrigins
	if origins == "" {
		origins = "http://localhost:5173,http://localhost:3000"
	}
	app.Use(cors.New(cors.Config{
		AllowOrigins:     origins,
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization, Upgrade, Connection, Sec-WebSocket-Key, Sec-WebSocket-Version",
		AllowCredentials: true,
		MaxAge:           86400,
	}))

	maxRequests := s.config.RateLimitRequests
	if maxRequests <= 0 {
		maxRequests = 100
	}
	window := time.Duration(s.config.RateLimitWindowSeconds) * time.Second
	if window <= 0 {
		window = time.Minute
	}
	app.Use(limiter.New(limiter.Config{
		Max:        maxRequests,
		Expiration: window,
		Next: func(c *fiber.Ctx) bool {
			return c.Method() == fiber.MethodOptions
		},
		KeyGenerator: func(c *fiber.Ctx) string {
			return c.IP()
		},
		LimitReached: func(c *fiber.Ctx) error {
			return c.Status(fiber.StatusTooManyRequests).JSON(models.ErrorResponse{
				Error: "Too many requests, please try again later.",
			})
		},
	}))
}

// SetupRoutes configures all routes for the application
func (s *Server) SetupRoutes(app *fiber.App) {
	app.Get("/health/live", s.LivenessCheck)
	app.Get("/health/ready", s.ReadinessCheck)

	api := app.Group("/api")
	api.Get("/swagger/*", swagger.HandlerDefault)

	api.Get("/sectors", s.ListSectors)

	protected := api.Group("", middleware.AuthRequired, middleware.ContextMiddleware())

	requesters := protected.Group("/requesters")
	requesters.Post("/", middleware.RateLimit(s.redis, 5, 10*time.Minute, "register_requester"), s.RegisterRequester)
	requesters.Get("/me", s.GetMyRequester)

	requests := protected.Group("/requests")
	requests.Post("/", middleware.RateLimit(s.redis, 10, time.Hour, "submit_request"), s.SubmitRequest)
	requests.Get("/me", s.ListMyRequests)

	protected.Get("/properties/:id/quota", s.GetPropertyQuota)
	protected.Get("/attachments/:id", s.GetAttachment)

	staff := protected.Group("/staff", middleware.StaffRequired)
	staff.Get("/requests", s.ListStaffRequests)
	staff.Post("/requests/:id/decision", s.DecideRequest)
	staff.Get("/sectors/:id/document", s.GetSectorDocument)

	ws := api.Group("/ws", middleware.WebSocketAuthRequired, middleware.StaffRequired)
	ws.Get("/decisions", s.DecisionFeedHandler())
}

// LivenessCheck handles liveness probe requests
func (s *Server) LivenessCheck(c *fiber.Ctx) error {
	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"status": "up",
		"time":   time.Now(),
	})
}

// ReadinessCheck handles readiness probe requests
func (s *Server) ReadinessCheck(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.UserContext(), 5*time.Second)
	defer cancel()

	dbStatus := "healthy"
	if err := database.Ping(ctx, s.db); err != nil {
		dbStatus = "unhealthy"
	}

	// Redis only backs events and distributed rate limits; the portal works without it.
	redisStatus := "unavailable"
	if s.redis != nil {
		redisStatus = "healthy"
		if err := s.redis.Ping(ctx).Err(); err != nil {
			redisStatus = "unhealthy"
		}
	}

	status := fiber.StatusOK
	overallStatus := "healthy"
	if dbStatus != "healthy" {
		status = fiber.StatusServiceUnavailable
		overallStatus = "unhealthy"
	}

	return c.Status(status).JSON(fiber.Map{
		"status": overallStatus,
		"checks": fiber.Map{
			"database":        dbStatus,
			"redis":           redisStatus,
			"sector_document": s.sectorDocs.Dir(),
		},
		"time": time.Now(),
	})
}

// EnsureSectors installs the default sector catalog if it is missing.
func (s *Server) EnsureSectors(ctx context.Context) error {
	return s.sectorRepo.EnsureDefaults(ctx)
}

// Start starts the server
func (s *Server) Start() error {
	ctx, cancel := context.WithCancel(context.Background())
	s.shutdownCtx = ctx
	s.shutdownFn = cancel

	s.app = s.NewApp()

	if s.notifier != nil && s.hub != nil {
		go func() {
			if err := s.hub.StartWiring(s.shutdownCtx, s.notifier); err != nil {
				observability.Logger.Error("Failed to start hub wiring",
					slog.String("hub", s.hub.Name()), slog.String("error", err.Error()))
			}
		}()
	}

	observability.Logger.Info("Server starting", slog.String("port", s.config.Port))
	return s.app.Listen(":" + s.config.Port)
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	if s.shutdownFn != nil {
		s.shutdownFn()
	}

	if s.app != nil {
		if err := s.app.ShutdownWithContext(ctx); err != nil {
			observability.Logger.Error("Error shutting down HTTP server", slog.String("error", err.Error()))
		}
	}

	if s.hub != nil {
		if err := s.hub.Shutdown(ctx); err != nil {
			observability.Logger.Error("Error shutting down hub", slog.String("error", err.Error()))
		}
	}

	if sqlDB, err := s.db.DB(); err == nil {
		if cerr := sqlDB.Close(); cerr != nil {
			observability.Logger.Error("Error closing sql DB", slog.String("error", cerr.Error()))
		}
	}

	if s.redis != nil {
		if rerr := s.redis.Close(); rerr != nil {
			observability.Logger.Error("Error closing redis", slog.String("error", rerr.Error()))
		}
	}

	observability.Logger.Info("Server shutdown complete")
	return nil
}
