package server

import (
	"fmt"

	"github.com/gin-gonic/gin"
	"github.com/nats-io/nats.go"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"opensite/api/internal/config"
	"opensite/api/internal/handler"
	"opensite/api/internal/middleware"
	"opensite/api/internal/model"
	"opensite/api/internal/service"
	"opensite/api/internal/store"

	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

// Server wires the store, services and handlers into a gin router.
type Server struct {
	router  *gin.Engine
	config  *config.Config
	store   *store.Store
	redis   *redis.Client
	nats    *nats.Conn
	lg      *zap.SugaredLogger
	tracker *service.CrewTracker
	wsHub   *handler.WSHub
}

// NewServer creates a new server instance.
func NewServer(cfg *config.Config, s *store.Store, redisClient *redis.Client, natsConn *nats.Conn, tracker *service.CrewTracker, lg *zap.SugaredLogger) *Server {
	return &Server{
		config:  cfg,
		store:   s,
		redis:   redisClient,
		nats:    natsConn,
		tracker: tracker,
		lg:      lg,
	}
}

// Setup initializes routes and handlers.
func (s *Server) Setup() {
	s.wsHub = handler.NewWSHub(s.nats, s.lg)
	wsHandler := handler.NewWSHandler(s.wsHub)

	authService := service.NewAuthService(s.store)
	reportService := service.NewReportService(s.store)
	assistant := service.NewAssistant(generatorOrNil(s.config), s.lg)

	authHandler := handler.NewAuthHandler(authService, s.config)
	userHandler := handler.NewUserHandler(s.store, authService)
	projectHandler := handler.NewProjectHandler(s.store)
	timesheetHandler := handler.NewTimesheetHandler(s.store, reportService)
	documentHandler := handler.NewDocumentHandler(s.store)
	todoHandler := handler.NewTodoHandler(s.store)
	equipmentHandler := handler.NewEquipmentHandler(s.store)
	invoiceHandler := handler.NewInvoiceHandler(s.store)
	safetyHandler := handler.NewSafetyHandler(s.store, assistant)
	assistantHandler := handler.NewAssistantHandler(s.store, assistant)
	auditHandler := handler.NewAuditHandler(s.store, reportService)
	positionHandler := handler.NewPositionHandler(s.nats, s.tracker, s.store)

	rbac := middleware.NewRBACMiddleware(s.store)

	go s.wsHub.Run()

	s.router = gin.Default()

	// CORS middleware
	s.router.Use(func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Origin, Content-Type, Authorization")
		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}
		c.Next()
	})

	// Swagger UI
	s.router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// Public routes
	s.router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	login := s.router.Group("")
	if s.config.RateLimitEnabled {
		limiter := middleware.NewRedisRateLimiter(s.redis)
		login.Use(middleware.RateLimit(limiter, &middleware.RateLimitConfig{
			Limit:  s.config.LoginLimitPerMinute,
			Window: 60,
		}))
	}
	login.POST("/api/v1/auth/login", authHandler.Login)

	// WebSocket routes
	s.router.GET("/ws/live", wsHandler.HandleLive)
	s.router.GET("/ws/stats", wsHandler.GetStats)

	// Protected routes
	api := s.router.Group("/api/v1")
	api.Use(authHandler.AuthMiddleware())
	{
		// Auth
		api.GET("/auth/me", authHandler.GetMe)

		// Users
		api.POST("/users", rbac.RequirePermission(model.PermissionManageUsers), userHandler.Create)
		api.GET("/users", userHandler.List)
		api.GET("/users/:id", userHandler.Get)
		api.PUT("/users/:id/role", rbac.RequirePermission(model.PermissionManageUsers), userHandler.UpdateRole)
		api.POST("/users/:id/deactivate", rbac.RequirePermission(model.PermissionManageUsers), userHandler.Deactivate)

		// Projects
		api.POST("/projects", rbac.RequirePermission(model.PermissionManageProjects), projectHandler.Create)
		api.GET("/projects", projectHandler.List)
		api.GET("/projects/:id", projectHandler.Get)
		api.PUT("/projects/:id/status", rbac.RequirePermission(model.PermissionManageProjects), projectHandler.UpdateStatus)
		api.POST("/projects/:id/geofence/check", projectHandler.CheckLocation)
		api.GET("/projects/:id/risks", rbac.RequirePermission(model.PermissionUseAssistant), assistantHandler.ProjectRisks)

		// Timesheets
		api.POST("/timesheets/clock-in", timesheetHandler.ClockIn)
		api.POST("/timesheets/:id/clock-out", timesheetHandler.ClockOut)
		api.POST("/timesheets/:id/review", rbac.RequirePermission(model.PermissionManageTimesheets), timesheetHandler.Review)
		api.GET("/timesheets", timesheetHandler.List)
		api.GET("/timesheets/export", rbac.RequirePermission(model.PermissionManageTimesheets), timesheetHandler.Export)
		api.GET("/timesheets/:id", timesheetHandler.Get)

		// Documents
		api.POST("/documents/uploads", documentHandler.InitiateUpload)
		api.POST("/documents/uploads/:task_id/progress", documentHandler.ReportProgress)
		api.POST("/documents/uploads/:task_id/finalize", documentHandler.FinalizeUpload)
		api.GET("/documents", documentHandler.List)
		api.GET("/documents/search", documentHandler.Search)

		// Todos
		api.POST("/todos", todoHandler.Create)
		api.PUT("/todos/:id", todoHandler.Update)
		api.GET("/todos", todoHandler.List)

		// Equipment
		api.POST("/equipment", rbac.RequirePermission(model.PermissionManageEquipment), equipmentHandler.Create)
		api.GET("/equipment", equipmentHandler.List)
		api.POST("/equipment/:id/assign", rbac.RequirePermission(model.PermissionManageEquipment), equipmentHandler.Assign)
		api.POST("/equipment/:id/release", rbac.RequirePermission(model.PermissionManageEquipment), equipmentHandler.Release)
		api.POST("/equipment/:id/maintenance", rbac.RequirePermission(model.PermissionManageEquipment), equipmentHandler.SetMaintenance)

		// Invoices
		api.POST("/invoices", rbac.RequirePermission(model.PermissionManageFinancials), invoiceHandler.Create)
		api.GET("/invoices", rbac.RequirePermission(model.PermissionManageFinancials), invoiceHandler.List)
		api.PUT("/invoices/:id/status", rbac.RequirePermission(model.PermissionManageFinancials), invoiceHandler.UpdateStatus)

		// Safety
		api.POST("/incidents", safetyHandler.Report)
		api.GET("/incidents", safetyHandler.List)
		api.PUT("/incidents/:id/status", rbac.RequirePermission(model.PermissionManageSafety), safetyHandler.UpdateStatus)
		api.POST("/incidents/:id/analyze", rbac.RequirePermission(model.PermissionUseAssistant), safetyHandler.Analyze)

		// Assistant
		api.POST("/assistant/estimate-cost", rbac.RequirePermission(model.PermissionUseAssistant), assistantHandler.EstimateCost)

		// Positions
		uplink := api.Group("")
		if s.config.RateLimitEnabled {
			limiter := middleware.NewRedisRateLimiter(s.redis)
			uplink.Use(middleware.RateLimit(limiter, &middleware.RateLimitConfig{
				Limit:   s.config.UplinkLimitPerMin,
				Window:  60,
				KeyFunc: middleware.UserKey,
			}))
		}
		uplink.POST("/positions/uplink", positionHandler.Uplink)
		api.GET("/positions/:user_id/latest", positionHandler.GetLatest)
		api.DELETE("/positions/session", positionHandler.EndSession)
		api.GET("/alerts/recent", positionHandler.RecentAlerts)

		// Audit log
		auditHandler.RegisterRoutes(api)
	}
}

// generatorOrNil builds the LLM generator when one is configured. The
// non-nil interface trap: a nil *ChatGenerator must not be wrapped.
func generatorOrNil(cfg *config.Config) service.Generator {
	if g := service.NewChatGenerator(cfg); g != nil {
		return g
	}
	return nil
}

// Run starts the HTTP server.
func (s *Server) Run() error {
	addr := fmt.Sprintf(":%d", s.config.APIPort)
	s.lg.Infow("http server listening", "addr", addr)
	return s.router.Run(addr)
}

// GetRouter returns the gin router for testing.
func (s *Server) GetRouter() *gin.Engine {
	return s.router
}

// GetWSHub returns the WebSocket hub.
func (s *Server) GetWSHub() *handler.WSHub {
	return s.wsHub
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown() {
	if s.wsHub != nil {
		s.wsHub.Stop()
		s.lg.Infow("ws hub stopped")
	}
}
