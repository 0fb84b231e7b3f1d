package http

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-contrib/requestid"
	"github.com/gin-gonic/gin"

	authzHttp "github.com/salomax/neotool-authz/internal/authz/http"
	authzUseCase "github.com/salomax/neotool-authz/internal/authz/usecase"
	"github.com/salomax/neotool-authz/internal/config"
)

// Admin permissions guarding the management routes. The decision engine
// itself evaluates them, so ABAC policies apply to the admin surface too.
const (
	PermissionRoleManage   = "role:manage"
	PermissionGroupManage  = "group:manage"
	PermissionPolicyManage = "policy:manage"
	PermissionAuditRead    = "audit:read"
)

// Handlers groups the route handlers the API server exposes.
type Handlers struct {
	Authorization *authzHttp.AuthorizationHandler
	Role          *authzHttp.RoleHandler
	Group         *authzHttp.GroupHandler
	Policy        *authzHttp.PolicyHandler
	AuditLog      *authzHttp.AuditLogHandler
}

// Server represents the API HTTP server.
type Server struct {
	server               *http.Server
	config               *config.Config
	logger               *slog.Logger
	authorizationUseCase authzUseCase.AuthorizationUseCase
	handlers             Handlers
	metricsMiddleware    gin.HandlerFunc
	dbPing               func(context.Context) error
}

// NewServer creates a new API server. The metrics middleware and database
// ping function are optional; nil disables them.
func NewServer(
	cfg *config.Config,
	logger *slog.Logger,
	authorizationUseCase authzUseCase.AuthorizationUseCase,
	handlers Handlers,
	metricsMiddleware gin.HandlerFunc,
	dbPing func(context.Context) error,
) *Server {
	return &Server{
		config:               cfg,
		logger:               logger,
		authorizationUseCase: authorizationUseCase,
		handlers:             handlers,
		metricsMiddleware:    metricsMiddleware,
		dbPing:               dbPing,
		server: &http.Server{
			Addr:         fmt.Sprintf("%s:%d", cfg.ServerHost, cfg.ServerPort),
			ReadTimeout:  15 * time.Second,
			WriteTimeout: 15 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
	}
}

// setupRouter builds the gin engine with middleware and routes.
func (s *Server) setupRouter(ctx context.Context) *gin.Engine {
	router := gin.New()

	router.Use(requestid.New())
	router.Use(RecoveryMiddleware(s.logger))
	router.Use(CustomLoggerMiddleware(s.logger))

	if corsMiddleware := createCORSMiddleware(
		s.config.CORSEnabled,
		s.config.CORSAllowOrigins,
		s.logger,
	); corsMiddleware != nil {
		router.Use(corsMiddleware)
	}

	if s.metricsMiddleware != nil {
		router.Use(s.metricsMiddleware)
	}

	router.GET("/healthz", HealthHandler())
	router.GET("/readyz", ReadinessHandler(ctx, s.dbPing))

	v1 := router.Group("/v1")
	v1.Use(authzHttp.PrincipalMiddleware(s.logger))

	if s.config.RateLimitEnabled {
		v1.Use(RateLimitMiddleware(
			s.config.RateLimitRequestsPerSec,
			s.config.RateLimitBurst,
			s.logger,
		))
	}

	v1.POST("/authorization/check", s.handlers.Authorization.CheckHandler)

	roles := v1.Group("/roles")
	roles.Use(authzHttp.RequirePermission(s.authorizationUseCase, PermissionRoleManage, s.logger))
	{
		roles.POST("", s.handlers.Role.CreateHandler)
		roles.GET("", s.handlers.Role.ListHandler)
		roles.GET("/:id", s.handlers.Role.GetHandler)
		roles.PUT("/:id", s.handlers.Role.UpdateHandler)
		roles.DELETE("/:id", s.handlers.Role.DeleteHandler)
		roles.GET("/:id/permissions", s.handlers.Role.ListPermissionsHandler)
		roles.POST("/:id/permissions", s.handlers.Role.AddPermissionHandler)
		roles.DELETE("/:id/permissions/:name", s.handlers.Role.RemovePermissionHandler)
		roles.POST("/:id/assignments", s.handlers.Role.AssignHandler)
		roles.DELETE("/:id/assignments/:userID", s.handlers.Role.RevokeHandler)
	}

	v1.GET("/users/:userID/assignments",
		authzHttp.RequirePermission(s.authorizationUseCase, PermissionRoleManage, s.logger),
		s.handlers.Role.ListAssignmentsHandler,
	)

	groups := v1.Group("/groups")
	groups.Use(authzHttp.RequirePermission(s.authorizationUseCase, PermissionGroupManage, s.logger))
	{
		groups.POST("", s.handlers.Group.CreateHandler)
		groups.GET("", s.handlers.Group.ListHandler)
		groups.GET("/:id", s.handlers.Group.GetHandler)
		groups.PUT("/:id", s.handlers.Group.UpdateHandler)
		groups.DELETE("/:id", s.handlers.Group.DeleteHandler)
		groups.POST("/:id/members", s.handlers.Group.AddMemberHandler)
		groups.DELETE("/:id/members/:userID", s.handlers.Group.RemoveMemberHandler)
		groups.POST("/:id/roles", s.handlers.Group.AssignRoleHandler)
		groups.DELETE("/:id/roles/:roleID", s.handlers.Group.RevokeRoleHandler)
	}

	policies := v1.Group("/policies")
	policies.Use(authzHttp.RequirePermission(s.authorizationUseCase, PermissionPolicyManage, s.logger))
	{
		policies.POST("", s.handlers.Policy.CreateHandler)
		policies.GET("", s.handlers.Policy.ListHandler)
		policies.GET("/:id", s.handlers.Policy.GetHandler)
		policies.PUT("/:id", s.handlers.Policy.UpdateHandler)
		policies.DELETE("/:id", s.handlers.Policy.DeleteHandler)
	}

	v1.GET("/audit-logs",
		authzHttp.RequirePermission(s.authorizationUseCase, PermissionAuditRead, s.logger),
		s.handlers.AuditLog.ListHandler,
	)

	return router
}

// GetHandler returns the http.Handler for testing purposes.
func (s *Server) GetHandler() http.Handler {
	if s.server.Handler == nil {
		s.server.Handler = s.setupRouter(context.Background())
	}
	return s.server.Handler
}

// Start starts the API HTTP server.
func (s *Server) Start(ctx context.Context) error {
	s.server.Handler = s.setupRouter(ctx)

	s.logger.Info("starting http server", slog.String("addr", s.server.Addr))

	if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("failed to start server: %w", err)
	}

	return nil
}

// Shutdown gracefully shuts down the API HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("shutting down http server")
	return s.server.Shutdown(ctx)
}
