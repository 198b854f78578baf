package api

import (
	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	echoSwagger "github.com/swaggo/echo-swagger"

	_ "github.com/projectwatch/dashboard-api/docs"
	"github.com/projectwatch/dashboard-api/internal/api/handler"
	"github.com/projectwatch/dashboard-api/internal/api/middleware"
	"github.com/projectwatch/dashboard-api/internal/core/domain"
	"github.com/projectwatch/dashboard-api/internal/core/ports"
)

// Deps are the collaborators the HTTP layer is built from.
type Deps struct {
	Projects          ports.ProjectService
	Reactions         ports.ReactionService
	Analytics         ports.AnalyticsService
	Users             ports.UserService
	Auth              ports.AuthService
	ProviderSettings  ports.ProviderSettings
	IdentityProviders []ports.IdentityProvider

	// Checks are pinged by the readiness probe, keyed by dependency name.
	Checks map[string]handler.Check

	JWTSecret string
	// RateLimitRPS bounds rating submissions per user; 0 disables the limiter.
	RateLimitRPS  float64
	SecureCookies bool

	// Registry receives the HTTP metrics. Nil means the prometheus default registry.
	Registry *prometheus.Registry

	Log zerolog.Logger
}

// NewRouter builds and returns the Echo instance with all routes registered.
func NewRouter(d Deps) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = NewHTTPErrorHandler(d.Log)

	var (
		registerer prometheus.Registerer = prometheus.DefaultRegisterer
		gatherer   prometheus.Gatherer   = prometheus.DefaultGatherer
	)
	if d.Registry != nil {
		registerer, gatherer = d.Registry, d.Registry
	}

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(requestLogger(d.Log))
	e.Use(echoprometheus.NewMiddlewareWithConfig(echoprometheus.MiddlewareConfig{
		Namespace:  "dashboard",
		Registerer: registerer,
		Skipper: func(c echo.Context) bool {
			return c.Path() == "/metrics" || c.Path() == "/health" || c.Path() == "/health/ready"
		},
	}))

	// --- Handlers ---
	healthHandler := handler.NewHealthHandler(d.Checks)
	authHandler := handler.NewAuthHandler(d.Auth)
	oauthHandler := handler.NewOAuthHandler(d.IdentityProviders, d.ProviderSettings, d.Auth, d.SecureCookies, d.Log)
	projectHandler := handler.NewProjectHandler(d.Projects)
	reactionHandler := handler.NewReactionHandler(d.Reactions)
	analyticsHandler := handler.NewAnalyticsHandler(d.Analytics)
	userHandler := handler.NewUserHandler(d.Users)
	settingsHandler := handler.NewSettingsHandler(d.ProviderSettings, d.Log)

	authenticated := middleware.Auth(d.JWTSecret)
	admin := middleware.RBAC(domain.RoleAdmin)
	submitMiddleware := []echo.MiddlewareFunc{authenticated}
	if d.RateLimitRPS > 0 {
		submitMiddleware = append(submitMiddleware, middleware.RateLimit(d.RateLimitRPS))
	}

	// --- Health probes, metrics and docs (no auth required) ---
	e.GET("/health", healthHandler.Liveness)
	e.GET("/health/ready", healthHandler.Readiness)
	e.GET("/metrics", echoprometheus.NewHandlerWithConfig(echoprometheus.HandlerConfig{Gatherer: gatherer}))
	e.GET("/swagger/*", echoSwagger.WrapHandler)

	// --- Auth routes ---
	e.POST("/auth/login", authHandler.Login)
	e.GET("/auth/providers", oauthHandler.Providers)
	e.GET("/auth/:provider/login", oauthHandler.Login)
	e.GET("/auth/:provider/callback", oauthHandler.Callback)

	v1 := e.Group("/v1")

	// --- Public reads ---
	v1.GET("/projects", projectHandler.List)
	v1.GET("/projects/:id", projectHandler.Get)
	v1.GET("/projects/:id/reactions", reactionHandler.ListForProject)
	v1.GET("/analytics", analyticsHandler.Snapshot)
	v1.GET("/leaderboard/contractors", analyticsHandler.Contractors)
	v1.GET("/leaderboard/projects", analyticsHandler.Projects)
	v1.GET("/leaderboard/users", analyticsHandler.Users)

	// --- Signed-in users ---
	v1.POST("/projects/:id/reactions", reactionHandler.Submit, submitMiddleware...)
	v1.DELETE("/projects/:id/reactions", reactionHandler.Remove, authenticated)
	v1.POST("/projects/:id/proximity", reactionHandler.CheckProximity, authenticated)
	v1.GET("/me", userHandler.Me, authenticated)
	v1.PATCH("/me", userHandler.UpdateProfile, authenticated)
	v1.PUT("/me/location", userHandler.UpdateLocation, authenticated)
	v1.GET("/me/reactions", reactionHandler.ListMine, authenticated)

	// --- Administration ---
	v1.POST("/projects", projectHandler.Create, authenticated, admin)
	v1.POST("/projects/bulk", projectHandler.CreateBulk, authenticated, admin)
	v1.POST("/projects/bulk-delete", projectHandler.DeleteBulk, authenticated, admin)
	v1.PATCH("/projects/:id", projectHandler.Update, authenticated, admin)
	v1.DELETE("/projects/:id", projectHandler.Delete, authenticated, admin)
	v1.GET("/admin/settings/providers", settingsHandler.GetProviders, authenticated, admin)
	v1.PUT("/admin/settings/providers", settingsHandler.PutProviders, authenticated, admin)

	return e
}

// requestLogger writes one structured line per request.
func requestLogger(log zerolog.Logger) echo.MiddlewareFunc {
	return echomiddleware.RequestLoggerWithConfig(echomiddleware.RequestLoggerConfig{
		LogMethod:    true,
		LogURI:       true,
		LogStatus:    true,
		LogLatency:   true,
		LogRequestID: true,
		LogError:     true,
		HandleError:  true,
		LogValuesFunc: func(c echo.Context, v echomiddleware.RequestLoggerValues) error {
			ev := log.Info()
			switch {
			case v.Status >= 500:
				ev = log.Error()
			case v.Status >= 400:
				ev = log.Warn()
			}
			if v.Error != nil {
				ev.Err(v.Error)
			}
			ev.Str("method", v.Method).
				Str("uri", v.URI).
				Int("status", v.Status).
				Dur("latency", v.Latency).
				Str("request_id", v.RequestID)
			if id, ok := c.Get(handler.CtxUserID).(string); ok {
				ev.Str("user_id", id)
			}
			ev.Msg("request")
			return nil
		},
	})
}
