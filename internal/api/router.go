package api

import (
	"net/http"

	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	echoSwagger "github.com/swaggo/echo-swagger"

	_ "github.com/wordlab/study-api/docs"
	"github.com/wordlab/study-api/internal/api/handler"
	"github.com/wordlab/study-api/internal/api/middleware"
	"github.com/wordlab/study-api/internal/core/domain"
	"github.com/wordlab/study-api/internal/core/ports"
)

// Dependencies are the services and probes the router is wired with.
type Dependencies struct {
	Auth        ports.AuthService
	Tokens      ports.TokenVerifier
	Experiments ports.ExperimentService
	Content     ports.ContentService
	Sessions    ports.SessionService

	// Checks back the readiness probe, keyed by dependency name.
	Checks map[string]handler.Check

	// AudioDir is served under AudioPath when set (local blob driver).
	AudioDir  string
	AudioPath string

	// Registerer and Gatherer default to the prometheus globals.
	Registerer prometheus.Registerer
	Gatherer   prometheus.Gatherer

	Logger zerolog.Logger
}

// NewRouter builds and returns the Echo instance with all routes registered.
func NewRouter(deps Dependencies) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = NewHTTPErrorHandler(deps.Logger)

	registerer := deps.Registerer
	if registerer == nil {
		registerer = prometheus.DefaultRegisterer
	}
	gatherer := deps.Gatherer
	if gatherer == nil {
		gatherer = prometheus.DefaultGatherer
	}

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(echomiddleware.CORS())
	e.Use(requestLogger(deps.Logger))
	e.Use(echoprometheus.NewMiddlewareWithConfig(echoprometheus.MiddlewareConfig{
		Subsystem:  "http",
		Registerer: registerer,
	}))

	// --- Handlers ---
	authHandler := handler.NewAuthHandler(deps.Auth)
	experimentHandler := handler.NewExperimentHandler(deps.Experiments, deps.Content)
	sessionHandler := handler.NewSessionHandler(deps.Sessions)
	healthHandler := handler.NewHealthHandler(deps.Checks)

	requireAuth := middleware.Auth(deps.Tokens)
	teacherOnly := middleware.RBAC(domain.RoleTeacher)
	participantOnly := middleware.RBAC(domain.RoleParticipant)

	api := e.Group("/api")

	// --- Auth routes ---
	api.POST("/auth/register", authHandler.Register)
	api.POST("/auth/login", authHandler.Login)

	// --- Experiments ---
	exps := api.Group("/experiments", requireAuth)
	exps.GET("", experimentHandler.ListOwned, teacherOnly)
	exps.POST("", experimentHandler.Create, teacherOnly)
	exps.GET("/available", experimentHandler.ListAvailable, participantOnly)
	exps.GET("/:id", experimentHandler.Get)
	exps.PUT("/:id", experimentHandler.Update, teacherOnly)
	exps.DELETE("/:id", experimentHandler.Delete, teacherOnly)
	exps.POST("/:id/generate-content", experimentHandler.GenerateContent, teacherOnly)
	exps.POST("/:id/sessions", sessionHandler.Start)

	// --- Participant sessions ---
	sessions := api.Group("/sessions", requireAuth)
	sessions.GET("/:sessionId", sessionHandler.Get)
	sessions.POST("/:sessionId/advance", sessionHandler.Advance)

	// --- Health probes (no auth required) ---
	api.GET("/health", healthHandler.Liveness)
	e.GET("/health", healthHandler.Liveness)
	e.GET("/health/ready", healthHandler.Readiness)

	// --- Ops ---
	e.GET("/metrics", echoprometheus.NewHandlerWithConfig(echoprometheus.HandlerConfig{Gatherer: gatherer}))
	e.GET("/swagger/*", echoSwagger.WrapHandler)

	if deps.AudioDir != "" {
		path := deps.AudioPath
		if path == "" {
			path = "/audio"
		}
		e.Static(path, deps.AudioDir)
	}

	return e
}

// requestLogger writes one zerolog event per request.
func requestLogger(log zerolog.Logger) echo.MiddlewareFunc {
	return echomiddleware.RequestLoggerWithConfig(echomiddleware.RequestLoggerConfig{
		LogMethod:    true,
		LogURI:       true,
		LogStatus:    true,
		LogLatency:   true,
		LogRequestID: true,
		LogError:     true,
		HandleError:  true,
		LogValuesFunc: func(_ echo.Context, v echomiddleware.RequestLoggerValues) error {
			ev := log.Info()
			switch {
			case v.Status >= http.StatusInternalServerError:
				ev = log.Error().Err(v.Error)
			case v.Error != nil:
				ev = log.Warn().Err(v.Error)
			}
			ev.Str("method", v.Method).
				Str("uri", v.URI).
				Int("status", v.Status).
				Dur("latency", v.Latency).
				Str("request_id", v.RequestID).
				Msg("request")
			return nil
		},
	})
}
