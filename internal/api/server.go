// Package api exposes the signal engine over HTTP for the dashboard and
// the order-placement flow.
package api

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"time"

	"smc-signal-engine/internal/auth"
	"smc-signal-engine/internal/cache"
	"smc-signal-engine/internal/database"
	"smc-signal-engine/internal/events"
	"smc-signal-engine/internal/logging"
	"smc-signal-engine/internal/quality"
	"smc-signal-engine/internal/risk"
	"smc-signal-engine/internal/signal"
	"smc-signal-engine/internal/validator"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// RateLimiter provides simple in-memory rate limiting per endpoint
type RateLimiter struct {
	requests map[string][]time.Time
	mu       sync.Mutex
	limit    int
	window   time.Duration
}

// NewRateLimiter creates a new rate limiter
func NewRateLimiter(limit int, window time.Duration) *RateLimiter {
	return &RateLimiter{
		requests: make(map[string][]time.Time),
		limit:    limit,
		window:   window,
	}
}

// Allow checks if a request is allowed for the given key
func (r *RateLimiter) Allow(key string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := time.Now()
	windowStart := now.Add(-r.window)

	var recent []time.Time
	for _, t := range r.requests[key] {
		if t.After(windowStart) {
			recent = append(recent, t)
		}
	}

	if len(recent) >= r.limit {
		r.requests[key] = recent
		return false
	}

	r.requests[key] = append(recent, now)
	return true
}

// Store is the persistence surface the handlers need. *database.Repository
// implements it; tests use a fake.
type Store interface {
	HealthCheck(ctx context.Context) error
	CreateEvaluation(ctx context.Context, eval *database.SignalEvaluation) error
	GetEvaluationByID(ctx context.Context, id string) (*database.SignalEvaluation, error)
	ListEvaluations(ctx context.Context, symbol string, limit int) ([]*database.SignalEvaluation, error)
	CreateAccountSnapshot(ctx context.Context, snap *database.AccountSnapshot) error
}

// ServerConfig holds server configuration
type ServerConfig struct {
	Port            int
	Host            string
	ProductionMode  bool
	AllowedOrigins  []string
	RateLimitPerMin int
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	ShutdownTimeout time.Duration
}

// Server represents the HTTP API server
type Server struct {
	router      *gin.Engine
	httpServer  *http.Server
	config      ServerConfig
	store       Store
	validator   *validator.Validator
	classifier  *quality.Classifier
	riskManager *risk.Manager
	assessments *cache.AssessmentCache
	eventBus    *events.EventBus
	jwtManager  *auth.JWTManager
	strategyCfg signal.StrategyConfig
	rateLimiter *RateLimiter
	hub         *WSHub
	logger      *logging.Logger
}

// NewServer creates a new API server. jwtManager may be nil to disable
// authentication (local development); assessments may be nil to disable
// caching.
func NewServer(
	config ServerConfig,
	store Store,
	v *validator.Validator,
	classifier *quality.Classifier,
	riskManager *risk.Manager,
	assessments *cache.AssessmentCache,
	eventBus *events.EventBus,
	jwtManager *auth.JWTManager,
	strategyCfg signal.StrategyConfig,
) *Server {
	if config.ProductionMode {
		gin.SetMode(gin.ReleaseMode)
	} else {
		gin.SetMode(gin.DebugMode)
	}

	router := gin.New()
	router.Use(gin.Logger())
	router.Use(gin.Recovery())

	corsConfig := cors.DefaultConfig()
	if len(config.AllowedOrigins) > 0 {
		corsConfig.AllowOrigins = config.AllowedOrigins
	} else {
		corsConfig.AllowOrigins = []string{"http://localhost:5173"}
	}
	corsConfig.AllowMethods = []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Type", "Authorization"}
	corsConfig.AllowCredentials = true
	router.Use(cors.New(corsConfig))

	rateLimit := config.RateLimitPerMin
	if rateLimit <= 0 {
		rateLimit = 120
	}

	server := &Server{
		router:      router,
		config:      config,
		store:       store,
		validator:   v,
		classifier:  classifier,
		riskManager: riskManager,
		assessments: assessments,
		eventBus:    eventBus,
		jwtManager:  jwtManager,
		strategyCfg: strategyCfg,
		rateLimiter: NewRateLimiter(rateLimit, time.Minute),
		hub:         NewWSHub(),
		logger:      logging.WithComponent("api"),
	}

	server.setupRoutes()
	server.wireEvents()

	return server
}

// rateLimitMiddleware rate limits requests by endpoint path.
func (s *Server) rateLimitMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		path := c.FullPath()
		if path == "" {
			path = c.Request.URL.Path
		}
		if !s.rateLimiter.Allow(path) {
			c.JSON(http.StatusTooManyRequests, gin.H{
				"error":   "RATE_LIMITED",
				"message": "too many requests to this endpoint",
			})
			c.Abort()
			return
		}
		c.Next()
	}
}

// setupRoutes configures all API routes
func (s *Server) setupRoutes() {
	s.router.GET("/health", s.handleHealth)
	s.router.GET("/ws", s.handleWebSocket)

	api := s.router.Group("/api")
	api.Use(s.rateLimitMiddleware())
	if s.jwtManager != nil {
		api.Use(auth.Middleware(s.jwtManager))
		api.Use(auth.RequireSubscription())
	}

	api.POST("/signals/validate", s.handleValidateSignal)
	api.POST("/signals/assess", s.handleAssessSignal)
	api.GET("/evaluations", s.handleListEvaluations)
	api.GET("/evaluations/:id", s.handleGetEvaluation)
	api.GET("/confluence/factors", s.handleFactorCatalog)
	api.GET("/pairs/rules", s.handlePairRules)
	api.POST("/risk/position-size", s.handlePositionSize)
	api.POST("/risk/adjust-stop", s.handleAdjustStop)
	api.GET("/risk/metrics", s.handleRiskMetrics)
	api.POST("/account/balance", s.handleUpdateBalance)
}

// wireEvents forwards engine events to websocket clients.
func (s *Server) wireEvents() {
	go s.hub.Run()
	if s.eventBus == nil {
		return
	}
	s.eventBus.SubscribeAll(func(e events.Event) {
		s.hub.BroadcastEvent(e)
	})
}

// Start runs the HTTP server until the context is cancelled.
func (s *Server) Start(ctx context.Context) error {
	s.httpServer = &http.Server{
		Addr:         fmt.Sprintf("%s:%d", s.config.Host, s.config.Port),
		Handler:      s.router,
		ReadTimeout:  s.config.ReadTimeout,
		WriteTimeout: s.config.WriteTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("API server listening", "addr", s.httpServer.Addr)
		if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.config.ShutdownTimeout)
	defer cancel()
	return s.httpServer.Shutdown(shutdownCtx)
}

// Router exposes the gin engine for tests.
func (s *Server) Router() *gin.Engine {
	return s.router
}
