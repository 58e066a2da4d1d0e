package server

import (
	"fmt"
	"net/http"
	"sync"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"

	configparser "github.com/qlog-io/qlog/internal/config"
	"github.com/qlog-io/qlog/internal/filter"
	"github.com/qlog-io/qlog/internal/handler"
	"github.com/qlog-io/qlog/internal/iputil"
	"github.com/qlog-io/qlog/internal/logger"
)

// Dependencies holds the dependencies needed by the server.
type Dependencies struct {
	Config        *configparser.Config
	LoggerManager *logger.Manager
	Filter        *filter.Filter
	AppLogger     *logger.AppLogger
}

// Server is the optional HTTP ingest front of the queued loggers.
type Server struct {
	router        *gin.Engine
	config        *configparser.Config
	loggerManager *logger.Manager
	appLogger     *logger.AppLogger
	// Rate limiting specific
	limiters   map[string]*rate.Limiter
	limiterMu  sync.Mutex
	rateLimit  rate.Limit
	burstLimit int
	deps       Dependencies
}

// NewServer creates a new server instance with its dependencies.
func NewServer(deps Dependencies) *Server {
	if deps.Config == nil {
		panic("server: Config dependency cannot be nil")
	}
	if deps.LoggerManager == nil {
		panic("server: LoggerManager dependency cannot be nil")
	}
	if deps.Filter == nil {
		panic("server: Filter dependency cannot be nil")
	}
	if deps.AppLogger == nil {
		panic("server: AppLogger dependency cannot be nil")
	}

	if deps.Config.Server.Mode == "production" {
		gin.SetMode(gin.ReleaseMode)
	} else {
		gin.SetMode(gin.DebugMode)
	}

	router := gin.New()
	router.Use(gin.Recovery())

	server := &Server{
		router:        router,
		config:        deps.Config,
		loggerManager: deps.LoggerManager,
		appLogger:     deps.AppLogger,
		limiters:      make(map[string]*rate.Limiter),
		deps:          deps,
	}

	if deps.Config.Server.RequestLimits.RateLimit > 0 {
		// Convert requests per minute to requests per second
		server.rateLimit = rate.Limit(float64(deps.Config.Server.RequestLimits.RateLimit) / 60.0)
		server.burstLimit = deps.Config.Server.RequestLimits.RateLimit
		deps.AppLogger.Info("Rate limiting enabled for /log: Rate=%.2f req/sec, Burst=%d", float64(server.rateLimit), server.burstLimit)
	} else {
		server.rateLimit = rate.Inf
		server.burstLimit = 0
	}

	server.setupRoutes()
	return server
}

// setupRoutes configures the HTTP routes
func (s *Server) setupRoutes() {
	s.router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	s.router.HEAD("/health", func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	s.router.GET("/version", handler.VersionHandler)
	s.router.GET("/status", handler.NewStatusHandler(s.loggerManager))

	logGroup := s.router.Group("/log")
	if s.rateLimit != rate.Inf {
		logGroup.Use(s.rateLimitMiddleware())
	}
	logGroup.POST("", handler.NewLogHandler(handler.LogHandlerDependencies{
		LoggerManager: s.deps.LoggerManager,
		Filter:        s.deps.Filter,
		Config:        s.deps.Config,
		AppLogger:     s.deps.AppLogger,
	}))
}

// rateLimitMiddleware creates a Gin middleware for rate limiting based on IP.
func (s *Server) rateLimitMiddleware() gin.HandlerFunc {
	parsedTrustedProxies, err := iputil.ParseCIDRs(s.config.Server.TrustedProxies)
	if err != nil {
		// Validation should have caught this; deny everything rather than
		// run with an unchecked proxy list.
		s.appLogger.Error("Failed to parse trusted proxies for rate limiter: %v", err)
		return func(c *gin.Context) {
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Internal server error (rate limiter config)"})
		}
	}

	return func(c *gin.Context) {
		ip := iputil.GetClientIP(c.Request, parsedTrustedProxies, s.config.Server.ClientIPHeader)

		s.limiterMu.Lock()
		limiter, exists := s.limiters[ip]
		if !exists {
			limiter = rate.NewLimiter(s.rateLimit, s.burstLimit)
			s.limiters[ip] = limiter
		}
		s.limiterMu.Unlock()

		if !limiter.Allow() {
			s.appLogger.Info("Rate limit exceeded for IP: %s", ip)
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"error": "Rate limit exceeded"})
			return
		}

		c.Next()
	}
}

// Start starts the HTTP server
func (s *Server) Start() error {
	addr := fmt.Sprintf("%s:%d", s.config.Server.Host, s.config.Server.Port)
	s.appLogger.Info("Starting ingest server on %s", addr)
	return s.router.Run(addr)
}
