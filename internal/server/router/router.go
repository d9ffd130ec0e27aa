package router

import (
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/mamadbah2/dairyfeed/internal/config"
	"github.com/mamadbah2/dairyfeed/internal/ratelimit"
	"github.com/mamadbah2/dairyfeed/internal/repository/mongodb"
	"github.com/mamadbah2/dairyfeed/internal/server/handlers"
	"github.com/mamadbah2/dairyfeed/internal/service/auth"
)

// Deps bundles everything the router wires together.
type Deps struct {
	Auth       *handlers.AuthHandler
	Feeds      *handlers.FeedHandler
	Evaluation *handlers.EvaluationHandler

	AuthSvc *auth.Service
	Limiter *ratelimit.Registry
	Orgs    mongodb.AuthRepository
	Usage   mongodb.UsageRepository
}

// New wires the Gin engine with routes and middlewares.
func New(cfg config.ServerConfig, deps Deps, logger *zap.Logger) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(zapLoggerMiddleware(logger))
	r.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.AllowedOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Authorization", "Content-Type", "X-API-Key"},
		AllowCredentials: false,
		MaxAge:           12 * time.Hour,
	}))

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	public := r.Group("/v1/auth")
	public.POST("/login", deps.Auth.Login)
	public.POST("/otp/request", deps.Auth.RequestOTP)
	public.POST("/otp/verify", deps.Auth.VerifyOTP)

	v1 := r.Group("/v1")
	v1.Use(authMiddleware(deps.AuthSvc, logger))
	v1.Use(rateLimitMiddleware(deps.Limiter, deps.Orgs, deps.Usage, logger))

	v1.POST("/auth/keys", deps.Auth.IssueKey)

	v1.GET("/feeds", deps.Feeds.ListStandard)
	v1.GET("/feeds/:id", deps.Feeds.GetStandard)

	v1.GET("/custom-feeds", deps.Feeds.ListCustom)
	v1.POST("/custom-feeds", deps.Feeds.CreateCustom)
	v1.GET("/custom-feeds/:id", deps.Feeds.GetCustom)
	v1.PUT("/custom-feeds/:id", deps.Feeds.UpdateCustom)
	v1.DELETE("/custom-feeds/:id", deps.Feeds.DeleteCustom)
	v1.POST("/custom-feeds/import", deps.Feeds.Import)

	v1.POST("/evaluations", deps.Evaluation.Evaluate)

	if logger != nil {
		logger.Info("router initialized")
	}

	return r
}

// authMiddleware accepts either a bearer session token or an API key and
// stores the resolved organization in the request context.
func authMiddleware(svc *auth.Service, logger *zap.Logger) gin.HandlerFunc {
	if logger == nil {
		logger = zap.NewNop()
	}

	return func(c *gin.Context) {
		if apiKey := c.GetHeader("X-API-Key"); apiKey != "" {
			orgID, err := svc.VerifyAPIKey(c.Request.Context(), apiKey)
			if err != nil {
				logger.Warn("api key rejected", zap.String("path", c.Request.URL.Path))
				c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid credentials"})
				return
			}
			c.Set(handlers.OrgIDKey, orgID)
			c.Set(handlers.AuthKindKey, handlers.AuthKindAPIKey)
			c.Next()
			return
		}

		header := c.GetHeader("Authorization")
		token, found := strings.CutPrefix(header, "Bearer ")
		if !found || token == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing credentials"})
			return
		}

		claims, err := svc.ParseToken(token)
		if err != nil {
			logger.Warn("session token rejected", zap.String("path", c.Request.URL.Path))
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid credentials"})
			return
		}

		c.Set(handlers.OrgIDKey, claims.OrgID)
		c.Set(handlers.AuthKindKey, handlers.AuthKindSession)
		c.Next()
	}
}

// rateLimitMiddleware enforces the per-organization token bucket and records
// usage counters. The first request of an organization seeds its bucket with
// the rate override from the tenant record, if any. Counter writes are best
// effort; a failing usage store must not fail the request.
func rateLimitMiddleware(limiter *ratelimit.Registry, orgs mongodb.AuthRepository, usage mongodb.UsageRepository, logger *zap.Logger) gin.HandlerFunc {
	if logger == nil {
		logger = zap.NewNop()
	}

	var seeded sync.Map

	return func(c *gin.Context) {
		orgID := c.GetString(handlers.OrgIDKey)

		var allowed bool
		if _, ok := seeded.Load(orgID); ok || orgs == nil {
			allowed = limiter.Allow(orgID)
		} else {
			var rps float64
			var burst int
			if org, err := orgs.GetOrganization(c.Request.Context(), orgID); err == nil {
				rps, burst = org.RateRPS, org.RateBurst
			} else {
				logger.Warn("tenant lookup for rate override failed", zap.String("org_id", orgID), zap.Error(err))
			}
			allowed = limiter.AllowWithOverride(orgID, rps, burst)
			seeded.Store(orgID, struct{}{})
		}

		if usage != nil {
			if err := usage.IncrementUsage(c.Request.Context(), orgID, !allowed); err != nil {
				logger.Warn("usage counter write failed", zap.Error(err))
			}
		}

		if !allowed {
			c.Header("Retry-After", "1")
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"error": "rate limit exceeded"})
			return
		}

		c.Next()
	}
}

func zapLoggerMiddleware(logger *zap.Logger) gin.HandlerFunc {
	if logger == nil {
		logger = zap.NewNop()
	}

	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		logger.Info("request completed",
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("duration", time.Since(start)),
			zap.String("client_ip", c.ClientIP()))
	}
}
