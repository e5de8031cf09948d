package handler

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"safar/internal/logger"
	"safar/internal/metrics"
	"safar/internal/session"
)

// BuildInfo is reported by /health and /version
type BuildInfo struct {
	Version   string `json:"version"`
	BuildTime string `json:"build_time"`
	GitCommit string `json:"git_commit"`
}

// Pinger is a dependency checked by /health
type Pinger interface {
	Ping(ctx context.Context) error
}

// Deps are the collaborators the router is assembled from
type Deps struct {
	Trips          *TripHandler
	Auth           *AuthHandler
	Discovery      *DiscoveryHandler
	Sessions       *session.Manager
	Metrics        *metrics.Metrics
	Logger         *zap.Logger
	Build          BuildInfo
	AllowedOrigins string
	// Checks are pinged by /health, keyed by name
	Checks map[string]Pinger
}

// NewRouter wires every route onto a new gin engine
func NewRouter(d Deps) *gin.Engine {
	log := logger.OrNop(d.Logger)

	router := gin.New()
	router.Use(RequestID(), Recovery(log), AccessLog(log))
	if d.Metrics != nil {
		router.Use(Metrics(d.Metrics))
	}
	router.Use(cors.New(corsConfig(d.AllowedOrigins)))
	router.Use(d.Sessions.Middleware())

	router.GET("/health", health(d.Build, d.Checks))
	router.GET("/version", func(c *gin.Context) {
		c.JSON(http.StatusOK, d.Build)
	})
	if d.Metrics != nil {
		router.GET("/metrics", gin.WrapH(d.Metrics.Handler()))
	}

	api := router.Group("/api")
	{
		// Trip lifecycle
		api.POST("/trips", d.Trips.Dispatch)
		api.GET("/trips/:tripId", d.Trips.GetTrip)
		api.GET("/bookings/:bookingId", d.Trips.GetBooking)

		// Accounts
		api.GET("/auth/me", d.Auth.Me)
		api.POST("/auth/onboarding", d.Auth.RequireDatabase(), session.RequireSession(), d.Auth.Onboarding)
		api.POST("/auth/:action", d.Auth.RequireDatabase(), d.Auth.Action)

		api.POST("/discovery", d.Discovery.Recommend)
	}

	return router
}

func corsConfig(allowedOrigins string) cors.Config {
	cfg := cors.DefaultConfig()
	origins := strings.Split(allowedOrigins, ",")
	for i := range origins {
		origins[i] = strings.TrimSpace(origins[i])
	}

	if len(origins) == 1 && origins[0] == "*" {
		// Credentials cannot be combined with a literal wildcard
		cfg.AllowOriginFunc = func(string) bool { return true }
	} else {
		cfg.AllowOrigins = origins
	}
	cfg.AllowCredentials = true
	cfg.AllowMethods = []string{"GET", "POST", "OPTIONS"}
	cfg.AllowHeaders = []string{"Content-Type", "Authorization", requestIDHeader}
	cfg.ExposeHeaders = []string{requestIDHeader}
	return cfg
}

func health(build BuildInfo, checks map[string]Pinger) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()

		status := http.StatusOK
		deps := make(map[string]string, len(checks))
		for name, p := range checks {
			if err := p.Ping(ctx); err != nil {
				deps[name] = "unhealthy"
				status = http.StatusServiceUnavailable
				continue
			}
			deps[name] = "healthy"
		}

		overall := "healthy"
		if status != http.StatusOK {
			overall = "degraded"
		}

		c.JSON(status, gin.H{
			"status":       overall,
			"service":      "safar",
			"version":      build.Version,
			"build_time":   build.BuildTime,
			"git_commit":   build.GitCommit,
			"dependencies": deps,
		})
	}
}
