// Package api assembles the HTTP surface of the server.
package api

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/codyseavey/textify/internal/api/handlers"
	"github.com/codyseavey/textify/internal/metrics"
	"github.com/codyseavey/textify/internal/middleware"
	"github.com/codyseavey/textify/internal/services"
)

// Deps holds everything the router needs to mount its handlers.
type Deps struct {
	Auth           *services.AuthService
	Translator     *services.Translator
	History        *services.HistoryService
	AuthLimiter    *middleware.IPRateLimiter
	CORSOrigins    []string
	TrustedProxies []string // may set X-Forwarded-For; nil trusts nobody
	Logger         *zap.Logger
}

// NewRouter builds the gin engine with all routes and middleware attached.
func NewRouter(d Deps) (*gin.Engine, error) {
	r := gin.New()
	if err := r.SetTrustedProxies(d.TrustedProxies); err != nil {
		return nil, fmt.Errorf("invalid trusted proxies: %w", err)
	}
	r.Use(middleware.RequestLogger(d.Logger))
	r.Use(middleware.Recovery(d.Logger))
	r.Use(metrics.RequestMetrics())
	r.Use(cors.New(corsConfig(d.CORSOrigins)))

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	authHandler := handlers.NewAuthHandler(d.Auth, d.Logger)
	translateHandler := handlers.NewTranslateHandler(d.Translator, d.Logger)
	historyHandler := handlers.NewHistoryHandler(d.History, d.Logger)

	requireUser := middleware.JWTAuth(d.Auth)

	api := r.Group("/api")
	{
		limited := api.Group("")
		if d.AuthLimiter != nil {
			limited.Use(middleware.RateLimit(d.AuthLimiter))
		}
		limited.POST("/register", authHandler.Register)
		limited.POST("/login", authHandler.Login)

		api.GET("/auth/verify", requireUser, authHandler.Verify)

		api.GET("/translate", translateHandler.Translate)
		api.GET("/translate/stats", translateHandler.GetCacheStats)

		history := api.Group("/history", requireUser)
		history.POST("", historyHandler.Save)
		history.GET("", historyHandler.List)
		history.DELETE("", historyHandler.Clear)
		history.DELETE("/:id", historyHandler.Delete)
	}

	return r, nil
}

// corsConfig turns the configured origin list into a cors.Config.
// "*" or an empty list allows any origin.
func corsConfig(origins []string) cors.Config {
	cfg := cors.Config{
		AllowMethods:  []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowHeaders:  []string{"Origin", "Content-Type", "Authorization"},
		ExposeHeaders: []string{"Content-Length"},
		MaxAge:        12 * time.Hour,
	}

	var list []string
	for _, o := range origins {
		if o = strings.TrimSpace(o); o != "" {
			list = append(list, o)
		}
	}
	if len(list) == 0 || (len(list) == 1 && list[0] == "*") {
		cfg.AllowAllOrigins = true
		return cfg
	}
	cfg.AllowOrigins = list
	return cfg
}
