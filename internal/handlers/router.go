package handlers

import (
	"net/http"
	"time"

	"foodshare/internal/auth"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// NewRouter wires all routes. metrics may be nil.
func (h *Handler) NewRouter(metrics http.Handler) (*gin.Engine, error) {
	if !h.cfg.IsDevelopment() {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(Recovery(h.logger), RequestLogger(h.logger))

	if err := router.SetTrustedProxies(h.cfg.TrustedProxies); err != nil {
		return nil, err
	}

	router.Use(cors.New(cors.Config{
		AllowOrigins:     h.cfg.AllowedOrigins,
		AllowMethods:     []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", auth.AdminTokenHeader},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	// Basic routes
	router.GET("/", h.HomeHandler)
	router.GET("/health", h.HealthHandler)
	if metrics != nil {
		router.GET("/metrics", gin.WrapH(metrics))
	}

	api := router.Group("/api")
	api.Use(auth.OptionalAuth(h.cfg.JWTSecret))
	{
		api.GET("/config", h.ConfigHandler)
		api.GET("/bootstrap", h.BootstrapHandler)
		api.GET("/groups", h.ListGroups)
		api.GET("/groups/:group_id", h.GetGroup)
	}

	// Protected routes (auth required)
	protected := router.Group("/api")
	protected.Use(auth.RequireAuth(h.cfg.JWTSecret))
	{
		protected.POST("/groups/:group_id/mark-seen", h.MarkSeen)
	}

	admin := protected.Group("/admin")
	admin.Use(auth.RequireAdmin(h.cfg.AdminToken))
	{
		admin.GET("/jobs", h.ListJobs)
		admin.POST("/jobs/:name", h.RunJob)
	}

	return router, nil
}
