package handler

import (
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/verifact/verifact-server-go/internal/config"
	"github.com/verifact/verifact-server-go/internal/middleware"
)

// NewRouter: builds the HTTP router with the middleware chain and all
// route groups.
func NewRouter(cfg *config.Config, logger *slog.Logger, verifyHandler *VerifyHandler) *gin.Engine {
	setGinMode(cfg.Logging.Level)

	router := gin.New()
	router.Use(
		middleware.RequestID(),
		middleware.RequestLogger(logger),
		gin.Recovery(),
		corsMiddleware(cfg),
		middleware.RateLimit(cfg),
	)

	RegisterHealthRoutes(router, cfg)
	verifyHandler.RegisterRoutes(router)

	if dir := strings.TrimSpace(cfg.HTTP.StaticDir); dir != "" {
		router.StaticFile("/", filepath.Join(dir, "index.html"))
		router.Static("/assets", filepath.Join(dir, "assets"))
	}

	return router
}

func corsMiddleware(cfg *config.Config) gin.HandlerFunc {
	corsConfig := cors.DefaultConfig()
	corsConfig.AllowCredentials = true
	corsConfig.AddAllowHeaders("X-Request-ID")

	if allowsAnyOrigin(cfg.CORS.AllowOrigins) {
		corsConfig.AllowAllOrigins = true
		// AllowAllOrigins and credentials are mutually exclusive in the
		// middleware; the wildcard wins.
		corsConfig.AllowCredentials = false
	} else {
		corsConfig.AllowOrigins = cfg.CORS.AllowOrigins
	}

	return cors.New(corsConfig)
}

func allowsAnyOrigin(origins []string) bool {
	for _, origin := range origins {
		if strings.TrimSpace(origin) == "*" {
			return true
		}
	}
	return len(origins) == 0
}

func setGinMode(level string) {
	if strings.EqualFold(strings.TrimSpace(level), "debug") {
		gin.SetMode(gin.DebugMode)
		return
	}
	gin.SetMode(gin.ReleaseMode)
}
