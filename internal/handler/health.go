package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/verifact/verifact-server-go/internal/config"
)

// ModelConfigResponse: active completion profile.
type ModelConfigResponse struct {
	Model           string  `json:"model"`
	MaxOutputTokens int     `json:"max_output_tokens"`
	Temperature     float64 `json:"temperature"`
	TimeoutSeconds  int     `json:"timeout_seconds"`
	FallbackScore   int     `json:"fallback_score"`
	HTTP2Enabled    bool    `json:"http2_enabled"`
	TransportMode   string  `json:"transport_mode"`
}

// RegisterHealthRoutes: registers liveness and introspection routes.
func RegisterHealthRoutes(router *gin.Engine, cfg *config.Config) {
	router.GET("/health", func(c *gin.Context) {
		// Liveness stays shallow: no upstream is probed.
		c.JSON(http.StatusOK, gin.H{
			"status":         "ok",
			"service":        "verifact-server",
			"api_configured": len(cfg.LLM.APIKeys) > 0,
		})
	})

	router.GET("/health/models", func(c *gin.Context) {
		transportMode := "h1"
		if cfg.HTTP.HTTP2Enabled {
			transportMode = "h2c"
		}

		c.JSON(http.StatusOK, ModelConfigResponse{
			Model:           cfg.LLM.Model,
			MaxOutputTokens: cfg.LLM.MaxOutputTokens,
			Temperature:     cfg.LLM.Temperature,
			TimeoutSeconds:  cfg.LLM.TimeoutSeconds,
			FallbackScore:   cfg.LLM.FallbackScore,
			HTTP2Enabled:    cfg.HTTP.HTTP2Enabled,
			TransportMode:   transportMode,
		})
	})

	router.GET("/metrics", gin.WrapH(promhttp.Handler()))
}
