package handler

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/verifact/verifact-server-go/internal/config"
	"github.com/verifact/verifact-server-go/internal/cost"
	"github.com/verifact/verifact-server-go/internal/httperror"
	"github.com/verifact/verifact-server-go/internal/identity"
	"github.com/verifact/verifact-server-go/internal/llm"
	"github.com/verifact/verifact-server-go/internal/metrics"
	"github.com/verifact/verifact-server-go/internal/prompt"
	"github.com/verifact/verifact-server-go/internal/quota"
	"github.com/verifact/verifact-server-go/internal/verdict"
)

const claimPreviewRunes = 80

// CompletionClient: the completion backend as seen by the handler.
type CompletionClient interface {
	Configured() bool
	Complete(ctx context.Context, prompt string) (llm.Completion, error)
}

// VerifyRequest: fact-check request body.
type VerifyRequest struct {
	Input string `json:"input"`
}

// UsageMetrics: per-request token and cost figures.
type UsageMetrics struct {
	TokenInput      int    `json:"tokenInput"`
	TokenOutput     int    `json:"tokenOutput"`
	TokenTotali     int    `json:"tokenTotali"`
	CostoTotaleUSD  string `json:"costoTotaleUSD"`
	CostoTotaleEUR  string `json:"costoTotaleEUR"`
	TempoRispostaMs int64  `json:"tempoRispostaMs"`
}

// VerifyResponse: fact-check response body.
type VerifyResponse struct {
	Analysis verdict.Verdict `json:"analisi"`
	Metrics  UsageMetrics    `json:"metriche"`
}

// VerifyHandler: the fact-check API handler.
type VerifyHandler struct {
	cfg        *config.Config
	client     CompletionClient
	identities *identity.Resolver
	quota      *quota.Tracker
	normalizer *verdict.Normalizer
	rates      cost.Rates
	metrics    *metrics.Store
	logger     *slog.Logger
}

// NewVerifyHandler: creates the fact-check handler.
func NewVerifyHandler(
	cfg *config.Config,
	client CompletionClient,
	identities *identity.Resolver,
	quotaTracker *quota.Tracker,
	normalizer *verdict.Normalizer,
	rates cost.Rates,
	metricsStore *metrics.Store,
	logger *slog.Logger,
) *VerifyHandler {
	return &VerifyHandler{
		cfg:        cfg,
		client:     client,
		identities: identities,
		quota:      quotaTracker,
		normalizer: normalizer,
		rates:      rates,
		metrics:    metricsStore,
		logger:     logger,
	}
}

// RegisterRoutes: registers the fact-check routes.
func (h *VerifyHandler) RegisterRoutes(router *gin.Engine) {
	group := router.Group("/api/verify")
	group.POST("", h.handleVerify)
	group.GET("/metrics", h.handleMetrics)
}

func (h *VerifyHandler) handleVerify(c *gin.Context) {
	var request VerifyRequest
	if !bindJSONAllowEmpty(c, &request) {
		return
	}
	if request.Input == "" {
		writeError(c, httperror.NewMissingInput())
		return
	}

	if !h.client.Configured() {
		writeError(c, httperror.NewMissingAPIKey())
		return
	}

	clientID := h.identities.Resolve(c)
	decision := h.quota.Admit(clientID)
	if !decision.Allowed {
		h.metrics.RecordQuotaDenial()
		retryAfter := int64(decision.RetryAfter.Seconds())
		h.logger.Info("quota_denied",
			"client_id", clientID,
			"count", decision.Count,
			"retry_after_s", retryAfter,
		)
		c.Header("Retry-After", strconv.FormatInt(retryAfter, 10))
		writeError(c, httperror.NewQuotaExceeded(retryAfter))
		return
	}

	h.logger.Info("verify_request",
		"client_id", clientID,
		"claim_preview", previewClaim(request.Input),
		"quota_count", decision.Count,
	)

	completion, err := h.client.Complete(c.Request.Context(), prompt.BuildFactCheck(request.Input))
	if err != nil {
		h.logger.Warn("verify_completion_failed", "err", err)
		writeError(c, err)
		return
	}

	analysis := h.normalizer.Normalize(completion.Text)
	estimate := h.rates.Estimate(completion.Usage.InputTokens, completion.Usage.OutputTokens)

	h.logger.Info("verify_completed",
		"truth_score", analysis.TruthScore,
		"input_tokens", completion.Usage.InputTokens,
		"output_tokens", completion.Usage.OutputTokens,
		"elapsed_ms", completion.Elapsed.Milliseconds(),
	)

	c.JSON(http.StatusOK, VerifyResponse{
		Analysis: analysis,
		Metrics: UsageMetrics{
			TokenInput:      completion.Usage.InputTokens,
			TokenOutput:     completion.Usage.OutputTokens,
			TokenTotali:     completion.Usage.TotalTokens,
			CostoTotaleUSD:  estimate.USD,
			CostoTotaleEUR:  estimate.EUR,
			TempoRispostaMs: completion.Elapsed.Milliseconds(),
		},
	})
}

func (h *VerifyHandler) handleMetrics(c *gin.Context) {
	c.JSON(http.StatusOK, h.metrics.Snapshot())
}

func previewClaim(claim string) string {
	runes := []rune(claim)
	if len(runes) <= claimPreviewRunes {
		return claim
	}
	return string(runes[:claimPreviewRunes]) + "..."
}
