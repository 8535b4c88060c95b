// Package gemini is the completion client adapter. It calls the Gemini
// API with the fixed verification profile (one model id, one output
// token ceiling) and reports raw text plus token usage.
package gemini

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"google.golang.org/genai"

	"github.com/verifact/verifact-server-go/internal/config"
	"github.com/verifact/verifact-server-go/internal/llm"
	"github.com/verifact/verifact-server-go/internal/metrics"
)

// ErrMissingAPIKey: no credential configured for the completion backend.
var ErrMissingAPIKey = errors.New("missing api key")

// Client: Gemini-backed completion client.
type Client struct {
	cfg       config.LLMConfig
	metrics   *metrics.Store
	mu        sync.Mutex
	clients   map[string]*genai.Client
	apiKeyIdx int
}

// NewClient: creates the completion client.
func NewClient(cfg config.LLMConfig, metricsStore *metrics.Store) (*Client, error) {
	if metricsStore == nil {
		return nil, errors.New("metrics store is nil")
	}
	return &Client{
		cfg:     cfg,
		metrics: metricsStore,
		clients: make(map[string]*genai.Client),
	}, nil
}

// Configured: reports whether at least one API key is available.
func (c *Client) Configured() bool {
	return len(c.cfg.APIKeys) > 0
}

// Complete: sends the prompt and returns the raw completion. The call is
// not retried; failures surface to the caller as-is.
func (c *Client) Complete(ctx context.Context, prompt string) (llm.Completion, error) {
	start := time.Now()

	client, err := c.selectClient(ctx)
	if err != nil {
		c.metrics.RecordError(time.Since(start))
		return llm.Completion{}, err
	}

	generateConfig := &genai.GenerateContentConfig{
		Temperature:     genai.Ptr(float32(c.cfg.Temperature)),
		MaxOutputTokens: int32(c.cfg.MaxOutputTokens),
	}
	contents := []*genai.Content{genai.NewContentFromText(prompt, genai.RoleUser)}

	response, err := client.Models.GenerateContent(ctx, c.cfg.Model, contents, generateConfig)
	if err != nil {
		c.metrics.RecordError(time.Since(start))
		return llm.Completion{}, fmt.Errorf("generate content: %w", err)
	}

	usage := extractUsage(response)
	elapsed := time.Since(start)
	c.metrics.RecordSuccess(elapsed, usage)

	return llm.Completion{
		Text:    response.Text(),
		Usage:   usage,
		Elapsed: elapsed,
	}, nil
}

// selectClient: rotates across configured API keys, creating one genai
// client per key lazily.
func (c *Client) selectClient(ctx context.Context) (*genai.Client, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if len(c.cfg.APIKeys) == 0 {
		return nil, ErrMissingAPIKey
	}

	key := c.cfg.APIKeys[c.apiKeyIdx%len(c.cfg.APIKeys)]
	c.apiKeyIdx++
	if client, ok := c.clients[key]; ok {
		return client, nil
	}

	clientConfig := &genai.ClientConfig{
		APIKey:  key,
		Backend: genai.BackendGeminiAPI,
	}
	if timeout := c.cfg.Timeout(); timeout > 0 {
		clientConfig.HTTPOptions = genai.HTTPOptions{
			Timeout: genai.Ptr(timeout),
		}
	}

	client, err := genai.NewClient(context.WithoutCancel(ctx), clientConfig)
	if err != nil {
		return nil, fmt.Errorf("create genai client: %w", err)
	}

	c.clients[key] = client
	return client, nil
}

func extractUsage(response *genai.GenerateContentResponse) llm.Usage {
	if response == nil || response.UsageMetadata == nil {
		return llm.Usage{}
	}
	meta := response.UsageMetadata
	usage := llm.Usage{
		InputTokens:  int(meta.PromptTokenCount),
		OutputTokens: int(meta.CandidatesTokenCount) + int(meta.ThoughtsTokenCount),
		TotalTokens:  int(meta.TotalTokenCount),
	}
	if usage.TotalTokens == 0 {
		usage.TotalTokens = usage.InputTokens + usage.OutputTokens
	}
	return usage
}
