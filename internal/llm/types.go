package llm

import "time"

// Usage: token counts reported by the completion backend.
type Usage struct {
	InputTokens  int `json:"input_tokens"`
	OutputTokens int `json:"output_tokens"`
	TotalTokens  int `json:"total_tokens"`
}

// Completion: one raw completion with usage and latency.
type Completion struct {
	Text    string
	Usage   Usage
	Elapsed time.Duration
}
