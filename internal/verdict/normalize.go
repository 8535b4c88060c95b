package verdict

import (
	"strings"

	json "github.com/goccy/go-json"
)

const (
	fallbackProviderName = "Gemini"
	fallbackProviderURL  = "https://ai.google.dev"
	fallbackReliability  = 85
)

// Normalizer: recovers a Verdict from raw completion text. Malformed
// output is absorbed into a fixed fallback verdict, never an error.
type Normalizer struct {
	fallbackScore int
}

// NewNormalizer: creates a normalizer with the configured fallback score.
func NewNormalizer(fallbackScore int) *Normalizer {
	return &Normalizer{fallbackScore: fallbackScore}
}

// Normalize: parses raw completion text into a Verdict. Attempts the
// brace-delimited span first, then the fence-stripped remainder, then
// falls back to a synthetic verdict.
func (n *Normalizer) Normalize(rawText string) Verdict {
	if span, ok := extractBraceSpan(rawText); ok {
		if verdict, ok := parseVerdict(span); ok {
			return sanitize(verdict)
		}
	}

	if verdict, ok := parseVerdict(stripDecorations(rawText)); ok {
		return sanitize(verdict)
	}

	return n.fallback()
}

func (n *Normalizer) fallback() Verdict {
	url := fallbackProviderURL
	return Verdict{
		TruthScore:  n.fallbackScore,
		Explanation: "Analisi completata ma la risposta del modello era incompleta o non interpretabile. Verifica fonti indipendenti.",
		Sources: []SourceRef{{
			Name:        fallbackProviderName,
			Kind:        KindPrimaryOutlet,
			Reliability: fallbackReliability,
			URL:         &url,
		}},
		WarningSignals: []string{},
		Context:        "Risposta elaborata dal modello, parsing non riuscito",
	}
}

// extractBraceSpan: returns the span from the first '{' to the last '}'.
func extractBraceSpan(text string) (string, bool) {
	start := strings.IndexByte(text, '{')
	if start < 0 {
		return "", false
	}
	end := strings.LastIndexByte(text, '}')
	if end <= start {
		return "", false
	}
	return text[start : end+1], true
}

// stripDecorations: removes code-fence markers and a leading json label.
func stripDecorations(text string) string {
	parsed := strings.TrimSpace(text)
	if strings.HasPrefix(parsed, "```") {
		parsed = strings.TrimSpace(strings.TrimPrefix(parsed, "```json"))
		parsed = strings.TrimSpace(strings.TrimPrefix(parsed, "```"))
		if idx := strings.Index(parsed, "```"); idx >= 0 {
			parsed = strings.TrimSpace(parsed[:idx])
		}
	}
	if len(parsed) >= 4 && strings.EqualFold(parsed[:4], "json") {
		parsed = strings.TrimSpace(parsed[4:])
	}
	return parsed
}

func parseVerdict(text string) (Verdict, bool) {
	var verdict Verdict
	if err := json.Unmarshal([]byte(text), &verdict); err != nil {
		return Verdict{}, false
	}
	return verdict, true
}

// sanitize: clamps scores into range and replaces nil slices so the
// serialized verdict always carries arrays.
func sanitize(v Verdict) Verdict {
	v.TruthScore = clampScore(v.TruthScore)
	for i := range v.Sources {
		v.Sources[i].Reliability = clampScore(v.Sources[i].Reliability)
	}
	if v.Sources == nil {
		v.Sources = []SourceRef{}
	}
	if v.WarningSignals == nil {
		v.WarningSignals = []string{}
	}
	return v
}

func clampScore(score int) int {
	if score < 0 {
		return 0
	}
	if score > 100 {
		return 100
	}
	return score
}
