package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"
)

const defaultGeminiBaseURL = "https://generativelanguage.googleapis.com/v1beta"

// GeminiConfig configures the Gemini REST client.
type GeminiConfig struct {
	APIKey          string
	Model           string
	BaseURL         string
	Temperature     float64
	TopP            float64
	TopK            int
	MaxOutputTokens int
	Timeout         time.Duration
}

// Gemini calls the generateContent endpoint of the Gemini API.
type Gemini struct {
	cfg    GeminiConfig
	client *http.Client
	logger *slog.Logger
}

// NewGemini creates a Gemini client. If logger is nil, a discard logger is
// used.
func NewGemini(cfg GeminiConfig, logger *slog.Logger) *Gemini {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = defaultGeminiBaseURL
	}
	if cfg.Model == "" {
		cfg.Model = "gemini-2.0-flash"
	}
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 30 * time.Second
	}
	return &Gemini{
		cfg:    cfg,
		client: &http.Client{Timeout: timeout},
		logger: logger,
	}
}

// Request/response bodies for the generateContent endpoint.
type geminiPart struct {
	Text string `json:"text"`
}

type geminiContent struct {
	Parts []geminiPart `json:"parts"`
}

type geminiGenerationConfig struct {
	Temperature     float64 `json:"temperature"`
	TopP            float64 `json:"topP"`
	TopK            int     `json:"topK"`
	MaxOutputTokens int     `json:"maxOutputTokens"`
}

type geminiRequest struct {
	Contents         []geminiContent        `json:"contents"`
	GenerationConfig geminiGenerationConfig `json:"generationConfig"`
}

type geminiResponse struct {
	Candidates []struct {
		Content geminiContent `json:"content"`
	} `json:"candidates"`
	Error *struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
		Status  string `json:"status"`
	} `json:"error"`
}

// Generate sends the prompt and returns the concatenated candidate text.
// All failures come back as *GenerateError.
func (g *Gemini) Generate(ctx context.Context, prompt string) (string, error) {
	body, err := json.Marshal(geminiRequest{
		Contents: []geminiContent{{Parts: []geminiPart{{Text: prompt}}}},
		GenerationConfig: geminiGenerationConfig{
			Temperature:     g.cfg.Temperature,
			TopP:            g.cfg.TopP,
			TopK:            g.cfg.TopK,
			MaxOutputTokens: g.cfg.MaxOutputTokens,
		},
	})
	if err != nil {
		return "", &GenerateError{Provider: "gemini", Err: err}
	}

	url := fmt.Sprintf("%s/models/%s:generateContent?key=%s", g.cfg.BaseURL, g.cfg.Model, g.cfg.APIKey)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return "", &GenerateError{Provider: "gemini", Err: err}
	}
	req.Header.Set("Content-Type", "application/json")

	g.logger.Debug("calling gemini", slog.String("model", g.cfg.Model), slog.Int("prompt_bytes", len(prompt)))

	resp, err := g.client.Do(req)
	if err != nil {
		return "", &GenerateError{Provider: "gemini", Err: err}
	}
	defer func() { _ = resp.Body.Close() }()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", &GenerateError{Provider: "gemini", Err: err}
	}

	var parsed geminiResponse
	if err := json.Unmarshal(data, &parsed); err != nil {
		return "", &GenerateError{Provider: "gemini", Err: fmt.Errorf("decoding response: %w", err)}
	}
	if resp.StatusCode != http.StatusOK {
		msg := resp.Status
		if parsed.Error != nil {
			msg = parsed.Error.Message
		}
		return "", &GenerateError{Provider: "gemini", Err: fmt.Errorf("api error: %s", msg)}
	}
	if len(parsed.Candidates) == 0 {
		return "", &GenerateError{Provider: "gemini", Err: fmt.Errorf("no candidates in response")}
	}

	var sb strings.Builder
	for _, p := range parsed.Candidates[0].Content.Parts {
		sb.WriteString(p.Text)
	}
	return sb.String(), nil
}
