package generation

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/dmitrijs2005/letterdesk/internal/common"
	"github.com/dmitrijs2005/letterdesk/internal/logging"
	"github.com/dmitrijs2005/letterdesk/internal/server/metrics"
)

const maxResponseSize = 4 << 20

// Generator produces a letter draft. Invalid requests yield
// common.ErrValidation; any other failure, empty output included, wraps
// common.ErrGenerationService.
type Generator interface {
	Generate(ctx context.Context, req Request) (string, error)
}

type RetryConfig struct {
	MaxAttempts int
	BackoffBase time.Duration
	MaxBackoff  time.Duration
}

// GeminiClient talks to a generateContent REST endpoint.
type GeminiClient struct {
	baseURL    string
	model      string
	apiKey     string
	timeout    time.Duration
	retry      RetryConfig
	httpClient *http.Client
	log        logging.Logger
}

type GeminiOption func(*GeminiClient)

func WithHTTPClient(c *http.Client) GeminiOption {
	return func(g *GeminiClient) { g.httpClient = c }
}

func WithRetry(cfg RetryConfig) GeminiOption {
	return func(g *GeminiClient) { g.retry = cfg }
}

func NewGeminiClient(baseURL, model, apiKey string, timeout time.Duration, l logging.Logger, opts ...GeminiOption) *GeminiClient {
	g := &GeminiClient{
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		model:      model,
		apiKey:     apiKey,
		timeout:    timeout,
		retry:      RetryConfig{MaxAttempts: 3, BackoffBase: time.Second, MaxBackoff: 10 * time.Second},
		httpClient: &http.Client{},
		log:        l.With("module", "generation"),
	}
	for _, o := range opts {
		o(g)
	}
	if g.retry.MaxAttempts < 1 {
		g.retry.MaxAttempts = 1
	}
	return g
}

type part struct {
	Text string `json:"text"`
}

type content struct {
	Role  string `json:"role,omitempty"`
	Parts []part `json:"parts"`
}

type generateRequest struct {
	SystemInstruction content   `json:"systemInstruction"`
	Contents          []content `json:"contents"`
}

type generateResponse struct {
	Candidates []struct {
		Content      content `json:"content"`
		FinishReason string  `json:"finishReason"`
	} `json:"candidates"`
}

func (g *GeminiClient) Generate(ctx context.Context, req Request) (string, error) {
	if err := req.Validate(); err != nil {
		return "", err
	}

	if g.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, g.timeout)
		defer cancel()
	}

	body, err := json.Marshal(generateRequest{
		SystemInstruction: content{Parts: []part{{Text: SystemInstruction}}},
		Contents:          []content{{Role: "user", Parts: []part{{Text: BuildPrompt(req)}}}},
	})
	if err != nil {
		return "", fmt.Errorf("%w: %v", common.ErrGenerationService, err)
	}

	start := time.Now()
	text, err := g.doWithRetry(ctx, body)
	if err != nil {
		metrics.ObserveGeneration("error", time.Since(start))
		g.log.Error(ctx, "draft generation failed", "error", err)
		return "", fmt.Errorf("%w: %v", common.ErrGenerationService, err)
	}
	if strings.TrimSpace(text) == "" {
		metrics.ObserveGeneration("empty", time.Since(start))
		return "", fmt.Errorf("%w: empty response", common.ErrGenerationService)
	}
	metrics.ObserveGeneration("ok", time.Since(start))
	return text, nil
}

func (g *GeminiClient) doWithRetry(ctx context.Context, body []byte) (string, error) {
	var lastErr error
	for attempt := 1; attempt <= g.retry.MaxAttempts; attempt++ {
		text, err := g.do(ctx, body)
		if err == nil {
			return text, nil
		}
		lastErr = err
		if !isTransient(err) || attempt == g.retry.MaxAttempts {
			break
		}

		backoff := g.retry.BackoffBase << (attempt - 1)
		if g.retry.MaxBackoff > 0 && backoff > g.retry.MaxBackoff {
			backoff = g.retry.MaxBackoff
		}
		g.log.Debug(ctx, "generation request failed, retrying", "attempt", attempt, "backoff", backoff, "error", err)

		select {
		case <-ctx.Done():
			return "", ctx.Err()
		case <-time.After(backoff):
		}
	}
	return "", lastErr
}

func (g *GeminiClient) do(ctx context.Context, body []byte) (string, error) {
	url := fmt.Sprintf("%s/models/%s:generateContent", g.baseURL, g.model)
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("x-goog-api-key", g.apiKey)

	resp, err := g.httpClient.Do(httpReq)
	if err != nil {
		if ctx.Err() != nil {
			return "", ctx.Err()
		}
		return "", &transientError{fmt.Errorf("HTTP request failed: %w", err)}
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return "", &transientError{fmt.Errorf("read response body: %w", err)}
	}

	if resp.StatusCode != http.StatusOK {
		snippet := string(respBody)
		if len(snippet) > 200 {
			snippet = snippet[:200] + "..."
		}
		err := fmt.Errorf("generation API error (status %d): %s", resp.StatusCode, snippet)
		if resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500 {
			return "", &transientError{err}
		}
		return "", err
	}

	var parsed generateResponse
	if err := json.Unmarshal(respBody, &parsed); err != nil {
		return "", fmt.Errorf("parse generation response: %w", err)
	}
	if len(parsed.Candidates) == 0 {
		return "", nil
	}
	var b strings.Builder
	for _, p := range parsed.Candidates[0].Content.Parts {
		b.WriteString(p.Text)
	}
	return b.String(), nil
}
