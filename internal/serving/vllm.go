package serving

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/Su-informatics-lab/llm-drug-effect/internal/infrastructure/monitoring/logging"
	"github.com/Su-informatics-lab/llm-drug-effect/pkg/errors"
)

// ─────────────────────────────────────────────────────────────────────────────
// OpenAI-compatible wire types
// ─────────────────────────────────────────────────────────────────────────────

type chatCompletionRequest struct {
	Model       string    `json:"model"`
	Messages    []Message `json:"messages"`
	Temperature float64   `json:"temperature"`
	TopP        float64   `json:"top_p"`
	MaxTokens   int       `json:"max_tokens"`
}

type chatCompletionChoice struct {
	Index        int     `json:"index"`
	Message      Message `json:"message"`
	FinishReason string  `json:"finish_reason"`
}

type chatCompletionResponse struct {
	ID      string                 `json:"id"`
	Choices []chatCompletionChoice `json:"choices"`
	Error   *apiError              `json:"error,omitempty"`
}

type apiError struct {
	Message string `json:"message"`
	Type    string `json:"type"`
}

// ─────────────────────────────────────────────────────────────────────────────
// vllmClient
// ─────────────────────────────────────────────────────────────────────────────

// vllmClient implements ChatClient against a vLLM server's OpenAI-compatible
// /v1/chat/completions endpoint.  The conversations of a chunk are submitted
// over one shared http.Client; the chunk call returns only when every
// conversation has its generated text, keeping the call atomic and
// order-preserving from the caller's perspective.
type vllmClient struct {
	cfg    ClientConfig
	http   *http.Client
	logger logging.Logger

	mu     sync.Mutex
	closed bool
}

// NewVLLMClient creates a ChatClient speaking the OpenAI-compatible chat API.
func NewVLLMClient(cfg ClientConfig, log logging.Logger) (ChatClient, error) {
	if cfg.Endpoint == "" {
		return nil, errors.InvalidParam("serving endpoint must not be empty")
	}
	if cfg.Model == "" {
		return nil, errors.InvalidParam("serving model must not be empty")
	}
	if cfg.RequestTimeout <= 0 {
		cfg.RequestTimeout = 5 * time.Minute
	}
	if log == nil {
		log = logging.NewNopLogger()
	}
	return &vllmClient{
		cfg:    cfg,
		http:   &http.Client{Timeout: cfg.RequestTimeout},
		logger: log.Named("serving"),
	}, nil
}

func (c *vllmClient) Complete(ctx context.Context, convs []Conversation, params SamplingParams) ([]string, error) {
	c.mu.Lock()
	closed := c.closed
	c.mu.Unlock()
	if closed {
		return nil, ErrClientClosed
	}

	out := make([]string, len(convs))
	for i, conv := range convs {
		text, err := c.complete(ctx, conv, params)
		if err != nil {
			return nil, errors.Wrap(err, errors.ErrCodeInference,
				fmt.Sprintf("chat completion %d/%d failed", i+1, len(convs)))
		}
		out[i] = text
	}
	return out, nil
}

// complete performs one chat-completion request and returns the generated text.
func (c *vllmClient) complete(ctx context.Context, conv Conversation, params SamplingParams) (string, error) {
	body, err := json.Marshal(chatCompletionRequest{
		Model:       c.cfg.Model,
		Messages:    conv,
		Temperature: params.Temperature,
		TopP:        params.TopP,
		MaxTokens:   params.MaxTokens,
	})
	if err != nil {
		return "", fmt.Errorf("encoding request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		strings.TrimRight(c.cfg.Endpoint, "/")+"/v1/chat/completions",
		bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")
	if c.cfg.APIKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("reading response body: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("server returned %d: %s", resp.StatusCode, truncateBody(raw))
	}

	var parsed chatCompletionResponse
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return "", fmt.Errorf("decoding response: %w", err)
	}
	if parsed.Error != nil {
		return "", fmt.Errorf("server error: %s", parsed.Error.Message)
	}
	if len(parsed.Choices) == 0 {
		return "", fmt.Errorf("response contained no choices")
	}

	c.logger.Debug("chat completion finished",
		logging.String("id", parsed.ID),
		logging.String("finish_reason", parsed.Choices[0].FinishReason),
		logging.Duration("elapsed", time.Since(start)),
	)
	return parsed.Choices[0].Message.Content, nil
}

func (c *vllmClient) Healthy(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet,
		strings.TrimRight(c.cfg.Endpoint, "/")+"/health", nil)
	if err != nil {
		return err
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return ErrServingUnavailable.WithCause(err)
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, resp.Body)
	if resp.StatusCode != http.StatusOK {
		return ErrServingUnavailable.WithDetail(fmt.Sprintf("health returned %d", resp.StatusCode))
	}
	return nil
}

func (c *vllmClient) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed = true
	c.http.CloseIdleConnections()
	return nil
}

// truncateBody keeps error messages readable when the server returns a page
// of HTML or a long traceback.
func truncateBody(b []byte) string {
	const max = 512
	s := strings.TrimSpace(string(b))
	if len(s) > max {
		return s[:max] + "..."
	}
	return s
}

//Personal.AI order the ending
