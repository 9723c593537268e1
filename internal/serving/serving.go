// Package serving defines the contract for the external text-generation
// service and its vLLM-backed implementation.  The engine is an opaque
// collaborator: this package submits fully-built conversations and returns
// generated text, nothing more.  Model loading, tensor parallelism, and
// request scheduling are owned entirely by the serving side.
package serving

import (
	"context"
	"time"

	"github.com/Su-informatics-lab/llm-drug-effect/pkg/errors"
)

// Role values for chat messages.
const (
	RoleSystem = "system"
	RoleUser   = "user"
)

// Message represents a single role-tagged message in a chat-style prompt.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Conversation is an ordered sequence of messages, immutable once built and
// consumed exactly once by a Complete call.
type Conversation []Message

// SamplingParams carries the generation configuration forwarded with every
// chunk.  Constructed once at process start and passed by reference into the
// runner; never mutated afterwards.
type SamplingParams struct {
	Temperature float64 `json:"temperature"`
	TopP        float64 `json:"top_p"`
	MaxTokens   int     `json:"max_tokens"`
}

// DefaultSamplingParams returns the generation defaults.
// Hyperparameters follow the llama3 reference generation settings.
func DefaultSamplingParams() SamplingParams {
	return SamplingParams{
		Temperature: 0.6,
		TopP:        0.9,
		MaxTokens:   4096,
	}
}

var (
	ErrServingUnavailable = errors.New(errors.ErrCodeServiceUnavailable, "serving unavailable")
	ErrClientClosed       = errors.New(errors.ErrCodeInternal, "serving client closed")
)

// ChatClient is the interface to the external chat-completion service.
//
// Complete submits a whole chunk of conversations as one blocking operation
// and returns exactly one generated text per conversation, in submission
// order.  Implementations are free to parallelise internally; callers must
// treat the call as atomic.  Any error aborts the chunk — no per-conversation
// partial results are returned.
type ChatClient interface {
	Complete(ctx context.Context, convs []Conversation, params SamplingParams) ([]string, error)
	Healthy(ctx context.Context) error
	Close() error
}

// ClientConfig holds connection parameters for a ChatClient implementation.
type ClientConfig struct {
	// Endpoint is the base URL of the OpenAI-compatible server,
	// e.g. "http://localhost:8000".
	Endpoint string `mapstructure:"endpoint"`

	// Model is the served model identifier passed on every request.
	Model string `mapstructure:"model"`

	// APIKey is sent as a bearer token when non-empty.  vLLM deployments
	// without auth leave it empty.
	APIKey string `mapstructure:"api_key"`

	// RequestTimeout bounds a single chat-completion HTTP request.
	RequestTimeout time.Duration `mapstructure:"request_timeout"`
}

//Personal.AI order the ending
