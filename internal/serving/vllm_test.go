package serving_test

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Su-informatics-lab/llm-drug-effect/internal/infrastructure/monitoring/logging"
	"github.com/Su-informatics-lab/llm-drug-effect/internal/serving"
	"github.com/Su-informatics-lab/llm-drug-effect/pkg/errors"
)

type recordedRequest struct {
	Model       string            `json:"model"`
	Messages    []serving.Message `json:"messages"`
	Temperature float64           `json:"temperature"`
	TopP        float64           `json:"top_p"`
	MaxTokens   int               `json:"max_tokens"`
}

// newChatServer returns a test server that answers each chat completion with
// a text derived from the user message, so order can be asserted.
func newChatServer(t *testing.T, requests *[]recordedRequest) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/v1/chat/completions", r.URL.Path)
		require.Equal(t, "application/json", r.Header.Get("Content-Type"))

		var req recordedRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		*requests = append(*requests, req)

		user := req.Messages[len(req.Messages)-1].Content
		resp := map[string]any{
			"id": fmt.Sprintf("cmpl-%d", len(*requests)),
			"choices": []map[string]any{{
				"index":         0,
				"message":       map[string]string{"role": "assistant", "content": "echo: " + user},
				"finish_reason": "stop",
			}},
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(resp)
	}))
}

func conv(user string) serving.Conversation {
	return serving.Conversation{
		{Role: serving.RoleSystem, Content: "sys"},
		{Role: serving.RoleUser, Content: user},
	}
}

func TestVLLMClient_CompletePreservesSubmissionOrder(t *testing.T) {
	t.Parallel()
	var requests []recordedRequest
	srv := newChatServer(t, &requests)
	defer srv.Close()

	c, err := serving.NewVLLMClient(serving.ClientConfig{
		Endpoint: srv.URL,
		Model:    "meta-llama/Meta-Llama-3-8B-Instruct",
	}, logging.NewNopLogger())
	require.NoError(t, err)
	defer c.Close()

	out, err := c.Complete(context.Background(),
		[]serving.Conversation{conv("metformin"), conv("insulin"), conv("aspirin")},
		serving.DefaultSamplingParams())
	require.NoError(t, err)

	assert.Equal(t, []string{"echo: metformin", "echo: insulin", "echo: aspirin"}, out)
	require.Len(t, requests, 3)
	assert.Equal(t, "meta-llama/Meta-Llama-3-8B-Instruct", requests[0].Model)
	assert.Equal(t, 0.6, requests[0].Temperature)
	assert.Equal(t, 0.9, requests[0].TopP)
	assert.Equal(t, 4096, requests[0].MaxTokens)
}

func TestVLLMClient_ServerErrorAbortsChunk(t *testing.T) {
	t.Parallel()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "CUDA out of memory", http.StatusInternalServerError)
	}))
	defer srv.Close()

	c, err := serving.NewVLLMClient(serving.ClientConfig{Endpoint: srv.URL, Model: "m"}, nil)
	require.NoError(t, err)

	out, err := c.Complete(context.Background(),
		[]serving.Conversation{conv("metformin")}, serving.DefaultSamplingParams())
	require.Error(t, err)
	assert.Nil(t, out)
	assert.True(t, errors.IsCode(err, errors.ErrCodeInference))
	assert.Contains(t, err.Error(), "500")
}

func TestVLLMClient_APIKeySentAsBearer(t *testing.T) {
	t.Parallel()
	var auth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		auth = r.Header.Get("Authorization")
		json.NewEncoder(w).Encode(map[string]any{
			"choices": []map[string]any{{"message": map[string]string{"role": "assistant", "content": "ok"}}},
		})
	}))
	defer srv.Close()

	c, err := serving.NewVLLMClient(serving.ClientConfig{Endpoint: srv.URL, Model: "m", APIKey: "sk-test"}, nil)
	require.NoError(t, err)

	_, err = c.Complete(context.Background(), []serving.Conversation{conv("x")}, serving.SamplingParams{})
	require.NoError(t, err)
	assert.Equal(t, "Bearer sk-test", auth)
}

func TestVLLMClient_ContextCancellation(t *testing.T) {
	t.Parallel()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// The body must be drained before the server starts its background
		// connection watcher; otherwise the client disconnect is never seen
		// and r.Context() is never cancelled, deadlocking srv.Close().
		io.Copy(io.Discard, r.Body)
		<-r.Context().Done()
	}))
	defer srv.Close()

	c, err := serving.NewVLLMClient(serving.ClientConfig{Endpoint: srv.URL, Model: "m"}, nil)
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	_, err = c.Complete(ctx, []serving.Conversation{conv("x")}, serving.SamplingParams{})
	require.Error(t, err)
}

func TestVLLMClient_CompleteAfterClose(t *testing.T) {
	t.Parallel()
	c, err := serving.NewVLLMClient(serving.ClientConfig{Endpoint: "http://localhost:1", Model: "m"}, nil)
	require.NoError(t, err)
	require.NoError(t, c.Close())

	_, err = c.Complete(context.Background(), []serving.Conversation{conv("x")}, serving.SamplingParams{})
	assert.ErrorIs(t, err, serving.ErrClientClosed)
}

func TestVLLMClient_Healthy(t *testing.T) {
	t.Parallel()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/health" {
			w.WriteHeader(http.StatusOK)
			return
		}
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	c, err := serving.NewVLLMClient(serving.ClientConfig{Endpoint: srv.URL, Model: "m"}, nil)
	require.NoError(t, err)
	assert.NoError(t, c.Healthy(context.Background()))
}

func TestNewVLLMClient_RequiresEndpointAndModel(t *testing.T) {
	t.Parallel()
	_, err := serving.NewVLLMClient(serving.ClientConfig{Model: "m"}, nil)
	require.Error(t, err)
	_, err = serving.NewVLLMClient(serving.ClientConfig{Endpoint: "http://x"}, nil)
	require.Error(t, err)
}

//Personal.AI order the ending
