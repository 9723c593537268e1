package estimation

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Su-informatics-lab/llm-drug-effect/internal/serving"
	"github.com/Su-informatics-lab/llm-drug-effect/pkg/errors"
)

// probFor derives a deterministic response from the user message so order
// can be asserted end-to-end.
func probFor(drug string) string {
	return fmt.Sprintf("Estimated Probability: 0.%d", len(drug))
}

func newEchoClient() *serving.MockChatClient {
	m := serving.NewMockChatClient()
	m.CompleteFunc = func(ctx context.Context, convs []serving.Conversation, params serving.SamplingParams) ([]string, error) {
		out := make([]string, len(convs))
		for i, c := range convs {
			user := c[len(c)-1].Content
			drug := drugFromPrompt(user)
			out[i] = probFor(drug)
		}
		return out, nil
	}
	return m
}

func drugFromPrompt(user string) string {
	const prefix = "Given that a patient took "
	rest := strings.TrimPrefix(user, prefix)
	drug, _, _ := strings.Cut(rest, ",")
	return drug
}

func newTestRunner(t *testing.T, client serving.ChatClient, batchSize int) *Runner {
	t.Helper()
	r, err := NewRunner(client, RunnerConfig{
		Model:     "test-model",
		BatchSize: batchSize,
		Sampling:  serving.DefaultSamplingParams(),
	}, nil, nil, nil)
	require.NoError(t, err)
	return r
}

func TestRunner_OrderPreservedAcrossChunkBoundaries(t *testing.T) {
	t.Parallel()
	client := newEchoClient()
	r := newTestRunner(t, client, 4)

	drugs := []string{"a", "bb", "ccc", "dddd", "eeeee", "ffffff", "ggggggg", "hhhhhhhh", "iiiiiiiii"}
	res, err := r.Run(context.Background(), drugs)
	require.NoError(t, err)

	require.Len(t, res.Probabilities, len(drugs))
	require.Len(t, res.Responses, len(drugs))
	for i, drug := range drugs {
		assert.Equal(t, probFor(drug), res.Responses[i], "index %d", i)
		require.NotNil(t, res.Probabilities[i])
	}

	// Nine drugs at batch size four means chunks of 4, 4, 1.
	require.Len(t, client.Calls, 3)
	assert.Len(t, client.Calls[0], 4)
	assert.Len(t, client.Calls[1], 4)
	assert.Len(t, client.Calls[2], 1)
}

func TestRunner_DuplicatesKeepTheirSlots(t *testing.T) {
	t.Parallel()
	r := newTestRunner(t, newEchoClient(), 2)

	res, err := r.Run(context.Background(), []string{"metformin", "insulin", "metformin"})
	require.NoError(t, err)
	assert.Equal(t, res.Responses[0], res.Responses[2])
	assert.Equal(t, *res.Probabilities[0], *res.Probabilities[2])
}

func TestRunner_EndToEndParsing(t *testing.T) {
	t.Parallel()
	answers := []string{
		"Reasoning...\nEstimated Probability: 0.82",
		"I cannot determine this.",
		"Estimated Probability: N/A",
	}
	client := serving.NewMockChatClient()
	var call int
	client.CompleteFunc = func(ctx context.Context, convs []serving.Conversation, params serving.SamplingParams) ([]string, error) {
		out := []string{answers[call]}
		call++
		return out, nil
	}

	r := newTestRunner(t, client, 1)
	res, err := r.Run(context.Background(), []string{"d1", "d2", "d3"})
	require.NoError(t, err)

	require.NotNil(t, res.Probabilities[0])
	assert.Equal(t, 0.82, *res.Probabilities[0])
	assert.Nil(t, res.Probabilities[1])
	assert.Nil(t, res.Probabilities[2])
	assert.Equal(t, 2, res.ParseFailures)
}

func TestRunner_OutOfRangeCountedNotClamped(t *testing.T) {
	t.Parallel()
	client := serving.NewMockChatClient()
	client.CompleteFunc = func(ctx context.Context, convs []serving.Conversation, params serving.SamplingParams) ([]string, error) {
		return []string{"Estimated Probability: 85.0"}, nil
	}

	r := newTestRunner(t, client, 1)
	res, err := r.Run(context.Background(), []string{"metformin"})
	require.NoError(t, err)

	require.NotNil(t, res.Probabilities[0])
	assert.Equal(t, 85.0, *res.Probabilities[0])
	assert.Equal(t, 1, res.OutOfRange)
}

func TestRunner_InvalidBatchSize(t *testing.T) {
	t.Parallel()
	for _, size := range []int{0, -1} {
		client := serving.NewMockChatClient()
		r := newTestRunner(t, client, size)

		_, err := r.Run(context.Background(), []string{"metformin"})
		require.Error(t, err)
		assert.True(t, errors.IsCode(err, errors.ErrCodeInvalidBatchSize))
		assert.Empty(t, client.Calls, "nothing may be submitted")
	}
}

func TestRunner_ServiceErrorAbortsRun(t *testing.T) {
	t.Parallel()
	client := serving.NewMockChatClient()
	var call int
	client.CompleteFunc = func(ctx context.Context, convs []serving.Conversation, params serving.SamplingParams) ([]string, error) {
		call++
		if call == 2 {
			return nil, errors.New(errors.ErrCodeInference, "backend exploded")
		}
		return make([]string, len(convs)), nil
	}

	r := newTestRunner(t, client, 2)
	res, err := r.Run(context.Background(), []string{"a", "b", "c", "d", "e"})
	require.Error(t, err)
	assert.Nil(t, res)
	assert.True(t, errors.IsCode(err, errors.ErrCodeInference))
	// The failing chunk is the last one submitted; nothing follows it.
	assert.Len(t, client.Calls, 2)
}

func TestRunner_EmptyInput(t *testing.T) {
	t.Parallel()
	client := serving.NewMockChatClient()
	r := newTestRunner(t, client, 4)

	res, err := r.Run(context.Background(), nil)
	require.NoError(t, err)
	assert.Empty(t, res.Probabilities)
	assert.Empty(t, res.Responses)
	assert.Empty(t, client.Calls)
}

func TestRunner_Idempotence(t *testing.T) {
	t.Parallel()
	drugs := []string{"metformin", "insulin", "aspirin", "lisinopril", "atorvastatin"}
	r1 := newTestRunner(t, newEchoClient(), 2)
	r2 := newTestRunner(t, newEchoClient(), 2)

	a, err := r1.Run(context.Background(), drugs)
	require.NoError(t, err)
	b, err := r2.Run(context.Background(), drugs)
	require.NoError(t, err)

	assert.Equal(t, a.Responses, b.Responses)
	for i := range drugs {
		require.NotNil(t, a.Probabilities[i])
		require.NotNil(t, b.Probabilities[i])
		assert.Equal(t, *a.Probabilities[i], *b.Probabilities[i])
	}
}

// mapCache is an in-memory ResponseCache for runner tests.
type mapCache struct {
	mu   sync.Mutex
	data map[string]string
}

func newMapCache() *mapCache { return &mapCache{data: make(map[string]string)} }

func (c *mapCache) Get(_ context.Context, drug string) (string, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	v, ok := c.data[drug]
	return v, ok
}

func (c *mapCache) Set(_ context.Context, drug, response string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.data[drug] = response
}

func TestRunner_CacheHitsSkipSubmission(t *testing.T) {
	t.Parallel()
	cache := newMapCache()
	cache.Set(context.Background(), "insulin", "Estimated Probability: 0.9")

	client := newEchoClient()
	r, err := NewRunner(client, RunnerConfig{
		Model:     "test-model",
		BatchSize: 2,
		Sampling:  serving.DefaultSamplingParams(),
	}, cache, nil, nil)
	require.NoError(t, err)

	drugs := []string{"metformin", "insulin", "aspirin"}
	res, err := r.Run(context.Background(), drugs)
	require.NoError(t, err)

	assert.Equal(t, 1, res.CacheHits)
	assert.Equal(t, "Estimated Probability: 0.9", res.Responses[1])
	require.NotNil(t, res.Probabilities[1])
	assert.Equal(t, 0.9, *res.Probabilities[1])

	// Only the two misses reach the endpoint, batched together.
	require.Len(t, client.Calls, 1)
	assert.Len(t, client.Calls[0], 2)

	// Misses are written back.
	_, ok := cache.Get(context.Background(), "metformin")
	assert.True(t, ok)
}

//Personal.AI order the ending
