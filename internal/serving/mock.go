package serving

import "context"

// MockChatClient is a function-field test double for ChatClient.
// When CompleteFunc is nil, Complete echoes one empty string per conversation.
type MockChatClient struct {
	CompleteFunc func(ctx context.Context, convs []Conversation, params SamplingParams) ([]string, error)
	HealthyFunc  func(ctx context.Context) error

	// Calls records every chunk submitted, in order.
	Calls [][]Conversation
}

// NewMockChatClient returns an empty mock.
func NewMockChatClient() *MockChatClient {
	return &MockChatClient{}
}

func (m *MockChatClient) Complete(ctx context.Context, convs []Conversation, params SamplingParams) ([]string, error) {
	m.Calls = append(m.Calls, convs)
	if m.CompleteFunc != nil {
		return m.CompleteFunc(ctx, convs, params)
	}
	return make([]string, len(convs)), nil
}

func (m *MockChatClient) Healthy(ctx context.Context) error {
	if m.HealthyFunc != nil {
		return m.HealthyFunc(ctx)
	}
	return nil
}

func (m *MockChatClient) Close() error { return nil }

//Personal.AI order the ending
