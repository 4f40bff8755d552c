package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"post-bot/internal/service"
)

// MockLLMClient is a mock type for the service.LLMClient type
type MockLLMClient struct {
	mock.Mock
}

func (_m *MockLLMClient) GenerateText(ctx context.Context, systemPrompt, userInput string) (string, error) {
	ret := _m.Called(ctx, systemPrompt, userInput)
	return ret.String(0), ret.Error(1)
}

func NewMockLLMClient(t interface {
	mock.TestingT
	Helper()
}) *MockLLMClient {
	m := &MockLLMClient{}
	m.Mock.Test(t)
	t.Helper()
	return m
}

var _ service.LLMClient = (*MockLLMClient)(nil)
