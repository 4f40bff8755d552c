package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"post-bot/internal/delivery"
)

// MockExecutor is a mock type for the delivery.Executor type
type MockExecutor struct {
	mock.Mock
}

func (_m *MockExecutor) SendText(ctx context.Context, body string) error {
	return _m.Called(ctx, body).Error(0)
}

func (_m *MockExecutor) SendSingle(ctx context.Context, action delivery.SendSingle) error {
	return _m.Called(ctx, action).Error(0)
}

func (_m *MockExecutor) SendAlbum(ctx context.Context, action delivery.SendAlbum) error {
	return _m.Called(ctx, action).Error(0)
}

func (_m *MockExecutor) SendAudio(ctx context.Context, fileID string) error {
	return _m.Called(ctx, fileID).Error(0)
}

func (_m *MockExecutor) SendVoice(ctx context.Context, fileID string) error {
	return _m.Called(ctx, fileID).Error(0)
}

func NewMockExecutor(t interface {
	mock.TestingT
	Helper()
}) *MockExecutor {
	m := &MockExecutor{}
	m.Mock.Test(t)
	t.Helper()
	return m
}

var _ delivery.Executor = (*MockExecutor)(nil)
