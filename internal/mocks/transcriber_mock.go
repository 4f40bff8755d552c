package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"post-bot/internal/service"
)

// MockTranscriber is a mock type for the service.Transcriber type
type MockTranscriber struct {
	mock.Mock
}

func (_m *MockTranscriber) Transcribe(ctx context.Context, audio []byte, filename string) (string, bool) {
	ret := _m.Called(ctx, audio, filename)
	return ret.String(0), ret.Bool(1)
}

func NewMockTranscriber(t interface {
	mock.TestingT
	Helper()
}) *MockTranscriber {
	m := &MockTranscriber{}
	m.Mock.Test(t)
	t.Helper()
	return m
}

var _ service.Transcriber = (*MockTranscriber)(nil)
