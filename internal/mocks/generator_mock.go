package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"post-bot/internal/compose"
)

// MockGenerator is a mock type for the compose.Generator type
type MockGenerator struct {
	mock.Mock
}

func (_m *MockGenerator) GenerateFromText(ctx context.Context, text string) (string, error) {
	ret := _m.Called(ctx, text)
	return ret.String(0), ret.Error(1)
}

func (_m *MockGenerator) GenerateInStyle(ctx context.Context, text, style string) (string, error) {
	ret := _m.Called(ctx, text, style)
	return ret.String(0), ret.Error(1)
}

// NewMockGenerator creates a new instance of MockGenerator. It also registers a
// testing interface on the mock so expectations are asserted automatically.
func NewMockGenerator(t interface {
	mock.TestingT
	Helper()
}) *MockGenerator {
	m := &MockGenerator{}
	m.Mock.Test(t)
	t.Helper()
	return m
}

var _ compose.Generator = (*MockGenerator)(nil)
