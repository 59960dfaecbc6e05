package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"deedcheck/internal/port"
)

// MockReferenceSource is a mock implementation of port.ReferenceSource.
type MockReferenceSource struct {
	mock.Mock
}

func (m *MockReferenceSource) Load(ctx context.Context) ([]port.CountyEntry, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]port.CountyEntry), args.Error(1)
}
