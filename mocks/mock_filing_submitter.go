package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"entrygate/internal/filing"
)

// MockFilingSubmitter is a mock implementation of port.FilingSubmitter.
type MockFilingSubmitter struct {
	mock.Mock
}

func (m *MockFilingSubmitter) Submit(ctx context.Context, doc []byte) filing.Outcome {
	args := m.Called(ctx, doc)
	return args.Get(0).(filing.Outcome)
}
