package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"entrygate/internal/port"
)

// MockArtifactStore is a mock implementation of port.ArtifactStore.
type MockArtifactStore struct {
	mock.Mock
}

func (m *MockArtifactStore) Save(ctx context.Context, draftID string, artifacts []port.Artifact) (string, error) {
	args := m.Called(ctx, draftID, artifacts)
	return args.String(0), args.Error(1)
}
