package mocks

import (
	"context"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"entrygate/internal/domain"
	"entrygate/internal/entry"
	"entrygate/internal/service"
)

// MockEntryService is a mock implementation of service.EntryService.
type MockEntryService struct {
	mock.Mock
}

func (m *MockEntryService) Draft(ctx context.Context, raw []byte) (*service.Draft, error) {
	args := m.Called(ctx, raw)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.Draft), args.Error(1)
}

func (m *MockEntryService) DraftRecord(ctx context.Context, rec *entry.Record) (*service.Draft, error) {
	args := m.Called(ctx, rec)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.Draft), args.Error(1)
}

func (m *MockEntryService) Submit(ctx context.Context, raw []byte) (*service.SubmissionResult, error) {
	args := m.Called(ctx, raw)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.SubmissionResult), args.Error(1)
}

func (m *MockEntryService) SubmitRecord(ctx context.Context, rec *entry.Record) (*service.SubmissionResult, error) {
	args := m.Called(ctx, rec)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.SubmissionResult), args.Error(1)
}

func (m *MockEntryService) GetSubmission(ctx context.Context, id uuid.UUID) (*domain.Submission, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Submission), args.Error(1)
}

func (m *MockEntryService) ListSubmissions(ctx context.Context, status string, offset, limit int) ([]domain.Submission, int, error) {
	args := m.Called(ctx, status, offset, limit)
	if args.Get(0) == nil {
		return nil, args.Int(1), args.Error(2)
	}
	return args.Get(0).([]domain.Submission), args.Int(1), args.Error(2)
}
