package port

import (
	"context"

	"github.com/google/uuid"

	"entrygate/internal/domain"
)

// SubmissionRepository defines the contract for the submission log.
type SubmissionRepository interface {
	Create(ctx context.Context, sub *domain.Submission) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Submission, error)
	// List returns submissions newest first. An empty status matches all.
	List(ctx context.Context, status domain.FilingStatus, offset, limit int) ([]domain.Submission, int, error)
}
