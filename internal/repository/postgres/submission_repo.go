package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"entrygate/internal/domain"
	"entrygate/internal/port"
)

type submissionRepo struct {
	db *sqlx.DB
}

// NewSubmissionRepo creates a new PostgreSQL-backed SubmissionRepository.
func NewSubmissionRepo(db *sqlx.DB) port.SubmissionRepository {
	return &submissionRepo{db: db}
}

func (r *submissionRepo) Create(ctx context.Context, sub *domain.Submission) error {
	err := r.db.QueryRowxContext(ctx,
		`INSERT INTO filing_submissions (id, draft_id, status, filing_number, reason, error, raw_response,
		   house_bl, master_bl, carrier_scac, port_of_entry, line_count, total_value, document_xml,
		   submitted_at, duration_ms)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)
		 RETURNING created_at`,
		sub.ID, sub.DraftID, sub.Status, sub.FilingNumber, sub.Reason, sub.Error, sub.RawResponse,
		sub.HouseBL, sub.MasterBL, sub.CarrierSCAC, sub.PortOfEntry, sub.LineCount, sub.TotalValue,
		sub.DocumentXML, sub.SubmittedAt, sub.DurationMS,
	).Scan(&sub.CreatedAt)
	if err != nil {
		return fmt.Errorf("submissionRepo.Create: %w", err)
	}
	return nil
}

func (r *submissionRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.Submission, error) {
	var sub domain.Submission
	err := r.db.GetContext(ctx, &sub, "SELECT * FROM filing_submissions WHERE id = $1", id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrSubmissionNotFound
		}
		return nil, fmt.Errorf("submissionRepo.GetByID: %w", err)
	}
	return &sub, nil
}

// List omits document_xml and raw_response; fetch a single submission for those.
func (r *submissionRepo) List(ctx context.Context, status domain.FilingStatus, offset, limit int) ([]domain.Submission, int, error) {
	var total int
	err := r.db.GetContext(ctx, &total,
		`SELECT COUNT(*) FROM filing_submissions WHERE ($1 = '' OR status = $1)`, status)
	if err != nil {
		return nil, 0, fmt.Errorf("submissionRepo.List count: %w", err)
	}

	subs := []domain.Submission{}
	err = r.db.SelectContext(ctx, &subs,
		`SELECT id, draft_id, status, filing_number, reason, error, '' AS raw_response,
		        house_bl, master_bl, carrier_scac, port_of_entry, line_count, total_value,
		        '' AS document_xml, submitted_at, duration_ms, created_at
		 FROM filing_submissions
		 WHERE ($1 = '' OR status = $1)
		 ORDER BY created_at DESC
		 LIMIT $2 OFFSET $3`,
		status, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("submissionRepo.List: %w", err)
	}
	return subs, total, nil
}
