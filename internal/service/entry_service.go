package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"

	"entrygate/internal/config"
	"entrygate/internal/csvexport"
	"entrygate/internal/domain"
	"entrygate/internal/entry"
	"entrygate/internal/entryxml"
	"entrygate/internal/extract"
	"entrygate/internal/filing"
	"entrygate/internal/port"
	"entrygate/internal/review"
)

// Draft is a mapped and encoded entry awaiting review.
type Draft struct {
	ID       uuid.UUID        `json:"id"`
	Entry    *entry.Record    `json:"entry"`
	XML      string           `json:"xml"`
	Findings []review.Finding `json:"findings"`
	Summary  review.Counts    `json:"summary"`
}

// SubmissionResult is the outcome of one filing attempt. SubmissionID is
// set only when the attempt was recorded.
type SubmissionResult struct {
	Draft        *Draft         `json:"draft"`
	Outcome      filing.Outcome `json:"outcome"`
	SubmissionID uuid.UUID      `json:"submission_id"`
	Recorded     bool           `json:"recorded"`
}

// EntryService runs the draft and submit pipeline.
type EntryService interface {
	Draft(ctx context.Context, raw []byte) (*Draft, error)
	DraftRecord(ctx context.Context, rec *entry.Record) (*Draft, error)
	Submit(ctx context.Context, raw []byte) (*SubmissionResult, error)
	SubmitRecord(ctx context.Context, rec *entry.Record) (*SubmissionResult, error)
	GetSubmission(ctx context.Context, id uuid.UUID) (*domain.Submission, error)
	ListSubmissions(ctx context.Context, status string, offset, limit int) ([]domain.Submission, int, error)
}

type entryService struct {
	mapper    *entry.Mapper
	submitter port.FilingSubmitter
	subRepo   port.SubmissionRepository
	artifacts *ArtifactWriter
	timeout   time.Duration
}

// NewEntryService creates a new EntryService. submitter may be nil when no
// filing endpoint is configured; artifacts may be nil to skip debug output.
func NewEntryService(
	mapper *entry.Mapper,
	submitter port.FilingSubmitter,
	subRepo port.SubmissionRepository,
	artifacts *ArtifactWriter,
	cfg *config.FilingConfig,
) EntryService {
	if mapper == nil {
		mapper = entry.NewMapper(nil, entry.Settings{})
	}
	var timeout time.Duration
	if cfg != nil {
		timeout = cfg.Timeout
	}
	return &entryService{
		mapper:    mapper,
		submitter: submitter,
		subRepo:   subRepo,
		artifacts: artifacts,
		timeout:   timeout,
	}
}

func (s *entryService) Draft(ctx context.Context, raw []byte) (*Draft, error) {
	doc, err := extract.Decode(raw)
	if err != nil {
		return nil, fmt.Errorf("entryService.Draft: %w", err)
	}
	rec := s.mapper.Map(doc)
	draft, err := s.build(rec)
	if err != nil {
		return nil, fmt.Errorf("entryService.Draft: %w", err)
	}
	log.Printf("entryService.Draft: draft %s mapped with %d lines (%d errors, %d warnings)",
		draft.ID, len(rec.Items), draft.Summary.Errors, draft.Summary.Warnings)

	s.saveDraft(draft, raw)
	return draft, nil
}

// DraftRecord renders rec without saving artifacts.
func (s *entryService) DraftRecord(ctx context.Context, rec *entry.Record) (*Draft, error) {
	draft, err := s.build(rec)
	if err != nil {
		return nil, fmt.Errorf("entryService.DraftRecord: %w", err)
	}
	return draft, nil
}

func (s *entryService) Submit(ctx context.Context, raw []byte) (*SubmissionResult, error) {
	if s.submitter == nil {
		return nil, domain.ErrFilingNotConfigured
	}
	draft, err := s.Draft(ctx, raw)
	if err != nil {
		return nil, err
	}
	return s.submit(ctx, draft), nil
}

func (s *entryService) SubmitRecord(ctx context.Context, rec *entry.Record) (*SubmissionResult, error) {
	if s.submitter == nil {
		return nil, domain.ErrFilingNotConfigured
	}
	draft, err := s.DraftRecord(ctx, rec)
	if err != nil {
		return nil, err
	}
	s.saveDraft(draft, nil)
	return s.submit(ctx, draft), nil
}

func (s *entryService) GetSubmission(ctx context.Context, id uuid.UUID) (*domain.Submission, error) {
	if s.subRepo == nil {
		return nil, domain.ErrSubmissionNotFound
	}
	return s.subRepo.GetByID(ctx, id)
}

func (s *entryService) ListSubmissions(ctx context.Context, status string, offset, limit int) ([]domain.Submission, int, error) {
	st := domain.FilingStatus(status)
	if st != "" && !st.Valid() {
		return nil, 0, domain.ErrInvalidStatus
	}
	if s.subRepo == nil {
		return []domain.Submission{}, 0, nil
	}
	return s.subRepo.List(ctx, st, offset, limit)
}

// build checks and encodes rec into a new draft.
func (s *entryService) build(rec *entry.Record) (*Draft, error) {
	if err := rec.Validate(); err != nil {
		return nil, err
	}
	doc, err := entryxml.EncodeString(rec)
	if err != nil {
		return nil, err
	}
	findings := review.Check(rec)
	if findings == nil {
		findings = []review.Finding{}
	}
	return &Draft{
		ID:       uuid.New(),
		Entry:    rec,
		XML:      doc,
		Findings: findings,
		Summary:  review.Summary(findings),
	}, nil
}

func (s *entryService) submit(ctx context.Context, draft *Draft) *SubmissionResult {
	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	out := s.submitter.Submit(ctx, []byte(draft.XML))
	log.Printf("entryService.Submit: draft %s %s (filing_number=%q, took %s)",
		draft.ID, out.Status, out.FilingNumber, out.Duration)

	result := &SubmissionResult{Draft: draft, Outcome: out}
	if s.subRepo != nil {
		sub := submissionFromOutcome(draft, out)
		// The submit context may have expired; recording must still happen.
		recCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 10*time.Second)
		defer cancel()
		if err := s.subRepo.Create(recCtx, sub); err != nil {
			log.Printf("entryService.Submit: failed to record submission for draft %s: %v", draft.ID, err)
		} else {
			result.SubmissionID = sub.ID
			result.Recorded = true
		}
	}

	if data, err := json.MarshalIndent(out, "", "  "); err == nil {
		s.artifacts.Enqueue(draft.ID.String(), []port.Artifact{
			{Name: "outcome.json", ContentType: "application/json", Data: data},
		})
	}
	return result
}

func submissionFromOutcome(draft *Draft, out filing.Outcome) *domain.Submission {
	rec := draft.Entry
	return &domain.Submission{
		ID:           uuid.New(),
		DraftID:      draft.ID,
		Status:       out.Status,
		FilingNumber: out.FilingNumber,
		Reason:       out.Reason,
		Error:        out.Error,
		RawResponse:  out.RawResponse,
		HouseBL:      rec.HouseBL.String(),
		MasterBL:     rec.MasterBL.String(),
		CarrierSCAC:  rec.CarrierSCAC.String(),
		PortOfEntry:  rec.PortOfEntry.String(),
		LineCount:    len(rec.Items),
		TotalValue:   rec.TotalValue.String(),
		DocumentXML:  draft.XML,
		SubmittedAt:  out.SubmittedAt,
		DurationMS:   out.Duration.Milliseconds(),
	}
}

// saveDraft enqueues the draft's debug artifacts. input is the raw request
// body and is omitted when nil.
func (s *entryService) saveDraft(draft *Draft, input []byte) {
	if s.artifacts == nil {
		return
	}
	artifacts, err := DraftArtifacts(draft, input)
	if err != nil {
		log.Printf("entryService.saveDraft: failed to build artifacts for draft %s: %v", draft.ID, err)
		return
	}
	s.artifacts.Enqueue(draft.ID.String(), artifacts)
}

// DraftArtifacts renders the debug files for a draft: the raw input when
// given, the record, the XML document, the line-item CSV and the findings.
func DraftArtifacts(draft *Draft, input []byte) ([]port.Artifact, error) {
	var out []port.Artifact
	if len(input) > 0 {
		out = append(out, port.Artifact{Name: "input.json", ContentType: "application/json", Data: input})
	}

	recJSON, err := json.MarshalIndent(draft.Entry, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encoding entry: %w", err)
	}
	findingsJSON, err := json.MarshalIndent(draft.Findings, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encoding findings: %w", err)
	}
	var lines bytes.Buffer
	lines.Write(csvexport.BOM)
	if err := csvexport.WriteAll(&lines, draft.Entry, draft.Findings); err != nil {
		return nil, fmt.Errorf("writing lines: %w", err)
	}

	return append(out,
		port.Artifact{Name: "entry.json", ContentType: "application/json", Data: recJSON},
		port.Artifact{Name: "entry.xml", ContentType: "application/xml", Data: []byte(draft.XML)},
		port.Artifact{Name: "lines.csv", ContentType: "text/csv", Data: lines.Bytes()},
		port.Artifact{Name: "findings.json", ContentType: "application/json", Data: findingsJSON},
	), nil
}
