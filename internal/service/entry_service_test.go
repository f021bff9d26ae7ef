package service_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"entrygate/internal/config"
	"entrygate/internal/domain"
	"entrygate/internal/entry"
	"entrygate/internal/filing"
	"entrygate/internal/normalize"
	"entrygate/internal/port"
	"entrygate/internal/review"
	"entrygate/internal/service"
	"entrygate/mocks"
)

const extracted = `{
	"bill_of_lading": {"port_of_loading": "Shanghai", "port_of_discharge": "Los Angeles", "house_bl_no": "HBL-77"},
	"arrival_notice": {"firms_code": "ZIM Integrated Shipping"},
	"commercial_invoice": {"items": [{"hs_code": "1234.56.78", "quantity": 10, "value": 500, "description": "widgets"}]}
}`

func newMapper() *entry.Mapper {
	return entry.NewMapper(normalize.New(nil, "CN"), entry.Settings{BrokerNo: "B42"})
}

func filingCfg() *config.FilingConfig {
	return &config.FilingConfig{Endpoint: "http://filing.test", Timeout: time.Second}
}

func TestEntryService_Draft(t *testing.T) {
	svc := service.NewEntryService(newMapper(), nil, nil, nil, filingCfg())

	draft, err := svc.Draft(context.Background(), []byte(extracted))
	require.NoError(t, err)

	assert.NotEqual(t, uuid.Nil, draft.ID)
	assert.Equal(t, "HBL-77", draft.Entry.HouseBL.String())
	assert.Len(t, draft.Entry.Items, 1)
	assert.Contains(t, draft.XML, "<tariff>1234.56.78</tariff>")
	assert.Contains(t, draft.XML, "<transmitFlag>N</transmitFlag>")
	assert.Equal(t, review.Summary(draft.Findings), draft.Summary)
	assert.NotNil(t, draft.Findings)
}

func TestEntryService_Draft_InvalidDocument(t *testing.T) {
	svc := service.NewEntryService(newMapper(), nil, nil, nil, filingCfg())

	_, err := svc.Draft(context.Background(), []byte(`[1, 2, 3]`))
	assert.ErrorIs(t, err, domain.ErrInvalidDocument)
}

func TestEntryService_DraftRecord_NoItems(t *testing.T) {
	svc := service.NewEntryService(newMapper(), nil, nil, nil, filingCfg())

	_, err := svc.DraftRecord(context.Background(), &entry.Record{BrokerNo: entry.T("B42")})
	assert.ErrorIs(t, err, domain.ErrInvalidEntry)

	_, err = svc.DraftRecord(context.Background(), nil)
	assert.ErrorIs(t, err, domain.ErrInvalidEntry)
}

func TestEntryService_Submit_NotConfigured(t *testing.T) {
	svc := service.NewEntryService(newMapper(), nil, nil, nil, filingCfg())

	_, err := svc.Submit(context.Background(), []byte(extracted))
	assert.ErrorIs(t, err, domain.ErrFilingNotConfigured)
}

func TestEntryService_Submit_AcceptedAndRecorded(t *testing.T) {
	submitter := new(mocks.MockFilingSubmitter)
	repo := new(mocks.MockSubmissionRepo)
	svc := service.NewEntryService(newMapper(), submitter, repo, nil, filingCfg())

	submittedAt := time.Date(2024, 6, 11, 9, 30, 0, 0, time.UTC)
	out := filing.Accepted("E-42", "<ok/>")
	out.SubmittedAt = submittedAt
	out.Duration = 1500 * time.Millisecond

	submitter.On("Submit", mock.Anything, mock.MatchedBy(func(doc []byte) bool {
		return len(doc) > 0
	})).Return(out)

	var saved *domain.Submission
	repo.On("Create", mock.Anything, mock.AnythingOfType("*domain.Submission")).
		Run(func(args mock.Arguments) { saved = args.Get(1).(*domain.Submission) }).
		Return(nil)

	result, err := svc.Submit(context.Background(), []byte(extracted))
	require.NoError(t, err)

	assert.True(t, result.Outcome.Accepted())
	assert.True(t, result.Recorded)
	require.NotNil(t, saved)
	assert.Equal(t, saved.ID, result.SubmissionID)
	assert.Equal(t, result.Draft.ID, saved.DraftID)
	assert.Equal(t, domain.FilingAccepted, saved.Status)
	assert.Equal(t, "E-42", saved.FilingNumber)
	assert.Equal(t, "HBL-77", saved.HouseBL)
	assert.Equal(t, 1, saved.LineCount)
	assert.Equal(t, result.Draft.XML, saved.DocumentXML)
	assert.Equal(t, submittedAt, saved.SubmittedAt)
	assert.Equal(t, int64(1500), saved.DurationMS)

	submitter.AssertNumberOfCalls(t, "Submit", 1)
	repo.AssertExpectations(t)
}

func TestEntryService_Submit_SubmitsTheDraftXML(t *testing.T) {
	submitter := new(mocks.MockFilingSubmitter)
	svc := service.NewEntryService(newMapper(), submitter, nil, nil, filingCfg())

	var sent []byte
	submitter.On("Submit", mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) { sent = args.Get(1).([]byte) }).
		Return(filing.Rejected("bad HTS", "<fault/>"))

	result, err := svc.Submit(context.Background(), []byte(extracted))
	require.NoError(t, err)

	assert.Equal(t, result.Draft.XML, string(sent))
	assert.Equal(t, domain.FilingRejected, result.Outcome.Status)
	assert.False(t, result.Recorded)
	assert.Equal(t, uuid.Nil, result.SubmissionID)
}

func TestEntryService_Submit_AppliesTimeout(t *testing.T) {
	submitter := new(mocks.MockFilingSubmitter)
	svc := service.NewEntryService(newMapper(), submitter, nil, nil, filingCfg())

	submitter.On("Submit", mock.MatchedBy(func(ctx context.Context) bool {
		deadline, ok := ctx.Deadline()
		return ok && time.Until(deadline) <= time.Second
	}), mock.Anything).Return(filing.TransportError(context.DeadlineExceeded))

	result, err := svc.Submit(context.Background(), []byte(extracted))
	require.NoError(t, err)
	assert.Equal(t, domain.FilingTransportError, result.Outcome.Status)
	submitter.AssertExpectations(t)
}

func TestEntryService_Submit_RecordFailureKeepsOutcome(t *testing.T) {
	submitter := new(mocks.MockFilingSubmitter)
	repo := new(mocks.MockSubmissionRepo)
	svc := service.NewEntryService(newMapper(), submitter, repo, nil, filingCfg())

	submitter.On("Submit", mock.Anything, mock.Anything).Return(filing.Accepted("E-1", ""))
	repo.On("Create", mock.Anything, mock.Anything).Return(errors.New("db down"))

	result, err := svc.Submit(context.Background(), []byte(extracted))
	require.NoError(t, err)
	assert.Equal(t, "E-1", result.Outcome.FilingNumber)
	assert.False(t, result.Recorded)
	assert.Equal(t, uuid.Nil, result.SubmissionID)
}

func TestEntryService_SubmitRecord_EditedRecord(t *testing.T) {
	submitter := new(mocks.MockFilingSubmitter)
	svc := service.NewEntryService(newMapper(), submitter, nil, nil, filingCfg())

	draft, err := svc.Draft(context.Background(), []byte(extracted))
	require.NoError(t, err)
	rec := draft.Entry
	rec.ImporterNo = entry.T("12-3456789")

	var sent []byte
	submitter.On("Submit", mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) { sent = args.Get(1).([]byte) }).
		Return(filing.Accepted("E-2", ""))

	result, err := svc.SubmitRecord(context.Background(), rec)
	require.NoError(t, err)
	assert.Contains(t, string(sent), "<importerNo>12-3456789</importerNo>")
	assert.NotEqual(t, draft.ID, result.Draft.ID)
}

func TestEntryService_SubmitRecord_RejectsEmptyRecord(t *testing.T) {
	submitter := new(mocks.MockFilingSubmitter)
	svc := service.NewEntryService(newMapper(), submitter, nil, nil, filingCfg())

	_, err := svc.SubmitRecord(context.Background(), &entry.Record{})
	assert.ErrorIs(t, err, domain.ErrInvalidEntry)
	submitter.AssertNotCalled(t, "Submit", mock.Anything, mock.Anything)
}

func TestEntryService_ListSubmissions(t *testing.T) {
	repo := new(mocks.MockSubmissionRepo)
	svc := service.NewEntryService(newMapper(), nil, repo, nil, filingCfg())

	subs := []domain.Submission{{ID: uuid.New(), Status: domain.FilingRejected}}
	repo.On("List", mock.Anything, domain.FilingRejected, 0, 20).Return(subs, 1, nil)

	got, total, err := svc.ListSubmissions(context.Background(), "rejected", 0, 20)
	require.NoError(t, err)
	assert.Equal(t, 1, total)
	assert.Equal(t, subs, got)

	_, _, err = svc.ListSubmissions(context.Background(), "pending", 0, 20)
	assert.ErrorIs(t, err, domain.ErrInvalidStatus)
	repo.AssertNumberOfCalls(t, "List", 1)
}

func TestEntryService_GetSubmission(t *testing.T) {
	repo := new(mocks.MockSubmissionRepo)
	svc := service.NewEntryService(newMapper(), nil, repo, nil, filingCfg())

	id := uuid.New()
	repo.On("GetByID", mock.Anything, id).Return(nil, domain.ErrSubmissionNotFound)

	_, err := svc.GetSubmission(context.Background(), id)
	assert.ErrorIs(t, err, domain.ErrSubmissionNotFound)
}

func TestEntryService_SavesArtifacts(t *testing.T) {
	store := new(mocks.MockArtifactStore)
	submitter := new(mocks.MockFilingSubmitter)
	writer := service.NewArtifactWriter(store, service.ArtifactWriterConfig{})
	svc := service.NewEntryService(newMapper(), submitter, nil, writer, filingCfg())

	names := make(chan []string, 2)
	store.On("Save", mock.Anything, mock.AnythingOfType("string"), mock.Anything).
		Run(func(args mock.Arguments) {
			var n []string
			for _, a := range args.Get(2).([]port.Artifact) {
				n = append(n, a.Name)
			}
			names <- n
		}).
		Return("debug_output/x", nil)
	submitter.On("Submit", mock.Anything, mock.Anything).Return(filing.Unrecognized("??"))

	result, err := svc.Submit(context.Background(), []byte(extracted))
	require.NoError(t, err)
	require.NoError(t, writer.Wait(context.Background()))
	close(names)

	var all []string
	for n := range names {
		all = append(all, n...)
	}
	assert.ElementsMatch(t, []string{
		"input.json", "entry.json", "entry.xml", "lines.csv", "findings.json", "outcome.json",
	}, all)
	store.AssertCalled(t, "Save", mock.Anything, result.Draft.ID.String(), mock.Anything)
}

func TestEntryService_ArtifactFailureIsNotFatal(t *testing.T) {
	store := new(mocks.MockArtifactStore)
	writer := service.NewArtifactWriter(store, service.ArtifactWriterConfig{Concurrency: 1})
	svc := service.NewEntryService(newMapper(), nil, nil, writer, filingCfg())

	store.On("Save", mock.Anything, mock.Anything, mock.Anything).Return("", errors.New("disk full"))

	draft, err := svc.Draft(context.Background(), []byte(extracted))
	require.NoError(t, err)
	assert.NotNil(t, draft)
	require.NoError(t, writer.Wait(context.Background()))
	store.AssertNumberOfCalls(t, "Save", 1)
}

func TestEntryService_DraftRecordSavesNothing(t *testing.T) {
	store := new(mocks.MockArtifactStore)
	writer := service.NewArtifactWriter(store, service.ArtifactWriterConfig{})
	svc := service.NewEntryService(newMapper(), nil, nil, writer, filingCfg())

	draft, err := svc.DraftRecord(context.Background(), &entry.Record{
		BrokerNo: entry.T("B42"),
		Items:    []entry.LineItem{{HSCode: entry.T("1234.56.78"), Value: entry.T("5"), Quantity: entry.T("1")}},
	})
	require.NoError(t, err)
	assert.Contains(t, draft.XML, "<tariff>1234.56.78</tariff>")
	require.NoError(t, writer.Wait(context.Background()))
	store.AssertNotCalled(t, "Save", mock.Anything, mock.Anything, mock.Anything)
}

func TestDraftArtifacts(t *testing.T) {
	svc := service.NewEntryService(newMapper(), nil, nil, nil, filingCfg())
	draft, err := svc.Draft(context.Background(), []byte(extracted))
	require.NoError(t, err)

	arts, err := service.DraftArtifacts(draft, nil)
	require.NoError(t, err)
	require.Len(t, arts, 4)
	assert.Equal(t, "entry.json", arts[0].Name)
	assert.Equal(t, draft.XML, string(arts[1].Data))
	assert.Equal(t, []byte{0xEF, 0xBB, 0xBF}, arts[2].Data[:3])
}
