package handler

import (
	"bytes"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"entrygate/internal/csvexport"
	"entrygate/internal/entry"
	"entrygate/internal/service"
)

const defaultMaxBodyBytes = 5 << 20

// EntryHandler handles the draft and submit endpoints.
type EntryHandler struct {
	entryService service.EntryService
	maxBodyBytes int64
	now          func() time.Time
}

// NewEntryHandler creates a new EntryHandler. Request bodies larger than
// maxBodyBytes are refused; zero selects 5 MiB.
func NewEntryHandler(entryService service.EntryService, maxBodyBytes int64) *EntryHandler {
	if maxBodyBytes <= 0 {
		maxBodyBytes = defaultMaxBodyBytes
	}
	return &EntryHandler{entryService: entryService, maxBodyBytes: maxBodyBytes, now: time.Now}
}

// Draft handles POST /api/v1/entries/draft
// @Summary Draft an entry
// @Description Map an extracted document (JSON, or model output containing JSON) to an entry record, its XML document and review findings. Nothing is submitted.
// @Tags entries
// @Accept json
// @Produce json
// @Param body body object true "Extracted document"
// @Success 200 {object} Response{data=DraftResponse}
// @Failure 400 {object} ErrorResponseBody "Body is not an extracted document"
// @Failure 401 {object} ErrorResponseBody "Unauthorized"
// @Failure 413 {object} ErrorResponseBody "Body too large"
// @Security BearerAuth
// @Router /entries/draft [post]
func (h *EntryHandler) Draft(c *gin.Context) {
	raw, ok := h.readBody(c)
	if !ok {
		return
	}
	draft, err := h.entryService.Draft(c.Request.Context(), raw)
	if err != nil {
		HandleError(c, err)
		return
	}
	RespondOK(c, draft)
}

// Submit handles POST /api/v1/entries/submit
// @Summary Draft and submit an entry
// @Description Drafts the extracted document and submits its XML to the filing service exactly once. Rejections and transport failures are reported in the outcome, not as HTTP errors.
// @Tags entries
// @Accept json
// @Produce json
// @Param body body object true "Extracted document"
// @Success 200 {object} Response{data=SubmissionResponse}
// @Failure 400 {object} ErrorResponseBody "Body is not an extracted document"
// @Failure 401 {object} ErrorResponseBody "Unauthorized"
// @Failure 503 {object} ErrorResponseBody "Filing endpoint not configured"
// @Security BearerAuth
// @Router /entries/submit [post]
func (h *EntryHandler) Submit(c *gin.Context) {
	raw, ok := h.readBody(c)
	if !ok {
		return
	}
	result, err := h.entryService.Submit(c.Request.Context(), raw)
	if err != nil {
		HandleError(c, err)
		return
	}
	RespondOK(c, result)
}

// Promote handles POST /api/v1/entries/promote
// @Summary Submit a reviewed entry record
// @Description Re-checks, encodes and submits an entry record edited by a broker.
// @Tags entries
// @Accept json
// @Produce json
// @Param body body entry.Record true "Entry record"
// @Success 200 {object} Response{data=SubmissionResponse}
// @Failure 400 {object} ErrorResponseBody "Malformed record"
// @Failure 422 {object} ErrorResponseBody "Record has no line items"
// @Failure 503 {object} ErrorResponseBody "Filing endpoint not configured"
// @Security BearerAuth
// @Router /entries/promote [post]
func (h *EntryHandler) Promote(c *gin.Context) {
	rec, ok := h.bindRecord(c)
	if !ok {
		return
	}
	result, err := h.entryService.SubmitRecord(c.Request.Context(), rec)
	if err != nil {
		HandleError(c, err)
		return
	}
	RespondOK(c, result)
}

// XML handles POST /api/v1/entries/xml
// @Summary Encode an entry record
// @Tags entries
// @Accept json
// @Produce xml
// @Param body body entry.Record true "Entry record"
// @Success 200 {string} string "Entry upload document"
// @Failure 400 {object} ErrorResponseBody "Malformed record"
// @Failure 422 {object} ErrorResponseBody "Record has no line items"
// @Security BearerAuth
// @Router /entries/xml [post]
func (h *EntryHandler) XML(c *gin.Context) {
	rec, ok := h.bindRecord(c)
	if !ok {
		return
	}
	draft, err := h.entryService.DraftRecord(c.Request.Context(), rec)
	if err != nil {
		HandleError(c, err)
		return
	}
	c.Data(http.StatusOK, "application/xml; charset=utf-8", []byte(draft.XML))
}

// LinesCSV handles POST /api/v1/entries/lines.csv
// @Summary Export line items as CSV
// @Description One row per line item with its review finding codes, for spreadsheet review.
// @Tags entries
// @Accept json
// @Produce text/csv
// @Param body body entry.Record true "Entry record"
// @Success 200 {file} file "CSV file"
// @Failure 400 {object} ErrorResponseBody "Malformed record"
// @Failure 422 {object} ErrorResponseBody "Record has no line items"
// @Security BearerAuth
// @Router /entries/lines.csv [post]
func (h *EntryHandler) LinesCSV(c *gin.Context) {
	rec, ok := h.bindRecord(c)
	if !ok {
		return
	}
	draft, err := h.entryService.DraftRecord(c.Request.Context(), rec)
	if err != nil {
		HandleError(c, err)
		return
	}

	var buf bytes.Buffer
	buf.Write(csvexport.BOM)
	if err := csvexport.WriteAll(&buf, draft.Entry, draft.Findings); err != nil {
		HandleError(c, err)
		return
	}

	bl := draft.Entry.HouseBL.String()
	if bl == "" {
		bl = draft.Entry.MasterBL.String()
	}
	filename := csvexport.BuildFilename(bl, h.now())
	c.Header("Content-Disposition", `attachment; filename="`+filename+`"`)
	c.Data(http.StatusOK, "text/csv; charset=utf-8", buf.Bytes())
}

func (h *EntryHandler) readBody(c *gin.Context) ([]byte, bool) {
	raw, err := io.ReadAll(http.MaxBytesReader(c.Writer, c.Request.Body, h.maxBodyBytes))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			RespondError(c, http.StatusRequestEntityTooLarge, "BODY_TOO_LARGE", "request body exceeds maximum allowed size")
			return nil, false
		}
		RespondError(c, http.StatusBadRequest, "INVALID_REQUEST", "could not read request body")
		return nil, false
	}
	if len(bytes.TrimSpace(raw)) == 0 {
		RespondError(c, http.StatusBadRequest, "INVALID_DOCUMENT", "request body is empty")
		return nil, false
	}
	return raw, true
}

func (h *EntryHandler) bindRecord(c *gin.Context) (*entry.Record, bool) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.maxBodyBytes)
	var rec entry.Record
	if err := c.ShouldBindJSON(&rec); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			RespondError(c, http.StatusRequestEntityTooLarge, "BODY_TOO_LARGE", "request body exceeds maximum allowed size")
			return nil, false
		}
		RespondError(c, http.StatusBadRequest, "INVALID_REQUEST", "request body is not an entry record")
		return nil, false
	}
	return &rec, true
}
