package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"entrygate/internal/service"
)

// SubmissionHandler serves the submission log.
type SubmissionHandler struct {
	entryService service.EntryService
}

// NewSubmissionHandler creates a new SubmissionHandler.
func NewSubmissionHandler(entryService service.EntryService) *SubmissionHandler {
	return &SubmissionHandler{entryService: entryService}
}

// List handles GET /api/v1/submissions
// @Summary List submissions
// @Description Newest first. Large fields (document_xml, raw_response) are omitted; fetch one submission for them.
// @Tags submissions
// @Produce json
// @Param status query string false "Filter by status" Enums(accepted, rejected, transport_error, unrecognized)
// @Param offset query int false "Offset for pagination" default(0)
// @Param limit query int false "Limit for pagination (max 100)" default(20)
// @Success 200 {object} Response{data=[]domain.Submission,meta=PagMeta}
// @Failure 400 {object} ErrorResponseBody "Invalid status"
// @Failure 401 {object} ErrorResponseBody "Unauthorized"
// @Security BearerAuth
// @Router /submissions [get]
func (h *SubmissionHandler) List(c *gin.Context) {
	offset, limit := parsePagination(c)
	subs, total, err := h.entryService.ListSubmissions(c.Request.Context(), c.Query("status"), offset, limit)
	if err != nil {
		HandleError(c, err)
		return
	}
	RespondPaginated(c, subs, PagMeta{Total: total, Offset: offset, Limit: limit})
}

// GetByID handles GET /api/v1/submissions/:id
// @Summary Get a submission
// @Tags submissions
// @Produce json
// @Param id path string true "Submission ID (UUID)"
// @Success 200 {object} Response{data=domain.Submission}
// @Failure 400 {object} ErrorResponseBody "Invalid ID"
// @Failure 404 {object} ErrorResponseBody "Submission not found"
// @Security BearerAuth
// @Router /submissions/{id} [get]
func (h *SubmissionHandler) GetByID(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "INVALID_ID", "invalid submission ID")
		return
	}
	sub, err := h.entryService.GetSubmission(c.Request.Context(), id)
	if err != nil {
		HandleError(c, err)
		return
	}
	RespondOK(c, sub)
}
