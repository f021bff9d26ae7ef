package handler

import (
	"entrygate/internal/entry"
	"entrygate/internal/filing"
	"entrygate/internal/review"
)

// Swagger type definitions for API documentation.
// These types are used by swag to generate OpenAPI documentation.

// DraftResponse documents the data of POST /entries/draft.
type DraftResponse struct {
	ID       string           `json:"id" example:"5d1b2c9e-8f0a-4b7e-9c3d-2a6f1e0b4c55"`
	Entry    entry.Record     `json:"entry"`
	XML      string           `json:"xml" example:"<entryUpload>...</entryUpload>"`
	Findings []review.Finding `json:"findings"`
	Summary  review.Counts    `json:"summary"`
}

// SubmissionResponse documents the data of the submit endpoints.
type SubmissionResponse struct {
	Draft        DraftResponse  `json:"draft"`
	Outcome      filing.Outcome `json:"outcome"`
	SubmissionID string         `json:"submission_id" example:"0b8e4f3a-1c2d-4e5f-8a9b-7c6d5e4f3a2b"`
	Recorded     bool           `json:"recorded" example:"true"`
}

// HealthResponse represents the health check response.
type HealthResponse struct {
	Status string `json:"status" example:"ok"`
	Error  string `json:"error,omitempty" example:"database not reachable"`
}

// Response wraps a success response.
type Response struct {
	Success bool        `json:"success" example:"true"`
	Data    interface{} `json:"data,omitempty"`
	Meta    *PagMeta    `json:"meta,omitempty"`
}

// ErrorResponseBody wraps an error response.
type ErrorResponseBody struct {
	Success bool      `json:"success" example:"false"`
	Error   *APIError `json:"error"`
}
