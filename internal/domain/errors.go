package domain

import "errors"

var (
	ErrNotFound            = errors.New("resource not found")
	ErrUnauthorized        = errors.New("unauthorized")
	ErrInvalidDocument     = errors.New("invalid extracted document")
	ErrInvalidEntry        = errors.New("invalid entry record")
	ErrInvalidStatus       = errors.New("invalid submission status")
	ErrSubmissionNotFound  = errors.New("submission not found")
	ErrFilingNotConfigured = errors.New("filing endpoint is not configured")
)
