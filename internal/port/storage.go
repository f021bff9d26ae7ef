package port

import (
	"context"
	"io"
)

// UploadInput encapsulates the parameters needed to upload an object.
type UploadInput struct {
	Bucket      string
	Key         string
	Body        io.Reader
	ContentType string
	Size        int64
}

// UploadOutput contains the result of a successful upload.
type UploadOutput struct {
	Location string
	ETag     string
}

// ObjectStorage abstracts cloud object storage operations.
type ObjectStorage interface {
	Upload(ctx context.Context, input UploadInput) (*UploadOutput, error)
}

// Artifact is one debug file produced while drafting an entry.
type Artifact struct {
	Name        string
	ContentType string
	Data        []byte
}

// ArtifactStore persists debug artifacts grouped by draft ID. Save returns
// the location of the saved group.
type ArtifactStore interface {
	Save(ctx context.Context, draftID string, artifacts []Artifact) (string, error)
}
