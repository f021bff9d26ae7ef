package s3

import (
	"bytes"
	"context"
	"fmt"
	"path"
	"strings"

	"entrygate/internal/port"
)

// ArtifactStore writes debug artifacts to {prefix}/{draftID}/{name} in one
// bucket.
type ArtifactStore struct {
	storage port.ObjectStorage
	bucket  string
	prefix  string
}

// NewArtifactStore creates an ArtifactStore on top of any ObjectStorage.
func NewArtifactStore(storage port.ObjectStorage, bucket, prefix string) *ArtifactStore {
	return &ArtifactStore{
		storage: storage,
		bucket:  bucket,
		prefix:  strings.Trim(prefix, "/"),
	}
}

// Save uploads each artifact and returns the s3:// URI of the group. It stops
// at the first failed upload.
func (s *ArtifactStore) Save(ctx context.Context, draftID string, artifacts []port.Artifact) (string, error) {
	dir := path.Join(s.prefix, draftID)
	for _, a := range artifacts {
		key := path.Join(dir, a.Name)
		_, err := s.storage.Upload(ctx, port.UploadInput{
			Bucket:      s.bucket,
			Key:         key,
			Body:        bytes.NewReader(a.Data),
			ContentType: a.ContentType,
			Size:        int64(len(a.Data)),
		})
		if err != nil {
			return "", fmt.Errorf("s3.ArtifactStore.Save %s: %w", key, err)
		}
	}
	return fmt.Sprintf("s3://%s/%s", s.bucket, dir), nil
}
