package s3_test

import (
	"context"
	"errors"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"entrygate/internal/port"
	s3storage "entrygate/internal/storage/s3"
	"entrygate/mocks"
)

func TestArtifactStore_Save(t *testing.T) {
	storage := new(mocks.MockObjectStorage)
	store := s3storage.NewArtifactStore(storage, "entry-debug", "/entries/")

	var keys []string
	storage.On("Upload", mock.Anything, mock.AnythingOfType("port.UploadInput")).
		Run(func(args mock.Arguments) {
			in := args.Get(1).(port.UploadInput)
			body, _ := io.ReadAll(in.Body)
			assert.Equal(t, "entry-debug", in.Bucket)
			assert.Equal(t, int64(len(body)), in.Size)
			keys = append(keys, in.Key)
		}).
		Return(&port.UploadOutput{Location: "https://example"}, nil)

	loc, err := store.Save(context.Background(), "abc", []port.Artifact{
		{Name: "entry.xml", ContentType: "application/xml", Data: []byte("<x/>")},
		{Name: "lines.csv", ContentType: "text/csv", Data: []byte("a,b")},
	})
	require.NoError(t, err)

	assert.Equal(t, "s3://entry-debug/entries/abc", loc)
	assert.Equal(t, []string{"entries/abc/entry.xml", "entries/abc/lines.csv"}, keys)
}

func TestArtifactStore_StopsOnFailure(t *testing.T) {
	storage := new(mocks.MockObjectStorage)
	store := s3storage.NewArtifactStore(storage, "b", "")

	storage.On("Upload", mock.Anything, mock.Anything).Return(nil, errors.New("access denied")).Once()

	_, err := store.Save(context.Background(), "abc", []port.Artifact{
		{Name: "entry.xml"}, {Name: "lines.csv"},
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "abc/entry.xml")
	storage.AssertNumberOfCalls(t, "Upload", 1)
}
