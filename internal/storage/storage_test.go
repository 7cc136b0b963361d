package storage

import (
	"bytes"
	"mime/multipart"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/service/s3"
	"github.com/aws/aws-sdk-go/service/s3/s3iface"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Nixie-Tech-LLC/beacon/internal/model"
)

var stamp = time.Date(2025, 3, 14, 9, 5, 7, 0, time.UTC)

func fileHeader(t *testing.T, name string, body []byte) *multipart.FileHeader {
	t.Helper()
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	part, err := w.CreateFormFile("file", name)
	require.NoError(t, err)
	_, err = part.Write(body)
	require.NoError(t, err)
	require.NoError(t, w.Close())

	req := httptest.NewRequest("POST", "/upload", &buf)
	req.Header.Set("Content-Type", w.FormDataContentType())
	require.NoError(t, req.ParseMultipartForm(1<<20))
	return req.MultipartForm.File["file"][0]
}

func TestNormalizeFilename(t *testing.T) {
	assert.Equal(t, "Spring_Promo_2025_20250314_090507.mp4", normalizeFilename("Spring Promo (2025).MP4", stamp))
	assert.Equal(t, "file_20250314_090507.png", normalizeFilename("###.png", stamp))
	assert.Equal(t, "passwd_20250314_090507", normalizeFilename("../../etc/passwd", stamp))
}

func TestMediaType(t *testing.T) {
	kind, err := MediaType("clip.webm")
	require.NoError(t, err)
	assert.Equal(t, model.ContentVideo, kind)

	kind, err = MediaType("poster.JPG")
	require.NoError(t, err)
	assert.Equal(t, model.ContentImage, kind)

	_, err = MediaType("notes.pdf")
	var verr *model.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "file", verr.Field)
}

func TestLocalStorageSaveFile(t *testing.T) {
	dir := t.TempDir()
	ls := NewLocalStorage(dir, "/uploads")
	ls.now = func() time.Time { return stamp }

	up, err := ls.SaveFile(fileHeader(t, "lobby loop.mp4", []byte("frames")))
	require.NoError(t, err)

	assert.Equal(t, "/uploads/lobby_loop_20250314_090507.mp4", up.URL)
	assert.Equal(t, model.ContentVideo, up.ContentType)
	assert.Equal(t, int64(6), up.Size)

	data, err := os.ReadFile(filepath.Join(dir, up.Filename))
	require.NoError(t, err)
	assert.Equal(t, "frames", string(data))
}

func TestLocalStorageRejectsUnsupportedFile(t *testing.T) {
	dir := t.TempDir()
	_, err := NewLocalStorage(dir, "/uploads").SaveFile(fileHeader(t, "script.sh", []byte("#!")))
	require.Error(t, err)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

type fakeS3 struct {
	s3iface.S3API
	input *s3.PutObjectInput
}

func (f *fakeS3) PutObject(in *s3.PutObjectInput) (*s3.PutObjectOutput, error) {
	f.input = in
	return &s3.PutObjectOutput{}, nil
}

func TestSpacesStorageSaveFile(t *testing.T) {
	client := &fakeS3{}
	ss := &SpacesStorage{client: client, bucket: "beacon", cdnURL: "https://cdn.example.com/", now: func() time.Time { return stamp }}

	up, err := ss.SaveFile(fileHeader(t, "poster.png", []byte("png")))
	require.NoError(t, err)

	assert.Equal(t, "https://cdn.example.com/uploads/poster_20250314_090507.png", up.URL)
	assert.Equal(t, model.ContentImage, up.ContentType)
	require.NotNil(t, client.input)
	assert.Equal(t, "beacon", aws.StringValue(client.input.Bucket))
	assert.Equal(t, "image/png", aws.StringValue(client.input.ContentType))
	assert.Equal(t, "public-read", aws.StringValue(client.input.ACL))
}
