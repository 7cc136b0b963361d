package storage

import (
	"fmt"
	"io"
	"mime/multipart"
	"os"
	"path"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/credentials"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3"
	"github.com/aws/aws-sdk-go/service/s3/s3iface"
	"github.com/rs/zerolog/log"

	"github.com/Nixie-Tech-LLC/beacon/internal/model"
)

// Upload describes a stored media file.
type Upload struct {
	URL         string            `json:"url"`
	ContentType model.ContentType `json:"content_type"`
	Filename    string            `json:"filename"`
	Size        int64             `json:"size"`
}

type Storage interface {
	SaveFile(fileHeader *multipart.FileHeader) (Upload, error)
}

type LocalStorage struct {
	uploadDir string
	publicURL string
	now       func() time.Time
}

type SpacesStorage struct {
	client s3iface.S3API
	bucket string
	cdnURL string
	now    func() time.Time
}

// NewLocalStorage writes into uploadDir, which the server exposes under publicURL.
func NewLocalStorage(uploadDir, publicURL string) *LocalStorage {
	return &LocalStorage{uploadDir: uploadDir, publicURL: publicURL, now: time.Now}
}

func NewSpacesStorage(endpoint, region, bucket, cdnURL, accessKey, secretKey string) (*SpacesStorage, error) {
	config := &aws.Config{
		Credentials:      credentials.NewStaticCredentials(accessKey, secretKey, ""),
		Endpoint:         aws.String(endpoint),
		Region:           aws.String(region),
		S3ForcePathStyle: aws.Bool(false),
	}

	sess, err := session.NewSession(config)
	if err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}

	return &SpacesStorage{
		client: s3.New(sess),
		bucket: bucket,
		cdnURL: cdnURL,
		now:    time.Now,
	}, nil
}

var unsafeChars = regexp.MustCompile(`[^a-zA-Z0-9_-]`)

// normalizeFilename creates a unique, normalized filename without spaces
func normalizeFilename(originalFilename string, now time.Time) string {
	ext := strings.ToLower(filepath.Ext(originalFilename))
	baseName := strings.TrimSuffix(filepath.Base(originalFilename), filepath.Ext(originalFilename))

	baseName = strings.ReplaceAll(baseName, " ", "_")
	baseName = unsafeChars.ReplaceAllString(baseName, "")
	if baseName == "" {
		baseName = "file"
	}

	return fmt.Sprintf("%s_%s%s", baseName, now.Format("20060102_150405"), ext)
}

// MediaType maps a filename to the display content type. Anything a display
// cannot render is rejected.
func MediaType(filename string) (model.ContentType, error) {
	mime := getContentType(filename)
	switch {
	case strings.HasPrefix(mime, "video/"):
		return model.ContentVideo, nil
	case strings.HasPrefix(mime, "image/"):
		return model.ContentImage, nil
	}
	return "", &model.ValidationError{Field: "file", Message: "unsupported media type " + filepath.Ext(filename)}
}

func (ls *LocalStorage) SaveFile(fileHeader *multipart.FileHeader) (Upload, error) {
	kind, err := MediaType(fileHeader.Filename)
	if err != nil {
		return Upload{}, err
	}
	normalizedFilename := normalizeFilename(fileHeader.Filename, ls.now())
	log.Debug().Str("original", fileHeader.Filename).Str("normalized", normalizedFilename).Msg("File upload normalized")

	if err := os.MkdirAll(ls.uploadDir, 0755); err != nil {
		return Upload{}, fmt.Errorf("failed to create upload directory: %w", err)
	}

	src, err := fileHeader.Open()
	if err != nil {
		return Upload{}, fmt.Errorf("failed to open uploaded file: %w", err)
	}
	defer src.Close()

	dst, err := os.Create(filepath.Join(ls.uploadDir, normalizedFilename))
	if err != nil {
		return Upload{}, fmt.Errorf("failed to create destination file: %w", err)
	}
	defer dst.Close()

	n, err := io.Copy(dst, src)
	if err != nil {
		return Upload{}, fmt.Errorf("failed to save file: %w", err)
	}

	return Upload{
		URL:         path.Join(ls.publicURL, normalizedFilename),
		ContentType: kind,
		Filename:    normalizedFilename,
		Size:        n,
	}, nil
}

func (ss *SpacesStorage) SaveFile(fileHeader *multipart.FileHeader) (Upload, error) {
	kind, err := MediaType(fileHeader.Filename)
	if err != nil {
		return Upload{}, err
	}
	normalizedFilename := normalizeFilename(fileHeader.Filename, ss.now())
	log.Debug().Str("original", fileHeader.Filename).Str("normalized", normalizedFilename).Msg("File upload normalized")

	src, err := fileHeader.Open()
	if err != nil {
		return Upload{}, fmt.Errorf("failed to open uploaded file: %w", err)
	}
	defer src.Close()

	key := fmt.Sprintf("uploads/%s", normalizedFilename)

	_, err = ss.client.PutObject(&s3.PutObjectInput{
		Bucket:      aws.String(ss.bucket),
		Key:         aws.String(key),
		Body:        src,
		ContentType: aws.String(getContentType(normalizedFilename)),
		ACL:         aws.String("public-read"),
	})
	if err != nil {
		log.Error().Err(err).Msg("Failed to upload file to Spaces")
		return Upload{}, fmt.Errorf("failed to upload to Spaces: %w", err)
	}

	return Upload{
		URL:         fmt.Sprintf("%s/%s", strings.TrimSuffix(ss.cdnURL, "/"), key),
		ContentType: kind,
		Filename:    normalizedFilename,
		Size:        fileHeader.Size,
	}, nil
}

func getContentType(filename string) string {
	ext := strings.ToLower(filepath.Ext(filename))
	switch ext {
	case ".jpg", ".jpeg":
		return "image/jpeg"
	case ".png":
		return "image/png"
	case ".gif":
		return "image/gif"
	case ".webp":
		return "image/webp"
	case ".mp4":
		return "video/mp4"
	case ".webm":
		return "video/webm"
	case ".mov":
		return "video/quicktime"
	case ".m4v":
		return "video/x-m4v"
	default:
		return "application/octet-stream"
	}
}
