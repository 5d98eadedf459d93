// Package media stores uploaded product images in an S3-compatible bucket.
package media

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"strings"

	"github.com/google/uuid"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

const MaxImageSize = 5 << 20

var (
	ErrNotFound     = errors.New("object not found")
	ErrNotImage     = errors.New("only image uploads are allowed")
	ErrTooLarge     = errors.New("file too large")
	ErrBadObjectKey = errors.New("invalid object name")
)

type Config struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	UseSSL    bool
	PublicURL string
}

type Store struct {
	client    *minio.Client
	bucket    string
	publicURL string
}

type Object struct {
	Filename string `json:"filename"`
	URL      string `json:"url"`
	Size     int64  `json:"size"`
}

func New(ctx context.Context, cfg Config) (*Store, error) {
	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("minio client: %w", err)
	}

	exists, err := client.BucketExists(ctx, cfg.Bucket)
	if err != nil {
		return nil, fmt.Errorf("minio bucket check: %w", err)
	}
	if !exists {
		if err := client.MakeBucket(ctx, cfg.Bucket, minio.MakeBucketOptions{}); err != nil {
			return nil, fmt.Errorf("minio make bucket: %w", err)
		}
	}

	public := cfg.PublicURL
	if public == "" {
		scheme := "http"
		if cfg.UseSSL {
			scheme = "https"
		}
		public = fmt.Sprintf("%s://%s/%s", scheme, cfg.Endpoint, cfg.Bucket)
	}
	return &Store{client: client, bucket: cfg.Bucket, publicURL: public}, nil
}

// ObjectName derives a collision-free object name that keeps the upload's extension.
func ObjectName(original string) string {
	ext := strings.ToLower(path.Ext(original))
	return uuid.NewString() + ext
}

func ValidateImage(contentType string, size int64) error {
	if !strings.HasPrefix(contentType, "image/") {
		return ErrNotImage
	}
	if size > MaxImageSize {
		return ErrTooLarge
	}
	return nil
}

func ValidObjectName(name string) bool {
	return name != "" && !strings.ContainsAny(name, `/\`) && name != "." && name != ".."
}

func (s *Store) URL(name string) string {
	return s.publicURL + "/" + name
}

func (s *Store) Upload(ctx context.Context, original, contentType string, r io.Reader, size int64) (*Object, error) {
	if err := ValidateImage(contentType, size); err != nil {
		return nil, err
	}
	name := ObjectName(original)
	info, err := s.client.PutObject(ctx, s.bucket, name, r, size, minio.PutObjectOptions{ContentType: contentType})
	if err != nil {
		return nil, fmt.Errorf("minio put: %w", err)
	}
	return &Object{Filename: name, URL: s.URL(name), Size: info.Size}, nil
}

func (s *Store) Delete(ctx context.Context, name string) error {
	if !ValidObjectName(name) {
		return ErrBadObjectKey
	}
	if _, err := s.client.StatObject(ctx, s.bucket, name, minio.StatObjectOptions{}); err != nil {
		if minio.ToErrorResponse(err).Code == "NoSuchKey" {
			return ErrNotFound
		}
		return fmt.Errorf("minio stat: %w", err)
	}
	if err := s.client.RemoveObject(ctx, s.bucket, name, minio.RemoveObjectOptions{}); err != nil {
		return fmt.Errorf("minio remove: %w", err)
	}
	return nil
}
