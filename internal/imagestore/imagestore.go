package imagestore

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"path"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"
)

// MaxImageSize bounds uploaded featured images.
const MaxImageSize = 5 << 20

const keyPrefix = "recipes/"

var (
	ErrNotImage = errors.New("file is not an image")
	ErrTooLarge = errors.New("image is too large")
)

// s3Client is an interface for testability.
type s3Client interface {
	PutObject(ctx context.Context, input *s3.PutObjectInput, opts ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	DeleteObject(ctx context.Context, input *s3.DeleteObjectInput, opts ...func(*s3.Options)) (*s3.DeleteObjectOutput, error)
}

// Config describes an S3-compatible bucket for featured images.
type Config struct {
	Endpoint      string
	Bucket        string
	Region        string
	AccessKey     string
	SecretKey     string
	PublicBaseURL string // e.g. https://cdn.example.com; defaults to endpoint/bucket
}

func (c Config) configured() bool {
	return c.Bucket != "" && c.AccessKey != "" && c.SecretKey != ""
}

// Store uploads featured images. A Store built from an incomplete Config is
// disabled: Put returns the placeholder key and Delete does nothing.
type Store struct {
	cfg    Config
	client s3Client
	logger *slog.Logger
}

func New(cfg Config, logger *slog.Logger) *Store {
	s := &Store{cfg: cfg, logger: logger.With("component", "imagestore")}
	if cfg.configured() {
		s.client = newS3Client(cfg)
	}
	return s
}

func newS3Client(cfg Config) *s3.Client {
	region := cfg.Region
	if region == "" {
		region = "us-east-1"
	}
	opts := s3.Options{
		Region:       region,
		Credentials:  credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, ""),
		UsePathStyle: true,
	}
	if cfg.Endpoint != "" {
		opts.BaseEndpoint = aws.String(cfg.Endpoint)
	}
	return s3.New(opts)
}

// Enabled reports whether uploads are stored.
func (s *Store) Enabled() bool {
	return s.client != nil
}

// Put validates and uploads an image, returning its object key. When the
// store is disabled it returns "" and no error.
func (s *Store) Put(ctx context.Context, filename string, body io.Reader) (string, error) {
	if !s.Enabled() {
		return "", nil
	}

	data, err := io.ReadAll(io.LimitReader(body, MaxImageSize+1))
	if err != nil {
		return "", fmt.Errorf("read upload: %w", err)
	}
	if len(data) > MaxImageSize {
		return "", ErrTooLarge
	}
	contentType := http.DetectContentType(data)
	if !strings.HasPrefix(contentType, "image/") {
		return "", ErrNotImage
	}

	key := keyPrefix + uuid.NewString() + extension(filename, contentType)
	_, err = s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(s.cfg.Bucket),
		Key:           aws.String(key),
		Body:          bytes.NewReader(data),
		ContentType:   aws.String(contentType),
		ContentLength: aws.Int64(int64(len(data))),
	})
	if err != nil {
		return "", fmt.Errorf("upload image: %w", err)
	}
	s.logger.Info("image uploaded", "key", key, "bytes", len(data))
	return key, nil
}

// Delete removes an uploaded image. Non-upload keys such as the placeholder are ignored.
func (s *Store) Delete(ctx context.Context, key string) error {
	if !s.Enabled() || !strings.HasPrefix(key, keyPrefix) {
		return nil
	}
	_, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.cfg.Bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return fmt.Errorf("delete image: %w", err)
	}
	return nil
}

// URL returns the public URL for key, or "" for keys that are not uploads.
func (s *Store) URL(key string) string {
	if !strings.HasPrefix(key, keyPrefix) {
		return ""
	}
	base := strings.TrimRight(s.cfg.PublicBaseURL, "/")
	if base == "" {
		base = strings.TrimRight(s.cfg.Endpoint, "/") + "/" + s.cfg.Bucket
	}
	return base + "/" + key
}

func extension(filename, contentType string) string {
	switch contentType {
	case "image/jpeg":
		return ".jpg"
	case "image/png":
		return ".png"
	case "image/gif":
		return ".gif"
	case "image/webp":
		return ".webp"
	}
	return strings.ToLower(path.Ext(filename))
}
