// Package s3 implements the document backend against S3-compatible object
// storage using the MinIO client.
package s3

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	minio "github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"pkt.systems/docd/internal/storage"
	"pkt.systems/pslog"
)

// presignExpiry bounds presigned download URLs.
const presignExpiry = time.Hour

// probeTimeout bounds the bucket reachability check at initialization.
const probeTimeout = 10 * time.Second

// Config controls the behaviour of the S3 storage backend.
type Config struct {
	Endpoint        string
	Region          string
	Bucket          string
	AccessKeyID     string
	SecretAccessKey string
	SessionToken    string
	Insecure        bool
	// ForcePathStyle addresses the bucket in the URL path instead of the
	// host, which most non-AWS endpoints require.
	ForcePathStyle bool
	// BaseURL overrides presigned URLs with base-url/documents/<name> when set.
	BaseURL string
	Logger  pslog.Logger
}

// Store implements storage.Backend backed by S3-compatible object storage.
type Store struct {
	client *minio.Client
	cfg    Config
	logger pslog.Logger
}

// New constructs a Store and probes bucket reachability. Missing credentials
// or an unreachable bucket return an error; the caller decides whether to
// fall back to another backend.
func New(ctx context.Context, cfg Config) (*Store, error) {
	if cfg.Bucket == "" {
		return nil, fmt.Errorf("s3: bucket is required")
	}
	if cfg.AccessKeyID == "" || cfg.SecretAccessKey == "" {
		return nil, fmt.Errorf("s3: credentials incomplete (need access key and secret key)")
	}
	logger := cfg.Logger
	if logger == nil {
		logger = pslog.NoopLogger()
	}
	endpoint := cfg.Endpoint
	if endpoint == "" {
		if cfg.Region != "" {
			endpoint = fmt.Sprintf("s3.%s.amazonaws.com", cfg.Region)
		} else {
			endpoint = "s3.amazonaws.com"
		}
	}
	lookup := minio.BucketLookupAuto
	if cfg.ForcePathStyle {
		lookup = minio.BucketLookupPath
	}
	client, err := minio.New(endpoint, &minio.Options{
		Creds:        credentials.NewStaticV4(cfg.AccessKeyID, cfg.SecretAccessKey, cfg.SessionToken),
		Secure:       !cfg.Insecure,
		Region:       cfg.Region,
		BucketLookup: lookup,
	})
	if err != nil {
		return nil, fmt.Errorf("s3: create client: %w", err)
	}
	probeCtx, cancel := context.WithTimeout(ctx, probeTimeout)
	defer cancel()
	exists, err := client.BucketExists(probeCtx, cfg.Bucket)
	if err != nil {
		return nil, fmt.Errorf("s3: bucket reachability check failed: %w", err)
	}
	if !exists {
		return nil, fmt.Errorf("s3: bucket %s does not exist", cfg.Bucket)
	}
	logger.Info("s3.initialized", "bucket", cfg.Bucket, "region", cfg.Region, "endpoint", endpoint)
	return &Store{client: client, cfg: cfg, logger: logger}, nil
}

// Type returns the backend tag.
func (s *Store) Type() string { return storage.TypeS3 }

// Close satisfies storage.Backend and is a no-op for the S3 client.
func (s *Store) Close() error { return nil }

// Exists reports whether the object is present in the bucket.
func (s *Store) Exists(ctx context.Context, name string) (bool, error) {
	_, err := s.client.StatObject(ctx, s.cfg.Bucket, name, minio.StatObjectOptions{})
	if err != nil {
		if isNotFound(err) {
			return false, nil
		}
		return false, fmt.Errorf("s3: stat %q: %w", name, err)
	}
	return true, nil
}

// Fetch downloads the object to destPath.
func (s *Store) Fetch(ctx context.Context, name, destPath string) error {
	start := time.Now()
	if err := s.client.FGetObject(ctx, s.cfg.Bucket, name, destPath, minio.GetObjectOptions{}); err != nil {
		if isNotFound(err) {
			s.logger.Debug("s3.fetch.not_found", "name", name)
			return storage.ErrNotFound
		}
		return fmt.Errorf("s3: get %q: %w", name, err)
	}
	s.logger.Debug("s3.fetch.success", "name", name, "elapsed", time.Since(start))
	return nil
}

// Put uploads the file at srcPath under name and returns the locator.
func (s *Store) Put(ctx context.Context, srcPath, name string) (string, error) {
	start := time.Now()
	info, err := s.client.FPutObject(ctx, s.cfg.Bucket, name, srcPath, minio.PutObjectOptions{
		ContentType: storage.DocContentType,
	})
	if err != nil {
		return "", fmt.Errorf("s3: put %q: %w", name, err)
	}
	s.logger.Debug("s3.put.success", "name", name, "size", info.Size, "etag", info.ETag, "elapsed", time.Since(start))
	if s.cfg.BaseURL != "" {
		return fmt.Sprintf("%s/documents/%s", strings.TrimRight(s.cfg.BaseURL, "/"), url.PathEscape(name)), nil
	}
	return fmt.Sprintf("s3://%s/%s", s.cfg.Bucket, name), nil
}

// Delete removes the object and reports whether it existed.
func (s *Store) Delete(ctx context.Context, name string) (bool, error) {
	_, err := s.client.StatObject(ctx, s.cfg.Bucket, name, minio.StatObjectOptions{})
	if err != nil {
		if isNotFound(err) {
			return false, nil
		}
		return false, fmt.Errorf("s3: stat %q: %w", name, err)
	}
	if err := s.client.RemoveObject(ctx, s.cfg.Bucket, name, minio.RemoveObjectOptions{}); err != nil {
		return false, fmt.Errorf("s3: delete %q: %w", name, err)
	}
	return true, nil
}

// PublicURL returns a time-bounded presigned URL when signing succeeds, else
// a best-effort static bucket URL.
func (s *Store) PublicURL(ctx context.Context, name string) string {
	if s.cfg.BaseURL != "" {
		return fmt.Sprintf("%s/documents/%s", strings.TrimRight(s.cfg.BaseURL, "/"), url.PathEscape(name))
	}
	signed, err := s.client.PresignedGetObject(ctx, s.cfg.Bucket, name, presignExpiry, url.Values{})
	if err != nil {
		s.logger.Debug("s3.presign.error", "name", name, "error", err)
		return fmt.Sprintf("https://%s.s3.%s.amazonaws.com/%s", s.cfg.Bucket, s.regionOrDefault(), url.PathEscape(name))
	}
	return signed.String()
}

func (s *Store) regionOrDefault() string {
	if s.cfg.Region != "" {
		return s.cfg.Region
	}
	return "us-east-1"
}

func isNotFound(err error) bool {
	errResp := minio.ErrorResponse{}
	if errors.As(err, &errResp) {
		return errResp.StatusCode == http.StatusNotFound
	}
	return false
}
