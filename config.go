package docd

import (
	"fmt"
	"strings"
	"time"

	"pkt.systems/docd/internal/storage"
)

const (
	// DefaultListen is the TCP endpoint the HTTP server binds to.
	DefaultListen = ":8000"
	// DefaultMetricsListen is the Prometheus scrape endpoint. Empty disables
	// the metrics listener.
	DefaultMetricsListen = ""
	// DefaultStorage is the preferred backend when none is configured.
	DefaultStorage = storage.TypeVolume
	// DefaultVolumePath is where the mounted-volume backend keeps documents.
	DefaultVolumePath = "/mnt/data/documents"
	// DefaultDocumentsDir is the local-directory backend root, the terminal
	// member of the fallback chain.
	DefaultDocumentsDir = "./documents"
	// DefaultBaseURL is the externally visible URL used in download links.
	DefaultBaseURL = "http://localhost:8000"
	// DefaultRequestTimeout bounds one HTTP request end to end.
	DefaultRequestTimeout = 60 * time.Second
	// DefaultS3Region is used when no region is configured.
	DefaultS3Region = "us-east-1"
)

// Config carries every server setting. Zero values fall back to the
// Default* constants during Validate.
type Config struct {
	// Listen is the HTTP bind address.
	Listen string
	// MetricsListen is the Prometheus bind address; empty disables it.
	MetricsListen string
	// BaseURL is the externally visible service URL.
	BaseURL string

	// Storage selects the preferred backend: s3, volume, or local. The
	// fallback chain continues from the selected backend toward local.
	Storage string
	// S3 backend settings.
	S3Bucket          string
	S3Region          string
	S3Endpoint        string
	S3AccessKeyID     string
	S3SecretAccessKey string
	S3SessionToken    string
	S3Insecure        bool
	// VolumePath is the mounted-volume backend root.
	VolumePath string
	// DocumentsDir is the local-directory backend root.
	DocumentsDir string

	// RequestTimeout bounds each HTTP request.
	RequestTimeout time.Duration

	// LogLevel is a pslog level name (trace, debug, info, warn, error).
	LogLevel string
}

// Validate normalizes cfg in place and reports configuration errors that
// cannot be corrected by defaulting.
func (c *Config) Validate() error {
	if c.Listen == "" {
		c.Listen = DefaultListen
	}
	if c.BaseURL == "" {
		c.BaseURL = DefaultBaseURL
	}
	c.BaseURL = strings.TrimRight(c.BaseURL, "/")
	if c.Storage == "" {
		c.Storage = DefaultStorage
	}
	c.Storage = strings.ToLower(strings.TrimSpace(c.Storage))
	switch c.Storage {
	case storage.TypeS3, storage.TypeVolume, storage.TypeLocal:
	default:
		return fmt.Errorf("config: unknown storage type %q (expected %s, %s, or %s)",
			c.Storage, storage.TypeS3, storage.TypeVolume, storage.TypeLocal)
	}
	if c.Storage == storage.TypeS3 && c.S3Bucket == "" {
		return fmt.Errorf("config: storage %q requires a bucket", storage.TypeS3)
	}
	if c.S3Region == "" {
		c.S3Region = DefaultS3Region
	}
	if c.VolumePath == "" {
		c.VolumePath = DefaultVolumePath
	}
	if c.DocumentsDir == "" {
		c.DocumentsDir = DefaultDocumentsDir
	}
	if c.RequestTimeout <= 0 {
		c.RequestTimeout = DefaultRequestTimeout
	}
	if c.LogLevel == "" {
		c.LogLevel = "info"
	}
	return nil
}
