package docd

import (
	"strings"
	"testing"
	"time"
)

func TestValidateDefaults(t *testing.T) {
	var cfg Config
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Validate: %v", err)
	}
	if cfg.Listen != DefaultListen {
		t.Errorf("Listen = %q, want %q", cfg.Listen, DefaultListen)
	}
	if cfg.Storage != DefaultStorage {
		t.Errorf("Storage = %q, want %q", cfg.Storage, DefaultStorage)
	}
	if cfg.VolumePath != DefaultVolumePath {
		t.Errorf("VolumePath = %q, want %q", cfg.VolumePath, DefaultVolumePath)
	}
	if cfg.DocumentsDir != DefaultDocumentsDir {
		t.Errorf("DocumentsDir = %q, want %q", cfg.DocumentsDir, DefaultDocumentsDir)
	}
	if cfg.RequestTimeout != DefaultRequestTimeout {
		t.Errorf("RequestTimeout = %v, want %v", cfg.RequestTimeout, DefaultRequestTimeout)
	}
	if cfg.LogLevel != "info" {
		t.Errorf("LogLevel = %q, want info", cfg.LogLevel)
	}
}

func TestValidateNormalizes(t *testing.T) {
	cfg := Config{
		Storage:        " S3 ",
		S3Bucket:       "docs",
		BaseURL:        "http://example.com/",
		RequestTimeout: -time.Second,
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Validate: %v", err)
	}
	if cfg.Storage != "s3" {
		t.Errorf("Storage = %q, want s3", cfg.Storage)
	}
	if cfg.BaseURL != "http://example.com" {
		t.Errorf("BaseURL = %q, trailing slash not stripped", cfg.BaseURL)
	}
	if cfg.RequestTimeout != DefaultRequestTimeout {
		t.Errorf("RequestTimeout = %v, negative not defaulted", cfg.RequestTimeout)
	}
	if cfg.S3Region != DefaultS3Region {
		t.Errorf("S3Region = %q, want default", cfg.S3Region)
	}
}

func TestValidateRejectsUnknownStorage(t *testing.T) {
	cfg := Config{Storage: "ftp"}
	err := cfg.Validate()
	if err == nil || !strings.Contains(err.Error(), "ftp") {
		t.Fatalf("err = %v, want unknown-storage error naming ftp", err)
	}
}

func TestValidateS3RequiresBucket(t *testing.T) {
	cfg := Config{Storage: "s3"}
	if err := cfg.Validate(); err == nil {
		t.Fatal("s3 without bucket accepted")
	}
}
