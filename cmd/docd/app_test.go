package main

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/spf13/viper"

	"pkt.systems/docd"
	"pkt.systems/pslog"
)

func TestBindConfig(t *testing.T) {
	viper.Reset()
	t.Cleanup(viper.Reset)
	newRootCommand(pslog.NoopLogger())

	viper.Set("listen", ":9999")
	viper.Set("storage", "s3")
	viper.Set("s3-bucket", "docs")
	viper.Set("request-timeout", "90s")

	var cfg docd.Config
	bindConfig(&cfg)
	if cfg.Listen != ":9999" {
		t.Errorf("Listen = %q", cfg.Listen)
	}
	if cfg.Storage != "s3" || cfg.S3Bucket != "docs" {
		t.Errorf("storage binding: %q / %q", cfg.Storage, cfg.S3Bucket)
	}
	if cfg.RequestTimeout != 90*time.Second {
		t.Errorf("RequestTimeout = %v", cfg.RequestTimeout)
	}
}

func TestBindConfigDefaults(t *testing.T) {
	viper.Reset()
	t.Cleanup(viper.Reset)
	newRootCommand(pslog.NoopLogger())

	var cfg docd.Config
	bindConfig(&cfg)
	if cfg.Listen != docd.DefaultListen {
		t.Errorf("Listen = %q, want %q", cfg.Listen, docd.DefaultListen)
	}
	if cfg.Storage != docd.DefaultStorage {
		t.Errorf("Storage = %q, want %q", cfg.Storage, docd.DefaultStorage)
	}
	if cfg.VolumePath != docd.DefaultVolumePath {
		t.Errorf("VolumePath = %q, want %q", cfg.VolumePath, docd.DefaultVolumePath)
	}
}

func TestVersionCommand(t *testing.T) {
	cmd := newVersionCommand()
	var out bytes.Buffer
	cmd.SetOut(&out)
	if err := cmd.RunE(cmd, nil); err != nil {
		t.Fatalf("version: %v", err)
	}
	if !strings.Contains(out.String(), "pkt.systems/docd") {
		t.Fatalf("output = %q", out.String())
	}
}
