package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"pkt.systems/docd"
	"pkt.systems/pslog"
)

func submain(ctx context.Context) int {
	baseLogger := pslog.LoggerFromEnv(
		pslog.WithEnvPrefix("DOCD_LOG_"),
		pslog.WithEnvOptions(pslog.Options{Mode: pslog.ModeStructured, MinLevel: pslog.InfoLevel}),
		pslog.WithEnvWriter(os.Stderr),
	).With("app", "docd")
	cmd := newRootCommand(baseLogger)
	ctx = withSignalCancel(ctx)
	if err := cmd.ExecuteContext(ctx); err != nil {
		if err != context.Canceled {
			baseLogger.Error("command failed", "error", err)
		}
		return 1
	}
	return 0
}

func newRootCommand(baseLogger pslog.Logger) *cobra.Command {
	var cfg docd.Config

	cmd := &cobra.Command{
		Use:           "docd",
		Short:         "docd serves Word document tooling over JSON-RPC with S3, volume, or local-directory storage",
		SilenceErrors: true,
		Example: `
  # Object store backend (falls back to volume, then local, if unreachable)
  DOCD_STORAGE=s3 DOCD_S3_BUCKET=docs DOCD_S3_ACCESS_KEY_ID=... DOCD_S3_SECRET_ACCESS_KEY=... docd

  # Mounted volume backend
  docd --storage volume --volume-path /mnt/data/documents

  # Local directory (dev)
  docd --storage local --documents-dir ./documents --log-level debug
`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cmd.SilenceUsage = true
			ctx := cmd.Context()
			logger := baseLogger

			bindConfig(&cfg)
			if level, ok := pslog.ParseLevel(cfg.LogLevel); ok {
				logger = logger.LogLevel(level)
			}
			logger.Info("welcome to docd", "pid", os.Getpid())

			server, err := docd.NewServer(cfg, docd.WithLogger(logger))
			if err != nil {
				return err
			}
			defer func() {
				shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
				defer cancel()
				_ = server.Shutdown(shutdownCtx)
			}()

			go func() {
				<-ctx.Done()
				shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
				defer cancel()
				if err := server.Shutdown(shutdownCtx); err != nil {
					logger.Error("shutdown failed", "error", err)
				}
			}()

			if err := server.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return err
			}
			return nil
		},
	}

	flags := cmd.Flags()
	flags.String("listen", docd.DefaultListen, "HTTP listen address")
	flags.String("metrics-listen", docd.DefaultMetricsListen, "metrics listen address (Prometheus scrape endpoint; empty disables)")
	flags.String("base-url", docd.DefaultBaseURL, "externally visible base URL used in download links")
	flags.String("storage", docd.DefaultStorage, "preferred storage backend (s3, volume, local); unavailable backends fall back toward local")
	flags.String("s3-bucket", "", "S3 bucket name")
	flags.String("s3-region", docd.DefaultS3Region, "S3 region")
	flags.String("s3-endpoint", "", "S3 endpoint host[:port] for S3-compatible services (empty targets AWS)")
	flags.String("s3-access-key-id", "", "S3 access key id")
	flags.String("s3-secret-access-key", "", "S3 secret access key")
	flags.String("s3-session-token", "", "S3 session token (temporary credentials)")
	flags.Bool("s3-insecure", false, "use plain HTTP toward the S3 endpoint")
	flags.String("volume-path", docd.DefaultVolumePath, "mounted volume root for the volume backend")
	flags.String("documents-dir", docd.DefaultDocumentsDir, "local directory root for the local backend")
	flags.Duration("request-timeout", docd.DefaultRequestTimeout, "per-request deadline")
	flags.String("log-level", "info", "log level (trace, debug, info, warn, error)")

	viper.SetEnvPrefix("DOCD")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv()
	if err := viper.BindPFlags(flags); err != nil {
		panic(fmt.Sprintf("bind flags: %v", err))
	}

	cmd.AddCommand(newVersionCommand())
	return cmd
}

func bindConfig(cfg *docd.Config) {
	cfg.Listen = viper.GetString("listen")
	cfg.MetricsListen = viper.GetString("metrics-listen")
	cfg.BaseURL = viper.GetString("base-url")
	cfg.Storage = viper.GetString("storage")
	cfg.S3Bucket = viper.GetString("s3-bucket")
	cfg.S3Region = viper.GetString("s3-region")
	cfg.S3Endpoint = viper.GetString("s3-endpoint")
	cfg.S3AccessKeyID = viper.GetString("s3-access-key-id")
	cfg.S3SecretAccessKey = viper.GetString("s3-secret-access-key")
	cfg.S3SessionToken = viper.GetString("s3-session-token")
	cfg.S3Insecure = viper.GetBool("s3-insecure")
	cfg.VolumePath = viper.GetString("volume-path")
	cfg.DocumentsDir = viper.GetString("documents-dir")
	cfg.RequestTimeout = viper.GetDuration("request-timeout")
	cfg.LogLevel = strings.TrimSpace(viper.GetString("log-level"))
}

func withSignalCancel(ctx context.Context) context.Context {
	ctx, cancel := context.WithCancel(ctx)
	signals := make(chan os.Signal, 1)
	signal.Notify(signals, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		select {
		case <-signals:
			cancel()
		case <-ctx.Done():
		}
		signal.Stop(signals)
	}()
	return ctx
}
