package docd

import (
	"context"
	"fmt"

	"pkt.systems/docd/internal/storage"
	"pkt.systems/docd/internal/storage/local"
	"pkt.systems/docd/internal/storage/s3"
	"pkt.systems/docd/internal/storage/volume"
	"pkt.systems/pslog"
)

// fallbackChain returns the backend types to try, starting at the
// preferred one and degrading toward the local directory.
func fallbackChain(preferred string) []string {
	switch preferred {
	case storage.TypeS3:
		return []string{storage.TypeS3, storage.TypeVolume, storage.TypeLocal}
	case storage.TypeVolume:
		return []string{storage.TypeVolume, storage.TypeLocal}
	default:
		return []string{storage.TypeLocal}
	}
}

// openBackend initializes the first reachable backend in the fallback
// chain. A skipped backend is logged and never retried; the chain is
// walked once at startup.
func openBackend(ctx context.Context, cfg Config, logger pslog.Logger) (storage.Backend, error) {
	var lastErr error
	for _, kind := range fallbackChain(cfg.Storage) {
		backend, err := openOne(ctx, kind, cfg, logger)
		if err != nil {
			logger.Warn("storage.backend.unavailable", "type", kind, "error", err)
			lastErr = err
			continue
		}
		if backend.Type() != cfg.Storage {
			logger.Warn("storage.backend.fallback", "preferred", cfg.Storage, "selected", backend.Type())
		}
		return backend, nil
	}
	return nil, fmt.Errorf("docd: no storage backend available: %w", lastErr)
}

func openOne(ctx context.Context, kind string, cfg Config, logger pslog.Logger) (storage.Backend, error) {
	switch kind {
	case storage.TypeS3:
		return s3.New(ctx, s3.Config{
			Endpoint:        cfg.S3Endpoint,
			Region:          cfg.S3Region,
			Bucket:          cfg.S3Bucket,
			AccessKeyID:     cfg.S3AccessKeyID,
			SecretAccessKey: cfg.S3SecretAccessKey,
			SessionToken:    cfg.S3SessionToken,
			Insecure:        cfg.S3Insecure,
			BaseURL:         cfg.BaseURL,
			Logger:          logger,
		})
	case storage.TypeVolume:
		return volume.New(volume.Config{
			Root:    cfg.VolumePath,
			BaseURL: cfg.BaseURL,
			Logger:  logger,
		})
	case storage.TypeLocal:
		return local.New(local.Config{
			Dir:     cfg.DocumentsDir,
			BaseURL: cfg.BaseURL,
			Logger:  logger,
		})
	default:
		return nil, fmt.Errorf("docd: unknown backend type %q", kind)
	}
}
