// Package storage selects and decorates the blob-storage backend.
package storage

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/intradocs/intradocs/internal/core/ports"
	"github.com/intradocs/intradocs/internal/infrastructure/resilience"
	"github.com/intradocs/intradocs/internal/infrastructure/storage/localfs"
	"github.com/intradocs/intradocs/internal/infrastructure/storage/s3blob"
)

type Options struct {
	Backend      string // "local" or "s3"
	LocalPath    string
	LocalBaseURL string
	S3           s3blob.Config
	Guard        resilience.Config
}

// New builds the configured backend wrapped in the retry/breaker guard.
func New(ctx context.Context, opts Options, log *slog.Logger) (ports.BlobStorage, error) {
	var backend ports.BlobStorage
	switch opts.Backend {
	case "", "local":
		fs, err := localfs.New(opts.LocalPath, opts.LocalBaseURL)
		if err != nil {
			return nil, fmt.Errorf("init local storage: %w", err)
		}
		backend = fs
	case "s3":
		s3store, err := s3blob.New(ctx, opts.S3)
		if err != nil {
			return nil, fmt.Errorf("init s3 storage: %w", err)
		}
		backend = s3store
	default:
		return nil, fmt.Errorf("unknown storage backend %q", opts.Backend)
	}

	guard := resilience.NewGuard(opts.Guard, retryableStorageError, log)
	return NewGuarded(backend, guard), nil
}

func retryableStorageError(err error) bool {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	return true
}
