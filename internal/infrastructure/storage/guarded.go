package storage

import (
	"context"
	"io"

	"github.com/intradocs/intradocs/internal/core/ports"
	"github.com/intradocs/intradocs/internal/infrastructure/resilience"
)

// Guarded decorates a blob-storage backend with the retry/breaker guard. One
// named operation per port method keeps breaker state per call type.
type Guarded struct {
	inner ports.BlobStorage
	guard *resilience.Guard
}

func NewGuarded(inner ports.BlobStorage, guard *resilience.Guard) *Guarded {
	return &Guarded{inner: inner, guard: guard}
}

func (g *Guarded) Save(ctx context.Context, key string, data io.Reader) error {
	// No retry on Save: the reader is consumed on the first attempt. The
	// breaker still observes failures.
	return g.guard.DoOnce(ctx, "blob.save", func(ctx context.Context) error {
		return g.inner.Save(ctx, key, data)
	})
}

func (g *Guarded) Open(ctx context.Context, key string) (io.ReadCloser, error) {
	var rc io.ReadCloser
	err := g.guard.Do(ctx, "blob.open", func(ctx context.Context) error {
		var err error
		rc, err = g.inner.Open(ctx, key)
		return err
	})
	return rc, err
}

func (g *Guarded) Exists(ctx context.Context, key string) (bool, error) {
	var ok bool
	err := g.guard.Do(ctx, "blob.exists", func(ctx context.Context) error {
		var err error
		ok, err = g.inner.Exists(ctx, key)
		return err
	})
	return ok, err
}

func (g *Guarded) Delete(ctx context.Context, key string) (bool, error) {
	var removed bool
	err := g.guard.Do(ctx, "blob.delete", func(ctx context.Context) error {
		var err error
		removed, err = g.inner.Delete(ctx, key)
		return err
	})
	return removed, err
}

func (g *Guarded) Size(ctx context.Context, key string) (int64, error) {
	var size int64
	err := g.guard.Do(ctx, "blob.size", func(ctx context.Context) error {
		var err error
		size, err = g.inner.Size(ctx, key)
		return err
	})
	return size, err
}

func (g *Guarded) URL(ctx context.Context, key string) (string, error) {
	var url string
	err := g.guard.Do(ctx, "blob.url", func(ctx context.Context) error {
		var err error
		url, err = g.inner.URL(ctx, key)
		return err
	})
	return url, err
}
