package usecase

import (
	"context"
	"crypto/rand"
	"fmt"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/intradocs/intradocs/internal/core/domain"
	"github.com/intradocs/intradocs/internal/core/ports"
)

// MaxUploadBytes is the inclusive upload size limit.
const MaxUploadBytes = 50 << 20

const storedNameRandomLen = 10

var allowedExtensions = map[string]struct{}{
	"pdf": {}, "doc": {}, "docx": {}, "xls": {}, "xlsx": {},
	"ppt": {}, "pptx": {}, "jpg": {}, "jpeg": {}, "png": {},
	"gif": {}, "txt": {}, "zip": {}, "rar": {},
}

// UploadAdapter validates incoming files and writes them to blob storage under
// a fixed prefix, with a collision-resistant stored name.
type UploadAdapter struct {
	storage ports.BlobStorage
	prefix  string

	now      func() time.Time
	randName func(n int) string
}

func NewUploadAdapter(storage ports.BlobStorage, prefix string) *UploadAdapter {
	if prefix == "" {
		prefix = "documents"
	}
	return &UploadAdapter{
		storage:  storage,
		prefix:   prefix,
		now:      time.Now,
		randName: randomName,
	}
}

// Store validates the upload and writes it. Validation runs before any I/O:
// a rejected file never reaches the storage backend.
func (a *UploadAdapter) Store(ctx context.Context, up ports.FileUpload) (*domain.FileMetadata, error) {
	if up.Body == nil {
		return nil, domain.WrapError(domain.ErrUploadFailed, "store upload", fmt.Errorf("missing file body"))
	}

	ext := extensionOf(up.Filename)
	if _, ok := allowedExtensions[ext]; !ok {
		return nil, domain.WrapError(domain.ErrUnsupportedFileType, "store upload", fmt.Errorf("extension %q", ext))
	}
	if up.Size > MaxUploadBytes {
		return nil, domain.WrapError(domain.ErrFileTooLarge, "store upload", fmt.Errorf("%d bytes exceeds limit of %d", up.Size, MaxUploadBytes))
	}

	storedName := fmt.Sprintf("%d_%s.%s", a.now().Unix(), a.randName(storedNameRandomLen), ext)
	key := path.Join(a.prefix, storedName)

	if err := a.storage.Save(ctx, key, up.Body); err != nil {
		return nil, domain.WrapError(domain.ErrUploadFailed, "store upload", err)
	}

	return &domain.FileMetadata{
		StoredName:   storedName,
		OriginalName: up.Filename,
		Path:         key,
		MimeType:     up.MimeType,
		SizeBytes:    up.Size,
		Extension:    ext,
	}, nil
}

// Remove deletes a stored file. It is idempotent: removing an absent file
// reports false without an error.
func (a *UploadAdapter) Remove(ctx context.Context, key string) (bool, error) {
	exists, err := a.storage.Exists(ctx, key)
	if err != nil {
		return false, fmt.Errorf("check stored file: %w", err)
	}
	if !exists {
		return false, nil
	}
	return a.storage.Delete(ctx, key)
}

// URL resolves a download URL for a stored file. Best effort: on failure the
// caller falls back to the static path.
func (a *UploadAdapter) URL(ctx context.Context, key string) (string, error) {
	return a.storage.URL(ctx, key)
}

func extensionOf(filename string) string {
	ext := strings.TrimPrefix(filepath.Ext(filename), ".")
	return strings.ToLower(ext)
}

const randomNameAlphabet = "abcdefghijklmnopqrstuvwxyz0123456789"

func randomName(n int) string {
	buf := make([]byte, n)
	if _, err := rand.Read(buf); err != nil {
		panic(fmt.Sprintf("read random bytes: %v", err))
	}
	for i, b := range buf {
		buf[i] = randomNameAlphabet[int(b)%len(randomNameAlphabet)]
	}
	return string(buf)
}
