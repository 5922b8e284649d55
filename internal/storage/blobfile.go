package storage

import (
	"context"
	"io"
	"log/slog"
	"time"
)

// discardTimeout bounds the background delete issued by Discard.
const discardTimeout = 10 * time.Second

// BlobFile is a staged upload whose bytes live in a BlobStore. It satisfies
// staging.File and staging.Discarder.
type BlobFile struct {
	store       BlobStore
	key         string
	name        string
	size        int64
	contentType string
	logger      *slog.Logger
}

// NewBlobFile wraps an already stored blob.
func NewBlobFile(store BlobStore, key, name string, size int64, contentType string, logger *slog.Logger) *BlobFile {
	if logger == nil {
		logger = slog.Default()
	}
	return &BlobFile{store: store, key: key, name: name, size: size, contentType: contentType, logger: logger}
}

func (f *BlobFile) Name() string        { return f.name }
func (f *BlobFile) Size() int64         { return f.size }
func (f *BlobFile) Key() string         { return f.key }
func (f *BlobFile) ContentType() string { return f.contentType }

// Open streams the blob back.
func (f *BlobFile) Open(ctx context.Context) (io.ReadCloser, error) {
	return f.store.Get(ctx, f.key)
}

// Discard deletes the blob. Failures are logged; a leaked blob is harmless.
func (f *BlobFile) Discard() {
	ctx, cancel := context.WithTimeout(context.Background(), discardTimeout)
	defer cancel()
	if err := f.store.Delete(ctx, f.key); err != nil {
		f.logger.Warn("discard staged blob",
			slog.String("key", f.key),
			slog.String("error", err.Error()))
	}
}
