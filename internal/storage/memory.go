// Package storage holds the web front end's ephemeral state: visitor sessions
// and the blobs behind staged uploads. Nothing here outlives the process
// except what an S3 blob store keeps.
package storage

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
)

var (
	// ErrNotFound is returned for unknown blob keys.
	ErrNotFound = errors.New("blob not found")
)

// BlobStore keeps staged upload bytes until the form is submitted or the
// entry is removed.
type BlobStore interface {
	Put(ctx context.Context, key string, r io.Reader, size int64, contentType string) error
	Get(ctx context.Context, key string) (io.ReadCloser, error)
	Delete(ctx context.Context, key string) error
}

type memoryBlob struct {
	data        []byte
	contentType string
}

// MemoryBlobs is a BlobStore backed by a map. RWMutex lets concurrent preview
// workers read while uploads write.
type MemoryBlobs struct {
	mu    sync.RWMutex
	blobs map[string]memoryBlob
}

// NewMemoryBlobs constructs an empty MemoryBlobs.
func NewMemoryBlobs() *MemoryBlobs {
	return &MemoryBlobs{blobs: make(map[string]memoryBlob)}
}

// Put reads r fully and stores it under key, replacing any previous blob.
func (m *MemoryBlobs) Put(_ context.Context, key string, r io.Reader, size int64, contentType string) error {
	var buf bytes.Buffer
	if size > 0 {
		buf.Grow(int(size))
	}
	if _, err := io.Copy(&buf, r); err != nil {
		return fmt.Errorf("read blob %s: %w", key, err)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.blobs[key] = memoryBlob{data: buf.Bytes(), contentType: contentType}
	return nil
}

// Get returns a reader over the blob. The bytes are never mutated after Put so
// readers need no copy.
func (m *MemoryBlobs) Get(_ context.Context, key string) (io.ReadCloser, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	b, ok := m.blobs[key]
	if !ok {
		return nil, ErrNotFound
	}
	return io.NopCloser(bytes.NewReader(b.data)), nil
}

// Delete removes the blob. Deleting an unknown key is not an error.
func (m *MemoryBlobs) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.blobs, key)
	return nil
}

// Len returns the number of stored blobs.
func (m *MemoryBlobs) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.blobs)
}
