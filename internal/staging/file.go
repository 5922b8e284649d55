package staging

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// File is a handle on a locally selected file. The buffer never reads it
// itself; the preview pool and the gateway do.
type File interface {
	Name() string
	Size() int64
	Open(ctx context.Context) (io.ReadCloser, error)
}

// Discarder is implemented by files that hold resources (temporary blobs)
// which must be freed once the file leaves the buffer.
type Discarder interface {
	Discard()
}

// LocalFile is a file on the local disk.
type LocalFile struct {
	path string
	size int64
}

// OpenLocal stats path and returns a handle on it.
func OpenLocal(path string) (*LocalFile, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("stat %s: %w", path, err)
	}
	if info.IsDir() {
		return nil, fmt.Errorf("%s is a directory", path)
	}
	return &LocalFile{path: path, size: info.Size()}, nil
}

// Name returns the base name of the file.
func (f *LocalFile) Name() string { return filepath.Base(f.path) }

// Size returns the size observed when the handle was created.
func (f *LocalFile) Size() int64 { return f.size }

// Path returns the full path.
func (f *LocalFile) Path() string { return f.path }

// Open opens the file for reading.
func (f *LocalFile) Open(context.Context) (io.ReadCloser, error) {
	return os.Open(f.path)
}
