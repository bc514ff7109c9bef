package transferkit

import (
	"context"
	"errors"
	"io"
)

// ErrReadOnly is returned when a write operation is attempted on a read-only filesystem.
var ErrReadOnly = errors.New("filesystem is read-only")

// ReadOnlyFileSystem wraps a FileSystem to prevent all write operations.
// The transfer manager wraps its source client in this decorator so that a
// transfer can never mutate the side it reads from.
//
// Example:
//
//	fs, _ := netshare.New(`\\server\share`)
//	readOnly := transferkit.NewReadOnlyFileSystem(fs)
//
//	// Read operations work normally
//	reader, _ := readOnly.Read(ctx, "file.txt")
//
//	// Write operations return ErrReadOnly
//	err := readOnly.Write(ctx, "file.txt", reader)
//	// err wraps ErrReadOnly
type ReadOnlyFileSystem struct {
	fs FileSystem
}

// NewReadOnlyFileSystem wraps a filesystem in a read-only view.
func NewReadOnlyFileSystem(fs FileSystem) *ReadOnlyFileSystem {
	return &ReadOnlyFileSystem{fs: fs}
}

// Unwrap returns the underlying filesystem.
func (r *ReadOnlyFileSystem) Unwrap() FileSystem {
	return r.fs
}

func (r *ReadOnlyFileSystem) Read(ctx context.Context, path string) (io.ReadCloser, error) {
	return r.fs.Read(ctx, path)
}

func (r *ReadOnlyFileSystem) ReadAll(ctx context.Context, path string) ([]byte, error) {
	return r.fs.ReadAll(ctx, path)
}

func (r *ReadOnlyFileSystem) FileExists(ctx context.Context, path string) (bool, error) {
	return r.fs.FileExists(ctx, path)
}

func (r *ReadOnlyFileSystem) DirExists(ctx context.Context, path string) (bool, error) {
	return r.fs.DirExists(ctx, path)
}

func (r *ReadOnlyFileSystem) Stat(ctx context.Context, path string) (*FileInfo, error) {
	return r.fs.Stat(ctx, path)
}

func (r *ReadOnlyFileSystem) ListContents(ctx context.Context, path string, recursive bool) ([]FileInfo, error) {
	return r.fs.ListContents(ctx, path, recursive)
}

func (r *ReadOnlyFileSystem) Write(ctx context.Context, path string, reader io.Reader, opts ...Option) error {
	return &PathError{Op: "write", Path: path, Err: ErrReadOnly}
}

func (r *ReadOnlyFileSystem) Delete(ctx context.Context, path string) error {
	return &PathError{Op: "delete", Path: path, Err: ErrReadOnly}
}

func (r *ReadOnlyFileSystem) CreateDir(ctx context.Context, path string) error {
	return &PathError{Op: "createdir", Path: path, Err: ErrReadOnly}
}

func (r *ReadOnlyFileSystem) DeleteDir(ctx context.Context, path string) error {
	return &PathError{Op: "deletedir", Path: path, Err: ErrReadOnly}
}

// Checksum passes through to the underlying filesystem when supported.
func (r *ReadOnlyFileSystem) Checksum(ctx context.Context, path string, algorithm ChecksumAlgorithm) (string, error) {
	if cs, ok := r.fs.(CanChecksum); ok {
		return cs.Checksum(ctx, path, algorithm)
	}
	return "", &PathError{Op: "checksum", Path: path, Err: ErrNotSupported}
}

// Checksums passes through to the underlying filesystem when supported.
func (r *ReadOnlyFileSystem) Checksums(ctx context.Context, path string, algorithms []ChecksumAlgorithm) (map[ChecksumAlgorithm]string, error) {
	if cs, ok := r.fs.(CanChecksum); ok {
		return cs.Checksums(ctx, path, algorithms)
	}
	return nil, &PathError{Op: "checksums", Path: path, Err: ErrNotSupported}
}

// Ensure ReadOnlyFileSystem implements FileSystem
var _ FileSystem = (*ReadOnlyFileSystem)(nil)
