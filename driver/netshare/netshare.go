// Package netshare provides a transferkit.FileSystem over a Windows network
// share. The base path can be a UNC path (\\server\share), a mapped drive
// (Z:\) or any mounted directory, which also makes the driver usable for
// plain local directories.
package netshare

import (
	"context"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/gobeaver/transferkit"
)

// Adapter provides a network share implementation of transferkit.FileSystem
type Adapter struct {
	root string
}

// New creates a new network share adapter rooted at base. Unlike a local
// scratch directory, a share that is not mounted is a configuration problem,
// so the base path must already exist.
func New(base string) (*Adapter, error) {
	absRoot, err := filepath.Abs(base)
	if err != nil {
		return nil, err
	}

	info, err := os.Stat(absRoot)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("base path %s does not exist or is not accessible", base)
		}
		return nil, err
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("base path %s is not a directory", base)
	}

	return &Adapter{
		root: absRoot,
	}, nil
}

// fullPath resolves an adapter-relative path against the root, accepting
// both slash and backslash separators.
func (a *Adapter) fullPath(path string) string {
	path = strings.ReplaceAll(path, `\`, "/")
	return filepath.Join(a.root, filepath.Clean(filepath.FromSlash(path)))
}

// Write implements transferkit.FileWriter
func (a *Adapter) Write(ctx context.Context, path string, content io.Reader, options ...transferkit.Option) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	fullPath := a.fullPath(path)

	if !isPathUnderRoot(a.root, fullPath) {
		return &transferkit.PathError{
			Op:   "write",
			Path: path,
			Err:  transferkit.ErrNotAllowed,
		}
	}

	opts := transferkit.ProcessOptions(options...)
	if !opts.Overwrite {
		if _, err := os.Stat(fullPath); err == nil {
			return &transferkit.PathError{
				Op:   "write",
				Path: path,
				Err:  transferkit.ErrExist,
			}
		}
	}

	// Ensure the parent directory exists
	if err := os.MkdirAll(filepath.Dir(fullPath), 0755); err != nil {
		return &transferkit.PathError{
			Op:   "write",
			Path: path,
			Err:  err,
		}
	}

	f, err := os.Create(fullPath)
	if err != nil {
		return &transferkit.PathError{
			Op:   "write",
			Path: path,
			Err:  err,
		}
	}
	defer f.Close()

	if _, err := io.Copy(f, content); err != nil {
		return &transferkit.PathError{
			Op:   "write",
			Path: path,
			Err:  err,
		}
	}

	return nil
}

// Read implements transferkit.FileReader
func (a *Adapter) Read(ctx context.Context, path string) (io.ReadCloser, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}

	fullPath := a.fullPath(path)

	if !isPathUnderRoot(a.root, fullPath) {
		return nil, &transferkit.PathError{
			Op:   "read",
			Path: path,
			Err:  transferkit.ErrNotAllowed,
		}
	}

	f, err := os.Open(fullPath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, &transferkit.PathError{
				Op:   "read",
				Path: path,
				Err:  transferkit.ErrNotExist,
			}
		}
		return nil, &transferkit.PathError{
			Op:   "read",
			Path: path,
			Err:  err,
		}
	}

	return f, nil
}

// ReadAll implements transferkit.FileReader
func (a *Adapter) ReadAll(ctx context.Context, path string) ([]byte, error) {
	rc, err := a.Read(ctx, path)
	if err != nil {
		return nil, err
	}
	defer rc.Close()

	return io.ReadAll(rc)
}

// Delete implements transferkit.FileWriter
func (a *Adapter) Delete(ctx context.Context, path string) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	fullPath := a.fullPath(path)

	if !isPathUnderRoot(a.root, fullPath) {
		return &transferkit.PathError{
			Op:   "delete",
			Path: path,
			Err:  transferkit.ErrNotAllowed,
		}
	}

	if err := os.Remove(fullPath); err != nil {
		if os.IsNotExist(err) {
			return &transferkit.PathError{
				Op:   "delete",
				Path: path,
				Err:  transferkit.ErrNotExist,
			}
		}
		return &transferkit.PathError{
			Op:   "delete",
			Path: path,
			Err:  err,
		}
	}

	return nil
}

// FileExists implements transferkit.FileReader
func (a *Adapter) FileExists(ctx context.Context, path string) (bool, error) {
	select {
	case <-ctx.Done():
		return false, ctx.Err()
	default:
	}

	fullPath := a.fullPath(path)

	if !isPathUnderRoot(a.root, fullPath) {
		return false, &transferkit.PathError{
			Op:   "fileexists",
			Path: path,
			Err:  transferkit.ErrNotAllowed,
		}
	}

	info, err := os.Stat(fullPath)
	if err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, &transferkit.PathError{
			Op:   "fileexists",
			Path: path,
			Err:  err,
		}
	}

	return !info.IsDir(), nil
}

// DirExists implements transferkit.FileReader
func (a *Adapter) DirExists(ctx context.Context, path string) (bool, error) {
	select {
	case <-ctx.Done():
		return false, ctx.Err()
	default:
	}

	fullPath := a.fullPath(path)

	if !isPathUnderRoot(a.root, fullPath) {
		return false, &transferkit.PathError{
			Op:   "direxists",
			Path: path,
			Err:  transferkit.ErrNotAllowed,
		}
	}

	info, err := os.Stat(fullPath)
	if err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, &transferkit.PathError{
			Op:   "direxists",
			Path: path,
			Err:  err,
		}
	}

	return info.IsDir(), nil
}

// Stat implements transferkit.FileReader
func (a *Adapter) Stat(ctx context.Context, path string) (*transferkit.FileInfo, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}

	fullPath := a.fullPath(path)

	if !isPathUnderRoot(a.root, fullPath) {
		return nil, &transferkit.PathError{
			Op:   "stat",
			Path: path,
			Err:  transferkit.ErrNotAllowed,
		}
	}

	info, err := os.Stat(fullPath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, &transferkit.PathError{
				Op:   "stat",
				Path: path,
				Err:  transferkit.ErrNotExist,
			}
		}
		return nil, &transferkit.PathError{
			Op:   "stat",
			Path: path,
			Err:  err,
		}
	}

	contentType := ""
	if !info.IsDir() {
		contentType = getContentType(fullPath)
	}

	return &transferkit.FileInfo{
		Name:        filepath.Base(fullPath),
		Path:        path,
		Size:        info.Size(),
		ModTime:     info.ModTime(),
		IsDir:       info.IsDir(),
		ContentType: contentType,
	}, nil
}

// ListContents implements transferkit.FileReader. Paths in the result are
// relative to the adapter root, with forward slashes regardless of platform.
func (a *Adapter) ListContents(ctx context.Context, path string, recursive bool) ([]transferkit.FileInfo, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}

	fullPath := a.fullPath(path)

	if !isPathUnderRoot(a.root, fullPath) {
		return nil, &transferkit.PathError{
			Op:   "listcontents",
			Path: path,
			Err:  transferkit.ErrNotAllowed,
		}
	}

	info, err := os.Stat(fullPath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, &transferkit.PathError{
				Op:   "listcontents",
				Path: path,
				Err:  transferkit.ErrNotExist,
			}
		}
		return nil, &transferkit.PathError{
			Op:   "listcontents",
			Path: path,
			Err:  err,
		}
	}

	if !info.IsDir() {
		return nil, &transferkit.PathError{
			Op:   "listcontents",
			Path: path,
			Err:  transferkit.ErrNotDir,
		}
	}

	var files []transferkit.FileInfo

	if recursive {
		err = filepath.Walk(fullPath, func(walkPath string, info os.FileInfo, err error) error {
			if err != nil {
				return err
			}

			// Skip the listed directory itself
			if walkPath == fullPath {
				return nil
			}

			select {
			case <-ctx.Done():
				return ctx.Err()
			default:
			}

			relPath, err := filepath.Rel(a.root, walkPath)
			if err != nil {
				return err
			}

			contentType := ""
			if !info.IsDir() {
				contentType = getContentType(walkPath)
			}

			files = append(files, transferkit.FileInfo{
				Name:        info.Name(),
				Path:        filepath.ToSlash(relPath),
				Size:        info.Size(),
				ModTime:     info.ModTime(),
				IsDir:       info.IsDir(),
				ContentType: contentType,
			})

			return nil
		})
		if err != nil {
			return nil, &transferkit.PathError{
				Op:   "listcontents",
				Path: path,
				Err:  err,
			}
		}
	} else {
		entries, err := os.ReadDir(fullPath)
		if err != nil {
			return nil, &transferkit.PathError{
				Op:   "listcontents",
				Path: path,
				Err:  err,
			}
		}

		files = make([]transferkit.FileInfo, 0, len(entries))
		for _, entry := range entries {
			info, err := entry.Info()
			if err != nil {
				continue
			}

			entryFull := filepath.Join(fullPath, entry.Name())
			relPath, err := filepath.Rel(a.root, entryFull)
			if err != nil {
				continue
			}

			contentType := ""
			if !info.IsDir() {
				contentType = getContentType(entryFull)
			}

			files = append(files, transferkit.FileInfo{
				Name:        entry.Name(),
				Path:        filepath.ToSlash(relPath),
				Size:        info.Size(),
				ModTime:     info.ModTime(),
				IsDir:       info.IsDir(),
				ContentType: contentType,
			})
		}
	}

	return files, nil
}

// CreateDir implements transferkit.FileWriter
func (a *Adapter) CreateDir(ctx context.Context, path string) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	fullPath := a.fullPath(path)

	if !isPathUnderRoot(a.root, fullPath) {
		return &transferkit.PathError{
			Op:   "createdir",
			Path: path,
			Err:  transferkit.ErrNotAllowed,
		}
	}

	if err := os.MkdirAll(fullPath, 0755); err != nil {
		return &transferkit.PathError{
			Op:   "createdir",
			Path: path,
			Err:  err,
		}
	}

	return nil
}

// DeleteDir implements transferkit.FileWriter
func (a *Adapter) DeleteDir(ctx context.Context, path string) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	fullPath := a.fullPath(path)

	if !isPathUnderRoot(a.root, fullPath) {
		return &transferkit.PathError{
			Op:   "deletedir",
			Path: path,
			Err:  transferkit.ErrNotAllowed,
		}
	}

	info, err := os.Stat(fullPath)
	if err != nil {
		if os.IsNotExist(err) {
			return &transferkit.PathError{
				Op:   "deletedir",
				Path: path,
				Err:  transferkit.ErrNotExist,
			}
		}
		return &transferkit.PathError{
			Op:   "deletedir",
			Path: path,
			Err:  err,
		}
	}

	if !info.IsDir() {
		return &transferkit.PathError{
			Op:   "deletedir",
			Path: path,
			Err:  transferkit.ErrNotDir,
		}
	}

	if err := os.RemoveAll(fullPath); err != nil {
		return &transferkit.PathError{
			Op:   "deletedir",
			Path: path,
			Err:  err,
		}
	}

	return nil
}

// isPathUnderRoot checks if a path is under a given root directory
func isPathUnderRoot(root, path string) bool {
	rel, err := filepath.Rel(root, path)
	if err != nil {
		return false
	}

	return !filepath.IsAbs(rel) && rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator))
}

// getContentType tries to determine the content type of a file
func getContentType(path string) string {
	if ext := filepath.Ext(path); ext != "" {
		if contentType := mime.TypeByExtension(ext); contentType != "" {
			return contentType
		}
	}

	file, err := os.Open(path)
	if err != nil {
		return ""
	}
	defer file.Close()

	// Read a small slice of the file to detect content type
	buffer := make([]byte, 512)
	n, err := file.Read(buffer)
	if err != nil && !errors.Is(err, io.EOF) {
		return ""
	}

	return http.DetectContentType(buffer[:n])
}

// ============================================================================
// Optional Capability Interfaces
// ============================================================================

// Copy implements transferkit.CanCopy for native file copying.
func (a *Adapter) Copy(ctx context.Context, src, dst string) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	srcPath := a.fullPath(src)
	dstPath := a.fullPath(dst)

	if !isPathUnderRoot(a.root, srcPath) {
		return &transferkit.PathError{Op: "copy", Path: src, Err: transferkit.ErrNotAllowed}
	}
	if !isPathUnderRoot(a.root, dstPath) {
		return &transferkit.PathError{Op: "copy", Path: dst, Err: transferkit.ErrNotAllowed}
	}

	srcFile, err := os.Open(srcPath)
	if err != nil {
		if os.IsNotExist(err) {
			return &transferkit.PathError{Op: "copy", Path: src, Err: transferkit.ErrNotExist}
		}
		return &transferkit.PathError{Op: "copy", Path: src, Err: err}
	}
	defer srcFile.Close()

	if err := os.MkdirAll(filepath.Dir(dstPath), 0755); err != nil {
		return &transferkit.PathError{Op: "copy", Path: dst, Err: err}
	}

	dstFile, err := os.Create(dstPath)
	if err != nil {
		return &transferkit.PathError{Op: "copy", Path: dst, Err: err}
	}
	defer dstFile.Close()

	if _, err := io.Copy(dstFile, srcFile); err != nil {
		return &transferkit.PathError{Op: "copy", Path: dst, Err: err}
	}

	// Preserve file permissions
	if srcInfo, err := os.Stat(srcPath); err == nil {
		os.Chmod(dstPath, srcInfo.Mode())
	}

	return nil
}

// Move implements transferkit.CanMove for native file moving/renaming.
func (a *Adapter) Move(ctx context.Context, src, dst string) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	srcPath := a.fullPath(src)
	dstPath := a.fullPath(dst)

	if !isPathUnderRoot(a.root, srcPath) {
		return &transferkit.PathError{Op: "move", Path: src, Err: transferkit.ErrNotAllowed}
	}
	if !isPathUnderRoot(a.root, dstPath) {
		return &transferkit.PathError{Op: "move", Path: dst, Err: transferkit.ErrNotAllowed}
	}

	if _, err := os.Stat(srcPath); err != nil {
		if os.IsNotExist(err) {
			return &transferkit.PathError{Op: "move", Path: src, Err: transferkit.ErrNotExist}
		}
		return &transferkit.PathError{Op: "move", Path: src, Err: err}
	}

	if err := os.MkdirAll(filepath.Dir(dstPath), 0755); err != nil {
		return &transferkit.PathError{Op: "move", Path: dst, Err: err}
	}

	// Try rename first (works if same filesystem)
	if err := os.Rename(srcPath, dstPath); err != nil {
		// Cross-device: fall back to copy+delete
		if err := a.Copy(ctx, src, dst); err != nil {
			return err
		}
		if err := os.Remove(srcPath); err != nil {
			return &transferkit.PathError{Op: "move", Path: src, Err: err}
		}
	}

	return nil
}

// Checksum implements transferkit.CanChecksum for files on the share.
func (a *Adapter) Checksum(ctx context.Context, path string, algorithm transferkit.ChecksumAlgorithm) (string, error) {
	rc, err := a.Read(ctx, path)
	if err != nil {
		return "", err
	}
	defer rc.Close()

	checksum, err := transferkit.CalculateChecksum(rc, algorithm)
	if err != nil {
		return "", &transferkit.PathError{Op: "checksum", Path: path, Err: err}
	}

	return checksum, nil
}

// Checksums calculates multiple checksums in a single read pass.
func (a *Adapter) Checksums(ctx context.Context, path string, algorithms []transferkit.ChecksumAlgorithm) (map[transferkit.ChecksumAlgorithm]string, error) {
	rc, err := a.Read(ctx, path)
	if err != nil {
		return nil, err
	}
	defer rc.Close()

	checksums, err := transferkit.CalculateChecksums(rc, algorithms)
	if err != nil {
		return nil, &transferkit.PathError{Op: "checksums", Path: path, Err: err}
	}

	return checksums, nil
}

// Ensure Adapter implements interfaces
var (
	_ transferkit.FileSystem  = (*Adapter)(nil)
	_ transferkit.FileReader  = (*Adapter)(nil)
	_ transferkit.FileWriter  = (*Adapter)(nil)
	_ transferkit.CanCopy     = (*Adapter)(nil)
	_ transferkit.CanMove     = (*Adapter)(nil)
	_ transferkit.CanChecksum = (*Adapter)(nil)
	_ transferkit.CanWatch    = (*Adapter)(nil)
)
