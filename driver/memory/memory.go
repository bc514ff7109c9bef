// Package memory provides an in-memory transferkit.FileSystem, intended for
// tests and ephemeral staging of transfers.
package memory

import (
	"bytes"
	"context"
	"io"
	"mime"
	"net/http"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/gobeaver/transferkit"
)

// memoryFile represents a file stored in memory
type memoryFile struct {
	content     []byte
	contentType string
	metadata    map[string]string
	modTime     time.Time
}

// memoryDir represents a directory in memory
type memoryDir struct {
	modTime time.Time
}

// Adapter provides an in-memory implementation of transferkit.FileSystem
type Adapter struct {
	mu    sync.RWMutex
	files map[string]*memoryFile
	dirs  map[string]*memoryDir
}

// New creates a new in-memory filesystem adapter
func New() *Adapter {
	a := &Adapter{
		files: make(map[string]*memoryFile),
		dirs:  make(map[string]*memoryDir),
	}

	// Create root directory
	a.dirs[""] = &memoryDir{modTime: time.Now()}
	a.dirs["/"] = &memoryDir{modTime: time.Now()}

	return a
}

// Write implements transferkit.FileWriter
func (a *Adapter) Write(ctx context.Context, path string, content io.Reader, options ...transferkit.Option) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	path = normalizePath(path)

	if !isValidPath(path) {
		return &transferkit.PathError{
			Op:   "write",
			Path: path,
			Err:  transferkit.ErrNotAllowed,
		}
	}

	data, err := io.ReadAll(content)
	if err != nil {
		return &transferkit.PathError{
			Op:   "write",
			Path: path,
			Err:  err,
		}
	}

	opts := transferkit.ProcessOptions(options...)

	a.mu.Lock()
	defer a.mu.Unlock()

	if _, exists := a.files[path]; exists && !opts.Overwrite {
		return &transferkit.PathError{
			Op:   "write",
			Path: path,
			Err:  transferkit.ErrExist,
		}
	}

	a.ensureParentDirs(path)

	contentType := opts.ContentType
	if contentType == "" {
		contentType = detectContentType(path, data)
	}

	a.files[path] = &memoryFile{
		content:     data,
		contentType: contentType,
		metadata:    opts.Metadata,
		modTime:     time.Now(),
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

	path = normalizePath(path)

	a.mu.RLock()
	defer a.mu.RUnlock()

	file, exists := a.files[path]
	if !exists {
		return nil, &transferkit.PathError{
			Op:   "read",
			Path: path,
			Err:  transferkit.ErrNotExist,
		}
	}

	// Readers see a snapshot, later writes do not affect them
	return io.NopCloser(bytes.NewReader(file.content)), nil
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

	path = normalizePath(path)

	a.mu.Lock()
	defer a.mu.Unlock()

	if _, exists := a.files[path]; !exists {
		return &transferkit.PathError{
			Op:   "delete",
			Path: path,
			Err:  transferkit.ErrNotExist,
		}
	}

	delete(a.files, path)

	return nil
}

// FileExists implements transferkit.FileReader
func (a *Adapter) FileExists(ctx context.Context, path string) (bool, error) {
	select {
	case <-ctx.Done():
		return false, ctx.Err()
	default:
	}

	path = normalizePath(path)

	a.mu.RLock()
	defer a.mu.RUnlock()

	_, fileExists := a.files[path]

	return fileExists, nil
}

// DirExists implements transferkit.FileReader
func (a *Adapter) DirExists(ctx context.Context, path string) (bool, error) {
	select {
	case <-ctx.Done():
		return false, ctx.Err()
	default:
	}

	path = normalizePath(path)

	a.mu.RLock()
	defer a.mu.RUnlock()

	_, dirExists := a.dirs[path]

	return dirExists, nil
}

// Stat implements transferkit.FileReader
func (a *Adapter) Stat(ctx context.Context, path string) (*transferkit.FileInfo, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}

	path = normalizePath(path)

	a.mu.RLock()
	defer a.mu.RUnlock()

	if file, exists := a.files[path]; exists {
		return &transferkit.FileInfo{
			Name:        filepath.Base(path),
			Path:        path,
			Size:        int64(len(file.content)),
			ModTime:     file.modTime,
			IsDir:       false,
			ContentType: file.contentType,
			Metadata:    file.metadata,
		}, nil
	}

	if dir, exists := a.dirs[path]; exists {
		return &transferkit.FileInfo{
			Name:    filepath.Base(path),
			Path:    path,
			ModTime: dir.modTime,
			IsDir:   true,
		}, nil
	}

	return nil, &transferkit.PathError{
		Op:   "stat",
		Path: path,
		Err:  transferkit.ErrNotExist,
	}
}

// ListContents implements transferkit.FileReader
func (a *Adapter) ListContents(ctx context.Context, path string, recursive bool) ([]transferkit.FileInfo, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}

	path = normalizePath(path)

	a.mu.RLock()
	defer a.mu.RUnlock()

	if _, exists := a.dirs[path]; !exists {
		if _, isFile := a.files[path]; isFile {
			return nil, &transferkit.PathError{
				Op:   "listcontents",
				Path: path,
				Err:  transferkit.ErrNotDir,
			}
		}
		return nil, &transferkit.PathError{
			Op:   "listcontents",
			Path: path,
			Err:  transferkit.ErrNotExist,
		}
	}

	var files []transferkit.FileInfo

	isRoot := path == "" || path == "/"
	prefixWithSlash := path + "/"

	if recursive {
		for filePath, file := range a.files {
			if isRoot || strings.HasPrefix(filePath, prefixWithSlash) {
				files = append(files, transferkit.FileInfo{
					Name:        filepath.Base(filePath),
					Path:        filePath,
					Size:        int64(len(file.content)),
					ModTime:     file.modTime,
					IsDir:       false,
					ContentType: file.contentType,
					Metadata:    file.metadata,
				})
			}
		}

		for dirPath, dir := range a.dirs {
			if dirPath == path || dirPath == "" || dirPath == "/" {
				continue
			}
			if isRoot || strings.HasPrefix(dirPath, prefixWithSlash) {
				files = append(files, transferkit.FileInfo{
					Name:    filepath.Base(dirPath),
					Path:    dirPath,
					ModTime: dir.modTime,
					IsDir:   true,
				})
			}
		}
	} else {
		// Immediate children only: collapse nested entries to their
		// top-level component, which is always a directory we track.
		seen := make(map[string]bool)

		for filePath, file := range a.files {
			relPath := filePath
			if !isRoot {
				if !strings.HasPrefix(filePath, prefixWithSlash) {
					continue
				}
				relPath = strings.TrimPrefix(filePath, prefixWithSlash)
			}
			if relPath == "" {
				continue
			}

			parts := strings.SplitN(relPath, "/", 2)
			if len(parts) > 1 || seen[parts[0]] {
				continue
			}
			seen[parts[0]] = true

			files = append(files, transferkit.FileInfo{
				Name:        parts[0],
				Path:        filePath,
				Size:        int64(len(file.content)),
				ModTime:     file.modTime,
				IsDir:       false,
				ContentType: file.contentType,
				Metadata:    file.metadata,
			})
		}

		for dirPath, dir := range a.dirs {
			if dirPath == path || dirPath == "" || dirPath == "/" {
				continue
			}

			relPath := dirPath
			if !isRoot {
				if !strings.HasPrefix(dirPath, prefixWithSlash) {
					continue
				}
				relPath = strings.TrimPrefix(dirPath, prefixWithSlash)
			}
			if relPath == "" {
				continue
			}

			parts := strings.SplitN(relPath, "/", 2)
			if len(parts) > 1 || seen[parts[0]] {
				continue
			}
			seen[parts[0]] = true

			files = append(files, transferkit.FileInfo{
				Name:    parts[0],
				Path:    dirPath,
				ModTime: dir.modTime,
				IsDir:   true,
			})
		}
	}

	sort.Slice(files, func(i, j int) bool {
		return files[i].Path < files[j].Path
	})

	return files, nil
}

// CreateDir implements transferkit.FileWriter
func (a *Adapter) CreateDir(ctx context.Context, path string) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	path = normalizePath(path)

	if !isValidPath(path) {
		return &transferkit.PathError{
			Op:   "createdir",
			Path: path,
			Err:  transferkit.ErrNotAllowed,
		}
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	if _, exists := a.files[path]; exists {
		return &transferkit.PathError{
			Op:   "createdir",
			Path: path,
			Err:  transferkit.ErrExist,
		}
	}

	a.ensureParentDirs(path)
	a.dirs[path] = &memoryDir{modTime: time.Now()}

	return nil
}

// DeleteDir implements transferkit.FileWriter
func (a *Adapter) DeleteDir(ctx context.Context, path string) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	path = normalizePath(path)

	a.mu.Lock()
	defer a.mu.Unlock()

	if _, exists := a.dirs[path]; !exists {
		if _, isFile := a.files[path]; isFile {
			return &transferkit.PathError{
				Op:   "deletedir",
				Path: path,
				Err:  transferkit.ErrNotDir,
			}
		}
		return &transferkit.PathError{
			Op:   "deletedir",
			Path: path,
			Err:  transferkit.ErrNotExist,
		}
	}

	prefixWithSlash := path + "/"

	for filePath := range a.files {
		if strings.HasPrefix(filePath, prefixWithSlash) {
			delete(a.files, filePath)
		}
	}

	for dirPath := range a.dirs {
		if strings.HasPrefix(dirPath, prefixWithSlash) || dirPath == path {
			delete(a.dirs, dirPath)
		}
	}

	return nil
}

// Clear removes all files and directories. Useful for testing cleanup.
func (a *Adapter) Clear() {
	a.mu.Lock()
	defer a.mu.Unlock()

	a.files = make(map[string]*memoryFile)
	a.dirs = make(map[string]*memoryDir)

	a.dirs[""] = &memoryDir{modTime: time.Now()}
	a.dirs["/"] = &memoryDir{modTime: time.Now()}
}

// ensureParentDirs creates all parent directories for a given path.
// Must be called with lock held.
func (a *Adapter) ensureParentDirs(path string) {
	dir := filepath.Dir(path)
	for dir != "" && dir != "." && dir != "/" {
		if _, exists := a.dirs[dir]; !exists {
			a.dirs[dir] = &memoryDir{modTime: time.Now()}
		}
		dir = filepath.Dir(dir)
	}
}

// normalizePath normalizes a file path
func normalizePath(path string) string {
	path = strings.ReplaceAll(path, `\`, "/")
	path = strings.TrimPrefix(path, "/")
	if path == "" || path == "." {
		return ""
	}
	return filepath.ToSlash(filepath.Clean(path))
}

// isValidPath checks if a path is valid (no directory traversal)
func isValidPath(path string) bool {
	return !strings.Contains(path, "..")
}

// detectContentType determines the content type of a file
func detectContentType(path string, data []byte) string {
	if ext := filepath.Ext(path); ext != "" {
		if contentType := mime.TypeByExtension(ext); contentType != "" {
			return contentType
		}
	}

	if len(data) > 0 {
		return http.DetectContentType(data)
	}

	return "application/octet-stream"
}

// ============================================================================
// Optional Capability Interfaces
// ============================================================================

// Copy implements transferkit.CanCopy for in-memory file copying.
func (a *Adapter) Copy(ctx context.Context, src, dst string) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	src = normalizePath(src)
	dst = normalizePath(dst)

	if !isValidPath(src) || !isValidPath(dst) {
		return &transferkit.PathError{Op: "copy", Path: src, Err: transferkit.ErrNotAllowed}
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	srcFile, exists := a.files[src]
	if !exists {
		return &transferkit.PathError{Op: "copy", Path: src, Err: transferkit.ErrNotExist}
	}

	a.ensureParentDirs(dst)

	content := make([]byte, len(srcFile.content))
	copy(content, srcFile.content)

	metadata := make(map[string]string, len(srcFile.metadata))
	for k, v := range srcFile.metadata {
		metadata[k] = v
	}

	a.files[dst] = &memoryFile{
		content:     content,
		contentType: srcFile.contentType,
		metadata:    metadata,
		modTime:     time.Now(),
	}

	return nil
}

// Move implements transferkit.CanMove for in-memory file moving.
func (a *Adapter) Move(ctx context.Context, src, dst string) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	src = normalizePath(src)
	dst = normalizePath(dst)

	if !isValidPath(src) || !isValidPath(dst) {
		return &transferkit.PathError{Op: "move", Path: src, Err: transferkit.ErrNotAllowed}
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	srcFile, exists := a.files[src]
	if !exists {
		return &transferkit.PathError{Op: "move", Path: src, Err: transferkit.ErrNotExist}
	}

	a.ensureParentDirs(dst)

	a.files[dst] = srcFile
	srcFile.modTime = time.Now()
	delete(a.files, src)

	return nil
}

// Checksum implements transferkit.CanChecksum for in-memory files.
func (a *Adapter) Checksum(ctx context.Context, path string, algorithm transferkit.ChecksumAlgorithm) (string, error) {
	select {
	case <-ctx.Done():
		return "", ctx.Err()
	default:
	}

	path = normalizePath(path)

	a.mu.RLock()
	defer a.mu.RUnlock()

	file, exists := a.files[path]
	if !exists {
		return "", &transferkit.PathError{Op: "checksum", Path: path, Err: transferkit.ErrNotExist}
	}

	checksum, err := transferkit.CalculateChecksum(bytes.NewReader(file.content), algorithm)
	if err != nil {
		return "", &transferkit.PathError{Op: "checksum", Path: path, Err: err}
	}

	return checksum, nil
}

// Checksums calculates multiple checksums in a single pass.
func (a *Adapter) Checksums(ctx context.Context, path string, algorithms []transferkit.ChecksumAlgorithm) (map[transferkit.ChecksumAlgorithm]string, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}

	path = normalizePath(path)

	a.mu.RLock()
	defer a.mu.RUnlock()

	file, exists := a.files[path]
	if !exists {
		return nil, &transferkit.PathError{Op: "checksums", Path: path, Err: transferkit.ErrNotExist}
	}

	checksums, err := transferkit.CalculateChecksums(bytes.NewReader(file.content), algorithms)
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
)
