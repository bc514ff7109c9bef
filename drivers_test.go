package transferkit

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"path"
	"sort"
	"strings"
	"time"
)

func init() {
	// Register test drivers
	RegisterDriver(BackendMemory, newTestMemoryDriver)
	RegisterDriver(BackendNetShare, newTestShareDriver)
}

func newTestMemoryDriver(cfg *Config) (FileSystem, error) {
	return newTestFS(), nil
}

func newTestShareDriver(cfg *Config) (FileSystem, error) {
	if cfg.ShareBasePath == "" {
		return nil, fmt.Errorf("share base path is required")
	}
	fs := newTestFS()
	fs.base = cfg.ShareBasePath
	return fs, nil
}

// testFS is a simple map-backed storage client used by the tests in this
// package. The real backends live in the driver subpackages, which cannot
// be imported from in-package tests.
type testFS struct {
	base    string
	files   map[string][]byte
	dirs    map[string]bool
	readErr map[string]error
}

func newTestFS() *testFS {
	return &testFS{
		files:   make(map[string][]byte),
		dirs:    map[string]bool{"": true},
		readErr: make(map[string]error),
	}
}

func (fs *testFS) norm(p string) string {
	p = strings.ReplaceAll(p, `\`, "/")
	p = strings.Trim(p, "/")
	if p == "." {
		return ""
	}
	return p
}

func (fs *testFS) Write(ctx context.Context, p string, reader io.Reader, options ...Option) error {
	p = fs.norm(p)
	opts := ProcessOptions(options...)

	if _, exists := fs.files[p]; exists && !opts.Overwrite {
		return &PathError{Op: "write", Path: p, Err: ErrExist}
	}

	data, err := io.ReadAll(reader)
	if err != nil {
		return &PathError{Op: "write", Path: p, Err: err}
	}

	fs.files[p] = data
	for dir := path.Dir(p); dir != "." && dir != "/"; dir = path.Dir(dir) {
		fs.dirs[dir] = true
	}
	return nil
}

func (fs *testFS) Read(ctx context.Context, p string) (io.ReadCloser, error) {
	p = fs.norm(p)
	if err, ok := fs.readErr[p]; ok {
		return nil, &PathError{Op: "read", Path: p, Err: err}
	}
	data, exists := fs.files[p]
	if !exists {
		return nil, &PathError{Op: "read", Path: p, Err: ErrNotExist}
	}
	return io.NopCloser(bytes.NewReader(data)), nil
}

func (fs *testFS) ReadAll(ctx context.Context, p string) ([]byte, error) {
	rc, err := fs.Read(ctx, p)
	if err != nil {
		return nil, err
	}
	defer rc.Close()
	return io.ReadAll(rc)
}

func (fs *testFS) Delete(ctx context.Context, p string) error {
	p = fs.norm(p)
	if _, exists := fs.files[p]; !exists {
		return &PathError{Op: "delete", Path: p, Err: ErrNotExist}
	}
	delete(fs.files, p)
	return nil
}

func (fs *testFS) FileExists(ctx context.Context, p string) (bool, error) {
	_, exists := fs.files[fs.norm(p)]
	return exists, nil
}

func (fs *testFS) DirExists(ctx context.Context, p string) (bool, error) {
	return fs.dirs[fs.norm(p)], nil
}

func (fs *testFS) Stat(ctx context.Context, p string) (*FileInfo, error) {
	p = fs.norm(p)
	if data, exists := fs.files[p]; exists {
		return &FileInfo{
			Name:    path.Base(p),
			Path:    p,
			Size:    int64(len(data)),
			ModTime: time.Now(),
		}, nil
	}
	if fs.dirs[p] {
		return &FileInfo{Name: path.Base(p), Path: p, IsDir: true}, nil
	}
	return nil, &PathError{Op: "stat", Path: p, Err: ErrNotExist}
}

func (fs *testFS) ListContents(ctx context.Context, p string, recursive bool) ([]FileInfo, error) {
	p = fs.norm(p)
	if !fs.dirs[p] {
		return nil, &PathError{Op: "listcontents", Path: p, Err: ErrNotExist}
	}

	prefix := p
	if prefix != "" {
		prefix += "/"
	}

	var infos []FileInfo
	for filePath, data := range fs.files {
		if !strings.HasPrefix(filePath, prefix) {
			continue
		}
		if !recursive && strings.Contains(strings.TrimPrefix(filePath, prefix), "/") {
			continue
		}
		infos = append(infos, FileInfo{
			Name: path.Base(filePath),
			Path: filePath,
			Size: int64(len(data)),
		})
	}
	for dirPath := range fs.dirs {
		if dirPath == "" || dirPath == p || !strings.HasPrefix(dirPath, prefix) {
			continue
		}
		if !recursive && strings.Contains(strings.TrimPrefix(dirPath, prefix), "/") {
			continue
		}
		infos = append(infos, FileInfo{
			Name:  path.Base(dirPath),
			Path:  dirPath,
			IsDir: true,
		})
	}

	sort.Slice(infos, func(i, j int) bool { return infos[i].Path < infos[j].Path })
	return infos, nil
}

func (fs *testFS) CreateDir(ctx context.Context, p string) error {
	fs.dirs[fs.norm(p)] = true
	return nil
}

func (fs *testFS) DeleteDir(ctx context.Context, p string) error {
	p = fs.norm(p)
	if !fs.dirs[p] {
		return &PathError{Op: "deletedir", Path: p, Err: ErrNotExist}
	}
	delete(fs.dirs, p)
	for filePath := range fs.files {
		if strings.HasPrefix(filePath, p+"/") {
			delete(fs.files, filePath)
		}
	}
	return nil
}

var _ FileSystem = (*testFS)(nil)
