package transferkit

import (
	"context"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"path"
	"strings"
)

// ErrChecksumMismatch is returned when post-transfer verification finds the
// destination content differs from what was read from the source.
var ErrChecksumMismatch = errors.New("checksum mismatch after transfer")

// TransferManager copies files from a source storage client to a destination
// storage client. It holds exactly one client for each side, keeps no state
// between invocations, and never mutates the source: the source is wrapped
// in a ReadOnlyFileSystem at construction time.
//
// Transfers are sequential and synchronous. Each file is fully read and
// written before the next one begins.
type TransferManager struct {
	src  FileReader
	dst  FileSystem
	opts transferOptions
}

type transferOptions struct {
	overwrite bool
	selector  FileSelector
	verify    ChecksumAlgorithm
}

// TransferOption configures a TransferManager.
type TransferOption func(*transferOptions)

// WithTransferOverwrite controls what happens when the destination already
// contains a file at the target path. The default is true: existing files
// are overwritten. With false, the conflicting file is left untouched and
// the transfer records a per-file error wrapping ErrExist.
func WithTransferOverwrite(overwrite bool) TransferOption {
	return func(o *transferOptions) {
		o.overwrite = overwrite
	}
}

// WithSelector restricts a directory transfer to files matching the
// selector. Selectors are matched against the path relative to the source
// directory, so Glob("**/*.csv") selects .csv files at any depth.
func WithSelector(selector FileSelector) TransferOption {
	return func(o *transferOptions) {
		o.selector = selector
	}
}

// WithVerify enables post-copy integrity verification. The source content
// is hashed while it streams to the destination; afterwards the destination
// file is hashed and compared. A mismatch records a per-file error wrapping
// ErrChecksumMismatch.
func WithVerify(algorithm ChecksumAlgorithm) TransferOption {
	return func(o *transferOptions) {
		o.verify = algorithm
	}
}

// NewTransferManager creates a transfer manager copying from src to dst.
func NewTransferManager(src, dst FileSystem, opts ...TransferOption) *TransferManager {
	options := transferOptions{overwrite: true}
	for _, opt := range opts {
		opt(&options)
	}

	return &TransferManager{
		src:  NewReadOnlyFileSystem(src),
		dst:  dst,
		opts: options,
	}
}

// NewTransferManagerFromConfig creates a transfer manager whose defaults
// come from the given config.
func NewTransferManagerFromConfig(src, dst FileSystem, cfg *Config) *TransferManager {
	opts := []TransferOption{WithTransferOverwrite(cfg.TransferOverwrite)}
	if cfg.TransferVerify != "" {
		opts = append(opts, WithVerify(ChecksumAlgorithm(cfg.TransferVerify)))
	}
	return NewTransferManager(src, dst, opts...)
}

// TransferResult records the outcome of copying one file.
type TransferResult struct {
	// Path is the file's path relative to the transferred directory.
	Path string
	// Bytes is the number of bytes copied. Zero when the copy failed.
	Bytes int64
	// Err is nil for a successful copy.
	Err error
}

// TransferReport aggregates per-file results of a directory transfer.
type TransferReport struct {
	Results []TransferResult
}

// Failed returns the results of files that could not be copied.
func (r *TransferReport) Failed() []TransferResult {
	var failed []TransferResult
	for _, res := range r.Results {
		if res.Err != nil {
			failed = append(failed, res)
		}
	}
	return failed
}

// Bytes returns the total number of bytes copied.
func (r *TransferReport) Bytes() int64 {
	var total int64
	for _, res := range r.Results {
		total += res.Bytes
	}
	return total
}

// Err returns nil if every file was copied, otherwise the joined per-file
// errors.
func (r *TransferReport) Err() error {
	var errs []error
	for _, res := range r.Results {
		if res.Err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", res.Path, res.Err))
		}
	}
	return errors.Join(errs...)
}

// TransferFile copies a single file from srcPath on the source to dstPath
// on the destination. Returns the number of bytes copied.
func (m *TransferManager) TransferFile(ctx context.Context, srcPath, dstPath string) (int64, error) {
	rc, err := m.src.Read(ctx, srcPath)
	if err != nil {
		return 0, err
	}
	defer rc.Close()

	counter := &countingReader{r: rc}
	var reader io.Reader = counter

	var hasher io.Writer
	var sum func() string
	if m.opts.verify != "" {
		h, err := NewHasher(m.opts.verify)
		if err != nil {
			return 0, err
		}
		hasher = h
		sum = func() string { return hex.EncodeToString(h.Sum(nil)) }
		reader = io.TeeReader(reader, hasher)
	}

	if err := m.dst.Write(ctx, dstPath, reader, WithOverwrite(m.opts.overwrite)); err != nil {
		return 0, err
	}

	if m.opts.verify != "" {
		ok, err := VerifyChecksum(ctx, m.dst, dstPath, sum(), m.opts.verify)
		if err != nil {
			return counter.n, err
		}
		if !ok {
			return counter.n, &PathError{Op: "verify", Path: dstPath, Err: ErrChecksumMismatch}
		}
	}

	return counter.n, nil
}

// TransferDir copies every file under srcDir on the source to the
// corresponding relative path under dstDir on the destination.
//
// The copy is best-effort: a failure on one file is recorded in the report
// and the remaining files are still attempted. The returned error is
// non-nil only when the source listing fails or the context is canceled;
// inspect the report (or report.Err()) for per-file failures.
func (m *TransferManager) TransferDir(ctx context.Context, srcDir, dstDir string) (*TransferReport, error) {
	entries, err := m.src.ListContents(ctx, srcDir, true)
	if err != nil {
		return nil, err
	}

	report := &TransferReport{}
	for _, entry := range entries {
		if entry.IsDir {
			continue
		}

		if err := ctx.Err(); err != nil {
			return report, err
		}

		rel := relativeTo(entry.Path, srcDir)
		if m.opts.selector != nil {
			scoped := entry
			scoped.Path = rel
			if !m.opts.selector.Match(&scoped) {
				continue
			}
		}

		n, err := m.TransferFile(ctx, joinPath(srcDir, rel), joinPath(dstDir, rel))
		report.Results = append(report.Results, TransferResult{
			Path:  rel,
			Bytes: n,
			Err:   err,
		})
	}

	return report, nil
}

// countingReader counts bytes as they pass through.
type countingReader struct {
	r io.Reader
	n int64
}

func (c *countingReader) Read(p []byte) (int, error) {
	n, err := c.r.Read(p)
	c.n += int64(n)
	return n, err
}

// relativeTo strips the directory prefix from a listed entry path.
// Backends report listing paths rooted the same way the listing argument
// was, so trimming the prefix yields the path relative to the directory.
func relativeTo(entryPath, dir string) string {
	entry := normalizeSlash(entryPath)
	base := strings.Trim(normalizeSlash(dir), "/")
	if base != "" && base != "." {
		entry = strings.TrimPrefix(strings.TrimPrefix(entry, base), "/")
	}
	return entry
}

// joinPath joins a directory and a relative path using forward slashes.
func joinPath(dir, rel string) string {
	base := strings.Trim(normalizeSlash(dir), "/")
	if base == "" || base == "." {
		return rel
	}
	return path.Join(base, rel)
}

// normalizeSlash converts Windows separators, trims a leading "./" and any
// leading slash. Listing paths and transfer arguments both pass through
// here, so backslash and slash spellings of the same path compare equal.
func normalizeSlash(p string) string {
	p = strings.ReplaceAll(p, `\`, "/")
	p = strings.TrimPrefix(p, "./")
	return strings.TrimPrefix(p, "/")
}
