// Package transferkit copies files between Azure Data Lake Storage Gen2
// file systems and Windows network shares through a uniform storage client
// abstraction.
//
// The package has two moving parts: a factory that builds a storage client
// for a configured backend, and a [TransferManager] that copies every file
// under a source directory to a destination directory, preserving relative
// paths.
//
// # Storage Backends
//
//   - Azure Data Lake Storage Gen2 (github.com/gobeaver/transferkit/driver/datalake)
//   - Windows network shares / local directories (github.com/gobeaver/transferkit/driver/netshare)
//   - In-memory (github.com/gobeaver/transferkit/driver/memory)
//
// Drivers register themselves on import:
//
//	import (
//	    "github.com/gobeaver/transferkit"
//
//	    _ "github.com/gobeaver/transferkit/driver/datalake"
//	    _ "github.com/gobeaver/transferkit/driver/netshare"
//	)
//
// # Basic Usage
//
//	src, err := transferkit.New(&transferkit.Config{
//	    Backend:             transferkit.BackendDataLake,
//	    DataLakeAccountName: "myaccount",
//	    DataLakeFileSystem:  "landing",
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	dst, err := transferkit.New(&transferkit.Config{
//	    Backend:       transferkit.BackendNetShare,
//	    ShareBasePath: `\\fileserver\exports`,
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	manager := transferkit.NewTransferManager(src, dst)
//	report, err := manager.TransferDir(ctx, "daily", "archive/daily")
//	if err != nil {
//	    log.Fatal(err) // listing failed or context canceled
//	}
//	if err := report.Err(); err != nil {
//	    log.Printf("some files failed: %v", err)
//	}
//
// Directory transfers are best-effort: one file failing does not stop the
// rest, and the per-file outcomes are collected in a [TransferReport].
// Existing destination files are overwritten by default; see
// [WithTransferOverwrite].
//
// # Optional Capabilities
//
// Drivers may implement optional capability interfaces. Use type assertions
// to check for support:
//
//	if mover, ok := fs.(transferkit.CanMove); ok {
//	    err := mover.Move(ctx, "incoming/a.csv", "done/a.csv")
//	}
//
//	if cs, ok := fs.(transferkit.CanChecksum); ok {
//	    hash, err := cs.Checksum(ctx, "a.csv", transferkit.ChecksumSHA256)
//	}
//
//	if watcher, ok := fs.(transferkit.CanWatch); ok {
//	    token, err := watcher.Watch(ctx, "**/*.csv")
//	    if token.HasChanged() {
//	        // Handle change
//	    }
//	}
//
// # Error Handling
//
// Backend errors are mapped onto sentinel errors where a clear
// correspondence exists and otherwise surface unchanged, wrapped in a
// [PathError] carrying the operation and path:
//
//	_, err := fs.Read(ctx, "nonexistent.txt")
//	if transferkit.IsNotExist(err) {
//	    // File does not exist
//	}
//
//	var pathErr *transferkit.PathError
//	if errors.As(err, &pathErr) {
//	    fmt.Printf("Operation: %s, Path: %s\n", pathErr.Op, pathErr.Path)
//	}
//
// Factory misconfiguration (unknown backend, missing option) fails with a
// [ConfigError] before any connection is attempted.
//
// # Configuration
//
// Clients can be configured via environment variables with the
// BEAVER_TRANSFERKIT_ prefix, or programmatically via the [Config] struct:
//
//	cfg := &transferkit.Config{
//	    Backend:       transferkit.BackendNetShare,
//	    ShareBasePath: `Z:\staging`,
//	}
//	fs, err := transferkit.New(cfg)
package transferkit
