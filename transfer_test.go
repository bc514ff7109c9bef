package transferkit_test

import (
	"context"
	"strings"
	"testing"

	"github.com/gobeaver/transferkit"
	"github.com/gobeaver/transferkit/driver/memory"
)

func seedSource(t *testing.T, ctx context.Context, fs *memory.Adapter, files map[string]string) {
	t.Helper()
	for path, content := range files {
		if err := fs.Write(ctx, path, strings.NewReader(content)); err != nil {
			t.Fatalf("seeding %s: %v", path, err)
		}
	}
}

func TestTransferDir(t *testing.T) {
	ctx := context.Background()

	t.Run("copies files preserving relative paths", func(t *testing.T) {
		src := memory.New()
		dst := memory.New()
		seedSource(t, ctx, src, map[string]string{
			"landing/a.txt":     "hello",
			"landing/sub/b.txt": "world",
		})

		tm := transferkit.NewTransferManager(src, dst)
		report, err := tm.TransferDir(ctx, "landing", "out")
		if err != nil {
			t.Fatalf("TransferDir() error = %v", err)
		}
		if err := report.Err(); err != nil {
			t.Fatalf("report error = %v", err)
		}
		if len(report.Results) != 2 {
			t.Fatalf("expected 2 results, got %d", len(report.Results))
		}
		if report.Bytes() != int64(len("hello")+len("world")) {
			t.Errorf("Bytes() = %d, want %d", report.Bytes(), len("hello")+len("world"))
		}

		got, err := dst.ReadAll(ctx, "out/a.txt")
		if err != nil {
			t.Fatalf("reading out/a.txt: %v", err)
		}
		if string(got) != "hello" {
			t.Errorf("out/a.txt = %q, want %q", got, "hello")
		}

		got, err = dst.ReadAll(ctx, "out/sub/b.txt")
		if err != nil {
			t.Fatalf("reading out/sub/b.txt: %v", err)
		}
		if string(got) != "world" {
			t.Errorf("out/sub/b.txt = %q, want %q", got, "world")
		}
	})

	t.Run("overwrites destination by default", func(t *testing.T) {
		src := memory.New()
		dst := memory.New()
		seedSource(t, ctx, src, map[string]string{"landing/a.txt": "new"})
		seedSource(t, ctx, dst, map[string]string{"out/a.txt": "old"})

		tm := transferkit.NewTransferManager(src, dst)
		report, err := tm.TransferDir(ctx, "landing", "out")
		if err != nil {
			t.Fatalf("TransferDir() error = %v", err)
		}
		if err := report.Err(); err != nil {
			t.Fatalf("report error = %v", err)
		}

		got, _ := dst.ReadAll(ctx, "out/a.txt")
		if string(got) != "new" {
			t.Errorf("out/a.txt = %q, want %q", got, "new")
		}
	})

	t.Run("records conflicts when overwrite is disabled", func(t *testing.T) {
		src := memory.New()
		dst := memory.New()
		seedSource(t, ctx, src, map[string]string{
			"landing/a.txt": "new",
			"landing/b.txt": "fresh",
		})
		seedSource(t, ctx, dst, map[string]string{"out/a.txt": "old"})

		tm := transferkit.NewTransferManager(src, dst, transferkit.WithTransferOverwrite(false))
		report, err := tm.TransferDir(ctx, "landing", "out")
		if err != nil {
			t.Fatalf("TransferDir() error = %v", err)
		}

		failed := report.Failed()
		if len(failed) != 1 {
			t.Fatalf("expected 1 failure, got %d", len(failed))
		}
		if failed[0].Path != "a.txt" {
			t.Errorf("failed path = %q, want %q", failed[0].Path, "a.txt")
		}
		if !transferkit.IsExist(failed[0].Err) {
			t.Errorf("expected exists error, got %v", failed[0].Err)
		}

		// Conflict must not block the remaining files
		got, err := dst.ReadAll(ctx, "out/b.txt")
		if err != nil {
			t.Fatalf("reading out/b.txt: %v", err)
		}
		if string(got) != "fresh" {
			t.Errorf("out/b.txt = %q, want %q", got, "fresh")
		}

		// And the conflicting file keeps its old content
		got, _ = dst.ReadAll(ctx, "out/a.txt")
		if string(got) != "old" {
			t.Errorf("out/a.txt = %q, want %q", got, "old")
		}
	})

	t.Run("filters files with a selector", func(t *testing.T) {
		src := memory.New()
		dst := memory.New()
		seedSource(t, ctx, src, map[string]string{
			"landing/a.csv":     "1,2,3",
			"landing/notes.txt": "skip me",
		})

		tm := transferkit.NewTransferManager(src, dst,
			transferkit.WithSelector(transferkit.MustGlob("*.csv")))
		report, err := tm.TransferDir(ctx, "landing", "out")
		if err != nil {
			t.Fatalf("TransferDir() error = %v", err)
		}
		if len(report.Results) != 1 {
			t.Fatalf("expected 1 result, got %d", len(report.Results))
		}

		exists, _ := dst.FileExists(ctx, "out/a.csv")
		if !exists {
			t.Error("expected out/a.csv to exist")
		}
		exists, _ = dst.FileExists(ctx, "out/notes.txt")
		if exists {
			t.Error("expected out/notes.txt to be skipped")
		}
	})

	t.Run("verifies checksums after copy", func(t *testing.T) {
		src := memory.New()
		dst := memory.New()
		seedSource(t, ctx, src, map[string]string{"landing/a.txt": "hello"})

		tm := transferkit.NewTransferManager(src, dst, transferkit.WithVerify(transferkit.ChecksumSHA256))
		report, err := tm.TransferDir(ctx, "landing", "out")
		if err != nil {
			t.Fatalf("TransferDir() error = %v", err)
		}
		if err := report.Err(); err != nil {
			t.Fatalf("report error = %v", err)
		}
	})

	t.Run("stops on canceled context", func(t *testing.T) {
		src := memory.New()
		dst := memory.New()
		seedSource(t, ctx, src, map[string]string{"landing/a.txt": "hello"})

		canceled, cancel := context.WithCancel(ctx)
		cancel()

		_, err := transferkit.NewTransferManager(src, dst).TransferDir(canceled, "landing", "out")
		if err == nil {
			t.Fatal("expected error for canceled context")
		}
	})

	t.Run("missing source directory", func(t *testing.T) {
		src := memory.New()
		dst := memory.New()

		_, err := transferkit.NewTransferManager(src, dst).TransferDir(ctx, "absent", "out")
		if !transferkit.IsNotExist(err) {
			t.Errorf("expected not-exist error, got %v", err)
		}
	})
}

func TestTransferFile(t *testing.T) {
	ctx := context.Background()

	t.Run("copies a single file", func(t *testing.T) {
		src := memory.New()
		dst := memory.New()
		seedSource(t, ctx, src, map[string]string{"in/report.csv": "1,2,3"})

		tm := transferkit.NewTransferManager(src, dst)
		n, err := tm.TransferFile(ctx, "in/report.csv", "out/report.csv")
		if err != nil {
			t.Fatalf("TransferFile() error = %v", err)
		}
		if n != int64(len("1,2,3")) {
			t.Errorf("bytes = %d, want %d", n, len("1,2,3"))
		}

		got, err := dst.ReadAll(ctx, "out/report.csv")
		if err != nil {
			t.Fatalf("reading out/report.csv: %v", err)
		}
		if string(got) != "1,2,3" {
			t.Errorf("content = %q, want %q", got, "1,2,3")
		}
	})

	t.Run("missing source file", func(t *testing.T) {
		tm := transferkit.NewTransferManager(memory.New(), memory.New())
		_, err := tm.TransferFile(ctx, "absent.txt", "out.txt")
		if !transferkit.IsNotExist(err) {
			t.Errorf("expected not-exist error, got %v", err)
		}
	})
}

func TestNewTransferManagerFromConfig(t *testing.T) {
	ctx := context.Background()

	src := memory.New()
	dst := memory.New()
	seedSource(t, ctx, src, map[string]string{"landing/a.txt": "new"})
	seedSource(t, ctx, dst, map[string]string{"out/a.txt": "old"})

	cfg := &transferkit.Config{
		Backend:           transferkit.BackendMemory,
		TransferOverwrite: false,
		TransferVerify:    "sha256",
	}

	tm := transferkit.NewTransferManagerFromConfig(src, dst, cfg)
	report, err := tm.TransferDir(ctx, "landing", "out")
	if err != nil {
		t.Fatalf("TransferDir() error = %v", err)
	}

	if len(report.Failed()) != 1 {
		t.Fatalf("expected config overwrite=false to be honored, failures = %d", len(report.Failed()))
	}
	if !transferkit.IsExist(report.Failed()[0].Err) {
		t.Errorf("expected exists error, got %v", report.Failed()[0].Err)
	}
}
