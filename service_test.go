package transferkit

import (
	"os"
	"strings"
	"testing"
)

func TestValidateConfig(t *testing.T) {
	tests := []struct {
		name    string
		config  Config
		wantErr bool
		errMsg  string
	}{
		{
			name:    "empty backend",
			config:  Config{},
			wantErr: true,
			errMsg:  "backend is required",
		},
		{
			name:    "unknown backend",
			config:  Config{Backend: "ftp"},
			wantErr: true,
			errMsg:  "unknown backend",
		},
		{
			name:    "datalake without account or endpoint",
			config:  Config{Backend: BackendDataLake, DataLakeFileSystem: "landing"},
			wantErr: true,
			errMsg:  "account name or endpoint is required",
		},
		{
			name:    "datalake without filesystem",
			config:  Config{Backend: BackendDataLake, DataLakeAccountName: "acct"},
			wantErr: true,
			errMsg:  "file system name is required",
		},
		{
			name: "datalake with account and filesystem",
			config: Config{
				Backend:             BackendDataLake,
				DataLakeAccountName: "acct",
				DataLakeFileSystem:  "landing",
			},
			wantErr: false,
		},
		{
			name: "datalake with endpoint only",
			config: Config{
				Backend:            BackendDataLake,
				DataLakeEndpoint:   "http://localhost:10000/devstoreaccount1",
				DataLakeFileSystem: "landing",
			},
			wantErr: false,
		},
		{
			name:    "network share without base path",
			config:  Config{Backend: BackendNetShare},
			wantErr: true,
			errMsg:  "base path is required",
		},
		{
			name:    "network share with base path",
			config:  Config{Backend: BackendNetShare, ShareBasePath: `\\server\share`},
			wantErr: false,
		},
		{
			name:    "memory backend needs nothing",
			config:  Config{Backend: BackendMemory},
			wantErr: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validateConfig(&tt.config)
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected error, got nil")
				}
				if !IsConfig(err) {
					t.Errorf("expected ConfigError, got %T: %v", err, err)
				}
				if tt.errMsg != "" && !strings.Contains(err.Error(), tt.errMsg) {
					t.Errorf("error %q does not contain %q", err.Error(), tt.errMsg)
				}
			} else if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
		})
	}
}

func TestNew(t *testing.T) {
	t.Run("creates client for registered backend", func(t *testing.T) {
		fs, err := New(&Config{Backend: BackendMemory})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if fs == nil {
			t.Fatal("expected a storage client")
		}
	})

	t.Run("passes config through to the factory", func(t *testing.T) {
		fs, err := New(&Config{Backend: BackendNetShare, ShareBasePath: `\\server\share`})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		tfs, ok := fs.(*testFS)
		if !ok {
			t.Fatalf("expected *testFS, got %T", fs)
		}
		if tfs.base != `\\server\share` {
			t.Errorf("base = %q, want %q", tfs.base, `\\server\share`)
		}
	})

	t.Run("rejects unknown backend without touching the registry", func(t *testing.T) {
		_, err := New(&Config{Backend: "ftp"})
		if err == nil {
			t.Fatal("expected error")
		}
		if !IsConfig(err) {
			t.Errorf("expected ConfigError, got %T: %v", err, err)
		}
	})

	t.Run("rejects incomplete config before driver creation", func(t *testing.T) {
		// BackendDataLake has no driver registered in this package, so a
		// ConfigError here proves validation runs first.
		_, err := New(&Config{Backend: BackendDataLake})
		if err == nil {
			t.Fatal("expected error")
		}
		if !IsConfig(err) {
			t.Errorf("expected ConfigError, got %T: %v", err, err)
		}
	})
}

func TestCreateDriver(t *testing.T) {
	t.Run("unregistered backend", func(t *testing.T) {
		_, err := CreateDriver(&Config{Backend: BackendDataLake})
		if err == nil {
			t.Fatal("expected error for unregistered backend")
		}
		if !IsConfig(err) {
			t.Errorf("expected ConfigError, got %T: %v", err, err)
		}
	})
}

func TestGlobalInstance(t *testing.T) {
	t.Run("init and default", func(t *testing.T) {
		Reset()
		t.Cleanup(Reset)

		if err := Init(&Config{Backend: BackendMemory}); err != nil {
			t.Fatalf("Init() error = %v", err)
		}

		fs, err := Default()
		if err != nil {
			t.Fatalf("Default() error = %v", err)
		}
		if fs == nil {
			t.Fatal("expected a storage client")
		}
		if FS() != fs {
			t.Error("FS() should return the same instance as Default()")
		}
	})

	t.Run("init is idempotent", func(t *testing.T) {
		Reset()
		t.Cleanup(Reset)

		if err := Init(&Config{Backend: BackendMemory}); err != nil {
			t.Fatalf("Init() error = %v", err)
		}
		first := FS()

		// Second Init is a no-op, even with a different config
		if err := Init(&Config{Backend: BackendNetShare, ShareBasePath: "/mnt/share"}); err != nil {
			t.Fatalf("Init() error = %v", err)
		}
		if FS() != first {
			t.Error("second Init should not replace the instance")
		}
	})

	t.Run("init from environment", func(t *testing.T) {
		Reset()
		t.Cleanup(Reset)

		os.Setenv("BEAVER_TRANSFERKIT_BACKEND", "memory")
		t.Cleanup(func() { os.Unsetenv("BEAVER_TRANSFERKIT_BACKEND") })

		if err := Init(); err != nil {
			t.Fatalf("Init() error = %v", err)
		}
		if FS() == nil {
			t.Fatal("expected a storage client")
		}
	})
}

func TestNewFromEnv(t *testing.T) {
	os.Setenv("BEAVER_TRANSFERKIT_BACKEND", "memory")
	t.Cleanup(func() { os.Unsetenv("BEAVER_TRANSFERKIT_BACKEND") })

	fs, err := NewFromEnv()
	if err != nil {
		t.Fatalf("NewFromEnv() error = %v", err)
	}
	if fs == nil {
		t.Fatal("expected a storage client")
	}
}
