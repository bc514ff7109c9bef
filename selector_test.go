package transferkit

import "testing"

func TestGlobSelector(t *testing.T) {
	tests := []struct {
		pattern string
		path    string
		want    bool
	}{
		{"*.txt", "a.txt", true},
		{"*.txt", "sub/a.txt", false},
		{"**/*.txt", "sub/a.txt", true},
		{"**/*.txt", "sub/deep/a.txt", true},
		{"sub/*.csv", "sub/a.csv", true},
		{"sub/*.csv", "sub/deep/a.csv", false},
		{"data/**", "data/a/b/c", true},
		{"{a,b}.txt", "a.txt", true},
		{"{a,b}.txt", "c.txt", false},
		{"report-?.csv", "report-1.csv", true},
		{"report-?.csv", "report-10.csv", false},
	}

	for _, tt := range tests {
		t.Run(tt.pattern+"/"+tt.path, func(t *testing.T) {
			sel, err := Glob(tt.pattern)
			if err != nil {
				t.Fatalf("Glob(%q) error = %v", tt.pattern, err)
			}
			got := sel.Match(&FileInfo{Path: tt.path})
			if got != tt.want {
				t.Errorf("Glob(%q).Match(%q) = %v, want %v", tt.pattern, tt.path, got, tt.want)
			}
		})
	}

	t.Run("invalid pattern", func(t *testing.T) {
		if _, err := Glob("[unclosed"); err == nil {
			t.Fatal("expected error for invalid pattern")
		}
	})

	t.Run("must glob panics on invalid pattern", func(t *testing.T) {
		defer func() {
			if recover() == nil {
				t.Error("expected panic")
			}
		}()
		MustGlob("[unclosed")
	})
}

func TestSelectorCombinators(t *testing.T) {
	csv := MustGlob("**/*.csv")
	small := FuncSelector(func(f *FileInfo) bool { return f.Size < 100 })

	file := func(path string, size int64) *FileInfo {
		return &FileInfo{Path: path, Size: size}
	}

	t.Run("all", func(t *testing.T) {
		if !All().Match(file("anything", 1<<30)) {
			t.Error("All should match everything")
		}
	})

	t.Run("and", func(t *testing.T) {
		sel := And(csv, small)
		if !sel.Match(file("sub/a.csv", 10)) {
			t.Error("expected match")
		}
		if sel.Match(file("sub/a.csv", 1000)) {
			t.Error("expected size to reject")
		}
		if sel.Match(file("sub/a.txt", 10)) {
			t.Error("expected pattern to reject")
		}
	})

	t.Run("or", func(t *testing.T) {
		sel := Or(csv, small)
		if !sel.Match(file("sub/a.txt", 10)) {
			t.Error("expected size to match")
		}
		if !sel.Match(file("sub/a.csv", 1000)) {
			t.Error("expected pattern to match")
		}
		if sel.Match(file("sub/a.txt", 1000)) {
			t.Error("expected no match")
		}
	})

	t.Run("not", func(t *testing.T) {
		sel := Not(csv)
		if sel.Match(file("sub/a.csv", 10)) {
			t.Error("expected inversion to reject")
		}
		if !sel.Match(file("sub/a.txt", 10)) {
			t.Error("expected inversion to match")
		}
	})
}
