package transferkit

import (
	"github.com/gobwas/glob"
)

// FileSelector defines the interface for filtering files during listing and
// transfer operations.
//
// Selectors are composable: combine them with And, Or, Not.
//
// Example:
//
//	selector := transferkit.And(
//	    transferkit.Glob("**/*.csv"),
//	    transferkit.FuncSelector(func(f *transferkit.FileInfo) bool {
//	        return f.Size < 10*1024*1024
//	    }),
//	)
type FileSelector interface {
	// Match returns true if the file should be included in results.
	Match(file *FileInfo) bool
}

// AllSelector matches all files.
type AllSelector struct{}

func (s AllSelector) Match(file *FileInfo) bool { return true }

// All returns a selector that matches all files.
func All() FileSelector {
	return AllSelector{}
}

type globSelector struct {
	g glob.Glob
}

// Glob creates a selector matching file paths against a glob pattern with
// "/" as the separator. Supports *, ?, [abc], {a,b} and ** for crossing
// directory boundaries.
//
// Examples:
//
//	Glob("*.txt")      // .txt files in the listing root
//	Glob("**/*.txt")   // .txt files at any depth
//	Glob("sub/*.csv")  // .csv files directly under sub/
func Glob(pattern string) (FileSelector, error) {
	g, err := glob.Compile(pattern, '/')
	if err != nil {
		return nil, err
	}
	return &globSelector{g: g}, nil
}

// MustGlob is like Glob but panics on an invalid pattern.
// Intended for patterns known at compile time.
func MustGlob(pattern string) FileSelector {
	s, err := Glob(pattern)
	if err != nil {
		panic(err)
	}
	return s
}

func (s *globSelector) Match(file *FileInfo) bool {
	return s.g.Match(file.Path)
}

type andSelector struct {
	selectors []FileSelector
}

// And matches only if ALL selectors match.
func And(selectors ...FileSelector) FileSelector {
	return &andSelector{selectors: selectors}
}

func (s *andSelector) Match(file *FileInfo) bool {
	for _, sel := range s.selectors {
		if !sel.Match(file) {
			return false
		}
	}
	return true
}

type orSelector struct {
	selectors []FileSelector
}

// Or matches if ANY selector matches.
func Or(selectors ...FileSelector) FileSelector {
	return &orSelector{selectors: selectors}
}

func (s *orSelector) Match(file *FileInfo) bool {
	for _, sel := range s.selectors {
		if sel.Match(file) {
			return true
		}
	}
	return false
}

type notSelector struct {
	selector FileSelector
}

// Not inverts a selector's match result.
func Not(selector FileSelector) FileSelector {
	return &notSelector{selector: selector}
}

func (s *notSelector) Match(file *FileInfo) bool {
	return !s.selector.Match(file)
}

type funcSelector struct {
	matchFn func(*FileInfo) bool
}

// FuncSelector creates a selector from a custom function.
// This is the escape hatch for any filtering logic not covered by built-ins.
func FuncSelector(fn func(*FileInfo) bool) FileSelector {
	return &funcSelector{matchFn: fn}
}

func (s *funcSelector) Match(file *FileInfo) bool { return s.matchFn(file) }
