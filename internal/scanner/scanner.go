// Package scanner expands command line arguments into test files.
package scanner

import (
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/fjglira/filecheck/internal/domain"
)

// Scanner discovers test files under a directory.
type Scanner interface {
	Scan(rootDir string, include []string, exclude []string) ([]string, error)
}

// FileScanner implements Scanner using filepath.WalkDir.
type FileScanner struct {
	Recursive bool
}

// NewScanner creates a new FileScanner.
func NewScanner(recursive bool) *FileScanner {
	return &FileScanner{Recursive: recursive}
}

// Scan walks rootDir and returns the sorted paths of files matching an
// include pattern and no exclude pattern. Patterns are matched against
// the slash separated path relative to rootDir; ** spans directories.
func (s *FileScanner) Scan(rootDir string, include []string, exclude []string) ([]string, error) {
	var files []string

	err := filepath.WalkDir(rootDir, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		rel, relErr := filepath.Rel(rootDir, p)
		if relErr != nil {
			rel = p
		}
		rel = filepath.ToSlash(rel)

		if d.IsDir() {
			if rel == "." {
				return nil
			}
			if !s.Recursive || matchesAny(rel, exclude) {
				return filepath.SkipDir
			}
			return nil
		}
		if !matchesAny(rel, exclude) && matchesAny(rel, include) {
			files = append(files, p)
		}
		return nil
	})
	if err != nil {
		return nil, domain.NewError("scan", rootDir, 0, "failed to scan directory", err)
	}

	sort.Strings(files)
	return files, nil
}

// Expand turns command line arguments into test files. Files are taken
// as given, directories are scanned. Duplicates are dropped and the order
// of the arguments is kept.
func Expand(s Scanner, args []string, include []string, exclude []string) ([]string, error) {
	seen := make(map[string]bool)
	var files []string
	add := func(p string) {
		key := filepath.Clean(p)
		if !seen[key] {
			seen[key] = true
			files = append(files, p)
		}
	}

	for _, arg := range args {
		info, err := os.Stat(arg)
		if err != nil {
			return nil, domain.NewErrorWithSuggestion("scan", arg, 0, "test file not found",
				"pass an existing test file or directory", err)
		}
		if !info.IsDir() {
			add(arg)
			continue
		}
		found, err := s.Scan(arg, include, exclude)
		if err != nil {
			return nil, err
		}
		for _, f := range found {
			add(f)
		}
	}
	return files, nil
}

func matchesAny(rel string, patterns []string) bool {
	for _, p := range patterns {
		if matchGlob(rel, p) {
			return true
		}
	}
	return false
}

// matchGlob reports whether the slash separated path rel matches pattern.
// A pattern without a slash matches the base name at any depth; ** matches
// zero or more whole directories.
func matchGlob(rel, pattern string) bool {
	pattern = filepath.ToSlash(pattern)
	if !strings.Contains(pattern, "/") {
		rel = path.Base(rel)
	}
	ok, err := doublestar.Match(pattern, rel)
	return err == nil && ok
}
