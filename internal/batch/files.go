package batch

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
)

// Extensions are the file suffixes treated as Mermaid sources when a
// directory is given instead of a pattern.
var Extensions = []string{".mmd", ".mermaid"}

// DefaultExcludes are directory names never descended into.
var DefaultExcludes = []string{
	".git",
	"node_modules",
	"vendor",
	".vizlab",
	"dist",
	"build",
	".idea",
	".vscode",
}

// Expand resolves the given arguments to a sorted, de-duplicated list of
// source files. Each argument may be a file, a directory (searched
// recursively for Extensions) or a doublestar glob such as docs/**/*.mmd.
// Paths matching any exclude pattern are dropped.
func Expand(args, exclude []string) ([]string, error) {
	seen := make(map[string]bool)
	var files []string

	// rel is the part of path below the scanned root; only it is checked
	// against DefaultExcludes.
	add := func(path, rel string) {
		path = filepath.Clean(path)
		if seen[path] || excluded(path, rel, exclude) {
			return
		}
		seen[path] = true
		files = append(files, path)
	}

	for _, arg := range args {
		info, err := os.Stat(arg)
		switch {
		case err == nil && info.IsDir():
			matches, err := doublestar.FilepathGlob(filepath.Join(arg, "**", "*"), doublestar.WithFilesOnly())
			if err != nil {
				return nil, fmt.Errorf("batch: scan %s: %w", arg, err)
			}
			for _, m := range matches {
				if hasSourceExt(m) {
					rel, _ := filepath.Rel(arg, m)
					add(m, rel)
				}
			}
		case err == nil:
			add(arg, "")
		case os.IsNotExist(err):
			if !doublestar.ValidatePattern(filepath.ToSlash(arg)) {
				return nil, fmt.Errorf("batch: invalid pattern %q", arg)
			}
			matches, err := doublestar.FilepathGlob(arg, doublestar.WithFilesOnly())
			if err != nil {
				return nil, fmt.Errorf("batch: glob %s: %w", arg, err)
			}
			if len(matches) == 0 {
				return nil, fmt.Errorf("batch: no files match %q", arg)
			}
			base, _ := doublestar.SplitPattern(filepath.ToSlash(arg))
			for _, m := range matches {
				rel, _ := filepath.Rel(filepath.FromSlash(base), m)
				add(m, rel)
			}
		default:
			return nil, fmt.Errorf("batch: %w", err)
		}
	}

	sort.Strings(files)
	return files, nil
}

func hasSourceExt(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	for _, e := range Extensions {
		if ext == e {
			return true
		}
	}
	return false
}

// excluded reports whether rel passes through a default-excluded directory
// or path matches one of the user patterns, either in full or by base name.
func excluded(path, rel string, patterns []string) bool {
	normalized := filepath.ToSlash(path)

	for _, part := range strings.Split(filepath.ToSlash(rel), "/") {
		for _, excl := range DefaultExcludes {
			if strings.EqualFold(part, excl) {
				return true
			}
		}
	}

	base := filepath.Base(normalized)
	for _, pattern := range patterns {
		pattern = filepath.ToSlash(pattern)
		if matched, err := doublestar.PathMatch(pattern, normalized); err == nil && matched {
			return true
		}
		if matched, err := doublestar.PathMatch(pattern, base); err == nil && matched {
			return true
		}
	}
	return false
}
