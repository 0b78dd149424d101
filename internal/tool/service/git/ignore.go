// Package git adapts go-git's gitignore matcher for workspace walks and glob patterns.
package git

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/Cyclone1070/codeagent/internal/tool/helper/content"
	"github.com/go-git/go-git/v5/plumbing/format/gitignore"
)

// GitignoreReadError is returned when .gitignore exists but cannot be read.
type GitignoreReadError struct {
	Path  string
	Cause error
}

func (e *GitignoreReadError) Error() string {
	return fmt.Sprintf("failed to read .gitignore at %s: %v", e.Path, e.Cause)
}
func (e *GitignoreReadError) Unwrap() error { return e.Cause }

// fileReader is the filesystem surface needed to load .gitignore.
type fileReader interface {
	ReadFile(path string) ([]byte, error)
}

// IgnoreMatcher answers whether a workspace-relative path is ignored by the root .gitignore.
// The .git directory is always ignored.
type IgnoreMatcher struct {
	matcher gitignore.Matcher
}

// NewIgnoreMatcher loads .gitignore from root. A missing file yields a matcher that only skips .git.
func NewIgnoreMatcher(root string, fs fileReader) (*IgnoreMatcher, error) {
	if root == "" {
		panic("root is required")
	}
	if fs == nil {
		panic("fs is required")
	}

	patterns := []gitignore.Pattern{gitignore.ParsePattern(".git", nil)}

	path := filepath.Join(root, ".gitignore")
	data, err := fs.ReadFile(path)
	switch {
	case err == nil:
		for _, line := range content.SplitLines(string(data)) {
			line = strings.TrimSpace(line)
			if line == "" || strings.HasPrefix(line, "#") {
				continue
			}
			patterns = append(patterns, gitignore.ParsePattern(line, nil))
		}
	case os.IsNotExist(err):
	default:
		return nil, &GitignoreReadError{Path: path, Cause: err}
	}

	return &IgnoreMatcher{matcher: gitignore.NewMatcher(patterns)}, nil
}

// ShouldIgnore reports whether rel (slash separated, relative to the root) is ignored.
func (m *IgnoreMatcher) ShouldIgnore(rel string, isDir bool) bool {
	segments := SplitPath(rel)
	if len(segments) == 0 {
		return false
	}
	return m.matcher.Match(segments, isDir)
}

// Pattern is a glob with gitignore semantics: "**" spans directories and a pattern
// without a slash matches at any depth.
type Pattern struct {
	raw     string
	pattern gitignore.Pattern
}

// ParseGlob compiles a glob pattern. Negated patterns are not meaningful for globbing.
func ParseGlob(raw string) (*Pattern, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" || strings.HasPrefix(trimmed, "!") {
		return nil, fmt.Errorf("invalid glob pattern %q", raw)
	}
	trimmed = strings.TrimPrefix(trimmed, "./")
	return &Pattern{raw: raw, pattern: gitignore.ParsePattern(trimmed, nil)}, nil
}

// Match reports whether the relative path matches.
func (p *Pattern) Match(rel string, isDir bool) bool {
	return p.pattern.Match(SplitPath(rel), isDir) == gitignore.Exclude
}

func (p *Pattern) String() string { return p.raw }

// SplitPath splits a relative path into segments, dropping empty and "." parts.
func SplitPath(path string) []string {
	var segments []string
	for _, part := range strings.Split(filepath.ToSlash(path), "/") {
		if part != "" && part != "." {
			segments = append(segments, part)
		}
	}
	return segments
}
