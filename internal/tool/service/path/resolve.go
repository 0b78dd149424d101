// Package path confines tool paths to the bound working directory.
package path

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Resolver maps model-supplied relative paths onto the working directory.
// It is the minimal safety boundary: absolute paths are rejected, and so is
// any path whose lexical or symlink-resolved form leaves the root or enters a
// reserved directory.
type Resolver struct {
	root     string
	reserved []string
}

// Option configures a Resolver.
type Option func(*Resolver)

// WithReserved keeps tools out of dir, such as the session store's directory when it
// lives inside the working directory. A dir outside the root has no effect.
func WithReserved(dir string) Option {
	return func(r *Resolver) {
		if dir == "" {
			return
		}
		abs := filepath.Clean(dir)
		if !filepath.IsAbs(abs) {
			abs = filepath.Join(r.root, abs)
		}
		if resolved, err := evalExistingPrefix(abs); err == nil {
			abs = resolved
		}
		if abs != r.root && r.contains(abs) {
			r.reserved = append(r.reserved, abs)
		}
	}
}

// NewResolver creates a resolver for a canonical root (see CanonicaliseRoot).
func NewResolver(root string, opts ...Option) *Resolver {
	if root == "" {
		panic("root is required")
	}
	r := &Resolver{root: root}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Root returns the working directory.
func (r *Resolver) Root() string {
	return r.root
}

// CanonicaliseRoot makes root absolute, resolves symlinks and checks it is a directory.
func CanonicaliseRoot(root string) (string, error) {
	absRoot, err := filepath.Abs(root)
	if err != nil {
		return "", &RootError{Root: root, Cause: err}
	}

	resolved, err := filepath.EvalSymlinks(absRoot)
	if err != nil {
		return "", &RootError{Root: absRoot, Cause: err}
	}

	info, err := os.Stat(resolved)
	if err != nil {
		return "", &RootError{Root: resolved, Cause: err}
	}
	if !info.IsDir() {
		return "", &RootError{Root: resolved, Cause: fmt.Errorf("%w: %s", ErrNotADirectory, resolved)}
	}
	return resolved, nil
}

// Abs resolves a relative path to an absolute path inside the root.
// An empty path or "." is the root itself.
func (r *Resolver) Abs(p string) (string, error) {
	if filepath.IsAbs(p) {
		return "", &PathError{Path: p, Cause: ErrAbsolutePath}
	}

	abs := filepath.Clean(filepath.Join(r.root, p))
	if !r.contains(abs) {
		return "", &PathError{Path: p, Cause: ErrOutsideWorkspace}
	}

	// A symlink inside the root may still point outside it
	resolved, err := evalExistingPrefix(abs)
	if err != nil {
		return "", &PathError{Path: p, Cause: err}
	}
	if !r.contains(resolved) {
		return "", &PathError{Path: p, Cause: ErrOutsideWorkspace}
	}
	if r.IsReserved(abs) || r.IsReserved(resolved) {
		return "", &PathError{Path: p, Cause: ErrReserved}
	}

	return abs, nil
}

// IsReserved reports whether abs is a reserved directory or lies inside one.
func (r *Resolver) IsReserved(abs string) bool {
	for _, dir := range r.reserved {
		if abs == dir || strings.HasPrefix(abs, dir+string(filepath.Separator)) {
			return true
		}
	}
	return false
}

// Rel resolves p and returns it relative to the root, in slash form. The root itself is ".".
func (r *Resolver) Rel(p string) (string, error) {
	abs, err := r.Abs(p)
	if err != nil {
		return "", err
	}
	return r.RelOf(abs), nil
}

// RelOf converts an absolute path already known to be inside the root.
func (r *Resolver) RelOf(abs string) string {
	rel, err := filepath.Rel(r.root, abs)
	if err != nil {
		return filepath.ToSlash(abs)
	}
	return filepath.ToSlash(rel)
}

func (r *Resolver) contains(abs string) bool {
	return abs == r.root || strings.HasPrefix(abs, r.root+string(filepath.Separator))
}

// evalExistingPrefix resolves symlinks on the longest existing ancestor of p
// and re-attaches the missing tail, so paths that do not exist yet can be checked.
func evalExistingPrefix(p string) (string, error) {
	var tail []string
	cur := p
	for {
		resolved, err := filepath.EvalSymlinks(cur)
		if err == nil {
			for i := len(tail) - 1; i >= 0; i-- {
				resolved = filepath.Join(resolved, tail[i])
			}
			return resolved, nil
		}
		if !os.IsNotExist(err) {
			return "", err
		}
		parent := filepath.Dir(cur)
		if parent == cur {
			return p, nil
		}
		tail = append(tail, filepath.Base(cur))
		cur = parent
	}
}
