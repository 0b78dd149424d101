package search

import (
	"context"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/Cyclone1070/codeagent/internal/tool"
	"github.com/Cyclone1070/codeagent/internal/tool/service/git"
)

// searchBase resolves the directory (or single file) a search starts from.
func searchBase(paths pathResolver, fsys fileSystem, p string) (string, os.FileInfo, *tool.Result) {
	if p == "" {
		p = "."
	}
	abs, err := paths.Abs(p)
	if err != nil {
		res := tool.PathFailure(p, err)
		return "", nil, &res
	}
	info, err := fsys.Stat(abs)
	if err != nil {
		var res tool.Result
		if os.IsNotExist(err) {
			res = tool.Failure(tool.CodeNotFound, "path not found: %s", p)
		} else {
			res = tool.Failure(tool.CodeExecutionFailed, "%s: %v", p, err)
		}
		return "", nil, &res
	}
	return abs, info, nil
}

// walkFiles visits regular files under dir, skipping .git, reserved directories and anything
// the root .gitignore excludes.
// Symlinks are not followed.
func walkFiles(ctx context.Context, paths pathResolver, ignore *git.IgnoreMatcher, dir string, fn func(abs, rel string) error) error {
	return filepath.WalkDir(dir, func(p string, d fs.DirEntry, err error) error {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		if err != nil {
			// Unreadable entries are skipped rather than failing the whole search
			if d != nil && d.IsDir() && p != dir {
				return filepath.SkipDir
			}
			return nil
		}

		rel := paths.RelOf(p)
		if d.IsDir() {
			if p != dir && (paths.IsReserved(p) || ignore.ShouldIgnore(rel, true)) {
				return filepath.SkipDir
			}
			return nil
		}
		if !d.Type().IsRegular() || ignore.ShouldIgnore(rel, false) {
			return nil
		}
		return fn(p, rel)
	})
}
