package search

import (
	"context"
	"fmt"
	"path/filepath"
	"sort"
	"strings"

	"github.com/Cyclone1070/codeagent/internal/config"
	"github.com/Cyclone1070/codeagent/internal/tool"
	"github.com/Cyclone1070/codeagent/internal/tool/service/git"
)

type GlobRequest struct {
	Pattern string `json:"pattern"`
	Path    string `json:"path,omitempty"`
}

func (r *GlobRequest) String() string {
	if r.Path == "" {
		return "Finding " + r.Pattern
	}
	return fmt.Sprintf("Finding %s in %s", r.Pattern, r.Path)
}

// GlobTool lists files matching a pattern.
type GlobTool struct {
	fs     fileSystem
	paths  pathResolver
	config *config.Config
}

// NewGlobTool creates a new GlobTool with injected dependencies.
func NewGlobTool(fs fileSystem, paths pathResolver, cfg *config.Config) *GlobTool {
	if fs == nil {
		panic("fs is required")
	}
	if paths == nil {
		panic("paths is required")
	}
	if cfg == nil {
		panic("config is required")
	}
	return &GlobTool{fs: fs, paths: paths, config: cfg}
}

func (t *GlobTool) Name() string {
	return "glob"
}

func (t *GlobTool) Declaration() tool.Declaration {
	return tool.Declaration{
		Name: "glob",
		Description: "Find files by pattern, e.g. \"*.go\" or \"src/**/*.ts\". A pattern without a slash matches " +
			"at any depth. Results are sorted paths relative to the working directory; .gitignore is respected.",
		Parameters: &tool.Schema{
			Type: tool.TypeObject,
			Properties: map[string]*tool.Schema{
				"pattern": {Type: tool.TypeString, Description: "Glob pattern, matched against paths relative to path"},
				"path":    {Type: tool.TypeString, Description: "Directory to search in. Defaults to the working directory"},
			},
			Required: []string{"pattern"},
		},
	}
}

func (t *GlobTool) Input() any {
	return &GlobRequest{}
}

// Execute walks the search directory and returns matching files in lexicographic order.
func (t *GlobTool) Execute(ctx context.Context, input any) (tool.Result, error) {
	req, ok := input.(*GlobRequest)
	if !ok {
		return tool.Result{}, fmt.Errorf("invalid input type: %T", input)
	}

	pattern, err := git.ParseGlob(req.Pattern)
	if err != nil {
		return tool.Failure(tool.CodeInvalidArguments, "%v", err), nil
	}

	base, info, failure := searchBase(t.paths, t.fs, req.Path)
	if failure != nil {
		return *failure, nil
	}
	if !info.IsDir() {
		return tool.Failure(tool.CodeInvalidArguments, "path %s is not a directory", req.Path), nil
	}

	ignore, err := git.NewIgnoreMatcher(t.paths.Root(), t.fs)
	if err != nil {
		return tool.Failure(tool.CodeExecutionFailed, "%v", err), nil
	}

	var matches []string
	err = walkFiles(ctx, t.paths, ignore, base, func(abs, rel string) error {
		fromBase, relErr := filepath.Rel(base, abs)
		if relErr != nil {
			return nil
		}
		if pattern.Match(fromBase, false) {
			matches = append(matches, rel)
		}
		return nil
	})
	if err != nil {
		if ctx.Err() != nil {
			return tool.Result{}, ctx.Err()
		}
		return tool.Failure(tool.CodeExecutionFailed, "walk %s: %v", req.Path, err), nil
	}

	if len(matches) == 0 {
		return tool.Success("No files found", tool.StringDisplay("No files found")), nil
	}

	sort.Strings(matches)
	total := len(matches)
	shown := matches
	if limit := t.config.Tools.GlobMaxResults; total > limit {
		shown = matches[:limit]
	}

	var b strings.Builder
	b.WriteString(strings.Join(shown, "\n"))
	if len(shown) < total {
		fmt.Fprintf(&b, "\n\n(Showing first %d of %d files. Use a more specific pattern or path.)", len(shown), total)
	}
	return tool.Success(b.String(), tool.StringDisplay(fmt.Sprintf("Found %d files", total))), nil
}
