package search

import (
	"context"
	"fmt"
	"path/filepath"
	"regexp"
	"sort"
	"strings"

	"github.com/Cyclone1070/codeagent/internal/config"
	"github.com/Cyclone1070/codeagent/internal/tool"
	"github.com/Cyclone1070/codeagent/internal/tool/helper/content"
	"github.com/Cyclone1070/codeagent/internal/tool/service/git"
)

type GrepRequest struct {
	Pattern string `json:"pattern"`
	Path    string `json:"path,omitempty"`
	Include string `json:"include,omitempty"`
}

func (r *GrepRequest) String() string {
	if r.Path == "" {
		return fmt.Sprintf("Searching for %q", r.Pattern)
	}
	return fmt.Sprintf("Searching for %q in %s", r.Pattern, r.Path)
}

// GrepTool searches file contents with a regular expression.
type GrepTool struct {
	fs     fileSystem
	paths  pathResolver
	config *config.Config
}

// NewGrepTool creates a new GrepTool with injected dependencies.
func NewGrepTool(fs fileSystem, paths pathResolver, cfg *config.Config) *GrepTool {
	if fs == nil {
		panic("fs is required")
	}
	if paths == nil {
		panic("paths is required")
	}
	if cfg == nil {
		panic("config is required")
	}
	return &GrepTool{fs: fs, paths: paths, config: cfg}
}

func (t *GrepTool) Name() string {
	return "grep"
}

func (t *GrepTool) Declaration() tool.Declaration {
	return tool.Declaration{
		Name: "grep",
		Description: "Search file contents with a regular expression (RE2 syntax). Returns path:line:text for each " +
			"matching line. Binary files are skipped and .gitignore is respected.",
		Parameters: &tool.Schema{
			Type: tool.TypeObject,
			Properties: map[string]*tool.Schema{
				"pattern": {Type: tool.TypeString, Description: "Regular expression to search for"},
				"path":    {Type: tool.TypeString, Description: "File or directory to search. Defaults to the working directory"},
				"include": {Type: tool.TypeString, Description: "Space separated file name globs, e.g. \"*.go *.mod\""},
			},
			Required: []string{"pattern"},
		},
	}
}

func (t *GrepTool) Input() any {
	return &GrepRequest{}
}

// Execute scans every candidate file in lexicographic path order.
func (t *GrepTool) Execute(ctx context.Context, input any) (tool.Result, error) {
	req, ok := input.(*GrepRequest)
	if !ok {
		return tool.Result{}, fmt.Errorf("invalid input type: %T", input)
	}

	re, err := regexp.Compile(req.Pattern)
	if err != nil {
		return tool.Failure(tool.CodeInvalidArguments, "invalid pattern: %v", err), nil
	}
	includes := strings.Fields(req.Include)
	for _, inc := range includes {
		if _, err := filepath.Match(inc, ""); err != nil {
			return tool.Failure(tool.CodeInvalidArguments, "invalid include glob %q: %v", inc, err), nil
		}
	}

	base, info, failure := searchBase(t.paths, t.fs, req.Path)
	if failure != nil {
		return *failure, nil
	}

	type candidate struct{ abs, rel string }
	var files []candidate
	if info.IsDir() {
		ignore, err := git.NewIgnoreMatcher(t.paths.Root(), t.fs)
		if err != nil {
			return tool.Failure(tool.CodeExecutionFailed, "%v", err), nil
		}
		err = walkFiles(ctx, t.paths, ignore, base, func(abs, rel string) error {
			if matchesInclude(includes, filepath.Base(abs)) {
				files = append(files, candidate{abs: abs, rel: rel})
			}
			return nil
		})
		if err != nil {
			if ctx.Err() != nil {
				return tool.Result{}, ctx.Err()
			}
			return tool.Failure(tool.CodeExecutionFailed, "walk %s: %v", req.Path, err), nil
		}
	} else {
		files = append(files, candidate{abs: base, rel: t.paths.RelOf(base)})
	}
	sort.Slice(files, func(i, j int) bool { return files[i].rel < files[j].rel })

	var (
		matches       []string
		total         int
		skippedBinary int
	)
	for _, f := range files {
		if err := ctx.Err(); err != nil {
			return tool.Result{}, err
		}
		fi, err := t.fs.Stat(f.abs)
		if err != nil || fi.Size() > t.config.Tools.MaxFileSize {
			continue
		}
		data, err := t.fs.ReadFile(f.abs)
		if err != nil {
			continue
		}
		if content.IsBinary(data) {
			skippedBinary++
			continue
		}
		for i, line := range content.SplitLines(string(data)) {
			if !re.MatchString(line) {
				continue
			}
			total++
			if len(matches) < t.config.Tools.GrepMaxResults {
				if cut, truncated := content.TruncateRunes(line, t.config.Tools.MaxLineLength); truncated {
					line = cut + "..."
				}
				matches = append(matches, fmt.Sprintf("%s:%d:%s", f.rel, i+1, line))
			}
		}
	}

	var b strings.Builder
	if total == 0 {
		b.WriteString("No matches found")
	} else {
		b.WriteString(strings.Join(matches, "\n"))
		if len(matches) < total {
			fmt.Fprintf(&b, "\n\n(Showing first %d of %d matches. Narrow the pattern, path or include.)", len(matches), total)
		}
	}
	if skippedBinary > 0 {
		fmt.Fprintf(&b, "\n\n(Skipped %d binary file(s))", skippedBinary)
	}

	return tool.Success(b.String(), tool.StringDisplay(fmt.Sprintf("Found %d matches", total))), nil
}

func matchesInclude(includes []string, name string) bool {
	if len(includes) == 0 {
		return true
	}
	for _, inc := range includes {
		if ok, _ := filepath.Match(inc, name); ok {
			return true
		}
	}
	return false
}
