package search

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/Cyclone1070/codeagent/internal/config"
	"github.com/Cyclone1070/codeagent/internal/tool"
	"github.com/Cyclone1070/codeagent/internal/tool/service/fs"
	"github.com/Cyclone1070/codeagent/internal/tool/service/path"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testEnv struct {
	root  string
	fs    *fs.OSFileSystem
	paths *path.Resolver
	cfg   *config.Config
}

func newTestEnv(t *testing.T, files map[string]string) *testEnv {
	t.Helper()
	root, err := path.CanonicaliseRoot(t.TempDir())
	require.NoError(t, err)
	for rel, content := range files {
		abs := filepath.Join(root, rel)
		require.NoError(t, os.MkdirAll(filepath.Dir(abs), 0o755))
		require.NoError(t, os.WriteFile(abs, []byte(content), 0o644))
	}
	return &testEnv{root: root, fs: fs.NewOSFileSystem(), paths: path.NewResolver(root), cfg: config.DefaultConfig()}
}

func TestGlobTool_Execute(t *testing.T) {
	env := newTestEnv(t, map[string]string{
		"main.go":              "",
		"README.md":            "",
		"internal/a/a.go":      "",
		"internal/a/a_test.go": "",
		"vendor/x/x.go":        "",
		"build/out.go":         "",
		".git/config":          "",
		".gitignore":           "build/\n",
	})
	globTool := NewGlobTool(env.fs, env.paths, env.cfg)

	tests := []struct {
		name string
		req  *GlobRequest
		want []string
	}{
		{"any depth", &GlobRequest{Pattern: "*.go"}, []string{"internal/a/a.go", "internal/a/a_test.go", "main.go", "vendor/x/x.go"}},
		{"anchored", &GlobRequest{Pattern: "internal/**/*_test.go"}, []string{"internal/a/a_test.go"}},
		{"under path", &GlobRequest{Pattern: "*.go", Path: "internal"}, []string{"internal/a/a.go", "internal/a/a_test.go"}},
		{"star lists everything not ignored", &GlobRequest{Pattern: "*"}, []string{
			".gitignore", "README.md", "internal/a/a.go", "internal/a/a_test.go", "main.go", "vendor/x/x.go",
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := globTool.Execute(context.Background(), tt.req)
			require.NoError(t, err)
			require.False(t, res.Failed(), res.Error)
			assert.Equal(t, strings.Join(tt.want, "\n"), res.Content)
		})
	}
}

func TestGlobTool_NoMatches(t *testing.T) {
	env := newTestEnv(t, map[string]string{"a.txt": ""})

	res, err := NewGlobTool(env.fs, env.paths, env.cfg).Execute(context.Background(), &GlobRequest{Pattern: "*.go"})

	require.NoError(t, err)
	assert.Equal(t, "No files found", res.Content)
}

func TestGlobTool_CapsResults(t *testing.T) {
	files := map[string]string{}
	for i := 0; i < 5; i++ {
		files[fmt.Sprintf("f%d.txt", i)] = ""
	}
	env := newTestEnv(t, files)
	env.cfg.Tools.GlobMaxResults = 2

	res, err := NewGlobTool(env.fs, env.paths, env.cfg).Execute(context.Background(), &GlobRequest{Pattern: "*.txt"})

	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(res.Content, "f0.txt\nf1.txt\n\n"))
	assert.Contains(t, res.Content, "Showing first 2 of 5 files")
}

func TestGlobTool_Failures(t *testing.T) {
	env := newTestEnv(t, map[string]string{"a.txt": ""})
	globTool := NewGlobTool(env.fs, env.paths, env.cfg)

	tests := []struct {
		name string
		req  *GlobRequest
		code tool.Code
	}{
		{"escape", &GlobRequest{Pattern: "*", Path: ".."}, tool.CodeOutsideWorkspace},
		{"absolute", &GlobRequest{Pattern: "*", Path: "/"}, tool.CodeOutsideWorkspace},
		{"missing dir", &GlobRequest{Pattern: "*", Path: "nope"}, tool.CodeNotFound},
		{"file as dir", &GlobRequest{Pattern: "*", Path: "a.txt"}, tool.CodeInvalidArguments},
		{"negated pattern", &GlobRequest{Pattern: "!*.go"}, tool.CodeInvalidArguments},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := globTool.Execute(context.Background(), tt.req)
			require.NoError(t, err)
			assert.Equal(t, tt.code, res.Code)
		})
	}
}

func TestGrepTool_Execute(t *testing.T) {
	env := newTestEnv(t, map[string]string{
		"b.go":         "package b\nfunc Hello() {}\n",
		"a/x.go":       "package a\n// Hello there\n",
		"a.txt":        "Hello text\n",
		"blob.bin":     "Hello\x00world",
		"ignored/y.go": "func Hello() {}\n",
		".gitignore":   "ignored/\n",
	})
	grepTool := NewGrepTool(env.fs, env.paths, env.cfg)

	res, err := grepTool.Execute(context.Background(), &GrepRequest{Pattern: "Hello"})

	require.NoError(t, err)
	require.False(t, res.Failed())
	assert.Equal(t, "a.txt:1:Hello text\na/x.go:2:// Hello there\nb.go:2:func Hello() {}\n\n(Skipped 1 binary file(s))", res.Content)
}

func TestSearch_SkipsReservedDir(t *testing.T) {
	env := newTestEnv(t, map[string]string{
		"main.go":              "package main\n",
		".sessions/1.yaml":     "id: 1\npackage: main\n",
		".sessions/index.yaml": "next_id: 2\n",
	})
	env.paths = path.NewResolver(env.root, path.WithReserved(filepath.Join(env.root, ".sessions")))

	res, err := NewGlobTool(env.fs, env.paths, env.cfg).Execute(context.Background(), &GlobRequest{Pattern: "*"})
	require.NoError(t, err)
	assert.Equal(t, "main.go", res.Content)

	res, err = NewGrepTool(env.fs, env.paths, env.cfg).Execute(context.Background(), &GrepRequest{Pattern: "package"})
	require.NoError(t, err)
	assert.Equal(t, "main.go:1:package main", res.Content)

	res, err = NewGrepTool(env.fs, env.paths, env.cfg).Execute(context.Background(), &GrepRequest{Pattern: "id", Path: ".sessions/1.yaml"})
	require.NoError(t, err)
	assert.Equal(t, tool.CodeOutsideWorkspace, res.Code)
}

func TestGrepTool_Include(t *testing.T) {
	env := newTestEnv(t, map[string]string{
		"b.go":  "needle\n",
		"a.txt": "needle\n",
		"c.md":  "needle\n",
	})

	res, err := NewGrepTool(env.fs, env.paths, env.cfg).Execute(context.Background(), &GrepRequest{Pattern: "needle", Include: "*.go *.md"})

	require.NoError(t, err)
	assert.Equal(t, "b.go:1:needle\nc.md:1:needle", res.Content)
}

func TestGrepTool_SingleFileAndCap(t *testing.T) {
	env := newTestEnv(t, map[string]string{"log.txt": "err 1\nok\nerr 2\nerr 3\n"})
	env.cfg.Tools.GrepMaxResults = 2

	res, err := NewGrepTool(env.fs, env.paths, env.cfg).Execute(context.Background(), &GrepRequest{Pattern: `^err \d`, Path: "log.txt"})

	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(res.Content, "log.txt:1:err 1\nlog.txt:3:err 2\n"))
	assert.Contains(t, res.Content, "Showing first 2 of 3 matches")
}

func TestGrepTool_Failures(t *testing.T) {
	env := newTestEnv(t, map[string]string{"a.txt": "x"})
	grepTool := NewGrepTool(env.fs, env.paths, env.cfg)

	tests := []struct {
		name string
		req  *GrepRequest
		code tool.Code
	}{
		{"bad regexp", &GrepRequest{Pattern: "("}, tool.CodeInvalidArguments},
		{"bad include", &GrepRequest{Pattern: "x", Include: "[a"}, tool.CodeInvalidArguments},
		{"escape", &GrepRequest{Pattern: "x", Path: "../"}, tool.CodeOutsideWorkspace},
		{"missing path", &GrepRequest{Pattern: "x", Path: "nope"}, tool.CodeNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := grepTool.Execute(context.Background(), tt.req)
			require.NoError(t, err)
			assert.Equal(t, tt.code, res.Code)
		})
	}
}

func TestGrepTool_NoMatches(t *testing.T) {
	env := newTestEnv(t, map[string]string{"a.txt": "x"})

	res, err := NewGrepTool(env.fs, env.paths, env.cfg).Execute(context.Background(), &GrepRequest{Pattern: "zzz"})

	require.NoError(t, err)
	assert.False(t, res.Failed())
	assert.Equal(t, "No matches found", res.Content)
}

func TestGrepTool_CancelledContext(t *testing.T) {
	env := newTestEnv(t, map[string]string{"a.txt": "x"})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewGrepTool(env.fs, env.paths, env.cfg).Execute(ctx, &GrepRequest{Pattern: "x"})

	assert.ErrorIs(t, err, context.Canceled)
}
