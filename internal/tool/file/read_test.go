package file

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/Cyclone1070/codeagent/internal/tool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReadTool_Execute(t *testing.T) {
	env := newTestEnv(t)
	env.writeFile(t, "src/main.go", "package main\n\nfunc main() {}\n")
	readTool := NewReadTool(env.fs, env.paths, env.cfg)

	res, err := readTool.Execute(context.Background(), &ReadRequest{FilePath: "src/main.go"})

	require.NoError(t, err)
	assert.False(t, res.Failed())
	assert.Equal(t, "package main\n\nfunc main() {}\n", res.Content)
	assert.Equal(t, tool.StringDisplay("Read 3 lines from src/main.go"), res.Display)
}

func TestReadTool_OffsetAndLimit(t *testing.T) {
	env := newTestEnv(t)
	var b strings.Builder
	for i := 1; i <= 10; i++ {
		fmt.Fprintf(&b, "line %d\n", i)
	}
	env.writeFile(t, "big.txt", b.String())
	readTool := NewReadTool(env.fs, env.paths, env.cfg)

	res, err := readTool.Execute(context.Background(), &ReadRequest{FilePath: "big.txt", Offset: 2, Limit: 3})

	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(res.Content, "line 3\nline 4\nline 5\n\n(Showing lines 3-5 of 10."))
	assert.Equal(t, tool.StringDisplay("Read lines 3-5 of 10 from big.txt"), res.Display)
	assert.Contains(t, res.Content, "Use offset=5")
}

func TestReadTool_DefaultLimit(t *testing.T) {
	env := newTestEnv(t)
	env.cfg.Tools.ReadDefaultLimit = 2
	env.writeFile(t, "a.txt", "one\ntwo\nthree\n")
	readTool := NewReadTool(env.fs, env.paths, env.cfg)

	res, err := readTool.Execute(context.Background(), &ReadRequest{FilePath: "a.txt"})

	require.NoError(t, err)
	assert.NotContains(t, res.Content, "three")
	assert.Contains(t, res.Content, "of 3")
}

func TestReadTool_LongLinesAreCut(t *testing.T) {
	env := newTestEnv(t)
	env.cfg.Tools.ReadMaxLineLength = 5
	env.writeFile(t, "a.txt", "abcdefghij\n")
	readTool := NewReadTool(env.fs, env.paths, env.cfg)

	res, err := readTool.Execute(context.Background(), &ReadRequest{FilePath: "a.txt"})

	require.NoError(t, err)
	assert.Equal(t, "abcde...\n\n(1 line(s) cut at 5 characters.)\n", res.Content)
}

func TestReadTool_Failures(t *testing.T) {
	env := newTestEnv(t)
	env.writeFile(t, "dir/inner.txt", "x")
	env.writeFile(t, "blob.bin", "ab\x00cd")
	env.writeFile(t, "short.txt", "one\n")
	readTool := NewReadTool(env.fs, env.paths, env.cfg)

	tests := []struct {
		name string
		req  *ReadRequest
		code tool.Code
	}{
		{"missing file", &ReadRequest{FilePath: "nope.txt"}, tool.CodeNotFound},
		{"directory", &ReadRequest{FilePath: "dir"}, tool.CodeIsADirectory},
		{"binary", &ReadRequest{FilePath: "blob.bin"}, tool.CodeBinaryFile},
		{"absolute path", &ReadRequest{FilePath: "/etc/passwd"}, tool.CodeOutsideWorkspace},
		{"parent escape", &ReadRequest{FilePath: "../outside.txt"}, tool.CodeOutsideWorkspace},
		{"offset past end", &ReadRequest{FilePath: "short.txt", Offset: 5}, tool.CodeInvalidArguments},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := readTool.Execute(context.Background(), tt.req)
			require.NoError(t, err)
			assert.True(t, res.Failed())
			assert.Equal(t, tt.code, res.Code)
		})
	}
}

func TestReadTool_EmptyFile(t *testing.T) {
	env := newTestEnv(t)
	env.writeFile(t, "empty.txt", "")
	readTool := NewReadTool(env.fs, env.paths, env.cfg)

	res, err := readTool.Execute(context.Background(), &ReadRequest{FilePath: "empty.txt"})

	require.NoError(t, err)
	assert.False(t, res.Failed())
	assert.Equal(t, "", res.Content)
}

func TestReadTool_PreservesLineEndings(t *testing.T) {
	env := newTestEnv(t)
	env.writeFile(t, "mixed.txt", "a\r\nb\nc")
	readTool := NewReadTool(env.fs, env.paths, env.cfg)

	res, err := readTool.Execute(context.Background(), &ReadRequest{FilePath: "mixed.txt"})

	require.NoError(t, err)
	assert.Equal(t, "a\r\nb\nc", res.Content)
}

func TestReadTool_InvalidInputType(t *testing.T) {
	env := newTestEnv(t)
	_, err := NewReadTool(env.fs, env.paths, env.cfg).Execute(context.Background(), &WriteRequest{})
	assert.Error(t, err)
}
