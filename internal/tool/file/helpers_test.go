package file

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/Cyclone1070/codeagent/internal/config"
	"github.com/Cyclone1070/codeagent/internal/tool/service/fs"
	"github.com/Cyclone1070/codeagent/internal/tool/service/path"
	"github.com/stretchr/testify/require"
)

type testEnv struct {
	root  string
	fs    *fs.OSFileSystem
	paths *path.Resolver
	cfg   *config.Config
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	root, err := path.CanonicaliseRoot(t.TempDir())
	require.NoError(t, err)
	return &testEnv{
		root:  root,
		fs:    fs.NewOSFileSystem(),
		paths: path.NewResolver(root),
		cfg:   config.DefaultConfig(),
	}
}

func (e *testEnv) writeFile(t *testing.T, rel, content string) string {
	t.Helper()
	abs := filepath.Join(e.root, rel)
	require.NoError(t, os.MkdirAll(filepath.Dir(abs), 0o755))
	require.NoError(t, os.WriteFile(abs, []byte(content), 0o644))
	return abs
}

func (e *testEnv) readFile(t *testing.T, rel string) string {
	t.Helper()
	data, err := os.ReadFile(filepath.Join(e.root, rel))
	require.NoError(t, err)
	return string(data)
}
