package main

import (
	"fmt"
	"net/http"
	"os"
	"path/filepath"

	"github.com/Cyclone1070/codeagent/internal/config"
	"github.com/Cyclone1070/codeagent/internal/session"
	"github.com/Cyclone1070/codeagent/internal/session/sqlite"
	"github.com/Cyclone1070/codeagent/internal/tool/file"
	"github.com/Cyclone1070/codeagent/internal/tool/history"
	"github.com/Cyclone1070/codeagent/internal/tool/question"
	"github.com/Cyclone1070/codeagent/internal/tool/search"
	"github.com/Cyclone1070/codeagent/internal/tool/service/executor"
	"github.com/Cyclone1070/codeagent/internal/tool/service/fs"
	"github.com/Cyclone1070/codeagent/internal/tool/service/path"
	"github.com/Cyclone1070/codeagent/internal/tool/shell"
	"github.com/Cyclone1070/codeagent/internal/tool/skill"
	"github.com/Cyclone1070/codeagent/internal/tool/todo"
	"github.com/Cyclone1070/codeagent/internal/tool/web"
	"github.com/Cyclone1070/codeagent/internal/workflow/toolmanager"
)

// sessionStore is what the shell and the loop need from either backend.
type sessionStore interface {
	Create(workDir string) (*session.Session, error)
	List() ([]session.Summary, error)
	Switch(id uint64) (*session.Session, error)
	Delete(id uint64) error
	Save(sess *session.Session) error
	Restore(workDir string) (*session.Session, error)
}

// sessionDir is the configured session directory, resolved against root when relative.
func sessionDir(cfg config.SessionConfig, root string) string {
	if filepath.IsAbs(cfg.Dir) {
		return cfg.Dir
	}
	return filepath.Join(root, cfg.Dir)
}

// openStore opens the configured backend under the session dir.
func openStore(cfg config.SessionConfig, root string) (sessionStore, func(), error) {
	dir := sessionDir(cfg, root)

	switch cfg.Backend {
	case "", "file":
		store, err := session.NewFileStore(dir, fs.NewOSFileSystem())
		if err != nil {
			return nil, nil, err
		}
		return store, func() {}, nil
	case "sqlite":
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, nil, err
		}
		store, err := sqlite.Open(filepath.Join(dir, "sessions.db"))
		if err != nil {
			return nil, nil, err
		}
		return store, func() { _ = store.Close() }, nil
	default:
		return nil, nil, fmt.Errorf("unknown session backend %q", cfg.Backend)
	}
}

// buildTools instantiates every tool against the canonical root. The session directory is
// reserved so only the store writes it.
func buildTools(cfg *config.Config, root string, active *session.Active, broker *question.Broker) *toolmanager.ToolManager {
	osFS := fs.NewOSFileSystem()
	paths := path.NewResolver(root, path.WithReserved(sessionDir(cfg.Session, root)))
	runner := executor.NewOSCommandExecutor(cfg)

	return toolmanager.NewToolManager(
		file.NewReadTool(osFS, paths, cfg),
		file.NewWriteTool(osFS, paths, cfg),
		file.NewEditTool(osFS, paths, cfg),
		search.NewGlobTool(osFS, paths, cfg),
		search.NewGrepTool(osFS, paths, cfg),
		shell.NewBashTool(runner, paths, cfg),
		todo.NewWriteTool(active),
		question.NewTool(broker),
		web.NewFetchTool(&http.Client{}, cfg),
		skill.NewTool(skill.Builtin()),
		history.NewDetailTool(active),
	)
}

// logPath resolves the log file, defaulting to ~/.config/codeagent/codeagent.log.
func logPath(configured string) (string, error) {
	if configured != "" {
		return configured, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("locate log file: %w", err)
	}
	return filepath.Join(home, ".config", config.ConfigDir, "codeagent.log"), nil
}
