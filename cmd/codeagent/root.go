package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/Cyclone1070/codeagent/internal/config"
	"github.com/Cyclone1070/codeagent/internal/llm/engine"
	"github.com/Cyclone1070/codeagent/internal/logger"
	"github.com/Cyclone1070/codeagent/internal/session"
	"github.com/Cyclone1070/codeagent/internal/tool/question"
	"github.com/Cyclone1070/codeagent/internal/tool/service/path"
	"github.com/Cyclone1070/codeagent/internal/ui"
	"github.com/Cyclone1070/codeagent/internal/workflow"
	"github.com/Cyclone1070/codeagent/internal/workflow/loop"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

// flags holds command line overrides. Empty values leave the config untouched.
type flags struct {
	workDir        string
	producer       string
	model          string
	sessionBackend string
	logLevel       string
}

func newRootCmd() *cobra.Command {
	f := &flags{}
	cmd := &cobra.Command{
		Use:   "codeagent",
		Short: "Interactive coding agent for the current project",
		Long: "codeagent answers questions and carries out tasks in one project directory, " +
			"using an LLM that reads, searches, edits and runs commands through a fixed set of tools. " +
			"Conversations are kept as sessions and restored on the next start.",
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig(config.NewLoader(), f)
			if err != nil {
				return err
			}
			return run(cmd.Context(), cfg, f.workDir)
		},
	}

	cmd.Flags().StringVarP(&f.workDir, "workdir", "w", "", "project directory (default: current directory)")
	cmd.Flags().StringVar(&f.producer, "producer", "", "engine: openai, qwen, bigmodel, local, gemini or anthropic")
	cmd.Flags().StringVar(&f.model, "model", "", "model name passed to the engine")
	cmd.Flags().StringVar(&f.sessionBackend, "session-backend", "", "session storage: file or sqlite")
	cmd.Flags().StringVar(&f.logLevel, "log-level", "", "debug, info, warn or error")
	return cmd
}

// loadConfig reads the dotfile and environment, then applies flags and validates the result.
func loadConfig(loader *config.Loader, f *flags) (*config.Config, error) {
	cfg, err := loader.Load()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if f.producer != "" {
		cfg.Engine.Producer = strings.ToLower(f.producer)
	}
	if f.model != "" {
		cfg.Engine.Model = f.model
	}
	if f.sessionBackend != "" {
		cfg.Session.Backend = strings.ToLower(f.sessionBackend)
	}
	if f.logLevel != "" {
		cfg.Log.Level = strings.ToLower(f.logLevel)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func run(ctx context.Context, cfg *config.Config, workDir string) error {
	if workDir == "" {
		wd, err := os.Getwd()
		if err != nil {
			return err
		}
		workDir = wd
	}
	root, err := path.CanonicaliseRoot(workDir)
	if err != nil {
		return fmt.Errorf("working directory: %w", err)
	}

	logFile, err := logPath(cfg.Log.File)
	if err != nil {
		return err
	}
	l, err := logger.New(logger.Config{Level: cfg.Log.Level, File: logFile, Pretty: cfg.Log.Pretty})
	if err != nil {
		return err
	}
	defer l.Close()

	client, err := engine.New(ctx, cfg.Engine)
	if err != nil {
		return fmt.Errorf("engine: %w", err)
	}

	store, closeStore, err := openStore(cfg.Session, root)
	if err != nil {
		return fmt.Errorf("session store: %w", err)
	}
	defer closeStore()

	sess, err := store.Restore(root)
	if err != nil {
		return fmt.Errorf("restore session: %w", err)
	}

	active := session.NewActive()
	broker := question.NewBroker()
	tools := buildTools(cfg, root, active, broker)

	events := make(chan workflow.Event, 64)
	agent := loop.NewLoop(client, tools, store, active, events, cfg)

	// Markdown is rendered only for terminals; piped output stays plain
	var markdown ui.MarkdownRenderer
	if fd := int(os.Stdout.Fd()); term.IsTerminal(fd) {
		width, _, err := term.GetSize(fd)
		if err != nil {
			width = 0
		}
		if r, err := ui.NewGlamourRenderer(width); err == nil {
			markdown = r
		}
	}

	questions := broker.Attach()
	defer broker.Detach()

	log.Info().
		Str("root", root).
		Str("producer", cfg.Engine.Producer).
		Str("model", cfg.Engine.Model).
		Uint64("session_id", sess.ID).
		Msg("codeagent started")

	shell := ui.NewShell(agent, store, ui.NewLineReader(os.Stdin, os.Stdout), os.Stdout,
		markdown, events, questions, root)
	return shell.Run(ctx, sess)
}
