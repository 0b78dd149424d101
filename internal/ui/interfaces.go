package ui

import (
	"context"

	"github.com/Cyclone1070/codeagent/internal/session"
	"github.com/Cyclone1070/codeagent/internal/workflow/loop"
)

// turnRunner drives one user turn.
type turnRunner interface {
	RunTurn(ctx context.Context, sess *session.Session, input string) (loop.TurnResult, error)
}

// sessionStore is the part of a session store the shell commands use.
type sessionStore interface {
	Create(workDir string) (*session.Session, error)
	List() ([]session.Summary, error)
	Switch(id uint64) (*session.Session, error)
	Delete(id uint64) error
}

// lineReader reads one line of user input.
type lineReader interface {
	ReadLine(ctx context.Context, prompt string) (string, error)
}

// MarkdownRenderer turns markdown into terminal output.
type MarkdownRenderer interface {
	Render(in string) (string, error)
}
