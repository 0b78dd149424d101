// Package ui is the interactive shell: it reads user input, runs turns, renders
// workflow events and answers the agent's questions.
package ui

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strconv"
	"strings"

	"github.com/Cyclone1070/codeagent/internal/session"
	"github.com/Cyclone1070/codeagent/internal/tool/question"
	"github.com/Cyclone1070/codeagent/internal/workflow"
	"github.com/Cyclone1070/codeagent/internal/workflow/loop"
	"github.com/rs/zerolog/log"
)

// Shell is the read-run-print loop around the agent.
type Shell struct {
	runner    turnRunner
	store     sessionStore
	reader    lineReader
	view      *view
	events    <-chan workflow.Event
	questions <-chan question.Request
	workDir   string

	sess *session.Session

	// interrupt derives the per-turn context; Ctrl+C cancels the turn, not the shell.
	interrupt func(ctx context.Context) (context.Context, context.CancelFunc)
}

// NewShell creates a Shell with injected dependencies.
// events must be the channel the loop emits on; questions is the broker's responder channel.
func NewShell(
	runner turnRunner,
	store sessionStore,
	reader lineReader,
	out io.Writer,
	markdown MarkdownRenderer,
	events <-chan workflow.Event,
	questions <-chan question.Request,
	workDir string,
) *Shell {
	if runner == nil {
		panic("runner is required")
	}
	if store == nil {
		panic("store is required")
	}
	if reader == nil {
		panic("reader is required")
	}
	if out == nil {
		panic("out is required")
	}
	return &Shell{
		runner:    runner,
		store:     store,
		reader:    reader,
		view:      newView(out, markdown),
		events:    events,
		questions: questions,
		workDir:   workDir,
		interrupt: func(ctx context.Context) (context.Context, context.CancelFunc) {
			return signal.NotifyContext(ctx, os.Interrupt)
		},
	}
}

// Run serves input until the user quits or input ends. sess is the session to start in.
func (s *Shell) Run(ctx context.Context, sess *session.Session) error {
	if sess == nil {
		return session.ErrNoSession
	}
	s.sess = sess
	s.view.println(s.view.user.Render(fmt.Sprintf("codeagent · session %d", sess.ID)) +
		s.view.dim.Render(" · /help for commands"))

	for {
		line, err := s.reader.ReadLine(ctx, "> ")
		if err != nil {
			if errors.Is(err, io.EOF) || errors.Is(err, ErrInterrupted) {
				return nil
			}
			return err
		}

		cmd := ParseCommand(line)
		if cmd.Err != nil {
			s.view.errorf("%v", cmd.Err)
			continue
		}

		switch cmd.Kind {
		case CmdEmpty:
		case CmdQuit:
			return nil
		case CmdHelp:
			s.view.println(helpText)
		case CmdNew:
			s.newSession()
		case CmdShow:
			s.show()
		case CmdSwitch:
			s.switchTo(cmd.ID)
		case CmdDelete:
			s.delete(cmd.ID)
		case CmdUnknown:
			s.view.errorf("unknown command %s, try /help", cmd.Text)
		case CmdPrompt:
			if err := s.turn(ctx, cmd.Text); err != nil {
				return err
			}
		}
	}
}

// Session returns the session the shell is on.
func (s *Shell) Session() *session.Session {
	return s.sess
}

// turn runs one prompt in the background while the shell renders events and answers questions.
// Only a failure of the shell's own context is returned.
func (s *Shell) turn(ctx context.Context, input string) error {
	turnCtx, stop := s.interrupt(ctx)
	defer stop()

	type outcome struct {
		res loop.TurnResult
		err error
	}
	done := make(chan outcome, 1)
	go func() {
		res, err := s.runner.RunTurn(turnCtx, s.sess, input)
		done <- outcome{res: res, err: err}
	}()

	for {
		select {
		case ev := <-s.events:
			s.view.event(ev)
		case req := <-s.questions:
			s.answer(turnCtx, stop, req)
		case out := <-done:
			s.drainEvents()
			s.view.turnEnd(out.res, out.err)
			if out.err != nil {
				log.Debug().Err(out.err).Uint64("session_id", s.sess.ID).Msg("turn ended with error")
			}
			return ctx.Err()
		}
	}
}

func (s *Shell) drainEvents() {
	for {
		select {
		case ev := <-s.events:
			s.view.event(ev)
		default:
			return
		}
	}
}

// answer asks each prompt in turn. An interrupt while answering cancels the turn.
func (s *Shell) answer(ctx context.Context, cancel context.CancelFunc, req question.Request) {
	answers := make([]string, 0, len(req.Prompts))
	for _, p := range req.Prompts {
		if p.Header != "" {
			s.view.println(s.view.header.Render(p.Header))
		}
		s.view.println(p.Question)
		for i, opt := range p.Options {
			s.view.println(fmt.Sprintf("  %d. %s", i+1, opt))
		}

		line, err := s.reader.ReadLine(ctx, "? ")
		if err != nil {
			cancel()
			return
		}
		answers = append(answers, resolveOption(line, p.Options))
	}
	req.Reply <- answers
}

// resolveOption maps a numeric reply onto the offered option.
func resolveOption(answer string, options []string) string {
	answer = strings.TrimSpace(answer)
	if n, err := strconv.Atoi(answer); err == nil && n >= 1 && n <= len(options) {
		return options[n-1]
	}
	return answer
}

func (s *Shell) newSession() {
	sess, err := s.store.Create(s.workDir)
	if err != nil {
		s.view.errorf("create session: %v", err)
		return
	}
	s.sess = sess
	s.view.info("started session %d", sess.ID)
}

func (s *Shell) show() {
	list, err := s.store.List()
	if err != nil {
		s.view.errorf("list sessions: %v", err)
		return
	}
	s.view.sessions(list)
}

func (s *Shell) switchTo(id uint64) {
	if id == s.sess.ID {
		s.view.info("already on session %d", id)
		return
	}
	sess, err := s.store.Switch(id)
	if err != nil {
		s.view.errorf("switch: %v", err)
		return
	}
	s.sess = sess
	s.view.info("switched to session %d (%d messages)", sess.ID, len(sess.Messages))
}

// delete removes a session. Deleting the current one moves the shell onto a fresh session.
func (s *Shell) delete(id uint64) {
	if err := s.store.Delete(id); err != nil {
		s.view.errorf("delete: %v", err)
		return
	}
	s.view.info("deleted session %d", id)
	if id == s.sess.ID {
		s.newSession()
	}
}
