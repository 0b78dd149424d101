package ui

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/Cyclone1070/codeagent/internal/session"
	"github.com/Cyclone1070/codeagent/internal/tool"
	"github.com/Cyclone1070/codeagent/internal/workflow"
	"github.com/Cyclone1070/codeagent/internal/workflow/loop"
	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"
)

const shellOutputTail = 10

// view writes everything the shell shows. Styles degrade to plain text when out is not a terminal.
type view struct {
	out      io.Writer
	markdown MarkdownRenderer // nil prints markdown as is

	user    lipgloss.Style
	dim     lipgloss.Style
	tool    lipgloss.Style
	ok      lipgloss.Style
	fail    lipgloss.Style
	warn    lipgloss.Style
	added   lipgloss.Style
	removed lipgloss.Style
	header  lipgloss.Style
}

func newView(out io.Writer, markdown MarkdownRenderer) *view {
	r := lipgloss.NewRenderer(out)
	return &view{
		out:      out,
		markdown: markdown,
		user:     r.NewStyle().Bold(true).Foreground(lipgloss.Color("12")),
		dim:      r.NewStyle().Faint(true),
		tool:     r.NewStyle().Foreground(lipgloss.Color("14")),
		ok:       r.NewStyle().Foreground(lipgloss.Color("10")),
		fail:     r.NewStyle().Foreground(lipgloss.Color("9")),
		warn:     r.NewStyle().Foreground(lipgloss.Color("11")),
		added:    r.NewStyle().Foreground(lipgloss.Color("2")),
		removed:  r.NewStyle().Foreground(lipgloss.Color("1")),
		header:   r.NewStyle().Bold(true),
	}
}

// NewGlamourRenderer returns the markdown renderer for terminal output.
func NewGlamourRenderer(width int) (*glamour.TermRenderer, error) {
	if width <= 0 {
		width = 100
	}
	return glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(width),
	)
}

func (v *view) println(s string) {
	fmt.Fprintln(v.out, s)
}

func (v *view) info(format string, args ...any) {
	v.println(fmt.Sprintf(format, args...))
}

func (v *view) errorf(format string, args ...any) {
	v.println(v.fail.Render(fmt.Sprintf(format, args...)))
}

func (v *view) renderMarkdown(md string) {
	if v.markdown != nil {
		if rendered, err := v.markdown.Render(md); err == nil {
			fmt.Fprint(v.out, strings.TrimRight(rendered, "\n")+"\n")
			return
		}
	}
	v.println(md)
}

// event shows one workflow event.
func (v *view) event(ev workflow.Event) {
	switch e := ev.(type) {
	case workflow.ThinkingEvent:
		if e.Iteration > 1 {
			v.println(v.dim.Render(fmt.Sprintf("· thinking (step %d)", e.Iteration)))
		}
	case workflow.ReasoningEvent:
		v.println(v.dim.Render(e.Text))
	case workflow.TextEvent:
		v.renderMarkdown(e.Text)
	case workflow.RetryEvent:
		v.println(v.warn.Render(fmt.Sprintf("model request failed: %v; retrying in %s (attempt %d)",
			e.Err, e.Delay.Round(time.Millisecond), e.Attempt)))
	case workflow.ToolStartEvent:
		v.println(v.tool.Render("→ " + e.RequestDisplay))
	case workflow.ToolEndEvent:
		v.toolEnd(e)
	case workflow.DoneEvent:
	}
}

func (v *view) toolEnd(e workflow.ToolEndEvent) {
	mark := v.ok.Render("✓")
	if e.Failed {
		mark = v.fail.Render("✗")
	}

	switch d := e.Display.(type) {
	case tool.DiffDisplay:
		v.println(fmt.Sprintf("  %s %s %s", mark,
			v.added.Render(fmt.Sprintf("+%d", d.AddedLines)),
			v.removed.Render(fmt.Sprintf("-%d", d.RemovedLines))))
		for _, line := range strings.Split(strings.TrimRight(d.Diff, "\n"), "\n") {
			switch {
			case strings.HasPrefix(line, "+") && !strings.HasPrefix(line, "+++"):
				v.println("    " + v.added.Render(line))
			case strings.HasPrefix(line, "-") && !strings.HasPrefix(line, "---"):
				v.println("    " + v.removed.Render(line))
			default:
				v.println("    " + v.dim.Render(line))
			}
		}
	case tool.ShellDisplay:
		v.println(fmt.Sprintf("  %s $ %s (exit %d)", mark, d.Command, d.ExitCode))
		lines := strings.Split(strings.TrimRight(d.Output, "\n"), "\n")
		if len(lines) > shellOutputTail {
			v.println(v.dim.Render(fmt.Sprintf("    ... %d earlier lines", len(lines)-shellOutputTail)))
			lines = lines[len(lines)-shellOutputTail:]
		}
		for _, line := range lines {
			if line != "" {
				v.println("    " + v.dim.Render(line))
			}
		}
	case tool.StringDisplay:
		v.println(fmt.Sprintf("  %s %s", mark, string(d)))
	default:
		v.println("  " + mark)
	}
}

// turnEnd prints the execution summary or the reason the turn stopped.
func (v *view) turnEnd(res loop.TurnResult, err error) {
	switch {
	case err == nil:
	case errors.Is(err, context.Canceled):
		v.println(v.warn.Render("turn cancelled"))
	case errors.Is(err, context.DeadlineExceeded):
		v.errorf("turn took too long and was stopped")
	case errors.Is(err, workflow.ErrMaxIterationsExceeded):
		v.errorf("%v; the agent stopped before finishing, ask it to continue", err)
	case errors.Is(err, workflow.ErrEngineUnavailable):
		v.errorf("%v", err)
	case errors.Is(err, workflow.ErrStore):
		v.errorf("could not save the session: %v", err)
	default:
		v.errorf("%v", err)
	}
	v.println(v.dim.Render(fmt.Sprintf("(%d iterations, %d tool calls, %d failed, %s)",
		res.Iterations, res.ToolCalls, res.Failures, res.Duration.Round(100*time.Millisecond))))
}

func (v *view) sessions(list []session.Summary) {
	if len(list) == 0 {
		v.println("no sessions")
		return
	}
	v.println(v.header.Render(fmt.Sprintf("%-4s %-3s %-8s %-16s %5s  %s", "", "ID", "STATUS", "UPDATED", "QS", "TITLE")))
	for _, s := range list {
		marker := ""
		if s.Current {
			marker = "*"
		}
		title := s.Title
		if title == "" {
			title = v.dim.Render("(empty)")
		}
		v.println(fmt.Sprintf("%-4s %-3d %-8s %-16s %5d  %s", marker, s.ID, s.Status,
			s.UpdatedAt.Local().Format("2006-01-02 15:04"), s.Questions, title))
	}
}
