// Package session holds conversation state and persists it.
package session

import (
	"fmt"
	"strings"
	"time"

	"github.com/Cyclone1070/codeagent/internal/llm"
	"github.com/Cyclone1070/codeagent/internal/tool/todo"
)

// Status marks whether a session is the one in use.
type Status string

const (
	StatusActive   Status = "active"
	StatusArchived Status = "archived"
)

// Session is one conversation: its messages, the todo checklist and a record of past questions.
type Session struct {
	ID        uint64        `yaml:"id"`
	Status    Status        `yaml:"status"`
	CreatedAt time.Time     `yaml:"created_at"`
	UpdatedAt time.Time     `yaml:"updated_at"`
	WorkDir   string        `yaml:"work_dir,omitempty"`
	Messages  []llm.Message `yaml:"messages,omitempty"`
	Todos     []todo.Item   `yaml:"todos,omitempty"`
	Steps     []Step        `yaml:"steps,omitempty"`
}

// StepCall is one tool call made while answering a question.
type StepCall struct {
	Name      string `yaml:"name"`
	Arguments string `yaml:"arguments,omitempty"`
	Status    string `yaml:"status"`
	Result    string `yaml:"result,omitempty"`
}

// Step records how one user question was handled. Numbers start at 0.
type Step struct {
	Number       int        `yaml:"number"`
	Question     string     `yaml:"question"`
	Timestamp    time.Time  `yaml:"timestamp"`
	Calls        []StepCall `yaml:"calls,omitempty"`
	Completed    bool       `yaml:"completed"`
	FinalMessage string     `yaml:"final_message,omitempty"`
}

// Summary describes a session for listings.
type Summary struct {
	ID        uint64
	Status    Status
	CreatedAt time.Time
	UpdatedAt time.Time
	Messages  int
	Questions int
	Title     string
	Current   bool
}

// New returns an empty active session.
func New(id uint64, workDir string, now time.Time) *Session {
	now = now.UTC().Round(0)
	return &Session{
		ID:        id,
		Status:    StatusActive,
		CreatedAt: now,
		UpdatedAt: now,
		WorkDir:   workDir,
	}
}

// Append adds messages in order.
func (s *Session) Append(msgs ...llm.Message) {
	s.Messages = append(s.Messages, msgs...)
}

// Truncate drops every message after the first n.
func (s *Session) Truncate(n int) {
	if n < len(s.Messages) {
		s.Messages = s.Messages[:n:n]
	}
}

// AddStep records a handled question and returns its number.
func (s *Session) AddStep(step Step) int {
	step.Number = len(s.Steps)
	s.Steps = append(s.Steps, step)
	return step.Number
}

// Summarize builds the listing entry for s.
func (s *Session) Summarize(current bool) Summary {
	title := ""
	for _, m := range s.Messages {
		if m.Role == llm.RoleUser {
			title = firstLine(m.Content)
			break
		}
	}
	return Summary{
		ID:        s.ID,
		Status:    s.Status,
		CreatedAt: s.CreatedAt,
		UpdatedAt: s.UpdatedAt,
		Messages:  len(s.Messages),
		Questions: len(s.Steps),
		Title:     title,
		Current:   current,
	}
}

// History renders the questions asked so far, for the system prompt.
// It is empty for a fresh session.
func (s *Session) History() string {
	if len(s.Steps) == 0 {
		return ""
	}
	var b strings.Builder
	b.WriteString("Questions already handled in this session (use session_detail with the step number for details):\n")
	for _, st := range s.Steps {
		state := "completed"
		if !st.Completed {
			state = "not completed"
		}
		fmt.Fprintf(&b, "- step %d [%s, %d tool calls]: %s\n", st.Number, state, len(st.Calls), firstLine(st.Question))
		if st.FinalMessage != "" {
			fmt.Fprintf(&b, "  answer: %s\n", firstLine(st.FinalMessage))
		}
	}
	return b.String()
}

// Detail renders one step in full.
func (st Step) Detail() string {
	var b strings.Builder
	fmt.Fprintf(&b, "Step %d (%s)\n", st.Number, st.Timestamp.Format(time.RFC3339))
	fmt.Fprintf(&b, "Question: %s\n", st.Question)
	fmt.Fprintf(&b, "Completed: %t\n", st.Completed)
	if len(st.Calls) == 0 {
		b.WriteString("Tool calls: none\n")
	} else {
		fmt.Fprintf(&b, "Tool calls (%d):\n", len(st.Calls))
		for _, c := range st.Calls {
			fmt.Fprintf(&b, "- %s %s [%s]", c.Name, c.Arguments, c.Status)
			if c.Result != "" {
				fmt.Fprintf(&b, ": %s", c.Result)
			}
			b.WriteString("\n")
		}
	}
	if st.FinalMessage != "" {
		fmt.Fprintf(&b, "Final message:\n%s\n", st.FinalMessage)
	}
	return b.String()
}

// Normalize makes empty collections nil so a stored session decodes to an equal value.
func (s *Session) Normalize() {
	if len(s.Messages) == 0 {
		s.Messages = nil
	}
	for i := range s.Messages {
		if len(s.Messages[i].ToolCalls) == 0 {
			s.Messages[i].ToolCalls = nil
		}
	}
	if len(s.Todos) == 0 {
		s.Todos = nil
	}
	if len(s.Steps) == 0 {
		s.Steps = nil
	}
	for i := range s.Steps {
		if len(s.Steps[i].Calls) == 0 {
			s.Steps[i].Calls = nil
		}
	}
	s.CreatedAt = s.CreatedAt.UTC().Round(0)
	s.UpdatedAt = s.UpdatedAt.UTC().Round(0)
	for i := range s.Steps {
		s.Steps[i].Timestamp = s.Steps[i].Timestamp.UTC().Round(0)
	}
}

// Clone returns a deep copy.
func (s *Session) Clone() *Session {
	c := *s
	if s.Messages != nil {
		c.Messages = make([]llm.Message, len(s.Messages))
		for i, m := range s.Messages {
			if m.ToolCalls != nil {
				m.ToolCalls = append([]llm.ToolCall(nil), m.ToolCalls...)
			}
			c.Messages[i] = m
		}
	}
	if s.Todos != nil {
		c.Todos = append([]todo.Item(nil), s.Todos...)
	}
	if s.Steps != nil {
		c.Steps = make([]Step, len(s.Steps))
		for i, st := range s.Steps {
			if st.Calls != nil {
				st.Calls = append([]StepCall(nil), st.Calls...)
			}
			c.Steps[i] = st
		}
	}
	return &c
}

func firstLine(s string) string {
	s = strings.TrimSpace(s)
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		s = s[:i]
	}
	const max = 80
	if r := []rune(s); len(r) > max {
		return string(r[:max]) + "..."
	}
	return s
}
