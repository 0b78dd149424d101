package session

import (
	"sync"

	"github.com/Cyclone1070/codeagent/internal/tool/todo"
)

// Active points at the session the loop is driving. Tools that read or change
// session state (todowrite, session_detail) go through it.
type Active struct {
	mu   sync.Mutex
	sess *Session
}

// NewActive returns an Active with nothing bound.
func NewActive() *Active {
	return &Active{}
}

// Bind makes s the active session.
func (a *Active) Bind(s *Session) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.sess = s
}

// Session returns the bound session, or nil.
func (a *Active) Session() *Session {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.sess
}

// Todos returns a copy of the bound session's checklist.
func (a *Active) Todos() []todo.Item {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.sess == nil {
		return nil
	}
	return append([]todo.Item(nil), a.sess.Todos...)
}

// SetTodos replaces the bound session's checklist.
func (a *Active) SetTodos(items []todo.Item) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.sess == nil {
		return ErrNoSession
	}
	if len(items) == 0 {
		a.sess.Todos = nil
		return nil
	}
	a.sess.Todos = append([]todo.Item(nil), items...)
	return nil
}

// Step returns step n of the bound session.
func (a *Active) Step(n int) (Step, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.sess == nil {
		return Step{}, ErrNoSession
	}
	if n < 0 || n >= len(a.sess.Steps) {
		return Step{}, &StepNotFoundError{Number: n, Count: len(a.sess.Steps)}
	}
	return a.sess.Steps[n], nil
}
