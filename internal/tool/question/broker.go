// Package question hands questions from the agent to the interactive shell and waits for answers.
package question

import (
	"context"
	"errors"
	"sync/atomic"
)

// ErrNoResponder is returned when nothing is listening for questions.
var ErrNoResponder = errors.New("no interactive responder is attached")

// Prompt is a single question for the user.
type Prompt struct {
	Question string   `json:"question"`
	Header   string   `json:"header,omitempty"`
	Options  []string `json:"options,omitempty"`
}

// Request is delivered to the responder. Exactly one value must be sent on Reply,
// with one answer per prompt in order.
type Request struct {
	Prompts []Prompt
	Reply   chan<- []string
}

// Broker is the message-passing handoff between the loop and the shell.
type Broker struct {
	requests chan Request
	attached atomic.Bool
}

// NewBroker creates a broker with no responder attached.
func NewBroker() *Broker {
	return &Broker{requests: make(chan Request)}
}

// Attach marks a responder as present and returns the channel it must serve.
func (b *Broker) Attach() <-chan Request {
	b.attached.Store(true)
	return b.requests
}

// Detach marks the responder as gone. Later Ask calls fail fast.
func (b *Broker) Detach() {
	b.attached.Store(false)
}

// Ask blocks until the responder answers or ctx ends. It holds no locks while waiting.
func (b *Broker) Ask(ctx context.Context, prompts []Prompt) ([]string, error) {
	if !b.attached.Load() {
		return nil, ErrNoResponder
	}

	reply := make(chan []string, 1)
	select {
	case b.requests <- Request{Prompts: prompts, Reply: reply}:
	case <-ctx.Done():
		return nil, ctx.Err()
	}

	select {
	case answers := <-reply:
		return answers, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}
