// Package todo implements the session checklist and the todowrite tool.
package todo

import (
	"fmt"
	"strings"
)

// Status represents the status of a todo item.
type Status string

const (
	StatusPending    Status = "pending"
	StatusInProgress Status = "in-progress"
	StatusDone       Status = "done"
)

// Priority is an optional ordering hint.
type Priority string

const (
	PriorityHigh   Priority = "high"
	PriorityMedium Priority = "medium"
	PriorityLow    Priority = "low"
)

// Item represents a single task item.
type Item struct {
	ID       string   `json:"id" yaml:"id"`
	Content  string   `json:"content" yaml:"content"`
	Status   Status   `json:"status" yaml:"status"`
	Priority Priority `json:"priority,omitempty" yaml:"priority,omitempty"`
}

type WriteRequest struct {
	Todos []Item `json:"todos"`
}

func (r *WriteRequest) String() string {
	return fmt.Sprintf("Updating todo list (%d items)", len(r.Todos))
}

// Validate checks every item and rejects duplicate ids.
func (r *WriteRequest) Validate() error {
	seen := make(map[string]int, len(r.Todos))
	for i, item := range r.Todos {
		if strings.TrimSpace(item.ID) == "" {
			return &ItemError{Index: i, Cause: ErrEmptyID}
		}
		if strings.TrimSpace(item.Content) == "" {
			return &ItemError{Index: i, Cause: ErrEmptyContent}
		}
		switch item.Status {
		case StatusPending, StatusInProgress, StatusDone:
		default:
			return &ItemError{Index: i, Cause: fmt.Errorf("%w: %q", ErrInvalidStatus, item.Status)}
		}
		switch item.Priority {
		case "", PriorityHigh, PriorityMedium, PriorityLow:
		default:
			return &ItemError{Index: i, Cause: fmt.Errorf("%w: %q", ErrInvalidPriority, item.Priority)}
		}
		if prev, ok := seen[item.ID]; ok {
			return &ItemError{Index: i, Cause: fmt.Errorf("%w: %q also used by todos[%d]", ErrDuplicateID, item.ID, prev)}
		}
		seen[item.ID] = i
	}
	return nil
}

// Render formats a checklist for the model and the shell.
func Render(items []Item) string {
	if len(items) == 0 {
		return "(no todos)"
	}
	var b strings.Builder
	for i, item := range items {
		if i > 0 {
			b.WriteByte('\n')
		}
		fmt.Fprintf(&b, "%s %s: %s", marker(item.Status), item.ID, item.Content)
		if item.Priority != "" {
			fmt.Fprintf(&b, " (%s)", item.Priority)
		}
	}
	return b.String()
}

func marker(s Status) string {
	switch s {
	case StatusDone:
		return "[x]"
	case StatusInProgress:
		return "[~]"
	default:
		return "[ ]"
	}
}
