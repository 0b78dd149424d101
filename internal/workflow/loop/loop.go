// Package loop drives one user turn: it alternates model requests and tool executions
// until the model answers in text, persisting the session after every step.
package loop

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/Cyclone1070/codeagent/internal/config"
	"github.com/Cyclone1070/codeagent/internal/llm"
	"github.com/Cyclone1070/codeagent/internal/llm/engine"
	"github.com/Cyclone1070/codeagent/internal/session"
	"github.com/Cyclone1070/codeagent/internal/tool"
	"github.com/Cyclone1070/codeagent/internal/tool/helper/content"
	"github.com/Cyclone1070/codeagent/internal/tool/todo"
	"github.com/Cyclone1070/codeagent/internal/workflow"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// maxRetryDelay caps both exponential backoff and server supplied Retry-After values.
const maxRetryDelay = time.Minute

// TurnResult summarises a finished turn.
type TurnResult struct {
	Text       string
	Iterations int
	ToolCalls  int
	Failures   int
	Duration   time.Duration
}

type Loop struct {
	client        llmClient
	tools         toolManager
	store         sessionSaver
	active        sessionBinder
	events        chan<- workflow.Event
	opts          llm.Options
	maxIterations int
	maxRetries    int
	retryBase     time.Duration
	turnTimeout   time.Duration

	sleep func(ctx context.Context, d time.Duration) error
	now   func() time.Time
}

// NewLoop creates a Loop with injected dependencies. events may be nil.
func NewLoop(client llmClient, tools toolManager, store sessionSaver, active sessionBinder, events chan<- workflow.Event, cfg *config.Config) *Loop {
	if client == nil {
		panic("client is required")
	}
	if tools == nil {
		panic("tools is required")
	}
	if store == nil {
		panic("store is required")
	}
	if active == nil {
		panic("active is required")
	}
	if cfg == nil {
		panic("config is required")
	}
	return &Loop{
		client:        client,
		tools:         tools,
		store:         store,
		active:        active,
		events:        events,
		opts:          engine.Options(cfg.Engine),
		maxIterations: max(cfg.Agent.MaxIterations, 1),
		maxRetries:    max(cfg.Agent.MaxRetries, 1),
		retryBase:     time.Duration(cfg.Agent.RetryBaseDelayMs) * time.Millisecond,
		turnTimeout:   time.Duration(cfg.Agent.MaxTurnDuration) * time.Second,
		sleep:         sleepCtx,
		now:           time.Now,
	}
}

// RunTurn handles one user input against sess.
//
// The turn deadline does not run while a tool waits on the user.
// The session is saved after every appended message. A turn that ends in an error
// still leaves a coherent session behind: on cancellation any partially answered
// tool exchange is rolled back so no tool call is left without its result.
func (l *Loop) RunTurn(ctx context.Context, sess *session.Session, input string) (TurnResult, error) {
	start := l.now()
	result := TurnResult{}

	parent := ctx
	var deadline *turnDeadline
	if l.turnTimeout > 0 {
		var cancel context.CancelFunc
		ctx, deadline, cancel = withTurnDeadline(ctx, l.turnTimeout, l.now)
		defer cancel()
	}
	defer func() {
		workflow.Emit(parent, l.events, workflow.DoneEvent{})
	}()

	l.active.Bind(sess)
	decls := l.tools.Declarations()
	opts := l.opts
	opts.System = systemPrompt(sess, decls)

	step := session.Step{Question: input, Timestamp: l.now().UTC()}
	logger := log.With().Uint64("session_id", sess.ID).Logger()

	sess.Append(llm.UserMessage(input))
	if err := l.save(sess); err != nil {
		return result, err
	}

	finish := func(text string, completed bool, turnErr error) (TurnResult, error) {
		if deadline != nil && deadline.Expired() && errors.Is(turnErr, context.Canceled) && parent.Err() == nil {
			var storeErr *workflow.StoreError
			if errors.As(turnErr, &storeErr) {
				turnErr = errors.Join(context.DeadlineExceeded, storeErr)
			} else {
				turnErr = context.DeadlineExceeded
			}
		}
		result.Text = text
		result.Duration = time.Since(start)
		step.Completed = completed
		step.FinalMessage = text
		sess.AddStep(step)
		if err := l.save(sess); err != nil && turnErr == nil {
			turnErr = err
		}
		ev := logger.Info()
		if turnErr != nil {
			ev = logger.Warn().Err(turnErr)
		}
		ev.Int("iterations", result.Iterations).
			Int("tool_calls", result.ToolCalls).
			Int("tool_failures", result.Failures).
			Dur("elapsed", result.Duration).
			Msg("turn finished")
		return result, turnErr
	}

	for i := 0; i < l.maxIterations; i++ {
		result.Iterations = i + 1
		workflow.Emit(ctx, l.events, workflow.ThinkingEvent{Iteration: i + 1})

		resp, err := l.complete(ctx, sess.Messages, decls, opts)
		if err != nil {
			return finish("", false, err)
		}

		switch r := resp.(type) {
		case llm.TextResponse:
			l.emitText(ctx, r.Thinking, r.Text)
			sess.Append(llm.AssistantMessage(r.Text, nil))
			if err := l.save(sess); err != nil {
				return result, err
			}
			return finish(r.Text, true, nil)

		case llm.ToolCallsResponse:
			l.emitText(ctx, r.Thinking, r.Text)
			calls := assignCallIDs(r.Calls)

			checkpoint := len(sess.Messages)
			todos := slices.Clone(sess.Todos)

			sess.Append(llm.AssistantMessage(r.Text, calls))
			if err := l.save(sess); err != nil {
				return result, err
			}

			for _, call := range calls {
				if err := ctx.Err(); err != nil {
					return finish("", false, l.rollback(sess, checkpoint, todos, err))
				}
				res, err := l.tools.Execute(ctx, call, l.events)
				if err != nil {
					return finish("", false, l.rollback(sess, checkpoint, todos, err))
				}

				result.ToolCalls++
				if res.Failed() {
					result.Failures++
				}
				step.Calls = append(step.Calls, stepCall(call, res))

				sess.Append(llm.ToolMessage(call, res.LLMContent()))
				if err := l.save(sess); err != nil {
					return result, err
				}
			}

		default:
			return finish("", false, fmt.Errorf("unexpected model response %T", resp))
		}
	}

	return finish("", false, &workflow.MaxIterationsError{Limit: l.maxIterations})
}

// complete asks the model, retrying transient failures with exponential backoff.
func (l *Loop) complete(ctx context.Context, messages []llm.Message, decls []tool.Declaration, opts llm.Options) (llm.Response, error) {
	var lastErr error
	attempts := 0
	for attempt := 0; attempt < l.maxRetries; attempt++ {
		if attempt > 0 {
			delay := l.backoff(attempt, lastErr)
			workflow.Emit(ctx, l.events, workflow.RetryEvent{Attempt: attempt + 1, Delay: delay, Err: lastErr})
			if err := l.sleep(ctx, delay); err != nil {
				return nil, err
			}
		}

		attempts++
		resp, err := l.client.Complete(ctx, messages, decls, opts)
		if err == nil {
			return resp, nil
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}

		lastErr = err
		log.Warn().Err(err).Int("attempt", attempts).Msg("model request failed")
		if !llm.IsRetryable(err) {
			break
		}
	}
	return nil, &workflow.EngineUnavailableError{Attempts: attempts, Cause: lastErr}
}

func (l *Loop) backoff(attempt int, err error) time.Duration {
	if after := llm.GetRetryAfter(err); after != nil {
		return min(*after, maxRetryDelay)
	}
	delay := l.retryBase << (attempt - 1)
	if delay <= 0 || delay > maxRetryDelay {
		return maxRetryDelay
	}
	return delay
}

// rollback discards a partially answered tool exchange and persists the result.
func (l *Loop) rollback(sess *session.Session, checkpoint int, todos []todo.Item, cause error) error {
	sess.Truncate(checkpoint)
	sess.Todos = todos
	if err := l.save(sess); err != nil {
		return errors.Join(cause, err)
	}
	return cause
}

func (l *Loop) save(sess *session.Session) error {
	if err := l.store.Save(sess); err != nil {
		return &workflow.StoreError{Op: "save", SessionID: sess.ID, Cause: err}
	}
	return nil
}

func (l *Loop) emitText(ctx context.Context, thinking, text string) {
	if thinking != "" {
		workflow.Emit(ctx, l.events, workflow.ReasoningEvent{Text: thinking})
	}
	if text != "" {
		workflow.Emit(ctx, l.events, workflow.TextEvent{Text: text})
	}
}

// assignCallIDs returns calls with every ID present and unique within the response.
func assignCallIDs(calls []llm.ToolCall) []llm.ToolCall {
	out := slices.Clone(calls)
	seen := make(map[string]bool, len(out))
	for i := range out {
		if out[i].ID == "" || seen[out[i].ID] {
			out[i].ID = "call_" + uuid.NewString()
		}
		seen[out[i].ID] = true
	}
	return out
}

const stepTextLimit = 200

func stepCall(call llm.ToolCall, res tool.Result) session.StepCall {
	summary := res.Content
	if res.Failed() {
		summary = res.Error
	}
	args, _ := content.TruncateRunes(call.Arguments, stepTextLimit)
	summary, _ = content.TruncateRunes(firstLine(summary), stepTextLimit)
	return session.StepCall{
		Name:      call.Name,
		Arguments: args,
		Status:    string(res.Status),
		Result:    summary,
	}
}

func firstLine(s string) string {
	for i, r := range s {
		if r == '\n' {
			return s[:i]
		}
	}
	return s
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
