package loop

import (
	"context"

	"github.com/Cyclone1070/codeagent/internal/llm"
	"github.com/Cyclone1070/codeagent/internal/session"
	"github.com/Cyclone1070/codeagent/internal/tool"
	"github.com/Cyclone1070/codeagent/internal/workflow"
)

// llmClient is the model the loop converses with.
type llmClient interface {
	Complete(ctx context.Context, messages []llm.Message, tools []tool.Declaration, opts llm.Options) (llm.Response, error)
}

// toolManager validates and runs tool calls.
type toolManager interface {
	Declarations() []tool.Declaration
	Execute(ctx context.Context, call llm.ToolCall, events chan<- workflow.Event) (tool.Result, error)
}

// sessionSaver persists the session after every change.
type sessionSaver interface {
	Save(sess *session.Session) error
}

// sessionBinder exposes the driven session to tools that read or change it.
type sessionBinder interface {
	Bind(sess *session.Session)
}
