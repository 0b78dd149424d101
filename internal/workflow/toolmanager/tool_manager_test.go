package toolmanager

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/Cyclone1070/codeagent/internal/llm"
	"github.com/Cyclone1070/codeagent/internal/session"
	"github.com/Cyclone1070/codeagent/internal/tool"
	"github.com/Cyclone1070/codeagent/internal/tool/todo"
	"github.com/Cyclone1070/codeagent/internal/workflow"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mockInput struct {
	Value string `json:"value"`
	Count int    `json:"count,omitempty"`
}

func (m *mockInput) String() string { return "Echo " + m.Value }

var mockSchema = &tool.Schema{
	Type: tool.TypeObject,
	Properties: map[string]*tool.Schema{
		"value": {Type: tool.TypeString},
		"count": {Type: tool.TypeInteger, Minimum: tool.Min(0)},
	},
	Required: []string{"value"},
}

type mockTool struct {
	name        string
	declaration tool.Declaration
	executeFunc func(ctx context.Context, input any) (tool.Result, error)
}

func (m *mockTool) Name() string                  { return m.name }
func (m *mockTool) Declaration() tool.Declaration { return m.declaration }
func (m *mockTool) Input() any                    { return &mockInput{} }
func (m *mockTool) Execute(ctx context.Context, input any) (tool.Result, error) {
	if m.executeFunc != nil {
		return m.executeFunc(ctx, input)
	}
	return tool.Success("ok", tool.StringDisplay("ok")), nil
}

func newMockTool(name string) *mockTool {
	return &mockTool{name: name, declaration: tool.Declaration{Name: name, Parameters: mockSchema}}
}

func TestRegister_AddsTool(t *testing.T) {
	tm := NewToolManager(newMockTool("test-tool"))

	decls := tm.Declarations()
	assert.Len(t, decls, 1)
	assert.Equal(t, "test-tool", decls[0].Name)
}

func TestRegister_DuplicateName(t *testing.T) {
	tm := NewToolManager()
	mt1 := newMockTool("test-tool")
	mt1.declaration.Description = "v1"
	mt2 := newMockTool("test-tool")
	mt2.declaration.Description = "v2"

	tm.Register(mt1)
	tm.Register(mt2)

	decls := tm.Declarations()
	assert.Len(t, decls, 1)
	assert.Equal(t, "v2", decls[0].Description)
}

func TestRegister_InvalidSchemaPanics(t *testing.T) {
	bad := &mockTool{name: "bad", declaration: tool.Declaration{
		Name:       "bad",
		Parameters: &tool.Schema{Type: "not-a-type"},
	}}
	assert.Panics(t, func() { NewToolManager(bad) })
}

func TestDeclarations_SortedByName(t *testing.T) {
	tm := NewToolManager(newMockTool("z"), newMockTool("a"), newMockTool("m"))

	decls := tm.Declarations()
	require.Len(t, decls, 3)
	assert.Equal(t, "a", decls[0].Name)
	assert.Equal(t, "m", decls[1].Name)
	assert.Equal(t, "z", decls[2].Name)
	assert.Equal(t, []string{"a", "m", "z"}, tm.Names())
}

func TestExecute_UnknownTool_ReturnsFailureToLLM(t *testing.T) {
	tm := NewToolManager(newMockTool("read"), newMockTool("glob"))

	res, err := tm.Execute(context.Background(), llm.ToolCall{ID: "tc-123", Name: "unknown"}, nil)

	require.NoError(t, err)
	assert.Equal(t, "tc-123", res.CallID)
	assert.Equal(t, tool.CodeUnknownTool, res.Code)
	assert.Contains(t, res.Error, `tool "unknown" does not exist`)
	assert.Contains(t, res.Error, "glob, read")
}

func TestExecute_ValidArguments_Decoded(t *testing.T) {
	var captured *mockInput
	mt := newMockTool("test")
	mt.executeFunc = func(ctx context.Context, input any) (tool.Result, error) {
		captured = input.(*mockInput)
		return tool.Success("done", nil), nil
	}
	tm := NewToolManager(mt)

	res, err := tm.Execute(context.Background(), llm.ToolCall{
		ID:        "tc-456",
		Name:      "test",
		Arguments: `{"value": "hello", "count": 3}`,
	}, nil)

	require.NoError(t, err)
	require.NotNil(t, captured)
	assert.Equal(t, "hello", captured.Value)
	assert.Equal(t, 3, captured.Count)
	assert.Equal(t, "tc-456", res.CallID)
	assert.Equal(t, "done", res.LLMContent())
}

func TestExecute_ArgumentFailures(t *testing.T) {
	tests := []struct {
		name      string
		arguments string
		contains  string
	}{
		{"malformed json", `{invalid}`, "not a valid JSON object"},
		{"not an object", `[1, 2]`, "not a valid JSON object"},
		{"missing required", `{}`, "value is required"},
		{"empty arguments", ``, "value is required"},
		{"wrong type", `{"value": 7}`, "value:"},
		{"fractional integer", `{"value": "x", "count": 1.5}`, "count:"},
		{"below minimum", `{"value": "x", "count": -1}`, "count:"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			called := false
			mt := newMockTool("test")
			mt.executeFunc = func(ctx context.Context, input any) (tool.Result, error) {
				called = true
				return tool.Success("ok", nil), nil
			}
			tm := NewToolManager(mt)

			res, err := tm.Execute(context.Background(), llm.ToolCall{ID: "tc", Name: "test", Arguments: tt.arguments}, nil)

			require.NoError(t, err)
			assert.False(t, called)
			assert.Equal(t, tool.CodeInvalidArguments, res.Code)
			assert.Equal(t, tool.KindValidation, res.Code.Kind())
			assert.Contains(t, res.Error, tt.contains)
			assert.Equal(t, "tc", res.CallID)
		})
	}
}

func TestExecute_NoParameters_AcceptsEmptyArguments(t *testing.T) {
	called := false
	tm := NewToolManager(&mockTool{
		name:        "bare",
		declaration: tool.Declaration{Name: "bare"},
		executeFunc: func(ctx context.Context, input any) (tool.Result, error) {
			called = true
			return tool.Success("ok", nil), nil
		},
	})

	res, err := tm.Execute(context.Background(), llm.ToolCall{Name: "bare"}, nil)

	require.NoError(t, err)
	assert.True(t, called)
	assert.False(t, res.Failed())
}

func TestExecute_EmitsToolEvents(t *testing.T) {
	mt := newMockTool("test")
	mt.executeFunc = func(ctx context.Context, input any) (tool.Result, error) {
		return tool.Success("ok", tool.StringDisplay("result")), nil
	}
	tm := NewToolManager(mt)

	events := make(chan workflow.Event, 10)
	_, err := tm.Execute(context.Background(), llm.ToolCall{ID: "c1", Name: "test", Arguments: `{"value": "hello"}`}, events)
	require.NoError(t, err)

	start, ok := (<-events).(workflow.ToolStartEvent)
	require.True(t, ok)
	assert.Equal(t, "test", start.ToolName)
	assert.Equal(t, "c1", start.CallID)
	assert.Equal(t, "Echo hello", start.RequestDisplay)

	end, ok := (<-events).(workflow.ToolEndEvent)
	require.True(t, ok)
	assert.Equal(t, "test", end.ToolName)
	assert.False(t, end.Failed)
	assert.Equal(t, tool.StringDisplay("result"), end.Display)
}

func TestExecute_ToolFailureIsAResult(t *testing.T) {
	mt := newMockTool("test")
	mt.executeFunc = func(ctx context.Context, input any) (tool.Result, error) {
		return tool.Failure(tool.CodeNotFound, "missing.txt does not exist"), nil
	}
	tm := NewToolManager(mt)
	events := make(chan workflow.Event, 10)

	res, err := tm.Execute(context.Background(), llm.ToolCall{ID: "c1", Name: "test", Arguments: `{"value": "x"}`}, events)

	require.NoError(t, err)
	assert.True(t, res.Failed())
	assert.Equal(t, "Error [not_found]: missing.txt does not exist", res.LLMContent())
	<-events
	end := (<-events).(workflow.ToolEndEvent)
	assert.True(t, end.Failed)
}

func TestExecute_ContextCancelled_ReturnsError(t *testing.T) {
	mt := newMockTool("slow")
	mt.executeFunc = func(ctx context.Context, input any) (tool.Result, error) {
		<-ctx.Done()
		return tool.Result{}, ctx.Err()
	}
	tm := NewToolManager(mt)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := tm.Execute(ctx, llm.ToolCall{Name: "slow", Arguments: `{"value": "x"}`}, nil)

	assert.ErrorIs(t, err, context.Canceled)
}

func TestExecute_NestedArgumentsDecodeIntoTodoItems(t *testing.T) {
	active := session.NewActive()
	active.Bind(session.New(1, "/ws", time.Now()))
	tm := NewToolManager(todo.NewWriteTool(active))

	res, err := tm.Execute(context.Background(), llm.ToolCall{
		ID:   "c1",
		Name: "todowrite",
		Arguments: `{"todos": [
			{"id": "1", "content": "write tests", "status": "in-progress", "priority": "high"},
			{"id": "2", "content": "ship", "status": "pending"}
		]}`,
	}, nil)

	require.NoError(t, err)
	require.False(t, res.Failed(), res.Error)
	assert.Equal(t, []todo.Item{
		{ID: "1", Content: "write tests", Status: todo.StatusInProgress, Priority: todo.PriorityHigh},
		{ID: "2", Content: "ship", Status: todo.StatusPending},
	}, active.Todos())

	res, err = tm.Execute(context.Background(), llm.ToolCall{
		Name:      "todowrite",
		Arguments: `{"todos": [{"id": "1", "content": "x", "status": "finished"}]}`,
	}, nil)
	require.NoError(t, err)
	assert.Equal(t, tool.CodeInvalidArguments, res.Code)
	assert.Contains(t, res.Error, "todos.0.status")
}

func TestExecute_ConcurrentCalls_NoRace(t *testing.T) {
	tm := NewToolManager(newMockTool("tool"))

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _ = tm.Execute(context.Background(), llm.ToolCall{Name: "tool", Arguments: `{"value": "v"}`}, nil)
		}()
	}
	wg.Wait()
}
