// Package toolmanager validates model tool calls against their declared schemas and dispatches them.
package toolmanager

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/Cyclone1070/codeagent/internal/llm"
	"github.com/Cyclone1070/codeagent/internal/tool"
	"github.com/Cyclone1070/codeagent/internal/workflow"
	"github.com/mitchellh/mapstructure"
	"github.com/rs/zerolog/log"
	"github.com/xeipuuv/gojsonschema"
)

type entry struct {
	impl   toolImpl
	schema *gojsonschema.Schema // nil when the tool declares no parameters
}

// ToolManager is the registry of tools available to the model.
type ToolManager struct {
	registry map[string]entry
}

// NewToolManager creates a registry holding tools.
func NewToolManager(tools ...toolImpl) *ToolManager {
	m := &ToolManager{registry: make(map[string]entry)}
	for _, t := range tools {
		m.Register(t)
	}
	return m
}

// Register adds t, replacing any tool with the same name.
// It panics when the declared parameter schema does not compile.
func (m *ToolManager) Register(t toolImpl) {
	if t == nil {
		panic("tool is required")
	}
	e := entry{impl: t}
	if params := t.Declaration().Parameters; params != nil {
		schema, err := gojsonschema.NewSchema(gojsonschema.NewGoLoader(params))
		if err != nil {
			panic(fmt.Sprintf("tool %s: invalid parameter schema: %v", t.Name(), err))
		}
		e.schema = schema
	}
	m.registry[t.Name()] = e
}

// Declarations returns every tool declaration sorted by name.
func (m *ToolManager) Declarations() []tool.Declaration {
	decls := make([]tool.Declaration, 0, len(m.registry))
	for _, e := range m.registry {
		decls = append(decls, e.impl.Declaration())
	}
	sort.Slice(decls, func(i, j int) bool {
		return decls[i].Name < decls[j].Name
	})
	return decls
}

// Names returns the registered tool names in order.
func (m *ToolManager) Names() []string {
	names := make([]string, 0, len(m.registry))
	for name := range m.registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Execute runs one tool call. Unknown tools, malformed arguments and tool failures come back
// as a failed Result for the model; the error return is reserved for cancellation and other
// conditions that must abort the turn.
func (m *ToolManager) Execute(ctx context.Context, call llm.ToolCall, events chan<- workflow.Event) (tool.Result, error) {
	res, err := m.execute(ctx, call, events)
	if err != nil {
		return tool.Result{}, err
	}
	res.CallID = call.ID
	return res, nil
}

func (m *ToolManager) execute(ctx context.Context, call llm.ToolCall, events chan<- workflow.Event) (tool.Result, error) {
	e, ok := m.registry[call.Name]
	if !ok {
		log.Warn().Str("tool", call.Name).Msg("model called unknown tool")
		return tool.Failure(tool.CodeUnknownTool, "tool %q does not exist. Available tools: %s",
			call.Name, strings.Join(m.Names(), ", ")), nil
	}

	input, failure := e.decode(call)
	if failure != nil {
		log.Debug().Str("tool", call.Name).Str("error", failure.Error).Msg("rejected tool arguments")
		return *failure, nil
	}

	display := call.Name
	if s, ok := input.(fmt.Stringer); ok {
		display = s.String()
	}
	workflow.Emit(ctx, events, workflow.ToolStartEvent{
		ToolName:       call.Name,
		CallID:         call.ID,
		RequestDisplay: display,
	})

	start := time.Now()
	res, err := e.impl.Execute(ctx, input)
	if err != nil {
		log.Debug().Err(err).Str("tool", call.Name).Msg("tool aborted")
		return tool.Result{}, err
	}

	ev := log.Debug()
	if res.Failed() {
		ev = log.Info().Str("code", string(res.Code))
	}
	ev.Str("tool", call.Name).Str("call_id", call.ID).Dur("elapsed", time.Since(start)).Msg("tool finished")

	workflow.Emit(ctx, events, workflow.ToolEndEvent{
		ToolName: call.Name,
		CallID:   call.ID,
		Failed:   res.Failed(),
		Display:  res.Display,
	})
	return res, nil
}

// decode validates the raw arguments against the schema and fills a fresh request value.
func (e entry) decode(call llm.ToolCall) (any, *tool.Result) {
	var args map[string]any
	if err := json.Unmarshal([]byte(llm.ArgumentsOrEmpty(call.Arguments)), &args); err != nil {
		res := tool.Failure(tool.CodeInvalidArguments, "arguments for %s are not a valid JSON object: %v", call.Name, err)
		return nil, &res
	}
	if args == nil {
		args = map[string]any{}
	}

	if e.schema != nil {
		result, err := e.schema.Validate(gojsonschema.NewGoLoader(args))
		if err != nil {
			res := tool.Failure(tool.CodeInvalidArguments, "arguments for %s could not be validated: %v", call.Name, err)
			return nil, &res
		}
		if !result.Valid() {
			res := tool.Failure(tool.CodeInvalidArguments, "invalid arguments for %s: %s", call.Name, describe(result.Errors()))
			return nil, &res
		}
	}

	input := e.impl.Input()
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		TagName: "json",
		Result:  input,
	})
	if err != nil {
		res := tool.Failure(tool.CodeExecutionFailed, "prepare %s arguments: %v", call.Name, err)
		return nil, &res
	}
	if err := decoder.Decode(args); err != nil {
		res := tool.Failure(tool.CodeInvalidArguments, "invalid arguments for %s: %v", call.Name, err)
		return nil, &res
	}
	return input, nil
}

// describe names the offending field of every schema violation.
func describe(errs []gojsonschema.ResultError) string {
	parts := make([]string, 0, len(errs))
	for _, re := range errs {
		field := re.Field()
		if field == "(root)" {
			parts = append(parts, re.Description())
			continue
		}
		parts = append(parts, field+": "+re.Description())
	}
	return strings.Join(parts, "; ")
}
