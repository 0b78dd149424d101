package history

import (
	"context"
	"testing"
	"time"

	"github.com/Cyclone1070/codeagent/internal/session"
	"github.com/Cyclone1070/codeagent/internal/tool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func boundSession() *session.Active {
	s := session.New(1, "", time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC))
	s.AddStep(session.Step{
		Question:     "what is in go.mod?",
		Timestamp:    time.Date(2026, 1, 1, 0, 1, 0, 0, time.UTC),
		Calls:        []session.StepCall{{Name: "read", Arguments: `{"filePath":"go.mod"}`, Status: "success", Result: "module x"}},
		Completed:    true,
		FinalMessage: "It declares module x.",
	})
	a := session.NewActive()
	a.Bind(s)
	return a
}

func TestDetail_Found(t *testing.T) {
	res, err := NewDetailTool(boundSession()).Execute(context.Background(), &DetailRequest{StepNumber: 0})

	require.NoError(t, err)
	assert.False(t, res.Failed())
	assert.Contains(t, res.Content, "Question: what is in go.mod?")
	assert.Contains(t, res.Content, `- read {"filePath":"go.mod"} [success]: module x`)
	assert.Equal(t, tool.StringDisplay("Step 0: what is in go.mod?"), res.Display)
}

func TestDetail_UnknownStep(t *testing.T) {
	res, err := NewDetailTool(boundSession()).Execute(context.Background(), &DetailRequest{StepNumber: 3})

	require.NoError(t, err)
	assert.Equal(t, tool.CodeNotFound, res.Code)
	assert.Contains(t, res.Error, "valid range is 0-0")
}

func TestDetail_NoSession(t *testing.T) {
	res, err := NewDetailTool(session.NewActive()).Execute(context.Background(), &DetailRequest{StepNumber: 0})

	require.NoError(t, err)
	assert.Equal(t, tool.CodeExecutionFailed, res.Code)
}

func TestDetail_WrongInputType(t *testing.T) {
	_, err := NewDetailTool(boundSession()).Execute(context.Background(), "nope")
	assert.Error(t, err)
}
